package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/service"
	"github.com/listenupapp/pagetrail-server/internal/store"
)

func (s *Server) registerReaderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createReader",
		Method:        http.MethodPost,
		Path:          "/api/v1/readers",
		Summary:       "Create reader",
		Description:   "Creates a reader with no points, badges or books",
		Tags:          []string{"Readers"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateReader)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReaders",
		Method:      http.MethodGet,
		Path:        "/api/v1/readers",
		Summary:     "List readers",
		Description: "Returns a page of readers ordered by ID",
		Tags:        []string{"Readers"},
	}, s.handleListReaders)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReader",
		Method:      http.MethodGet,
		Path:        "/api/v1/readers/{readerID}",
		Summary:     "Get reader",
		Description: "Returns a reader profile with points, badges, followed and read books",
		Tags:        []string{"Readers"},
	}, s.handleGetReader)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteReader",
		Method:        http.MethodDelete,
		Path:          "/api/v1/readers/{readerID}",
		Summary:       "Delete reader",
		Description:   "Deletes a reader and all of its lists",
		Tags:          []string{"Readers"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteReader)

	huma.Register(s.api, huma.Operation{
		OperationID: "followBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/readers/{readerID}/books",
		Summary:     "Follow book",
		Description: "Adds a book to the followed list by ID or by title and author. Following a followed book updates its page count.",
		Tags:        []string{"Readers"},
	}, s.handleFollowBook)
}

// === DTOs ===

// CreateReaderRequest is the request body for creating a reader.
type CreateReaderRequest struct {
	DisplayName string `json:"display_name" minLength:"1" maxLength:"100" doc:"Display name"`
}

// CreateReaderInput wraps the create reader request for Huma.
type CreateReaderInput struct {
	Body CreateReaderRequest
}

// ReaderOutput wraps a reader for Huma.
type ReaderOutput struct {
	Body *domain.Reader
}

// ReaderPathInput identifies a reader.
type ReaderPathInput struct {
	ReaderID string `path:"readerID" doc:"Reader ID"`
}

// PaginationInput carries cursor pagination parameters.
type PaginationInput struct {
	Limit  int    `query:"limit" minimum:"0" maximum:"1000" doc:"Items per page (default 100)"`
	Cursor string `query:"cursor" doc:"Cursor from the previous page"`
}

func (p PaginationInput) params() store.PaginationParams {
	return store.PaginationParams{Limit: p.Limit, Cursor: p.Cursor}
}

// ListReadersOutput wraps a page of readers.
type ListReadersOutput struct {
	Body *store.PaginatedResult[*domain.Reader]
}

// FollowBookRequest references a catalog book or describes one.
type FollowBookRequest struct {
	BookID     string `json:"book_id,omitempty" doc:"Existing catalog book ID"`
	Title      string `json:"title,omitempty" doc:"Book title, used when book_id is absent"`
	Author     string `json:"author,omitempty" doc:"Book author"`
	Genre      string `json:"genre,omitempty" doc:"Book genre"`
	TotalPages int    `json:"total_pages,omitempty" minimum:"0" doc:"Book length in pages"`
	PagesRead  int    `json:"pages_read,omitempty" minimum:"0" doc:"Pages read so far"`
}

// FollowBookInput wraps the follow request for Huma.
type FollowBookInput struct {
	ReaderID string `path:"readerID" doc:"Reader ID"`
	Body     FollowBookRequest
}

// FollowBookOutput wraps the follow result for Huma.
type FollowBookOutput struct {
	Body *service.FollowBookResult
}

// === Handlers ===

func (s *Server) handleCreateReader(ctx context.Context, input *CreateReaderInput) (*ReaderOutput, error) {
	reader, err := s.services.Readers.CreateReader(ctx, service.CreateReaderRequest{
		DisplayName: input.Body.DisplayName,
	})
	if err != nil {
		return nil, err
	}
	return &ReaderOutput{Body: reader}, nil
}

func (s *Server) handleListReaders(ctx context.Context, input *PaginationInput) (*ListReadersOutput, error) {
	page, err := s.services.Readers.ListReaders(ctx, input.params())
	if err != nil {
		return nil, err
	}
	return &ListReadersOutput{Body: page}, nil
}

func (s *Server) handleGetReader(ctx context.Context, input *ReaderPathInput) (*ReaderOutput, error) {
	reader, err := s.services.Readers.GetReader(ctx, input.ReaderID)
	if err != nil {
		return nil, err
	}
	return &ReaderOutput{Body: reader}, nil
}

func (s *Server) handleDeleteReader(ctx context.Context, input *ReaderPathInput) (*struct{}, error) {
	if err := s.services.Readers.DeleteReader(ctx, input.ReaderID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleFollowBook(ctx context.Context, input *FollowBookInput) (*FollowBookOutput, error) {
	res, err := s.services.Readers.FollowBook(ctx, input.ReaderID, service.FollowBookRequest{
		BookID:     input.Body.BookID,
		Title:      input.Body.Title,
		Author:     input.Body.Author,
		Genre:      input.Body.Genre,
		TotalPages: input.Body.TotalPages,
		PagesRead:  input.Body.PagesRead,
	})
	if err != nil {
		return nil, err
	}
	return &FollowBookOutput{Body: res}, nil
}

package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/listenupapp/pagetrail-server/internal/catalog"
	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/search"
	"github.com/listenupapp/pagetrail-server/internal/service"
	"github.com/listenupapp/pagetrail-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create or find book",
		Description: "Returns the catalog book matching title and author (case-insensitive), creating it when absent",
		Tags:        []string{"Books"},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of catalog books ordered by ID",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/search",
		Summary:     "Search books",
		Description: "Full-text search over title and author with genre and page-count filters",
		Tags:        []string{"Books"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "importBooks",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/import",
		Summary:     "Import legacy catalog",
		Description: "Upserts a JSON array of legacy book records. Accepts pagesNumber, totalPage and totalPages.",
		Tags:        []string{"Books"},
	}, s.handleImportBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{bookID}",
		Summary:     "Get book",
		Description: "Returns a catalog book by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{bookID}",
		Summary:     "Update book",
		Description: "Changes catalog metadata. Omitted fields are left as they are.",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)
}

// === DTOs ===

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title      string `json:"title" minLength:"1" maxLength:"500" doc:"Book title"`
	Author     string `json:"author,omitempty" maxLength:"300" doc:"Book author"`
	Genre      string `json:"genre,omitempty" maxLength:"100" doc:"Genre label, canonicalized on save"`
	TotalPages int    `json:"total_pages,omitempty" minimum:"0" doc:"Book length in pages"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// CreateBookResponse returns the book and whether it was created.
type CreateBookResponse struct {
	Book    *domain.Book `json:"book" doc:"Catalog book"`
	Created bool         `json:"created" doc:"False when an existing book matched"`
}

// CreateBookOutput wraps the create book response for Huma.
type CreateBookOutput struct {
	Body CreateBookResponse
}

// BookPathInput identifies a book.
type BookPathInput struct {
	BookID string `path:"bookID" doc:"Book ID"`
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// ListBooksOutput wraps a page of books.
type ListBooksOutput struct {
	Body *store.PaginatedResult[*domain.Book]
}

// SearchBooksInput contains search query parameters.
type SearchBooksInput struct {
	Query    string `query:"q" doc:"Free text matched against title and author"`
	Genre    string `query:"genre" doc:"Genre filter"`
	MinPages int    `query:"min_pages" minimum:"0" doc:"Minimum page count"`
	MaxPages int    `query:"max_pages" minimum:"0" doc:"Maximum page count"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset   int    `query:"offset" minimum:"0" doc:"Result offset"`
}

// SearchBooksOutput wraps search results for Huma.
type SearchBooksOutput struct {
	Body *search.Result
}

// ImportBooksInput carries the raw legacy export. The body is left
// unvalidated by huma; the importer checks each record itself.
type ImportBooksInput struct {
	RawBody []byte
}

// ImportBooksOutput wraps the import report for Huma.
type ImportBooksOutput struct {
	Body *catalog.Report
}

// UpdateBookRequest is the request body for a partial book update.
type UpdateBookRequest struct {
	Title      *string `json:"title,omitempty" doc:"Book title"`
	Author     *string `json:"author,omitempty" doc:"Book author"`
	Genre      *string `json:"genre,omitempty" doc:"Genre label"`
	TotalPages *int    `json:"total_pages,omitempty" doc:"Book length in pages"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	BookID string `path:"bookID" doc:"Book ID"`
	Body   UpdateBookRequest
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*CreateBookOutput, error) {
	book, created, err := s.services.Catalog.FindOrCreateBook(ctx, service.CreateBookRequest{
		Title:      input.Body.Title,
		Author:     input.Body.Author,
		Genre:      input.Body.Genre,
		TotalPages: input.Body.TotalPages,
	})
	if err != nil {
		return nil, err
	}
	return &CreateBookOutput{Body: CreateBookResponse{Book: book, Created: created}}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *PaginationInput) (*ListBooksOutput, error) {
	page, err := s.services.Catalog.ListBooks(ctx, input.params())
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: page}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	res, err := s.services.Catalog.SearchBooks(ctx, search.Params{
		Query:    input.Query,
		Genre:    input.Genre,
		MinPages: input.MinPages,
		MaxPages: input.MaxPages,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchBooksOutput{Body: res}, nil
}

func (s *Server) handleImportBooks(ctx context.Context, input *ImportBooksInput) (*ImportBooksOutput, error) {
	report, err := s.services.Catalog.ImportCatalog(ctx, bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, err
	}
	return &ImportBooksOutput{Body: report}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookPathInput) (*BookOutput, error) {
	book, err := s.services.Catalog.GetBook(ctx, input.BookID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	book, err := s.services.Catalog.UpdateBook(ctx, input.BookID, service.UpdateBookRequest{
		Title:      input.Body.Title,
		Author:     input.Body.Author,
		Genre:      input.Body.Genre,
		TotalPages: input.Body.TotalPages,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

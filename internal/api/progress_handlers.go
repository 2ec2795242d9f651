package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/service"
)

func (s *Server) registerProgressRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "recordProgress",
		Method:      http.MethodPut,
		Path:        "/api/v1/readers/{readerID}/books/{bookID}/progress",
		Summary:     "Record reading progress",
		Description: "Sets pages read for a followed book. Reaching total_pages completes the book, credits points and grants badges.",
		Tags:        []string{"Progress"},
	}, s.handleRecordProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "undoCompletion",
		Method:      http.MethodPost,
		Path:        "/api/v1/readers/{readerID}/books/{bookID}/undo",
		Summary:     "Undo completion",
		Description: "Moves a finished book back to the followed list. Points and badges are kept.",
		Tags:        []string{"Progress"},
	}, s.handleUndoCompletion)
}

// === DTOs ===

// RecordProgressRequest is the request body for a progress update.
type RecordProgressRequest struct {
	PagesRead  int `json:"pages_read" minimum:"0" doc:"Pages read so far"`
	TotalPages int `json:"total_pages" minimum:"1" doc:"Total pages of the book"`
}

// RecordProgressInput wraps the progress request for Huma.
type RecordProgressInput struct {
	ReaderID string `path:"readerID" doc:"Reader ID"`
	BookID   string `path:"bookID" doc:"Book ID"`
	Body     RecordProgressRequest
}

// RecordProgressResponse reports the outcome of a progress update.
type RecordProgressResponse struct {
	Success       bool             `json:"success" doc:"Always true on success"`
	Completed     bool             `json:"completed" doc:"Whether this update finished the book"`
	PointsAwarded int              `json:"points_awarded" doc:"Points credited by this update"`
	NewBadges     []domain.BadgeID `json:"new_badges" doc:"Badges granted by this update"`
	Reader        *domain.Reader   `json:"reader" doc:"Reader after the update"`
}

// RecordProgressOutput wraps the progress response for Huma.
type RecordProgressOutput struct {
	Body RecordProgressResponse
}

// UndoCompletionInput identifies the finished book to undo.
type UndoCompletionInput struct {
	ReaderID string `path:"readerID" doc:"Reader ID"`
	BookID   string `path:"bookID" doc:"Book ID"`
}

// UndoCompletionResponse carries the reader after an undo.
type UndoCompletionResponse struct {
	Success bool           `json:"success" doc:"Always true on success"`
	Reader  *domain.Reader `json:"reader" doc:"Reader after the undo"`
}

// UndoCompletionOutput wraps the undo response for Huma.
type UndoCompletionOutput struct {
	Body UndoCompletionResponse
}

// === Handlers ===

func (s *Server) handleRecordProgress(ctx context.Context, input *RecordProgressInput) (*RecordProgressOutput, error) {
	res, err := s.services.Progress.RecordProgress(ctx, input.ReaderID, service.RecordProgressRequest{
		BookID:     input.BookID,
		PagesRead:  input.Body.PagesRead,
		TotalPages: input.Body.TotalPages,
	})
	if err != nil {
		return nil, err
	}

	return &RecordProgressOutput{
		Body: RecordProgressResponse{
			Success:       true,
			Completed:     res.Completed,
			PointsAwarded: res.PointsAwarded,
			NewBadges:     nonNil(res.NewBadges),
			Reader:        res.Reader,
		},
	}, nil
}

func (s *Server) handleUndoCompletion(ctx context.Context, input *UndoCompletionInput) (*UndoCompletionOutput, error) {
	reader, err := s.services.Progress.UndoCompletion(ctx, input.ReaderID, input.BookID)
	if err != nil {
		return nil, err
	}
	return &UndoCompletionOutput{
		Body: UndoCompletionResponse{Success: true, Reader: reader},
	}, nil
}

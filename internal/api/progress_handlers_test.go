package api

import (
	"net/http"
	"testing"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func progressPath(readerID, bookID string) string {
	return "/api/v1/readers/" + readerID + "/books/" + bookID + "/progress"
}

func TestRecordProgress_CompletesBook(t *testing.T) {
	ts := setupTestServer(t, Options{})
	reader := ts.createReader(t, "Ada")
	book := ts.followByTitle(t, reader.ID, "The Hobbit", "fantasy", 310)

	resp := ts.api.Put(progressPath(reader.ID, book.ID), map[string]any{"pages_read": 100, "total_pages": 310})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	partial := decode[RecordProgressResponse](t, resp.Body.Bytes())
	assert.True(t, partial.Success)
	assert.False(t, partial.Completed)
	assert.Empty(t, partial.NewBadges)

	resp = ts.api.Put(progressPath(reader.ID, book.ID), map[string]any{"pages_read": 310, "total_pages": 310})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	done := decode[RecordProgressResponse](t, resp.Body.Bytes())
	assert.True(t, done.Completed)
	assert.Equal(t, 30, done.PointsAwarded)
	assert.Equal(t, []domain.BadgeID{domain.BadgeReader1, domain.BadgeLongBook}, done.NewBadges)
	assert.Equal(t, 30, done.Reader.Points)

	resp = ts.api.Get("/api/v1/readers/" + reader.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	profile := decode[*domain.Reader](t, resp.Body.Bytes())
	assert.Equal(t, 30, profile.Points)
	require.Len(t, profile.ReadBooks, 1)
	assert.Empty(t, profile.FollowedBooks)
}

func TestRecordProgress_Errors(t *testing.T) {
	ts := setupTestServer(t, Options{})
	reader := ts.createReader(t, "Ada")
	book := ts.followByTitle(t, reader.ID, "Dune", "sci-fi", 412)

	tests := []struct {
		name   string
		path   string
		body   map[string]any
		status int
		code   string
	}{
		{"not followed", progressPath(reader.ID, "book-other"), map[string]any{"pages_read": 1, "total_pages": 10}, http.StatusConflict, "BOOK_NOT_FOLLOWED"},
		{"unknown reader", progressPath("rdr-missing", book.ID), map[string]any{"pages_read": 1, "total_pages": 10}, http.StatusNotFound, "NOT_FOUND"},
		{"pages exceed total", progressPath(reader.ID, book.ID), map[string]any{"pages_read": 500, "total_pages": 412}, http.StatusBadRequest, "VALIDATION"},
		{"missing total", progressPath(reader.ID, book.ID), map[string]any{"pages_read": 5}, http.StatusUnprocessableEntity, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Put(tt.path, tt.body)
			require.Equal(t, tt.status, resp.Code, resp.Body.String())
			apiErr := decode[APIError](t, resp.Body.Bytes())
			assert.Equal(t, tt.code, apiErr.Code)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestUndoCompletion(t *testing.T) {
	ts := setupTestServer(t, Options{})
	reader := ts.createReader(t, "Ada")
	book := ts.followByTitle(t, reader.ID, "Short", "poetry", 140)

	resp := ts.api.Put(progressPath(reader.ID, book.ID), map[string]any{"pages_read": 140, "total_pages": 140})
	require.Equal(t, http.StatusOK, resp.Code)

	undoPath := "/api/v1/readers/" + reader.ID + "/books/" + book.ID + "/undo"
	resp = ts.api.Post(undoPath)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	undone := decode[UndoCompletionResponse](t, resp.Body.Bytes())
	assert.True(t, undone.Success)
	assert.Equal(t, 10, undone.Reader.Points)
	assert.Equal(t, []domain.FollowedBook{{BookID: book.ID}}, undone.Reader.FollowedBooks)

	resp = ts.api.Post(undoPath)
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "BOOK_NOT_IN_READ_LIST", decode[APIError](t, resp.Body.Bytes()).Code)
}

func TestEvaluateBadges(t *testing.T) {
	ts := setupTestServer(t, Options{})
	reader := ts.createReader(t, "Ada")

	resp := ts.api.Post("/api/v1/readers/" + reader.ID + "/badges/evaluate")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decode[EvaluateBadgesResponse](t, resp.Body.Bytes())
	assert.True(t, body.Success)
	assert.Empty(t, body.NewBadges)
}

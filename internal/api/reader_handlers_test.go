package api

import (
	"net/http"
	"testing"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/service"
	"github.com/listenupapp/pagetrail-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReader_Validation(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/readers", map[string]any{"display_name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "VALIDATION", decode[APIError](t, resp.Body.Bytes()).Code)
}

func TestReaderLifecycle(t *testing.T) {
	ts := setupTestServer(t, Options{})
	reader := ts.createReader(t, "Ada")
	ts.createReader(t, "Grace")

	resp := ts.api.Get("/api/v1/readers?limit=1")
	require.Equal(t, http.StatusOK, resp.Code)
	page := decode[store.PaginatedResult[*domain.Reader]](t, resp.Body.Bytes())
	assert.Len(t, page.Items, 1)
	assert.True(t, page.HasMore)

	resp = ts.api.Delete("/api/v1/readers/" + reader.ID)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/readers/" + reader.ID)
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[APIError](t, resp.Body.Bytes()).Code)
}

func TestFollowBook(t *testing.T) {
	ts := setupTestServer(t, Options{})
	reader := ts.createReader(t, "Ada")
	book := ts.followByTitle(t, reader.ID, "Dune", "SF", 412)
	assert.Equal(t, "science-fiction", book.Genre)

	// Same book by id updates the page count.
	resp := ts.api.Post("/api/v1/readers/"+reader.ID+"/books", map[string]any{"book_id": book.ID, "pages_read": 40})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	res := decode[service.FollowBookResult](t, resp.Body.Bytes())
	assert.False(t, res.BookCreated)
	assert.Equal(t, []domain.FollowedBook{{BookID: book.ID, PagesRead: 40}}, res.Reader.FollowedBooks)

	resp = ts.api.Post("/api/v1/readers/"+reader.ID+"/books", map[string]any{"book_id": "book-missing"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/v1/readers/"+reader.ID+"/books", map[string]any{"author": "Nobody"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[APIError](t, resp.Body.Bytes()).Code)
}

func TestFollowBook_AlreadyRead(t *testing.T) {
	ts := setupTestServer(t, Options{})
	reader := ts.createReader(t, "Ada")
	book := ts.followByTitle(t, reader.ID, "Short", "poetry", 50)

	resp := ts.api.Put(progressPath(reader.ID, book.ID), map[string]any{"pages_read": 50, "total_pages": 50})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/readers/"+reader.ID+"/books", map[string]any{"book_id": book.ID})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "BOOK_ALREADY_READ", decode[APIError](t, resp.Body.Bytes()).Code)
}

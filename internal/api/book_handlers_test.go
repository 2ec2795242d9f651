package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/listenupapp/pagetrail-server/internal/catalog"
	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetBook(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/books", map[string]any{"title": "Dune", "author": "Frank Herbert", "total_pages": 412})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	created := decode[CreateBookResponse](t, resp.Body.Bytes())
	assert.True(t, created.Created)

	resp = ts.api.Post("/api/v1/books", map[string]any{"title": "DUNE", "author": "frank herbert"})
	require.Equal(t, http.StatusOK, resp.Code)
	again := decode[CreateBookResponse](t, resp.Body.Bytes())
	assert.False(t, again.Created)
	assert.Equal(t, created.Book.ID, again.Book.ID)

	resp = ts.api.Get("/api/v1/books/" + created.Book.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Dune", decode[*domain.Book](t, resp.Body.Bytes()).Title)

	resp = ts.api.Get("/api/v1/books/book-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/books", map[string]any{"title": "Dune", "author": "Frank Herbert"})
	require.Equal(t, http.StatusOK, resp.Code)
	book := decode[CreateBookResponse](t, resp.Body.Bytes()).Book

	resp = ts.api.Patch("/api/v1/books/"+book.ID, map[string]any{"genre": "Sci-Fi", "total_pages": 412})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[*domain.Book](t, resp.Body.Bytes())
	assert.Equal(t, "science-fiction", updated.Genre)
	assert.Equal(t, 412, updated.TotalPages)
}

func TestSearchBooks(t *testing.T) {
	ts := setupTestServer(t, Options{})

	for _, b := range []map[string]any{
		{"title": "Dune", "author": "Frank Herbert", "genre": "sci-fi", "total_pages": 412},
		{"title": "The Hobbit", "author": "J.R.R. Tolkien", "genre": "fantasy", "total_pages": 310},
	} {
		resp := ts.api.Post("/api/v1/books", b)
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/books/search?q=hobbit")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	res := decode[search.Result](t, resp.Body.Bytes())
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "The Hobbit", res.Hits[0].Title)

	resp = ts.api.Get("/api/v1/books/search?genre=SF")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, uint64(1), decode[search.Result](t, resp.Body.Bytes()).Total)

	resp = ts.api.Get("/api/v1/books/search?min_pages=500&max_pages=100")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestImportBooks(t *testing.T) {
	ts := setupTestServer(t, Options{})

	body := `[
		{"_id": {"$oid": "legacy-1"}, "title": "Dune", "author": "Frank Herbert", "pagesNumber": 412},
		{"title": "Hyperion", "author": "Dan Simmons", "totalPage": 482},
		{"author": "Missing Title"}
	]`
	resp := ts.api.Post("/api/v1/books/import", "Content-Type: application/json", strings.NewReader(body))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	report := decode[catalog.Report](t, resp.Body.Bytes())
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Created)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 2, report.Skipped[0].Index)

	resp = ts.api.Get("/api/v1/books/legacy-1")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 412, decode[*domain.Book](t, resp.Body.Bytes()).TotalPages)
}

func TestImportBooks_AcceptsLegacyExportShapes(t *testing.T) {
	ts := setupTestServer(t, Options{})

	body := `[
		{"_id": {"$oid": "legacy-7"}, "title": "Solaris", "author": "Stanislaw Lem", "genre": "sci-fi", "totalPages": 204},
		{"_id": {"$oid": "legacy-7"}, "title": "Fiasco", "author": "Stanislaw Lem", "totalPages": 322}
	]`
	resp := ts.api.Post("/api/v1/books/import", "Content-Type: application/json", strings.NewReader(body))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	report := decode[catalog.Report](t, resp.Body.Bytes())
	assert.Equal(t, 1, report.Created)
	assert.Zero(t, report.Updated)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Index)

	resp = ts.api.Get("/api/v1/books/legacy-7")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Solaris", decode[*domain.Book](t, resp.Body.Bytes()).Title)
}

func TestImportBooks_RejectsNonArray(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/books/import", "Content-Type: application/json", strings.NewReader(`{"title": "Dune"}`))
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

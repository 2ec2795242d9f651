package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	domainerrors "github.com/listenupapp/pagetrail-server/internal/errors"
	"github.com/listenupapp/pagetrail-server/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateBook_FillsMissingMetadata(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	book, created, err := ts.catalog.FindOrCreateBook(ctx, CreateBookRequest{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, book.Genre)

	again, created, err := ts.catalog.FindOrCreateBook(ctx, CreateBookRequest{
		Title: " DUNE ", Author: "frank herbert", Genre: "SF", TotalPages: 412,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, book.ID, again.ID)
	assert.Equal(t, "science-fiction", again.Genre)
	assert.Equal(t, 412, again.TotalPages)
	assert.Equal(t, "Dune", again.Title, "title is not overwritten")

	// Known metadata is never replaced by a later find.
	third, _, err := ts.catalog.FindOrCreateBook(ctx, CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Genre: "poetry", TotalPages: 10})
	require.NoError(t, err)
	assert.Equal(t, "science-fiction", third.Genre)
	assert.Equal(t, 412, third.TotalPages)
}

func TestFindOrCreateBook_RequiresTitle(t *testing.T) {
	ts := setupServices(t)

	_, _, err := ts.catalog.FindOrCreateBook(context.Background(), CreateBookRequest{Author: "Anonymous"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUpdateBook_Partial(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	book, _, err := ts.catalog.FindOrCreateBook(ctx, CreateBookRequest{Title: "Dune", Author: "Frank Herbert", TotalPages: 400})
	require.NoError(t, err)

	pages := 412
	updated, err := ts.catalog.UpdateBook(ctx, book.ID, UpdateBookRequest{TotalPages: &pages})
	require.NoError(t, err)
	assert.Equal(t, 412, updated.TotalPages)
	assert.Equal(t, "Dune", updated.Title)

	res, err := ts.catalog.SearchBooks(ctx, search.Params{MinPages: 410})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, 412, res.Hits[0].TotalPages)

	_, err = ts.catalog.UpdateBook(ctx, "book-missing", UpdateBookRequest{TotalPages: &pages})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSearchBooks(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	for _, req := range []CreateBookRequest{
		{Title: "Dune", Author: "Frank Herbert", Genre: "sci-fi", TotalPages: 412},
		{Title: "Hyperion", Author: "Dan Simmons", Genre: "Science Fiction", TotalPages: 482},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "fantasy", TotalPages: 310},
	} {
		_, _, err := ts.catalog.FindOrCreateBook(ctx, req)
		require.NoError(t, err)
	}

	res, err := ts.catalog.SearchBooks(ctx, search.Params{Query: "hobbit"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "The Hobbit", res.Hits[0].Title)

	res, err = ts.catalog.SearchBooks(ctx, search.Params{Genre: "SciFi"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Total)

	_, err = ts.catalog.SearchBooks(ctx, search.Params{MinPages: 500, MaxPages: 100})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestImportCatalog(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	report, err := ts.catalog.ImportCatalog(ctx, strings.NewReader(`[
		{"_id": "legacy-1", "title": "Dune", "author": "Frank Herbert", "genre": "sci-fi", "pagesNumber": 412},
		{"title": "Hyperion", "author": "Dan Simmons", "totalPage": 482}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)

	book, err := ts.catalog.GetBook(ctx, "legacy-1")
	require.NoError(t, err)
	assert.Equal(t, 412, book.TotalPages)

	res, err := ts.catalog.SearchBooks(ctx, search.Params{Query: "hyperion"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Total)
}

func TestReindexAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, s.CreateBook(ctx, &domain.Book{
			ID:         fmt.Sprintf("book-%d", i),
			Title:      fmt.Sprintf("Stored %d", i),
			TotalPages: 100 + i,
			CreatedAt:  testNow,
			UpdatedAt:  testNow,
		}))
	}

	ts := newTestServices(t, s)

	n, err := ts.catalog.ReindexAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	count, err := ts.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)

	n, err = ts.catalog.ReindexAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "index already in step")
}

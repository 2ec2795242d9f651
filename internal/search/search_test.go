package search

import (
	"context"
	"testing"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededIndex(t *testing.T) *BookIndex {
	t.Helper()
	idx, err := NewMemoryIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	now := time.Now()
	books := []*domain.Book{
		{ID: "book-1", Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "fantasy", TotalPages: 310, CreatedAt: now},
		{ID: "book-2", Title: "The Fellowship of the Ring", Author: "J.R.R. Tolkien", Genre: "fantasy", TotalPages: 423, CreatedAt: now},
		{ID: "book-3", Title: "Dune", Author: "Frank Herbert", Genre: "science-fiction", TotalPages: 412, CreatedAt: now},
		{ID: "book-4", Title: "Le Petit Prince", Author: "Antoine de Saint-Exupery", Genre: "fiction", TotalPages: 96, CreatedAt: now},
	}
	docs := make([]*BookDocument, len(books))
	for i, b := range books {
		docs[i] = BookToDocument(b)
	}
	require.NoError(t, idx.IndexBooks(docs))
	return idx
}

func hitIDs(res *Result) []string {
	ids := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestSearch_ByTitle(t *testing.T) {
	idx := seededIndex(t)

	res, err := idx.Search(context.Background(), Params{Query: "hobbit"})
	require.NoError(t, err)

	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "book-1", res.Hits[0].ID)
	assert.Equal(t, "The Hobbit", res.Hits[0].Title)
	assert.Equal(t, 310, res.Hits[0].TotalPages)
}

func TestSearch_ByAuthor(t *testing.T) {
	idx := seededIndex(t)

	res, err := idx.Search(context.Background(), Params{Query: "tolkien"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"book-1", "book-2"}, hitIDs(res))
}

func TestSearch_TitlePrefix(t *testing.T) {
	idx := seededIndex(t)

	res, err := idx.Search(context.Background(), Params{Query: "fellow"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "book-2")
}

func TestSearch_GenreFilterAndFacets(t *testing.T) {
	idx := seededIndex(t)

	res, err := idx.Search(context.Background(), Params{Genre: "fantasy"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"book-1", "book-2"}, hitIDs(res))

	all, err := idx.Search(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), all.Total)
	require.NotEmpty(t, all.Genres)
	assert.Equal(t, FacetCount{Value: "fantasy", Count: 2}, all.Genres[0])
}

func TestSearch_PageRange(t *testing.T) {
	idx := seededIndex(t)

	res, err := idx.Search(context.Background(), Params{MinPages: 301})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"book-1", "book-2", "book-3"}, hitIDs(res))

	res, err = idx.Search(context.Background(), Params{MaxPages: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"book-4"}, hitIDs(res))
}

func TestDeleteAndRebuild(t *testing.T) {
	idx := seededIndex(t)

	require.NoError(t, idx.DeleteBook("book-3"))
	n, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	require.NoError(t, idx.Rebuild())
	n, err = idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestNewBookIndex_OnDisk(t *testing.T) {
	dir := t.TempDir()

	idx, err := NewBookIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, idx.IndexBook(&BookDocument{ID: "book-1", Title: "Dune", Genre: "science-fiction", TotalPages: 412}))
	require.NoError(t, idx.Close())

	idx, err = NewBookIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer idx.Close()

	n, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

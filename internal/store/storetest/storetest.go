// Package storetest holds the behavioral suite every store backend must pass.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/errors"
	"github.com/listenupapp/pagetrail-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory opens a fresh, empty store for one test.
type Factory func(t *testing.T) store.Store

var base = time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC)

// Run executes the suite against stores produced by open.
func Run(t *testing.T, open Factory) {
	t.Run("ReaderRoundTrip", func(t *testing.T) { testReaderRoundTrip(t, open(t)) })
	t.Run("ReaderNotFound", func(t *testing.T) { testReaderNotFound(t, open(t)) })
	t.Run("CreateReaderTwice", func(t *testing.T) { testCreateReaderTwice(t, open(t)) })
	t.Run("SaveReplacesLists", func(t *testing.T) { testSaveReplacesLists(t, open(t)) })
	t.Run("DeleteReader", func(t *testing.T) { testDeleteReader(t, open(t)) })
	t.Run("ListReadersPaginates", func(t *testing.T) { testListReadersPaginates(t, open(t)) })
	t.Run("BookRoundTrip", func(t *testing.T) { testBookRoundTrip(t, open(t)) })
	t.Run("FindBookByTitleAuthor", func(t *testing.T) { testFindBookByTitleAuthor(t, open(t)) })
	t.Run("ResolveBooksOmitsMissing", func(t *testing.T) { testResolveBooks(t, open(t)) })
	t.Run("ListBooks", func(t *testing.T) { testListBooks(t, open(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, open(t).Ping(context.Background())) })
}

func sampleReader(id string) *domain.Reader {
	r := domain.NewReader(id, "Reader "+id, base)
	r.Points = 50
	r.FollowedBooks = []domain.FollowedBook{{BookID: "book-b", PagesRead: 12}, {BookID: "book-a", PagesRead: 0}}
	r.ReadBooks = []domain.ReadBook{
		{BookID: "book-c", FinishedAt: base.Add(time.Hour)},
		{BookID: "book-d", FinishedAt: base.Add(2 * time.Hour)},
	}
	r.Badges = []domain.BadgeAward{
		{BadgeID: domain.BadgeReader1, AwardedAt: base.Add(time.Hour)},
		{BadgeID: domain.BadgeLongBook, AwardedAt: base.Add(2 * time.Hour)},
	}
	return r
}

func sampleBook(id, title, author, genre string, pages int) *domain.Book {
	return &domain.Book{
		ID:         id,
		Title:      title,
		Author:     author,
		Genre:      genre,
		TotalPages: pages,
		CreatedAt:  base,
		UpdatedAt:  base,
	}
}

func assertSameReader(t *testing.T, want, got *domain.Reader) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.DisplayName, got.DisplayName)
	assert.Equal(t, want.Points, got.Points)
	assert.Equal(t, want.FollowedBooks, got.FollowedBooks)
	require.Len(t, got.ReadBooks, len(want.ReadBooks))
	for i := range want.ReadBooks {
		assert.Equal(t, want.ReadBooks[i].BookID, got.ReadBooks[i].BookID)
		assert.True(t, want.ReadBooks[i].FinishedAt.Equal(got.ReadBooks[i].FinishedAt))
	}
	assert.Equal(t, want.BadgeIDs(), got.BadgeIDs())
	for i := range want.Badges {
		assert.True(t, want.Badges[i].AwardedAt.Equal(got.Badges[i].AwardedAt))
	}
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func testReaderRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	r := sampleReader("rdr-1")

	require.NoError(t, s.CreateReader(ctx, r))

	got, err := s.GetReader(ctx, "rdr-1")
	require.NoError(t, err)
	assertSameReader(t, r, got)
}

func testReaderNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetReader(ctx, "rdr-missing")
	assert.ErrorIs(t, err, store.ErrReaderNotFound)

	err = s.SaveReader(ctx, sampleReader("rdr-missing"))
	assert.ErrorIs(t, err, store.ErrReaderNotFound)

	err = s.DeleteReader(ctx, "rdr-missing")
	assert.ErrorIs(t, err, store.ErrReaderNotFound)
}

func testCreateReaderTwice(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateReader(ctx, sampleReader("rdr-1")))

	err := s.CreateReader(ctx, sampleReader("rdr-1"))
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
}

func testSaveReplacesLists(t *testing.T, s store.Store) {
	ctx := context.Background()
	r := sampleReader("rdr-1")
	require.NoError(t, s.CreateReader(ctx, r))

	next, err := r.WithCompletion("book-b", 20, base.Add(3*time.Hour))
	require.NoError(t, err)
	next = next.WithBadges([]domain.BadgeID{domain.BadgeGenre3}, base.Add(3*time.Hour))
	require.NoError(t, s.SaveReader(ctx, next))

	got, err := s.GetReader(ctx, "rdr-1")
	require.NoError(t, err)
	assertSameReader(t, next, got)
	assert.Equal(t, 70, got.Points)
	assert.Equal(t, []domain.FollowedBook{{BookID: "book-a", PagesRead: 0}}, got.FollowedBooks)

	undone, err := got.WithUndoneCompletion("book-c", base.Add(4*time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.SaveReader(ctx, undone))

	got, err = s.GetReader(ctx, "rdr-1")
	require.NoError(t, err)
	assertSameReader(t, undone, got)
}

func testDeleteReader(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateReader(ctx, sampleReader("rdr-1")))

	require.NoError(t, s.DeleteReader(ctx, "rdr-1"))

	_, err := s.GetReader(ctx, "rdr-1")
	assert.ErrorIs(t, err, store.ErrReaderNotFound)

	// The id can be reused once deleted.
	require.NoError(t, s.CreateReader(ctx, domain.NewReader("rdr-1", "Again", base)))
	got, err := s.GetReader(ctx, "rdr-1")
	require.NoError(t, err)
	assert.Empty(t, got.ReadBooks)
	assert.Empty(t, got.Badges)
}

func testListReadersPaginates(t *testing.T, s store.Store) {
	ctx := context.Background()
	for i := range 5 {
		require.NoError(t, s.CreateReader(ctx, domain.NewReader(fmt.Sprintf("rdr-%d", i), "R", base)))
	}

	var ids []string
	params := store.PaginationParams{Limit: 2}
	for {
		page, err := s.ListReaders(ctx, params)
		require.NoError(t, err)
		for _, r := range page.Items {
			ids = append(ids, r.ID)
		}
		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}

	assert.Equal(t, []string{"rdr-0", "rdr-1", "rdr-2", "rdr-3", "rdr-4"}, ids)
}

func testBookRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	b := sampleBook("book-1", "Dune", "Frank Herbert", "science-fiction", 412)
	require.NoError(t, s.CreateBook(ctx, b))

	got, err := s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, b.Title, got.Title)
	assert.Equal(t, b.Genre, got.Genre)
	assert.Equal(t, 412, got.TotalPages)

	got.Genre = "classics"
	got.TotalPages = 420
	require.NoError(t, s.UpdateBook(ctx, got))

	again, err := s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "classics", again.Genre)
	assert.Equal(t, 420, again.TotalPages)

	_, err = s.GetBook(ctx, "book-missing")
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	err = s.UpdateBook(ctx, sampleBook("book-missing", "x", "y", "", 1))
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	err = s.CreateBook(ctx, b)
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
}

func testFindBookByTitleAuthor(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateBook(ctx, sampleBook("book-1", "The Left Hand of Darkness", "Ursula K. Le Guin", "science-fiction", 304)))

	got, err := s.FindBookByTitleAuthor(ctx, "the left hand of DARKNESS", " ursula k. le guin ")
	require.NoError(t, err)
	assert.Equal(t, "book-1", got.ID)

	_, err = s.FindBookByTitleAuthor(ctx, "The Left Hand of Darkness", "Someone Else")
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	dup := sampleBook("book-2", "THE LEFT HAND OF DARKNESS", "Ursula K. Le Guin", "", 300)
	assert.ErrorIs(t, s.CreateBook(ctx, dup), errors.ErrAlreadyExists)
}

func testResolveBooks(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateBook(ctx, sampleBook("book-1", "A", "X", "fantasy", 310)))
	require.NoError(t, s.CreateBook(ctx, sampleBook("book-2", "B", "Y", "", 90)))

	refs, err := s.ResolveBooks(ctx, []string{"book-1", "book-2", "book-ghost", "book-1"})
	require.NoError(t, err)

	assert.Len(t, refs, 2)
	assert.Equal(t, domain.BookRef{BookID: "book-1", Genre: "fantasy", TotalPages: 310}, refs["book-1"])
	assert.Equal(t, domain.BookRef{BookID: "book-2", Genre: "", TotalPages: 90}, refs["book-2"])

	empty, err := s.ResolveBooks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testListBooks(t *testing.T, s store.Store) {
	ctx := context.Background()
	for i := range 3 {
		require.NoError(t, s.CreateBook(ctx, sampleBook(fmt.Sprintf("book-%d", i), fmt.Sprintf("T%d", i), "A", "", 100)))
	}

	n, err := s.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := s.ListBooks(ctx, store.PaginationParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	rest, err := s.ListBooks(ctx, store.PaginationParams{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "book-2", rest.Items[0].ID)
	assert.False(t, rest.HasMore)
}

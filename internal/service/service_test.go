package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/search"
	"github.com/listenupapp/pagetrail-server/internal/store"
	"github.com/listenupapp/pagetrail-server/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type testServices struct {
	store    store.Store
	index    *search.BookIndex
	progress *ProgressService
	readers  *ReaderService
	catalog  *CatalogService
}

// faultyStore fails selected operations on top of a real store.
type faultyStore struct {
	store.Store
	saveErr    error
	resolveErr error
}

func (f *faultyStore) SaveReader(ctx context.Context, r *domain.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Store.SaveReader(ctx, r)
}

func (f *faultyStore) ResolveBooks(ctx context.Context, ids []string) (map[string]domain.BookRef, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.Store.ResolveBooks(ctx, ids)
}

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestServices(t *testing.T, s store.Store) *testServices {
	t.Helper()

	idx, err := search.NewMemoryIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locks := NewReaderLocks()

	cat := NewCatalogService(s, idx, logger)
	cat.now = fixedClock
	readers := NewReaderService(s, cat, locks, logger)
	readers.now = fixedClock
	prog := NewProgressService(s, s, locks, logger)
	prog.now = fixedClock

	return &testServices{store: s, index: idx, progress: prog, readers: readers, catalog: cat}
}

func setupServices(t *testing.T) *testServices {
	t.Helper()
	return newTestServices(t, openTestStore(t))
}

func (ts *testServices) createReader(t *testing.T, name string) *domain.Reader {
	t.Helper()
	r, err := ts.readers.CreateReader(context.Background(), CreateReaderRequest{DisplayName: name})
	require.NoError(t, err)
	return r
}

func (ts *testServices) follow(t *testing.T, readerID, title, genre string, pages int) *domain.Book {
	t.Helper()
	res, err := ts.readers.FollowBook(context.Background(), readerID, FollowBookRequest{
		Title:      title,
		Author:     "Test Author",
		Genre:      genre,
		TotalPages: pages,
	})
	require.NoError(t, err)
	return res.Book
}

// Package badger implements store.Store on an embedded Badger key-value
// database, storing each aggregate as one JSON value.
package badger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/store"
)

// Key prefixes.
const (
	readerPrefix = "reader:"
	bookPrefix   = "book:"

	bookMatchIndex = "match"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	readers *Entity[domain.Reader]
	books   *Entity[domain.Book]
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	return open(opts, logger)
}

// OpenInMemory opens a non-persistent database, for tests and dry runs.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
		readers: newEntity(db, readerPrefix, store.ErrReaderNotFound,
			func(r *domain.Reader) string { return r.ID }),
		books: newEntity(db, bookPrefix, store.ErrBookNotFound,
			func(b *domain.Book) string { return b.ID }).
			withIndex(bookMatchIndex, func(b *domain.Book) string { return b.MatchKey() }),
	}

	if logger != nil {
		logger.Info("Badger database opened", "path", opts.Dir, "in_memory", opts.InMemory)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return badger.ErrDBClosed
	}
	return nil
}

// Package store defines the persistence contracts for readers and the book
// catalog. Implementations live in the sqlite and badger subpackages.
package store

import (
	"context"

	"github.com/listenupapp/pagetrail-server/internal/domain"
)

// ReaderStore loads and saves reader aggregates.
//
// GetReader returns ErrReaderNotFound for unknown ids. SaveReader replaces
// the stored aggregate atomically; a failure leaves the previous version
// intact and is reported as a PERSISTENCE_FAILURE error.
type ReaderStore interface {
	CreateReader(ctx context.Context, reader *domain.Reader) error
	GetReader(ctx context.Context, id string) (*domain.Reader, error)
	SaveReader(ctx context.Context, reader *domain.Reader) error
	DeleteReader(ctx context.Context, id string) error
	ListReaders(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Reader], error)
}

// BookCatalog resolves book ids to the metadata badge rules need.
// Unknown ids are absent from the result rather than an error.
type BookCatalog interface {
	ResolveBooks(ctx context.Context, ids []string) (map[string]domain.BookRef, error)
}

// BookStore persists catalog records.
type BookStore interface {
	BookCatalog

	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	// FindBookByTitleAuthor matches on domain.BookMatchKey.
	FindBookByTitleAuthor(ctx context.Context, title, author string) (*domain.Book, error)
	ListBooks(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Book], error)
	CountBooks(ctx context.Context) (int, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	ReaderStore
	BookStore

	Ping(ctx context.Context) error
	Close() error
}

package badger

import (
	"context"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/store"
)

// CreateBook stores a catalog record. Title+author must be unique.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	return store.Persistence(s.books.Create(ctx, book), "create book")
}

// GetBook loads a book. Returns store.ErrBookNotFound if absent.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	b, err := s.books.Get(ctx, id)
	if err != nil {
		return nil, store.Persistence(err, "load book")
	}
	return b, nil
}

// UpdateBook overwrites an existing catalog record.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	return store.Persistence(s.books.Update(ctx, book), "update book")
}

// FindBookByTitleAuthor looks the book up through the match-key index.
func (s *Store) FindBookByTitleAuthor(ctx context.Context, title, author string) (*domain.Book, error) {
	b, err := s.books.GetByIndex(ctx, bookMatchIndex, domain.BookMatchKey(title, author))
	if err != nil {
		return nil, store.Persistence(err, "find book")
	}
	return b, nil
}

// ListBooks returns one page of books ordered by id.
func (s *Store) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	params.Validate()
	after, err := params.After()
	if err != nil {
		return nil, err
	}

	books, err := s.books.Page(ctx, after, params.Limit)
	if err != nil {
		return nil, store.Persistence(err, "list books")
	}
	return store.Page(books, params.Limit, func(b *domain.Book) string { return b.ID }), nil
}

// CountBooks returns the catalog size.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	n, err := s.books.Count(ctx)
	if err != nil {
		return 0, store.Persistence(err, "count books")
	}
	return n, nil
}

// ResolveBooks loads genre and page count for ids in one read transaction.
func (s *Store) ResolveBooks(ctx context.Context, ids []string) (map[string]domain.BookRef, error) {
	books, err := s.books.GetMany(ctx, ids)
	if err != nil {
		return nil, store.Persistence(err, "resolve books")
	}
	out := make(map[string]domain.BookRef, len(books))
	for id, b := range books {
		out[id] = b.Ref()
	}
	return out, nil
}

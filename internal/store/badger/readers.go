package badger

import (
	"context"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/store"
)

// CreateReader stores a new reader.
func (s *Store) CreateReader(ctx context.Context, reader *domain.Reader) error {
	return store.Persistence(s.readers.Create(ctx, reader), "create reader")
}

// GetReader loads a reader. Returns store.ErrReaderNotFound if absent.
func (s *Store) GetReader(ctx context.Context, id string) (*domain.Reader, error) {
	r, err := s.readers.Get(ctx, id)
	if err != nil {
		return nil, store.Persistence(err, "load reader")
	}
	return r, nil
}

// SaveReader replaces the stored aggregate. The single-key write is atomic.
func (s *Store) SaveReader(ctx context.Context, reader *domain.Reader) error {
	return store.Persistence(s.readers.Update(ctx, reader), "save reader")
}

// DeleteReader removes a reader.
func (s *Store) DeleteReader(ctx context.Context, id string) error {
	return store.Persistence(s.readers.Delete(ctx, id), "delete reader")
}

// ListReaders returns one page of readers ordered by id.
func (s *Store) ListReaders(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Reader], error) {
	params.Validate()
	after, err := params.After()
	if err != nil {
		return nil, err
	}

	readers, err := s.readers.Page(ctx, after, params.Limit)
	if err != nil {
		return nil, store.Persistence(err, "list readers")
	}
	return store.Page(readers, params.Limit, func(r *domain.Reader) string { return r.ID }), nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/errors"
	"github.com/listenupapp/pagetrail-server/internal/id"
	"github.com/listenupapp/pagetrail-server/internal/store"
	"github.com/listenupapp/pagetrail-server/internal/validation"
)

// ReaderService manages reader profiles and the followed-book list.
type ReaderService struct {
	readers   store.ReaderStore
	catalog   *CatalogService
	locks     *ReaderLocks
	logger    *slog.Logger
	validator *validation.Validator
	now       func() time.Time
}

// NewReaderService creates a reader service.
func NewReaderService(readers store.ReaderStore, catalog *CatalogService, locks *ReaderLocks, logger *slog.Logger) *ReaderService {
	return &ReaderService{
		readers:   readers,
		catalog:   catalog,
		locks:     locks,
		logger:    logger,
		validator: validation.New(),
		now:       time.Now,
	}
}

// CreateReaderRequest contains the fields for a new reader.
type CreateReaderRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// CreateReader creates a reader with no points, badges or books.
func (s *ReaderService) CreateReader(ctx context.Context, req CreateReaderRequest) (*domain.Reader, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	readerID, err := id.Generate(id.PrefixReader)
	if err != nil {
		return nil, fmt.Errorf("generate reader ID: %w", err)
	}

	reader := domain.NewReader(readerID, req.DisplayName, s.now())
	if err := s.readers.CreateReader(ctx, reader); err != nil {
		return nil, err
	}

	s.logger.Info("reader created", "reader_id", reader.ID)
	return reader, nil
}

// GetReader returns a reader profile.
func (s *ReaderService) GetReader(ctx context.Context, readerID string) (*domain.Reader, error) {
	return s.readers.GetReader(ctx, readerID)
}

// ListReaders returns a page of readers ordered by id.
func (s *ReaderService) ListReaders(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Reader], error) {
	return s.readers.ListReaders(ctx, params)
}

// DeleteReader removes a reader and all of its lists.
func (s *ReaderService) DeleteReader(ctx context.Context, readerID string) error {
	unlock := s.locks.Lock(readerID)
	defer unlock()

	if err := s.readers.DeleteReader(ctx, readerID); err != nil {
		return err
	}
	s.logger.Info("reader deleted", "reader_id", readerID)
	return nil
}

// FollowBookRequest starts following a book. Either BookID references a
// catalog entry or Title (with Author, Genre, TotalPages) describes one to
// find or create.
type FollowBookRequest struct {
	BookID     string `json:"book_id,omitempty" validate:"required_without=Title,excluded_with=Title"`
	Title      string `json:"title,omitempty" validate:"required_without=BookID,max=500"`
	Author     string `json:"author,omitempty" validate:"max=300"`
	Genre      string `json:"genre,omitempty" validate:"max=100"`
	TotalPages int    `json:"total_pages,omitempty" validate:"gte=0"`
	PagesRead  int    `json:"pages_read" validate:"gte=0"`
}

// FollowBookResult is the reader after following, plus the followed book.
type FollowBookResult struct {
	Reader      *domain.Reader `json:"reader"`
	Book        *domain.Book   `json:"book"`
	BookCreated bool           `json:"book_created"`
}

// FollowBook adds a book to the reader's followed list, or updates the page
// count when it is already followed. Finished books are rejected with
// BOOK_ALREADY_READ.
func (s *ReaderService) FollowBook(ctx context.Context, readerID string, req FollowBookRequest) (*FollowBookResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		book    *domain.Book
		created bool
		err     error
	)
	if req.BookID != "" {
		book, err = s.catalog.GetBook(ctx, req.BookID)
	} else {
		book, created, err = s.catalog.FindOrCreateBook(ctx, CreateBookRequest{
			Title:      req.Title,
			Author:     req.Author,
			Genre:      req.Genre,
			TotalPages: req.TotalPages,
		})
	}
	if err != nil {
		return nil, err
	}
	if book.TotalPages > 0 && req.PagesRead > book.TotalPages {
		return nil, errors.ValidationWithDetails("validation failed", map[string]string{
			"pages_read": fmt.Sprintf("must not exceed %d", book.TotalPages),
		})
	}

	unlock := s.locks.Lock(readerID)
	defer unlock()

	reader, err := s.readers.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}

	next, err := reader.Follow(book.ID, req.PagesRead, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.readers.SaveReader(ctx, next); err != nil {
		return nil, err
	}

	s.logger.Info("book followed", "reader_id", readerID, "book_id", book.ID, "pages_read", req.PagesRead)
	return &FollowBookResult{Reader: next, Book: book, BookCreated: created}, nil
}

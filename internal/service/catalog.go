package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/catalog"
	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/errors"
	"github.com/listenupapp/pagetrail-server/internal/genre"
	"github.com/listenupapp/pagetrail-server/internal/id"
	"github.com/listenupapp/pagetrail-server/internal/search"
	"github.com/listenupapp/pagetrail-server/internal/store"
	"github.com/listenupapp/pagetrail-server/internal/validation"
)

// CatalogService manages book records and keeps the search index in step
// with the store.
type CatalogService struct {
	books     store.BookStore
	index     *search.BookIndex
	importer  *catalog.Importer
	logger    *slog.Logger
	validator *validation.Validator
	now       func() time.Time
}

// NewCatalogService creates a catalog service. index may be nil, in which
// case search is unavailable.
func NewCatalogService(books store.BookStore, index *search.BookIndex, logger *slog.Logger) *CatalogService {
	var indexer catalog.Indexer
	if index != nil {
		indexer = index
	}
	return &CatalogService{
		books:     books,
		index:     index,
		importer:  catalog.NewImporter(books, indexer, logger),
		logger:    logger,
		validator: validation.New(),
		now:       time.Now,
	}
}

// CreateBookRequest describes a catalog entry.
type CreateBookRequest struct {
	Title      string `json:"title" validate:"required,max=500"`
	Author     string `json:"author" validate:"max=300"`
	Genre      string `json:"genre" validate:"max=100"`
	TotalPages int    `json:"total_pages" validate:"gte=0"`
}

// FindOrCreateBook returns the book matching title and author
// (case-insensitive) or creates it. Metadata missing on an existing book is
// filled in from the request. The bool reports whether a book was created.
func (s *CatalogService) FindOrCreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, bool, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if err := s.validator.Validate(req); err != nil {
		return nil, false, err
	}

	existing, err := s.books.FindBookByTitleAuthor(ctx, req.Title, req.Author)
	switch {
	case err == nil:
		book, err := s.fillMissing(ctx, existing, req)
		return book, false, err
	case !errors.Is(err, errors.ErrNotFound):
		return nil, false, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, false, fmt.Errorf("generate book ID: %w", err)
	}

	now := s.now()
	book := &domain.Book{
		ID:         bookID,
		Title:      req.Title,
		Author:     req.Author,
		Genre:      genre.Canonical(req.Genre),
		TotalPages: req.TotalPages,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.books.CreateBook(ctx, book); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			// Lost a race with a concurrent create of the same title+author.
			existing, findErr := s.books.FindBookByTitleAuthor(ctx, req.Title, req.Author)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	s.indexBook(book)

	s.logger.Info("book created", "book_id", book.ID, "title", book.Title)
	return book, true, nil
}

func (s *CatalogService) fillMissing(ctx context.Context, book *domain.Book, req CreateBookRequest) (*domain.Book, error) {
	g := genre.Canonical(req.Genre)
	if (book.Genre != "" || g == "") && (book.TotalPages > 0 || req.TotalPages == 0) {
		return book, nil
	}

	updated := *book
	if updated.Genre == "" {
		updated.Genre = g
	}
	if updated.TotalPages == 0 {
		updated.TotalPages = req.TotalPages
	}
	updated.UpdatedAt = s.now()
	if err := s.books.UpdateBook(ctx, &updated); err != nil {
		return nil, err
	}
	s.indexBook(&updated)
	return &updated, nil
}

// UpdateBookRequest changes catalog metadata. Nil fields are left as they are.
type UpdateBookRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Author     *string `json:"author,omitempty" validate:"omitempty,max=300"`
	Genre      *string `json:"genre,omitempty" validate:"omitempty,max=100"`
	TotalPages *int    `json:"total_pages,omitempty" validate:"omitempty,gte=0"`
}

// UpdateBook applies a partial metadata update.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		book.Author = strings.TrimSpace(*req.Author)
	}
	if req.Genre != nil {
		book.Genre = genre.Canonical(*req.Genre)
	}
	if req.TotalPages != nil {
		book.TotalPages = *req.TotalPages
	}
	book.UpdatedAt = s.now()

	if err := s.books.UpdateBook(ctx, book); err != nil {
		return nil, err
	}
	s.indexBook(book)

	s.logger.Info("book updated", "book_id", book.ID)
	return book, nil
}

// GetBook returns a book by id.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.books.GetBook(ctx, bookID)
}

// ListBooks returns a page of books ordered by id.
func (s *CatalogService) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	return s.books.ListBooks(ctx, params)
}

// SearchBooks runs a full-text query against the catalog index.
func (s *CatalogService) SearchBooks(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.index == nil {
		return nil, errors.Internal("search index is not available")
	}
	if params.MinPages < 0 || params.MaxPages < 0 {
		return nil, errors.Validation("page bounds must not be negative")
	}
	if params.MaxPages > 0 && params.MinPages > params.MaxPages {
		return nil, errors.Validation("min_pages must not exceed max_pages")
	}
	params.Genre = genre.Canonical(params.Genre)
	return s.index.Search(ctx, params)
}

// ImportCatalog upserts a legacy JSON catalog export.
func (s *CatalogService) ImportCatalog(ctx context.Context, r io.Reader) (*catalog.Report, error) {
	return s.importer.Import(ctx, r)
}

// ImportCatalogFile imports the legacy catalog at path.
func (s *CatalogService) ImportCatalogFile(ctx context.Context, path string) (*catalog.Report, error) {
	return s.importer.ImportFile(ctx, path)
}

// ReindexAll rebuilds the search index from the store when the index holds
// fewer documents than the store. It returns the number of books indexed.
func (s *CatalogService) ReindexAll(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}

	stored, err := s.books.CountBooks(ctx)
	if err != nil {
		return 0, err
	}
	indexed, err := s.index.DocumentCount()
	if err != nil {
		return 0, fmt.Errorf("count indexed books: %w", err)
	}
	if uint64(stored) <= indexed {
		return 0, nil
	}

	params := store.PaginationParams{Limit: store.MaxPageLimit}
	total := 0
	for {
		page, err := s.books.ListBooks(ctx, params)
		if err != nil {
			return total, err
		}
		docs := make([]*search.BookDocument, len(page.Items))
		for i, b := range page.Items {
			docs[i] = search.BookToDocument(b)
		}
		if err := s.index.IndexBooks(docs); err != nil {
			return total, fmt.Errorf("index books: %w", err)
		}
		total += len(docs)
		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}

	s.logger.Info("search index rebuilt from store", "books", total)
	return total, nil
}

// indexBook is best effort: the store is the source of truth and ReindexAll
// repairs drift on the next start.
func (s *CatalogService) indexBook(book *domain.Book) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexBook(search.BookToDocument(book)); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/errors"
	"github.com/listenupapp/pagetrail-server/internal/id"
	"github.com/listenupapp/pagetrail-server/internal/search"
	"golang.org/x/sync/errgroup"
)

// importConcurrency bounds parallel store writes during an import.
const importConcurrency = 4

// BookWriter is the catalog persistence the importer needs.
type BookWriter interface {
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	FindBookByTitleAuthor(ctx context.Context, title, author string) (*domain.Book, error)
	CreateBook(ctx context.Context, book *domain.Book) error
	UpdateBook(ctx context.Context, book *domain.Book) error
}

// Indexer receives imported books for full-text search.
type Indexer interface {
	IndexBooks(docs []*search.BookDocument) error
}

// Skipped describes a record the import did not apply.
type Skipped struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Report summarizes an import run.
type Report struct {
	RunID     string    `json:"run_id"`
	Total     int       `json:"total"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Unchanged int       `json:"unchanged"`
	Skipped   []Skipped `json:"skipped"`
}

// Importer upserts legacy catalog records into the store.
type Importer struct {
	books   BookWriter
	indexer Indexer
	logger  *slog.Logger
	now     func() time.Time
}

// NewImporter creates an importer. indexer may be nil.
func NewImporter(books BookWriter, indexer Indexer, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{books: books, indexer: indexer, logger: logger, now: time.Now}
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeUnchanged
)

// Import reads a JSON array of legacy book records and upserts each one.
// Records are matched by legacy id first, then by title+author. Invalid
// and duplicate records are reported, not fatal; a store failure aborts
// the run.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Report, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, errors.Validationf("catalog must be a JSON array of records: %v", err)
	}

	report := &Report{RunID: uuid.NewString(), Total: len(raws), Skipped: []Skipped{}}
	log := im.logger.With("import_run", report.RunID)

	records := make([]*Record, 0, len(raws))
	// Records are upserted concurrently, so two records may not share
	// either identity.
	seenKeys := make(map[string]int, len(raws))
	seenIDs := make(map[string]int, len(raws))
	for i, raw := range raws {
		rec, err := NormalizeRecord(raw)
		if err != nil {
			report.Skipped = append(report.Skipped, Skipped{Index: i, Reason: err.Error()})
			continue
		}
		key := domain.BookMatchKey(rec.Title, rec.Author)
		first, dup := seenKeys[key]
		if !dup && rec.ID != "" {
			first, dup = seenIDs[rec.ID]
		}
		if dup {
			report.Skipped = append(report.Skipped, Skipped{
				Index:  i,
				Reason: fmt.Sprintf("duplicate of record %d", first),
			})
			continue
		}
		seenKeys[key] = i
		if rec.ID != "" {
			seenIDs[rec.ID] = i
		}
		records = append(records, rec)
	}

	var (
		mu      sync.Mutex
		touched []*search.BookDocument
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)
	for _, rec := range records {
		g.Go(func() error {
			book, result, err := im.upsert(gctx, rec)
			if err != nil {
				return fmt.Errorf("import %q: %w", rec.Title, err)
			}

			mu.Lock()
			defer mu.Unlock()
			switch result {
			case outcomeCreated:
				report.Created++
			case outcomeUpdated:
				report.Updated++
			case outcomeUnchanged:
				report.Unchanged++
				return nil
			}
			touched = append(touched, search.BookToDocument(book))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("catalog import failed", "error", err)
		return nil, err
	}

	if im.indexer != nil && len(touched) > 0 {
		if err := im.indexer.IndexBooks(touched); err != nil {
			log.Warn("failed to index imported books", "count", len(touched), "error", err)
		}
	}

	log.Info("catalog import finished",
		"total", report.Total,
		"created", report.Created,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"skipped", len(report.Skipped),
	)
	return report, nil
}

func (im *Importer) upsert(ctx context.Context, rec *Record) (*domain.Book, outcome, error) {
	existing, err := im.lookup(ctx, rec)
	if err != nil {
		return nil, 0, err
	}

	now := im.now()
	if existing == nil {
		book := &domain.Book{
			ID:         rec.ID,
			Title:      rec.Title,
			Author:     rec.Author,
			Genre:      rec.Genre,
			TotalPages: rec.TotalPages,
			CreatedAt:  rec.CreatedAt,
			UpdatedAt:  now,
		}
		if book.ID == "" {
			if book.ID, err = id.Generate(id.PrefixBook); err != nil {
				return nil, 0, err
			}
		}
		if book.CreatedAt.IsZero() {
			book.CreatedAt = now
		}
		if err := im.books.CreateBook(ctx, book); err != nil {
			return nil, 0, err
		}
		return book, outcomeCreated, nil
	}

	// Fill in metadata; never blank out known values.
	updated := *existing
	updated.Title = rec.Title
	updated.Author = rec.Author
	if rec.Genre != "" {
		updated.Genre = rec.Genre
	}
	if rec.TotalPages > 0 {
		updated.TotalPages = rec.TotalPages
	}
	if updated.Title == existing.Title && updated.Author == existing.Author &&
		updated.Genre == existing.Genre && updated.TotalPages == existing.TotalPages {
		return existing, outcomeUnchanged, nil
	}

	updated.UpdatedAt = now
	if err := im.books.UpdateBook(ctx, &updated); err != nil {
		return nil, 0, err
	}
	return &updated, outcomeUpdated, nil
}

func (im *Importer) lookup(ctx context.Context, rec *Record) (*domain.Book, error) {
	if rec.ID != "" {
		b, err := im.books.GetBook(ctx, rec.ID)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	b, err := im.books.FindBookByTitleAuthor(ctx, rec.Title, rec.Author)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil
	}
	return b, err
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/badge"
	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/progress"
	"github.com/listenupapp/pagetrail-server/internal/store"
	"github.com/listenupapp/pagetrail-server/internal/validation"
)

// ProgressService loads a reader, applies a progress operation and saves the
// result. Operations on one reader are serialized; nothing is saved when the
// operation fails.
type ProgressService struct {
	readers   store.ReaderStore
	tracker   *progress.Tracker
	locks     *ReaderLocks
	logger    *slog.Logger
	validator *validation.Validator
	now       func() time.Time
}

// NewProgressService creates a progress service. Badge rules resolve book
// metadata through catalog.
func NewProgressService(readers store.ReaderStore, catalog store.BookCatalog, locks *ReaderLocks, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		readers:   readers,
		tracker:   progress.NewTracker(badge.NewEvaluator(catalog)),
		locks:     locks,
		logger:    logger,
		validator: validation.New(),
		now:       time.Now,
	}
}

// RecordProgressRequest is a page-count update for one followed book.
type RecordProgressRequest struct {
	BookID     string `json:"book_id" validate:"required"`
	PagesRead  int    `json:"pages_read" validate:"gte=0,ltefield=TotalPages"`
	TotalPages int    `json:"total_pages" validate:"gt=0"`
}

// RecordProgress records pages read. When PagesRead reaches TotalPages the
// book is completed, points are credited and new badges are granted.
func (s *ProgressService) RecordProgress(ctx context.Context, readerID string, req RecordProgressRequest) (*progress.Result, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(readerID)
	defer unlock()

	reader, err := s.readers.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}

	result, err := s.tracker.RecordProgress(ctx, reader, req.BookID, req.PagesRead, req.TotalPages, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.readers.SaveReader(ctx, result.Reader); err != nil {
		return nil, err
	}

	if result.Completed {
		s.logger.Info("book completed",
			"reader_id", readerID,
			"book_id", req.BookID,
			"points_awarded", result.PointsAwarded,
			"new_badges", result.NewBadges,
			"points", result.Reader.Points,
		)
	} else {
		s.logger.Debug("progress recorded",
			"reader_id", readerID,
			"book_id", req.BookID,
			"pages_read", req.PagesRead,
			"total_pages", req.TotalPages,
		)
	}

	return result, nil
}

// UndoCompletion moves a finished book back to the followed list. Points and
// badges are kept.
func (s *ProgressService) UndoCompletion(ctx context.Context, readerID, bookID string) (*domain.Reader, error) {
	unlock := s.locks.Lock(readerID)
	defer unlock()

	reader, err := s.readers.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}

	next, err := s.tracker.UndoCompletion(reader, bookID, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.readers.SaveReader(ctx, next); err != nil {
		return nil, err
	}

	s.logger.Info("completion undone", "reader_id", readerID, "book_id", bookID)
	return next, nil
}

// EvaluateBadges re-runs badge evaluation for a reader and saves any new
// awards. Useful after catalog metadata has been filled in.
func (s *ProgressService) EvaluateBadges(ctx context.Context, readerID string) (*domain.Reader, []domain.BadgeID, error) {
	unlock := s.locks.Lock(readerID)
	defer unlock()

	reader, err := s.readers.GetReader(ctx, readerID)
	if err != nil {
		return nil, nil, err
	}

	next, earned, err := s.tracker.Reevaluate(ctx, reader, s.now())
	if err != nil {
		return nil, nil, fmt.Errorf("evaluate badges: %w", err)
	}
	if len(earned) == 0 {
		return reader, earned, nil
	}

	if err := s.readers.SaveReader(ctx, next); err != nil {
		return nil, nil, err
	}

	s.logger.Info("badges granted on re-evaluation", "reader_id", readerID, "new_badges", earned)
	return next, earned, nil
}

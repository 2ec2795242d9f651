// Package progress moves books through a reader's followed and read lists
// and grants points and badges when a book is finished.
package progress

import (
	"context"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/domain"
)

// BadgeEvaluator computes the badges a reader newly qualifies for.
type BadgeEvaluator interface {
	Evaluate(ctx context.Context, reader *domain.Reader, now time.Time) ([]domain.BadgeID, error)
}

// Result is the outcome of a progress update.
type Result struct {
	Reader        *domain.Reader
	Completed     bool
	PointsAwarded int
	NewBadges     []domain.BadgeID
}

// Tracker applies progress updates to a reader. It assumes exclusive access
// to the reader for the duration of a call and never mutates its input.
type Tracker struct {
	badges BadgeEvaluator
}

// NewTracker creates a tracker backed by the given evaluator.
func NewTracker(badges BadgeEvaluator) *Tracker {
	return &Tracker{badges: badges}
}

// RecordProgress records pagesRead for a followed book. Reaching totalPages
// completes the book: it moves to the read list, earns points by length and
// triggers badge evaluation. On error the returned result is nil and reader
// is unchanged.
func (t *Tracker) RecordProgress(ctx context.Context, reader *domain.Reader, bookID string, pagesRead, totalPages int, now time.Time) (*Result, error) {
	if pagesRead != totalPages {
		next, err := reader.WithPagesRead(bookID, pagesRead, now)
		if err != nil {
			return nil, err
		}
		return &Result{Reader: next}, nil
	}

	points := domain.PointsForPages(totalPages)
	next, err := reader.WithCompletion(bookID, points, now)
	if err != nil {
		return nil, err
	}

	earned, err := t.badges.Evaluate(ctx, next, now)
	if err != nil {
		return nil, err
	}
	next = next.WithBadges(earned, now)

	return &Result{
		Reader:        next,
		Completed:     true,
		PointsAwarded: points,
		NewBadges:     earned,
	}, nil
}

// UndoCompletion moves a finished book back to the followed list with zero
// pages read. Points and badges already granted are kept.
func (t *Tracker) UndoCompletion(reader *domain.Reader, bookID string, now time.Time) (*domain.Reader, error) {
	return reader.WithUndoneCompletion(bookID, now)
}

// Reevaluate runs badge evaluation without any list change, for when catalog
// metadata has changed since the last completion.
func (t *Tracker) Reevaluate(ctx context.Context, reader *domain.Reader, now time.Time) (*domain.Reader, []domain.BadgeID, error) {
	earned, err := t.badges.Evaluate(ctx, reader, now)
	if err != nil {
		return nil, nil, err
	}
	return reader.WithBadges(earned, now), earned, nil
}

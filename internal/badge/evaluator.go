// Package badge decides which achievement badges a reader has newly earned.
package badge

import (
	"context"
	"fmt"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/genre"
)

// Catalog resolves book ids to the metadata badge rules need.
// Ids unknown to the catalog are absent from the result.
type Catalog interface {
	ResolveBooks(ctx context.Context, ids []string) (map[string]domain.BookRef, error)
}

// History is the view of a reader a rule evaluates.
type History struct {
	Reader *domain.Reader
	// Books holds catalog metadata for the reader's read books. Missing
	// entries are books the catalog does not know.
	Books map[string]domain.BookRef
	Now   time.Time
}

// Rule is a single badge predicate.
type Rule struct {
	Badge     domain.BadgeID
	Satisfied func(h *History) bool
}

// Evaluator checks a reader's history against the badge rules.
type Evaluator struct {
	catalog Catalog
	rules   []Rule
}

// NewEvaluator creates an evaluator with the default rule set.
func NewEvaluator(catalog Catalog) *Evaluator {
	return &Evaluator{catalog: catalog, rules: DefaultRules()}
}

// Evaluate returns the badges whose conditions hold at now and which the
// reader does not already hold, in rule order. The catalog is queried once
// for every read book; nothing is queried when the reader has read nothing.
func (e *Evaluator) Evaluate(ctx context.Context, reader *domain.Reader, now time.Time) ([]domain.BadgeID, error) {
	h := &History{Reader: reader, Now: now}

	if len(reader.ReadBooks) > 0 {
		books, err := e.catalog.ResolveBooks(ctx, reader.ReadBookIDs())
		if err != nil {
			return nil, fmt.Errorf("resolve read books: %w", err)
		}
		h.Books = books
	}

	var earned []domain.BadgeID
	for _, rule := range e.rules {
		if reader.HasBadge(rule.Badge) {
			continue
		}
		if rule.Satisfied(h) {
			earned = append(earned, rule.Badge)
		}
	}
	return earned, nil
}

// DistinctGenres counts the distinct known genres across read books.
func (h *History) DistinctGenres() int {
	labels := make([]string, 0, len(h.Reader.ReadBooks))
	for _, rb := range h.Reader.ReadBooks {
		if ref, ok := h.Books[rb.BookID]; ok {
			labels = append(labels, ref.Genre)
		}
	}
	return genre.Distinct(labels)
}

// FinishedSince counts read books finished at or after cutoff.
func (h *History) FinishedSince(cutoff time.Time) int {
	n := 0
	for _, rb := range h.Reader.ReadBooks {
		if !rb.FinishedAt.Before(cutoff) {
			n++
		}
	}
	return n
}

// LastFinished returns catalog metadata for the most recently appended read
// book, if the catalog knows it.
func (h *History) LastFinished() (domain.BookRef, bool) {
	if len(h.Reader.ReadBooks) == 0 {
		return domain.BookRef{}, false
	}
	ref, ok := h.Books[h.Reader.ReadBooks[len(h.Reader.ReadBooks)-1].BookID]
	return ref, ok
}

package domain

import (
	"slices"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/errors"
)

// FollowedBook is a book the reader is currently reading.
type FollowedBook struct {
	BookID    string `json:"book_id"`
	PagesRead int    `json:"pages_read"`
}

// ReadBook is a finished book. FinishedAt drives the time-window badges.
type ReadBook struct {
	BookID     string    `json:"book_id"`
	FinishedAt time.Time `json:"finished_at"`
}

// Reader is the aggregate the progress tracker and badge evaluator work on.
//
// A book id appears in at most one of FollowedBooks and ReadBooks.
// ReadBooks is ordered by completion (append order). Badges are never
// removed and never duplicated; Points never decrease.
type Reader struct {
	ID            string         `json:"id"`
	DisplayName   string         `json:"display_name"`
	Points        int            `json:"points"`
	Badges        []BadgeAward   `json:"badges"`
	FollowedBooks []FollowedBook `json:"followed_books"`
	ReadBooks     []ReadBook     `json:"read_books"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewReader creates an empty reader.
func NewReader(id, displayName string, now time.Time) *Reader {
	return &Reader{
		ID:            id,
		DisplayName:   displayName,
		Badges:        []BadgeAward{},
		FollowedBooks: []FollowedBook{},
		ReadBooks:     []ReadBook{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Clone returns a deep copy whose lists share no backing arrays with r.
func (r *Reader) Clone() *Reader {
	c := *r
	c.Badges = slices.Clone(r.Badges)
	c.FollowedBooks = slices.Clone(r.FollowedBooks)
	c.ReadBooks = slices.Clone(r.ReadBooks)
	return &c
}

// FollowedIndex returns the position of bookID in FollowedBooks, or -1.
func (r *Reader) FollowedIndex(bookID string) int {
	return slices.IndexFunc(r.FollowedBooks, func(f FollowedBook) bool { return f.BookID == bookID })
}

// ReadIndex returns the position of bookID in ReadBooks, or -1.
func (r *Reader) ReadIndex(bookID string) int {
	return slices.IndexFunc(r.ReadBooks, func(b ReadBook) bool { return b.BookID == bookID })
}

// HasBadge reports whether the reader already holds id.
func (r *Reader) HasBadge(id BadgeID) bool {
	return slices.ContainsFunc(r.Badges, func(a BadgeAward) bool { return a.BadgeID == id })
}

// BadgeIDs projects the awards to their ids in grant order.
func (r *Reader) BadgeIDs() []BadgeID {
	ids := make([]BadgeID, len(r.Badges))
	for i, a := range r.Badges {
		ids[i] = a.BadgeID
	}
	return ids
}

// ReadBookIDs returns the ids of finished books in completion order.
func (r *Reader) ReadBookIDs() []string {
	ids := make([]string, len(r.ReadBooks))
	for i, b := range r.ReadBooks {
		ids[i] = b.BookID
	}
	return ids
}

// Follow starts following bookID, or updates its page count if it is
// already followed. A finished book cannot be followed again.
func (r *Reader) Follow(bookID string, pagesRead int, now time.Time) (*Reader, error) {
	if r.ReadIndex(bookID) >= 0 {
		return nil, errors.BookAlreadyReadf("book %s is already in the read list", bookID)
	}

	next := r.Clone()
	if idx := next.FollowedIndex(bookID); idx >= 0 {
		next.FollowedBooks[idx].PagesRead = pagesRead
	} else {
		next.FollowedBooks = append(next.FollowedBooks, FollowedBook{BookID: bookID, PagesRead: pagesRead})
	}
	next.UpdatedAt = now
	return next, nil
}

// WithPagesRead replaces the page count of a followed book.
func (r *Reader) WithPagesRead(bookID string, pagesRead int, now time.Time) (*Reader, error) {
	idx := r.FollowedIndex(bookID)
	if idx < 0 {
		return nil, errors.BookNotFollowedf("book %s is not followed", bookID)
	}

	next := r.Clone()
	next.FollowedBooks[idx].PagesRead = pagesRead
	next.UpdatedAt = now
	return next, nil
}

// WithCompletion moves a followed book to the end of the read list and
// credits points.
func (r *Reader) WithCompletion(bookID string, points int, now time.Time) (*Reader, error) {
	idx := r.FollowedIndex(bookID)
	if idx < 0 {
		return nil, errors.BookNotFollowedf("book %s is not followed", bookID)
	}

	next := r.Clone()
	next.FollowedBooks = slices.Delete(next.FollowedBooks, idx, idx+1)
	next.ReadBooks = append(next.ReadBooks, ReadBook{BookID: bookID, FinishedAt: now})
	next.Points += points
	next.UpdatedAt = now
	return next, nil
}

// WithUndoneCompletion moves a read book back to the followed list with zero
// pages read. Points and badges are left as they are.
func (r *Reader) WithUndoneCompletion(bookID string, now time.Time) (*Reader, error) {
	idx := r.ReadIndex(bookID)
	if idx < 0 {
		return nil, errors.BookNotInReadListf("book %s is not in the read list", bookID)
	}

	next := r.Clone()
	next.ReadBooks = slices.Delete(next.ReadBooks, idx, idx+1)
	next.FollowedBooks = append(next.FollowedBooks, FollowedBook{BookID: bookID, PagesRead: 0})
	next.UpdatedAt = now
	return next, nil
}

// WithBadges appends the ids not already held, stamped with now.
func (r *Reader) WithBadges(ids []BadgeID, now time.Time) *Reader {
	next := r.Clone()
	for _, id := range ids {
		if next.HasBadge(id) {
			continue
		}
		next.Badges = append(next.Badges, BadgeAward{BadgeID: id, AwardedAt: now})
	}
	if len(next.Badges) != len(r.Badges) {
		next.UpdatedAt = now
	}
	return next
}

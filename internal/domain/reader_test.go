package domain

import (
	"testing"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

func readerWith(followed []FollowedBook, read []ReadBook) *Reader {
	r := NewReader("rdr-1", "Ada", testNow.Add(-time.Hour))
	r.FollowedBooks = followed
	r.ReadBooks = read
	return r
}

func TestNewReader(t *testing.T) {
	r := NewReader("rdr-1", "Ada", testNow)

	assert.Equal(t, 0, r.Points)
	assert.Empty(t, r.Badges)
	assert.Empty(t, r.FollowedBooks)
	assert.Empty(t, r.ReadBooks)
	assert.Equal(t, testNow, r.CreatedAt)
}

func TestReader_CloneIsIndependent(t *testing.T) {
	r := readerWith([]FollowedBook{{BookID: "a", PagesRead: 3}}, nil)
	c := r.Clone()

	c.FollowedBooks[0].PagesRead = 99
	c.Badges = append(c.Badges, BadgeAward{BadgeID: BadgeReader1})

	assert.Equal(t, 3, r.FollowedBooks[0].PagesRead)
	assert.Empty(t, r.Badges)
}

func TestReader_Follow(t *testing.T) {
	r := readerWith(nil, []ReadBook{{BookID: "done", FinishedAt: testNow}})

	next, err := r.Follow("new", 12, testNow)
	require.NoError(t, err)
	assert.Equal(t, []FollowedBook{{BookID: "new", PagesRead: 12}}, next.FollowedBooks)
	assert.Empty(t, r.FollowedBooks, "input is not mutated")

	again, err := next.Follow("new", 40, testNow)
	require.NoError(t, err)
	assert.Equal(t, []FollowedBook{{BookID: "new", PagesRead: 40}}, again.FollowedBooks)

	_, err = r.Follow("done", 0, testNow)
	assert.ErrorIs(t, err, errors.ErrBookAlreadyRead)
}

func TestReader_WithCompletion(t *testing.T) {
	r := readerWith([]FollowedBook{{BookID: "a", PagesRead: 10}, {BookID: "b", PagesRead: 5}}, nil)

	next, err := r.WithCompletion("a", 20, testNow)
	require.NoError(t, err)

	assert.Equal(t, []FollowedBook{{BookID: "b", PagesRead: 5}}, next.FollowedBooks)
	assert.Equal(t, []ReadBook{{BookID: "a", FinishedAt: testNow}}, next.ReadBooks)
	assert.Equal(t, 20, next.Points)
	assert.Equal(t, testNow, next.UpdatedAt)

	assert.Len(t, r.FollowedBooks, 2, "input is not mutated")
	assert.Empty(t, r.ReadBooks)
	assert.Equal(t, 0, r.Points)
}

func TestReader_WithCompletion_NotFollowed(t *testing.T) {
	r := readerWith(nil, nil)

	_, err := r.WithCompletion("ghost", 10, testNow)
	assert.ErrorIs(t, err, errors.ErrBookNotFollowed)
}

func TestReader_WithUndoneCompletion(t *testing.T) {
	r := readerWith(nil, []ReadBook{{BookID: "a", FinishedAt: testNow}})
	r.Points = 30
	r.Badges = []BadgeAward{{BadgeID: BadgeReader1, AwardedAt: testNow}}

	next, err := r.WithUndoneCompletion("a", testNow)
	require.NoError(t, err)

	assert.Empty(t, next.ReadBooks)
	assert.Equal(t, []FollowedBook{{BookID: "a", PagesRead: 0}}, next.FollowedBooks)
	assert.Equal(t, 30, next.Points)
	assert.Equal(t, []BadgeID{BadgeReader1}, next.BadgeIDs())

	_, err = next.WithUndoneCompletion("a", testNow)
	assert.ErrorIs(t, err, errors.ErrBookNotInReadList)
}

func TestReader_WithBadgesSkipsHeld(t *testing.T) {
	r := readerWith(nil, nil)
	r.Badges = []BadgeAward{{BadgeID: BadgeReader1, AwardedAt: testNow.Add(-time.Hour)}}

	next := r.WithBadges([]BadgeID{BadgeReader1, BadgeGenre3}, testNow)

	assert.Equal(t, []BadgeID{BadgeReader1, BadgeGenre3}, next.BadgeIDs())
	assert.Equal(t, testNow.Add(-time.Hour), next.Badges[0].AwardedAt)
	assert.Equal(t, testNow, next.Badges[1].AwardedAt)
}

func TestPointsForPages(t *testing.T) {
	tests := []struct {
		pages int
		want  int
	}{
		{1, 10},
		{140, 10},
		{149, 10},
		{150, 20},
		{300, 20},
		{301, 30},
		{310, 30},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PointsForPages(tt.pages), "pages=%d", tt.pages)
	}
}

func TestBookMatchKey(t *testing.T) {
	a := Book{Title: "  The Hobbit ", Author: "J.R.R.  Tolkien"}
	b := Book{Title: "the hobbit", Author: "j.r.r. tolkien"}

	assert.Equal(t, a.MatchKey(), b.MatchKey())
	assert.NotEqual(t, BookMatchKey("ab", "c"), BookMatchKey("a", "bc"))
}

func TestLookupBadge(t *testing.T) {
	d, ok := LookupBadge(BadgeLongBook)
	require.True(t, ok)
	assert.Equal(t, BadgeLongBook, d.ID)

	_, ok = LookupBadge("nope")
	assert.False(t, ok)
	assert.Len(t, BadgeDefinitions, 9)
}

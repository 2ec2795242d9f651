package badge

import "github.com/listenupapp/pagetrail-server/internal/domain"

// LongBookPages is the page count a book must exceed for the long-book badge.
const LongBookPages = 300

// DefaultRules returns the badge rules in the order badges are granted.
//
// Count badges fire on an exact count, so they are granted on the
// completion that reaches the threshold. Window badges use calendar
// arithmetic from now with an inclusive lower bound.
func DefaultRules() []Rule {
	return []Rule{
		{domain.BadgeReader1, readCountIs(1)},
		{domain.BadgeReader5, readCountIs(5)},
		{domain.BadgeReader20, readCountIs(20)},
		{domain.BadgeGenre3, genresAtLeast(3)},
		{domain.BadgeGenre5, genresAtLeast(5)},
		{domain.BadgeFiveInTwoWeeks, finishedWithin(0, 0, -14, 5)},
		{domain.BadgeTenInMonth, finishedWithin(0, -1, 0, 10)},
		{domain.BadgeThirtyInYear, finishedWithin(-1, 0, 0, 30)},
		{domain.BadgeLongBook, lastBookLongerThan(LongBookPages)},
	}
}

func readCountIs(n int) func(*History) bool {
	return func(h *History) bool {
		return len(h.Reader.ReadBooks) == n
	}
}

func genresAtLeast(n int) func(*History) bool {
	return func(h *History) bool {
		return h.DistinctGenres() >= n
	}
}

func finishedWithin(years, months, days, n int) func(*History) bool {
	return func(h *History) bool {
		return h.FinishedSince(h.Now.AddDate(years, months, days)) >= n
	}
}

func lastBookLongerThan(pages int) func(*History) bool {
	return func(h *History) bool {
		ref, ok := h.LastFinished()
		return ok && ref.TotalPages > pages
	}
}

package domain

import "time"

// BadgeID identifies an achievement badge.
type BadgeID string

// Badge identifiers, in evaluation order.
const (
	BadgeReader1        BadgeID = "reader_1"
	BadgeReader5        BadgeID = "reader_5"
	BadgeReader20       BadgeID = "reader_20"
	BadgeGenre3         BadgeID = "genre_3"
	BadgeGenre5         BadgeID = "genre_5"
	BadgeFiveInTwoWeeks BadgeID = "5_books_2_weeks"
	BadgeTenInMonth     BadgeID = "10_books_month"
	BadgeThirtyInYear   BadgeID = "30_books_year"
	BadgeLongBook       BadgeID = "300_pages_book"
)

// BadgeAward records when a badge was granted.
type BadgeAward struct {
	BadgeID   BadgeID   `json:"badge_id"`
	AwardedAt time.Time `json:"awarded_at"`
}

// BadgeDefinition describes a badge for display.
type BadgeDefinition struct {
	ID          BadgeID `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

// BadgeDefinitions lists every badge in evaluation order.
var BadgeDefinitions = []BadgeDefinition{
	{BadgeReader1, "First Chapter", "Finish your first book."},
	{BadgeReader5, "Bookworm", "Finish five books."},
	{BadgeReader20, "Bibliophile", "Finish twenty books."},
	{BadgeGenre3, "Explorer", "Finish books in three different genres."},
	{BadgeGenre5, "Globetrotter", "Finish books in five different genres."},
	{BadgeFiveInTwoWeeks, "Sprinter", "Finish five books within two weeks."},
	{BadgeTenInMonth, "Marathoner", "Finish ten books within a month."},
	{BadgeThirtyInYear, "Devourer", "Finish thirty books within a year."},
	{BadgeLongBook, "Heavyweight", "Finish a book longer than 300 pages."},
}

// LookupBadge returns the definition for id.
func LookupBadge(id BadgeID) (BadgeDefinition, bool) {
	for _, d := range BadgeDefinitions {
		if d.ID == id {
			return d, true
		}
	}
	return BadgeDefinition{}, false
}

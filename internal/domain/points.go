package domain

// Point awards by book length.
const (
	PointsShortBook  = 10 // under 150 pages
	PointsMediumBook = 20 // 150 to 300 pages
	PointsLongBook   = 30 // over 300 pages
)

// PointsForPages returns the points for finishing a book of totalPages.
func PointsForPages(totalPages int) int {
	switch {
	case totalPages < 150:
		return PointsShortBook
	case totalPages <= 300:
		return PointsMediumBook
	default:
		return PointsLongBook
	}
}

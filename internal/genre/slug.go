// Package genre canonicalizes free-form genre labels so that "Sci-Fi",
// "science fiction" and "Science Fiction" count as one genre.
package genre

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a label to a lowercase hyphenated slug.
// "Science Fiction" -> "science-fiction".
// "Policier/Thriller" -> "policier-thriller".
// "Romance Épique" -> "romance-epique".
func Slugify(s string) string {
	// Decompose accented characters, then drop the combining marks.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

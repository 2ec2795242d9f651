package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Science Fiction", "science-fiction"},
		{"Policier/Thriller", "policier-thriller"},
		{"Romance Épique", "romance-epique"},
		{"  --Fantasy--  ", "fantasy"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sci-Fi", "science-fiction"},
		{"science fiction", "science-fiction"},
		{"Fantastique", "fantasy"},
		{"Poésie", "poetry"},
		{"Cozy Mystery", "cozy-mystery"},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in))
		})
	}
}

func TestCanonical_Idempotent(t *testing.T) {
	for alias := range aliases {
		c := Canonical(alias)
		assert.Equal(t, c, Canonical(c), "canonical form of %q must be stable", alias)
	}
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, 0, Distinct(nil))
	assert.Equal(t, 1, Distinct([]string{"Sci-Fi", "science fiction", "SF"}))
	assert.Equal(t, 3, Distinct([]string{"fantasy", "", "mystery", "polar", "poetry"}))
}

func TestDistinct_EmptyGenresAreNotCounted(t *testing.T) {
	assert.Equal(t, 0, Distinct([]string{"", "  ", ""}))
	assert.Equal(t, 2, Distinct([]string{"", "sci-fi", "", "science-fiction", "fantasy"}))
}

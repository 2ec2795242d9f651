package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaginationParams(t *testing.T) {
	params := DefaultPaginationParams()
	assert.Equal(t, 100, params.Limit)
	assert.Empty(t, params.Cursor)
}

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name          string
		input         PaginationParams
		expectedLimit int
	}{
		{name: "valid parameters", input: PaginationParams{Limit: 50}, expectedLimit: 50},
		{name: "zero limit defaults", input: PaginationParams{Limit: 0}, expectedLimit: 100},
		{name: "negative limit defaults", input: PaginationParams{Limit: -10}, expectedLimit: 100},
		{name: "limit over max is capped", input: PaginationParams{Limit: 5000}, expectedLimit: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.input
			params.Validate()
			assert.Equal(t, tt.expectedLimit, params.Limit)
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := EncodeCursor("rdr-abc")
	got, err := DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, "rdr-abc", got)

	assert.Empty(t, EncodeCursor(""))

	_, err = DecodeCursor("%%%")
	assert.Error(t, err)
}

func TestPage(t *testing.T) {
	id := func(s string) string { return s }

	res := Page([]string{"a", "b", "c"}, 2, id)
	assert.Equal(t, []string{"a", "b"}, res.Items)
	assert.True(t, res.HasMore)
	after, err := DecodeCursor(res.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, "b", after)

	res = Page([]string{"a"}, 2, id)
	assert.False(t, res.HasMore)
	assert.Empty(t, res.NextCursor)

	res = Page[string](nil, 2, id)
	assert.NotNil(t, res.Items)
}

func TestPersistence(t *testing.T) {
	assert.Nil(t, Persistence(nil, "op"))
	assert.Equal(t, ErrReaderNotFound, Persistence(ErrReaderNotFound, "op"))
}

package store

import (
	"encoding/base64"
	"fmt"
)

// Pagination limits.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// PaginationParams selects one page of an id-ordered listing.
type PaginationParams struct {
	Limit  int    // Items per page (defaults to 100, capped at 1000)
	Cursor string // Opaque cursor from the previous page (empty for first page)
}

// PaginatedResult contains one page and the cursor for the next.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"` // Empty if no more pages
	HasMore    bool   `json:"has_more"`
}

// DefaultPaginationParams returns the first page with the default limit.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Limit: DefaultPageLimit}
}

// Validate clamps the limit into range.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

// After decodes the cursor into the last id of the previous page.
func (p *PaginationParams) After() (string, error) {
	return DecodeCursor(p.Cursor)
}

// EncodeCursor creates an opaque cursor from the last id on a page.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor decodes a cursor back to an id.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}

	return string(decoded), nil
}

// Page trims items fetched with limit+1 to a page and sets the cursor.
func Page[T any](items []T, limit int, idOf func(T) string) *PaginatedResult[T] {
	res := &PaginatedResult[T]{Items: items}
	if len(items) > limit {
		res.Items = items[:limit]
		res.HasMore = true
		res.NextCursor = EncodeCursor(idOf(res.Items[limit-1]))
	}
	if res.Items == nil {
		res.Items = []T{}
	}
	return res
}

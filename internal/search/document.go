// Package search provides full-text search over the book catalog using Bleve.
package search

import (
	"github.com/listenupapp/pagetrail-server/internal/domain"
)

// BookDocument is the indexed form of a catalog book.
type BookDocument struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Genre      string `json:"genre"`
	TotalPages int    `json:"total_pages"`
}

// BookToDocument converts a catalog record to its search document.
func BookToDocument(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Genre:      b.Genre,
		TotalPages: b.TotalPages,
	}
}

// ToMap converts the document to the field names used by the mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"type":        "book",
		"title":       d.Title,
		"author":      d.Author,
		"genre":       d.Genre,
		"total_pages": float64(d.TotalPages),
	}
}

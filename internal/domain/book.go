package domain

import (
	"strings"
	"time"
)

// Book is a catalog record. Genre holds the canonical genre slug.
type Book struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Genre      string    `json:"genre"`
	TotalPages int       `json:"total_pages"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookRef is the read-only projection the badge evaluator needs.
// Genre is empty and TotalPages zero when unknown.
type BookRef struct {
	BookID     string `json:"book_id"`
	Genre      string `json:"genre"`
	TotalPages int    `json:"total_pages"`
}

// Ref projects the book to a BookRef.
func (b *Book) Ref() BookRef {
	return BookRef{BookID: b.ID, Genre: b.Genre, TotalPages: b.TotalPages}
}

// MatchKey returns the case-insensitive title+author identity used to find
// an existing book before creating a new one.
func (b *Book) MatchKey() string {
	return BookMatchKey(b.Title, b.Author)
}

// BookMatchKey normalizes a title and author into a lookup key.
func BookMatchKey(title, author string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " ")) + "\x00" +
		strings.ToLower(strings.Join(strings.Fields(author), " "))
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/store"
)

// resolveChunk bounds the number of ids bound into one IN clause.
const resolveChunk = 500

const bookColumns = `id, title, author, genre, total_pages, created_at, updated_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b                    domain.Book
		createdAt, updatedAt string
	)
	if err := scanner.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.TotalPages, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook inserts a catalog record.
// Returns store.ErrAlreadyExists if the id or the title+author pair is taken.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, author, match_key, genre, total_pages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		book.Author,
		book.MatchKey(),
		book.Genre,
		book.TotalPages,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return store.Persistence(err, "create book")
}

// GetBook retrieves a book by id.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, store.Persistence(err, "load book")
	}
	return b, nil
}

// UpdateBook overwrites an existing catalog record.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, author = ?, match_key = ?, genre = ?, total_pages = ?, updated_at = ?
		WHERE id = ?`,
		book.Title,
		book.Author,
		book.MatchKey(),
		book.Genre,
		book.TotalPages,
		formatTime(book.UpdatedAt),
		book.ID,
	)
	if err != nil {
		return store.Persistence(err, "update book")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Persistence(err, "update book")
	}
	if n == 0 {
		return store.ErrBookNotFound
	}
	return nil
}

// FindBookByTitleAuthor returns the book whose title and author match
// case-insensitively.
func (s *Store) FindBookByTitleAuthor(ctx context.Context, title, author string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE match_key = ? LIMIT 1`,
		domain.BookMatchKey(title, author))

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, store.Persistence(err, "find book")
	}
	return b, nil
}

// ListBooks returns one page of books ordered by id.
func (s *Store) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	params.Validate()
	after, err := params.After()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id > ? ORDER BY id LIMIT ?`, after, params.Limit+1)
	if err != nil {
		return nil, store.Persistence(err, "list books")
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, store.Persistence(err, "list books")
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Persistence(err, "list books")
	}

	return store.Page(books, params.Limit, func(b *domain.Book) string { return b.ID }), nil
}

// CountBooks returns the catalog size.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, store.Persistence(err, "count books")
	}
	return n, nil
}

// ResolveBooks batch-loads genre and page count for ids. Unknown ids are
// absent from the result.
func (s *Store) ResolveBooks(ctx context.Context, ids []string) (map[string]domain.BookRef, error) {
	out := make(map[string]domain.BookRef, len(ids))

	for start := 0; start < len(ids); start += resolveChunk {
		chunk := ids[start:min(start+resolveChunk, len(ids))]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		rows, err := s.db.QueryContext(ctx,
			`SELECT id, genre, total_pages FROM books WHERE id IN (`+placeholders(len(chunk))+`)`, args...)
		if err != nil {
			return nil, store.Persistence(err, "resolve books")
		}
		for rows.Next() {
			var ref domain.BookRef
			if err := rows.Scan(&ref.BookID, &ref.Genre, &ref.TotalPages); err != nil {
				rows.Close()
				return nil, store.Persistence(err, "resolve books")
			}
			out[ref.BookID] = ref
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, store.Persistence(err, "resolve books")
		}
	}

	return out, nil
}

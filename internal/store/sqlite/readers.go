package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/pagetrail-server/internal/domain"
	"github.com/listenupapp/pagetrail-server/internal/store"
)

// CreateReader inserts a new reader and its lists.
// Returns store.ErrAlreadyExists if the id is taken.
func (s *Store) CreateReader(ctx context.Context, reader *domain.Reader) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO readers (id, display_name, points, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			reader.ID,
			reader.DisplayName,
			reader.Points,
			formatTime(reader.CreatedAt),
			formatTime(reader.UpdatedAt),
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		if err != nil {
			return err
		}
		return insertReaderLists(ctx, tx, reader)
	})
	return store.Persistence(err, "create reader")
}

// GetReader loads a reader aggregate.
// Returns store.ErrReaderNotFound if the reader does not exist.
func (s *Store) GetReader(ctx context.Context, id string) (*domain.Reader, error) {
	r, err := s.getReader(ctx, s.db, id)
	if err != nil {
		return nil, store.Persistence(err, "load reader")
	}
	return r, nil
}

// SaveReader replaces the stored aggregate in a single transaction.
// Returns store.ErrReaderNotFound if the reader does not exist.
func (s *Store) SaveReader(ctx context.Context, reader *domain.Reader) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE readers SET display_name = ?, points = ?, updated_at = ?
			WHERE id = ?`,
			reader.DisplayName,
			reader.Points,
			formatTime(reader.UpdatedAt),
			reader.ID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrReaderNotFound
		}

		if err := deleteReaderLists(ctx, tx, reader.ID); err != nil {
			return err
		}
		return insertReaderLists(ctx, tx, reader)
	})
	return store.Persistence(err, "save reader")
}

// DeleteReader removes a reader and its lists.
func (s *Store) DeleteReader(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := deleteReaderLists(ctx, tx, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM readers WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrReaderNotFound
		}
		return nil
	})
	return store.Persistence(err, "delete reader")
}

// ListReaders returns one page of readers ordered by id.
func (s *Store) ListReaders(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Reader], error) {
	params.Validate()
	after, err := params.After()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM readers WHERE id > ? ORDER BY id LIMIT ?`, after, params.Limit+1)
	if err != nil {
		return nil, store.Persistence(err, "list readers")
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, store.Persistence(err, "list readers")
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, store.Persistence(err, "list readers")
	}

	readers := make([]*domain.Reader, 0, len(ids))
	for _, id := range ids {
		r, err := s.getReader(ctx, s.db, id)
		if err != nil {
			return nil, store.Persistence(err, "list readers")
		}
		readers = append(readers, r)
	}

	return store.Page(readers, params.Limit, func(r *domain.Reader) string { return r.ID }), nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) getReader(ctx context.Context, q querier, id string) (*domain.Reader, error) {
	r := &domain.Reader{ID: id}
	var createdAt, updatedAt string

	err := q.QueryRowContext(ctx,
		`SELECT display_name, points, created_at, updated_at FROM readers WHERE id = ?`, id,
	).Scan(&r.DisplayName, &r.Points, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrReaderNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	if r.FollowedBooks, err = loadFollowed(ctx, q, id); err != nil {
		return nil, err
	}
	if r.ReadBooks, err = loadRead(ctx, q, id); err != nil {
		return nil, err
	}
	if r.Badges, err = loadBadges(ctx, q, id); err != nil {
		return nil, err
	}
	return r, nil
}

func loadFollowed(ctx context.Context, q querier, readerID string) ([]domain.FollowedBook, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT book_id, pages_read FROM followed_books WHERE reader_id = ? ORDER BY position`, readerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.FollowedBook{}
	for rows.Next() {
		var f domain.FollowedBook
		if err := rows.Scan(&f.BookID, &f.PagesRead); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func loadRead(ctx context.Context, q querier, readerID string) ([]domain.ReadBook, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT book_id, finished_at FROM read_books WHERE reader_id = ? ORDER BY position`, readerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ReadBook{}
	for rows.Next() {
		var (
			rb         domain.ReadBook
			finishedAt string
		)
		if err := rows.Scan(&rb.BookID, &finishedAt); err != nil {
			return nil, err
		}
		if rb.FinishedAt, err = parseTime(finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at for %s: %w", rb.BookID, err)
		}
		out = append(out, rb)
	}
	return out, rows.Err()
}

func loadBadges(ctx context.Context, q querier, readerID string) ([]domain.BadgeAward, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT badge_id, awarded_at FROM badge_awards WHERE reader_id = ? ORDER BY position`, readerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BadgeAward{}
	for rows.Next() {
		var (
			badgeID   string
			awardedAt string
		)
		if err := rows.Scan(&badgeID, &awardedAt); err != nil {
			return nil, err
		}
		a := domain.BadgeAward{BadgeID: domain.BadgeID(badgeID)}
		if a.AwardedAt, err = parseTime(awardedAt); err != nil {
			return nil, fmt.Errorf("parse awarded_at for %s: %w", badgeID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func deleteReaderLists(ctx context.Context, tx *sql.Tx, readerID string) error {
	for _, table := range []string{"followed_books", "read_books", "badge_awards"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE reader_id = ?`, readerID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func insertReaderLists(ctx context.Context, tx *sql.Tx, r *domain.Reader) error {
	for i, f := range r.FollowedBooks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO followed_books (reader_id, book_id, pages_read, position) VALUES (?, ?, ?, ?)`,
			r.ID, f.BookID, f.PagesRead, i,
		); err != nil {
			return fmt.Errorf("insert followed book %s: %w", f.BookID, err)
		}
	}
	for i, rb := range r.ReadBooks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO read_books (reader_id, book_id, finished_at, position) VALUES (?, ?, ?, ?)`,
			r.ID, rb.BookID, formatTime(rb.FinishedAt), i,
		); err != nil {
			return fmt.Errorf("insert read book %s: %w", rb.BookID, err)
		}
	}
	for i, a := range r.Badges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO badge_awards (reader_id, badge_id, awarded_at, position) VALUES (?, ?, ?, ?)`,
			r.ID, string(a.BadgeID), formatTime(a.AwardedAt), i,
		); err != nil {
			return fmt.Errorf("insert badge %s: %w", a.BadgeID, err)
		}
	}
	return nil
}

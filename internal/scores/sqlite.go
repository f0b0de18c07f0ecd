package scores

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLite stores scores in the "scores" table created by sql/001_scores.sql.
// The caller opens the database and applies migrations.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

func (s *SQLite) Record(ctx context.Context, e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (title, raw, recorded_at) VALUES (?, ?, ?)`,
		e.Title, e.Raw, e.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *SQLite) History(ctx context.Context, title string, descending bool) ([]Entry, error) {
	order := "ASC"
	if descending {
		order = "DESC"
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT raw, recorded_at
        FROM scores
        WHERE title=?
        ORDER BY raw `+order+`, recorded_at ASC, id ASC`, title,
	)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			raw float64
			ts  string
		)
		if err := rows.Scan(&raw, &ts); err != nil {
			return nil, err
		}
		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", ts, err)
		}
		out = append(out, Entry{Title: title, Raw: raw, At: at})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// RFC3339Nano trims trailing zeros, so text order is not always time order.
	Sort(out, descending)
	return out, nil
}

package scores

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores scores in a "scores" table reached through a pgx pool.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres opens a pool for dsn and pings it.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Ping(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Postgres{db: db}, nil
}

// EnsureSchema creates the scores table and its index if they are missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scores (
			id          BIGSERIAL PRIMARY KEY,
			title       TEXT NOT NULL,
			raw         DOUBLE PRECISION NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS scores_title_raw ON scores (title, raw)`)
	if err != nil {
		return fmt.Errorf("ensure scores schema: %w", err)
	}
	return nil
}

func (p *Postgres) Record(ctx context.Context, e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	_, err := p.db.Exec(ctx,
		`INSERT INTO scores (title, raw, recorded_at) VALUES ($1, $2, $3)`,
		e.Title, e.Raw, e.At,
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (p *Postgres) History(ctx context.Context, title string, descending bool) ([]Entry, error) {
	order := "ASC"
	if descending {
		order = "DESC"
	}
	rows, err := p.db.Query(ctx,
		`SELECT raw, recorded_at
		 FROM scores
		 WHERE title = $1
		 ORDER BY raw `+order+`, recorded_at ASC, id ASC`,
		title,
	)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		e := Entry{Title: title}
		if err := rows.Scan(&e.Raw, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (p *Postgres) Close() { p.db.Close() }

package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// Result is one player's recorded daily game.
type Result struct {
	PlayerID string  `json:"playerId"`
	Date     string  `json:"date"`
	Title    string  `json:"title"`
	Raw      float64 `json:"raw"`
	Lost     bool    `json:"lost"` // a lost game counts as played but never ranks
}

// Store persists daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, playerID, date, title string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE player_id=? AND date=? AND title=?",
		playerID, date, title,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult keeps the first result per player, date and title; later ones
// are ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player_id, date, title, raw, lost)
		VALUES(?,?,?,?,?)`, r.PlayerID, r.Date, r.Title, r.Raw, r.Lost,
	)
	if err != nil {
		return fmt.Errorf("insert daily result: %w", err)
	}
	return nil
}

type LBRow struct {
	PlayerID  string  `json:"playerId"`
	Raw       float64 `json:"raw"`
	CreatedAt string  `json:"createdAt"`
}

// Leaderboard returns the best results for a title on a date. Ties go to the
// earlier finisher. Lost games are left out.
func (s *Store) Leaderboard(ctx context.Context, date, title string, descending bool, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	order := "ASC"
	if descending {
		order = "DESC"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, raw, created_at
		FROM daily_results
		WHERE date=? AND title=? AND lost=0
		ORDER BY raw `+order+`, created_at ASC
		LIMIT ?`, date, title, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Raw, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

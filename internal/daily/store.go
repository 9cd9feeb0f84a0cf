package daily

import (
	"context"
	"database/sql"
)

// Result is one player's daily challenge record.
type Result struct {
	PlayerID    string `json:"playerId"`
	Date        string `json:"date"`
	PuzzleID    string `json:"puzzleId"`
	Won         bool   `json:"won"`
	Score       int    `json:"score"`
	Strikes     int    `json:"strikes"`
	ElapsedMs   int    `json:"elapsedMs"`
	RatingDelta int    `json:"ratingDelta"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, playerID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE player_id=? AND date=?",
		playerID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player_id, date, puzzle_id, won, score, strikes, elapsed_ms, rating_delta)
		 VALUES(?,?,?,?,?,?,?,?)`,
		r.PlayerID, r.Date, r.PuzzleID, r.Won, r.Score, r.Strikes, r.ElapsedMs, r.RatingDelta,
	)
	return err
}

type LBRow struct {
	PlayerID  string `json:"playerId"`
	Score     int    `json:"score"`
	ElapsedMs int    `json:"elapsedMs"`
}

func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, score, elapsed_ms
		 FROM daily_results
		 WHERE date=? AND won=1
		 ORDER BY score DESC, elapsed_ms ASC, created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LBRow
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Score, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

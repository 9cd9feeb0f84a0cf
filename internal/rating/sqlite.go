// internal/rating/sqlite.go
//
// SQLite-backed implementation of the rating Repository interface.
// Persists records in the players table (see sql/001_init.sql).

package rating

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// sqliteRepo stores rating records in the players table.
type sqliteRepo struct {
	db *sql.DB
}

// NewSQLiteRepository constructs a Repository over an opened database.
func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

func (s *sqliteRepo) Get(ctx context.Context, playerID string) (*PlayerRating, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT player_id, rating, games_played, wins, losses, streak, volatility, level, last_played_at
		FROM players WHERE player_id=?`, playerID)

	var r PlayerRating
	var lastPlayed string
	err := row.Scan(&r.PlayerID, &r.Rating, &r.GamesPlayed, &r.Wins, &r.Losses,
		&r.Streak, &r.Volatility, &r.Level, &lastPlayed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownPlayer
	}
	if err != nil {
		return nil, err
	}
	if lastPlayed != "" {
		r.LastPlayedAt, _ = time.Parse(time.RFC3339, lastPlayed)
	}
	return &r, nil
}

func (s *sqliteRepo) Put(ctx context.Context, r *PlayerRating) error {
	lastPlayed := ""
	if !r.LastPlayedAt.IsZero() {
		lastPlayed = r.LastPlayedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (player_id, rating, games_played, wins, losses, streak, volatility, level, last_played_at)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(player_id) DO UPDATE SET
			rating=excluded.rating,
			games_played=excluded.games_played,
			wins=excluded.wins,
			losses=excluded.losses,
			streak=excluded.streak,
			volatility=excluded.volatility,
			level=excluded.level,
			last_played_at=excluded.last_played_at`,
		r.PlayerID, r.Rating, r.GamesPlayed, r.Wins, r.Losses,
		r.Streak, r.Volatility, r.Level, lastPlayed)
	return err
}

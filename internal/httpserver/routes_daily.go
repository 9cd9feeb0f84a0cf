// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → generate today's deterministic puzzle
//   - POST /daily/complete    → record a finished daily session
//   - GET  /daily/leaderboard → fetch top 20 scores for today (or a given date)
//
// Each player can record one result per day (enforced by DB uniqueness).
// Deterministic board generation is based on date + salt: the daily seed
// drives the generator's random source, so every player at the same level
// band sees the same board shape.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rhymegrid/internal/challenge"
	"github.com/robalobadob/rhymegrid/internal/daily"
	"github.com/robalobadob/rhymegrid/internal/session"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv   *Server
	store *daily.Store
	salt  string
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:   s,
		store: daily.NewStore(s.db),
		salt:  s.cfg.DailySalt,
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/complete", dd.handleComplete)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// weeklySeed derives the pack seed from the current date and salt.
func weeklySeed(salt string) uint64 {
	return daily.Seed(time.Now(), salt+"|weekly")
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewReq is the request payload for /daily/new.
type dailyNewReq struct {
	Level int `json:"level"`
}

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	Date   string            `json:"date"`
	Played bool              `json:"played"`
	Puzzle *challenge.Puzzle `json:"puzzle,omitempty"`
}

// handleNew generates today's puzzle for the current player.
// - If the player already has a DB row for today → return Played=true.
// - Otherwise generate deterministically from the daily seed.
func (dd *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	var req dailyNewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	playerID, premium := dd.srv.playerContext(w, r)
	now := time.Now()
	date := daily.DateKey(now)

	if played, err := dd.store.AlreadyPlayed(r.Context(), playerID, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	p, err := dd.srv.pipeline.GenerateSeeded(r.Context(), challenge.Request{
		PlayerID: playerID,
		Level:    req.Level,
		Mode:     challenge.ModeDaily,
		Premium:  premium,
		Daily:    true,
	}, daily.Seed(now, dd.salt))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := dd.srv.puzzles.Save(r.Context(), p); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: false, Puzzle: p})
}

// -----------------------------------------------------------------------------
// /daily/complete

// dailyCompleteReq closes out today's daily session.
type dailyCompleteReq struct {
	SessionID string `json:"sessionId"`
}

type dailyCompleteRes struct {
	Date        string          `json:"date"`
	RatingDelta int             `json:"ratingDelta"`
	NewRating   int             `json:"newRating"`
	Outcome     session.Outcome `json:"outcome"`
}

// handleComplete records a finished daily session: rating update plus one
// daily_results row (first result for the date wins; later inserts are
// ignored by the DB).
func (dd *dailyServer) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req dailyCompleteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	playerID, _ := dd.srv.playerContext(w, r)
	date := daily.DateKey(time.Now())

	sess, err := dd.srv.sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if sess.State() == session.StateSelecting {
		http.Error(w, `{"error":"session_not_finished"}`, http.StatusConflict)
		return
	}
	o := sess.Outcome()
	_ = dd.srv.sessions.Delete(r.Context(), req.SessionID)

	delta, newRating, err := dd.srv.ratings.UpdateAfterSession(r.Context(), playerID,
		sess.Puzzle.Difficulty, o.Won, o.Accuracy, o.TimeRatio)
	if err != nil {
		http.Error(w, `{"error":"rating_update_failed"}`, http.StatusInternalServerError)
		return
	}

	if err := dd.store.InsertResult(r.Context(), daily.Result{
		PlayerID:    playerID,
		Date:        date,
		PuzzleID:    sess.Puzzle.ID,
		Won:         o.Won,
		Score:       o.TotalScore,
		Strikes:     o.Strikes,
		ElapsedMs:   int(o.ElapsedSeconds * 1000),
		RatingDelta: delta,
	}); err != nil {
		log.Warn().Err(err).Str("playerId", playerID).Msg("insert daily result")
	}

	_ = json.NewEncoder(w).Encode(dailyCompleteRes{Date: date, RatingDelta: delta, NewRating: newRating, Outcome: o})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (dd *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	rows, err := dd.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}

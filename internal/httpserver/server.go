// internal/httpserver/server.go
//
// HTTP server wiring for the rhymegrid backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/patterns".
//   - Challenge + session endpoints (optional auth): POST /challenge/new,
//     POST /challenge/weekly, POST /session/*.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + rating endpoints (require auth): /auth/*, /rating/me.
//   - JWT + cookie handling, anonymous player cookie, user CRUD helpers.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token
//     is present; routes can still run for guests.
//   - The engine computes reward magnitudes; persistence of tokens/XP is the
//     caller's concern. This layer persists results + rating records only.

package httpserver

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/rhymegrid/internal/challenge"
	"github.com/robalobadob/rhymegrid/internal/config"
	"github.com/robalobadob/rhymegrid/internal/patterns"
	"github.com/robalobadob/rhymegrid/internal/rating"
	"github.com/robalobadob/rhymegrid/internal/session"
	"github.com/robalobadob/rhymegrid/internal/store"
)

// Server bundles router, play-state stores, rating store, and DB handle.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	db       *sql.DB
	puzzles  store.PuzzleStore
	sessions store.SessionStore
	ratings  *rating.Store
	pipeline *challenge.Pipeline
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, db *sql.DB, puzzles store.PuzzleStore, sessions store.SessionStore, ratings *rating.Store, pipeline *challenge.Pipeline) *Server {
	s := &Server{
		r: chi.NewRouter(), cfg: cfg, db: db,
		puzzles: puzzles, sessions: sessions, ratings: ratings, pipeline: pipeline,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"rhymegrid-go","endpoints":["/health","POST /challenge/new","POST /session/start","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/patterns", func(w http.ResponseWriter, r *http.Request) {
		p, words := patterns.Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"patterns": p, "words": words})
	})

	// Challenge + session endpoints — OPTIONAL AUTH (guests can play)
	s.r.With(s.withOptionalAuth()).Post("/challenge/new", s.handleNewChallenge)
	s.r.With(s.withOptionalAuth()).Post("/challenge/weekly", s.handleWeekly)
	s.r.With(s.withOptionalAuth()).Post("/session/start", s.handleSessionStart)
	s.r.With(s.withOptionalAuth()).Post("/session/action", s.handleSessionAction)
	s.r.With(s.withOptionalAuth()).Post("/session/tick", s.handleSessionTick)
	s.r.With(s.withOptionalAuth()).Post("/session/complete", s.handleSessionComplete)

	// Daily Challenge — OPTIONAL AUTH
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Auth + rating (require auth)
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---------------------------- CHALLENGE ------------------------------------

// newChallengeReq/Res payloads for POST /challenge/new.
type newChallengeReq struct {
	Level         int    `json:"level"`
	Mode          string `json:"mode"`
	GridSize      int    `json:"gridSize"` // optional hint: 4 or 8
	CulturalTheme string `json:"culturalTheme"`
	Decoys        bool   `json:"decoys"`
	Daily         bool   `json:"daily"`
}

// handleNewChallenge generates a puzzle through the retryable pipeline and
// keeps it in the puzzle store for the session endpoints.
func (s *Server) handleNewChallenge(w http.ResponseWriter, r *http.Request) {
	var req newChallengeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	playerID, premium := s.playerContext(w, r)
	if req.Mode == "" {
		req.Mode = string(challenge.ModeStandard)
	}

	p, err := s.pipeline.Generate(r.Context(), challenge.Request{
		PlayerID:      playerID,
		Level:         req.Level,
		Mode:          challenge.Mode(req.Mode),
		Premium:       premium,
		Daily:         req.Daily,
		Decoys:        req.Decoys,
		GridSizeHint:  req.GridSize,
		CulturalTheme: req.CulturalTheme,
	})
	if err != nil {
		// Only validation errors escape the pipeline.
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := s.puzzles.Save(r.Context(), p); err != nil {
		log.Error().Err(err).Msg("save puzzle")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(p)
}

// weeklyReq is the request payload for POST /challenge/weekly.
type weeklyReq struct {
	newChallengeReq
	Days int `json:"days"`
}

// handleWeekly assembles a multi-day puzzle pack seeded from today's date.
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	var req weeklyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.Days == 0 {
		req.Days = 7
	}
	playerID, premium := s.playerContext(w, r)
	if req.Mode == "" {
		req.Mode = string(challenge.ModeStandard)
	}

	seed := weeklySeed(s.cfg.DailySalt)
	pack, err := s.pipeline.GenerateWeekly(r.Context(), challenge.Request{
		PlayerID:      playerID,
		Level:         req.Level,
		Mode:          challenge.Mode(req.Mode),
		Premium:       premium,
		Decoys:        req.Decoys,
		GridSizeHint:  req.GridSize,
		CulturalTheme: req.CulturalTheme,
	}, req.Days, seed)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, challenge.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, status)
		return
	}
	for _, p := range pack {
		_ = s.puzzles.Save(r.Context(), p)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"days": len(pack), "puzzles": pack})
}

// ----------------------------- SESSION -------------------------------------

type sessionStartReq struct {
	PuzzleID string `json:"puzzleId"`
}
type sessionStartRes struct {
	SessionID string           `json:"sessionId"`
	State     session.Snapshot `json:"state"`
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req sessionStartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	p, err := s.puzzles.Get(r.Context(), req.PuzzleID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	sess := session.New(p)
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sessionStartRes{SessionID: sess.ID, State: sess.Tick(0)})
}

type sessionActionReq struct {
	SessionID string  `json:"sessionId"`
	Cell      int     `json:"cell"`
	Elapsed   float64 `json:"elapsed"` // client clock, seconds
}

// handleSessionAction applies one reveal/deselect to an in-memory session.
func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	var req sessionActionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if snap := sess.Tick(req.Elapsed); snap.State == session.StateLost {
		_ = json.NewEncoder(w).Encode(snap)
		return
	}
	snap, err := sess.Reveal(req.Cell)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

type sessionTickReq struct {
	SessionID string  `json:"sessionId"`
	Elapsed   float64 `json:"elapsed"`
}

func (s *Server) handleSessionTick(w http.ResponseWriter, r *http.Request) {
	var req sessionTickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.Tick(req.Elapsed))
}

// sessionCompleteReq closes out a session. Either a session ID (outcome
// derived from the engine) or an explicit puzzle result can be supplied.
type sessionCompleteReq struct {
	SessionID string `json:"sessionId"`

	PuzzleID  string  `json:"puzzleId"`
	Success   bool    `json:"success"`
	Accuracy  float64 `json:"accuracy"`
	TimeRatio float64 `json:"timeRatio"`
}

type sessionCompleteRes struct {
	RatingDelta int              `json:"ratingDelta"`
	NewRating   int              `json:"newRating"`
	Outcome     *session.Outcome `json:"outcome,omitempty"`
}

// handleSessionComplete feeds the terminal result to the rating store and
// persists a results row (best effort, non-fatal if it fails).
func (s *Server) handleSessionComplete(w http.ResponseWriter, r *http.Request) {
	var req sessionCompleteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	playerID, _ := s.playerContext(w, r)

	var (
		puzzleID   string
		mode       string
		difficulty int
		success    bool
		accuracy   float64
		timeRatio  float64
		outcome    *session.Outcome
	)
	if req.SessionID != "" {
		sess, err := s.sessions.Get(r.Context(), req.SessionID)
		if err != nil {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		if sess.State() == session.StateSelecting {
			http.Error(w, `{"error":"session_not_finished"}`, http.StatusConflict)
			return
		}
		o := sess.Outcome()
		outcome = &o
		puzzleID = sess.Puzzle.ID
		mode = string(sess.Puzzle.Mode)
		difficulty = sess.Puzzle.Difficulty
		success, accuracy, timeRatio = o.Won, o.Accuracy, o.TimeRatio
		_ = s.sessions.Delete(r.Context(), req.SessionID)
	} else {
		p, err := s.puzzles.Get(r.Context(), req.PuzzleID)
		if err != nil {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		puzzleID = p.ID
		mode = string(p.Mode)
		difficulty = p.Difficulty
		success, accuracy, timeRatio = req.Success, clampUnit(req.Accuracy), clampUnit(req.TimeRatio)
	}

	delta, newRating, err := s.ratings.UpdateAfterSession(r.Context(), playerID, difficulty, success, accuracy, timeRatio)
	if err != nil {
		log.Error().Err(err).Str("playerId", playerID).Msg("rating update")
		http.Error(w, `{"error":"rating_update_failed"}`, http.StatusInternalServerError)
		return
	}

	score, strikes, elapsedMs := 0, 0, 0
	if outcome != nil {
		score = outcome.TotalScore
		strikes = outcome.Strikes
		elapsedMs = int(outcome.ElapsedSeconds * 1000)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec(`INSERT INTO results (id, player_id, puzzle_id, mode, won, score, strikes, elapsed_ms, rating_delta, created_at)
	                        VALUES (?,?,?,?,?,?,?,?,?,?)`,
		genID(), playerID, puzzleID, mode, success, score, strikes, elapsedMs, delta, now); err != nil {
		log.Warn().Err(err).Str("puzzleId", puzzleID).Msg("insert result row")
	}

	_ = json.NewEncoder(w).Encode(sessionCompleteRes{RatingDelta: delta, NewRating: newRating, Outcome: outcome})
}

// ------------------------------- AUTH --------------------------------------

// Request payloads for signup/login.
type signupReq struct{ Username, Password string }
type loginReq struct{ Username, Password string }

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Premium  bool   `json:"premium"`
}

// mountAuthRoutes registers authentication + gated routes (/auth/*, /rating/me).
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	// Current user (gated)
	s.r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
		if me == nil {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(me)
	})

	// Rating record (gated)
	s.r.With(s.requireAuth()).Get("/rating/me", func(w http.ResponseWriter, r *http.Request) {
		me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
		if me == nil {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		rec, err := s.ratings.Get(r.Context(), me.ID)
		if err != nil {
			http.Error(w, `{"error":"not_found"}`, http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"rating":      rec.Rating,
			"gamesPlayed": rec.GamesPlayed,
			"wins":        rec.Wins,
			"losses":      rec.Losses,
			"streak":      rec.Streak,
			"volatility":  rec.Volatility,
			"level":       rec.Level,
		})
	})
}

// handleSignup creates a new user, signs a JWT, sets auth cookie, and claims anon history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.createUser(body.Username, body.Password)
	if err != nil {
		if err.Error() == "username taken" {
			http.Error(w, `{"error":"Username taken"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setAuthCookie(w, tok, exp)
	s.claimAnonResults(s.ensureAnonID(w, r), u.ID)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates user, sets cookie, and claims anon history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.findUserByUsername(strings.TrimSpace(body.Username))
	if err != nil || !checkPassword(u.PasswordHash, body.Password) {
		http.Error(w, `{"error":"Invalid username or password"}`, http.StatusUnauthorized)
		return
	}
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setAuthCookie(w, tok, exp)
	s.claimAnonResults(s.ensureAnonID(w, r), u.ID)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// --------------------------- optional auth ---------------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := s.bearerOrCookie(r); tok != "" {
				claims := jwt.MapClaims{}
				if t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
					return []byte(s.cfg.JWTSecret), nil
				}); err == nil && t.Valid {
					if id, _ := claims["id"].(string); id != "" {
						if u, err := s.findUserByID(id); err == nil {
							ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: u.ID, Username: u.Username, Premium: u.Premium})
							r = r.WithContext(ctx)
						}
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

const anonCookieName = "rhymegrid_anon"

// ensureAnonID returns an existing anon cookie or sets a new one.
// Used to associate guest play with a stable identifier.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: func() http.SameSite {
			if s.cfg.Production {
				return http.SameSiteNoneMode
			}
			return http.SameSiteLaxMode
		}(),
		Expires: time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// playerContext resolves the player ID (user or anon) and premium status.
func (s *Server) playerContext(w http.ResponseWriter, r *http.Request) (playerID string, premium bool) {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID, me.Premium
	}
	return s.ensureAnonID(w, r), false
}

// claimAnonResults transfers any anonymous results/ratings to a user account after auth.
func (s *Server) claimAnonResults(anonID, userID string) {
	if anonID == "" || userID == "" {
		return
	}
	if _, err := s.db.Exec(`UPDATE results SET player_id=? WHERE player_id=?`, userID, anonID); err != nil {
		log.Warn().Err(err).Msg("claim anon results")
	}
	if _, err := s.db.Exec(`UPDATE OR IGNORE players SET player_id=? WHERE player_id=?`, userID, anonID); err != nil {
		log.Warn().Err(err).Msg("claim anon rating")
	}
}

// ------------------------ auth helpers & users -----------------------------

// userRow matches the users table shape.
type userRow struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	Premium      bool
}

// createUser validates input, checks uniqueness, hashes password, and inserts a new user.
func (s *Server) createUser(username, pw string) (*userRow, error) {
	username = strings.TrimSpace(username)
	if err := validateSignup(username, pw); err != nil {
		return nil, err
	}
	var exists int
	_ = s.db.QueryRow(`SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if exists == 1 {
		return nil, errors.New("username taken")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	id := genID()
	if _, err := s.db.Exec(`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		id, username, string(h), now); err != nil {
		return nil, err
	}
	return &userRow{ID: id, Username: username, PasswordHash: string(h), CreatedAt: mustParse(now)}, nil
}

// findUserByUsername/ID load a user row or return an error if missing.
func (s *Server) findUserByUsername(username string) (*userRow, error) {
	row := s.db.QueryRow(`SELECT id, username, password_hash, created_at, premium
	                      FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}
func (s *Server) findUserByID(id string) (*userRow, error) {
	row := s.db.QueryRow(`SELECT id, username, password_hash, created_at, premium
	                      FROM users WHERE id=?`, id)
	return scanUser(row)
}

// scanUser converts a *sql.Row into a userRow.
func scanUser(row *sql.Row) (*userRow, error) {
	var u userRow
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.Premium); err != nil {
		return nil, err
	}
	u.CreatedAt = mustParse(created)
	return &u, nil
}

// mustParse parses RFC3339 timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// validateSignup enforces basic username/password rules.
func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3–24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errors.New("password must be 8–100 chars")
	}
	return nil
}

// clampUnit bounds a client-supplied score component to [0,1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	s := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b[:])
	if len(s) > 22 {
		return s[:22]
	}
	return s
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/username and the configured expiry.
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	exp := time.Now().Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      time.Now().Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// setAuthCookie writes the auth token cookie with appropriate security attributes.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.Production {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// clearAuthCookie deletes the auth token cookie.
func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.Production {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: sameSite,
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := s.bearerOrCookie(r)
			if tokenStr == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(s.cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			id, _ := claims["id"].(string)
			username, _ := claims["username"].(string)
			if id == "" || username == "" {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			// Ensure user still exists
			u, err := s.findUserByID(id)
			if err != nil {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: id, Username: username, Premium: u.Premium})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

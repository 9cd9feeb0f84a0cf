// internal/rating/rating.go
//
// ELO-style skill rating for puzzle players.
// Responsibilities:
//   - Lazily create per-player rating records (initial 1200, K-factor 40).
//   - Compute a target puzzle difficulty from rating, level, and streak.
//   - Update ratings after a session with a logistic expected-score curve
//     and a K-factor that decays toward a floor after 10 games.
//
// Records are owned exclusively by this package and mutated only through
// UpdateAfterSession, which performs the read-compute-write atomically so
// batch/backfill callers stay correct.

package rating

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"
)

var (
	// ErrUnknownPlayer is returned by Repository.Get for missing records.
	ErrUnknownPlayer = errors.New("rating: unknown player")
)

// Rating bounds and K-factor schedule.
const (
	InitialRating = 1200
	MinRating     = 800
	MaxRating     = 2400

	initialVolatility    = 40.0
	minVolatility        = 15.0
	volatilityDecay      = 0.5 // per update once past the grace period
	volatilityGraceGames = 10

	streakBonusCap = 100 // at most +100 from win streaks
	jitterSpread   = 50  // ±50 uniform noise on target difficulty
)

// PlayerRating is one player's rating record.
type PlayerRating struct {
	PlayerID     string
	Rating       int
	GamesPlayed  int
	Wins         int
	Losses       int
	Streak       int
	Volatility   float64 // current K-factor
	Level        int     // mirrored from the caller; not owned here
	LastPlayedAt time.Time
}

// Repository abstracts persistence of rating records.
// Implementations may be backed by memory (this package) or SQLite.
type Repository interface {
	// Get retrieves a record, or ErrUnknownPlayer if absent.
	Get(ctx context.Context, playerID string) (*PlayerRating, error)

	// Put persists or updates a record.
	Put(ctx context.Context, r *PlayerRating) error
}

// Store applies the rating rules on top of a Repository.
type Store struct {
	repo Repository
	mu   sync.Mutex // serializes read-compute-write updates
}

// NewStore constructs a Store over the given repository.
func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// GetOrCreate returns the existing record for playerID or creates one with
// defaults. The level is always refreshed from the caller's latest value.
func (s *Store) GetOrCreate(ctx context.Context, playerID string, level int) (*PlayerRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.Get(ctx, playerID)
	if errors.Is(err, ErrUnknownPlayer) {
		r = &PlayerRating{
			PlayerID:   playerID,
			Rating:     InitialRating,
			Volatility: initialVolatility,
			Level:      level,
		}
		if err := s.repo.Put(ctx, r); err != nil {
			return nil, err
		}
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	if r.Level != level {
		r.Level = level
		if err := s.repo.Put(ctx, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Get returns the stored record without modifying it. Unknown players get
// a default record that is NOT persisted, so read paths never write.
func (s *Store) Get(ctx context.Context, playerID string) (*PlayerRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.Get(ctx, playerID)
	if errors.Is(err, ErrUnknownPlayer) {
		return &PlayerRating{
			PlayerID:   playerID,
			Rating:     InitialRating,
			Volatility: initialVolatility,
			Level:      1,
		}, nil
	}
	return r, err
}

// TargetDifficulty derives the difficulty a generated puzzle should aim for:
// rating + 20·level + capped streak bonus + uniform jitter, clamped to bounds.
func (s *Store) TargetDifficulty(r *PlayerRating, rng *rand.Rand) int {
	streakBonus := 10 * r.Streak
	if streakBonus > streakBonusCap {
		streakBonus = streakBonusCap
	}
	jitter := rng.Intn(2*jitterSpread+1) - jitterSpread
	return clamp(r.Rating + 20*r.Level + streakBonus + jitter)
}

// UpdateAfterSession applies the ELO update for a completed session and
// returns the rating delta and the new rating.
//
// Expected score: E = 1 / (1 + 10^((D - R)/400)).
// Actual score:   A = success ? min(0.5 + 0.3·accuracy + 0.2·timeRatio, 1) : 0.
// Delta:          round(volatility · (A - E)), clamped to [800, 2400].
func (s *Store) UpdateAfterSession(ctx context.Context, playerID string, challengeDifficulty int, success bool, accuracy, timeRatio float64) (delta int, newRating int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.Get(ctx, playerID)
	if err != nil {
		return 0, 0, err
	}

	// Inputs may come from untrusted callers; keep the actual score in [0,1].
	accuracy = clamp01(accuracy)
	timeRatio = clamp01(timeRatio)

	expected := expectedScore(r.Rating, challengeDifficulty)
	actual := 0.0
	if success {
		actual = math.Min(0.5+0.3*accuracy+0.2*timeRatio, 1)
	}
	delta = int(math.Round(r.Volatility * (actual - expected)))

	before := r.Rating
	r.Rating = clamp(r.Rating + delta)
	delta = r.Rating - before

	r.GamesPlayed++
	if success {
		r.Wins++
		r.Streak++
	} else {
		r.Losses++
		r.Streak = 0
	}
	if r.GamesPlayed > volatilityGraceGames {
		r.Volatility = math.Max(minVolatility, r.Volatility-volatilityDecay)
	}
	r.LastPlayedAt = time.Now().UTC()

	if err := s.repo.Put(ctx, r); err != nil {
		return 0, 0, err
	}
	return delta, r.Rating, nil
}

// expectedScore is the logistic curve over the rating gap.
func expectedScore(rating, difficulty int) float64 {
	return 1.0 / (1.0 + math.Pow(10.0, float64(difficulty-rating)/400.0))
}

// clamp01 bounds a score component to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clamp bounds a rating to [MinRating, MaxRating].
func clamp(v int) int {
	if v < MinRating {
		return MinRating
	}
	if v > MaxRating {
		return MaxRating
	}
	return v
}

package rating_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/rhymegrid/internal/rating"
)

func newStore() *rating.Store {
	return rating.NewStore(rating.NewMemoryRepository())
}

func TestGetOrCreateDefaults(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	r, err := s.GetOrCreate(ctx, "p1", 3)
	require.NoError(t, err)
	require.Equal(t, rating.InitialRating, r.Rating)
	require.Equal(t, 0, r.GamesPlayed)
	require.Equal(t, 3, r.Level)

	// Level is refreshed on subsequent lookups.
	r, err = s.GetOrCreate(ctx, "p1", 4)
	require.NoError(t, err)
	require.Equal(t, 4, r.Level)
	require.Equal(t, rating.InitialRating, r.Rating)
}

func TestGetDoesNotRewriteLevel(t *testing.T) {
	ctx := context.Background()
	repo := rating.NewMemoryRepository()
	s := rating.NewStore(repo)

	_, err := s.GetOrCreate(ctx, "vet", 60)
	require.NoError(t, err)

	// A read must report and persist the stored level unchanged.
	r, err := s.Get(ctx, "vet")
	require.NoError(t, err)
	require.Equal(t, 60, r.Level)

	stored, err := repo.Get(ctx, "vet")
	require.NoError(t, err)
	require.Equal(t, 60, stored.Level)
}

func TestGetUnknownPlayerReturnsDefaultsWithoutPersisting(t *testing.T) {
	ctx := context.Background()
	repo := rating.NewMemoryRepository()
	s := rating.NewStore(repo)

	r, err := s.Get(ctx, "ghost")
	require.NoError(t, err)
	require.Equal(t, rating.InitialRating, r.Rating)
	require.Equal(t, 1, r.Level)

	_, err = repo.Get(ctx, "ghost")
	require.ErrorIs(t, err, rating.ErrUnknownPlayer)
}

func TestUpdateClampsScoreInputs(t *testing.T) {
	ctx := context.Background()

	update := func(accuracy, timeRatio float64) int {
		s := newStore()
		_, err := s.GetOrCreate(ctx, "p", 1)
		require.NoError(t, err)
		delta, _, err := s.UpdateAfterSession(ctx, "p", 1400, true, accuracy, timeRatio)
		require.NoError(t, err)
		return delta
	}

	// Out-of-range inputs behave as if clamped to [0,1].
	require.Equal(t, update(0, 0), update(-3, -9))
	require.Equal(t, update(1, 1), update(5, 7))
	require.Greater(t, update(-3, -9), 0, "a win never scores below the 0.5 base")
}

func TestRatingStaysInBounds(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	_, err := s.GetOrCreate(ctx, "grinder", 1)
	require.NoError(t, err)

	// 200 easy wins must never push the rating past the ceiling.
	for i := 0; i < 200; i++ {
		_, newRating, err := s.UpdateAfterSession(ctx, "grinder", 800, true, 1, 1)
		require.NoError(t, err)
		require.LessOrEqual(t, newRating, rating.MaxRating)
		require.GreaterOrEqual(t, newRating, rating.MinRating)
	}

	// 200 hard losses must never push it below the floor.
	for i := 0; i < 200; i++ {
		_, newRating, err := s.UpdateAfterSession(ctx, "grinder", 2400, false, 0, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, newRating, rating.MinRating)
		require.LessOrEqual(t, newRating, rating.MaxRating)
	}
}

func TestVolatilityDecaysAfterGracePeriod(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	_, err := s.GetOrCreate(ctx, "vet", 1)
	require.NoError(t, err)

	// First 10 games: full K-factor.
	for i := 0; i < 10; i++ {
		_, _, err := s.UpdateAfterSession(ctx, "vet", 1200, i%2 == 0, 0.8, 0.5)
		require.NoError(t, err)
	}
	r, err := s.GetOrCreate(ctx, "vet", 1)
	require.NoError(t, err)
	require.InDelta(t, 40.0, r.Volatility, 0.001, "no decay within the grace period")

	// Game 11 starts the decay.
	_, _, err = s.UpdateAfterSession(ctx, "vet", 1200, true, 0.8, 0.5)
	require.NoError(t, err)
	r, err = s.GetOrCreate(ctx, "vet", 1)
	require.NoError(t, err)
	require.Less(t, r.Volatility, 40.0)

	// Decay bottoms out at the floor, never below.
	prev := r.Volatility
	for i := 0; i < 100; i++ {
		_, _, err := s.UpdateAfterSession(ctx, "vet", 1200, true, 0.8, 0.5)
		require.NoError(t, err)
		r, err = s.GetOrCreate(ctx, "vet", 1)
		require.NoError(t, err)
		require.LessOrEqual(t, r.Volatility, prev)
		require.GreaterOrEqual(t, r.Volatility, 15.0)
		prev = r.Volatility
	}
	require.Equal(t, 15.0, prev)
}

func TestWinStreakTracking(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	_, err := s.GetOrCreate(ctx, "p1", 1)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _, err := s.UpdateAfterSession(ctx, "p1", 1200, true, 1, 0.5)
		require.NoError(t, err)
	}
	r, err := s.GetOrCreate(ctx, "p1", 1)
	require.NoError(t, err)
	require.Equal(t, 3, r.Streak)
	require.Equal(t, 3, r.Wins)

	_, _, err = s.UpdateAfterSession(ctx, "p1", 1200, false, 0, 0)
	require.NoError(t, err)
	r, err = s.GetOrCreate(ctx, "p1", 1)
	require.NoError(t, err)
	require.Equal(t, 0, r.Streak, "a loss resets the streak")
	require.Equal(t, 1, r.Losses)
}

func TestUpdateDirection(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	_, err := s.GetOrCreate(ctx, "p1", 1)
	require.NoError(t, err)

	// Beating a harder puzzle gains rating.
	delta, _, err := s.UpdateAfterSession(ctx, "p1", 1400, true, 1, 1)
	require.NoError(t, err)
	require.Greater(t, delta, 0)

	// Losing to an easier puzzle loses rating.
	delta, _, err = s.UpdateAfterSession(ctx, "p1", 1000, false, 0, 0)
	require.NoError(t, err)
	require.Less(t, delta, 0)
}

func TestUpdateUnknownPlayer(t *testing.T) {
	s := newStore()
	_, _, err := s.UpdateAfterSession(context.Background(), "ghost", 1200, true, 1, 1)
	require.ErrorIs(t, err, rating.ErrUnknownPlayer)
}

func TestTargetDifficultyClampAndRange(t *testing.T) {
	s := newStore()
	rng := rand.New(rand.NewSource(42))

	maxed := &rating.PlayerRating{PlayerID: "max", Rating: 2400, Level: 100, Streak: 50}
	for i := 0; i < 20; i++ {
		require.Equal(t, rating.MaxRating, s.TargetDifficulty(maxed, rng))
	}

	fresh := &rating.PlayerRating{PlayerID: "new", Rating: 1200, Level: 1}
	for i := 0; i < 100; i++ {
		d := s.TargetDifficulty(fresh, rng)
		require.GreaterOrEqual(t, d, 1220-50)
		require.LessOrEqual(t, d, 1220+50)
	}
}

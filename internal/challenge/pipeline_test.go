package challenge_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/rhymegrid/internal/challenge"
	"github.com/robalobadob/rhymegrid/internal/decoy"
	"github.com/robalobadob/rhymegrid/internal/patterns"
	"github.com/robalobadob/rhymegrid/internal/rating"
)

// brokenRepo fails every read so the generator can never load a rating.
type brokenRepo struct{}

func (brokenRepo) Get(ctx context.Context, playerID string) (*rating.PlayerRating, error) {
	return nil, errors.New("storage offline")
}
func (brokenRepo) Put(ctx context.Context, r *rating.PlayerRating) error {
	return errors.New("storage offline")
}

func fastPolicy() challenge.Policy {
	return challenge.Policy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func TestPipelineHappyPath(t *testing.T) {
	g := newGenerator(t)
	p := challenge.NewPipeline(g, fastPolicy())

	pz, err := p.Generate(context.Background(), challenge.Request{
		PlayerID: "p1",
		Level:    1,
		Mode:     challenge.ModeStandard,
	})
	require.NoError(t, err)
	require.NoError(t, pz.Validate())
}

func TestPipelineFallsBackWhenAttemptsExhausted(t *testing.T) {
	require.NoError(t, patterns.Init())
	g := challenge.NewGenerator(rating.NewStore(brokenRepo{}), decoy.New())
	p := challenge.NewPipeline(g, fastPolicy())

	pz, err := p.Generate(context.Background(), challenge.Request{
		PlayerID: "p1",
		Level:    1,
		Mode:     challenge.ModeStandard,
	})
	require.NoError(t, err, "the player is never blocked from playing")
	require.NotNil(t, pz)
	require.NoError(t, pz.Validate())
	require.Len(t, pz.Groups, 4)
	require.Contains(t, pz.ID, "fallback-")
}

func TestPipelineInvalidInputDoesNotFallBack(t *testing.T) {
	g := newGenerator(t)
	p := challenge.NewPipeline(g, fastPolicy())

	_, err := p.Generate(context.Background(), challenge.Request{
		PlayerID: "p1",
		Level:    0,
		Mode:     challenge.ModeStandard,
	})
	require.ErrorIs(t, err, challenge.ErrInvalidInput)
}

func TestPipelineSeededIsDeterministic(t *testing.T) {
	require.NoError(t, patterns.Init())
	req := challenge.Request{
		PlayerID: "daily-player",
		Level:    1,
		Mode:     challenge.ModeDaily,
		Daily:    true,
	}
	const seed = 0xBADC0FFEE

	build := func() *challenge.Puzzle {
		g := challenge.NewGenerator(rating.NewStore(rating.NewMemoryRepository()), decoy.New())
		p := challenge.NewPipeline(g, fastPolicy())
		pz, err := p.GenerateSeeded(context.Background(), req, seed)
		require.NoError(t, err)
		return pz
	}

	a, b := build(), build()
	require.Equal(t, a.Grid, b.Grid, "same seed, same board")
	require.Equal(t, a.Difficulty, b.Difficulty)
	require.Equal(t, len(a.Groups), len(b.Groups))
}

func TestFallbackPuzzleSatisfiesInvariants(t *testing.T) {
	a := challenge.FallbackPuzzle()
	require.NoError(t, a.Validate())
	require.Equal(t, 4, a.GridSize)
	require.Len(t, a.Groups, 4)
	require.Empty(t, a.Decoys)
	require.Equal(t, 3, a.MaxStrikes)

	// Copies are independent; mutating one leaves the template intact.
	a.Grid[0][0] = "mutated"
	b := challenge.FallbackPuzzle()
	require.Equal(t, "cat", b.Grid[0][0])
}

func TestGenerateWeekly(t *testing.T) {
	g := newGenerator(t)
	p := challenge.NewPipeline(g, fastPolicy())

	pack, err := p.GenerateWeekly(context.Background(), challenge.Request{
		PlayerID: "weekly",
		Level:    1,
		Mode:     challenge.ModeStandard,
	}, 7, 1234)
	require.NoError(t, err)
	require.Len(t, pack, 7)
	for i, pz := range pack {
		require.NoError(t, pz.Validate(), "day %d", i)
	}
}

func TestGenerateWeeklyRejectsBadInput(t *testing.T) {
	g := newGenerator(t)
	p := challenge.NewPipeline(g, fastPolicy())
	ctx := context.Background()

	_, err := p.GenerateWeekly(ctx, challenge.Request{PlayerID: "w", Level: 1, Mode: challenge.ModeStandard}, 0, 1)
	require.ErrorIs(t, err, challenge.ErrInvalidInput)

	_, err = p.GenerateWeekly(ctx, challenge.Request{PlayerID: "w", Level: 0, Mode: challenge.ModeStandard}, 7, 1)
	require.ErrorIs(t, err, challenge.ErrInvalidInput)
}

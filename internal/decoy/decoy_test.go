package decoy_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/rhymegrid/internal/decoy"
)

func TestTierForLevel(t *testing.T) {
	cases := []struct {
		level int
		want  decoy.Tier
	}{
		{1, decoy.Basic},
		{9, decoy.Basic},
		{10, decoy.Intermediate},
		{24, decoy.Intermediate},
		{25, decoy.Advanced},
		{80, decoy.Advanced},
	}
	for _, c := range cases {
		require.Equal(t, c.want, decoy.TierForLevel(c.level), "level %d", c.level)
	}
}

func TestGenerateNoDuplicates(t *testing.T) {
	g := decoy.New()
	rng := rand.New(rand.NewSource(1))

	got := g.Generate(12, decoy.Advanced, nil, rng)
	require.NotEmpty(t, got)
	seen := make(map[string]struct{}, len(got))
	for _, w := range got {
		_, dup := seen[w]
		require.False(t, dup, "duplicate decoy %q", w)
		seen[w] = struct{}{}
	}
}

func TestGenerateSkipsUsedWords(t *testing.T) {
	g := decoy.New()
	rng := rand.New(rand.NewSource(2))

	used := map[string]struct{}{
		"cot": {}, "bow": {}, "pat": {}, "catalog": {},
	}
	got := g.Generate(20, decoy.Basic, used, rng)
	require.NotEmpty(t, got)
	for _, w := range got {
		_, taken := used[w]
		require.False(t, taken, "decoy %q collides with a grid word", w)
	}
}

func TestGenerateMayReturnShort(t *testing.T) {
	g := decoy.New()
	rng := rand.New(rand.NewSource(3))

	// Basic tier has ~32 words total; asking for far more returns what exists.
	got := g.Generate(500, decoy.Basic, nil, rng)
	require.NotEmpty(t, got)
	require.Less(t, len(got), 500)
}

func TestGenerateZero(t *testing.T) {
	g := decoy.New()
	require.Nil(t, g.Generate(0, decoy.Basic, nil, rand.New(rand.NewSource(4))))
}

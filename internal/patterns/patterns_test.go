package patterns_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/rhymegrid/internal/patterns"
)

func mustInit(t *testing.T) {
	t.Helper()
	require.NoError(t, patterns.Init())
}

func TestInitLoadsCatalog(t *testing.T) {
	mustInit(t)
	p, w := patterns.Stats()
	require.Greater(t, p, 0, "catalog should have patterns")
	require.Greater(t, w, p, "catalog should have more words than patterns")
}

func TestSelectRespectsEnvelope(t *testing.T) {
	mustInit(t)
	env := patterns.Envelope{MaxLength: 5, PreferredLength: 4}
	rng := rand.New(rand.NewSource(1))

	got := patterns.Select(patterns.Rhyme, patterns.Simple, env, rng)
	require.NotEmpty(t, got)
	for _, p := range got {
		require.GreaterOrEqual(t, len(p.Words), 3, "pattern %s below usability floor", p.ID)
		for _, w := range p.Words {
			require.LessOrEqual(t, len(w), 5, "word %q exceeds envelope", w)
		}
	}
}

func TestSelectDropsPatternsBelowFloor(t *testing.T) {
	mustInit(t)
	// A 5-char ceiling leaves no sophisticated rhyme with 3 eligible words.
	env := patterns.Envelope{MaxLength: 5, PreferredLength: 4}
	rng := rand.New(rand.NewSource(1))

	got := patterns.Select(patterns.Rhyme, patterns.Sophisticated, env, rng)
	require.Empty(t, got)
}

func TestEnvelopeAllowLonger(t *testing.T) {
	env := patterns.Envelope{MaxLength: 5, PreferredLength: 4, AllowLonger: true}
	require.True(t, env.Fits("station"), "7 chars fits a stretched 5-char envelope")
	require.False(t, env.Fits("luminescence"))
}

func TestStopWordsExcluded(t *testing.T) {
	mustInit(t)
	require.True(t, patterns.IsStopWord("the"))
	require.True(t, patterns.IsStopWord("The"))
	require.False(t, patterns.IsStopWord("cat"))

	env := patterns.Envelope{MaxLength: 14, PreferredLength: 8}
	for _, w := range patterns.DecoyPool(env, rand.New(rand.NewSource(2))) {
		require.False(t, patterns.IsStopWord(w), "decoy pool leaked stop word %q", w)
	}
}

func TestSelectIsShuffledButStable(t *testing.T) {
	mustInit(t)
	env := patterns.Envelope{MaxLength: 8, PreferredLength: 6}

	a := patterns.Select(patterns.Alliteration, patterns.Simple, env, rand.New(rand.NewSource(7)))
	b := patterns.Select(patterns.Alliteration, patterns.Simple, env, rand.New(rand.NewSource(7)))
	require.Equal(t, ids(a), ids(b), "same seed should give the same order")
}

func ids(ps []patterns.Pattern) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

// internal/challenge/fallback.go
//
// Deterministic fallback puzzle served when generation fails outright:
// four well-known simple rhyme groups on a 4×4 grid with a generous time
// limit. Satisfies every puzzle invariant.

package challenge

import "time"

// fallbackGroups are fixed rhyme families; the grid order below interleaves
// them so the board is still a puzzle, not four tidy rows.
var fallbackGroups = []Group{
	{ID: "fb-at", PatternID: "at-family", Class: "rhyme", Tier: "simple", Weight: 1.0,
		Words: []string{"cat", "hat", "bat", "mat"}},
	{ID: "fb-ing", PatternID: "ing-family", Class: "rhyme", Tier: "simple", Weight: 1.0,
		Words: []string{"ring", "king", "sing", "wing"}},
	{ID: "fb-ight", PatternID: "ight-family", Class: "rhyme", Tier: "simple", Weight: 1.0,
		Words: []string{"light", "night", "right", "sight"}},
	{ID: "fb-ay", PatternID: "ay-family", Class: "rhyme", Tier: "simple", Weight: 1.0,
		Words: []string{"day", "way", "say", "play"}},
}

var fallbackGrid = [][]string{
	{"cat", "ring", "light", "day"},
	{"king", "hat", "way", "night"},
	{"right", "say", "bat", "sing"},
	{"play", "sight", "wing", "mat"},
}

const (
	fallbackTimeLimit  = 300
	fallbackDifficulty = 1000
)

// FallbackPuzzle returns a fresh copy of the hard-coded puzzle.
func FallbackPuzzle() *Puzzle {
	groups := make([]Group, len(fallbackGroups))
	for i, g := range fallbackGroups {
		g.Words = append([]string(nil), g.Words...)
		groups[i] = g
	}
	grid := make([][]string, len(fallbackGrid))
	for i, row := range fallbackGrid {
		grid[i] = append([]string(nil), row...)
	}
	tokens, xp := rewards(fallbackDifficulty, false)
	return &Puzzle{
		ID:               "fallback-" + randomID(),
		GridSize:         smallGrid,
		Groups:           groups,
		Decoys:           nil,
		Grid:             grid,
		TimeLimitSeconds: fallbackTimeLimit,
		MaxStrikes:       maxStrikes,
		TokenReward:      tokens,
		XPReward:         xp,
		Difficulty:       fallbackDifficulty,
		Features:         deriveFeatures(fallbackDifficulty, 1),
		Mode:             ModeStandard,
		CreatedAt:        time.Now().UTC(),
	}
}

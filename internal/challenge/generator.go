// internal/challenge/generator.go
//
// Core puzzle planner: turns (rating, level, mode, constraints) into a
// concrete puzzle.
// Responsibilities:
//   - Derive a target difficulty from the player's rating record.
//   - Gate adaptive features on BOTH difficulty and level thresholds.
//   - Decide grid size, assemble hidden groups under the global word
//     uniqueness invariant, fill remaining cells with decoys.
//   - Compute time limit and reward magnitudes monotonically from difficulty.
//
// Generation is a pure computation over the immutable catalog; every call
// uses its own *rand.Rand, so concurrent calls need no synchronization.
// Daily puzzles pass a seeded source for deterministic boards.

package challenge

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rhymegrid/internal/decoy"
	"github.com/robalobadob/rhymegrid/internal/patterns"
	"github.com/robalobadob/rhymegrid/internal/rating"
)

// Named generation constants, tunable in one place rather than inline.
const (
	smallGrid       = 4
	largeGrid       = 8
	smallGridGroups = 4
	largeGridGroups = 8

	minGroupSize = 2
	maxGroupSize = 7
	maxStrikes   = 3

	// Standard and daily modes cap difficulty; endless/detective (and
	// premium players) use the uncapped target.
	standardDifficultyCap = 1600

	// 8×8 grids never appear below this level; above it the chance rises
	// with difficulty up to maxLargeGridChance.
	largeGridLevelFloor = 5
	maxLargeGridChance  = 0.70
	largeGridRampStart  = 1400
	largeGridRampSpan   = 600

	// crowdingLength halves the 8×8 chance when the envelope admits words
	// this long (long words crowd the larger grid).
	crowdingLength = 9

	baseTimeSmall = 120 // seconds, before the difficulty multiplier
	baseTimeLarge = 300

	dailyBonusTokens = 25
	dailyBonusXP     = 50

	// Groups drawn at or above this difficulty take the larger of two
	// size rolls, biasing toward bigger groups.
	largeGroupBiasFloor = 1600
)

// Generator assembles puzzles for a player context.
type Generator struct {
	ratings *rating.Store
	decoys  *decoy.Generator
}

// NewGenerator constructs a Generator.
func NewGenerator(ratings *rating.Store, decoys *decoy.Generator) *Generator {
	return &Generator{ratings: ratings, decoys: decoys}
}

// Generate builds a puzzle with a fresh random source.
func (g *Generator) Generate(ctx context.Context, req Request) (*Puzzle, error) {
	return g.GenerateWithRand(ctx, req, newRand())
}

// GenerateWithRand builds a puzzle using the provided source. Passing a
// seeded source yields a deterministic board (used by the daily mode).
func (g *Generator) GenerateWithRand(ctx context.Context, req Request, rng *rand.Rand) (*Puzzle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pr, err := g.ratings.GetOrCreate(ctx, req.PlayerID, req.Level)
	if err != nil {
		return nil, fmt.Errorf("challenge: load rating: %w", err)
	}

	difficulty := g.ratings.TargetDifficulty(pr, rng)
	if capped(req) && difficulty > standardDifficultyCap {
		difficulty = standardDifficultyCap
	}

	feats := deriveFeatures(difficulty, req.Level)
	gridSize := decideGridSize(difficulty, req.Level, feats, req.GridSizeHint, rng)

	groups, used, err := g.buildGroups(gridSize, difficulty, feats, req, rng)
	if err != nil {
		return nil, err
	}

	decoys, err := g.fillDecoys(gridSize, groups, used, feats, req, rng)
	if err != nil {
		return nil, err
	}

	tokens, xp := rewards(difficulty, req.Daily || req.Mode == ModeDaily)
	p := &Puzzle{
		ID:               randomID(),
		GridSize:         gridSize,
		Groups:           groups,
		Decoys:           decoys,
		Grid:             layoutGrid(gridSize, groups, decoys, rng),
		TimeLimitSeconds: timeLimit(gridSize, difficulty),
		MaxStrikes:       maxStrikes,
		TokenReward:      tokens,
		XPReward:         xp,
		Difficulty:       difficulty,
		Features:         feats,
		Mode:             req.Mode,
		CreatedAt:        time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotEnoughWords, err)
	}

	log.Debug().Str("puzzleId", p.ID).Int("difficulty", difficulty).
		Int("gridSize", gridSize).Int("groups", len(groups)).
		Int("decoys", len(decoys)).Msg("generated puzzle")
	return p, nil
}

// capped reports whether the mode keeps the standard difficulty ceiling.
func capped(req Request) bool {
	if req.Premium {
		return false
	}
	return req.Mode == ModeStandard || req.Mode == ModeDaily
}

// deriveFeatures gates each adaptive feature on an independent pair of
// difficulty and level thresholds.
func deriveFeatures(difficulty, level int) Features {
	f := Features{
		LongerWords:        difficulty >= 1300 && level >= 8,
		ObscurePatterns:    difficulty >= 1500 && level >= 12,
		MixedPatterns:      difficulty >= 1400 && level >= 10,
		CulturalVocabulary: difficulty >= 1450 && level >= 15,
		AbstractConcepts:   difficulty >= 1700 && level >= 20,
	}
	f.Envelope = lengthEnvelope(difficulty, level, f.LongerWords)
	return f
}

// lengthEnvelope grows the word-length ceiling gradually with level
// (5 chars at level 1, 12+ at high level) and nudges it by difficulty tier.
func lengthEnvelope(difficulty, level int, allowLonger bool) patterns.Envelope {
	maxLen := 5 + level/8
	if maxLen > 14 {
		maxLen = 14
	}
	switch {
	case difficulty >= 1800:
		maxLen += 2
	case difficulty >= 1400:
		maxLen++
	}
	pref := maxLen - 2
	if pref < 4 {
		pref = 4
	}
	return patterns.Envelope{MaxLength: maxLen, PreferredLength: pref, AllowLonger: allowLonger}
}

// decideGridSize picks 4×4 or 8×8. Below the level floor it is always 4×4;
// above it the 8×8 chance ramps with difficulty up to 70%, halved when the
// envelope admits long words.
func decideGridSize(difficulty, level int, f Features, hint int, rng *rand.Rand) int {
	if hint == smallGrid || hint == largeGrid {
		return hint
	}
	if level < largeGridLevelFloor {
		return smallGrid
	}
	chance := float64(difficulty-largeGridRampStart) / largeGridRampSpan * maxLargeGridChance
	if chance <= 0 {
		return smallGrid
	}
	if chance > maxLargeGridChance {
		chance = maxLargeGridChance
	}
	if f.Envelope.MaxLength >= crowdingLength {
		chance /= 2
	}
	if rng.Float64() < chance {
		return largeGrid
	}
	return smallGrid
}

// buildGroups assembles hidden groups from catalog candidates, keeping the
// global uniqueness invariant and leaving room for each remaining group.
func (g *Generator) buildGroups(gridSize, difficulty int, f Features, req Request, rng *rand.Rand) ([]Group, map[string]struct{}, error) {
	cells := gridSize * gridSize
	target := smallGridGroups
	if gridSize == largeGrid {
		target = largeGridGroups
	}

	candidates := g.candidatePatterns(difficulty, f, req, rng)
	if len(candidates) == 0 {
		return nil, nil, fmt.Errorf("%w: difficulty %d level %d", ErrNoPatterns, difficulty, req.Level)
	}

	used := make(map[string]struct{})
	groups := make([]Group, 0, target)
	remaining := cells

	for _, p := range candidates {
		if len(groups) >= target || remaining < minGroupSize {
			break
		}
		eligible := withoutUsed(p.Words, used)
		if len(eligible) < minGroupSize {
			continue
		}

		size := groupSize(difficulty, rng)
		// Leave at least minGroupSize cells for each group still to come.
		groupsLeft := target - len(groups) - 1
		if room := remaining - groupsLeft*minGroupSize; size > room {
			size = room
		}
		if size > len(eligible) {
			size = len(eligible)
		}
		if size < minGroupSize {
			continue
		}

		rng.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })
		words := eligible[:size]
		for _, w := range words {
			used[w] = struct{}{}
		}
		remaining -= size
		groups = append(groups, Group{
			ID:        randomID(),
			PatternID: p.ID,
			Class:     p.Class,
			Tier:      p.Tier,
			Words:     words,
			Weight:    p.Weight,
		})
	}

	if len(groups) == 0 {
		return nil, nil, fmt.Errorf("%w: no viable group at difficulty %d", ErrNotEnoughWords, difficulty)
	}
	return groups, used, nil
}

// candidatePatterns gathers filtered patterns across the eligible classes
// and tiers. When MixedPatterns is off, the whole puzzle draws from a
// single class.
func (g *Generator) candidatePatterns(difficulty int, f Features, req Request, rng *rand.Rand) []patterns.Pattern {
	classes := eligibleClasses(f, req.CulturalTheme)
	if !f.MixedPatterns {
		classes = []patterns.Class{classes[rng.Intn(len(classes))]}
	}

	var out []patterns.Pattern
	for _, tier := range candidateTiers(difficulty, f) {
		for _, class := range classes {
			for _, p := range patterns.Select(class, tier, f.Envelope, rng) {
				if req.CulturalTheme != "" && p.Class == patterns.Cultural && p.Culture != req.CulturalTheme {
					continue
				}
				out = append(out, p)
			}
		}
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// eligibleClasses returns the pattern classes open to this player.
// Cultural vocabulary is gated unless the caller requests a theme.
func eligibleClasses(f Features, theme string) []patterns.Class {
	classes := []patterns.Class{patterns.Rhyme, patterns.Alliteration, patterns.Consonance}
	if f.CulturalVocabulary || theme != "" {
		if theme != "" {
			return append([]patterns.Class{patterns.Cultural}, classes...)
		}
		classes = append(classes, patterns.Cultural)
	}
	return classes
}

// candidateTiers orders sophistication tiers by difficulty band.
// ObscurePatterns unlocks the next tier early; AbstractConcepts puts the
// sophisticated tier first.
func candidateTiers(difficulty int, f Features) []patterns.Tier {
	var tiers []patterns.Tier
	switch {
	case difficulty < 1250:
		tiers = []patterns.Tier{patterns.Simple}
		if f.ObscurePatterns {
			tiers = append(tiers, patterns.Rhythmic)
		}
	case difficulty < 1550:
		tiers = []patterns.Tier{patterns.Rhythmic, patterns.Simple}
		if f.ObscurePatterns {
			tiers = append(tiers, patterns.Sophisticated)
		}
	default:
		tiers = []patterns.Tier{patterns.Sophisticated, patterns.Rhythmic, patterns.Simple}
	}
	if f.AbstractConcepts && tiers[0] != patterns.Sophisticated {
		tiers = append([]patterns.Tier{patterns.Sophisticated}, tiers...)
	}
	return tiers
}

// groupSize rolls a size in [2,7], taking the larger of two rolls at high
// difficulty.
func groupSize(difficulty int, rng *rand.Rand) int {
	roll := func() int { return minGroupSize + rng.Intn(maxGroupSize-minGroupSize+1) }
	size := roll()
	if difficulty >= largeGroupBiasFloor {
		if second := roll(); second > size {
			size = second
		}
	}
	return size
}

// fillDecoys fills the unused cells. Detective mode (or an explicit decoy
// request) draws trap words first, topping up from the curated pool; other
// modes draw from the curated pool only.
func (g *Generator) fillDecoys(gridSize int, groups []Group, used map[string]struct{}, f Features, req Request, rng *rand.Rand) ([]string, error) {
	need := gridSize * gridSize
	for _, gr := range groups {
		need -= len(gr.Words)
	}
	if need == 0 {
		return nil, nil
	}

	out := make([]string, 0, need)
	if req.Mode == ModeDetective || req.Decoys {
		tier := decoy.TierForLevel(req.Level)
		for _, w := range g.decoys.Generate(need, tier, used, rng) {
			used[w] = struct{}{}
			out = append(out, w)
		}
	}
	for _, w := range patterns.DecoyPool(f.Envelope, rng) {
		if len(out) >= need {
			break
		}
		if _, taken := used[w]; taken {
			continue
		}
		used[w] = struct{}{}
		out = append(out, w)
	}
	if len(out) < need {
		return nil, fmt.Errorf("%w: %d decoys short for %d cells", ErrNotEnoughWords, need-len(out), gridSize*gridSize)
	}
	return out, nil
}

// layoutGrid shuffles all words and maps them linearly into the matrix.
func layoutGrid(gridSize int, groups []Group, decoys []string, rng *rand.Rand) [][]string {
	all := make([]string, 0, gridSize*gridSize)
	for _, g := range groups {
		all = append(all, g.Words...)
	}
	all = append(all, decoys...)
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	grid := make([][]string, gridSize)
	for r := 0; r < gridSize; r++ {
		grid[r] = all[r*gridSize : (r+1)*gridSize]
	}
	return grid
}

// timeLimit scales the base budget by difficulty.
func timeLimit(gridSize, difficulty int) int {
	base := baseTimeSmall
	if gridSize == largeGrid {
		base = baseTimeLarge
	}
	return int(float64(base) * (1 + float64(difficulty-1200)/1200))
}

// rewards scales token/xp linearly with difficulty plus a flat daily bonus.
func rewards(difficulty int, daily bool) (tokens, xp int) {
	tokens = 10 + difficulty/100
	xp = 20 + difficulty/50
	if daily {
		tokens += dailyBonusTokens
		xp += dailyBonusXP
	}
	return tokens, xp
}

// withoutUsed filters words already placed elsewhere in the puzzle.
func withoutUsed(words []string, used map[string]struct{}) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, taken := used[w]; !taken {
			out = append(out, w)
		}
	}
	return out
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// newRand returns a rand.Rand seeded from crypto entropy.
func newRand() *rand.Rand {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(b[:]))))
}

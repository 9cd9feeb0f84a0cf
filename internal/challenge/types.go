// internal/challenge/types.go
//
// Core type definitions for puzzle generation.
// Defines:
//   - Mode: play mode requested by the caller.
//   - Request: validated generation input.
//   - Features: adaptive feature flags derived from difficulty and level.
//   - Group / Puzzle: the generated value objects consumed by the session
//     engine. A Puzzle is immutable once returned.

package challenge

import (
	"fmt"
	"time"

	"github.com/robalobadob/rhymegrid/internal/patterns"
)

// Mode selects generation behavior.
// Standard and daily cap difficulty; endless uses the uncapped value;
// detective adds trap-word decoys.
type Mode string

const (
	ModeStandard  Mode = "standard"
	ModeDaily     Mode = "daily"
	ModeEndless   Mode = "endless"
	ModeDetective Mode = "detective"
)

func validMode(m Mode) bool {
	switch m {
	case ModeStandard, ModeDaily, ModeEndless, ModeDetective:
		return true
	}
	return false
}

// Request is the caller's generation input.
type Request struct {
	PlayerID      string
	Level         int  // 1..100
	Mode          Mode
	Premium       bool // premium entitlement lifts the difficulty cap
	Daily         bool // daily bonus rewards
	Decoys        bool // request trap decoys outside detective mode
	GridSizeHint  int  // 0 (let the generator decide), 4, or 8
	CulturalTheme string
}

// Validate rejects malformed input. Failures are non-retryable.
func (r Request) Validate() error {
	if r.PlayerID == "" {
		return fmt.Errorf("%w: empty player id", ErrInvalidInput)
	}
	if r.Level < 1 || r.Level > 100 {
		return fmt.Errorf("%w: level %d outside [1,100]", ErrInvalidInput, r.Level)
	}
	if !validMode(r.Mode) {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, r.Mode)
	}
	if r.GridSizeHint != 0 && r.GridSizeHint != smallGrid && r.GridSizeHint != largeGrid {
		return fmt.Errorf("%w: grid size hint %d", ErrInvalidInput, r.GridSizeHint)
	}
	return nil
}

// Features gates content by BOTH difficulty and level thresholds, so a lucky
// rating spike cannot expose content a new player is not ready for.
type Features struct {
	LongerWords        bool
	ObscurePatterns    bool
	MixedPatterns      bool // groups may mix pattern classes
	CulturalVocabulary bool
	AbstractConcepts   bool
	Envelope           patterns.Envelope
}

// Group is one hidden pattern group inside a puzzle.
type Group struct {
	ID        string          `json:"id"`
	PatternID string          `json:"patternId"`
	Class     patterns.Class  `json:"class"`
	Tier      patterns.Tier   `json:"tier"`
	Words     []string        `json:"words"` // 2..7 words, unique across the puzzle
	Weight    float64         `json:"weight"`
	Completed bool            `json:"completed"`
}

// Puzzle is the generated challenge. Immutable once returned.
type Puzzle struct {
	ID               string    `json:"id"`
	GridSize         int       `json:"gridSize"` // 4 or 8
	Groups           []Group   `json:"groups"`
	Decoys           []string  `json:"decoys"`
	Grid             [][]string `json:"grid"` // GridSize rows × GridSize cells
	TimeLimitSeconds int       `json:"timeLimitSeconds"`
	MaxStrikes       int       `json:"maxStrikes"`
	TokenReward      int       `json:"tokenReward"`
	XPReward         int       `json:"xpReward"`
	Difficulty       int       `json:"difficulty"`
	Features         Features  `json:"-"`
	Mode             Mode      `json:"mode"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Cells returns the total number of grid cells.
func (p *Puzzle) Cells() int { return p.GridSize * p.GridSize }

// WordAt maps a linear cell ID (row-major) to its word.
func (p *Puzzle) WordAt(cell int) (string, bool) {
	if cell < 0 || cell >= p.Cells() {
		return "", false
	}
	return p.Grid[cell/p.GridSize][cell%p.GridSize], true
}

// GroupOf returns the group containing word, or nil for decoys.
func (p *Puzzle) GroupOf(word string) *Group {
	for i := range p.Groups {
		for _, w := range p.Groups[i].Words {
			if w == word {
				return &p.Groups[i]
			}
		}
	}
	return nil
}

// LargestGroupSize returns the size of the biggest group in the puzzle.
func (p *Puzzle) LargestGroupSize() int {
	max := 0
	for _, g := range p.Groups {
		if len(g.Words) > max {
			max = len(g.Words)
		}
	}
	return max
}

// Validate enforces the puzzle invariants:
// coverage (sum of group sizes + decoys == gridSize²), global word
// uniqueness, grid shape, and the fixed strike budget.
func (p *Puzzle) Validate() error {
	if p.GridSize != smallGrid && p.GridSize != largeGrid {
		return fmt.Errorf("puzzle %s: bad grid size %d", p.ID, p.GridSize)
	}
	if p.MaxStrikes != maxStrikes {
		return fmt.Errorf("puzzle %s: max strikes %d", p.ID, p.MaxStrikes)
	}
	if p.TimeLimitSeconds <= 0 {
		return fmt.Errorf("puzzle %s: non-positive time limit", p.ID)
	}
	if len(p.Groups) == 0 {
		return fmt.Errorf("puzzle %s: no groups", p.ID)
	}

	seen := make(map[string]struct{})
	total := 0
	for _, g := range p.Groups {
		if len(g.Words) < minGroupSize || len(g.Words) > maxGroupSize {
			return fmt.Errorf("puzzle %s: group %s has %d words", p.ID, g.ID, len(g.Words))
		}
		for _, w := range g.Words {
			if _, dup := seen[w]; dup {
				return fmt.Errorf("puzzle %s: word %q used twice", p.ID, w)
			}
			seen[w] = struct{}{}
		}
		total += len(g.Words)
	}
	for _, w := range p.Decoys {
		if _, dup := seen[w]; dup {
			return fmt.Errorf("puzzle %s: decoy %q duplicates a word", p.ID, w)
		}
		seen[w] = struct{}{}
	}
	total += len(p.Decoys)
	if total != p.Cells() {
		return fmt.Errorf("puzzle %s: %d words for %d cells", p.ID, total, p.Cells())
	}

	if len(p.Grid) != p.GridSize {
		return fmt.Errorf("puzzle %s: grid has %d rows", p.ID, len(p.Grid))
	}
	for r, row := range p.Grid {
		if len(row) != p.GridSize {
			return fmt.Errorf("puzzle %s: row %d has %d cells", p.ID, r, len(row))
		}
		for _, w := range row {
			if _, ok := seen[w]; !ok {
				return fmt.Errorf("puzzle %s: grid word %q not in any group or decoy", p.ID, w)
			}
			delete(seen, w) // each word appears exactly once in the grid
		}
	}
	if len(seen) != 0 {
		return fmt.Errorf("puzzle %s: %d words missing from grid", p.ID, len(seen))
	}
	return nil
}

// internal/decoy/decoy.go
//
// Trap-word generation for detective-style modes.
//
// Four strategies, each with a sophistication tier that widens vocabulary
// as the player level rises:
//   - near-rhyme:      same ending family, different vowel
//   - visual-trick:    looks similar, sounds different
//   - length-trap:     shares a root but very different length
//   - consonant-shift: similar cluster, different onset
//
// Guarantee: Generate never returns a word already present in the used set,
// and never returns the same word twice.

package decoy

import (
	"math/rand"

	"github.com/samber/lo"
)

// Strategy names one decoy construction technique.
type Strategy string

const (
	NearRhyme      Strategy = "near-rhyme"
	VisualTrick    Strategy = "visual-trick"
	LengthTrap     Strategy = "length-trap"
	ConsonantShift Strategy = "consonant-shift"
)

// Tier widens the decoy vocabulary with player level.
type Tier string

const (
	Basic        Tier = "basic"
	Intermediate Tier = "intermediate"
	Advanced     Tier = "advanced"
)

// Level cutoffs for tier selection.
const (
	intermediateLevel = 10
	advancedLevel     = 25
)

// vocab holds the static trap-word pools, keyed by strategy then tier.
// Higher tiers are cumulative at selection time (advanced draws from all).
var vocab = map[Strategy]map[Tier][]string{
	NearRhyme: {
		Basic:        {"cot", "cut", "kit", "bet", "rang", "rung", "gong", "soot", "pit", "net"},
		Intermediate: {"mitten", "button", "ripple", "rubble", "tangle", "jingle", "mutter", "sitter"},
		Advanced:     {"technique", "physique", "verbosity", "pomposity", "torrential", "referential"},
	},
	VisualTrick: {
		Basic:        {"bow", "sew", "dove", "lead", "tear", "wound", "bass", "close"},
		Intermediate: {"colonel", "draught", "thorough", "plaited", "quayside", "victuals"},
		Advanced:     {"segue", "epitome", "hyperbole", "facade", "denouement", "colonnade"},
	},
	LengthTrap: {
		Basic:        {"catalog", "hatchet", "kingdom", "daylight", "dogged", "maker"},
		Intermediate: {"stationery", "fingertip", "shadowy", "flickering", "thunderous"},
		Advanced:     {"antiquarian", "critiquing", "philosophizing", "structuralism", "essentially"},
	},
	ConsonantShift: {
		Basic:        {"pat", "vat", "zing", "cling", "tock", "dock", "vest", "zest"},
		Intermediate: {"frolic", "crackle", "spindle", "trundle", "gristle", "bristly"},
		Advanced:     {"quibble", "phalanx", "synapse", "sibylline", "quotidian"},
	},
}

// Generator produces trap words for a puzzle.
type Generator struct{}

// New constructs a decoy Generator.
func New() *Generator { return &Generator{} }

// TierForLevel maps a player level to a decoy sophistication tier.
func TierForLevel(level int) Tier {
	switch {
	case level >= advancedLevel:
		return Advanced
	case level >= intermediateLevel:
		return Intermediate
	default:
		return Basic
	}
}

// Generate returns up to n trap words for the given tier, cycling through
// the four strategies so a grid mixes trap styles. Words present in used
// are skipped. The result may be shorter than n if vocabulary runs out;
// callers top up from the curated pool.
func (g *Generator) Generate(n int, tier Tier, used map[string]struct{}, rng *rand.Rand) []string {
	if n <= 0 {
		return nil
	}
	strategies := []Strategy{NearRhyme, VisualTrick, LengthTrap, ConsonantShift}
	rng.Shuffle(len(strategies), func(i, j int) { strategies[i], strategies[j] = strategies[j], strategies[i] })

	out := make([]string, 0, n)
	picked := make(map[string]struct{}, n)
	for _, st := range strategies {
		if len(out) >= n {
			break
		}
		pool := poolFor(st, tier)
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		for _, w := range pool {
			if len(out) >= n {
				break
			}
			if _, dup := picked[w]; dup {
				continue
			}
			if _, taken := used[w]; taken {
				continue
			}
			picked[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

// poolFor returns a fresh cumulative pool for a strategy at the given tier.
// Advanced players see basic words too; subtlety comes from the mix.
func poolFor(st Strategy, tier Tier) []string {
	tiers := []Tier{Basic}
	switch tier {
	case Intermediate:
		tiers = append(tiers, Intermediate)
	case Advanced:
		tiers = append(tiers, Intermediate, Advanced)
	}
	var out []string
	for _, t := range tiers {
		out = append(out, vocab[st][t]...)
	}
	return lo.Uniq(out)
}

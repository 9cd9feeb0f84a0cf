// internal/patterns/patterns.go
//
// Static word-pattern catalog for the puzzle generator.
//
// Responsibilities:
//   - Load the pattern table once from embedded assets (class × tier records).
//   - Filter function words (stop words) so only content words reach gameplay.
//   - Apply the progressive word-length envelope before returning candidates.
//   - Supply the curated decoy pool used to fill unused grid cells.
//
// Catalog record format (assets/patterns.txt):
//   class|tier|id|weight|rhythm|culture|word,word,word
//
// Constraints:
//   • The catalog is immutable after Init; Select returns copies.
//   • A pattern with fewer than 3 eligible words after filtering is omitted
//     from Select results, never returned half-empty.
//   • Initialization is run once (sync.Once).

package patterns

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/robalobadob/rhymegrid/assets"
)

// Class identifies the structural family a pattern belongs to.
type Class string

const (
	Rhyme        Class = "rhyme"
	Alliteration Class = "alliteration"
	Consonance   Class = "consonance"
	Cultural     Class = "cultural"
)

// Tier is the sophistication tier of a pattern.
type Tier string

const (
	Simple        Tier = "simple"
	Rhythmic      Tier = "rhythmic"
	Sophisticated Tier = "sophisticated"
)

// Pattern is one immutable catalog entry.
type Pattern struct {
	ID      string
	Class   Class
	Tier    Tier
	Words   []string
	Weight  float64 // difficulty weight, ~1.0 (simple) to ~2.5 (sophisticated)
	Rhythm  string
	Culture string // set for Cultural patterns only
}

// Envelope is the progressive word-length envelope applied before selection.
type Envelope struct {
	MaxLength       int
	PreferredLength int
	AllowLonger     bool // permits words a few characters past MaxLength
}

// longerSlack is how far past MaxLength AllowLonger stretches the envelope.
const longerSlack = 3

// Fits reports whether w is inside the envelope.
func (e Envelope) Fits(w string) bool {
	limit := e.MaxLength
	if e.AllowLonger {
		limit += longerSlack
	}
	return len(w) >= 2 && len(w) <= limit
}

// minEligibleWords is the usability floor: patterns with fewer eligible
// words after filtering are dropped from Select results.
const minEligibleWords = 3

// stopWords is the fixed function-word set excluded from gameplay.
var stopWords = toSet([]string{
	"the", "and", "a", "an", "of", "to", "in", "it", "is", "that",
	"for", "on", "with", "as", "at", "by", "from", "or", "but", "not",
	"are", "was", "be", "this", "have", "had", "his", "her", "they",
	"you", "all", "can", "will", "out", "has", "its", "our", "who",
})

type catalogKey struct {
	class Class
	tier  Tier
}

var (
	initOnce     sync.Once
	byKey        map[catalogKey][]Pattern
	decoyPool    []string
	patternCount int
	wordCount    int
	initialErr   error
)

// Init parses the embedded catalog exactly once.
// Returns an error if the catalog is empty or malformed.
func Init() error {
	initOnce.Do(func() {
		lines, err := assets.PatternLines()
		if err != nil {
			initialErr = err
			return
		}
		byKey = make(map[catalogKey][]Pattern)
		for _, line := range lines {
			p, err := parseLine(line)
			if err != nil {
				initialErr = err
				return
			}
			k := catalogKey{p.Class, p.Tier}
			byKey[k] = append(byKey[k], p)
			patternCount++
			wordCount += len(p.Words)
		}
		if patternCount == 0 {
			initialErr = errors.New("patterns: catalog is empty")
			return
		}

		pool, err := assets.DecoyLines()
		if err != nil {
			initialErr = err
			return
		}
		decoyPool = lo.Filter(lo.Uniq(pool), func(w string, _ int) bool {
			return !IsStopWord(w)
		})
		if len(decoyPool) == 0 {
			initialErr = errors.New("patterns: decoy pool is empty")
		}
	})
	return initialErr
}

// parseLine converts one catalog record into a Pattern.
func parseLine(line string) (Pattern, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 7 {
		return Pattern{}, fmt.Errorf("patterns: malformed record %q", line)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	class := Class(parts[0])
	tier := Tier(parts[1])
	if !validClass(class) || !validTier(tier) {
		return Pattern{}, fmt.Errorf("patterns: unknown class/tier in %q", line)
	}
	weight, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return Pattern{}, fmt.Errorf("patterns: bad weight in %q: %w", line, err)
	}
	var words []string
	for _, w := range strings.Split(parts[6], ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			words = append(words, w)
		}
	}
	if len(words) < minEligibleWords {
		return Pattern{}, fmt.Errorf("patterns: record %q has fewer than %d words", parts[2], minEligibleWords)
	}
	return Pattern{
		ID:      parts[2],
		Class:   class,
		Tier:    tier,
		Words:   words,
		Weight:  weight,
		Rhythm:  parts[4],
		Culture: parts[5],
	}, nil
}

func validClass(c Class) bool {
	switch c {
	case Rhyme, Alliteration, Consonance, Cultural:
		return true
	}
	return false
}

func validTier(t Tier) bool {
	switch t {
	case Simple, Rhythmic, Sophisticated:
		return true
	}
	return false
}

// Classes returns all pattern classes in a stable order.
func Classes() []Class {
	return []Class{Rhyme, Alliteration, Consonance, Cultural}
}

// Tiers returns all sophistication tiers from easiest to hardest.
func Tiers() []Tier {
	return []Tier{Simple, Rhythmic, Sophisticated}
}

// Select returns a shuffled list of patterns for (class, tier) whose word
// lists survive stop-word and envelope filtering with at least 3 words.
// Each returned Pattern carries only its eligible words.
func Select(class Class, tier Tier, env Envelope, rng *rand.Rand) []Pattern {
	src := byKey[catalogKey{class, tier}]
	out := make([]Pattern, 0, len(src))
	for _, p := range src {
		words := Eligible(p, env)
		if len(words) < minEligibleWords {
			continue
		}
		cp := p
		cp.Words = words
		out = append(out, cp)
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Eligible returns p's words that pass the stop-word filter and fit the
// envelope. The pattern itself is not modified.
func Eligible(p Pattern, env Envelope) []string {
	return lo.Filter(p.Words, func(w string, _ int) bool {
		return !IsStopWord(w) && env.Fits(w)
	})
}

// DecoyPool returns a shuffled copy of the curated decoy pool, restricted
// to words fitting the envelope.
func DecoyPool(env Envelope, rng *rand.Rand) []string {
	out := lo.Filter(decoyPool, func(w string, _ int) bool {
		return env.Fits(w)
	})
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// IsStopWord reports whether w is in the function-word exclusion set.
func IsStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded patterns and words (for diagnostics).
func Stats() (patterns int, words int) {
	return patternCount, wordCount
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// internal/session/engine.go
//
// Per-play state machine for a single puzzle session.
// Responsibilities:
//   - Track revealed cells, matched groups, strikes, combo, and score.
//   - Apply reveal/deselect semantics: re-tapping a revealed card deselects
//     it; revealing a card from a second group (or a decoy alongside
//     anything) is a strike.
//   - Score completed matches with time bonus, combo, and perfect-streak
//     multipliers; emit the terminal outcome.
//
// The session is not safe for concurrent mutation; the owning client
// serializes input events. The countdown is cooperative: the client drives
// Tick, and reaching the budget triggers the lost transition.

package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math"
	"time"

	"github.com/robalobadob/rhymegrid/internal/challenge"
)

var (
	// ErrFinished is returned for actions on a terminal session.
	ErrFinished = errors.New("session: already finished")
	// ErrBadCell is returned for out-of-range cell IDs.
	ErrBadCell = errors.New("session: cell out of range")
)

// Scoring constants.
const (
	comboWindow       = 5.0 // seconds between matches to keep the combo alive
	matchBaseScale    = 100 // group weight multiplier
	timeBonusScale    = 50  // per-match time bonus multiplier
	comboStep         = 0.1 // +10% per combo level
	perfectMultiplier = 1.5
	winBonusScale     = 500 // lump sum on the remaining-time fraction at win
)

// decoyKey marks a revealed decoy; decoys belong to no group and can
// never complete, so any second reveal after one is a strike.
const decoyKey = "decoy"

// Session holds the state of one play-through of a puzzle.
type Session struct {
	ID     string
	Puzzle *challenge.Puzzle

	revealed      []int // cell IDs in reveal order, all from one group
	activeKey     string
	matched       map[string]bool // group ID → completed
	strikes       int
	combo         int
	perfectStreak int
	totalScore    int
	elapsed       float64 // seconds, advanced by Tick
	lastMatchAt   float64
	state         State

	CreatedAt time.Time
}

// New constructs a session over a generated puzzle. The puzzle is read-only.
func New(p *challenge.Puzzle) *Session {
	return &Session{
		ID:          sessionID(),
		Puzzle:      p,
		matched:     make(map[string]bool),
		lastMatchAt: math.Inf(-1),
		state:       StateSelecting,
		CreatedAt:   time.Now().UTC(),
	}
}

// State reports the coarse session state.
func (s *Session) State() State { return s.state }

// Reveal applies one player action on a cell: reveal, or deselect if the
// cell is already revealed. Returns the resulting snapshot.
func (s *Session) Reveal(cell int) (Snapshot, error) {
	if s.terminal() {
		return s.snapshot(s.terminalEvent(), 0), ErrFinished
	}
	word, ok := s.Puzzle.WordAt(cell)
	if !ok {
		return s.snapshot(EventIgnored, 0), ErrBadCell
	}

	group := s.Puzzle.GroupOf(word)
	if group != nil && s.matched[group.ID] {
		// Matched groups are removed from play.
		return s.snapshot(EventIgnored, 0), nil
	}

	// Re-tap deselects instead of counting as a move.
	if i := indexOf(s.revealed, cell); i >= 0 {
		s.revealed = append(s.revealed[:i], s.revealed[i+1:]...)
		if len(s.revealed) == 0 {
			s.activeKey = ""
		}
		return s.snapshot(EventDeselected, 0), nil
	}

	key := decoyKey
	if group != nil {
		key = group.ID
	}
	s.revealed = append(s.revealed, cell)

	switch {
	case len(s.revealed) == 1:
		s.activeKey = key
	case key != s.activeKey || s.activeKey == decoyKey:
		return s.strike(), nil
	case len(s.revealed) > s.Puzzle.LargestGroupSize():
		return s.strike(), nil
	}

	if group != nil && len(s.revealed) == len(group.Words) {
		return s.match(group), nil
	}
	return s.snapshot(EventRevealed, 0), nil
}

// Tick advances the cooperative timer. Reaching the time budget triggers
// the lost transition.
func (s *Session) Tick(elapsedSeconds float64) Snapshot {
	if elapsedSeconds > s.elapsed {
		s.elapsed = elapsedSeconds
	}
	if !s.terminal() && s.elapsed >= float64(s.Puzzle.TimeLimitSeconds) {
		s.state = StateLost
		return s.snapshot(EventLost, 0)
	}
	return s.snapshot(EventTick, 0)
}

// Outcome returns the terminal record. Valid once State is won or lost.
func (s *Session) Outcome() Outcome {
	limit := float64(s.Puzzle.TimeLimitSeconds)
	ratio := 1 - s.elapsed/limit
	if ratio < 0 {
		ratio = 0
	}
	return Outcome{
		Won:            s.state == StateWon,
		TotalScore:     s.totalScore,
		Strikes:        s.strikes,
		ElapsedSeconds: s.elapsed,
		Accuracy:       1 - float64(s.strikes)/float64(s.Puzzle.MaxStrikes),
		TimeRatio:      ratio,
	}
}

// match scores a completed group and clears the selection.
func (s *Session) match(group *challenge.Group) Snapshot {
	bonus := s.timeBonus()
	if s.elapsed-s.lastMatchAt < comboWindow {
		s.combo++
	} else {
		s.combo = 1
	}
	if s.strikes == 0 {
		s.perfectStreak++
	} else {
		s.perfectStreak = 0
	}

	mult := 1 + comboStep*float64(s.combo)
	if s.perfectStreak > 0 {
		mult *= perfectMultiplier
	}
	score := int(math.Floor((group.Weight*matchBaseScale + bonus*timeBonusScale) * mult))

	s.totalScore += score
	s.lastMatchAt = s.elapsed
	s.matched[group.ID] = true
	s.revealed = nil
	s.activeKey = ""

	if len(s.matched) == len(s.Puzzle.Groups) {
		// All groups found: won regardless of remaining strikes.
		s.state = StateWon
		lump := int(math.Floor(s.timeBonus() * winBonusScale))
		s.totalScore += lump
		return s.snapshot(EventWon, score+lump)
	}
	return s.snapshot(EventMatched, score)
}

// strike records a mismatch, resets combo state, and may end the session.
func (s *Session) strike() Snapshot {
	s.strikes++
	s.revealed = nil
	s.activeKey = ""
	s.combo = 0
	s.perfectStreak = 0
	if s.strikes >= s.Puzzle.MaxStrikes {
		s.state = StateLost
		return s.snapshot(EventLost, 0)
	}
	return s.snapshot(EventStrike, 0)
}

// timeBonus is the remaining fraction of the time budget, floored at zero.
func (s *Session) timeBonus() float64 {
	limit := float64(s.Puzzle.TimeLimitSeconds)
	b := (limit - s.elapsed) / limit
	if b < 0 {
		return 0
	}
	return b
}

func (s *Session) terminal() bool {
	return s.state == StateWon || s.state == StateLost
}

func (s *Session) terminalEvent() Event {
	if s.state == StateWon {
		return EventWon
	}
	return EventLost
}

// snapshot builds the caller-facing view of the current state.
func (s *Session) snapshot(ev Event, lastScore int) Snapshot {
	matched := make([]string, 0, len(s.matched))
	for _, g := range s.Puzzle.Groups {
		if s.matched[g.ID] {
			matched = append(matched, g.ID)
		}
	}
	return Snapshot{
		Event:         ev,
		State:         s.state,
		Revealed:      append([]int(nil), s.revealed...),
		MatchedGroups: matched,
		Strikes:       s.strikes,
		Combo:         s.combo,
		PerfectStreak: s.perfectStreak,
		TotalScore:    s.totalScore,
		LastScore:     lastScore,
	}
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}

// sessionID returns a compact 16-hex-char identifier.
func sessionID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

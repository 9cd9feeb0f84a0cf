package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/rhymegrid/internal/challenge"
	"github.com/robalobadob/rhymegrid/internal/session"
)

// testPuzzle lays four rhyme groups out one per row, so cells 4i..4i+3
// belong to group i.
func testPuzzle() *challenge.Puzzle {
	groups := []challenge.Group{
		{ID: "g-at", PatternID: "at-family", Class: "rhyme", Tier: "simple", Weight: 1,
			Words: []string{"cat", "hat", "bat", "mat"}},
		{ID: "g-ing", PatternID: "ing-family", Class: "rhyme", Tier: "simple", Weight: 1,
			Words: []string{"ring", "king", "sing", "wing"}},
		{ID: "g-ight", PatternID: "ight-family", Class: "rhyme", Tier: "simple", Weight: 1,
			Words: []string{"light", "night", "right", "sight"}},
		{ID: "g-ay", PatternID: "ay-family", Class: "rhyme", Tier: "simple", Weight: 1,
			Words: []string{"day", "way", "say", "play"}},
	}
	grid := make([][]string, 4)
	for i, g := range groups {
		grid[i] = append([]string(nil), g.Words...)
	}
	return &challenge.Puzzle{
		ID:               "test-puzzle",
		GridSize:         4,
		Groups:           groups,
		Grid:             grid,
		TimeLimitSeconds: 100,
		MaxStrikes:       3,
		Difficulty:       1200,
		Mode:             challenge.ModeStandard,
	}
}

// decoyPuzzle has three groups (5+5+4 words) plus two decoys in the last
// two cells.
func decoyPuzzle() *challenge.Puzzle {
	groups := []challenge.Group{
		{ID: "g-a", PatternID: "p-a", Class: "rhyme", Tier: "simple", Weight: 1,
			Words: []string{"cat", "hat", "bat", "mat", "rat"}},
		{ID: "g-b", PatternID: "p-b", Class: "rhyme", Tier: "simple", Weight: 1,
			Words: []string{"ring", "king", "sing", "wing", "swing"}},
		{ID: "g-c", PatternID: "p-c", Class: "rhyme", Tier: "simple", Weight: 1,
			Words: []string{"day", "way", "say", "play"}},
	}
	flat := []string{
		"cat", "hat", "bat", "mat",
		"rat", "ring", "king", "sing",
		"wing", "swing", "day", "way",
		"say", "play", "apple", "chair",
	}
	grid := make([][]string, 4)
	for r := 0; r < 4; r++ {
		grid[r] = flat[r*4 : (r+1)*4]
	}
	return &challenge.Puzzle{
		ID:               "decoy-puzzle",
		GridSize:         4,
		Groups:           groups,
		Decoys:           []string{"apple", "chair"},
		Grid:             grid,
		TimeLimitSeconds: 100,
		MaxStrikes:       3,
		Difficulty:       1300,
		Mode:             challenge.ModeDetective,
	}
}

// matchGroup reveals cells 4i..4i+3 and returns the final snapshot.
func matchGroup(t *testing.T, s *session.Session, i int) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	var err error
	for c := 4 * i; c < 4*i+4; c++ {
		snap, err = s.Reveal(c)
		require.NoError(t, err)
	}
	return snap
}

func TestFixturesSatisfyInvariants(t *testing.T) {
	require.NoError(t, testPuzzle().Validate())
	require.NoError(t, decoyPuzzle().Validate())
}

func TestRevealAndDeselect(t *testing.T) {
	s := session.New(testPuzzle())

	snap, err := s.Reveal(0)
	require.NoError(t, err)
	require.Equal(t, session.EventRevealed, snap.Event)
	require.Equal(t, []int{0}, snap.Revealed)

	snap, err = s.Reveal(0)
	require.NoError(t, err)
	require.Equal(t, session.EventDeselected, snap.Event)
	require.Empty(t, snap.Revealed)
	require.Equal(t, 0, snap.Strikes, "deselect is not a move")
}

func TestMatchScoresWithPerfectMultiplier(t *testing.T) {
	s := session.New(testPuzzle())

	snap := matchGroup(t, s, 0)
	require.Equal(t, session.EventMatched, snap.Event)
	require.Equal(t, []string{"g-at"}, snap.MatchedGroups)
	require.Equal(t, 1, snap.Combo)
	require.Equal(t, 1, snap.PerfectStreak)
	// weight·100 + full time bonus·50, ×1.1 combo, ×1.5 perfect.
	require.Equal(t, 247, snap.LastScore)
	require.Equal(t, 247, snap.TotalScore)
}

func TestComboWindow(t *testing.T) {
	s := session.New(testPuzzle())

	snap := matchGroup(t, s, 0)
	require.Equal(t, 1, snap.Combo)

	// Second match 3s later keeps the combo alive.
	s.Tick(3)
	snap = matchGroup(t, s, 1)
	require.Equal(t, 2, snap.Combo)

	// Third match 6s after the second falls outside the window.
	s.Tick(9)
	snap = matchGroup(t, s, 2)
	require.Equal(t, 1, snap.Combo)
}

func TestStrikeResetsComboAndStreak(t *testing.T) {
	s := session.New(testPuzzle())

	matchGroup(t, s, 0)

	// Mixing two groups is a strike and clears the selection.
	_, err := s.Reveal(4)
	require.NoError(t, err)
	snap, err := s.Reveal(8)
	require.NoError(t, err)
	require.Equal(t, session.EventStrike, snap.Event)
	require.Equal(t, 1, snap.Strikes)
	require.Equal(t, 0, snap.Combo)
	require.Equal(t, 0, snap.PerfectStreak)
	require.Empty(t, snap.Revealed)

	// The next match is no longer perfect.
	snap = matchGroup(t, s, 1)
	require.Equal(t, session.EventMatched, snap.Event)
	require.Equal(t, 0, snap.PerfectStreak)
	require.Equal(t, 165, snap.LastScore)
}

func TestThreeStrikesLoses(t *testing.T) {
	s := session.New(testPuzzle())

	mismatch := func() session.Snapshot {
		_, err := s.Reveal(0)
		require.NoError(t, err)
		snap, err := s.Reveal(4)
		require.NoError(t, err)
		return snap
	}

	require.Equal(t, session.EventStrike, mismatch().Event)
	require.Equal(t, session.EventStrike, mismatch().Event)
	snap := mismatch()
	require.Equal(t, session.EventLost, snap.Event)
	require.Equal(t, session.StateLost, s.State())

	_, err := s.Reveal(8)
	require.ErrorIs(t, err, session.ErrFinished)

	o := s.Outcome()
	require.False(t, o.Won)
	require.Equal(t, 3, o.Strikes)
	require.Equal(t, 0.0, o.Accuracy)
}

func TestWinningAllGroups(t *testing.T) {
	s := session.New(testPuzzle())

	for i := 0; i < 3; i++ {
		snap := matchGroup(t, s, i)
		require.Equal(t, session.EventMatched, snap.Event)
	}
	snap := matchGroup(t, s, 3)
	require.Equal(t, session.EventWon, snap.Event)
	require.Equal(t, session.StateWon, s.State())
	require.Len(t, snap.MatchedGroups, 4)

	o := s.Outcome()
	require.True(t, o.Won)
	require.Equal(t, 1.0, o.Accuracy)
	require.Equal(t, 1.0, o.TimeRatio)
	require.Greater(t, o.TotalScore, 500, "win lump sum included")
}

func TestTimeoutLoses(t *testing.T) {
	s := session.New(testPuzzle())

	snap := s.Tick(50)
	require.Equal(t, session.EventTick, snap.Event)

	snap = s.Tick(100)
	require.Equal(t, session.EventLost, snap.Event)
	require.Equal(t, session.StateLost, s.State())
	require.False(t, s.Outcome().Won)
	require.Equal(t, 0.0, s.Outcome().TimeRatio)
}

func TestTickIsMonotone(t *testing.T) {
	s := session.New(testPuzzle())
	s.Tick(10)
	s.Tick(5)
	require.Equal(t, 10.0, s.Outcome().ElapsedSeconds)
}

func TestDecoyRevealStrikes(t *testing.T) {
	s := session.New(decoyPuzzle())

	// Decoy first: the next reveal can never complete anything.
	_, err := s.Reveal(14)
	require.NoError(t, err)
	snap, err := s.Reveal(0)
	require.NoError(t, err)
	require.Equal(t, session.EventStrike, snap.Event)
	require.Equal(t, 1, snap.Strikes)

	// Group word then a decoy is also a strike.
	_, err = s.Reveal(0)
	require.NoError(t, err)
	snap, err = s.Reveal(15)
	require.NoError(t, err)
	require.Equal(t, session.EventStrike, snap.Event)
	require.Equal(t, 2, snap.Strikes)

	// A lone decoy reveal can still be deselected without penalty.
	_, err = s.Reveal(14)
	require.NoError(t, err)
	snap, err = s.Reveal(14)
	require.NoError(t, err)
	require.Equal(t, session.EventDeselected, snap.Event)
	require.Equal(t, 2, snap.Strikes)
}

func TestMatchedGroupCellsAreIgnored(t *testing.T) {
	s := session.New(testPuzzle())
	matchGroup(t, s, 0)

	snap, err := s.Reveal(0)
	require.NoError(t, err)
	require.Equal(t, session.EventIgnored, snap.Event)
	require.Empty(t, snap.Revealed)
}

func TestBadCell(t *testing.T) {
	s := session.New(testPuzzle())
	_, err := s.Reveal(16)
	require.ErrorIs(t, err, session.ErrBadCell)
	_, err = s.Reveal(-1)
	require.ErrorIs(t, err, session.ErrBadCell)
}

// internal/session/types.go
//
// Core type definitions for the game session engine.
// Defines:
//   - State: coarse session state (selecting/won/lost).
//   - Event: what a single action produced (reveal, match, strike, ...).
//   - Snapshot: the state returned to the caller after every action.
//   - Outcome: the terminal record fed to the rating store.

package session

// State is the coarse session state.
type State string

const (
	StateSelecting State = "selecting"
	StateWon       State = "won"
	StateLost      State = "lost"
)

// Event describes the effect of one action.
type Event string

const (
	EventRevealed   Event = "revealed"
	EventDeselected Event = "deselected"
	EventMatched    Event = "matched"
	EventStrike     Event = "strike"
	EventWon        Event = "won"
	EventLost       Event = "lost"
	EventIgnored    Event = "ignored" // cell already removed from play
	EventTick       Event = "tick"
)

// Snapshot is the engine's view of the session after an action.
type Snapshot struct {
	Event         Event    `json:"event"`
	State         State    `json:"state"`
	Revealed      []int    `json:"revealed"`
	MatchedGroups []string `json:"matchedGroups"`
	Strikes       int      `json:"strikes"`
	Combo         int      `json:"combo"`
	PerfectStreak int      `json:"perfectStreak"`
	TotalScore    int      `json:"totalScore"`
	LastScore     int      `json:"lastScore"` // points the last event awarded
}

// Outcome is the terminal session record.
type Outcome struct {
	Won            bool    `json:"won"`
	TotalScore     int     `json:"totalScore"`
	Strikes        int     `json:"strikes"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	Accuracy       float64 `json:"accuracy"`  // 1 - strikes/maxStrikes
	TimeRatio      float64 `json:"timeRatio"` // remaining fraction of the budget
}

// Package game defines the core state types for a single-player snake run.
//
// The state is a plain value tree so transitions can clone it cheaply and
// never mutate a snapshot another goroutine may still be reading.
package game

import "time"

// Cell is a grid coordinate. (0,0) is the top-left corner; Y grows downwards.
type Cell struct {
	X int
	Y int
}

// Add returns c translated by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
	StatusGameOver
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusPlaying:
		return "PLAYING"
	case StatusPaused:
		return "PAUSED"
	case StatusGameOver:
		return "GAME_OVER"
	}
	return "UNKNOWN"
}

// Intent is a non-directional control request.
type Intent int

const (
	// IntentToggle pauses, resumes or starts a run.
	IntentToggle Intent = iota
	// IntentRestart begins a fresh run after a game over.
	IntentRestart
	// IntentReset abandons the current run and returns to the idle screen.
	IntentReset
)

func (i Intent) String() string {
	switch i {
	case IntentToggle:
		return "toggle"
	case IntentRestart:
		return "restart"
	case IntentReset:
		return "reset"
	}
	return "unknown"
}

// DeathCause records why a run ended.
type DeathCause int

const (
	CauseNone DeathCause = iota
	CauseWall
	CauseSelf
	CauseFieldExhausted
)

func (c DeathCause) String() string {
	switch c {
	case CauseWall:
		return "wall"
	case CauseSelf:
		return "self"
	case CauseFieldExhausted:
		return "field_exhausted"
	}
	return "none"
}

// GameState is the complete state of one run.
//
// Direction is the committed direction (applied by the last tick);
// NextDirection is the pending one the next tick will apply.
type GameState struct {
	Size          int
	Snake         []Cell
	Food          Cell
	Direction     Direction
	NextDirection Direction
	Score         int
	HighScore     int
	Status        Status
	TickInterval  time.Duration
	Difficulty    Difficulty

	Turn  int
	Items int
	Cause DeathCause
}

// Head returns the first snake cell.
func (s *GameState) Head() Cell {
	if len(s.Snake) == 0 {
		return Cell{}
	}
	return s.Snake[0]
}

func (s *GameState) Length() int {
	return len(s.Snake)
}

// Clone performs a deep copy of the game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	out := *s
	if len(s.Snake) > 0 {
		out.Snake = make([]Cell, len(s.Snake))
		copy(out.Snake, s.Snake)
	}
	return &out
}

// ScoreEntry is a leaderboard row.
type ScoreEntry struct {
	Name       string
	Score      int
	Difficulty Difficulty
	Date       time.Time
}

package rules

type EventKind int

const (
	EventGameStarted EventKind = iota
	EventItemConsumed
	EventGameOver
)

func (k EventKind) String() string {
	switch k {
	case EventGameStarted:
		return "game_started"
	case EventItemConsumed:
		return "item_consumed"
	case EventGameOver:
		return "game_over"
	}
	return "unknown"
}

// Event is a notification produced by a transition. Score and HighScore are
// the post-transition values.
type Event struct {
	Kind      EventKind
	Score     int
	HighScore int
}

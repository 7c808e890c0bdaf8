package rules

import (
	"fmt"

	"github.com/brensch/solosnake/game"
)

// ProposeDirection stages dir as the pending direction.
//
// Only the latest valid proposal before a tick counts; earlier ones are
// overwritten, not queued. A proposal opposite to the committed direction is
// dropped, which is what stops two quick turns from reversing the snake into
// itself within one tick. From idle, any proposal also starts the run.
func (r Rules) ProposeDirection(state *game.GameState, dir game.Direction) (*game.GameState, []Event, error) {
	if !validDirection(dir) {
		return state, nil, fmt.Errorf("direction %d: %w", dir, game.ErrInvalidTransition)
	}
	if state.Status != game.StatusIdle && state.Status != game.StatusPlaying {
		return state, nil, fmt.Errorf("direction %s while %s: %w", dir, state.Status, game.ErrInvalidTransition)
	}

	next := state.Clone()
	var events []Event
	if next.Status == game.StatusIdle {
		next.Status = game.StatusPlaying
		events = append(events, Event{Kind: EventGameStarted, HighScore: next.HighScore})
	}

	if dir.IsOpposite(next.Direction) {
		return next, events, nil
	}
	next.NextDirection = dir
	return next, events, nil
}

// ProposeControlIntent resolves pause, resume, start, restart and reset.
func (r Rules) ProposeControlIntent(state *game.GameState, intent game.Intent) (*game.GameState, []Event, error) {
	switch intent {
	case game.IntentToggle:
		return r.toggle(state)
	case game.IntentRestart:
		return r.Restart(state)
	case game.IntentReset:
		return r.Reset(state)
	}
	return state, nil, fmt.Errorf("intent %d: %w", intent, game.ErrInvalidTransition)
}

func (r Rules) toggle(state *game.GameState) (*game.GameState, []Event, error) {
	next := state.Clone()
	switch state.Status {
	case game.StatusPlaying:
		next.Status = game.StatusPaused
		return next, nil, nil
	case game.StatusPaused:
		next.Status = game.StatusPlaying
		return next, nil, nil
	case game.StatusIdle:
		next.Status = game.StatusPlaying
		return next, []Event{{Kind: EventGameStarted, HighScore: next.HighScore}}, nil
	}
	return state, nil, fmt.Errorf("toggle while %s: %w", state.Status, game.ErrInvalidTransition)
}

func validDirection(d game.Direction) bool {
	for _, v := range game.Directions {
		if v == d {
			return true
		}
	}
	return false
}

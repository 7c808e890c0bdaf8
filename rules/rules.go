// Package rules implements the snake transition functions.
//
// Every transition is pure: it clones the input state, applies the change to
// the clone and returns it together with the notifications the change
// produced. The input state is never mutated.
package rules

import (
	"fmt"
	"time"

	"github.com/brensch/solosnake/game"
)

const (
	MinTickInterval = 50 * time.Millisecond
	TickDecrement   = 2 * time.Millisecond

	// minGridSize fits the three-cell starting snake below the board centre.
	minGridSize = 5
)

// Rules holds the board parameters and injected randomness for a session.
type Rules struct {
	Size        int
	Policy      game.DifficultyPolicy
	MinInterval time.Duration
	Decrement   time.Duration
	Random      RandomSource
}

// Default returns the standard 20x20 rules using rng for food placement.
func Default(rng RandomSource) Rules {
	return Rules{
		Size:        game.GridSize,
		Policy:      game.DefaultPolicy(),
		MinInterval: MinTickInterval,
		Decrement:   TickDecrement,
		Random:      rng,
	}
}

func (r Rules) Validate() error {
	if r.Size < minGridSize {
		return fmt.Errorf("grid size must be at least %d, got %d", minGridSize, r.Size)
	}
	if r.MinInterval <= 0 {
		return fmt.Errorf("minimum tick interval must be positive, got %v", r.MinInterval)
	}
	if r.Decrement < 0 {
		return fmt.Errorf("tick decrement must not be negative, got %v", r.Decrement)
	}
	return r.Policy.Validate()
}

// NewGame returns a fresh idle run.
func (r Rules) NewGame(difficulty game.Difficulty, highScore int) *game.GameState {
	return &game.GameState{
		Size:          r.Size,
		Snake:         game.InitialSnake(r.Size),
		Food:          game.InitialFood(r.Size),
		Direction:     game.DirectionUp,
		NextDirection: game.DirectionUp,
		HighScore:     highScore,
		Status:        game.StatusIdle,
		TickInterval:  r.Policy.Lookup(difficulty).TickInterval,
		Difficulty:    difficulty,
	}
}

// Step advances a playing run by one cell. Non-playing states are returned
// unchanged.
//
// The collision test runs against the pre-move body including the tail, even
// though the tail would vacate its cell on a non-eating tick: following your
// own tail into the cell it is leaving is a death.
func (r Rules) Step(state *game.GameState) (*game.GameState, []Event, error) {
	if state == nil || state.Status != game.StatusPlaying || len(state.Snake) == 0 {
		return state, nil, nil
	}

	next := state.Clone()
	head := next.Head().Add(next.NextDirection.Delta())

	if cause := collision(next, head); cause != game.CauseNone {
		return next, []Event{endRun(next, cause)}, nil
	}

	body := make([]game.Cell, 0, len(next.Snake)+1)
	body = append(body, head)
	body = append(body, next.Snake...)

	next.Direction = next.NextDirection
	next.Turn++

	if head != next.Food {
		next.Snake = body[:len(body)-1]
		return next, nil, nil
	}

	next.Snake = body
	next.Score += r.Policy.Lookup(next.Difficulty).Points
	next.Items++
	next.TickInterval = r.speedUp(next.TickInterval)
	events := []Event{{Kind: EventItemConsumed, Score: next.Score, HighScore: next.HighScore}}

	food, err := PlaceFood(next.Size, next.Snake, r.Random)
	if err != nil {
		events = append(events, endRun(next, game.CauseFieldExhausted))
		return next, events, fmt.Errorf("place food at turn %d: %w", next.Turn, err)
	}
	next.Food = food
	return next, events, nil
}

// Restart begins a new playing run after a game over, keeping the high score
// and the selected difficulty.
func (r Rules) Restart(state *game.GameState) (*game.GameState, []Event, error) {
	if state.Status != game.StatusGameOver {
		return state, nil, fmt.Errorf("restart while %s: %w", state.Status, game.ErrInvalidTransition)
	}
	next := r.NewGame(state.Difficulty, state.HighScore)
	next.Status = game.StatusPlaying
	// A restart is a new run: listeners reset per-run state and the start cue plays.
	return next, []Event{{Kind: EventGameStarted, HighScore: next.HighScore}}, nil
}

// Reset drops the current run and returns to idle so the difficulty can be
// changed again.
func (r Rules) Reset(state *game.GameState) (*game.GameState, []Event, error) {
	if state.Status == game.StatusIdle {
		return state, nil, fmt.Errorf("reset while %s: %w", state.Status, game.ErrInvalidTransition)
	}
	return r.NewGame(state.Difficulty, state.HighScore), nil, nil
}

// SetDifficulty changes the difficulty of an idle run.
func (r Rules) SetDifficulty(state *game.GameState, d game.Difficulty) (*game.GameState, error) {
	if state.Status != game.StatusIdle {
		return state, fmt.Errorf("set difficulty while %s: %w", state.Status, game.ErrInvalidTransition)
	}
	if _, ok := r.Policy[d]; !ok {
		return state, fmt.Errorf("difficulty %s not in policy: %w", d, game.ErrInvalidTransition)
	}
	next := state.Clone()
	next.Difficulty = d
	next.TickInterval = r.Policy.Lookup(d).TickInterval
	return next, nil
}

func (r Rules) speedUp(interval time.Duration) time.Duration {
	interval -= r.Decrement
	if interval < r.MinInterval {
		return r.MinInterval
	}
	return interval
}

func collision(state *game.GameState, head game.Cell) game.DeathCause {
	if !game.InBounds(state.Size, head) {
		return game.CauseWall
	}
	if game.Occupies(state.Snake, head) {
		return game.CauseSelf
	}
	return game.CauseNone
}

func endRun(state *game.GameState, cause game.DeathCause) Event {
	state.Status = game.StatusGameOver
	state.Cause = cause
	if state.Score > state.HighScore {
		state.HighScore = state.Score
	}
	return Event{Kind: EventGameOver, Score: state.Score, HighScore: state.HighScore}
}

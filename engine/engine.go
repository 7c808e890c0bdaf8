// Package engine is the serialized entry point to a snake run: it owns the
// current state, applies direction/control/tick transitions one at a time and
// fans out the resulting notifications.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/brensch/solosnake/game"
	"github.com/brensch/solosnake/rules"
)

type Config struct {
	Rules      rules.Rules
	Difficulty game.Difficulty
	// HighScore seeds the run from the surrounding session.
	HighScore int
	Clock     Clock
	Logger    *slog.Logger
}

type Engine struct {
	// emitMu serializes whole transitions including dispatch so listeners see
	// notifications in commit order; mu guards the state itself so listeners
	// may call State while being notified.
	emitMu sync.Mutex
	mu     sync.RWMutex

	rules     rules.Rules
	state     *game.GameState
	gate      tickGate
	clock     Clock
	log       *slog.Logger
	listeners []Listener
}

func New(cfg Config, listeners ...Listener) (*Engine, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := &Engine{
		rules:     cfg.Rules,
		state:     cfg.Rules.NewGame(cfg.Difficulty, cfg.HighScore),
		clock:     cfg.Clock,
		log:       cfg.Logger.With("component", "engine"),
		listeners: append([]Listener(nil), listeners...),
	}
	e.gate.reset(e.clock.Now())
	return e, nil
}

// Subscribe adds a listener. It is safe to call while the engine runs.
func (e *Engine) Subscribe(l Listener) {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()
	e.listeners = append(e.listeners, l)
}

// State returns a private copy of the current state.
func (e *Engine) State() *game.GameState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

func (e *Engine) Status() game.Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Status
}

func (e *Engine) SubmitDirection(d game.Direction) {
	e.apply("direction", func(s *game.GameState) (*game.GameState, []rules.Event, error) {
		return e.rules.ProposeDirection(s, d)
	})
}

func (e *Engine) SubmitControlIntent(i game.Intent) {
	e.apply("intent", func(s *game.GameState) (*game.GameState, []rules.Event, error) {
		return e.rules.ProposeControlIntent(s, i)
	})
}

// SetDifficulty changes the difficulty while idle. Unlike the submit methods
// it reports ErrInvalidTransition, since the caller is a settings screen.
func (e *Engine) SetDifficulty(d game.Difficulty) error {
	var out error
	e.apply("difficulty", func(s *game.GameState) (*game.GameState, []rules.Event, error) {
		next, err := e.rules.SetDifficulty(s, d)
		out = err
		return next, nil, err
	})
	return out
}

// SetPolicy replaces the difficulty table while idle and re-derives the idle
// run's tick interval from it.
func (e *Engine) SetPolicy(p game.DifficultyPolicy) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}

	var out error
	e.apply("policy", func(s *game.GameState) (*game.GameState, []rules.Event, error) {
		if s.Status != game.StatusIdle {
			out = fmt.Errorf("set policy while %s: %w", s.Status, game.ErrInvalidTransition)
			return s, nil, out
		}
		e.rules.Policy = p
		next := s.Clone()
		next.TickInterval = p.Lookup(next.Difficulty).TickInterval
		return next, nil, nil
	})
	return out
}

// OnTick is one scheduling opportunity. It steps the run if it is playing and
// the current tick interval has elapsed since the last tick, and reports
// whether a step happened. Calling it when nothing is due is a no-op.
func (e *Engine) OnTick() bool {
	stepped := false
	e.apply("tick", func(s *game.GameState) (*game.GameState, []rules.Event, error) {
		if s.Status != game.StatusPlaying {
			return s, nil, nil
		}
		now := e.clock.Now()
		if !e.gate.due(now, s.TickInterval) {
			return s, nil, nil
		}
		e.gate.reset(now)
		stepped = true
		return e.rules.Step(s)
	})
	return stepped
}

type transition func(*game.GameState) (*game.GameState, []rules.Event, error)

func (e *Engine) apply(op string, fn transition) {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()

	e.mu.Lock()
	prev := e.state
	next, events, err := fn(prev)
	switch {
	case errors.Is(err, game.ErrInvalidTransition):
		e.mu.Unlock()
		e.log.Debug("ignored transition", "op", op, "status", prev.Status.String(), "err", err)
		return
	case err != nil:
		e.log.Warn("transition failed", "op", op, "turn", prev.Turn, "err", err)
	}
	if next == nil || next == prev {
		e.mu.Unlock()
		return
	}

	// Entering PLAYING (start, resume, restart) restarts the tick timer, so
	// time spent idle or paused never makes the first tick fire at once.
	if prev.Status != game.StatusPlaying && next.Status == game.StatusPlaying {
		e.gate.reset(e.clock.Now())
	}
	e.state = next
	e.mu.Unlock()

	if prev.Status != next.Status {
		e.log.Debug("status changed", "op", op, "from", prev.Status.String(), "to", next.Status.String())
	}
	e.dispatch(next, events)
}

func (e *Engine) dispatch(state *game.GameState, events []rules.Event) {
	for _, l := range e.listeners {
		if o, ok := l.(StateObserver); ok {
			e.safely("state", func() { o.OnState(state.Clone()) })
		}
	}
	for _, ev := range events {
		for _, l := range e.listeners {
			switch ev.Kind {
			case rules.EventGameStarted:
				e.safely(ev.Kind.String(), l.OnGameStarted)
			case rules.EventItemConsumed:
				e.safely(ev.Kind.String(), l.OnItemConsumed)
			case rules.EventGameOver:
				score, high := ev.Score, ev.HighScore
				e.safely(ev.Kind.String(), func() { l.OnGameOver(score, high) })
			}
		}
	}
}

// safely keeps a misbehaving collaborator from taking the run down with it.
func (e *Engine) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("listener panicked", "event", what, "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

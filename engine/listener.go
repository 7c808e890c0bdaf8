package engine

import "github.com/brensch/solosnake/game"

// Listener receives run notifications. Calls are synchronous and happen once
// per transition; implementations must return quickly and must not call back
// into the engine's mutating methods.
type Listener interface {
	OnGameStarted()
	OnItemConsumed()
	OnGameOver(score, highScore int)
}

// StateObserver is an optional extension of Listener. When a listener also
// implements it, OnState receives a private copy of every committed state,
// before that transition's notifications.
type StateObserver interface {
	OnState(state *game.GameState)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	GameStarted  func()
	ItemConsumed func()
	GameOver     func(score, highScore int)
	State        func(state *game.GameState)
}

func (f ListenerFuncs) OnGameStarted() {
	if f.GameStarted != nil {
		f.GameStarted()
	}
}

func (f ListenerFuncs) OnItemConsumed() {
	if f.ItemConsumed != nil {
		f.ItemConsumed()
	}
}

func (f ListenerFuncs) OnGameOver(score, highScore int) {
	if f.GameOver != nil {
		f.GameOver(score, highScore)
	}
}

func (f ListenerFuncs) OnState(state *game.GameState) {
	if f.State != nil {
		f.State(state)
	}
}

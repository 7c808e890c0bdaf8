package game

import "errors"

var (
	// ErrInvalidTransition marks an intent that has no effect in the current status.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrFieldExhausted means no free cell is left for food.
	ErrFieldExhausted = errors.New("field exhausted")
)

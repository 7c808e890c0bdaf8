package game

import (
	"fmt"
	"strings"
	"time"
)

type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

var Difficulties = [3]Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "EASY"
	case DifficultyMedium:
		return "MEDIUM"
	case DifficultyHard:
		return "HARD"
	}
	return "UNKNOWN"
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "1":
		return DifficultyEasy, nil
	case "medium", "2", "":
		return DifficultyMedium, nil
	case "hard", "3":
		return DifficultyHard, nil
	}
	return DifficultyMedium, fmt.Errorf("unknown difficulty %q", s)
}

// DifficultySettings is what a difficulty means for a run.
type DifficultySettings struct {
	Label        string
	TickInterval time.Duration
	Points       int
}

// DifficultyPolicy maps each difficulty to its settings.
type DifficultyPolicy map[Difficulty]DifficultySettings

// DefaultPolicy matches the arcade tuning: slower boards pay less per item.
func DefaultPolicy() DifficultyPolicy {
	return DifficultyPolicy{
		DifficultyEasy:   {Label: "Easy", TickInterval: 200 * time.Millisecond, Points: 1},
		DifficultyMedium: {Label: "Medium", TickInterval: 130 * time.Millisecond, Points: 2},
		DifficultyHard:   {Label: "Hard", TickInterval: 80 * time.Millisecond, Points: 3},
	}
}

// Lookup returns the settings for d. Unknown difficulties (or a nil policy)
// fall back to the default Medium settings.
func (p DifficultyPolicy) Lookup(d Difficulty) DifficultySettings {
	if s, ok := p[d]; ok {
		return s
	}
	return DefaultPolicy()[DifficultyMedium]
}

func (p DifficultyPolicy) Validate() error {
	for _, d := range Difficulties {
		s, ok := p[d]
		if !ok {
			return fmt.Errorf("difficulty %s: missing settings", d)
		}
		if s.TickInterval <= 0 {
			return fmt.Errorf("difficulty %s: tick interval must be positive, got %v", d, s.TickInterval)
		}
		if s.Points <= 0 {
			return fmt.Errorf("difficulty %s: points must be positive, got %d", d, s.Points)
		}
	}
	return nil
}

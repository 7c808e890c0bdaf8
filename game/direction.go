package game

import (
	"fmt"
	"strings"
)

type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
)

// Directions lists every direction in a stable order.
var Directions = [4]Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}

func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	case DirectionLeft:
		return DirectionRight
	case DirectionRight:
		return DirectionLeft
	}
	return d
}

// Delta is the unit step for d. Up decreases Y.
func (d Direction) Delta() Cell {
	switch d {
	case DirectionUp:
		return Cell{X: 0, Y: -1}
	case DirectionDown:
		return Cell{X: 0, Y: 1}
	case DirectionLeft:
		return Cell{X: -1, Y: 0}
	case DirectionRight:
		return Cell{X: 1, Y: 0}
	}
	return Cell{}
}

func (d Direction) IsOpposite(other Direction) bool {
	return d.Opposite() == other && d != other
}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "UP"
	case DirectionDown:
		return "DOWN"
	case DirectionLeft:
		return "LEFT"
	case DirectionRight:
		return "RIGHT"
	}
	return "UNKNOWN"
}

// ParseDirection accepts direction names case-insensitively, plus the
// single-letter forms u/d/l/r.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return DirectionUp, nil
	case "down", "d":
		return DirectionDown, nil
	case "left", "l":
		return DirectionLeft, nil
	case "right", "r":
		return DirectionRight, nil
	}
	return DirectionUp, fmt.Errorf("unknown direction %q", s)
}

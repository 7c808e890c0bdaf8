package rules

import "github.com/brensch/solosnake/game"

// LegalDirections lists the directions the snake can take next tick without
// dying, in game.Directions order. Reversals are never legal.
func LegalDirections(state *game.GameState) []game.Direction {
	if state == nil || len(state.Snake) == 0 {
		return nil
	}

	head := state.Head()
	moves := make([]game.Direction, 0, 3)
	for _, d := range game.Directions {
		if d.IsOpposite(state.Direction) {
			continue
		}
		if collision(state, head.Add(d.Delta())) == game.CauseNone {
			moves = append(moves, d)
		}
	}
	return moves
}

// Greedy picks the legal direction that brings the head closest to the food
// (Manhattan distance). It returns false when every move is fatal.
func Greedy(state *game.GameState) (game.Direction, bool) {
	moves := LegalDirections(state)
	if len(moves) == 0 {
		return state.Direction, false
	}

	head := state.Head()
	best := moves[0]
	bestDist := -1
	for _, d := range moves {
		dist := manhattan(head.Add(d.Delta()), state.Food)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best, true
}

func manhattan(a, b game.Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package rules

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/brensch/solosnake/game"
)

type constSource int

func (c constSource) Intn(n int) int { return int(c) % n }

func TestPlaceFood_NeverOnSnake(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	snake := game.InitialSnake(game.GridSize)
	for i := 0; i < 500; i++ {
		c, err := PlaceFood(game.GridSize, snake, rng)
		if err != nil {
			t.Fatalf("place food: %v", err)
		}
		if !game.InBounds(game.GridSize, c) {
			t.Fatalf("food %v off board", c)
		}
		if game.Occupies(snake, c) {
			t.Fatalf("food %v on snake", c)
		}
	}
}

func TestPlaceFood_AdversarialSourceStillTerminates(t *testing.T) {
	// Every sample lands on (0,0), which the snake occupies.
	snake := []game.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}}
	c, err := PlaceFood(6, snake, constSource(0))
	if err != nil {
		t.Fatalf("place food: %v", err)
	}
	if game.Occupies(snake, c) {
		t.Fatalf("food %v on snake", c)
	}
	// Fallback enumerates free cells row by row; index 0 is (2,0).
	if c != (game.Cell{X: 2, Y: 0}) {
		t.Fatalf("food=%v want=(2,0)", c)
	}
}

func TestPlaceFood_LastFreeCell(t *testing.T) {
	var snake []game.Cell
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if x == 1 && y == 2 {
				continue
			}
			snake = append(snake, game.Cell{X: x, Y: y})
		}
	}
	c, err := PlaceFood(3, snake, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("place food: %v", err)
	}
	if c != (game.Cell{X: 1, Y: 2}) {
		t.Fatalf("food=%v want=(1,2)", c)
	}
}

func TestPlaceFood_FieldExhausted(t *testing.T) {
	snake := []game.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	_, err := PlaceFood(2, snake, rand.New(rand.NewSource(1)))
	if !errors.Is(err, game.ErrFieldExhausted) {
		t.Fatalf("err=%v want ErrFieldExhausted", err)
	}
	if _, err := PlaceFood(0, nil, nil); !errors.Is(err, game.ErrFieldExhausted) {
		t.Fatalf("zero grid: err=%v", err)
	}
}

func TestPlaceFood_NilSourceIsDeterministic(t *testing.T) {
	snake := game.InitialSnake(game.GridSize)
	a, err := PlaceFood(game.GridSize, snake, nil)
	if err != nil {
		t.Fatalf("place food: %v", err)
	}
	b, _ := PlaceFood(game.GridSize, snake, nil)
	if a != b {
		t.Fatalf("nil source gave %v then %v", a, b)
	}
	if game.Occupies(snake, a) {
		t.Fatalf("food %v on snake", a)
	}
}

func TestPlaceFood_SameSeedSameSequence(t *testing.T) {
	snake := game.InitialSnake(game.GridSize)
	r1 := rand.New(rand.NewSource(2024))
	r2 := rand.New(rand.NewSource(2024))
	for i := 0; i < 20; i++ {
		a, _ := PlaceFood(game.GridSize, snake, r1)
		b, _ := PlaceFood(game.GridSize, snake, r2)
		if a != b {
			t.Fatalf("draw %d: %v != %v", i, a, b)
		}
	}
}

func TestPlaceFood_CoversTheBoard(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	seen := make(map[game.Cell]bool)
	snake := []game.Cell{{X: 0, Y: 0}}
	for i := 0; i < 2000; i++ {
		c, _ := PlaceFood(4, snake, rng)
		seen[c] = true
	}
	if len(seen) != 15 {
		t.Fatalf("saw %d distinct cells, want all 15 free cells", len(seen))
	}
}

package game

import (
	"testing"
	"time"
)

func TestClone_DeepCopiesSnake(t *testing.T) {
	orig := &GameState{
		Size:          GridSize,
		Snake:         InitialSnake(GridSize),
		Food:          InitialFood(GridSize),
		Direction:     DirectionUp,
		NextDirection: DirectionLeft,
		Score:         4,
		HighScore:     9,
		Status:        StatusPlaying,
		TickInterval:  130 * time.Millisecond,
		Difficulty:    DifficultyMedium,
	}

	cp := orig.Clone()
	cp.Snake[0] = Cell{X: 0, Y: 0}
	cp.Score = 100

	if orig.Snake[0] != (Cell{X: 10, Y: 10}) {
		t.Fatalf("clone shares snake backing array: orig head=%v", orig.Snake[0])
	}
	if orig.Score != 4 {
		t.Fatalf("orig score=%d want=4", orig.Score)
	}
	if cp.NextDirection != DirectionLeft || cp.HighScore != 9 {
		t.Fatalf("clone lost fields: %+v", cp)
	}

	var nilState *GameState
	if nilState.Clone() != nil {
		t.Fatalf("nil clone should be nil")
	}
}

func TestInitialLayout(t *testing.T) {
	snake := InitialSnake(GridSize)
	want := []Cell{{X: 10, Y: 10}, {X: 10, Y: 11}, {X: 10, Y: 12}}
	if len(snake) != len(want) {
		t.Fatalf("len=%d want=%d", len(snake), len(want))
	}
	for i := range want {
		if snake[i] != want[i] {
			t.Fatalf("snake[%d]=%v want=%v", i, snake[i], want[i])
		}
	}
	if food := InitialFood(GridSize); food != (Cell{X: 5, Y: 5}) {
		t.Fatalf("food=%v want=(5,5)", food)
	}
	if Occupies(snake, InitialFood(GridSize)) {
		t.Fatalf("initial food overlaps snake")
	}
}

func TestDirection_OppositeAndDelta(t *testing.T) {
	for _, d := range Directions {
		o := d.Opposite()
		if !d.IsOpposite(o) {
			t.Errorf("%s should be opposite of %s", d, o)
		}
		if d.IsOpposite(d) {
			t.Errorf("%s is not its own opposite", d)
		}
		if sum := d.Delta().Add(o.Delta()); sum != (Cell{}) {
			t.Errorf("%s + %s deltas = %v want zero", d, o, sum)
		}
	}
	if DirectionUp.Delta() != (Cell{X: 0, Y: -1}) {
		t.Fatalf("up delta=%v", DirectionUp.Delta())
	}
}

func TestParseDirection(t *testing.T) {
	cases := map[string]Direction{"up": DirectionUp, "D": DirectionDown, " Left ": DirectionLeft, "r": DirectionRight}
	for in, want := range cases {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestInBounds(t *testing.T) {
	cases := []struct {
		c    Cell
		want bool
	}{
		{Cell{X: 0, Y: 0}, true},
		{Cell{X: 19, Y: 19}, true},
		{Cell{X: 0, Y: -1}, false},
		{Cell{X: -1, Y: 5}, false},
		{Cell{X: 20, Y: 5}, false},
		{Cell{X: 5, Y: 20}, false},
	}
	for _, tc := range cases {
		if got := InBounds(GridSize, tc.c); got != tc.want {
			t.Errorf("InBounds(%v)=%v want=%v", tc.c, got, tc.want)
		}
	}
}

func TestOccupies(t *testing.T) {
	cells := []Cell{{X: 1, Y: 1}, {X: 1, Y: 2}}
	if !Occupies(cells, Cell{X: 1, Y: 2}) {
		t.Fatalf("expected occupied")
	}
	if Occupies(cells, Cell{X: 2, Y: 1}) {
		t.Fatalf("expected free")
	}
	if Occupies(nil, Cell{}) {
		t.Fatalf("empty set occupies nothing")
	}
}

func TestDifficultyPolicy(t *testing.T) {
	p := DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	if s := p.Lookup(DifficultyHard); s.TickInterval != 80*time.Millisecond || s.Points != 3 {
		t.Fatalf("hard=%+v", s)
	}
	if s := p.Lookup(DifficultyEasy); s.TickInterval != 200*time.Millisecond || s.Points != 1 {
		t.Fatalf("easy=%+v", s)
	}
	if s := DifficultyPolicy(nil).Lookup(DifficultyEasy); s.Points != 2 {
		t.Fatalf("nil policy should fall back to medium, got %+v", s)
	}

	bad := DefaultPolicy()
	bad[DifficultyHard] = DifficultySettings{Label: "Hard", TickInterval: 0, Points: 3}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected validation error for zero interval")
	}
	delete(bad, DifficultyHard)
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected validation error for missing difficulty")
	}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"easy": DifficultyEasy, "MEDIUM": DifficultyMedium, "3": DifficultyHard} {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Errorf("ParseDifficulty(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	if _, err := ParseDifficulty("nightmare"); err == nil {
		t.Fatalf("expected error")
	}
}

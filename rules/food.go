package rules

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/brensch/solosnake/game"
)

// RandomSource draws uniform integers in [0, n). *math/rand.Rand satisfies it,
// so callers choose between a seeded stream for tests and replays or a
// time-seeded one for play.
type RandomSource interface {
	Intn(n int) int
}

// maxSampleFactor bounds rejection sampling to area*maxSampleFactor draws
// before falling back to enumerating free cells.
const maxSampleFactor = 8

// PlaceFood returns a uniformly random cell of a size x size grid that is not
// part of snake. It samples candidates until one is free; if the sampling
// budget runs out it enumerates the free cells and draws one of them, so it
// always terminates. A snake covering the whole grid yields ErrFieldExhausted.
//
// A nil rng falls back to a deterministic stream derived from the snake.
func PlaceFood(size int, snake []game.Cell, rng RandomSource) (game.Cell, error) {
	area := size * size
	if size <= 0 || len(snake) >= area {
		return game.Cell{}, game.ErrFieldExhausted
	}
	if rng == nil {
		rng = newSplitMix(snakeSeed(size, snake))
	}

	for i := 0; i < area*maxSampleFactor; i++ {
		c := game.Cell{X: rng.Intn(size), Y: rng.Intn(size)}
		if !game.Occupies(snake, c) {
			return c, nil
		}
	}

	free := freeCells(size, snake)
	if len(free) == 0 {
		return game.Cell{}, game.ErrFieldExhausted
	}
	return free[rng.Intn(len(free))], nil
}

func freeCells(size int, snake []game.Cell) []game.Cell {
	occupied := make(map[game.Cell]struct{}, len(snake))
	for _, p := range snake {
		occupied[p] = struct{}{}
	}

	available := make([]game.Cell, 0, size*size-len(occupied))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := game.Cell{X: x, Y: y}
			if _, ok := occupied[c]; ok {
				continue
			}
			available = append(available, c)
		}
	}
	return available
}

// splitMix is a tiny deterministic RandomSource (splitmix64).
type splitMix struct {
	state uint64
}

func newSplitMix(seed uint64) *splitMix {
	return &splitMix{state: seed}
}

func (s *splitMix) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	x := s.state
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func (s *splitMix) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.next() % uint64(n))
}

// snakeSeed mixes board size, length and head position.
func snakeSeed(size int, snake []game.Cell) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(size))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(len(snake)))
	_, _ = h.Write(buf[:])
	if len(snake) > 0 {
		head := snake[0]
		binary.LittleEndian.PutUint64(buf[:], (uint64(uint32(head.X))<<32)|uint64(uint32(head.Y)))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

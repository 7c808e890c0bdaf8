package game

// GridSize is the default board edge length.
const GridSize = 20

// InBounds reports whether c lies within a size x size grid.
func InBounds(size int, c Cell) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

// Occupies reports whether any member of cells equals c.
// Linear scan: the snake never outgrows the grid area.
func Occupies(cells []Cell, c Cell) bool {
	for _, p := range cells {
		if p == c {
			return true
		}
	}
	return false
}

// InitialSnake is the three-cell starting actor for a board of the given size,
// head first, pointing up.
func InitialSnake(size int) []Cell {
	mid := size / 2
	return []Cell{
		{X: mid, Y: mid},
		{X: mid, Y: mid + 1},
		{X: mid, Y: mid + 2},
	}
}

// InitialFood is the fixed food cell of a fresh run.
func InitialFood(size int) Cell {
	return Cell{X: size / 4, Y: size / 4}
}

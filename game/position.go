package game

import "fmt"

// Position is a map cell. Coordinates follow Halite conventions: (0,0) is
// top-left, x grows east and y grows south.
type Position struct {
	X uint32
	Y uint32
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// MapSize is fixed for the lifetime of a game.
type MapSize struct {
	Width  uint32
	Height uint32
}

func (s MapSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// MaxCells bounds the map area a client accepts.
const MaxCells = 1 << 24

// Cells is the number of cells on a map this size.
func (s MapSize) Cells() uint64 {
	return uint64(s.Width) * uint64(s.Height)
}

// Contains reports whether p is a valid cell of a map this size.
func (s MapSize) Contains(p Position) bool {
	return p.X < s.Width && p.Y < s.Height
}

// Wrap normalizes signed coordinates onto the torus. An axis of length zero
// has no cells and maps every coordinate to 0.
func (s MapSize) Wrap(x, y int) Position {
	return Position{X: wrapAxis(x, int(s.Width)), Y: wrapAxis(y, int(s.Height))}
}

func wrapAxis(v, n int) uint32 {
	if n <= 0 {
		return 0
	}
	v %= n
	if v < 0 {
		v += n
	}
	return uint32(v)
}

// The map is a torus: stepping off any edge re-enters on the opposite one.

func (p Position) North(size MapSize) Position {
	if p.Y == 0 {
		return Position{X: p.X, Y: size.Height - 1}
	}
	return Position{X: p.X, Y: p.Y - 1}
}

func (p Position) South(size MapSize) Position {
	return Position{X: p.X, Y: (p.Y + 1) % size.Height}
}

func (p Position) East(size MapSize) Position {
	return Position{X: (p.X + 1) % size.Width, Y: p.Y}
}

func (p Position) West(size MapSize) Position {
	if p.X == 0 {
		return Position{X: size.Width - 1, Y: p.Y}
	}
	return Position{X: p.X - 1, Y: p.Y}
}

// Step moves one cell in the given direction.
func (p Position) Step(d Direction, size MapSize) Position {
	switch d.d {
	case dirWest:
		return p.West(size)
	case dirSouth:
		return p.South(size)
	case dirNorth:
		return p.North(size)
	default:
		return p.East(size)
	}
}

// Neighbors returns the four adjacent cells in Directions order.
func (p Position) Neighbors(size MapSize) [4]Position {
	var out [4]Position
	for i, d := range Directions {
		out[i] = p.Step(d, size)
	}
	return out
}

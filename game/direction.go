package game

type dir uint8

const (
	dirEast dir = iota
	dirWest
	dirSouth
	dirNorth
)

// Direction is one of the four cardinal moves. The discriminator is
// unexported so East, West, South and North are the only values that can
// exist; the zero Direction is East.
type Direction struct {
	d dir
}

var (
	East  = Direction{dirEast}
	West  = Direction{dirWest}
	South = Direction{dirSouth}
	North = Direction{dirNorth}
)

// Directions lists every cardinal direction in protocol order.
var Directions = [4]Direction{East, West, South, North}

// holdSymbol is the reserved move symbol that keeps a ship in place.
const holdSymbol = 'o'

func (d Direction) String() string {
	switch d.d {
	case dirWest:
		return "west"
	case dirSouth:
		return "south"
	case dirNorth:
		return "north"
	default:
		return "east"
	}
}

// Symbol is the single-character code used in move commands.
func (d Direction) Symbol() byte {
	switch d.d {
	case dirWest:
		return 'w'
	case dirSouth:
		return 's'
	case dirNorth:
		return 'n'
	default:
		return 'e'
	}
}

// Opposite returns the direction that undoes d.
func (d Direction) Opposite() Direction {
	switch d.d {
	case dirWest:
		return East
	case dirSouth:
		return North
	case dirNorth:
		return South
	default:
		return West
	}
}

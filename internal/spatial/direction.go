// Package spatial provides the coordinate system of the dungeon: directions and positions.
package spatial

// Direction is one of the six faces of a square.
type Direction int

const (
	// North points along +Y.
	North Direction = iota
	// East points along +X.
	East
	// South points along -Y.
	South
	// West points along -X.
	West
	// Floor points along -Z.
	Floor
	// Ceiling points along +Z.
	Ceiling
)

// Directions lists every direction in declaration order.
var Directions = [...]Direction{North, East, South, West, Floor, Ceiling}

// Valid reports whether d is one of the six directions.
func (d Direction) Valid() bool {
	return d >= North && d <= Ceiling
}

// Opposite returns the direction facing d.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Floor:
		return Ceiling
	case Ceiling:
		return Floor
	default:
		return d
	}
}

// Axis returns the unit vector of the axis d moves along.
func (d Direction) Axis() Position {
	switch d {
	case North, South:
		return Position{Y: 1}
	case East, West:
		return Position{X: 1}
	case Floor, Ceiling:
		return Position{Z: 1}
	default:
		return Position{}
	}
}

// Sign returns +1 for North, East and Ceiling and -1 for the others.
func (d Direction) Sign() int {
	switch d {
	case North, East, Ceiling:
		return 1
	case South, West, Floor:
		return -1
	default:
		return 0
	}
}

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	case Floor:
		return "floor"
	case Ceiling:
		return "ceiling"
	default:
		return "unknown"
	}
}

// ParseDirection returns the direction named s (as produced by String).
func ParseDirection(s string) (Direction, bool) {
	for _, d := range Directions {
		if d.String() == s {
			return d, true
		}
	}
	return 0, false
}

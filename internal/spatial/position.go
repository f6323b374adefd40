package spatial

import (
	"fmt"
	"math"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
)

var (
	// ErrOverflow is returned when an operation would leave the coordinate range.
	ErrOverflow = apperrors.New(apperrors.CodeOutOfRange, "position coordinate overflow")
	// ErrNegative is returned when a subtraction would produce a negative coordinate.
	ErrNegative = apperrors.New(apperrors.CodeOutOfRange, "position coordinate would be negative")
)

// Position is an immutable triple of non-negative coordinates.
// It is used both as an absolute coordinate of the root dungeon and as a coordinate local to a
// sub-dungeon. Positions are comparable and can be used as map keys.
type Position struct {
	X, Y, Z uint64
}

// Origin is the all-zero position.
var Origin = Position{}

// At is shorthand for Position{X: x, Y: y, Z: z}.
func At(x, y, z uint64) Position {
	return Position{X: x, Y: y, Z: z}
}

// Offset returns p shifted by o.
func (p Position) Offset(o Position) (Position, error) {
	if p.X > math.MaxUint64-o.X || p.Y > math.MaxUint64-o.Y || p.Z > math.MaxUint64-o.Z {
		return Position{}, ErrOverflow
	}
	return Position{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}, nil
}

// Sub returns p minus o. Each coordinate of o must not exceed the one of p.
func (p Position) Sub(o Position) (Position, error) {
	if o.X > p.X || o.Y > p.Y || o.Z > p.Z {
		return Position{}, ErrNegative
	}
	return Position{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}, nil
}

// Mul returns p scaled by factor.
func (p Position) Mul(factor uint64) (Position, error) {
	if factor == 0 {
		return Position{}, nil
	}
	limit := math.MaxUint64 / factor
	if p.X > limit || p.Y > limit || p.Z > limit {
		return Position{}, ErrOverflow
	}
	return Position{X: p.X * factor, Y: p.Y * factor, Z: p.Z * factor}, nil
}

// Adjacent returns the position one step from p in direction d.
// The second result is false when that position would leave the coordinate range.
func (p Position) Adjacent(d Direction) (Position, bool) {
	if !d.Valid() {
		return Position{}, false
	}
	axis := d.Axis()
	if d.Sign() > 0 {
		next, err := p.Offset(axis)
		return next, err == nil
	}
	next, err := p.Sub(axis)
	return next, err == nil
}

// IsAdjacentTo reports whether exactly one coordinate differs, by exactly one.
func (p Position) IsAdjacentTo(o Position) bool {
	dx, dy, dz := distance(p.X, o.X), distance(p.Y, o.Y), distance(p.Z, o.Z)
	return dx+dy+dz == 1 && dx <= 1 && dy <= 1 && dz <= 1
}

// DirectionTo returns the direction leading from p to the adjacent position o.
func (p Position) DirectionTo(o Position) (Direction, bool) {
	if !p.IsAdjacentTo(o) {
		return 0, false
	}
	switch {
	case p.X != o.X:
		if o.X > p.X {
			return East, true
		}
		return West, true
	case p.Y != o.Y:
		if o.Y > p.Y {
			return North, true
		}
		return South, true
	default:
		if o.Z > p.Z {
			return Ceiling, true
		}
		return Floor, true
	}
}

// Between reports whether p lies in the inclusive box [lo, hi].
func (p Position) Between(lo, hi Position) bool {
	return p.X >= lo.X && p.X <= hi.X &&
		p.Y >= lo.Y && p.Y <= hi.Y &&
		p.Z >= lo.Z && p.Z <= hi.Z
}

// Exceeds reports whether any coordinate of p is larger than the one of bound.
func (p Position) Exceeds(bound Position) bool {
	return p.X > bound.X || p.Y > bound.Y || p.Z > bound.Z
}

// AllEqual reports whether the three coordinates are equal.
func (p Position) AllEqual() bool {
	return p.X == p.Y && p.Y == p.Z
}

// String renders p as "(x,y,z)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

func distance(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

package dungeon

import (
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/world"
)

// Constraint restricts the bounds of a singular dungeon and the squares it accepts.
type Constraint interface {
	AllowsMaximum(max spatial.Position) bool
	AllowsSquare(d *Singular, local spatial.Position, sq *world.Square, neighbours map[spatial.Direction]*world.Square) bool
}

// LevelConstraint keeps a dungeon flat at z = 0.
type LevelConstraint struct{}

// AllowsMaximum accepts bounds with a zero z coordinate.
func (LevelConstraint) AllowsMaximum(max spatial.Position) bool { return max.Z == 0 }

// AllowsSquare accepts every square.
func (LevelConstraint) AllowsSquare(*Singular, spatial.Position, *world.Square, map[spatial.Direction]*world.Square) bool {
	return true
}

// ShaftConstraint keeps a dungeon on a single axis. A shaft refuses rock squares, and doors
// may only lead out of the shaft, never to the next square of the shaft.
type ShaftConstraint struct {
	Direction spatial.Direction
}

// AllowsMaximum accepts the origin or a bound that is non-zero exactly along the shaft axis.
func (c ShaftConstraint) AllowsMaximum(max spatial.Position) bool {
	if max == spatial.Origin {
		return true
	}
	axis := c.Direction.Axis()
	return (axis.X == 0) == (max.X == 0) &&
		(axis.Y == 0) == (max.Y == 0) &&
		(axis.Z == 0) == (max.Z == 0)
}

// AllowsSquare refuses rocks and squares whose dominant border along the shaft would be a
// door towards a square already in the shaft.
func (c ShaftConstraint) AllowsSquare(d *Singular, local spatial.Position, sq *world.Square, neighbours map[spatial.Direction]*world.Square) bool {
	if sq.Kind() == world.RockSquare {
		return false
	}
	dominant, err := sq.DominantBorders(neighbours)
	if err != nil {
		return false
	}
	for _, dir := range []spatial.Direction{c.Direction, c.Direction.Opposite()} {
		adj, ok := local.Adjacent(dir)
		if ok && d.HasSquareAt(adj) && dominant[dir].HasDoor() {
			return false
		}
	}
	return true
}

package dungeon

import "github.com/samdwyer/dungeoncore/internal/spatial"

// box is the inclusive region [Origin, Origin+Extent] a dungeon occupies in its parent.
type box struct {
	origin spatial.Position
	extent spatial.Position
}

// far returns the inclusive upper corner.
func (b box) far() (spatial.Position, bool) {
	p, err := b.origin.Offset(b.extent)
	return p, err == nil
}

// contains returns true if p lies inside the box.
func (b box) contains(p spatial.Position) bool {
	far, ok := b.far()
	return ok && p.Between(b.origin, far)
}

// intersects returns true if the two boxes share at least one position.
func (b box) intersects(other box) bool {
	bf, ok1 := b.far()
	of, ok2 := other.far()
	if !ok1 || !ok2 {
		return true
	}
	return b.origin.X <= of.X && bf.X >= other.origin.X &&
		b.origin.Y <= of.Y && bf.Y >= other.origin.Y &&
		b.origin.Z <= of.Z && bf.Z >= other.origin.Z
}

// fitsIn reports whether the whole box lies between the origin and max.
func (b box) fitsIn(max spatial.Position) bool {
	far, ok := b.far()
	return ok && far.Between(spatial.Origin, max)
}

package dungeon

import (
	"iter"
	"maps"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/world"
)

// Composite is a dungeon made of sub-dungeons placed at offsets inside its bounds.
// Squares addressed through a composite are resolved into the sub-dungeon that covers them.
type Composite struct {
	base
	children map[spatial.Position]Dungeon
}

// NewComposite creates an empty composite dungeon bounded by max.
func NewComposite(max spatial.Position) *Composite {
	c := &Composite{children: make(map[spatial.Position]Dungeon)}
	c.base = base{self: c, maximum: max}
	return c
}

// childAt resolves pos to the sub-dungeon covering it and the position local to that child.
// A child placed exactly at pos wins over one whose range merely contains it.
func (c *Composite) childAt(pos spatial.Position) (Dungeon, spatial.Position, bool) {
	if c.terminated {
		return nil, spatial.Position{}, false
	}
	if child, ok := c.children[pos]; ok {
		return child, spatial.Origin, true
	}
	for _, off := range sortedPositions(c.children) {
		child := c.children[off]
		if !(box{origin: off, extent: child.MaximumPosition()}).contains(pos) {
			continue
		}
		local, err := pos.Sub(off)
		if err != nil {
			continue
		}
		return child, local, true
	}
	return nil, spatial.Position{}, false
}

func (c *Composite) leafAt(pos spatial.Position) (*Singular, spatial.Position, bool) {
	child, local, ok := c.childAt(pos)
	if !ok {
		return nil, spatial.Position{}, false
	}
	return child.leafAt(local)
}

func (c *Composite) putSquareAt(pos spatial.Position, sq *world.Square) error {
	child, local, ok := c.childAt(pos)
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeNotFound, "no sub-dungeon covers this position",
			map[string]string{"position": pos.String()})
	}
	return child.putSquareAt(local, sq)
}

// HasSquareAt reports whether a square occupies pos in any sub-dungeon.
func (c *Composite) HasSquareAt(pos spatial.Position) bool {
	child, local, ok := c.childAt(pos)
	return ok && child.HasSquareAt(local)
}

// SquareAt returns the square at pos.
func (c *Composite) SquareAt(pos spatial.Position) (*world.Square, error) {
	if c.terminated {
		return nil, ErrTerminated
	}
	child, local, ok := c.childAt(pos)
	if !ok {
		return nil, ErrNoSquare
	}
	return child.SquareAt(local)
}

// RemoveSquareAt removes the square at pos from the sub-dungeon holding it.
func (c *Composite) RemoveSquareAt(pos spatial.Position) error {
	if c.terminated {
		return ErrTerminated
	}
	child, local, ok := c.childAt(pos)
	if !ok {
		return ErrNoSquare
	}
	return child.RemoveSquareAt(local)
}

// NumSquares returns the number of squares held by all sub-dungeons.
func (c *Composite) NumSquares() int {
	n := 0
	for _, child := range c.children {
		n += child.NumSquares()
	}
	return n
}

// Squares returns every square of the sub-dungeons keyed by its position in this dungeon.
func (c *Composite) Squares() map[spatial.Position]*world.Square {
	if c.terminated {
		return nil
	}
	out := make(map[spatial.Position]*world.Square)
	for off, child := range c.children {
		for local, sq := range child.Squares() {
			pos, err := local.Offset(off)
			if err != nil {
				continue
			}
			out[pos] = sq
		}
	}
	return out
}

// Iterate yields the squares accepted by pred, ordered by position in this dungeon.
// The predicate receives the singular dungeon holding each square.
func (c *Composite) Iterate(pred Predicate) iter.Seq[*world.Square] {
	return func(yield func(*world.Square) bool) {
		squares := c.Squares()
		for _, pos := range sortedPositions(squares) {
			sq := squares[pos]
			if pred != nil {
				leaf, _, ok := c.leafAt(pos)
				if !ok || !pred(sq, leaf) {
					continue
				}
			}
			if !yield(sq) {
				return
			}
		}
	}
}

// CanHaveAsSubDungeonAt reports whether child may be attached at offset pos. A child already
// attached at pos is accepted again.
func (c *Composite) CanHaveAsSubDungeonAt(pos spatial.Position, child Dungeon) bool {
	if c.terminated || child == nil || child.IsTerminated() {
		return false
	}
	if child == Dungeon(c) {
		return false
	}
	attached := child.Parent() == c && c.children[pos] == child
	if child.Parent() != nil && !attached {
		return false
	}
	if sub, ok := child.(*Composite); ok && sub.HasSubDungeon(c, true) {
		return false
	}
	if !attached && child.NumSquares() != 0 {
		return false
	}
	if !(box{origin: pos, extent: child.MaximumPosition()}).fitsIn(c.maximum) {
		return false
	}
	for _, sibling := range c.children {
		if sibling != child && sibling.Overlaps(pos, child.MaximumPosition()) {
			return false
		}
	}
	return true
}

// SetSubDungeonAt attaches child at offset pos. Attaching a child twice fails.
func (c *Composite) SetSubDungeonAt(pos spatial.Position, child Dungeon) error {
	if c.terminated {
		return ErrTerminated
	}
	if !c.CanHaveAsSubDungeonAt(pos, child) || child.Parent() == c {
		return apperrors.WithMetadata(apperrors.CodeStructuralViolation, ErrCannotAttach.Message,
			map[string]string{"offset": pos.String()})
	}
	c.children[pos] = child
	child.setParent(c)
	return nil
}

// CanRemoveSubDungeonAt reports whether an empty sub-dungeon is attached exactly at pos.
func (c *Composite) CanRemoveSubDungeonAt(pos spatial.Position) bool {
	if c.terminated {
		return false
	}
	child, ok := c.children[pos]
	return ok && child.NumSquares() == 0
}

// RemoveSubDungeonAt detaches the sub-dungeon at offset pos. It must hold no squares.
func (c *Composite) RemoveSubDungeonAt(pos spatial.Position) error {
	if !c.CanRemoveSubDungeonAt(pos) {
		return apperrors.WithMetadata(apperrors.CodeStructuralViolation, ErrCannotDetach.Message,
			map[string]string{"offset": pos.String()})
	}
	child := c.children[pos]
	delete(c.children, pos)
	child.setParent(nil)
	return nil
}

// SubDungeonAt returns the sub-dungeon attached exactly at offset pos.
func (c *Composite) SubDungeonAt(pos spatial.Position) (Dungeon, bool) {
	child, ok := c.children[pos]
	return child, ok
}

// SubDungeons returns the direct sub-dungeons keyed by offset.
func (c *Composite) SubDungeons() map[spatial.Position]Dungeon {
	return maps.Clone(c.children)
}

// NumSubDungeons returns the number of direct sub-dungeons.
func (c *Composite) NumSubDungeons() int {
	return len(c.children)
}

// HasSubDungeon reports whether d is a direct sub-dungeon, or any descendant when deep is set.
func (c *Composite) HasSubDungeon(d Dungeon, deep bool) bool {
	for _, child := range c.children {
		if child == d {
			return true
		}
		if sub, ok := child.(*Composite); ok && deep && sub.HasSubDungeon(d, true) {
			return true
		}
	}
	return false
}

// PositionOf returns the offset at which d is attached.
func (c *Composite) PositionOf(d Dungeon) (spatial.Position, bool) {
	for off, child := range c.children {
		if child == d {
			return off, true
		}
	}
	return spatial.Position{}, false
}

// AllSingularDungeons returns every singular dungeon below c, ordered by offset.
func (c *Composite) AllSingularDungeons() []*Singular {
	var out []*Singular
	for _, off := range sortedPositions(c.children) {
		switch child := c.children[off].(type) {
		case *Singular:
			out = append(out, child)
		case *Composite:
			out = append(out, child.AllSingularDungeons()...)
		}
	}
	return out
}

// Terminate terminates every sub-dungeon and then detaches the composite from its parent.
func (c *Composite) Terminate() error {
	if c.terminated {
		return ErrTerminated
	}
	for _, off := range sortedPositions(c.children) {
		if err := c.children[off].Terminate(); err != nil {
			return err
		}
	}
	if err := c.detach(); err != nil {
		return err
	}
	c.children = nil
	return nil
}

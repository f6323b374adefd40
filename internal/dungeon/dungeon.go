// Package dungeon arranges squares in space: singular dungeons hold squares by position and
// composite dungeons hold sub-dungeons by offset.
package dungeon

import (
	"cmp"
	"fmt"
	"iter"
	"math"
	"slices"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/world"
)

// DefaultMaximum is the maximum position of a dungeon created without an explicit bound.
var DefaultMaximum = spatial.At(100, 100, 100)

var (
	// ErrTerminated is returned by every operation on a terminated dungeon.
	ErrTerminated = apperrors.New(apperrors.CodeIllegalState, "dungeon is terminated")
	// ErrCannotPlace is returned when a square cannot be placed at a position.
	ErrCannotPlace = apperrors.New(apperrors.CodeStructuralViolation, "square cannot be placed at this position")
	// ErrOccupied is returned when a square is placed on a position that already holds one.
	ErrOccupied = apperrors.New(apperrors.CodeIllegalArgument, "position already holds a square")
	// ErrNoSquare is returned when a position holds no square.
	ErrNoSquare = apperrors.New(apperrors.CodeNotFound, "no square at this position")
	// ErrInvalidMaximum is returned when a maximum position is not acceptable.
	ErrInvalidMaximum = apperrors.New(apperrors.CodeStructuralViolation, "invalid maximum position")
	// ErrCannotAttach is returned when a sub-dungeon cannot be attached at an offset.
	ErrCannotAttach = apperrors.New(apperrors.CodeStructuralViolation, "sub-dungeon cannot be attached here")
	// ErrCannotDetach is returned when removing a missing or non-empty sub-dungeon.
	ErrCannotDetach = apperrors.New(apperrors.CodeStructuralViolation, "sub-dungeon cannot be removed")
	// ErrInvalidShaft is returned for a shaft that does not point along a positive axis.
	ErrInvalidShaft = apperrors.New(apperrors.CodeOutOfRange, "shaft direction must be north, east or ceiling")
)

// Predicate selects squares during iteration. The dungeon passed is the singular dungeon that
// holds the square.
type Predicate func(sq *world.Square, d Dungeon) bool

// Dungeon is a region of space holding squares. It is implemented by *Singular and *Composite.
type Dungeon interface {
	// MaximumPosition returns the inclusive upper bound; the lower bound is the origin.
	// It is the origin once the dungeon is terminated.
	MaximumPosition() spatial.Position
	CanHaveAsMaximumPosition(max spatial.Position) bool
	SetMaximumPosition(max spatial.Position) error

	Parent() *Composite
	Root() Dungeon
	AbsolutePosition(local spatial.Position) (spatial.Position, error)
	Overlaps(origin, extent spatial.Position) bool

	CanSetSquareAt(pos spatial.Position, sq *world.Square) bool
	SetSquareAt(pos spatial.Position, sq *world.Square) error
	RemoveSquareAt(pos spatial.Position) error
	HasSquareAt(pos spatial.Position) bool
	SquareAt(pos spatial.Position) (*world.Square, error)
	NeighboursAt(pos spatial.Position) map[spatial.Direction]*world.Square
	NumSquares() int
	// Squares returns every square keyed by its position in this dungeon's frame, or nil
	// once terminated.
	Squares() map[spatial.Position]*world.Square
	Iterate(pred Predicate) iter.Seq[*world.Square]
	SquaresSatisfying(pred Predicate) []*world.Square
	AreAdjacentSquaresConnected() bool

	Terminate() error
	IsTerminated() bool

	putSquareAt(pos spatial.Position, sq *world.Square) error
	leafAt(pos spatial.Position) (*Singular, spatial.Position, bool)
	setParent(parent *Composite)
}

// base holds the state and behaviour shared by singular and composite dungeons.
type base struct {
	self       Dungeon
	maximum    spatial.Position
	parent     *Composite
	terminated bool
}

// MaximumPosition returns the inclusive upper bound of the dungeon.
func (b *base) MaximumPosition() spatial.Position { return b.maximum }

// Parent returns the composite this dungeon is attached to, or nil.
func (b *base) Parent() *Composite { return b.parent }

func (b *base) setParent(parent *Composite) { b.parent = parent }

// IsTerminated reports whether Terminate has been called.
func (b *base) IsTerminated() bool { return b.terminated }

// Root returns the top-most dungeon of the parent chain.
func (b *base) Root() Dungeon {
	d := b.self
	for d.Parent() != nil {
		d = d.Parent()
	}
	return d
}

// offset returns the position of the dungeon inside its parent, or the origin for a root.
func (b *base) offset() spatial.Position {
	if b.parent == nil {
		return spatial.Origin
	}
	p, _ := b.parent.PositionOf(b.self)
	return p
}

// AbsolutePosition converts a position local to this dungeon into a position of the root.
func (b *base) AbsolutePosition(local spatial.Position) (spatial.Position, error) {
	if b.parent == nil {
		return local, nil
	}
	p, err := local.Offset(b.offset())
	if err != nil {
		return spatial.Position{}, err
	}
	return b.parent.AbsolutePosition(p)
}

// Overlaps reports whether the region of this dungeon inside its parent shares a position
// with the region [origin, origin+extent].
func (b *base) Overlaps(origin, extent spatial.Position) bool {
	if b.terminated {
		return false
	}
	mine := box{origin: b.offset(), extent: b.maximum}
	return mine.intersects(box{origin: origin, extent: extent})
}

// CanHaveAsMaximumPosition reports whether the dungeon may grow to max: no coordinate may
// shrink, the dungeon must stay inside its parent and must not reach into a sibling.
func (b *base) CanHaveAsMaximumPosition(max spatial.Position) bool {
	if b.terminated {
		return false
	}
	if max.X < b.maximum.X || max.Y < b.maximum.Y || max.Z < b.maximum.Z {
		return false
	}
	if b.parent == nil {
		return true
	}
	at := b.offset()
	if !(box{origin: at, extent: max}).fitsIn(b.parent.maximum) {
		return false
	}
	for _, sibling := range b.parent.children {
		if sibling != b.self && sibling.Overlaps(at, max) {
			return false
		}
	}
	return true
}

// SetMaximumPosition grows the dungeon to max.
func (b *base) SetMaximumPosition(max spatial.Position) error {
	if b.terminated {
		return ErrTerminated
	}
	if !b.self.CanHaveAsMaximumPosition(max) {
		return apperrors.WithMetadata(apperrors.CodeStructuralViolation, ErrInvalidMaximum.Message,
			map[string]string{"maximum": max.String()})
	}
	b.maximum = max
	return nil
}

// CanSetSquareAt reports whether sq may be placed at pos. Placement is always validated on
// the root dungeon, with pos converted to the root's frame.
func (b *base) CanSetSquareAt(pos spatial.Position, sq *world.Square) bool {
	if b.terminated || sq == nil {
		return false
	}
	if b.parent != nil {
		abs, err := b.AbsolutePosition(pos)
		return err == nil && b.Root().CanSetSquareAt(abs, sq)
	}

	d := b.self
	if d.NumSquares() == math.MaxInt32 {
		return false
	}
	if pos.Exceeds(b.maximum) || pos.AllEqual() || d.HasSquareAt(pos) {
		return false
	}
	if sq.HasNeighbours() || b.holds(sq) {
		return false
	}
	if !b.canSetForSlipperiness(sq) {
		return false
	}
	leaf, local, ok := d.leafAt(pos)
	if !ok {
		return false
	}
	neighbours := d.NeighboursAt(pos)
	if !sq.CanConnect(neighbours) {
		return false
	}
	for _, c := range leaf.constraints {
		if !c.AllowsSquare(leaf, local, sq, neighbours) {
			return false
		}
	}
	return true
}

// holds reports whether sq is already placed in this dungeon.
func (b *base) holds(sq *world.Square) bool {
	for _, placed := range b.self.Squares() {
		if placed == sq {
			return true
		}
	}
	return false
}

// canSetForSlipperiness reports whether adding sq keeps at most one square in five made of
// slippery material. The first slippery square is always admitted.
func (b *base) canSetForSlipperiness(sq *world.Square) bool {
	if !sq.HasSlipperyMaterial() {
		return true
	}
	slippery, total := 0, 0
	for _, placed := range b.self.Squares() {
		total++
		if placed.HasSlipperyMaterial() {
			slippery++
		}
	}
	if slippery == 0 {
		return true
	}
	return 5*(slippery+1) <= total+1
}

// SetSquareAt places sq at pos and connects it to the squares around it.
func (b *base) SetSquareAt(pos spatial.Position, sq *world.Square) error {
	if b.terminated {
		return ErrTerminated
	}
	if sq == nil {
		return world.ErrNilSquare
	}
	if b.parent != nil {
		abs, err := b.AbsolutePosition(pos)
		if err != nil {
			return err
		}
		return b.Root().SetSquareAt(abs, sq)
	}
	if b.self.HasSquareAt(pos) {
		return apperrors.WithMetadata(apperrors.CodeIllegalArgument, ErrOccupied.Message,
			map[string]string{"position": pos.String()})
	}
	if !b.CanSetSquareAt(pos, sq) {
		return apperrors.WithMetadata(apperrors.CodeStructuralViolation, ErrCannotPlace.Message,
			map[string]string{"position": pos.String(), "square": sq.ID().String()})
	}
	if err := sq.Connect(b.self.NeighboursAt(pos)); err != nil {
		return fmt.Errorf("connect square at %v: %w", pos, err)
	}
	return b.self.putSquareAt(pos, sq)
}

// NeighboursAt returns the squares of the root dungeon adjacent to pos, keyed by direction.
func (b *base) NeighboursAt(pos spatial.Position) map[spatial.Direction]*world.Square {
	out := make(map[spatial.Direction]*world.Square)
	if b.terminated {
		return out
	}
	if b.parent != nil {
		abs, err := b.AbsolutePosition(pos)
		if err != nil {
			return out
		}
		return b.Root().NeighboursAt(abs)
	}
	for _, d := range spatial.Directions {
		adj, ok := pos.Adjacent(d)
		if !ok {
			continue
		}
		if sq, err := b.self.SquareAt(adj); err == nil {
			out[d] = sq
		}
	}
	return out
}

// AreAdjacentSquaresConnected reports whether every pair of adjacent squares in the root
// dungeon is joined by a shared border.
func (b *base) AreAdjacentSquaresConnected() bool {
	if b.terminated {
		return false
	}
	if b.parent != nil {
		return b.Root().AreAdjacentSquaresConnected()
	}
	for pos, sq := range b.self.Squares() {
		for _, d := range spatial.Directions {
			adj, ok := pos.Adjacent(d)
			if !ok {
				continue
			}
			if other, err := b.self.SquareAt(adj); err == nil && sq.Neighbour(d) != other {
				return false
			}
		}
	}
	return true
}

// SquaresSatisfying collects the squares accepted by pred; a nil pred accepts all.
func (b *base) SquaresSatisfying(pred Predicate) []*world.Square {
	if b.terminated {
		return nil
	}
	return slices.Collect(b.self.Iterate(pred))
}

// detach removes the dungeon from its parent and marks it terminated.
func (b *base) detach() error {
	if b.parent != nil {
		if err := b.parent.RemoveSubDungeonAt(b.offset()); err != nil {
			return err
		}
	}
	b.maximum = spatial.Origin
	b.terminated = true
	return nil
}

// sortedPositions returns the keys of m ordered by z, then y, then x.
func sortedPositions[V any](m map[spatial.Position]V) []spatial.Position {
	keys := make([]spatial.Position, 0, len(m))
	for p := range m {
		keys = append(keys, p)
	}
	slices.SortFunc(keys, comparePositions)
	return keys
}

func comparePositions(a, b spatial.Position) int {
	return cmp.Or(cmp.Compare(a.Z, b.Z), cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
}

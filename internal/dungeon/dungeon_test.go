package dungeon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/world"
)

func newSquare(t *testing.T, opts ...world.Option) *world.Square {
	t.Helper()
	sq, err := world.NewSquare(opts...)
	require.NoError(t, err)
	return sq
}

// levelAndShaft builds a composite with a 20x20 level at the origin and a northbound shaft of
// nine squares directly above it.
func levelAndShaft(t *testing.T) (*Composite, *Singular, *Singular) {
	t.Helper()
	root := NewComposite(spatial.At(30, 30, 30))
	level := NewLevel(20, 20)
	shaft, err := NewShaft(spatial.North, 9)
	require.NoError(t, err)
	require.NoError(t, root.SetSubDungeonAt(spatial.Origin, level))
	require.NoError(t, root.SetSubDungeonAt(spatial.At(0, 21, 0), shaft))
	return root, level, shaft
}

func TestCompositeAddressing(t *testing.T) {
	root, level, shaft := levelAndShaft(t)

	sq := newSquare(t)
	require.NoError(t, root.SetSquareAt(spatial.At(5, 5, 0), sq))
	got, err := level.SquareAt(spatial.At(5, 5, 0))
	require.NoError(t, err)
	assert.Same(t, sq, got)

	sq2 := newSquare(t)
	require.NoError(t, root.SetSquareAt(spatial.At(0, 25, 0), sq2))
	got, err = shaft.SquareAt(spatial.At(0, 4, 0))
	require.NoError(t, err)
	assert.Same(t, sq2, got)

	assert.Equal(t, 2, root.NumSquares())
	abs, err := shaft.AbsolutePosition(spatial.At(0, 4, 0))
	require.NoError(t, err)
	assert.Equal(t, spatial.At(0, 25, 0), abs)
	assert.Equal(t, Dungeon(root), shaft.Root())

	leaf, local, ok := root.leafAt(spatial.At(0, 25, 0))
	require.True(t, ok)
	assert.Same(t, shaft, leaf)
	assert.Equal(t, spatial.At(0, 4, 0), local)

	_, _, ok = root.leafAt(spatial.At(25, 25, 0))
	assert.False(t, ok, "no sub-dungeon covers this position")
	assert.False(t, root.CanSetSquareAt(spatial.At(25, 25, 0), newSquare(t)))
}

func TestSetSquareThroughChildUsesRoot(t *testing.T) {
	root, level, shaft := levelAndShaft(t)

	below := newSquare(t)
	require.NoError(t, level.SetSquareAt(spatial.At(0, 20, 0), below))
	above := newSquare(t)
	require.NoError(t, shaft.SetSquareAt(spatial.Origin, above))

	assert.True(t, root.HasSquareAt(spatial.At(0, 21, 0)))
	assert.Same(t, above, below.Neighbour(spatial.North), "squares in different sub-dungeons are connected")
	assert.Same(t, below, above.Neighbour(spatial.South))
	assert.True(t, root.AreAdjacentSquaresConnected())
	assert.True(t, shaft.AreAdjacentSquaresConnected())

	neighbours := shaft.NeighboursAt(spatial.At(0, 1, 0))
	assert.Equal(t, map[spatial.Direction]*world.Square{spatial.South: above}, neighbours)
}

func TestSlipperinessCap(t *testing.T) {
	d, err := NewSingular(DefaultMaximum)
	require.NoError(t, err)

	positions := []spatial.Position{
		spatial.At(0, 2, 0), spatial.At(0, 4, 0), spatial.At(0, 6, 0),
		spatial.At(0, 8, 0), spatial.At(0, 10, 0),
	}
	require.NoError(t, d.SetSquareAt(positions[0], newSquare(t, world.WithSlipperyMaterial(true))))
	for _, p := range positions[1:] {
		require.NoError(t, d.SetSquareAt(p, newSquare(t)))
	}

	slippery := newSquare(t, world.WithSlipperyMaterial(true))
	assert.False(t, d.CanSetSquareAt(spatial.At(0, 12, 0), slippery))
	err = d.SetSquareAt(spatial.At(0, 12, 0), slippery)
	assert.True(t, errors.Is(err, ErrCannotPlace))
	assert.False(t, slippery.HasNeighbours())

	for y := uint64(12); y <= 18; y += 2 {
		require.NoError(t, d.SetSquareAt(spatial.At(0, y, 0), newSquare(t)))
	}
	assert.Equal(t, 9, d.NumSquares())
	assert.True(t, d.CanSetSquareAt(spatial.At(0, 20, 0), slippery), "two in ten is within the cap")
}

func TestFirstSlipperySquareIsAdmitted(t *testing.T) {
	d, err := NewSingular(DefaultMaximum)
	require.NoError(t, err)
	assert.True(t, d.CanSetSquareAt(spatial.At(1, 0, 0), newSquare(t, world.WithSlipperyMaterial(true))))
}

func TestRemoveSquareDisconnects(t *testing.T) {
	d, err := NewSingular(DefaultMaximum)
	require.NoError(t, err)

	centre := newSquare(t)
	require.NoError(t, d.SetSquareAt(spatial.At(1, 2, 0), centre))
	east := newSquare(t)
	require.NoError(t, d.SetSquareAt(spatial.At(2, 2, 0), east))
	north := newSquare(t)
	require.NoError(t, d.SetSquareAt(spatial.At(1, 3, 0), north))
	require.True(t, centre.IsInSpace(east))

	require.NoError(t, d.RemoveSquareAt(spatial.At(1, 2, 0)))

	assert.False(t, centre.HasNeighbours())
	assert.True(t, centre.HasProperBorders())
	for dir, former := range map[spatial.Direction]*world.Square{spatial.West: east, spatial.South: north} {
		assert.Nil(t, former.Neighbour(dir))
		b := former.BorderAt(dir)
		assert.Equal(t, world.Initialised, b.State())
		assert.False(t, b.IsWall())
		assert.True(t, b.HasNeighbour(former))
		assert.True(t, former.HasProperBorders())
	}
	assert.False(t, d.HasSquareAt(spatial.At(1, 2, 0)))
	assert.False(t, east.IsInSpace(north))

	err = d.RemoveSquareAt(spatial.At(1, 2, 0))
	assert.True(t, errors.Is(err, ErrNoSquare))
}

func TestPlacementRules(t *testing.T) {
	d, err := NewSingular(spatial.At(10, 10, 10))
	require.NoError(t, err)

	sq := newSquare(t)
	assert.False(t, d.CanSetSquareAt(spatial.At(3, 3, 3), sq), "all-equal coordinates are reserved")
	assert.False(t, d.CanSetSquareAt(spatial.Origin, sq))
	assert.False(t, d.CanSetSquareAt(spatial.At(11, 0, 0), sq), "beyond the maximum")
	assert.False(t, d.CanSetSquareAt(spatial.At(1, 0, 0), nil))

	require.NoError(t, d.SetSquareAt(spatial.At(1, 0, 0), sq))
	assert.False(t, d.CanSetSquareAt(spatial.At(5, 0, 0), sq), "a square is placed only once")
	assert.False(t, d.CanSetSquareAt(spatial.At(1, 0, 0), newSquare(t)), "position is occupied")

	err = d.SetSquareAt(spatial.At(1, 0, 0), newSquare(t))
	assert.True(t, errors.Is(err, ErrOccupied))
	assert.Equal(t, apperrors.CodeIllegalArgument, apperrors.CodeOf(err))
	err = d.SetSquareAt(spatial.At(5, 0, 0), sq)
	assert.Equal(t, apperrors.CodeStructuralViolation, apperrors.CodeOf(err))
	assert.True(t, errors.Is(d.SetSquareAt(spatial.At(2, 0, 0), nil), world.ErrNilSquare))

	connected := newSquare(t)
	other := newSquare(t)
	require.NoError(t, other.Connect(map[spatial.Direction]*world.Square{spatial.West: connected}))
	assert.False(t, d.CanSetSquareAt(spatial.At(7, 8, 0), connected), "square already has neighbours")
}

func TestShaftRules(t *testing.T) {
	_, err := NewShaft(spatial.South, 3)
	assert.True(t, errors.Is(err, ErrInvalidShaft))

	shaft, err := NewShaft(spatial.North, 5)
	require.NoError(t, err)
	assert.Equal(t, spatial.At(0, 5, 0), shaft.MaximumPosition())
	dir, ok := shaft.ShaftDirection()
	require.True(t, ok)
	assert.Equal(t, spatial.North, dir)
	assert.False(t, shaft.IsLevel())

	assert.False(t, shaft.CanSetSquareAt(spatial.At(0, 3, 0), newSquare(t, world.Rock())), "shafts hold no rock")

	require.NoError(t, shaft.SetSquareAt(spatial.At(0, 1, 0), newSquare(t)))
	door := newSquare(t, world.Transparent(), world.WithWalls(spatial.South, spatial.North))
	assert.False(t, shaft.CanSetSquareAt(spatial.At(0, 2, 0), door), "door towards the next shaft square")
	assert.True(t, shaft.CanSetSquareAt(spatial.At(0, 3, 0), door), "door towards an empty position")

	free, err := NewSingular(spatial.At(0, 5, 0))
	require.NoError(t, err)
	require.NoError(t, free.SetSquareAt(spatial.At(0, 1, 0), newSquare(t)))
	assert.True(t, free.CanSetSquareAt(spatial.At(0, 2, 0), door))

	require.NoError(t, shaft.SetSquareAt(spatial.At(0, 2, 0), newSquare(t)))
	assert.False(t, shaft.HasInternalDoors())

	assert.True(t, shaft.CanHaveAsMaximumPosition(spatial.At(0, 8, 0)))
	assert.False(t, shaft.CanHaveAsMaximumPosition(spatial.At(1, 8, 0)), "shaft stays on its axis")
	assert.False(t, shaft.CanHaveAsMaximumPosition(spatial.At(0, 4, 0)), "bounds never shrink")
}

func TestLevelRules(t *testing.T) {
	level := NewLevel(4, 4)
	assert.True(t, level.IsLevel())
	_, isShaft := level.ShaftDirection()
	assert.False(t, isShaft)

	assert.False(t, level.CanHaveAsMaximumPosition(spatial.At(5, 5, 1)))
	assert.True(t, level.CanHaveAsMaximumPosition(spatial.At(5, 5, 0)))
	require.NoError(t, level.SetMaximumPosition(spatial.At(6, 4, 0)))
	assert.Equal(t, spatial.At(6, 4, 0), level.MaximumPosition())
	assert.Error(t, level.SetMaximumPosition(spatial.At(6, 4, 2)))

	_, err := NewSingular(spatial.At(3, 3, 1), LevelConstraint{})
	assert.True(t, errors.Is(err, ErrInvalidMaximum))
}

func TestSubDungeonAttachment(t *testing.T) {
	root := NewComposite(spatial.At(20, 20, 20))
	first := NewLevel(5, 5)
	require.NoError(t, root.SetSubDungeonAt(spatial.Origin, first))

	assert.False(t, root.CanHaveAsSubDungeonAt(spatial.At(3, 3, 0), NewLevel(5, 5)), "overlaps a sibling")
	assert.True(t, root.CanHaveAsSubDungeonAt(spatial.At(6, 0, 0), NewLevel(5, 5)))
	assert.True(t, root.CanHaveAsSubDungeonAt(spatial.At(0, 0, 1), NewLevel(5, 5)), "stacked above")
	assert.False(t, root.CanHaveAsSubDungeonAt(spatial.At(16, 0, 0), NewLevel(5, 5)), "leaves the bounds")
	assert.False(t, root.CanHaveAsSubDungeonAt(spatial.At(10, 0, 0), first), "already attached")
	assert.False(t, root.CanHaveAsSubDungeonAt(spatial.At(10, 10, 10), root), "itself")
	assert.False(t, root.CanHaveAsSubDungeonAt(spatial.At(10, 10, 10), nil))

	filled := NewLevel(2, 2)
	require.NoError(t, filled.SetSquareAt(spatial.At(1, 0, 0), newSquare(t)))
	assert.False(t, root.CanHaveAsSubDungeonAt(spatial.At(10, 10, 0), filled), "holds squares")

	inner := NewComposite(spatial.At(5, 5, 5))
	require.NoError(t, root.SetSubDungeonAt(spatial.At(10, 10, 10), inner))
	assert.True(t, root.HasSubDungeon(inner, false))
	outer := NewComposite(spatial.At(50, 50, 50))
	require.NoError(t, outer.SetSubDungeonAt(spatial.Origin, root))
	assert.True(t, outer.HasSubDungeon(inner, true))
	assert.False(t, outer.HasSubDungeon(inner, false))

	err := inner.SetSubDungeonAt(spatial.Origin, outer)
	assert.True(t, errors.Is(err, ErrCannotAttach), "cycles are refused")

	off, ok := root.PositionOf(inner)
	require.True(t, ok)
	assert.Equal(t, spatial.At(10, 10, 10), off)
	got, ok := root.SubDungeonAt(spatial.At(10, 10, 10))
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.Equal(t, 2, root.NumSubDungeons())
	assert.Len(t, root.SubDungeons(), 2)
	assert.Equal(t, []*Singular{first}, outer.AllSingularDungeons())

	require.NoError(t, root.RemoveSubDungeonAt(spatial.At(10, 10, 10)))
	assert.Nil(t, inner.Parent())
	assert.True(t, errors.Is(root.RemoveSubDungeonAt(spatial.At(10, 10, 10)), ErrCannotDetach))
}

func TestAttachedChildAcceptedAtItsOffset(t *testing.T) {
	root := NewComposite(spatial.At(20, 20, 20))
	level := NewLevel(5, 5)
	require.NoError(t, root.SetSubDungeonAt(spatial.At(1, 1, 0), level))
	require.NoError(t, root.SetSquareAt(spatial.At(2, 2, 0), newSquare(t)))

	assert.True(t, root.CanHaveAsSubDungeonAt(spatial.At(1, 1, 0), level))
	assert.False(t, root.CanHaveAsSubDungeonAt(spatial.At(2, 1, 0), level), "other offset")

	err := root.SetSubDungeonAt(spatial.At(1, 1, 0), level)
	assert.True(t, errors.Is(err, ErrCannotAttach), "attaching twice")
	assert.Equal(t, 1, root.NumSubDungeons())
	assert.Equal(t, 1, root.NumSquares())
}

func TestRemoveSubDungeonRequiresEmpty(t *testing.T) {
	root, level, _ := levelAndShaft(t)
	require.NoError(t, root.SetSquareAt(spatial.At(2, 1, 0), newSquare(t)))
	assert.False(t, root.CanRemoveSubDungeonAt(spatial.Origin))
	require.NoError(t, level.RemoveSquareAt(spatial.At(2, 1, 0)))
	assert.True(t, root.CanRemoveSubDungeonAt(spatial.Origin))
}

func TestMaximumGrowthRespectsSiblings(t *testing.T) {
	root := NewComposite(spatial.At(30, 30, 30))
	a := NewLevel(5, 5)
	b := NewLevel(5, 5)
	require.NoError(t, root.SetSubDungeonAt(spatial.Origin, a))
	require.NoError(t, root.SetSubDungeonAt(spatial.At(0, 6, 0), b))

	assert.False(t, a.CanHaveAsMaximumPosition(spatial.At(5, 6, 0)), "would reach into b")
	assert.True(t, a.CanHaveAsMaximumPosition(spatial.At(9, 5, 0)))
	assert.False(t, a.CanHaveAsMaximumPosition(spatial.At(31, 5, 0)), "would leave the parent")
	assert.False(t, root.CanHaveAsMaximumPosition(spatial.At(29, 30, 30)))
	require.NoError(t, root.SetMaximumPosition(spatial.At(40, 40, 40)))
}

func TestTerminationCascades(t *testing.T) {
	root, level, shaft := levelAndShaft(t)
	below := newSquare(t)
	require.NoError(t, root.SetSquareAt(spatial.At(0, 20, 0), below))
	above := newSquare(t)
	require.NoError(t, root.SetSquareAt(spatial.At(0, 21, 0), above))

	require.NoError(t, root.Terminate())

	for _, d := range []Dungeon{root, level, shaft} {
		assert.True(t, d.IsTerminated())
		assert.Equal(t, spatial.Origin, d.MaximumPosition())
		assert.Nil(t, d.Parent())
		assert.Nil(t, d.Squares())
		assert.False(t, d.HasSquareAt(spatial.At(0, 20, 0)))
		assert.False(t, d.AreAdjacentSquaresConnected())
	}
	assert.Zero(t, root.NumSubDungeons())
	assert.False(t, below.HasNeighbours())
	assert.False(t, above.HasNeighbours())

	_, err := root.SquareAt(spatial.At(0, 20, 0))
	assert.True(t, errors.Is(err, ErrTerminated))
	assert.True(t, errors.Is(err, apperrors.ErrIllegalState))
	assert.True(t, errors.Is(root.Terminate(), ErrTerminated))
	assert.True(t, errors.Is(level.SetSquareAt(spatial.At(1, 0, 0), newSquare(t)), ErrTerminated))
}

func TestTerminatingChildDetachesIt(t *testing.T) {
	root, level, shaft := levelAndShaft(t)
	require.NoError(t, root.SetSquareAt(spatial.At(3, 1, 0), newSquare(t)))

	require.NoError(t, level.Terminate())
	assert.Equal(t, 1, root.NumSubDungeons())
	assert.Zero(t, root.NumSquares())
	assert.False(t, root.IsTerminated())
	assert.False(t, shaft.IsTerminated())
	assert.True(t, root.CanHaveAsSubDungeonAt(spatial.Origin, NewLevel(20, 20)))
}

func TestIteratePredicates(t *testing.T) {
	root, _, _ := levelAndShaft(t)
	hot := newSquare(t)
	require.NoError(t, root.SetSquareAt(spatial.At(3, 1, 0), hot))
	assert.Error(t, root.SetSquareAt(spatial.At(2, 1, 1), newSquare(t)), "outside the flat level")
	require.NoError(t, root.SetSquareAt(spatial.At(0, 24, 0), newSquare(t)))

	inLevel := func(_ *world.Square, d Dungeon) bool {
		s, ok := d.(*Singular)
		return ok && s.IsLevel()
	}
	assert.Equal(t, 2, root.NumSquares())
	assert.Len(t, root.SquaresSatisfying(inLevel), 1)
	assert.Len(t, root.SquaresSatisfying(nil), 2)

	var first *world.Square
	for sq := range root.Iterate(nil) {
		first = sq
		break
	}
	assert.Same(t, hot, first, "iteration is ordered by z, then y, then x")
}

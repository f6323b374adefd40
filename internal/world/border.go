// Package world provides the squares of a dungeon and the borders that join them.
package world

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/samdwyer/dungeoncore/internal/spatial"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
)

// BorderState is the lifecycle state of a border.
type BorderState int

const (
	// Uninitialised borders have no neighbours yet.
	Uninitialised BorderState = iota
	// Initialised borders are installed on one or two squares.
	Initialised
	// Terminated borders are detached for good.
	Terminated
)

// String returns the state name.
func (s BorderState) String() string {
	switch s {
	case Uninitialised:
		return "uninitialised"
	case Initialised:
		return "initialised"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// BorderKind distinguishes open borders from walls.
type BorderKind int

const (
	// KindOpen is a border that never isolates.
	KindOpen BorderKind = iota
	// KindWall is a wall, optionally with a door.
	KindWall
)

// String returns the kind name.
func (k BorderKind) String() string {
	if k == KindWall {
		return "wall"
	}
	return "open"
}

var (
	// ErrBorderNotUninitialised is returned when building a border twice.
	ErrBorderNotUninitialised = apperrors.New(apperrors.CodeIllegalState, "border is not uninitialised")
	// ErrCannotBuild is returned when the squares cannot accept the border.
	ErrCannotBuild = apperrors.New(apperrors.CodeStructuralViolation, "border cannot be built between these squares")
	// ErrCannotTerminate is returned when a neighbour cannot accept an open border in its place.
	ErrCannotTerminate = apperrors.New(apperrors.CodeIllegalState, "border cannot be terminated")
	// ErrCannotSplit is returned when splitting a border that has no disconnecting neighbour.
	ErrCannotSplit = apperrors.New(apperrors.CodeIllegalState, "border cannot be split")
	// ErrNilSquare is returned when a required square is missing.
	ErrNilSquare = apperrors.New(apperrors.CodeNilArgument, "square is nil")
)

// Border is the shared boundary between one or two squares.
// A border is either open or a wall; walls may carry a door and doorless walls may be slippery.
type Border struct {
	kind      BorderKind
	door      bool
	slippery  bool
	isolating bool
	state     BorderState

	neighbour1    *Square
	neighbour2    *Square
	neighbour1Dir spatial.Direction
}

// NewOpenBorder returns an uninitialised open border.
func NewOpenBorder() *Border {
	return &Border{kind: KindOpen}
}

// NewWall returns an uninitialised wall. A door wall is never slippery and starts closed.
func NewWall(door, slippery bool) *Border {
	return &Border{
		kind:      KindWall,
		door:      door,
		slippery:  slippery && !door,
		isolating: true,
	}
}

// Kind returns whether b is open or a wall.
func (b *Border) Kind() BorderKind { return b.kind }

// IsWall reports whether b is a wall.
func (b *Border) IsWall() bool { return b.kind == KindWall }

// HasDoor reports whether b is a wall with a door.
func (b *Border) HasDoor() bool { return b.kind == KindWall && b.door }

// IsSlippery reports whether b is a slippery wall.
func (b *Border) IsSlippery() bool { return b.kind == KindWall && b.slippery }

// IsIsolating reports whether nothing flows across b.
func (b *Border) IsIsolating() bool { return b.isolating }

// IsDoorOpen reports whether b has a door that is open.
func (b *Border) IsDoorOpen() bool { return b.HasDoor() && !b.isolating }

// State returns the lifecycle state.
func (b *Border) State() BorderState { return b.state }

// Neighbour1 returns the square b was built from.
func (b *Border) Neighbour1() *Square { return b.neighbour1 }

// Neighbour2 returns the second square, if any.
func (b *Border) Neighbour2() *Square { return b.neighbour2 }

// Neighbour1Direction returns the slot b occupies on its first neighbour.
func (b *Border) Neighbour1Direction() spatial.Direction { return b.neighbour1Dir }

// Neighbour2Direction returns the slot b occupies on its second neighbour.
func (b *Border) Neighbour2Direction() (spatial.Direction, bool) {
	if b.neighbour2 == nil {
		return 0, false
	}
	return b.neighbour1Dir.Opposite(), true
}

// HasNeighbour reports whether s is one of the squares b joins.
func (b *Border) HasNeighbour(s *Square) bool {
	return s != nil && (b.neighbour1 == s || b.neighbour2 == s)
}

// other returns the neighbour of b that is not s.
func (b *Border) other(s *Square) *Square {
	if b.neighbour1 == s {
		return b.neighbour2
	}
	return b.neighbour1
}

// HasProperNeighbours reports whether the neighbour references agree with the state and
// whether every neighbour holds b in the matching slot.
func (b *Border) HasProperNeighbours() bool {
	if b.state != Initialised {
		return b.neighbour1 == nil && b.neighbour2 == nil
	}
	if b.neighbour1 == nil || b.neighbour1.borders[b.neighbour1Dir] != b {
		return false
	}
	return b.neighbour2 == nil || b.neighbour2.borders[b.neighbour1Dir.Opposite()] == b
}

// CanBuild reports whether b can be installed at dir on square1 and, if given, at the
// opposite slot of square2. An existing neighbour across that slot may only be reused
// when b is not a wall.
func (b *Border) CanBuild(square1 *Square, dir spatial.Direction, square2 *Square) bool {
	if b.state != Uninitialised || square1 == nil || !dir.Valid() {
		return false
	}
	if !square1.CanHaveAsBorderAt(dir, b) {
		return false
	}
	if square2 != nil && !square2.CanHaveAsBorderAt(dir.Opposite(), b) {
		return false
	}
	if n := square1.Neighbour(dir); n != nil && (n != square2 || b.IsWall()) {
		return false
	}
	if square2 != nil {
		if n := square2.Neighbour(dir.Opposite()); n != nil && n != square1 {
			return false
		}
	}
	return true
}

// Build installs b at dir on square1 and at the opposite slot of square2 (which may be nil).
// The borders that occupied those slots are terminated without replacement. When b does not
// isolate, the space of square1 is merged.
func (b *Border) Build(square1 *Square, dir spatial.Direction, square2 *Square) error {
	if b.state != Uninitialised {
		return ErrBorderNotUninitialised
	}
	if square1 == nil {
		return ErrNilSquare
	}
	if !b.CanBuild(square1, dir, square2) {
		return apperrors.WithMetadata(apperrors.CodeStructuralViolation, ErrCannotBuild.Message,
			map[string]string{"direction": dir.String(), "kind": b.kind.String()})
	}

	border1 := square1.borders[dir]
	if border1 != nil {
		border1.terminate(false)
	}
	if square2 != nil {
		if border2 := square2.borders[dir.Opposite()]; border2 != nil && border2 != border1 {
			border2.terminate(false)
		}
	}

	b.state = Initialised
	b.neighbour1, b.neighbour1Dir, b.neighbour2 = square1, dir, square2
	square1.borders[dir] = b
	if square2 != nil {
		square2.borders[dir.Opposite()] = b
	}

	if !b.isolating {
		return square1.Merge()
	}
	return nil
}

// CanTerminate reports whether every neighbour accepts an open border in place of b.
func (b *Border) CanTerminate() bool {
	switch b.state {
	case Terminated:
		return false
	case Uninitialised:
		return true
	}
	control := NewOpenBorder()
	if !b.neighbour1.CanHaveAsBorderAt(b.neighbour1Dir, control) {
		return false
	}
	if b.neighbour2 == nil {
		return true
	}
	if !b.neighbour2.CanHaveAsBorderAt(b.neighbour1Dir.Opposite(), control) {
		return false
	}
	if !b.isolating {
		return true
	}
	_, err := planMerge(joinedSpace(b.neighbour1, b.neighbour2))
	return err == nil
}

// joinedSpace returns the squares of the spaces of a and b, each square once.
func joinedSpace(a, b *Square) []*Square {
	space := a.SquaresInSpace()
	seen := mapset.New[*Square]()
	for _, sq := range space {
		seen.Put(sq)
	}
	for _, sq := range b.SquaresInSpace() {
		if !seen.Has(sq) {
			seen.Put(sq)
			space = append(space, sq)
		}
	}
	return space
}

// Terminate detaches b and rebuilds a fresh open border between its former neighbours.
func (b *Border) Terminate() error {
	if !b.CanTerminate() {
		return ErrCannotTerminate
	}
	return b.terminate(true)
}

func (b *Border) terminate(rebuild bool) error {
	former := b.state
	if former == Terminated {
		return nil
	}
	b.state = Terminated
	if former == Uninitialised {
		return nil
	}

	n1, dir, n2 := b.neighbour1, b.neighbour1Dir, b.neighbour2
	b.neighbour1, b.neighbour2 = nil, nil
	if rebuild {
		return NewOpenBorder().Build(n1, dir, n2)
	}
	return nil
}

// CanSplit reports whether b is installed and one of its neighbours is disconnecting.
func (b *Border) CanSplit() bool {
	if b.state != Initialised {
		return false
	}
	return b.neighbour1.disconnecting || (b.neighbour2 != nil && b.neighbour2.disconnecting)
}

// Split terminates b and gives each former neighbour its own uninitialised copy of it.
func (b *Border) Split() error {
	if !b.CanSplit() {
		return ErrCannotSplit
	}
	n1, dir1, n2 := b.neighbour1, b.neighbour1Dir, b.neighbour2

	b.state = Terminated
	b.neighbour1, b.neighbour2 = nil, nil

	if err := b.UninitialisedCopy().Build(n1, dir1, nil); err != nil {
		return err
	}
	if n2 != nil {
		return b.UninitialisedCopy().Build(n2, dir1.Opposite(), nil)
	}
	return nil
}

// UninitialisedCopy returns a neighbourless border of the same kind and properties.
func (b *Border) UninitialisedCopy() *Border {
	if b.kind == KindWall {
		return NewWall(b.door, b.slippery)
	}
	return NewOpenBorder()
}

// IsUninitialisedCopyOf reports whether b is an uninitialised copy of original.
func (b *Border) IsUninitialisedCopyOf(original *Border) bool {
	if original == nil || original == b || b.state != Uninitialised {
		return false
	}
	return b.kind == original.kind && b.door == original.door && b.slippery == original.slippery
}

// Dominant returns the stricter of b and other: walls beat open borders, a doorless wall
// beats a door wall and a slippery wall beats a dry one. Between equals, b wins for open
// borders and doorless walls and other wins for door walls.
func (b *Border) Dominant(other *Border) *Border {
	if other == nil {
		return b
	}
	switch {
	case b.kind == KindOpen && other.kind == KindOpen:
		return b
	case b.kind == KindOpen:
		return other
	case other.kind == KindOpen:
		return b
	case b.door != other.door:
		if b.door {
			return other
		}
		return b
	case b.slippery != other.slippery:
		if b.slippery {
			return b
		}
		return other
	case b.door:
		return other
	default:
		return b
	}
}

// OpenDoor opens the door of b. Opening an installed door merges the spaces on both sides,
// and fails without change if the merged temperature would leave any square's bounds.
func (b *Border) OpenDoor() error {
	if !b.HasDoor() || !b.isolating {
		return nil
	}
	if b.state == Initialised {
		b.isolating = false
		if _, err := planMerge(b.neighbour1.SquaresInSpace()); err != nil {
			b.isolating = true
			return err
		}
		return b.neighbour1.Merge()
	}
	b.isolating = false
	return nil
}

// CloseDoor closes the door of b.
func (b *Border) CloseDoor() {
	if b.HasDoor() {
		b.isolating = true
	}
}

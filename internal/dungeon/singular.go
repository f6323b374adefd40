package dungeon

import (
	"iter"
	"maps"

	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/world"
)

// Singular is a leaf dungeon that holds squares directly by position.
// Constraints supplied at construction restrict its bounds and the squares it accepts.
type Singular struct {
	base
	squares     map[spatial.Position]*world.Square
	constraints []Constraint
}

// NewSingular creates an empty singular dungeon bounded by max.
func NewSingular(max spatial.Position, constraints ...Constraint) (*Singular, error) {
	for _, c := range constraints {
		if !c.AllowsMaximum(max) {
			return nil, ErrInvalidMaximum
		}
	}
	s := &Singular{
		squares:     make(map[spatial.Position]*world.Square),
		constraints: constraints,
	}
	s.base = base{self: s, maximum: max}
	return s, nil
}

// NewLevel creates a flat singular dungeon of maxX by maxY at z = 0.
func NewLevel(maxX, maxY uint64) *Singular {
	s, _ := NewSingular(spatial.At(maxX, maxY, 0), LevelConstraint{})
	return s
}

// NewShaft creates a singular dungeon of size squares beyond the origin along dir, which must
// be north, east or ceiling.
func NewShaft(dir spatial.Direction, size uint64) (*Singular, error) {
	if dir.Sign() <= 0 {
		return nil, ErrInvalidShaft
	}
	max, err := dir.Axis().Mul(size)
	if err != nil {
		return nil, err
	}
	return NewSingular(max, ShaftConstraint{Direction: dir})
}

// Constraints returns the constraints of the dungeon.
func (s *Singular) Constraints() []Constraint {
	return append([]Constraint(nil), s.constraints...)
}

// IsLevel reports whether the dungeon is a level.
func (s *Singular) IsLevel() bool {
	for _, c := range s.constraints {
		if _, ok := c.(LevelConstraint); ok {
			return true
		}
	}
	return false
}

// ShaftDirection returns the direction of a shaft.
func (s *Singular) ShaftDirection() (spatial.Direction, bool) {
	for _, c := range s.constraints {
		if sc, ok := c.(ShaftConstraint); ok {
			return sc.Direction, true
		}
	}
	return 0, false
}

// HasInternalDoors reports whether two squares of a shaft face each other through a door.
func (s *Singular) HasInternalDoors() bool {
	dir, ok := s.ShaftDirection()
	if !ok || s.terminated {
		return false
	}
	for _, sq := range s.squares {
		if !sq.BorderAt(dir).HasDoor() {
			continue
		}
		if n := sq.Neighbour(dir); n != nil && s.holds(n) {
			return true
		}
	}
	return false
}

// CanHaveAsMaximumPosition adds the constraints of the dungeon to the common bound rules.
func (s *Singular) CanHaveAsMaximumPosition(max spatial.Position) bool {
	if !s.base.CanHaveAsMaximumPosition(max) {
		return false
	}
	for _, c := range s.constraints {
		if !c.AllowsMaximum(max) {
			return false
		}
	}
	return true
}

func (s *Singular) putSquareAt(pos spatial.Position, sq *world.Square) error {
	if s.terminated {
		return ErrTerminated
	}
	if sq == nil {
		return world.ErrNilSquare
	}
	s.squares[pos] = sq
	return nil
}

func (s *Singular) leafAt(pos spatial.Position) (*Singular, spatial.Position, bool) {
	if s.terminated || pos.Exceeds(s.maximum) {
		return nil, spatial.Position{}, false
	}
	return s, pos, true
}

// HasSquareAt reports whether a square occupies pos.
func (s *Singular) HasSquareAt(pos spatial.Position) bool {
	if s.terminated {
		return false
	}
	_, ok := s.squares[pos]
	return ok
}

// SquareAt returns the square at pos.
func (s *Singular) SquareAt(pos spatial.Position) (*world.Square, error) {
	if s.terminated {
		return nil, ErrTerminated
	}
	sq, ok := s.squares[pos]
	if !ok {
		return nil, ErrNoSquare
	}
	return sq, nil
}

// RemoveSquareAt disconnects the square at pos and removes it.
func (s *Singular) RemoveSquareAt(pos spatial.Position) error {
	sq, err := s.SquareAt(pos)
	if err != nil {
		return err
	}
	if err := sq.Disconnect(); err != nil {
		return err
	}
	delete(s.squares, pos)
	return nil
}

// NumSquares returns the number of squares held.
func (s *Singular) NumSquares() int {
	return len(s.squares)
}

// Squares returns a copy of the squares keyed by local position.
func (s *Singular) Squares() map[spatial.Position]*world.Square {
	if s.terminated {
		return nil
	}
	return maps.Clone(s.squares)
}

// Iterate yields the squares accepted by pred, ordered by position. A nil pred accepts all.
func (s *Singular) Iterate(pred Predicate) iter.Seq[*world.Square] {
	return func(yield func(*world.Square) bool) {
		if s.terminated {
			return
		}
		for _, pos := range sortedPositions(s.squares) {
			sq := s.squares[pos]
			if pred != nil && !pred(sq, s) {
				continue
			}
			if !yield(sq) {
				return
			}
		}
	}
}

// Terminate removes every square and detaches the dungeon from its parent.
func (s *Singular) Terminate() error {
	if s.terminated {
		return ErrTerminated
	}
	for _, pos := range sortedPositions(s.squares) {
		if err := s.RemoveSquareAt(pos); err != nil {
			return err
		}
	}
	if err := s.detach(); err != nil {
		return err
	}
	s.squares = nil
	return nil
}

// Package entity provides the things that move through a dungeon.
package entity

import (
	"math/rand"

	"github.com/samdwyer/dungeoncore/internal/dungeon"
	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/world"
)

var (
	// ErrBlocked is returned when the explorer cannot step in a direction.
	ErrBlocked = apperrors.New(apperrors.CodeIllegalState, "the way is blocked")
	// ErrNoTeleport is returned when teleporting from a square without targets.
	ErrNoTeleport = apperrors.New(apperrors.CodeIllegalState, "square does not teleport")
)

// Explorer is a cursor that walks a dungeon along open borders and through teleporters.
// Positions are those of the root dungeon.
type Explorer struct {
	Position spatial.Position
	Symbol   rune

	dungeon dungeon.Dungeon
	rng     *rand.Rand
	steps   int
}

// NewExplorer places an explorer on the square at pos. The dungeon is resolved to its root.
func NewExplorer(d dungeon.Dungeon, pos spatial.Position, rng *rand.Rand) (*Explorer, error) {
	if d == nil || rng == nil {
		return nil, apperrors.ErrNilArgument
	}
	root := d.Root()
	sq, err := root.SquareAt(pos)
	if err != nil {
		return nil, err
	}
	if !sq.CanEnter() {
		return nil, apperrors.WithMetadata(apperrors.CodeIllegalState, ErrBlocked.Message,
			map[string]string{"position": pos.String()})
	}
	return &Explorer{Position: pos, Symbol: '@', dungeon: root, rng: rng}, nil
}

// Square returns the square the explorer stands on.
func (e *Explorer) Square() *world.Square {
	sq, err := e.dungeon.SquareAt(e.Position)
	if err != nil {
		return nil
	}
	return sq
}

// Steps returns the number of successful moves and teleports.
func (e *Explorer) Steps() int { return e.steps }

// CanMove reports whether the neighbour in direction d can be entered from the current
// square through a non-isolating border.
func (e *Explorer) CanMove(d spatial.Direction) bool {
	here := e.Square()
	if here == nil {
		return false
	}
	next := here.Neighbour(d)
	return next != nil && next.CanEnter() && !here.BorderAt(d).IsIsolating()
}

// Move steps one square in direction d.
func (e *Explorer) Move(d spatial.Direction) error {
	if !e.CanMove(d) {
		return apperrors.WithMetadata(apperrors.CodeIllegalState, ErrBlocked.Message,
			map[string]string{"position": e.Position.String(), "direction": d.String()})
	}
	next, _ := e.Position.Adjacent(d)
	e.Position = next
	e.steps++
	return nil
}

// Teleport jumps to a randomly chosen target of the current square.
func (e *Explorer) Teleport() error {
	here := e.Square()
	if here == nil {
		return ErrNoTeleport
	}
	target, ok := here.NextTeleportTarget(e.rng)
	if !ok {
		return ErrNoTeleport
	}
	for pos, sq := range e.dungeon.Squares() {
		if sq == target {
			e.Position = pos
			e.steps++
			return nil
		}
	}
	return apperrors.WithMetadata(apperrors.CodeNotFound, "teleport target is not in the dungeon",
		map[string]string{"square": target.ID().String()})
}

// CanReach reports whether the square at pos can be navigated to from the current square.
func (e *Explorer) CanReach(pos spatial.Position) bool {
	here := e.Square()
	there, err := e.dungeon.SquareAt(pos)
	return here != nil && err == nil && here.CanNavigateTo(there)
}

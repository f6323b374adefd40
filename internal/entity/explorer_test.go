package entity

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/samdwyer/dungeoncore/internal/dungeon"
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/world"
)

func place(t *testing.T, d dungeon.Dungeon, pos spatial.Position, opts ...world.Option) *world.Square {
	t.Helper()
	sq, err := world.NewSquare(opts...)
	if err != nil {
		t.Fatalf("NewSquare: %v", err)
	}
	if err := d.SetSquareAt(pos, sq); err != nil {
		t.Fatalf("SetSquareAt(%v): %v", pos, err)
	}
	return sq
}

// corridor builds (1,0,0)-(2,0,0) joined by an open border, a walled-off (3,0,0), a rock at
// (5,0,0) and a teleporter at (1,1,0) leading to (3,0,0).
func corridor(t *testing.T) dungeon.Dungeon {
	t.Helper()
	d, err := dungeon.NewSingular(dungeon.DefaultMaximum)
	if err != nil {
		t.Fatalf("NewSingular: %v", err)
	}
	place(t, d, spatial.At(1, 0, 0))
	place(t, d, spatial.At(2, 0, 0))
	walled := place(t, d, spatial.At(3, 0, 0), world.WithWalls(spatial.Floor, spatial.West))
	place(t, d, spatial.At(5, 0, 0), world.Rock())
	place(t, d, spatial.At(1, 1, 0), world.WithTeleportTargets(walled))
	return d
}

func TestExplorerMoves(t *testing.T) {
	e, err := NewExplorer(corridor(t), spatial.At(1, 0, 0), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewExplorer: %v", err)
	}
	if e.Symbol != '@' {
		t.Errorf("Symbol = %q, want '@'", e.Symbol)
	}

	steps := []struct {
		dir  spatial.Direction
		ok   bool
		want spatial.Position
	}{
		{spatial.East, true, spatial.At(2, 0, 0)},
		{spatial.East, false, spatial.At(2, 0, 0)},
		{spatial.North, false, spatial.At(2, 0, 0)},
		{spatial.West, true, spatial.At(1, 0, 0)},
		{spatial.North, true, spatial.At(1, 1, 0)},
		{spatial.Ceiling, false, spatial.At(1, 1, 0)},
	}
	for _, s := range steps {
		err := e.Move(s.dir)
		if s.ok && err != nil {
			t.Fatalf("Move(%v) from %v: %v", s.dir, e.Position, err)
		}
		if !s.ok && !errors.Is(err, ErrBlocked) {
			t.Fatalf("Move(%v) = %v, want ErrBlocked", s.dir, err)
		}
		if e.Position != s.want {
			t.Fatalf("after Move(%v) at %v, want %v", s.dir, e.Position, s.want)
		}
	}
	if e.Steps() != 3 {
		t.Errorf("Steps = %d, want 3", e.Steps())
	}
}

func TestExplorerTeleports(t *testing.T) {
	d := corridor(t)
	e, err := NewExplorer(d, spatial.At(1, 1, 0), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewExplorer: %v", err)
	}
	if !e.CanReach(spatial.At(3, 0, 0)) {
		t.Fatal("the walled square is reachable through the teleporter")
	}
	if err := e.Teleport(); err != nil {
		t.Fatalf("Teleport: %v", err)
	}
	if e.Position != spatial.At(3, 0, 0) {
		t.Fatalf("teleported to %v", e.Position)
	}
	if e.CanReach(spatial.At(1, 0, 0)) {
		t.Error("no way back out of the walled square")
	}
	if err := e.Teleport(); !errors.Is(err, ErrNoTeleport) {
		t.Errorf("Teleport from a plain square = %v, want ErrNoTeleport", err)
	}
}

func TestNewExplorerRejects(t *testing.T) {
	d := corridor(t)
	rng := rand.New(rand.NewSource(1))
	if _, err := NewExplorer(d, spatial.At(9, 0, 0), rng); !errors.Is(err, dungeon.ErrNoSquare) {
		t.Errorf("empty position: %v", err)
	}
	if _, err := NewExplorer(d, spatial.At(5, 0, 0), rng); !errors.Is(err, ErrBlocked) {
		t.Errorf("rock: %v", err)
	}
	if _, err := NewExplorer(nil, spatial.At(1, 0, 0), rng); err == nil {
		t.Error("expected an error for a nil dungeon")
	}
}

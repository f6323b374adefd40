package blueprint

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/dungeoncore/internal/dungeon"
	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/telemetry"
	"github.com/samdwyer/dungeoncore/internal/temperature"
	"github.com/samdwyer/dungeoncore/internal/world"
)

// Build materialises bp into a root dungeon. Squares are placed in blueprint order and each
// placement is checked with CanSetSquareAt first. A nil logger discards the summary line.
func Build(ctx context.Context, bp *Blueprint, logger *log.Logger) (dungeon.Dungeon, error) {
	if bp == nil {
		return nil, apperrors.ErrNilArgument
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	tracer := telemetry.Tracer("blueprint")
	ctx, span := tracer.Start(ctx, "blueprint.build")
	defer span.End()
	span.SetAttributes(attribute.String("blueprint.name", bp.Name))

	root, err := bp.Root.build()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build dungeon tree")
		return nil, fmt.Errorf("blueprint %s: %w", bp.Name, err)
	}

	for i, spec := range bp.Squares {
		positions, err := spec.Positions()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "square positions")
			return nil, fmt.Errorf("blueprint %s: square %d: %w", bp.Name, i, err)
		}
		for _, pos := range positions {
			if err := Place(ctx, root, pos, spec); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "place square")
				return nil, fmt.Errorf("blueprint %s: square %d: %w", bp.Name, i, err)
			}
		}
	}

	span.SetAttributes(
		attribute.Int("dungeon.squares", root.NumSquares()),
		attribute.String("dungeon.maximum", root.MaximumPosition().String()),
	)
	logger.Printf("built blueprint %s: %d squares within %v", bp.Name, root.NumSquares(), root.MaximumPosition())
	return root, nil
}

// Place creates the square described by spec and sets it at pos in d.
func Place(ctx context.Context, d dungeon.Dungeon, pos spatial.Position, spec SquareSpec) error {
	_, span := telemetry.Tracer("dungeon").Start(ctx, "dungeon.place")
	defer span.End()
	span.SetAttributes(
		attribute.String("position", pos.String()),
		attribute.String("kind", spec.kindOrDefault()),
	)

	sq, err := spec.Square(d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create square")
		return err
	}
	span.SetAttributes(attribute.String("square.id", sq.ID().String()))

	if d.HasSquareAt(pos) {
		err := apperrors.WithMetadata(apperrors.CodeIllegalArgument, dungeon.ErrOccupied.Message,
			map[string]string{"position": pos.String()})
		span.RecordError(err)
		span.SetStatus(codes.Error, "position occupied")
		return err
	}
	if !d.CanSetSquareAt(pos, sq) {
		err := apperrors.WithMetadata(apperrors.CodeStructuralViolation, dungeon.ErrCannotPlace.Message,
			map[string]string{"position": pos.String(), "square": sq.ID().String()})
		span.RecordError(err)
		span.SetStatus(codes.Error, "square rejected")
		return err
	}
	if err := d.SetSquareAt(pos, sq); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "set square")
		return err
	}
	return nil
}

// Square creates the square described by s. Teleport targets are looked up in d.
func (s SquareSpec) Square(d dungeon.Dungeon) (*world.Square, error) {
	var opts []world.Option

	switch s.kindOrDefault() {
	case "plain":
	case "transparent":
		opts = append(opts, world.Transparent())
	case "rock":
		opts = append(opts, world.Rock())
	default:
		return nil, fmt.Errorf("%w: unknown square kind %q", ErrInvalid, s.Kind)
	}

	if len(s.Walls) > 0 {
		walls := make([]spatial.Direction, 0, len(s.Walls))
		for _, name := range s.Walls {
			dir, ok := spatial.ParseDirection(strings.ToLower(name))
			if !ok {
				return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalid, name)
			}
			walls = append(walls, dir)
		}
		opts = append(opts, world.WithWalls(walls...))
	}

	if s.Temperature != nil {
		unit, err := parseUnit(s.Unit)
		if err != nil {
			return nil, err
		}
		t, err := temperature.New(*s.Temperature, unit)
		if err != nil {
			return nil, err
		}
		opts = append(opts, world.WithTemperature(t))
	}
	if s.Humidity != nil {
		h, err := world.HumidityFromPercent(*s.Humidity)
		if err != nil {
			return nil, err
		}
		opts = append(opts, world.WithHumidity(h))
	}
	if s.Slippery {
		opts = append(opts, world.WithSlipperyMaterial(true))
	}

	if len(s.Targets) > 0 {
		targets := make([]*world.Square, 0, len(s.Targets))
		for _, c := range s.Targets {
			p, err := c.Position()
			if err != nil {
				return nil, err
			}
			t, err := d.SquareAt(p)
			if err != nil {
				return nil, fmt.Errorf("teleport target %v: %w", p, err)
			}
			targets = append(targets, t)
		}
		opts = append(opts, world.WithTeleportTargets(targets...))
	}

	return world.NewSquare(opts...)
}

func (s SquareSpec) kindOrDefault() string {
	if s.Kind == "" {
		return "plain"
	}
	return strings.ToLower(s.Kind)
}

func parseUnit(name string) (temperature.Unit, error) {
	switch strings.ToLower(name) {
	case "", "c", "celsius":
		return temperature.Celsius, nil
	case "f", "fahrenheit":
		return temperature.Fahrenheit, nil
	case "k", "kelvin":
		return temperature.Kelvin, nil
	default:
		return 0, fmt.Errorf("%w: unknown temperature unit %q", ErrInvalid, name)
	}
}

func (n Node) build() (dungeon.Dungeon, error) {
	max, err := n.Max.Position()
	if err != nil {
		return nil, err
	}
	if len(n.Max) == 0 {
		max = dungeon.DefaultMaximum
	}

	switch strings.ToLower(n.Kind) {
	case "composite":
		c := dungeon.NewComposite(max)
		for i, child := range n.Children {
			d, err := child.build()
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			off, err := child.Offset.Position()
			if err != nil {
				return nil, err
			}
			if err := c.SetSubDungeonAt(off, d); err != nil {
				return nil, fmt.Errorf("child %d at %v: %w", i, off, err)
			}
		}
		return c, nil
	case "singular", "":
		if len(n.Children) > 0 {
			return nil, fmt.Errorf("%w: only composites have children", ErrInvalid)
		}
		return dungeon.NewSingular(max)
	case "level":
		if max.Z != 0 {
			return nil, fmt.Errorf("%w: a level is flat", dungeon.ErrInvalidMaximum)
		}
		return dungeon.NewLevel(max.X, max.Y), nil
	case "shaft":
		dir, ok := spatial.ParseDirection(strings.ToLower(n.Direction))
		if !ok {
			return nil, fmt.Errorf("%w: unknown shaft direction %q", ErrInvalid, n.Direction)
		}
		return dungeon.NewShaft(dir, n.Size)
	default:
		return nil, fmt.Errorf("%w: unknown dungeon kind %q", ErrInvalid, n.Kind)
	}
}

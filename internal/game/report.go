package game

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/dungeoncore/internal/blueprint"
	"github.com/samdwyer/dungeoncore/internal/dungeon"
	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/telemetry"
)

// Report writes, for the square at spec.From, whether it can navigate to every square of the
// z slice spec.Z. When spec.Replace is set the start square is then removed, replaced and
// the slice is reported again.
func Report(ctx context.Context, w io.Writer, d dungeon.Dungeon, spec *blueprint.ReportSpec) error {
	if d == nil || spec == nil {
		return apperrors.ErrNilArgument
	}
	from, err := spec.From.Position()
	if err != nil {
		return err
	}
	root := d.Root()

	ctx, span := telemetry.Tracer("game").Start(ctx, "game.report")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.from", from.String()),
		attribute.Int64("report.z", int64(spec.Z)),
	)

	if err := reportSlice(w, "initial layout", root, from, spec.Z); err != nil {
		return err
	}
	if spec.Replace == nil {
		return nil
	}

	if err := root.RemoveSquareAt(from); err != nil {
		return fmt.Errorf("remove square at %v: %w", from, err)
	}
	if err := blueprint.Place(ctx, root, from, *spec.Replace); err != nil {
		return fmt.Errorf("replace square at %v: %w", from, err)
	}
	return reportSlice(w, fmt.Sprintf("after replacing %v", from), root, from, spec.Z)
}

func reportSlice(w io.Writer, title string, d dungeon.Dungeon, from spatial.Position, z uint64) error {
	start, err := d.SquareAt(from)
	if err != nil {
		return fmt.Errorf("start square %v: %w", from, err)
	}
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "\tcanNavigateTo from square at %v (%s)\n", from, start.ID())

	max := d.MaximumPosition()
	for y := uint64(0); y <= max.Y; y++ {
		for x := uint64(0); x <= max.X; x++ {
			pos := spatial.At(x, y, z)
			sq, err := d.SquareAt(pos)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "\t\tto square at %v: %t\n", pos, start.CanNavigateTo(sq)); err != nil {
				return err
			}
		}
	}
	return nil
}

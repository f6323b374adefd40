package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeoncore/internal/dungeon"
	"github.com/samdwyer/dungeoncore/internal/entity"
	"github.com/samdwyer/dungeoncore/internal/spatial"
)

// Cell is one character of a rendered slice.
type Cell struct {
	X, Y  int
	Rune  rune
	Style tcell.Style
}

// Slice lays out the squares of d at height z. Each square takes every second column and row
// with its east and north borders drawn in between; north is up.
func Slice(d dungeon.Dungeon, z uint64) []Cell {
	max := d.MaximumPosition()
	if z > max.Z {
		return nil
	}
	var cells []Cell
	for y := uint64(0); y <= max.Y; y++ {
		for x := uint64(0); x <= max.X; x++ {
			sq, err := d.SquareAt(spatial.At(x, y, z))
			if err != nil {
				continue
			}
			col, row := int(2*x), int(2*(max.Y-y))
			cells = append(cells, Cell{X: col, Y: row, Rune: SquareGlyph(sq).Rune(), Style: squareStyle(sq)})

			wall := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
			if g := BorderGlyph(sq.BorderAt(spatial.East), true); g != GlyphEmpty {
				cells = append(cells, Cell{X: col + 1, Y: row, Rune: g.Rune(), Style: wall})
			}
			if g := BorderGlyph(sq.BorderAt(spatial.North), false); g != GlyphEmpty && row > 0 {
				cells = append(cells, Cell{X: col, Y: row - 1, Rune: g.Rune(), Style: wall})
			}
		}
	}
	return cells
}

// ScreenPosition returns where the square at pos is drawn by Slice.
func ScreenPosition(d dungeon.Dungeon, pos spatial.Position) (int, int) {
	max := d.MaximumPosition()
	return int(2 * pos.X), int(2 * (max.Y - pos.Y))
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws the slice of d the explorer stands in, the explorer on top, and a status line.
func (r *Renderer) Render(d dungeon.Dungeon, e *entity.Explorer, status string) {
	r.screen.Clear()

	for _, c := range Slice(d, e.Position.Z) {
		r.screen.SetContent(c.X, c.Y, c.Rune, c.Style)
	}

	x, y := ScreenPosition(d, e.Position)
	explorerStyle := tcell.StyleDefault.
		Foreground(tcell.ColorYellow).
		Bold(true)
	r.screen.SetContent(x, y, e.Symbol, explorerStyle)

	_, height := r.screen.Size()
	r.RenderMessage(status, height-1)

	r.screen.Show()
}

// RenderMessage displays a message at the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, ch := range []rune(msg) {
		r.screen.SetContent(i, y, ch, style)
	}
}

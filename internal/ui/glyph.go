package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeoncore/internal/world"
)

// Glyph is the display character of a square or border.
type Glyph rune

const (
	GlyphEmpty       Glyph = ' '
	GlyphFloor       Glyph = '.'
	GlyphRock        Glyph = '#'
	GlyphTransparent Glyph = ':'
	GlyphTeleport    Glyph = '*'
	GlyphSlippery    Glyph = '~'

	GlyphWallNS   Glyph = '|'
	GlyphWallEW   Glyph = '-'
	GlyphDoor     Glyph = '+'
	GlyphOpenDoor Glyph = '/'
)

// Rune returns the glyph's display character.
func (g Glyph) Rune() rune {
	return rune(g)
}

// SquareGlyph returns the glyph for sq, or GlyphEmpty for nil.
func SquareGlyph(sq *world.Square) Glyph {
	switch {
	case sq == nil:
		return GlyphEmpty
	case sq.Kind() == world.RockSquare:
		return GlyphRock
	case sq.IsTeleporting():
		return GlyphTeleport
	case sq.IsSlippery():
		return GlyphSlippery
	case sq.Kind() == world.TransparentSquare:
		return GlyphTransparent
	default:
		return GlyphFloor
	}
}

// BorderGlyph returns the glyph for b. Vertical selects the character for a border between
// squares side by side on a row.
func BorderGlyph(b *world.Border, vertical bool) Glyph {
	switch {
	case b == nil || !b.IsWall():
		return GlyphEmpty
	case b.IsDoorOpen():
		return GlyphOpenDoor
	case b.HasDoor():
		return GlyphDoor
	case vertical:
		return GlyphWallNS
	default:
		return GlyphWallEW
	}
}

// squareStyle colours a square by its temperature.
func squareStyle(sq *world.Square) tcell.Style {
	if sq == nil {
		return tcell.StyleDefault
	}
	c := sq.Temperature().Celsius()
	switch {
	case sq.Kind() == world.RockSquare:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case c < 0:
		return tcell.StyleDefault.Foreground(tcell.ColorLightBlue)
	case c > 35:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	}
}

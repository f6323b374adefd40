package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/dungeoncore/internal/dungeon"
	"github.com/samdwyer/dungeoncore/internal/entity"
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/telemetry"
	"github.com/samdwyer/dungeoncore/internal/ui"
	"github.com/samdwyer/dungeoncore/internal/world"
)

const helpLine = "arrows move | u/d climb | t teleport | o doors | i inspect | q quit"

// Game holds the viewer state.
type Game struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	dungeon  dungeon.Dungeon
	explorer *entity.Explorer
	physics  world.Physics
	state    State
	running  bool
	message  string
}

// New creates a viewer on the terminal for the root of d.
func New(d dungeon.Dungeon, cfg Config) (*Game, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}
	g, err := NewWithScreen(screen, d, cfg)
	if err != nil {
		screen.Close()
		return nil, err
	}
	return g, nil
}

// NewWithScreen creates a viewer drawing on screen.
func NewWithScreen(screen *ui.Screen, d dungeon.Dungeon, cfg Config) (*Game, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	start := spatial.At(cfg.Start[0], cfg.Start[1], cfg.Start[2])
	explorer, err := entity.NewExplorer(d, start, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, fmt.Errorf("place explorer at %v: %w", start, err)
	}
	return &Game{
		screen:   screen,
		renderer: ui.NewRenderer(screen),
		dungeon:  d.Root(),
		explorer: explorer,
		physics:  world.DefaultPhysics(),
		state:    StateExplore,
		running:  true,
		message:  helpLine,
	}, nil
}

// Run executes the viewer loop until the user quits.
func (g *Game) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("game")
	ctx, initSpan := tracer.Start(ctx, "game.init")
	initSpan.SetAttributes(
		attribute.Int("dungeon.squares", g.dungeon.NumSquares()),
		attribute.String("explorer.start", g.explorer.Position.String()),
	)
	initSpan.End()

	for g.running {
		g.renderer.Render(g.dungeon, g.explorer, g.status())
		g.handleInput(ctx)
	}

	g.screen.Close()
	return nil
}

// status returns the bottom line for the current state.
func (g *Game) status() string {
	sq := g.explorer.Square()
	if sq == nil {
		return g.message
	}
	if g.state == StateInspect {
		return fmt.Sprintf("%s %s %v %v slippery=%t cold=%d heat=%d rust=%d inhabitability=%.2f",
			sq.Kind(), sq.ID(), sq.Temperature(), sq.Humidity(), sq.IsSlippery(),
			g.physics.ColdDamage(sq), g.physics.HeatDamage(sq), g.physics.RustDamage(sq),
			g.physics.Inhabitability(sq))
	}
	return fmt.Sprintf("%v %v %v | %s", g.explorer.Position, sq.Temperature(), sq.Humidity(), g.message)
}

// handleInput processes a single input event.
func (g *Game) handleInput(ctx context.Context) {
	ev := g.screen.PollEvent()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	case nil:
		// the screen was finalized
		g.running = false
	}
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false

	case tcell.KeyUp:
		g.tryMove(ctx, spatial.North)
	case tcell.KeyDown:
		g.tryMove(ctx, spatial.South)
	case tcell.KeyLeft:
		g.tryMove(ctx, spatial.West)
	case tcell.KeyRight:
		g.tryMove(ctx, spatial.East)

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			g.running = false
		case 'u':
			g.tryMove(ctx, spatial.Ceiling)
		case 'd':
			g.tryMove(ctx, spatial.Floor)
		case 't':
			g.tryTeleport(ctx)
		case 'o':
			g.toggleDoors()
		case 'i':
			if g.state == StateInspect {
				g.state = StateExplore
			} else {
				g.state = StateInspect
			}
		}
	}
}

// tryMove attempts to move the explorer one square in direction d.
func (g *Game) tryMove(ctx context.Context, d spatial.Direction) {
	_, span := telemetry.Tracer("game").Start(ctx, "explorer.move")
	defer span.End()
	span.SetAttributes(attribute.String("direction", d.String()))

	if err := g.explorer.Move(d); err != nil {
		span.SetAttributes(attribute.Bool("blocked", true))
		g.message = fmt.Sprintf("blocked to the %v", d)
		return
	}
	g.message = helpLine
}

func (g *Game) tryTeleport(ctx context.Context) {
	_, span := telemetry.Tracer("game").Start(ctx, "explorer.teleport")
	defer span.End()

	from := g.explorer.Position
	if err := g.explorer.Teleport(); err != nil {
		g.message = "nothing to teleport to here"
		return
	}
	span.SetAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", g.explorer.Position.String()),
	)
	g.message = fmt.Sprintf("teleported from %v", from)
}

// toggleDoors opens every closed door of the current square, or closes them all when none is
// closed.
func (g *Game) toggleDoors() {
	sq := g.explorer.Square()
	if sq == nil {
		return
	}
	var doors []*world.Border
	closed := false
	for _, b := range sq.Borders() {
		if b.HasDoor() {
			doors = append(doors, b)
			closed = closed || !b.IsDoorOpen()
		}
	}
	if len(doors) == 0 {
		g.message = "no doors here"
		return
	}
	for _, b := range doors {
		if !closed {
			b.CloseDoor()
			continue
		}
		if err := b.OpenDoor(); err != nil {
			g.message = fmt.Sprintf("door stuck: %v", err)
			return
		}
	}
	if closed {
		g.message = "doors opened"
	} else {
		g.message = "doors closed"
	}
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
	}
}

// Package main is the entry point for dungeoncore.
package main

import (
	"cmp"
	"context"
	"log"
	"maps"
	"os"
	"slices"

	"github.com/joho/godotenv"

	"github.com/samdwyer/dungeoncore/internal/blueprint"
	"github.com/samdwyer/dungeoncore/internal/config"
	"github.com/samdwyer/dungeoncore/internal/dungeon"
	"github.com/samdwyer/dungeoncore/internal/game"
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/telemetry"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	shutdown, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled: cfg.TelemetryEnabled,
		APIKey:  cfg.HoneycombAPIKey,
		Dataset: cfg.HoneycombDataset,
	})
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Running without observability")
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	bp, err := loadBlueprint(cfg)
	if err != nil {
		log.Fatalf("Failed to load blueprint: %v", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	d, err := blueprint.Build(ctx, bp, logger)
	if err != nil {
		log.Fatalf("Failed to build dungeon: %v", err)
	}

	switch cfg.Mode {
	case config.ModeReport:
		if bp.Report == nil {
			log.Fatalf("Blueprint %s has no report section", bp.Name)
		}
		if err := game.Report(ctx, os.Stdout, d, bp.Report); err != nil {
			log.Fatalf("Report error: %v", err)
		}
	default:
		g, err := game.New(d, game.Config{Seed: cfg.Seed, Start: startOf(bp, d, cfg.Level)})
		if err != nil {
			log.Fatalf("Failed to initialize viewer: %v", err)
		}
		if err := g.Run(ctx); err != nil {
			log.Fatalf("Viewer error: %v", err)
		}
	}
}

func loadBlueprint(cfg config.Config) (*blueprint.Blueprint, error) {
	if cfg.BlueprintFile != "" {
		return blueprint.LoadFile(cfg.BlueprintFile)
	}
	return blueprint.Load(cfg.Blueprint)
}

// startOf picks the report's start square when it is on slice z, and otherwise the first
// enterable square of that slice.
func startOf(bp *blueprint.Blueprint, d dungeon.Dungeon, z uint64) [3]uint64 {
	if bp.Report != nil {
		if p, err := bp.Report.From.Position(); err == nil && p.Z == z && d.HasSquareAt(p) {
			return [3]uint64{p.X, p.Y, p.Z}
		}
	}
	squares := d.Squares()
	positions := slices.SortedFunc(maps.Keys(squares), func(a, b spatial.Position) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	for _, p := range positions {
		if p.Z == z && squares[p].CanEnter() {
			return [3]uint64{p.X, p.Y, p.Z}
		}
	}
	return [3]uint64{0, 0, z}
}

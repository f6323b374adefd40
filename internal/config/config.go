// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
)

// Mode selects what the program does once the dungeon is built.
type Mode string

const (
	// ModeView opens the terminal viewer.
	ModeView Mode = "view"
	// ModeReport prints the navigation report and exits.
	ModeReport Mode = "report"
)

// Config holds the runtime options.
type Config struct {
	// Blueprint names an embedded blueprint.
	Blueprint string `env:"DUNGEON_BLUEPRINT" envDefault:"demo"`
	// BlueprintFile, when set, is read instead of the embedded blueprint.
	BlueprintFile string `env:"DUNGEON_BLUEPRINT_FILE"`
	Mode          Mode   `env:"DUNGEON_MODE" envDefault:"view"`
	// Level is the z coordinate of the slice shown by the viewer.
	Level uint64 `env:"DUNGEON_VIEW_Z" envDefault:"0"`
	// Seed for teleport target selection. A seed of 0 means a random seed will be generated.
	Seed int64 `env:"DUNGEON_SEED" envDefault:"0"`

	TelemetryEnabled bool   `env:"DUNGEON_TELEMETRY" envDefault:"false"`
	HoneycombAPIKey  string `env:"HONEYCOMB_DUNGEONBAND_API_KEY"`
	HoneycombDataset string `env:"HONEYCOMB_DUNGEONBAND_DATASET" envDefault:"dungeoncore"`
}

// Load parses the configuration from environment variables and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values env cannot check on its own.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeView, ModeReport:
	default:
		return apperrors.WithMetadata(apperrors.CodeOutOfRange, "unknown mode",
			map[string]string{"mode": string(c.Mode)})
	}
	if c.Blueprint == "" && c.BlueprintFile == "" {
		return apperrors.New(apperrors.CodeNilArgument, "no blueprint configured")
	}
	return nil
}

package config

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Blueprint != "demo" || cfg.Mode != ModeView || cfg.Level != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TelemetryEnabled {
		t.Fatal("telemetry must be opt-in")
	}
	if cfg.HoneycombDataset != "dungeoncore" {
		t.Fatalf("expected default dataset dungeoncore, got %q", cfg.HoneycombDataset)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DUNGEON_MODE", "report")
	t.Setenv("DUNGEON_VIEW_Z", "2")
	t.Setenv("DUNGEON_SEED", "42")
	t.Setenv("DUNGEON_TELEMETRY", "true")
	t.Setenv("DUNGEON_BLUEPRINT_FILE", "/tmp/castle.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeReport || cfg.Level != 2 || cfg.Seed != 42 || !cfg.TelemetryEnabled {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.BlueprintFile != "/tmp/castle.yaml" {
		t.Fatalf("unexpected blueprint file %q", cfg.BlueprintFile)
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("DUNGEON_VIEW_Z", "below")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"view", Config{Mode: ModeView, Blueprint: "demo"}, nil},
		{"report from file", Config{Mode: ModeReport, BlueprintFile: "x.json"}, nil},
		{"unknown mode", Config{Mode: "edit", Blueprint: "demo"}, apperrors.ErrOutOfRange},
		{"no blueprint", Config{Mode: ModeView}, apperrors.ErrNilArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

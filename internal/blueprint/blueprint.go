// Package blueprint describes dungeon layouts declaratively and builds them into dungeons.
//
// Blueprints are YAML or JSON documents naming a tree of sub-dungeons and an ordered list of
// square placements. The embedded blueprints live in the data package.
package blueprint

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/dungeoncore/data"
	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
	"github.com/samdwyer/dungeoncore/internal/spatial"
)

// ErrInvalid is returned for a blueprint that does not describe a buildable dungeon.
var ErrInvalid = apperrors.New(apperrors.CodeStructuralViolation, "invalid blueprint")

// Blueprint is a complete dungeon layout.
type Blueprint struct {
	Name    string       `yaml:"name" json:"name"`
	Root    Node         `yaml:"root" json:"root"`
	Squares []SquareSpec `yaml:"squares" json:"squares"`
	Report  *ReportSpec  `yaml:"report,omitempty" json:"report,omitempty"`
}

// Node describes one dungeon of the tree. Kind is composite, singular, level or shaft.
type Node struct {
	Kind   string `yaml:"kind" json:"kind"`
	Offset Coord  `yaml:"offset,omitempty" json:"offset,omitempty"`
	Max    Coord  `yaml:"max,omitempty" json:"max,omitempty"`
	// Direction and Size apply to shafts only.
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
	Size      uint64 `yaml:"size,omitempty" json:"size,omitempty"`
	Children  []Node `yaml:"children,omitempty" json:"children,omitempty"`
}

// SquareSpec places one square at At, or one square per position of the box From..To.
type SquareSpec struct {
	At   Coord `yaml:"at,omitempty" json:"at,omitempty"`
	From Coord `yaml:"from,omitempty" json:"from,omitempty"`
	To   Coord `yaml:"to,omitempty" json:"to,omitempty"`

	// Kind is plain, transparent or rock.
	Kind  string   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Walls []string `yaml:"walls,omitempty" json:"walls,omitempty"`
	// Temperature is read in Unit, which defaults to celsius.
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	Unit        string   `yaml:"unit,omitempty" json:"unit,omitempty"`
	// Humidity is a percentage.
	Humidity *float64 `yaml:"humidity,omitempty" json:"humidity,omitempty"`
	Slippery bool     `yaml:"slippery,omitempty" json:"slippery,omitempty"`
	// Targets are the positions of already placed squares to teleport to.
	Targets []Coord `yaml:"targets,omitempty" json:"targets,omitempty"`
}

// ReportSpec configures the navigation report: which square to start from, which z slice
// to report on, and the square that replaces the start square for the second pass.
type ReportSpec struct {
	From    Coord       `yaml:"from" json:"from"`
	Z       uint64      `yaml:"z" json:"z"`
	Replace *SquareSpec `yaml:"replace,omitempty" json:"replace,omitempty"`
}

// Coord is a position written as [x, y, z].
type Coord []uint64

// Position converts c to a position. An empty coordinate is the origin.
func (c Coord) Position() (spatial.Position, error) {
	switch len(c) {
	case 0:
		return spatial.Origin, nil
	case 3:
		return spatial.At(c[0], c[1], c[2]), nil
	default:
		return spatial.Position{}, apperrors.WithMetadata(apperrors.CodeStructuralViolation,
			"coordinate needs three values", map[string]string{"coord": fmt.Sprint([]uint64(c))})
	}
}

// Positions lists the positions the spec places squares at, ordered by z, then y, then x.
func (s SquareSpec) Positions() ([]spatial.Position, error) {
	hasAt, hasRange := len(s.At) > 0, len(s.From) > 0 || len(s.To) > 0
	switch {
	case hasAt && hasRange:
		return nil, fmt.Errorf("%w: square has both at and from/to", ErrInvalid)
	case hasAt:
		p, err := s.At.Position()
		if err != nil {
			return nil, err
		}
		return []spatial.Position{p}, nil
	case !hasRange:
		return nil, fmt.Errorf("%w: square has no position", ErrInvalid)
	}

	from, err := s.From.Position()
	if err != nil {
		return nil, err
	}
	to, err := s.To.Position()
	if err != nil {
		return nil, err
	}
	if from.Exceeds(to) {
		return nil, fmt.Errorf("%w: range from %v to %v is empty", ErrInvalid, from, to)
	}
	var out []spatial.Position
	for z := from.Z; z <= to.Z; z++ {
		for y := from.Y; y <= to.Y; y++ {
			for x := from.X; x <= to.X; x++ {
				out = append(out, spatial.At(x, y, z))
			}
		}
	}
	return out, nil
}

// Parse decodes a blueprint. The format is taken from the extension of filename.
func Parse(filename string, content []byte) (*Blueprint, error) {
	bp, err := decode[Blueprint](filename, content)
	if err != nil {
		return nil, err
	}
	if bp.Name == "" {
		bp.Name = strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	}
	return &bp, nil
}

// Load returns the embedded blueprint with the given name.
func Load(name string) (*Blueprint, error) {
	fsys := data.FS()
	for _, ext := range []string{".yaml", ".json"} {
		filename := "blueprints/" + name + ext
		content, err := fsys.ReadFile(filename)
		if err != nil {
			continue
		}
		return Parse(filename, content)
	}
	return nil, apperrors.WithMetadata(apperrors.CodeNotFound, "no embedded blueprint",
		map[string]string{"name": name})
}

// LoadFile reads a blueprint from disk.
func LoadFile(filename string) (*Blueprint, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint %s: %w", filename, err)
	}
	return Parse(filename, content)
}

// Names lists the embedded blueprints.
func Names() ([]string, error) {
	entries, err := data.FS().ReadDir("blueprints")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	return names, nil
}

func decode[T any](filename string, content []byte) (T, error) {
	var result T
	switch path.Ext(filename) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &result); err != nil {
			return result, fmt.Errorf("failed to parse YAML from %s: %w", filename, err)
		}
	case ".json":
		if err := json.Unmarshal(content, &result); err != nil {
			return result, fmt.Errorf("failed to parse JSON from %s: %w", filename, err)
		}
	default:
		return result, apperrors.WithMetadata(apperrors.CodeOutOfRange, "unsupported blueprint format",
			map[string]string{"file": filename})
	}
	return result, nil
}

package level

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"
)

var ErrInvalidLayout = errors.New("invalid level layout")

// Glyphs understood by the compiler.
const (
	GlyphEmpty      = '.'
	GlyphSolid      = '#'
	GlyphSlopeRight = '/'
	GlyphSlopeLeft  = '\\'
	GlyphOneWay     = '='
	GlyphSpawn      = 'S'
)

// Point is an integer cell coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Layout is a level described as rows of glyphs, listed top-down.
type Layout struct {
	Name     string   `yaml:"name"`
	TileSize int      `yaml:"tile_size"`
	Offset   Point    `yaml:"offset"`
	Rows     []string `yaml:"rows"`
}

// Width is the length of the longest row.
func (l Layout) Width() int {
	w := 0
	for _, row := range l.Rows {
		w = max(w, len(row))
	}
	return w
}

func (l Layout) Height() int {
	return len(l.Rows)
}

// glyph returns the glyph at cell (x, y) with y counted up from the bottom
// row.
func (l Layout) glyph(x, y int) byte {
	row := l.Rows[len(l.Rows)-1-y]
	if x >= len(row) {
		return GlyphEmpty
	}
	return row[x]
}

func (l Layout) Validate() error {
	if l.TileSize <= 0 {
		return fmt.Errorf("level: tile size %d: %w", l.TileSize, ErrInvalidLayout)
	}
	if len(l.Rows) == 0 {
		return fmt.Errorf("level: no rows: %w", ErrInvalidLayout)
	}
	for i, row := range l.Rows {
		for j := 0; j < len(row); j++ {
			switch row[j] {
			case GlyphEmpty, ' ', GlyphSolid, GlyphSlopeRight, GlyphSlopeLeft, GlyphOneWay, GlyphSpawn:
			default:
				return fmt.Errorf("level: row %d column %d: unknown glyph %q: %w", i, j, row[j], ErrInvalidLayout)
			}
		}
	}
	return nil
}

// Spawn returns the world position of the bottom-left corner of the spawn
// cell, or false when the layout has none.
func (l Layout) Spawn() (cp.Vector, bool) {
	for y := 0; y < l.Height(); y++ {
		for x := 0; x < l.Width(); x++ {
			if l.glyph(x, y) == GlyphSpawn {
				return l.cellOrigin(x, y), true
			}
		}
	}
	return cp.Vector{}, false
}

func (l Layout) cellOrigin(x, y int) cp.Vector {
	ts := float64(l.TileSize)
	return cp.Vector{X: float64(x+l.Offset.X) * ts, Y: float64(y+l.Offset.Y) * ts}
}

// Parse decodes a YAML layout.
func Parse(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("level: unmarshal: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Load reads a YAML layout from disk.
func Load(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("level: read %q: %w", path, err)
	}
	l, err := Parse(data)
	if err != nil {
		return Layout{}, fmt.Errorf("level: parse %q: %w", path, err)
	}
	return l, nil
}

// LoadFS reads a YAML layout from fsys.
func LoadFS(fsys fs.FS, name string) (Layout, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Layout{}, fmt.Errorf("level: read %q: %w", name, err)
	}
	l, err := Parse(data)
	if err != nil {
		return Layout{}, fmt.Errorf("level: parse %q: %w", name, err)
	}
	return l, nil
}

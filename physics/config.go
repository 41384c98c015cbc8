package physics

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/common"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidConfig  = errors.New("invalid world config")
	ErrDegenerateBody = errors.New("degenerate body")
	ErrInvalidGrid    = errors.New("invalid tile grid")
	ErrBodyInWorld    = errors.New("body already belongs to a world")
)

// Config holds the per-world tunables.
type Config struct {
	Gravity  cp.Vector
	MaxSpeed cp.Vector
	TileSize int
	// GridOffset is the cell coordinate of the grid origin.
	GridOffset image.Point
	// Workers bounds the goroutines used by the integration and post-update
	// passes. Values below 2 run every pass inline.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		MaxSpeed: cp.Vector{X: common.DefaultMaxSpeed, Y: common.DefaultMaxSpeed},
		TileSize: common.DefaultTileSize,
		Workers:  1,
	}
}

func (c Config) Validate() error {
	if c.TileSize <= 0 {
		return fmt.Errorf("physics: tile size %d: %w", c.TileSize, ErrInvalidConfig)
	}
	if c.MaxSpeed.X < 0 || c.MaxSpeed.Y < 0 {
		return fmt.Errorf("physics: max speed %v: %w", c.MaxSpeed, ErrInvalidConfig)
	}
	for _, f := range []float64{c.Gravity.X, c.Gravity.Y, c.MaxSpeed.X, c.MaxSpeed.Y} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("physics: non-finite gravity or max speed: %w", ErrInvalidConfig)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("physics: workers %d: %w", c.Workers, ErrInvalidConfig)
	}
	return nil
}

// Option customizes a World at construction.
type Option func(*World)

// WithLogger routes world logs to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithGrid installs a tile grid at construction.
func WithGrid(g *TileGrid) Option {
	return func(w *World) {
		w.initialGrid = g
	}
}

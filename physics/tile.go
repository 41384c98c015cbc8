package physics

import (
	"fmt"
	"image"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/common"
	"github.com/milk9111/jump/geom"
)

// Tile is one occupied grid cell.
type Tile struct {
	Rect    geom.Rect
	Refined *geom.Triangle
	// Mask records which neighboring cells are also occupied. Pushes toward
	// an occupied neighbor are ignored.
	Mask geom.Direction
	// CollisionAxis restricts the tile to pushes along this direction. The
	// zero vector means the tile is solid from every side.
	CollisionAxis cp.Vector
}

// OneWay reports whether the tile only pushes along CollisionAxis.
func (t *Tile) OneWay() bool {
	return t.CollisionAxis.X != 0 || t.CollisionAxis.Y != 0
}

// Covers reports whether t fills its whole side facing d. One-way tiles
// cover nothing; a slope covers only the sides its triangle spans.
func (t *Tile) Covers(d geom.Direction) bool {
	if t == nil || t.OneWay() {
		return false
	}
	if t.Refined == nil {
		return true
	}
	a, b, ok := t.Rect.Side(d)
	return ok && t.Refined.HasEdge(a, b)
}

// TileGrid is an immutable level snapshot indexed [x][y]. Cell (0, 0) sits at
// Offset * TileSize in world space.
type TileGrid struct {
	TileSize int
	Offset   image.Point
	Tiles    [][]*Tile
}

func (g *TileGrid) Width() int {
	if g == nil {
		return 0
	}
	return len(g.Tiles)
}

func (g *TileGrid) Height() int {
	if g == nil || len(g.Tiles) == 0 {
		return 0
	}
	return len(g.Tiles[0])
}

// At returns the tile at cell (x, y), or nil when the cell is empty or off
// the grid.
func (g *TileGrid) At(x, y int) *Tile {
	if g == nil || x < 0 || y < 0 || x >= len(g.Tiles) || y >= len(g.Tiles[x]) {
		return nil
	}
	return g.Tiles[x][y]
}

// Validate checks the grid shape and every tile's geometry.
func (g *TileGrid) Validate() error {
	if g == nil {
		return fmt.Errorf("physics: nil grid: %w", ErrInvalidGrid)
	}
	if g.TileSize <= 0 {
		return fmt.Errorf("physics: tile size %d: %w", g.TileSize, ErrInvalidGrid)
	}
	height := g.Height()
	for x, col := range g.Tiles {
		if len(col) != height {
			return fmt.Errorf("physics: column %d has %d cells, want %d: %w", x, len(col), height, ErrInvalidGrid)
		}
		for y, t := range col {
			if t == nil {
				continue
			}
			if !t.Rect.Valid() {
				return fmt.Errorf("physics: tile (%d, %d) rect %v: %w", x, y, t.Rect, ErrInvalidGrid)
			}
			if t.Refined != nil && !t.Refined.Valid() {
				return fmt.Errorf("physics: tile (%d, %d) has a degenerate slope: %w", x, y, ErrInvalidGrid)
			}
			if t.Refined != nil && !t.Rect.Contains(t.Refined.Bounds(), common.FloatPrecision) {
				return fmt.Errorf("physics: tile (%d, %d) slope %v leaves its rect %v: %w", x, y, t.Refined.Bounds(), t.Rect, ErrInvalidGrid)
			}
		}
	}
	return nil
}

// ComputeMasks sets every tile's neighbor mask. A side is masked only when
// the neighbor fully covers the face they share.
func (g *TileGrid) ComputeMasks() {
	if g == nil {
		return
	}
	neighbors := []struct {
		dx, dy int
		dir    geom.Direction
		facing geom.Direction
	}{
		{1, 0, geom.Right, geom.Left},
		{-1, 0, geom.Left, geom.Right},
		{0, 1, geom.Up, geom.Down},
		{0, -1, geom.Down, geom.Up},
	}
	for x, col := range g.Tiles {
		for y, t := range col {
			if t == nil {
				continue
			}
			var mask geom.Direction
			for _, n := range neighbors {
				if g.At(x+n.dx, y+n.dy).Covers(n.facing) {
					mask |= n.dir
				}
			}
			t.Mask = mask
		}
	}
}

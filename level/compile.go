package level

import (
	"image"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/geom"
	"github.com/milk9111/jump/physics"
)

// Compile turns a layout into a tile grid with neighbor masks.
func Compile(l Layout) (*physics.TileGrid, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	width, height := l.Width(), l.Height()
	ts := float64(l.TileSize)
	g := &physics.TileGrid{
		TileSize: l.TileSize,
		Offset:   image.Point{X: l.Offset.X, Y: l.Offset.Y},
		Tiles:    make([][]*physics.Tile, width),
	}
	for x := 0; x < width; x++ {
		g.Tiles[x] = make([]*physics.Tile, height)
		for y := 0; y < height; y++ {
			origin := l.cellOrigin(x, y)
			rect := geom.Rect{Pos: origin, W: ts, H: ts}
			switch l.glyph(x, y) {
			case GlyphSolid:
				g.Tiles[x][y] = &physics.Tile{Rect: rect}
			case GlyphSlopeRight:
				tri := geom.NewTriangle(origin.X, origin.Y, ts, ts/2)
				g.Tiles[x][y] = &physics.Tile{Rect: rect, Refined: &tri}
			case GlyphSlopeLeft:
				tri := geom.NewTriangle(origin.X+ts, origin.Y, -ts, ts/2)
				g.Tiles[x][y] = &physics.Tile{Rect: rect, Refined: &tri}
			case GlyphOneWay:
				g.Tiles[x][y] = &physics.Tile{Rect: rect, CollisionAxis: cp.Vector{X: 0, Y: 1}}
			}
		}
	}
	g.ComputeMasks()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

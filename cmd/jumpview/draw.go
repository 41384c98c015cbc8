package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/control"
	"github.com/milk9111/jump/geom"
	"github.com/milk9111/jump/physics"
	"github.com/milk9111/jump/scene"
	"golang.org/x/image/colornames"
)

var (
	background  = color.NRGBA{R: 24, G: 24, B: 32, A: 255}
	tileColor   = colornames.Slategray
	oneWayColor = colornames.Orange
	playerColor = colornames.Crimson
	wallColor   = colornames.Orchid
	boundsColor = colornames.Dimgray
	resolved    = colornames.Lime
	unresolved  = colornames.Red
)

// drawer maps world space (y up) onto the screen (y down) around the camera.
type drawer struct {
	screen *ebiten.Image
	camera cp.Vector
	zoom   float64
	view   cp.BB
}

func newDrawer(screen *ebiten.Image, camera cp.Vector, zoom float64) *drawer {
	return &drawer{
		screen: screen,
		camera: camera,
		zoom:   zoom,
		view:   cp.NewBBForExtents(camera, baseWidth/2/zoom, baseHeight/2/zoom),
	}
}

func (d *drawer) visible(r geom.Rect) bool {
	return r.BB().Intersects(d.view)
}

func (d *drawer) toScreen(v cp.Vector) (float32, float32) {
	x := (v.X-d.camera.X)*d.zoom + baseWidth/2
	y := baseHeight/2 - (v.Y-d.camera.Y)*d.zoom
	return float32(x), float32(y)
}

func (d *drawer) rect(r geom.Rect) (x, y, w, h float32) {
	x, y = d.toScreen(cp.Vector{X: r.Pos.X, Y: r.Pos.Y + r.H})
	return x, y, float32(r.W * d.zoom), float32(r.H * d.zoom)
}

func (d *drawer) fillRect(r geom.Rect, c color.Color) {
	x, y, w, h := d.rect(r)
	vector.FillRect(d.screen, x, y, w, h, c, false)
}

func (d *drawer) strokeRect(r geom.Rect, c color.Color) {
	x, y, w, h := d.rect(r)
	vector.StrokeRect(d.screen, x, y, w, h, 1, c, false)
}

func (d *drawer) drawLine(a, b cp.Vector, c color.Color) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, c, true)
}

func (d *drawer) drawPolygon(verts []cp.Vector, c color.Color) {
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (d *drawer) drawGrid(g *physics.TileGrid, offset image.Point) {
	if g == nil || len(g.Tiles) == 0 {
		return
	}
	ts := float64(g.TileSize)
	d.strokeRect(geom.NewRect(float64(offset.X)*ts, float64(offset.Y)*ts,
		float64(len(g.Tiles))*ts, float64(len(g.Tiles[0]))*ts), boundsColor)

	for _, col := range g.Tiles {
		for _, t := range col {
			switch {
			case t == nil:
			case !d.visible(t.Rect):
			case t.Refined != nil:
				d.drawPolygon(t.Refined[:], tileColor)
			case t.OneWay():
				top := t.Rect.Max()
				d.drawLine(cp.Vector{X: t.Rect.Pos.X, Y: top.Y}, top, oneWayColor)
			default:
				d.strokeRect(t.Rect, tileColor)
			}
		}
	}
}

func (d *drawer) drawScene(s *scene.Scene) {
	for _, p := range s.Platforms {
		if d.visible(p.Body.AABB) {
			d.fillRect(p.Body.AABB, p.Color)
		}
	}

	d.fillRect(s.Player.AABB, playerColor)
	if s.Machine.State() == control.WallSliding {
		r := s.Player.AABB
		x := r.Pos.X + r.W
		if s.Machine.WallLeft() {
			x = r.Pos.X
		}
		d.drawLine(cp.Vector{X: x, Y: r.Pos.Y}, cp.Vector{X: x, Y: r.Pos.Y + r.H}, wallColor)
	}
}

func (d *drawer) drawCollisions(w *physics.World) {
	res, unres := w.DebugCollisions()
	for _, r := range res {
		d.strokeRect(r, resolved)
	}
	for _, r := range unres {
		d.strokeRect(r, unresolved)
	}
}

package physics

import (
	"math"

	"github.com/milk9111/jump/geom"
)

type cell struct {
	X, Y int
}

// cellSpan is an inclusive range of grid cells.
type cellSpan struct {
	MinX, MinY int
	MaxX, MaxY int
}

// spanOf returns the cells r may touch. The span runs from the floor of the
// box origin through that plus the ceiling of its size, so boxes straddling a
// cell boundary are always covered.
func spanOf(r geom.Rect, tileSize int, offset cell) cellSpan {
	ts := float64(tileSize)
	x := int(math.Floor(r.Pos.X/ts)) - offset.X
	y := int(math.Floor(r.Pos.Y/ts)) - offset.Y
	return cellSpan{
		MinX: x,
		MinY: y,
		MaxX: x + int(math.Ceil(r.W/ts)),
		MaxY: y + int(math.Ceil(r.H/ts)),
	}
}

func (s cellSpan) each(fn func(c cell)) {
	for x := s.MinX; x <= s.MaxX; x++ {
		for y := s.MinY; y <= s.MaxY; y++ {
			fn(cell{X: x, Y: y})
		}
	}
}

// spatialIndex buckets bodies by grid cell. It is rebuilt every sub-step.
type spatialIndex struct {
	cells map[cell][]*Body
	seen  map[*Body]struct{}
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{
		cells: make(map[cell][]*Body),
		seen:  make(map[*Body]struct{}),
	}
}

// reset empties every bucket but keeps their backing arrays.
func (idx *spatialIndex) reset() {
	for c, bodies := range idx.cells {
		if len(bodies) == 0 {
			delete(idx.cells, c)
			continue
		}
		clear(bodies)
		idx.cells[c] = bodies[:0]
	}
}

func (idx *spatialIndex) insert(b *Body, span cellSpan) {
	span.each(func(c cell) {
		bucket := idx.cells[c]
		for _, other := range bucket {
			if other == b {
				return
			}
		}
		idx.cells[c] = append(bucket, b)
	})
}

// query calls fn once for every distinct body sharing a cell with span, in
// insertion order per cell.
func (idx *spatialIndex) query(span cellSpan, fn func(b *Body)) {
	clear(idx.seen)
	span.each(func(c cell) {
		for _, b := range idx.cells[c] {
			if _, ok := idx.seen[b]; ok {
				continue
			}
			idx.seen[b] = struct{}{}
			fn(b)
		}
	})
}

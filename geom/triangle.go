package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Triangle is a convex three-point shape used for slope tiles.
type Triangle [3]cp.Vector

// NewTriangle builds a right triangle with its base along y, its right angle
// at (x+w, y) and its apex at (x+w, y+h). A negative w mirrors the shape so
// the slope rises to the left.
func NewTriangle(x, y, w, h float64) Triangle {
	return Triangle{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
	}
}

// vertexTolerance is how close two points must be to count as one vertex.
const vertexTolerance = 1e-9

// HasEdge reports whether a and b are both vertices of t, so that the segment
// between them is one of its edges.
func (t Triangle) HasEdge(a, b cp.Vector) bool {
	return t.hasVertex(a) && t.hasVertex(b)
}

func (t Triangle) hasVertex(v cp.Vector) bool {
	for _, p := range t {
		if p.Near(v, vertexTolerance) {
			return true
		}
	}
	return false
}

func (t Triangle) centroid() cp.Vector {
	return t[0].Add(t[1]).Add(t[2]).Mult(1.0 / 3.0)
}

// Normals returns the outward unit normal of each edge.
func (t Triangle) Normals() [3]cp.Vector {
	var out [3]cp.Vector
	c := t.centroid()
	for i := range t {
		a := t[i]
		b := t[(i+1)%3]
		n := b.Sub(a).Perp().Normalize()
		if n.Dot(a.Sub(c)) < 0 {
			n = n.Neg()
		}
		out[i] = n
	}
	return out
}

func (t Triangle) Project(axis cp.Vector) (float64, float64) {
	return project(t[:], axis)
}

// Bounds returns the axis-aligned box enclosing t.
func (t Triangle) Bounds() Rect {
	minX, maxX := t.Project(XAxis)
	minY, maxY := t.Project(YAxis)
	return NewRect(minX, minY, maxX-minX, maxY-minY)
}

// Valid reports whether t encloses a non-zero area.
func (t Triangle) Valid() bool {
	area := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	return !math.IsNaN(area) && math.Abs(area) > 0
}

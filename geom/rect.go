package geom

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// Rect is an axis-aligned box anchored at its lower-left corner.
type Rect struct {
	Pos  cp.Vector
	W, H float64
}

func NewRect(x, y, w, h float64) Rect {
	return Rect{Pos: cp.Vector{X: x, Y: y}, W: w, H: h}
}

func (r Rect) Min() cp.Vector {
	return r.Pos
}

func (r Rect) Max() cp.Vector {
	return cp.Vector{X: r.Pos.X + r.W, Y: r.Pos.Y + r.H}
}

func (r Rect) Center() cp.Vector {
	return cp.Vector{X: r.Pos.X + r.W/2, Y: r.Pos.Y + r.H/2}
}

// Translate moves r in place.
func (r *Rect) Translate(v cp.Vector) {
	r.Pos = r.Pos.Add(v)
}

// Translated returns a copy of r moved by v.
func (r Rect) Translated(v cp.Vector) Rect {
	r.Pos = r.Pos.Add(v)
	return r
}

// Valid reports whether r has a finite position and a positive size.
func (r Rect) Valid() bool {
	for _, f := range []float64{r.Pos.X, r.Pos.Y, r.W, r.H} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return r.W > 0 && r.H > 0
}

func (r Rect) Intersects(other Rect) bool {
	return r.Pos.X < other.Pos.X+other.W &&
		r.Pos.X+r.W > other.Pos.X &&
		r.Pos.Y < other.Pos.Y+other.H &&
		r.Pos.Y+r.H > other.Pos.Y
}

// Intersection returns the overlapping area of r and other. Boxes that only
// share an edge do not intersect.
func (r Rect) Intersection(other Rect) (Rect, bool) {
	if !r.Intersects(other) {
		return Rect{}, false
	}
	minX := math.Max(r.Pos.X, other.Pos.X)
	minY := math.Max(r.Pos.Y, other.Pos.Y)
	maxX := math.Min(r.Pos.X+r.W, other.Pos.X+other.W)
	maxY := math.Min(r.Pos.Y+r.H, other.Pos.Y+other.H)
	return NewRect(minX, minY, maxX-minX, maxY-minY), true
}

func (r Rect) Vertices() [4]cp.Vector {
	max := r.Max()
	return [4]cp.Vector{
		r.Pos,
		{X: max.X, Y: r.Pos.Y},
		max,
		{X: r.Pos.X, Y: max.Y},
	}
}

// Side returns the endpoints of the edge of r facing d. It returns false when
// d is not a single direction.
func (r Rect) Side(d Direction) (cp.Vector, cp.Vector, bool) {
	min, max := r.Min(), r.Max()
	switch d {
	case Right:
		return cp.Vector{X: max.X, Y: min.Y}, max, true
	case Left:
		return min, cp.Vector{X: min.X, Y: max.Y}, true
	case Up:
		return cp.Vector{X: min.X, Y: max.Y}, max, true
	case Down:
		return min, cp.Vector{X: max.X, Y: min.Y}, true
	default:
		return cp.Vector{}, cp.Vector{}, false
	}
}

// Contains reports whether other lies inside r, edges included, within tol.
func (r Rect) Contains(other Rect, tol float64) bool {
	min, max := r.Min(), r.Max()
	omin, omax := other.Min(), other.Max()
	return omin.X >= min.X-tol && omin.Y >= min.Y-tol && omax.X <= max.X+tol && omax.Y <= max.Y+tol
}

// Project returns the interval covered by r along axis.
func (r Rect) Project(axis cp.Vector) (float64, float64) {
	verts := r.Vertices()
	return project(verts[:], axis)
}

// BB converts r to a Chipmunk bounding box.
func (r Rect) BB() cp.BB {
	max := r.Max()
	return cp.BB{L: r.Pos.X, B: r.Pos.Y, R: max.X, T: max.Y}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.3f, %.3f %.3fx%.3f)", r.Pos.X, r.Pos.Y, r.W, r.H)
}

func project(verts []cp.Vector, axis cp.Vector) (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, v := range verts {
		d := v.Dot(axis)
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	return min, max
}

package geom

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"
)

var (
	XAxis    = cp.Vector{X: 1, Y: 0}
	NegXAxis = cp.Vector{X: -1, Y: 0}
	YAxis    = cp.Vector{X: 0, Y: 1}
	NegYAxis = cp.Vector{X: 0, Y: -1}
)

// Manifold is one way of separating two overlapping shapes: move the first
// shape Distance units along Axis.
type Manifold struct {
	Axis     cp.Vector
	Distance float64
}

// ZeroManifold means no valid separation was found.
var ZeroManifold = Manifold{}

// Result is the translation the manifold applies.
func (m Manifold) Result() cp.Vector {
	return m.Axis.Mult(m.Distance)
}

// Push is the unit direction the manifold moves the first shape in.
func (m Manifold) Push() cp.Vector {
	switch {
	case m.Distance > 0:
		return m.Axis
	case m.Distance < 0:
		return m.Axis.Neg()
	default:
		return cp.Vector{}
	}
}

func (m Manifold) IsZero() bool {
	return m.Distance == 0 || (m.Axis.X == 0 && m.Axis.Y == 0)
}

// Bundle holds every candidate manifold for one overlapping pair.
type Bundle struct {
	Candidates []Manifold
}

// SortByDepth orders candidates by ascending penetration.
func (b *Bundle) SortByDepth() {
	sort.SliceStable(b.Candidates, func(i, j int) bool {
		return math.Abs(b.Candidates[i].Distance) < math.Abs(b.Candidates[j].Distance)
	})
}

// RectBundle returns one candidate per box axis for moving a out of b. It
// reports false if the boxes do not overlap.
func RectBundle(a, b Rect) (Bundle, bool) {
	bundle := Bundle{Candidates: make([]Manifold, 0, 2)}
	for _, axis := range []cp.Vector{XAxis, YAxis} {
		aMin, aMax := a.Project(axis)
		bMin, bMax := b.Project(axis)
		m, ok := separate(axis, aMin, aMax, bMin, bMax)
		if !ok {
			return Bundle{}, false
		}
		bundle.Candidates = append(bundle.Candidates, m)
	}
	return bundle, true
}

// TriangleBundle returns a candidate for each triangle edge normal plus the
// two box axes for moving a out of t.
func TriangleBundle(a Rect, t Triangle) (Bundle, bool) {
	normals := t.Normals()
	axes := make([]cp.Vector, 0, 5)
	axes = append(axes, normals[:]...)
	axes = append(axes, XAxis, YAxis)

	bundle := Bundle{Candidates: make([]Manifold, 0, len(axes))}
	for _, axis := range axes {
		aMin, aMax := a.Project(axis)
		tMin, tMax := t.Project(axis)
		m, ok := separate(axis, aMin, aMax, tMin, tMax)
		if !ok {
			return Bundle{}, false
		}
		bundle.Candidates = append(bundle.Candidates, m)
	}
	return bundle, true
}

func separate(axis cp.Vector, aMin, aMax, bMin, bMax float64) (Manifold, bool) {
	if aMax <= bMin || bMax <= aMin {
		return Manifold{}, false
	}
	forward := bMax - aMin
	backward := bMin - aMax
	if math.Abs(backward) < math.Abs(forward) {
		return Manifold{Axis: axis, Distance: backward}, true
	}
	return Manifold{Axis: axis, Distance: forward}, true
}

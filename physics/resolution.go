package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/common"
	"github.com/milk9111/jump/geom"
)

// Collision is one overlapping pair recorded for a dynamic body.
type Collision struct {
	Other   *Body
	Overlap geom.Rect
	// Resolved is set once the pair produced a correction.
	Resolved bool
}

// resolution accumulates the correction for one dynamic body during a
// sub-step.
type resolution struct {
	body       *Body
	collisions []Collision
	Resolution cp.Vector
	HaltX      bool
	HaltY      bool
}

func (r *resolution) has(other *Body) bool {
	for _, c := range r.collisions {
		if c.Other == other {
			return true
		}
	}
	return false
}

var maxWalkableSlope = common.MaxWalkableSlope * math.Pi / 180

// relativeMovement is the motion of body against other this step, including
// what has already been resolved.
func relativeMovement(body, other *Body, cumulative cp.Vector) cp.Vector {
	var rel cp.Vector
	if !body.ResolutionLocked {
		rel = body.LastAttempt
	}
	rel = rel.Add(cumulative)
	if !other.ResolutionLocked {
		rel = rel.Sub(other.LastAttempt)
	}
	return rel
}

// solve picks the shallowest candidate that pushes body back against its
// relative movement and, for tiles, survives the occlusion rules.
func solve(bundle geom.Bundle, body, other *Body, cumulative cp.Vector) geom.Manifold {
	bundle.SortByDepth()
	rel := relativeMovement(body, other, cumulative)
	for _, m := range bundle.Candidates {
		dot := rel.Dot(m.Axis)
		if dot == 0 || common.SameSign(dot, m.Distance) {
			continue
		}
		if other.tile != nil {
			resolutionPosition := body.AABB.Pos.Add(cumulative).Add(m.Result()).Dot(m.Axis)
			lastPosition := body.LastPosition.Dot(m.Axis)
			if !tileCollisionValid(other.tile, m, resolutionPosition, lastPosition) {
				continue
			}
		}
		return m
	}
	return geom.ZeroManifold
}

// tileCollisionValid rejects pushes into occupied neighbors, pushes that
// carry the body past where it started the step, and pushes a one-way tile
// does not allow.
func tileCollisionValid(t *Tile, m geom.Manifold, resolutionPosition, lastPosition float64) bool {
	push := m.Push()
	if dir := geom.DirectionOf(push); dir != 0 && t.Mask.Has(dir) {
		return false
	}
	if m.Distance > 0 && resolutionPosition-lastPosition > common.FloatPrecision {
		return false
	}
	if m.Distance < 0 && lastPosition-resolutionPosition > common.FloatPrecision {
		return false
	}
	if t.OneWay() && push.Dot(t.CollisionAxis.Normalize()) < 1-common.FloatPrecision {
		return false
	}
	return true
}

// candidate tests body, moved by the resolution so far, against other.
func candidate(body, other *Body, cumulative cp.Vector) geom.Manifold {
	box := body.AABB.Translated(cumulative)
	var (
		bundle geom.Bundle
		ok     bool
	)
	if other.tile != nil && other.Refined != nil {
		bundle, ok = geom.TriangleBundle(box, *other.Refined)
	} else {
		bundle, ok = geom.RectBundle(box, other.AABB)
	}
	if !ok {
		return geom.ZeroManifold
	}
	return solve(bundle, body, other, cumulative)
}

// satResolve turns a manifold into a correction, redirecting walkable slope
// pushes straight up so horizontal speed survives.
func satResolve(r *resolution, m geom.Manifold) cp.Vector {
	push := m.Push()
	depth := math.Abs(m.Distance)
	correction := push.Mult(depth)
	if push.X != 0 && push.Y > 0 {
		angle := math.Acos(math.Min(push.Y, 1))
		if angle <= maxWalkableSlope {
			correction = cp.Vector{X: 0, Y: depth / math.Cos(angle)}
		}
	}
	v := r.body.Velocity
	if common.Opposing(correction.X, v.X) {
		r.HaltX = true
	}
	if common.Opposing(correction.Y, v.Y) {
		r.HaltY = true
	}
	return correction
}

// postResolve attaches body to a kinetic other it is pushed along by or
// rests upon.
func postResolve(body, other *Body, m geom.Manifold, gravity cp.Vector) {
	if other.Type != Kinetic || m.IsZero() || body.parent.Valid() {
		return
	}
	push := m.Push()
	if push.Dot(other.LastAttempt) > 0 || push.Dot(gravity) < 0 {
		body.parent = other.handle
		other.addChild(body.handle)
	}
}

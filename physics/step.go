package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// stepTolerance lets a delta that sums to exactly StepSize run one sub-step
// despite float rounding.
const stepTolerance = 1e-9

// Step advances the world by as many fixed sub-steps as fit in delta plus
// the remainder carried from earlier calls. It reports whether any sub-step
// ran.
func (w *World) Step(delta float64) bool {
	if w == nil || !(delta > 0) || math.IsInf(delta, 0) {
		return false
	}
	delta += w.extraStepTime
	steps := 0
	for delta >= common.StepSize-stepTolerance {
		w.internalStep(common.StepSize)
		delta -= common.StepSize
		steps++
	}
	w.extraStepTime = math.Max(delta, 0)
	if steps > 0 {
		w.log.WithField("steps", steps).Trace("physics: stepped")
	}
	return steps > 0
}

func (w *World) internalStep(delta float64) {
	w.applyPending()

	w.forEach(w.dynamics, func(b *Body) { w.integrateDynamic(b, delta) })
	w.forEach(w.kinetics, func(b *Body) { w.integrateKinetic(b, delta) })

	w.rebuildIndex()
	w.discover()
	w.resolveAll()
	w.notify()

	w.forEach(w.dynamics, w.postUpdate)
}

func (w *World) integrateDynamic(b *Body, delta float64) {
	if !b.Active {
		return
	}
	if b.Gravitational {
		b.Velocity = b.Velocity.Add(w.cfg.Gravity.Mult(delta * b.Props.gravityScale()))
	}
	if b.Controller != nil {
		w.safely(b, "controller", func() { b.Controller.Update(delta, b) })
	}
	w.move(b, delta)
	b.Grounded = false
	b.parent = 0
	b.LastResolution = cp.Vector{}
}

func (w *World) integrateKinetic(b *Body, delta float64) {
	if !b.Active {
		b.children = b.children[:0]
		return
	}
	if b.Controller != nil {
		w.safely(b, "controller", func() { b.Controller.Update(delta, b) })
	}
	b.Velocity = w.clamp(b.Velocity)
	attempt := b.Velocity.Mult(delta)
	influence := cp.Vector{
		X: common.Shrink(attempt.X, common.FloatPrecision),
		Y: common.Shrink(attempt.Y, common.FloatPrecision),
	}
	for _, h := range b.children {
		child := w.lookup(h)
		if child == nil || !child.Active {
			continue
		}
		child.AABB.Translate(influence)
		child.LastAttempt = child.LastAttempt.Add(influence)
	}
	b.children = b.children[:0]

	b.LastPosition = b.AABB.Pos
	b.LastAttempt = attempt
	b.AABB.Translate(attempt)
	b.Grounded = false
	b.parent = 0
}

func (w *World) clamp(v cp.Vector) cp.Vector {
	return cp.Vector{
		X: common.ClampAbs(v.X, w.cfg.MaxSpeed.X),
		Y: common.ClampAbs(v.Y, w.cfg.MaxSpeed.Y),
	}
}

func (w *World) move(b *Body, delta float64) {
	b.Velocity = w.clamp(b.Velocity)
	b.LastPosition = b.AABB.Pos
	b.LastAttempt = b.Velocity.Mult(delta)
	b.AABB.Translate(b.LastAttempt)
}

func (w *World) rebuildIndex() {
	w.index.reset()
	off := w.offset()
	w.eachBody(func(b *Body) {
		if b.Active {
			w.index.insert(b, spanOf(b.AABB, w.cfg.TileSize, off))
		}
	})
}

func (w *World) discover() {
	for _, rec := range w.records {
		delete(w.recordOf, rec.body)
	}
	w.records = w.records[:0]
	off := w.offset()

	for _, b := range w.dynamics {
		if !b.Active {
			continue
		}
		span := spanOf(b.AABB, w.cfg.TileSize, off)
		if w.grid != nil {
			span.each(func(c cell) {
				if t := w.tileBody(c.X, c.Y); t != nil {
					w.record(b, t)
				}
			})
		}
		w.index.query(span, func(other *Body) {
			if other != b {
				w.record(b, other)
			}
		})
	}

	for _, k := range w.kinetics {
		if !k.Active {
			continue
		}
		w.index.query(spanOf(k.AABB, w.cfg.TileSize, off), func(other *Body) {
			if other.Type == Dynamic {
				w.record(other, k)
			}
		})
	}
}

// record notes that body overlaps other, once per pair.
func (w *World) record(body, other *Body) {
	overlap, ok := body.AABB.Intersection(other.AABB)
	if !ok {
		return
	}
	rec := w.recordOf[body]
	if rec == nil {
		rec = &resolution{body: body}
		w.recordOf[body] = rec
		w.records = append(w.records, rec)
	}
	if rec.has(other) {
		return
	}
	rec.collisions = append(rec.collisions, Collision{Other: other, Overlap: overlap})
}

func (w *World) resolveAll() {
	w.resolved = w.resolved[:0]
	w.unresolved = w.unresolved[:0]
	for _, rec := range w.records {
		w.resolve(rec)
		w.apply(rec)
	}
}

func (w *World) resolve(rec *resolution) {
	b := rec.body
	for i := range rec.collisions {
		c := &rec.collisions[i]
		m := candidate(b, c.Other, rec.Resolution)
		if m.IsZero() {
			w.unresolved = append(w.unresolved, c.Overlap)
			continue
		}
		rec.Resolution = rec.Resolution.Add(satResolve(rec, m))
		postResolve(b, c.Other, m, w.cfg.Gravity)
		c.Resolved = true
		w.resolved = append(w.resolved, c.Overlap)
	}
}

func (w *World) apply(rec *resolution) {
	b := rec.body
	r := rec.Resolution
	if r.X != 0 || r.Y != 0 {
		b.AABB.Translate(r)
		g := w.cfg.Gravity
		if math.Abs(g.Y-r.Y) > math.Abs(g.Y) {
			b.Grounded = true
		}
	}
	if rec.HaltX {
		b.Velocity.X = 0
	}
	if rec.HaltY {
		b.Velocity.Y = 0
	}
	b.LastResolution = r
}

func (w *World) notify() {
	if len(w.listeners) == 0 {
		return
	}
	for _, rec := range w.records {
		for _, c := range rec.collisions {
			if !c.Resolved {
				continue
			}
			for _, fn := range w.listeners {
				w.safely(rec.body, "collision listener", func() { fn(rec.body, c.Other, c.Overlap) })
			}
		}
	}
}

func (w *World) postUpdate(b *Body) {
	if !b.Active || b.StateWatcher == nil {
		return
	}
	w.safely(b, "state watcher", func() { b.StateWatcher.Update(b) })
}

// forEach runs fn over bodies, split across up to cfg.Workers goroutines.
// It returns once every call has finished.
func (w *World) forEach(bodies []*Body, fn func(b *Body)) {
	workers := w.cfg.Workers
	if workers <= 1 || len(bodies) < 2 {
		for _, b := range bodies {
			fn(b)
		}
		return
	}
	if workers > len(bodies) {
		workers = len(bodies)
	}
	chunk := (len(bodies) + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(bodies); start += chunk {
		part := bodies[start:min(start+chunk, len(bodies))]
		g.Go(func() error {
			for _, b := range part {
				fn(b)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// safely runs a body hook, recovering and logging any panic so one body's
// hook cannot stop the pass.
func (w *World) safely(b *Body, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.log.WithFields(logrus.Fields{
				"body": b.handle,
				"hook": hook,
			}).Errorf("physics: recovered panic: %v", r)
		}
	}()
	fn()
}

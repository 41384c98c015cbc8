package physics

import (
	"fmt"
	"image"
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/geom"
	"github.com/sirupsen/logrus"
)

// Version identifies the engine revision.
const Version = "1.0.0"

// CollisionListener is notified of every resolved overlap after a sub-step's
// resolution has been applied. Overlaps that produced no correction are only
// visible through DebugCollisions.
type CollisionListener func(body, other *Body, overlap geom.Rect)

// World owns bodies, the tile grid snapshot and the broad-phase index, and
// advances them in fixed sub-steps.
type World struct {
	cfg Config
	log logrus.FieldLogger

	handles handleStore
	slots   []*Body

	dynamics []*Body
	kinetics []*Body
	statics  []*Body

	pendingMu      sync.Mutex
	pendingAdds    []*Body
	pendingRemoves []Handle

	grid        *TileGrid
	gridBodies  [][]*Body
	initialGrid *TileGrid

	index     *spatialIndex
	records   []*resolution
	recordOf  map[*Body]*resolution
	listeners []CollisionListener

	resolved   []geom.Rect
	unresolved []geom.Rect

	extraStepTime float64
}

// NewWorld validates cfg and returns an empty world.
func NewWorld(cfg Config, opts ...Option) (*World, error) {
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:      cfg,
		log:      logrus.StandardLogger(),
		index:    newSpatialIndex(),
		recordOf: make(map[*Body]*resolution),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if w.initialGrid != nil {
		if err := w.SetGrid(w.initialGrid); err != nil {
			return nil, err
		}
		w.initialGrid = nil
	}
	return w, nil
}

// AddBody queues b for insertion at the start of the next sub-step and
// returns its handle.
func (w *World) AddBody(b *Body) (Handle, error) {
	if b == nil {
		return 0, fmt.Errorf("physics: add nil body: %w", ErrDegenerateBody)
	}
	if !b.AABB.Valid() {
		w.log.WithField("rect", b.AABB.String()).Warn("physics: rejected degenerate body")
		return 0, fmt.Errorf("physics: add body %v: %w", b.AABB, ErrDegenerateBody)
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if b.handle.Valid() {
		return 0, fmt.Errorf("physics: add %s: %w", b, ErrBodyInWorld)
	}
	b.handle = w.handles.create()
	w.pendingAdds = append(w.pendingAdds, b)
	return b.handle, nil
}

// RemoveBody queues the body behind h for removal at the start of the next
// sub-step. Stale handles are ignored.
func (w *World) RemoveBody(h Handle) {
	if !h.Valid() {
		return
	}
	w.pendingMu.Lock()
	w.pendingRemoves = append(w.pendingRemoves, h)
	w.pendingMu.Unlock()
}

// ReplaceBodies queues removal of every current body and insertion of
// bodies.
func (w *World) ReplaceBodies(bodies []*Body) error {
	w.RemoveAllBodies()
	for _, b := range bodies {
		if _, err := w.AddBody(b); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAllBodies queues removal of every body and drops pending additions.
func (w *World) RemoveAllBodies() {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	for _, b := range w.pendingAdds {
		w.handles.destroy(b.handle)
		b.handle = 0
	}
	w.pendingAdds = w.pendingAdds[:0]
	w.eachBody(func(b *Body) {
		w.pendingRemoves = append(w.pendingRemoves, b.handle)
	})
}

// Flush applies queued additions and removals without stepping.
func (w *World) Flush() {
	w.applyPending()
}

func (w *World) applyPending() {
	w.pendingMu.Lock()
	removes := w.pendingRemoves
	adds := w.pendingAdds
	w.pendingRemoves = nil
	w.pendingAdds = nil
	w.pendingMu.Unlock()

	for _, h := range removes {
		b := w.lookup(h)
		if b == nil {
			// Added and removed in the same window.
			w.dropPending(adds, h)
			continue
		}
		switch b.Type {
		case Dynamic:
			w.dynamics = removeBody(w.dynamics, b)
		case Kinetic:
			w.kinetics = removeBody(w.kinetics, b)
		default:
			w.statics = removeBody(w.statics, b)
		}
		w.slots[h.id()-1] = nil
		w.handles.destroy(h)
		b.handle = 0
		b.parent = 0
		b.children = b.children[:0]
		w.log.WithField("body", h).Debug("physics: removed body")
	}

	for _, b := range adds {
		if !b.handle.Valid() {
			continue
		}
		id := int(b.handle.id())
		for len(w.slots) < id {
			w.slots = append(w.slots, nil)
		}
		w.slots[id-1] = b
		switch b.Type {
		case Dynamic:
			w.dynamics = append(w.dynamics, b)
		case Kinetic:
			w.kinetics = append(w.kinetics, b)
		default:
			w.statics = append(w.statics, b)
		}
		w.log.WithFields(logrus.Fields{"body": b.handle, "type": b.Type.String()}).Debug("physics: added body")
	}
}

func (w *World) dropPending(adds []*Body, h Handle) {
	for _, b := range adds {
		if b.handle == h {
			w.handles.destroy(h)
			b.handle = 0
			return
		}
	}
}

func removeBody(list []*Body, b *Body) []*Body {
	for i, other := range list {
		if other == b {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// lookup resolves h to a body that is currently part of the world.
func (w *World) lookup(h Handle) *Body {
	if !w.handles.isAlive(h) {
		return nil
	}
	id := int(h.id())
	if id > len(w.slots) {
		return nil
	}
	return w.slots[id-1]
}

// Body returns the body behind h, or nil if h is stale or its addition has
// not been applied yet.
func (w *World) Body(h Handle) *Body {
	if w == nil {
		return nil
	}
	return w.lookup(h)
}

// Bodies returns a copy of the bodies of type t.
func (w *World) Bodies(t BodyType) []*Body {
	if w == nil {
		return nil
	}
	var src []*Body
	switch t {
	case Dynamic:
		src = w.dynamics
	case Kinetic:
		src = w.kinetics
	case Static:
		src = w.statics
	}
	return append([]*Body(nil), src...)
}

// Each visits every body: dynamic first, then kinetic, then static.
func (w *World) Each(fn func(b *Body)) {
	if w == nil || fn == nil {
		return
	}
	w.eachBody(fn)
}

func (w *World) eachBody(fn func(b *Body)) {
	for _, list := range [][]*Body{w.dynamics, w.kinetics, w.statics} {
		for _, b := range list {
			fn(b)
		}
	}
}

func (w *World) SetGravity(x, y float64) {
	w.cfg.Gravity = cp.Vector{X: x, Y: y}
}

func (w *World) Gravity() cp.Vector {
	return w.cfg.Gravity
}

func (w *World) SetMaxSpeed(x, y float64) {
	w.cfg.MaxSpeed = cp.Vector{X: x, Y: y}
}

func (w *World) MaxSpeed() cp.Vector {
	return w.cfg.MaxSpeed
}

// SetGrid replaces the tile grid. The world adopts the grid's tile size and
// offset. A nil grid clears it.
func (w *World) SetGrid(g *TileGrid) error {
	if g == nil {
		w.grid = nil
		w.gridBodies = nil
		return nil
	}
	if err := g.Validate(); err != nil {
		return err
	}
	bodies := make([][]*Body, len(g.Tiles))
	for x, col := range g.Tiles {
		bodies[x] = make([]*Body, len(col))
		for y, t := range col {
			if t == nil {
				continue
			}
			bodies[x][y] = &Body{
				Type:             Static,
				AABB:             t.Rect,
				Refined:          t.Refined,
				Active:           true,
				ResolutionLocked: true,
				tile:             t,
			}
		}
	}
	w.grid = g
	w.gridBodies = bodies
	w.cfg.TileSize = g.TileSize
	w.cfg.GridOffset = g.Offset
	w.log.WithFields(logrus.Fields{
		"width":     g.Width(),
		"height":    g.Height(),
		"tile_size": g.TileSize,
	}).Info("physics: grid set")
	return nil
}

func (w *World) Grid() *TileGrid {
	return w.grid
}

func (w *World) TileSize() int {
	return w.cfg.TileSize
}

func (w *World) GridOffset() image.Point {
	return w.cfg.GridOffset
}

// OnCollision registers fn to be called for every resolved overlap. A
// panicking listener is logged and skipped.
func (w *World) OnCollision(fn CollisionListener) {
	if fn == nil {
		return
	}
	w.listeners = append(w.listeners, fn)
}

// DebugCollisions returns the overlaps resolved and left unresolved during
// the last sub-step.
func (w *World) DebugCollisions() (resolved, unresolved []geom.Rect) {
	return append([]geom.Rect(nil), w.resolved...), append([]geom.Rect(nil), w.unresolved...)
}

func (w *World) tileBody(x, y int) *Body {
	if x < 0 || x >= len(w.gridBodies) || y < 0 || y >= len(w.gridBodies[x]) {
		return nil
	}
	return w.gridBodies[x][y]
}

func (w *World) offset() cell {
	return cell{X: w.cfg.GridOffset.X, Y: w.cfg.GridOffset.Y}
}

package physics

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/common"
	"github.com/milk9111/jump/geom"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestWorld(t *testing.T, cfg Config) *World {
	t.Helper()
	w, err := NewWorld(cfg, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}
	return w
}

func mustBody(t *testing.T, typ BodyType, x, y, width, height float64) *Body {
	t.Helper()
	b, err := NewBody(typ, geom.NewRect(x, y, width, height))
	if err != nil {
		t.Fatalf("NewBody failed: %v", err)
	}
	return b
}

func mustAdd(t *testing.T, w *World, b *Body) Handle {
	t.Helper()
	h, err := w.AddBody(b)
	if err != nil {
		t.Fatalf("AddBody failed: %v", err)
	}
	return h
}

func TestNewWorldValidatesConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"zero_tile_size", func(c *Config) { c.TileSize = 0 }, false},
		{"negative_max_speed", func(c *Config) { c.MaxSpeed.X = -1 }, false},
		{"nan_gravity", func(c *Config) { c.Gravity.Y = math.NaN() }, false},
		{"negative_workers", func(c *Config) { c.Workers = -2 }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			_, err := NewWorld(cfg, WithLogger(quietLogger()))
			if c.ok && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if !c.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestAddBodyRejects(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	if _, err := w.AddBody(nil); !errors.Is(err, ErrDegenerateBody) {
		t.Fatalf("expected ErrDegenerateBody for nil, got %v", err)
	}
	if _, err := w.AddBody(&Body{AABB: geom.NewRect(0, 0, 0, 4)}); !errors.Is(err, ErrDegenerateBody) {
		t.Fatalf("expected ErrDegenerateBody for zero width, got %v", err)
	}
	if _, err := NewBody(Dynamic, geom.NewRect(0, 0, 4, -1)); !errors.Is(err, ErrDegenerateBody) {
		t.Fatalf("expected NewBody to reject negative height, got %v", err)
	}

	b := mustBody(t, Dynamic, 0, 0, 4, 4)
	mustAdd(t, w, b)
	if _, err := w.AddBody(b); !errors.Is(err, ErrBodyInWorld) {
		t.Fatalf("expected ErrBodyInWorld, got %v", err)
	}
}

func TestMembershipChangesAfterStep(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	b := mustBody(t, Dynamic, 0, 0, 4, 4)
	h := mustAdd(t, w, b)

	if w.Body(h) != nil || len(w.Bodies(Dynamic)) != 0 {
		t.Fatalf("body should not be visible before a step")
	}
	if !w.Step(common.StepSize) {
		t.Fatalf("expected a sub-step to run")
	}
	if w.Body(h) != b || len(w.Bodies(Dynamic)) != 1 {
		t.Fatalf("body should be visible after a step")
	}

	w.RemoveBody(h)
	if w.Body(h) != b {
		t.Fatalf("removal should not apply before the next step")
	}
	w.Step(common.StepSize)
	if w.Body(h) != nil || len(w.Bodies(Dynamic)) != 0 {
		t.Fatalf("body should be gone after the step")
	}
	if b.Handle().Valid() {
		t.Fatalf("removed body should have no handle")
	}

	h2 := mustAdd(t, w, b)
	if h2 == h {
		t.Fatalf("re-added body must get a fresh handle")
	}
	w.Flush()
	if w.Body(h) != nil || w.Body(h2) != b {
		t.Fatalf("stale handle resolved or fresh handle missing")
	}
}

func TestAddThenRemoveBeforeStep(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	b := mustBody(t, Static, 0, 0, 4, 4)
	h := mustAdd(t, w, b)
	w.RemoveBody(h)
	w.Flush()
	if w.Body(h) != nil || len(w.Bodies(Static)) != 0 {
		t.Fatalf("body added and removed in one window should not be present")
	}
	if _, err := w.AddBody(b); err != nil {
		t.Fatalf("body should be addable again: %v", err)
	}
}

func TestReplaceAndRemoveAll(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	mustAdd(t, w, mustBody(t, Dynamic, 0, 0, 4, 4))
	mustAdd(t, w, mustBody(t, Static, 10, 0, 4, 4))
	w.Flush()

	next := []*Body{mustBody(t, Kinetic, 0, 0, 8, 2)}
	if err := w.ReplaceBodies(next); err != nil {
		t.Fatalf("ReplaceBodies failed: %v", err)
	}
	w.Flush()
	if len(w.Bodies(Dynamic)) != 0 || len(w.Bodies(Static)) != 0 || len(w.Bodies(Kinetic)) != 1 {
		t.Fatalf("unexpected membership after replace")
	}

	w.RemoveAllBodies()
	w.Flush()
	count := 0
	w.Each(func(*Body) { count++ })
	if count != 0 {
		t.Fatalf("expected empty world, got %d bodies", count)
	}
}

func TestStepCarriesRemainder(t *testing.T) {
	build := func() (*World, *Body) {
		cfg := DefaultConfig()
		cfg.Gravity = cp.Vector{X: 0, Y: -900}
		w := newTestWorld(t, cfg)
		b := mustBody(t, Dynamic, 0, 100, 4, 4)
		b.Velocity = cp.Vector{X: 37, Y: 0}
		mustAdd(t, w, b)
		return w, b
	}

	whole, wb := build()
	parts, pb := build()

	if !whole.Step(common.StepSize) {
		t.Fatalf("exact StepSize should run one sub-step")
	}
	for i := 0; i < 3; i++ {
		if parts.Step(common.StepSize / 4) {
			t.Fatalf("partial delta %d should not step", i)
		}
	}
	if !parts.Step(common.StepSize / 4) {
		t.Fatalf("accumulated deltas should run one sub-step")
	}
	if wb.AABB != pb.AABB || wb.Velocity != pb.Velocity {
		t.Fatalf("expected identical state, got %v/%v and %v/%v", wb.AABB, wb.Velocity, pb.AABB, pb.Velocity)
	}
}

func TestStepIgnoresInvalidDelta(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if w.Step(d) {
			t.Fatalf("delta %v should not step", d)
		}
	}
}

func TestBodyRestsOnStaticFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileSize = 1
	cfg.Gravity = cp.Vector{X: 0, Y: -1}
	w := newTestWorld(t, cfg)

	floor := mustBody(t, Static, -50, 0, 100, 1)
	box := mustBody(t, Dynamic, 0, 20, 10, 10)
	mustAdd(t, w, floor)
	mustAdd(t, w, box)

	hits := 0
	w.OnCollision(func(body, other *Body, overlap geom.Rect) {
		if body == box && other == floor {
			hits++
		}
	})

	for i := 0; i < 100; i++ {
		w.Step(0.1)
	}

	y := box.AABB.Pos.Y
	if y >= 20 || y < 1-1e-6 || y > 1+1e-3 {
		t.Fatalf("expected box to rest at y=1, got %v", y)
	}
	if !box.Grounded {
		t.Fatalf("expected box to be grounded")
	}
	if hits == 0 {
		t.Fatalf("expected collision listener to fire")
	}
	if floor.AABB != geom.NewRect(-50, 0, 100, 1) {
		t.Fatalf("static floor moved to %v", floor.AABB)
	}
	resolved, _ := w.DebugCollisions()
	if len(resolved) == 0 {
		t.Fatalf("expected resolved overlaps in debug output")
	}
}

func TestCollisionListenerSeesResolvedPairs(t *testing.T) {
	cases := []struct {
		name       string
		x, vx      float64
		wantCalls  bool
		unresolved bool
	}{
		{"moving_into_block", 10.2, -60, true, false},
		{"resting_overlap", 5, 0, false, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Gravity = cp.Vector{}
			w := newTestWorld(t, cfg)

			block := mustBody(t, Static, 0, 0, 10, 10)
			box := mustBody(t, Dynamic, c.x, 0, 10, 10)
			box.Velocity = cp.Vector{X: c.vx, Y: 0}
			mustAdd(t, w, block)
			mustAdd(t, w, box)

			calls := 0
			w.OnCollision(func(body, other *Body, overlap geom.Rect) {
				panic("listener failure")
			})
			w.OnCollision(func(body, other *Body, overlap geom.Rect) {
				if body == box && other == block {
					calls++
				}
			})
			w.Step(common.StepSize)

			if (calls > 0) != c.wantCalls {
				t.Fatalf("expected listener calls %v, got %d", c.wantCalls, calls)
			}
			_, unresolved := w.DebugCollisions()
			if (len(unresolved) > 0) != c.unresolved {
				t.Fatalf("expected unresolved overlaps %v, got %v", c.unresolved, unresolved)
			}
		})
	}
}

func TestKineticCarriesRider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = cp.Vector{X: 0, Y: -100}
	w := newTestWorld(t, cfg)

	platform := mustBody(t, Kinetic, 0, 0, 40, 4)
	platform.Velocity = cp.Vector{X: 30, Y: 0}
	rider := mustBody(t, Dynamic, 10, 4, 4, 4)
	ph := mustAdd(t, w, platform)
	rh := mustAdd(t, w, rider)

	w.Step(common.StepSize)
	if rider.Parent() != ph {
		t.Fatalf("expected rider to attach to platform")
	}
	children := platform.Children()
	if len(children) != 1 || children[0] != rh {
		t.Fatalf("expected platform children [%v], got %v", rh, children)
	}

	start := rider.AABB.Pos.X - platform.AABB.Pos.X
	const steps = 120
	for i := 0; i < steps; i++ {
		w.Step(common.StepSize)
	}
	drift := start - (rider.AABB.Pos.X - platform.AABB.Pos.X)
	want := steps * common.FloatPrecision
	if math.Abs(drift-want) > 1e-6 {
		t.Fatalf("expected drift %v, got %v", want, drift)
	}
	if math.Abs(rider.AABB.Pos.Y-4) > 0.01 {
		t.Fatalf("rider should stay on top of the platform, y=%v", rider.AABB.Pos.Y)
	}
	if !rider.Grounded {
		t.Fatalf("rider should be grounded")
	}
}

func TestHookPanicIsIsolated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = cp.Vector{X: 0, Y: -100}
	cfg.Workers = 2
	w := newTestWorld(t, cfg)

	bad := mustBody(t, Dynamic, 0, 0, 4, 4)
	bad.Controller = ControllerFunc(func(float64, *Body) { panic("boom") })
	bad.StateWatcher = StateWatcherFunc(func(*Body) { panic("boom") })
	good := mustBody(t, Dynamic, 100, 0, 4, 4)
	watched := 0
	good.StateWatcher = StateWatcherFunc(func(*Body) { watched++ })
	mustAdd(t, w, bad)
	mustAdd(t, w, good)

	for i := 0; i < 10; i++ {
		w.Step(common.StepSize)
	}
	if good.AABB.Pos.Y >= 0 || bad.AABB.Pos.Y >= 0 {
		t.Fatalf("both bodies should keep falling, got %v and %v", good.AABB.Pos.Y, bad.AABB.Pos.Y)
	}
	if watched != 10 {
		t.Fatalf("expected 10 state watcher calls, got %d", watched)
	}
}

func TestWorkersMatchInline(t *testing.T) {
	run := func(workers int) []geom.Rect {
		cfg := DefaultConfig()
		cfg.Gravity = cp.Vector{X: 0, Y: -600}
		cfg.Workers = workers
		cfg.TileSize = 16
		w := newTestWorld(t, cfg)
		mustAdd(t, w, mustBody(t, Static, -200, -16, 400, 16))
		var bodies []*Body
		for i := 0; i < 8; i++ {
			b := mustBody(t, Dynamic, float64(i*20-80), float64(10+i*3), 8, 8)
			b.Velocity = cp.Vector{X: float64(i*10 - 40), Y: 0}
			bodies = append(bodies, b)
			mustAdd(t, w, b)
		}
		for i := 0; i < 240; i++ {
			w.Step(common.StepSize)
		}
		out := make([]geom.Rect, len(bodies))
		for i, b := range bodies {
			out[i] = b.AABB
		}
		return out
	}

	inline := run(1)
	parallel := run(4)
	for i := range inline {
		if inline[i] != parallel[i] {
			t.Fatalf("body %d diverged: %v vs %v", i, inline[i], parallel[i])
		}
	}
}

func TestGravityModifierAndToggle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = cp.Vector{X: 0, Y: -120}
	w := newTestWorld(t, cfg)

	normal := mustBody(t, Dynamic, 0, 0, 4, 4)
	double := mustBody(t, Dynamic, 10, 0, 4, 4)
	double.Props.GravityModifier = 2
	floating := mustBody(t, Dynamic, 20, 0, 4, 4)
	floating.Gravitational = false
	for _, b := range []*Body{normal, double, floating} {
		mustAdd(t, w, b)
	}
	w.Step(common.StepSize)

	if math.Abs(normal.Velocity.Y+1) > 1e-12 {
		t.Fatalf("expected vy -1, got %v", normal.Velocity.Y)
	}
	if math.Abs(double.Velocity.Y+2) > 1e-12 {
		t.Fatalf("expected vy -2, got %v", double.Velocity.Y)
	}
	if floating.Velocity.Y != 0 {
		t.Fatalf("expected non-gravitational body to keep vy 0, got %v", floating.Velocity.Y)
	}
}

func TestMaxSpeedClampKeepsSign(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	w.SetMaxSpeed(50, 50)
	b := mustBody(t, Dynamic, 0, 0, 4, 4)
	b.Gravitational = false
	b.Velocity = cp.Vector{X: -500, Y: 70}
	mustAdd(t, w, b)
	w.Step(common.StepSize)
	if b.Velocity != (cp.Vector{X: -50, Y: 50}) {
		t.Fatalf("expected clamped velocity (-50, 50), got %v", b.Velocity)
	}
}

func TestSetGravityAppliesNextStep(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	w.SetGravity(240, 0)
	if w.Gravity() != (cp.Vector{X: 240, Y: 0}) {
		t.Fatalf("expected gravity (240, 0), got %v", w.Gravity())
	}
	b := mustBody(t, Dynamic, 0, 0, 4, 4)
	mustAdd(t, w, b)
	w.Step(common.StepSize)
	if math.Abs(b.Velocity.X-2) > 1e-12 || b.Velocity.Y != 0 {
		t.Fatalf("expected velocity (2, 0), got %v", b.Velocity)
	}
}

package control

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/common"
	"github.com/milk9111/jump/geom"
	"github.com/milk9111/jump/physics"
)

type fixedGravity cp.Vector

func (g fixedGravity) Gravity() cp.Vector { return cp.Vector(g) }

const dt = common.StepSize

func newJumperBody(t *testing.T, count int) (*Jumper, *Input, *physics.Body) {
	t.Helper()
	in := &Input{}
	props := DefaultJumperProps()
	props.JumpCount = count
	j, err := NewJumper(in, fixedGravity{X: 0, Y: -900}, props)
	if err != nil {
		t.Fatalf("NewJumper failed: %v", err)
	}
	b, err := physics.NewBody(physics.Dynamic, geom.NewRect(0, 0, 8, 8))
	if err != nil {
		t.Fatalf("NewBody failed: %v", err)
	}
	return j, in, b
}

// press runs one update with jump held; it is a new press only if jump was
// released before.
func press(j *Jumper, in *Input, b *physics.Body) {
	in.Set(Jump, true)
	j.Update(dt, b)
}

// hold runs one update with the current input.
func hold(j *Jumper, in *Input, b *physics.Body) {
	j.Update(dt, b)
}

func TestJumperPropsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*JumperProps)
	}{
		{"negative_count", func(p *JumperProps) { p.JumpCount = -1 }},
		{"negative_grace", func(p *JumperProps) { p.GraceWindow = -0.1 }},
		{"nan_window", func(p *JumperProps) { p.VariableHeightWindow = math.NaN() }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := DefaultJumperProps()
			c.mutate(&p)
			if _, err := NewJumper(nil, nil, p); !errors.Is(err, ErrInvalidJumper) {
				t.Fatalf("expected ErrInvalidJumper, got %v", err)
			}
		})
	}
}

func TestJumperGroundJump(t *testing.T) {
	j, in, b := newJumperBody(t, 2)
	b.Grounded = true
	press(j, in, b)
	if b.Velocity.Y != j.Props.JumpStrength {
		t.Fatalf("expected vy %v, got %v", j.Props.JumpStrength, b.Velocity.Y)
	}
	if !j.Jumping() || j.JumpsRemaining() != 1 || j.JumpsPerformed() != 1 {
		t.Fatalf("unexpected jump state: jumping=%v remaining=%d performed=%d", j.Jumping(), j.JumpsRemaining(), j.JumpsPerformed())
	}

	// Holding keeps the boost inside the variable height window.
	b.Grounded = false
	b.Velocity.Y = 100
	hold(j, in, b)
	if b.Velocity.Y != j.Props.JumpStrength {
		t.Fatalf("holding jump should keep boosting, got %v", b.Velocity.Y)
	}

	// Releasing ends it.
	in.Set(Jump, false)
	b.Velocity.Y = 100
	j.Update(dt, b)
	if j.Jumping() || b.Velocity.Y != 100 {
		t.Fatalf("released jump should stop boosting, jumping=%v vy=%v", j.Jumping(), b.Velocity.Y)
	}
}

func TestJumperVariableHeightWindowExpires(t *testing.T) {
	j, in, b := newJumperBody(t, 1)
	b.Grounded = true
	press(j, in, b)
	b.Grounded = false
	steps := int(j.Props.VariableHeightWindow/dt) + 2
	for i := 0; i < steps; i++ {
		hold(j, in, b)
	}
	if j.Jumping() {
		t.Fatalf("boost should end once the window is spent")
	}
}

func TestJumperCoyoteTime(t *testing.T) {
	j, in, b := newJumperBody(t, 1)
	b.Grounded = true
	hold(j, in, b)
	b.Grounded = false
	for i := 0; i < 5; i++ {
		hold(j, in, b)
	}
	press(j, in, b)
	if !j.Jumping() || b.Velocity.Y != j.Props.JumpStrength {
		t.Fatalf("jump inside grace window should count as a ground jump")
	}
}

func TestJumperMissedGraceWindow(t *testing.T) {
	t.Run("single_credit_fails", func(t *testing.T) {
		j, in, b := newJumperBody(t, 1)
		b.Grounded = true
		hold(j, in, b)
		b.Grounded = false
		for i := 0; i < 20; i++ {
			hold(j, in, b)
		}
		press(j, in, b)
		if j.Jumping() || b.Velocity.Y != 0 {
			t.Fatalf("late jump with one credit should fail, vy=%v", b.Velocity.Y)
		}
	})

	t.Run("two_credits_spends_both", func(t *testing.T) {
		j, in, b := newJumperBody(t, 2)
		b.Grounded = true
		hold(j, in, b)
		b.Grounded = false
		for i := 0; i < 20; i++ {
			hold(j, in, b)
		}
		press(j, in, b)
		if !j.Jumping() || j.JumpsPerformed() != 2 || j.JumpsRemaining() != 0 {
			t.Fatalf("expected double credit spend, performed=%d remaining=%d", j.JumpsPerformed(), j.JumpsRemaining())
		}
		if b.Velocity.Y != j.Props.DoubleJumpStrength {
			t.Fatalf("expected double jump strength, got %v", b.Velocity.Y)
		}
	})
}

func TestJumperDoubleJump(t *testing.T) {
	j, in, b := newJumperBody(t, 2)
	b.Grounded = true
	press(j, in, b)
	b.Grounded = false
	in.Set(Jump, false)
	j.Update(dt, b)

	press(j, in, b)
	if !j.Jumping() || j.JumpsRemaining() != 0 || b.Velocity.Y != j.Props.DoubleJumpStrength {
		t.Fatalf("expected double jump, remaining=%d vy=%v", j.JumpsRemaining(), b.Velocity.Y)
	}
}

func TestJumperHeldPressAcrossSubSteps(t *testing.T) {
	j, in, b := newJumperBody(t, 2)
	b.Grounded = true
	in.Set(Jump, true)
	for frame := 0; frame < 4; frame++ {
		for sub := 0; sub < 2; sub++ {
			j.Update(dt, b)
			b.Grounded = false
		}
	}
	in.Set(Jump, false)
	for i := 0; i < 60; i++ {
		j.Update(dt, b)
	}
	if j.JumpsPerformed() != 1 || j.JumpsRemaining() != 1 {
		t.Fatalf("one press should jump once, performed=%d remaining=%d", j.JumpsPerformed(), j.JumpsRemaining())
	}
}

func TestJumperBuffersPressBeforeLanding(t *testing.T) {
	j, in, b := newJumperBody(t, 1)
	b.Grounded = true
	press(j, in, b)
	b.Grounded = false
	in.Set(Jump, false)
	j.Update(dt, b)

	press(j, in, b)
	if j.Jumping() {
		t.Fatalf("no credits left, jump should wait for landing")
	}
	b.Velocity.Y = -50
	b.Grounded = true
	hold(j, in, b)
	if !j.Jumping() || b.Velocity.Y != j.Props.JumpStrength {
		t.Fatalf("buffered press should jump on landing, vy=%v", b.Velocity.Y)
	}
}

func TestJumperDropsStaleBuffer(t *testing.T) {
	j, in, b := newJumperBody(t, 1)
	b.Grounded = true
	press(j, in, b)
	b.Grounded = false
	in.Set(Jump, false)
	j.Update(dt, b)

	press(j, in, b)
	in.Set(Jump, false)
	for i := 0; i < int(j.Props.PreRequestWindow/dt)+5; i++ {
		hold(j, in, b)
	}
	b.Grounded = true
	b.Velocity.Y = -50
	hold(j, in, b)
	if j.Jumping() || b.Velocity.Y != -50 {
		t.Fatalf("stale press should not jump, vy=%v", b.Velocity.Y)
	}
}

func TestJumperCeilingStopsJump(t *testing.T) {
	j, in, b := newJumperBody(t, 1)
	b.Grounded = true
	press(j, in, b)
	b.Grounded = false
	b.LastResolution = cp.Vector{X: 0, Y: -2}
	b.Velocity.Y = 100
	hold(j, in, b)
	if j.Jumping() || b.Velocity.Y != 100 {
		t.Fatalf("hitting the ceiling should stop the jump, vy=%v", b.Velocity.Y)
	}
}

func TestBasicControllerAccelerates(t *testing.T) {
	in := &Input{}
	c := &BasicController{Input: in}
	b, _ := physics.NewBody(physics.Dynamic, geom.NewRect(0, 0, 8, 8))
	b.Props.Acceleration = 1200
	b.Props.Deceleration = 2400
	b.Props.MaxSpeed = cp.Vector{X: 100, Y: 0}
	b.Grounded = true

	in.Set(Right, true)
	c.Update(dt, b)
	if math.Abs(b.Velocity.X-10) > 1e-9 {
		t.Fatalf("expected vx 10, got %v", b.Velocity.X)
	}
	for i := 0; i < 50; i++ {
		c.Update(dt, b)
	}
	if b.Velocity.X != 100 {
		t.Fatalf("expected vx capped at 100, got %v", b.Velocity.X)
	}

	in.Set(Right, false)
	for i := 0; i < 10; i++ {
		c.Update(dt, b)
	}
	if b.Velocity.X != 0 {
		t.Fatalf("expected deceleration to stop at 0, got %v", b.Velocity.X)
	}
}

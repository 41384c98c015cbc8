package control

import (
	"fmt"

	"github.com/milk9111/jump/common"
	"github.com/milk9111/jump/physics"
)

// State is a control state of a jumping body.
type State int

const (
	Grounded State = iota
	Falling
	Jumping
	WallSliding
)

func (s State) String() string {
	switch s {
	case Grounded:
		return "grounded"
	case Falling:
		return "falling"
	case Jumping:
		return "jumping"
	case WallSliding:
		return "wall_sliding"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Machine is a body state watcher that moves between control states from
// resolution results and input. It is not safe to share between bodies.
type Machine struct {
	Input ControlMap
	Props JumperProps
	// OnTransition, if set, is called after every state change.
	OnTransition func(b *physics.Body, from, to State)

	state         State
	jump          latch
	jumpPressed   bool
	wallLeft      bool
	wallDirection float64
}

// NewMachine returns a machine starting in Falling.
func NewMachine(input ControlMap, props JumperProps) *Machine {
	return &Machine{Input: input, Props: props, state: Falling}
}

func (m *Machine) State() State {
	return m.state
}

// WallLeft reports which side the wall is on while wall sliding.
func (m *Machine) WallLeft() bool {
	return m.wallLeft
}

// Set forces the machine into s, running exit and enter hooks.
func (m *Machine) Set(b *physics.Body, s State) {
	if m == nil || b == nil {
		return
	}
	m.transition(b, s)
}

func (m *Machine) Update(b *physics.Body) {
	if m == nil || b == nil {
		return
	}
	m.jumpPressed = m.Input != nil && m.jump.rise(m.Input.Pressed(Jump))
	if next := m.next(b); next != m.state {
		m.transition(b, next)
	}
}

func (m *Machine) transition(b *physics.Body, to State) {
	from := m.state
	m.exit(b)
	m.state = to
	m.enter(b)
	if m.OnTransition != nil {
		m.OnTransition(b, from, to)
	}
}

func (m *Machine) enter(b *physics.Body) {
	switch m.state {
	case WallSliding:
		m.wallLeft = b.LastResolution.X > 0
		m.wallDirection = common.WallSlideForce
		if m.wallLeft {
			m.wallDirection = -common.WallSlideForce
		}
		b.Velocity.X = m.wallDirection
	}
}

func (m *Machine) exit(b *physics.Body) {
	if m.state == WallSliding {
		m.wallDirection = 0
	}
}

// next runs the current state's update and returns the state to move to.
func (m *Machine) next(b *physics.Body) State {
	switch m.state {
	case Grounded:
		if b.Grounded {
			return Grounded
		}
		if b.Velocity.Y > 0 {
			return Jumping
		}
		return Falling
	case Jumping:
		if b.Grounded {
			return Grounded
		}
		if b.Velocity.Y <= 0 {
			return Falling
		}
		return Jumping
	case Falling:
		if b.Grounded {
			return Grounded
		}
		if b.Velocity.Y > 0 {
			return Jumping
		}
		if m.Props.WallSlideEnabled && m.pressingIntoWall(b) {
			return WallSliding
		}
		return Falling
	case WallSliding:
		return m.wallSlide(b)
	default:
		return Falling
	}
}

func (m *Machine) pressingIntoWall(b *physics.Body) bool {
	if m.Input == nil {
		return false
	}
	switch {
	case b.LastResolution.X > 0:
		return m.Input.Pressed(Left)
	case b.LastResolution.X < 0:
		return m.Input.Pressed(Right)
	default:
		return false
	}
}

func (m *Machine) wallSlide(b *physics.Body) State {
	if b.Grounded {
		return Grounded
	}
	if !common.Opposing(m.wallDirection, b.LastResolution.X) {
		b.Velocity.X = 0
		return Falling
	}
	if m.Input != nil {
		if m.Props.WallJumpEnabled && m.jumpPressed {
			b.Velocity.X = m.Props.WallJumpLaunchPower
			if !m.wallLeft {
				b.Velocity.X = -b.Velocity.X
			}
			return Jumping
		}
		away := Left
		if m.wallLeft {
			away = Right
		}
		if m.Input.Pressed(away) {
			return Falling
		}
	}
	b.Velocity.X = m.wallDirection
	switch speed := m.Props.WallMaxSlideSpeed; {
	case speed == 0:
		b.Velocity.Y = 0
	case speed > 0 && b.Velocity.Y < -speed:
		b.Velocity.Y = -speed
	}
	return WallSliding
}

package control

import (
	"math"

	"github.com/milk9111/jump/common"
	"github.com/milk9111/jump/physics"
)

// BasicController drives horizontal velocity from left/right input using the
// body's acceleration properties. Air rates apply while the body is not
// grounded.
type BasicController struct {
	Input ControlMap
}

func (c *BasicController) Update(delta float64, b *physics.Body) {
	if c == nil || c.Input == nil || b == nil {
		return
	}
	p := b.Props
	accel, decel := p.Acceleration, p.Deceleration
	if !b.Grounded {
		accel, decel = p.AirAcceleration, p.AirDeceleration
	}
	limit := p.MaxSpeed.X

	switch horizontal(c.Input) {
	case -1:
		if b.Velocity.X > -limit {
			b.Velocity.X = math.Max(b.Velocity.X-accel*delta, -limit)
		}
	case 1:
		if b.Velocity.X < limit {
			b.Velocity.X = math.Min(b.Velocity.X+accel*delta, limit)
		}
	default:
		b.Velocity.X = common.Shrink(b.Velocity.X, decel*delta)
	}
}

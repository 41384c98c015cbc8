package control

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/common"
	"github.com/milk9111/jump/physics"
)

var ErrInvalidJumper = errors.New("invalid jumper properties")

// JumperProps configures jumping and wall movement.
type JumperProps struct {
	JumpCount          int
	JumpStrength       float64
	DoubleJumpStrength float64
	// VariableHeightWindow is how long, in seconds, holding jump keeps the
	// jump velocity applied.
	VariableHeightWindow float64
	// GraceWindow is how long after leaving the ground a jump still counts
	// as a ground jump.
	GraceWindow float64
	// PreRequestWindow is how long before landing a jump press is buffered.
	PreRequestWindow     float64
	HittingHeadStopsJump bool

	WallSlideEnabled    bool
	WallJumpEnabled     bool
	WallJumpLaunchPower float64
	// WallMaxSlideSpeed caps descent while wall sliding. Zero pins the body
	// in place; a negative value leaves the fall speed alone.
	WallMaxSlideSpeed float64
}

func DefaultJumperProps() JumperProps {
	return JumperProps{
		JumpCount:            2,
		JumpStrength:         320,
		DoubleJumpStrength:   280,
		VariableHeightWindow: 0.2,
		GraceWindow:          0.1,
		PreRequestWindow:     0.1,
		HittingHeadStopsJump: true,
		WallSlideEnabled:     true,
		WallJumpEnabled:      true,
		WallJumpLaunchPower:  200,
		WallMaxSlideSpeed:    60,
	}
}

func (p JumperProps) Validate() error {
	if p.JumpCount < 0 {
		return fmt.Errorf("control: jump count %d: %w", p.JumpCount, ErrInvalidJumper)
	}
	for name, v := range map[string]float64{
		"variable height window": p.VariableHeightWindow,
		"grace window":           p.GraceWindow,
		"pre-request window":     p.PreRequestWindow,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("control: %s %v: %w", name, v, ErrInvalidJumper)
		}
	}
	return nil
}

// GravitySource supplies the current gravity, usually a *physics.World.
type GravitySource interface {
	Gravity() cp.Vector
}

// Jumper is a body controller adding jump credits, coyote time, buffered
// presses and variable jump height on top of BasicController.
type Jumper struct {
	BasicController
	Props   JumperProps
	Gravity GravitySource

	jump            latch
	requestJump     bool
	jumping         bool
	variableWindow  float64
	gracePeriod     float64
	preRequestTimer float64
	jumpsPerformed  int
	jumpsRemaining  int
}

func NewJumper(input ControlMap, gravity GravitySource, props JumperProps) (*Jumper, error) {
	if err := props.Validate(); err != nil {
		return nil, err
	}
	return &Jumper{
		BasicController: BasicController{Input: input},
		Props:           props,
		Gravity:         gravity,
		jumpsRemaining:  props.JumpCount,
	}, nil
}

func (j *Jumper) Jumping() bool       { return j.jumping }
func (j *Jumper) JumpsRemaining() int { return j.jumpsRemaining }
func (j *Jumper) JumpsPerformed() int { return j.jumpsPerformed }

// RequestJump queues a jump as if the jump action had just been pressed.
func (j *Jumper) RequestJump() {
	j.requestJump = true
	j.preRequestTimer = 0
}

// StopJump ends the variable height boost.
func (j *Jumper) StopJump() {
	j.jumping = false
}

func (j *Jumper) gravity() cp.Vector {
	if j.Gravity == nil {
		return cp.Vector{}
	}
	return j.Gravity.Gravity()
}

func (j *Jumper) Update(delta float64, b *physics.Body) {
	if j == nil || b == nil {
		return
	}
	j.BasicController.Update(delta, b)
	if in := j.Input; in != nil {
		pressed := in.Pressed(Jump)
		if j.jump.rise(pressed) {
			j.RequestJump()
		}
		if !pressed {
			j.StopJump()
		}
	}

	g := j.gravity()
	grounded := b.Grounded || math.Abs(g.Y-b.LastResolution.Y) > math.Abs(g.Y)
	if grounded {
		j.jumpsPerformed = 0
		j.jumpsRemaining = j.Props.JumpCount
		j.gracePeriod = 0
		j.variableWindow = 0
	} else {
		if j.jumping {
			j.variableWindow += delta
		} else if j.jumpsPerformed == 0 {
			j.gracePeriod += delta
		}
		if j.jumpsRemaining == 0 && j.requestJump {
			j.preRequestTimer += delta
		} else {
			j.preRequestTimer = 0
		}
	}

	if j.requestJump && !j.jumping {
		j.tryJump(grounded)
	}
	if grounded {
		j.preRequestTimer = 0
	}

	if j.Props.HittingHeadStopsJump && math.Abs(g.Y-b.LastResolution.Y) < math.Abs(g.Y) {
		j.jumping = false
	}
	if !j.jumping || j.variableWindow > j.Props.VariableHeightWindow {
		j.jumping = false
		return
	}
	strength := j.Props.JumpStrength
	if j.jumpsPerformed > 1 {
		strength = j.Props.DoubleJumpStrength
	}
	if common.SameSign(g.Y, strength) {
		strength = -strength
	}
	b.Velocity.Y = strength
}

func (j *Jumper) tryJump(grounded bool) {
	valid := false
	switch {
	case grounded && j.preRequestTimer <= j.Props.PreRequestWindow:
		valid = true
	case !grounded && j.jumpsPerformed == 0 && j.gracePeriod <= j.Props.GraceWindow:
		valid = true
	case j.jumpsPerformed > 0 && j.jumpsRemaining > 0:
		valid = true
	}

	switch {
	case valid:
		j.jumpsPerformed++
		j.jumpsRemaining--
		j.startJump()
	case j.jumpsPerformed == 0 && j.jumpsRemaining >= 2 && j.gracePeriod > j.Props.GraceWindow:
		// Missing the grace window costs the ground jump as well.
		j.jumpsPerformed += 2
		j.jumpsRemaining -= 2
		j.startJump()
	case grounded, j.jumpsRemaining > 0, j.preRequestTimer > j.Props.PreRequestWindow:
		j.requestJump = false
	}
}

func (j *Jumper) startJump() {
	j.jumping = true
	j.variableWindow = 0
	j.requestJump = false
}

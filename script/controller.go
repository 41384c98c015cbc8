package script

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/jump/physics"
	"github.com/sirupsen/logrus"
)

// Globals visible to platform scripts. A script reads any of them and
// assigns vx and vy to steer its body.
var globals = []string{"delta", "elapsed", "x", "y", "w", "h", "vx", "vy"}

// Controller drives a body's velocity from a tengo script. It implements
// physics.Controller. A Controller belongs to one body; use Clone for others.
type Controller struct {
	name     string
	compiled *tengo.Compiled
	elapsed  float64
	log      logrus.FieldLogger
}

type Option func(*Controller)

func WithName(name string) Option {
	return func(c *Controller) { c.name = name }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// New compiles src once.
func New(src []byte, opts ...Option) (*Controller, error) {
	c := &Controller{name: "script", log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(c)
	}

	s := tengo.NewScript(src)
	for _, g := range globals {
		if err := s.Add(g, 0.0); err != nil {
			return nil, fmt.Errorf("script: %s: add %s: %w", c.name, g, err)
		}
	}
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: %s: compile: %w", c.name, err)
	}
	c.compiled = compiled
	return c, nil
}

// Clone returns a controller sharing the compiled program with fresh state.
// opts override the name and logger carried over from c.
func (c *Controller) Clone(opts ...Option) *Controller {
	clone := &Controller{
		name:     c.name,
		compiled: c.compiled.Clone(),
		log:      c.log,
	}
	for _, opt := range opts {
		opt(clone)
	}
	return clone
}

func (c *Controller) Elapsed() float64 {
	return c.elapsed
}

func (c *Controller) Update(delta float64, b *physics.Body) {
	if c == nil || c.compiled == nil || b == nil {
		return
	}
	c.elapsed += delta
	if err := c.run(delta, b); err != nil {
		c.log.WithFields(logrus.Fields{
			"script": c.name,
			"body":   b.Handle(),
		}).Warnf("script: run failed: %v", err)
	}
}

// run executes the program once. A panic inside the VM, such as one raised by
// a host function, comes back as an error and leaves the velocity untouched.
func (c *Controller) run(delta float64, b *physics.Body) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	values := map[string]float64{
		"delta":   delta,
		"elapsed": c.elapsed,
		"x":       b.AABB.Pos.X,
		"y":       b.AABB.Pos.Y,
		"w":       b.AABB.W,
		"h":       b.AABB.H,
		"vx":      b.Velocity.X,
		"vy":      b.Velocity.Y,
	}
	for name, v := range values {
		if err = c.compiled.Set(name, v); err != nil {
			return err
		}
	}
	if err = c.compiled.Run(); err != nil {
		return err
	}

	vx, err := number(c.compiled.Get("vx"))
	if err != nil {
		return fmt.Errorf("vx: %w", err)
	}
	vy, err := number(c.compiled.Get("vy"))
	if err != nil {
		return fmt.Errorf("vy: %w", err)
	}
	b.Velocity.X = vx
	b.Velocity.Y = vy
	return nil
}

func number(v *tengo.Variable) (float64, error) {
	switch v.ValueType() {
	case "float", "int":
		return v.Float(), nil
	default:
		return 0, fmt.Errorf("expected a number, got %s", v.ValueType())
	}
}

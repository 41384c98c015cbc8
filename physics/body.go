package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/geom"
)

// BodyType classifies how a body takes part in the simulation.
type BodyType int

const (
	// Dynamic bodies are moved by gravity and controllers and collide with
	// everything.
	Dynamic BodyType = iota
	// Kinetic bodies move on their own and push dynamic bodies, but are never
	// resolved themselves.
	Kinetic
	// Static bodies never move.
	Static
)

func (t BodyType) String() string {
	switch t {
	case Dynamic:
		return "dynamic"
	case Kinetic:
		return "kinetic"
	case Static:
		return "static"
	default:
		return fmt.Sprintf("BodyType(%d)", int(t))
	}
}

// Controller updates a body's velocity or intent once per sub-step, before
// the body is moved.
type Controller interface {
	Update(delta float64, b *Body)
}

// StateWatcher consumes a body's fully resolved state once per sub-step.
type StateWatcher interface {
	Update(b *Body)
}

type ControllerFunc func(delta float64, b *Body)

func (f ControllerFunc) Update(delta float64, b *Body) { f(delta, b) }

type StateWatcherFunc func(b *Body)

func (f StateWatcherFunc) Update(b *Body) { f(b) }

// Properties tune how controllers accelerate a body.
type Properties struct {
	Acceleration    float64
	AirAcceleration float64
	Deceleration    float64
	AirDeceleration float64
	// MaxSpeed caps controller driven speed. The world wide cap still applies.
	MaxSpeed cp.Vector
	// GravityModifier scales world gravity for this body. Zero means 1.
	GravityModifier float64
}

func DefaultProperties() Properties {
	return Properties{
		MaxSpeed:        cp.Vector{X: 300, Y: 0},
		GravityModifier: 1,
	}
}

func (p Properties) gravityScale() float64 {
	if p.GravityModifier == 0 {
		return 1
	}
	return p.GravityModifier
}

// Body is the unit of simulation. Motion and flag fields are public so
// controllers and state watchers can drive them directly.
type Body struct {
	Type    BodyType
	AABB    geom.Rect
	Refined *geom.Triangle

	Velocity cp.Vector
	// LastAttempt is the translation attempted this step before resolution.
	LastAttempt cp.Vector
	// LastResolution is the correction applied after this step's collisions.
	LastResolution cp.Vector
	// LastPosition is where the body was before this step's move.
	LastPosition cp.Vector

	Active           bool
	Gravitational    bool
	Grounded         bool
	ResolutionLocked bool

	Props        Properties
	Controller   Controller
	StateWatcher StateWatcher
	UserData     any

	handle   Handle
	parent   Handle
	children []Handle
	tile     *Tile
}

// NewBody returns an active body of type t occupying r. Dynamic bodies are
// gravitational by default.
func NewBody(t BodyType, r geom.Rect) (*Body, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("physics: new %s body %v: %w", t, r, ErrDegenerateBody)
	}
	return &Body{
		Type:          t,
		AABB:          r,
		Active:        true,
		Gravitational: t == Dynamic,
		Props:         DefaultProperties(),
	}, nil
}

// Handle returns the body's handle, or the zero Handle if it is not part of
// a world.
func (b *Body) Handle() Handle {
	return b.handle
}

// Parent returns the kinetic body this body rode during the last step.
func (b *Body) Parent() Handle {
	return b.parent
}

// Children returns the bodies riding this body after the last step.
func (b *Body) Children() []Handle {
	return append([]Handle(nil), b.children...)
}

// Tile returns the tile descriptor for grid bodies, nil otherwise.
func (b *Body) Tile() *Tile {
	return b.tile
}

func (b *Body) addChild(h Handle) {
	for _, c := range b.children {
		if c == h {
			return
		}
	}
	b.children = append(b.children, h)
}

func (b *Body) String() string {
	return fmt.Sprintf("%s body %s at %v", b.Type, b.handle, b.AABB)
}

package common

const (
	// StepSize is the fixed simulation sub-step in seconds.
	StepSize = 1.0 / 120.0

	// FloatPrecision is the tolerance used when comparing resolved positions
	// and when shrinking platform motion handed to riding bodies.
	FloatPrecision = 0.0001

	DefaultTileSize = 32
	DefaultMaxSpeed = 2000.0

	// WallSlideForce is the horizontal speed used to keep a wall-sliding
	// body pressed against the wall so contact keeps being detected.
	WallSlideForce = 60.0

	// MaxWalkableSlope is the steepest slope, in degrees from flat, that is
	// resolved straight up instead of along the surface normal.
	MaxWalkableSlope = 30.0
)

package geom

import "github.com/jakecoffman/cp"

// Direction is a bitmask of the four grid neighbors.
type Direction uint8

const (
	Right Direction = 1 << iota
	Left
	Up
	Down
)

func (d Direction) Has(o Direction) bool {
	return d&o != 0
}

// DirectionOf maps a cardinal unit vector to its direction bit. Any other
// vector maps to 0.
func DirectionOf(v cp.Vector) Direction {
	switch {
	case v.X > 0 && v.Y == 0:
		return Right
	case v.X < 0 && v.Y == 0:
		return Left
	case v.Y > 0 && v.X == 0:
		return Up
	case v.Y < 0 && v.X == 0:
		return Down
	default:
		return 0
	}
}

func (d Direction) String() string {
	out := ""
	for _, item := range []struct {
		bit  Direction
		name string
	}{{Right, "R"}, {Left, "L"}, {Up, "U"}, {Down, "D"}} {
		if d.Has(item.bit) {
			out += item.name
		}
	}
	if out == "" {
		return "-"
	}
	return out
}

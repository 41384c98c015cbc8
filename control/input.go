package control

import "fmt"

// Action is a logical player input.
type Action int

const (
	Left Action = iota
	Right
	Up
	Down
	Jump
	actionCount
)

func (a Action) String() string {
	switch a {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	case Jump:
		return "jump"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Actions lists every action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, actionCount)
	for a := Action(0); a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

// ControlMap reports which player actions are held.
type ControlMap interface {
	Pressed(a Action) bool
}

// Input is a ControlMap fed by the host once per frame. It is read during
// world steps and must not be written while a step runs.
type Input struct {
	cur [actionCount]bool
}

func (in *Input) Set(a Action, pressed bool) {
	if a < 0 || a >= actionCount {
		return
	}
	in.cur[a] = pressed
}

// Reset releases every action.
func (in *Input) Reset() {
	in.cur = [actionCount]bool{}
}

func (in *Input) Pressed(a Action) bool {
	if in == nil || a < 0 || a >= actionCount {
		return false
	}
	return in.cur[a]
}

// horizontal returns -1, 0 or 1 for the left/right actions held on m.
func horizontal(m ControlMap) float64 {
	left, right := m.Pressed(Left), m.Pressed(Right)
	switch {
	case left && !right:
		return -1
	case right && !left:
		return 1
	default:
		return 0
	}
}

// latch turns a held action into one press per release-to-press transition.
// A world step may run several sub-steps per frame; only the first sees the
// press.
type latch struct {
	held bool
}

func (l *latch) rise(pressed bool) bool {
	r := pressed && !l.held
	l.held = pressed
	return r
}

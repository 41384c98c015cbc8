package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/jump/control"
)

var keymap = map[control.Action][]ebiten.Key{
	control.Left:  {ebiten.KeyA, ebiten.KeyLeft},
	control.Right: {ebiten.KeyD, ebiten.KeyRight},
	control.Up:    {ebiten.KeyW, ebiten.KeyUp},
	control.Down:  {ebiten.KeyS, ebiten.KeyDown},
	control.Jump:  {ebiten.KeySpace},
}

const stickDeadzone = 0.3

// pressed polls the keyboard and the first gamepad.
func pressed(a control.Action) bool {
	for _, k := range keymap[a] {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}

	ids := ebiten.GamepadIDs()
	if len(ids) == 0 {
		return false
	}
	gid := ids[0]
	switch a {
	case control.Left:
		return ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal) < -stickDeadzone ||
			ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonLeftLeft)
	case control.Right:
		return ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal) > stickDeadzone ||
			ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonLeftRight)
	case control.Jump:
		return ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonRightBottom)
	}
	return false
}

package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/inference-sim/traffic-sim/sim"
)

// Keyboard reads the arrow keys (or WASD) as a sim.InputProvider. Steering
// wins over throttle when both are held, since a tick carries one action.
type Keyboard struct {
	pressed func(ebiten.Key) bool
}

// NewKeyboard returns a Keyboard bound to the live ebiten key state.
func NewKeyboard() *Keyboard {
	return &Keyboard{pressed: ebiten.IsKeyPressed}
}

func (k *Keyboard) Poll() sim.Action {
	return actionFor(k.pressed)
}

func actionFor(pressed func(ebiten.Key) bool) sim.Action {
	held := func(keys ...ebiten.Key) bool {
		for _, key := range keys {
			if pressed(key) {
				return true
			}
		}
		return false
	}
	switch {
	case held(ebiten.KeyArrowLeft, ebiten.KeyA):
		return sim.ActionLeft
	case held(ebiten.KeyArrowRight, ebiten.KeyD):
		return sim.ActionRight
	case held(ebiten.KeyArrowUp, ebiten.KeyW):
		return sim.ActionAccelerate
	case held(ebiten.KeyArrowDown, ebiten.KeyS):
		return sim.ActionBrake
	}
	return sim.ActionNoop
}

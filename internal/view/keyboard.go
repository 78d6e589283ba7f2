package view

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
)

// KeyboardSource turns held keys into intents for whoever's turn it is.
// Holding space charges; releasing it fires.
type KeyboardSource struct {
	pressed func(ebiten.Key) bool

	charging bool
	lastTick int
}

// NewKeyboardSource reads the live ebiten keyboard state.
func NewKeyboardSource() *KeyboardSource {
	return &KeyboardSource{pressed: ebiten.IsKeyPressed, lastTick: -2}
}

func (k *KeyboardSource) down(keys ...ebiten.Key) bool {
	for _, key := range keys {
		if k.pressed(key) {
			return true
		}
	}
	return false
}

// Poll implements game.IntentSource.
func (k *KeyboardSource) Poll(snap game.Snapshot, _ int) (game.Intent, bool) {
	// A gap in polled ticks means a new turn; a charge never carries over.
	if snap.Tick != k.lastTick+1 {
		k.charging = false
	}
	k.lastTick = snap.Tick

	in := game.Intent{
		MoveLeft:  k.down(ebiten.KeyA, ebiten.KeyArrowLeft),
		MoveRight: k.down(ebiten.KeyD, ebiten.KeyArrowRight),
		Jump:      k.down(ebiten.KeyEnter, ebiten.KeyW),
	}
	switch {
	case k.down(ebiten.KeyArrowUp):
		in.AimDelta = 1
	case k.down(ebiten.KeyArrowDown):
		in.AimDelta = -1
	}

	held := k.pressed(ebiten.KeySpace)
	in.Charging = held
	in.Fire = k.charging && !held
	k.charging = held
	return in, true
}

package view

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"

	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
)

// fakeKeys lets tests hold keys down without a window.
type fakeKeys map[ebiten.Key]bool

func (f fakeKeys) pressed(k ebiten.Key) bool { return f[k] }

func newTestKeyboard(keys fakeKeys) *KeyboardSource {
	return &KeyboardSource{pressed: keys.pressed, lastTick: -2}
}

func TestKeyboard_Movement(t *testing.T) {
	keys := fakeKeys{ebiten.KeyArrowLeft: true, ebiten.KeyArrowUp: true}
	k := newTestKeyboard(keys)

	in, ok := k.Poll(game.Snapshot{Tick: 1}, 0)
	assert.True(t, ok)
	assert.True(t, in.MoveLeft)
	assert.False(t, in.MoveRight)
	assert.Equal(t, 1.0, in.AimDelta)
	assert.False(t, in.Fire)
}

func TestKeyboard_ReleaseFires(t *testing.T) {
	keys := fakeKeys{ebiten.KeySpace: true}
	k := newTestKeyboard(keys)

	for tick := 1; tick <= 3; tick++ {
		in, _ := k.Poll(game.Snapshot{Tick: tick}, 0)
		assert.True(t, in.Charging)
		assert.False(t, in.Fire)
	}

	keys[ebiten.KeySpace] = false
	in, _ := k.Poll(game.Snapshot{Tick: 4}, 0)
	assert.True(t, in.Fire)
	assert.False(t, in.Charging)

	in, _ = k.Poll(game.Snapshot{Tick: 5}, 0)
	assert.False(t, in.Fire, "one release, one shot")
}

func TestKeyboard_ChargeDoesNotCarryAcrossTurns(t *testing.T) {
	keys := fakeKeys{ebiten.KeySpace: true}
	k := newTestKeyboard(keys)
	k.Poll(game.Snapshot{Tick: 1}, 0)
	k.Poll(game.Snapshot{Tick: 2}, 0)

	// The next poll comes turns later with space already released.
	keys[ebiten.KeySpace] = false
	in, _ := k.Poll(game.Snapshot{Tick: 300}, 1)
	assert.False(t, in.Fire)
}

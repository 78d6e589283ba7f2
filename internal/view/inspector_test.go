package view

import (
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
)

func inspectSnapshot() game.Snapshot {
	return game.Snapshot{
		Current: 1,
		Combatants: []game.CombatantView{
			{ID: 0, Label: "B0", Position: cp.Vector{X: 100, Y: 200}, Radius: 10, Health: 0, MaxHealth: 100},
			{ID: 1, Label: "B1", Position: cp.Vector{X: 108, Y: 200}, Radius: 10, Health: 40, MaxHealth: 100,
				Facing: -1, Grounded: true, State: game.StateIdle, Aim: game.Aim{Angle: 0.5, Power: 50}},
		},
	}
}

func TestPick_SkipsDeadAndMisses(t *testing.T) {
	snap := inspectSnapshot()

	id, ok := pick(snap.Combatants, 100, 200)
	require.True(t, ok)
	assert.Equal(t, 1, id, "the dead beaver underneath is not selectable")

	_, ok = pick(snap.Combatants, 400, 400)
	assert.False(t, ok)
}

func TestInspector_Lines(t *testing.T) {
	in := newInspector(100)
	snap := inspectSnapshot()
	assert.Empty(t, in.lines(snap), "nothing selected")

	require.True(t, in.Click(snap, 110, 205))
	lines := strings.Join(in.lines(snap), "\n")
	assert.Contains(t, lines, "[ B1 ]")
	assert.Contains(t, lines, "<- turn")
	assert.Contains(t, lines, "grounded: true  facing: -1")
	assert.Contains(t, lines, "health ##")
	assert.Contains(t, lines, "40%")
	assert.Contains(t, lines, "power  ######...... 50%")

	in.Toggle()
	assert.Contains(t, strings.Join(in.lines(snap), ""), "Label:B1")

	assert.False(t, in.Click(snap, 600, 10))
	assert.Empty(t, in.lines(snap))
}

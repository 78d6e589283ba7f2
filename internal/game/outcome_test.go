package game

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
)

func makeCombatants(t *testing.T, n int) []*Combatant {
	t.Helper()
	w := newTestWorld()
	out := make([]*Combatant, n)
	for i := range out {
		out[i] = newTestCombatant(t, w, i, cp.Vector{X: float64(100 * (i + 1)), Y: 100})
	}
	return out
}

func TestDetermineMatchOutcome(t *testing.T) {
	t.Run("victory", func(t *testing.T) {
		cs := makeCombatants(t, 3)
		cs[0].Kill()
		cs[2].Kill()
		out := DetermineMatchOutcome(cs)
		assert.Equal(t, MatchVictory, out.Outcome)
		assert.Equal(t, 1, out.WinnerID)
		assert.Equal(t, "last_beaver_standing", out.Description)
		assert.Equal(t, 1, out.Survivors)
		assert.Equal(t, 3, out.Total)
	})
	t.Run("draw", func(t *testing.T) {
		cs := makeCombatants(t, 2)
		cs[0].Kill()
		cs[1].Kill()
		out := DetermineMatchOutcome(cs)
		assert.Equal(t, MatchDraw, out.Outcome)
		assert.Equal(t, -1, out.WinnerID)
		assert.Equal(t, "mutual_annihilation", out.Description)
	})
	t.Run("clear leader", func(t *testing.T) {
		cs := makeCombatants(t, 2)
		cs[1].TakeDamage(70)
		out := DetermineMatchOutcome(cs)
		assert.Equal(t, MatchInconclusive, out.Outcome)
		assert.Equal(t, 0, out.LeaderID)
		assert.Equal(t, "inconclusive_clear_leader", out.Description)
	})
	t.Run("even", func(t *testing.T) {
		out := DetermineMatchOutcome(makeCombatants(t, 2))
		assert.Equal(t, MatchInconclusive, out.Outcome)
		assert.Equal(t, "inconclusive_insufficient_resolution", out.Description)
	})
	t.Run("solo", func(t *testing.T) {
		out := DetermineMatchOutcome(makeCombatants(t, 1))
		assert.Equal(t, MatchInconclusive, out.Outcome)
		assert.Equal(t, "inconclusive_solo_match", out.Description)
	})
	t.Run("empty", func(t *testing.T) {
		out := DetermineMatchOutcome(nil)
		assert.Equal(t, "inconclusive_no_combatants", out.Description)
		assert.Equal(t, -1, out.LeaderID)
	})
}

func TestMatchOutcome_String(t *testing.T) {
	assert.Equal(t, "victory", MatchVictory.String())
	assert.Equal(t, "draw", MatchDraw.String())
	assert.Equal(t, "inconclusive", MatchInconclusive.String())
}

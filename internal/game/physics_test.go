package game

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld() *World {
	return NewWorld(DefaultConfig().physics())
}

func ballSpec(pos, vel cp.Vector) BodySpec {
	return BodySpec{Kind: BodyCombatant, Position: pos, Velocity: vel, Radius: 5, Density: 0.01}
}

func TestWorld_IsSettled(t *testing.T) {
	w := newTestWorld()
	assert.True(t, w.IsSettled(0.5), "an empty world is settled")

	w.AddCircle(ballSpec(cp.Vector{X: 10, Y: 10}, cp.Vector{}))
	assert.True(t, w.IsSettled(0.5))

	fast := w.AddCircle(ballSpec(cp.Vector{X: 100, Y: 10}, cp.Vector{X: 12}))
	assert.False(t, w.IsSettled(0.5), "one moving body keeps the world unsettled")
	assert.True(t, w.IsSettled(20))

	w.Remove(fast)
	assert.True(t, w.IsSettled(0.5))
}

func TestWorld_RemoveTwiceIsNoop(t *testing.T) {
	w := newTestWorld()
	b := w.AddCircle(ballSpec(cp.Vector{X: 10, Y: 10}, cp.Vector{}))
	require.Equal(t, 1, w.BodyCount())

	w.Remove(b)
	w.Remove(b)
	assert.Equal(t, 0, w.BodyCount())
	assert.True(t, b.Removed())
	assert.Nil(t, b.Touching())
}

func TestWorld_StepAppliesGravityDownward(t *testing.T) {
	w := newTestWorld()
	b := w.AddCircle(ballSpec(cp.Vector{X: 10, Y: 10}, cp.Vector{}))

	w.Step()

	assert.Equal(t, 1, w.Steps())
	assert.Greater(t, b.Velocity().Y, 0.0, "screen y grows down")
	assert.InDelta(t, DefaultConfig().Gravity*DefaultConfig().TimeStep, b.Velocity().Y, 1e-9)
	assert.False(t, w.IsSettled(0.5))
}

func TestBody_SupportCancelsGravity(t *testing.T) {
	w := newTestWorld()
	b := w.AddCircle(ballSpec(cp.Vector{X: 10, Y: 10}, cp.Vector{}))
	supported := true
	b.SetSupport(func() bool { return supported })

	for i := 0; i < 30; i++ {
		w.Step()
	}
	assert.Zero(t, b.Velocity().Y)
	assert.Equal(t, 10.0, b.Position().Y)

	supported = false
	w.Step()
	assert.Greater(t, b.Velocity().Y, 0.0)
}

func TestBody_ImpulseChangesVelocityByMass(t *testing.T) {
	w := newTestWorld()
	b := w.AddCircle(ballSpec(cp.Vector{X: 10, Y: 10}, cp.Vector{}))

	b.ApplyImpulse(cp.Vector{X: 3})
	assert.InDelta(t, 3/b.Mass(), b.Velocity().X, 1e-9)
}

func TestNewWorld_AppliesIterationBudget(t *testing.T) {
	cfg := DefaultConfig()
	w := newTestWorld()
	assert.Equal(t, uint(cfg.VelocityIterations+cfg.PositionIterations), w.Iterations())

	w = NewWorld(PhysicsConfig{Gravity: 10, TimeStep: 1.0 / 60, VelocityIterations: 5, PositionIterations: 2})
	assert.Equal(t, uint(7), w.Iterations())
}

func TestBody_TouchingReportsOverlap(t *testing.T) {
	w := newTestWorld()
	a := w.AddCircle(ballSpec(cp.Vector{X: 10, Y: 10}, cp.Vector{}))
	b := w.AddCircle(ballSpec(cp.Vector{X: 16, Y: 10}, cp.Vector{}))
	lone := w.AddCircle(ballSpec(cp.Vector{X: 100, Y: 10}, cp.Vector{}))

	w.Step()

	assert.Equal(t, []*Body{b}, a.Touching())
	assert.Equal(t, []*Body{a}, b.Touching())
	assert.Empty(t, lone.Touching())
}

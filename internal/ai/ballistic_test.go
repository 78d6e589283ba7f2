package ai

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
)

// heightAt is the rise of a projectile launched at angle with speed v after
// covering dx horizontally.
func heightAt(dx, angle, v, g float64) float64 {
	c := math.Cos(angle)
	return dx*math.Tan(angle) - g*dx*dx/(2*v*v*c*c)
}

func TestSolveAngle_HitsTarget(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dx := rapid.Float64Range(20, 800).Draw(rt, "dx")
		rise := rapid.Float64Range(-200, 200).Draw(rt, "rise")
		v := rapid.Float64Range(25, 300).Draw(rt, "v")
		g := 50.0

		angle, ok := SolveAngle(dx, rise, v, g)
		if !ok {
			return
		}
		if angle <= -math.Pi/2 || angle >= math.Pi/2 {
			rt.Fatalf("angle %.3f outside the forward half-plane", angle)
		}
		if got := heightAt(dx, angle, v, g); math.Abs(got-rise) > 1e-6*math.Max(1, math.Abs(rise)+dx) {
			rt.Fatalf("arc passes dx=%.1f at rise %.4f, want %.4f", dx, got, rise)
		}
	})
}

func TestSolveAngle_OutOfReach(t *testing.T) {
	_, ok := SolveAngle(1000, 0, 50, 50) // max range v²/g = 50
	assert.False(t, ok)
	_, ok = SolveAngle(0, 0, 50, 50)
	assert.False(t, ok)
	_, ok = SolveAngle(100, 0, 0, 50)
	assert.False(t, ok)
}

func TestSolveAngle_LevelGroundLowArc(t *testing.T) {
	v, g := 150.0, 50.0
	dx := v * v / g // max range is reached at 45°
	angle, ok := SolveAngle(dx/2, 0, v, g)
	require.True(t, ok)
	assert.Less(t, angle, math.Pi/4, "low arc")
	assert.InDelta(t, 0.5*math.Asin(0.5), angle, 1e-9)
}

func duelSnapshot(selfFacing int) game.Snapshot {
	return game.Snapshot{
		Phase:   game.PhasePlayerInput,
		Current: 0,
		Turn:    0,
		Combatants: []game.CombatantView{
			{ID: 0, Label: "B0", Position: cp.Vector{X: 300, Y: 390}, Radius: 10, Facing: selfFacing, Health: 100, MaxHealth: 100,
				Aim: game.Aim{Angle: math.Pi / 4, Power: 10}},
			{ID: 1, Label: "B1", Position: cp.Vector{X: 700, Y: 390}, Radius: 10, Facing: -1, Health: 100, MaxHealth: 100},
		},
	}
}

// play feeds Decide until it fires, applying each intent to the snapshot the
// way the match would.
func play(t *testing.T, b *Ballistic, cfg game.Config, snap game.Snapshot) (game.Snapshot, int) {
	t.Helper()
	for i := 0; i < 500; i++ {
		snap.Tick++
		in, ok := b.Decide(snap)
		require.True(t, ok, "no intent on own turn at step %d", i)
		self := &snap.Combatants[0]
		switch {
		case in.Fire:
			return snap, i
		case in.MoveRight:
			self.Facing = 1
		case in.MoveLeft:
			self.Facing = -1
		}
		self.Aim.Angle += in.AimDelta * cfg.AimRate
		if in.Charging {
			self.Aim.Power = math.Min(cfg.MaxPower, self.Aim.Power+cfg.PowerRate)
		}
	}
	t.Fatal("never fired")
	return snap, -1
}

func TestBallistic_TurnsAimsChargesFires(t *testing.T) {
	cfg := game.DefaultConfig()
	b := NewBallistic(0, cfg, 7, nil)
	snap := duelSnapshot(-1)

	in, ok := b.Decide(snap)
	require.True(t, ok)
	assert.True(t, in.MoveRight, "turns toward the target first")

	snap, steps := play(t, b, cfg, snap)
	self := snap.Combatants[0]
	assert.Equal(t, 1, self.Facing)
	assert.Greater(t, self.Aim.Power, cfg.MinPower)
	assert.Less(t, steps, 200)

	// The solved arc must carry the shot to the target's column.
	v := self.Aim.Power * cfg.LaunchSpeedScale
	h := heightAt(400, self.Aim.Angle, v, cfg.Gravity)
	assert.InDelta(t, 0, h, 40, "shot lands near the target")

	_, ok = b.Decide(snap)
	assert.False(t, ok, "one shot per turn")
}

func TestBallistic_IgnoresOtherTurns(t *testing.T) {
	b := NewBallistic(0, game.DefaultConfig(), 1, nil)

	snap := duelSnapshot(1)
	snap.Current = 1
	_, ok := b.Decide(snap)
	assert.False(t, ok)

	snap = duelSnapshot(1)
	snap.Phase = game.PhaseProjectileFlying
	_, ok = b.Decide(snap)
	assert.False(t, ok)

	snap = duelSnapshot(1)
	snap.Combatants[1].Health = 0
	_, ok = b.Decide(snap)
	assert.False(t, ok, "nobody left to shoot")
}

func TestBallistic_LearnsFromShortShot(t *testing.T) {
	cfg := game.DefaultConfig()
	b := NewBallistic(0, cfg, 3, nil)
	snap, _ := play(t, b, cfg, duelSnapshot(1))
	require.NotNil(t, b.lastShot)
	target := b.lastShot.target.X

	snap.Outcomes = []game.Outcome{{Kind: game.OutcomeHitTerrain, OwnerID: 0, CombatantID: -1, Point: cp.Vector{X: target - 100, Y: 400}}}
	b.Learn(snap)

	assert.InDelta(t, 100*biasPerPixel, b.powerBias, 1e-9)
	assert.Nil(t, b.lastShot)

	// Other owners' outcomes are ignored.
	b.lastShot = &plan{targetID: 1, target: cp.Vector{X: 700}, facing: 1}
	snap.Outcomes = []game.Outcome{{Kind: game.OutcomeHitTerrain, OwnerID: 1, Point: cp.Vector{X: 100}}}
	b.Learn(snap)
	assert.NotNil(t, b.lastShot)
}

func TestBallistic_ObserveNeverBlocks(t *testing.T) {
	b := NewBallistic(0, game.DefaultConfig(), 1, nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Observe(game.Snapshot{Tick: i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Observe blocked with no reader")
	}
	assert.Equal(t, 99, (<-b.snaps).Tick, "only the newest snapshot is kept")
}

func TestBallistic_RunPublishesToMailbox(t *testing.T) {
	b := NewBallistic(0, game.DefaultConfig(), 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- b.Run(ctx) }()

	b.Observe(duelSnapshot(-1))
	require.Eventually(t, func() bool {
		in, ok := b.Source().Poll(game.Snapshot{}, 0)
		return ok && in.MoveRight
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-errc)
}

package game

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// MatchSim is a headless match harness used by tests and the headless
// report. It wraps Match with deterministic terrain and spawn builders and
// keeps its own tick-by-tick SimLog.
type MatchSim struct {
	Width  int
	Height int
	Config Config
	Match  *Match
	SimLog *SimLog

	flatGround float64 // < 0 means the default curved surface
	spawns     []cp.Vector
	sources    []IntentSource
	carve      [][3]float64
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra     simOptionKind = iota // size, config, ground, verbose: applied first
	simOptCombatant                      // spawns: applied once terrain exists
	simOptIntent                         // intent sources: applied after combatants
)

// SimOption is a builder function applied to a MatchSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*MatchSim)
}

// WithTerrainSize sets the field dimensions.
func WithTerrainSize(w, h int) SimOption {
	return SimOption{simOptInfra, func(ms *MatchSim) {
		ms.Width = w
		ms.Height = h
	}}
}

// WithFlatGround replaces the curved surface with a level floor at groundY.
func WithFlatGround(groundY float64) SimOption {
	return SimOption{simOptInfra, func(ms *MatchSim) {
		ms.flatGround = groundY
	}}
}

// WithConfig overrides the tuning. Terrain size is taken from the config
// unless WithTerrainSize is also given after it.
func WithConfig(cfg Config) SimOption {
	return SimOption{simOptInfra, func(ms *MatchSim) {
		ms.Config = cfg
		ms.Width = cfg.TerrainWidth
		ms.Height = cfg.TerrainHeight
	}}
}

// WithVerbose enables per-tick movement logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ms *MatchSim) {
		ms.SimLog = NewSimLog(v)
	}}
}

// WithCrater erases a circle of terrain before the match starts.
func WithCrater(x, y, r float64) SimOption {
	return SimOption{simOptInfra, func(ms *MatchSim) {
		ms.carve = append(ms.carve, [3]float64{x, y, r})
	}}
}

// WithCombatant adds a combatant centred at (x,y). Combatants get ids in the
// order they are added.
func WithCombatant(x, y float64) SimOption {
	return SimOption{simOptCombatant, func(ms *MatchSim) {
		ms.spawns = append(ms.spawns, cp.Vector{X: x, Y: y})
	}}
}

// WithGroundedCombatant adds a combatant resting on the floor at column x.
// Only meaningful together with WithFlatGround.
func WithGroundedCombatant(x float64) SimOption {
	return SimOption{simOptCombatant, func(ms *MatchSim) {
		ms.spawns = append(ms.spawns, cp.Vector{X: x, Y: ms.flatGround - ms.Config.CombatantRadius})
	}}
}

// WithIntents assigns intent sources to combatants in id order.
func WithIntents(srcs ...IntentSource) SimOption {
	return SimOption{simOptIntent, func(ms *MatchSim) {
		ms.sources = srcs
	}}
}

// NewMatchSim constructs a MatchSim from the given options in ordered passes:
//  1. Infrastructure (size, config, ground, craters, verbose)
//  2. Terrain
//  3. Combatants
//  4. Intent sources, then the match itself
func NewMatchSim(opts ...SimOption) (*MatchSim, error) {
	cfg := DefaultConfig()
	ms := &MatchSim{
		Width:      cfg.TerrainWidth,
		Height:     cfg.TerrainHeight,
		Config:     cfg,
		SimLog:     NewSimLog(false),
		flatGround: -1,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ms)
		}
	}
	ms.Config.TerrainWidth = ms.Width
	ms.Config.TerrainHeight = ms.Height

	terrain, err := NewTerrain(ms.Width, ms.Height, ms.Config.SolidThreshold)
	if err != nil {
		return nil, fmt.Errorf("match sim: %w", err)
	}
	if ms.flatGround >= 0 {
		terrain.GenerateFlat(ms.flatGround)
	} else {
		terrain.GenerateDefault(ms.Config.Surface)
	}
	for _, c := range ms.carve {
		terrain.DestroyCircle(c[0], c[1], c[2])
	}
	terrain.DrainCraters()

	for _, o := range opts {
		if o.kind == simOptCombatant {
			o.fn(ms)
		}
	}
	for _, o := range opts {
		if o.kind == simOptIntent {
			o.fn(ms)
		}
	}

	matchOpts := []MatchOption{
		WithTerrain(terrain),
		WithSimLog(ms.SimLog),
		WithIntentSources(ms.sources...),
	}
	if len(ms.spawns) > 0 {
		matchOpts = append(matchOpts, WithSpawns(ms.spawns...))
	}
	m, err := NewMatch(ms.Config, matchOpts...)
	if err != nil {
		return nil, fmt.Errorf("match sim: %w", err)
	}
	ms.Match = m
	return ms, nil
}

// RunTicks advances the match n ticks.
func (ms *MatchSim) RunTicks(n int) Snapshot {
	snap := ms.Match.Snapshot()
	for i := 0; i < n; i++ {
		snap = ms.step()
	}
	return snap
}

// RunUntil advances the match up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ms *MatchSim) RunUntil(predicate func(Snapshot) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		snap := ms.step()
		if predicate(snap) {
			return snap.Tick
		}
	}
	return -1
}

// step runs one match tick and adds verbose movement entries.
func (ms *MatchSim) step() Snapshot {
	snap := ms.Match.Step()
	for _, c := range snap.Combatants {
		ms.SimLog.AddVerbose(snap.Tick, c.Label, "move", "position",
			fmt.Sprintf("(%.1f,%.1f) grounded=%t", c.Position.X, c.Position.Y, c.Grounded), c.Velocity.Length())
	}
	return snap
}

// Drop launches a configured shell for ownerID at pos with velocity vel,
// outside the turn flow. It is picked up on the next tick.
func (ms *MatchSim) Drop(ownerID int, pos, vel cp.Vector) {
	cfg := ms.Config
	ms.Match.launch(ProjectileSpec{
		OwnerID:     ownerID,
		Position:    pos,
		Velocity:    vel,
		Damage:      cfg.ProjectileDamage,
		Radius:      cfg.ProjectileRadius,
		Mass:        cfg.ProjectileMass,
		Restitution: cfg.ProjectileRestitution,
	})
}

// Combatant returns the combatant with the given id, or nil.
func (ms *MatchSim) Combatant(id int) *Combatant {
	for _, c := range ms.Match.Combatants() {
		if c.ID() == id {
			return c
		}
	}
	return nil
}

// CurrentTick returns the current simulation tick.
func (ms *MatchSim) CurrentTick() int {
	return ms.Match.Tick()
}

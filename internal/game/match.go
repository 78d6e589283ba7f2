package game

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
)

// ErrNoCombatants is returned when a match would start with nobody in it.
var ErrNoCombatants = errors.New("match has no combatants")

// Match is the simulation context. It owns the terrain, the physics world,
// every combatant and projectile, and the turn machine; nothing here is
// shared between matches. All mutation happens inside Step.
type Match struct {
	id     uuid.UUID
	cfg    Config
	logger *log.Logger
	simLog *SimLog

	terrain     *Terrain
	world       *World
	resolver    Resolver
	combatants  []*Combatant
	projectiles []*Projectile
	turn        *TurnMachine
	sources     map[int]IntentSource
	perf        map[int]*PerfTracker

	tick    int
	spawns  []cp.Vector
	pending []IntentSource
	snap    Snapshot

	// per-tick buffers, moved into the snapshot
	outcomes   []Outcome
	explosions []ExplosionResult
}

// MatchOption customises NewMatch.
type MatchOption func(*Match)

// WithLogger routes operational logging to l.
func WithLogger(l *log.Logger) MatchOption {
	return func(m *Match) { m.logger = l }
}

// WithSimLog records match events into sl.
func WithSimLog(sl *SimLog) MatchOption {
	return func(m *Match) { m.simLog = sl }
}

// WithIntentSources assigns sources to combatants in order. A nil entry
// leaves that combatant without input.
func WithIntentSources(srcs ...IntentSource) MatchOption {
	return func(m *Match) { m.pending = srcs }
}

// WithTerrain uses t instead of generating the default landscape.
func WithTerrain(t *Terrain) MatchOption {
	return func(m *Match) { m.terrain = t }
}

// WithSpawns places combatants at the given centres. The number of spawns
// overrides Config.Players.
func WithSpawns(ps ...cp.Vector) MatchOption {
	return func(m *Match) { m.spawns = ps }
}

// NewMatch builds a ready-to-tick match. Errors here are setup failures.
func NewMatch(cfg Config, opts ...MatchOption) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}
	m := &Match{
		id:      uuid.New(),
		cfg:     cfg,
		logger:  log.New(io.Discard),
		turn:    NewTurnMachine(),
		sources: make(map[int]IntentSource),
		perf:    make(map[int]*PerfTracker),
	}
	for _, o := range opts {
		o(m)
	}
	if m.simLog == nil {
		m.simLog = NewSimLog(false)
	}
	m.logger = m.logger.With("match", m.id.String()[:8])

	if m.terrain == nil {
		t, err := NewTerrain(cfg.TerrainWidth, cfg.TerrainHeight, cfg.SolidThreshold)
		if err != nil {
			return nil, fmt.Errorf("new match: %w", err)
		}
		t.GenerateDefault(cfg.Surface)
		m.terrain = t
	}
	m.world = NewWorld(cfg.physics())

	if len(m.spawns) == 0 {
		m.spawns = DefaultSpawns(m.terrain, cfg.Players, cfg.CombatantRadius)
	}
	if len(m.spawns) == 0 {
		return nil, fmt.Errorf("new match: %w", ErrNoCombatants)
	}
	for i, p := range m.spawns {
		c := NewCombatant(i, m.world, p, cfg)
		m.combatants = append(m.combatants, c)
		m.perf[i] = NewPerfTracker(c)
		if i < len(m.pending) && m.pending[i] != nil {
			m.sources[i] = m.pending[i]
		}
	}
	m.pending = nil

	m.logger.Info("match created",
		"combatants", len(m.combatants),
		"terrain", fmt.Sprintf("%dx%d", m.terrain.Width(), m.terrain.Height()))
	m.simLog.Add(0, "--", "turn", "start", fmt.Sprintf("player %s", m.combatants[0].Label()), 0)
	m.snap = m.publish(nil)
	return m, nil
}

// DefaultSpawns spaces n combatants evenly across the field, resting just
// above the highest surface point under each one.
func DefaultSpawns(t *Terrain, n int, radius float64) []cp.Vector {
	out := make([]cp.Vector, 0, n)
	for i := 0; i < n; i++ {
		x := float64(t.Width()) * float64(i+1) / float64(n+1)
		top := math.Inf(1)
		for dx := -radius; dx <= radius; dx++ {
			top = math.Min(top, t.SurfaceAt(x+dx))
		}
		out = append(out, cp.Vector{X: x, Y: top - radius - 1})
	}
	return out
}

func (m *Match) ID() uuid.UUID      { return m.id }
func (m *Match) Config() Config     { return m.cfg }
func (m *Match) Terrain() *Terrain  { return m.terrain }
func (m *Match) World() *World      { return m.world }
func (m *Match) Tick() int          { return m.tick }
func (m *Match) Turn() TurnState    { return m.turn.State() }
func (m *Match) SimLog() *SimLog    { return m.simLog }
func (m *Match) Snapshot() Snapshot { return m.snap }

// Projectiles returns the projectiles still in flight.
func (m *Match) Projectiles() []*Projectile { return m.projectiles }

// Combatants returns the live combatant slice. Only the tick may mutate it.
func (m *Match) Combatants() []*Combatant { return m.combatants }

// SetIntentSource replaces the source for combatant id. Call between ticks.
func (m *Match) SetIntentSource(id int, src IntentSource) {
	if src == nil {
		delete(m.sources, id)
		return
	}
	m.sources[id] = src
}

// Step runs one fixed tick: integrate, resolve terrain contacts, advance
// projectiles, then the turn machine, and publishes the snapshot.
func (m *Match) Step() Snapshot {
	m.tick++
	m.outcomes = nil
	m.explosions = nil

	m.world.Step()

	for _, c := range m.combatants {
		m.resolver.Resolve(c, m.terrain)
		c.refreshState(m.cfg.SettleThreshold)
	}

	m.updateProjectiles()

	events := m.turn.Update(m)
	m.logTurnEvents(events)

	for _, c := range m.combatants {
		m.perf[c.ID()].Update(c)
	}

	m.snap = m.publish(events)
	return m.snap
}

func (m *Match) updateProjectiles() {
	for _, p := range m.projectiles {
		if !p.Active() {
			continue
		}
		out := p.Update(m.terrain, m.combatants)
		switch out.Kind {
		case OutcomeFlying:
			continue
		case OutcomeHitCombatant:
			m.explode(p, out, out.CombatantID)
		case OutcomeHitTerrain:
			m.explode(p, out, -1)
		case OutcomeOutOfBounds:
			p.Deactivate()
		}
		m.outcomes = append(m.outcomes, out)
		m.simLog.Add(m.tick, m.labelOf(out.OwnerID), "projectile", out.Kind.String(),
			fmt.Sprintf("at (%.0f,%.0f)", out.Point.X, out.Point.Y), 0)
		m.logger.Debug("projectile finished", "owner", out.OwnerID, "outcome", out.Kind, "tick", m.tick)
	}

	live := m.projectiles[:0]
	for _, p := range m.projectiles {
		if p.Active() {
			live = append(live, p)
		}
	}
	for i := len(live); i < len(m.projectiles); i++ {
		m.projectiles[i] = nil
	}
	m.projectiles = live
}

func (m *Match) explode(p *Projectile, out Outcome, directID int) {
	res := p.Explode(out.Point, m.terrain, m.combatants, directID)
	m.explosions = append(m.explosions, res)

	shooter := m.perf[p.Owner()]
	if out.Kind == OutcomeHitCombatant && directID != p.Owner() {
		shooter.DirectHits++
	}
	m.simLog.Add(m.tick, m.labelOf(p.Owner()), "terrain", "crater",
		fmt.Sprintf("r=%.1f cleared=%d", res.Explosion.Radius, res.Cleared), float64(res.Cleared))

	for _, h := range res.Hits {
		victim := m.perf[h.CombatantID]
		victim.DamageTaken += h.Damage
		if h.CombatantID == p.Owner() {
			shooter.SelfDamage += h.Damage
		} else {
			shooter.DamageDealt += h.Damage
		}
		m.simLog.Add(m.tick, m.labelOf(h.CombatantID), "damage", "hit",
			fmt.Sprintf("%.1f from %s at d=%.1f", h.Damage, m.labelOf(p.Owner()), h.Distance), h.Damage)
		if h.Killed {
			if h.CombatantID != p.Owner() {
				shooter.Kills++
			}
			m.simLog.Add(m.tick, m.labelOf(h.CombatantID), "damage", "killed",
				fmt.Sprintf("by %s", m.labelOf(p.Owner())), 0)
			m.logger.Info("combatant killed", "victim", m.labelOf(h.CombatantID), "by", m.labelOf(p.Owner()))
		}
	}
}

// PlayerInput applies the available intent for c. Part of TurnHost.
func (m *Match) PlayerInput(c *Combatant) bool {
	src, ok := m.sources[c.ID()]
	if !ok {
		return false
	}
	in, ok := src.Poll(m.snap, c.ID())
	if !ok {
		return false
	}

	switch {
	case in.MoveLeft && !in.MoveRight:
		c.Walk(-1, m.cfg.MoveSpeed)
	case in.MoveRight && !in.MoveLeft:
		c.Walk(1, m.cfg.MoveSpeed)
	}
	if in.Jump && c.Jump(m.cfg.JumpSpeed) {
		m.simLog.AddVerbose(m.tick, c.Label(), "move", "jump", "", 0)
	}
	if in.AimDelta != 0 {
		c.AdjustAim(clampFloat(in.AimDelta, -1, 1) * m.cfg.AimRate)
	}
	if in.Charging {
		c.Charge(m.cfg.PowerRate)
	}
	if !in.Fire {
		return false
	}

	spec, err := c.Fire(m.cfg)
	if err != nil {
		m.logger.Warn("fire rejected", "err", err)
		return false
	}
	m.launch(spec)
	m.perf[c.ID()].Shots++
	m.simLog.Add(m.tick, c.Label(), "projectile", "fired",
		fmt.Sprintf("angle=%.2f power=%.1f", c.Aim().Angle, c.Aim().ShotPower()), c.Aim().ShotPower())
	return true
}

// launch puts a shell in flight. It is resolved from the next tick on.
func (m *Match) launch(spec ProjectileSpec) *Projectile {
	p := SpawnProjectile(m.world, spec)
	m.projectiles = append(m.projectiles, p)
	return p
}

// ActiveProjectiles is part of TurnHost.
func (m *Match) ActiveProjectiles() int {
	n := 0
	for _, p := range m.projectiles {
		if p.Active() {
			n++
		}
	}
	return n
}

// Settled is part of TurnHost.
func (m *Match) Settled() bool { return m.world.IsSettled(m.cfg.SettleThreshold) }

func (m *Match) logTurnEvents(events []TurnEvent) {
	for _, ev := range events {
		label := m.labelAt(ev.Player)
		switch ev.Kind {
		case EventPhaseChanged:
			m.simLog.Add(m.tick, label, "turn", "phase", ev.String(), 0)
		case EventTurnStarted:
			m.simLog.Add(m.tick, label, "turn", "start", fmt.Sprintf("player %s", label), 0)
			m.perf[m.combatants[ev.Player].ID()].Turns++
			for _, src := range m.sources {
				if r, ok := src.(interface{ Reset() }); ok {
					r.Reset()
				}
			}
		case EventTurnSkipped:
			m.simLog.Add(m.tick, label, "turn", "skipped", "dead", 0)
		case EventMatchDecided:
			m.simLog.Add(m.tick, "--", "turn", "decided", ev.String(), float64(ev.Winner))
			m.logger.Info("match decided", "outcome", ev.String(), "tick", m.tick)
		}
	}
}

// Outcome reports the current match result.
func (m *Match) Outcome() MatchOutcomeReason {
	return DetermineMatchOutcome(m.combatants)
}

// Grades finalises the performance trackers and grades every combatant.
func (m *Match) Grades() []CombatantGrade {
	for _, c := range m.combatants {
		m.perf[c.ID()].Finalize(c)
	}
	return GradePerformance(m.perf)
}

func (m *Match) labelOf(id int) string {
	for _, c := range m.combatants {
		if c.ID() == id {
			return c.Label()
		}
	}
	return "--"
}

func (m *Match) labelAt(i int) string {
	if i < 0 || i >= len(m.combatants) {
		return "--"
	}
	return m.combatants[i].Label()
}

func (m *Match) publish(events []TurnEvent) Snapshot {
	st := m.turn.State()
	winner, decided := m.turn.Decided()
	snap := Snapshot{
		Tick:       m.tick,
		Phase:      st.Phase,
		Current:    st.Current,
		Turn:       st.Turn,
		Width:      m.terrain.Width(),
		Height:     m.terrain.Height(),
		Combatants: make([]CombatantView, len(m.combatants)),
		Outcomes:   m.outcomes,
		Explosions: m.explosions,
		Craters:    m.terrain.DrainCraters(),
		Events:     events,
		Decided:    decided,
		Winner:     winner,
	}
	for i, c := range m.combatants {
		snap.Combatants[i] = viewOf(c)
	}
	for _, p := range m.projectiles {
		if !p.Active() {
			continue
		}
		snap.Projectiles = append(snap.Projectiles, ProjectileView{
			OwnerID:  p.Owner(),
			Position: p.Position(),
			Velocity: p.body.Velocity(),
			Radius:   p.Radius(),
		})
	}
	return snap
}

package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// ErrDeadCombatant is returned when an action is requested for a combatant
// with no health left. Callers are expected to check IsAlive first.
var ErrDeadCombatant = errors.New("combatant is dead")

// CombatantState is the movement/attack state published to renderers.
type CombatantState int

const (
	StateIdle     CombatantState = iota // standing
	StateWalking                        // moving along the ground
	StateAirborne                       // jumping or falling
	StateCharging                       // building shot power
	StateFiring                         // released a shot this turn
	StateHurt                           // took damage since the last turn change
	StateDead                           // no health left
)

func (s CombatantState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateAirborne:
		return "airborne"
	case StateCharging:
		return "charging"
	case StateFiring:
		return "firing"
	case StateHurt:
		return "hurt"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Aim is the combatant's weapon aim. Angle is measured from level ground in
// the facing direction, positive upward.
type Aim struct {
	Angle float64
	Power float64

	minAngle, maxAngle float64
	minPower, maxPower float64
}

func newAim(cfg Config) Aim {
	return Aim{
		Angle:    math.Pi / 4,
		Power:    cfg.MinPower,
		minAngle: cfg.MinAimAngle,
		maxAngle: cfg.MaxAimAngle,
		minPower: cfg.MinPower,
		maxPower: cfg.MaxPower,
	}
}

// Adjust rotates the aim by delta radians, clamped to the allowed arc.
func (a *Aim) Adjust(delta float64) {
	a.Angle = math.Max(a.minAngle, math.Min(a.maxAngle, a.Angle+delta))
}

// Charge adds power up to the maximum.
func (a *Aim) Charge(amount float64) {
	a.Power = math.Min(a.maxPower, a.Power+amount)
}

// Reset drops accumulated power back to the minimum.
func (a *Aim) Reset() {
	a.Power = a.minPower
}

// ShotPower is the power a shot fired now would use.
func (a Aim) ShotPower() float64 {
	return math.Max(a.minPower, math.Min(a.maxPower, a.Power))
}

// Direction returns the unit launch direction for the given facing.
func (a Aim) Direction(facing int) cp.Vector {
	return cp.Vector{X: float64(facing) * math.Cos(a.Angle), Y: -math.Sin(a.Angle)}
}

// Combatant is a player-controlled circular body with health and aim.
type Combatant struct {
	id        int
	label     string
	body      *Body
	radius    float64
	health    float64
	maxHealth float64
	facing    int
	grounded  bool
	state     CombatantState
	aim       Aim
}

// NewCombatant creates a combatant and its body in w.
func NewCombatant(id int, w *World, pos cp.Vector, cfg Config) *Combatant {
	c := &Combatant{
		id:        id,
		label:     fmt.Sprintf("B%d", id),
		radius:    cfg.CombatantRadius,
		health:    cfg.CombatantHealth,
		maxHealth: cfg.CombatantHealth,
		facing:    1,
		aim:       newAim(cfg),
	}
	if pos.X > float64(cfg.TerrainWidth)/2 {
		c.facing = -1
	}
	area := math.Pi * cfg.CombatantRadius * cfg.CombatantRadius
	c.body = w.AddCircle(BodySpec{
		Kind:     BodyCombatant,
		OwnerID:  id,
		Position: pos,
		Radius:   cfg.CombatantRadius,
		Density:  cfg.CombatantMass / area,
		Friction: cfg.CombatantFriction,
	})
	c.body.SetSupport(func() bool { return c.grounded })
	return c
}

func (c *Combatant) ID() int               { return c.id }
func (c *Combatant) Label() string         { return c.label }
func (c *Combatant) Body() *Body           { return c.body }
func (c *Combatant) Radius() float64       { return c.radius }
func (c *Combatant) Health() float64       { return c.health }
func (c *Combatant) MaxHealth() float64    { return c.maxHealth }
func (c *Combatant) Facing() int           { return c.facing }
func (c *Combatant) Grounded() bool        { return c.grounded }
func (c *Combatant) State() CombatantState { return c.state }
func (c *Combatant) Aim() Aim              { return c.aim }
func (c *Combatant) Position() cp.Vector   { return c.body.Position() }
func (c *Combatant) IsAlive() bool         { return c.health > 0 }

func (c *Combatant) setGrounded(g bool) { c.grounded = g }

func (c *Combatant) setState(s CombatantState) {
	if c.state == StateDead {
		return
	}
	c.state = s
}

// Walk sets horizontal velocity toward dir (-1 or +1) and turns to face it.
// Only effective on the ground.
func (c *Combatant) Walk(dir int, speed float64) {
	if !c.IsAlive() || dir == 0 {
		return
	}
	c.facing = sign(dir)
	if !c.grounded {
		return
	}
	v := c.body.Velocity()
	c.body.SetVelocity(cp.Vector{X: float64(c.facing) * speed, Y: v.Y})
	c.setState(StateWalking)
}

// Jump launches the combatant upward when grounded.
func (c *Combatant) Jump(speed float64) bool {
	if !c.IsAlive() || !c.grounded {
		return false
	}
	v := c.body.Velocity()
	c.body.SetVelocity(cp.Vector{X: v.X, Y: -speed})
	c.grounded = false
	c.setState(StateAirborne)
	return true
}

// AdjustAim rotates the aim.
func (c *Combatant) AdjustAim(delta float64) {
	if !c.IsAlive() {
		return
	}
	c.aim.Adjust(delta)
}

// Charge accumulates shot power.
func (c *Combatant) Charge(amount float64) {
	if !c.IsAlive() {
		return
	}
	c.aim.Charge(amount)
	c.setState(StateCharging)
}

// ResetPower clears accumulated power at the end of a turn.
func (c *Combatant) ResetPower() {
	c.aim.Reset()
	if c.state == StateCharging || c.state == StateFiring || c.state == StateHurt {
		c.setState(StateIdle)
	}
}

// Fire returns the spec of the projectile this combatant launches with its
// current aim. Firing while dead is a precondition violation.
func (c *Combatant) Fire(cfg Config) (ProjectileSpec, error) {
	if !c.IsAlive() {
		return ProjectileSpec{}, fmt.Errorf("fire %s: %w", c.label, ErrDeadCombatant)
	}
	dir := c.aim.Direction(c.facing)
	muzzle := c.Position().Add(dir.Mult(c.radius + cfg.ProjectileRadius + 1))
	speed := c.aim.ShotPower() * cfg.LaunchSpeedScale
	c.setState(StateFiring)
	return ProjectileSpec{
		OwnerID:     c.id,
		Position:    muzzle,
		Velocity:    dir.Mult(speed),
		Damage:      cfg.ProjectileDamage,
		Radius:      cfg.ProjectileRadius,
		Mass:        cfg.ProjectileMass,
		Restitution: cfg.ProjectileRestitution,
	}, nil
}

// TakeDamage subtracts health, clamped at zero. It returns the damage actually
// applied and whether this hit killed the combatant.
func (c *Combatant) TakeDamage(amount float64) (applied float64, killed bool) {
	if !c.IsAlive() || amount <= 0 {
		return 0, false
	}
	applied = math.Min(amount, c.health)
	c.health -= applied
	if c.health <= 0 {
		c.health = 0
		c.state = StateDead
		return applied, true
	}
	c.setState(StateHurt)
	return applied, false
}

// Kill drops health to zero immediately.
func (c *Combatant) Kill() {
	c.health = 0
	c.state = StateDead
}

// refreshState settles walking/airborne labels from physical state each tick.
func (c *Combatant) refreshState(settle float64) {
	switch c.state {
	case StateDead, StateCharging, StateFiring, StateHurt:
		return
	}
	switch {
	case !c.grounded:
		c.state = StateAirborne
	case math.Abs(c.body.Velocity().X) <= settle:
		c.state = StateIdle
	}
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

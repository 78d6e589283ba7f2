package game

import (
	"errors"
	"fmt"
	"strconv"
)

// Config is the single tuning surface of the simulation core. All values are in
// pixels, seconds and pixel-space mass units.
type Config struct {
	// Physics world.
	Gravity            float64 // downward acceleration, px/s²
	TimeStep           float64 // fixed tick length, seconds
	VelocityIterations int
	PositionIterations int
	SettleThreshold    float64 // max linear speed (px/s) every body must be under to count as settled

	// Terrain.
	TerrainWidth   int
	TerrainHeight  int
	SolidThreshold uint8 // alpha strictly above this is solid
	Surface        SurfaceParams

	// Aim and power.
	MinPower         float64
	MaxPower         float64
	PowerRate        float64 // power gained per tick while charging
	LaunchSpeedScale float64 // launch speed (px/s) per unit of power
	AimRate          float64 // radians per tick at full aim input
	MinAimAngle      float64 // radians relative to facing, 0 = level
	MaxAimAngle      float64

	// Combatants.
	Players           int
	CombatantRadius   float64
	CombatantMass     float64
	CombatantHealth   float64
	CombatantFriction float64
	MoveSpeed         float64 // walking speed, px/s
	JumpSpeed         float64 // vertical take-off speed, px/s

	// Projectiles.
	ProjectileRadius      float64
	ProjectileDamage      float64
	ProjectileMass        float64
	ProjectileRestitution float64
}

// SurfaceParams describes the procedural terrain curve
// height(x) = Baseline + A1·sin(x/P1) + A2·cos(x/P2).
type SurfaceParams struct {
	Baseline float64
	A1, P1   float64
	A2, P2   float64
}

// DefaultConfig returns the reference tuning.
//
// Where historical revisions disagreed the values are fixed as: settle threshold 0.5,
// power 10..100, solid when alpha > 127, grounded detection through the sampled arc.
func DefaultConfig() Config {
	return Config{
		Gravity:            50,
		TimeStep:           1.0 / 60.0,
		VelocityIterations: 8,
		PositionIterations: 3,
		SettleThreshold:    0.5,

		TerrainWidth:   1200,
		TerrainHeight:  600,
		SolidThreshold: 127,
		Surface: SurfaceParams{
			Baseline: 380,
			A1:       40,
			P1:       80,
			A2:       25,
			P2:       37,
		},

		MinPower:         10,
		MaxPower:         100,
		PowerRate:        1.0,
		LaunchSpeedScale: 2.5,
		AimRate:          0.03,
		MinAimAngle:      -0.5,
		MaxAimAngle:      1.45,

		Players:           2,
		CombatantRadius:   10,
		CombatantMass:     0.25,
		CombatantHealth:   100,
		CombatantFriction: 0.7,
		MoveSpeed:         40,
		JumpSpeed:         90,

		ProjectileRadius:      4,
		ProjectileDamage:      30,
		ProjectileMass:        0.05,
		ProjectileRestitution: 0.1,
	}
}

// ErrInvalidConfig is returned by Validate for nonsensical tuning.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the values the simulation relies on being positive or ordered.
func (c Config) Validate() error {
	switch {
	case c.TimeStep <= 0:
		return fmt.Errorf("%w: time step must be > 0", ErrInvalidConfig)
	case c.VelocityIterations <= 0 || c.PositionIterations < 0:
		return fmt.Errorf("%w: solver iterations must be positive", ErrInvalidConfig)
	case c.SettleThreshold < 0:
		return fmt.Errorf("%w: settle threshold must be >= 0", ErrInvalidConfig)
	case c.MinPower <= 0 || c.MaxPower < c.MinPower:
		return fmt.Errorf("%w: power range %.1f..%.1f", ErrInvalidConfig, c.MinPower, c.MaxPower)
	case c.MaxAimAngle < c.MinAimAngle:
		return fmt.Errorf("%w: aim range %.2f..%.2f", ErrInvalidConfig, c.MinAimAngle, c.MaxAimAngle)
	case c.Players <= 0:
		return fmt.Errorf("%w: need at least one player", ErrInvalidConfig)
	case c.CombatantRadius <= 0 || c.CombatantMass <= 0 || c.CombatantHealth <= 0:
		return fmt.Errorf("%w: combatant radius, mass and health must be > 0", ErrInvalidConfig)
	case c.ProjectileRadius <= 0 || c.ProjectileMass <= 0 || c.ProjectileDamage < 0:
		return fmt.Errorf("%w: projectile radius and mass must be > 0", ErrInvalidConfig)
	}
	return nil
}

// envFloats maps environment variable names to the float fields they override.
func (c *Config) envFloats() map[string]*float64 {
	return map[string]*float64{
		"BEAVER_GRAVITY":           &c.Gravity,
		"BEAVER_SETTLE_THRESHOLD":  &c.SettleThreshold,
		"BEAVER_MIN_POWER":         &c.MinPower,
		"BEAVER_MAX_POWER":         &c.MaxPower,
		"BEAVER_POWER_RATE":        &c.PowerRate,
		"BEAVER_LAUNCH_SCALE":      &c.LaunchSpeedScale,
		"BEAVER_COMBATANT_RADIUS":  &c.CombatantRadius,
		"BEAVER_COMBATANT_MASS":    &c.CombatantMass,
		"BEAVER_COMBATANT_HEALTH":  &c.CombatantHealth,
		"BEAVER_PROJECTILE_RADIUS": &c.ProjectileRadius,
		"BEAVER_PROJECTILE_DAMAGE": &c.ProjectileDamage,
	}
}

func (c *Config) envInts() map[string]*int {
	return map[string]*int{
		"BEAVER_VELOCITY_ITERATIONS": &c.VelocityIterations,
		"BEAVER_POSITION_ITERATIONS": &c.PositionIterations,
		"BEAVER_PLAYERS":             &c.Players,
		"BEAVER_TERRAIN_WIDTH":       &c.TerrainWidth,
		"BEAVER_TERRAIN_HEIGHT":      &c.TerrainHeight,
	}
}

// ApplyEnv overrides config fields from BEAVER_* variables found through lookup
// (normally os.LookupEnv after a .env file has been loaded).
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	for name, dst := range c.envFloats() {
		raw, ok := lookup(name)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		*dst = v
	}
	for name, dst := range c.envInts() {
		raw, ok := lookup(name)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		*dst = v
	}
	return c.Validate()
}

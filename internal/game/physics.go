package game

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Collision types attached to every shape so contact scans can tell a
// projectile from a combatant.
const (
	collisionCombatant cp.CollisionType = iota + 1
	collisionProjectile
)

// BodyKind tags what owns a rigid body.
type BodyKind int

const (
	BodyCombatant BodyKind = iota
	BodyProjectile
)

// BodySpec describes a dynamic circle to create.
type BodySpec struct {
	Kind        BodyKind
	OwnerID     int
	Position    cp.Vector
	Velocity    cp.Vector
	Radius      float64
	Density     float64 // mass per px² of disc area
	Friction    float64
	Restitution float64
}

// PhysicsConfig is the part of Config the world needs.
type PhysicsConfig struct {
	Gravity            float64
	TimeStep           float64
	VelocityIterations int
	PositionIterations int
}

func (c Config) physics() PhysicsConfig {
	return PhysicsConfig{
		Gravity:            c.Gravity,
		TimeStep:           c.TimeStep,
		VelocityIterations: c.VelocityIterations,
		PositionIterations: c.PositionIterations,
	}
}

// World is the fixed-timestep rigid-body integrator. It owns the Chipmunk
// space; bodies are created and destroyed only through it.
type World struct {
	space  *cp.Space
	dt     float64
	bodies map[*cp.Body]*Body
	steps  int
}

// NewWorld builds a space with downward gravity (screen y grows down).
//
// Chipmunk folds positional correction into its velocity solver, so the
// velocity and position iteration budgets are summed into one count.
func NewWorld(cfg PhysicsConfig) *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: 0, Y: cfg.Gravity})
	space.Iterations = uint(cfg.VelocityIterations + cfg.PositionIterations)
	return &World{
		space:  space,
		dt:     cfg.TimeStep,
		bodies: make(map[*cp.Body]*Body),
	}
}

// Step advances the world by exactly one fixed tick.
func (w *World) Step() {
	w.space.Step(w.dt)
	w.steps++
}

// Steps returns how many ticks have been integrated.
func (w *World) Steps() int { return w.steps }

// Iterations returns the solver iteration count of the space.
func (w *World) Iterations() uint { return w.space.Iterations }

// IsSettled reports whether every dynamic body moves no faster than threshold.
func (w *World) IsSettled(threshold float64) bool {
	for cb := range w.bodies {
		if cb.GetType() != cp.BODY_DYNAMIC {
			continue
		}
		if cb.Velocity().Length() > threshold {
			return false
		}
	}
	return true
}

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int { return len(w.bodies) }

// AddCircle creates a dynamic circular body.
func (w *World) AddCircle(spec BodySpec) *Body {
	mass := spec.Density * math.Pi * spec.Radius * spec.Radius
	if mass <= 0 {
		mass = 1
	}
	cb := cp.NewBody(mass, cp.MomentForCircle(mass, 0, spec.Radius, cp.Vector{}))
	cb.SetPosition(spec.Position)
	cb.SetVelocityVector(spec.Velocity)

	shape := cp.NewCircle(cb, spec.Radius, cp.Vector{})
	shape.SetFriction(spec.Friction)
	shape.SetElasticity(spec.Restitution)
	switch spec.Kind {
	case BodyProjectile:
		shape.SetCollisionType(collisionProjectile)
	default:
		shape.SetCollisionType(collisionCombatant)
	}

	w.space.AddBody(cb)
	w.space.AddShape(shape)

	b := &Body{world: w, body: cb, shape: shape, radius: spec.Radius, kind: spec.Kind, owner: spec.OwnerID}
	w.bodies[cb] = b
	return b
}

// Remove destroys a body. Removing twice is a no-op.
func (w *World) Remove(b *Body) {
	if b == nil || b.removed {
		return
	}
	w.space.RemoveShape(b.shape)
	w.space.RemoveBody(b.body)
	delete(w.bodies, b.body)
	b.removed = true
}

// Body is a circle owned by exactly one combatant or projectile.
type Body struct {
	world   *World
	body    *cp.Body
	shape   *cp.Shape
	radius  float64
	kind    BodyKind
	owner   int
	removed bool
}

func (b *Body) Position() cp.Vector     { return b.body.Position() }
func (b *Body) Velocity() cp.Vector     { return b.body.Velocity() }
func (b *Body) SetPosition(p cp.Vector) { b.body.SetPosition(p) }
func (b *Body) SetVelocity(v cp.Vector) { b.body.SetVelocityVector(v) }
func (b *Body) Radius() float64         { return b.radius }
func (b *Body) Mass() float64           { return b.body.Mass() }
func (b *Body) Removed() bool           { return b.removed }
func (b *Body) Kind() BodyKind          { return b.kind }
func (b *Body) Owner() int              { return b.owner }

// ApplyImpulse applies an impulse through the centre of mass.
func (b *Body) ApplyImpulse(j cp.Vector) {
	b.body.ApplyImpulseAtWorldPoint(j, b.body.Position())
}

// SetSupport installs a velocity integrator that skips gravity while
// supported returns true, standing in for the normal force of the terrain.
func (b *Body) SetSupport(supported func() bool) {
	b.body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping, dt float64) {
		if supported() {
			gravity = cp.Vector{}
		}
		cp.BodyUpdateVelocity(body, gravity, damping, dt)
	})
}

// Touching returns the bodies currently in contact with b, read from the
// solver's arbiter list.
func (b *Body) Touching() []*Body {
	if b.removed {
		return nil
	}
	var out []*Body
	b.body.EachArbiter(func(arb *cp.Arbiter) {
		if arb.Count() == 0 {
			return
		}
		a, o := arb.Bodies()
		other := o
		if other == b.body {
			other = a
		}
		if ob, ok := b.world.bodies[other]; ok {
			out = append(out, ob)
		}
	})
	return out
}

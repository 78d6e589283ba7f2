package game

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Resolver tuning. The arc covers the bottom half-circle; the extra samples
// cover the top and upper diagonals.
const (
	resolverArcSamples   = 13
	resolverDepthFloor   = 0.1 // penetration weight floor, fraction of radius
	resolverMaxPush      = 0.5 // push magnitude cap, fraction of radius
	resolverBaseFactor   = 0.2
	resolverMaxFactor    = 1.2
	resolverSlideDamping = 0.6
	resolverFriction     = 0.8
)

// sampleDirs holds the unit offsets of the perimeter ring, bottom arc first.
// Screen y grows downward, so the bottom arc has sin(θ) >= 0.
var sampleDirs = func() []cp.Vector {
	dirs := make([]cp.Vector, 0, resolverArcSamples+3)
	for i := 0; i < resolverArcSamples; i++ {
		theta := math.Pi * float64(i) / float64(resolverArcSamples-1)
		dirs = append(dirs, cp.Vector{X: math.Cos(theta), Y: math.Sin(theta)})
	}
	d := math.Sqrt2 / 2
	dirs = append(dirs,
		cp.Vector{X: 0, Y: -1},
		cp.Vector{X: d, Y: -d},
		cp.Vector{X: -d, Y: -d},
	)
	return dirs
}()

// Contact summarises one resolver pass for a body.
type Contact struct {
	Grounded       bool
	Samples        int       // solid samples
	MaxPenetration float64   // deepest measured penetration, px
	Push           cp.Vector // position correction applied
	Cancelled      bool      // inward velocity component removed
}

// Resolver pushes circular bodies out of the terrain and decides whether they
// stand on it. It is stateless; one pass per body per tick.
type Resolver struct{}

// Resolve corrects c's body against t and updates its grounded flag.
// The push is min(pen+0.1r, 0.5r)·min(pen/r+0.2, 1.2) along the averaged
// sample normal, applied only when the deepest penetration is positive. A
// body whose samples merely touch solid cells gets no positional push, only
// the velocity cancellation; its support against gravity comes from
// Body.SetSupport instead of a 0.02r lift every tick.
func (Resolver) Resolve(c *Combatant, t *Terrain) Contact {
	body := c.Body()
	r := c.Radius()
	center := body.Position()

	var (
		contact Contact
		acc     cp.Vector
		maxPen  float64
	)
	for _, dir := range sampleDirs {
		p := center.Add(dir.Mult(r))
		if !t.IsSolid(p.X, p.Y) {
			continue
		}
		contact.Samples++
		if p.Y >= center.Y {
			contact.Grounded = true
		}
		pen := r - surfaceDistance(t, center, dir, r)
		maxPen = math.Max(maxPen, pen)
		weight := math.Max(pen, r*resolverDepthFloor)
		// dir points center→sample; the push runs sample→center.
		acc = acc.Add(dir.Neg().Mult(weight))
	}
	contact.MaxPenetration = maxPen
	c.setGrounded(contact.Grounded)
	if contact.Samples == 0 {
		return contact
	}

	avg := acc.Mult(1 / float64(contact.Samples))
	if avg.LengthSq() < 1e-12 {
		return contact
	}
	pushDir := avg.Normalize()

	// A body touching the surface with no measurable penetration is resting:
	// correcting it would lift it clear of the ground every tick.
	if maxPen > 0 {
		magnitude := math.Min(maxPen+r*resolverDepthFloor, r*resolverMaxPush)
		factor := math.Min(maxPen/r+resolverBaseFactor, resolverMaxFactor)
		contact.Push = pushDir.Mult(magnitude * factor)
		body.SetPosition(center.Add(contact.Push))
	}

	v := body.Velocity()
	if along := v.Dot(pushDir); along < 0 {
		v = v.Sub(pushDir.Mult(along))
		contact.Cancelled = true
	} else {
		v = v.Mult(resolverSlideDamping)
	}
	if contact.Grounded {
		v.X *= resolverFriction
	}
	body.SetVelocity(v)
	return contact
}

// surfaceDistance marches from center along dir in whole-pixel steps and
// returns the distance to the first solid cell, capped at r.
func surfaceDistance(t *Terrain, center, dir cp.Vector, r float64) float64 {
	steps := int(math.Ceil(r))
	for k := 0; k < steps; k++ {
		p := center.Add(dir.Mult(float64(k)))
		if t.IsSolid(p.X, p.Y) {
			return float64(k)
		}
	}
	return r
}

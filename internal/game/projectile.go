package game

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Explosion tuning.
const (
	explosionRadiusPerRadius = 8.0
	explosionRadiusPerDamage = 0.3
	damageReach              = 1.1 // maxDamageDistance as a multiple of explosion radius
	directHitMultiplier      = 1.2
	knockbackPerDamage       = 0.25
	knockbackPerRadius       = 0.75
)

// OutcomeKind is the terminal (or non-terminal) result of one projectile tick.
type OutcomeKind int

const (
	OutcomeFlying OutcomeKind = iota
	OutcomeHitCombatant
	OutcomeHitTerrain
	OutcomeOutOfBounds
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFlying:
		return "flying"
	case OutcomeHitCombatant:
		return "hit_combatant"
	case OutcomeHitTerrain:
		return "hit_terrain"
	case OutcomeOutOfBounds:
		return "out_of_bounds"
	default:
		return "unknown"
	}
}

// Outcome is what a projectile reports for a tick. CombatantID is only
// meaningful for OutcomeHitCombatant.
type Outcome struct {
	Kind        OutcomeKind
	OwnerID     int
	CombatantID int
	Point       cp.Vector
}

// Terminal reports whether the projectile is gone after this outcome.
func (o Outcome) Terminal() bool { return o.Kind != OutcomeFlying }

// ProjectileSpec is everything needed to launch a projectile.
type ProjectileSpec struct {
	OwnerID     int
	Position    cp.Vector
	Velocity    cp.Vector
	Damage      float64
	Radius      float64
	Mass        float64
	Restitution float64
}

// Projectile is a shell in flight. It is destroyed within the tick that
// produces its terminal outcome.
type Projectile struct {
	owner  int
	body   *Body
	world  *World
	radius float64
	damage float64
	active bool
	prev   cp.Vector
	ticks  int
}

// SpawnProjectile creates the projectile body in w. Tunnelling through thin
// terrain or past combatants is prevented by Update sweeping the segment
// travelled during the tick.
func SpawnProjectile(w *World, spec ProjectileSpec) *Projectile {
	area := math.Pi * spec.Radius * spec.Radius
	body := w.AddCircle(BodySpec{
		Kind:        BodyProjectile,
		OwnerID:     spec.OwnerID,
		Position:    spec.Position,
		Velocity:    spec.Velocity,
		Radius:      spec.Radius,
		Density:     spec.Mass / area,
		Restitution: spec.Restitution,
	})
	return &Projectile{
		owner:  spec.OwnerID,
		body:   body,
		world:  w,
		radius: spec.Radius,
		damage: spec.Damage,
		active: true,
		prev:   spec.Position,
	}
}

func (p *Projectile) Active() bool        { return p.active }
func (p *Projectile) Owner() int          { return p.owner }
func (p *Projectile) Radius() float64     { return p.radius }
func (p *Projectile) Damage() float64     { return p.damage }
func (p *Projectile) Position() cp.Vector { return p.body.Position() }

// ExplosionRadius is the destructive radius the projectile detonates with.
func (p *Projectile) ExplosionRadius() float64 {
	return ExplosionRadius(p.radius, p.damage)
}

// ExplosionRadius derives the blast radius from shell radius and damage.
func ExplosionRadius(radius, damage float64) float64 {
	return radius*explosionRadiusPerRadius + damage*explosionRadiusPerDamage
}

// Update checks for a combatant hit, a terrain hit and leaving the field.
// A contact the solver already reports with a living combatant wins
// outright. Otherwise the segment travelled this tick is swept and the
// earliest hit along it is reported, so a shell that reaches terrain before
// a combatant reports HitTerrain; on an exact tie the combatant wins.
// Explosions are not applied here; see Explode. Only active projectiles are
// updated; an inactive one reports where it stopped.
func (p *Projectile) Update(t *Terrain, combatants []*Combatant) Outcome {
	if !p.active {
		return Outcome{Kind: OutcomeOutOfBounds, OwnerID: p.owner, CombatantID: -1, Point: p.prev}
	}
	p.ticks++
	from, to := p.prev, p.body.Position()
	defer func() { p.prev = to }()

	if id, ok := p.touchingCombatant(combatants); ok {
		return Outcome{Kind: OutcomeHitCombatant, OwnerID: p.owner, CombatantID: id, Point: to}
	}

	cFrac, cID, cHit := p.sweepCombatants(from, to, combatants)
	tFrac, tHit := p.sweepTerrain(t, from, to)
	switch {
	case cHit && (!tHit || cFrac <= tFrac):
		return Outcome{Kind: OutcomeHitCombatant, OwnerID: p.owner, CombatantID: cID, Point: lerp(from, to, cFrac)}
	case tHit:
		return Outcome{Kind: OutcomeHitTerrain, OwnerID: p.owner, CombatantID: -1, Point: lerp(from, to, tFrac)}
	case !t.InBounds(to.X, to.Y):
		return Outcome{Kind: OutcomeOutOfBounds, OwnerID: p.owner, CombatantID: -1, Point: to}
	}
	return Outcome{Kind: OutcomeFlying, OwnerID: p.owner, CombatantID: -1, Point: to}
}

// touchingCombatant is the cheap early exit: the solver already knows about
// contacts between this shell and a combatant body.
func (p *Projectile) touchingCombatant(combatants []*Combatant) (int, bool) {
	for _, other := range p.body.Touching() {
		if other.Kind() != BodyCombatant {
			continue
		}
		for _, c := range combatants {
			if c.ID() == other.Owner() && c.IsAlive() {
				return c.ID(), true
			}
		}
	}
	return 0, false
}

// sweepCombatants finds the earliest point along from→to where the shell
// overlaps a living combatant. frac is the position along the segment in [0,1].
func (p *Projectile) sweepCombatants(from, to cp.Vector, combatants []*Combatant) (frac float64, id int, hit bool) {
	seg := to.Sub(from)
	segLen2 := seg.LengthSq()
	frac = math.Inf(1)
	for _, c := range combatants {
		if !c.IsAlive() {
			continue
		}
		reach := c.Radius() + p.radius
		f := 0.0
		if segLen2 > 0 {
			f = clampFloat(c.Position().Sub(from).Dot(seg)/segLen2, 0, 1)
		}
		if lerp(from, to, f).Distance(c.Position()) > reach {
			continue
		}
		f = firstContactFrac(from, seg, c.Position(), reach, f)
		if f < frac {
			frac, id, hit = f, c.ID(), true
		}
	}
	return frac, id, hit
}

// firstContactFrac walks back from the closest approach to the first point
// on the segment within reach of center.
func firstContactFrac(from, seg, center cp.Vector, reach, closest float64) float64 {
	a := seg.LengthSq()
	if a == 0 {
		return 0
	}
	d := from.Sub(center)
	b := 2 * d.Dot(seg)
	c := d.LengthSq() - reach*reach
	disc := b*b - 4*a*c
	if disc < 0 {
		return closest
	}
	f := (-b - math.Sqrt(disc)) / (2 * a)
	return clampFloat(f, 0, closest)
}

// sweepTerrain samples the shell centre and its four cardinal rim points at
// sub-radius intervals along from→to. Cells outside the field do not count.
func (p *Projectile) sweepTerrain(t *Terrain, from, to cp.Vector) (float64, bool) {
	step := math.Max(p.radius, 1)
	n := int(math.Ceil(to.Distance(from) / step))
	if n < 1 {
		n = 1
	}
	offsets := [5]cp.Vector{
		{},
		{X: p.radius},
		{X: -p.radius},
		{Y: p.radius},
		{Y: -p.radius},
	}
	for i := 1; i <= n; i++ {
		f := float64(i) / float64(n)
		at := lerp(from, to, f)
		for _, off := range offsets {
			q := at.Add(off)
			if t.solidInside(q.X, q.Y) {
				return f, true
			}
		}
	}
	return 0, false
}

// Deactivate removes the projectile without exploding.
func (p *Projectile) Deactivate() {
	if !p.active {
		return
	}
	p.active = false
	p.world.Remove(p.body)
}

// Explode detonates at point, carving terrain and applying damage and
// knockback, then deactivates the projectile. directID is the combatant that
// was hit directly, or -1.
func (p *Projectile) Explode(point cp.Vector, t *Terrain, combatants []*Combatant, directID int) ExplosionResult {
	ex := Explosion{
		Center:     point,
		Radius:     p.ExplosionRadius(),
		BaseDamage: p.damage,
		BaseRadius: p.radius,
		OwnerID:    p.owner,
	}
	res := ex.Apply(t, combatants, directID)
	p.Deactivate()
	return res
}

// Explosion is a detonation independent of the shell that caused it.
type Explosion struct {
	Center     cp.Vector
	Radius     float64
	BaseDamage float64
	BaseRadius float64
	OwnerID    int
}

// MaxDamageDistance is the distance at which damage reaches zero.
func (e Explosion) MaxDamageDistance() float64 { return e.Radius * damageReach }

// DamageAt returns the damage dealt at distance d. It falls off linearly and
// is zero at or beyond MaxDamageDistance.
func (e Explosion) DamageAt(d float64, direct bool) float64 {
	maxD := e.MaxDamageDistance()
	if d >= maxD || maxD <= 0 {
		return 0
	}
	dmg := e.BaseDamage * (1 - math.Max(d, 0)/maxD)
	if direct {
		dmg *= directHitMultiplier
	}
	return dmg
}

// Knockback is the impulse magnitude applied to everyone in range. It does
// not fall off with distance.
func (e Explosion) Knockback() float64 {
	return e.BaseDamage*knockbackPerDamage + e.BaseRadius*knockbackPerRadius
}

// Hit records the effect of an explosion on one combatant.
type Hit struct {
	CombatantID int
	Distance    float64
	Damage      float64
	Direct      bool
	Killed      bool
}

// ExplosionResult lists what an explosion did.
type ExplosionResult struct {
	Explosion Explosion
	Cleared   int
	Hits      []Hit
}

// Apply carves the crater and damages and pushes every living combatant
// within MaxDamageDistance.
func (e Explosion) Apply(t *Terrain, combatants []*Combatant, directID int) ExplosionResult {
	res := ExplosionResult{Explosion: e}
	res.Cleared = t.DestroyCircle(e.Center.X, e.Center.Y, e.Radius)

	maxD := e.MaxDamageDistance()
	for _, c := range combatants {
		if !c.IsAlive() {
			continue
		}
		offset := c.Position().Sub(e.Center)
		d := offset.Length()
		if d >= maxD {
			continue
		}
		direct := c.ID() == directID
		applied, killed := c.TakeDamage(e.DamageAt(d, direct))

		dir := cp.Vector{X: 0, Y: -1}
		if d > 1e-9 {
			dir = offset.Mult(1 / d)
		}
		c.Body().ApplyImpulse(dir.Mult(e.Knockback()))
		c.setGrounded(false)

		res.Hits = append(res.Hits, Hit{
			CombatantID: c.ID(),
			Distance:    d,
			Damage:      applied,
			Direct:      direct,
			Killed:      killed,
		})
	}
	return res
}

func lerp(a, b cp.Vector, f float64) cp.Vector {
	return a.Add(b.Sub(a).Mult(f))
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

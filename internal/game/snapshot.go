package game

import "github.com/jakecoffman/cp"

// CombatantView is the read-only picture of a combatant published each tick.
type CombatantView struct {
	ID        int
	Label     string
	Position  cp.Vector
	Velocity  cp.Vector
	Radius    float64
	Facing    int
	Health    float64
	MaxHealth float64
	State     CombatantState
	Aim       Aim
	Grounded  bool
}

// Alive reports whether the combatant had health left at publish time.
func (v CombatantView) Alive() bool { return v.Health > 0 }

// ProjectileView is an active projectile at publish time.
type ProjectileView struct {
	OwnerID  int
	Position cp.Vector
	Velocity cp.Vector
	Radius   float64
}

// Snapshot is everything renderers and AIs may read about a tick. It shares
// no mutable state with the match.
type Snapshot struct {
	Tick        int
	Phase       Phase
	Current     int
	Turn        int
	Width       int
	Height      int
	Combatants  []CombatantView
	Projectiles []ProjectileView
	Outcomes    []Outcome         // terminal projectile outcomes this tick
	Explosions  []ExplosionResult // explosions applied this tick
	Craters     []Crater          // terrain erased this tick
	Events      []TurnEvent
	Decided     bool
	Winner      int // -1 for none or a draw
}

// Active returns the view of the combatant whose turn it is.
func (s Snapshot) Active() (CombatantView, bool) {
	if s.Current < 0 || s.Current >= len(s.Combatants) {
		return CombatantView{}, false
	}
	return s.Combatants[s.Current], true
}

// Combatant looks a combatant up by id.
func (s Snapshot) Combatant(id int) (CombatantView, bool) {
	for _, c := range s.Combatants {
		if c.ID == id {
			return c, true
		}
	}
	return CombatantView{}, false
}

// Living counts combatants with health left.
func (s Snapshot) Living() int {
	n := 0
	for _, c := range s.Combatants {
		if c.Alive() {
			n++
		}
	}
	return n
}

func viewOf(c *Combatant) CombatantView {
	return CombatantView{
		ID:        c.id,
		Label:     c.label,
		Position:  c.Position(),
		Velocity:  c.body.Velocity(),
		Radius:    c.radius,
		Facing:    c.facing,
		Health:    c.health,
		MaxHealth: c.maxHealth,
		State:     c.state,
		Aim:       c.aim,
		Grounded:  c.grounded,
	}
}

// Package ai holds computer opponents. They only see game.Snapshot values
// and answer with game.Intent values; the simulation never waits on them.
package ai

import (
	"context"
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"

	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
)

// Ballistic tuning.
const (
	biasPerPixel  = 0.02 // power correction per pixel of miss
	maxPowerBias  = 30
	angleJitter   = 0.04 // radians, uniform ±
	powerHeadroom = 0.9  // fraction of max power used for planning
)

// plan is the shot being lined up for the current turn.
type plan struct {
	turn     int
	targetID int
	target   cp.Vector
	facing   int
	angle    float64
	power    float64
}

// Ballistic aims at the nearest living opponent by solving the projectile
// arc, and corrects its power from where its previous shots landed.
type Ballistic struct {
	id      int
	cfg     game.Config
	logger  *log.Logger
	rng     *rand.Rand
	mailbox *game.Mailbox
	snaps   chan game.Snapshot

	current   *plan
	lastShot  *plan
	firedTurn int
	powerBias float64
}

// NewBallistic creates an AI for combatant id. seed makes its aim error
// reproducible.
func NewBallistic(id int, cfg game.Config, seed int64, logger *log.Logger) *Ballistic {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Ballistic{
		id:        id,
		cfg:       cfg,
		logger:    logger.With("ai", id),
		rng:       rand.New(rand.NewSource(seed)), // #nosec G404 -- gameplay jitter
		mailbox:   &game.Mailbox{},
		snaps:     make(chan game.Snapshot, 1),
		firedTurn: -1,
	}
}

// Source is what the match polls for this AI.
func (b *Ballistic) Source() game.IntentSource { return b.mailbox }

// Observe hands a snapshot to the AI without blocking. A snapshot the AI has
// not picked up yet is replaced by the newer one.
func (b *Ballistic) Observe(snap game.Snapshot) {
	for {
		select {
		case b.snaps <- snap:
			return
		default:
		}
		select {
		case <-b.snaps:
		default:
		}
	}
}

// Run thinks on every observed snapshot until ctx is done.
func (b *Ballistic) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-b.snaps:
			if in, ok := b.Decide(snap); ok {
				b.mailbox.Publish(in)
			}
		}
	}
}

// Decide returns the next intent for snap, or false when it is not this
// AI's turn. It is called from Run but is safe to drive synchronously.
func (b *Ballistic) Decide(snap game.Snapshot) (game.Intent, bool) {
	b.Learn(snap)
	// A late snapshot from a turn that already fired must not fire again.
	if snap.Phase != game.PhasePlayerInput || snap.Current != b.id || snap.Turn == b.firedTurn {
		return game.Intent{}, false
	}
	self, ok := snap.Active()
	if !ok || !self.Alive() {
		return game.Intent{}, false
	}
	if b.current == nil || b.current.turn != snap.Turn {
		p, ok := b.planShot(snap, self)
		if !ok {
			return game.Intent{}, false
		}
		b.current = p
		b.logger.Debug("shot planned", "target", p.targetID, "angle", p.angle, "power", p.power)
	}
	p := b.current

	if self.Facing != p.facing {
		return game.Intent{MoveLeft: p.facing < 0, MoveRight: p.facing > 0}, true
	}
	if diff := p.angle - self.Aim.Angle; math.Abs(diff) > b.cfg.AimRate/2 {
		delta := clamp(diff/b.cfg.AimRate, -1, 1)
		return game.Intent{AimDelta: delta}, true
	}
	if self.Aim.Power+b.cfg.PowerRate/2 < p.power {
		return game.Intent{Charging: true}, true
	}
	b.lastShot = p
	b.firedTurn = snap.Turn
	return game.Intent{Fire: true}, true
}

// planShot picks the nearest living opponent and solves for an angle and
// power that land on it.
func (b *Ballistic) planShot(snap game.Snapshot, self game.CombatantView) (*plan, bool) {
	var (
		target game.CombatantView
		best   = math.Inf(1)
	)
	for _, c := range snap.Combatants {
		if c.ID == self.ID || !c.Alive() {
			continue
		}
		if d := c.Position.Distance(self.Position); d < best {
			best, target = d, c
		}
	}
	if math.IsInf(best, 1) {
		return nil, false
	}

	facing := 1
	if target.Position.X < self.Position.X {
		facing = -1
	}
	dx := math.Abs(target.Position.X - self.Position.X)
	rise := self.Position.Y - target.Position.Y // screen y grows down

	minP := b.cfg.MinPower
	maxP := b.cfg.MaxPower * powerHeadroom
	power := clamp(minP+b.powerBias, minP, b.cfg.MaxPower)
	angle := math.Pi / 4
	for p := minP; p <= maxP; p += b.cfg.PowerRate {
		if a, ok := SolveAngle(dx, rise, p*b.cfg.LaunchSpeedScale, b.cfg.Gravity); ok &&
			a >= b.cfg.MinAimAngle && a <= b.cfg.MaxAimAngle {
			angle = a
			power = clamp(p+b.powerBias, minP, b.cfg.MaxPower)
			break
		}
	}
	angle += (b.rng.Float64()*2 - 1) * angleJitter
	angle = clamp(angle, b.cfg.MinAimAngle, b.cfg.MaxAimAngle)

	return &plan{
		turn:     snap.Turn,
		targetID: target.ID,
		target:   target.Position,
		facing:   facing,
		angle:    angle,
		power:    power,
	}, true
}

// Learn adjusts the power bias from the outcome of this AI's last shot.
// Decide calls it; drivers that only poll on the AI's turn should also feed
// it every snapshot so no outcome is missed.
func (b *Ballistic) Learn(snap game.Snapshot) {
	if b.lastShot == nil {
		return
	}
	for _, o := range snap.Outcomes {
		if o.OwnerID != b.id {
			continue
		}
		shot := b.lastShot
		b.lastShot = nil
		if o.Kind == game.OutcomeHitCombatant && o.CombatantID == shot.targetID {
			return
		}
		shortfall := (shot.target.X - o.Point.X) * float64(shot.facing)
		if o.Kind == game.OutcomeOutOfBounds {
			shortfall = -math.Abs(shortfall)
		}
		b.powerBias = clamp(b.powerBias+shortfall*biasPerPixel, -maxPowerBias, maxPowerBias)
		b.logger.Debug("shot missed", "shortfall", shortfall, "bias", b.powerBias)
		return
	}
}

// SolveAngle returns the low-arc launch angle above horizontal that carries
// a projectile with speed v a horizontal distance dx while rising by rise,
// under gravity g. ok is false when the target is out of reach.
func SolveAngle(dx, rise, v, g float64) (float64, bool) {
	if dx <= 0 || v <= 0 || g <= 0 {
		return 0, false
	}
	v2 := v * v
	disc := v2*v2 - g*(g*dx*dx+2*rise*v2)
	if disc < 0 {
		return 0, false
	}
	return math.Atan((v2 - math.Sqrt(disc)) / (g * dx)), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

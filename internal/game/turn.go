package game

import "fmt"

// Phase is one step of a turn.
type Phase int

const (
	PhasePlayerInput Phase = iota
	PhaseProjectileFlying
	PhasePhysicsSettling
	PhaseEndTurn
)

func (p Phase) String() string {
	switch p {
	case PhasePlayerInput:
		return "player_input"
	case PhaseProjectileFlying:
		return "projectile_flying"
	case PhasePhysicsSettling:
		return "physics_settling"
	case PhaseEndTurn:
		return "end_turn"
	default:
		return "unknown"
	}
}

// TurnState is the externally visible state of the turn machine. Current
// always indexes a combatant, which may be dead.
type TurnState struct {
	Current int
	Phase   Phase
	Turn    int // completed turns
}

// TurnHost is what the turn machine drives. Match implements it.
type TurnHost interface {
	Combatants() []*Combatant
	// PlayerInput applies whatever intent is available for c this tick and
	// reports whether a projectile was launched.
	PlayerInput(c *Combatant) bool
	ActiveProjectiles() int
	Settled() bool
}

// TurnEventKind classifies a TurnEvent.
type TurnEventKind int

const (
	EventPhaseChanged TurnEventKind = iota
	EventTurnStarted
	EventTurnSkipped
	EventMatchDecided
)

func (k TurnEventKind) String() string {
	switch k {
	case EventPhaseChanged:
		return "phase_changed"
	case EventTurnStarted:
		return "turn_started"
	case EventTurnSkipped:
		return "turn_skipped"
	case EventMatchDecided:
		return "match_decided"
	default:
		return "unknown"
	}
}

// TurnEvent is a notification produced by TurnMachine.Update.
type TurnEvent struct {
	Kind   TurnEventKind
	From   Phase
	To     Phase
	Player int // index of the combatant concerned
	Winner int // EventMatchDecided only; -1 for a draw
}

func (e TurnEvent) String() string {
	switch e.Kind {
	case EventPhaseChanged:
		return fmt.Sprintf("%s → %s", e.From, e.To)
	case EventMatchDecided:
		if e.Winner < 0 {
			return "draw"
		}
		return fmt.Sprintf("winner %d", e.Winner)
	default:
		return fmt.Sprintf("player %d", e.Player)
	}
}

// TurnMachine advances phases and rotates players. It never halts on its own:
// a decided match is reported once through EventMatchDecided and the driver
// chooses whether to keep ticking.
type TurnMachine struct {
	state   TurnState
	decided bool
	winner  int
}

// NewTurnMachine starts in PlayerInput for player 0.
func NewTurnMachine() *TurnMachine {
	return &TurnMachine{winner: -1}
}

// State returns a copy of the current turn state.
func (m *TurnMachine) State() TurnState { return m.state }

// Decided reports whether a win check has found at most one survivor.
func (m *TurnMachine) Decided() (winner int, ok bool) { return m.winner, m.decided }

// Update handles exactly one phase for this tick. A transition ends the
// tick's handling; the next phase runs on the next call.
func (m *TurnMachine) Update(h TurnHost) []TurnEvent {
	combatants := h.Combatants()
	if len(combatants) == 0 {
		return nil
	}
	switch m.state.Phase {
	case PhasePlayerInput:
		active := combatants[m.state.Current]
		if !active.IsAlive() {
			events := []TurnEvent{{Kind: EventTurnSkipped, Player: m.state.Current}}
			return append(events, m.endTurn(combatants, PhasePlayerInput)...)
		}
		if h.PlayerInput(active) {
			return []TurnEvent{m.moveTo(PhaseProjectileFlying)}
		}
	case PhaseProjectileFlying:
		if h.ActiveProjectiles() == 0 {
			return []TurnEvent{m.moveTo(PhasePhysicsSettling)}
		}
	case PhasePhysicsSettling:
		if h.Settled() {
			return m.endTurn(combatants, PhasePhysicsSettling)
		}
	case PhaseEndTurn:
		// Only reachable if a caller stored it; finish the rotation.
		return m.endTurn(combatants, PhaseEndTurn)
	}
	return nil
}

// endTurn runs the EndTurn micro-phase and lands in PlayerInput for the next
// index. Rotation is unconditional; liveness is checked on entry instead.
func (m *TurnMachine) endTurn(combatants []*Combatant, from Phase) []TurnEvent {
	var events []TurnEvent
	if from != PhaseEndTurn {
		events = append(events, m.moveTo(PhaseEndTurn))
	}
	for _, c := range combatants {
		c.ResetPower()
	}
	m.state.Current = (m.state.Current + 1) % len(combatants)
	m.state.Turn++

	if !m.decided {
		living, last := 0, -1
		for i, c := range combatants {
			if c.IsAlive() {
				living++
				last = i
			}
		}
		if living <= 1 {
			m.decided = true
			m.winner = last
			events = append(events, TurnEvent{Kind: EventMatchDecided, Winner: last, Player: m.state.Current})
		}
	}

	events = append(events, m.moveTo(PhasePlayerInput))
	events = append(events, TurnEvent{Kind: EventTurnStarted, Player: m.state.Current})
	return events
}

func (m *TurnMachine) moveTo(p Phase) TurnEvent {
	ev := TurnEvent{Kind: EventPhaseChanged, From: m.state.Phase, To: p, Player: m.state.Current}
	m.state.Phase = p
	return ev
}

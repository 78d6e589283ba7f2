package game

//go:generate go tool mockgen -source=intent.go -destination=mock_intent_test.go -package=game

import "sync"

// Intent is one tick's worth of commands for the active combatant.
type Intent struct {
	MoveLeft  bool
	MoveRight bool
	Jump      bool
	AimDelta  float64 // -1..1, scaled by Config.AimRate
	Charging  bool
	Fire      bool
}

// Idle reports whether the intent asks for nothing.
func (in Intent) Idle() bool {
	return !in.MoveLeft && !in.MoveRight && !in.Jump && in.AimDelta == 0 && !in.Charging && !in.Fire
}

// IntentSource supplies intents for a combatant. Poll is called from the tick
// and must not block; snap is the read-only snapshot of the previous tick.
// Returning false means no intent is available and the tick stays idle.
type IntentSource interface {
	Poll(snap Snapshot, id int) (Intent, bool)
}

// IntentFunc adapts a function to IntentSource.
type IntentFunc func(snap Snapshot, id int) (Intent, bool)

func (f IntentFunc) Poll(snap Snapshot, id int) (Intent, bool) { return f(snap, id) }

// Mailbox is an IntentSource fed from another goroutine. Publish overwrites
// whatever has not been consumed yet; Poll takes the pending intent.
type Mailbox struct {
	mu      sync.Mutex
	pending Intent
	ok      bool
}

// Publish stores in as the next intent to be consumed.
func (m *Mailbox) Publish(in Intent) {
	m.mu.Lock()
	m.pending, m.ok = in, true
	m.mu.Unlock()
}

// Poll returns and clears the pending intent.
func (m *Mailbox) Poll(Snapshot, int) (Intent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.pending, m.ok
	m.pending, m.ok = Intent{}, false
	return in, ok
}

// Reset drops an unconsumed intent. The match calls it when a turn starts so
// nothing published during the previous turn leaks into the new one.
func (m *Mailbox) Reset() {
	m.mu.Lock()
	m.pending, m.ok = Intent{}, false
	m.mu.Unlock()
}

// Script replays a fixed list of intents, one per poll, then goes idle.
type Script struct {
	steps []Intent
	next  int
}

// NewScript builds a Script.
func NewScript(steps ...Intent) *Script { return &Script{steps: steps} }

func (s *Script) Poll(Snapshot, int) (Intent, bool) {
	if s.next >= len(s.steps) {
		return Intent{}, false
	}
	in := s.steps[s.next]
	s.next++
	return in, true
}

// Remaining returns how many scripted intents have not been consumed.
func (s *Script) Remaining() int { return len(s.steps) - s.next }

package game

import (
	"fmt"
	"strings"
)

// DebugReport renders the recent history of the match as plain text for
// pasting into bug reports. lastTicks <= 0 means the last 600 ticks.
func (m *Match) DebugReport(lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 600
	}
	toTick := m.tick
	fromTick := toTick - lastTicks + 1
	if fromTick < 0 {
		fromTick = 0
	}
	st := m.turn.State()

	var b strings.Builder
	fmt.Fprintf(&b, "--- Beaver Apocalypse debug report ---\n")
	fmt.Fprintf(&b, "match=%s tick_range=[%d..%d] ticks=%d\n", m.id, fromTick, toTick, toTick-fromTick+1)
	fmt.Fprintf(&b, "phase=%s current=%s turn=%d projectiles=%d bodies=%d settled=%t\n",
		st.Phase, m.labelAt(st.Current), st.Turn, m.ActiveProjectiles(), m.world.BodyCount(), m.Settled())
	fmt.Fprintf(&b, "terrain=%dx%d solid=%d\n\n", m.terrain.Width(), m.terrain.Height(), m.terrain.SolidCount())

	b.WriteString("== combatants ==\n")
	for _, c := range m.combatants {
		pos, vel := c.Position(), c.body.Velocity()
		aim := c.Aim()
		fmt.Fprintf(&b, "  %-4s hp=%5.1f state=%-8s grounded=%-5t facing=%+d pos=(%.1f,%.1f) vel=(%.1f,%.1f) aim=%.2f power=%.1f\n",
			c.Label(), c.Health(), c.State(), c.Grounded(), c.Facing(),
			pos.X, pos.Y, vel.X, vel.Y, aim.Angle, aim.Power)
	}
	b.WriteByte('\n')

	out := m.Outcome()
	fmt.Fprintf(&b, "== outcome ==\n  %s (%s) survivors=%d/%d\n\n",
		out.Outcome, out.Description, out.Survivors, out.Total)

	entries := m.simLog.FilterTickRange(fromTick, toTick)
	fmt.Fprintf(&b, "== events (%d) ==\n", len(entries))
	if len(entries) == 0 {
		b.WriteString("(no events recorded in range)\n")
	}
	for _, e := range entries {
		b.WriteString("  ")
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}

package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded match event.
type SimLogEntry struct {
	Tick      int
	Combatant string  // label e.g. "B0", or "--" for match-wide events
	Category  string  // turn, projectile, terrain, damage, move
	Key       string  // specific event name within the category
	Value     string  // human-readable detail
	NumVal    float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] B0   damage    hit              24.3 from B1 at d=12.0
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-10s %-16s %s",
		e.Tick, e.Combatant, e.Category, e.Key, e.Value)
}

// SimLog collects structured match events. Unlike the on-screen feed it is
// unbounded and machine-readable; tests and the headless report query it.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick movement entries
// are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, combatant, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:      tick,
		Combatant: combatant,
		Category:  category,
		Key:       key,
		Value:     value,
		NumVal:    numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, combatant, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, combatant, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterCombatant returns entries for a specific combatant label.
func (sl *SimLog) FilterCombatant(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Combatant == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the match state.
func (sl *SimLog) Summary(tick int, combatants []*Combatant) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)

	alive := 0
	for _, c := range combatants {
		status := c.State().String()
		if c.IsAlive() {
			alive++
		}
		fmt.Fprintf(&sb, "%-4s hp=%5.1f/%.0f  %-9s at (%.0f,%.0f)\n",
			c.Label(), c.Health(), c.MaxHealth(), status, c.Position().X, c.Position().Y)
	}
	fmt.Fprintf(&sb, "Alive: %d/%d\n", alive, len(combatants))

	fmt.Fprintf(&sb, "Shots: %d  combatant hits: %d  terrain hits: %d  lost: %d\n",
		sl.CountCategory("projectile", "fired"),
		sl.CountCategory("projectile", OutcomeHitCombatant.String()),
		sl.CountCategory("projectile", OutcomeHitTerrain.String()),
		sl.CountCategory("projectile", OutcomeOutOfBounds.String()))

	if last, ok := sl.LastOf("turn", "decided"); ok {
		fmt.Fprintf(&sb, "Decided at T=%03d: %s\n", last.Tick, last.Value)
	}
	return sb.String()
}

package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
)

const (
	feedPanelWidth = 300
	feedMaxEntries = 60
	feedLineHeight = 14
)

// FeedKind picks the colour of a feed line.
type FeedKind int

const (
	FeedTurn FeedKind = iota
	FeedShot
	FeedDamage
	FeedMatch
)

// FeedEntry is a single line in the event feed.
type FeedEntry struct {
	Tick    int
	Label   string // e.g. "B0", or "--"
	Kind    FeedKind
	Message string
}

// EventFeed is a ring buffer of match events rendered beside the field.
type EventFeed struct {
	entries []FeedEntry
	head    int
	count   int
}

// NewEventFeed creates a feed with a fixed capacity.
func NewEventFeed() *EventFeed {
	return &EventFeed{
		entries: make([]FeedEntry, feedMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (f *EventFeed) Add(tick int, label string, kind FeedKind, msg string) {
	f.entries[f.head] = FeedEntry{
		Tick:    tick,
		Label:   label,
		Kind:    kind,
		Message: msg,
	}
	f.head = (f.head + 1) % feedMaxEntries
	if f.count < feedMaxEntries {
		f.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (f *EventFeed) Recent() []FeedEntry {
	result := make([]FeedEntry, f.count)
	for i := 0; i < f.count; i++ {
		idx := (f.head - f.count + i + feedMaxEntries) % feedMaxEntries
		result[i] = f.entries[idx]
	}
	return result
}

// AddSnapshot turns the notable parts of a tick into feed lines.
func (f *EventFeed) AddSnapshot(snap game.Snapshot) {
	label := func(id int) string {
		if c, ok := snap.Combatant(id); ok {
			return c.Label
		}
		return "--"
	}
	for _, ev := range snap.Events {
		switch ev.Kind {
		case game.EventTurnStarted:
			f.Add(snap.Tick, label(ev.Player), FeedTurn, "turn starts")
		case game.EventTurnSkipped:
			f.Add(snap.Tick, label(ev.Player), FeedTurn, "skipped (dead)")
		case game.EventMatchDecided:
			msg := "draw"
			if ev.Winner >= 0 {
				msg = label(ev.Winner) + " wins"
			}
			f.Add(snap.Tick, "--", FeedMatch, msg)
		}
	}
	for _, o := range snap.Outcomes {
		switch o.Kind {
		case game.OutcomeHitCombatant:
			f.Add(snap.Tick, label(o.OwnerID), FeedShot, "direct hit on "+label(o.CombatantID))
		case game.OutcomeHitTerrain:
			f.Add(snap.Tick, label(o.OwnerID), FeedShot, fmt.Sprintf("impact at %.0f,%.0f", o.Point.X, o.Point.Y))
		case game.OutcomeOutOfBounds:
			f.Add(snap.Tick, label(o.OwnerID), FeedShot, "shot left the field")
		}
	}
	for _, ex := range snap.Explosions {
		for _, h := range ex.Hits {
			msg := fmt.Sprintf("-%.0f hp", h.Damage)
			if h.Killed {
				msg += " KO"
			}
			f.Add(snap.Tick, label(h.CombatantID), FeedDamage, msg)
		}
	}
}

func feedColor(k FeedKind) color.RGBA {
	switch k {
	case FeedShot:
		return color.RGBA{R: 230, G: 200, B: 90, A: 255}
	case FeedDamage:
		return color.RGBA{R: 230, G: 90, B: 80, A: 255}
	case FeedMatch:
		return color.RGBA{R: 120, G: 230, B: 120, A: 255}
	default:
		return color.RGBA{R: 190, G: 200, B: 190, A: 255}
	}
}

// Draw renders the feed panel on the right side of the screen.
func (f *EventFeed) Draw(screen *ebiten.Image, face text.Face, panelX, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(feedPanelWidth), float32(panelH), color.RGBA{R: 14, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 80, G: 65, B: 45, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(feedPanelWidth), 18, color.RGBA{R: 32, G: 26, B: 18, A: 255}, false)
	drawText(screen, face, "MATCH FEED", panelX+8, 3, color.White)

	entries := f.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 26) / feedLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	y := 22
	for i, e := range entries {
		if i >= len(entries)-3 {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(feedPanelWidth-4), float32(feedLineHeight), color.RGBA{R: 40, G: 32, B: 24, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, feedColor(e.Kind), false)
		drawText(screen, face, fmt.Sprintf("%5d [%s] %s", e.Tick, e.Label, e.Message), panelX+12, y, feedColor(e.Kind))
		y += feedLineHeight
	}
}

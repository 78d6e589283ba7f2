package view

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
)

// Inspector panel, rendered into an offscreen buffer at 1x then blitted at inspScale.
const (
	inspScale = 2
	inspBufW  = 200
	inspBufH  = 150
	inspPad   = 4
	inspLineH = 13
	inspPickR = 6 // extra pick slack around the body radius, px
)

// Inspector holds the selected combatant and view toggle state.
type Inspector struct {
	selected int // combatant id, -1 for none
	rawView  bool
	maxPower float64
	buf      *ebiten.Image
}

func newInspector(maxPower float64) *Inspector {
	return &Inspector{selected: -1, maxPower: maxPower}
}

// pick returns the living combatant closest to (x,y) within its radius plus
// slack.
func pick(combatants []game.CombatantView, x, y float64) (int, bool) {
	best, hit := math.MaxFloat64, -1
	for _, c := range combatants {
		if !c.Alive() {
			continue
		}
		dx, dy := c.Position.X-x, c.Position.Y-y
		d2 := dx*dx + dy*dy
		r := c.Radius + inspPickR
		if d2 <= r*r && d2 < best {
			best, hit = d2, c.ID
		}
	}
	return hit, hit >= 0
}

// Click selects the combatant under (x,y); clicking empty ground deselects.
func (in *Inspector) Click(snap game.Snapshot, x, y int) bool {
	id, ok := pick(snap.Combatants, float64(x), float64(y))
	in.selected = id
	return ok
}

// Toggle switches between the curated and raw views.
func (in *Inspector) Toggle() { in.rawView = !in.rawView }

// lines renders the panel text for the selected combatant.
func (in *Inspector) lines(snap game.Snapshot) []string {
	c, ok := snap.Combatant(in.selected)
	if !ok {
		return nil
	}
	view := "CURATED"
	if in.rawView {
		view = "RAW"
	}
	out := []string{
		fmt.Sprintf("[ %s ]", c.Label),
		fmt.Sprintf("view: %s  [I] toggle", view),
	}
	if in.rawView {
		raw := fmt.Sprintf("%+v", c)
		for len(raw) > 0 {
			n := min(len(raw), 30)
			out = append(out, raw[:n])
			raw = raw[n:]
		}
		return out
	}

	bar := func(label string, v float64) string {
		filled := int(math.Round(clamp01(v) * 12))
		return fmt.Sprintf("%-6s %s%s %.0f%%", label, strings.Repeat("#", filled), strings.Repeat(".", 12-filled), clamp01(v)*100)
	}
	turn := ""
	if active, ok := snap.Active(); ok && active.ID == c.ID {
		turn = "  <- turn"
	}
	out = append(out,
		fmt.Sprintf("state: %-8s%s", c.State, turn),
		fmt.Sprintf("grounded: %t  facing: %+d", c.Grounded, c.Facing),
		fmt.Sprintf("pos: (%.0f,%.0f)", c.Position.X, c.Position.Y),
		fmt.Sprintf("vel: (%.1f,%.1f)", c.Velocity.X, c.Velocity.Y),
		bar("health", c.Health/c.MaxHealth),
		fmt.Sprintf("aim: %.0f deg", c.Aim.Angle*180/math.Pi),
		bar("power", c.Aim.Power/in.maxPower),
	)
	return out
}

// Draw renders the panel at the bottom right of the field.
func (in *Inspector) Draw(screen *ebiten.Image, snap game.Snapshot, fieldW, fieldH int) {
	lines := in.lines(snap)
	if len(lines) == 0 {
		return
	}
	if in.buf == nil {
		in.buf = ebiten.NewImage(inspBufW, inspBufH)
	}
	in.buf.Clear()
	bw, bh := float32(inspBufW), float32(inspBufH)
	border := color.RGBA{R: 120, G: 88, B: 56, A: 255}
	vector.FillRect(in.buf, 0, 0, bw, bh, color.RGBA{R: 16, G: 14, B: 12, A: 220}, false)
	vector.StrokeRect(in.buf, 0, 0, bw, bh, 1, border, false)

	y := inspPad
	for i, l := range lines {
		ebitenutil.DebugPrintAt(in.buf, l, inspPad, y)
		y += inspLineH
		if i == 1 {
			vector.StrokeLine(in.buf, inspPad, float32(y+1), bw-inspPad, float32(y+1), 1, border, false)
			y += 4
		}
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(inspScale, inspScale)
	op.GeoM.Translate(float64(fieldW-inspBufW*inspScale-8), float64(fieldH-inspBufH*inspScale-28))
	screen.DrawImage(in.buf, op)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

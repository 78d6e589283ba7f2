// Package view renders a match with ebiten and feeds it keyboard intents.
// It only reads game.Snapshot values; it never mutates simulation state
// outside Match.Step.
package view

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/pedrotorchio/beaver-apocalypse/internal/game"
)

// statusTicks is how long a status line stays on screen.
const statusTicks = 180

var (
	skyColor    = color.RGBA{R: 120, G: 170, B: 215, A: 255}
	grassColor  = color.RGBA{R: 86, G: 140, B: 60, A: 255}
	soilColors  = []color.RGBA{{R: 120, G: 88, B: 56, A: 255}, {R: 104, G: 74, B: 46, A: 255}, {R: 88, G: 62, B: 40, A: 255}, {R: 72, G: 52, B: 36, A: 255}}
	playerTints = []color.RGBA{{R: 150, G: 95, B: 50, A: 255}, {R: 110, G: 70, B: 40, A: 255}, {R: 170, G: 120, B: 70, A: 255}, {R: 90, G: 60, B: 35, A: 255}}
)

// Options tune the window.
type Options struct {
	StopWhenDecided bool
	Logger          *log.Logger
}

// Game drives a Match from ebiten's fixed 60 TPS update loop.
type Game struct {
	match  *game.Match
	logger *log.Logger
	feed   *EventFeed
	insp   *Inspector
	face   text.Face
	opts   Options

	width  int
	height int

	terrainImg *ebiten.Image
	pixels     *image.RGBA

	snap      game.Snapshot
	paused    bool
	prevKeys  map[ebiten.Key]bool
	prevClick bool

	status      string
	statusUntil int
}

// New wraps m for display.
func New(m *game.Match, opts Options) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	t := m.Terrain()
	g := &Game{
		match:      m,
		logger:     logger,
		feed:       NewEventFeed(),
		insp:       newInspector(m.Config().MaxPower),
		face:       text.NewGoXFace(basicfont.Face7x13),
		opts:       opts,
		width:      t.Width() + feedPanelWidth,
		height:     t.Height(),
		terrainImg: ebiten.NewImage(t.Width(), t.Height()),
		pixels:     image.NewRGBA(image.Rect(0, 0, t.Width(), t.Height())),
		snap:       m.Snapshot(),
		prevKeys:   make(map[ebiten.Key]bool),
	}
	g.paintTerrain(t.Image().Bounds())
	return g
}

// Size returns the logical screen size.
func (g *Game) Size() (int, int) { return g.width, g.height }

func (g *Game) Update() error {
	if err := g.handleInput(); err != nil {
		return err
	}
	if g.paused || (g.opts.StopWhenDecided && g.snap.Decided) {
		return nil
	}

	g.snap = g.match.Step()
	g.feed.AddSnapshot(g.snap)
	for _, cr := range g.snap.Craters {
		r := int(math.Ceil(cr.Radius)) + 1
		g.paintTerrain(image.Rect(int(cr.X)-r, int(cr.Y)-r, int(cr.X)+r, int(cr.Y)+r))
	}
	if g.snap.Decided && g.opts.StopWhenDecided {
		out := g.match.Outcome()
		g.setStatus(fmt.Sprintf("%s: %s (Esc quits)", out.Outcome, out.Description))
	}
	return nil
}

// handleInput processes window-level keys (edge-triggered).
func (g *Game) handleInput() error {
	current := map[ebiten.Key]bool{}
	for _, k := range []ebiten.Key{ebiten.KeyP, ebiten.KeyI, ebiten.KeyF9, ebiten.KeyEscape} {
		current[k] = ebiten.IsKeyPressed(k)
	}
	justPressed := func(k ebiten.Key) bool { return current[k] && !g.prevKeys[k] }
	defer func() { g.prevKeys = current }()

	if justPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if justPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if justPressed(ebiten.KeyI) {
		g.insp.Toggle()
	}
	click := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if click && !g.prevClick {
		if x, y := ebiten.CursorPosition(); x < g.match.Terrain().Width() {
			g.insp.Click(g.snap, x, y)
		}
	}
	g.prevClick = click
	if justPressed(ebiten.KeyF9) {
		report := g.match.DebugReport(0)
		if err := clipboard.WriteAll(report); err != nil {
			g.logger.Warn("copy debug report", "err", err)
			g.setStatus("clipboard unavailable")
		} else {
			g.setStatus(fmt.Sprintf("debug report copied (%d bytes)", len(report)))
		}
	}
	return nil
}

func (g *Game) setStatus(s string) {
	g.status = s
	g.statusUntil = g.snap.Tick + statusTicks
}

// paintTerrain recolours the cells inside r and uploads the buffer.
func (g *Game) paintTerrain(r image.Rectangle) {
	t := g.match.Terrain()
	r = r.Intersect(g.pixels.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if !t.IsSolid(float64(x), float64(y)) {
				g.pixels.SetRGBA(x, y, color.RGBA{})
				continue
			}
			band := t.Band(x, y)
			switch {
			case band == 0 && !t.IsSolid(float64(x), float64(y-3)):
				g.pixels.SetRGBA(x, y, grassColor)
			default:
				g.pixels.SetRGBA(x, y, soilColors[band%len(soilColors)])
			}
		}
	}
	g.terrainImg.WritePixels(g.pixels.Pix)
}

func (g *Game) Draw(screen *ebiten.Image) {
	t := g.match.Terrain()
	vector.FillRect(screen, 0, 0, float32(t.Width()), float32(t.Height()), skyColor, false)
	screen.DrawImage(g.terrainImg, nil)

	for i, c := range g.snap.Combatants {
		g.drawCombatant(screen, c, i == g.snap.Current && g.snap.Phase == game.PhasePlayerInput)
	}
	for _, p := range g.snap.Projectiles {
		vector.FillCircle(screen, float32(p.Position.X), float32(p.Position.Y), float32(p.Radius), color.RGBA{R: 30, G: 30, B: 30, A: 255}, true)
	}
	for _, ex := range g.snap.Explosions {
		e := ex.Explosion
		vector.StrokeCircle(screen, float32(e.Center.X), float32(e.Center.Y), float32(e.Radius), 2, color.RGBA{R: 255, G: 180, B: 60, A: 255}, true)
	}

	g.drawHUD(screen)
	g.insp.Draw(screen, g.snap, t.Width(), t.Height())
	g.feed.Draw(screen, g.face, t.Width(), g.height)
}

func (g *Game) drawCombatant(screen *ebiten.Image, c game.CombatantView, active bool) {
	x, y, r := float32(c.Position.X), float32(c.Position.Y), float32(c.Radius)
	if !c.Alive() {
		vector.FillCircle(screen, x, y, r, color.RGBA{R: 70, G: 70, B: 70, A: 200}, true)
		drawText(screen, g.face, "RIP", int(x)-10, int(y-r)-16, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		return
	}
	tint := playerTints[c.ID%len(playerTints)]
	vector.FillCircle(screen, x, y, r, tint, true)
	// Eye on the facing side.
	vector.FillCircle(screen, x+float32(c.Facing)*r*0.45, y-r*0.3, 2, color.Black, true)

	// Health bar.
	w := 2 * r
	frac := float32(c.Health / c.MaxHealth)
	vector.FillRect(screen, x-r, y-r-8, w, 4, color.RGBA{R: 60, G: 20, B: 20, A: 220}, false)
	vector.FillRect(screen, x-r, y-r-8, w*frac, 4, color.RGBA{R: 80, G: 210, B: 80, A: 255}, false)
	drawText(screen, g.face, c.Label, int(x)-7, int(y-r)-24, color.White)

	if !active {
		return
	}
	vector.StrokeCircle(screen, x, y, r+3, 1, color.RGBA{R: 255, G: 255, B: 255, A: 180}, true)
	dir := c.Aim.Direction(c.Facing)
	length := float32(18 + c.Aim.Power*0.5)
	vector.StrokeLine(screen, x, y, x+float32(dir.X)*length, y+float32(dir.Y)*length, 2, color.RGBA{R: 250, G: 230, B: 120, A: 255}, true)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	active, ok := g.snap.Active()
	line := fmt.Sprintf("T=%d  turn %d  phase %s", g.snap.Tick, g.snap.Turn+1, g.snap.Phase)
	if ok {
		line += fmt.Sprintf("  |  %s  angle %.0f  power %.0f", active.Label, active.Aim.Angle*180/math.Pi, active.Aim.Power)
	}
	vector.FillRect(screen, 0, 0, float32(g.match.Terrain().Width()), 20, color.RGBA{R: 0, G: 0, B: 0, A: 140}, false)
	drawText(screen, g.face, line, 6, 4, color.White)

	legend := "left/right walk  up/down aim  space charge+fire  enter jump  click inspect  P pause  F9 copy report"
	drawText(screen, g.face, legend, 6, g.height-18, color.RGBA{R: 20, G: 20, B: 20, A: 255})

	if g.paused {
		drawText(screen, g.face, "PAUSED", g.match.Terrain().Width()/2-20, 30, color.White)
	}
	if g.status != "" && (g.snap.Tick <= g.statusUntil || g.snap.Decided && g.opts.StopWhenDecided) {
		drawText(screen, g.face, g.status, 6, 24, color.RGBA{R: 255, G: 240, B: 160, A: 255})
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// IsTermination reports whether err is the normal window-close signal.
func IsTermination(err error) bool { return errors.Is(err, ebiten.Termination) }

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, face, op)
}

package game

import (
	"errors"
	"fmt"
	"image"
	"math"
)

const (
	alphaSolid = 255
	alphaAir   = 0

	// maxTerrainCells caps the pixel buffer so a bad config fails at setup
	// instead of exhausting memory.
	maxTerrainCells = 1 << 26

	// bandDepth is the thickness in pixels of one cosmetic soil band.
	bandDepth = 14
)

// ErrInvalidTerrainSize is returned when the pixel buffer cannot be created.
var ErrInvalidTerrainSize = errors.New("invalid terrain size")

// Crater is one circular erasure, kept as a destruction diff for renderers.
type Crater struct {
	X, Y   float64
	Radius float64
	Cells  int // cells actually cleared
}

// Terrain is a destructible solid/air bitmap. Everything outside the
// rectangle counts as solid, and erased cells never become solid again.
type Terrain struct {
	width     int
	height    int
	threshold uint8
	pix       *image.Alpha

	// surface is the height of the generated curve per column, before any
	// destruction. Only used for cosmetic banding.
	surface []float64
	craters []Crater
}

// NewTerrain allocates an all-air field. Failure here is a setup error.
func NewTerrain(width, height int, threshold uint8) (*Terrain, error) {
	if width <= 0 || height <= 0 || width*height > maxTerrainCells {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidTerrainSize, width, height)
	}
	t := &Terrain{
		width:     width,
		height:    height,
		threshold: threshold,
		pix:       image.NewAlpha(image.Rect(0, 0, width, height)),
		surface:   make([]float64, width),
	}
	for x := range t.surface {
		t.surface[x] = float64(height)
	}
	return t, nil
}

// Width returns the field width in cells.
func (t *Terrain) Width() int { return t.width }

// Height returns the field height in cells.
func (t *Terrain) Height() int { return t.height }

// InBounds reports whether (x,y) lies inside [0,width)×[0,height).
func (t *Terrain) InBounds(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(t.width) && y < float64(t.height)
}

// IsSolid reports whether the cell containing (x,y) is solid. Points outside
// the field are always solid.
func (t *Terrain) IsSolid(x, y float64) bool {
	if !t.InBounds(x, y) || math.IsNaN(x) || math.IsNaN(y) {
		return true
	}
	cx, cy := int(math.Floor(x)), int(math.Floor(y))
	return t.pix.Pix[t.pix.PixOffset(cx, cy)] > t.threshold
}

// solidInside is IsSolid restricted to the field: out-of-range points are not
// counted. Projectiles use it so leaving the map is never mistaken for impact.
func (t *Terrain) solidInside(x, y float64) bool {
	return t.InBounds(x, y) && t.IsSolid(x, y)
}

// DestroyCircle clears every cell whose centre lies within r of (cx,cy) and
// returns how many solid cells were erased.
func (t *Terrain) DestroyCircle(cx, cy, r float64) int {
	if r <= 0 {
		return 0
	}
	minX := clampInt(int(math.Floor(cx-r)), 0, t.width-1)
	maxX := clampInt(int(math.Ceil(cx+r)), 0, t.width-1)
	minY := clampInt(int(math.Floor(cy-r)), 0, t.height-1)
	maxY := clampInt(int(math.Ceil(cy+r)), 0, t.height-1)
	r2 := r * r

	cleared := 0
	for y := minY; y <= maxY; y++ {
		dy := float64(y) + 0.5 - cy
		for x := minX; x <= maxX; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			off := t.pix.PixOffset(x, y)
			if t.pix.Pix[off] > t.threshold {
				cleared++
			}
			t.pix.Pix[off] = alphaAir
		}
	}
	t.craters = append(t.craters, Crater{X: cx, Y: cy, Radius: r, Cells: cleared})
	return cleared
}

// DrainCraters returns the erasures recorded since the previous call.
func (t *Terrain) DrainCraters() []Crater {
	if len(t.craters) == 0 {
		return nil
	}
	out := t.craters
	t.craters = nil
	return out
}

// GenerateDefault fills everything below the procedural surface curve.
// The result depends only on the parameters.
func (t *Terrain) GenerateDefault(p SurfaceParams) {
	t.fill(func(x float64) float64 {
		return p.Baseline + p.A1*math.Sin(x/nonZero(p.P1)) + p.A2*math.Cos(x/nonZero(p.P2))
	})
}

// GenerateFlat makes a level floor whose top row is groundY.
func (t *Terrain) GenerateFlat(groundY float64) {
	t.fill(func(float64) float64 { return groundY })
}

func (t *Terrain) fill(height func(x float64) float64) {
	for x := 0; x < t.width; x++ {
		h := height(float64(x))
		t.surface[x] = h
		for y := 0; y < t.height; y++ {
			a := uint8(alphaAir)
			if float64(y) >= h {
				a = alphaSolid
			}
			t.pix.Pix[t.pix.PixOffset(x, y)] = a
		}
	}
	t.craters = nil
}

// SurfaceAt returns the generated surface height at column x (clamped).
func (t *Terrain) SurfaceAt(x float64) float64 {
	return t.surface[clampInt(int(math.Floor(x)), 0, t.width-1)]
}

// Band returns the cosmetic soil band index at (x,y): 0 for the topsoil
// layer, increasing with depth. It never influences IsSolid.
func (t *Terrain) Band(x, y int) int {
	depth := float64(y) - t.surface[clampInt(x, 0, t.width-1)]
	if depth < 0 {
		return 0
	}
	return int(depth) / bandDepth
}

// Image exposes the pixel buffer for renderers. Callers must not write to it.
func (t *Terrain) Image() *image.Alpha { return t.pix }

// SolidCount returns the number of solid cells (used by tests and reports).
func (t *Terrain) SolidCount() int {
	n := 0
	for _, a := range t.pix.Pix {
		if a > t.threshold {
			n++
		}
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

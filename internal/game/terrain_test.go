package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

func newFlatTerrain(t testingT, w, h int, ground float64) *Terrain {
	t.Helper()
	tr, err := NewTerrain(w, h, 127)
	require.NoError(t, err)
	tr.GenerateFlat(ground)
	return tr
}

func TestNewTerrain_RejectsBadSize(t *testing.T) {
	for _, tc := range []struct{ w, h int }{{0, 10}, {10, 0}, {-4, 10}, {1 << 14, 1 << 14}} {
		_, err := NewTerrain(tc.w, tc.h, 127)
		assert.ErrorIs(t, err, ErrInvalidTerrainSize, "%dx%d", tc.w, tc.h)
	}
}

func TestIsSolid_OutsideFieldIsSolid(t *testing.T) {
	tr, err := NewTerrain(64, 32, 127)
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(-500, 500).Draw(rt, "x")
		y := rapid.Float64Range(-500, 500).Draw(rt, "y")
		if tr.InBounds(x, y) {
			if tr.IsSolid(x, y) {
				rt.Fatalf("empty field reports solid at (%.2f,%.2f)", x, y)
			}
			return
		}
		if !tr.IsSolid(x, y) {
			rt.Fatalf("out-of-range point (%.2f,%.2f) is not solid", x, y)
		}
		if tr.solidInside(x, y) {
			rt.Fatalf("solidInside counted out-of-range point (%.2f,%.2f)", x, y)
		}
	})
}

func TestIsSolid_Threshold(t *testing.T) {
	tr, err := NewTerrain(4, 4, 127)
	require.NoError(t, err)
	pix := tr.Image().Pix
	pix[tr.Image().PixOffset(1, 1)] = 127
	pix[tr.Image().PixOffset(2, 2)] = 128

	assert.False(t, tr.IsSolid(1.5, 1.5), "alpha at the threshold is air")
	assert.True(t, tr.IsSolid(2.5, 2.5), "alpha above the threshold is solid")
	assert.True(t, tr.IsSolid(2.99, 2.01), "whole cell shares the sample")
}

func TestGenerateFlat_TopRow(t *testing.T) {
	tr := newFlatTerrain(t, 40, 30, 20)
	assert.False(t, tr.IsSolid(5, 19.9))
	assert.True(t, tr.IsSolid(5, 20))
	assert.Equal(t, 40*10, tr.SolidCount())
	assert.Equal(t, 20.0, tr.SurfaceAt(7))
}

func TestGenerateDefault_Deterministic(t *testing.T) {
	p := DefaultConfig().Surface
	a, err := NewTerrain(300, 500, 127)
	require.NoError(t, err)
	b, err := NewTerrain(300, 500, 127)
	require.NoError(t, err)

	a.GenerateDefault(p)
	b.GenerateDefault(p)
	assert.Equal(t, a.Image().Pix, b.Image().Pix)
	assert.Positive(t, a.SolidCount())
}

func TestDestroyCircle_ClearsAndRecordsCrater(t *testing.T) {
	tr := newFlatTerrain(t, 64, 48, 20)
	before := tr.SolidCount()

	cleared := tr.DestroyCircle(32, 24, 6)

	assert.Positive(t, cleared)
	assert.Equal(t, before-cleared, tr.SolidCount())
	assert.False(t, tr.IsSolid(32, 24))
	assert.True(t, tr.IsSolid(32, 40), "cells beyond the radius stay solid")

	craters := tr.DrainCraters()
	require.Len(t, craters, 1)
	assert.Equal(t, cleared, craters[0].Cells)
	assert.Nil(t, tr.DrainCraters(), "drained craters are not reported twice")
}

func TestDestroyCircle_OutsideFieldIsNoop(t *testing.T) {
	tr := newFlatTerrain(t, 64, 48, 20)
	before := tr.SolidCount()

	assert.Zero(t, tr.DestroyCircle(-100, -100, 10))
	assert.Zero(t, tr.DestroyCircle(32, 24, 0))
	assert.Equal(t, before, tr.SolidCount())
}

func TestDestroyCircle_NeverAddsSolid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tr, err := NewTerrain(64, 48, 127)
		require.NoError(rt, err)
		tr.GenerateDefault(SurfaceParams{Baseline: 24, A1: 6, P1: 9, A2: 3, P2: 5})

		n := rapid.IntRange(1, 6).Draw(rt, "n")
		for i := 0; i < n; i++ {
			before := append([]uint8(nil), tr.Image().Pix...)
			x := rapid.Float64Range(-10, 74).Draw(rt, "x")
			y := rapid.Float64Range(-10, 58).Draw(rt, "y")
			r := rapid.Float64Range(0, 20).Draw(rt, "r")

			cleared := tr.DestroyCircle(x, y, r)

			removed := 0
			for j, a := range tr.Image().Pix {
				wasSolid, isSolid := before[j] > 127, a > 127
				if isSolid && !wasSolid {
					rt.Fatalf("cell %d became solid after DestroyCircle(%.1f,%.1f,%.1f)", j, x, y, r)
				}
				if wasSolid && !isSolid {
					removed++
				}
			}
			if removed != cleared {
				rt.Fatalf("DestroyCircle reported %d cleared, %d actually changed", cleared, removed)
			}
		}
	})
}

func TestBand_IncreasesWithDepth(t *testing.T) {
	tr := newFlatTerrain(t, 10, 200, 50)
	assert.Equal(t, 0, tr.Band(3, 10))
	assert.Equal(t, 0, tr.Band(3, 50))
	assert.Greater(t, tr.Band(3, 150), tr.Band(3, 70))
}

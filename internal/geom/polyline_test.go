package geom

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	t.Parallel()

	t.Run("removes spikes", func(t *testing.T) {
		t.Parallel()
		pts := []r2.Point{
			{X: 0, Y: 0},
			{X: 1, Y: 0},
			{X: 500, Y: 500}, // GPS glitch
			{X: 2, Y: 0},
		}
		cleaned, stats := CleanPath(pts, 10)
		assert.Equal(t, 1, stats.Spikes)
		want := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
		assert.Empty(t, cmp.Diff(want, cleaned))
	})

	t.Run("removes duplicates", func(t *testing.T) {
		t.Parallel()
		pts := []r2.Point{
			{X: 0, Y: 0},
			{X: 0, Y: 0},
			{X: 1, Y: 0},
			{X: 1, Y: 0},
		}
		cleaned, stats := CleanPath(pts, 10)
		assert.Equal(t, 2, stats.Duplicates)
		assert.Len(t, cleaned, 2)
	})

	t.Run("consecutive spikes compared against last retained", func(t *testing.T) {
		t.Parallel()
		// Both glitch points are far from (1,0); each is dropped
		// independently rather than letting a spike pair anchor itself.
		pts := []r2.Point{
			{X: 0, Y: 0},
			{X: 1, Y: 0},
			{X: 500, Y: 500},
			{X: 501, Y: 500},
			{X: 2, Y: 0},
		}
		cleaned, stats := CleanPath(pts, 10)
		assert.Equal(t, 2, stats.Spikes)
		assert.Len(t, cleaned, 3)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		cleaned, stats := CleanPath(nil, 10)
		assert.Nil(t, cleaned)
		assert.Equal(t, CleanStats{}, stats)
	})
}

func TestCumulativeDistances(t *testing.T) {
	t.Parallel()

	pts := []r2.Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 10}}
	dists := CumulativeDistances(pts)
	require.Len(t, dists, 3)
	assert.Equal(t, 0.0, dists[0])
	assert.InDelta(t, 5.0, dists[1], 1e-12)
	assert.InDelta(t, 11.0, dists[2], 1e-12)
}

func TestResample(t *testing.T) {
	t.Parallel()

	t.Run("uniform spacing on straight line", func(t *testing.T) {
		t.Parallel()
		pts := []r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
		stations, dists := Resample(pts, 2)
		require.Len(t, stations, 6)
		for i, d := range dists {
			assert.InDelta(t, float64(i)*2, d, 1e-12)
			assert.InDelta(t, float64(i)*2, stations[i].X, 1e-12)
			assert.InDelta(t, 0.0, stations[i].Y, 1e-12)
		}
	})

	t.Run("non-divisible length tightens spacing", func(t *testing.T) {
		t.Parallel()
		pts := []r2.Point{{X: 0, Y: 0}, {X: 9, Y: 0}}
		stations, dists := Resample(pts, 2)
		// ceil(9/2)+1 = 6 stations at 1.8 m spacing.
		require.Len(t, stations, 6)
		assert.InDelta(t, 1.8, dists[1]-dists[0], 1e-12)
		assert.InDelta(t, 9.0, dists[len(dists)-1], 1e-12)
	})

	t.Run("endpoints preserved", func(t *testing.T) {
		t.Parallel()
		pts := []r2.Point{{X: 1, Y: 2}, {X: 4, Y: 6}, {X: 10, Y: 6}}
		stations, _ := Resample(pts, 2.5)
		assert.InDelta(t, 0, stations[0].Sub(pts[0]).Norm(), 1e-12)
		assert.InDelta(t, 0, stations[len(stations)-1].Sub(pts[len(pts)-1]).Norm(), 1e-9)
	})

	t.Run("circle keeps radius", func(t *testing.T) {
		t.Parallel()
		n := 1000
		pts := make([]r2.Point, n+1)
		for i := 0; i <= n; i++ {
			theta := 2 * math.Pi * float64(i) / float64(n)
			pts[i] = r2.Point{X: 50 * math.Cos(theta), Y: 50 * math.Sin(theta)}
		}
		stations, _ := Resample(pts, 2)
		for _, p := range stations {
			assert.InDelta(t, 50.0, math.Hypot(p.X, p.Y), 0.05)
		}
	})

	t.Run("degenerate input returned as is", func(t *testing.T) {
		t.Parallel()
		pts := []r2.Point{{X: 1, Y: 1}}
		stations, dists := Resample(pts, 2)
		assert.Len(t, stations, 1)
		assert.Equal(t, []float64{0}, dists)
	})
}

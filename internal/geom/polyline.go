// Package geom provides the planar polyline primitives behind the track
// centerline: GPS cleaning, uniform arc-length resampling, and smoothing.
// All operations are deterministic for identical input and parameters.
package geom

import (
	"math"

	"github.com/golang/geo/r2"
)

// dedupeEpsilon is the step distance below which two consecutive samples
// are considered the same point (stationary GPS noise).
const dedupeEpsilon = 1e-6

// CleanStats reports points removed by CleanPath.
type CleanStats struct {
	Spikes     int
	Duplicates int
}

// CleanPath drops GPS glitches from an ordered polyline. A point is a
// spike when its step distance from the previous retained point exceeds
// spikeCutoff, and a duplicate when the step is ~0. Filtering is a single
// forward pass against the last retained point.
func CleanPath(pts []r2.Point, spikeCutoff float64) ([]r2.Point, CleanStats) {
	var stats CleanStats
	if len(pts) == 0 {
		return nil, stats
	}
	cleaned := make([]r2.Point, 0, len(pts))
	cleaned = append(cleaned, pts[0])
	for _, p := range pts[1:] {
		step := p.Sub(cleaned[len(cleaned)-1]).Norm()
		switch {
		case step > spikeCutoff:
			stats.Spikes++
		case step < dedupeEpsilon:
			stats.Duplicates++
		default:
			cleaned = append(cleaned, p)
		}
	}
	return cleaned, stats
}

// CumulativeDistances returns the arc length from the first point to each
// point of the polyline. The first entry is always 0.
func CumulativeDistances(pts []r2.Point) []float64 {
	dists := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		dists[i] = dists[i-1] + pts[i].Sub(pts[i-1]).Norm()
	}
	return dists
}

// Resample interpolates the polyline at evenly spaced arc-length stations.
// The station count is ceil(total/step)+1 so the spacing is the closest
// uniform grid at or below the requested step, covering 0..total
// inclusive. Returns the stations and their arc-length positions.
func Resample(pts []r2.Point, step float64) ([]r2.Point, []float64) {
	if len(pts) < 2 || step <= 0 {
		return append([]r2.Point(nil), pts...), CumulativeDistances(pts)
	}
	cum := CumulativeDistances(pts)
	total := cum[len(cum)-1]
	n := int(math.Ceil(total/step)) + 1

	stations := make([]r2.Point, n)
	dists := make([]float64, n)
	seg := 0
	for i := 0; i < n; i++ {
		// Even spacing over [0, total]; the last station lands exactly on total.
		d := total * float64(i) / float64(n-1)
		dists[i] = d
		for seg < len(cum)-2 && cum[seg+1] < d {
			seg++
		}
		span := cum[seg+1] - cum[seg]
		t := 0.0
		if span > 0 {
			t = (d - cum[seg]) / span
		}
		stations[i] = pts[seg].Add(pts[seg+1].Sub(pts[seg]).Mul(t))
	}
	return stations, dists
}

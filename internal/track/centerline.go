// Package track owns the reference geometry of the circuit: the smoothed
// centerline, projection of arbitrary points onto it, and the braking
// zones defined along its arc length. The centerline is built once per
// track and treated as read-only by everything downstream; it is the
// single shared source of truth for all distance and zone computations,
// which is what makes dispersion comparable across drivers.
package track

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"github.com/edulizanay/14.toyota-hackathon/internal/geom"
	"github.com/edulizanay/14.toyota-hackathon/internal/telemetry"
)

// ErrInsufficientSamples means too few GPS points survived cleaning to
// run the smoothing filter. There is no safe partial centerline, so this
// aborts the run rather than degrading to an unsmoothed curve.
var ErrInsufficientSamples = errors.New("insufficient samples to build centerline")

// BuildParams control centerline construction. The defaults match the
// tuning the track geometry was validated with.
type BuildParams struct {
	SpikeCutoffM float64 // drop steps longer than this as GPS glitches
	StationStepM float64 // target spacing of resampled stations
	SmoothWindow int     // Savitzky-Golay window (odd)
	SmoothOrder  int     // Savitzky-Golay polynomial order
}

// DefaultBuildParams returns the standard construction tuning.
func DefaultBuildParams() BuildParams {
	return BuildParams{
		SpikeCutoffM: 10.0,
		StationStepM: 2.0,
		SmoothWindow: 31,
		SmoothOrder:  3,
	}
}

// Station is one point of the centerline: a position and its arc-length
// coordinate measured from the lap start.
type Station struct {
	Distance float64
	Pos      r2.Point
}

// Centerline is an ordered, closed, uniformly spaced reference curve.
// Station distances are strictly increasing from 0; the total length
// includes the closing segment from the last station back to the first.
type Centerline struct {
	stations []Station
	total    float64
}

// Build constructs the centerline from one representative lap's ordered
// position samples: spike rejection, dedupe, uniform resampling, then
// periodic Savitzky-Golay smoothing so no artificial kink appears at the
// start/finish seam. Deterministic: identical input and params produce
// bit-identical output.
func Build(lap []telemetry.Sample, p BuildParams) (*Centerline, error) {
	pts := make([]r2.Point, len(lap))
	for i, s := range lap {
		pts[i] = s.Pos()
	}

	cleaned, _ := geom.CleanPath(pts, p.SpikeCutoffM)
	if len(cleaned) < p.SmoothWindow {
		return nil, fmt.Errorf("%w: %d points after cleaning, smoothing window is %d",
			ErrInsufficientSamples, len(cleaned), p.SmoothWindow)
	}

	resampled, _ := geom.Resample(cleaned, p.StationStepM)
	// The raw lap ends where it started, give or take GPS noise. Treat
	// the stations as one period of the closed loop: if the final
	// station sits on top of the first, fold it into the seam.
	if len(resampled) > 1 && resampled[len(resampled)-1].Sub(resampled[0]).Norm() < p.StationStepM/2 {
		resampled = resampled[:len(resampled)-1]
	}
	if len(resampled) < p.SmoothWindow {
		return nil, fmt.Errorf("%w: %d stations, smoothing window is %d",
			ErrInsufficientSamples, len(resampled), p.SmoothWindow)
	}

	kernel, err := geom.SavGolKernel(p.SmoothWindow, p.SmoothOrder)
	if err != nil {
		return nil, err
	}
	smoothed, err := geom.SmoothPathPeriodic(resampled, kernel)
	if err != nil {
		return nil, err
	}

	return FromPoints(smoothed)
}

// FromPoints assembles a Centerline from an ordered closed loop of
// points (no duplicate closing point), recomputing arc length from the
// actual coordinates. Used by Build and by the store when reloading a
// cached centerline.
func FromPoints(pts []r2.Point) (*Centerline, error) {
	if len(pts) < 3 {
		return nil, fmt.Errorf("centerline needs at least 3 points, got %d", len(pts))
	}
	stations := make([]Station, len(pts))
	d := 0.0
	for i, p := range pts {
		if i > 0 {
			step := p.Sub(pts[i-1]).Norm()
			if step == 0 {
				return nil, fmt.Errorf("zero-length centerline segment at station %d", i)
			}
			d += step
		}
		stations[i] = Station{Distance: d, Pos: p}
	}
	closing := pts[0].Sub(pts[len(pts)-1]).Norm()
	if closing == 0 {
		return nil, fmt.Errorf("centerline closing segment has zero length")
	}
	return &Centerline{stations: stations, total: d + closing}, nil
}

// Len returns the number of stations.
func (c *Centerline) Len() int { return len(c.stations) }

// Station returns the i'th station.
func (c *Centerline) Station(i int) Station { return c.stations[i] }

// Stations returns a copy of the station sequence.
func (c *Centerline) Stations() []Station {
	return append([]Station(nil), c.stations...)
}

// TotalLength is the full lap distance, closing segment included.
func (c *Centerline) TotalLength() float64 { return c.total }

// WrapDistance normalizes an arc-length coordinate into [0, TotalLength).
func (c *Centerline) WrapDistance(d float64) float64 {
	r := math.Mod(d, c.total)
	if r < 0 {
		r += c.total
	}
	return r
}

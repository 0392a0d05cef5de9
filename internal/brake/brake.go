// Package brake turns per-sample brake pressure series into discrete
// brake-onset events. The detection threshold is adaptive: it is derived
// once from the whole dataset and threaded explicitly into detection,
// never held as package state.
package brake

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/edulizanay/14.toyota-hackathon/internal/telemetry"
	"github.com/edulizanay/14.toyota-hackathon/internal/units"
)

// Type identifies which axle produced the stronger pressure at onset.
type Type string

const (
	Front Type = "front"
	Rear  Type = "rear"
)

// Event is one rising-edge brake application. TrackDistance, ZoneID and
// LateralOffset start zero/nil and are filled in by projection and zone
// assignment; nothing else is mutated after detection.
type Event struct {
	VehicleID     int
	Lap           int
	Timestamp     float64
	X             float64
	Y             float64
	TrackDistance float64
	ZoneID        *int
	LateralOffset float64
	BrakeType     Type
	Pressure      float64
	SpeedMps      float64
}

// Pos returns the event position as a planar vector.
func (e Event) Pos() r2.Point {
	return r2.Point{X: e.X, Y: e.Y}
}

// DefaultThresholdPercentile discards the lowest 5% of positive pressure
// readings as sensor noise.
const DefaultThresholdPercentile = 0.05

// Threshold computes the onset threshold: the given quantile of all
// strictly-positive brake pressure readings, front and rear pooled. The
// noise floor varies by sensor installation, so this is data-driven
// rather than a fixed physical constant. A dataset with no positive
// pressure at all cannot be analyzed and is an error.
func Threshold(samples []telemetry.Sample, quantile float64) (float64, error) {
	if quantile <= 0 || quantile >= 1 {
		return 0, fmt.Errorf("threshold quantile must be in (0,1), got %g", quantile)
	}
	positive := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.BrakeFront > 0 {
			positive = append(positive, s.BrakeFront)
		}
		if s.BrakeRear > 0 {
			positive = append(positive, s.BrakeRear)
		}
	}
	if len(positive) == 0 {
		return 0, fmt.Errorf("no positive brake pressure readings in dataset")
	}
	sort.Float64s(positive)
	return stat.Quantile(quantile, stat.LinInterp, positive, nil), nil
}

// DetectLap scans one lap's samples in timestamp order and emits an event
// at every rising edge: the sample where max(front, rear) transitions
// from below threshold to at-or-above it. A lap already above threshold
// at its first sample emits nothing for that pre-existing state, and a
// lap with no crossings emits nothing at all.
func DetectLap(lap []telemetry.Sample, threshold float64) []Event {
	var events []Event
	// Unknown prior state counts as braking so the first sample can
	// never fire without an observed below-threshold predecessor.
	prevAbove := true
	for _, s := range lap {
		pressure := s.BrakeFront
		brakeType := Front
		if s.BrakeRear > s.BrakeFront {
			pressure = s.BrakeRear
			brakeType = Rear
		}
		above := pressure >= threshold
		if above && !prevAbove {
			events = append(events, Event{
				VehicleID: s.VehicleID,
				Lap:       s.Lap,
				Timestamp: s.Timestamp,
				X:         s.X,
				Y:         s.Y,
				BrakeType: brakeType,
				Pressure:  pressure,
				SpeedMps:  units.KphToMps(s.Speed),
			})
		}
		prevAbove = above
	}
	return events
}

// Detect runs DetectLap over every lap in deterministic key order.
// emptyLaps counts laps that produced no events; that is a data-quality
// observation, never an error.
func Detect(laps map[telemetry.LapKey][]telemetry.Sample, threshold float64) (events []Event, emptyLaps int) {
	for _, k := range telemetry.SortedLapKeys(laps) {
		lapEvents := DetectLap(laps[k], threshold)
		if len(lapEvents) == 0 {
			emptyLaps++
			continue
		}
		events = append(events, lapEvents...)
	}
	return events, emptyLaps
}

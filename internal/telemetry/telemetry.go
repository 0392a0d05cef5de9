// Package telemetry loads raw vehicle telemetry and timing results into
// the in-memory records the analysis pipeline consumes. Telemetry arrives
// in long format (one row per parameter reading) and is pivoted into one
// Sample per (vehicle, lap, timestamp) with positions already converted to
// planar meters upstream.
package telemetry

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// Sample is one telemetry reading for a vehicle at an instant.
// Samples are immutable once ingested.
type Sample struct {
	VehicleID  int
	Lap        int
	Timestamp  float64 // seconds since session start
	X          float64 // meters, planar
	Y          float64 // meters, planar
	BrakeFront float64 // bar
	BrakeRear  float64 // bar
	Speed      float64 // km/h
}

// Pos returns the sample position as a planar vector.
func (s Sample) Pos() r2.Point {
	return r2.Point{X: s.X, Y: s.Y}
}

// LapKey identifies one lap of one vehicle.
type LapKey struct {
	VehicleID int
	Lap       int
}

// GroupLaps splits samples into per-lap slices ordered by timestamp.
// Chunked ingestion may interleave rows, so each lap is reassembled in
// full before any edge detection runs on it.
func GroupLaps(samples []Sample) map[LapKey][]Sample {
	laps := make(map[LapKey][]Sample)
	for _, s := range samples {
		k := LapKey{VehicleID: s.VehicleID, Lap: s.Lap}
		laps[k] = append(laps[k], s)
	}
	for _, lap := range laps {
		sort.SliceStable(lap, func(i, j int) bool {
			return lap[i].Timestamp < lap[j].Timestamp
		})
	}
	return laps
}

// SortedLapKeys returns lap keys in (vehicle, lap) order so that map
// iteration never leaks into output ordering.
func SortedLapKeys(laps map[LapKey][]Sample) []LapKey {
	keys := make([]LapKey, 0, len(laps))
	for k := range laps {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].VehicleID != keys[j].VehicleID {
			return keys[i].VehicleID < keys[j].VehicleID
		}
		return keys[i].Lap < keys[j].Lap
	})
	return keys
}

// LapDistance is the traveled distance of a lap: the sum of step
// distances between consecutive samples.
func LapDistance(lap []Sample) float64 {
	total := 0.0
	for i := 1; i < len(lap); i++ {
		total += math.Hypot(lap[i].X-lap[i-1].X, lap[i].Y-lap[i-1].Y)
	}
	return total
}

// FilterRacingLaps keeps only laps whose traveled distance falls within
// [minDist, maxDist]. Out-laps, in-laps and pit tours are shorter or
// longer than a flying lap and would pollute the consistency metric.
// Returns the surviving laps and the number of laps dropped.
func FilterRacingLaps(laps map[LapKey][]Sample, minDist, maxDist float64) (map[LapKey][]Sample, int) {
	kept := make(map[LapKey][]Sample, len(laps))
	dropped := 0
	for k, lap := range laps {
		d := LapDistance(lap)
		if d >= minDist && d <= maxDist {
			kept[k] = lap
		} else {
			dropped++
		}
	}
	return kept, dropped
}

// ReferenceLap picks the lap to build the centerline from. When vehicleID
// is positive only that vehicle's laps are considered; otherwise the
// vehicle with the most samples overall is used. Within the candidate
// vehicle, the lap with the highest sample count wins (a proxy for the
// cleanest GPS reception). Ties break toward the lower lap number so the
// choice is deterministic.
func ReferenceLap(laps map[LapKey][]Sample, vehicleID int) (LapKey, []Sample, bool) {
	if vehicleID <= 0 {
		counts := make(map[int]int)
		for k, lap := range laps {
			counts[k.VehicleID] += len(lap)
		}
		best := 0
		for v, n := range counts {
			if best == 0 || n > counts[best] || (n == counts[best] && v < best) {
				best = v
			}
		}
		vehicleID = best
	}

	var bestKey LapKey
	var bestLap []Sample
	for _, k := range SortedLapKeys(laps) {
		if k.VehicleID != vehicleID {
			continue
		}
		if lap := laps[k]; len(lap) > len(bestLap) {
			bestKey, bestLap = k, lap
		}
	}
	return bestKey, bestLap, len(bestLap) > 0
}

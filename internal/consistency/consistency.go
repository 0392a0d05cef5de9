// Package consistency computes the per-driver per-zone brake-point
// dispersion statistics and the overall driver ranking.
package consistency

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/edulizanay/14.toyota-hackathon/internal/brake"
	"github.com/edulizanay/14.toyota-hackathon/internal/telemetry"
)

// MinEventsPerZone is the fewest retained events a (driver, zone) pair
// needs before its dispersion is defined. Below this the record is
// omitted entirely, never reported as zero.
const MinEventsPerZone = 2

// DispersionRecord is the spread of one driver's brake points within one
// zone. Standard deviations use the population (divide by n) convention;
// with two events at (0,0) and (0,4) StdY is exactly 2.
type DispersionRecord struct {
	VehicleID   int
	ZoneID      int
	NEvents     int
	MeanX       float64
	MeanY       float64
	StdX        float64
	StdY        float64
	DispersionM float64 // sqrt(StdX² + StdY²), meters
}

// DriverSummary pairs a driver's average zone dispersion with their lap
// time. Rank orders drivers ascending by lap time; dispersion is
// reported alongside for correlation, never used to sort timed drivers.
type DriverSummary struct {
	VehicleID      int
	AvgLapTime     float64 // seconds; meaningless when HasLapTime is false
	HasLapTime     bool
	AvgDispersionM float64
	ZoneCount      int
	EventCount     int
	Rank           int
}

// ZoneDispersion computes one DispersionRecord per (driver, zone) pair
// with at least MinEventsPerZone retained events. Events must already be
// zoned and reduced to one per zone per lap. Returns the records in
// (vehicle, zone) order and the number of pairs omitted for having too
// few events.
func ZoneDispersion(events []brake.Event) (records []DispersionRecord, omitted int) {
	type key struct{ vehicle, zone int }
	groups := make(map[key][]brake.Event)
	for _, ev := range events {
		if ev.ZoneID == nil {
			continue
		}
		k := key{vehicle: ev.VehicleID, zone: *ev.ZoneID}
		groups[k] = append(groups[k], ev)
	}

	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].vehicle != keys[j].vehicle {
			return keys[i].vehicle < keys[j].vehicle
		}
		return keys[i].zone < keys[j].zone
	})

	for _, k := range keys {
		group := groups[k]
		if len(group) < MinEventsPerZone {
			omitted++
			continue
		}
		xs := make([]float64, len(group))
		ys := make([]float64, len(group))
		for i, ev := range group {
			xs[i], ys[i] = ev.X, ev.Y
		}
		stdX := stat.PopStdDev(xs, nil)
		stdY := stat.PopStdDev(ys, nil)
		records = append(records, DispersionRecord{
			VehicleID:   k.vehicle,
			ZoneID:      k.zone,
			NEvents:     len(group),
			MeanX:       stat.Mean(xs, nil),
			MeanY:       stat.Mean(ys, nil),
			StdX:        stdX,
			StdY:        stdY,
			DispersionM: math.Hypot(stdX, stdY),
		})
	}
	return records, omitted
}

// Summarize reduces dispersion records to one DriverSummary per driver:
// the unweighted mean of the driver's defined zone dispersions, paired
// with the external lap time when one exists. Drivers absent from the
// timing results keep their dispersion but lose the lap time; they rank
// after all timed drivers, ordered among themselves by dispersion so the
// output is stable. Returns the summaries in rank order and the number
// of drivers missing a lap time.
func Summarize(records []DispersionRecord, lapTimes telemetry.LapTimes) (summaries []DriverSummary, untimed int) {
	type agg struct {
		sum    float64
		zones  int
		events int
	}
	byDriver := make(map[int]*agg)
	for _, r := range records {
		a := byDriver[r.VehicleID]
		if a == nil {
			a = &agg{}
			byDriver[r.VehicleID] = a
		}
		a.sum += r.DispersionM
		a.zones++
		a.events += r.NEvents
	}

	for vehicle, a := range byDriver {
		s := DriverSummary{
			VehicleID:      vehicle,
			AvgDispersionM: a.sum / float64(a.zones),
			ZoneCount:      a.zones,
			EventCount:     a.events,
		}
		if t, ok := lapTimes[vehicle]; ok {
			s.AvgLapTime = t
			s.HasLapTime = true
		} else {
			untimed++
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.HasLapTime != b.HasLapTime {
			return a.HasLapTime
		}
		if a.HasLapTime {
			if a.AvgLapTime != b.AvgLapTime {
				return a.AvgLapTime < b.AvgLapTime
			}
			return a.VehicleID < b.VehicleID
		}
		if a.AvgDispersionM != b.AvgDispersionM {
			return a.AvgDispersionM < b.AvgDispersionM
		}
		return a.VehicleID < b.VehicleID
	})
	for i := range summaries {
		summaries[i].Rank = i + 1
	}
	return summaries, untimed
}

// LapTimeCorrelation returns the Pearson correlation between lap time
// and average dispersion over drivers with both values. The working
// hypothesis is that faster drivers brake more repeatably (positive
// correlation); that is an empirical check per dataset, not an
// invariant, so the value is reported and never enforced. ok is false
// with fewer than two timed drivers.
func LapTimeCorrelation(summaries []DriverSummary) (r float64, ok bool) {
	var times, disps []float64
	for _, s := range summaries {
		if s.HasLapTime {
			times = append(times, s.AvgLapTime)
			disps = append(disps, s.AvgDispersionM)
		}
	}
	if len(times) < 2 {
		return 0, false
	}
	r = stat.Correlation(times, disps, nil)
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

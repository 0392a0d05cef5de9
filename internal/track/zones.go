package track

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/edulizanay/14.toyota-hackathon/internal/brake"
)

// Zone is a named interval of track distance, typically one braking
// area. Intervals are half-open [Start, End) modulo the track length and
// may wrap through zero (Start > End).
type Zone struct {
	ID    int     `json:"zone_id"`
	Start float64 `json:"start_distance_m"`
	End   float64 `json:"end_distance_m"`
}

// Contains reports whether an arc-length coordinate falls inside the
// zone on a track of the given total length.
func (z Zone) Contains(d, total float64) bool {
	if z.Start <= z.End {
		return d >= z.Start && d < z.End
	}
	// Interval wraps through the start/finish seam.
	return d >= z.Start || d < z.End
}

// ZoneSet is an ordered list of zone definitions. Order matters: when
// intervals overlap, the first matching zone in definition order wins.
// That is policy, not an accident; overlaps are not validated away.
type ZoneSet struct {
	zones []Zone
	total float64
}

// LoadZones reads zone definitions from a JSON array and validates them
// against the centerline length. Malformed definitions are a fatal
// configuration error: every downstream statistic depends on them.
func LoadZones(path string, totalLength float64) (*ZoneSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zone definitions: %w", err)
	}
	var zones []Zone
	if err := json.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("parse zone definitions: %w", err)
	}
	return NewZoneSet(zones, totalLength)
}

// NewZoneSet validates an ordered zone list for a track of the given
// total length.
func NewZoneSet(zones []Zone, totalLength float64) (*ZoneSet, error) {
	if totalLength <= 0 {
		return nil, fmt.Errorf("zone set requires positive track length, got %g", totalLength)
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("no zone definitions supplied")
	}
	seen := make(map[int]bool, len(zones))
	for i, z := range zones {
		if seen[z.ID] {
			return nil, fmt.Errorf("zone definition %d: duplicate zone_id %d", i, z.ID)
		}
		seen[z.ID] = true
		if z.Start == z.End {
			return nil, fmt.Errorf("zone %d: empty interval [%g, %g)", z.ID, z.Start, z.End)
		}
		if z.Start < 0 || z.End < 0 || z.Start >= totalLength || z.End > totalLength {
			return nil, fmt.Errorf("zone %d: interval [%g, %g) outside track length %g",
				z.ID, z.Start, z.End, totalLength)
		}
	}
	return &ZoneSet{zones: append([]Zone(nil), zones...), total: totalLength}, nil
}

// Zones returns the definitions in order.
func (zs *ZoneSet) Zones() []Zone {
	return append([]Zone(nil), zs.zones...)
}

// Assign returns the first zone in definition order containing the
// coordinate, or ok=false when the point is unzoned (e.g. pit-lane
// braking). Unzoned points stay in the dataset for audit but are
// excluded from zone-level dispersion.
func (zs *ZoneSet) Assign(trackDistance float64) (int, bool) {
	for _, z := range zs.zones {
		if z.Contains(trackDistance, zs.total) {
			return z.ID, true
		}
	}
	return 0, false
}

// ReduceFirstPerZone keeps, for each (vehicle, lap, zone), only the
// earliest-timestamp event. Later events in the same zone and lap are
// trail-brake corrections: deliberately discarded from the consistency
// metric, though they remain in the raw event table. Unzoned events are
// dropped here as well. Returns the retained events in (vehicle, lap,
// zone) order and the number of trail-brake events discarded.
func ReduceFirstPerZone(events []brake.Event) (retained []brake.Event, discarded int) {
	type key struct {
		vehicle, lap, zone int
	}
	first := make(map[key]brake.Event)
	for _, ev := range events {
		if ev.ZoneID == nil {
			continue
		}
		k := key{vehicle: ev.VehicleID, lap: ev.Lap, zone: *ev.ZoneID}
		cur, ok := first[k]
		if !ok {
			first[k] = ev
			continue
		}
		discarded++
		if ev.Timestamp < cur.Timestamp {
			first[k] = ev
		}
	}

	keys := make([]key, 0, len(first))
	for k := range first {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].vehicle != keys[j].vehicle {
			return keys[i].vehicle < keys[j].vehicle
		}
		if keys[i].lap != keys[j].lap {
			return keys[i].lap < keys[j].lap
		}
		return keys[i].zone < keys[j].zone
	})
	retained = make([]brake.Event, 0, len(keys))
	for _, k := range keys {
		retained = append(retained, first[k])
	}
	return retained, discarded
}

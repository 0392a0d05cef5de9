package pipeline

import "github.com/edulizanay/14.toyota-hackathon/internal/monitoring"

// RunStats accumulates the data-quality counters observed during a run.
// None of these are errors; they exist so a run of real-world telemetry
// explains itself instead of silently dropping records.
type RunStats struct {
	RowsRead              int
	RowsSkipped           int
	RowsWithoutGPS        int
	Samples               int
	LapsTotal             int
	LapsSkippedDistance   int
	LapsWithoutEvents     int
	EventsDetected        int
	EventsOutsideZones    int
	TrailBrakeDropped     int
	AbnormalOffsets       int
	PairsBelowMinEvents   int
	DriversWithoutLapTime int
	DriversRanked         int
}

// Log writes the counters in a fixed order.
func (s RunStats) Log() {
	monitoring.Logf("ingest: %d rows (%d skipped, %d without gps) -> %d samples", s.RowsRead, s.RowsSkipped, s.RowsWithoutGPS, s.Samples)
	monitoring.Logf("laps: %d total, %d outside distance window, %d with no brake events", s.LapsTotal, s.LapsSkippedDistance, s.LapsWithoutEvents)
	monitoring.Logf("events: %d detected, %d outside zones, %d trail-brake duplicates dropped, %d abnormal offsets", s.EventsDetected, s.EventsOutsideZones, s.TrailBrakeDropped, s.AbnormalOffsets)
	monitoring.Logf("dispersion: %d (driver, zone) pairs below minimum events", s.PairsBelowMinEvents)
	monitoring.Logf("summary: %d drivers ranked, %d without lap time", s.DriversRanked, s.DriversWithoutLapTime)
}

package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/edulizanay/14.toyota-hackathon/internal/brake"
	"github.com/edulizanay/14.toyota-hackathon/internal/consistency"
	"github.com/edulizanay/14.toyota-hackathon/internal/fsutil"
	"github.com/edulizanay/14.toyota-hackathon/internal/track"
	"github.com/edulizanay/14.toyota-hackathon/internal/units"
)

// Exporter writes the run's CSV artifacts. Writes go through the
// FileSystem abstraction so every file lands atomically and the whole
// set can be tested in memory.
type Exporter struct {
	FS  fsutil.FileSystem
	Dir string
}

// NewExporter returns an exporter writing under dir on the real
// filesystem.
func NewExporter(dir string) *Exporter {
	return &Exporter{FS: fsutil.OSFileSystem{}, Dir: dir}
}

func (e *Exporter) write(name string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(e.Dir, name)
	if err := e.FS.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func ffmt(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCenterline writes track_centerline.csv: one row per station.
func (e *Exporter) WriteCenterline(cl *track.Centerline) error {
	records := [][]string{{"station", "distance_m", "x_meters", "y_meters"}}
	for i := 0; i < cl.Len(); i++ {
		s := cl.Station(i)
		records = append(records, []string{
			strconv.Itoa(i), ffmt(s.Distance), ffmt(s.Pos.X), ffmt(s.Pos.Y),
		})
	}
	return e.write("track_centerline.csv", records)
}

// WriteEvents writes brake_events.csv: every detected event, including
// unzoned ones (blank zone_id) so nothing observed goes unreported.
func (e *Exporter) WriteEvents(events []brake.Event) error {
	records := [][]string{{
		"vehicle_id", "lap", "timestamp", "x_meters", "y_meters",
		"track_distance_m", "zone_id", "lateral_offset_m", "brake_type", "pressure",
		"entry_speed_mps",
	}}
	for _, ev := range events {
		zone := ""
		if ev.ZoneID != nil {
			zone = strconv.Itoa(*ev.ZoneID)
		}
		records = append(records, []string{
			strconv.Itoa(ev.VehicleID),
			strconv.Itoa(ev.Lap),
			ffmt(ev.Timestamp),
			ffmt(ev.X),
			ffmt(ev.Y),
			ffmt(ev.TrackDistance),
			zone,
			ffmt(ev.LateralOffset),
			string(ev.BrakeType),
			ffmt(ev.Pressure),
			ffmt(ev.SpeedMps),
		})
	}
	return e.write("brake_events.csv", records)
}

// WriteDispersion writes dispersion.csv: one row per (driver, zone) pair
// that met the minimum event count.
func (e *Exporter) WriteDispersion(records []consistency.DispersionRecord) error {
	rows := [][]string{{
		"vehicle_id", "zone_id", "n_events",
		"mean_x", "mean_y", "std_x", "std_y", "dispersion_m",
	}}
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.VehicleID),
			strconv.Itoa(r.ZoneID),
			strconv.Itoa(r.NEvents),
			ffmt(r.MeanX), ffmt(r.MeanY),
			ffmt(r.StdX), ffmt(r.StdY),
			ffmt(r.DispersionM),
		})
	}
	return e.write("dispersion.csv", rows)
}

// WriteSummaries writes driver_summary.csv in rank order. Lap times are
// formatted M:SS.mmm to match the timing sheet; untimed drivers get "-".
func (e *Exporter) WriteSummaries(summaries []consistency.DriverSummary) error {
	rows := [][]string{{
		"rank", "vehicle_id", "avg_lap_time", "avg_lap_time_s",
		"avg_dispersion_m", "zone_count", "event_count",
	}}
	for _, s := range summaries {
		lapTime, lapSeconds := "-", ""
		if s.HasLapTime {
			lapTime = units.FormatLapTime(s.AvgLapTime)
			lapSeconds = ffmt(s.AvgLapTime)
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Rank),
			strconv.Itoa(s.VehicleID),
			lapTime,
			lapSeconds,
			ffmt(s.AvgDispersionM),
			strconv.Itoa(s.ZoneCount),
			strconv.Itoa(s.EventCount),
		})
	}
	return e.write("driver_summary.csv", rows)
}

package store

import (
	"database/sql"
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/edulizanay/14.toyota-hackathon/internal/brake"
	"github.com/edulizanay/14.toyota-hackathon/internal/consistency"
	"github.com/edulizanay/14.toyota-hackathon/internal/track"
)

// Run describes one pipeline execution.
type Run struct {
	ID            string
	TelemetryPath string
	SampleCount   int
	EventCount    int
	Threshold     float64
}

// CreateRun records a pipeline execution.
func (db *DB) CreateRun(r Run) error {
	_, err := db.Exec(
		`INSERT INTO runs (run_id, telemetry_path, sample_count, event_count, brake_threshold)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.TelemetryPath, r.SampleCount, r.EventCount, r.Threshold,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// HasCenterline reports whether a cached centerline exists.
func (db *DB) HasCenterline() (bool, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM centerline`).Scan(&n); err != nil {
		return false, fmt.Errorf("count centerline stations: %w", err)
	}
	return n > 0, nil
}

// SaveCenterline replaces the cached centerline. The replace is
// transactional so a crash never leaves a half-written curve behind.
func (db *DB) SaveCenterline(cl *track.Centerline) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin centerline save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM centerline`); err != nil {
		return fmt.Errorf("clear centerline: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO centerline (station, distance, x, y) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare centerline insert: %w", err)
	}
	defer stmt.Close()
	for i := 0; i < cl.Len(); i++ {
		s := cl.Station(i)
		if _, err := stmt.Exec(i, s.Distance, s.Pos.X, s.Pos.Y); err != nil {
			return fmt.Errorf("insert centerline station %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadCenterline rebuilds the cached centerline. Returns (nil, nil) when
// no centerline has been cached yet.
func (db *DB) LoadCenterline() (*track.Centerline, error) {
	rows, err := db.Query(`SELECT x, y FROM centerline ORDER BY station`)
	if err != nil {
		return nil, fmt.Errorf("query centerline: %w", err)
	}
	defer rows.Close()

	var pts []r2.Point
	for rows.Next() {
		var x, y float64
		if err := rows.Scan(&x, &y); err != nil {
			return nil, fmt.Errorf("scan centerline station: %w", err)
		}
		pts = append(pts, r2.Point{X: x, Y: y})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate centerline: %w", err)
	}
	if len(pts) == 0 {
		return nil, nil
	}
	cl, err := track.FromPoints(pts)
	if err != nil {
		return nil, fmt.Errorf("cached centerline invalid: %w", err)
	}
	return cl, nil
}

// SaveEvents stores the full brake-event table for a run, including
// unzoned and trail-brake events; the raw table is the audit trail.
func (db *DB) SaveEvents(runID string, events []brake.Event) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin event save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO brake_events
		 (run_id, vehicle_id, lap, timestamp, x, y, track_distance, zone_id, lateral_offset, brake_type, pressure, entry_speed_mps)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		var zone sql.NullInt64
		if ev.ZoneID != nil {
			zone = sql.NullInt64{Int64: int64(*ev.ZoneID), Valid: true}
		}
		if _, err := stmt.Exec(
			runID, ev.VehicleID, ev.Lap, ev.Timestamp, ev.X, ev.Y,
			ev.TrackDistance, zone, ev.LateralOffset, string(ev.BrakeType), ev.Pressure, ev.SpeedMps,
		); err != nil {
			return fmt.Errorf("insert brake event: %w", err)
		}
	}
	return tx.Commit()
}

// SaveDispersion stores the per-driver per-zone dispersion records.
func (db *DB) SaveDispersion(runID string, records []consistency.DispersionRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin dispersion save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO dispersion
		 (run_id, vehicle_id, zone_id, n_events, mean_x, mean_y, std_x, std_y, dispersion_m)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare dispersion insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			runID, r.VehicleID, r.ZoneID, r.NEvents,
			r.MeanX, r.MeanY, r.StdX, r.StdY, r.DispersionM,
		); err != nil {
			return fmt.Errorf("insert dispersion record: %w", err)
		}
	}
	return tx.Commit()
}

// SaveSummaries stores the ranked driver summaries. Drivers without a
// lap time persist NULL rather than a sentinel value.
func (db *DB) SaveSummaries(runID string, summaries []consistency.DriverSummary) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin summary save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO driver_summary
		 (run_id, vehicle_id, avg_lap_time, avg_dispersion_m, zone_count, event_count, rank)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare summary insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range summaries {
		var lapTime sql.NullFloat64
		if s.HasLapTime {
			lapTime = sql.NullFloat64{Float64: s.AvgLapTime, Valid: true}
		}
		if _, err := stmt.Exec(
			runID, s.VehicleID, lapTime, s.AvgDispersionM, s.ZoneCount, s.EventCount, s.Rank,
		); err != nil {
			return fmt.Errorf("insert driver summary: %w", err)
		}
	}
	return tx.Commit()
}

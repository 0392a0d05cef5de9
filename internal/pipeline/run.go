// Package pipeline orchestrates a full analysis run: ingest telemetry,
// build or load the track centerline, detect and localize brake events,
// and produce the dispersion statistics, database records, CSV exports
// and dashboard. Computation happens first and writes happen last, so a
// failed run leaves no partial output set behind.
package pipeline

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/edulizanay/14.toyota-hackathon/internal/brake"
	"github.com/edulizanay/14.toyota-hackathon/internal/consistency"
	"github.com/edulizanay/14.toyota-hackathon/internal/dashboard"
	"github.com/edulizanay/14.toyota-hackathon/internal/fsutil"
	"github.com/edulizanay/14.toyota-hackathon/internal/monitoring"
	"github.com/edulizanay/14.toyota-hackathon/internal/store"
	"github.com/edulizanay/14.toyota-hackathon/internal/telemetry"
	"github.com/edulizanay/14.toyota-hackathon/internal/track"
)

// Result is what a completed run hands back to the caller.
type Result struct {
	RunID          string
	Threshold      float64
	Centerline     *track.Centerline
	Events         []brake.Event
	Records        []consistency.DispersionRecord
	Summaries      []consistency.DriverSummary
	Correlation    float64
	HasCorrelation bool
	Stats          RunStats
}

// Run executes the whole pipeline.
func Run(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	samples, loadStats, err := telemetry.LoadCSV(cfg.TelemetryPath, cfg.ChunkSize)
	if err != nil {
		return nil, fmt.Errorf("load telemetry: %w", err)
	}
	stats := RunStats{
		RowsRead:       loadStats.Rows,
		RowsSkipped:    loadStats.RowsSkipped,
		RowsWithoutGPS: loadStats.NoPosition,
		Samples:        len(samples),
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no usable samples in %s", cfg.TelemetryPath)
	}

	lapTimes := telemetry.LapTimes{}
	if cfg.TimingPath != "" {
		var skipped int
		lapTimes, skipped, err = telemetry.LoadLapTimes(cfg.TimingPath)
		if err != nil {
			return nil, fmt.Errorf("load lap times: %w", err)
		}
		if skipped > 0 {
			monitoring.Logf("timing: %d rows without a parseable lap time", skipped)
		}
	}

	// The threshold is derived from the complete dataset, not just the
	// racing laps, so slow out-laps still contribute noise-floor samples.
	threshold, err := brake.Threshold(samples, cfg.ThresholdPercentile)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("brake threshold: %.3f (p%.0f of positive pressures)", threshold, cfg.ThresholdPercentile*100)

	laps := telemetry.GroupLaps(samples)
	stats.LapsTotal = len(laps)
	racing, skippedLaps := telemetry.FilterRacingLaps(laps, cfg.MinLapDistanceM, cfg.MaxLapDistanceM)
	stats.LapsSkippedDistance = skippedLaps
	if len(racing) == 0 {
		return nil, fmt.Errorf("no laps inside distance window [%g, %g] m", cfg.MinLapDistanceM, cfg.MaxLapDistanceM)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	centerline, err := obtainCenterline(db, racing, cfg)
	if err != nil {
		return nil, err
	}

	zones, err := track.LoadZones(cfg.ZonesPath, centerline.TotalLength())
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}

	events, emptyLaps := brake.Detect(racing, threshold)
	stats.LapsWithoutEvents = emptyLaps
	stats.EventsDetected = len(events)

	for i := range events {
		ev := &events[i]
		proj := centerline.Project(ev.Pos())
		ev.TrackDistance = proj.TrackDistance
		ev.LateralOffset = proj.LateralOffset
		if math.Abs(ev.LateralOffset) > cfg.MaxLateralOffsetM {
			stats.AbnormalOffsets++
		}
		if id, ok := zones.Assign(ev.TrackDistance); ok {
			zoneID := id
			ev.ZoneID = &zoneID
		} else {
			stats.EventsOutsideZones++
		}
	}

	reduced, trailBrake := track.ReduceFirstPerZone(events)
	stats.TrailBrakeDropped = trailBrake

	records, omitted := consistency.ZoneDispersion(reduced)
	stats.PairsBelowMinEvents = omitted
	summaries, untimed := consistency.Summarize(records, lapTimes)
	stats.DriversWithoutLapTime = untimed
	stats.DriversRanked = len(summaries)
	corr, hasCorr := consistency.LapTimeCorrelation(summaries)

	res := &Result{
		RunID:          uuid.NewString(),
		Threshold:      threshold,
		Centerline:     centerline,
		Events:         events,
		Records:        records,
		Summaries:      summaries,
		Correlation:    corr,
		HasCorrelation: hasCorr,
		Stats:          stats,
	}

	if err := writeOutputs(db, cfg, res, zones, reduced); err != nil {
		return nil, err
	}
	return res, nil
}

// obtainCenterline loads the cached centerline unless a rebuild is
// forced, building and caching one from the reference lap otherwise.
func obtainCenterline(db *store.DB, racing map[telemetry.LapKey][]telemetry.Sample, cfg Config) (*track.Centerline, error) {
	if !cfg.Force {
		cached, err := db.HasCenterline()
		if err != nil {
			return nil, err
		}
		if cached {
			cl, err := db.LoadCenterline()
			if err != nil {
				return nil, err
			}
			monitoring.Logf("centerline: loaded %d cached stations, %.0f m", cl.Len(), cl.TotalLength())
			return cl, nil
		}
	}

	key, lap, ok := telemetry.ReferenceLap(racing, cfg.RefVehicle)
	if !ok {
		return nil, fmt.Errorf("no reference lap available for vehicle %d", cfg.RefVehicle)
	}
	cl, err := track.Build(lap, cfg.Build)
	if err != nil {
		return nil, fmt.Errorf("build centerline from vehicle %d lap %d: %w", key.VehicleID, key.Lap, err)
	}
	monitoring.Logf("centerline: built from vehicle %d lap %d, %d stations, %.0f m", key.VehicleID, key.Lap, cl.Len(), cl.TotalLength())
	if err := db.SaveCenterline(cl); err != nil {
		return nil, err
	}
	return cl, nil
}

// writeOutputs persists everything a successful run produces. Called
// only once the full result exists.
func writeOutputs(db *store.DB, cfg Config, res *Result, zones *track.ZoneSet, reduced []brake.Event) error {
	if err := db.CreateRun(store.Run{
		ID:            res.RunID,
		TelemetryPath: cfg.TelemetryPath,
		SampleCount:   res.Stats.Samples,
		EventCount:    len(res.Events),
		Threshold:     res.Threshold,
	}); err != nil {
		return err
	}
	if err := db.SaveEvents(res.RunID, res.Events); err != nil {
		return err
	}
	if err := db.SaveDispersion(res.RunID, res.Records); err != nil {
		return err
	}
	if err := db.SaveSummaries(res.RunID, res.Summaries); err != nil {
		return err
	}

	fs := fsutil.OSFileSystem{}
	if err := fs.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	exp := store.NewExporter(cfg.OutDir)
	if err := exp.WriteCenterline(res.Centerline); err != nil {
		return err
	}
	if err := exp.WriteEvents(res.Events); err != nil {
		return err
	}
	if err := exp.WriteDispersion(res.Records); err != nil {
		return err
	}
	if err := exp.WriteSummaries(res.Summaries); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := dashboard.Render(&buf, dashboard.Input{
		Centerline:            res.Centerline,
		Zones:                 zones,
		Events:                reduced,
		Records:               res.Records,
		Summaries:             res.Summaries,
		LapTimeCorrelation:    res.Correlation,
		HasLapTimeCorrelation: res.HasCorrelation,
	}); err != nil {
		return err
	}
	htmlPath := filepath.Join(cfg.OutDir, "dashboard.html")
	if err := fs.WriteFileAtomic(htmlPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write dashboard: %w", err)
	}
	return nil
}

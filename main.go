package main

import (
	"flag"
	"log"

	"github.com/edulizanay/14.toyota-hackathon/internal/pipeline"
	"github.com/edulizanay/14.toyota-hackathon/internal/units"
)

var (
	telemetryPath = flag.String("telemetry", "", "Long-format telemetry CSV (required)")
	timingPath    = flag.String("timing", "", "Timing results CSV (optional; drivers missing here rank last)")
	zonesPath     = flag.String("zones", "", "Braking zone definitions JSON (required)")
	dbPath        = flag.String("db", "analysis.db", "SQLite artifact database")
	outDir        = flag.String("out", "out", "Output directory for CSV and HTML artifacts")
	force         = flag.Bool("force", false, "Rebuild the centerline even if one is cached")
	refVehicle    = flag.Int("vehicle", 0, "Centerline reference vehicle number (0 = most samples)")
	minLap        = flag.Float64("min-lap", 3500, "Minimum racing lap distance in meters")
	maxLap        = flag.Float64("max-lap", 4000, "Maximum racing lap distance in meters")
	percentile    = flag.Float64("percentile", 0.05, "Brake threshold percentile of positive pressures")
)

func main() {
	flag.Parse()

	cfg := pipeline.DefaultConfig()
	cfg.TelemetryPath = *telemetryPath
	cfg.TimingPath = *timingPath
	cfg.ZonesPath = *zonesPath
	cfg.DBPath = *dbPath
	cfg.OutDir = *outDir
	cfg.Force = *force
	cfg.RefVehicle = *refVehicle
	cfg.MinLapDistanceM = *minLap
	cfg.MaxLapDistanceM = *maxLap
	cfg.ThresholdPercentile = *percentile

	res, err := pipeline.Run(cfg)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	res.Stats.Log()
	log.Printf("run %s complete", res.RunID)
	for _, s := range res.Summaries {
		lapTime := "-"
		if s.HasLapTime {
			lapTime = units.FormatLapTime(s.AvgLapTime)
		}
		log.Printf("  %2d. vehicle %3d  lap %s  dispersion %.2f m over %d zones (%d events)",
			s.Rank, s.VehicleID, lapTime, s.AvgDispersionM, s.ZoneCount, s.EventCount)
	}
	if res.HasCorrelation {
		log.Printf("lap time vs dispersion correlation: r = %.3f", res.Correlation)
	}
	log.Printf("outputs written to %s", cfg.OutDir)
}

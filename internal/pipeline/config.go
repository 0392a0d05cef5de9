package pipeline

import (
	"fmt"

	"github.com/edulizanay/14.toyota-hackathon/internal/brake"
	"github.com/edulizanay/14.toyota-hackathon/internal/telemetry"
	"github.com/edulizanay/14.toyota-hackathon/internal/track"
)

// Config carries every tunable of a pipeline run. Zero values are not
// meaningful defaults; start from DefaultConfig and override.
type Config struct {
	TelemetryPath string // long-format telemetry CSV (required)
	TimingPath    string // timing-results CSV; optional
	ZonesPath     string // braking zone definitions JSON (required)
	DBPath        string // sqlite artifact database
	OutDir        string // directory for CSV and HTML outputs

	// Force rebuilds the centerline even when a cached one exists.
	Force bool

	// RefVehicle picks the centerline reference vehicle; <= 0 means the
	// vehicle with the most samples.
	RefVehicle int

	ChunkSize           int
	ThresholdPercentile float64

	// Laps outside this distance window are out-laps, in-laps or partial
	// data and are excluded from analysis.
	MinLapDistanceM float64
	MaxLapDistanceM float64

	// MaxLateralOffsetM flags projections suspiciously far from the
	// centerline; flagged events are kept but counted.
	MaxLateralOffsetM float64

	Build track.BuildParams
}

// DefaultConfig returns the standard tuning for a 3.7 km road course.
func DefaultConfig() Config {
	return Config{
		DBPath:              "analysis.db",
		OutDir:              "out",
		ChunkSize:           telemetry.DefaultChunkSize,
		ThresholdPercentile: brake.DefaultThresholdPercentile,
		MinLapDistanceM:     3500,
		MaxLapDistanceM:     4000,
		MaxLateralOffsetM:   30,
		Build:               track.DefaultBuildParams(),
	}
}

// Validate checks the parts of the config that cannot fail lazily.
func (c Config) Validate() error {
	if c.TelemetryPath == "" {
		return fmt.Errorf("telemetry path is required")
	}
	if c.ZonesPath == "" {
		return fmt.Errorf("zones path is required")
	}
	if c.MinLapDistanceM <= 0 || c.MaxLapDistanceM <= c.MinLapDistanceM {
		return fmt.Errorf("invalid lap distance window [%g, %g]", c.MinLapDistanceM, c.MaxLapDistanceM)
	}
	if c.ThresholdPercentile <= 0 || c.ThresholdPercentile >= 1 {
		return fmt.Errorf("threshold percentile must be in (0,1), got %g", c.ThresholdPercentile)
	}
	return nil
}

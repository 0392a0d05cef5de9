package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulizanay/14.toyota-hackathon/internal/brake"
	"github.com/edulizanay/14.toyota-hackathon/internal/consistency"
	"github.com/edulizanay/14.toyota-hackathon/internal/track"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_MigratesIdempotently(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening an already-migrated database is a no-op.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n))
	assert.Zero(t, n)
}

func TestCenterlineRoundTrip(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	has, err := db.HasCenterline()
	require.NoError(t, err)
	assert.False(t, has)

	cl, err := db.LoadCenterline()
	require.NoError(t, err)
	assert.Nil(t, cl, "no cached centerline yet")

	orig, err := track.FromPoints([]r2.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	})
	require.NoError(t, err)
	require.NoError(t, db.SaveCenterline(orig))

	has, err = db.HasCenterline()
	require.NoError(t, err)
	assert.True(t, has)

	loaded, err := db.LoadCenterline()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, orig.Len(), loaded.Len())
	for i := 0; i < orig.Len(); i++ {
		assert.Equal(t, orig.Station(i), loaded.Station(i))
	}
	assert.Equal(t, orig.TotalLength(), loaded.TotalLength())

	// Saving again replaces rather than appends.
	require.NoError(t, db.SaveCenterline(orig))
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM centerline").Scan(&n))
	assert.Equal(t, orig.Len(), n)
}

func TestSaveEvents(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	run := Run{ID: "run-1", TelemetryPath: "session.csv", SampleCount: 100, EventCount: 2, Threshold: 1.5}
	require.NoError(t, db.CreateRun(run))

	zone := 3
	events := []brake.Event{
		{VehicleID: 7, Lap: 1, Timestamp: 10, X: 1, Y: 2, TrackDistance: 500, ZoneID: &zone, LateralOffset: -0.5, BrakeType: brake.Front, Pressure: 20, SpeedMps: 48.5},
		{VehicleID: 7, Lap: 2, Timestamp: 90, X: 3, Y: 4, TrackDistance: 2200, BrakeType: brake.Rear, Pressure: 8},
	}
	require.NoError(t, db.SaveEvents(run.ID, events))

	rows, err := db.Query(`SELECT vehicle_id, lap, zone_id, brake_type, entry_speed_mps FROM brake_events WHERE run_id = ? ORDER BY lap`, run.ID)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var vehicle, lap int
	var zoneID sql.NullInt64
	var brakeType string
	var speed float64
	require.NoError(t, rows.Scan(&vehicle, &lap, &zoneID, &brakeType, &speed))
	assert.Equal(t, 7, vehicle)
	require.True(t, zoneID.Valid)
	assert.EqualValues(t, 3, zoneID.Int64)
	assert.Equal(t, "front", brakeType)
	assert.Equal(t, 48.5, speed)

	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&vehicle, &lap, &zoneID, &brakeType, &speed))
	assert.False(t, zoneID.Valid, "unzoned event persists NULL")
	assert.Equal(t, "rear", brakeType)
	require.NoError(t, rows.Err())
}

func TestSaveDispersionAndSummaries(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	require.NoError(t, db.CreateRun(Run{ID: "run-2"}))

	records := []consistency.DispersionRecord{
		{VehicleID: 7, ZoneID: 1, NEvents: 4, MeanX: 1, MeanY: 2, StdX: 0.5, StdY: 0.5, DispersionM: 0.707},
	}
	require.NoError(t, db.SaveDispersion("run-2", records))

	summaries := []consistency.DriverSummary{
		{VehicleID: 7, AvgLapTime: 97.4, HasLapTime: true, AvgDispersionM: 0.707, ZoneCount: 1, EventCount: 4, Rank: 1},
		{VehicleID: 9, AvgDispersionM: 1.2, ZoneCount: 1, EventCount: 2, Rank: 2},
	}
	require.NoError(t, db.SaveSummaries("run-2", summaries))

	var lapTime sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT avg_lap_time FROM driver_summary WHERE run_id = 'run-2' AND vehicle_id = 7`).Scan(&lapTime))
	require.True(t, lapTime.Valid)
	assert.InDelta(t, 97.4, lapTime.Float64, 1e-9)

	require.NoError(t, db.QueryRow(`SELECT avg_lap_time FROM driver_summary WHERE run_id = 'run-2' AND vehicle_id = 9`).Scan(&lapTime))
	assert.False(t, lapTime.Valid, "untimed driver persists NULL")

	var n int
	require.NoError(t, db.QueryRow(`SELECT n_events FROM dispersion WHERE run_id = 'run-2' AND vehicle_id = 7 AND zone_id = 1`).Scan(&n))
	assert.Equal(t, 4, n)
}

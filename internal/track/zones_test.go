package track

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulizanay/14.toyota-hackathon/internal/brake"
)

func TestZoneContains(t *testing.T) {
	t.Parallel()

	t.Run("half open interval", func(t *testing.T) {
		t.Parallel()
		z := Zone{ID: 1, Start: 100, End: 200}
		assert.True(t, z.Contains(100, 1000))
		assert.True(t, z.Contains(199.999, 1000))
		assert.False(t, z.Contains(200, 1000))
		assert.False(t, z.Contains(99.999, 1000))
	})

	t.Run("wraps through seam", func(t *testing.T) {
		t.Parallel()
		z := Zone{ID: 2, Start: 950, End: 50}
		assert.True(t, z.Contains(980, 1000))
		assert.True(t, z.Contains(0, 1000))
		assert.True(t, z.Contains(49.999, 1000))
		assert.False(t, z.Contains(50, 1000))
		assert.False(t, z.Contains(500, 1000))
	})
}

func TestNewZoneSet_Validation(t *testing.T) {
	t.Parallel()

	valid := []Zone{{ID: 1, Start: 0, End: 100}, {ID: 2, Start: 200, End: 300}}

	cases := []struct {
		name  string
		zones []Zone
		total float64
	}{
		{"empty list", nil, 1000},
		{"zero track length", valid, 0},
		{"duplicate id", []Zone{{ID: 1, Start: 0, End: 10}, {ID: 1, Start: 20, End: 30}}, 1000},
		{"empty interval", []Zone{{ID: 1, Start: 50, End: 50}}, 1000},
		{"start beyond track", []Zone{{ID: 1, Start: 1500, End: 100}}, 1000},
		{"negative start", []Zone{{ID: 1, Start: -5, End: 100}}, 1000},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewZoneSet(tc.zones, tc.total)
			assert.Error(t, err)
		})
	}

	zs, err := NewZoneSet(valid, 1000)
	require.NoError(t, err)
	assert.Len(t, zs.Zones(), 2)
}

func TestAssign_FirstMatchWins(t *testing.T) {
	t.Parallel()

	// Deliberately overlapping definitions: 150 is in both.
	zs, err := NewZoneSet([]Zone{
		{ID: 5, Start: 100, End: 200},
		{ID: 6, Start: 150, End: 250},
	}, 1000)
	require.NoError(t, err)

	id, ok := zs.Assign(150)
	require.True(t, ok)
	assert.Equal(t, 5, id)

	id, ok = zs.Assign(220)
	require.True(t, ok)
	assert.Equal(t, 6, id)

	_, ok = zs.Assign(500)
	assert.False(t, ok)
}

func TestLoadZones(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "zones.json")
	data := `[
		{"zone_id": 1, "start_distance_m": 0, "end_distance_m": 120},
		{"zone_id": 2, "start_distance_m": 900, "end_distance_m": 80}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	zs, err := LoadZones(path, 1000)
	require.NoError(t, err)
	id, ok := zs.Assign(950)
	require.True(t, ok)
	assert.Equal(t, 2, id)

	_, err = LoadZones(filepath.Join(dir, "missing.json"), 1000)
	assert.Error(t, err)
}

func zonedEvent(vehicle, lap, zone int, ts float64) brake.Event {
	z := zone
	return brake.Event{VehicleID: vehicle, Lap: lap, Timestamp: ts, ZoneID: &z}
}

func TestReduceFirstPerZone(t *testing.T) {
	t.Parallel()

	t.Run("keeps earliest per vehicle lap zone", func(t *testing.T) {
		t.Parallel()
		events := []brake.Event{
			zonedEvent(7, 1, 3, 100.0),
			zonedEvent(7, 1, 3, 101.5), // trail-brake correction
			zonedEvent(7, 1, 3, 100.8),
			zonedEvent(7, 2, 3, 250.0), // next lap, kept separately
		}
		retained, discarded := ReduceFirstPerZone(events)
		assert.Equal(t, 2, discarded)
		require.Len(t, retained, 2)
		assert.Equal(t, 100.0, retained[0].Timestamp)
		assert.Equal(t, 250.0, retained[1].Timestamp)
	})

	t.Run("drops unzoned events", func(t *testing.T) {
		t.Parallel()
		events := []brake.Event{
			{VehicleID: 7, Lap: 1, Timestamp: 5},
			zonedEvent(7, 1, 1, 10),
		}
		retained, discarded := ReduceFirstPerZone(events)
		assert.Equal(t, 0, discarded)
		require.Len(t, retained, 1)
		require.NotNil(t, retained[0].ZoneID)
	})

	t.Run("output order deterministic", func(t *testing.T) {
		t.Parallel()
		events := []brake.Event{
			zonedEvent(9, 2, 2, 1),
			zonedEvent(7, 1, 5, 2),
			zonedEvent(9, 1, 1, 3),
			zonedEvent(7, 1, 2, 4),
		}
		retained, _ := ReduceFirstPerZone(events)
		require.Len(t, retained, 4)
		assert.Equal(t, 7, retained[0].VehicleID)
		assert.Equal(t, 2, *retained[0].ZoneID)
		assert.Equal(t, 5, *retained[1].ZoneID)
		assert.Equal(t, 9, retained[2].VehicleID)
		assert.Equal(t, 1, retained[2].Lap)
		assert.Equal(t, 2, retained[3].Lap)
	})
}

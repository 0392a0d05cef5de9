package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lapOf(vehicle, lap, n int, stepM float64) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{
			VehicleID: vehicle,
			Lap:       lap,
			Timestamp: float64(i),
			X:         float64(i) * stepM,
		}
	}
	return samples
}

func TestGroupLaps(t *testing.T) {
	t.Parallel()

	samples := []Sample{
		{VehicleID: 7, Lap: 1, Timestamp: 3},
		{VehicleID: 7, Lap: 2, Timestamp: 1},
		{VehicleID: 7, Lap: 1, Timestamp: 1},
		{VehicleID: 9, Lap: 1, Timestamp: 2},
		{VehicleID: 7, Lap: 1, Timestamp: 2},
	}
	laps := GroupLaps(samples)
	require.Len(t, laps, 3)

	lap := laps[LapKey{VehicleID: 7, Lap: 1}]
	require.Len(t, lap, 3)
	assert.Equal(t, []float64{1, 2, 3}, []float64{lap[0].Timestamp, lap[1].Timestamp, lap[2].Timestamp})
}

func TestSortedLapKeys(t *testing.T) {
	t.Parallel()

	laps := map[LapKey][]Sample{
		{VehicleID: 9, Lap: 1}: nil,
		{VehicleID: 7, Lap: 2}: nil,
		{VehicleID: 7, Lap: 1}: nil,
	}
	keys := SortedLapKeys(laps)
	assert.Equal(t, []LapKey{
		{VehicleID: 7, Lap: 1},
		{VehicleID: 7, Lap: 2},
		{VehicleID: 9, Lap: 1},
	}, keys)
}

func TestLapDistance(t *testing.T) {
	t.Parallel()

	lap := []Sample{
		{X: 0, Y: 0},
		{X: 3, Y: 4},
		{X: 3, Y: 10},
	}
	assert.InDelta(t, 11.0, LapDistance(lap), 1e-12)
	assert.Zero(t, LapDistance(nil))
	assert.Zero(t, LapDistance(lap[:1]))
}

func TestFilterRacingLaps(t *testing.T) {
	t.Parallel()

	laps := map[LapKey][]Sample{
		{VehicleID: 7, Lap: 1}: lapOf(7, 1, 100, 10),  // 990 m out-lap
		{VehicleID: 7, Lap: 2}: lapOf(7, 2, 360, 10),  // 3590 m flying lap
		{VehicleID: 7, Lap: 3}: lapOf(7, 3, 500, 10),  // 4990 m pit tour
	}
	kept, dropped := FilterRacingLaps(laps, 3500, 4000)
	assert.Equal(t, 2, dropped)
	require.Len(t, kept, 1)
	_, ok := kept[LapKey{VehicleID: 7, Lap: 2}]
	assert.True(t, ok)
}

func TestReferenceLap(t *testing.T) {
	t.Parallel()

	laps := map[LapKey][]Sample{
		{VehicleID: 7, Lap: 1}: lapOf(7, 1, 50, 1),
		{VehicleID: 7, Lap: 2}: lapOf(7, 2, 80, 1),
		{VehicleID: 9, Lap: 1}: lapOf(9, 1, 200, 1),
	}

	t.Run("explicit vehicle", func(t *testing.T) {
		key, lap, ok := ReferenceLap(laps, 7)
		require.True(t, ok)
		assert.Equal(t, LapKey{VehicleID: 7, Lap: 2}, key)
		assert.Len(t, lap, 80)
	})

	t.Run("auto picks vehicle with most samples", func(t *testing.T) {
		key, lap, ok := ReferenceLap(laps, 0)
		require.True(t, ok)
		assert.Equal(t, LapKey{VehicleID: 9, Lap: 1}, key)
		assert.Len(t, lap, 200)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		_, _, ok := ReferenceLap(laps, 42)
		assert.False(t, ok)
	})

	t.Run("tie breaks to lower lap", func(t *testing.T) {
		tied := map[LapKey][]Sample{
			{VehicleID: 7, Lap: 4}: lapOf(7, 4, 60, 1),
			{VehicleID: 7, Lap: 2}: lapOf(7, 2, 60, 1),
		}
		key, _, ok := ReferenceLap(tied, 7)
		require.True(t, ok)
		assert.Equal(t, 2, key.Lap)
	})
}

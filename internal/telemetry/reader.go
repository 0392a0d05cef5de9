package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/edulizanay/14.toyota-hackathon/internal/monitoring"
)

// Telemetry parameters the pipeline needs; all other rows are skipped.
var neededParams = map[string]bool{
	"pbrake_f": true,
	"pbrake_r": true,
	"x_meters": true,
	"y_meters": true,
	"speed":    true,
}

// DefaultChunkSize bounds how many long-format rows are decoded per batch.
// Chunk boundaries carry no semantic meaning; samples accumulate across
// chunks and laps are reassembled afterwards.
const DefaultChunkSize = 500000

// LoadStats reports records skipped during ingestion.
type LoadStats struct {
	Rows        int // long-format rows read
	RowsSkipped int // rows for parameters the pipeline does not use
	NoPosition  int // pivoted samples dropped for missing x/y
}

type sampleKey struct {
	vehicle   int
	lap       int
	timestamp float64
}

type partialSample struct {
	values map[string]float64
}

// LoadCSV reads a long-format telemetry CSV and pivots it into Samples.
// Expected header: vehicle_number, lap, timestamp, telemetry_name,
// telemetry_value (extra columns are ignored). Samples missing a position
// are dropped and counted rather than treated as errors.
func LoadCSV(path string, chunkSize int) ([]Sample, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open telemetry: %w", err)
	}
	defer f.Close()
	return loadCSV(f, chunkSize)
}

func loadCSV(r io.Reader, chunkSize int) ([]Sample, LoadStats, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("read telemetry header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"vehicle_number", "lap", "timestamp", "telemetry_name", "telemetry_value"} {
		if _, ok := col[name]; !ok {
			return nil, LoadStats{}, fmt.Errorf("telemetry CSV missing column %q", name)
		}
	}

	var stats LoadStats
	partials := make(map[sampleKey]*partialSample)

	rowsInChunk := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read telemetry row: %w", err)
		}
		stats.Rows++
		rowsInChunk++
		if rowsInChunk == chunkSize {
			rowsInChunk = 0
			monitoring.Logf("telemetry: %d rows read, %d samples accumulated", stats.Rows, len(partials))
		}

		name := rec[col["telemetry_name"]]
		if !neededParams[name] {
			stats.RowsSkipped++
			continue
		}

		vehicle, err := strconv.Atoi(rec[col["vehicle_number"]])
		if err != nil {
			return nil, stats, fmt.Errorf("row %d: bad vehicle_number %q", stats.Rows, rec[col["vehicle_number"]])
		}
		lap, err := strconv.Atoi(rec[col["lap"]])
		if err != nil {
			return nil, stats, fmt.Errorf("row %d: bad lap %q", stats.Rows, rec[col["lap"]])
		}
		ts, err := strconv.ParseFloat(rec[col["timestamp"]], 64)
		if err != nil {
			return nil, stats, fmt.Errorf("row %d: bad timestamp %q", stats.Rows, rec[col["timestamp"]])
		}
		val, err := strconv.ParseFloat(rec[col["telemetry_value"]], 64)
		if err != nil {
			return nil, stats, fmt.Errorf("row %d: bad telemetry_value %q", stats.Rows, rec[col["telemetry_value"]])
		}

		k := sampleKey{vehicle: vehicle, lap: lap, timestamp: ts}
		p := partials[k]
		if p == nil {
			p = &partialSample{values: make(map[string]float64, len(neededParams))}
			partials[k] = p
		}
		// First value wins on duplicate parameter rows.
		if _, seen := p.values[name]; !seen {
			p.values[name] = val
		}
	}

	keys := make([]sampleKey, 0, len(partials))
	for k := range partials {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.vehicle != b.vehicle {
			return a.vehicle < b.vehicle
		}
		if a.lap != b.lap {
			return a.lap < b.lap
		}
		return a.timestamp < b.timestamp
	})

	samples := make([]Sample, 0, len(keys))
	for _, k := range keys {
		v := partials[k].values
		x, okX := v["x_meters"]
		y, okY := v["y_meters"]
		if !okX || !okY {
			stats.NoPosition++
			continue
		}
		samples = append(samples, Sample{
			VehicleID:  k.vehicle,
			Lap:        k.lap,
			Timestamp:  k.timestamp,
			X:          x,
			Y:          y,
			BrakeFront: v["pbrake_f"],
			BrakeRear:  v["pbrake_r"],
			Speed:      v["speed"],
		})
	}
	return samples, stats, nil
}

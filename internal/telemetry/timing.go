package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/edulizanay/14.toyota-hackathon/internal/units"
)

// LapTimes maps vehicle number to best lap time in seconds.
type LapTimes map[int]float64

// LoadLapTimes reads a timing-results CSV (semicolon separated, columns
// NUMBER and FL_TIME with times formatted M:SS.mmm). Drivers with blank
// or unparseable times are skipped and counted; a driver missing here
// simply loses its lap time downstream, it never fails the run.
func LoadLapTimes(path string) (LapTimes, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open timing results: %w", err)
	}
	defer f.Close()
	return loadLapTimes(f)
}

func loadLapTimes(r io.Reader) (LapTimes, int, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read timing header: %w", err)
	}
	numberCol, timeCol := -1, -1
	for i, name := range header {
		switch name {
		case "NUMBER":
			numberCol = i
		case "FL_TIME":
			timeCol = i
		}
	}
	if numberCol < 0 || timeCol < 0 {
		return nil, 0, fmt.Errorf("timing CSV missing NUMBER or FL_TIME column")
	}

	times := make(LapTimes)
	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("read timing row: %w", err)
		}
		if numberCol >= len(rec) || timeCol >= len(rec) {
			skipped++
			continue
		}
		vehicle, err := parseVehicleNumber(rec[numberCol])
		if err != nil {
			skipped++
			continue
		}
		secs, err := units.ParseLapTime(rec[timeCol])
		if err != nil {
			skipped++
			continue
		}
		times[vehicle] = secs
	}
	return times, skipped, nil
}

func parseVehicleNumber(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	return n, nil
}

// Package units converts between the wire formats of external timing
// collaborators and the SI values used internally.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseLapTime converts a lap time in "M:SS.mmm" form (e.g. "1:37.428")
// to seconds. A bare seconds value ("97.428") is also accepted.
func ParseLapTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty lap time")
	}
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		secs, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || secs < 0 {
			return 0, fmt.Errorf("invalid lap time %q", s)
		}
		return secs, nil
	case 2:
		mins, err := strconv.Atoi(parts[0])
		if err != nil || mins < 0 {
			return 0, fmt.Errorf("invalid lap time %q", s)
		}
		secs, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || secs < 0 || secs >= 60 {
			return 0, fmt.Errorf("invalid lap time %q", s)
		}
		return float64(mins)*60 + secs, nil
	default:
		return 0, fmt.Errorf("invalid lap time %q", s)
	}
}

// FormatLapTime renders seconds as "M:SS.mmm" for logs and dashboards.
func FormatLapTime(secs float64) string {
	if math.IsNaN(secs) || secs <= 0 {
		return "-"
	}
	mins := int(secs) / 60
	rest := secs - float64(mins)*60
	return fmt.Sprintf("%d:%06.3f", mins, rest)
}

// KphToMps converts a speed in kilometers per hour to meters per second.
func KphToMps(kph float64) float64 {
	return kph / 3.6
}

package track

import (
	"github.com/golang/geo/r2"
)

// Projection locates an arbitrary point relative to the centerline.
type Projection struct {
	// TrackDistance is the arc-length coordinate of the nearest point on
	// the centerline, in [0, TotalLength).
	TrackDistance float64
	// LateralOffset is the signed perpendicular distance to the curve:
	// positive to the left of the direction of travel, negative to the
	// right. Its magnitude alone says how far off-track the point is.
	LateralOffset float64
	// SegmentIndex is the station index opening the nearest segment.
	SegmentIndex int
}

// Project finds the centerline segment nearest to p and returns the
// interpolated arc-length coordinate and signed lateral offset. Every
// point projects somewhere; there is no "not near track" failure. The
// seam segment from the last station back to the first participates in
// the search, so projections near the lap closure never jump by almost
// a full lap.
func (c *Centerline) Project(p r2.Point) Projection {
	n := len(c.stations)
	best := Projection{}
	bestDist2 := -1.0

	for i := 0; i < n; i++ {
		a := c.stations[i].Pos
		b := c.stations[(i+1)%n].Pos
		seg := b.Sub(a)
		segLen2 := seg.Dot(seg)

		t := 0.0
		if segLen2 > 0 {
			t = clamp01(p.Sub(a).Dot(seg) / segLen2)
		}
		closest := a.Add(seg.Mul(t))
		v := p.Sub(closest)
		d2 := v.Dot(v)

		if bestDist2 >= 0 && d2 >= bestDist2 {
			continue
		}
		bestDist2 = d2

		segLen := segmentLength(c, i)
		dist := c.WrapDistance(c.stations[i].Distance + t*segLen)

		offset := v.Norm()
		if seg.Cross(v) < 0 {
			offset = -offset
		}
		best = Projection{TrackDistance: dist, LateralOffset: offset, SegmentIndex: i}
	}
	return best
}

// segmentLength is the arc length of segment i in the distance
// coordinate, including the closing seam segment.
func segmentLength(c *Centerline, i int) float64 {
	if i == len(c.stations)-1 {
		return c.total - c.stations[i].Distance
	}
	return c.stations[i+1].Distance - c.stations[i].Distance
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

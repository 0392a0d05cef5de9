// Package dashboard renders the run's results as a single standalone
// HTML page of ECharts visualisations: the track map with brake points
// colored by zone, the per-driver dispersion ranking, and the lap-time
// versus dispersion scatter the whole analysis exists to produce.
package dashboard

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/edulizanay/14.toyota-hackathon/internal/brake"
	"github.com/edulizanay/14.toyota-hackathon/internal/consistency"
	"github.com/edulizanay/14.toyota-hackathon/internal/track"
	"github.com/edulizanay/14.toyota-hackathon/internal/units"
)

// Input bundles everything the page renders.
type Input struct {
	Centerline            *track.Centerline
	Zones                 *track.ZoneSet
	Events                []brake.Event // zoned, reduced events
	Records               []consistency.DispersionRecord
	Summaries             []consistency.DriverSummary
	LapTimeCorrelation    float64
	HasLapTimeCorrelation bool
}

// Render writes the full dashboard page as HTML.
func Render(w io.Writer, in Input) error {
	page := components.NewPage()
	page.PageTitle = "Brake Point Consistency"
	page.AddCharts(
		trackMapChart(in.Centerline, in.Zones, in.Events),
		dispersionBarChart(in.Summaries),
		zoneDispersionChart(in.Records),
		correlationChart(in.Summaries, in.LapTimeCorrelation, in.HasLapTimeCorrelation),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render dashboard page: %w", err)
	}
	return nil
}

// trackMapChart plots the centerline and overlays brake points grouped
// by zone, one series per zone so ECharts assigns distinct colors.
func trackMapChart(cl *track.Centerline, zones *track.ZoneSet, events []brake.Event) *charts.Scatter {
	maxAbs := 1.0
	line := make([]opts.ScatterData, 0, cl.Len())
	for _, s := range cl.Stations() {
		if abs(s.Pos.X) > maxAbs {
			maxAbs = abs(s.Pos.X)
		}
		if abs(s.Pos.Y) > maxAbs {
			maxAbs = abs(s.Pos.Y)
		}
		line = append(line, opts.ScatterData{Value: []interface{}{s.Pos.X, s.Pos.Y}})
	}

	byZone := make(map[int][]opts.ScatterData)
	for _, ev := range events {
		if ev.ZoneID == nil {
			continue
		}
		byZone[*ev.ZoneID] = append(byZone[*ev.ZoneID], opts.ScatterData{Value: []interface{}{ev.X, ev.Y}})
	}
	zoneIDs := make([]int, 0, len(byZone))
	for id := range byZone {
		zoneIDs = append(zoneIDs, id)
	}
	sort.Ints(zoneIDs)

	pad := maxAbs * 1.05

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Track Map", Subtitle: fmt.Sprintf("centerline %.0f m, %d braking zones, %d brake points", cl.TotalLength(), len(zones.Zones()), len(events))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	scatter.AddSeries("centerline", line, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))
	for _, id := range zoneIDs {
		scatter.AddSeries(fmt.Sprintf("zone %d", id), byZone[id],
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}
	return scatter
}

// dispersionBarChart shows average dispersion per driver in rank order,
// so the fastest driver is leftmost.
func dispersionBarChart(summaries []consistency.DriverSummary) *charts.Bar {
	x := make([]string, 0, len(summaries))
	y := make([]opts.BarData, 0, len(summaries))
	for _, s := range summaries {
		label := fmt.Sprintf("#%d", s.VehicleID)
		if s.HasLapTime {
			label += " " + units.FormatLapTime(s.AvgLapTime)
		}
		x = append(x, label)
		y = append(y, opts.BarData{Value: s.AvgDispersionM})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Average Brake Point Dispersion", Subtitle: "drivers in lap-time rank order"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "dispersion (m)"}),
	)
	bar.SetXAxis(x).AddSeries("dispersion", y,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar
}

// zoneDispersionChart breaks dispersion down by zone, one bar series per
// driver, so a driver's weak corners stand out.
func zoneDispersionChart(records []consistency.DispersionRecord) *charts.Bar {
	zoneSet := make(map[int]bool)
	byDriver := make(map[int]map[int]float64)
	for _, r := range records {
		zoneSet[r.ZoneID] = true
		if byDriver[r.VehicleID] == nil {
			byDriver[r.VehicleID] = make(map[int]float64)
		}
		byDriver[r.VehicleID][r.ZoneID] = r.DispersionM
	}
	zoneIDs := make([]int, 0, len(zoneSet))
	for id := range zoneSet {
		zoneIDs = append(zoneIDs, id)
	}
	sort.Ints(zoneIDs)
	drivers := make([]int, 0, len(byDriver))
	for v := range byDriver {
		drivers = append(drivers, v)
	}
	sort.Ints(drivers)

	x := make([]string, 0, len(zoneIDs))
	for _, id := range zoneIDs {
		x = append(x, fmt.Sprintf("zone %d", id))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Dispersion by Zone"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "dispersion (m)"}),
	)
	bar.SetXAxis(x)
	for _, v := range drivers {
		data := make([]opts.BarData, 0, len(zoneIDs))
		for _, id := range zoneIDs {
			if d, ok := byDriver[v][id]; ok {
				data = append(data, opts.BarData{Value: d})
			} else {
				// Missing pair: too few events in this zone.
				data = append(data, opts.BarData{Value: nil})
			}
		}
		bar.AddSeries(fmt.Sprintf("#%d", v), data)
	}
	return bar
}

// correlationChart scatters lap time against average dispersion for
// timed drivers.
func correlationChart(summaries []consistency.DriverSummary, r float64, ok bool) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(summaries))
	for _, s := range summaries {
		if !s.HasLapTime {
			continue
		}
		data = append(data, opts.ScatterData{
			Value: []interface{}{s.AvgLapTime, s.AvgDispersionM, s.VehicleID},
		})
	}

	subtitle := "fewer than two timed drivers"
	if ok {
		subtitle = fmt.Sprintf("Pearson r = %.3f over %d drivers", r, len(data))
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Lap Time vs Dispersion", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "best lap (s)", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "dispersion (m)", Scale: opts.Bool(true)}),
	)
	scatter.AddSeries("drivers", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	return scatter
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

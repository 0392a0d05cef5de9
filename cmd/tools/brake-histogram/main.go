// brake-histogram plots the distribution of positive brake pressure
// readings in a telemetry file, with the detection threshold overlaid.
// Useful for sanity-checking the threshold percentile against a new
// dataset before a full analysis run.
package main

import (
	"flag"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/edulizanay/14.toyota-hackathon/internal/brake"
	"github.com/edulizanay/14.toyota-hackathon/internal/telemetry"
)

var (
	telemetryPath = flag.String("telemetry", "", "Long-format telemetry CSV (required)")
	outPath       = flag.String("out", "brake_histogram.png", "Output PNG path")
	bins          = flag.Int("bins", 80, "Number of histogram bins")
	percentile    = flag.Float64("percentile", brake.DefaultThresholdPercentile, "Threshold percentile")
)

func main() {
	flag.Parse()
	if *telemetryPath == "" {
		log.Fatal("-telemetry is required")
	}

	samples, _, err := telemetry.LoadCSV(*telemetryPath, telemetry.DefaultChunkSize)
	if err != nil {
		log.Fatalf("load telemetry: %v", err)
	}

	threshold, err := brake.Threshold(samples, *percentile)
	if err != nil {
		log.Fatalf("compute threshold: %v", err)
	}

	var positive plotter.Values
	for _, s := range samples {
		if s.BrakeFront > 0 {
			positive = append(positive, s.BrakeFront)
		}
		if s.BrakeRear > 0 {
			positive = append(positive, s.BrakeRear)
		}
	}

	p := plot.New()
	p.Title.Text = "Positive Brake Pressure Distribution"
	p.X.Label.Text = "pressure"
	p.Y.Label.Text = "count"

	hist, err := plotter.NewHist(positive, *bins)
	if err != nil {
		log.Fatalf("build histogram: %v", err)
	}
	p.Add(hist)

	// Vertical threshold marker spanning the histogram's height.
	_, _, _, ymax := hist.DataRange()
	marker, err := plotter.NewLine(plotter.XYs{
		{X: threshold, Y: 0},
		{X: threshold, Y: ymax},
	})
	if err != nil {
		log.Fatalf("build threshold marker: %v", err)
	}
	marker.Width = vg.Points(2)
	p.Add(marker)
	p.Legend.Add("threshold", marker)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, *outPath); err != nil {
		log.Fatalf("save plot: %v", err)
	}
	log.Printf("wrote %s (threshold %.3f over %d positive readings)", *outPath, threshold, len(positive))
}

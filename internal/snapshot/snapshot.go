// Package snapshot exports the current charts as PNG images.
package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tinytelemetry/soclens/internal/model"
)

var (
	background = drawing.Color{R: 18, G: 18, B: 18, A: 255}
	gridColor  = drawing.Color{R: 51, G: 51, B: 51, A: 255}
	textColor  = drawing.Color{R: 220, G: 220, B: 220, A: 255}
	lineColor  = drawing.ColorFromHex("00FF9F")
)

// TrafficPNG renders the traffic window as a line chart.
func TrafficPNG(w io.Writer, samples []float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("snapshot: traffic: no samples")
	}

	xs := make([]float64, len(samples))
	maxY := 1.0
	for i, v := range samples {
		xs[i] = float64(i)
		if v > maxY {
			maxY = v
		}
	}

	graph := chart.Chart{
		Width:  800,
		Height: 300,
		Title:  "Requests/sec",
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: textColor,
		},
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
			FillColor: background,
		},
		Canvas: chart.Style{FillColor: background},
		XAxis: chart.XAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max(1, len(samples)-1))},
		},
		YAxis: chart.YAxis{
			Style:          chart.Style{FontColor: textColor, StrokeColor: gridColor},
			GridMajorStyle: chart.Style{StrokeColor: gridColor, StrokeWidth: 1},
			Range:          &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
			ValueFormatter: func(v interface{}) string {
				if vf, ok := v.(float64); ok {
					return strconv.FormatFloat(vf, 'f', 0, 64)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Traffic",
				XValues: xs,
				YValues: append([]float64(nil), samples...),
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 3,
					FillColor:   lineColor.WithAlpha(26),
				},
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("snapshot: traffic: %w", err)
	}
	return nil
}

// DistributionPNG renders the attack distribution as a bar chart in the
// fixed category order and colors.
func DistributionPNG(w io.Writer, dist model.Distribution) error {
	bars := make([]chart.Value, len(model.Categories))
	maxY := 1.0
	for i, info := range model.Categories {
		v := float64(dist[i])
		if v > maxY {
			maxY = v
		}
		c := drawing.ColorFromHex(info.Color[1:])
		bars[i] = chart.Value{
			Label: info.Label,
			Value: v,
			Style: chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1},
		}
	}

	graph := chart.BarChart{
		Width:  800,
		Height: 400,
		Title:  "Attack Distribution",
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: textColor,
		},
		Background: chart.Style{
			Padding:   chart.Box{Top: 60, Left: 40, Right: 20, Bottom: 40},
			FillColor: background,
		},
		Canvas:   chart.Style{FillColor: background},
		BarWidth: 60,
		XAxis:    chart.Style{FontSize: 10, FontColor: textColor},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: textColor},
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
			ValueFormatter: func(v interface{}) string {
				if vf, ok := v.(float64); ok {
					return strconv.FormatFloat(vf, 'f', 0, 64)
				}
				return ""
			},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("snapshot: distribution: %w", err)
	}
	return nil
}

// Export writes traffic-<stamp>.png and distribution-<stamp>.png into dir
// and returns their paths.
func Export(dir string, samples []float64, dist model.Distribution, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}
	stamp := now.Format("20060102-150405")

	jobs := []struct {
		name   string
		render func(io.Writer) error
	}{
		{"traffic", func(w io.Writer) error { return TrafficPNG(w, samples) }},
		{"distribution", func(w io.Writer) error { return DistributionPNG(w, dist) }},
	}

	paths := make([]string, 0, len(jobs))
	for _, job := range jobs {
		path := filepath.Join(dir, job.name+"-"+stamp+".png")
		if err := writeFile(path, job.render); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("snapshot: close %s: %w", path, err)
	}
	return nil
}

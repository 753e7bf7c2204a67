// Package chart draws PNG charts of a recorded episode with gonum/plot.
package chart

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/swingup/internal/storage"
)

const (
	DefaultWidth  = 8.0
	DefaultHeight = 6.0
	DefaultDPI    = 100
)

var ErrEmptyTrace = errors.New("chart: empty trace")

type series struct {
	file   string
	title  string
	ylabel string
	column string
}

var traceSeries = []series{
	{"cart_position.png", "Cart Position x(t)", "x (m)", "x"},
	{"pole_angle.png", "Pole Angle theta(t) (0 = upright)", "theta (rad)", "theta"},
	{"action.png", "Action a(t)", "a", "action"},
	{"reward.png", "Reward r(t)", "r", "reward"},
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)

	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)

	p.X.Tick.Marker = limitedTicker(8, "%.1f")
	p.Y.Tick.Marker = limitedTicker(8, "%.2f")
	p.Add(plotter.NewGrid())
}

// LinePlot builds a single-series line chart.
func LinePlot(title, xlabel, ylabel string, xs, ys []float64) (*plot.Plot, error) {
	if len(xs) != len(ys) || len(xs) == 0 {
		return nil, fmt.Errorf("plot data invalid: %d x values, %d y values", len(xs), len(ys))
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	return p, nil
}

// PhasePlot scatters theta against theta_dot.
func PhasePlot(trace storage.Trace) (*plot.Plot, error) {
	if len(trace) == 0 {
		return nil, ErrEmptyTrace
	}
	p := plot.New()
	p.Title.Text = "Pole Phase Portrait"
	p.X.Label.Text = "theta (rad)"
	p.Y.Label.Text = "theta_dot (rad/s)"
	stylePlot(p)

	pts := make(plotter.XYs, len(trace))
	for i, r := range trace {
		pts[i].X = r.Theta
		pts[i].Y = r.ThetaDot
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Radius = vg.Points(1.2)
	p.Add(sc)
	return p, nil
}

// SavePNG renders p at the given size in inches.
func SavePNG(p *plot.Plot, widthIn, heightIn float64, dpi int, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	w := vg.Length(widthIn) * vg.Inch
	h := vg.Length(heightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SaveTrace writes the standard episode charts into dir and returns the
// paths written.
func SaveTrace(dir string, trace storage.Trace) ([]string, error) {
	if len(trace) == 0 {
		return nil, ErrEmptyTrace
	}
	times, err := trace.Column("time")
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(traceSeries)+1)
	for _, s := range traceSeries {
		ys, err := trace.Column(s.column)
		if err != nil {
			return nil, err
		}
		p, err := LinePlot(s.title, "time (s)", s.ylabel, times, ys)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, s.file)
		if err := SavePNG(p, DefaultWidth, DefaultHeight, DefaultDPI, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	p, err := PhasePlot(trace)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "phase.png")
	if err := SavePNG(p, DefaultHeight, DefaultHeight, DefaultDPI, path); err != nil {
		return nil, err
	}
	return append(paths, path), nil
}

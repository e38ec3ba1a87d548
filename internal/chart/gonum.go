package chart

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"altiprofile/internal/profile"
)

// GonumRenderer draws profiles with gonum/plot.
type GonumRenderer struct {
	opts Options
}

func (r *GonumRenderer) Render(rows []profile.AggregatedRow, w io.Writer) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	pts := make(plotter.XYs, len(rows))
	for i, row := range rows {
		pts[i].X = row.DistanceKm
		pts[i].Y = row.AltitudeM
	}

	p := plot.New()
	p.Title.Text = r.opts.Title
	p.X.Label.Text = r.opts.XLabel
	p.Y.Label.Text = r.opts.YLabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to create profile line: %w", err)
	}
	line.FillColor = fillColor
	line.LineStyle.Color = lineColor
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(r.opts.Legend, line)
	p.Legend.Top = true

	_, _, minY, maxY := bounds(rows)
	p.Y.Min = minY
	if maxY > p.Y.Max {
		p.Y.Max = maxY
	}

	var ticks []plot.Tick
	for _, v := range AltitudeTicks(maxY, r.opts.TickStep) {
		ticks = append(ticks, plot.Tick{Value: v, Label: tickLabel(v)})
	}
	if len(ticks) > 0 {
		p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	}

	wt, err := p.WriterTo(vg.Points(float64(r.opts.Width)), vg.Points(float64(r.opts.Height)), "png")
	if err != nil {
		return fmt.Errorf("failed to create png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}

	return nil
}

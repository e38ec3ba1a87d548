package chart

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"altiprofile/internal/profile"
)

// GoChartRenderer draws profiles with go-chart.
type GoChartRenderer struct {
	opts Options
}

func (r *GoChartRenderer) Render(rows []profile.AggregatedRow, w io.Writer) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, row := range rows {
		xs[i] = row.DistanceKm
		ys[i] = row.AltitudeM
	}

	minX, maxX, minY, maxY := bounds(rows)
	// a single row gives an empty range that go-chart refuses
	if maxX <= minX {
		maxX = minX + 1
	}
	if maxY <= minY {
		maxY = minY + float64(r.opts.TickStep)
	}

	var yTicks []gochart.Tick
	for _, v := range AltitudeTicks(maxY, r.opts.TickStep) {
		yTicks = append(yTicks, gochart.Tick{Value: v, Label: tickLabel(v)})
	}

	grid := gochart.Style{
		StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
		StrokeWidth: 1,
	}

	ch := gochart.Chart{
		Title:  r.opts.Title,
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           r.opts.XLabel,
			Range:          &gochart.ContinuousRange{Min: minX, Max: maxX},
			GridMajorStyle: grid,
		},
		YAxis: gochart.YAxis{
			Name:           r.opts.YLabel,
			Range:          &gochart.ContinuousRange{Min: minY, Max: maxY},
			Ticks:          yTicks,
			GridMajorStyle: grid,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    r.opts.Legend,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: drawing.Color{R: lineColor.R, G: lineColor.G, B: lineColor.B, A: lineColor.A},
					StrokeWidth: 1.5,
					FillColor:   drawing.Color{R: fillColor.R, G: fillColor.G, B: fillColor.B, A: fillColor.A},
				},
			},
		},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// Package chart draws altimetry profiles as PNG images.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"

	"altiprofile/internal/profile"
)

// Renderer kinds.
const (
	KindGonum   = "gonum"
	KindGoChart = "gochart"
)

// ErrNoData is returned when there is no row to draw.
var ErrNoData = errors.New("no profile rows to render")

var (
	fillColor = color.NRGBA{R: 255, A: 128}
	lineColor = color.NRGBA{A: 255}
)

// Renderer draws the profile of rows as a PNG image into w.
type Renderer interface {
	Render(rows []profile.AggregatedRow, w io.Writer) error
}

// Options holds the drawing settings shared by every renderer.
type Options struct {
	Title    string
	XLabel   string
	YLabel   string
	Legend   string
	Width    int // pixels
	Height   int // pixels
	TickStep int // metres between altitude ticks
}

// DefaultOptions returns the settings of the reference profile figure.
func DefaultOptions() Options {
	return Options{
		Title:    "Altimetry profile",
		XLabel:   "Distance (km)",
		YLabel:   "Altitude (m)",
		Legend:   "Topography",
		Width:    1000,
		Height:   600,
		TickStep: 100,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.TickStep <= 0 {
		o.TickStep = def.TickStep
	}
	if o.Legend == "" {
		o.Legend = def.Legend
	}
	return o
}

// New returns the renderer registered under kind. An empty kind selects gonum.
func New(kind string, opts Options) (Renderer, error) {
	opts = opts.withDefaults()

	switch kind {
	case KindGonum, "":
		return &GonumRenderer{opts: opts}, nil
	case KindGoChart:
		return &GoChartRenderer{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported renderer: %s", kind)
	}
}

// AltitudeTicks returns tick values every step metres from 0 up to the
// integer part of max, inclusive.
func AltitudeTicks(max float64, step int) []float64 {
	if step <= 0 {
		return nil
	}

	var ticks []float64
	for v := 0; v <= int(max); v += step {
		ticks = append(ticks, float64(v))
	}
	return ticks
}

// bounds gives the axis ranges of rows. The altitude axis starts at 0 unless
// the profile goes below sea level.
func bounds(rows []profile.AggregatedRow) (minX, maxX, minY, maxY float64) {
	minX, maxX = rows[0].DistanceKm, rows[0].DistanceKm
	maxY = rows[0].AltitudeM
	for _, row := range rows {
		if row.DistanceKm < minX {
			minX = row.DistanceKm
		}
		if row.DistanceKm > maxX {
			maxX = row.DistanceKm
		}
		if row.AltitudeM > maxY {
			maxY = row.AltitudeM
		}
		if row.AltitudeM < minY {
			minY = row.AltitudeM
		}
	}
	return minX, maxX, minY, maxY
}

func tickLabel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

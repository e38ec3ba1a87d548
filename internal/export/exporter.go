// Package export writes aggregated profiles into xlsx workbooks.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"altiprofile/internal/chart"
	"altiprofile/internal/profile"
	"altiprofile/pkg/logger"
)

// Exporter kinds.
const (
	KindTable = "table"
	KindChart = "chart"
	KindImage = "image"
)

// Column headers of the data sheet.
const (
	DistanceHeader = "Distance_km"
	AltitudeHeader = "Altitude_m"
)

// Exporter serializes aggregated rows into xlsx bytes.
type Exporter interface {
	Export(ctx context.Context, rows []profile.AggregatedRow) ([]byte, error)
}

// Options controls the workbook layout.
type Options struct {
	DataSheet   string
	ChartSheet  string
	ChartTitle  string
	ChartWidth  uint
	ChartHeight uint
	TickStep    int
}

// DefaultOptions returns the reference workbook layout.
func DefaultOptions() Options {
	return Options{
		DataSheet:   "Data",
		ChartSheet:  "Chart",
		ChartTitle:  "Altimetry profile",
		ChartWidth:  960,
		ChartHeight: 480,
		TickStep:    100,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DataSheet == "" {
		o.DataSheet = def.DataSheet
	}
	if o.ChartSheet == "" {
		o.ChartSheet = def.ChartSheet
	}
	if o.ChartTitle == "" {
		o.ChartTitle = def.ChartTitle
	}
	if o.ChartWidth == 0 {
		o.ChartWidth = def.ChartWidth
	}
	if o.ChartHeight == 0 {
		o.ChartHeight = def.ChartHeight
	}
	if o.TickStep <= 0 {
		o.TickStep = def.TickStep
	}
	return o
}

// New returns the exporter registered under kind. An empty kind selects the
// native chart exporter. The image exporter needs a renderer.
func New(kind string, opts Options, renderer chart.Renderer) (Exporter, error) {
	opts = opts.withDefaults()

	switch kind {
	case KindTable:
		return &TableExporter{opts: opts}, nil
	case KindChart, "":
		return &ChartExporter{opts: opts}, nil
	case KindImage:
		if renderer == nil {
			return nil, fmt.Errorf("image exporter requires a chart renderer")
		}
		return &ImageExporter{opts: opts, renderer: renderer}, nil
	default:
		return nil, fmt.Errorf("unsupported exporter: %s", kind)
	}
}

// newWorkbook creates a workbook holding the data sheet.
func newWorkbook(opts Options, rows []profile.AggregatedRow) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", opts.DataSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name data sheet: %w", err)
	}

	if err := f.SetSheetRow(opts.DataSheet, "A1", &[]interface{}{DistanceHeader, AltitudeHeader}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(opts.DataSheet, cell, &[]interface{}{row.DistanceKm, row.AltitudeM}); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(opts.DataSheet, "A", "B", 14); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	return f, nil
}

// finish serializes and closes the workbook.
func finish(f *excelize.File) ([]byte, error) {
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func logExport(kind string, rows []profile.AggregatedRow, size int) {
	logger.Logger.WithFields(map[string]interface{}{
		"exporter": kind,
		"rows":     len(rows),
		"bytes":    size,
	}).Debug("Exported workbook")
}

package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"altiprofile/internal/chart"
	"altiprofile/internal/profile"
)

// TableExporter writes the data sheet only.
type TableExporter struct {
	opts Options
}

func (e *TableExporter) Export(ctx context.Context, rows []profile.AggregatedRow) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := newWorkbook(e.opts, rows)
	if err != nil {
		return nil, err
	}

	content, err := finish(f)
	if err != nil {
		return nil, err
	}
	logExport(KindTable, rows, len(content))
	return content, nil
}

// ChartExporter adds a sheet with a native area chart of the data sheet.
type ChartExporter struct {
	opts Options
}

func (e *ChartExporter) Export(ctx context.Context, rows []profile.AggregatedRow) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := newWorkbook(e.opts, rows)
	if err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(e.opts.ChartSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create chart sheet: %w", err)
	}

	if len(rows) > 0 {
		if err := f.AddChart(e.opts.ChartSheet, "A1", e.areaChart(len(rows))); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add chart: %w", err)
		}
	}

	content, err := finish(f)
	if err != nil {
		return nil, err
	}
	logExport(KindChart, rows, len(content))
	return content, nil
}

func (e *ChartExporter) areaChart(n int) *excelize.Chart {
	last := n + 1
	sheet := quoteSheet(e.opts.DataSheet)

	return &excelize.Chart{
		Type: excelize.Area,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$B$1", sheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, last),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheet, last),
				Fill:       excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FF8080"}},
				Line:       excelize.ChartLine{Width: 1},
			},
		},
		Dimension: excelize.ChartDimension{
			Width:  e.opts.ChartWidth,
			Height: e.opts.ChartHeight,
		},
		Title: []excelize.RichTextRun{{Text: e.opts.ChartTitle}},
		XAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: DistanceHeader}},
		},
		YAxis: excelize.ChartAxis{
			MajorGridLines: true,
			MajorUnit:      float64(e.opts.TickStep),
			Title:          []excelize.RichTextRun{{Text: AltitudeHeader}},
		},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}
}

// ImageExporter adds a sheet with the rendered profile embedded as a picture.
type ImageExporter struct {
	opts     Options
	renderer chart.Renderer
}

func (e *ImageExporter) Export(ctx context.Context, rows []profile.AggregatedRow) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := newWorkbook(e.opts, rows)
	if err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(e.opts.ChartSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create chart sheet: %w", err)
	}

	var img bytes.Buffer
	err = e.renderer.Render(rows, &img)
	switch {
	case errors.Is(err, chart.ErrNoData):
	case err != nil:
		f.Close()
		return nil, fmt.Errorf("failed to render chart: %w", err)
	default:
		pic := &excelize.Picture{
			Extension: ".png",
			File:      img.Bytes(),
			Format:    &excelize.GraphicOptions{AltText: e.opts.ChartTitle},
		}
		if err := f.AddPictureFromBytes(e.opts.ChartSheet, "A1", pic); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to embed chart: %w", err)
		}
	}

	content, err := finish(f)
	if err != nil {
		return nil, err
	}
	logExport(KindImage, rows, len(content))
	return content, nil
}

func quoteSheet(name string) string {
	return "'" + name + "'"
}

// Package pipeline runs one track log through parsing, aggregation, chart
// rendering, export and storage.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"altiprofile/internal/chart"
	"altiprofile/internal/export"
	"altiprofile/internal/profile"
	"altiprofile/internal/sink"
	"altiprofile/internal/trackcsv"
	"altiprofile/pkg/logger"
	"altiprofile/pkg/models"
)

const (
	DefaultFilename = "profil_altimetry"
	DefaultLinkText = "Download the Excel file"
)

// Options controls naming of the generated artifacts
type Options struct {
	Filename string // without extension
	Unique   bool   // append a random suffix to every file name
	ChartPNG bool   // also store the rendered chart next to the workbook
	LinkText string
}

// Result holds everything one run produced
type Result struct {
	Name          string
	Track         *trackcsv.Track
	Rows          []profile.AggregatedRow
	Summary       profile.Summary
	Chart         []byte // PNG, nil for an empty profile
	Artifact      []byte // xlsx
	FileName      string
	Location      string
	ChartLocation string
	DownloadLink  string
	Duration      time.Duration
}

// Processor turns CSV track logs into xlsx profiles
type Processor struct {
	renderer chart.Renderer
	exporter export.Exporter
	sink     sink.Sink
	opts     Options
}

// NewProcessor creates a processor. A nil sink discards artifacts.
func NewProcessor(renderer chart.Renderer, exporter export.Exporter, out sink.Sink, opts Options) *Processor {
	if out == nil {
		out = sink.NoneSink{}
	}
	if opts.Filename == "" {
		opts.Filename = DefaultFilename
	}
	if opts.LinkText == "" {
		opts.LinkText = DefaultLinkText
	}
	return &Processor{
		renderer: renderer,
		exporter: exporter,
		sink:     out,
		opts:     opts,
	}
}

// NewFromConfig builds the renderer, exporter and sink selected by config
func NewFromConfig(config *models.Config) (*Processor, error) {
	renderer, err := chart.New(config.Chart.Renderer, ChartOptions(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create chart renderer: %w", err)
	}

	exporter, err := export.New(config.Output.Exporter, ExportOptions(config), renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	out, err := sink.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sink: %w", err)
	}

	return NewProcessor(renderer, exporter, out, Options{
		Filename: config.Output.Filename,
		Unique:   config.Output.UniqueNames,
		ChartPNG: config.Output.ChartPNG,
		LinkText: config.Spreadsheet.LinkText,
	}), nil
}

// ChartOptions maps the chart configuration to renderer options
func ChartOptions(config *models.Config) chart.Options {
	return chart.Options{
		Title:    config.Chart.Title,
		XLabel:   config.Chart.XLabel,
		YLabel:   config.Chart.YLabel,
		Legend:   config.Chart.Legend,
		Width:    config.Chart.Width,
		Height:   config.Chart.Height,
		TickStep: config.Chart.TickStep,
	}
}

// ExportOptions maps the spreadsheet configuration to exporter options
func ExportOptions(config *models.Config) export.Options {
	return export.Options{
		DataSheet:   config.Spreadsheet.DataSheet,
		ChartSheet:  config.Spreadsheet.ChartSheet,
		ChartTitle:  config.Spreadsheet.ChartTitle,
		ChartWidth:  config.Spreadsheet.ChartWidth,
		ChartHeight: config.Spreadsheet.ChartHeight,
		TickStep:    config.Chart.TickStep,
	}
}

// WithFilename returns a copy of the processor writing under another base name
func (p *Processor) WithFilename(filename string) *Processor {
	clone := *p
	if filename != "" {
		clone.opts.Filename = filename
	}
	return &clone
}

// Options returns the naming options in use
func (p *Processor) Options() Options {
	return p.opts
}

// Run processes the track log read from r. Errors from the parser, the
// aggregator and the sink are returned unchanged.
func (p *Processor) Run(ctx context.Context, name string, r io.Reader) (*Result, error) {
	start := time.Now()
	log := logger.Component("pipeline").WithField("input", name)
	log.Debug("Starting profile run")

	result := &Result{Name: name}

	track, err := trackcsv.Parse(r)
	if err != nil {
		log.WithError(err).Error("Failed to parse track log")
		return nil, err
	}
	result.Track = track

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := profile.Aggregate(track.Samples)
	if err != nil {
		log.WithError(err).Error("Failed to aggregate samples")
		return nil, err
	}
	result.Rows = rows
	result.Summary = profile.Summarize(track.Samples, rows)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.renderer != nil {
		var buf bytes.Buffer
		err := p.renderer.Render(rows, &buf)
		switch {
		case errors.Is(err, chart.ErrNoData):
			log.Debug("Empty profile, skipping chart")
		case err != nil:
			log.WithError(err).Error("Failed to render chart")
			return nil, fmt.Errorf("failed to render chart: %w", err)
		default:
			result.Chart = buf.Bytes()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifact, err := p.exporter.Export(ctx, rows)
	if err != nil {
		log.WithError(err).Error("Failed to export workbook")
		return nil, err
	}
	result.Artifact = artifact

	base := p.baseName()
	result.FileName = base + ".xlsx"

	location, err := p.sink.Write(ctx, result.FileName, artifact)
	if err != nil {
		log.WithError(err).WithField("file", result.FileName).Error("Failed to store workbook")
		return nil, err
	}
	result.Location = location

	if p.opts.ChartPNG && result.Chart != nil {
		chartLocation, err := p.sink.Write(ctx, base+".png", result.Chart)
		if err != nil {
			log.WithError(err).WithField("file", base+".png").Error("Failed to store chart")
			return nil, err
		}
		result.ChartLocation = chartLocation
	}

	result.DownloadLink = export.DownloadLink(artifact, result.FileName, p.opts.LinkText)
	result.Duration = time.Since(start)

	log.WithFields(map[string]interface{}{
		"rows":     len(rows),
		"file":     result.FileName,
		"location": location,
		"duration": result.Duration.Round(time.Millisecond),
	}).Info("Profile generated")

	return result, nil
}

func (p *Processor) baseName() string {
	if p.opts.Unique {
		return p.opts.Filename + "-" + uuid.NewString()
	}
	return p.opts.Filename
}

package orchestration

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"altiprofile/internal/pipeline"
	"altiprofile/internal/preview"
	"altiprofile/internal/sink"
	"altiprofile/pkg/logger"
)

// Inspect fetches a single track log and prints its loaded data, converted
// data and summary. Nothing is written.
func (o *Orchestrator) Inspect(ctx context.Context, ref string) error {
	infos, err := o.resolve(ctx, []string{ref})
	if err != nil {
		return err
	}
	if len(infos) != 1 {
		return fmt.Errorf("inspect expects a single track log, %s resolves to %d", ref, len(infos))
	}
	info := infos[0]

	source, err := o.createSource(info)
	if err != nil {
		return fmt.Errorf("failed to create %s source: %w", info.Platform, err)
	}

	file, err := source.Fetch(ctx, info)
	if err != nil {
		logger.Logger.WithError(err).WithField("source", ref).Error("Failed to fetch track log")
		return fmt.Errorf("failed to fetch track log: %w", err)
	}

	config := *o.config
	config.Output.Sink = sink.KindNone
	config.Output.ChartPNG = false

	processor, err := pipeline.NewFromConfig(&config)
	if err != nil {
		return err
	}

	result, err := processor.Run(ctx, file.Name, bytes.NewReader(file.Content))
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Loaded data (%s):\n%s\n\n", info.Ref, preview.RawTable(result.Track, o.config.Server.PreviewRows))
	fmt.Fprintf(&b, "Converted data:\n%s\n\n", preview.ProfileTable(result.Rows))
	b.WriteString("Summary:\n")
	for _, line := range preview.SummaryLines(result.Summary) {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprint(o.out, b.String())
	return nil
}

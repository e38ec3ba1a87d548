package orchestration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"altiprofile/internal/adapters"
	"altiprofile/internal/pipeline"
	"altiprofile/internal/preview"
	"altiprofile/internal/sink"
	"altiprofile/pkg/logger"
	"altiprofile/pkg/models"
	"altiprofile/pkg/tree"
	"altiprofile/pkg/utils"
)

const defaultConcurrency = 5

// Orchestrator handles the coordination of track log processing across sources
type Orchestrator struct {
	config     *models.Config
	cliOptions *models.CLIOptions
	stdin      io.Reader
	out        io.Writer
	mu         sync.Mutex // serializes report writes
}

// NewOrchestrator creates a new orchestrator instance reading standard input
// and reporting to standard output
func NewOrchestrator(config *models.Config, cliOptions *models.CLIOptions) *Orchestrator {
	return &Orchestrator{
		config:     config,
		cliOptions: cliOptions,
		stdin:      os.Stdin,
		out:        os.Stdout,
	}
}

// WithIO replaces standard input and output
func (o *Orchestrator) WithIO(stdin io.Reader, out io.Writer) *Orchestrator {
	o.stdin = stdin
	o.out = out
	return o
}

// job is one track log to process
type job struct {
	info   *models.SourceInfo
	source adapters.Source
	output string // base name of the artifact
}

// ProcessSources parses every reference, expands directories and runs the
// pipeline once per track log. The errors of failed track logs are joined.
func (o *Orchestrator) ProcessSources(ctx context.Context, refs []string) error {
	infos, err := o.resolve(ctx, refs)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no track logs found")
	}

	logger.Logger.WithField("total_tracks", len(infos)).Info("Starting track log processing")

	if o.cliOptions.DryRun && !o.cliOptions.Quiet {
		o.printTree(infos)
	}

	sources, err := o.createSources(ctx, infos)
	if err != nil {
		return err
	}

	processor, err := pipeline.NewFromConfig(o.config)
	if err != nil {
		return err
	}

	outputs := outputNames(infos, processor.Options().Filename)
	jobs := make([]job, 0, len(infos))
	for i, info := range infos {
		jobs = append(jobs, job{info: info, source: sources[sourceKey(info)], output: outputs[i]})
	}

	var (
		errsMu sync.Mutex
		errs   []error
	)
	stats := pipeline.NewStats()
	o.runConcurrently(ctx, jobs, func(j job) {
		if err := o.processTrack(ctx, j, processor, stats); err != nil {
			stats.RecordFailure()
			errsMu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", j.info.Ref, err))
			errsMu.Unlock()
		}
	})

	if !o.cliOptions.DryRun {
		logger.Logger.WithFields(stats.Fields()).Info("Processing statistics")
	}

	if len(errs) > 0 {
		logger.Logger.WithField("failed", len(errs)).Warn("Some track logs could not be processed")
		return errors.Join(errs...)
	}

	logger.Logger.Info("Altiprofile convert operation completed successfully")
	return nil
}

// resolve parses references and expands local directories
func (o *Orchestrator) resolve(ctx context.Context, refs []string) ([]*models.SourceInfo, error) {
	defaultPlatform := models.Platform(o.cliOptions.DefaultPlatform)

	var infos []*models.SourceInfo
	stdinSeen := false
	for _, ref := range refs {
		info, err := adapters.ParseSourceRef(ref, defaultPlatform)
		if err != nil {
			logger.Logger.WithError(err).WithField("input", ref).Error("Failed to parse track source")
			return nil, fmt.Errorf("failed to parse track source %s: %w", ref, err)
		}

		if info.Platform == models.PlatformStdin {
			if stdinSeen {
				return nil, fmt.Errorf("standard input can only be read once")
			}
			stdinSeen = true
		}

		expanded, err := adapters.ExpandSources(ctx, info, o.config)
		if err != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", ref, err)
		}
		if info.IsDir && len(expanded) == 0 {
			logger.Logger.WithField("directory", info.Repository).Warn("No track logs found in directory")
		}
		infos = append(infos, expanded...)
	}
	return infos, nil
}

// sourceKey groups track logs that share a source
func sourceKey(info *models.SourceInfo) string {
	if info.Platform == models.PlatformLocal {
		return string(info.Platform) + ":" + info.Repository
	}
	return string(info.Platform)
}

// createSources creates one source per platform, and one per directory for
// local files, and tests remote connections
func (o *Orchestrator) createSources(ctx context.Context, infos []*models.SourceInfo) (map[string]adapters.Source, error) {
	sources := make(map[string]adapters.Source)

	for _, info := range infos {
		key := sourceKey(info)
		if _, ok := sources[key]; ok {
			continue
		}

		source, err := o.createSource(info)
		if err != nil {
			logger.Logger.WithError(err).WithField("platform", info.Platform).Error("Failed to create source")
			return nil, fmt.Errorf("failed to create %s source: %w", info.Platform, err)
		}

		if info.Platform == models.PlatformGitHub || info.Platform == models.PlatformGitLab {
			if o.cliOptions.DryRun {
				logger.Logger.WithField("platform", info.Platform).Info("[DRY RUN] Skipping connection test")
			} else {
				logger.Logger.WithField("platform", info.Platform).Info("Testing connection...")
				if err := source.TestConnection(ctx); err != nil {
					logger.Logger.WithError(err).WithField("platform", info.Platform).Error("Connection test failed")
					return nil, fmt.Errorf("connection test failed for platform %s: %w", info.Platform, err)
				}
				logger.Logger.WithField("platform", info.Platform).Info("Connection successful")
			}
		}

		sources[key] = source
	}

	return sources, nil
}

func (o *Orchestrator) createSource(info *models.SourceInfo) (adapters.Source, error) {
	switch info.Platform {
	case models.PlatformLocal:
		return adapters.CreateLocalSource(info.Repository, o.config)
	case models.PlatformStdin:
		maxSize, err := adapters.MaxFileSize(o.config)
		if err != nil {
			return nil, err
		}
		return adapters.NewStdinSource(o.stdin, maxSize), nil
	default:
		token, err := GetTokenForPlatform(info.Platform, o.config, o.cliOptions.Token)
		if err != nil {
			return nil, err
		}
		return adapters.CreateSource(info.Platform, o.config, token)
	}
}

// runConcurrently runs fn for every job with at most max_concurrency in flight
func (o *Orchestrator) runConcurrently(ctx context.Context, jobs []job, fn func(job)) {
	maxConcurrency := o.config.Processing.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultConcurrency
	}

	logger.Logger.WithFields(map[string]interface{}{
		"track_count":     len(jobs),
		"max_concurrency": maxConcurrency,
	}).Debug("Starting concurrent track log processing")

	semaphore := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for _, j := range jobs {
		wg.Add(1)

		go func(j job) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			fn(j)
		}(j)
	}

	wg.Wait()
}

// processTrack fetches one track log and runs the pipeline on it
func (o *Orchestrator) processTrack(ctx context.Context, j job, processor *pipeline.Processor, stats *pipeline.Stats) error {
	log := logger.Logger.WithFields(map[string]interface{}{
		"source":   j.info.Ref,
		"platform": j.info.Platform,
		"branch":   j.info.Branch,
		"dry_run":  o.cliOptions.DryRun,
	})
	log.Info("Processing track log")

	if o.cliOptions.DryRun {
		o.reportDryRun(j, processor)
		return nil
	}

	if timeout := o.config.Processing.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	file, err := j.source.Fetch(ctx, j.info)
	if err != nil {
		log.WithError(err).Error("Failed to fetch track log")
		o.printErr("Failed to fetch %s: %v\n", j.info.Ref, err)
		return fmt.Errorf("failed to fetch track log: %w", err)
	}

	result, err := processor.WithFilename(j.output).Run(ctx, file.Name, bytes.NewReader(file.Content))
	if err != nil {
		o.printErr("Failed to process %s: %v\n", j.info.Ref, err)
		return err
	}

	stats.Record(result, file.Size)
	o.report(j, file, result)
	return nil
}

func (o *Orchestrator) report(j job, file *models.TrackFile, result *pipeline.Result) {
	if o.cliOptions.Quiet {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✓ Generated profile for %s (%s)\n", j.info.Ref, j.info.Platform)
	fmt.Fprintf(&b, "  Input size: %s\n", utils.FormatBytes(file.Size))
	for _, line := range preview.SummaryLines(result.Summary) {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	fmt.Fprintf(&b, "  Duration: %s\n", result.Duration.Round(time.Millisecond))
	if result.Location != "" {
		fmt.Fprintf(&b, "  Output: %s\n", result.Location)
	} else {
		fmt.Fprintf(&b, "  Output: %s (not stored)\n", result.FileName)
	}
	if result.ChartLocation != "" {
		fmt.Fprintf(&b, "  Chart: %s\n", result.ChartLocation)
	}

	if o.cliOptions.Preview {
		fmt.Fprintf(&b, "\nLoaded data:\n%s\n", preview.RawTable(result.Track, o.config.Server.PreviewRows))
		fmt.Fprintf(&b, "\nConverted data:\n%s\n", preview.ProfileTable(result.Rows))
	}
	if o.cliOptions.Link {
		fmt.Fprintf(&b, "\n%s\n", result.DownloadLink)
	}
	b.WriteString("\n")

	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprint(o.out, b.String())
}

func (o *Orchestrator) reportDryRun(j job, processor *pipeline.Processor) {
	name := j.output
	if processor.Options().Unique {
		name += "-<uuid>"
	}

	target := o.describeTarget(name + ".xlsx")

	logger.Logger.WithFields(map[string]interface{}{
		"source": j.info.Ref,
		"target": target,
	}).Info("[DRY RUN] Track log processing simulation completed")

	if o.cliOptions.Quiet {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[DRY RUN] Would process %s (%s)\n", j.info.Ref, j.info.Platform)
	if j.info.Branch != "" {
		fmt.Fprintf(&b, "  Branch: %s\n", j.info.Branch)
	}
	fmt.Fprintf(&b, "  Would create output: %s\n", target)
	if processor.Options().ChartPNG {
		fmt.Fprintf(&b, "  Would create chart: %s\n", o.describeTarget(name+".png"))
	}
	b.WriteString("\n")

	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprint(o.out, b.String())
}

// printTree lists the resolved track logs grouped by origin
func (o *Orchestrator) printTree(infos []*models.SourceInfo) {
	paths := make([]string, 0, len(infos))
	for _, info := range infos {
		paths = append(paths, treePath(info))
	}

	builder := tree.NewBuilder()
	fmt.Fprintf(o.out, "Track logs:\n%s\n", builder.Render(builder.Build(paths)))
}

func treePath(info *models.SourceInfo) string {
	switch info.Platform {
	case models.PlatformStdin:
		return "stdin"
	case models.PlatformLocal:
		return filepath.Base(info.Repository) + "/" + filepath.ToSlash(info.Path)
	default:
		return string(info.Platform) + ":" + info.Repository + "/" + info.Path
	}
}

// describeTarget tells where the configured sink would store name
func (o *Orchestrator) describeTarget(name string) string {
	switch o.config.Output.Sink {
	case sink.KindS3:
		key := strings.Trim(o.config.S3.Prefix, "/")
		if key != "" {
			key += "/"
		}
		return fmt.Sprintf("s3://%s/%s%s", o.config.S3.Bucket, key, name)
	case sink.KindNone:
		return name + " (not stored)"
	default:
		return filepath.Join(o.config.Output.Directory, name)
	}
}

func (o *Orchestrator) printErr(format string, args ...interface{}) {
	if o.cliOptions.Quiet {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(os.Stderr, format, args...)
}

// outputNames returns one artifact base name per track log. A single track
// log gets filename as is; several get a prefix derived from their path, and
// the origin is added to prefixes shared by more than one track log. Names
// that still collide get a numeric suffix.
func outputNames(infos []*models.SourceInfo, filename string) []string {
	if len(infos) == 1 {
		return []string{filename}
	}

	prefixes := make([]string, len(infos))
	counts := make(map[string]int)
	for i, info := range infos {
		prefixes[i] = outputName(info)
		counts[prefixes[i]]++
	}

	names := make([]string, len(infos))
	used := make(map[string]bool)
	for i, info := range infos {
		prefix := prefixes[i]
		if counts[prefix] > 1 {
			prefix = qualifiedOutputName(info)
		}

		name := prefix + "_" + filename
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d_%s", prefix, n, filename)
		}
		used[name] = true
		names[i] = name
	}

	return names
}

// outputName derives an artifact prefix from the track log path
func outputName(info *models.SourceInfo) string {
	if info.Platform == models.PlatformStdin {
		return "stdin"
	}
	stem := filepath.Join(filepath.Dir(info.Path), utils.StemName(info.Path))
	return utils.SanitizeFileName(filepath.ToSlash(stem))
}

// qualifiedOutputName prefixes outputName with the directory or repository
// the track log comes from
func qualifiedOutputName(info *models.SourceInfo) string {
	switch info.Platform {
	case models.PlatformStdin:
		return outputName(info)
	case models.PlatformLocal:
		return utils.SanitizeFileName(filepath.Base(info.Repository)) + "_" + outputName(info)
	default:
		return utils.SanitizeFileName(string(info.Platform)+"_"+info.Repository) + "_" + outputName(info)
	}
}

// GetTokenForPlatform gets the appropriate token for a platform. A missing
// token is not an error: public repositories are read anonymously.
func GetTokenForPlatform(platform models.Platform, config *models.Config, cliToken string) (string, error) {
	if cliToken != "" {
		return cliToken, nil
	}

	var envName string
	switch platform {
	case models.PlatformGitLab:
		envName = config.GitLab.TokenEnv
	case models.PlatformGitHub:
		envName = config.GitHub.TokenEnv
	default:
		return "", fmt.Errorf("unsupported platform: %s", platform)
	}

	if envName != "" {
		if envToken := os.Getenv(envName); envToken != "" {
			return envToken, nil
		}
	}

	logger.Logger.WithFields(map[string]interface{}{
		"platform":  platform,
		"token_env": envName,
	}).Debug("No token found, using anonymous access")
	return "", nil
}

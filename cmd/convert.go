package cmd

import (
	"time"

	"altiprofile/internal/orchestration"
	"altiprofile/pkg/logger"
	"altiprofile/pkg/models"

	"github.com/spf13/cobra"
)

var (
	token           string
	outputDir       string
	filename        string
	includeFlag     string
	ignoreFlag      string
	exporterKind    string
	rendererKind    string
	sinkKind        string
	defaultPlatform string
	maxConcurrency  int
	timeout         time.Duration
	unique          bool
	chartPNG        bool
	printLink       bool
	printPreview    bool
	dryRun          bool
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert [source...]",
	Short: "Convert track logs into altimetry profile workbooks",
	Long: `Convert one or more CSV track logs into Excel workbooks holding the
per-kilometre profile and its chart.

Sources:
  - a CSV file or a directory of CSV files
  - "-" to read standard input
  - https://github.com/owner/repo/blob/main/tracks/ride.csv
  - https://gitlab.com/group/project/-/blob/main/tracks/ride.csv
  - github:owner/repo:tracks/ride.csv#branch
  - owner/repo:tracks/ride.csv (uses --default-platform, GitHub otherwise)

Exporters:
  table  data sheet only
  chart  data sheet and a native area chart (default)
  image  data sheet and the rendered PNG chart

Examples:
  altiprofile convert ride.csv
  altiprofile convert ./tracks --output ./static --unique
  altiprofile convert ./tracks --include "*.csv,*.txt" --ignore "archive/,draft_*"
  cat ride.csv | altiprofile convert - --link
  altiprofile convert github:owner/repo:tracks/ride.csv#main --token $GITHUB_TOKEN
  altiprofile convert ride.csv --exporter image --renderer gochart --chart-png
  altiprofile convert ./tracks --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	RootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default ./static)")
	convertCmd.Flags().StringVar(&filename, "filename", "", "Workbook name without extension (default profil_altimetry)")
	convertCmd.Flags().StringVar(&includeFlag, "include", "", "Comma-separated patterns of track logs to read from directories (default *.csv)")
	convertCmd.Flags().StringVar(&ignoreFlag, "ignore", "", "Comma-separated ignore patterns for directories")
	convertCmd.Flags().StringVar(&exporterKind, "exporter", "", "Exporter: table, chart or image")
	convertCmd.Flags().StringVar(&rendererKind, "renderer", "", "Chart renderer: gonum or gochart")
	convertCmd.Flags().StringVar(&sinkKind, "sink", "", "Where to store workbooks: file, s3 or none")
	convertCmd.Flags().BoolVar(&unique, "unique", false, "Append a unique suffix to every output name")
	convertCmd.Flags().BoolVar(&chartPNG, "chart-png", false, "Also store the chart as a PNG image")
	convertCmd.Flags().BoolVar(&printLink, "link", false, "Print an HTML download link with the embedded workbook")
	convertCmd.Flags().BoolVar(&printPreview, "preview", false, "Print the loaded and converted data")
	convertCmd.Flags().StringVarP(&token, "token", "t", "", "Personal access token for GitHub or GitLab")
	convertCmd.Flags().StringVar(&defaultPlatform, "default-platform", "", "Default platform for owner/repo:path sources (github or gitlab)")
	convertCmd.Flags().IntVarP(&maxConcurrency, "max-concurrency", "m", 0, "Maximum number of track logs to process concurrently")
	convertCmd.Flags().DurationVar(&timeout, "timeout", 0, "Timeout for each track log (e.g. 30s)")
	convertCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview operations without fetching remote files or writing")
}

// runConvert executes the convert command
func runConvert(cmd *cobra.Command, args []string) error {
	platform, err := parseDefaultPlatform(defaultPlatform)
	if err != nil {
		return err
	}

	cliOptions := &models.CLIOptions{
		Token:           token,
		Output:          outputDir,
		Filename:        filename,
		Include:         includeFlag,
		Ignore:          ignoreFlag,
		Exporter:        exporterKind,
		Renderer:        rendererKind,
		Sink:            sinkKind,
		ConfigFile:      configFile,
		DefaultPlatform: string(platform),
		MaxConcurrency:  maxConcurrency,
		Timeout:         timeout,
		Unique:          unique,
		ChartPNG:        chartPNG,
		Link:            printLink,
		Preview:         printPreview,
		Verbose:         verbose,
		Quiet:           quiet,
		DryRun:          dryRun,
	}

	cfg, err := loadConfiguration(cliOptions)
	if err != nil {
		return err
	}

	logger.Logger.Info("Starting altiprofile convert operation")

	orchestrator := orchestration.NewOrchestrator(cfg, cliOptions).WithIO(cmd.InOrStdin(), cmd.OutOrStdout())
	return orchestrator.ProcessSources(cmd.Context(), args)
}

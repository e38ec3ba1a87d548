package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"altiprofile/internal/chart"
	"altiprofile/internal/export"
	"altiprofile/internal/sink"
	"altiprofile/pkg/logger"
	"altiprofile/pkg/models"
	"altiprofile/pkg/utils"
)

const defaultEnvFile = ".env"

// Loader handles configuration loading and validation
type Loader struct {
	defaults []func(*models.Config)
}

// NewLoader creates a new configuration loader. The defaults functions adjust
// the built-in defaults before the config file is applied on top of them.
func NewLoader(defaults ...func(*models.Config)) *Loader {
	return &Loader{defaults: defaults}
}

// LoadConfig loads configuration from file or returns default config
func (l *Loader) LoadConfig(configFile string) (*models.Config, error) {
	config := l.getDefaultConfig()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			logger.Logger.WithField("file", configFile).Debug("Loaded configuration file")
		}
	}

	return config, nil
}

// LoadEnv loads environment variables from the given files, or from .env in
// the working directory. Missing files are skipped and variables already set
// are kept.
func (l *Loader) LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{defaultEnvFile}
	}

	var existing []string
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	logger.Logger.WithField("files", existing).Debug("Loaded environment files")
	return nil
}

// getDefaultConfig returns the default configuration
func (l *Loader) getDefaultConfig() *models.Config {
	config := &models.Config{
		Input: models.InputConfig{
			MaxFileSize: "10MB",
			Include:     []string{"*.csv"},
			Ignore: []string{
				".git/",
				"node_modules/",
			},
		},
		Output: models.OutputConfig{
			Directory: "./static",
			Filename:  "profil_altimetry",
			Exporter:  export.KindChart,
			Sink:      sink.KindFile,
		},
		Chart: models.ChartConfig{
			Renderer: chart.KindGonum,
			Title:    "Altimetry profile",
			Width:    1000,
			Height:   600,
			TickStep: 100,
			XLabel:   "Distance (km)",
			YLabel:   "Altitude (m)",
			Legend:   "Topography",
		},
		Spreadsheet: models.SpreadsheetConfig{
			DataSheet:   "Data",
			ChartSheet:  "Chart",
			ChartTitle:  "Altimetry profile",
			ChartWidth:  960,
			ChartHeight: 480,
			LinkText:    "Download the Excel file",
		},
		Processing: models.ProcessingConfig{
			MaxConcurrency: 5,
			Timeout:        2 * time.Minute,
		},
		Server: models.ServerConfig{
			Address:       ":8080",
			MaxUploadSize: "10MB",
			PreviewRows:   50,
		},
		GitLab: models.GitLabConfig{
			BaseURL:  "https://gitlab.com",
			TokenEnv: "GITLAB_TOKEN",
		},
		GitHub: models.GitHubConfig{
			BaseURL:  "https://api.github.com",
			TokenEnv: "GITHUB_TOKEN",
		},
		S3: models.S3Config{
			Prefix:       "profiles",
			Region:       "us-east-1",
			UseSSL:       true,
			AccessKeyEnv: "S3_ACCESS_KEY",
			SecretKeyEnv: "S3_SECRET_KEY",
		},
		Log: models.LogConfig{
			Level:  "info",
			Format: "text",
		},
	}

	for _, apply := range l.defaults {
		apply(config)
	}
	return config
}

// OverrideWithFlags overrides config values with command line flags
func (l *Loader) OverrideWithFlags(config *models.Config, flags *models.CLIOptions) error {
	if flags.Output != "" {
		config.Output.Directory = flags.Output
	}

	if flags.Filename != "" {
		config.Output.Filename = strings.TrimSuffix(flags.Filename, ".xlsx")
	}

	if flags.Ignore != "" {
		config.Input.Ignore = utils.ParsePatterns(flags.Ignore)
	}

	if flags.Include != "" {
		config.Input.Include = utils.ParsePatterns(flags.Include)
	}

	if flags.Exporter != "" {
		config.Output.Exporter = flags.Exporter
	}

	if flags.Renderer != "" {
		config.Chart.Renderer = flags.Renderer
	}

	if flags.Sink != "" {
		config.Output.Sink = flags.Sink
	}

	if flags.Unique {
		config.Output.UniqueNames = true
	}

	if flags.ChartPNG {
		config.Output.ChartPNG = true
	}

	if flags.MaxConcurrency > 0 {
		config.Processing.MaxConcurrency = flags.MaxConcurrency
	}

	if flags.Timeout > 0 {
		config.Processing.Timeout = flags.Timeout
	}

	return nil
}

// ValidateConfig validates the configuration
func (l *Loader) ValidateConfig(config *models.Config) error {
	if config.Processing.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be greater than 0")
	}

	if config.Processing.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if config.Input.MaxFileSize != "" {
		if _, err := utils.ParseSize(config.Input.MaxFileSize); err != nil {
			return fmt.Errorf("invalid max_file_size: %w", err)
		}
	}

	if config.Server.MaxUploadSize != "" {
		if _, err := utils.ParseSize(config.Server.MaxUploadSize); err != nil {
			return fmt.Errorf("invalid max_upload_size: %w", err)
		}
	}

	if config.Output.Filename == "" {
		return fmt.Errorf("output filename must not be empty")
	}

	switch config.Output.Exporter {
	case export.KindTable, export.KindChart, export.KindImage:
	default:
		return fmt.Errorf("unsupported exporter %q (expected table, chart or image)", config.Output.Exporter)
	}

	switch config.Chart.Renderer {
	case chart.KindGonum, chart.KindGoChart:
	default:
		return fmt.Errorf("unsupported renderer %q (expected gonum or gochart)", config.Chart.Renderer)
	}

	switch config.Output.Sink {
	case sink.KindFile:
		if config.Output.Directory == "" {
			return fmt.Errorf("output directory must not be empty")
		}
	case sink.KindS3:
		if config.S3.Endpoint == "" || config.S3.Bucket == "" {
			return fmt.Errorf("s3 sink requires s3.endpoint and s3.bucket")
		}
	case sink.KindNone:
	default:
		return fmt.Errorf("unsupported sink %q (expected file, s3 or none)", config.Output.Sink)
	}

	if config.Chart.Width <= 0 || config.Chart.Height <= 0 {
		return fmt.Errorf("chart width and height must be greater than 0")
	}

	return nil
}

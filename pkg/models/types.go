package models

import (
	"path/filepath"
	"time"
)

// Config represents the complete configuration for altiprofile
type Config struct {
	Input       InputConfig       `yaml:"input"`
	Output      OutputConfig      `yaml:"output"`
	Chart       ChartConfig       `yaml:"chart"`
	Spreadsheet SpreadsheetConfig `yaml:"spreadsheet"`
	Processing  ProcessingConfig  `yaml:"processing"`
	Server      ServerConfig      `yaml:"server"`
	GitHub      GitHubConfig      `yaml:"github"`
	GitLab      GitLabConfig      `yaml:"gitlab"`
	S3          S3Config          `yaml:"s3"`
	Log         LogConfig         `yaml:"log"`
}

// InputConfig controls which track logs are read and how large they may be
type InputConfig struct {
	MaxFileSize string   `yaml:"max_file_size"`
	Include     []string `yaml:"include"`
	Ignore      []string `yaml:"ignore"`
}

// OutputConfig contains artifact generation settings
type OutputConfig struct {
	Directory   string `yaml:"directory"`
	Filename    string `yaml:"filename"` // without extension
	Exporter    string `yaml:"exporter"` // table, chart or image
	Sink        string `yaml:"sink"`     // file, s3 or none
	UniqueNames bool   `yaml:"unique_names"`
	ChartPNG    bool   `yaml:"chart_png"`
}

// ChartConfig contains the rendered profile settings
type ChartConfig struct {
	Renderer string `yaml:"renderer"` // gonum or gochart
	Title    string `yaml:"title"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	TickStep int    `yaml:"tick_step"`
	XLabel   string `yaml:"x_label"`
	YLabel   string `yaml:"y_label"`
	Legend   string `yaml:"legend"`
}

// SpreadsheetConfig contains workbook layout settings
type SpreadsheetConfig struct {
	DataSheet   string `yaml:"data_sheet"`
	ChartSheet  string `yaml:"chart_sheet"`
	ChartTitle  string `yaml:"chart_title"`
	ChartWidth  uint   `yaml:"chart_width"`
	ChartHeight uint   `yaml:"chart_height"`
	LinkText    string `yaml:"link_text"`
}

// ProcessingConfig contains pipeline execution settings
type ProcessingConfig struct {
	MaxConcurrency int           `yaml:"max_concurrency"`
	Timeout        time.Duration `yaml:"timeout"`
}

// ServerConfig contains the upload server settings
type ServerConfig struct {
	Address       string `yaml:"address"`
	MaxUploadSize string `yaml:"max_upload_size"`
	PreviewRows   int    `yaml:"preview_rows"`
}

// GitHubConfig contains GitHub connection settings
type GitHubConfig struct {
	BaseURL  string `yaml:"base_url"`
	TokenEnv string `yaml:"token_env"`
}

// GitLabConfig contains GitLab connection settings
type GitLabConfig struct {
	BaseURL  string `yaml:"base_url"`
	TokenEnv string `yaml:"token_env"`
}

// S3Config contains object storage settings for the s3 sink
type S3Config struct {
	Endpoint     string `yaml:"endpoint"`
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	UseSSL       bool   `yaml:"use_ssl"`
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Platform represents where a track log is stored
type Platform string

const (
	PlatformLocal  Platform = "local"
	PlatformStdin  Platform = "stdin"
	PlatformGitHub Platform = "github"
	PlatformGitLab Platform = "gitlab"
)

// SourceInfo contains a parsed track log reference
type SourceInfo struct {
	Platform   Platform
	Repository string // owner/repo on GitHub, full project path on GitLab, base directory locally
	Path       string // file path inside Repository
	Branch     string // empty means default branch
	IsDir      bool   // local directory to expand into several files
	Ref        string // original argument
}

// Name returns the base file name of the referenced track log
func (s *SourceInfo) Name() string {
	if s.Platform == PlatformStdin {
		return "stdin"
	}
	return filepath.Base(s.Path)
}

// TrackFile is the raw content of a fetched track log
type TrackFile struct {
	Name    string
	Origin  string
	Content []byte
	Size    int64
}

// CLIOptions contains command-line options
type CLIOptions struct {
	Token           string
	Output          string
	Filename        string
	Include         string
	Ignore          string
	Exporter        string
	Renderer        string
	Sink            string
	ConfigFile      string
	DefaultPlatform string
	MaxConcurrency  int
	Timeout         time.Duration
	Unique          bool
	ChartPNG        bool
	Link            bool
	Preview         bool
	Verbose         bool
	Quiet           bool
	DryRun          bool
}

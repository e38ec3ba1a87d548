package cmd

import (
	"fmt"
	"strings"

	"altiprofile/internal/config"
	"altiprofile/pkg/logger"
	"altiprofile/pkg/models"

	"github.com/spf13/cobra"
)

var (
	// Version information
	Version = "0.1.0"

	// CLI flags shared by the commands
	configFile string
	verbose    bool
	quiet      bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "altiprofile",
	Short:   "Altimetry profiles from CSV track logs",
	Version: Version,
	Long: `Altiprofile turns CSV track logs (Distance and Altitude columns, in metres)
into altimetry profiles: samples are averaged per kilometre, drawn as a
filled profile chart and exported to an Excel workbook.

Track logs can be read from:
  - local files or directories
  - standard input
  - GitHub and GitLab repositories (public or with a token)`,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfiguration loads, overrides and validates the configuration, then
// configures logging from it. defaults adjust the built-in defaults of a
// command; the config file and flags still win over them.
func loadConfiguration(cliOptions *models.CLIOptions, defaults ...func(*models.Config)) (*models.Config, error) {
	configLoader := config.NewLoader(defaults...)

	if err := configLoader.LoadEnv(); err != nil {
		logger.Logger.WithError(err).Warn("Failed to load .env file")
	}

	cfg, err := configLoader.LoadConfig(cliOptions.ConfigFile)
	if err != nil {
		logger.Logger.WithError(err).Error("Failed to load configuration")
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := configLoader.OverrideWithFlags(cfg, cliOptions); err != nil {
		logger.Logger.WithError(err).Error("Failed to process configuration")
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	if err := configLoader.ValidateConfig(cfg); err != nil {
		logger.Logger.WithError(err).Error("Configuration validation failed")
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	setupLogging(cfg, cliOptions)
	return cfg, nil
}

// setupLogging applies the log configuration; --quiet and --verbose win
func setupLogging(cfg *models.Config, cliOptions *models.CLIOptions) {
	logger.SetFormat(cfg.Log.Format)
	logger.SetLevel(cfg.Log.Level)

	if cliOptions.Quiet {
		logger.SetQuiet()
	} else if cliOptions.Verbose {
		logger.SetVerbose()
	}
}

// parseDefaultPlatform validates the --default-platform flag
func parseDefaultPlatform(flag string) (models.Platform, error) {
	switch strings.ToLower(flag) {
	case "github":
		return models.PlatformGitHub, nil
	case "gitlab":
		return models.PlatformGitLab, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("invalid default platform '%s'. Valid options: github, gitlab", flag)
	}
}

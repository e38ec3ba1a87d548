package cmd

import (
	"altiprofile/internal/orchestration"
	"altiprofile/pkg/models"

	"github.com/spf13/cobra"
)

var inspectToken string

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <source>",
	Short: "Show the loaded data, converted data and summary of a track log",
	Long: `Inspect a single track log without writing anything: prints the raw table,
the per-kilometre profile and its summary (distance, altitude range, ascent
and descent).

Examples:
  altiprofile inspect ride.csv
  cat ride.csv | altiprofile inspect -
  altiprofile inspect https://github.com/owner/repo/blob/main/ride.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	RootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectToken, "token", "t", "", "Personal access token for GitHub or GitLab")
}

// runInspect executes the inspect command
func runInspect(cmd *cobra.Command, args []string) error {
	cliOptions := &models.CLIOptions{
		Token:      inspectToken,
		ConfigFile: configFile,
		Sink:       "none",
		Verbose:    verbose,
		Quiet:      quiet,
	}

	cfg, err := loadConfiguration(cliOptions)
	if err != nil {
		return err
	}

	orchestrator := orchestration.NewOrchestrator(cfg, cliOptions).WithIO(cmd.InOrStdin(), cmd.OutOrStdout())
	return orchestrator.Inspect(cmd.Context(), args[0])
}

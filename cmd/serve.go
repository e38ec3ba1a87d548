package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"altiprofile/internal/server"
	"altiprofile/pkg/logger"
	"altiprofile/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	serveUnique bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload page and the profile API",
	Long: `Start an HTTP server with an upload page for CSV track logs and a JSON API.

Routes:
  GET  /                         upload page
  POST /                         upload a CSV file (field "file")
  POST /api/v1/profiles          profile rows, summary, chart and download as JSON
  POST /api/v1/profiles/export   the workbook as an attachment
  GET  /health                   health check

Examples:
  altiprofile serve
  altiprofile serve --addr :9000 --config altiprofile.yml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8080)")
	serveCmd.Flags().BoolVar(&serveUnique, "unique", true, "Append a unique suffix to every stored workbook")
}

// serveDefaults makes concurrent uploads write distinct workbooks unless the
// config file says otherwise
func serveDefaults(c *models.Config) {
	c.Output.UniqueNames = true
}

// runServe executes the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cliOptions := &models.CLIOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		Quiet:      quiet,
	}

	cfg, err := loadConfiguration(cliOptions, serveDefaults)
	if err != nil {
		return err
	}

	if serveAddr != "" {
		cfg.Server.Address = serveAddr
	}
	if cmd.Flags().Changed("unique") {
		cfg.Output.UniqueNames = serveUnique
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.New(cfg)
	if err != nil {
		logger.Logger.WithError(err).Error("Failed to create server")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

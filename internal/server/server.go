// Package server exposes the profile pipeline over HTTP: an upload page and
// a JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"altiprofile/internal/pipeline"
	"altiprofile/pkg/logger"
	"altiprofile/pkg/models"
	"altiprofile/pkg/utils"
)

const (
	defaultAddress       = ":8080"
	defaultMaxUploadSize = "10MB"
	defaultPreviewRows   = 50
	shutdownTimeout      = 5 * time.Second
	pageTitle            = "Altimetry analysis"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server serves the upload page and the profile API
type Server struct {
	config        *models.Config
	processor     *pipeline.Processor
	router        *gin.Engine
	maxUploadSize int64
	previewRows   int
}

// New creates a server running the pipeline selected by config
func New(config *models.Config) (*Server, error) {
	processor, err := pipeline.NewFromConfig(config)
	if err != nil {
		return nil, err
	}
	return newServer(config, processor)
}

func newServer(config *models.Config, processor *pipeline.Processor) (*Server, error) {
	rawSize := config.Server.MaxUploadSize
	if rawSize == "" {
		rawSize = defaultMaxUploadSize
	}
	maxUploadSize, err := utils.ParseSize(rawSize)
	if err != nil {
		return nil, fmt.Errorf("invalid max upload size: %w", err)
	}

	previewRows := config.Server.PreviewRows
	if previewRows <= 0 {
		previewRows = defaultPreviewRows
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		config:        config,
		processor:     processor,
		maxUploadSize: maxUploadSize,
		previewRows:   previewRows,
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())
	router.SetHTMLTemplate(tmpl)
	s.routes(router)
	s.router = router

	return s, nil
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "altiprofile is running",
		})
	})

	r.GET("/", s.index)
	r.POST("/", s.upload)

	api := r.Group("/api/v1")
	{
		api.POST("/profiles", s.createProfile)
		api.POST("/profiles/export", s.exportProfile)
	}
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Address
	if addr == "" {
		addr = defaultAddress
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Logger.WithField("address", addr).Info("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	logger.Logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

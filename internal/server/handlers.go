package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"altiprofile/internal/export"
	"altiprofile/internal/pipeline"
	"altiprofile/internal/preview"
	"altiprofile/internal/profile"
	"altiprofile/pkg/logger"
	"altiprofile/pkg/response"
	"altiprofile/pkg/utils"
)

const uploadField = "file"

// errTooLarge marks an upload above the configured limit
var errTooLarge = errors.New("upload too large")

type pageData struct {
	Title  string
	Error  string
	Result *pageResult
}

type pageResult struct {
	Loaded    [][]string
	Converted [][]string
	Truncated bool
	Shown     int
	Total     int
	Chart     template.URL
	Link      template.HTML
}

// profileData is the JSON representation of a pipeline run
type profileData struct {
	Name     string                  `json:"name"`
	FileName string                  `json:"file_name"`
	Location string                  `json:"location,omitempty"`
	Rows     []profile.AggregatedRow `json:"rows"`
	Summary  profile.Summary         `json:"summary"`
	Chart    string                  `json:"chart,omitempty"`
	Download string                  `json:"download"`
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{Title: pageTitle})
}

func (s *Server) upload(c *gin.Context) {
	result, err := s.process(c)
	if err != nil {
		c.HTML(errorStatus(err), "index.html", pageData{Title: pageTitle, Error: err.Error()})
		return
	}

	page := &pageResult{
		Loaded:    [][]string{result.Track.Header},
		Converted: [][]string{{export.DistanceHeader, export.AltitudeHeader}},
		Total:     len(result.Track.Records),
		Link:      template.HTML(result.DownloadLink),
	}
	if page.Total > 0 {
		page.Loaded = preview.RawFrame(result.Track, s.previewRows).Records()
		page.Converted = preview.ProfileFrame(result.Rows).Records()
	}
	page.Shown = len(page.Loaded) - 1
	page.Truncated = page.Shown < page.Total
	if result.Chart != nil {
		page.Chart = template.URL(export.ImageDataURI(result.Chart))
	}

	c.HTML(http.StatusOK, "index.html", pageData{Title: pageTitle, Result: page})
}

func (s *Server) createProfile(c *gin.Context) {
	result, err := s.process(c)
	if err != nil {
		sendError(c, err)
		return
	}

	data := profileData{
		Name:     result.Name,
		FileName: result.FileName,
		Location: result.Location,
		Rows:     result.Rows,
		Summary:  result.Summary,
		Download: export.DataURI(result.Artifact),
	}
	if result.Chart != nil {
		data.Chart = export.ImageDataURI(result.Chart)
	}

	response.Success(c, data)
}

func (s *Server) exportProfile(c *gin.Context) {
	result, err := s.process(c)
	if err != nil {
		sendError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, export.XLSXMimeType, result.Artifact)
}

// process runs the pipeline on the uploaded file
func (s *Server) process(c *gin.Context) (*pipeline.Result, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize)

	header, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: limit is %s", errTooLarge, utils.FormatBytes(s.maxUploadSize))
		}
		return nil, &badRequestError{msg: fmt.Sprintf("missing %q file field", uploadField)}
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	ctx := c.Request.Context()
	if timeout := s.config.Processing.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.processor.Run(ctx, header.Filename, file)
	if err != nil {
		logger.Logger.WithError(err).WithField("upload", header.Filename).Warn("Upload rejected")
		return nil, err
	}

	logger.Logger.WithFields(map[string]interface{}{
		"upload":   header.Filename,
		"size":     utils.FormatBytes(header.Size),
		"rows":     len(result.Rows),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("Upload processed")

	return result, nil
}

type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string {
	return e.msg
}

// errorStatus maps pipeline errors to HTTP status codes
func errorStatus(err error) int {
	var (
		schemaErr *profile.SchemaError
		typeErr   *profile.TypeError
		badReq    *badRequestError
	)
	switch {
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &schemaErr), errors.As(err, &typeErr), errors.As(err, &badReq):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func sendError(c *gin.Context, err error) {
	switch status := errorStatus(err); status {
	case http.StatusBadRequest:
		response.BadRequest(c, err.Error())
	case http.StatusRequestEntityTooLarge:
		response.TooLarge(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}

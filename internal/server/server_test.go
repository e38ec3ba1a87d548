package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"altiprofile/pkg/models"
)

const rideCSV = "Distance,Altitude\n0,100\n500,120\n1200,150\n1800,170\n"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, mutate func(*models.Config)) (*Server, *models.Config) {
	t.Helper()

	config := &models.Config{
		Output: models.OutputConfig{
			Directory:   filepath.Join(t.TempDir(), "static"),
			Filename:    "profil_altimetry",
			Exporter:    "chart",
			Sink:        "file",
			UniqueNames: true,
		},
		Chart: models.ChartConfig{Width: 300, Height: 200},
	}
	if mutate != nil {
		mutate(config)
	}

	s, err := New(config)
	require.NoError(t, err)
	return s, config
}

func uploadRequest(t *testing.T, target, field, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

type apiResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    profileData `json:"data"`
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestUploadPage(t *testing.T) {
	s, config := newTestServer(t, nil)

	t.Run("should render upload form", func(t *testing.T) {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<title>Altimetry analysis</title>")
		assert.Contains(t, w.Body.String(), `type="file" name="file"`)
	})

	t.Run("should show tables, chart and link after upload", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/", "file", "ride.csv", rideCSV))

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Loaded data")
		assert.Contains(t, body, "<td>1800</td>")
		assert.Contains(t, body, "Converted data")
		assert.Contains(t, body, "<th>Distance_km</th>")
		assert.Contains(t, body, "<td>0.25</td>")
		assert.Contains(t, body, `src="data:image/png;base64,`)
		assert.Contains(t, body, `href="data:application/vnd.openxmlformats-officedocument.spreadsheetml.sheet;base64,`)
		assert.Contains(t, body, "Download the Excel file")

		matches, err := filepath.Glob(filepath.Join(config.Output.Directory, "profil_altimetry-*.xlsx"))
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("should show schema errors with status 400", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/", "file", "bad.csv", "Dist,Alt\n1,2\n"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `class="error"`)
		assert.Contains(t, w.Body.String(), "missing required column(s)")
	})
}

func TestCreateProfileAPI(t *testing.T) {
	s, _ := newTestServer(t, nil)

	t.Run("should return rows and summary", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/api/v1/profiles", "file", "ride.csv", rideCSV))
		require.Equal(t, http.StatusOK, w.Code)

		var resp apiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, 0, resp.Code)
		assert.Equal(t, "ride.csv", resp.Data.Name)
		require.Len(t, resp.Data.Rows, 2)
		assert.Equal(t, 0.25, resp.Data.Rows[0].DistanceKm)
		assert.Equal(t, 160.0, resp.Data.Rows[1].AltitudeM)
		assert.Equal(t, 4, resp.Data.Summary.Samples)
		assert.True(t, strings.HasPrefix(resp.Data.Chart, "data:image/png;base64,"))
		assert.True(t, strings.HasPrefix(resp.Data.Download, "data:application/vnd.openxmlformats-officedocument.spreadsheetml.sheet;base64,"))
		assert.Regexp(t, `^profil_altimetry-.+\.xlsx$`, resp.Data.FileName)
		assert.NotEmpty(t, resp.Data.Location)
	})

	t.Run("should reject type errors with 400", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/api/v1/profiles", "file", "bad.csv", "Distance,Altitude\n0,high\n"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "type error")
	})

	t.Run("should reject missing file field", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/api/v1/profiles", "upload", "ride.csv", rideCSV))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing")
	})

	t.Run("should accept header only file", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/api/v1/profiles", "file", "empty.csv", "Distance,Altitude\n"))
		require.Equal(t, http.StatusOK, w.Code)

		var resp apiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data.Rows)
		assert.Empty(t, resp.Data.Chart)
	})
}

func TestUploadSizeLimit(t *testing.T) {
	s, _ := newTestServer(t, func(c *models.Config) {
		c.Server.MaxUploadSize = "1KB"
	})

	w := serve(s, uploadRequest(t, "/api/v1/profiles", "file", "big.csv", "Distance,Altitude\n"+strings.Repeat("1,1\n", 1000)))

	assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, w.Code)
}

func TestExportAPI(t *testing.T) {
	s, _ := newTestServer(t, func(c *models.Config) {
		c.Output.Sink = "none"
		c.Output.UniqueNames = false
	})

	w := serve(s, uploadRequest(t, "/api/v1/profiles/export", "file", "ride.csv", rideCSV))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="profil_altimetry.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Distance_km", "Altitude_m"},
		{"0.25", "110"},
		{"1.5", "160"},
	}, rows)
}

func TestNew_InvalidUploadSize(t *testing.T) {
	_, err := New(&models.Config{Server: models.ServerConfig{MaxUploadSize: "huge"}})
	assert.ErrorContains(t, err, "invalid max upload size")
}

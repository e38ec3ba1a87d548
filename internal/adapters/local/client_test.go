package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"altiprofile/pkg/utils"
)

// setupTestDir creates a temporary directory with track logs
func setupTestDir(t *testing.T) string {
	tmpDir := t.TempDir()

	testFiles := map[string]string{
		"morning.csv":         "Distance,Altitude\n0,100\n500,120\n",
		"evening.csv":         "Distance,Altitude\n0,200\n",
		"notes.md":            "# Rides\n",
		"archive/2019.csv":    "Distance,Altitude\n0,50\n",
		"alps/galibier.csv":   "Distance,Altitude\n0,1500\n1000,1620\n",
		"alps/draft-road.csv": "Distance,Altitude\n",
	}

	for filePath, content := range testFiles {
		fullPath := filepath.Join(tmpDir, filePath)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
	}

	binaryContent := []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE}
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "binary.csv"), binaryContent, 0644))

	return tmpDir
}

func TestNewClient(t *testing.T) {
	tmpDir := setupTestDir(t)

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{
			name: "valid directory",
			path: tmpDir,
		},
		{
			name:      "non-existent directory",
			path:      "/non/existent/path",
			wantError: true,
		},
		{
			name:      "file instead of directory",
			path:      filepath.Join(tmpDir, "morning.csv"),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.path, 0, nil)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, client)
				assert.Equal(t, tt.path, client.BasePath())
			}
		})
	}
}

func TestClient_ListTracks(t *testing.T) {
	tmpDir := setupTestDir(t)
	ctx := context.Background()

	t.Run("should list csv files recursively", func(t *testing.T) {
		client, err := NewClient(tmpDir, 0, utils.NewPatternMatcher(nil, []string{"*.csv"}))
		require.NoError(t, err)

		tracks, err := client.ListTracks(ctx)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{
			"morning.csv",
			"evening.csv",
			"binary.csv",
			"archive/2019.csv",
			"alps/galibier.csv",
			"alps/draft-road.csv",
		}, tracks)
	})

	t.Run("should honor ignore patterns", func(t *testing.T) {
		matcher := utils.NewPatternMatcher([]string{"archive/", "draft-*", "binary.csv"}, []string{"*.csv"})
		client, err := NewClient(tmpDir, 0, matcher)
		require.NoError(t, err)

		tracks, err := client.ListTracks(ctx)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"morning.csv", "evening.csv", "alps/galibier.csv"}, tracks)
	})

	t.Run("should stop on cancelled context", func(t *testing.T) {
		client, err := NewClient(tmpDir, 0, nil)
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = client.ListTracks(cancelled)
		assert.Error(t, err)
	})
}

func TestClient_ReadTrack(t *testing.T) {
	tmpDir := setupTestDir(t)

	client, err := NewClient(tmpDir, 1024, nil)
	require.NoError(t, err)

	ctx := context.Background()

	tests := []struct {
		name        string
		filePath    string
		expectError bool
		contains    string
	}{
		{
			name:     "valid track",
			filePath: "morning.csv",
			contains: "500,120",
		},
		{
			name:     "track in subdirectory",
			filePath: "alps/galibier.csv",
			contains: "1000,1620",
		},
		{
			name:        "non-existent file",
			filePath:    "missing.csv",
			expectError: true,
		},
		{
			name:        "binary file",
			filePath:    "binary.csv",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    "alps",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := client.ReadTrack(ctx, tt.filePath)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, string(content), tt.contains)
		})
	}
}

func TestClient_SizeLimit(t *testing.T) {
	tmpDir := t.TempDir()
	large := make([]byte, 2048)
	for i := range large {
		large[i] = '1'
	}
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "large.csv"), large, 0644))

	client, err := NewClient(tmpDir, 1024, nil)
	require.NoError(t, err)

	_, err = client.ReadTrack(context.Background(), "large.csv")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestClient_TestConnection(t *testing.T) {
	client, err := NewClient(t.TempDir(), 0, nil)
	require.NoError(t, err)

	assert.NoError(t, client.TestConnection(context.Background()))
}

package adapters

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"altiprofile/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSource(t *testing.T) {
	t.Run("should create GitHub source", func(t *testing.T) {
		config := &models.Config{
			GitHub: models.GitHubConfig{BaseURL: "https://api.github.com", TokenEnv: "GITHUB_TOKEN"},
		}

		source, err := CreateSource(models.PlatformGitHub, config, "github-token")
		require.NoError(t, err)
		assert.IsType(t, &GitHubSource{}, source)
	})

	t.Run("should create GitLab source without token", func(t *testing.T) {
		config := &models.Config{
			GitLab: models.GitLabConfig{BaseURL: "https://gitlab.com"},
		}

		source, err := CreateSource(models.PlatformGitLab, config, "")
		require.NoError(t, err)
		assert.IsType(t, &GitLabSource{}, source)
	})

	t.Run("should error on unsupported platform", func(t *testing.T) {
		_, err := CreateSource("unsupported", &models.Config{}, "token")
		assert.ErrorContains(t, err, "unsupported platform")
	})

	t.Run("should require special handling for local platform", func(t *testing.T) {
		_, err := CreateSource(models.PlatformLocal, &models.Config{}, "")
		assert.ErrorContains(t, err, "special handling")
	})

	t.Run("should reject invalid max file size", func(t *testing.T) {
		config := &models.Config{Input: models.InputConfig{MaxFileSize: "lots"}}

		_, err := CreateSource(models.PlatformGitHub, config, "")
		assert.ErrorContains(t, err, "invalid max file size")
	})
}

func TestMaxFileSize(t *testing.T) {
	size, err := MaxFileSize(&models.Config{})
	require.NoError(t, err)
	assert.Equal(t, int64(10*1024*1024), size)

	size, err = MaxFileSize(&models.Config{Input: models.InputConfig{MaxFileSize: "500KB"}})
	require.NoError(t, err)
	assert.Equal(t, int64(500*1024), size)
}

func TestStdinSource(t *testing.T) {
	info := &models.SourceInfo{Platform: models.PlatformStdin, Ref: "-"}

	t.Run("should read everything", func(t *testing.T) {
		source := NewStdinSource(strings.NewReader("Distance,Altitude\n0,100\n"), 0)

		file, err := source.Fetch(context.Background(), info)
		require.NoError(t, err)
		assert.Equal(t, "stdin", file.Name)
		assert.Equal(t, "-", file.Origin)
		assert.Equal(t, int64(24), file.Size)
	})

	t.Run("should enforce size limit", func(t *testing.T) {
		source := NewStdinSource(strings.NewReader(strings.Repeat("1", 100)), 10)

		_, err := source.Fetch(context.Background(), info)
		assert.ErrorContains(t, err, "too large")
	})

	t.Run("should reject binary content", func(t *testing.T) {
		source := NewStdinSource(strings.NewReader("\x00\x01\x02"), 0)

		_, err := source.Fetch(context.Background(), info)
		assert.ErrorContains(t, err, "binary")
	})
}

func TestLocalSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ride.csv"), []byte("Distance,Altitude\n0,100\n"), 0644))

	info, err := ParseSourceRef(filepath.Join(dir, "ride.csv"), "")
	require.NoError(t, err)

	source, err := CreateLocalSource(info.Repository, &models.Config{})
	require.NoError(t, err)
	require.NoError(t, source.TestConnection(context.Background()))

	file, err := source.Fetch(context.Background(), info)
	require.NoError(t, err)
	assert.Equal(t, "ride.csv", file.Name)
	assert.Equal(t, "Distance,Altitude\n0,100\n", string(file.Content))
}

func TestExpandSources(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv", "notes.txt", "old/c.csv"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("Distance,Altitude\n"), 0644))
	}

	info, err := ParseSourceRef(dir, "")
	require.NoError(t, err)
	require.True(t, info.IsDir)

	t.Run("should expand to csv files by default", func(t *testing.T) {
		expanded, err := ExpandSources(context.Background(), info, &models.Config{})
		require.NoError(t, err)

		var paths []string
		for _, e := range expanded {
			assert.Equal(t, models.PlatformLocal, e.Platform)
			assert.Equal(t, info.Repository, e.Repository)
			paths = append(paths, e.Path)
		}
		assert.ElementsMatch(t, []string{"a.csv", "b.csv", "old/c.csv"}, paths)
	})

	t.Run("should honor ignore patterns", func(t *testing.T) {
		config := &models.Config{Input: models.InputConfig{Ignore: []string{"old/"}}}

		expanded, err := ExpandSources(context.Background(), info, config)
		require.NoError(t, err)
		assert.Len(t, expanded, 2)
	})

	t.Run("should leave file references unchanged", func(t *testing.T) {
		file := &models.SourceInfo{Platform: models.PlatformGitHub, Repository: "o/r", Path: "a.csv"}

		expanded, err := ExpandSources(context.Background(), file, &models.Config{})
		require.NoError(t, err)
		assert.Equal(t, []*models.SourceInfo{file}, expanded)
	})
}

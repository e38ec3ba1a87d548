package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathTraversalProtection(t *testing.T) {
	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "ride.csv")
	err := os.WriteFile(testFile, []byte("Distance,Altitude\n0,100\n"), 0644)
	require.NoError(t, err)

	client, err := NewClient(tempDir, 0, nil)
	require.NoError(t, err)

	maliciousPaths := []string{
		"../../../etc/passwd",
		"/etc/passwd",
		"..\\..\\windows\\system32",
		"normal/../../../etc/passwd",
		"./../../etc/passwd",
		"../outside.csv",
	}

	for _, path := range maliciousPaths {
		t.Run("should_reject_"+path, func(t *testing.T) {
			_, err := client.ReadTrack(context.Background(), path)
			assert.Error(t, err, "Expected error for malicious path: %s", path)
			assert.Contains(t, err.Error(), "invalid file path", "Error should mention invalid file path")
		})
	}

	validPaths := []string{
		"ride.csv",
		"./ride.csv",
	}

	for _, path := range validPaths {
		t.Run("should_allow_"+path, func(t *testing.T) {
			content, err := client.ReadTrack(context.Background(), path)
			assert.NoError(t, err, "Valid path should work: %s", path)
			assert.Equal(t, "Distance,Altitude\n0,100\n", string(content))
		})
	}
}

func TestSymlinksAreNotListed(t *testing.T) {
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.csv"), []byte("Distance,Altitude\n"), 0644))

	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "ride.csv"), []byte("Distance,Altitude\n"), 0644))
	if err := os.Symlink(filepath.Join(outside, "secret.csv"), filepath.Join(base, "link.csv")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	client, err := NewClient(base, 0, nil)
	require.NoError(t, err)

	tracks, err := client.ListTracks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ride.csv"}, tracks)
}

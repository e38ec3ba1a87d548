package local

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"altiprofile/pkg/logger"
	"altiprofile/pkg/utils"
)

// Client reads track logs below a local directory
type Client struct {
	basePath string
	maxSize  int64
	matcher  *utils.PatternMatcher
}

// NewClient creates a new local folder client. A zero maxSize disables the
// size limit and a nil matcher accepts every file.
func NewClient(basePath string, maxSize int64, matcher *utils.PatternMatcher) (*Client, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid path %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", basePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if matcher == nil {
		matcher = utils.NewPatternMatcher(nil, nil)
	}

	return &Client{
		basePath: absPath,
		maxSize:  maxSize,
		matcher:  matcher,
	}, nil
}

// ListTracks returns the relative paths of the track logs below the base
// directory that pass the pattern matcher. Symlinks are skipped.
func (c *Client) ListTracks(ctx context.Context) ([]string, error) {
	var tracks []string

	err := filepath.WalkDir(c.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == c.basePath || d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		relPath, err := filepath.Rel(c.basePath, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if c.matcher.Matches(relPath) {
			tracks = append(tracks, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	logger.Logger.WithFields(map[string]interface{}{
		"directory": c.basePath,
		"tracks":    len(tracks),
	}).Debug("Listed local track logs")

	return tracks, nil
}

// sanitizePath validates and sanitizes file paths to prevent directory traversal attacks
func (c *Client) sanitizePath(filePath string) (string, error) {
	cleanPath := filepath.Clean(filePath)

	if filepath.IsAbs(cleanPath) || strings.HasPrefix(cleanPath, "..") {
		return "", fmt.Errorf("invalid file path: %s", filePath)
	}

	fullPath := filepath.Join(c.basePath, cleanPath)

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	if !strings.HasPrefix(absPath, c.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file path: %s is outside base directory", filePath)
	}

	return fullPath, nil
}

// ReadTrack returns the content of a track log relative to the base directory
func (c *Client) ReadTrack(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := c.sanitizePath(filePath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", filePath)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory: %s", filePath)
	}
	if c.maxSize > 0 && info.Size() > c.maxSize {
		return nil, fmt.Errorf("file %s is too large: %s (max: %s)",
			filePath, utils.FormatBytes(info.Size()), utils.FormatBytes(c.maxSize))
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	if !utils.IsTextContent(content) {
		return nil, fmt.Errorf("file is binary: %s", filePath)
	}

	return content, nil
}

// TestConnection tests if the local folder is accessible
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := os.ReadDir(c.basePath); err != nil {
		return fmt.Errorf("cannot access local folder: %w", err)
	}
	return nil
}

// BasePath returns the absolute base directory
func (c *Client) BasePath() string {
	return c.basePath
}

package adapters

import (
	"context"
	"fmt"
	"io"
	"strings"

	"altiprofile/internal/adapters/github"
	"altiprofile/internal/adapters/gitlab"
	"altiprofile/internal/adapters/local"
	"altiprofile/pkg/logger"
	"altiprofile/pkg/models"
	"altiprofile/pkg/utils"
)

const (
	defaultMaxFileSize = "10MB"
	defaultInclude     = "*.csv"
)

// Source defines where track logs are read from (local folder, stdin, GitHub, GitLab)
type Source interface {
	Fetch(ctx context.Context, info *models.SourceInfo) (*models.TrackFile, error)
	TestConnection(ctx context.Context) error
}

// GitLabSource reads track logs from GitLab projects
type GitLabSource struct {
	client  *gitlab.Client
	maxSize int64
}

// NewGitLabSource creates a new GitLab source
func NewGitLabSource(baseURL, token string, maxSize int64) (*GitLabSource, error) {
	client, err := gitlab.NewClient(baseURL, token)
	if err != nil {
		return nil, err
	}
	return &GitLabSource{client: client, maxSize: maxSize}, nil
}

func (s *GitLabSource) Fetch(ctx context.Context, info *models.SourceInfo) (*models.TrackFile, error) {
	content, err := s.client.GetFileContent(ctx, info.Repository, info.Path, info.Branch)
	if err != nil {
		return nil, err
	}
	return newTrackFile(info, content, s.maxSize)
}

func (s *GitLabSource) TestConnection(ctx context.Context) error {
	return s.client.TestConnection(ctx)
}

// GitHubSource reads track logs from GitHub repositories
type GitHubSource struct {
	client  *github.Client
	maxSize int64
}

// NewGitHubSource creates a new GitHub source
func NewGitHubSource(baseURL, token string, maxSize int64) (*GitHubSource, error) {
	client, err := github.NewClient(baseURL, token)
	if err != nil {
		return nil, err
	}
	return &GitHubSource{client: client, maxSize: maxSize}, nil
}

func (s *GitHubSource) Fetch(ctx context.Context, info *models.SourceInfo) (*models.TrackFile, error) {
	owner, repo, err := parseGitHubRepoPath(info.Repository)
	if err != nil {
		return nil, err
	}
	content, err := s.client.GetFileContent(ctx, owner, repo, info.Path, info.Branch)
	if err != nil {
		return nil, err
	}
	return newTrackFile(info, content, s.maxSize)
}

func (s *GitHubSource) TestConnection(ctx context.Context) error {
	return s.client.TestConnection(ctx)
}

// LocalSource reads track logs below a local folder
type LocalSource struct {
	client *local.Client
}

// NewLocalSource creates a new local source rooted at folderPath
func NewLocalSource(folderPath string, maxSize int64, matcher *utils.PatternMatcher) (*LocalSource, error) {
	client, err := local.NewClient(folderPath, maxSize, matcher)
	if err != nil {
		return nil, err
	}
	return &LocalSource{client: client}, nil
}

func (s *LocalSource) Fetch(ctx context.Context, info *models.SourceInfo) (*models.TrackFile, error) {
	content, err := s.client.ReadTrack(ctx, info.Path)
	if err != nil {
		return nil, err
	}
	return newTrackFile(info, content, 0)
}

func (s *LocalSource) TestConnection(ctx context.Context) error {
	return s.client.TestConnection(ctx)
}

// StdinSource reads a single track log from a reader, usually os.Stdin
type StdinSource struct {
	reader  io.Reader
	maxSize int64
}

// NewStdinSource creates a source reading from r. A zero maxSize disables
// the size limit.
func NewStdinSource(r io.Reader, maxSize int64) *StdinSource {
	return &StdinSource{reader: r, maxSize: maxSize}
}

func (s *StdinSource) Fetch(ctx context.Context, info *models.SourceInfo) (*models.TrackFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader := s.reader
	if s.maxSize > 0 {
		reader = io.LimitReader(s.reader, s.maxSize+1)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read standard input: %w", err)
	}
	return newTrackFile(info, content, s.maxSize)
}

func (s *StdinSource) TestConnection(ctx context.Context) error {
	return nil
}

func newTrackFile(info *models.SourceInfo, content []byte, maxSize int64) (*models.TrackFile, error) {
	size := int64(len(content))
	if maxSize > 0 && size > maxSize {
		return nil, fmt.Errorf("file %s is too large: more than %s", info.Name(), utils.FormatBytes(maxSize))
	}
	if !utils.IsTextContent(content) {
		return nil, fmt.Errorf("file is binary: %s", info.Name())
	}

	return &models.TrackFile{
		Name:    info.Name(),
		Origin:  info.Ref,
		Content: content,
		Size:    size,
	}, nil
}

// CreateSource creates a remote source based on platform and configuration
func CreateSource(platform models.Platform, config *models.Config, token string) (Source, error) {
	maxSize, err := MaxFileSize(config)
	if err != nil {
		return nil, err
	}

	switch platform {
	case models.PlatformGitLab:
		return NewGitLabSource(config.GitLab.BaseURL, token, maxSize)
	case models.PlatformGitHub:
		return NewGitHubSource(config.GitHub.BaseURL, token, maxSize)
	case models.PlatformLocal, models.PlatformStdin:
		return nil, fmt.Errorf("%s platform requires special handling in orchestration layer", platform)
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}

// CreateLocalSource creates a local source for a folder, filtered by the
// input include and ignore patterns
func CreateLocalSource(folderPath string, config *models.Config) (*LocalSource, error) {
	maxSize, err := MaxFileSize(config)
	if err != nil {
		return nil, err
	}
	return NewLocalSource(folderPath, maxSize, Matcher(config))
}

// Matcher returns the pattern matcher configured for directory expansion.
// Only CSV files are selected when no include pattern is set.
func Matcher(config *models.Config) *utils.PatternMatcher {
	include := config.Input.Include
	if len(include) == 0 {
		include = []string{defaultInclude}
	}
	return utils.NewPatternMatcher(config.Input.Ignore, include)
}

// MaxFileSize returns the configured size limit for a single track log in bytes
func MaxFileSize(config *models.Config) (int64, error) {
	raw := config.Input.MaxFileSize
	if raw == "" {
		raw = defaultMaxFileSize
	}
	size, err := utils.ParseSize(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid max file size: %w", err)
	}
	return size, nil
}

// ExpandSources turns a local directory reference into one reference per
// matching track log. Other references are returned unchanged.
func ExpandSources(ctx context.Context, info *models.SourceInfo, config *models.Config) ([]*models.SourceInfo, error) {
	if !info.IsDir {
		return []*models.SourceInfo{info}, nil
	}

	source, err := CreateLocalSource(info.Repository, config)
	if err != nil {
		return nil, err
	}

	tracks, err := source.client.ListTracks(ctx)
	if err != nil {
		return nil, err
	}

	expanded := make([]*models.SourceInfo, 0, len(tracks))
	for _, track := range tracks {
		expanded = append(expanded, &models.SourceInfo{
			Platform:   models.PlatformLocal,
			Repository: info.Repository,
			Path:       track,
			Ref:        strings.TrimSuffix(info.Ref, "/") + "/" + track,
		})
	}

	logger.Logger.WithFields(map[string]interface{}{
		"directory": info.Repository,
		"tracks":    len(expanded),
	}).Debug("Expanded local directory")

	return expanded, nil
}

func parseGitHubRepoPath(repoPath string) (owner, repo string, err error) {
	parts := strings.Split(repoPath, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repository path format, expected 'owner/repo'")
	}
	return parts[0], parts[1], nil
}

package gitlab

import (
	"context"
	"encoding/base64"
	"fmt"

	"altiprofile/pkg/logger"

	"gitlab.com/gitlab-org/api/client-go"
)

const defaultBaseURL = "https://gitlab.com"

// Client wraps the GitLab API client for reading track logs from projects
type Client struct {
	client  *gitlab.Client
	baseURL string
	token   string
}

// NewClient creates a new GitLab client. Without a token only public
// projects can be read.
func NewClient(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client, err := gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	return &Client{
		client:  client,
		baseURL: baseURL,
		token:   token,
	}, nil
}

// DefaultBranch returns the default branch of a project
func (c *Client) DefaultBranch(ctx context.Context, projectPath string) (string, error) {
	project, _, err := c.client.Projects.GetProject(projectPath, &gitlab.GetProjectOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		logger.Logger.WithError(err).WithField("project", projectPath).Error("Failed to fetch project")
		return "", fmt.Errorf("failed to fetch project %s: %w", projectPath, err)
	}

	if project.DefaultBranch == "" {
		return "main", nil
	}
	return project.DefaultBranch, nil
}

// GetFileContent fetches the content of a file at branch, or at the default
// branch when branch is empty
func (c *Client) GetFileContent(ctx context.Context, projectPath, filePath, branch string) ([]byte, error) {
	if branch == "" {
		var err error
		branch, err = c.DefaultBranch(ctx, projectPath)
		if err != nil {
			return nil, err
		}
	}

	logger.Logger.WithFields(map[string]interface{}{
		"project": projectPath,
		"file":    filePath,
		"branch":  branch,
	}).Debug("Fetching GitLab file content")

	opt := &gitlab.GetFileOptions{
		Ref: &branch,
	}

	file, _, err := c.client.RepositoryFiles.GetFile(projectPath, filePath, opt, gitlab.WithContext(ctx))
	if err != nil {
		logger.Logger.WithError(err).WithFields(map[string]interface{}{
			"project": projectPath,
			"file":    filePath,
			"branch":  branch,
		}).Error("Failed to fetch file from GitLab")
		return nil, fmt.Errorf("failed to fetch file %s: %w", filePath, err)
	}

	decoded, err := base64.StdEncoding.DecodeString(file.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}

	return decoded, nil
}

// TestConnection checks authentication when a token is set
func (c *Client) TestConnection(ctx context.Context) error {
	logger.Logger.WithField("base_url", c.baseURL).Debug("Testing GitLab connection")

	if c.token == "" {
		logger.Logger.WithField("base_url", c.baseURL).Debug("Using anonymous GitLab access")
		return nil
	}

	user, _, err := c.client.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		logger.Logger.WithError(err).WithField("base_url", c.baseURL).Error("Failed to authenticate with GitLab")
		return fmt.Errorf("failed to authenticate with GitLab: %w", err)
	}

	if user == nil {
		return fmt.Errorf("authentication failed: no user information returned")
	}

	logger.Logger.WithFields(map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"base_url": c.baseURL,
	}).Debug("GitLab connection test successful")
	return nil
}

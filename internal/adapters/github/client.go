package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"altiprofile/pkg/logger"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://api.github.com"

// Client wraps the GitHub API client for reading track logs from repositories
type Client struct {
	client  *github.Client
	baseURL string
	token   string
}

// NewClient creates a new GitHub client. Without a token only public
// repositories can be read.
func NewClient(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	var httpClient *http.Client
	if token != "" {
		tokenSource := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), tokenSource)
	}

	client := github.NewClient(httpClient)

	if baseURL != defaultBaseURL {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		newURL, err := client.BaseURL.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL: %w", err)
		}
		client.BaseURL = newURL
		logger.Logger.WithField("custom_base_url", client.BaseURL.String()).Debug("Set custom GitHub BaseURL")
	}

	return &Client{
		client:  client,
		baseURL: baseURL,
		token:   token,
	}, nil
}

// GetFileContent fetches the content of a file at branch, or at the default
// branch when branch is empty
func (c *Client) GetFileContent(ctx context.Context, owner, repo, filePath, branch string) ([]byte, error) {
	logger.Logger.WithFields(map[string]interface{}{
		"owner":      owner,
		"repository": repo,
		"file":       filePath,
		"branch":     branch,
	}).Debug("Fetching GitHub file content")

	opts := &github.RepositoryContentGetOptions{}
	if branch != "" {
		opts.Ref = branch
	}

	fileContent, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, filePath, opts)
	if err != nil {
		logger.Logger.WithError(err).WithFields(map[string]interface{}{
			"owner":      owner,
			"repository": repo,
			"file":       filePath,
			"branch":     branch,
		}).Error("Failed to fetch file from GitHub")
		return nil, fmt.Errorf("failed to fetch file %s: %w", filePath, err)
	}

	if fileContent == nil {
		return nil, fmt.Errorf("path %s is a directory", filePath)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}

	return []byte(content), nil
}

// TestConnection checks that the API answers. With a token it also checks
// authentication.
func (c *Client) TestConnection(ctx context.Context) error {
	logger.Logger.WithField("base_url", c.baseURL).Debug("Testing GitHub connection")

	if c.token == "" {
		if _, _, err := c.client.RateLimit.Get(ctx); err != nil {
			return fmt.Errorf("failed to reach GitHub: %w", err)
		}
		logger.Logger.WithField("base_url", c.baseURL).Debug("Using anonymous GitHub access")
		return nil
	}

	user, resp, err := c.client.Users.Get(ctx, "")
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		logger.Logger.WithError(err).WithFields(map[string]interface{}{
			"base_url":    c.baseURL,
			"status_code": status,
		}).Error("Failed to authenticate with GitHub")
		return fmt.Errorf("failed to authenticate with GitHub: %w", err)
	}

	if user == nil {
		return fmt.Errorf("authentication failed: no user information returned")
	}

	logger.Logger.WithFields(map[string]interface{}{
		"username": user.GetLogin(),
		"base_url": c.baseURL,
	}).Debug("GitHub connection test successful")
	return nil
}

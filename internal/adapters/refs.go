package adapters

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"altiprofile/pkg/models"
)

// shorthandPattern matches [platform:]repository:path, e.g.
// github:owner/repo:tracks/ride.csv
var shorthandPattern = regexp.MustCompile(`^(?:(github|gitlab):)?([^:\s]+/[^:\s]+):([^:\s]+)$`)

// ParseSourceRef parses a track log reference: "-" for standard input, a
// local file or directory, a GitHub or GitLab file URL, or the
// [platform:]repository:path[#branch] shorthand.
func ParseSourceRef(input string, defaultPlatform models.Platform) (*models.SourceInfo, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty track source")
	}

	if input == "-" {
		return &models.SourceInfo{Platform: models.PlatformStdin, Ref: input}, nil
	}

	if info, ok, err := parseLocalPath(input); ok || err != nil {
		return info, err
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return parseURL(input)
	}

	ref, branch := splitBranch(input)
	if matches := shorthandPattern.FindStringSubmatch(ref); matches != nil {
		platform := models.Platform(matches[1])
		if platform == "" {
			platform = defaultPlatform
		}
		if platform != models.PlatformGitLab {
			platform = models.PlatformGitHub
		}

		info := &models.SourceInfo{
			Platform:   platform,
			Repository: strings.TrimSuffix(matches[2], ".git"),
			Path:       strings.Trim(matches[3], "/"),
			Branch:     branch,
			Ref:        input,
		}
		if platform == models.PlatformGitHub {
			if _, _, err := parseGitHubRepoPath(info.Repository); err != nil {
				return nil, err
			}
		}
		return info, nil
	}

	return nil, fmt.Errorf("unrecognized track source %q: expected a CSV file, a directory, \"-\", a repository file URL or platform:owner/repo:path", input)
}

// splitBranch extracts the branch from a trailing #fragment
func splitBranch(input string) (string, string) {
	i := strings.LastIndex(input, "#")
	if i < 0 {
		return input, ""
	}
	return input[:i], input[i+1:]
}

func parseLocalPath(input string) (*models.SourceInfo, bool, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, false, nil
	}

	absPath, err := filepath.Abs(input)
	if err != nil {
		return nil, true, fmt.Errorf("invalid local path: %w", err)
	}

	if info.IsDir() {
		return &models.SourceInfo{
			Platform:   models.PlatformLocal,
			Repository: absPath,
			IsDir:      true,
			Ref:        input,
		}, true, nil
	}

	return &models.SourceInfo{
		Platform:   models.PlatformLocal,
		Repository: filepath.Dir(absPath),
		Path:       filepath.Base(absPath),
		Ref:        input,
	}, true, nil
}

func parseURL(input string) (*models.SourceInfo, error) {
	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	var info *models.SourceInfo
	switch u.Hostname() {
	case "github.com", "www.github.com":
		info, err = parseGitHubURL(u)
	case "raw.githubusercontent.com":
		info, err = parseGitHubRawURL(u)
	case "gitlab.com", "www.gitlab.com":
		info, err = parseGitLabURL(u)
	default:
		// Self-hosted instances are recognised by their URL layout.
		switch {
		case strings.Contains(u.Path, "/-/"):
			info, err = parseGitLabURL(u)
		case strings.Contains(u.Path, "/blob/") || strings.Contains(u.Path, "/raw/"):
			info, err = parseGitHubURL(u)
		default:
			err = fmt.Errorf("unrecognized repository host: %s", u.Hostname())
		}
	}
	if err != nil {
		return nil, err
	}

	info.Ref = input
	return info, nil
}

// parseGitHubURL handles https://github.com/owner/repo/blob/branch/path
func parseGitHubURL(u *url.URL) (*models.SourceInfo, error) {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 5 || (parts[2] != "blob" && parts[2] != "raw") {
		return nil, fmt.Errorf("invalid GitHub file URL format, expected https://github.com/owner/repo/blob/branch/path")
	}

	return &models.SourceInfo{
		Platform:   models.PlatformGitHub,
		Repository: parts[0] + "/" + parts[1],
		Branch:     parts[3],
		Path:       strings.Join(parts[4:], "/"),
	}, nil
}

// parseGitHubRawURL handles https://raw.githubusercontent.com/owner/repo/branch/path
func parseGitHubRawURL(u *url.URL) (*models.SourceInfo, error) {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid GitHub raw URL format")
	}

	return &models.SourceInfo{
		Platform:   models.PlatformGitHub,
		Repository: parts[0] + "/" + parts[1],
		Branch:     parts[2],
		Path:       strings.Join(parts[3:], "/"),
	}, nil
}

// parseGitLabURL handles https://gitlab.com/group/subgroup/project/-/blob/branch/path
func parseGitLabURL(u *url.URL) (*models.SourceInfo, error) {
	project, rest, found := strings.Cut(strings.Trim(u.Path, "/"), "/-/")
	if !found || !strings.Contains(project, "/") {
		return nil, fmt.Errorf("invalid GitLab file URL format, expected https://gitlab.com/group/project/-/blob/branch/path")
	}

	parts := strings.Split(rest, "/")
	if len(parts) < 3 || (parts[0] != "blob" && parts[0] != "raw") {
		return nil, fmt.Errorf("invalid GitLab file URL format, expected https://gitlab.com/group/project/-/blob/branch/path")
	}

	return &models.SourceInfo{
		Platform:   models.PlatformGitLab,
		Repository: strings.TrimSuffix(project, ".git"),
		Branch:     parts[1],
		Path:       strings.Join(parts[2:], "/"),
	}, nil
}

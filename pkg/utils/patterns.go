package utils

import (
	"path/filepath"
	"strings"
)

// PatternMatcher selects track log files by ignore and include patterns
type PatternMatcher struct {
	ignorePatterns  []string
	includePatterns []string
}

// NewPatternMatcher creates a new pattern matcher
func NewPatternMatcher(ignorePatterns, includePatterns []string) *PatternMatcher {
	return &PatternMatcher{
		ignorePatterns:  ignorePatterns,
		includePatterns: includePatterns,
	}
}

// ShouldIgnore checks if a file should be ignored based on ignore patterns
func (pm *PatternMatcher) ShouldIgnore(filePath string) bool {
	for _, pattern := range pm.ignorePatterns {
		if pm.matchesPattern(filePath, pattern) {
			return true
		}
	}
	return false
}

// ShouldInclude checks if a file should be included based on include patterns.
// Everything is included when no include pattern is set.
func (pm *PatternMatcher) ShouldInclude(filePath string) bool {
	if len(pm.includePatterns) == 0 {
		return true
	}

	for _, pattern := range pm.includePatterns {
		if pm.matchesPattern(filePath, pattern) {
			return true
		}
	}
	return false
}

// Matches reports whether a file is included and not ignored
func (pm *PatternMatcher) Matches(filePath string) bool {
	return pm.ShouldInclude(filePath) && !pm.ShouldIgnore(filePath)
}

func (pm *PatternMatcher) matchesPattern(filePath, pattern string) bool {
	filePath = filepath.ToSlash(filePath)

	if matched, err := filepath.Match(pattern, filepath.Base(filePath)); err == nil && matched {
		return true
	}

	if matched, err := filepath.Match(pattern, filePath); err == nil && matched {
		return true
	}

	// Directory patterns end with a slash.
	if strings.HasSuffix(pattern, "/") {
		dirPattern := strings.TrimSuffix(pattern, "/")
		if strings.HasPrefix(filePath, dirPattern+"/") || strings.Contains(filePath, "/"+dirPattern+"/") {
			return true
		}
	}

	return false
}

// ParsePatterns parses comma-separated pattern strings into slices
func ParsePatterns(patternStr string) []string {
	if patternStr == "" {
		return nil
	}

	patterns := strings.Split(patternStr, ",")
	var result []string

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern != "" {
			result = append(result, pattern)
		}
	}

	return result
}

package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([KMG]?B)$`)

// FormatBytes formats byte counts into human-readable strings
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

// ParseSize parses size strings like "1MB", "500KB" into bytes
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(strings.ToUpper(sizeStr))

	multipliers := map[string]int64{
		"B":  1,
		"KB": 1024,
		"MB": 1024 * 1024,
		"GB": 1024 * 1024 * 1024,
	}

	matches := sizePattern.FindStringSubmatch(sizeStr)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid size format: %s", sizeStr)
	}

	size, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size number: %s", matches[1])
	}

	return int64(size * float64(multipliers[matches[2]])), nil
}

// IsTextContent determines if content is text-based
func IsTextContent(content []byte) bool {
	if len(content) == 0 {
		return true
	}

	s := string(content)
	if strings.ContainsRune(s, '\x00') {
		return false
	}

	// More than 20% non-printable runes means binary.
	nonPrintable, total := 0, 0
	for _, r := range s {
		total++
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) && r != '\uFEFF' {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(total) <= 0.2
}

// SanitizeFileName replaces characters that are unsafe in file names
func SanitizeFileName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"<", "_",
		">", "_",
		"|", "_",
		"\"", "_",
		" ", "_",
	)
	return replacer.Replace(name)
}

// StemName returns the base name of a path without its extension
func StemName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Package config parses exclusion list options and loads application
// configuration files.
package config

import (
	"strings"

	"github.com/osorio/projscan/internal/utils"
)

// DefaultIgnoredDirectoryNames lists directory names pruned on every scan
// unless the user supplies an explicit replacement list.
var DefaultIgnoredDirectoryNames = []string{
	"node_modules", ".git", "__pycache__", ".venv", "venv",
	".next", "dist", "build", ".nuxt", ".pytest_cache", ".mypy_cache",
}

// baseDiscardedFileNames are operating-system litter files excluded from
// every scan regardless of user configuration.
var baseDiscardedFileNames = []string{".DS_Store", "Thumbs.db"}

const (
	listEntrySeparatorComma   = ","
	listEntrySeparatorNewline = "\n"
)

// ParseListOption converts a comma- or newline-separated option value into a
// deduplicated slice of trimmed, non-empty entries. An empty value yields an
// empty slice.
func ParseListOption(optionValue string) []string {
	if strings.TrimSpace(optionValue) == "" {
		return nil
	}
	normalizedValue := strings.ReplaceAll(optionValue, listEntrySeparatorComma, listEntrySeparatorNewline)
	var entries []string
	for _, rawEntry := range strings.Split(normalizedValue, listEntrySeparatorNewline) {
		trimmedEntry := strings.TrimSpace(rawEntry)
		if trimmedEntry == "" {
			continue
		}
		entries = append(entries, trimmedEntry)
	}
	return utils.DeduplicateValues(entries)
}

// NormalizePathPrefixes cleans relative path prefixes for prefix matching:
// backslashes become slashes and leading "./" plus trailing "/" are removed.
func NormalizePathPrefixes(prefixes []string) []string {
	var normalized []string
	for _, prefix := range prefixes {
		cleaned := strings.ReplaceAll(prefix, "\\", "/")
		cleaned = strings.TrimPrefix(cleaned, "./")
		cleaned = strings.Trim(cleaned, "/")
		if cleaned == "" || cleaned == "." {
			continue
		}
		normalized = append(normalized, cleaned)
	}
	return utils.DeduplicateValues(normalized)
}

// MergeBaseFileNames appends the always-ignored file names to the provided
// discard-files list.
func MergeBaseFileNames(discardFileNames []string) []string {
	merged := append([]string{}, discardFileNames...)
	merged = append(merged, baseDiscardedFileNames...)
	return utils.DeduplicateValues(merged)
}

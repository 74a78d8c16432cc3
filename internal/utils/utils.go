// Package utils contains general helper functions used across the projscan tool.
package utils

import (
	"path/filepath"
)

const (
	// RootRelativePath is the relative path the scan root reports for itself.
	RootRelativePath = "."
)

// DeduplicateValues removes duplicate strings from a slice while preserving
// order. The first occurrence of each unique value is kept.
func DeduplicateValues(values []string) []string {
	encounteredValues := make(map[string]struct{})
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := encounteredValues[value]; !exists {
			encounteredValues[value] = struct{}{}
			result = append(result, value)
		}
	}
	return result
}

// RelativePathOrSelf calculates the slash-separated relative path from root to
// fullPath. Returns the cleaned fullPath if relative calculation fails and
// RootRelativePath if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return RootRelativePath
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

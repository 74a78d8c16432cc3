// Package scan implements the exclusion matcher and the filtered directory
// tree walker.
package scan

import (
	"strings"

	"github.com/osorio/projscan/internal/config"
	"github.com/osorio/projscan/internal/utils"
)

const pathSegmentSeparator = "/"

// RuleSet holds the three independent exclusion lists applied during a scan.
// All matching is exact, case-sensitive path-segment equality.
type RuleSet struct {
	// DiscardFiles lists exact basenames excluded wherever they appear.
	DiscardFiles []string
	// DiscardAllIn lists directory names whose entire subtree is pruned
	// wherever the directory appears.
	DiscardAllIn []string
	// DiscardFilesIn lists root-relative path prefixes whose entire subtree
	// is pruned.
	DiscardFilesIn []string
}

// NewRuleSet combines user-supplied exclusion lists with the built-in base
// sets: ignoredDirectoryNames join DiscardAllIn and the always-ignored file
// names join DiscardFiles.
func NewRuleSet(ignoredDirectoryNames, discardFiles, discardAllIn, discardFilesIn []string) RuleSet {
	return RuleSet{
		DiscardFiles:   config.MergeBaseFileNames(discardFiles),
		DiscardAllIn:   utils.DeduplicateValues(append(append([]string{}, discardAllIn...), ignoredDirectoryNames...)),
		DiscardFilesIn: config.NormalizePathPrefixes(discardFilesIn),
	}
}

// Matcher decides whether a path relative to the scan root is excluded. It is
// a pure predicate performing no I/O; the scan root itself is never excluded.
type Matcher struct {
	discardedFileNames      map[string]struct{}
	discardedDirectoryNames map[string]struct{}
	discardedPathPrefixes   []string
}

// NewMatcher builds a Matcher from the provided rule set.
func NewMatcher(rules RuleSet) *Matcher {
	matcher := &Matcher{
		discardedFileNames:      make(map[string]struct{}, len(rules.DiscardFiles)),
		discardedDirectoryNames: make(map[string]struct{}, len(rules.DiscardAllIn)),
		discardedPathPrefixes:   append([]string{}, rules.DiscardFilesIn...),
	}
	for _, fileName := range rules.DiscardFiles {
		matcher.discardedFileNames[fileName] = struct{}{}
	}
	for _, directoryName := range rules.DiscardAllIn {
		matcher.discardedDirectoryNames[directoryName] = struct{}{}
	}
	return matcher
}

// IsExcluded reports whether the slash-separated path relative to the scan
// root matches any exclusion rule. A match on a directory-name or prefix rule
// is a hard prune: callers must not descend into a path for which IsExcluded
// returned true.
func (matcher *Matcher) IsExcluded(relativePath string) bool {
	normalizedPath := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	if normalizedPath == "" || normalizedPath == utils.RootRelativePath {
		return false
	}

	pathSegments := strings.Split(normalizedPath, pathSegmentSeparator)
	lastSegment := pathSegments[len(pathSegments)-1]

	if _, isDiscardedFile := matcher.discardedFileNames[lastSegment]; isDiscardedFile {
		return true
	}

	for _, pathSegment := range pathSegments {
		if _, isDiscardedDirectory := matcher.discardedDirectoryNames[pathSegment]; isDiscardedDirectory {
			return true
		}
	}

	for _, pathPrefix := range matcher.discardedPathPrefixes {
		if normalizedPath == pathPrefix || strings.HasPrefix(normalizedPath, pathPrefix+pathSegmentSeparator) {
			return true
		}
	}

	return false
}

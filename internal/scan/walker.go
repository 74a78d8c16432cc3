package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/osorio/projscan/internal/types"
	"github.com/osorio/projscan/internal/utils"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorRootMissingFormat is used when the scan root does not exist.
	errorRootMissingFormat = "root path %s does not exist"
	// errorRootStatFormat is used when the scan root cannot be inspected.
	errorRootStatFormat = "inspecting root path %s: %w"
	// errorRootNotDirectoryFormat is used when the scan root is not a directory.
	errorRootNotDirectoryFormat = "root path %s is not a directory"
	// errorReadDirectoryFormat is used when a directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"

	// warningSkipSubdirMessage is logged when a subdirectory cannot be read.
	warningSkipSubdirMessage = "skipping unreadable subdirectory"
	// warningManifestMessage is logged when a package manifest cannot be parsed.
	warningManifestMessage = "ignoring unreadable package manifest"
)

// Walker produces the filtered directory tree for a scan root. The zero
// Logger is not usable; construct walkers with NewWalker.
type Walker struct {
	matcher *Matcher
	logger  *zap.Logger
}

// NewWalker constructs a Walker using the provided matcher and logger.
func NewWalker(matcher *Matcher, logger *zap.Logger) *Walker {
	return &Walker{matcher: matcher, logger: logger}
}

// Walk validates the root path and returns the root node of the filtered
// tree. The root itself is never subject to exclusion rules. Unreadable
// subdirectories below the root are logged and left without children;
// an unreadable root is an error.
func (walker *Walker) Walk(rootDirectoryPath string) (*types.TreeNode, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}

	rootInformation, rootStatError := os.Stat(absoluteRootPath)
	if rootStatError != nil {
		if os.IsNotExist(rootStatError) {
			return nil, fmt.Errorf(errorRootMissingFormat, rootDirectoryPath)
		}
		return nil, fmt.Errorf(errorRootStatFormat, rootDirectoryPath, rootStatError)
	}
	if !rootInformation.IsDir() {
		return nil, fmt.Errorf(errorRootNotDirectoryFormat, rootDirectoryPath)
	}

	rootNode := &types.TreeNode{
		Name: filepath.Base(absoluteRootPath),
		Path: utils.RootRelativePath,
		Type: types.NodeTypeDirectory,
	}

	children, buildError := walker.buildChildNodes(absoluteRootPath, absoluteRootPath)
	if buildError != nil {
		return nil, buildError
	}
	rootNode.Children = children

	return rootNode, nil
}

// buildChildNodes lists one directory, filters its entries through the
// matcher, and recurses into surviving subdirectories.
func (walker *Walker) buildChildNodes(currentDirectoryPath, rootDirectoryPath string) ([]*types.TreeNode, error) {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, currentDirectoryPath, readDirectoryError)
	}

	sortDirectoryEntries(directoryEntries)

	var nodes []*types.TreeNode
	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(currentDirectoryPath, directoryEntry.Name())
		relativeChildPath := utils.RelativePathOrSelf(childPath, rootDirectoryPath)
		if walker.matcher.IsExcluded(relativeChildPath) {
			continue
		}

		node := &types.TreeNode{
			Name: directoryEntry.Name(),
			Path: relativeChildPath,
		}

		if directoryEntry.IsDir() {
			node.Type = types.NodeTypeDirectory
			childNodes, buildError := walker.buildChildNodes(childPath, rootDirectoryPath)
			if buildError != nil {
				walker.logger.Warn(warningSkipSubdirMessage,
					zap.String("path", relativeChildPath),
					zap.Error(buildError))
				node.Children = nil
			} else {
				node.Children = childNodes
			}
		} else {
			node.Type = types.NodeTypeFile
			isSymbolicLink := directoryEntry.Type()&fs.ModeSymlink != 0
			if !isSymbolicLink && directoryEntry.Name() == packageManifestFileName {
				walker.attachManifest(node, childPath, relativeChildPath)
			}
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// attachManifest decorates a package.json node with its scripts and
// dependency maps. Parse failures degrade to a plain file node.
func (walker *Walker) attachManifest(node *types.TreeNode, manifestPath, relativeManifestPath string) {
	manifest, manifestError := readPackageManifest(manifestPath)
	if manifestError != nil {
		walker.logger.Warn(warningManifestMessage,
			zap.String("path", relativeManifestPath),
			zap.Error(manifestError))
		return
	}
	node.Scripts = manifest.Scripts
	node.Dependencies = manifest.Dependencies
	node.DevDependencies = manifest.DevDependencies
}

// sortDirectoryEntries orders entries directories-first, then
// case-insensitively by name, so sibling order is stable across platforms.
func sortDirectoryEntries(directoryEntries []os.DirEntry) {
	sort.SliceStable(directoryEntries, func(firstIndex, secondIndex int) bool {
		firstEntry := directoryEntries[firstIndex]
		secondEntry := directoryEntries[secondIndex]
		if firstEntry.IsDir() != secondEntry.IsDir() {
			return firstEntry.IsDir()
		}
		firstName := strings.ToLower(firstEntry.Name())
		secondName := strings.ToLower(secondEntry.Name())
		if firstName != secondName {
			return firstName < secondName
		}
		return firstEntry.Name() < secondEntry.Name()
	})
}

// Package types defines every cross-package data structure used by the projscan CLI.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
)

// TreeNode represents a single filesystem entry in the filtered project tree.
// Path is always relative to the scan root and slash-separated; the root node
// uses ".". Children is nil for files and ordered directories-first, then
// case-insensitively by name, for directories.
type TreeNode struct {
	Name            string            `json:"name"`
	Path            string            `json:"path"`
	Type            string            `json:"type"`
	Scripts         map[string]string `json:"scripts,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	Children        []*TreeNode       `json:"children,omitempty"`
}

// IsDirectory reports whether the node represents a directory.
func (node *TreeNode) IsDirectory() bool {
	return node != nil && node.Type == NodeTypeDirectory
}

// Package output renders the scanned project tree as JSON and as a
// box-drawing text tree, and writes both to their configured sinks.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/osorio/projscan/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directoryNameSuffix = "/"

	markdownTreeHeader = "# Project Tree"
	markdownFenceLine  = "```"

	// errorEncodeJSONFormat is used when tree serialization fails.
	errorEncodeJSONFormat = "encoding project structure: %w"
	// errorWriteFileFormat is used when an output artifact cannot be written.
	errorWriteFileFormat = "writing %s: %w"

	outputFilePermissions = 0o644
)

// RenderJSON serializes the tree as an indented JSON document. The root node
// is wrapped in an object keyed by the root directory name, so the document
// reads naturally in editors and downstream tooling.
func RenderJSON(rootNode *types.TreeNode) (string, error) {
	document := map[string]*types.TreeNode{rootNode.Name: rootNode}
	encoded, encodeError := json.MarshalIndent(document, indentPrefix, indentSpacer)
	if encodeError != nil {
		return "", fmt.Errorf(errorEncodeJSONFormat, encodeError)
	}
	return string(encoded) + "\n", nil
}

// WriteJSONFile renders the tree as JSON and writes it to the given path,
// creating or overwriting the file.
func WriteJSONFile(outputPath string, rootNode *types.TreeNode) error {
	renderedJSON, renderError := RenderJSON(rootNode)
	if renderError != nil {
		return renderError
	}
	if writeError := os.WriteFile(outputPath, []byte(renderedJSON), outputFilePermissions); writeError != nil {
		return fmt.Errorf(errorWriteFileFormat, outputPath, writeError)
	}
	return nil
}

// RenderTreePlain renders the tree without color, suitable for files and the
// clipboard. Identical trees always produce identical text.
func RenderTreePlain(rootNode *types.TreeNode) string {
	var builder strings.Builder
	renderTreeNode(&builder, rootNode, "", plainPainter{}, true, true)
	return builder.String()
}

// WriteTree renders the tree to the provided writer using the given painter.
func WriteTree(writer io.Writer, rootNode *types.TreeNode, paint Painter) error {
	var builder strings.Builder
	renderTreeNode(&builder, rootNode, "", paint, true, true)
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

// WriteTreeMarkdownFile writes the plain rendered tree into a Markdown file
// wrapped in a fenced code block, creating or overwriting the file.
func WriteTreeMarkdownFile(treeFilePath string, rootNode *types.TreeNode) error {
	renderedTree := RenderTreePlain(rootNode)
	markdownContent := markdownTreeHeader + "\n\n" + markdownFenceLine + "\n" + renderedTree + markdownFenceLine + "\n"
	if writeError := os.WriteFile(treeFilePath, []byte(markdownContent), outputFilePermissions); writeError != nil {
		return fmt.Errorf(errorWriteFileFormat, treeFilePath, writeError)
	}
	return nil
}

// treeNodeLinePrefix returns the connector prefix for a node's own line and
// the padding prefix inherited by its children.
func treeNodeLinePrefix(prefix string, isRoot, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderTreeNode(builder *strings.Builder, node *types.TreeNode, prefix string, paint Painter, isRoot, isLast bool) {
	if node == nil {
		return
	}
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	if node.IsDirectory() {
		builder.WriteString(linePrefix + paint.Directory(node.Name+directoryNameSuffix) + "\n")
		for childIndex, childNode := range node.Children {
			renderTreeNode(builder, childNode, childPrefix, paint, false, childIndex == len(node.Children)-1)
		}
		return
	}
	builder.WriteString(linePrefix + paint.File(node.Name) + "\n")
}

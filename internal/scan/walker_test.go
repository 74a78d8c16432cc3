package scan_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/osorio/projscan/internal/scan"
	"github.com/osorio/projscan/internal/types"
)

const (
	manifestFileName = "package.json"
	manifestContent  = `{"scripts":{"build":"tsc"},"dependencies":{"react":"^18.0.0"},"devDependencies":{"jest":"^29.0.0"}}`
)

func newTestWalker(ruleSet scan.RuleSet) *scan.Walker {
	return scan.NewWalker(scan.NewMatcher(ruleSet), zap.NewNop())
}

func writeFixtureFile(testingHandle *testing.T, filePath, content string) {
	testingHandle.Helper()
	if makeDirError := os.MkdirAll(filepath.Dir(filePath), 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir %s: %v", filepath.Dir(filePath), makeDirError)
	}
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("write %s: %v", filePath, writeError)
	}
}

// collectPaths flattens a tree into the relative paths of every node below
// the root.
func collectPaths(node *types.TreeNode) []string {
	var paths []string
	for _, childNode := range node.Children {
		paths = append(paths, childNode.Path)
		paths = append(paths, collectPaths(childNode)...)
	}
	return paths
}

func findChild(node *types.TreeNode, name string) *types.TreeNode {
	for _, childNode := range node.Children {
		if childNode.Name == name {
			return childNode
		}
	}
	return nil
}

// TestWalkFiltersExcludedSubtrees reproduces the canonical filtering
// scenario: pruned directories and discarded files disappear while everything
// else survives at its original depth.
func TestWalkFiltersExcludedSubtrees(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "src", "main.py"), "print()")
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "src", ".git", "config"), "[core]")
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "README.md"), "# readme")
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "node_modules", "pkg", "index.js"), "module.exports = {}")

	walker := newTestWalker(scan.RuleSet{
		DiscardAllIn: []string{".git", "node_modules"},
		DiscardFiles: []string{"README.md"},
	})
	rootNode, walkError := walker.Walk(rootDirectory)
	if walkError != nil {
		testingHandle.Fatalf("Walk error: %v", walkError)
	}

	wantPaths := []string{"src", "src/main.py"}
	gotPaths := collectPaths(rootNode)
	if !reflect.DeepEqual(gotPaths, wantPaths) {
		testingHandle.Fatalf("surviving paths = %v, want %v", gotPaths, wantPaths)
	}
}

// TestWalkEmptyConfiguration verifies a single file survives untouched when
// no exclusion rules are configured.
func TestWalkEmptyConfiguration(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "a.txt"), "a")

	rootNode, walkError := newTestWalker(scan.RuleSet{}).Walk(rootDirectory)
	if walkError != nil {
		testingHandle.Fatalf("Walk error: %v", walkError)
	}
	if len(rootNode.Children) != 1 {
		testingHandle.Fatalf("expected exactly one child, got %d", len(rootNode.Children))
	}
	fileNode := rootNode.Children[0]
	if fileNode.Name != "a.txt" || fileNode.Type != types.NodeTypeFile || fileNode.Path != "a.txt" {
		testingHandle.Fatalf("unexpected file node: %+v", fileNode)
	}
	if rootNode.Path != "." || rootNode.Type != types.NodeTypeDirectory {
		testingHandle.Fatalf("unexpected root node: %+v", rootNode)
	}
}

// TestWalkSortsDirectoriesFirst verifies sibling ordering: directories before
// files, each group case-insensitively alphabetical.
func TestWalkSortsDirectoriesFirst(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "zeta.txt"), "z")
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "Alpha.txt"), "a")
	if makeDirError := os.MkdirAll(filepath.Join(rootDirectory, "web"), 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir: %v", makeDirError)
	}
	if makeDirError := os.MkdirAll(filepath.Join(rootDirectory, "Docs"), 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir: %v", makeDirError)
	}

	rootNode, walkError := newTestWalker(scan.RuleSet{}).Walk(rootDirectory)
	if walkError != nil {
		testingHandle.Fatalf("Walk error: %v", walkError)
	}

	var gotNames []string
	for _, childNode := range rootNode.Children {
		gotNames = append(gotNames, childNode.Name)
	}
	wantNames := []string{"Docs", "web", "Alpha.txt", "zeta.txt"}
	if !reflect.DeepEqual(gotNames, wantNames) {
		testingHandle.Fatalf("sibling order = %v, want %v", gotNames, wantNames)
	}
}

// TestWalkIsDeterministic verifies two scans of an unchanged directory yield
// identical trees.
func TestWalkIsDeterministic(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "src", "app.go"), "package app")
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "src", "app_test.go"), "package app")
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "docs", "index.md"), "# docs")

	walker := newTestWalker(scan.RuleSet{})
	firstTree, firstError := walker.Walk(rootDirectory)
	if firstError != nil {
		testingHandle.Fatalf("first Walk error: %v", firstError)
	}
	secondTree, secondError := walker.Walk(rootDirectory)
	if secondError != nil {
		testingHandle.Fatalf("second Walk error: %v", secondError)
	}
	if !reflect.DeepEqual(firstTree, secondTree) {
		testingHandle.Fatalf("repeated scans produced different trees")
	}
}

// TestWalkMissingRoot verifies the walk fails fast when the root does not
// exist or is not a directory.
func TestWalkMissingRoot(testingHandle *testing.T) {
	missingPath := filepath.Join(testingHandle.TempDir(), "does-not-exist")
	if _, walkError := newTestWalker(scan.RuleSet{}).Walk(missingPath); walkError == nil {
		testingHandle.Fatalf("expected error for missing root")
	}

	filePath := filepath.Join(testingHandle.TempDir(), "plain.txt")
	writeFixtureFile(testingHandle, filePath, "x")
	if _, walkError := newTestWalker(scan.RuleSet{}).Walk(filePath); walkError == nil {
		testingHandle.Fatalf("expected error for non-directory root")
	}
}

// TestWalkSkipsUnreadableSubdirectory verifies an unreadable subdirectory is
// warned about and left without children while siblings survive and the walk
// still succeeds.
func TestWalkSkipsUnreadableSubdirectory(testingHandle *testing.T) {
	if os.Geteuid() == 0 {
		testingHandle.Skip("directory permissions are not enforced for root")
	}

	rootDirectory := testingHandle.TempDir()
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "locked", "hidden.txt"), "x")
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "open", "visible.txt"), "x")

	lockedDirectory := filepath.Join(rootDirectory, "locked")
	if chmodError := os.Chmod(lockedDirectory, 0o000); chmodError != nil {
		testingHandle.Fatalf("chmod: %v", chmodError)
	}
	testingHandle.Cleanup(func() {
		if chmodError := os.Chmod(lockedDirectory, 0o755); chmodError != nil {
			testingHandle.Errorf("restoring permissions on %s: %v", lockedDirectory, chmodError)
		}
	})

	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	walker := scan.NewWalker(scan.NewMatcher(scan.RuleSet{}), zap.New(observedCore))

	rootNode, walkError := walker.Walk(rootDirectory)
	if walkError != nil {
		testingHandle.Fatalf("Walk error: %v", walkError)
	}

	lockedNode := findChild(rootNode, "locked")
	if lockedNode == nil {
		testingHandle.Fatalf("unreadable directory missing from tree")
	}
	if lockedNode.Type != types.NodeTypeDirectory || len(lockedNode.Children) != 0 {
		testingHandle.Fatalf("unreadable directory should be an empty directory node: %+v", lockedNode)
	}

	openNode := findChild(rootNode, "open")
	if openNode == nil || len(openNode.Children) != 1 || openNode.Children[0].Name != "visible.txt" {
		testingHandle.Fatalf("sibling subtree did not survive: %+v", openNode)
	}

	if observedLogs.Len() != 1 {
		testingHandle.Fatalf("expected one warning for the unreadable directory, got %d", observedLogs.Len())
	}
}

// TestWalkTreatsSymlinkAsLeaf verifies symbolic links are opaque file nodes
// and are never followed.
func TestWalkTreatsSymlinkAsLeaf(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	targetDirectory := filepath.Join(rootDirectory, "real")
	writeFixtureFile(testingHandle, filepath.Join(targetDirectory, "inner.txt"), "x")
	linkPath := filepath.Join(rootDirectory, "link")
	if symlinkError := os.Symlink(targetDirectory, linkPath); symlinkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", symlinkError)
	}

	rootNode, walkError := newTestWalker(scan.RuleSet{}).Walk(rootDirectory)
	if walkError != nil {
		testingHandle.Fatalf("Walk error: %v", walkError)
	}
	linkNode := findChild(rootNode, "link")
	if linkNode == nil {
		testingHandle.Fatalf("symlink node missing from tree")
	}
	if linkNode.Type != types.NodeTypeFile || len(linkNode.Children) != 0 {
		testingHandle.Fatalf("symlink was not treated as an opaque leaf: %+v", linkNode)
	}
}

// TestWalkAttachesPackageManifest verifies package.json scripts and
// dependencies surface on the node and malformed manifests degrade to plain
// file nodes.
func TestWalkAttachesPackageManifest(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, manifestFileName), manifestContent)
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "broken", manifestFileName), "{not json")

	rootNode, walkError := newTestWalker(scan.RuleSet{}).Walk(rootDirectory)
	if walkError != nil {
		testingHandle.Fatalf("Walk error: %v", walkError)
	}

	manifestNode := findChild(rootNode, manifestFileName)
	if manifestNode == nil {
		testingHandle.Fatalf("manifest node missing from tree")
	}
	if manifestNode.Scripts["build"] != "tsc" {
		testingHandle.Fatalf("manifest scripts not attached: %+v", manifestNode)
	}
	if manifestNode.Dependencies["react"] != "^18.0.0" || manifestNode.DevDependencies["jest"] != "^29.0.0" {
		testingHandle.Fatalf("manifest dependencies not attached: %+v", manifestNode)
	}

	brokenDirectory := findChild(rootNode, "broken")
	if brokenDirectory == nil {
		testingHandle.Fatalf("broken directory missing from tree")
	}
	brokenNode := findChild(brokenDirectory, manifestFileName)
	if brokenNode == nil {
		testingHandle.Fatalf("malformed manifest missing from tree")
	}
	if brokenNode.Scripts != nil || brokenNode.Dependencies != nil {
		testingHandle.Fatalf("malformed manifest should remain a plain file node: %+v", brokenNode)
	}
}

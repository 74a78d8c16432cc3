package scan

import (
	"encoding/json"
	"fmt"
	"os"
)

// packageManifestFileName is the npm manifest whose scripts and dependency
// maps are surfaced on its tree node.
const packageManifestFileName = "package.json"

// packageManifest captures the subset of package.json surfaced in scan output.
type packageManifest struct {
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// readPackageManifest parses the manifest at the given path.
//
// #nosec G304
func readPackageManifest(manifestPath string) (*packageManifest, error) {
	manifestBytes, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", manifestPath, readError)
	}
	var manifest packageManifest
	if unmarshalError := json.Unmarshal(manifestBytes, &manifest); unmarshalError != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", manifestPath, unmarshalError)
	}
	return &manifest, nil
}

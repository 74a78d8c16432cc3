package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/osorio/projscan/internal/utils"
)

const (
	// LocalConfigFileName is the per-project configuration file looked up in
	// the working directory.
	LocalConfigFileName = ".projscan.yaml"
	// GlobalConfigDirectoryName is the directory under the user home that
	// holds the global configuration file.
	GlobalConfigDirectoryName = ".projscan"
	// GlobalConfigFileName is the configuration file inside the global
	// configuration directory.
	GlobalConfigFileName = "config.yaml"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds scan defaults loaded from configuration
// files. Flag values supplied on the command line take precedence over every
// field here.
type ApplicationConfiguration struct {
	Output    string               `mapstructure:"output"`
	Pretty    *bool                `mapstructure:"pretty"`
	TreeFile  string               `mapstructure:"tree_md"`
	Clipboard *bool                `mapstructure:"clipboard"`
	Ignore    []string             `mapstructure:"ignore"`
	Discard   DiscardConfiguration `mapstructure:"discard"`
}

// DiscardConfiguration mirrors the three exclusion lists accepted on the
// command line.
type DiscardConfiguration struct {
	Files   []string `mapstructure:"files"`
	FilesIn []string `mapstructure:"files_in"`
	AllIn   []string `mapstructure:"all_in"`
}

// LoadApplicationConfiguration loads configuration from the global and local
// files, merging local values over global ones. Missing files are not errors.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, GlobalConfigDirectoryName, GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Ignore = utils.DeduplicateValues(merged.Ignore)
	merged.Discard.Files = utils.DeduplicateValues(merged.Discard.Files)
	merged.Discard.FilesIn = utils.DeduplicateValues(merged.Discard.FilesIn)
	merged.Discard.AllIn = utils.DeduplicateValues(merged.Discard.AllIn)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var configuration ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&configuration); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Pretty != nil {
		result.Pretty = cloneBool(override.Pretty)
	}
	if override.TreeFile != "" {
		result.TreeFile = override.TreeFile
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	if len(override.Ignore) > 0 {
		result.Ignore = append([]string{}, override.Ignore...)
	}
	result.Discard = result.Discard.merge(override.Discard)
	return result
}

func (configuration DiscardConfiguration) merge(override DiscardConfiguration) DiscardConfiguration {
	result := configuration
	if len(override.Files) > 0 {
		result.Files = append([]string{}, override.Files...)
	}
	if len(override.FilesIn) > 0 {
		result.FilesIn = append([]string{}, override.FilesIn...)
	}
	if len(override.AllIn) > 0 {
		result.AllIn = append([]string{}, override.AllIn...)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

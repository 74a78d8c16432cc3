// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osorio/projscan/internal/config"
	"github.com/osorio/projscan/internal/output"
	"github.com/osorio/projscan/internal/scan"
	"github.com/osorio/projscan/internal/services/clipboard"
	"github.com/osorio/projscan/internal/utils"
)

const (
	outputFlagName         = "output"
	outputFlagShorthand    = "o"
	ignoreFlagName         = "ignore"
	ignoreFlagShorthand    = "i"
	discardFilesInFlagName = "discard-files-in"
	discardAllInFlagName   = "discard-all-in"
	discardFilesFlagName   = "discard-files"
	prettyFlagName         = "pretty"
	prettyFlagShorthand    = "p"
	treeFileFlagName       = "tree-md"
	copyFlagName           = "copy"
	configFlagName         = "config"
	versionFlagName        = "version"
	versionTemplate        = "projscan version: %s\n"

	defaultJSONOutputPath = "project_structure.json"

	rootUse              = "projscan <directory>"
	rootShortDescription = "scan a project directory into a filtered file tree"
	rootLongDescription  = `projscan walks a project directory, prunes entries matched by the configured
exclusion rules, and writes the surviving structure as a JSON document.
The same tree can be printed to the console, saved as Markdown, and copied
to the clipboard.`
	rootUsageExample = `  # Scan the current project, skipping dependency and VCS directories
  projscan . --discard-all-in "node_modules,.git"

  # Print the tree and save it to TREE.md alongside the JSON document
  projscan ./service --pretty --tree-md TREE.md

  # Prune generated assets by path prefix and drop lockfiles everywhere
  projscan . --discard-files-in "web/static,docs/build" --discard-files "package-lock.json"`

	outputFlagDescription         = "path of the JSON document to write"
	ignoreFlagDescription         = "directory names to prune (replaces the built-in list)"
	discardFilesInFlagDescription = "relative path prefixes to prune, comma- or newline-separated"
	discardAllInFlagDescription   = "directory names to prune wherever found, comma- or newline-separated"
	discardFilesFlagDescription   = "exact filenames to exclude anywhere, comma-separated"
	prettyFlagDescription         = "print the rendered tree to the console"
	treeFileFlagDescription       = "write the rendered tree to the given Markdown file"
	copyFlagDescription           = "copy the rendered tree to the clipboard"
	configFlagDescription         = "explicit configuration file"
	versionFlagDescription        = "display application version"

	scanningMessage       = "scanning"
	jsonSavedMessage      = "JSON saved"
	treeFileSavedMessage  = "tree saved"
	treeCopiedMessage     = "tree copied to clipboard"
	pathLogField          = "path"
	errorClipboardFormat  = "copying tree to clipboard: %w"
	errorResolveOutFormat = "resolving output path %s: %w"
)

// Execute runs the projscan application.
func Execute(logger *zap.Logger) error {
	rootCommand := NewRootCommand(logger, clipboard.NewService())
	return rootCommand.Execute()
}

// scanFlags stores raw flag values before they are merged with configuration
// file defaults.
type scanFlags struct {
	outputPath         string
	ignoreNames        []string
	discardFilesOption string
	discardAllInOption string
	discardFilesInOpt  string
	prettyPrint        bool
	treeFilePath       string
	copyToClipboard    bool
	configFilePath     string
}

// NewRootCommand builds the projscan Cobra command. The copier is injected so
// tests can capture clipboard writes.
func NewRootCommand(logger *zap.Logger, copier clipboard.Copier) *cobra.Command {
	var showVersion bool
	var flags scanFlags

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runScan(command, arguments[0], flags, logger, copier)
		},
	}
	rootCommand.PersistentPreRun = func(command *cobra.Command, arguments []string) {
		if showVersion {
			fmt.Printf(versionTemplate, utils.GetApplicationVersion())
			os.Exit(0)
		}
	}

	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.Flags().StringVarP(&flags.outputPath, outputFlagName, outputFlagShorthand, defaultJSONOutputPath, outputFlagDescription)
	rootCommand.Flags().StringArrayVarP(&flags.ignoreNames, ignoreFlagName, ignoreFlagShorthand, config.DefaultIgnoredDirectoryNames, ignoreFlagDescription)
	rootCommand.Flags().StringVar(&flags.discardFilesInOpt, discardFilesInFlagName, "", discardFilesInFlagDescription)
	rootCommand.Flags().StringVar(&flags.discardAllInOption, discardAllInFlagName, "", discardAllInFlagDescription)
	rootCommand.Flags().StringVar(&flags.discardFilesOption, discardFilesFlagName, "", discardFilesFlagDescription)
	rootCommand.Flags().BoolVarP(&flags.prettyPrint, prettyFlagName, prettyFlagShorthand, false, prettyFlagDescription)
	rootCommand.Flags().StringVar(&flags.treeFilePath, treeFileFlagName, "", treeFileFlagDescription)
	rootCommand.Flags().BoolVar(&flags.copyToClipboard, copyFlagName, false, copyFlagDescription)
	rootCommand.Flags().StringVar(&flags.configFilePath, configFlagName, "", configFlagDescription)

	return rootCommand
}

// runScan resolves configuration, walks the root, and produces every
// requested artifact. The JSON document is always written.
func runScan(command *cobra.Command, rootArgument string, flags scanFlags, logger *zap.Logger, copier clipboard.Copier) error {
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: flags.configFilePath,
	})
	if configurationError != nil {
		return configurationError
	}

	resolved := resolveScanOptions(command, flags, applicationConfiguration)

	ruleSet := scan.NewRuleSet(
		resolved.ignoreNames,
		resolved.discardFiles,
		resolved.discardAllIn,
		resolved.discardFilesIn,
	)
	walker := scan.NewWalker(scan.NewMatcher(ruleSet), logger)

	logger.Info(scanningMessage, zap.String(pathLogField, rootArgument))
	rootNode, walkError := walker.Walk(rootArgument)
	if walkError != nil {
		return walkError
	}

	if resolved.prettyPrint {
		if writeError := output.WriteTree(command.OutOrStdout(), rootNode, output.NewConsolePainter(command.OutOrStdout())); writeError != nil {
			return writeError
		}
	}

	if resolved.treeFilePath != "" {
		if writeError := output.WriteTreeMarkdownFile(resolved.treeFilePath, rootNode); writeError != nil {
			return writeError
		}
		logger.Info(treeFileSavedMessage, zap.String(pathLogField, resolved.treeFilePath))
	}

	if resolved.copyToClipboard {
		if copyError := copier.Copy(output.RenderTreePlain(rootNode)); copyError != nil {
			return fmt.Errorf(errorClipboardFormat, copyError)
		}
		logger.Info(treeCopiedMessage)
	}

	if writeError := output.WriteJSONFile(resolved.jsonOutputPath, rootNode); writeError != nil {
		return writeError
	}
	absoluteOutputPath, absoluteError := filepath.Abs(resolved.jsonOutputPath)
	if absoluteError != nil {
		return fmt.Errorf(errorResolveOutFormat, resolved.jsonOutputPath, absoluteError)
	}
	logger.Info(jsonSavedMessage, zap.String(pathLogField, absoluteOutputPath))

	return nil
}

// resolvedScanOptions holds the final option values after merging flags over
// configuration file defaults.
type resolvedScanOptions struct {
	jsonOutputPath  string
	ignoreNames     []string
	discardFiles    []string
	discardAllIn    []string
	discardFilesIn  []string
	prettyPrint     bool
	treeFilePath    string
	copyToClipboard bool
}

// resolveScanOptions merges explicit flag values over configuration file
// values over built-in defaults. A flag only overrides the configuration file
// when it was set on the command line.
func resolveScanOptions(command *cobra.Command, flags scanFlags, applicationConfiguration config.ApplicationConfiguration) resolvedScanOptions {
	resolved := resolvedScanOptions{
		jsonOutputPath:  defaultJSONOutputPath,
		ignoreNames:     config.DefaultIgnoredDirectoryNames,
		prettyPrint:     flags.prettyPrint,
		treeFilePath:    flags.treeFilePath,
		copyToClipboard: flags.copyToClipboard,
	}

	if applicationConfiguration.Output != "" {
		resolved.jsonOutputPath = applicationConfiguration.Output
	}
	if command.Flags().Changed(outputFlagName) {
		resolved.jsonOutputPath = flags.outputPath
	}

	if len(applicationConfiguration.Ignore) > 0 {
		resolved.ignoreNames = applicationConfiguration.Ignore
	}
	if command.Flags().Changed(ignoreFlagName) {
		resolved.ignoreNames = flags.ignoreNames
	}

	resolved.discardFiles = resolveListOption(command, discardFilesFlagName, flags.discardFilesOption, applicationConfiguration.Discard.Files)
	resolved.discardAllIn = resolveListOption(command, discardAllInFlagName, flags.discardAllInOption, applicationConfiguration.Discard.AllIn)
	resolved.discardFilesIn = resolveListOption(command, discardFilesInFlagName, flags.discardFilesInOpt, applicationConfiguration.Discard.FilesIn)

	if !command.Flags().Changed(prettyFlagName) && applicationConfiguration.Pretty != nil {
		resolved.prettyPrint = *applicationConfiguration.Pretty
	}
	if !command.Flags().Changed(treeFileFlagName) && applicationConfiguration.TreeFile != "" {
		resolved.treeFilePath = applicationConfiguration.TreeFile
	}
	if !command.Flags().Changed(copyFlagName) && applicationConfiguration.Clipboard != nil {
		resolved.copyToClipboard = *applicationConfiguration.Clipboard
	}

	return resolved
}

// resolveListOption returns the parsed flag list when the flag was set and
// the configuration file list otherwise.
func resolveListOption(command *cobra.Command, flagName, flagValue string, configuredValues []string) []string {
	if command.Flags().Changed(flagName) {
		return config.ParseListOption(flagValue)
	}
	return configuredValues
}

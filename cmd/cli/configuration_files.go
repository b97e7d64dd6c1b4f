package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	initializationFlagPrefixConstant          = "--" + configurationInitializationFlagNameConstant
	argumentTerminatorConstant                = "--"
	unsupportedInitializationScopeTemplate    = "unsupported initialization scope %q"
	initializationDirectoryErrorTemplate      = "unable to determine %s directory: %w"
	initializationEmptyDirectoryErrorTemplate = "%s directory is empty"
	initializationContentMissingMessage       = "embedded configuration content is unavailable"
	initializationDirectoryConflictTemplate   = "configuration directory path %s is not a directory"
	initializationFileIsDirectoryTemplate     = "configuration path %s is a directory"
	initializationExistingFileTemplate        = "configuration file already exists at %s (use --force to overwrite)"
	initializationWriteErrorTemplate          = "unable to write configuration file %s: %w"
	initializationWrittenLogMessage           = "configuration file created"
	initializationWrittenConsoleTemplate      = "Configuration written to %s\n"
	workingDirectoryRoleConstant              = "working"
	homeDirectoryRoleConstant                 = "home"
)

type configurationInitializationPlan struct {
	DirectoryPath string
	FilePath      string
}

// normalizeInitializationScopeArguments rewrites a bare --init into --init=local so the
// optional scope value can follow the flag. Arguments after -- pass through untouched.
func normalizeInitializationScopeArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	implicitLocal := initializationFlagPrefixConstant + "=" + configurationInitializationDefaultScopeConstant
	for index, argument := range arguments {
		switch {
		case argument == argumentTerminatorConstant:
			return append(normalized, arguments[index:]...)
		case argument == initializationFlagPrefixConstant+"=":
			normalized = append(normalized, implicitLocal)
		case argument == initializationFlagPrefixConstant:
			nextIsValue := index+1 < len(arguments) && !strings.HasPrefix(arguments[index+1], "-")
			if nextIsValue {
				normalized = append(normalized, argument)
			} else {
				normalized = append(normalized, implicitLocal)
			}
		default:
			normalized = append(normalized, argument)
		}
	}
	return normalized
}

// resolveConfigurationSearchPaths returns MULTIGIT_CONFIG_SEARCH_PATH entries when set, and
// otherwise the working directory followed by the per-user configuration directories.
func resolveConfigurationSearchPaths() []string {
	if overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant)); len(overrideValue) > 0 {
		overridePaths := make([]string, 0)
		for _, candidate := range filepath.SplitList(overrideValue) {
			if trimmed := strings.TrimSpace(candidate); len(trimmed) > 0 {
				overridePaths = append(overridePaths, trimmed)
			}
		}
		if len(overridePaths) > 0 {
			return overridePaths
		}
		return []string{defaultConfigurationSearchPathConstant}
	}

	searchPaths := []string{defaultConfigurationSearchPathConstant}
	addDirectory := func(baseDirectory string, directoryName string) {
		if len(strings.TrimSpace(baseDirectory)) == 0 {
			return
		}
		candidate := filepath.Join(strings.TrimSpace(baseDirectory), directoryName)
		if !slices.Contains(searchPaths, candidate) {
			searchPaths = append(searchPaths, candidate)
		}
	}
	addDirectory(os.Getenv(xdgConfigHomeEnvironmentVariableConstant), applicationConfigurationDirectoryNameConstant)
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		addDirectory(userConfigurationDirectory, applicationConfigurationDirectoryNameConstant)
	}
	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil {
		addDirectory(homeDirectory, userConfigurationDirectoryNameConstant)
	}
	return searchPaths
}

// handleConfigurationInitialization writes the embedded configuration when --init was given
// and reports whether it did so.
func (application *Application) handleConfigurationInitialization(command *cobra.Command) (bool, error) {
	if !application.persistentFlagChanged(command, configurationInitializationFlagNameConstant) {
		return false, nil
	}

	plan, planError := resolveConfigurationInitializationPlan(application.configurationInitializationScope)
	if planError != nil {
		return true, planError
	}
	configurationContent, _ := EmbeddedDefaultConfiguration()
	if len(configurationContent) == 0 {
		return true, errors.New(initializationContentMissingMessage)
	}
	if writeError := application.writeConfigurationFile(plan, configurationContent); writeError != nil {
		return true, writeError
	}

	application.logger.Info(initializationWrittenLogMessage, zap.String(configurationFileFieldConstant, plan.FilePath))
	fmt.Fprintf(command.OutOrStdout(), initializationWrittenConsoleTemplate, plan.FilePath)
	return true, nil
}

func resolveConfigurationInitializationPlan(initializationScope string) (configurationInitializationPlan, error) {
	switch normalizedScope := strings.ToLower(strings.TrimSpace(initializationScope)); normalizedScope {
	case "", configurationInitializationScopeLocalConstant:
		workingDirectory, directoryError := requireDirectory(workingDirectoryRoleConstant, os.Getwd)
		if directoryError != nil {
			return configurationInitializationPlan{}, directoryError
		}
		return configurationInitializationPlan{
			DirectoryPath: workingDirectory,
			FilePath:      filepath.Join(workingDirectory, configurationFileNameConstant),
		}, nil
	case configurationInitializationScopeUserConstant:
		homeDirectory, directoryError := requireDirectory(homeDirectoryRoleConstant, os.UserHomeDir)
		if directoryError != nil {
			return configurationInitializationPlan{}, directoryError
		}
		configurationDirectory := filepath.Join(homeDirectory, userConfigurationDirectoryNameConstant)
		return configurationInitializationPlan{
			DirectoryPath: configurationDirectory,
			FilePath:      filepath.Join(configurationDirectory, configurationFileNameConstant),
		}, nil
	default:
		return configurationInitializationPlan{}, fmt.Errorf(unsupportedInitializationScopeTemplate, normalizedScope)
	}
}

func requireDirectory(role string, lookup func() (string, error)) (string, error) {
	directory, lookupError := lookup()
	if lookupError != nil {
		return "", fmt.Errorf(initializationDirectoryErrorTemplate, role, lookupError)
	}
	trimmedDirectory := strings.TrimSpace(directory)
	if len(trimmedDirectory) == 0 {
		return "", fmt.Errorf(initializationDirectoryErrorTemplate, role, fmt.Errorf(initializationEmptyDirectoryErrorTemplate, role))
	}
	return trimmedDirectory, nil
}

// writeConfigurationFile creates the target directory when missing and refuses to replace an
// existing file unless --force was given.
func (application *Application) writeConfigurationFile(plan configurationInitializationPlan, configurationContent []byte) error {
	fileSystem := application.fileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}

	directoryInfo, directoryStatError := fileSystem.Stat(plan.DirectoryPath)
	switch {
	case directoryStatError == nil && !directoryInfo.IsDir():
		return fmt.Errorf(initializationDirectoryConflictTemplate, plan.DirectoryPath)
	case errors.Is(directoryStatError, os.ErrNotExist):
		if createError := fileSystem.MkdirAll(plan.DirectoryPath, configurationDirectoryPermissionConstant); createError != nil {
			return fmt.Errorf(initializationWriteErrorTemplate, plan.FilePath, createError)
		}
	case directoryStatError != nil:
		return fmt.Errorf(initializationWriteErrorTemplate, plan.FilePath, directoryStatError)
	}

	fileInfo, fileStatError := fileSystem.Stat(plan.FilePath)
	switch {
	case fileStatError == nil && fileInfo.IsDir():
		return fmt.Errorf(initializationFileIsDirectoryTemplate, plan.FilePath)
	case fileStatError == nil && !application.configurationInitializationForced:
		return fmt.Errorf(initializationExistingFileTemplate, plan.FilePath)
	case fileStatError != nil && !errors.Is(fileStatError, os.ErrNotExist):
		return fmt.Errorf(initializationWriteErrorTemplate, plan.FilePath, fileStatError)
	}

	if writeError := afero.WriteFile(fileSystem, plan.FilePath, configurationContent, configurationFilePermissionConstant); writeError != nil {
		return fmt.Errorf(initializationWriteErrorTemplate, plan.FilePath, writeError)
	}
	return nil
}

package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/multigit/internal/utils"
)

const (
	testLoaderEnvironmentPrefixConstant = "MULTIGITTEST"
	testLoaderConfigurationNameConstant = "config"
	testLoaderConfigurationTypeConstant = "yaml"
	testLoaderConfigurationFileConstant = "config.yaml"
	testLoaderEmbeddedContentConstant   = "common:\n  log_level: error\nui:\n  command: gitup\n"
	testLoaderFileContentConstant       = "common:\n  log_level: debug\nregistry:\n  file: /srv/registry.yaml\n"
	testLoaderUIEnvironmentConstant     = "MULTIGITTEST_UI_COMMAND"
	testLoaderLevelEnvironmentConstant  = "MULTIGITTEST_COMMON_LOG_LEVEL"
	testLoaderWorkingDirectoryConstant  = "working"
	testLoaderXDGDirectoryConstant      = "xdg"
	testLoaderHomeDirectoryConstant     = "home"
)

type loaderFixture struct {
	Common struct {
		LogLevel  string `mapstructure:"log_level"`
		AssumeYes bool   `mapstructure:"assume_yes"`
	} `mapstructure:"common"`
	Registry struct {
		File string `mapstructure:"file"`
	} `mapstructure:"registry"`
	UI struct {
		Command string `mapstructure:"command"`
	} `mapstructure:"ui"`
}

func newFixtureLoader(searchPaths ...string) *utils.ConfigurationLoader {
	loader := utils.NewConfigurationLoader(testLoaderConfigurationNameConstant, testLoaderConfigurationTypeConstant, testLoaderEnvironmentPrefixConstant, searchPaths)
	loader.SetEmbeddedConfiguration([]byte(testLoaderEmbeddedContentConstant), testLoaderConfigurationTypeConstant)
	return loader
}

func TestConfigurationLoaderLayersSources(testInstance *testing.T) {
	testCases := []struct {
		name             string
		writeFile        bool
		environment      map[string]string
		expectedLevel    string
		expectedRegistry string
		expectedUI       string
	}{
		{
			name:          "embedded_only",
			expectedLevel: "error",
			expectedUI:    "gitup",
		},
		{
			name:             "file_over_embedded",
			writeFile:        true,
			expectedLevel:    "debug",
			expectedRegistry: "/srv/registry.yaml",
			expectedUI:       "gitup",
		},
		{
			name:      "environment_over_file",
			writeFile: true,
			environment: map[string]string{
				testLoaderLevelEnvironmentConstant: "warn",
				testLoaderUIEnvironmentConstant:    "tig",
			},
			expectedLevel:    "warn",
			expectedRegistry: "/srv/registry.yaml",
			expectedUI:       "tig",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			searchDirectory := testInstance.TempDir()
			if testCase.writeFile {
				require.NoError(testInstance, os.WriteFile(filepath.Join(searchDirectory, testLoaderConfigurationFileConstant), []byte(testLoaderFileContentConstant), 0o600))
			}
			for name, value := range testCase.environment {
				testInstance.Setenv(name, value)
			}

			loaded := loaderFixture{}
			metadata, loadError := newFixtureLoader(searchDirectory).LoadConfiguration("", map[string]any{"common.assume_yes": true}, &loaded)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedLevel, loaded.Common.LogLevel)
			require.Equal(testInstance, testCase.expectedRegistry, loaded.Registry.File)
			require.Equal(testInstance, testCase.expectedUI, loaded.UI.Command)
			require.True(testInstance, loaded.Common.AssumeYes)
			if testCase.writeFile {
				require.Equal(testInstance, filepath.Join(searchDirectory, testLoaderConfigurationFileConstant), metadata.ConfigFileUsed)
			} else {
				require.Empty(testInstance, metadata.ConfigFileUsed)
			}
		})
	}
}

func TestConfigurationLoaderSearchOrder(testInstance *testing.T) {
	testCases := []struct {
		name              string
		populated         []string
		expectedDirectory string
	}{
		{name: "home_only", populated: []string{testLoaderHomeDirectoryConstant}, expectedDirectory: testLoaderHomeDirectoryConstant},
		{name: "xdg_before_home", populated: []string{testLoaderXDGDirectoryConstant, testLoaderHomeDirectoryConstant}, expectedDirectory: testLoaderXDGDirectoryConstant},
		{name: "working_first", populated: []string{testLoaderWorkingDirectoryConstant, testLoaderXDGDirectoryConstant, testLoaderHomeDirectoryConstant}, expectedDirectory: testLoaderWorkingDirectoryConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			root := testInstance.TempDir()
			orderedDirectories := []string{testLoaderWorkingDirectoryConstant, testLoaderXDGDirectoryConstant, testLoaderHomeDirectoryConstant}
			searchPaths := make([]string, 0, len(orderedDirectories))
			for _, directoryName := range orderedDirectories {
				directoryPath := filepath.Join(root, directoryName)
				require.NoError(testInstance, os.MkdirAll(directoryPath, 0o755))
				searchPaths = append(searchPaths, directoryPath)
			}
			for _, directoryName := range testCase.populated {
				content := "ui:\n  command: " + directoryName + "\n"
				require.NoError(testInstance, os.WriteFile(filepath.Join(root, directoryName, testLoaderConfigurationFileConstant), []byte(content), 0o600))
			}

			loaded := loaderFixture{}
			metadata, loadError := newFixtureLoader(append(searchPaths, " ")...).LoadConfiguration("", nil, &loaded)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedDirectory, loaded.UI.Command)
			require.Equal(testInstance, filepath.Join(root, testCase.expectedDirectory, testLoaderConfigurationFileConstant), metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderExplicitFile(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(searchDirectory, testLoaderConfigurationFileConstant), []byte("ui:\n  command: searched\n"), 0o600))
	explicitPath := filepath.Join(testInstance.TempDir(), "custom.yaml")
	require.NoError(testInstance, os.WriteFile(explicitPath, []byte("ui:\n  command: explicit\n"), 0o600))

	loaded := loaderFixture{}
	metadata, loadError := newFixtureLoader(searchDirectory).LoadConfiguration("  "+explicitPath+" ", nil, &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "explicit", loaded.UI.Command)
	require.Equal(testInstance, explicitPath, metadata.ConfigFileUsed)

	_, missingError := newFixtureLoader(searchDirectory).LoadConfiguration(filepath.Join(searchDirectory, "absent.yaml"), nil, &loaderFixture{})
	require.Error(testInstance, missingError)
}

func TestConfigurationLoaderRequiresTarget(testInstance *testing.T) {
	_, loadError := newFixtureLoader().LoadConfiguration("", nil, nil)
	require.ErrorIs(testInstance, loadError, utils.ErrConfigurationTargetMissing)
}

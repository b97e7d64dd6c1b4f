package pathutils_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/tyemirov/multigit/internal/utils/path"
)

const (
	testHomeDirectoryConstant                = "/home/operator"
	testTildeRelativePathConstant            = "Projects/example"
	testWhitespacePrefixConstant             = "  "
	testWhitespaceSuffixConstant             = "\t"
	testSanitizerDefaultCaseNameConstant     = "default_configuration"
	testSanitizerDeduplicateCaseNameConstant = "deduplicate_configuration"
	testSanitizerHomeFailureCaseNameConstant = "home_lookup_failure"
)

func staticHomeDirectory() (string, error) {
	return testHomeDirectoryConstant, nil
}

func TestPathSanitizerNormalizesInputs(testInstance *testing.T) {
	absolutePath := filepath.Join(testInstance.TempDir(), "path-sanitizer")
	tildeInput := filepath.Join("~", testTildeRelativePathConstant)
	expandedTilde := filepath.Join(testHomeDirectoryConstant, testTildeRelativePathConstant)

	testCases := []struct {
		name            string
		sanitizer       *pathutils.PathSanitizer
		inputs          []string
		expectedOutputs []string
	}{
		{
			name:      testSanitizerDefaultCaseNameConstant,
			sanitizer: pathutils.NewPathSanitizerWithConfiguration(staticHomeDirectory, pathutils.PathSanitizerConfiguration{}),
			inputs: []string{
				"",
				testWhitespacePrefixConstant + absolutePath + testWhitespaceSuffixConstant,
				testWhitespacePrefixConstant + tildeInput + testWhitespaceSuffixConstant,
				"~",
				absolutePath + "/./nested/..",
			},
			expectedOutputs: []string{absolutePath, expandedTilde, testHomeDirectoryConstant, absolutePath},
		},
		{
			name:      testSanitizerDeduplicateCaseNameConstant,
			sanitizer: pathutils.NewPathSanitizerWithConfiguration(staticHomeDirectory, pathutils.PathSanitizerConfiguration{Deduplicate: true}),
			inputs:    []string{tildeInput, absolutePath, absolutePath + "/", tildeInput},
			expectedOutputs: func() []string {
				if absolutePath < expandedTilde {
					return []string{absolutePath, expandedTilde}
				}
				return []string{expandedTilde, absolutePath}
			}(),
		},
		{
			name: testSanitizerHomeFailureCaseNameConstant,
			sanitizer: pathutils.NewPathSanitizerWithConfiguration(func() (string, error) {
				return "", errors.New("no home")
			}, pathutils.PathSanitizerConfiguration{}),
			inputs:          []string{tildeInput},
			expectedOutputs: []string{tildeInput},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sanitized := testCase.sanitizer.Sanitize(testCase.inputs)
			require.Equal(testInstance, testCase.expectedOutputs, sanitized)
		})
	}
}

func TestPathSanitizerMakesRelativePathsAbsolute(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	originalWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	require.NoError(testInstance, os.Chdir(workingDirectory))
	testInstance.Cleanup(func() {
		require.NoError(testInstance, os.Chdir(originalWorkingDirectory))
	})

	sanitizer := pathutils.NewPathSanitizerWithConfiguration(staticHomeDirectory, pathutils.PathSanitizerConfiguration{MakeAbsolute: true})
	require.Equal(testInstance, filepath.Join(workingDirectory, "child"), sanitizer.SanitizePath("./child/"))
	require.Equal(testInstance, workingDirectory, sanitizer.SanitizePath("."))
}

func TestPathSanitizerReturnsNilForEmptyResults(testInstance *testing.T) {
	sanitizer := pathutils.NewPathSanitizer()

	sanitized := sanitizer.Sanitize([]string{"   ", "\n"})
	require.Nil(testInstance, sanitized)
}

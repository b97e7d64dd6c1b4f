// Package version reports the multigit build version.
package version

import (
	"context"
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/tyemirov/multigit/internal/execshell"
	"github.com/tyemirov/multigit/internal/gitrepo"
)

const (
	unknownVersionFallbackConstant            = "unknown"
	buildInfoDevelVersionValue                = "(devel)"
	semverPrefixConstant                      = "v"
	gitDescribeSubcommandConstant             = "describe"
	gitTagsFlagConstant                       = "--tags"
	gitExactMatchFlagConstant                 = "--exact-match"
	gitLongFlagConstant                       = "--long"
	gitDirtyFlagConstant                      = "--dirty"
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentValueConstant = "0"
)

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

// Dependencies describes the version sources consulted, in precedence order: the linked
// version, module build info, then `git describe` in SourceDirectory.
type Dependencies struct {
	LinkedVersion     string
	BuildInfoProvider BuildInfoProvider
	GitExecutor       gitrepo.GitCommandExecutor
	SourceDirectory   string
}

// Detector resolves application version strings.
type Detector struct {
	linkedVersion     string
	buildInfoProvider BuildInfoProvider
	gitExecutor       gitrepo.GitCommandExecutor
	sourceDirectory   string
}

// NewDetector constructs a Detector. A nil BuildInfoProvider reads the running binary.
func NewDetector(dependencies Dependencies) *Detector {
	provider := dependencies.BuildInfoProvider
	if provider == nil {
		provider = runtimeBuildInfoProvider{}
	}
	return &Detector{
		linkedVersion:     dependencies.LinkedVersion,
		buildInfoProvider: provider,
		gitExecutor:       dependencies.GitExecutor,
		sourceDirectory:   strings.TrimSpace(dependencies.SourceDirectory),
	}
}

// Detect resolves the application version using the supplied dependencies.
func Detect(executionContext context.Context, dependencies Dependencies) string {
	return NewDetector(dependencies).Version(executionContext)
}

// Version returns the first available version, or "unknown".
func (detector *Detector) Version(executionContext context.Context) string {
	if detector == nil {
		return unknownVersionFallbackConstant
	}

	if linkedVersion := Normalize(detector.linkedVersion); len(linkedVersion) > 0 {
		return linkedVersion
	}

	if buildVersion := detector.versionFromBuildInfo(); len(buildVersion) > 0 {
		return buildVersion
	}

	if exactVersion := detector.describeVersion(executionContext, gitTagsFlagConstant, gitExactMatchFlagConstant); len(exactVersion) > 0 {
		return exactVersion
	}

	if longVersion := detector.describeVersion(executionContext, gitTagsFlagConstant, gitLongFlagConstant, gitDirtyFlagConstant); len(longVersion) > 0 {
		return longVersion
	}

	return unknownVersionFallbackConstant
}

// Normalize canonicalizes semantic versions ("1.2" becomes "v1.2.0") and returns other
// non-empty values unchanged. Development placeholders normalize to "".
func Normalize(rawVersion string) string {
	trimmedVersion := strings.TrimSpace(rawVersion)
	if len(trimmedVersion) == 0 || trimmedVersion == buildInfoDevelVersionValue {
		return ""
	}

	candidate := trimmedVersion
	if !strings.HasPrefix(candidate, semverPrefixConstant) {
		candidate = semverPrefixConstant + candidate
	}
	if !semver.IsValid(candidate) {
		return trimmedVersion
	}
	if len(semver.Prerelease(candidate)) > 0 || len(semver.Build(candidate)) > 0 {
		return candidate
	}
	return semver.Canonical(candidate)
}

func (detector *Detector) versionFromBuildInfo() string {
	buildInfo, available := detector.buildInfoProvider.Read()
	if !available || buildInfo == nil {
		return ""
	}
	return Normalize(buildInfo.Main.Version)
}

func (detector *Detector) describeVersion(executionContext context.Context, flags ...string) string {
	if detector.gitExecutor == nil || len(detector.sourceDirectory) == 0 {
		return ""
	}

	executionResult, executionError := detector.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            append([]string{gitDescribeSubcommandConstant}, flags...),
		WorkingDirectory:     detector.sourceDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentValueConstant},
	})
	if executionError != nil {
		return ""
	}

	return Normalize(executionResult.StandardOutput)
}

type runtimeBuildInfoProvider struct{}

func (runtimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}

package checkouts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/multigit/internal/execshell"
	reposdeps "github.com/tyemirov/multigit/internal/repos/dependencies"
	"github.com/tyemirov/multigit/internal/repos/discovery"
	"github.com/tyemirov/multigit/internal/repos/fanout"
	"github.com/tyemirov/multigit/internal/repos/filter"
	"github.com/tyemirov/multigit/internal/repos/inspect"
	"github.com/tyemirov/multigit/internal/repos/prompt"
	"github.com/tyemirov/multigit/internal/repos/registry"
	"github.com/tyemirov/multigit/internal/repos/workingset"
	flagutils "github.com/tyemirov/multigit/internal/utils/flags"
	pathutils "github.com/tyemirov/multigit/internal/utils/path"
)

const (
	inspectionIncompleteSingularTemplateConstant = "could not inspect %d checkout"
	inspectionIncompletePluralTemplateConstant   = "could not inspect %d checkouts"
	checkoutFieldNameConstant                    = "checkout"
	homeDirectoryPrefixConstant                  = "~"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PrompterFactory creates confirmation prompters scoped to a Cobra command.
type PrompterFactory func(command *cobra.Command, assumeYes bool) prompt.ConfirmationPrompter

// Dependencies groups the collaborators shared by the checkout commands. Nil members fall
// back to implementations bound to the host system.
type Dependencies struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	FileSystem                   afero.Fs
	Scanner                      workingset.Scanner
	Inspector                    inspect.StateInspector
	CommandExecutor              fanout.CommandExecutor
	PrompterFactory              PrompterFactory
	WidthResolver                fanout.WidthResolver
	WorkingDirectoryProvider     func() (string, error)
	EnvironmentLookup            func(string) string
}

// InspectionIncompleteError reports checkouts whose state could not be read for display.
type InspectionIncompleteError struct {
	Checkouts []string
}

// Error reports the number of checkouts that could not be inspected.
func (incompleteError InspectionIncompleteError) Error() string {
	if len(incompleteError.Checkouts) == 1 {
		return fmt.Sprintf(inspectionIncompleteSingularTemplateConstant, 1)
	}
	return fmt.Sprintf(inspectionIncompletePluralTemplateConstant, len(incompleteError.Checkouts))
}

func (dependencies Dependencies) logger() *zap.Logger {
	return resolveLogger(dependencies.LoggerProvider)
}

func (dependencies Dependencies) consoleLogger() *zap.Logger {
	return resolveLogger(dependencies.ConsoleLoggerProvider)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (dependencies Dependencies) humanReadableLogging() bool {
	if dependencies.HumanReadableLoggingProvider == nil {
		return false
	}
	return dependencies.HumanReadableLoggingProvider()
}

func (dependencies Dependencies) configuration() CommandConfiguration {
	if dependencies.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().sanitize()
	}
	return dependencies.ConfigurationProvider().sanitize()
}

func (dependencies Dependencies) fileSystem() afero.Fs {
	return reposdeps.ResolveFileSystem(dependencies.FileSystem)
}

func (dependencies Dependencies) lookupEnvironment(name string) string {
	if dependencies.EnvironmentLookup != nil {
		return dependencies.EnvironmentLookup(name)
	}
	return os.Getenv(name)
}

func (dependencies Dependencies) workingDirectory() (string, error) {
	if dependencies.WorkingDirectoryProvider != nil {
		return dependencies.WorkingDirectoryProvider()
	}
	return os.Getwd()
}

// pathArguments resolves command arguments against the working directory, defaulting to
// the working directory itself.
func (dependencies Dependencies) pathArguments(arguments []string) ([]string, error) {
	workingDirectory, workingDirectoryError := dependencies.workingDirectory()
	if workingDirectoryError != nil {
		return nil, workingDirectoryError
	}
	if len(arguments) == 0 {
		return []string{workingDirectory}, nil
	}
	paths := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 {
			continue
		}
		if !filepath.IsAbs(trimmed) && !strings.HasPrefix(trimmed, homeDirectoryPrefixConstant) {
			trimmed = filepath.Join(workingDirectory, trimmed)
		}
		paths = append(paths, trimmed)
	}
	return paths, nil
}

func (dependencies Dependencies) registryStore() (*registry.Store, error) {
	registryPath := dependencies.configuration().RegistryFilePath
	if len(registryPath) == 0 {
		defaultPath, defaultPathError := registry.DefaultFilePath()
		if defaultPathError != nil {
			return nil, defaultPathError
		}
		registryPath = defaultPath
	}
	fileSystem := dependencies.fileSystem()
	return registry.NewStore(
		registryPath,
		discovery.NewCheckoutProbe(fileSystem),
		registry.WithFileSystem(fileSystem),
		registry.WithLogger(dependencies.logger()),
	)
}

func (dependencies Dependencies) shellExecutor() (*execshell.ShellExecutor, error) {
	return reposdeps.ResolveShellExecutor(nil, dependencies.logger(), dependencies.humanReadableLogging())
}

func (dependencies Dependencies) commandExecutor() (fanout.CommandExecutor, error) {
	if dependencies.CommandExecutor != nil {
		return dependencies.CommandExecutor, nil
	}
	return dependencies.shellExecutor()
}

func (dependencies Dependencies) stateInspector() (inspect.StateInspector, error) {
	if dependencies.Inspector != nil {
		return dependencies.Inspector, nil
	}
	shellExecutor, executorError := dependencies.shellExecutor()
	if executorError != nil {
		return nil, executorError
	}
	return reposdeps.ResolveStateInspector(nil, shellExecutor)
}

func (dependencies Dependencies) fanOutExecutor(command *cobra.Command, options ...fanout.Option) (*fanout.Executor, error) {
	commandExecutor, executorError := dependencies.commandExecutor()
	if executorError != nil {
		return nil, executorError
	}
	defaults := []fanout.Option{
		fanout.WithStreams(command.InOrStdin(), command.OutOrStdout(), command.ErrOrStderr()),
		fanout.WithWidthResolver(dependencies.WidthResolver),
		fanout.WithLogger(dependencies.consoleLogger()),
	}
	return fanout.NewExecutor(commandExecutor, append(defaults, options...)...)
}

func (dependencies Dependencies) prompter(command *cobra.Command) prompt.ConfirmationPrompter {
	assumeYes := dependencies.configuration().AssumeYes
	if executionFlags, available := flagutils.ResolveExecutionFlags(command); available && executionFlags.AssumeYesSet {
		assumeYes = executionFlags.AssumeYes
	}
	if dependencies.PrompterFactory != nil {
		if prompter := dependencies.PrompterFactory(command, assumeYes); prompter != nil {
			return prompter
		}
	}
	var terminalInput prompt.TerminalInput
	if fileInput, isFile := command.InOrStdin().(prompt.TerminalInput); isFile {
		terminalInput = fileInput
	}
	return prompt.NewSessionPrompter(prompt.NewTerminalPrompter(terminalInput, command.OutOrStdout(), nil), assumeYes)
}

// workingSet resolves the checkouts a command operates on: the scan of --directory when
// given, otherwise the registry, narrowed by the requested filters. Checkouts the filters
// could not inspect are reported in the selection instead of being dropped silently.
func (dependencies Dependencies) workingSet(executionContext context.Context, command *cobra.Command, predicates []filter.Predicate) (filter.Selection, error) {
	resolver := workingset.NewResolver(reposdeps.ResolveScanner(dependencies.Scanner, dependencies.fileSystem(), dependencies.logger()), dependencies.logger())

	scopeOverride := ""
	snapshot := registry.Snapshot{}
	if scopeDirectory, scoped := flagutils.ResolveScopeDirectory(command); scoped {
		sanitizer := pathutils.NewPathSanitizerWithConfiguration(nil, pathutils.PathSanitizerConfiguration{MakeAbsolute: true})
		scopeOverride = sanitizer.SanitizePath(scopeDirectory)
	} else {
		store, storeError := dependencies.registryStore()
		if storeError != nil {
			return filter.Selection{}, storeError
		}
		loadedSnapshot, loadError := store.Load()
		if loadError != nil {
			return filter.Selection{}, loadError
		}
		snapshot = loadedSnapshot
	}

	checkouts := resolver.Resolve(snapshot, scopeOverride)
	if len(predicates) == 0 {
		return filter.Selection{Checkouts: checkouts}, nil
	}

	inspector, inspectorError := dependencies.stateInspector()
	if inspectorError != nil {
		return filter.Selection{}, inspectorError
	}
	return filter.NewEvaluator(inspector, dependencies.logger()).Select(executionContext, checkouts, predicates), nil
}

// uninspectedError turns the checkouts a filter could not inspect into an
// InspectionIncompleteError, or nil when there are none.
func uninspectedError(selection filter.Selection) error {
	if len(selection.Uninspected) == 0 {
		return nil
	}
	return InspectionIncompleteError{Checkouts: selection.Uninspected}
}

func parseFilterValues(values *flagutils.FilterFlagValues) ([]filter.Predicate, error) {
	if values == nil {
		return nil, nil
	}
	return filter.ParsePredicates(values.Filters)
}

func commandContext(command *cobra.Command) context.Context {
	if command == nil || command.Context() == nil {
		return context.Background()
	}
	return command.Context()
}

package checkouts_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/tyemirov/multigit/cmd/cli/checkouts"
	"github.com/tyemirov/multigit/internal/execshell"
	"github.com/tyemirov/multigit/internal/repos/discovery"
	"github.com/tyemirov/multigit/internal/repos/inspect"
	"github.com/tyemirov/multigit/internal/repos/prompt"
	"github.com/tyemirov/multigit/internal/repos/registry"
	flagutils "github.com/tyemirov/multigit/internal/utils/flags"
)

const (
	testRegistryPathConstant     = "/config/multigit/registry.yaml"
	testAlphaCheckoutConstant    = "/code/alpha"
	testBetaCheckoutConstant     = "/code/beta"
	testGroupContainerConstant   = "/code/group"
	testGammaCheckoutConstant    = "/code/group/gamma"
	testCodeRootConstant         = "/code"
	testRootCommandNameConstant  = "multigit"
	testDividerWidthConstant     = 10
	testWorkingDirectoryConstant = "/code/alpha"
)

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

type recordingCommandExecutor struct {
	commands  []execshell.ShellCommand
	exitCodes map[string]int
}

func (executor *recordingCommandExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.commands = append(executor.commands, command)
	if exitCode, failing := executor.exitCodes[command.Details.WorkingDirectory]; failing {
		result := execshell.ExecutionResult{ExitCode: exitCode}
		return result, execshell.CommandFailedError{Command: command, Result: result}
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *recordingCommandExecutor) workingDirectories() []string {
	directories := make([]string, 0, len(executor.commands))
	for _, command := range executor.commands {
		directories = append(directories, command.Details.WorkingDirectory)
	}
	return directories
}

type recordingPrompter struct {
	answer    bool
	questions []string
}

func (prompter *recordingPrompter) Confirm(question string) (bool, error) {
	prompter.questions = append(prompter.questions, question)
	return prompter.answer, nil
}

type commandHarness struct {
	fileSystem    afero.Fs
	inspector     *inspect.FakeInspector
	executor      *recordingCommandExecutor
	prompter      *recordingPrompter
	configuration checkouts.CommandConfiguration
	environment   map[string]string
}

// newCommandHarness registers /code/alpha as a checkout and /code/group as a container.
// /code/beta exists on disk but is only reachable through --directory.
func newCommandHarness(testInstance *testing.T, states map[string]inspect.FakeState) *commandHarness {
	testInstance.Helper()
	fileSystem := afero.NewMemMapFs()
	for _, directory := range []string{
		testAlphaCheckoutConstant + "/.git",
		testBetaCheckoutConstant + "/.git",
		testGammaCheckoutConstant + "/.git",
		testGroupContainerConstant + "/notes",
	} {
		require.NoError(testInstance, fileSystem.MkdirAll(directory, 0o755))
	}

	store, storeError := registry.NewStore(testRegistryPathConstant, discovery.NewCheckoutProbe(fileSystem), registry.WithFileSystem(fileSystem))
	require.NoError(testInstance, storeError)
	_, registerError := store.Register([]string{testAlphaCheckoutConstant, testGroupContainerConstant})
	require.NoError(testInstance, registerError)

	configuration := checkouts.DefaultCommandConfiguration()
	configuration.RegistryFilePath = testRegistryPathConstant

	return &commandHarness{
		fileSystem:    fileSystem,
		inspector:     inspect.NewFakeInspector(states),
		executor:      &recordingCommandExecutor{exitCodes: map[string]int{}},
		prompter:      &recordingPrompter{},
		configuration: configuration,
		environment:   map[string]string{},
	}
}

func (harness *commandHarness) dependencies() checkouts.Dependencies {
	return checkouts.Dependencies{
		ConfigurationProvider: func() checkouts.CommandConfiguration { return harness.configuration },
		FileSystem:            harness.fileSystem,
		Inspector:             harness.inspector,
		CommandExecutor:       harness.executor,
		PrompterFactory: func(_ *cobra.Command, assumeYes bool) prompt.ConfirmationPrompter {
			return prompt.NewSessionPrompter(harness.prompter, assumeYes)
		},
		WidthResolver:            func(_ io.Writer) int { return testDividerWidthConstant },
		WorkingDirectoryProvider: func() (string, error) { return testWorkingDirectoryConstant, nil },
		EnvironmentLookup:        func(name string) string { return harness.environment[name] },
	}
}

func (harness *commandHarness) registrySnapshot(testInstance *testing.T) registry.Snapshot {
	testInstance.Helper()
	store, storeError := registry.NewStore(testRegistryPathConstant, discovery.NewCheckoutProbe(harness.fileSystem), registry.WithFileSystem(harness.fileSystem))
	require.NoError(testInstance, storeError)
	snapshot, loadError := store.Load()
	require.NoError(testInstance, loadError)
	return snapshot
}

// executeCommand mounts the built command under a root carrying the persistent scope and
// confirmation flags, then runs it with the provided arguments.
func executeCommand(testInstance *testing.T, builder commandBuilder, arguments ...string) (string, string, error) {
	testInstance.Helper()
	rootCommand := &cobra.Command{Use: testRootCommandNameConstant, SilenceUsage: true, SilenceErrors: true}
	flagutils.BindScopeFlags(rootCommand)
	flagutils.BindAssumeYesFlag(rootCommand, false)

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	rootCommand.AddCommand(command)

	standardOutput := &bytes.Buffer{}
	standardError := &bytes.Buffer{}
	rootCommand.SetOut(standardOutput)
	rootCommand.SetErr(standardError)
	rootCommand.SetIn(strings.NewReader(""))
	rootCommand.SetArgs(checkouts.SeparatePassthroughArguments(rootCommand, arguments))

	executionError := rootCommand.Execute()
	return standardOutput.String(), standardError.String(), executionError
}

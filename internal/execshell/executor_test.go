package execshell_test

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tyemirov/multigit/internal/execshell"
)

const (
	testFetchArgumentConstant        = "fetch"
	testCheckoutDirectoryConstant    = "/code/alpha"
	testRemoteErrorOutputConstant    = "fatal: unable to access remote"
	testRunnerFailureMessageConstant = "exec: no such file"
	testArbitraryCommandNameConstant = "make"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestNewShellExecutorValidatesDependencies(testInstance *testing.T) {
	_, loggerError := execshell.NewShellExecutor(nil, &recordingCommandRunner{}, false)
	require.ErrorIs(testInstance, loggerError, execshell.ErrLoggerNotConfigured)

	_, runnerError := execshell.NewShellExecutor(zap.NewNop(), nil, false)
	require.ErrorIs(testInstance, runnerError, execshell.ErrCommandRunnerNotConfigured)

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{}, true)
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, executor)
}

func TestShellExecutorLifecycle(testInstance *testing.T) {
	testCases := []struct {
		name             string
		humanReadable    bool
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectedErrorAs  func(error) bool
		expectedMessages []string
		expectedLevels   []zapcore.Level
	}{
		{
			name:             "structured_success",
			runnerResult:     execshell.ExecutionResult{StandardOutput: "ok"},
			expectedMessages: []string{"command execution starting", "command execution completed"},
			expectedLevels:   []zapcore.Level{zap.InfoLevel, zap.InfoLevel},
		},
		{
			name:         "structured_exit_failure",
			runnerResult: execshell.ExecutionResult{StandardError: testRemoteErrorOutputConstant, ExitCode: 128},
			expectedErrorAs: func(executionError error) bool {
				var failedError execshell.CommandFailedError
				return errors.As(executionError, &failedError) && failedError.ExitCode() == 128
			},
			expectedMessages: []string{"command execution starting", "command returned non-zero status"},
			expectedLevels:   []zapcore.Level{zap.InfoLevel, zap.WarnLevel},
		},
		{
			name:        "structured_runner_error",
			runnerError: errors.New(testRunnerFailureMessageConstant),
			expectedErrorAs: func(executionError error) bool {
				var runError execshell.CommandExecutionError
				return errors.As(executionError, &runError)
			},
			expectedMessages: []string{"command execution starting", "command execution error"},
			expectedLevels:   []zapcore.Level{zap.InfoLevel, zap.ErrorLevel},
		},
		{
			name:          "human_success",
			humanReadable: true,
			runnerResult:  execshell.ExecutionResult{StandardOutput: "ok"},
			expectedMessages: []string{
				"Running git fetch (in /code/alpha)",
				"Completed git fetch (in /code/alpha)",
			},
			expectedLevels: []zapcore.Level{zap.InfoLevel, zap.InfoLevel},
		},
		{
			name:          "human_exit_failure",
			humanReadable: true,
			runnerResult:  execshell.ExecutionResult{StandardError: testRemoteErrorOutputConstant + "\nhint: retry", ExitCode: 128},
			expectedErrorAs: func(executionError error) bool {
				var failedError execshell.CommandFailedError
				return errors.As(executionError, &failedError)
			},
			expectedMessages: []string{
				"Running git fetch (in /code/alpha)",
				"git fetch (in /code/alpha) failed with exit code 128: " + testRemoteErrorOutputConstant,
			},
			expectedLevels: []zapcore.Level{zap.InfoLevel, zap.WarnLevel},
		},
		{
			name:          "human_runner_error",
			humanReadable: true,
			runnerError:   errors.New(testRunnerFailureMessageConstant),
			expectedErrorAs: func(executionError error) bool {
				var runError execshell.CommandExecutionError
				return errors.As(executionError, &runError) && errors.Is(executionError, runError.Cause)
			},
			expectedMessages: []string{
				"Running git fetch (in /code/alpha)",
				"git fetch (in /code/alpha) failed: " + testRunnerFailureMessageConstant,
			},
			expectedLevels: []zapcore.Level{zap.InfoLevel, zap.ErrorLevel},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			recordingRunner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}
			shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner, testCase.humanReadable)
			require.NoError(testInstance, creationError)

			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{
				Arguments:        []string{testFetchArgumentConstant},
				WorkingDirectory: testCheckoutDirectoryConstant,
			})
			if testCase.expectedErrorAs != nil {
				require.Error(testInstance, executionError)
				require.True(testInstance, testCase.expectedErrorAs(executionError))
				require.Zero(testInstance, executionResult)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult, executionResult)
			}

			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, execshell.CommandGit, recordingRunner.recordedCommands[0].Name)

			capturedLogs := observedLogs.All()
			require.Len(testInstance, capturedLogs, len(testCase.expectedMessages))
			for logIndex, capturedLog := range capturedLogs {
				require.Equal(testInstance, testCase.expectedMessages[logIndex], capturedLog.Message)
				require.Equal(testInstance, testCase.expectedLevels[logIndex], capturedLog.Level)
			}
		})
	}
}

func TestShellExecutorRejectsMissingCommandName(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{}
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, false)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteCommand(context.Background(), "  ", execshell.CommandDetails{})
	require.ErrorIs(testInstance, executionError, execshell.ErrCommandNameMissing)
	require.Empty(testInstance, recordingRunner.recordedCommands)
}

func TestShellExecutorExecuteCommandUsesProvidedName(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 2}}
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, false)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteCommand(context.Background(), testArbitraryCommandNameConstant, execshell.CommandDetails{Arguments: []string{"test"}})
	require.Error(testInstance, executionError)

	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, executionError, &failedError)
	require.Equal(testInstance, 2, failedError.ExitCode())
	require.Equal(testInstance, "make command exited with code 2 (test)", failedError.Error())
	require.Len(testInstance, recordingRunner.recordedCommands, 1)
	require.Equal(testInstance, execshell.CommandName(testArbitraryCommandNameConstant), recordingRunner.recordedCommands[0].Name)
}

func TestCommandFailedErrorSummarizesFirstNonBlankLines(testInstance *testing.T) {
	failure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"push"}}},
		Result:  execshell.ExecutionResult{ExitCode: 128, StandardError: "one\n\ntwo\nthree\nfour"},
	}
	require.Equal(testInstance, "git command exited with code 128 (push): one | two | three", failure.Error())
}

func TestOSCommandRunnerReportsExitCodes(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("requires a POSIX shell")
	}

	testCases := []struct {
		name             string
		arguments        []string
		streams          bool
		expectedExitCode int
		expectedOutput   string
	}{
		{
			name:             "captured_success",
			arguments:        []string{"-c", "printf captured"},
			expectedExitCode: 0,
			expectedOutput:   "captured",
		},
		{
			name:             "captured_failure",
			arguments:        []string{"-c", "exit 3"},
			expectedExitCode: 3,
		},
		{
			name:             "attached_streams",
			arguments:        []string{"-c", "printf attached"},
			streams:          true,
			expectedExitCode: 0,
			expectedOutput:   "attached",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := execshell.NewOSCommandRunner()
			details := execshell.CommandDetails{Arguments: testCase.arguments, WorkingDirectory: testInstance.TempDir()}

			var attachedOutput bytes.Buffer
			if testCase.streams {
				details.Streams = &execshell.StandardStreams{Output: &attachedOutput, Error: &attachedOutput}
			}

			result, runError := runner.Run(context.Background(), execshell.ShellCommand{Name: "sh", Details: details})
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedExitCode, result.ExitCode)
			if testCase.streams {
				require.Empty(testInstance, result.StandardOutput)
				require.Equal(testInstance, testCase.expectedOutput, attachedOutput.String())
				return
			}
			require.Equal(testInstance, testCase.expectedOutput, result.StandardOutput)
		})
	}
}

func TestOSCommandRunnerReportsSpawnFailure(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(context.Background(), execshell.ShellCommand{Name: "multigit-command-that-does-not-exist"})
	require.Error(testInstance, runError)
}

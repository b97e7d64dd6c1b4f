package execshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	gitCommandNameStringConstant              = "git"
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandNameMissingMessageConstant         = "shell command name not provided"
	commandStartMessageConstant               = "command execution starting"
	commandSuccessMessageConstant             = "command execution completed"
	commandFailureMessageConstant             = "command returned non-zero status"
	commandRunnerErrorMessageConstant         = "command execution error"
	commandNameFieldNameConstant              = "command"
	commandArgumentsFieldNameConstant         = "arguments"
	workingDirectoryFieldNameConstant         = "working_directory"
	exitCodeFieldNameConstant                 = "exit_code"
	standardErrorFieldNameConstant            = "stderr"
	attachedStreamsFieldNameConstant          = "attached_streams"
	failureDetailMaximumLinesConstant         = 3
)

// CommandName identifies an executable name.
type CommandName string

// CommandGit names the git executable.
const CommandGit CommandName = CommandName(gitCommandNameStringConstant)

// StandardStreams attaches a command to caller-owned streams instead of capturing its output.
type StandardStreams struct {
	Input  io.Reader
	Output io.Writer
	Error  io.Writer
}

// CommandDetails describes command invocation properties.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	Streams              *StandardStreams
}

// ShellCommand represents a fully qualified command invocation.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures observable command results. Output fields stay empty for attached runs.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor orchestrates running shell commands with logging.
type ShellExecutor struct {
	commandRunner        CommandRunner
	logger               *zap.Logger
	humanReadableLogging bool
	messageFormatter     CommandMessageFormatter
}

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCommandNameMissing indicates the command name was not provided.
	ErrCommandNameMissing = errors.New(commandNameMissingMessageConstant)
)

// CommandFailedError provides details about commands exiting with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

const commandFailureErrorMessageTemplateConstant = "%s command exited with code %d"

// Error names the command, its arguments and up to three lines of its output.
func (commandError CommandFailedError) Error() string {
	message := fmt.Sprintf(commandFailureErrorMessageTemplateConstant, commandError.Command.Name, commandError.Result.ExitCode)
	if len(commandError.Command.Details.Arguments) > 0 {
		message = fmt.Sprintf("%s (%s)", message, strings.Join(commandError.Command.Details.Arguments, " "))
	}
	if summary := summarizeOutput(commandError.Result); len(summary) > 0 {
		message = fmt.Sprintf("%s: %s", message, summary)
	}
	return message
}

func summarizeOutput(result ExecutionResult) string {
	detail := strings.TrimSpace(result.StandardError)
	if len(detail) == 0 {
		detail = strings.TrimSpace(result.StandardOutput)
	}
	summaryLines := make([]string, 0, failureDetailMaximumLinesConstant)
	for _, line := range strings.Split(detail, "\n") {
		if len(summaryLines) == failureDetailMaximumLinesConstant {
			break
		}
		if trimmed := strings.TrimSpace(line); len(trimmed) > 0 {
			summaryLines = append(summaryLines, trimmed)
		}
	}
	return strings.Join(summaryLines, " | ")
}

// ExitCode reports the exit status of the failed command.
func (commandError CommandFailedError) ExitCode() int {
	return commandError.Result.ExitCode
}

// CommandExecutionError wraps failures to start or wait for a command.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

const commandExecutionErrorMessageTemplateConstant = "%s command execution failed: %v"

// Error describes the underlying runner failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorMessageTemplateConstant, executionError.Command.Name, executionError.Cause)
}

// Unwrap exposes the underlying error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// NewShellExecutor builds an executor for the provided runner and logger.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		commandRunner:        commandRunner,
		logger:               logger,
		humanReadableLogging: humanReadableLogging,
		messageFormatter:     CommandMessageFormatter{},
	}, nil
}

// Execute runs the provided shell command and logs lifecycle events. A non-zero exit
// yields CommandFailedError; a failure to start yields CommandExecutionError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(strings.TrimSpace(string(command.Name))) == 0 {
		return ExecutionResult{}, ErrCommandNameMissing
	}

	executor.logStarted(command)
	executionResult, runnerError := executor.commandRunner.Run(executionContext, command)
	switch {
	case runnerError != nil:
		executor.logRunnerFailure(command, runnerError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runnerError}
	case executionResult.ExitCode != 0:
		executor.logExitFailure(command, executionResult)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}
	executor.logCompleted(command, executionResult)
	return executionResult, nil
}

func (executor *ShellExecutor) logStarted(command ShellCommand) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildStartedMessage(command))
		return
	}
	executor.logger.Info(commandStartMessageConstant,
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.Strings(commandArgumentsFieldNameConstant, command.Details.Arguments),
		zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
		zap.Bool(attachedStreamsFieldNameConstant, command.Details.Streams != nil),
	)
}

func (executor *ShellExecutor) logRunnerFailure(command ShellCommand, runnerError error) {
	if executor.humanReadableLogging {
		executor.logger.Error(executor.messageFormatter.BuildExecutionFailureMessage(command, runnerError))
		return
	}
	executor.logger.Error(commandRunnerErrorMessageConstant,
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
		zap.Error(runnerError),
	)
}

func (executor *ShellExecutor) logExitFailure(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Warn(executor.messageFormatter.BuildFailureMessage(command, result))
		return
	}
	executor.logger.Warn(commandFailureMessageConstant,
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
		zap.Int(exitCodeFieldNameConstant, result.ExitCode),
		zap.String(standardErrorFieldNameConstant, result.StandardError),
	)
}

func (executor *ShellExecutor) logCompleted(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildSuccessMessage(command))
		return
	}
	executor.logger.Info(commandSuccessMessageConstant,
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.Int(exitCodeFieldNameConstant, result.ExitCode),
	)
}

// ExecuteGit runs the git executable with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteCommand runs an arbitrary executable with the provided details.
func (executor *ShellExecutor) ExecuteCommand(executionContext context.Context, name string, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandName(name), Details: details})
}

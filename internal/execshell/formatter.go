package execshell

import (
	"fmt"
	"strings"
)

const (
	startedMessageTemplateConstant          = "Running %s"
	completedMessageTemplateConstant        = "Completed %s"
	failedMessageTemplateConstant           = "%s failed with exit code %d"
	failedDetailMessageTemplateConstant     = "%s failed with exit code %d: %s"
	executionFailedMessageTemplateConstant  = "%s failed: %v"
	workingDirectorySuffixTemplateConstant  = "%s (in %s)"
	commandDescriptionSeparatorConstant     = " "
	failureDetailLineSeparatorConstant      = "\n"
	defaultWorkingDirectoryPlaceholderValue = "."
)

// CommandMessageFormatter renders human-readable lifecycle messages for commands.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command that is about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatter.describe(command))
}

// BuildSuccessMessage describes a command that exited with status zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(completedMessageTemplateConstant, formatter.describe(command))
}

// BuildFailureMessage describes a command that exited with a non-zero status.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	detail := firstLine(result.StandardError)
	if len(detail) == 0 {
		detail = firstLine(result.StandardOutput)
	}
	if len(detail) == 0 {
		return fmt.Sprintf(failedMessageTemplateConstant, formatter.describe(command), result.ExitCode)
	}
	return fmt.Sprintf(failedDetailMessageTemplateConstant, formatter.describe(command), result.ExitCode, detail)
}

// BuildExecutionFailureMessage describes a command that could not be run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, cause error) string {
	return fmt.Sprintf(executionFailedMessageTemplateConstant, formatter.describe(command), cause)
}

func (formatter CommandMessageFormatter) describe(command ShellCommand) string {
	parts := append([]string{string(command.Name)}, command.Details.Arguments...)
	description := strings.Join(parts, commandDescriptionSeparatorConstant)

	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		workingDirectory = defaultWorkingDirectoryPlaceholderValue
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, description, workingDirectory)
}

func firstLine(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 {
		return ""
	}
	lines := strings.SplitN(trimmed, failureDetailLineSeparatorConstant, 2)
	return strings.TrimSpace(lines[0])
}

// Package fanout runs one operation sequentially across a working set of checkouts.
package fanout

import (
	"strings"

	"github.com/tyemirov/multigit/internal/execshell"
	repoerrors "github.com/tyemirov/multigit/internal/repos/errors"
)

const (
	gitProgramNameConstant          = "git"
	operationLabelSeparatorConstant = " "
	commandMissingMessageConstant   = "no command provided"
)

// Operation is either a git subcommand with passthrough arguments or an arbitrary program.
type Operation struct {
	Command   string
	Arguments []string
	IsGit     bool
}

// GitOperation describes `git <subcommand> <arguments...>`.
func GitOperation(subcommand string, arguments []string) Operation {
	return Operation{Command: subcommand, Arguments: append([]string{}, arguments...), IsGit: true}
}

// CommandOperation describes an arbitrary program invocation. The first element names the program.
func CommandOperation(commandLine []string) Operation {
	if len(commandLine) == 0 {
		return Operation{}
	}
	return Operation{Command: commandLine[0], Arguments: append([]string{}, commandLine[1:]...)}
}

// Validate rejects operations without a command name.
func (operation Operation) Validate() error {
	if len(strings.TrimSpace(operation.Command)) == 0 {
		return repoerrors.WrapMessage(repoerrors.OperationFanOut, "", repoerrors.ErrCommandMissing, commandMissingMessageConstant)
	}
	return nil
}

// Label names the operation in headers and failure messages: `git push` or the program name.
func (operation Operation) Label() string {
	if operation.IsGit {
		return gitProgramNameConstant + operationLabelSeparatorConstant + operation.Command
	}
	return operation.Command
}

func (operation Operation) shellCommand(checkout string, streams *execshell.StandardStreams) execshell.ShellCommand {
	if operation.IsGit {
		return execshell.ShellCommand{
			Name: execshell.CommandGit,
			Details: execshell.CommandDetails{
				Arguments:        append([]string{operation.Command}, operation.Arguments...),
				WorkingDirectory: checkout,
				Streams:          streams,
			},
		}
	}
	return execshell.ShellCommand{
		Name: execshell.CommandName(operation.Command),
		Details: execshell.CommandDetails{
			Arguments:        append([]string{}, operation.Arguments...),
			WorkingDirectory: checkout,
			Streams:          streams,
		},
	}
}

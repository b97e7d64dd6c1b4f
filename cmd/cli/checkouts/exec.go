package checkouts

import (
	"github.com/spf13/cobra"

	"github.com/tyemirov/multigit/internal/repos/fanout"
	flagutils "github.com/tyemirov/multigit/internal/utils/flags"
)

const (
	execUseConstant              = "exec [--filter name]... command [arguments...]"
	execShortDescriptionConstant = "Run an arbitrary command in every checkout"
	execLongDescriptionConstant  = "exec runs the given program in each checkout of the working set, one at a time, with the checkout as its working directory."
)

// ExecCommandBuilder assembles the exec command.
type ExecCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the exec command.
func (builder *ExecCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   execUseConstant,
		Short: execShortDescriptionConstant,
		Long:  execLongDescriptionConstant,
		Args:  cobra.ArbitraryArgs,
	}
	markPassthrough(command)
	filterValues := flagutils.BindFilterFlag(command)
	command.RunE = func(command *cobra.Command, arguments []string) error {
		operation := fanout.CommandOperation(arguments)
		if validationError := operation.Validate(); validationError != nil {
			return validationError
		}
		return runFanOut(command, builder.Dependencies, filterValues, operation, false)
	}
	return command, nil
}

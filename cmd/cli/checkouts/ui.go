package checkouts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	repoerrors "github.com/tyemirov/multigit/internal/repos/errors"
	"github.com/tyemirov/multigit/internal/repos/fanout"
	flagutils "github.com/tyemirov/multigit/internal/utils/flags"
)

const (
	uiUseConstant              = "ui"
	uiShortDescriptionConstant = "Open a git user interface for every checkout"
	uiLongDescriptionConstant  = "ui launches the configured git user interface (ui.command, gitup by default) in each checkout of the working set. Opening more than one checkout asks for confirmation."
	uiConfirmationTemplate     = "Open %d repositories?"
	uiOpeningTemplateConstant  = "Opening git ui for %s\n"
	uiDeclinedMessageConstant  = "No repositories opened\n"
	uiCommandMissingMessage    = "ui.command is empty"
)

// UICommandBuilder assembles the ui command.
type UICommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the ui command.
func (builder *UICommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   uiUseConstant,
		Short: uiShortDescriptionConstant,
		Long:  uiLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}
	filterValues := flagutils.BindFilterFlag(command)
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, filterValues)
	}
	return command, nil
}

func (builder *UICommandBuilder) run(command *cobra.Command, filterValues *flagutils.FilterFlagValues) error {
	predicates, parseError := parseFilterValues(filterValues)
	if parseError != nil {
		return parseError
	}

	operation := fanout.CommandOperation(strings.Fields(builder.Dependencies.configuration().UICommand))
	if validationError := operation.Validate(); validationError != nil {
		return repoerrors.WrapMessage(repoerrors.OperationFanOut, "", repoerrors.ErrCommandMissing, uiCommandMissingMessage)
	}

	executionContext := commandContext(command)
	selection, resolveError := builder.Dependencies.workingSet(executionContext, command, predicates)
	if resolveError != nil {
		return resolveError
	}
	checkouts := selection.Checkouts
	if len(checkouts) == 0 {
		return uninspectedError(selection)
	}

	if len(checkouts) > 1 {
		confirmed, confirmError := builder.Dependencies.prompter(command).Confirm(fmt.Sprintf(uiConfirmationTemplate, len(checkouts)))
		if confirmError != nil {
			return repoerrors.Wrap(repoerrors.OperationFanOut, "", repoerrors.ErrUserConfirmationFailed, confirmError)
		}
		if !confirmed {
			fmt.Fprint(command.OutOrStdout(), uiDeclinedMessageConstant)
			return uninspectedError(selection)
		}
	}

	executor, executorError := builder.Dependencies.fanOutExecutor(command, fanout.WithHeader(openingHeader), fanout.WithoutDividers())
	if executorError != nil {
		return executorError
	}
	_, runError := executor.Run(executionContext, checkouts, operation)
	return errors.Join(runError, uninspectedError(selection))
}

func openingHeader(_ fanout.Operation, checkout string) string {
	return fmt.Sprintf(uiOpeningTemplateConstant, checkout)
}

package checkouts

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	flagutils "github.com/tyemirov/multigit/internal/utils/flags"
)

const (
	statusUseConstant              = "status"
	statusShortDescriptionConstant = "Show the checkouts with uncommitted changes"
	statusLongDescriptionConstant  = "status prints every dirty checkout in the working set followed by the kinds of change present in its index and worktree. Clean checkouts print nothing."
	statusLineTemplateConstant     = "%s %s\n"
	statusFailureTemplateConstant  = "could not inspect %s: %v\n"
	statusFlagSeparatorConstant    = " "
	statusInspectionFailedConstant = "checkout could not be inspected for status"
)

// StatusCommandBuilder assembles the status command.
type StatusCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the status command.
func (builder *StatusCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusUseConstant,
		Short: statusShortDescriptionConstant,
		Long:  statusLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}
	filterValues := flagutils.BindFilterFlag(command)
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, filterValues)
	}
	return command, nil
}

func (builder *StatusCommandBuilder) run(command *cobra.Command, filterValues *flagutils.FilterFlagValues) error {
	predicates, parseError := parseFilterValues(filterValues)
	if parseError != nil {
		return parseError
	}

	executionContext := commandContext(command)
	selection, resolveError := builder.Dependencies.workingSet(executionContext, command, predicates)
	if resolveError != nil {
		return resolveError
	}

	inspector, inspectorError := builder.Dependencies.stateInspector()
	if inspectorError != nil {
		return inspectorError
	}

	logger := builder.Dependencies.logger()
	failedCheckouts := append([]string{}, selection.Uninspected...)
	for _, checkout := range selection.Checkouts {
		statusFlags, flagsError := inspector.StatusFlags(executionContext, checkout)
		if flagsError != nil {
			failedCheckouts = append(failedCheckouts, checkout)
			logger.Debug(statusInspectionFailedConstant, zap.String(checkoutFieldNameConstant, checkout), zap.Error(flagsError))
			fmt.Fprintf(command.ErrOrStderr(), statusFailureTemplateConstant, checkout, flagsError)
			continue
		}
		if len(statusFlags) == 0 {
			continue
		}
		renderedFlags := make([]string, 0, len(statusFlags))
		for _, statusFlag := range statusFlags {
			renderedFlags = append(renderedFlags, string(statusFlag))
		}
		fmt.Fprintf(command.OutOrStdout(), statusLineTemplateConstant, checkout, strings.Join(renderedFlags, statusFlagSeparatorConstant))
	}

	if len(failedCheckouts) > 0 {
		return InspectionIncompleteError{Checkouts: failedCheckouts}
	}
	return nil
}

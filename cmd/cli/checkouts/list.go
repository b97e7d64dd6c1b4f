package checkouts

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/multigit/internal/repos/inspect"
	flagutils "github.com/tyemirov/multigit/internal/utils/flags"
)

const (
	listUseConstant                 = "list"
	listShortDescriptionConstant    = "List the checkouts in the working set"
	listLongDescriptionConstant     = "list prints the path of every checkout in the working set. With --detailed it renders a table of branch, upstream and stash state for each checkout."
	listDetailedFlagNameConstant    = "detailed"
	listDetailedFlagUsageConstant   = "Render a table with the state of each checkout"
	listNameColumnWidthConstant     = 40
	listTruncationTailConstant      = "…"
	listYesValueConstant            = "yes"
	listNoValueConstant             = "no"
	listNoUpstreamValueConstant     = "-"
	listInspectionFailedLogConstant = "checkout could not be inspected for display"
	listHeaderNameConstant          = "name"
	listHeaderStateConstant         = "state"
	listHeaderBranchConstant        = "branch"
	listHeaderBehindConstant        = "behind"
	listHeaderAheadConstant         = "ahead"
	listHeaderStashesConstant       = "stashes"
	listOutputLineTemplateConstant  = "%s\n"
)

// ListCommandBuilder assembles the list command.
type ListCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}
	filterValues := flagutils.BindFilterFlag(command)
	command.Flags().Bool(listDetailedFlagNameConstant, false, listDetailedFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, filterValues)
	}
	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, filterValues *flagutils.FilterFlagValues) error {
	predicates, parseError := parseFilterValues(filterValues)
	if parseError != nil {
		return parseError
	}

	executionContext := commandContext(command)
	selection, resolveError := builder.Dependencies.workingSet(executionContext, command, predicates)
	if resolveError != nil {
		return resolveError
	}
	checkouts := selection.Checkouts

	detailed, detailedError := command.Flags().GetBool(listDetailedFlagNameConstant)
	if detailedError != nil {
		return detailedError
	}

	if !detailed {
		for _, checkout := range checkouts {
			fmt.Fprintf(command.OutOrStdout(), listOutputLineTemplateConstant, checkout)
		}
		return uninspectedError(selection)
	}

	inspector, inspectorError := builder.Dependencies.stateInspector()
	if inspectorError != nil {
		return inspectorError
	}

	rows := make([][]string, 0, len(checkouts))
	failedCheckouts := append([]string{}, selection.Uninspected...)
	for _, checkout := range checkouts {
		row, inspected := builder.detailRow(command, inspector, checkout)
		rows = append(rows, row)
		if !inspected {
			failedCheckouts = append(failedCheckouts, checkout)
		}
	}

	rendered := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(listHeaderNameConstant, listHeaderStateConstant, listHeaderBranchConstant, listHeaderBehindConstant, listHeaderAheadConstant, listHeaderStashesConstant).
		Rows(rows...).
		String()
	fmt.Fprintf(command.OutOrStdout(), listOutputLineTemplateConstant, rendered)

	if len(failedCheckouts) > 0 {
		return InspectionIncompleteError{Checkouts: failedCheckouts}
	}
	return nil
}

// detailRow renders one table row. Cells whose query failed stay blank.
func (builder *ListCommandBuilder) detailRow(command *cobra.Command, inspector inspect.StateInspector, checkout string) ([]string, bool) {
	executionContext := commandContext(command)
	logger := builder.Dependencies.logger()
	inspected := true
	recordFailure := func(queryError error) {
		inspected = false
		logger.Debug(listInspectionFailedLogConstant, zap.String(checkoutFieldNameConstant, checkout), zap.Error(queryError))
	}

	row := []string{ansi.Truncate(filepath.Base(checkout), listNameColumnWidthConstant, listTruncationTailConstant), "", "", "", "", ""}

	if state, stateError := inspector.State(executionContext, checkout); stateError != nil {
		recordFailure(stateError)
	} else {
		row[1] = state.String()
	}

	if branch, branchError := inspector.CurrentBranch(executionContext, checkout); branchError != nil {
		recordFailure(branchError)
	} else {
		row[2] = strings.TrimSpace(branch)
	}

	if behind, behindError := inspector.BehindRemote(executionContext, checkout); behindError != nil {
		recordFailure(behindError)
	} else {
		row[3] = renderTernary(behind)
	}

	if ahead, aheadError := inspector.AheadOfRemote(executionContext, checkout); aheadError != nil {
		recordFailure(aheadError)
	} else {
		row[4] = renderTernary(ahead)
	}

	if stashed, stashError := inspector.HasStashedWork(executionContext, checkout); stashError != nil {
		recordFailure(stashError)
	} else {
		row[5] = renderBoolean(stashed)
	}

	return row, inspected
}

func renderTernary(value inspect.TernaryValue) string {
	switch value {
	case inspect.TernaryYes:
		return listYesValueConstant
	case inspect.TernaryNo:
		return listNoValueConstant
	default:
		return listNoUpstreamValueConstant
	}
}

func renderBoolean(value bool) string {
	if value {
		return listYesValueConstant
	}
	return listNoValueConstant
}

package checkouts

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyemirov/multigit/internal/repos/fanout"
	flagutils "github.com/tyemirov/multigit/internal/utils/flags"
)

const (
	gitUseTemplateConstant              = "%s [--filter name]... [git-arguments...]"
	gitShortDescriptionTemplateConstant = "Run git %s in every checkout"
	gitLongDescriptionTemplateConstant  = "%s runs `git %s` in each checkout of the working set, one at a time, passing every argument after its own flags through to git unchanged."
	pullLongDescriptionSuffixConstant   = " Checkouts whose current branch has no upstream are skipped."
)

// Git subcommands exposed as fan-out commands.
const (
	GitSubcommandAdd    = "add"
	GitSubcommandCommit = "commit"
	GitSubcommandPush   = "push"
	GitSubcommandPull   = "pull"
	GitSubcommandFetch  = "fetch"
)

// GitCommandBuilder assembles a git passthrough command such as push or pull.
type GitCommandBuilder struct {
	Subcommand   string
	TrackingOnly bool
	Dependencies Dependencies
}

// GitCommandBuilders returns the builders for every git passthrough command. pull only
// visits checkouts with an upstream branch.
func GitCommandBuilders(dependencies Dependencies) []*GitCommandBuilder {
	return []*GitCommandBuilder{
		{Subcommand: GitSubcommandAdd, Dependencies: dependencies},
		{Subcommand: GitSubcommandCommit, Dependencies: dependencies},
		{Subcommand: GitSubcommandPush, Dependencies: dependencies},
		{Subcommand: GitSubcommandPull, TrackingOnly: true, Dependencies: dependencies},
		{Subcommand: GitSubcommandFetch, Dependencies: dependencies},
	}
}

// Build constructs the passthrough command.
func (builder *GitCommandBuilder) Build() (*cobra.Command, error) {
	longDescription := fmt.Sprintf(gitLongDescriptionTemplateConstant, builder.Subcommand, builder.Subcommand)
	if builder.TrackingOnly {
		longDescription += pullLongDescriptionSuffixConstant
	}
	command := &cobra.Command{
		Use:   fmt.Sprintf(gitUseTemplateConstant, builder.Subcommand),
		Short: fmt.Sprintf(gitShortDescriptionTemplateConstant, builder.Subcommand),
		Long:  longDescription,
		Args:  cobra.ArbitraryArgs,
	}
	markPassthrough(command)
	filterValues := flagutils.BindFilterFlag(command)
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, filterValues, arguments)
	}
	return command, nil
}

func (builder *GitCommandBuilder) run(command *cobra.Command, filterValues *flagutils.FilterFlagValues, arguments []string) error {
	operation := fanout.GitOperation(builder.Subcommand, arguments)
	if validationError := operation.Validate(); validationError != nil {
		return validationError
	}
	return runFanOut(command, builder.Dependencies, filterValues, operation, builder.TrackingOnly)
}

// runFanOut resolves the working set and runs the operation across it.
func runFanOut(command *cobra.Command, dependencies Dependencies, filterValues *flagutils.FilterFlagValues, operation fanout.Operation, trackingOnly bool) error {
	predicates, parseError := parseFilterValues(filterValues)
	if parseError != nil {
		return parseError
	}

	executionContext := commandContext(command)
	selection, resolveError := dependencies.workingSet(executionContext, command, predicates)
	if resolveError != nil {
		return resolveError
	}
	checkouts := selection.Checkouts

	if trackingOnly {
		inspector, inspectorError := dependencies.stateInspector()
		if inspectorError != nil {
			return inspectorError
		}
		checkouts = fanout.TrackingCheckouts(executionContext, checkouts, inspector, dependencies.logger())
	}

	executor, executorError := dependencies.fanOutExecutor(command)
	if executorError != nil {
		return executorError
	}
	_, runError := executor.Run(executionContext, checkouts, operation)
	return errors.Join(runError, uninspectedError(selection))
}

package flags

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tyemirov/multigit/internal/utils"
)

// ErrFlagNotDefined indicates that the requested flag is not present on the command.
var ErrFlagNotDefined = errors.New("flag not defined")

// BoolFlag returns the flag value and whether the operator set it.
func BoolFlag(command *cobra.Command, name string) (bool, bool, error) {
	return flagValue(command, name, (*pflag.FlagSet).GetBool)
}

// StringFlag returns the flag value and whether the operator set it.
func StringFlag(command *cobra.Command, name string) (string, bool, error) {
	return flagValue(command, name, (*pflag.FlagSet).GetString)
}

// StringArrayFlag returns every occurrence of a repeatable flag and whether the operator set it.
func StringArrayFlag(command *cobra.Command, name string) ([]string, bool, error) {
	return flagValue(command, name, (*pflag.FlagSet).GetStringArray)
}

// flagValue looks the flag up on the command, then on the persistent sets it inherits.
func flagValue[T any](command *cobra.Command, name string, read func(*pflag.FlagSet, string) (T, error)) (T, bool, error) {
	var zero T
	if command == nil {
		return zero, false, ErrFlagNotDefined
	}

	flagSets := []*pflag.FlagSet{command.Flags(), command.PersistentFlags(), command.InheritedFlags()}
	if root := command.Root(); root != nil {
		flagSets = append(flagSets, root.PersistentFlags())
	}
	for _, flagSet := range flagSets {
		if flagSet == nil {
			continue
		}
		flag := flagSet.Lookup(name)
		if flag == nil {
			continue
		}
		value, readError := read(flagSet, name)
		if readError != nil {
			return zero, false, readError
		}
		return value, flag.Changed, nil
	}
	return zero, false, ErrFlagNotDefined
}

// CollectExecutionFlags reads --yes from the command line.
func CollectExecutionFlags(command *cobra.Command) utils.ExecutionFlags {
	assumeYes, assumeYesSet, flagError := BoolFlag(command, AssumeYesFlagName)
	if flagError != nil {
		return utils.ExecutionFlags{}
	}
	return utils.ExecutionFlags{AssumeYes: assumeYes, AssumeYesSet: assumeYesSet}
}

// ResolveExecutionFlags prefers the flags recorded on the command context and falls back to
// the command line. The boolean reports whether the operator supplied --yes.
func ResolveExecutionFlags(command *cobra.Command) (utils.ExecutionFlags, bool) {
	if command != nil {
		if recorded, available := utils.NewCommandContextAccessor().ExecutionFlags(command.Context()); available {
			return recorded, true
		}
	}
	executionFlags := CollectExecutionFlags(command)
	return executionFlags, executionFlags.AssumeYesSet
}

// ResolveScopeDirectory returns the --directory override from context or flags.
func ResolveScopeDirectory(command *cobra.Command) (string, bool) {
	if command == nil {
		return "", false
	}
	if directory, available := utils.NewCommandContextAccessor().ScopeDirectory(command.Context()); available {
		return directory, true
	}
	directory, changed, flagError := StringFlag(command, DirectoryFlagName)
	if flagError != nil {
		return "", false
	}
	trimmed := strings.TrimSpace(directory)
	if !changed || len(trimmed) == 0 {
		return "", false
	}
	return trimmed, true
}

package checkouts

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	passthroughAnnotationConstant = "multigit.passthrough"
	argumentTerminatorConstant    = "--"
	flagPrefixConstant            = "-"
	longFlagPrefixConstant        = "--"
	flagValueSeparatorConstant    = "="
	helpFlagNameConstant          = "help"
	helpFlagShorthandConstant     = "h"
)

// markPassthrough flags a command whose trailing arguments belong to the program it runs.
func markPassthrough(command *cobra.Command) {
	if command.Annotations == nil {
		command.Annotations = map[string]string{}
	}
	command.Annotations[passthroughAnnotationConstant] = "true"
}

func isPassthrough(command *cobra.Command) bool {
	_, marked := command.Annotations[passthroughAnnotationConstant]
	return marked
}

// SeparatePassthroughArguments inserts -- where a passthrough command's own flags end, so
// the remaining arguments reach git or the executed program unchanged. Only the command's
// local flags (--filter, --help) are read after its name; root flags go before it.
// Arguments for any other command are returned as given.
func SeparatePassthroughArguments(root *cobra.Command, arguments []string) []string {
	if root == nil {
		return arguments
	}

	rootFlags := root.PersistentFlags()
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminatorConstant {
			return arguments
		}
		if isFlagToken(argument) {
			flag, inlineValue := lookupFlagToken(rootFlags, argument)
			if flag == nil {
				flag, inlineValue = lookupFlagToken(root.Flags(), argument)
			}
			if flag == nil {
				return arguments
			}
			if consumesNextArgument(flag, inlineValue) {
				index++
			}
			continue
		}

		subcommand := findSubcommand(root, argument)
		if subcommand == nil || !isPassthrough(subcommand) {
			return arguments
		}
		return separateAfter(subcommand, arguments, index+1)
	}
	return arguments
}

func separateAfter(command *cobra.Command, arguments []string, start int) []string {
	localFlags := command.LocalFlags()
	for index := start; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminatorConstant {
			return arguments
		}
		if isFlagToken(argument) {
			if isHelpToken(argument) {
				continue
			}
			if flag, inlineValue := lookupFlagToken(localFlags, argument); flag != nil {
				if consumesNextArgument(flag, inlineValue) {
					index++
				}
				continue
			}
		}
		separated := make([]string, 0, len(arguments)+1)
		separated = append(separated, arguments[:index]...)
		separated = append(separated, argumentTerminatorConstant)
		return append(separated, arguments[index:]...)
	}
	return arguments
}

func findSubcommand(root *cobra.Command, name string) *cobra.Command {
	for _, subcommand := range root.Commands() {
		if subcommand.Name() == name || subcommand.HasAlias(name) {
			return subcommand
		}
	}
	return nil
}

func isFlagToken(argument string) bool {
	return len(argument) > 1 && strings.HasPrefix(argument, flagPrefixConstant)
}

func isHelpToken(argument string) bool {
	return argument == longFlagPrefixConstant+helpFlagNameConstant || argument == flagPrefixConstant+helpFlagShorthandConstant
}

// lookupFlagToken resolves --name, --name=value, -x and -xvalue. The boolean reports
// whether the token already carries the value.
func lookupFlagToken(flagSet *pflag.FlagSet, argument string) (*pflag.Flag, bool) {
	if flagSet == nil {
		return nil, false
	}
	if longForm, found := strings.CutPrefix(argument, longFlagPrefixConstant); found {
		flagName, _, hasValue := strings.Cut(longForm, flagValueSeparatorConstant)
		return flagSet.Lookup(flagName), hasValue
	}
	shorthand := strings.TrimPrefix(argument, flagPrefixConstant)
	flag := flagSet.ShorthandLookup(shorthand[:1])
	return flag, len(shorthand) > 1
}

func consumesNextArgument(flag *pflag.Flag, inlineValue bool) bool {
	return !inlineValue && len(flag.NoOptDefVal) == 0
}

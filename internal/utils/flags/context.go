// Package flags binds the flags shared by multigit commands and reads them back.
package flags

import "github.com/spf13/cobra"

const (
	// DirectoryFlagName exposes the scope override flag name.
	DirectoryFlagName = "directory"
	// DirectoryFlagShorthand provides the shorthand for the scope override flag.
	DirectoryFlagShorthand = "d"
	// DirectoryFlagUsage describes the scope override flag purpose.
	DirectoryFlagUsage = "Scan this directory for checkouts instead of using the registry"
	// FilterFlagName exposes the checkout filter flag name.
	FilterFlagName = "filter"
	// FilterFlagUsage describes the checkout filter flag purpose.
	FilterFlagUsage = "Only include checkouts matching this filter (repeatable: dirty, tracking)"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
)

// ScopeFlagValues stores the scope override flag value.
type ScopeFlagValues struct {
	Directory string
}

// BindScopeFlags attaches the persistent --directory flag to the provided command.
func BindScopeFlags(command *cobra.Command) *ScopeFlagValues {
	values := &ScopeFlagValues{}
	if command == nil {
		return values
	}
	persistentFlagSet := command.PersistentFlags()
	if persistentFlagSet.Lookup(DirectoryFlagName) == nil {
		persistentFlagSet.StringVarP(&values.Directory, DirectoryFlagName, DirectoryFlagShorthand, "", DirectoryFlagUsage)
	}
	return values
}

// FilterFlagValues stores the requested filter names in command-line order.
type FilterFlagValues struct {
	Filters []string
}

// BindFilterFlag attaches the repeatable --filter flag to the provided command.
func BindFilterFlag(command *cobra.Command) *FilterFlagValues {
	values := &FilterFlagValues{}
	if command == nil {
		return values
	}
	if command.Flags().Lookup(FilterFlagName) == nil {
		command.Flags().StringArrayVar(&values.Filters, FilterFlagName, nil, FilterFlagUsage)
	}
	return values
}

// BindAssumeYesFlag attaches the persistent --yes/-y flag to the provided command.
func BindAssumeYesFlag(command *cobra.Command, defaultValue bool) {
	if command == nil {
		return
	}
	persistentFlagSet := command.PersistentFlags()
	if persistentFlagSet.Lookup(AssumeYesFlagName) == nil {
		persistentFlagSet.BoolP(AssumeYesFlagName, AssumeYesFlagShorthand, defaultValue, AssumeYesFlagUsage)
	}
}

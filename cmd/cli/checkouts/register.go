package checkouts

import (
	"fmt"

	"github.com/spf13/cobra"

	repoerrors "github.com/tyemirov/multigit/internal/repos/errors"
	"github.com/tyemirov/multigit/internal/repos/registry"
	flagutils "github.com/tyemirov/multigit/internal/utils/flags"
)

const (
	registerUseConstant                = "register [path...]"
	registerShortDescriptionConstant   = "Add checkouts or directory trees to the registry"
	registerLongDescriptionConstant    = "register records each path in the registry. A path that is a checkout root is registered as a checkout; any other path is registered as a directory scanned for checkouts. Without arguments the current directory is registered."
	unregisterUseConstant              = "unregister [path...]"
	unregisterShortDescriptionConstant = "Remove checkouts or directory trees from the registry"
	unregisterLongDescriptionConstant  = "unregister removes each path from the registry. Without arguments the current directory is removed. --all clears the registry after confirmation."
	unregisterAllFlagNameConstant      = "all"
	unregisterAllFlagUsageConstant     = "Remove every registered checkout and directory"
	unregisterAllPromptConstant        = "Unregister all repositories and directories?"
	registeredCheckoutTemplateConstant = "Registered checkout %s\n"
	registeredTreeTemplateConstant     = "Registered directory %s\n"
	unregisteredTemplateConstant       = "Unregistered %s\n"
	unregisteredAllMessageConstant     = "Unregistered all checkouts and directories\n"
	unregisterDeclinedMessageConstant  = "Registry left unchanged\n"
	scopeConflictMessageConstant       = "--directory cannot be combined with registry changes"
)

// RegisterCommandBuilder assembles the register command.
type RegisterCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the register command.
func (builder *RegisterCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   registerUseConstant,
		Short: registerShortDescriptionConstant,
		Long:  registerLongDescriptionConstant,
		Args:  cobra.ArbitraryArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *RegisterCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if scopeError := rejectScopeOverride(command, repoerrors.OperationRegister); scopeError != nil {
		return scopeError
	}
	paths, pathsError := builder.Dependencies.pathArguments(arguments)
	if pathsError != nil {
		return pathsError
	}
	store, storeError := builder.Dependencies.registryStore()
	if storeError != nil {
		return storeError
	}
	registrations, registerError := store.Register(paths)
	if registerError != nil {
		return registerError
	}
	for _, registration := range registrations {
		template := registeredTreeTemplateConstant
		if registration.Kind == registry.KindCheckout {
			template = registeredCheckoutTemplateConstant
		}
		fmt.Fprintf(command.OutOrStdout(), template, registration.Path)
	}
	return nil
}

// UnregisterCommandBuilder assembles the unregister command.
type UnregisterCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the unregister command.
func (builder *UnregisterCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   unregisterUseConstant,
		Short: unregisterShortDescriptionConstant,
		Long:  unregisterLongDescriptionConstant,
		Args:  cobra.ArbitraryArgs,
		RunE:  builder.run,
	}
	command.Flags().Bool(unregisterAllFlagNameConstant, false, unregisterAllFlagUsageConstant)
	return command, nil
}

func (builder *UnregisterCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if scopeError := rejectScopeOverride(command, repoerrors.OperationUnregister); scopeError != nil {
		return scopeError
	}
	removeAll, allError := command.Flags().GetBool(unregisterAllFlagNameConstant)
	if allError != nil {
		return allError
	}

	store, storeError := builder.Dependencies.registryStore()
	if storeError != nil {
		return storeError
	}

	if removeAll {
		confirmed, confirmError := builder.Dependencies.prompter(command).Confirm(unregisterAllPromptConstant)
		if confirmError != nil {
			return repoerrors.Wrap(repoerrors.OperationUnregister, store.FilePath(), repoerrors.ErrUserConfirmationFailed, confirmError)
		}
		if !confirmed {
			fmt.Fprint(command.OutOrStdout(), unregisterDeclinedMessageConstant)
			return nil
		}
		if clearError := store.UnregisterAll(); clearError != nil {
			return clearError
		}
		fmt.Fprint(command.OutOrStdout(), unregisteredAllMessageConstant)
		return nil
	}

	paths, pathsError := builder.Dependencies.pathArguments(arguments)
	if pathsError != nil {
		return pathsError
	}
	removed, unregisterError := store.Unregister(paths)
	if unregisterError != nil {
		return unregisterError
	}
	for _, removedPath := range removed {
		fmt.Fprintf(command.OutOrStdout(), unregisteredTemplateConstant, removedPath)
	}
	return nil
}

func rejectScopeOverride(command *cobra.Command, operation repoerrors.Operation) error {
	if _, scoped := flagutils.ResolveScopeDirectory(command); scoped {
		return repoerrors.WrapMessage(operation, "", repoerrors.ErrScopeConflict, scopeConflictMessageConstant)
	}
	return nil
}

package checkouts

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tyemirov/multigit/internal/execshell"
	repoerrors "github.com/tyemirov/multigit/internal/repos/errors"
)

const (
	configUseConstant                = "config"
	configShortDescriptionConstant   = "Open the configuration file in an editor"
	configLongDescriptionConstant    = "config opens the active configuration file in $EDITOR, falling back to editor.command and then vi. When no configuration file exists yet, the user configuration path is opened."
	editorEnvironmentVariable        = "EDITOR"
	xdgConfigHomeEnvironmentVariable = "XDG_CONFIG_HOME"
	configurationDirectoryName       = "multigit"
	configurationFileName            = "config.yaml"
	configurationDirectoryPerms      = 0o755
	editorMissingMessageConstant     = "no editor configured"
)

// ConfigCommandBuilder assembles the config command.
type ConfigCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the config command.
func (builder *ConfigCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   configUseConstant,
		Short: configShortDescriptionConstant,
		Long:  configLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *ConfigCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configurationPath, pathError := builder.configurationPath()
	if pathError != nil {
		return pathError
	}
	if directoryError := builder.Dependencies.fileSystem().MkdirAll(filepath.Dir(configurationPath), configurationDirectoryPerms); directoryError != nil {
		return directoryError
	}

	editorLine := strings.Fields(builder.Dependencies.lookupEnvironment(editorEnvironmentVariable))
	if len(editorLine) == 0 {
		editorLine = strings.Fields(builder.Dependencies.configuration().EditorCommand)
	}
	if len(editorLine) == 0 {
		return repoerrors.WrapMessage(repoerrors.OperationFanOut, configurationPath, repoerrors.ErrCommandMissing, editorMissingMessageConstant)
	}

	commandExecutor, executorError := builder.Dependencies.commandExecutor()
	if executorError != nil {
		return executorError
	}
	_, editError := commandExecutor.Execute(commandContext(command), execshell.ShellCommand{
		Name: execshell.CommandName(editorLine[0]),
		Details: execshell.CommandDetails{
			Arguments: append(append([]string{}, editorLine[1:]...), configurationPath),
			Streams:   &execshell.StandardStreams{Input: command.InOrStdin(), Output: command.OutOrStdout(), Error: command.ErrOrStderr()},
		},
	})
	return editError
}

// configurationPath prefers the loaded configuration file and otherwise points at the user
// configuration directory.
func (builder *ConfigCommandBuilder) configurationPath() (string, error) {
	if loadedPath := builder.Dependencies.configuration().ConfigurationFilePath; len(loadedPath) > 0 {
		return loadedPath, nil
	}
	configurationHome := strings.TrimSpace(builder.Dependencies.lookupEnvironment(xdgConfigHomeEnvironmentVariable))
	if len(configurationHome) == 0 {
		userConfigurationDirectory, directoryError := os.UserConfigDir()
		if directoryError != nil {
			return "", directoryError
		}
		configurationHome = userConfigurationDirectory
	}
	return filepath.Join(configurationHome, configurationDirectoryName, configurationFileName), nil
}

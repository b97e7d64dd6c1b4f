package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/multigit/cmd/cli/checkouts"
	reposdeps "github.com/tyemirov/multigit/internal/repos/dependencies"
	"github.com/tyemirov/multigit/internal/utils"
	flagutils "github.com/tyemirov/multigit/internal/utils/flags"
	"github.com/tyemirov/multigit/internal/version"
)

const (
	applicationNameConstant                            = "multigit"
	applicationShortDescriptionConstant                = "Run git operations across many checkouts at once"
	applicationLongDescriptionConstant                 = "multigit keeps a registry of git checkouts and directory trees and runs status, add, commit, push, pull, fetch or any command across all of them in one invocation."
	configFileFlagNameConstant                         = "config"
	configFileFlagUsageConstant                        = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                           = "log-level"
	logLevelFlagUsageConstant                          = "Override the configured log level (debug, info, warn or error)."
	logFormatFlagNameConstant                          = "log-format"
	logFormatFlagUsageConstant                         = "Override the configured log format (structured or console)."
	registryFlagNameConstant                           = "registry"
	registryFlagUsageConstant                          = "Override the registry file location."
	configurationInitializationFlagNameConstant        = "init"
	configurationInitializationFlagUsageConstant       = "Write the embedded default configuration to LOCAL (./config.yaml) or USER ($HOME/.multigit/config.yaml)."
	configurationInitializationDefaultScopeConstant    = "local"
	configurationInitializationForceFlagNameConstant   = "force"
	configurationInitializationForceFlagUsageConstant  = "Overwrite an existing configuration file when initializing."
	configurationInitializationScopeLocalConstant      = "local"
	configurationInitializationScopeUserConstant       = "user"
	commonConfigurationKeyConstant                     = "common"
	commonLogLevelConfigKeyConstant                    = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant                   = commonConfigurationKeyConstant + ".log_format"
	commonAssumeYesConfigKeyConstant                   = commonConfigurationKeyConstant + ".assume_yes"
	environmentPrefixConstant                          = "MULTIGIT"
	configurationNameConstant                          = "config"
	configurationTypeConstant                          = "yaml"
	configurationFileNameConstant                      = configurationNameConstant + "." + configurationTypeConstant
	configurationDirectoryPermissionConstant           = 0o755
	configurationFilePermissionConstant                = 0o600
	configurationInitializedMessageConstant            = "configuration initialized"
	configurationLogLevelFieldConstant                 = "log_level"
	configurationLogFormatFieldConstant                = "log_format"
	configurationFileFieldConstant                     = "config_file"
	xdgConfigHomeEnvironmentVariableConstant           = "XDG_CONFIG_HOME"
	configurationLoadErrorTemplateConstant             = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                    = "unable to flush logger: %w"
	configurationInitializedConsoleTemplateConstant    = "%s | log level=%s | log format=%s | config file=%s"
	rootCommandDebugMessageConstant                    = "multigit CLI diagnostics"
	logFieldCommandNameConstant                        = "command_name"
	logFieldArgumentsConstant                          = "arguments"
	loggerNotInitializedMessageConstant                = "logger not initialized"
	defaultConfigurationSearchPathConstant             = "."
	applicationConfigurationDirectoryNameConstant      = "multigit"
	userConfigurationDirectoryNameConstant             = ".multigit"
	configurationSearchPathEnvironmentVariableConstant = "MULTIGIT_CONFIG_SEARCH_PATH"
	versionFlagNameConstant                            = "version"
	versionFlagUsageConstant                           = "Print the application version and exit"
	versionOutputTemplateConstant                      = "multigit version: %s\n"
)

var benignSyncErrors = []error{syscall.ENOTSUP, syscall.EINVAL, syscall.EBADF, syscall.ENOTTY}

type loggerOutputsFactory interface {
	CreateLoggerOutputs(logLevel utils.LogLevel, logFormat utils.LogFormat) (utils.LoggerOutputs, error)
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// Application wires configuration, logging and the checkout commands into a Cobra command tree.
type Application struct {
	rootCommand                       *cobra.Command
	fileSystem                        afero.Fs
	configurationLoader               *utils.ConfigurationLoader
	loggerFactoryProvider             func(utils.RotatingFileSettings) loggerOutputsFactory
	logger                            *zap.Logger
	consoleLogger                     *zap.Logger
	configuration                     ApplicationConfiguration
	configurationMetadata             utils.LoadedConfiguration
	configurationFilePath             string
	logLevelFlagValue                 string
	logFormatFlagValue                string
	registryFlagValue                 string
	commandContextAccessor            utils.CommandContextAccessor
	scopeFlagValues                   *flagutils.ScopeFlagValues
	configurationInitializationScope  string
	configurationInitializationForced bool
	versionFlag                       bool
	linkedVersion                     string
	versionResolver                   func(context.Context) string
	exitFunction                      func(int)
}

// ApplicationOption customises an Application.
type ApplicationOption func(*Application)

// WithLinkedVersion records the version stamped into the binary at link time.
func WithLinkedVersion(linkedVersion string) ApplicationOption {
	return func(application *Application) {
		application.linkedVersion = strings.TrimSpace(linkedVersion)
	}
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(options ...ApplicationOption) *Application {
	application := &Application{
		loggerFactoryProvider: func(settings utils.RotatingFileSettings) loggerOutputsFactory {
			return utils.NewLoggerFactory(utils.WithRotatingFile(settings))
		},
		fileSystem:             afero.NewOsFs(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}
	application.versionResolver = application.resolveVersion
	application.exitFunction = os.Exit
	for _, option := range options {
		option(application)
	}

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		resolveConfigurationSearchPaths(),
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	cobraCommand := &cobra.Command{
		Use:               applicationNameConstant,
		Short:             applicationShortDescriptionConstant,
		Long:              applicationLongDescriptionConstant,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: application.prepareCommand,
		RunE:              application.runRootCommand,
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.registryFlagValue, registryFlagNameConstant, "", registryFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.configurationInitializationScope,
		configurationInitializationFlagNameConstant,
		configurationInitializationDefaultScopeConstant,
		configurationInitializationFlagUsageConstant,
	)
	cobraCommand.PersistentFlags().BoolVar(
		&application.configurationInitializationForced,
		configurationInitializationForceFlagNameConstant,
		false,
		configurationInitializationForceFlagUsageConstant,
	)
	cobraCommand.PersistentFlags().BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)

	application.scopeFlagValues = flagutils.BindScopeFlags(cobraCommand)
	flagutils.BindAssumeYesFlag(cobraCommand, false)

	for _, builder := range application.commandBuilders() {
		subcommand, buildError := builder.Build()
		if buildError != nil {
			continue
		}
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// prepareCommand loads configuration and loggers before any subcommand runs, and answers
// --version without running the subcommand.
func (application *Application) prepareCommand(command *cobra.Command, _ []string) error {
	if initializationError := application.initializeConfiguration(command); initializationError != nil {
		return initializationError
	}
	if versionRequested, versionSet, flagError := flagutils.BoolFlag(command, versionFlagNameConstant); flagError == nil && versionSet && versionRequested {
		application.printVersion(command)
		application.exitFunction(0)
	}
	return nil
}

func (application *Application) commandBuilders() []commandBuilder {
	dependencies := checkouts.Dependencies{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConsoleLoggerProvider: func() *zap.Logger {
			return application.consoleLogger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        application.checkoutsConfiguration,
	}

	builders := []commandBuilder{
		&checkouts.ListCommandBuilder{Dependencies: dependencies},
		&checkouts.StatusCommandBuilder{Dependencies: dependencies},
	}
	for _, gitBuilder := range checkouts.GitCommandBuilders(dependencies) {
		builders = append(builders, gitBuilder)
	}
	return append(builders,
		&checkouts.ExecCommandBuilder{Dependencies: dependencies},
		&checkouts.RegisterCommandBuilder{Dependencies: dependencies},
		&checkouts.UnregisterCommandBuilder{Dependencies: dependencies},
		&checkouts.UICommandBuilder{Dependencies: dependencies},
		&checkouts.ConfigCommandBuilder{Dependencies: dependencies},
	)
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	arguments := normalizeInitializationScopeArguments(os.Args[1:])
	application.rootCommand.SetArgs(checkouts.SeparatePassthroughArguments(application.rootCommand, arguments))

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute(linkedVersion string) error {
	return NewApplication(WithLinkedVersion(linkedVersion)).Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		commonAssumeYesConfigKeyConstant: false,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, registryFlagNameConstant) {
		application.configuration.Registry.File = application.registryFlagValue
	}

	loggerFactory := application.loggerFactoryProvider(utils.RotatingFileSettings{
		Path:       application.configuration.Common.LogFile,
		MaxSizeMB:  application.configuration.Common.LogFileMaxSizeMB,
		MaxBackups: application.configuration.Common.LogFileMaxBackups,
		MaxAgeDays: application.configuration.Common.LogFileMaxAgeDays,
	})
	loggerOutputs, loggerCreationError := loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}

	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	application.logConfigurationInitialization()

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithExecutionFlags(updatedContext, flagutils.CollectExecutionFlags(command))
		updatedContext = application.commandContextAccessor.WithLogLevel(updatedContext, application.configuration.Common.LogLevel)
		if application.persistentFlagChanged(command, flagutils.DirectoryFlagName) && application.scopeFlagValues != nil {
			updatedContext = application.commandContextAccessor.WithScopeDirectory(updatedContext, application.scopeFlagValues.Directory)
		}

		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	if !strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	if application.humanReadableLoggingEnabled() {
		bannerMessage := fmt.Sprintf(
			configurationInitializedConsoleTemplateConstant,
			configurationInitializedMessageConstant,
			application.configuration.Common.LogLevel,
			application.configuration.Common.LogFormat,
			application.configurationMetadata.ConfigFileUsed,
		)
		application.consoleLogger.Debug(bannerMessage)
		return
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
}

func (application *Application) checkoutsConfiguration() checkouts.CommandConfiguration {
	configuration := checkouts.DefaultCommandConfiguration()
	configuration.RegistryFilePath = application.configuration.Registry.File
	configuration.ConfigurationFilePath = application.configurationMetadata.ConfigFileUsed
	configuration.AssumeYes = application.configuration.Common.AssumeYes
	if command := strings.TrimSpace(application.configuration.UI.Command); len(command) > 0 {
		configuration.UICommand = command
	}
	if command := strings.TrimSpace(application.configuration.Editor.Command); len(command) > 0 {
		configuration.EditorCommand = command
	}
	return configuration
}

func (application *Application) resolveVersion(executionContext context.Context) string {
	dependencies := version.Dependencies{LinkedVersion: application.linkedVersion}
	if shellExecutor, executorError := reposdeps.ResolveShellExecutor(nil, application.logger, application.humanReadableLoggingEnabled()); executorError == nil {
		dependencies.GitExecutor = shellExecutor
	}
	if executablePath, executableError := os.Executable(); executableError == nil {
		dependencies.SourceDirectory = filepath.Dir(executablePath)
	}
	return strings.TrimSpace(version.Detect(executionContext, dependencies))
}

func (application *Application) printVersion(command *cobra.Command) {
	fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, application.versionResolver(command.Context()))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	initializationHandled, initializationError := application.handleConfigurationInitialization(command)
	if initializationError != nil {
		return initializationError
	}
	if initializationHandled {
		return nil
	}

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return application.syncLoggerInstance(application.consoleLogger)
}

// syncLoggerInstance ignores the errors zap reports when the sink is a terminal or pipe.
func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	syncError := logger.Sync()
	for _, benignError := range benignSyncErrors {
		if errors.Is(syncError, benignError) {
			return nil
		}
	}
	return syncError
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	if flag := command.Flags().Lookup(flagName); flag != nil && flag.Changed {
		return true
	}
	return command.Root().PersistentFlags().Changed(flagName)
}

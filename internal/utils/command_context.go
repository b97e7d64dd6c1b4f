package utils

import (
	"context"
	"strings"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	scopeDirectoryContextKeyConstant        = commandContextKey("scopeDirectory")
	executionFlagsContextKeyConstant        = commandContextKey("executionFlags")
	logLevelContextKeyConstant              = commandContextKey("logLevel")
)

type commandContextKey string

// ExecutionFlags holds the --yes flag value and whether the operator set it explicitly.
type ExecutionFlags struct {
	AssumeYes    bool
	AssumeYesSet bool
}

// CommandContextAccessor stores root-level invocation settings on a command context so
// subcommands can read them without re-parsing flags.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file that was loaded, blank included.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return context.WithValue(baseContext(parentContext), configurationFilePathContextKeyConstant, configurationFilePath)
}

// WithScopeDirectory records the --directory override. Blank values leave the context unchanged.
func (accessor CommandContextAccessor) WithScopeDirectory(parentContext context.Context, scopeDirectory string) context.Context {
	return withTrimmedValue(parentContext, scopeDirectoryContextKeyConstant, scopeDirectory)
}

// WithExecutionFlags records the execution flags.
func (accessor CommandContextAccessor) WithExecutionFlags(parentContext context.Context, flags ExecutionFlags) context.Context {
	return context.WithValue(baseContext(parentContext), executionFlagsContextKeyConstant, flags)
}

// WithLogLevel records the effective log level. Blank values leave the context unchanged.
func (accessor CommandContextAccessor) WithLogLevel(parentContext context.Context, logLevel string) context.Context {
	return withTrimmedValue(parentContext, logLevelContextKeyConstant, logLevel)
}

// ConfigurationFilePath returns the recorded configuration file path.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return contextValue[string](executionContext, configurationFilePathContextKeyConstant)
}

// ScopeDirectory returns the recorded --directory override.
func (accessor CommandContextAccessor) ScopeDirectory(executionContext context.Context) (string, bool) {
	return contextValue[string](executionContext, scopeDirectoryContextKeyConstant)
}

// ExecutionFlags returns the recorded execution flags.
func (accessor CommandContextAccessor) ExecutionFlags(executionContext context.Context) (ExecutionFlags, bool) {
	return contextValue[ExecutionFlags](executionContext, executionFlagsContextKeyConstant)
}

// LogLevel returns the recorded log level.
func (accessor CommandContextAccessor) LogLevel(executionContext context.Context) (string, bool) {
	return contextValue[string](executionContext, logLevelContextKeyConstant)
}

func baseContext(parentContext context.Context) context.Context {
	if parentContext == nil {
		return context.Background()
	}
	return parentContext
}

func withTrimmedValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	parentContext = baseContext(parentContext)
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return parentContext
	}
	return context.WithValue(parentContext, key, trimmedValue)
}

func contextValue[T any](executionContext context.Context, key commandContextKey) (T, bool) {
	var zero T
	if executionContext == nil {
		return zero, false
	}
	value, available := executionContext.Value(key).(T)
	if !available {
		return zero, false
	}
	return value, true
}

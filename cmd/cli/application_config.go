package cli

import (
	_ "embed"
)

const embeddedConfigurationTypeConstant = "yaml"

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns the built-in configuration content and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte{}, embeddedDefaultConfiguration...), embeddedConfigurationTypeConstant
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration   `mapstructure:"common"`
	Registry ApplicationRegistryConfiguration `mapstructure:"registry"`
	UI       ApplicationUIConfiguration       `mapstructure:"ui"`
	Editor   ApplicationEditorConfiguration   `mapstructure:"editor"`
}

// ApplicationCommonConfiguration stores logging and execution defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel          string `mapstructure:"log_level"`
	LogFormat         string `mapstructure:"log_format"`
	LogFile           string `mapstructure:"log_file"`
	LogFileMaxSizeMB  int    `mapstructure:"log_file_max_size_mb"`
	LogFileMaxBackups int    `mapstructure:"log_file_max_backups"`
	LogFileMaxAgeDays int    `mapstructure:"log_file_max_age_days"`
	AssumeYes         bool   `mapstructure:"assume_yes"`
}

// ApplicationRegistryConfiguration locates the registry file.
type ApplicationRegistryConfiguration struct {
	File string `mapstructure:"file"`
}

// ApplicationUIConfiguration names the git user interface launched by `ui`.
type ApplicationUIConfiguration struct {
	Command string `mapstructure:"command"`
}

// ApplicationEditorConfiguration names the editor used by `config` when $EDITOR is unset.
type ApplicationEditorConfiguration struct {
	Command string `mapstructure:"command"`
}

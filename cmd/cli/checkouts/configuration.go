package checkouts

import (
	"strings"

	pathutils "github.com/tyemirov/multigit/internal/utils/path"
)

const (
	defaultUICommandConstant     = "gitup"
	defaultEditorCommandConstant = "vi"
)

// CommandConfiguration carries the configuration values the checkout commands consume.
type CommandConfiguration struct {
	RegistryFilePath      string
	ConfigurationFilePath string
	UICommand             string
	EditorCommand         string
	AssumeYes             bool
}

// DefaultCommandConfiguration returns the built-in defaults.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		UICommand:     defaultUICommandConstant,
		EditorCommand: defaultEditorCommandConstant,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitizer := pathutils.NewPathSanitizerWithConfiguration(nil, pathutils.PathSanitizerConfiguration{MakeAbsolute: true})
	sanitized := configuration
	sanitized.RegistryFilePath = sanitizer.SanitizePath(configuration.RegistryFilePath)
	sanitized.ConfigurationFilePath = sanitizer.SanitizePath(configuration.ConfigurationFilePath)
	sanitized.UICommand = strings.TrimSpace(configuration.UICommand)
	if len(sanitized.UICommand) == 0 {
		sanitized.UICommand = defaultUICommandConstant
	}
	sanitized.EditorCommand = strings.TrimSpace(configuration.EditorCommand)
	if len(sanitized.EditorCommand) == 0 {
		sanitized.EditorCommand = defaultEditorCommandConstant
	}
	return sanitized
}

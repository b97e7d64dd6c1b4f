package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant        = "_"
	configurationKeySeparatorConstant      = "."
	readEmbeddedConfigurationErrorTemplate = "unable to read embedded configuration: %w"
	readConfigurationFileErrorTemplate     = "unable to read configuration file %s: %w"
	decodeConfigurationErrorTemplate       = "unable to decode configuration: %w"
	configurationTargetMissingMessage      = "configuration target missing"
)

// ErrConfigurationTargetMissing indicates LoadConfiguration was called without a destination struct.
var ErrConfigurationTargetMissing = errors.New(configurationTargetMissingMessage)

// LoadedConfiguration reports metadata about a configuration load.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader merges embedded defaults, a configuration file and environment overrides.
type ConfigurationLoader struct {
	configurationName string
	configurationType string
	environmentPrefix string
	searchPaths       []string
	embeddedData      []byte
	embeddedDataType  string
}

// NewConfigurationLoader constructs a loader that searches the provided directories in order.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string{}, searchPaths...),
	}
}

// SetEmbeddedConfiguration registers configuration content merged before any file on disk.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(data []byte, dataType string) {
	loader.embeddedData = append([]byte{}, data...)
	loader.embeddedDataType = dataType
}

// LoadConfiguration populates target. An explicit configurationFilePath bypasses the search paths.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	if target == nil {
		return LoadedConfiguration{}, ErrConfigurationTargetMissing
	}

	viperInstance := viper.New()
	for key, value := range defaultValues {
		viperInstance.SetDefault(key, value)
	}

	if len(loader.embeddedData) > 0 {
		embeddedType := loader.embeddedDataType
		if len(embeddedType) == 0 {
			embeddedType = loader.configurationType
		}
		viperInstance.SetConfigType(embeddedType)
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedData)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(readEmbeddedConfigurationErrorTemplate, mergeError)
		}
	}

	trimmedPath := strings.TrimSpace(configurationFilePath)
	if len(trimmedPath) > 0 {
		viperInstance.SetConfigFile(trimmedPath)
	} else {
		viperInstance.SetConfigName(loader.configurationName)
		viperInstance.SetConfigType(loader.configurationType)
		for _, searchPath := range loader.searchPaths {
			if len(strings.TrimSpace(searchPath)) == 0 {
				continue
			}
			viperInstance.AddConfigPath(searchPath)
		}
	}

	if mergeError := viperInstance.MergeInConfig(); mergeError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if len(trimmedPath) > 0 || !errors.As(mergeError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(readConfigurationFileErrorTemplate, trimmedPath, mergeError)
		}
	}

	if len(loader.environmentPrefix) > 0 {
		viperInstance.SetEnvPrefix(loader.environmentPrefix)
	}
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	if unmarshalError := viperInstance.Unmarshal(target, decoderOptions()...); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(decodeConfigurationErrorTemplate, unmarshalError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}

func decoderOptions() []viper.DecoderConfigOption {
	return []viper.DecoderConfigOption{
		func(decoderConfiguration *mapstructure.DecoderConfig) {
			decoderConfiguration.TagName = "mapstructure"
			decoderConfiguration.DecodeHook = mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			)
		},
	}
}

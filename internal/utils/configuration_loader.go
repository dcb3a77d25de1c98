package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant          = "_"
	configurationKeySeparatorConstant        = "."
	configurationFileNameTemplateConstant    = "%s.%s"
	embeddedConfigurationErrorTemplate       = "unable to merge embedded configuration: %w"
	configurationFileReadErrorTemplate       = "unable to read configuration file: %w"
	configurationDecodeErrorTemplateConstant = "unable to decode configuration: %w"
)

// LoadedConfiguration captures metadata about a completed configuration load.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader loads layered configuration from embedded defaults, files, and environment variables.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// NewConfigurationLoader constructs a loader for the given configuration name, type, environment prefix, and search paths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string{}, searchPaths...),
	}
}

// SetEmbeddedConfiguration registers embedded default configuration content merged below files and environment values.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	loader.embeddedConfiguration = append([]byte{}, configurationData...)
	loader.embeddedConfigurationType = configurationType
}

// LoadConfiguration merges defaults, embedded content, an optional file, and environment variables into target.
func (loader *ConfigurationLoader) LoadConfiguration(explicitFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.embeddedConfiguration) > 0 {
		embeddedType := loader.embeddedConfigurationType
		if len(embeddedType) == 0 {
			embeddedType = loader.configurationType
		}
		viperInstance.SetConfigType(embeddedType)
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationErrorTemplate, mergeError)
		}
		viperInstance.SetConfigType(loader.configurationType)
	}

	configurationFilePath := strings.TrimSpace(explicitFilePath)
	if len(configurationFilePath) == 0 {
		configurationFilePath = loader.locateConfigurationFile()
	}

	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
		if readError := viperInstance.MergeInConfig(); readError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationFileReadErrorTemplate, readError)
		}
	}

	if len(loader.environmentPrefix) > 0 {
		viperInstance.SetEnvPrefix(loader.environmentPrefix)
		viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
		viperInstance.AutomaticEnv()
	}

	if target != nil {
		if decodeError := viperInstance.Unmarshal(target); decodeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
		}
	}

	metadata := LoadedConfiguration{}
	if len(configurationFilePath) > 0 {
		metadata.ConfigFileUsed = configurationFilePath
	}

	return metadata, nil
}

func (loader *ConfigurationLoader) locateConfigurationFile() string {
	configurationFileName := fmt.Sprintf(configurationFileNameTemplateConstant, loader.configurationName, loader.configurationType)
	for _, searchPath := range loader.searchPaths {
		trimmedSearchPath := strings.TrimSpace(searchPath)
		if len(trimmedSearchPath) == 0 {
			continue
		}
		candidatePath := filepath.Join(trimmedSearchPath, configurationFileName)
		fileInformation, statError := os.Stat(candidatePath)
		if statError != nil || fileInformation.IsDir() {
			continue
		}
		return candidatePath
	}
	return ""
}

package compilemod

import "strings"

const (
	defaultFunctionsRootConstant = "functions"
	defaultBuildRootConstant     = "build"
	defaultToolchainFileConstant = "toolchain/WasiToolchain.cmake"
)

var defaultSupportLibraryTargets = []string{"forgesupport", "forgedynlink"}

// Configuration aggregates settings for compile commands.
type Configuration struct {
	FunctionsRoot         string   `mapstructure:"functions_root"`
	BuildRoot             string   `mapstructure:"build_root"`
	ToolchainFile         string   `mapstructure:"toolchain_file"`
	SupportLibraryTargets []string `mapstructure:"support_libraries"`
}

// DefaultConfiguration supplies baseline values for compile configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		FunctionsRoot:         defaultFunctionsRootConstant,
		BuildRoot:             defaultBuildRootConstant,
		ToolchainFile:         defaultToolchainFileConstant,
		SupportLibraryTargets: defaultSupportLibraryTargets,
	}
}

// Sanitize trims configured values and restores defaults for empty fields.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.FunctionsRoot = defaultWhenBlank(configuration.FunctionsRoot, defaultFunctionsRootConstant)
	sanitized.BuildRoot = defaultWhenBlank(configuration.BuildRoot, defaultBuildRootConstant)
	sanitized.ToolchainFile = defaultWhenBlank(configuration.ToolchainFile, defaultToolchainFileConstant)

	sanitizedTargets := make([]string, 0, len(configuration.SupportLibraryTargets))
	for _, target := range configuration.SupportLibraryTargets {
		trimmedTarget := strings.TrimSpace(target)
		if len(trimmedTarget) > 0 {
			sanitizedTargets = append(sanitizedTargets, trimmedTarget)
		}
	}
	if len(sanitizedTargets) == 0 {
		sanitizedTargets = defaultSupportLibraryTargets
	}
	sanitized.SupportLibraryTargets = sanitizedTargets

	return sanitized
}

func defaultWhenBlank(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}

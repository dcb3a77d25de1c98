package dockermod

import "strings"

const (
	defaultRegistryPrefixConstant = "wasmforge"
	defaultImageVersionConstant   = "latest"
	defaultDockerfileRootConstant = "dockerfiles"
)

var defaultImageTargets = map[string]string{
	"gateway": "forge-gateway",
	"worker":  "forge-worker",
	"upload":  "forge-upload",
}

// Configuration aggregates settings for docker commands.
type Configuration struct {
	RegistryPrefix string            `mapstructure:"registry_prefix"`
	ImageVersion   string            `mapstructure:"image_version"`
	DockerfileRoot string            `mapstructure:"dockerfile_root"`
	ImageTargets   map[string]string `mapstructure:"image_targets"`
}

// DefaultConfiguration supplies baseline values for docker configuration.
func DefaultConfiguration() Configuration {
	imageTargets := make(map[string]string, len(defaultImageTargets))
	for targetName, imageName := range defaultImageTargets {
		imageTargets[targetName] = imageName
	}
	return Configuration{
		RegistryPrefix: defaultRegistryPrefixConstant,
		ImageVersion:   defaultImageVersionConstant,
		DockerfileRoot: defaultDockerfileRootConstant,
		ImageTargets:   imageTargets,
	}
}

// Sanitize trims configured values and restores defaults for empty fields.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.RegistryPrefix = defaultWhenBlank(configuration.RegistryPrefix, defaultRegistryPrefixConstant)
	sanitized.ImageVersion = defaultWhenBlank(configuration.ImageVersion, defaultImageVersionConstant)
	sanitized.DockerfileRoot = defaultWhenBlank(configuration.DockerfileRoot, defaultDockerfileRootConstant)
	if len(configuration.ImageTargets) == 0 {
		sanitized.ImageTargets = DefaultConfiguration().ImageTargets
	}
	return sanitized
}

func defaultWhenBlank(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}

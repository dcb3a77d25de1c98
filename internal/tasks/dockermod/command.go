package dockermod

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmforge/forgectl/internal/execshell"
)

const (
	moduleNameConstant                   = "docker"
	buildCommandUseConstant              = "build <target>"
	buildCommandShortDescriptionConstant = "Build a platform container image"
	pushCommandUseConstant               = "push <target>"
	pushCommandShortDescriptionConstant  = "Push a platform container image"
	targetArgumentCountConstant          = 1
	executorNotConfiguredMessageConstant = "docker module executor not configured"
	unknownTargetErrorTemplateConstant   = "unknown image target %q"
	buildSubcommandConstant              = "build"
	pushSubcommandConstant               = "push"
	fileFlagConstant                     = "--file"
	tagFlagConstant                      = "--tag"
	buildContextConstant                 = "."
	dockerfileNameTemplateConstant       = "%s.dockerfile"
	imageTagTemplateConstant             = "%s/%s:%s"
	buildingImageMessageConstant         = "building container image"
	pushingImageMessageConstant          = "pushing container image"
	imageTagLogFieldConstant             = "image"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current docker configuration.
type ConfigurationProvider func() Configuration

// ContainerExecutor is the subset of execshell.ShellExecutor used for image workflows.
type ContainerExecutor interface {
	ExecuteDocker(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the module was assembled without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// UnknownTargetError indicates a target name absent from the image map.
type UnknownTargetError struct {
	TargetName string
}

// Error names the unknown target.
func (targetError UnknownTargetError) Error() string {
	return fmt.Sprintf(unknownTargetErrorTemplateConstant, targetError.TargetName)
}

// Module exposes the container image commands for registry assembly.
type Module struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              ContainerExecutor
}

// Name identifies the module inside the registry.
func (module *Module) Name() string {
	return moduleNameConstant
}

// Commands builds the build and push commands.
func (module *Module) Commands() ([]*cobra.Command, error) {
	if module.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	buildCommand := &cobra.Command{
		Use:   buildCommandUseConstant,
		Short: buildCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(targetArgumentCountConstant),
		RunE:  module.runBuild,
	}

	pushCommand := &cobra.Command{
		Use:   pushCommandUseConstant,
		Short: pushCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(targetArgumentCountConstant),
		RunE:  module.runPush,
	}

	return []*cobra.Command{buildCommand, pushCommand}, nil
}

func (module *Module) runBuild(command *cobra.Command, arguments []string) error {
	configuration := module.resolveConfiguration()

	imageTag, tagError := module.resolveImageTag(configuration, arguments[0])
	if tagError != nil {
		return tagError
	}

	module.resolveLogger().Info(buildingImageMessageConstant, zap.String(imageTagLogFieldConstant, imageTag))

	dockerfilePath := filepath.Join(configuration.DockerfileRoot, fmt.Sprintf(dockerfileNameTemplateConstant, arguments[0]))
	buildDetails := execshell.CommandDetails{
		Arguments: []string{
			buildSubcommandConstant,
			fileFlagConstant,
			dockerfilePath,
			tagFlagConstant,
			imageTag,
			buildContextConstant,
		},
	}

	_, executionError := module.Executor.ExecuteDocker(command.Context(), buildDetails)
	return executionError
}

func (module *Module) runPush(command *cobra.Command, arguments []string) error {
	configuration := module.resolveConfiguration()

	imageTag, tagError := module.resolveImageTag(configuration, arguments[0])
	if tagError != nil {
		return tagError
	}

	module.resolveLogger().Info(pushingImageMessageConstant, zap.String(imageTagLogFieldConstant, imageTag))

	pushDetails := execshell.CommandDetails{
		Arguments: []string{pushSubcommandConstant, imageTag},
	}

	_, executionError := module.Executor.ExecuteDocker(command.Context(), pushDetails)
	return executionError
}

func (module *Module) resolveImageTag(configuration Configuration, targetName string) (string, error) {
	imageName, targetKnown := configuration.ImageTargets[targetName]
	if !targetKnown {
		return "", UnknownTargetError{TargetName: targetName}
	}
	return fmt.Sprintf(imageTagTemplateConstant, configuration.RegistryPrefix, imageName, configuration.ImageVersion), nil
}

func (module *Module) resolveLogger() *zap.Logger {
	if module.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := module.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (module *Module) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if module.ConfigurationProvider != nil {
		configuration = module.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

package baremetalmod

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmforge/forgectl/internal/execshell"
)

const (
	moduleNameConstant                   = "baremetal"
	installCommandUseConstant            = "install"
	installCommandShortDescription       = "Install the platform services on this machine"
	startCommandUseConstant              = "start"
	startCommandShortDescriptionConstant = "Start the installed platform services"
	stopCommandUseConstant               = "stop"
	stopCommandShortDescriptionConstant  = "Stop the running platform services"
	executorNotConfiguredMessageConstant = "baremetal module executor not configured"
	runningDeployTargetMessageConstant   = "running deployment target"
	deployTargetLogFieldConstant         = "target"
	deployRootLogFieldConstant           = "deploy_root"
	defaultDeployRootConstant            = "deploy"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current baremetal configuration.
type ConfigurationProvider func() Configuration

// Configuration aggregates settings for baremetal commands.
type Configuration struct {
	DeployRoot string `mapstructure:"deploy_root"`
}

// DefaultConfiguration supplies baseline values for baremetal configuration.
func DefaultConfiguration() Configuration {
	return Configuration{DeployRoot: defaultDeployRootConstant}
}

// Sanitize trims configured values and restores defaults for empty fields.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	if len(strings.TrimSpace(configuration.DeployRoot)) == 0 {
		sanitized.DeployRoot = defaultDeployRootConstant
	} else {
		sanitized.DeployRoot = strings.TrimSpace(configuration.DeployRoot)
	}
	return sanitized
}

// DeploymentExecutor is the subset of execshell.ShellExecutor used for deployment targets.
type DeploymentExecutor interface {
	ExecuteMake(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the module was assembled without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// Module exposes the baremetal deployment commands for registry assembly.
type Module struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              DeploymentExecutor
}

// Name identifies the module inside the registry.
func (module *Module) Name() string {
	return moduleNameConstant
}

// Commands builds the install, start and stop commands.
func (module *Module) Commands() ([]*cobra.Command, error) {
	if module.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	return []*cobra.Command{
		module.buildTargetCommand(installCommandUseConstant, installCommandShortDescription),
		module.buildTargetCommand(startCommandUseConstant, startCommandShortDescriptionConstant),
		module.buildTargetCommand(stopCommandUseConstant, stopCommandShortDescriptionConstant),
	}, nil
}

func (module *Module) buildTargetCommand(targetName string, shortDescription string) *cobra.Command {
	return &cobra.Command{
		Use:   targetName,
		Short: shortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return module.runDeployTarget(command.Context(), targetName)
		},
	}
}

func (module *Module) runDeployTarget(executionContext context.Context, targetName string) error {
	configuration := module.resolveConfiguration()

	module.resolveLogger().Info(runningDeployTargetMessageConstant,
		zap.String(deployTargetLogFieldConstant, targetName),
		zap.String(deployRootLogFieldConstant, configuration.DeployRoot),
	)

	deployDetails := execshell.CommandDetails{
		Arguments:        []string{targetName},
		WorkingDirectory: configuration.DeployRoot,
	}
	_, executionError := module.Executor.ExecuteMake(executionContext, deployDetails)
	return executionError
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

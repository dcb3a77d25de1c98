package redismod

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmforge/forgectl/internal/execshell"
	flagutils "github.com/wasmforge/forgectl/internal/utils/flags"
)

const (
	moduleNameConstant                   = "redis"
	clearQueueCommandUseConstant         = "clear-queue"
	clearQueueCommandShortDescription    = "Flush the function call queue"
	listWorkersCommandUseConstant        = "list-workers"
	listWorkersCommandShortDescription   = "List the workers registered with the queue"
	executorNotConfiguredMessageConstant = "redis module executor not configured"
	hostFlagConstant                     = "-h"
	flushAllCommandConstant              = "FLUSHALL"
	setMembersCommandConstant            = "SMEMBERS"
	clearingQueueMessageConstant         = "flushing queue instance"
	clearQueuePromptTemplateConstant     = "Flush the queue at %s? [y/N]: "
	clearQueueAbortedMessageConstant     = "clear-queue aborted"
	affirmativeShortResponseConstant     = "y"
	affirmativeLongResponseConstant      = "yes"
	listingWorkersMessageConstant        = "listing registered workers"
	queueHostLogFieldConstant            = "queue_host"
	defaultQueueHostConstant             = "127.0.0.1"
	defaultWorkerSetKeyConstant          = "available_workers"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current redis configuration.
type ConfigurationProvider func() Configuration

// Configuration aggregates settings for queue maintenance commands.
type Configuration struct {
	QueueHost    string `mapstructure:"queue_host"`
	WorkerSetKey string `mapstructure:"worker_set_key"`
}

// DefaultConfiguration supplies baseline values for redis configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		QueueHost:    defaultQueueHostConstant,
		WorkerSetKey: defaultWorkerSetKeyConstant,
	}
}

// Sanitize trims configured values and restores defaults for empty fields.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	if len(strings.TrimSpace(configuration.QueueHost)) == 0 {
		sanitized.QueueHost = defaultQueueHostConstant
	} else {
		sanitized.QueueHost = strings.TrimSpace(configuration.QueueHost)
	}
	if len(strings.TrimSpace(configuration.WorkerSetKey)) == 0 {
		sanitized.WorkerSetKey = defaultWorkerSetKeyConstant
	} else {
		sanitized.WorkerSetKey = strings.TrimSpace(configuration.WorkerSetKey)
	}
	return sanitized
}

// QueueExecutor is the subset of execshell.ShellExecutor used for queue maintenance.
type QueueExecutor interface {
	ExecuteRedisCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the module was assembled without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// Module exposes the queue maintenance commands for registry assembly.
type Module struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              QueueExecutor
}

// Name identifies the module inside the registry.
func (module *Module) Name() string {
	return moduleNameConstant
}

// Commands builds the clear-queue and list-workers commands.
func (module *Module) Commands() ([]*cobra.Command, error) {
	if module.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	clearQueueCommand := &cobra.Command{
		Use:   clearQueueCommandUseConstant,
		Short: clearQueueCommandShortDescription,
		Args:  cobra.NoArgs,
		RunE:  module.runClearQueue,
	}

	listWorkersCommand := &cobra.Command{
		Use:   listWorkersCommandUseConstant,
		Short: listWorkersCommandShortDescription,
		Args:  cobra.NoArgs,
		RunE:  module.runListWorkers,
	}

	return []*cobra.Command{clearQueueCommand, listWorkersCommand}, nil
}

func (module *Module) runClearQueue(command *cobra.Command, _ []string) error {
	configuration := module.resolveConfiguration()

	confirmed, confirmationError := confirmQueueFlush(command, configuration.QueueHost)
	if confirmationError != nil {
		return confirmationError
	}
	if !confirmed {
		fmt.Fprintln(command.OutOrStdout(), clearQueueAbortedMessageConstant)
		return nil
	}

	module.resolveLogger().Info(clearingQueueMessageConstant,
		zap.String(queueHostLogFieldConstant, configuration.QueueHost),
	)

	flushDetails := execshell.CommandDetails{
		Arguments: []string{hostFlagConstant, configuration.QueueHost, flushAllCommandConstant},
	}
	_, executionError := module.Executor.ExecuteRedisCLI(command.Context(), flushDetails)
	return executionError
}

func (module *Module) runListWorkers(command *cobra.Command, _ []string) error {
	configuration := module.resolveConfiguration()

	module.resolveLogger().Info(listingWorkersMessageConstant,
		zap.String(queueHostLogFieldConstant, configuration.QueueHost),
	)

	listDetails := execshell.CommandDetails{
		Arguments: []string{hostFlagConstant, configuration.QueueHost, setMembersCommandConstant, configuration.WorkerSetKey},
	}
	executionResult, executionError := module.Executor.ExecuteRedisCLI(command.Context(), listDetails)
	if executionError != nil {
		return executionError
	}

	trimmedOutput := strings.TrimSpace(executionResult.StandardOutput)
	if len(trimmedOutput) > 0 {
		fmt.Fprintln(command.OutOrStdout(), trimmedOutput)
	}
	return nil
}

// confirmQueueFlush asks before flushing unless --yes was given. Dry runs
// skip the prompt so previews never block on input.
func confirmQueueFlush(command *cobra.Command, queueHost string) (bool, error) {
	executionFlags, _ := flagutils.ResolveExecutionFlags(command)
	if executionFlags.AssumeYes || executionFlags.DryRun {
		return true, nil
	}

	fmt.Fprintf(command.OutOrStdout(), clearQueuePromptTemplateConstant, queueHost)

	responseReader := bufio.NewReader(command.InOrStdin())
	response, readError := responseReader.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return false, readError
	}

	switch strings.TrimSpace(strings.ToLower(response)) {
	case affirmativeShortResponseConstant, affirmativeLongResponseConstant:
		return true, nil
	default:
		return false, nil
	}
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

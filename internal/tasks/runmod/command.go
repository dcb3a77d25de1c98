package runmod

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmforge/forgectl/internal/execshell"
)

const (
	moduleNameConstant                   = "run"
	runCommandUseConstant                = "run <user> <function>"
	runCommandShortDescriptionConstant   = "Execute a function in the local runtime"
	runCommandLongDescriptionConstant    = "run executes a compiled function inside a local runtime sandbox without the gateway."
	runArgumentCountConstant             = 2
	inputDataFlagNameConstant            = "input-data"
	inputDataFlagDescriptionConstant     = "Input payload passed to the function"
	threadsFlagNameConstant              = "threads"
	threadsFlagDescriptionConstant       = "Worker thread count for the runtime"
	defaultThreadCountConstant           = 1
	executorNotConfiguredMessageConstant = "run module executor not configured"
	invalidThreadCountMessageConstant    = "thread count must be positive"
	inputDataArgumentFlagConstant        = "--input-data"
	threadsArgumentFlagConstant          = "--threads"
	runningFunctionMessageConstant       = "running function locally"
	userLogFieldConstant                 = "user"
	functionLogFieldConstant             = "function"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// RuntimeExecutor is the subset of execshell.ShellExecutor used for local runs.
type RuntimeExecutor interface {
	ExecuteRunner(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the module was assembled without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrInvalidThreadCount indicates a non-positive --threads value.
var ErrInvalidThreadCount = errors.New(invalidThreadCountMessageConstant)

// Module exposes the run command for registry assembly.
type Module struct {
	LoggerProvider LoggerProvider
	Executor       RuntimeExecutor
}

// Name identifies the module inside the registry.
func (module *Module) Name() string {
	return moduleNameConstant
}

// Commands builds the run command.
func (module *Module) Commands() ([]*cobra.Command, error) {
	if module.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	runCommand := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(runArgumentCountConstant),
		RunE:  module.runFunction,
	}
	runCommand.Flags().String(inputDataFlagNameConstant, "", inputDataFlagDescriptionConstant)
	runCommand.Flags().Int(threadsFlagNameConstant, defaultThreadCountConstant, threadsFlagDescriptionConstant)

	return []*cobra.Command{runCommand}, nil
}

func (module *Module) runFunction(command *cobra.Command, arguments []string) error {
	inputData, inputFlagError := command.Flags().GetString(inputDataFlagNameConstant)
	if inputFlagError != nil {
		return inputFlagError
	}
	threadCount, threadsFlagError := command.Flags().GetInt(threadsFlagNameConstant)
	if threadsFlagError != nil {
		return threadsFlagError
	}
	if threadCount <= 0 {
		return ErrInvalidThreadCount
	}

	module.resolveLogger().Info(runningFunctionMessageConstant,
		zap.String(userLogFieldConstant, arguments[0]),
		zap.String(functionLogFieldConstant, arguments[1]),
	)

	runnerArguments := []string{arguments[0], arguments[1], threadsArgumentFlagConstant, strconv.Itoa(threadCount)}
	if len(inputData) > 0 {
		runnerArguments = append(runnerArguments, inputDataArgumentFlagConstant, inputData)
	}

	executionResult, executionError := module.Executor.ExecuteRunner(command.Context(), execshell.CommandDetails{Arguments: runnerArguments})
	if executionError != nil {
		return executionError
	}

	if len(executionResult.StandardOutput) > 0 {
		fmt.Fprint(command.OutOrStdout(), executionResult.StandardOutput)
	}
	return nil
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

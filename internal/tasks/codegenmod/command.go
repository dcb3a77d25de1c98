package codegenmod

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmforge/forgectl/internal/execshell"
)

const (
	moduleNameConstant                    = "codegen"
	codegenCommandUseConstant             = "codegen <user> [function]"
	codegenCommandShortDescription        = "Generate machine code for uploaded WebAssembly modules"
	codegenCommandLongDescriptionConstant = "codegen ahead-of-time compiles the stored WebAssembly modules for a user, or a single named function."
	codegenMinimumArgumentCountConstant   = 1
	codegenMaximumArgumentCountConstant   = 2
	executorNotConfiguredMessageConstant  = "codegen module executor not configured"
	generatingMachineCodeMessageConstant  = "generating machine code"
	userLogFieldConstant                  = "user"
	functionLogFieldConstant              = "function"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CodegenExecutor is the subset of execshell.ShellExecutor used for code generation.
type CodegenExecutor interface {
	ExecuteCodegen(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the module was assembled without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// Module exposes the codegen command for registry assembly.
type Module struct {
	LoggerProvider LoggerProvider
	Executor       CodegenExecutor
}

// Name identifies the module inside the registry.
func (module *Module) Name() string {
	return moduleNameConstant
}

// Commands builds the codegen command.
func (module *Module) Commands() ([]*cobra.Command, error) {
	if module.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	codegenCommand := &cobra.Command{
		Use:   codegenCommandUseConstant,
		Short: codegenCommandShortDescription,
		Long:  codegenCommandLongDescriptionConstant,
		Args:  cobra.RangeArgs(codegenMinimumArgumentCountConstant, codegenMaximumArgumentCountConstant),
		RunE:  module.runCodegen,
	}

	return []*cobra.Command{codegenCommand}, nil
}

func (module *Module) runCodegen(command *cobra.Command, arguments []string) error {
	logFields := []zap.Field{zap.String(userLogFieldConstant, arguments[0])}
	if len(arguments) > 1 {
		logFields = append(logFields, zap.String(functionLogFieldConstant, arguments[1]))
	}
	module.resolveLogger().Info(generatingMachineCodeMessageConstant, logFields...)

	_, executionError := module.Executor.ExecuteCodegen(command.Context(), execshell.CommandDetails{Arguments: arguments})
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

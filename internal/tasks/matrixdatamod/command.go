package matrixdatamod

import (
	"context"
	"errors"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmforge/forgectl/internal/execshell"
)

const (
	moduleNameConstant                      = "matrix-data"
	generateCommandUseConstant              = "generate-matrix-data"
	generateCommandShortDescriptionConstant = "Generate native matrix benchmark data"
	generateCommandLongDescriptionConstant  = "generate-matrix-data produces reference matrix results with the native generator for benchmark comparison."
	matrixSizeFlagNameConstant              = "size"
	matrixSizeFlagDescriptionConstant       = "Square matrix dimension"
	defaultMatrixSizeConstant               = 1024
	executorNotConfiguredMessageConstant    = "matrix-data module executor not configured"
	invalidMatrixSizeMessageConstant        = "matrix size must be positive"
	nativeGeneratorBinaryNameConstant       = "forge-native-gen"
	sizeArgumentFlagConstant                = "--size"
	generatingMatrixDataMessageConstant     = "generating native matrix data"
	matrixSizeLogFieldConstant              = "size"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ExecutableLookup resolves a binary name on PATH.
type ExecutableLookup func(binaryName string) (string, error)

// DataGeneratorExecutor is the subset of execshell.ShellExecutor used for data generation.
type DataGeneratorExecutor interface {
	ExecuteNativeGen(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the module was assembled without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrInvalidMatrixSize indicates a non-positive --size value.
var ErrInvalidMatrixSize = errors.New(invalidMatrixSizeMessageConstant)

// Module exposes the matrix data command for registry assembly. Registration
// is conditional on the native generator being installed.
type Module struct {
	LoggerProvider   LoggerProvider
	Executor         DataGeneratorExecutor
	ExecutableLookup ExecutableLookup
}

// Name identifies the module inside the registry.
func (module *Module) Name() string {
	return moduleNameConstant
}

// ProbeCapability reports whether the native generator is resolvable on PATH.
func (module *Module) ProbeCapability() error {
	lookupExecutable := module.ExecutableLookup
	if lookupExecutable == nil {
		lookupExecutable = exec.LookPath
	}
	_, lookupError := lookupExecutable(nativeGeneratorBinaryNameConstant)
	return lookupError
}

// Commands builds the generate-matrix-data command.
func (module *Module) Commands() ([]*cobra.Command, error) {
	if module.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	generateCommand := &cobra.Command{
		Use:   generateCommandUseConstant,
		Short: generateCommandShortDescriptionConstant,
		Long:  generateCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  module.runGenerate,
	}
	generateCommand.Flags().Int(matrixSizeFlagNameConstant, defaultMatrixSizeConstant, matrixSizeFlagDescriptionConstant)

	return []*cobra.Command{generateCommand}, nil
}

func (module *Module) runGenerate(command *cobra.Command, _ []string) error {
	matrixSize, flagError := command.Flags().GetInt(matrixSizeFlagNameConstant)
	if flagError != nil {
		return flagError
	}
	if matrixSize <= 0 {
		return ErrInvalidMatrixSize
	}

	module.resolveLogger().Info(generatingMatrixDataMessageConstant,
		zap.Int(matrixSizeLogFieldConstant, matrixSize),
	)

	generateDetails := execshell.CommandDetails{
		Arguments: []string{sizeArgumentFlagConstant, strconv.Itoa(matrixSize)},
	}
	_, executionError := module.Executor.ExecuteNativeGen(command.Context(), generateDetails)
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

package compilemod

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmforge/forgectl/internal/execshell"
)

const (
	moduleNameConstant                         = "compile"
	compileCommandUseConstant                  = "compile <user> <function>"
	compileCommandShortDescriptionConstant     = "Cross-compile a function to WebAssembly"
	compileCommandLongDescriptionConstant      = "compile configures and builds a single function against the WebAssembly toolchain."
	compileLibsCommandUseConstant              = "compile-libs"
	compileLibsCommandShortDescriptionConstant = "Cross-compile the platform support libraries"
	cleanFlagNameConstant                      = "clean"
	cleanFlagDescriptionConstant               = "Remove the build directory before configuring"
	compileArgumentCountConstant               = 2
	executorNotConfiguredMessageConstant       = "compile module executor not configured"
	buildDirectoryCleanupErrorTemplateConstant = "unable to clean build directory %s: %w"
	sourceDirectoryFlagConstant                = "-S"
	buildDirectoryFlagConstant                 = "-B"
	toolchainDefineTemplateConstant            = "-DCMAKE_TOOLCHAIN_FILE=%s"
	releaseBuildDefineConstant                 = "-DCMAKE_BUILD_TYPE=Release"
	makeTargetTemplateConstant                 = "%s_%s"
	compilingFunctionMessageConstant           = "compiling function"
	compilingLibrariesMessageConstant          = "compiling support libraries"
	userLogFieldConstant                       = "user"
	functionLogFieldConstant                   = "function"
	targetLogFieldConstant                     = "target"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current compile configuration.
type ConfigurationProvider func() Configuration

// BuildToolExecutor is the subset of execshell.ShellExecutor used for builds.
type BuildToolExecutor interface {
	ExecuteCMake(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteMake(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the module was assembled without a build executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// Module exposes the compile commands for registry assembly.
type Module struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              BuildToolExecutor
}

// Name identifies the module inside the registry.
func (module *Module) Name() string {
	return moduleNameConstant
}

// Commands builds the compile and compile-libs commands.
func (module *Module) Commands() ([]*cobra.Command, error) {
	if module.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	compileCommand := &cobra.Command{
		Use:   compileCommandUseConstant,
		Short: compileCommandShortDescriptionConstant,
		Long:  compileCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(compileArgumentCountConstant),
		RunE:  module.runCompile,
	}
	compileCommand.Flags().Bool(cleanFlagNameConstant, false, cleanFlagDescriptionConstant)

	compileLibsCommand := &cobra.Command{
		Use:   compileLibsCommandUseConstant,
		Short: compileLibsCommandShortDescriptionConstant,
		RunE:  module.runCompileLibraries,
	}
	compileLibsCommand.Flags().Bool(cleanFlagNameConstant, false, cleanFlagDescriptionConstant)

	return []*cobra.Command{compileCommand, compileLibsCommand}, nil
}

func (module *Module) runCompile(command *cobra.Command, arguments []string) error {
	configuration := module.resolveConfiguration()
	userName := arguments[0]
	functionName := arguments[1]

	module.resolveLogger().Info(compilingFunctionMessageConstant,
		zap.String(userLogFieldConstant, userName),
		zap.String(functionLogFieldConstant, functionName),
	)

	buildDirectory := filepath.Join(configuration.BuildRoot, userName, functionName)
	if cleanupError := module.cleanWhenRequested(command, buildDirectory); cleanupError != nil {
		return cleanupError
	}

	sourceDirectory := filepath.Join(configuration.FunctionsRoot, userName, functionName)
	if configureError := module.configureBuild(command.Context(), configuration, sourceDirectory, buildDirectory); configureError != nil {
		return configureError
	}

	makeTarget := fmt.Sprintf(makeTargetTemplateConstant, userName, functionName)
	return module.buildTarget(command.Context(), buildDirectory, makeTarget)
}

func (module *Module) runCompileLibraries(command *cobra.Command, _ []string) error {
	configuration := module.resolveConfiguration()

	module.resolveLogger().Info(compilingLibrariesMessageConstant)

	buildDirectory := filepath.Join(configuration.BuildRoot, "libs")
	if cleanupError := module.cleanWhenRequested(command, buildDirectory); cleanupError != nil {
		return cleanupError
	}

	if configureError := module.configureBuild(command.Context(), configuration, configuration.FunctionsRoot, buildDirectory); configureError != nil {
		return configureError
	}

	for _, libraryTarget := range configuration.SupportLibraryTargets {
		module.resolveLogger().Info(compilingLibrariesMessageConstant, zap.String(targetLogFieldConstant, libraryTarget))
		if buildError := module.buildTarget(command.Context(), buildDirectory, libraryTarget); buildError != nil {
			return buildError
		}
	}

	return nil
}

func (module *Module) configureBuild(executionContext context.Context, configuration Configuration, sourceDirectory string, buildDirectory string) error {
	configureDetails := execshell.CommandDetails{
		Arguments: []string{
			sourceDirectoryFlagConstant,
			sourceDirectory,
			buildDirectoryFlagConstant,
			buildDirectory,
			fmt.Sprintf(toolchainDefineTemplateConstant, configuration.ToolchainFile),
			releaseBuildDefineConstant,
		},
	}

	_, configureError := module.Executor.ExecuteCMake(executionContext, configureDetails)
	return configureError
}

func (module *Module) buildTarget(executionContext context.Context, buildDirectory string, makeTarget string) error {
	buildDetails := execshell.CommandDetails{
		Arguments:        []string{makeTarget},
		WorkingDirectory: buildDirectory,
	}

	_, buildError := module.Executor.ExecuteMake(executionContext, buildDetails)
	return buildError
}

func (module *Module) cleanWhenRequested(command *cobra.Command, buildDirectory string) error {
	cleanRequested, flagError := command.Flags().GetBool(cleanFlagNameConstant)
	if flagError != nil {
		return flagError
	}
	if !cleanRequested {
		return nil
	}

	if removalError := os.RemoveAll(buildDirectory); removalError != nil {
		return fmt.Errorf(buildDirectoryCleanupErrorTemplateConstant, buildDirectory, removalError)
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

func (module *Module) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if module.ConfigurationProvider != nil {
		configuration = module.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

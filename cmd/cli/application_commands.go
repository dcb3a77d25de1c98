package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/wasmforge/forgectl/internal/execshell"
	"github.com/wasmforge/forgectl/internal/gateway"
	"github.com/wasmforge/forgectl/internal/registry"
	"github.com/wasmforge/forgectl/internal/tasks/baremetalmod"
	"github.com/wasmforge/forgectl/internal/tasks/callmod"
	"github.com/wasmforge/forgectl/internal/tasks/codegenmod"
	"github.com/wasmforge/forgectl/internal/tasks/compilemod"
	"github.com/wasmforge/forgectl/internal/tasks/dockermod"
	"github.com/wasmforge/forgectl/internal/tasks/matrixdatamod"
	"github.com/wasmforge/forgectl/internal/tasks/redismod"
	"github.com/wasmforge/forgectl/internal/tasks/runmod"
	"github.com/wasmforge/forgectl/internal/tasks/toolchainmod"
	"github.com/wasmforge/forgectl/internal/tasks/uploadmod"
)

const (
	compileOperationNameConstant   = "compile"
	uploadOperationNameConstant    = "upload"
	callOperationNameConstant      = "call"
	baremetalOperationNameConstant = "baremetal"
	dockerOperationNameConstant    = "docker"
	redisOperationNameConstant     = "redis"
	toolchainOperationNameConstant = "toolchain"
	invokeAliasNameConstant        = "invoke"
	baremetalAliasNameConstant     = "bm"
	dockerAliasNameConstant        = "docker"
	redisAliasNameConstant         = "redis"
	toolchainAliasNameConstant     = "toolchain"
)

// taskShellExecutor defers shell executor construction until the logger is configured.
type taskShellExecutor struct {
	application *Application
}

func (executor *taskShellExecutor) resolve() (*execshell.ShellExecutor, error) {
	logger := executor.application.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return execshell.NewShellExecutor(
		logger,
		execshell.NewOSCommandRunner(),
		execshell.ShellExecutorOptions{
			HumanReadableLogging: executor.application.humanReadableLoggingEnabled(),
			DryRun:               executor.application.executionFlags.DryRun,
		},
	)
}

func (executor *taskShellExecutor) ExecuteCMake(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	shellExecutor, resolveError := executor.resolve()
	if resolveError != nil {
		return execshell.ExecutionResult{}, resolveError
	}
	return shellExecutor.ExecuteCMake(executionContext, details)
}

func (executor *taskShellExecutor) ExecuteMake(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	shellExecutor, resolveError := executor.resolve()
	if resolveError != nil {
		return execshell.ExecutionResult{}, resolveError
	}
	return shellExecutor.ExecuteMake(executionContext, details)
}

func (executor *taskShellExecutor) ExecuteDocker(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	shellExecutor, resolveError := executor.resolve()
	if resolveError != nil {
		return execshell.ExecutionResult{}, resolveError
	}
	return shellExecutor.ExecuteDocker(executionContext, details)
}

func (executor *taskShellExecutor) ExecuteRedisCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	shellExecutor, resolveError := executor.resolve()
	if resolveError != nil {
		return execshell.ExecutionResult{}, resolveError
	}
	return shellExecutor.ExecuteRedisCLI(executionContext, details)
}

func (executor *taskShellExecutor) ExecuteCurl(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	shellExecutor, resolveError := executor.resolve()
	if resolveError != nil {
		return execshell.ExecutionResult{}, resolveError
	}
	return shellExecutor.ExecuteCurl(executionContext, details)
}

func (executor *taskShellExecutor) ExecuteTar(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	shellExecutor, resolveError := executor.resolve()
	if resolveError != nil {
		return execshell.ExecutionResult{}, resolveError
	}
	return shellExecutor.ExecuteTar(executionContext, details)
}

func (executor *taskShellExecutor) ExecuteCodegen(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	shellExecutor, resolveError := executor.resolve()
	if resolveError != nil {
		return execshell.ExecutionResult{}, resolveError
	}
	return shellExecutor.ExecuteCodegen(executionContext, details)
}

func (executor *taskShellExecutor) ExecuteRunner(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	shellExecutor, resolveError := executor.resolve()
	if resolveError != nil {
		return execshell.ExecutionResult{}, resolveError
	}
	return shellExecutor.ExecuteRunner(executionContext, details)
}

func (executor *taskShellExecutor) ExecuteNativeGen(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	shellExecutor, resolveError := executor.resolve()
	if resolveError != nil {
		return execshell.ExecutionResult{}, resolveError
	}
	return shellExecutor.ExecuteNativeGen(executionContext, details)
}

func (application *Application) registerTaskModules() (*registry.Namespace, error) {
	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	sharedExecutor := &taskShellExecutor{application: application}

	moduleRegistry := registry.NewRegistry(zap.New(&registrationLogCore{application: application}))

	moduleRegistry.Register(&compilemod.Module{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: application.compileConfiguration,
		Executor:              sharedExecutor,
	})
	moduleRegistry.Register(&codegenmod.Module{
		LoggerProvider: loggerProvider,
		Executor:       sharedExecutor,
	})
	moduleRegistry.Register(&uploadmod.Module{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: application.uploadConfiguration,
		UploaderFactory:       application.newFunctionUploader,
	})
	moduleRegistry.Register(&runmod.Module{
		LoggerProvider: loggerProvider,
		Executor:       sharedExecutor,
	})

	moduleRegistry.RegisterAlias(&callmod.Module{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: application.callConfiguration,
		InvokerFactory:        application.newFunctionInvoker,
	}, invokeAliasNameConstant)
	moduleRegistry.RegisterAlias(&baremetalmod.Module{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: application.baremetalConfiguration,
		Executor:              sharedExecutor,
	}, baremetalAliasNameConstant)
	moduleRegistry.RegisterAlias(&dockermod.Module{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: application.dockerConfiguration,
		Executor:              sharedExecutor,
	}, dockerAliasNameConstant)
	moduleRegistry.RegisterAlias(&redismod.Module{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: application.redisConfiguration,
		Executor:              sharedExecutor,
	}, redisAliasNameConstant)
	moduleRegistry.RegisterAlias(&toolchainmod.Module{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: application.toolchainConfiguration,
		Executor:              sharedExecutor,
	}, toolchainAliasNameConstant)

	moduleRegistry.RegisterOptional(&matrixdatamod.Module{
		LoggerProvider: loggerProvider,
		Executor:       sharedExecutor,
	})

	return moduleRegistry.Build()
}

func (application *Application) newFunctionUploader(endpoints gateway.Endpoints) (uploadmod.FunctionUploader, error) {
	return gateway.NewClient(&taskShellExecutor{application: application}, endpoints)
}

func (application *Application) newFunctionInvoker(endpoints gateway.Endpoints) (callmod.FunctionInvoker, error) {
	return gateway.NewClient(&taskShellExecutor{application: application}, endpoints)
}

func (application *Application) compileConfiguration() compilemod.Configuration {
	configuration := compilemod.DefaultConfiguration()
	application.decodeOperationConfiguration(compileOperationNameConstant, &configuration)
	return configuration.Sanitize()
}

func (application *Application) uploadConfiguration() uploadmod.Configuration {
	configuration := uploadmod.DefaultConfiguration()
	application.decodeOperationConfiguration(uploadOperationNameConstant, &configuration)
	return configuration.Sanitize()
}

func (application *Application) callConfiguration() callmod.Configuration {
	configuration := callmod.DefaultConfiguration()
	application.decodeOperationConfiguration(callOperationNameConstant, &configuration)
	return configuration.Sanitize()
}

func (application *Application) baremetalConfiguration() baremetalmod.Configuration {
	configuration := baremetalmod.DefaultConfiguration()
	application.decodeOperationConfiguration(baremetalOperationNameConstant, &configuration)
	return configuration.Sanitize()
}

func (application *Application) dockerConfiguration() dockermod.Configuration {
	configuration := dockermod.DefaultConfiguration()
	application.decodeOperationConfiguration(dockerOperationNameConstant, &configuration)
	return configuration.Sanitize()
}

func (application *Application) redisConfiguration() redismod.Configuration {
	configuration := redismod.DefaultConfiguration()
	application.decodeOperationConfiguration(redisOperationNameConstant, &configuration)
	return configuration.Sanitize()
}

func (application *Application) toolchainConfiguration() toolchainmod.Configuration {
	configuration := toolchainmod.DefaultConfiguration()
	application.decodeOperationConfiguration(toolchainOperationNameConstant, &configuration)
	return configuration.Sanitize()
}

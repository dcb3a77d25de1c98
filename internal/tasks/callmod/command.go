package callmod

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmforge/forgectl/internal/gateway"
	flagutils "github.com/wasmforge/forgectl/internal/utils/flags"
)

const (
	moduleNameConstant                   = "call"
	syncCommandUseConstant               = "sync <user> <function>"
	syncCommandShortDescriptionConstant  = "Invoke a function and wait for its output"
	asyncCommandUseConstant              = "async <user> <function>"
	asyncCommandShortDescription         = "Submit a function call and print its call id"
	statusCommandUseConstant             = "status <call-id>"
	statusCommandShortDescription        = "Report the state of an asynchronous call"
	invokeArgumentCountConstant          = 2
	statusArgumentCountConstant          = 1
	inputFlagNameConstant                = "input"
	inputFlagDescriptionConstant         = "Input payload passed to the function"
	invokerNotConfiguredMessageConstant  = "invoke module gateway invoker not configured"
	invokingFunctionMessageConstant      = "invoking function"
	queryingCallStatusMessageConstant    = "querying call status"
	userLogFieldConstant                 = "user"
	functionLogFieldConstant             = "function"
	callIdentifierLogFieldConstant       = "call_id"
	callIdentifierOutputTemplateConstant = "%s\n"
	callStatusOutputTemplateConstant     = "%s\n"
	callOutputTemplateConstant           = "%s\n"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current invoke configuration.
type ConfigurationProvider func() Configuration

// FunctionInvoker is the subset of gateway.Client used by invoke commands.
type FunctionInvoker interface {
	InvokeFunction(executionContext context.Context, request gateway.InvocationRequest) (gateway.InvocationResult, error)
	InvokeFunctionAsync(executionContext context.Context, request gateway.InvocationRequest) (gateway.AsyncInvocationResult, error)
	CallStatus(executionContext context.Context, callIdentifier string) (gateway.CallStatus, error)
}

// InvokerFactory builds an invoker for the resolved gateway endpoints.
type InvokerFactory func(endpoints gateway.Endpoints) (FunctionInvoker, error)

// ErrInvokerNotConfigured indicates the module cannot reach a gateway invoker.
var ErrInvokerNotConfigured = errors.New(invokerNotConfiguredMessageConstant)

// Module exposes the invoke commands for registry assembly.
type Module struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Invoker               FunctionInvoker
	InvokerFactory        InvokerFactory
}

// Name identifies the module inside the registry.
func (module *Module) Name() string {
	return moduleNameConstant
}

// Commands builds the sync, async and status commands.
func (module *Module) Commands() ([]*cobra.Command, error) {
	if module.Invoker == nil && module.InvokerFactory == nil {
		return nil, ErrInvokerNotConfigured
	}

	syncCommand := &cobra.Command{
		Use:   syncCommandUseConstant,
		Short: syncCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(invokeArgumentCountConstant),
		RunE:  module.runSync,
	}
	syncCommand.Flags().String(inputFlagNameConstant, "", inputFlagDescriptionConstant)

	asyncCommand := &cobra.Command{
		Use:   asyncCommandUseConstant,
		Short: asyncCommandShortDescription,
		Args:  cobra.ExactArgs(invokeArgumentCountConstant),
		RunE:  module.runAsync,
	}
	asyncCommand.Flags().String(inputFlagNameConstant, "", inputFlagDescriptionConstant)

	statusCommand := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortDescription,
		Args:  cobra.ExactArgs(statusArgumentCountConstant),
		RunE:  module.runStatus,
	}

	return []*cobra.Command{syncCommand, asyncCommand, statusCommand}, nil
}

func (module *Module) runSync(command *cobra.Command, arguments []string) error {
	invocationRequest, requestError := module.buildInvocationRequest(command, arguments)
	if requestError != nil {
		return requestError
	}

	invoker, invokerError := module.resolveInvoker(command)
	if invokerError != nil {
		return invokerError
	}

	module.resolveLogger().Info(invokingFunctionMessageConstant,
		zap.String(userLogFieldConstant, invocationRequest.User),
		zap.String(functionLogFieldConstant, invocationRequest.Function),
	)

	invocationResult, invokeError := invoker.InvokeFunction(command.Context(), invocationRequest)
	if invokeError != nil {
		return invokeError
	}

	fmt.Fprintf(command.OutOrStdout(), callOutputTemplateConstant, strings.TrimRight(invocationResult.Output, "\n"))
	return nil
}

func (module *Module) runAsync(command *cobra.Command, arguments []string) error {
	invocationRequest, requestError := module.buildInvocationRequest(command, arguments)
	if requestError != nil {
		return requestError
	}

	invoker, invokerError := module.resolveInvoker(command)
	if invokerError != nil {
		return invokerError
	}

	module.resolveLogger().Info(invokingFunctionMessageConstant,
		zap.String(userLogFieldConstant, invocationRequest.User),
		zap.String(functionLogFieldConstant, invocationRequest.Function),
	)

	asyncResult, invokeError := invoker.InvokeFunctionAsync(command.Context(), invocationRequest)
	if invokeError != nil {
		return invokeError
	}

	fmt.Fprintf(command.OutOrStdout(), callIdentifierOutputTemplateConstant, asyncResult.CallIdentifier)
	return nil
}

func (module *Module) runStatus(command *cobra.Command, arguments []string) error {
	invoker, invokerError := module.resolveInvoker(command)
	if invokerError != nil {
		return invokerError
	}

	module.resolveLogger().Info(queryingCallStatusMessageConstant,
		zap.String(callIdentifierLogFieldConstant, arguments[0]),
	)

	callStatus, statusError := invoker.CallStatus(command.Context(), arguments[0])
	if statusError != nil {
		return statusError
	}

	fmt.Fprintf(command.OutOrStdout(), callStatusOutputTemplateConstant, callStatus.State)
	if len(callStatus.Output) > 0 {
		fmt.Fprintf(command.OutOrStdout(), callOutputTemplateConstant, strings.TrimRight(callStatus.Output, "\n"))
	}
	return nil
}

func (module *Module) buildInvocationRequest(command *cobra.Command, arguments []string) (gateway.InvocationRequest, error) {
	inputData, inputFlagError := command.Flags().GetString(inputFlagNameConstant)
	if inputFlagError != nil {
		return gateway.InvocationRequest{}, inputFlagError
	}

	return gateway.InvocationRequest{
		User:      arguments[0],
		Function:  arguments[1],
		InputData: inputData,
	}, nil
}

func (module *Module) resolveInvoker(command *cobra.Command) (FunctionInvoker, error) {
	if module.Invoker != nil {
		return module.Invoker, nil
	}
	if module.InvokerFactory == nil {
		return nil, ErrInvokerNotConfigured
	}

	configuration := module.resolveConfiguration()
	endpoints := gateway.Endpoints{
		Host:       configuration.Gateway.Host,
		InvokePort: configuration.Gateway.InvokePort,
		UploadPort: configuration.Gateway.UploadPort,
	}

	executionFlags, executionFlagsAvailable := flagutils.ResolveExecutionFlags(command)
	if executionFlagsAvailable && executionFlags.GatewaySet && len(strings.TrimSpace(executionFlags.Gateway)) > 0 {
		endpoints.Host = strings.TrimSpace(executionFlags.Gateway)
	}

	return module.InvokerFactory(endpoints)
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

package callmod_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/wasmforge/forgectl/internal/gateway"
	"github.com/wasmforge/forgectl/internal/tasks/callmod"
)

type stubInvoker struct {
	recordedRequests    []gateway.InvocationRequest
	recordedIdentifiers []string
	syncResult          gateway.InvocationResult
	asyncResult         gateway.AsyncInvocationResult
	statusResult        gateway.CallStatus
	invocationError     error
}

func (invoker *stubInvoker) InvokeFunction(_ context.Context, request gateway.InvocationRequest) (gateway.InvocationResult, error) {
	invoker.recordedRequests = append(invoker.recordedRequests, request)
	return invoker.syncResult, invoker.invocationError
}

func (invoker *stubInvoker) InvokeFunctionAsync(_ context.Context, request gateway.InvocationRequest) (gateway.AsyncInvocationResult, error) {
	invoker.recordedRequests = append(invoker.recordedRequests, request)
	return invoker.asyncResult, invoker.invocationError
}

func (invoker *stubInvoker) CallStatus(_ context.Context, callIdentifier string) (gateway.CallStatus, error) {
	invoker.recordedIdentifiers = append(invoker.recordedIdentifiers, callIdentifier)
	return invoker.statusResult, invoker.invocationError
}

func runModuleCommand(testInstance *testing.T, invoker *stubInvoker, arguments []string) (string, error) {
	module := &callmod.Module{Invoker: invoker}
	commands, commandsError := module.Commands()
	require.NoError(testInstance, commandsError)

	rootCommand := &cobra.Command{Use: "invoke"}
	rootCommand.AddCommand(commands...)

	outputBuffer := &bytes.Buffer{}
	rootCommand.SetOut(outputBuffer)
	rootCommand.SetErr(outputBuffer)
	rootCommand.SetArgs(arguments)

	executionError := rootCommand.Execute()
	return outputBuffer.String(), executionError
}

func TestModuleRequiresInvoker(testInstance *testing.T) {
	module := &callmod.Module{}
	commands, commandsError := module.Commands()
	require.Nil(testInstance, commands)
	require.ErrorIs(testInstance, commandsError, callmod.ErrInvokerNotConfigured)
}

func TestSyncPrintsFunctionOutput(testInstance *testing.T) {
	invoker := &stubInvoker{syncResult: gateway.InvocationResult{Output: "hello\n"}}

	commandOutput, executionError := runModuleCommand(testInstance, invoker, []string{"sync", "demo", "echo", "--input", "payload"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "hello\n", commandOutput)
	require.Equal(testInstance, []gateway.InvocationRequest{{User: "demo", Function: "echo", InputData: "payload"}}, invoker.recordedRequests)
}

func TestAsyncPrintsCallIdentifier(testInstance *testing.T) {
	invoker := &stubInvoker{asyncResult: gateway.AsyncInvocationResult{CallIdentifier: "42"}}

	commandOutput, executionError := runModuleCommand(testInstance, invoker, []string{"async", "demo", "echo"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "42\n", commandOutput)
}

func TestStatusPrintsStateAndOutput(testInstance *testing.T) {
	invoker := &stubInvoker{statusResult: gateway.CallStatus{State: gateway.CallStateSucceeded, Output: "done"}}

	commandOutput, executionError := runModuleCommand(testInstance, invoker, []string{"status", "42"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "SUCCESS\ndone\n", commandOutput)
	require.Equal(testInstance, []string{"42"}, invoker.recordedIdentifiers)
}

func TestInvocationErrorsPropagate(testInstance *testing.T) {
	gatewayFailure := errors.New("gateway unavailable")
	invoker := &stubInvoker{invocationError: gatewayFailure}

	_, executionError := runModuleCommand(testInstance, invoker, []string{"sync", "demo", "echo"})
	require.ErrorIs(testInstance, executionError, gatewayFailure)
}

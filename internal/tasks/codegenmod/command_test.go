package codegenmod_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/forgectl/internal/execshell"
	"github.com/wasmforge/forgectl/internal/tasks/codegenmod"
)

type recordingCodegenExecutor struct {
	invocations    []execshell.CommandDetails
	executionError error
}

func (executor *recordingCodegenExecutor) ExecuteCodegen(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, details)
	return execshell.ExecutionResult{}, executor.executionError
}

func buildCodegenCommand(testInstance *testing.T, executor *recordingCodegenExecutor) func(arguments []string) error {
	module := &codegenmod.Module{Executor: executor}
	commands, commandsError := module.Commands()
	require.NoError(testInstance, commandsError)
	require.Len(testInstance, commands, 1)

	codegenCommand := commands[0]
	return func(arguments []string) error {
		if arguments == nil {
			arguments = []string{}
		}
		codegenCommand.SetArgs(arguments)
		return codegenCommand.Execute()
	}
}

func TestModuleRequiresExecutor(testInstance *testing.T) {
	module := &codegenmod.Module{}
	commands, commandsError := module.Commands()
	require.Nil(testInstance, commands)
	require.ErrorIs(testInstance, commandsError, codegenmod.ErrExecutorNotConfigured)
}

func TestCodegenForwardsArguments(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "user_only", arguments: []string{"demo"}},
		{name: "user_and_function", arguments: []string{"demo", "echo"}},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			executor := &recordingCodegenExecutor{}
			runCodegen := buildCodegenCommand(subtestInstance, executor)

			executionError := runCodegen(testCase.arguments)
			require.NoError(subtestInstance, executionError)
			require.Len(subtestInstance, executor.invocations, 1)
			require.Equal(subtestInstance, testCase.arguments, executor.invocations[0].Arguments)
		})
	}
}

func TestCodegenRejectsMissingUser(testInstance *testing.T) {
	executor := &recordingCodegenExecutor{}
	runCodegen := buildCodegenCommand(testInstance, executor)

	executionError := runCodegen(nil)
	require.Error(testInstance, executionError)
	require.Empty(testInstance, executor.invocations)
}

func TestCodegenPropagatesExecutorFailures(testInstance *testing.T) {
	generationFailure := errors.New("code generation failed")
	executor := &recordingCodegenExecutor{executionError: generationFailure}
	runCodegen := buildCodegenCommand(testInstance, executor)

	executionError := runCodegen([]string{"demo"})
	require.ErrorIs(testInstance, executionError, generationFailure)
}

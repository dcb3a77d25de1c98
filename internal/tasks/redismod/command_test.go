package redismod_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/wasmforge/forgectl/internal/execshell"
	"github.com/wasmforge/forgectl/internal/tasks/redismod"
	"github.com/wasmforge/forgectl/internal/utils"
)

type recordingQueueExecutor struct {
	recordedDetails []execshell.CommandDetails
	result          execshell.ExecutionResult
}

func (executor *recordingQueueExecutor) ExecuteRedisCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return executor.result, nil
}

func buildRedisCommand(testInstance *testing.T, executor *recordingQueueExecutor, configuration *redismod.Configuration, commandName string) *cobra.Command {
	module := &redismod.Module{Executor: executor}
	if configuration != nil {
		module.ConfigurationProvider = func() redismod.Configuration { return *configuration }
	}
	commands, commandsError := module.Commands()
	require.NoError(testInstance, commandsError)

	for _, command := range commands {
		if command.Name() == commandName {
			return command
		}
	}
	testInstance.Fatalf("command %s not built", commandName)
	return nil
}

func TestClearQueueFlushesConfiguredHostAfterConfirmation(testInstance *testing.T) {
	executor := &recordingQueueExecutor{}
	configuration := redismod.Configuration{QueueHost: "queue.internal"}
	clearCommand := buildRedisCommand(testInstance, executor, &configuration, "clear-queue")

	outputBuffer := &bytes.Buffer{}
	clearCommand.SetOut(outputBuffer)
	clearCommand.SetIn(strings.NewReader("y\n"))
	clearCommand.SetArgs([]string{})

	require.NoError(testInstance, clearCommand.Execute())
	require.Equal(testInstance, []string{"-h", "queue.internal", "FLUSHALL"}, executor.recordedDetails[0].Arguments)
	require.Contains(testInstance, outputBuffer.String(), "queue.internal")
}

func TestClearQueueAbortsWithoutConfirmation(testInstance *testing.T) {
	executor := &recordingQueueExecutor{}
	clearCommand := buildRedisCommand(testInstance, executor, nil, "clear-queue")

	outputBuffer := &bytes.Buffer{}
	clearCommand.SetOut(outputBuffer)
	clearCommand.SetIn(strings.NewReader("n\n"))
	clearCommand.SetArgs([]string{})

	require.NoError(testInstance, clearCommand.Execute())
	require.Empty(testInstance, executor.recordedDetails)
	require.Contains(testInstance, outputBuffer.String(), "clear-queue aborted")
}

func TestClearQueueSkipsPromptWhenAssumeYesSet(testInstance *testing.T) {
	executor := &recordingQueueExecutor{}
	clearCommand := buildRedisCommand(testInstance, executor, nil, "clear-queue")

	contextAccessor := utils.NewCommandContextAccessor()
	commandContext := contextAccessor.WithExecutionFlags(context.Background(), utils.ExecutionFlags{AssumeYes: true, AssumeYesSet: true})
	clearCommand.SetContext(commandContext)

	outputBuffer := &bytes.Buffer{}
	clearCommand.SetOut(outputBuffer)
	clearCommand.SetIn(strings.NewReader(""))
	clearCommand.SetArgs([]string{})

	require.NoError(testInstance, clearCommand.Execute())
	require.Equal(testInstance, []string{"-h", "127.0.0.1", "FLUSHALL"}, executor.recordedDetails[0].Arguments)
	require.NotContains(testInstance, outputBuffer.String(), "[y/N]")
}

func TestListWorkersPrintsSetMembers(testInstance *testing.T) {
	executor := &recordingQueueExecutor{result: execshell.ExecutionResult{StandardOutput: "worker-1\nworker-2\n"}}
	listCommand := buildRedisCommand(testInstance, executor, nil, "list-workers")

	outputBuffer := &bytes.Buffer{}
	listCommand.SetOut(outputBuffer)
	listCommand.SetArgs([]string{})

	require.NoError(testInstance, listCommand.Execute())
	require.Equal(testInstance, []string{"-h", "127.0.0.1", "SMEMBERS", "available_workers"}, executor.recordedDetails[0].Arguments)
	require.Equal(testInstance, "worker-1\nworker-2\n", outputBuffer.String())
}

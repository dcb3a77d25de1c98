package toolchainmod_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/wasmforge/forgectl/internal/execshell"
	"github.com/wasmforge/forgectl/internal/tasks/toolchainmod"
)

type recordingArchiveExecutor struct {
	curlDetails []execshell.CommandDetails
	tarDetails  []execshell.CommandDetails
}

func (executor *recordingArchiveExecutor) ExecuteCurl(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.curlDetails = append(executor.curlDetails, details)
	archivePath := details.Arguments[2]
	return execshell.ExecutionResult{}, os.WriteFile(archivePath, []byte("archive"), 0o600)
}

func (executor *recordingArchiveExecutor) ExecuteTar(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.tarDetails = append(executor.tarDetails, details)
	return execshell.ExecutionResult{}, nil
}

func TestVerifyVersionComparisons(testInstance *testing.T) {
	testCases := []struct {
		name             string
		installedVersion string
		minimumVersion   string
		expectError      bool
	}{
		{name: "equal_versions", installedVersion: "0.6.0", minimumVersion: "0.6.0"},
		{name: "newer_installed", installedVersion: "1.2.3", minimumVersion: "0.6.0"},
		{name: "prefixed_installed", installedVersion: "v0.7.1", minimumVersion: "0.6.0"},
		{name: "outdated_installed", installedVersion: "0.5.9", minimumVersion: "0.6.0", expectError: true},
		{name: "invalid_installed", installedVersion: "not-a-version", minimumVersion: "0.6.0", expectError: true},
		{name: "invalid_minimum", installedVersion: "0.6.0", minimumVersion: "oldest", expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			verifyError := toolchainmod.VerifyVersion(testCase.installedVersion, testCase.minimumVersion)
			if testCase.expectError {
				require.Error(subtestInstance, verifyError)
				return
			}
			require.NoError(subtestInstance, verifyError)
		})
	}
}

func TestVerifyCommandReadsInstalledVersionFile(testInstance *testing.T) {
	installRoot := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(installRoot, "VERSION"), []byte("0.8.0\n"), 0o600))

	module := &toolchainmod.Module{
		Executor: &recordingArchiveExecutor{},
		ConfigurationProvider: func() toolchainmod.Configuration {
			return toolchainmod.Configuration{InstallRoot: installRoot, MinimumVersion: "0.6.0"}
		},
	}

	commands, commandsError := module.Commands()
	require.NoError(testInstance, commandsError)

	verifyCommand := findCommand(testInstance, commands, "verify")
	outputBuffer := &bytes.Buffer{}
	verifyCommand.SetOut(outputBuffer)
	verifyCommand.SetArgs([]string{})

	require.NoError(testInstance, verifyCommand.Execute())
	require.Contains(testInstance, outputBuffer.String(), "0.8.0 satisfies minimum 0.6.0")
}

func TestVerifyCommandFailsWithoutVersionFile(testInstance *testing.T) {
	module := &toolchainmod.Module{
		Executor: &recordingArchiveExecutor{},
		ConfigurationProvider: func() toolchainmod.Configuration {
			return toolchainmod.Configuration{InstallRoot: testInstance.TempDir()}
		},
	}

	commands, commandsError := module.Commands()
	require.NoError(testInstance, commandsError)

	verifyCommand := findCommand(testInstance, commands, "verify")
	verifyCommand.SilenceErrors = true
	verifyCommand.SilenceUsage = true
	verifyCommand.SetArgs([]string{})

	require.Error(testInstance, verifyCommand.Execute())
}

func TestInstallDownloadsAndExtractsArchive(testInstance *testing.T) {
	installRoot := filepath.Join(testInstance.TempDir(), "toolchain")
	executor := &recordingArchiveExecutor{}
	module := &toolchainmod.Module{
		Executor: executor,
		ConfigurationProvider: func() toolchainmod.Configuration {
			return toolchainmod.Configuration{InstallRoot: installRoot, DownloadURL: "https://example.test/toolchain.tar.gz"}
		},
	}

	commands, commandsError := module.Commands()
	require.NoError(testInstance, commandsError)

	installCommand := findCommand(testInstance, commands, "install")
	installCommand.SetArgs([]string{})
	require.NoError(testInstance, installCommand.Execute())

	require.Len(testInstance, executor.curlDetails, 1)
	require.Contains(testInstance, executor.curlDetails[0].Arguments, "https://example.test/toolchain.tar.gz")
	require.Len(testInstance, executor.tarDetails, 1)
	require.Contains(testInstance, executor.tarDetails[0].Arguments, installRoot)

	archivePath := filepath.Join(installRoot, "toolchain.tar.gz")
	_, statError := os.Stat(archivePath)
	require.True(testInstance, os.IsNotExist(statError))
}

func findCommand(testInstance *testing.T, commands []*cobra.Command, commandName string) *cobra.Command {
	for _, command := range commands {
		if command.Name() == commandName {
			return command
		}
	}
	testInstance.Fatalf("command %s not built", commandName)
	return nil
}

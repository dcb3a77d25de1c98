package uploadmod_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/forgectl/internal/tasks/uploadmod"
)

type recordedUpload struct {
	user     string
	function string
	wasmPath string
}

type recordedSharedUpload struct {
	localPath string
	hostPath  string
}

type recordingUploader struct {
	uploads       []recordedUpload
	sharedUploads []recordedSharedUpload
	uploadError   error
}

func (uploader *recordingUploader) UploadFunction(_ context.Context, user string, function string, wasmPath string) error {
	uploader.uploads = append(uploader.uploads, recordedUpload{user: user, function: function, wasmPath: wasmPath})
	return uploader.uploadError
}

func (uploader *recordingUploader) UploadSharedFile(_ context.Context, localPath string, remotePath string) error {
	uploader.sharedUploads = append(uploader.sharedUploads, recordedSharedUpload{localPath: localPath, hostPath: remotePath})
	return uploader.uploadError
}

func buildUploadCommands(testInstance *testing.T, uploader *recordingUploader) map[string]func(arguments []string) error {
	module := &uploadmod.Module{Uploader: uploader}
	commands, commandsError := module.Commands()
	require.NoError(testInstance, commandsError)

	runners := map[string]func(arguments []string) error{}
	for _, builtCommand := range commands {
		command := builtCommand
		runners[command.Name()] = func(arguments []string) error {
			if arguments == nil {
				arguments = []string{}
			}
			command.SetArgs(arguments)
			return command.Execute()
		}
	}
	return runners
}

func TestModuleRequiresUploader(testInstance *testing.T) {
	module := &uploadmod.Module{}
	commands, commandsError := module.Commands()
	require.Nil(testInstance, commands)
	require.ErrorIs(testInstance, commandsError, uploadmod.ErrUploaderNotConfigured)
}

func TestUploadDefaultsWasmPathFromConfiguration(testInstance *testing.T) {
	uploader := &recordingUploader{}
	runners := buildUploadCommands(testInstance, uploader)

	executionError := runners["upload"]([]string{"demo", "echo"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []recordedUpload{{
		user:     "demo",
		function: "echo",
		wasmPath: filepath.Join("build", "demo", "echo", "function.wasm"),
	}}, uploader.uploads)
}

func TestUploadHonorsExplicitWasmPath(testInstance *testing.T) {
	uploader := &recordingUploader{}
	runners := buildUploadCommands(testInstance, uploader)

	executionError := runners["upload"]([]string{"demo", "echo", "/tmp/custom.wasm"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "/tmp/custom.wasm", uploader.uploads[0].wasmPath)
}

func TestUploadBatchUploadsEveryManifestEntry(testInstance *testing.T) {
	manifestPath := filepath.Join(testInstance.TempDir(), "manifest.yaml")
	manifestContents := `functions:
  - user: demo
    function: echo
    wasm_path: build/demo/echo/function.wasm
  - user: demo
    function: fibonacci
    wasm_path: build/demo/fibonacci/function.wasm
`
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(manifestContents), 0o600))

	uploader := &recordingUploader{}
	runners := buildUploadCommands(testInstance, uploader)

	executionError := runners["upload-batch"]([]string{manifestPath})
	require.NoError(testInstance, executionError)
	require.Len(testInstance, uploader.uploads, 2)
	require.Equal(testInstance, "fibonacci", uploader.uploads[1].function)
}

func TestUploadBatchStopsOnFirstFailure(testInstance *testing.T) {
	manifestPath := filepath.Join(testInstance.TempDir(), "manifest.yaml")
	manifestContents := `functions:
  - user: demo
    function: echo
    wasm_path: build/demo/echo/function.wasm
  - user: demo
    function: fibonacci
    wasm_path: build/demo/fibonacci/function.wasm
`
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(manifestContents), 0o600))

	uploadFailure := errors.New("gateway unavailable")
	uploader := &recordingUploader{uploadError: uploadFailure}
	runners := buildUploadCommands(testInstance, uploader)

	executionError := runners["upload-batch"]([]string{manifestPath})
	require.ErrorIs(testInstance, executionError, uploadFailure)
	require.Len(testInstance, uploader.uploads, 1)
}

func TestParseManifestValidation(testInstance *testing.T) {
	testCases := []struct {
		name     string
		contents string
	}{
		{name: "empty_manifest", contents: "functions: []\n"},
		{name: "missing_user", contents: "functions:\n  - function: echo\n    wasm_path: a.wasm\n"},
		{name: "missing_function", contents: "functions:\n  - user: demo\n    wasm_path: a.wasm\n"},
		{name: "missing_wasm_path", contents: "functions:\n  - user: demo\n    function: echo\n"},
		{name: "malformed_yaml", contents: "functions: [\n"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			_, parseError := uploadmod.ParseManifest("manifest.yaml", []byte(testCase.contents))
			require.Error(subtestInstance, parseError)
		})
	}
}

func TestUploadSharedForwardsPaths(testInstance *testing.T) {
	uploader := &recordingUploader{}
	runners := buildUploadCommands(testInstance, uploader)

	require.NoError(testInstance, runners["upload-shared"]([]string{"data/matrix.bin", "/var/wasmforge/shared/matrix.bin"}))
	require.Equal(testInstance, []recordedSharedUpload{{localPath: "data/matrix.bin", hostPath: "/var/wasmforge/shared/matrix.bin"}}, uploader.sharedUploads)
}

func TestUploadSharedRequiresBothPaths(testInstance *testing.T) {
	uploader := &recordingUploader{}
	runners := buildUploadCommands(testInstance, uploader)

	require.Error(testInstance, runners["upload-shared"]([]string{"data/matrix.bin"}))
	require.Empty(testInstance, uploader.sharedUploads)
}

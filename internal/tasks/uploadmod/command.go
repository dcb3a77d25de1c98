package uploadmod

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmforge/forgectl/internal/gateway"
	flagutils "github.com/wasmforge/forgectl/internal/utils/flags"
)

const (
	moduleNameConstant                    = "upload"
	uploadCommandUseConstant              = "upload <user> <function> [wasm-file]"
	uploadCommandShortDescriptionConstant = "Upload a compiled function to the gateway"
	uploadCommandLongDescriptionConstant  = "upload streams a compiled WebAssembly module to the platform gateway for storage and distribution."
	uploadBatchCommandUseConstant         = "upload-batch <manifest>"
	uploadBatchCommandShortDescription    = "Upload every function listed in a YAML manifest"
	uploadSharedCommandUseConstant        = "upload-shared <local-path> <host-path>"
	uploadSharedCommandShortDescription   = "Upload a data file into shared gateway storage"
	uploadMinimumArgumentCountConstant    = 2
	uploadMaximumArgumentCountConstant    = 3
	uploadBatchArgumentCountConstant      = 1
	uploadSharedArgumentCountConstant     = 2
	uploaderNotConfiguredMessageConstant  = "upload module gateway uploader not configured"
	uploadingFunctionMessageConstant      = "uploading function"
	uploadingSharedFileMessageConstant    = "uploading shared file"
	userLogFieldConstant                  = "user"
	functionLogFieldConstant              = "function"
	wasmPathLogFieldConstant              = "wasm_path"
	manifestLogFieldConstant              = "manifest"
	localPathLogFieldConstant             = "local_path"
	hostPathLogFieldConstant              = "host_path"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current upload configuration.
type ConfigurationProvider func() Configuration

// FunctionUploader is the subset of gateway.Client used by upload commands.
type FunctionUploader interface {
	UploadFunction(executionContext context.Context, user string, function string, wasmPath string) error
	UploadSharedFile(executionContext context.Context, localPath string, remotePath string) error
}

// UploaderFactory builds an uploader for the resolved gateway endpoints.
type UploaderFactory func(endpoints gateway.Endpoints) (FunctionUploader, error)

// ErrUploaderNotConfigured indicates the module cannot reach a gateway uploader.
var ErrUploaderNotConfigured = errors.New(uploaderNotConfiguredMessageConstant)

// Module exposes the upload commands for registry assembly.
type Module struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Uploader              FunctionUploader
	UploaderFactory       UploaderFactory
}

// Name identifies the module inside the registry.
func (module *Module) Name() string {
	return moduleNameConstant
}

// Commands builds the upload and upload-batch commands.
func (module *Module) Commands() ([]*cobra.Command, error) {
	if module.Uploader == nil && module.UploaderFactory == nil {
		return nil, ErrUploaderNotConfigured
	}

	uploadCommand := &cobra.Command{
		Use:   uploadCommandUseConstant,
		Short: uploadCommandShortDescriptionConstant,
		Long:  uploadCommandLongDescriptionConstant,
		Args:  cobra.RangeArgs(uploadMinimumArgumentCountConstant, uploadMaximumArgumentCountConstant),
		RunE:  module.runUpload,
	}

	uploadBatchCommand := &cobra.Command{
		Use:   uploadBatchCommandUseConstant,
		Short: uploadBatchCommandShortDescription,
		Args:  cobra.ExactArgs(uploadBatchArgumentCountConstant),
		RunE:  module.runUploadBatch,
	}

	uploadSharedCommand := &cobra.Command{
		Use:   uploadSharedCommandUseConstant,
		Short: uploadSharedCommandShortDescription,
		Args:  cobra.ExactArgs(uploadSharedArgumentCountConstant),
		RunE:  module.runUploadShared,
	}

	return []*cobra.Command{uploadCommand, uploadBatchCommand, uploadSharedCommand}, nil
}

func (module *Module) runUpload(command *cobra.Command, arguments []string) error {
	configuration := module.resolveConfiguration()
	userName := arguments[0]
	functionName := arguments[1]

	wasmPath := ""
	if len(arguments) > uploadMinimumArgumentCountConstant {
		wasmPath = arguments[2]
	}
	if len(strings.TrimSpace(wasmPath)) == 0 {
		wasmPath = filepath.Join(configuration.BuildRoot, userName, functionName, configuration.WasmFileName)
	}

	uploader, uploaderError := module.resolveUploader(command, configuration)
	if uploaderError != nil {
		return uploaderError
	}

	module.resolveLogger().Info(uploadingFunctionMessageConstant,
		zap.String(userLogFieldConstant, userName),
		zap.String(functionLogFieldConstant, functionName),
		zap.String(wasmPathLogFieldConstant, wasmPath),
	)

	return uploader.UploadFunction(command.Context(), userName, functionName, wasmPath)
}

func (module *Module) runUploadBatch(command *cobra.Command, arguments []string) error {
	configuration := module.resolveConfiguration()
	manifestPath := arguments[0]

	manifest, manifestError := LoadManifest(manifestPath)
	if manifestError != nil {
		return manifestError
	}

	uploader, uploaderError := module.resolveUploader(command, configuration)
	if uploaderError != nil {
		return uploaderError
	}

	logger := module.resolveLogger()
	for _, manifestEntry := range manifest.Functions {
		logger.Info(uploadingFunctionMessageConstant,
			zap.String(manifestLogFieldConstant, manifestPath),
			zap.String(userLogFieldConstant, manifestEntry.User),
			zap.String(functionLogFieldConstant, manifestEntry.Function),
			zap.String(wasmPathLogFieldConstant, manifestEntry.WasmPath),
		)
		if uploadError := uploader.UploadFunction(command.Context(), manifestEntry.User, manifestEntry.Function, manifestEntry.WasmPath); uploadError != nil {
			return uploadError
		}
	}

	return nil
}

func (module *Module) runUploadShared(command *cobra.Command, arguments []string) error {
	configuration := module.resolveConfiguration()
	localPath := arguments[0]
	hostPath := arguments[1]

	uploader, uploaderError := module.resolveUploader(command, configuration)
	if uploaderError != nil {
		return uploaderError
	}

	module.resolveLogger().Info(uploadingSharedFileMessageConstant,
		zap.String(localPathLogFieldConstant, localPath),
		zap.String(hostPathLogFieldConstant, hostPath),
	)

	return uploader.UploadSharedFile(command.Context(), localPath, hostPath)
}

func (module *Module) resolveUploader(command *cobra.Command, configuration Configuration) (FunctionUploader, error) {
	if module.Uploader != nil {
		return module.Uploader, nil
	}
	if module.UploaderFactory == nil {
		return nil, ErrUploaderNotConfigured
	}
	return module.UploaderFactory(ResolveEndpoints(command, configuration))
}

// ResolveEndpoints derives gateway endpoints from configuration plus the
// --gateway override when the flag is set.
func ResolveEndpoints(command *cobra.Command, configuration Configuration) gateway.Endpoints {
	endpoints := gateway.Endpoints{
		Host:       configuration.Gateway.Host,
		InvokePort: configuration.Gateway.InvokePort,
		UploadPort: configuration.Gateway.UploadPort,
	}

	executionFlags, executionFlagsAvailable := flagutils.ResolveExecutionFlags(command)
	if executionFlagsAvailable && executionFlags.GatewaySet && len(strings.TrimSpace(executionFlags.Gateway)) > 0 {
		endpoints.Host = strings.TrimSpace(executionFlags.Gateway)
	}

	return endpoints
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

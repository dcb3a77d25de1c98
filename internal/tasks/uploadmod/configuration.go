package uploadmod

import "strings"

const (
	defaultBuildRootConstant       = "build"
	defaultWasmFileNameConstant    = "function.wasm"
	defaultGatewayHostConstant     = "127.0.0.1"
	defaultGatewayInvokePortNumber = 8080
	defaultGatewayUploadPortNumber = 8002
)

// GatewayConfiguration addresses the platform gateway.
type GatewayConfiguration struct {
	Host       string `mapstructure:"host"`
	InvokePort int    `mapstructure:"invoke_port"`
	UploadPort int    `mapstructure:"upload_port"`
}

// Configuration aggregates settings for upload commands.
type Configuration struct {
	BuildRoot    string               `mapstructure:"build_root"`
	WasmFileName string               `mapstructure:"wasm_file_name"`
	Gateway      GatewayConfiguration `mapstructure:"gateway"`
}

// DefaultConfiguration supplies baseline values for upload configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		BuildRoot:    defaultBuildRootConstant,
		WasmFileName: defaultWasmFileNameConstant,
		Gateway: GatewayConfiguration{
			Host:       defaultGatewayHostConstant,
			InvokePort: defaultGatewayInvokePortNumber,
			UploadPort: defaultGatewayUploadPortNumber,
		},
	}
}

// Sanitize trims configured values and restores defaults for empty fields.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.BuildRoot = defaultWhenBlank(configuration.BuildRoot, defaultBuildRootConstant)
	sanitized.WasmFileName = defaultWhenBlank(configuration.WasmFileName, defaultWasmFileNameConstant)
	sanitized.Gateway = configuration.Gateway.Sanitize()
	return sanitized
}

// Sanitize trims gateway values and restores defaults for empty fields.
func (configuration GatewayConfiguration) Sanitize() GatewayConfiguration {
	sanitized := configuration
	sanitized.Host = defaultWhenBlank(configuration.Host, defaultGatewayHostConstant)
	if sanitized.InvokePort <= 0 {
		sanitized.InvokePort = defaultGatewayInvokePortNumber
	}
	if sanitized.UploadPort <= 0 {
		sanitized.UploadPort = defaultGatewayUploadPortNumber
	}
	return sanitized
}

func defaultWhenBlank(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}

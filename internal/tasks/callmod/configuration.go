package callmod

import "strings"

const (
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

// Configuration aggregates settings for invoke commands.
type Configuration struct {
	Gateway GatewayConfiguration `mapstructure:"gateway"`
}

// DefaultConfiguration supplies baseline values for invoke configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
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
	if len(strings.TrimSpace(configuration.Gateway.Host)) == 0 {
		sanitized.Gateway.Host = defaultGatewayHostConstant
	} else {
		sanitized.Gateway.Host = strings.TrimSpace(configuration.Gateway.Host)
	}
	if sanitized.Gateway.InvokePort <= 0 {
		sanitized.Gateway.InvokePort = defaultGatewayInvokePortNumber
	}
	if sanitized.Gateway.UploadPort <= 0 {
		sanitized.Gateway.UploadPort = defaultGatewayUploadPortNumber
	}
	return sanitized
}

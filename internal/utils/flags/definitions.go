package flags

// Shared flag names and usage strings bound by the CLI entrypoint.
const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Preview the commands a task would run without executing them"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
	// GatewayFlagName exposes the shared gateway endpoint flag name.
	GatewayFlagName = "gateway"
	// GatewayFlagUsage describes the shared gateway endpoint flag purpose.
	GatewayFlagUsage = "Gateway endpoint to target (host:port)"
)

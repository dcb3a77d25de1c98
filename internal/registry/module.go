package registry

import "github.com/spf13/cobra"

// Module exposes a named set of commands contributed to the task namespace.
type Module interface {
	// Name identifies the module in diagnostics and duplicate reports.
	Name() string
	// Commands performs the module load step and returns its exposed commands.
	Commands() ([]*cobra.Command, error)
}

// CapabilityProbe is implemented by modules whose availability depends on a
// runtime prerequisite. The probe must be side-effect free; a returned error
// means the prerequisite is absent.
type CapabilityProbe interface {
	ProbeCapability() error
}

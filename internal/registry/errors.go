package registry

import (
	"fmt"
	"strings"
)

const (
	moduleLoadErrorTemplateConstant       = "unable to load required module %q: %v"
	duplicateCommandErrorTemplateConstant = "duplicate command %q declared by modules %q and %q"
	commandNotFoundErrorTemplateConstant  = "command not found: %s"
	registryAlreadyBuiltMessageConstant   = "registry already built"
	moduleMissingMessageConstant          = "module not provided"
	aliasNameMissingMessageConstant       = "alias name not provided"
)

// ModuleLoadError reports a required module whose probe or load step failed.
type ModuleLoadError struct {
	ModuleName string
	Cause      error
}

// Error describes the failing module and its cause.
func (loadError ModuleLoadError) Error() string {
	return fmt.Sprintf(moduleLoadErrorTemplateConstant, loadError.ModuleName, loadError.Cause)
}

// Unwrap exposes the underlying cause.
func (loadError ModuleLoadError) Unwrap() error {
	return loadError.Cause
}

// DuplicateCommandError reports two modules declaring the same command name
// at the same namespace level.
type DuplicateCommandError struct {
	CommandName      string
	FirstModuleName  string
	SecondModuleName string
}

// Error names the colliding command and both contributing modules.
func (duplicateError DuplicateCommandError) Error() string {
	return fmt.Sprintf(
		duplicateCommandErrorTemplateConstant,
		duplicateError.CommandName,
		duplicateError.FirstModuleName,
		duplicateError.SecondModuleName,
	)
}

// CommandNotFoundError reports an unresolvable command path.
type CommandNotFoundError struct {
	Path []string
}

// Error describes the unresolved command path.
func (notFoundError CommandNotFoundError) Error() string {
	return fmt.Sprintf(commandNotFoundErrorTemplateConstant, strings.Join(notFoundError.Path, " "))
}

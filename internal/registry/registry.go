package registry

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	probeFailedMessageConstant        = "optional module prerequisite missing; skipping"
	optionalLoadFailedMessageConstant = "optional module probe succeeded but load failed; skipping"
	moduleRegisteredMessageConstant   = "module registered"
	moduleNameLogFieldConstant        = "module"
	aliasNameLogFieldConstant         = "alias"
	probeErrorLogFieldConstant        = "probe_error"
	loadErrorLogFieldConstant         = "load_error"
	commandCountLogFieldConstant      = "command_count"
	aliasDescriptionTemplateConstant  = namespaceShortDescriptionTemplateConstant
)

type sourceKind int

const (
	requiredSourceKind sourceKind = iota
	optionalSourceKind
	aliasSourceKind
)

type moduleSource struct {
	module Module
	kind   sourceKind
	alias  string
}

// Registry collects declared module sources and produces the root namespace.
// It is constructed once per process invocation and never shared across
// goroutines; Build supports a single call.
type Registry struct {
	logger  *zap.Logger
	sources []moduleSource
	built   bool
}

// ErrRegistryAlreadyBuilt indicates Build was invoked more than once.
var ErrRegistryAlreadyBuilt = errors.New(registryAlreadyBuiltMessageConstant)

// ErrModuleMissing indicates a nil module was registered.
var ErrModuleMissing = errors.New(moduleMissingMessageConstant)

// ErrAliasNameMissing indicates alias registration without a name.
var ErrAliasNameMissing = errors.New(aliasNameMissingMessageConstant)

// NewRegistry constructs an empty registry logging through the provided logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Register declares a required module whose commands merge at the root level.
func (registry *Registry) Register(module Module) {
	registry.sources = append(registry.sources, moduleSource{module: module, kind: requiredSourceKind})
}

// RegisterOptional declares a module that is probed before loading and
// silently skipped when its prerequisite is absent.
func (registry *Registry) RegisterOptional(module Module) {
	registry.sources = append(registry.sources, moduleSource{module: module, kind: optionalSourceKind})
}

// RegisterAlias declares a required module whose commands nest under the
// provided alias namespace instead of merging at the root.
func (registry *Registry) RegisterAlias(module Module, aliasName string) {
	registry.sources = append(registry.sources, moduleSource{module: module, kind: aliasSourceKind, alias: aliasName})
}

// Build loads every declared source in declaration order and returns the
// finished root namespace. Required module failures and duplicate command
// names abort the build.
func (registry *Registry) Build() (*Namespace, error) {
	if registry.built {
		return nil, ErrRegistryAlreadyBuilt
	}
	registry.built = true

	rootNamespace := newNamespace(rootNamespaceNameConstant)

	for _, source := range registry.sources {
		if source.module == nil {
			return nil, ErrModuleMissing
		}

		switch source.kind {
		case requiredSourceKind:
			if registerError := registry.registerRequired(rootNamespace, source.module); registerError != nil {
				return nil, registerError
			}
		case aliasSourceKind:
			if registerError := registry.registerAliased(rootNamespace, source.module, source.alias); registerError != nil {
				return nil, registerError
			}
		case optionalSourceKind:
			registry.registerOptional(rootNamespace, source.module)
		}
	}

	return rootNamespace, nil
}

func (registry *Registry) registerRequired(rootNamespace *Namespace, module Module) error {
	if probeError := probeModule(module); probeError != nil {
		return ModuleLoadError{ModuleName: module.Name(), Cause: probeError}
	}

	moduleCommands, loadError := module.Commands()
	if loadError != nil {
		return ModuleLoadError{ModuleName: module.Name(), Cause: loadError}
	}

	for _, moduleCommand := range moduleCommands {
		if addError := rootNamespace.addCommand(module.Name(), moduleCommand); addError != nil {
			return addError
		}
	}

	registry.logRegistered(module.Name(), "", len(moduleCommands))
	return nil
}

func (registry *Registry) registerAliased(rootNamespace *Namespace, module Module, aliasName string) error {
	if len(aliasName) == 0 {
		return ErrAliasNameMissing
	}

	if probeError := probeModule(module); probeError != nil {
		return ModuleLoadError{ModuleName: module.Name(), Cause: probeError}
	}

	moduleCommands, loadError := module.Commands()
	if loadError != nil {
		return ModuleLoadError{ModuleName: module.Name(), Cause: loadError}
	}

	aliasNamespace := newNamespace(aliasName)
	aliasNamespace.description = fmt.Sprintf(aliasDescriptionTemplateConstant, module.Name())
	for _, moduleCommand := range moduleCommands {
		if addError := aliasNamespace.addCommand(module.Name(), moduleCommand); addError != nil {
			return addError
		}
	}

	if addError := rootNamespace.addChild(module.Name(), aliasNamespace); addError != nil {
		return addError
	}

	registry.logRegistered(module.Name(), aliasName, len(moduleCommands))
	return nil
}

func (registry *Registry) registerOptional(rootNamespace *Namespace, module Module) {
	if probeError := probeModule(module); probeError != nil {
		registry.logger.Debug(probeFailedMessageConstant,
			zap.String(moduleNameLogFieldConstant, module.Name()),
			zap.String(probeErrorLogFieldConstant, probeError.Error()),
		)
		return
	}

	moduleCommands, loadError := module.Commands()
	if loadError != nil {
		registry.logger.Warn(optionalLoadFailedMessageConstant,
			zap.String(moduleNameLogFieldConstant, module.Name()),
			zap.String(loadErrorLogFieldConstant, loadError.Error()),
		)
		return
	}

	for _, moduleCommand := range moduleCommands {
		if addError := rootNamespace.addCommand(module.Name(), moduleCommand); addError != nil {
			registry.logger.Warn(optionalLoadFailedMessageConstant,
				zap.String(moduleNameLogFieldConstant, module.Name()),
				zap.String(loadErrorLogFieldConstant, addError.Error()),
			)
			return
		}
	}

	registry.logRegistered(module.Name(), "", len(moduleCommands))
}

func (registry *Registry) logRegistered(moduleName string, aliasName string, commandCount int) {
	logFields := []zap.Field{
		zap.String(moduleNameLogFieldConstant, moduleName),
		zap.Int(commandCountLogFieldConstant, commandCount),
	}
	if len(aliasName) > 0 {
		logFields = append(logFields, zap.String(aliasNameLogFieldConstant, aliasName))
	}
	registry.logger.Debug(moduleRegisteredMessageConstant, logFields...)
}

func probeModule(module Module) error {
	capabilityProbe, probeSupported := module.(CapabilityProbe)
	if !probeSupported {
		return nil
	}
	return capabilityProbe.ProbeCapability()
}

package registry_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wasmforge/forgectl/internal/registry"
)

const (
	alphaModuleNameConstant    = "alpha"
	betaModuleNameConstant     = "beta"
	optionalModuleNameConstant = "optional"
	aliasNameConstant          = "alias"
)

type stubModule struct {
	name         string
	commandNames []string
	loadError    error
	probeError   error
	probed       bool
	loaded       bool
}

func (module *stubModule) Name() string {
	return module.name
}

func (module *stubModule) Commands() ([]*cobra.Command, error) {
	module.loaded = true
	if module.loadError != nil {
		return nil, module.loadError
	}
	commands := make([]*cobra.Command, 0, len(module.commandNames))
	for _, commandName := range module.commandNames {
		commands = append(commands, &cobra.Command{Use: commandName})
	}
	return commands, nil
}

type probedStubModule struct {
	stubModule
}

func (module *probedStubModule) ProbeCapability() error {
	module.probed = true
	return module.probeError
}

func TestRegistryBuildMergesRequiredModulesAtRoot(testInstance *testing.T) {
	registryInstance := registry.NewRegistry(zap.NewNop())
	registryInstance.Register(&stubModule{name: alphaModuleNameConstant, commandNames: []string{"compile", "codegen"}})
	registryInstance.Register(&stubModule{name: betaModuleNameConstant, commandNames: []string{"upload"}})

	rootNamespace, buildError := registryInstance.Build()
	require.NoError(testInstance, buildError)
	require.Equal(testInstance, 3, rootNamespace.EntryCount())

	resolvedCommand, resolveError := rootNamespace.Resolve("upload")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "upload", resolvedCommand.Use)
}

func TestRegistryBuildFailsOnDuplicateCommand(testInstance *testing.T) {
	registryInstance := registry.NewRegistry(zap.NewNop())
	registryInstance.Register(&stubModule{name: alphaModuleNameConstant, commandNames: []string{"run"}})
	registryInstance.Register(&stubModule{name: betaModuleNameConstant, commandNames: []string{"run"}})

	rootNamespace, buildError := registryInstance.Build()
	require.Nil(testInstance, rootNamespace)
	require.Error(testInstance, buildError)

	var duplicateError registry.DuplicateCommandError
	require.ErrorAs(testInstance, buildError, &duplicateError)
	require.Equal(testInstance, "run", duplicateError.CommandName)
	require.Equal(testInstance, alphaModuleNameConstant, duplicateError.FirstModuleName)
	require.Equal(testInstance, betaModuleNameConstant, duplicateError.SecondModuleName)
}

func TestRegistryBuildRequiredModuleFailures(testInstance *testing.T) {
	loadFailure := errors.New("load failed")
	probeFailure := errors.New("prerequisite missing")

	testCases := []struct {
		name   string
		module registry.Module
	}{
		{
			name:   "load_error",
			module: &stubModule{name: alphaModuleNameConstant, loadError: loadFailure},
		},
		{
			name:   "probe_error",
			module: &probedStubModule{stubModule: stubModule{name: alphaModuleNameConstant, probeError: probeFailure}},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			registryInstance := registry.NewRegistry(zap.NewNop())
			registryInstance.Register(testCase.module)

			rootNamespace, buildError := registryInstance.Build()
			require.Nil(subtestInstance, rootNamespace)

			var moduleLoadError registry.ModuleLoadError
			require.ErrorAs(subtestInstance, buildError, &moduleLoadError)
			require.Equal(subtestInstance, alphaModuleNameConstant, moduleLoadError.ModuleName)
		})
	}
}

func TestRegistryBuildAliasIsolatesCommandNames(testInstance *testing.T) {
	registryInstance := registry.NewRegistry(zap.NewNop())
	registryInstance.Register(&stubModule{name: alphaModuleNameConstant, commandNames: []string{"start"}})
	registryInstance.RegisterAlias(&stubModule{name: betaModuleNameConstant, commandNames: []string{"start", "stop"}}, aliasNameConstant)

	rootNamespace, buildError := registryInstance.Build()
	require.NoError(testInstance, buildError)
	require.Equal(testInstance, 2, rootNamespace.EntryCount())

	rootCommand, rootResolveError := rootNamespace.Resolve("start")
	require.NoError(testInstance, rootResolveError)
	require.Equal(testInstance, "start", rootCommand.Use)

	aliasedCommand, aliasResolveError := rootNamespace.Resolve(aliasNameConstant, "stop")
	require.NoError(testInstance, aliasResolveError)
	require.Equal(testInstance, "stop", aliasedCommand.Use)

	_, unaliasedResolveError := rootNamespace.Resolve("stop")
	require.Error(testInstance, unaliasedResolveError)

	var notFoundError registry.CommandNotFoundError
	require.ErrorAs(testInstance, unaliasedResolveError, &notFoundError)
}

func TestRegistryBuildAliasRequiresName(testInstance *testing.T) {
	registryInstance := registry.NewRegistry(zap.NewNop())
	registryInstance.RegisterAlias(&stubModule{name: alphaModuleNameConstant, commandNames: []string{"start"}}, "")

	rootNamespace, buildError := registryInstance.Build()
	require.Nil(testInstance, rootNamespace)
	require.ErrorIs(testInstance, buildError, registry.ErrAliasNameMissing)
}

func TestRegistryBuildOptionalModuleOutcomes(testInstance *testing.T) {
	testCases := []struct {
		name               string
		probeError         error
		loadError          error
		expectedEntryCount int
		expectedWarnCount  int
	}{
		{
			name:               "probe_success_loads_commands",
			expectedEntryCount: 1,
			expectedWarnCount:  0,
		},
		{
			name:               "probe_failure_skips_silently",
			probeError:         errors.New("dependency not installed"),
			expectedEntryCount: 0,
			expectedWarnCount:  0,
		},
		{
			name:               "load_failure_warns_and_skips",
			loadError:          errors.New("load failed"),
			expectedEntryCount: 0,
			expectedWarnCount:  1,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			observedCore, observedLogs := observer.New(zap.WarnLevel)
			registryInstance := registry.NewRegistry(zap.New(observedCore))

			optionalModule := &probedStubModule{stubModule: stubModule{
				name:         optionalModuleNameConstant,
				commandNames: []string{"generate-matrix-data"},
				probeError:   testCase.probeError,
				loadError:    testCase.loadError,
			}}
			registryInstance.RegisterOptional(optionalModule)

			rootNamespace, buildError := registryInstance.Build()
			require.NoError(subtestInstance, buildError)
			require.Equal(subtestInstance, testCase.expectedEntryCount, rootNamespace.EntryCount())
			require.Equal(subtestInstance, testCase.expectedWarnCount, observedLogs.Len())
			require.True(subtestInstance, optionalModule.probed)

			if testCase.probeError != nil {
				require.False(subtestInstance, optionalModule.loaded)
			}
		})
	}
}

func TestRegistryBuildSupportsSingleInvocation(testInstance *testing.T) {
	registryInstance := registry.NewRegistry(zap.NewNop())
	registryInstance.Register(&stubModule{name: alphaModuleNameConstant, commandNames: []string{"compile"}})

	_, firstBuildError := registryInstance.Build()
	require.NoError(testInstance, firstBuildError)

	rootNamespace, secondBuildError := registryInstance.Build()
	require.Nil(testInstance, rootNamespace)
	require.ErrorIs(testInstance, secondBuildError, registry.ErrRegistryAlreadyBuilt)
}

func TestRegistryBuildRejectsNilModule(testInstance *testing.T) {
	registryInstance := registry.NewRegistry(zap.NewNop())
	registryInstance.Register(nil)

	rootNamespace, buildError := registryInstance.Build()
	require.Nil(testInstance, rootNamespace)
	require.ErrorIs(testInstance, buildError, registry.ErrModuleMissing)
}

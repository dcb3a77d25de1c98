package toolchainmod

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/wasmforge/forgectl/internal/execshell"
)

const (
	moduleNameConstant                    = "toolchain"
	installCommandUseConstant             = "install"
	installCommandShortDescription        = "Download and unpack the cross-compilation sysroot"
	verifyCommandUseConstant              = "verify"
	verifyCommandShortDescriptionConstant = "Check the installed toolchain against the minimum version"
	executorNotConfiguredMessageConstant  = "toolchain module executor not configured"
	versionFileNameConstant               = "VERSION"
	versionFileReadErrorTemplateConstant  = "unable to read toolchain version file %s: %w"
	invalidVersionErrorTemplateConstant   = "installed toolchain version %q is not valid semver"
	outdatedVersionErrorTemplateConstant  = "installed toolchain %s is older than required %s"
	archiveCreationErrorTemplateConstant  = "unable to prepare archive destination: %w"
	semverPrefixConstant                  = "v"
	silentFlagConstant                    = "-sSL"
	outputFlagConstant                    = "-o"
	extractFlagConstant                   = "-xf"
	directoryFlagConstant                 = "-C"
	archiveFileNameConstant               = "toolchain.tar.gz"
	installingToolchainMessageConstant    = "installing toolchain sysroot"
	verifyingToolchainMessageConstant     = "verifying toolchain version"
	downloadURLLogFieldConstant           = "download_url"
	installRootLogFieldConstant           = "install_root"
	installedVersionLogFieldConstant      = "installed_version"
	minimumVersionLogFieldConstant        = "minimum_version"
	verifySuccessOutputTemplateConstant   = "toolchain %s satisfies minimum %s\n"
	defaultDownloadURLConstant            = "https://releases.wasmforge.dev/toolchain/latest/toolchain.tar.gz"
	defaultInstallRootConstant            = ".forge/toolchain"
	defaultMinimumVersionConstant         = "0.6.0"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current toolchain configuration.
type ConfigurationProvider func() Configuration

// Configuration aggregates settings for toolchain commands.
type Configuration struct {
	DownloadURL    string `mapstructure:"download_url"`
	InstallRoot    string `mapstructure:"install_root"`
	MinimumVersion string `mapstructure:"minimum_version"`
}

// DefaultConfiguration supplies baseline values for toolchain configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		DownloadURL:    defaultDownloadURLConstant,
		InstallRoot:    defaultInstallRootConstant,
		MinimumVersion: defaultMinimumVersionConstant,
	}
}

// Sanitize trims configured values and restores defaults for empty fields.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.DownloadURL = defaultWhenBlank(configuration.DownloadURL, defaultDownloadURLConstant)
	sanitized.InstallRoot = defaultWhenBlank(configuration.InstallRoot, defaultInstallRootConstant)
	sanitized.MinimumVersion = defaultWhenBlank(configuration.MinimumVersion, defaultMinimumVersionConstant)
	return sanitized
}

func defaultWhenBlank(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}

// ArchiveToolExecutor is the subset of execshell.ShellExecutor used for sysroot installs.
type ArchiveToolExecutor interface {
	ExecuteCurl(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteTar(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the module was assembled without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// Module exposes the toolchain commands for registry assembly.
type Module struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              ArchiveToolExecutor
}

// Name identifies the module inside the registry.
func (module *Module) Name() string {
	return moduleNameConstant
}

// Commands builds the install and verify commands.
func (module *Module) Commands() ([]*cobra.Command, error) {
	if module.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	installCommand := &cobra.Command{
		Use:   installCommandUseConstant,
		Short: installCommandShortDescription,
		Args:  cobra.NoArgs,
		RunE:  module.runInstall,
	}

	verifyCommand := &cobra.Command{
		Use:   verifyCommandUseConstant,
		Short: verifyCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  module.runVerify,
	}

	return []*cobra.Command{installCommand, verifyCommand}, nil
}

func (module *Module) runInstall(command *cobra.Command, _ []string) error {
	configuration := module.resolveConfiguration()

	module.resolveLogger().Info(installingToolchainMessageConstant,
		zap.String(downloadURLLogFieldConstant, configuration.DownloadURL),
		zap.String(installRootLogFieldConstant, configuration.InstallRoot),
	)

	if creationError := os.MkdirAll(configuration.InstallRoot, 0o755); creationError != nil {
		return fmt.Errorf(archiveCreationErrorTemplateConstant, creationError)
	}

	archivePath := filepath.Join(configuration.InstallRoot, archiveFileNameConstant)
	downloadDetails := execshell.CommandDetails{
		Arguments: []string{silentFlagConstant, outputFlagConstant, archivePath, configuration.DownloadURL},
	}
	if _, downloadError := module.Executor.ExecuteCurl(command.Context(), downloadDetails); downloadError != nil {
		return downloadError
	}

	extractDetails := execshell.CommandDetails{
		Arguments: []string{extractFlagConstant, archivePath, directoryFlagConstant, configuration.InstallRoot},
	}
	if _, extractError := module.Executor.ExecuteTar(command.Context(), extractDetails); extractError != nil {
		return extractError
	}

	return os.Remove(archivePath)
}

func (module *Module) runVerify(command *cobra.Command, _ []string) error {
	configuration := module.resolveConfiguration()

	versionFilePath := filepath.Join(configuration.InstallRoot, versionFileNameConstant)
	versionBytes, readError := os.ReadFile(versionFilePath)
	if readError != nil {
		return fmt.Errorf(versionFileReadErrorTemplateConstant, versionFilePath, readError)
	}

	installedVersion := strings.TrimSpace(string(versionBytes))
	module.resolveLogger().Info(verifyingToolchainMessageConstant,
		zap.String(installedVersionLogFieldConstant, installedVersion),
		zap.String(minimumVersionLogFieldConstant, configuration.MinimumVersion),
	)

	if verifyError := VerifyVersion(installedVersion, configuration.MinimumVersion); verifyError != nil {
		return verifyError
	}

	fmt.Fprintf(command.OutOrStdout(), verifySuccessOutputTemplateConstant, installedVersion, configuration.MinimumVersion)
	return nil
}

// VerifyVersion compares an installed toolchain version against the minimum.
func VerifyVersion(installedVersion string, minimumVersion string) error {
	canonicalInstalled := canonicalSemver(installedVersion)
	if !semver.IsValid(canonicalInstalled) {
		return fmt.Errorf(invalidVersionErrorTemplateConstant, installedVersion)
	}

	canonicalMinimum := canonicalSemver(minimumVersion)
	if !semver.IsValid(canonicalMinimum) {
		return fmt.Errorf(invalidVersionErrorTemplateConstant, minimumVersion)
	}

	if semver.Compare(canonicalInstalled, canonicalMinimum) < 0 {
		return fmt.Errorf(outdatedVersionErrorTemplateConstant, installedVersion, minimumVersion)
	}
	return nil
}

func canonicalSemver(version string) string {
	trimmedVersion := strings.TrimSpace(version)
	if strings.HasPrefix(trimmedVersion, semverPrefixConstant) {
		return trimmedVersion
	}
	return semverPrefixConstant + trimmedVersion
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

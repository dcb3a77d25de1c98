// Package version resolves the application version from runtime build metadata.
package version

import (
	"context"
	"os"
	"runtime/debug"
	"strings"
)

const (
	unknownVersionFallbackConstant     = "unknown"
	buildInfoDevelVersionValue         = "devel"
	versionOverrideEnvironmentConstant = "FORGECTL_VERSION"
)

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

// Detector resolves application version strings.
type Detector struct {
	buildInfoProvider BuildInfoProvider
	environmentLookup func(string) string
}

// Dependencies describes the collaborators required for version detection.
type Dependencies struct {
	BuildInfoProvider BuildInfoProvider
	EnvironmentLookup func(string) string
}

// NewDetector constructs a Detector with the supplied dependencies or sensible defaults.
func NewDetector(dependencies Dependencies) *Detector {
	provider := dependencies.BuildInfoProvider
	if provider == nil {
		provider = runtimeBuildInfoProvider{}
	}

	environmentLookup := dependencies.EnvironmentLookup
	if environmentLookup == nil {
		environmentLookup = os.Getenv
	}

	return &Detector{
		buildInfoProvider: provider,
		environmentLookup: environmentLookup,
	}
}

// Detect resolves the application version using the supplied dependencies.
func Detect(executionContext context.Context, dependencies Dependencies) string {
	return NewDetector(dependencies).Version(executionContext)
}

// Version returns the detected application version string.
func (detector *Detector) Version(_ context.Context) string {
	if detector == nil {
		return unknownVersionFallbackConstant
	}

	if overrideVersion := strings.TrimSpace(detector.environmentLookup(versionOverrideEnvironmentConstant)); len(overrideVersion) > 0 {
		return overrideVersion
	}

	if buildVersion := detector.versionFromBuildInfo(); len(buildVersion) > 0 {
		return buildVersion
	}

	return unknownVersionFallbackConstant
}

func (detector *Detector) versionFromBuildInfo() string {
	if detector.buildInfoProvider == nil {
		return ""
	}

	buildInfo, available := detector.buildInfoProvider.Read()
	if !available || buildInfo == nil {
		return ""
	}

	mainVersion := strings.TrimSpace(buildInfo.Main.Version)
	if len(mainVersion) == 0 {
		return ""
	}
	if strings.EqualFold(mainVersion, buildInfoDevelVersionValue) {
		return ""
	}
	if mainVersion == "(devel)" {
		return ""
	}

	return mainVersion
}

type runtimeBuildInfoProvider struct{}

func (runtimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}

package version_test

import (
	"context"
	"fmt"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/forgectl/internal/version"
)

type stubBuildInfoProvider struct {
	info      *debug.BuildInfo
	available bool
}

func (provider stubBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	if !provider.available {
		return nil, false
	}
	return provider.info, true
}

func emptyEnvironmentLookup(string) string {
	return ""
}

func TestVersionUsesBuildInfoWhenAvailable(t *testing.T) {
	provider := stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}, available: true}
	detector := version.NewDetector(version.Dependencies{BuildInfoProvider: provider, EnvironmentLookup: emptyEnvironmentLookup})

	versionString := detector.Version(context.Background())
	require.Equal(t, "v1.2.3", versionString)
}

func TestVersionPrefersEnvironmentOverride(t *testing.T) {
	provider := stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}, available: true}
	detector := version.NewDetector(version.Dependencies{
		BuildInfoProvider: provider,
		EnvironmentLookup: func(name string) string {
			require.Equal(t, "FORGECTL_VERSION", name)
			return "v9.9.9"
		},
	})

	versionString := detector.Version(context.Background())
	require.Equal(t, "v9.9.9", versionString)
}

func TestVersionIgnoresDevelBuildVersions(t *testing.T) {
	testCases := []struct {
		name         string
		buildVersion string
	}{
		{name: "devel_keyword", buildVersion: "devel"},
		{name: "parenthesized_devel", buildVersion: "(devel)"},
		{name: "blank_version", buildVersion: "   "},
	}

	for testCaseIndex, testCase := range testCases {
		t.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(t *testing.T) {
			provider := stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: testCase.buildVersion}}, available: true}
			detector := version.NewDetector(version.Dependencies{BuildInfoProvider: provider, EnvironmentLookup: emptyEnvironmentLookup})

			versionString := detector.Version(context.Background())
			require.Equal(t, "unknown", versionString)
		})
	}
}

func TestDetectReturnsUnknownWhenBuildInfoUnavailable(t *testing.T) {
	versionString := version.Detect(context.Background(), version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{},
		EnvironmentLookup: emptyEnvironmentLookup,
	})
	require.Equal(t, "unknown", versionString)
}

package uploadmod

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	manifestReadErrorTemplateConstant   = "unable to read manifest %s: %w"
	manifestDecodeErrorTemplateConstant = "unable to decode manifest %s: %w"
	manifestEmptyErrorTemplateConstant  = "manifest %s declares no functions"
	manifestEntryErrorTemplateConstant  = "manifest %s entry %d: %s"
	missingUserMessageConstant          = "user not provided"
	missingFunctionMessageConstant      = "function not provided"
	missingWasmPathMessageConstant      = "wasm_path not provided"
)

// ManifestEntry describes one function upload inside a batch manifest.
type ManifestEntry struct {
	User     string `yaml:"user"`
	Function string `yaml:"function"`
	WasmPath string `yaml:"wasm_path"`
}

// Manifest lists the functions uploaded by upload-batch.
type Manifest struct {
	Functions []ManifestEntry `yaml:"functions"`
}

// LoadManifest reads and validates a batch upload manifest.
func LoadManifest(manifestPath string) (Manifest, error) {
	manifestBytes, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return Manifest{}, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, readError)
	}
	return ParseManifest(manifestPath, manifestBytes)
}

// ParseManifest decodes and validates manifest contents.
func ParseManifest(manifestPath string, manifestBytes []byte) (Manifest, error) {
	var manifest Manifest
	if decodeError := yaml.Unmarshal(manifestBytes, &manifest); decodeError != nil {
		return Manifest{}, fmt.Errorf(manifestDecodeErrorTemplateConstant, manifestPath, decodeError)
	}

	if len(manifest.Functions) == 0 {
		return Manifest{}, fmt.Errorf(manifestEmptyErrorTemplateConstant, manifestPath)
	}

	for entryIndex, manifestEntry := range manifest.Functions {
		if len(strings.TrimSpace(manifestEntry.User)) == 0 {
			return Manifest{}, fmt.Errorf(manifestEntryErrorTemplateConstant, manifestPath, entryIndex, missingUserMessageConstant)
		}
		if len(strings.TrimSpace(manifestEntry.Function)) == 0 {
			return Manifest{}, fmt.Errorf(manifestEntryErrorTemplateConstant, manifestPath, entryIndex, missingFunctionMessageConstant)
		}
		if len(strings.TrimSpace(manifestEntry.WasmPath)) == 0 {
			return Manifest{}, fmt.Errorf(manifestEntryErrorTemplateConstant, manifestPath, entryIndex, missingWasmPathMessageConstant)
		}
	}

	return manifest, nil
}

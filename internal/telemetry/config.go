package telemetry

import (
	"os"
)

var (
	calibrationModeEnabled bool
	observeEnabled         bool
	persistPromptsEnabled  bool
)

func init() {
	// Read once at process start. Mid-run environment changes have no effect.
	calibrationModeEnabled = os.Getenv("ASTRA_CALIBRATION_MODE") == "1"

	// Observe: default to 1 when calibration=1 and ASTRA_OBSERVE_JSON is unset; honour explicit 0/1.
	if v, ok := os.LookupEnv("ASTRA_OBSERVE_JSON"); ok {
		observeEnabled = (v == "1")
	} else {
		observeEnabled = calibrationModeEnabled
	}

	// Persist prompts: default to 1 when calibration=1 and ASTRA_PERSIST_PROMPTS is unset; honour explicit 0/1.
	if v, ok := os.LookupEnv("ASTRA_PERSIST_PROMPTS"); ok {
		persistPromptsEnabled = (v == "1")
	} else {
		persistPromptsEnabled = calibrationModeEnabled
	}
}

// CalibrationModeEnabled reports whether calibration mode was enabled at startup.
func CalibrationModeEnabled() bool { return calibrationModeEnabled }

// ObserveEnabled reports whether JSONL emission was enabled at startup, considering calibration defaults.
func ObserveEnabled() bool {
	// Tests may enable mid-run via env override.
	if os.Getenv("ASTRA_OBSERVE_JSON") == "1" {
		return true
	}
	return observeEnabled
}

// PersistPromptsEnabled reports whether assembled prompts are written to the artifacts dir.
func PersistPromptsEnabled() bool {
	if os.Getenv("ASTRA_PERSIST_PROMPTS") == "1" {
		return true
	}
	return persistPromptsEnabled
}

// ArtifactsDir is where events and persisted prompts are written.
// Defaults to .astra in the working directory.
func ArtifactsDir() string {
	if d := os.Getenv("ASTRA_ARTIFACTS_DIR"); d != "" {
		return d
	}
	return ".astra"
}

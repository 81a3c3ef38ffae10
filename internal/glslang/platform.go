// Package glslang locates and runs the external glslangValidator binary.
package glslang

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// EnvValidator overrides validator discovery with an explicit path.
const EnvValidator = "GLSLCHECK_VALIDATOR"

// FallbackName is looked up on PATH when no prebuilt binary is found.
const FallbackName = "glslangValidator"

// UnsupportedPlatformError means no prebuilt validator exists for the OS.
type UnsupportedPlatformError struct {
	GOOS string
}

func (e *UnsupportedPlatformError) Error() string {
	return "Platform not supported: " + e.GOOS
}

// ExecutableName maps an OS to the prebuilt validator file name.
func ExecutableName(goos string) (string, error) {
	switch goos {
	case "darwin":
		return "glslangValidator.darwin", nil
	case "windows":
		return "glslangValidator.exe", nil
	case "linux":
		return "glslangValidator.linux", nil
	}
	return "", &UnsupportedPlatformError{GOOS: goos}
}

// Resolve finds the validator for the running OS: an explicit path first,
// then the prebuilt binary in toolsDir, then glslangValidator on PATH.
func Resolve(explicit, toolsDir string) (string, error) {
	return resolve(runtime.GOOS, explicit, toolsDir, exec.LookPath)
}

func resolve(goos, explicit, toolsDir string, lookPath func(string) (string, error)) (string, error) {
	name, err := ExecutableName(goos)
	if err != nil {
		return "", err
	}

	if explicit == "" {
		explicit = os.Getenv(EnvValidator)
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("validator %q: %w", explicit, err)
		}
		return explicit, nil
	}

	if toolsDir != "" {
		candidate := filepath.Join(toolsDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}

	path, err := lookPath(FallbackName)
	if err != nil {
		return "", fmt.Errorf("%s not found (looked in %q and PATH): %w", name, toolsDir, err)
	}
	return path, nil
}

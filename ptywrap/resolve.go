package ptywrap

import (
	"fmt"
	"os/exec"
	"runtime"
)

// toolExecutables maps a tool kind to the executable name(s) to search
// for, in order. On Windows, package managers commonly install CLI tools
// as .cmd shims; LookPath already honors PATHEXT, but some installers
// only place the .cmd variant without a bare extensionless shim, so both
// are tried explicitly.
var toolExecutables = map[string][]string{
	"claude": {"claude"},
	"gemini": {"gemini"},
}

// ResolveTool finds the executable for a tool kind, honoring Windows
// .cmd shims. Returns an error if the tool kind is unknown or no
// candidate is found on PATH.
func ResolveTool(toolKind string) (string, error) {
	candidates, ok := toolExecutables[toolKind]
	if !ok {
		return "", fmt.Errorf("ptywrap: unknown tool kind %q", toolKind)
	}

	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
		if runtime.GOOS == "windows" {
			if path, err := exec.LookPath(name + ".cmd"); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("ptywrap: %q not found on PATH", candidates[0])
}

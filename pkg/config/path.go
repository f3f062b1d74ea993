package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveConfigFile joins name onto baseDir and rejects any name that would
// escape it.
func ResolveConfigFile(baseDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid config name %q: absolute paths not allowed", name)
	}
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid config name %q: path traversal not allowed", name)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for config directory: %w", err)
	}
	full := filepath.Join(absBase, filepath.Clean(name))

	// Trailing separator so /etc/bcast does not match /etc/bcastx.
	prefix := absBase
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(full, prefix) {
		return "", fmt.Errorf("config %q resolves outside %s", name, absBase)
	}
	return full, nil
}

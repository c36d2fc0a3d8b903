// Package filex has file helpers for data that only the current user may
// read, such as the CLI's stored token.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// WritePrivateFile writes data to path with mode 0600, creating missing
// parent directories with mode 0700. An existing file is tightened to 0600.
func WritePrivateFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}

	return nil
}

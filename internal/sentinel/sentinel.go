// Package sentinel manages the durable initialization markers stored on each
// service's persistent volume. A marker's mere existence is the completion
// signal; its content is irrelevant.
package sentinel

import (
	"fmt"
	"os"
	"path/filepath"
)

// Marker is the completion flag for one service's one-time initialization.
type Marker struct {
	// Path is the fixed location of the marker file on the service volume.
	Path string
}

// New constructs a Marker at the conventional location under the service's
// data directory.
func New(dataDir, service string) Marker {
	return Marker{Path: filepath.Join(dataDir, "."+service+"-initialized")}
}

// Exists reports whether the marker is present. Any stat error other than
// absence is returned so a broken volume mount is not mistaken for a fresh
// one.
func (m Marker) Exists() (bool, error) {
	_, err := os.Stat(m.Path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat marker %q: %w", m.Path, err)
}

// Write creates the zero-byte marker, creating parent directories as needed.
// The marker is only ever written after a successful initialization; it is
// never updated and never deleted by this tool.
func (m Marker) Write() error {
	if err := os.MkdirAll(filepath.Dir(m.Path), 0o755); err != nil {
		return fmt.Errorf("create marker dir: %w", err)
	}
	f, err := os.OpenFile(m.Path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("write marker %q: %w", m.Path, err)
	}
	return f.Close()
}

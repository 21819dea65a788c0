package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local stores manifests on the local filesystem.
type Local struct{}

// Fetch reads a manifest file.
func (Local) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("can't read manifest %s: %w", ref, err)
	}

	return data, nil
}

// Write writes a manifest file atomically: the data lands in a temporary file
// which is renamed over the target, so a failed stage never leaves a partial
// manifest behind.
func (Local) Write(_ context.Context, ref string, data []byte) error {
	dir := filepath.Dir(ref)

	tmpFile, err := os.CreateTemp(dir, ".manifest-*")
	if err != nil {
		return fmt.Errorf("can't create temporary manifest in %s: %w", dir, err)
	}

	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("can't write manifest %s: %w", ref, err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("can't close manifest %s: %w", ref, err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("can't set manifest permissions %s: %w", ref, err)
	}

	if err := os.Rename(tmpPath, ref); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("can't move manifest into place %s: %w", ref, err)
	}

	return nil
}

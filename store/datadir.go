package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var mkdirAll = os.MkdirAll

// ResolveDataDir returns the first candidate directory that exists (or can
// be created) and accepts a file write. Empty candidates are skipped.
func ResolveDataDir(candidates ...string) (string, error) {
	var errs []error
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if err := checkWritable(dir); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", dir, err))
			continue
		}
		return dir, nil
	}
	if len(errs) == 0 {
		return "", errors.New("no data directory configured")
	}
	return "", fmt.Errorf("no writable data directory: %w", errors.Join(errs...))
}

func checkWritable(dir string) error {
	if err := mkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".write-probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	closeErr := probe.Close()
	os.Remove(name)
	return closeErr
}

// SnapshotPath joins the resolved directory and the snapshot file name.
func SnapshotPath(dir, file string) string {
	return filepath.Join(dir, file)
}

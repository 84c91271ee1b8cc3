package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"maker-profiles/models"
)

var (
	createTemp = os.CreateTemp
	rename     = os.Rename
)

// ReadSnapshot parses the snapshot at path. The document must be a JSON
// array of profiles.
func ReadSnapshot(path string) ([]models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var profiles []models.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if profiles == nil {
		return nil, errors.New("parsing snapshot: top level is not an array")
	}

	for i := range profiles {
		if profiles[i].Tags == nil {
			profiles[i].Tags = []string{}
		}
		if profiles[i].TopItems == nil {
			profiles[i].TopItems = []models.TopItem{}
		}
	}
	return profiles, nil
}

// WriteSnapshot serializes profiles to a temporary file next to path and
// renames it into place, so readers see either the old or the new file.
func WriteSnapshot(path string, profiles []models.Profile) error {
	sorted := append([]models.Profile{}, profiles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Handle < sorted[j].Handle })

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmpFile, err := createTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp snapshot: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	success = true
	return nil
}

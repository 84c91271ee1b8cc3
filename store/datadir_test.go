package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDataDirPrefersFirstWritable(t *testing.T) {
	preferred := filepath.Join(t.TempDir(), "preferred")
	fallback := t.TempDir()

	dir, err := ResolveDataDir(preferred, fallback)
	assert.NoError(t, err)
	assert.Equal(t, preferred, dir)

	info, err := os.Stat(preferred)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(preferred)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolveDataDirFallsBack(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "blocked")
	fallback := t.TempDir()

	originalMkdirAll := mkdirAll
	mkdirAll = func(path string, perm os.FileMode) error {
		if path == blocked {
			return errors.New("permission denied")
		}
		return originalMkdirAll(path, perm)
	}
	defer func() { mkdirAll = originalMkdirAll }()

	dir, err := ResolveDataDir("", blocked, fallback)
	assert.NoError(t, err)
	assert.Equal(t, fallback, dir)
}

func TestResolveDataDirNoCandidates(t *testing.T) {
	_, err := ResolveDataDir("", "")
	assert.Error(t, err)

	originalMkdirAll := mkdirAll
	mkdirAll = func(string, os.FileMode) error { return errors.New("nope") }
	defer func() { mkdirAll = originalMkdirAll }()

	_, err = ResolveDataDir("a", "b")
	assert.ErrorContains(t, err, "no writable data directory")
}

func TestSnapshotPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "profiles.json"), SnapshotPath("data", "profiles.json"))
}

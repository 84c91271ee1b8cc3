package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"maker-profiles/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPersister(t *testing.T) (*Persister, *MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	s := NewMemoryStore()
	path := filepath.Join(t.TempDir(), "profiles.json")
	return NewPersister(s, path, 150*time.Millisecond, clock.AfterFunc), s, clock
}

func TestPersisterLoadMissingFile(t *testing.T) {
	p, s, _ := newTestPersister(t)
	assert.False(t, p.Load())
	assert.Equal(t, 0, s.Len())
}

func TestPersisterLoadCorruptFileStartsEmpty(t *testing.T) {
	p, s, _ := newTestPersister(t)
	require.NoError(t, os.WriteFile(p.Path(), []byte("{not json"), 0o644))
	_, err := s.Create(sampleProfile("stale"), pickExact("stale"))
	require.NoError(t, err)

	assert.False(t, p.Load())
	assert.Equal(t, 0, s.Len())
}

func TestPersisterScheduleSaveWritesLatestState(t *testing.T) {
	p, s, clock := newTestPersister(t)

	_, err := s.Create(sampleProfile("mario"), pickExact("mario"))
	require.NoError(t, err)
	p.ScheduleSave()
	_, err = s.Create(sampleProfile("luigi"), pickExact("luigi"))
	require.NoError(t, err)
	p.ScheduleSave()

	_, err = os.Stat(p.Path())
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 1, clock.armed())

	clock.Fire()
	require.NoError(t, p.LastError())

	profiles, err := ReadSnapshot(p.Path())
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}

func TestPersisterFlushAndReload(t *testing.T) {
	p, s, _ := newTestPersister(t)
	_, err := s.Create(sampleProfile("peach"), pickExact("peach"))
	require.NoError(t, err)
	p.ScheduleSave()
	require.NoError(t, p.Close())

	fresh := NewMemoryStore()
	reloader := NewPersister(fresh, p.Path(), time.Second, (&fakeClock{}).AfterFunc)
	assert.True(t, reloader.Load())
	got, ok := fresh.Get("peach")
	assert.True(t, ok)
	assert.Equal(t, sampleProfile("peach"), got)
}

func TestPersisterFailedFlushKeepsMemoryState(t *testing.T) {
	clock := &fakeClock{}
	s := NewMemoryStore()
	path := filepath.Join(t.TempDir(), "missing-dir", "profiles.json")
	p := NewPersister(s, path, time.Millisecond, clock.AfterFunc)

	_, err := s.Create(sampleProfile("daisy"), pickExact("daisy"))
	require.NoError(t, err)
	p.ScheduleSave()
	clock.Fire()

	assert.Error(t, p.LastError())
	_, ok := s.Get("daisy")
	assert.True(t, ok)

	_, err = s.Update("daisy", func(profile *models.Profile) { profile.Bio = "still works" })
	assert.NoError(t, err)
}

func TestPersisterCloseWithoutChangesLeavesFileAlone(t *testing.T) {
	p, _, _ := newTestPersister(t)
	require.NoError(t, os.WriteFile(p.Path(), []byte("{not json"), 0o644))
	assert.False(t, p.Load())

	require.NoError(t, p.Close())
	data, err := os.ReadFile(p.Path())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestPersisterFlushWritesImmediately(t *testing.T) {
	p, s, clock := newTestPersister(t)
	_, err := s.Create(sampleProfile("toad"), pickExact("toad"))
	require.NoError(t, err)
	p.ScheduleSave()

	require.NoError(t, p.Flush())
	profiles, err := ReadSnapshot(p.Path())
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	clock.Fire()
	assert.NoError(t, p.LastError())
}

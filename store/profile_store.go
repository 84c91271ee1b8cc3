package store

import (
	"errors"
	"sync"

	"maker-profiles/models"
)

var (
	ErrNotFound    = errors.New("profile not found")
	ErrHandleTaken = errors.New("handle already taken")
)

// ProfileStore is the authoritative in-memory collection keyed by handle.
// Values are copied in and out; callers never share slices with the store.
type ProfileStore interface {
	Get(handle string) (models.Profile, bool)
	List() []models.Profile
	Create(profile models.Profile, pickHandle func(taken func(string) bool) string) (models.Profile, error)
	Update(handle string, mutate func(*models.Profile)) (models.Profile, error)
	Replace(profiles []models.Profile) int
	Len() int
}

type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]models.Profile)}
}

func (s *MemoryStore) Get(handle string) (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[handle]
	if !ok {
		return models.Profile{}, false
	}
	return profile.Clone(), true
}

// List returns every profile in no particular order.
func (s *MemoryStore) List() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]models.Profile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		profiles = append(profiles, profile.Clone())
	}
	return profiles
}

// Create picks the handle and inserts under one lock, so two concurrent
// creations can never end up with the same handle.
func (s *MemoryStore) Create(profile models.Profile, pickHandle func(taken func(string) bool) string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := pickHandle(func(candidate string) bool {
		_, exists := s.profiles[candidate]
		return exists
	})
	if handle == "" {
		return models.Profile{}, errors.New("empty handle")
	}
	if _, exists := s.profiles[handle]; exists {
		return models.Profile{}, ErrHandleTaken
	}

	profile.Handle = handle
	s.profiles[handle] = profile.Clone()
	return profile.Clone(), nil
}

// Update applies mutate to a copy of the stored profile and stores the
// result. Identity fields (id, handle, secret, createdAt) cannot change.
func (s *MemoryStore) Update(handle string, mutate func(*models.Profile)) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[handle]
	if !ok {
		return models.Profile{}, ErrNotFound
	}

	next := current.Clone()
	mutate(&next)
	next.ID = current.ID
	next.Handle = current.Handle
	next.EditSecret = current.EditSecret
	next.CreatedAt = current.CreatedAt

	s.profiles[handle] = next.Clone()
	return next, nil
}

// Replace swaps the whole collection. Entries without a handle are skipped;
// on duplicate handles the later entry wins. It returns the resulting size.
func (s *MemoryStore) Replace(profiles []models.Profile) int {
	next := make(map[string]models.Profile, len(profiles))
	for _, profile := range profiles {
		if profile.Handle == "" {
			continue
		}
		next[profile.Handle] = profile.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = next
	return len(next)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

package directory

import (
	"context"
	"sync"

	"assina/internal/eligibility"
	"assina/pkg/platform/sentinel"
)

// MemoryStore keeps profiles, documents, and rosters in maps. It backs
// unit tests and local development; the zero-dependency counterpart of the
// postgres store.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	docs     map[string]Document
	rosters  map[string][]eligibility.SignerEntry
}

// NewMemoryStore creates an empty in-memory directory store. It satisfies
// IdentityStore, DocumentStore, and RosterStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]Profile),
		docs:     make(map[string]Document),
		rosters:  make(map[string][]eligibility.SignerEntry),
	}
}

func (m *MemoryStore) FindProfile(_ context.Context, userID string) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return Profile{}, sentinel.ErrNotFound
	}
	return profile, nil
}

func (m *MemoryStore) SaveProfile(_ context.Context, profile Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *MemoryStore) Save(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return Document{}, sentinel.ErrNotFound
	}
	return doc, nil
}

func (m *MemoryStore) Roster(_ context.Context, documentID string) ([]eligibility.SignerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.rosters[documentID]
	out := make([]eligibility.SignerEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (m *MemoryStore) AddSigner(_ context.Context, documentID string, entry eligibility.SignerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosters[documentID] = append(m.rosters[documentID], entry)
	return nil
}

func (m *MemoryStore) MarkSigned(_ context.Context, documentID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.rosters[documentID]
	for i := range entries {
		if entries[i].UserID == userID {
			entries[i].Signed = true
			return nil
		}
	}
	return sentinel.ErrNotFound
}

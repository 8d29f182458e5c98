// Package draft persists unsubmitted work under deterministic keys.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store is a key/value store for drafts. Get returns nil, nil when the key is
// absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// ResponseKey scopes a response draft to an assessment and a candidate.
func ResponseKey(assessmentID, candidateID string) string {
	return fmt.Sprintf("assessment_responses_draft_%s_%s", assessmentID, candidateID)
}

// SchemaKey scopes an in-progress assessment edit to a job.
func SchemaKey(jobID string) string {
	return "assessments_draft_" + jobID
}

// Load decodes the JSON draft stored under key into v. It reports false when
// no draft exists.
func Load(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read draft %s: %w", key, err)
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode draft %s: %w", key, err)
	}
	return true, nil
}

// Save encodes v as JSON and stores it under key.
func Save(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write draft %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-process Store. It counts writes and can be told to
// fail, which tests use to observe autosave behavior.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int

	// FailGet, FailSet and FailRemove are returned by the matching method
	// when non-nil.
	FailGet    error
	FailSet    error
	FailRemove error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet != nil {
		return nil, m.FailGet
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet != nil {
		return m.FailSet
	}
	m.data[key] = append([]byte(nil), value...)
	m.writes++
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRemove != nil {
		return m.FailRemove
	}
	delete(m.data, key)
	return nil
}

// Writes returns the number of successful Set calls.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Has reports whether key holds a draft.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

package cache

import (
	"context"
	"sync"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/ports"
)

// MemoryDocumentKeyStore is an in-process DocumentKeyStore for tests and
// single-instance local runs.
type MemoryDocumentKeyStore struct {
	mu       sync.Mutex
	keys     map[string]string
	sessions map[string]ports.SessionRecord
}

func NewMemoryDocumentKeyStore() *MemoryDocumentKeyStore {
	return &MemoryDocumentKeyStore{
		keys:     make(map[string]string),
		sessions: make(map[string]ports.SessionRecord),
	}
}

func (s *MemoryDocumentKeyStore) GetKey(_ context.Context, attachmentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[attachmentID], nil
}

func (s *MemoryDocumentKeyStore) PutKey(_ context.Context, attachmentID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[attachmentID] = key
	return nil
}

func (s *MemoryDocumentKeyStore) DeleteKey(_ context.Context, attachmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, attachmentID)
	return nil
}

func (s *MemoryDocumentKeyStore) PutSession(_ context.Context, key string, rec ports.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = rec
	return nil
}

func (s *MemoryDocumentKeyStore) GetSession(_ context.Context, key string) (*ports.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[key]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (s *MemoryDocumentKeyStore) DeleteSession(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

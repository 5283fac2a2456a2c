package objectstore

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-wiki/internal/store"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

var errUploadFailed = errors.New("objectstore: upload failed")

// MemoryStore keeps blobs in a map. Used by tests and as the default
// when no object store is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailUploads makes every Upload return an error. Tests use it to
	// exercise the non-transactional write window.
	FailUploads bool
}

var _ interfaces.ObjectStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUploads {
		return store.WrapBackend(errUploadFailed, "upload object "+key)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	m.blobs[key] = copied
	return nil
}

func (m *MemoryStore) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, &store.NotFoundError{Resource: "object", Key: key}
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)
	return nil
}

// Len reports how many blobs are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Has reports whether a blob exists for key.
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[key]
	return ok
}

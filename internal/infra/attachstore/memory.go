package attachstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/prepnest/prepnest/internal/domain/qna"
)

// MemoryStorage keeps attachments in memory for tests/dev.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]storedBlob
}

type storedBlob struct {
	data     []byte
	mimeType string
}

// NewMemoryStorage constructs the storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]storedBlob)}
}

func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (qna.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob := storedBlob{data: append([]byte(nil), data...), mimeType: mimeType}
	s.objects[key] = blob
	return qna.StoredObject{Key: key, Size: int64(len(data)), MimeType: mimeType}, nil
}

func (s *MemoryStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(blob.data)), nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

var _ qna.ObjectStorage = (*MemoryStorage)(nil)

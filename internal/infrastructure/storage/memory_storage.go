package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

const memoryURLPrefix = "memory://"

type storedObject struct {
	contentType string
	data        []byte
	public      bool
}

// MemoryStorage keeps uploads in process. Used by the memory backend and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]storedObject
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]storedObject)}
}

func (m *MemoryStorage) UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	name := ObjectName(folder, fileType, isPublic)

	m.mu.Lock()
	m.objects[name] = storedObject{contentType: fileType, data: buf.Bytes(), public: isPublic}
	m.mu.Unlock()

	return memoryURLPrefix + name, nil
}

func (m *MemoryStorage) DeleteFile(ctx context.Context, fileURL string) error {
	name, err := objectFromURL(fileURL, memoryURLPrefix)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.objects, name)
	m.mu.Unlock()
	return nil
}

// Exists reports whether an object is stored at fileURL.
func (m *MemoryStorage) Exists(fileURL string) bool {
	name, err := objectFromURL(fileURL, memoryURLPrefix)
	if err != nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[name]
	return ok
}

func (m *MemoryStorage) Close() error {
	return nil
}

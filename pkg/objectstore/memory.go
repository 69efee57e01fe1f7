package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// MemoryStore is an in-process Store, used for local development and tests.
type MemoryStore struct {
	bucket  string
	objects map[string]memoryObject
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		objects: make(map[string]memoryObject),
	}
}

// Bucket returns the bucket name.
func (s *MemoryStore) Bucket() string {
	return s.bucket
}

// Get returns a copy of the object stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return &Object{
		Key:         key,
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
	}, nil
}

// Put stores body under key.
func (s *MemoryStore) Put(_ context.Context, key, contentType string, body io.ReadSeeker, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read body for %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: data, contentType: contentType, lastModified: time.Now()}
	return nil
}

// List returns objects under prefix in key order.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var objects []ObjectInfo
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, ObjectInfo{Key: key, Size: int64(len(obj.data)), LastModified: obj.lastModified})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

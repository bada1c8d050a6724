package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/stephenstephen/review/internal/storage"
	apperrors "github.com/stephenstephen/review/pkg/errors"
)

type fileEntry struct {
	data []byte
	info storage.ObjectInfo
}

// Storage implements storage.Storage in memory. It backs tests and runs
// where uploads need not survive a restart.
type Storage struct {
	mu      sync.RWMutex
	files   map[string]*fileEntry
	baseURL string
	deleted []string
}

func New(baseURL string) *Storage {
	return &Storage{
		files:   make(map[string]*fileEntry),
		baseURL: baseURL,
	}
}

func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	if !storage.ValidKey(input.Key) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid file name %q", input.Key))
	}
	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[input.Key] = &fileEntry{
		data: data,
		info: storage.ObjectInfo{ContentType: input.ContentType, Size: int64(len(data)), ModTime: time.Now().UTC()},
	}
	return &storage.UploadResult{Key: input.Key, URL: s.URL(input.Key)}, nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[key]; !ok {
		return apperrors.NotFound("file", key)
	}
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadSeekCloser, *storage.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[key]
	if !ok {
		return nil, nil, apperrors.NotFound("file", key)
	}
	info := f.info
	return nopCloser{bytes.NewReader(f.data)}, &info, nil
}

func (s *Storage) URL(key string) string {
	return storage.PublicURL(s.baseURL, key)
}

// Has reports whether key is stored.
func (s *Storage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[key]
	return ok
}

// Deleted lists keys removed through Delete, oldest first.
func (s *Storage) Deleted() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.deleted...)
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

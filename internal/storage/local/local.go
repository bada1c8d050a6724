package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"github.com/stephenstephen/review/internal/storage"
	apperrors "github.com/stephenstephen/review/pkg/errors"
)

// Storage implements storage.Storage on a local directory.
type Storage struct {
	dir     string
	baseURL string
}

// New creates dir if needed.
func New(dir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Storage{dir: dir, baseURL: baseURL}, nil
}

func (s *Storage) path(key string) (string, error) {
	if !storage.ValidKey(key) {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid file name %q", key))
	}
	return filepath.Join(s.dir, key), nil
}

// Upload writes to a temp file in the same directory and renames it into
// place, so readers never see a partial file.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (_ *storage.UploadResult, err error) {
	dst, err := s.path(input.Key)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, input.Data); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return nil, fmt.Errorf("close upload: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, fmt.Errorf("chmod upload: %w", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	return &storage.UploadResult{Key: input.Key, URL: s.URL(input.Key)}, nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.NotFound("file", key)
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadSeekCloser, *storage.ObjectInfo, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, apperrors.NotFound("file", key)
		}
		return nil, nil, fmt.Errorf("open %s: %w", key, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", key, err)
	}
	return f, &storage.ObjectInfo{
		ContentType: mime.TypeByExtension(filepath.Ext(key)),
		Size:        st.Size(),
		ModTime:     st.ModTime(),
	}, nil
}

func (s *Storage) URL(key string) string {
	return storage.PublicURL(s.baseURL, key)
}

package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// URLPrefix is where locally stored uploads are served.
const URLPrefix = "/uploads/"

// LocalStorage writes uploads into a directory served under URLPrefix.
type LocalStorage struct {
	Dir string
}

// NewLocalStorage creates dir if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &LocalStorage{Dir: dir}, nil
}

// Put writes data to a temp file and renames it into place so a failed
// write never leaves a partial file under key.
func (s *LocalStorage) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing upload: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.Dir, key)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("moving upload into place: %w", err)
	}
	return URLPrefix + key, nil
}

// Remove deletes the file behind a path returned by Put. Missing files are
// not an error.
func (s *LocalStorage) Remove(_ context.Context, path string) error {
	key := strings.TrimPrefix(path, URLPrefix)
	if key == path || key == "" || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("not a local upload path: %q", path)
	}
	err := os.Remove(filepath.Join(s.Dir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

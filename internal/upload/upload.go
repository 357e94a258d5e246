// Package upload validates and stores item images.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/recyclehub/internal/imaging"
)

// DefaultMaxBytes is the size ceiling for a single upload.
const DefaultMaxBytes = 1 << 20

var (
	ErrUnsupportedType = errors.New("only jpg, jpeg, png and gif images are allowed")
	ErrTooLarge        = errors.New("image exceeds the upload size limit")
	ErrNotImage        = errors.New("file content is not a valid image")
)

// allowedExt maps accepted file extensions to the sniffed format they must match.
var allowedExt = map[string]string{
	".jpg":  "jpg",
	".jpeg": "jpg",
	".png":  "png",
	".gif":  "gif",
}

// File is an uploaded file as received from a client.
type File struct {
	Name string
	Body io.Reader
}

// Storage persists validated image bytes and returns a retrievable path.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, path string) error
}

// Uploader enforces the type and size contract before anything is stored.
type Uploader struct {
	storage  Storage
	maxBytes int64
}

// New returns an Uploader. A non-positive maxBytes uses DefaultMaxBytes.
func New(storage Storage, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Uploader{storage: storage, maxBytes: maxBytes}
}

// MaxBytes returns the configured size ceiling.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Save validates f and stores it, returning the path for Item.Image.
// Nothing is stored when validation fails.
func (u *Uploader) Save(ctx context.Context, f File) (string, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	want, ok := allowedExt[ext]
	if !ok {
		return "", ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(f.Body, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > u.maxBytes {
		return "", ErrTooLarge
	}

	result, err := imaging.Process(bytes.NewReader(data))
	if errors.Is(err, imaging.ErrUnsupported) {
		return "", ErrUnsupportedType
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if result.Ext != want {
		return "", fmt.Errorf("%w: extension %s does not match %s content", ErrNotImage, ext, result.Ext)
	}

	key := uuid.NewString() + "." + result.Ext
	path, err := u.storage.Put(ctx, key, result.MIME, result.Data)
	if err != nil {
		return "", fmt.Errorf("storing upload: %w", err)
	}
	return path, nil
}

// Remove deletes a previously stored path.
func (u *Uploader) Remove(ctx context.Context, path string) error {
	return u.storage.Remove(ctx, path)
}

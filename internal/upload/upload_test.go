package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{0, 255, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func testGIF(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding gif: %v", err)
	}
	return buf.Bytes()
}

func newTestUploader(t *testing.T, max int64) (*Uploader, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	return New(storage, max), dir
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSavePNG(t *testing.T) {
	u, dir := newTestUploader(t, 0)
	data := testPNG(t)

	path, err := u.Save(context.Background(), File{Name: "Bottle.PNG", Body: bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(path, URLPrefix) || !strings.HasSuffix(path, ".png") {
		t.Errorf("unexpected path %q", path)
	}

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(path, URLPrefix)))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if !bytes.Equal(stored, data) {
		t.Error("stored bytes differ from upload")
	}
}

func TestSaveJPEGExtensionForGIFContentRejected(t *testing.T) {
	u, dir := newTestUploader(t, 0)

	_, err := u.Save(context.Background(), File{Name: "photo.jpeg", Body: bytes.NewReader(testGIF(t))})
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("expected ErrNotImage, got %v", err)
	}
	if names := dirEntries(t, dir); len(names) != 0 {
		t.Errorf("expected nothing written, found %v", names)
	}
}

func TestSaveGIF(t *testing.T) {
	u, _ := newTestUploader(t, 0)
	path, err := u.Save(context.Background(), File{Name: "anim.gif", Body: bytes.NewReader(testGIF(t))})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(path, ".gif") {
		t.Errorf("expected .gif path, got %q", path)
	}
}

func TestSaveRejectsExtension(t *testing.T) {
	u, dir := newTestUploader(t, 0)

	for _, name := range []string{"doc.pdf", "image.webp", "noext", "x.png.exe"} {
		_, err := u.Save(context.Background(), File{Name: name, Body: bytes.NewReader(testPNG(t))})
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("%s: expected ErrUnsupportedType, got %v", name, err)
		}
	}
	if names := dirEntries(t, dir); len(names) != 0 {
		t.Errorf("expected nothing written, found %v", names)
	}
}

func TestSaveRejectsOversize(t *testing.T) {
	data := testPNG(t)
	u, dir := newTestUploader(t, int64(len(data)-1))

	_, err := u.Save(context.Background(), File{Name: "big.png", Body: bytes.NewReader(data)})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if names := dirEntries(t, dir); len(names) != 0 {
		t.Errorf("expected nothing written, found %v", names)
	}
}

func TestSaveRejectsNonImage(t *testing.T) {
	u, _ := newTestUploader(t, 0)
	_, err := u.Save(context.Background(), File{Name: "fake.png", Body: strings.NewReader("plain text")})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestLocalRemove(t *testing.T) {
	u, dir := newTestUploader(t, 0)
	ctx := context.Background()

	path, err := u.Save(ctx, File{Name: "a.png", Body: bytes.NewReader(testPNG(t))})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := u.Remove(ctx, path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if names := dirEntries(t, dir); len(names) != 0 {
		t.Errorf("expected empty dir, found %v", names)
	}

	if err := u.Remove(ctx, "/etc/passwd"); err == nil {
		t.Error("expected error for path outside upload prefix")
	}
	if err := u.Remove(ctx, URLPrefix+"../secret"); err == nil {
		t.Error("expected error for traversal path")
	}
}

package files

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage stores blobs as files under a single directory. It is the
// default backend.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the storage directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir}, nil
}

// sanitizeName strips any path components and keeps only safe filename
// characters. Empty results get a generated name.
func sanitizeName(name string) string {
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	clean := strings.Trim(b.String(), ".")
	if clean == "" {
		clean = "file_" + uuid.New().String()[:8]
	}
	return clean
}

func (l *LocalStorage) Save(_ context.Context, name, _ string, r io.Reader) (StoredFile, error) {
	storedName := sanitizeName(name)

	// On name collision, prefix with a short unique fragment instead of
	// overwriting the existing blob.
	path := filepath.Join(l.dir, storedName)
	if _, err := os.Stat(path); err == nil {
		storedName = uuid.New().String()[:8] + "_" + storedName
		path = filepath.Join(l.dir, storedName)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StoredFile{}, err
	}

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return StoredFile{}, err
	}
	if err := f.Close(); err != nil {
		return StoredFile{}, err
	}

	return StoredFile{Name: storedName, Size: size}, nil
}

func (l *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	clean := sanitizeName(name)

	f, err := os.Open(filepath.Join(l.dir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	contentType := mime.TypeByExtension(filepath.Ext(clean))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return f, contentType, nil
}

func (l *LocalStorage) Ping(_ context.Context) error {
	_, err := os.Stat(l.dir)
	return err
}

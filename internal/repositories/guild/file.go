package guild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileConfig holds configuration for the JSON file repository
type FileConfig struct {
	// Path of the JSON document
	Path string

	// Logger receives load and recovery events
	Logger zerolog.Logger
}

type fileBackend struct {
	path string
}

// NewFile creates a repository backed by a single JSON file
func NewFile(cfg *FileConfig) (*DocumentRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Path == "" {
		return nil, errors.New("file path cannot be empty")
	}

	return newDocumentRepository(&fileBackend{path: cfg.Path}, cfg.Logger), nil
}

func (b *fileBackend) name() string {
	return "file"
}

func (b *fileBackend) read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errDocumentNotFound
	}
	return data, err
}

// write replaces the file atomically: the document goes to a temp file in the
// same directory which is synced and then renamed over the target
func (b *fileBackend) write(_ context.Context, data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	return os.Rename(tmpName, b.path)
}

func (b *fileBackend) quarantine(_ context.Context, _ []byte) error {
	return os.Rename(b.path, b.path+".corrupt")
}

func (b *fileBackend) close() error {
	return nil
}

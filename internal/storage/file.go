package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const fileName = "session.json"

// document is the on-disk layout of the file backend.
type document struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// FileBackend keeps all keys in a single JSON document on the local filesystem.
type FileBackend struct {
	mu      sync.Mutex
	baseDir string
	closed  bool
}

// NewFileBackend creates the directory (0700) and an empty document if needed.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	b := &FileBackend{baseDir: baseDir}

	if err := b.ensureDocument(); err != nil {
		return nil, err
	}

	log.Debug().Str("baseDir", baseDir).Msg("file storage initialized")

	return b, nil
}

// Path returns the location of the JSON document.
func (b *FileBackend) Path() string {
	return filepath.Join(b.baseDir, fileName)
}

func (b *FileBackend) Get(ctx context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", false, ErrClosed
	}

	doc, err := b.load()
	if err != nil {
		return "", false, err
	}

	v, ok := doc.Values[key]
	return v, ok, nil
}

func (b *FileBackend) Set(ctx context.Context, values map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	doc, err := b.load()
	if err != nil {
		return err
	}

	for k, v := range values {
		doc.Values[k] = v
	}

	return b.save(doc)
}

func (b *FileBackend) Delete(ctx context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	doc, err := b.load()
	if err != nil {
		return err
	}

	for _, k := range keys {
		delete(doc.Values, k)
	}

	return b.save(doc)
}

func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// ensureDocument creates an empty document if it doesn't exist.
func (b *FileBackend) ensureDocument() error {
	if _, err := os.Stat(b.Path()); err == nil {
		return nil
	}

	return b.save(&document{
		Version: 1,
		Values:  make(map[string]string),
	})
}

func (b *FileBackend) load() (*document, error) {
	data, err := os.ReadFile(b.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Version: 1, Values: make(map[string]string)}, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}

	return &doc, nil
}

// save writes the document to a temp file, syncs it and renames it into place.
func (b *FileBackend) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session file: %w", err)
	}

	path := b.Path()
	tempPath := path + ".tmp"

	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write session file: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync session file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session file: %w", err)
	}

	return nil
}

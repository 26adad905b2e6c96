// File path: internal/assets/blobstore.go
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploaded binary payloads to a directory on disk. Metadata
// lives in the relational store; this only owns the bytes.
type Store struct {
	root string
}

// NewStore ensures the upload directory exists.
func NewStore(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		root = filepath.Join(os.TempDir(), "inkspace_uploads")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the upload directory path.
func (s *Store) Root() string {
	return s.root
}

// SavedFile describes a stored payload.
type SavedFile struct {
	Filename string
	Path     string
	Size     int64
	Hash     string
}

// Save writes the payload under a fresh generated filename that preserves
// the original extension, and returns its path and SHA-256 digest.
func (s *Store) Save(originalName string, data []byte) (*SavedFile, error) {
	ext := filepath.Ext(originalName)
	filename := uuid.NewString() + ext
	path := filepath.Join(s.root, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	digest := sha256.Sum256(data)
	return &SavedFile{
		Filename: filename,
		Path:     path,
		Size:     int64(len(data)),
		Hash:     hex.EncodeToString(digest[:]),
	}, nil
}

// Open returns a reader over a stored payload.
func (s *Store) Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	return f, nil
}

// Preview reads at most limit bytes of a stored payload, for prompt
// construction over text-like files.
func (s *Store) Preview(path string, limit int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if limit > 0 && len(data) > limit {
		data = data[:limit]
	}
	return string(data), nil
}

// Remove deletes a stored payload; a missing file is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultKey is the slot key the entry store lives under
const DefaultKey = "villani_hours_v2"

// ErrNotFound is returned by a Slot when nothing is stored under a key.
var ErrNotFound = errors.New("slot key not found")

// Slot is a small durable key/value area. The store keeps its whole state in one key
// and the rotating backups in a few more.
type Slot interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error
}

// FileSlot stores each key as a JSON file in a directory.
type FileSlot struct {
	dir string
}

// NewFileSlot creates a slot rooted at dir, creating the directory if needed.
func NewFileSlot(dir string) (*FileSlot, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileSlot{dir: dir}, nil
}

// Dir returns the directory holding the slot files.
func (s *FileSlot) Dir() string { return s.dir }

// Path returns the file backing key.
func (s *FileSlot) Path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid slot key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileSlot) Read(key string) ([]byte, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the value of key atomically: write to temp file, then rename.
func (s *FileSlot) Write(key string, data []byte) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}

	tmpFile := path + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, path)
}

func (s *FileSlot) Delete(key string) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemorySlot keeps values in memory. It backs tests and the --memory flag of serve.
type MemorySlot struct {
	values map[string][]byte
	// FailWrites makes every Write return this error when set.
	FailWrites error
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

func (s *MemorySlot) Read(key string) ([]byte, error) {
	data, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemorySlot) Write(key string, data []byte) error {
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.values[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemorySlot) Delete(key string) error {
	delete(s.values, key)
	return nil
}

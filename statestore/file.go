package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// File is a Store persisted as a single JSON document on disk, so the
// state survives restarts. Writes are last-writer-wins; the file holds
// advisory display data, not transactional state.
type File struct {
	mu   sync.Mutex
	path string
	data map[string][]byte
}

// NewFile opens (or creates) a file-backed store. An unreadable or
// malformed file is treated as empty rather than an error.
func NewFile(path string) (*File, error) {
	f := &File{path: path, data: map[string][]byte{}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.data); err != nil {
			f.data = map[string][]byte{}
		}
	}
	return f, nil
}

func (f *File) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true
}

func (f *File) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make([]byte, len(value))
	copy(copied, value)
	f.data[key] = copied
	return f.flushLocked()
}

func (f *File) Clear(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	_ = f.flushLocked()
}

func (f *File) flushLocked() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o600)
}

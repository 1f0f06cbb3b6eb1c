package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every key in one JSON object on disk.
type FileStore struct {
	Entries map[string]string
	Path    string
	mu      sync.RWMutex
}

// NewFileStore opens path, loading existing entries if the file is present.
// An unreadable or corrupt file is logged and the store starts empty; the
// next Set overwrites it.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store needs a path")
	}
	s := &FileStore{
		Entries: make(map[string]string),
		Path:    path,
	}
	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			log.Printf("[Store] Error loading %s, starting empty: %v", path, err)
			s.Entries = make(map[string]string)
		}
	}
	return s, nil
}

func (s *FileStore) load() error {
	f, err := os.Open(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&s.Entries); err != nil {
		return fmt.Errorf("failed to decode %s: %w", s.Path, err)
	}
	if s.Entries == nil {
		s.Entries = make(map[string]string)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.Entries[key]
	return v, ok, nil
}

// Set updates key and rewrites the file. The in-memory value is only
// replaced once the write succeeded.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.Entries)+1)
	for k, v := range s.Entries {
		next[k] = v
	}
	next[key] = value
	if err := s.save(next); err != nil {
		return err
	}
	s.Entries = next
	return nil
}

func (s *FileStore) save(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename store: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const sweepInterval = time.Hour

// File holds entries in memory and persists them to a JSON file so cached
// summaries survive a restart.
type File struct {
	mu       sync.RWMutex
	entries  map[string]fileEntry
	filePath string
	ttl      time.Duration
	now      func() time.Time

	closeOnce sync.Once
	closeCh   chan struct{}
}

type fileEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// fileData is the on-disk JSON format.
type fileData struct {
	Entries map[string]fileEntry `json:"entries"`
}

// LoadFile reads entries from path, or starts empty if the file does not
// exist. Entries that have already expired are dropped. A background sweep
// removes expired entries until Close.
func LoadFile(path string, ttl time.Duration) (*File, error) {
	f, err := loadFile(path, ttl, time.Now)
	if err != nil {
		return nil, err
	}
	go f.sweep()
	return f, nil
}

func loadFile(path string, ttl time.Duration, now func() time.Time) (*File, error) {
	f := &File{
		entries:  make(map[string]fileEntry),
		filePath: path,
		ttl:      ttl,
		now:      now,
		closeCh:  make(chan struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("parsing cache file: %w", err)
	}

	t := now()
	for k, e := range fd.Entries {
		if t.Before(e.ExpiresAt) {
			f.entries[k] = e
		}
	}

	return f, nil
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.RLock()
	e, ok := f.entries[key]
	f.mu.RUnlock()
	if !ok || !f.now().Before(e.ExpiresAt) {
		return "", ErrMiss
	}
	return e.Value, nil
}

// Set stores value and rewrites the file. The entry is not kept if the
// write fails.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.entries[key]
	f.entries[key] = fileEntry{Value: value, ExpiresAt: f.now().Add(f.ttl)}
	if err := f.save(); err != nil {
		if had {
			f.entries[key] = prev
		} else {
			delete(f.entries, key)
		}
		return err
	}
	return nil
}

// Close stops the background sweep. Entries remain on disk.
func (f *File) Close() error {
	f.closeOnce.Do(func() { close(f.closeCh) })
	return nil
}

// removeExpired drops expired entries and persists the result if anything
// changed.
func (f *File) removeExpired() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.now()
	removed := 0
	for k, e := range f.entries {
		if !t.Before(e.ExpiresAt) {
			delete(f.entries, k)
			removed++
		}
	}
	if removed == 0 {
		return nil
	}
	return f.save()
}

func (f *File) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = f.removeExpired()
		case <-f.closeCh:
			return
		}
	}
}

// save writes all entries to disk atomically (temp file + rename).
// Caller must hold f.mu.
func (f *File) save() error {
	data, err := json.MarshalIndent(fileData{Entries: f.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(f.filePath)
	tmp, err := os.CreateTemp(dir, "catchup-cache-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

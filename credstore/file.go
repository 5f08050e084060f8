package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// File is a [Store] backed by a single JSON file, the desktop analogue of browser
// storage: state survives a process restart within the same machine context.
//
// Every write replaces the whole file, never individual fields, so a refresh
// completing and a logout firing close together resolve to one writer's full record.
type File struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
}

// NewFile creates a file-backed store at path. The parent directory is created on
// first write. A missing or unreadable file reads as empty.
func NewFile(path string, log zerolog.Logger) *File {
	return &File{
		path: path,
		log:  log,
	}
}

// Get describes the get operation and its observable behavior.
func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.load()
	v, ok := values[key]
	return v, ok
}

// Set describes the set operation and its observable behavior.
func (f *File) Set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.load()
	values[key] = value
	f.save(values)
}

// Clear describes the clear operation and its observable behavior.
func (f *File) Clear(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.load()
	if _, ok := values[key]; !ok {
		return
	}
	delete(values, key)
	f.save(values)
}

// ClearAll describes the clearall operation and its observable behavior.
func (f *File) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.save(map[string]string{})
}

func (f *File) load() map[string]string {
	values := make(map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		// Corrupt state file: treat everything as absent rather than guessing.
		f.log.Warn().Str("path", f.path).Err(err).Msg("credstore: discarding corrupt state file")
		return make(map[string]string)
	}
	return values
}

func (f *File) save(values map[string]string) {
	data, err := json.Marshal(values)
	if err != nil {
		f.log.Warn().Err(err).Msg("credstore: encode failed, write skipped")
		return
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		f.log.Warn().Str("path", f.path).Err(err).Msg("credstore: state dir unavailable, write skipped")
		return
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		f.log.Warn().Str("path", f.path).Err(err).Msg("credstore: write failed, state kept in memory of caller")
		return
	}
	if err := os.Rename(tmp, f.path); err != nil {
		f.log.Warn().Str("path", f.path).Err(err).Msg("credstore: rename failed, write skipped")
	}
}

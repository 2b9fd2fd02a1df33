package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hpungsan/gitdraft/internal/change"
)

// Store persists pending change records under a single directory: one
// JSON file per record, keyed by its ULID, plus one pointer file per
// session (current_<session>.txt). The in-memory cache is a latency
// optimization only; the directory is the source of truth, so a record
// written by one process is readable by the next.
type Store struct {
	dir string

	mu    sync.Mutex
	cache map[string]*change.Record
}

// pointerPrefix distinguishes session pointer files from record files
// inside the same directory.
const pointerPrefix = "current_"

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create pending-changes directory: %w", err)
	}
	return &Store{
		dir:   dir,
		cache: make(map[string]*change.Record),
	}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put assigns a fresh id to the record, writes it to disk and the cache,
// and returns the id. Once Put returns, Get for the same id succeeds even
// from a freshly started process sharing the directory.
func (s *Store) Put(rec *change.Record) (string, error) {
	id, err := change.NewID()
	if err != nil {
		return "", fmt.Errorf("failed to generate change id: %w", err)
	}
	rec.ID = id

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode change record: %w", err)
	}
	if err := s.writeAtomic(s.recordPath(id), data); err != nil {
		return "", fmt.Errorf("failed to persist change record: %w", err)
	}

	s.mu.Lock()
	s.cache[id] = rec
	s.mu.Unlock()

	return id, nil
}

// Get returns the record for id, checking the cache first and falling
// back to disk. A disk hit after a restart is served without repopulating
// the cache. The second return is false if neither location has it.
func (s *Store) Get(id string) (*change.Record, bool) {
	s.mu.Lock()
	rec, ok := s.cache[id]
	s.mu.Unlock()
	if ok {
		return rec, true
	}

	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		return nil, false
	}
	var loaded change.Record
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, false
	}
	return &loaded, true
}

// Remove deletes the record from cache and disk. Removing a non-existent
// id is not an error.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()

	if err := os.Remove(s.recordPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove change record: %w", err)
	}
	return nil
}

// List returns all pending records on disk, newest first (ULIDs sort by
// creation time). Pointer files are skipped. Unreadable records are
// skipped rather than failing the whole listing.
func (s *Store) List() ([]*change.Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending-changes directory: %w", err)
	}

	records := make([]*change.Record, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, pointerPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if rec, ok := s.Get(id); ok {
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID > records[j].ID
	})
	return records, nil
}

// SetCurrent durably records id as the session's current change,
// overwriting any prior pointer for that session.
func (s *Store) SetCurrent(sessionID, id string) error {
	if err := s.writeAtomic(s.pointerPath(sessionID), []byte(id)); err != nil {
		return fmt.Errorf("failed to persist session pointer: %w", err)
	}
	return nil
}

// GetCurrent returns the session's current change id, or false if the
// session has no pointer.
func (s *Store) GetCurrent(sessionID string) (string, bool) {
	data, err := os.ReadFile(s.pointerPath(sessionID))
	if err != nil {
		return "", false
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", false
	}
	return id, true
}

// ClearCurrent removes the session's pointer. Idempotent.
func (s *Store) ClearCurrent(sessionID string) error {
	if err := os.Remove(s.pointerPath(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session pointer: %w", err)
	}
	return nil
}

// DropCache discards the in-memory cache, simulating a process restart.
// Every operation must behave identically afterwards; the cache is
// provably disposable.
func (s *Store) DropCache() {
	s.mu.Lock()
	s.cache = make(map[string]*change.Record)
	s.mu.Unlock()
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) pointerPath(sessionID string) string {
	return filepath.Join(s.dir, pointerPrefix+sanitizeSession(sessionID)+".txt")
}

// writeAtomic writes data via a temp file in the same directory so the
// rename is atomic and readers never observe a partial record.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// sanitizeSession keeps session-derived filenames free of path separators
// and traversal sequences.
func sanitizeSession(sessionID string) string {
	s := strings.ReplaceAll(sessionID, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")
	if s == "" {
		s = "default"
	}
	return s
}

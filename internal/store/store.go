// Package store persists the set of already-delivered post identities.
//
// The backing file is a single JSON record {"sentIds": [...]} with the
// identities in insertion order, oldest first. The set is bounded: once
// it grows past its capacity the oldest entries are evicted, FIFO. The
// store is owned by the single scheduler goroutine and does no locking.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type storeFile struct {
	SentIDs []string `json:"sentIds"`
}

// Store is a durable, capacity-bounded set of delivered post IDs.
type Store struct {
	path     string
	capacity int
	log      *slog.Logger

	ids   map[string]struct{}
	order []string // insertion order, oldest first
}

// Open loads the store from path. A missing file yields an empty store;
// an unreadable or malformed file yields an empty store with a logged
// warning. Opening never fails: the in-memory set is authoritative and
// persistence is best-effort.
func Open(path string, capacity int, log *slog.Logger) *Store {
	s := &Store{
		path:     path,
		capacity: capacity,
		log:      log,
		ids:      make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("read sent-post store, starting fresh", "path", path, "error", err)
		}
		return s
	}

	var parsed storeFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		log.Warn("parse sent-post store, starting fresh", "path", path, "error", err)
		return s
	}

	for _, id := range parsed.SentIDs {
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
	s.evict()
	return s
}

// WasSent reports whether id has already been delivered.
func (s *Store) WasSent(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// MarkSent records id as delivered and persists the set. When the set
// exceeds capacity the oldest entries are evicted first. A failed persist
// is logged and the in-memory state keeps serving lookups.
func (s *Store) MarkSent(id string) {
	if _, ok := s.ids[id]; ok {
		return
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	s.evict()

	if err := s.save(); err != nil {
		s.log.Error("persist sent-post store", "path", s.path, "error", err)
	}
}

// Len returns the number of stored identities.
func (s *Store) Len() int {
	return len(s.order)
}

func (s *Store) evict() {
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.ids, oldest)
	}
}

// save writes the full set atomically: temp file in the same directory,
// then rename over the previous snapshot.
func (s *Store) save() error {
	data, err := json.MarshalIndent(storeFile{SentIDs: s.order}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp store: %w", err)
	}
	return nil
}

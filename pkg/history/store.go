// Package history keeps the newest-first log of successful operations.
//
// The whole log is persisted as one JSON array under a single key. Every
// mutation serializes the new log, writes it, and only then replaces the
// in-memory copy, so readers never observe a log that differs from storage.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"scrapectl/pkg/models"
)

// ErrIndexOutOfRange is returned by DeleteAt and Get for a position outside the log.
var ErrIndexOutOfRange = errors.New("history index out of range")

// ErrEntryChanged is returned by DeleteEntry when the expected entry is no longer in the log.
var ErrEntryChanged = errors.New("history entry no longer present")

// Backend persists the serialized log under one durable key.
type Backend interface {
	// Read returns the stored blob, or nil when nothing has been stored.
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Store is the sole read/write path to the history log.
type Store struct {
	mu      sync.Mutex
	backend Backend
	entries []models.HistoryEntry
	loaded  bool
}

// NewStore creates a store over backend. Nothing is read until first use.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load re-reads the persisted log. Absent or unparseable data yields an
// empty log; only backend I/O failures are returned.
func (s *Store) Load(ctx context.Context) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// Entries returns the current log, loading it on first use.
func (s *Store) Entries(ctx context.Context) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// Get returns the entry at index.
func (s *Store) Get(ctx context.Context, index int) (models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.HistoryEntry{}, err
	}
	if index < 0 || index >= len(s.entries) {
		return models.HistoryEntry{}, fmt.Errorf("%w: %d (log has %d entries)", ErrIndexOutOfRange, index, len(s.entries))
	}
	return s.entries[index], nil
}

// Append inserts entry at the head of the log and persists it.
func (s *Store) Append(ctx context.Context, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	next := make([]models.HistoryEntry, 0, len(s.entries)+1)
	next = append(next, entry)
	next = append(next, s.entries...)
	return s.commit(ctx, next)
}

// DeleteAt removes the entry at index, keeping the order of the rest.
func (s *Store) DeleteAt(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if index < 0 || index >= len(s.entries) {
		return fmt.Errorf("%w: %d (log has %d entries)", ErrIndexOutOfRange, index, len(s.entries))
	}
	next := make([]models.HistoryEntry, 0, len(s.entries)-1)
	next = append(next, s.entries[:index]...)
	next = append(next, s.entries[index+1:]...)
	return s.commit(ctx, next)
}

// DeleteEntry removes want, which the caller last saw at index. The log is
// re-read first; if other writes shifted positions, the matching entry is
// located instead of deleting whatever now sits at index.
func (s *Store) DeleteEntry(ctx context.Context, index int, want models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	at := -1
	if index >= 0 && index < len(s.entries) && sameEntry(s.entries[index], want) {
		at = index
	} else {
		for i, e := range s.entries {
			if sameEntry(e, want) {
				at = i
				break
			}
		}
	}
	if at < 0 {
		return ErrEntryChanged
	}
	next := make([]models.HistoryEntry, 0, len(s.entries)-1)
	next = append(next, s.entries[:at]...)
	next = append(next, s.entries[at+1:]...)
	return s.commit(ctx, next)
}

// Clear empties the log and persists an empty array.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, []models.HistoryEntry{})
}

// ExportMarkdown renders entry's data as a fenced JSON code block.
func ExportMarkdown(entry models.HistoryEntry) string {
	data, err := json.MarshalIndent(entry.Data, "", "  ")
	if err != nil {
		data = []byte("{}")
	}
	return "```json\n" + string(data) + "\n```"
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	data, err := s.backend.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	s.entries = decode(data)
	s.loaded = true
	return nil
}

func (s *Store) commit(ctx context.Context, next []models.HistoryEntry) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	s.entries = next
	s.loaded = true
	return nil
}

func sameEntry(a, b models.HistoryEntry) bool {
	return a.URL == b.URL && a.Action == b.Action && a.Timestamp == b.Timestamp
}

func (s *Store) snapshot() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// decode treats corrupt data as an empty log.
func decode(data []byte) []models.HistoryEntry {
	entries := []models.HistoryEntry{}
	if len(data) == 0 {
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		return []models.HistoryEntry{}
	}
	return entries
}

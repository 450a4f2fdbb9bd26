// Package docs holds the per-run documentation store and the context
// assembled from it for each scheduled symbol.
package docs

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrAlreadyRecorded is returned when a name is recorded twice in one run.
	ErrAlreadyRecorded = errors.New("documentation already recorded")
	// ErrEmptyText is returned for blank documentation text.
	ErrEmptyText = errors.New("documentation text is empty")
)

// Source tells whether a stored text was found in the source or generated.
type Source string

const (
	SourceExisting  Source = "existing"
	SourceGenerated Source = "generated"
)

// Entry is one stored documentation text.
type Entry struct {
	Name   string `json:"name" yaml:"name"`
	Text   string `json:"text" yaml:"text"`
	Source Source `json:"source" yaml:"source"`
}

// Store maps qualified names to final documentation text. Each name is
// written at most once per run; concurrent readers and writers are safe.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Record stores text for name. It fails without side effects when name is
// already present or text is blank.
func (s *Store) Record(name, text string, source Source) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return ErrAlreadyRecorded
	}
	s.entries[name] = Entry{Name: name, Text: text, Source: source}
	s.order = append(s.order, name)
	return nil
}

// Get returns the text recorded for name.
func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[name]
	return entry.Text, ok
}

// Entry returns the full entry recorded for name.
func (s *Store) Entry(name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[name]
	return entry, ok
}

// Has reports whether name has been recorded.
func (s *Store) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Len returns the number of recorded names.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Names returns recorded names in recording order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Snapshot returns a copy of the name -> text mapping.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.entries))
	for name, entry := range s.entries {
		out[name] = entry.Text
	}
	return out
}

// Count returns the number of entries recorded from source.
func (s *Store) Count(source Source) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, entry := range s.entries {
		if entry.Source == source {
			n++
		}
	}
	return n
}

// SortedNames returns recorded names sorted lexically.
func (s *Store) SortedNames() []string {
	names := s.Names()
	sort.Strings(names)
	return names
}

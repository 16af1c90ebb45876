// Package session holds the per-session filter selection. Values are
// immutable: every read and update produces a fresh FilterParams, so
// an in-flight render never sees a half-applied change.
package session

import (
	"sync"

	"airdash/internal/engine"
)

// Update is a partial change to the current filter selection. Nil
// fields are left untouched; for slices an empty (non-nil) value
// clears the selection back to "all".
type Update struct {
	From      *int32    `json:"from,omitempty"`
	To        *int32    `json:"to,omitempty"`
	Seasons   *[]string `json:"seasons,omitempty"`
	WindDirs  *[]string `json:"wind_dirs,omitempty"`
	Pollutant *string   `json:"pollutant,omitempty"`
}

// Store owns the session's filter state.
type Store struct {
	mu       sync.RWMutex
	current  engine.FilterParams
	defaults engine.FilterParams
}

// NewStore creates a session store seeded with defaults.
func NewStore(defaults engine.FilterParams) *Store {
	return &Store{current: defaults.Clone(), defaults: defaults.Clone()}
}

// Current returns a copy of the active filter selection.
func (s *Store) Current() engine.FilterParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Update applies a partial change and returns the new selection.
// The previous value is never mutated in place.
func (s *Store) Update(u Update) engine.FilterParams {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	if u.From != nil {
		next.From = *u.From
	}
	if u.To != nil {
		next.To = *u.To
	}
	if u.Seasons != nil {
		next.Seasons = append([]string(nil), *u.Seasons...)
	}
	if u.WindDirs != nil {
		next.WindDirs = append([]string(nil), *u.WindDirs...)
	}
	if u.Pollutant != nil {
		next.Pollutant = *u.Pollutant
	}
	s.current = next
	return next.Clone()
}

// Reset restores the default selection and returns it.
func (s *Store) Reset() engine.FilterParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.defaults.Clone()
	return s.current.Clone()
}

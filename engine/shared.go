package engine

import (
	"sync"

	"github.com/kasterix/dyntpl/value"
)

// SharedData holds Engine-wide defaults merged into every render's
// context, adapted from the teacher's runtime.SharedData (which held
// interface{} for html/template's reflective data model; this holds
// Value, since every render context here already is one).
type SharedData struct {
	mu   sync.RWMutex
	data map[string]value.Value
}

// NewSharedData constructs an empty SharedData.
func NewSharedData() *SharedData {
	return &SharedData{data: make(map[string]value.Value)}
}

// Set installs or overwrites a shared key.
func (s *SharedData) Set(key string, v value.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = v
}

// Get returns a shared key's value, or Null if unset.
func (s *SharedData) Get(key string) value.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return value.Null()
	}
	return v
}

// Keys returns the shared keys in no particular order; mergeShared
// sorts them so the merged context Object has a deterministic order.
func (s *SharedData) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

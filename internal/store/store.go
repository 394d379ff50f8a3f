package store

import (
	"fmt"
	"sort"
	"sync"
)

// Store is the explicit, injectable cache holding one Slice per resource.
// Components that register the same resource name share one slice.
type Store struct {
	mu     sync.Mutex
	slices map[string]any
}

// New creates an empty store
func New() *Store {
	return &Store{slices: make(map[string]any)}
}

// Register returns the slice for name, creating it with initial data on first
// use. Registering an existing name with a different data type is an error.
func Register[T any](s *Store, name string, initial T) (*Slice[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.slices[name]; ok {
		slice, ok := existing.(*Slice[T])
		if !ok {
			return nil, fmt.Errorf("resource %q already registered with type %T", name, existing)
		}
		return slice, nil
	}

	slice := NewSlice(name, initial)
	s.slices[name] = slice
	return slice, nil
}

// MustRegister is like Register but panics on a type mismatch. It is meant for
// wiring code where a mismatch is a programming error.
func MustRegister[T any](s *Store, name string, initial T) *Slice[T] {
	slice, err := Register(s, name, initial)
	if err != nil {
		panic(err)
	}
	return slice
}

// Names lists registered resources in sorted order
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.slices))
	for name := range s.slices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

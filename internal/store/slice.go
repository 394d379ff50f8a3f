// Package store holds the client-side cache: one slice of {data, loading, error}
// per resource, mutated only through FetchStart, FetchSuccess and FetchFailure.
package store

import (
	"slices"
	"sync"
)

// ResourceState is the cached view of one resource
type ResourceState[T any] struct {
	Data    T
	Loading bool
	// Error is nil when there is no error
	Error *string
}

// ErrorMessage returns the error text, or "" when there is no error
func (s ResourceState[T]) ErrorMessage() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// Transition names the action that produced a state
type Transition string

const (
	TransitionFetchStart   Transition = "fetchStart"
	TransitionFetchSuccess Transition = "fetchSuccess"
	TransitionFetchFailure Transition = "fetchFailure"
)

// Listener observes every committed transition
type Listener[T any] func(t Transition, state ResourceState[T])

// Slice is the mutable cache for one resource.
//
// Thread Safety: transitions are serialised, so concurrent refreshes commit
// in completion order (last writer wins). Listeners run synchronously in
// commit order and subscription order; they may read State but must not
// dispatch transitions themselves.
type Slice[T any] struct {
	name string

	dispatchMu sync.Mutex
	mu         sync.Mutex
	state      ResourceState[T]
	listeners  map[uint64]Listener[T]
	nextID     uint64
}

// NewSlice creates a slice holding initial as its data
func NewSlice[T any](name string, initial T) *Slice[T] {
	return &Slice[T]{
		name:      name,
		state:     ResourceState[T]{Data: initial},
		listeners: make(map[uint64]Listener[T]),
	}
}

// Name returns the resource name
func (s *Slice[T]) Name() string {
	return s.name
}

// State returns a snapshot of the current state
func (s *Slice[T]) State() ResourceState[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FetchStart marks the resource as loading and clears the error
func (s *Slice[T]) FetchStart() {
	s.apply(TransitionFetchStart, func(st *ResourceState[T]) {
		st.Loading = true
		st.Error = nil
	})
}

// FetchSuccess replaces data wholesale with payload
func (s *Slice[T]) FetchSuccess(payload T) {
	s.apply(TransitionFetchSuccess, func(st *ResourceState[T]) {
		st.Loading = false
		st.Data = payload
		st.Error = nil
	})
}

// FetchFailure records message and keeps the previously cached data
func (s *Slice[T]) FetchFailure(message string) {
	s.apply(TransitionFetchFailure, func(st *ResourceState[T]) {
		st.Loading = false
		st.Error = &message
	})
}

// Subscribe registers fn for every later transition and returns a function
// that removes it.
func (s *Slice[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Slice[T]) apply(t Transition, mutate func(*ResourceState[T])) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state
	listeners := s.sortedListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(t, snapshot)
	}
}

// sortedListeners returns listeners in subscription order; caller holds mu
func (s *Slice[T]) sortedListeners() []Listener[T] {
	if len(s.listeners) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Listener[T], len(ids))
	for i, id := range ids {
		out[i] = s.listeners[id]
	}
	return out
}

// Package mockdb is the in-memory data behind the mock ERP API.
package mockdb

import (
	"maps"
	"slices"
	"sync"

	"github.com/erp/client/internal/domain/shared"
)

// Table is a thread-safe in-memory collection with auto-incremented IDs
type Table[T any] struct {
	mu     sync.RWMutex
	rows   map[shared.ID]T
	nextID shared.ID
}

// NewTable creates an empty table whose first ID is 1
func NewTable[T any]() *Table[T] {
	return &Table[T]{rows: make(map[shared.ID]T), nextID: 1}
}

// Insert assigns the next ID and stores the row build returns for it
func (t *Table[T]) Insert(build func(id shared.ID) T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	row := build(id)
	t.rows[id] = row
	return row
}

// Get returns the row with id
func (t *Table[T]) Get(id shared.ID) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	return row, ok
}

// Update replaces the row with id by apply's result
func (t *Table[T]) Update(id shared.ID, apply func(T) T) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	row = apply(row)
	t.rows[id] = row
	return row, true
}

// Delete removes the row with id and reports whether it existed
func (t *Table[T]) Delete(id shared.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// List returns all rows ordered by ID
func (t *Table[T]) List() []T {
	return t.Filter(nil)
}

// Filter returns the rows matching keep ordered by ID; nil keeps all
func (t *Table[T]) Filter(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(t.rows))
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if keep == nil || keep(t.rows[id]) {
			out = append(out, t.rows[id])
		}
	}
	return out
}

// Exists reports whether any row other than except matches
func (t *Table[T]) Exists(except shared.ID, match func(shared.ID, T) bool) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for id, row := range t.rows {
		if id != except && match(id, row) {
			return true
		}
	}
	return false
}

// Len returns the number of rows
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

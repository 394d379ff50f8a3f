package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budget struct {
	ID   int
	Name string
}

func TestSlice_Transitions(t *testing.T) {
	t.Run("initial state", func(t *testing.T) {
		s := NewSlice("budgets", []budget{})
		st := s.State()
		assert.Equal(t, []budget{}, st.Data)
		assert.False(t, st.Loading)
		assert.Nil(t, st.Error)
		assert.Equal(t, "budgets", s.Name())
	})

	t.Run("fetchStart sets loading and clears error", func(t *testing.T) {
		s := NewSlice("budgets", []budget{})
		s.FetchFailure("boom")
		s.FetchStart()

		st := s.State()
		assert.True(t, st.Loading)
		assert.Nil(t, st.Error)
	})

	t.Run("fetchSuccess replaces data wholesale", func(t *testing.T) {
		d1 := []budget{{ID: 1, Name: "Old"}, {ID: 2, Name: "Older"}}
		d2 := []budget{{ID: 7, Name: "Q1 Budget"}}

		s := NewSlice("budgets", d1)
		s.FetchStart()
		s.FetchSuccess(d2)

		st := s.State()
		assert.Equal(t, d2, st.Data)
		assert.False(t, st.Loading)
		assert.Nil(t, st.Error)
	})

	t.Run("fetchFailure keeps stale data", func(t *testing.T) {
		d1 := []budget{{ID: 1, Name: "Old"}}

		s := NewSlice("budgets", d1)
		s.FetchStart()
		s.FetchFailure("network down")

		st := s.State()
		assert.Equal(t, d1, st.Data)
		assert.False(t, st.Loading)
		require.NotNil(t, st.Error)
		assert.Equal(t, "network down", st.ErrorMessage())
	})
}

func TestSlice_Subscribe(t *testing.T) {
	s := NewSlice("roles", 0)

	var got []Transition
	var loading []bool
	unsubscribe := s.Subscribe(func(tr Transition, st ResourceState[int]) {
		got = append(got, tr)
		loading = append(loading, st.Loading)
	})

	s.FetchStart()
	s.FetchSuccess(3)
	unsubscribe()
	unsubscribe()
	s.FetchStart()

	assert.Equal(t, []Transition{TransitionFetchStart, TransitionFetchSuccess}, got)
	assert.Equal(t, []bool{true, false}, loading)
}

func TestSlice_ListenersMayReadState(t *testing.T) {
	s := NewSlice("roles", 0)
	var seen int
	s.Subscribe(func(_ Transition, _ ResourceState[int]) {
		seen = s.State().Data
	})
	s.FetchSuccess(9)
	assert.Equal(t, 9, seen)
}

func TestSlice_ConcurrentTransitions(t *testing.T) {
	s := NewSlice("items", 0)

	var mu sync.Mutex
	var order []int
	s.Subscribe(func(tr Transition, st ResourceState[int]) {
		if tr == TransitionFetchSuccess {
			mu.Lock()
			order = append(order, st.Data)
			mu.Unlock()
		}
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			s.FetchStart()
			s.FetchSuccess(v)
		}(i)
	}
	wg.Wait()

	require.Len(t, order, 50)
	// Listener delivery follows commit order, so the final state is the last delivered value
	assert.Equal(t, order[len(order)-1], s.State().Data)
	assert.False(t, s.State().Loading)
}

func TestStore_Register(t *testing.T) {
	st := New()

	a, err := Register(st, "budgets", []budget{})
	require.NoError(t, err)
	b, err := Register(st, "budgets", []budget{{ID: 1}})
	require.NoError(t, err)
	assert.Same(t, a, b, "same name shares one slice")
	assert.Equal(t, []budget{}, b.State().Data, "initial data of the first registration wins")

	_, err = Register(st, "budgets", 0)
	assert.Error(t, err)

	MustRegister(st, "roles", []string{})
	assert.Equal(t, []string{"budgets", "roles"}, st.Names())

	assert.Panics(t, func() {
		MustRegister(st, "roles", 1)
	})
}

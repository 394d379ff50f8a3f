// Package auth owns the access token every resource fetch depends on.
//
// A Session starts in the "fetching local token" state until Load resolves
// the token from a TokenStore. Resource hooks treat that state, and an empty
// token, as guard conditions: the fetch is skipped rather than failed.
package auth

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Token is the persisted credential
type Token struct {
	AccessToken string `json:"access_token"`
}

// State is the read-only view resource hooks depend on
type State struct {
	Token                Token
	IsFetchingLocalToken bool
}

// Ready reports whether a fetch may use this state
func (s State) Ready() bool {
	return !s.IsFetchingLocalToken && s.Token.AccessToken != ""
}

// Session holds the current auth state and fans changes out to subscribers.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Session struct {
	notifyMu  sync.Mutex
	mu        sync.Mutex
	state     State
	listeners map[uint64]func(State)
	nextID    uint64
	logger    *zap.Logger
}

// NewSession creates a session that is still fetching its local token
func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		state:     State{IsFetchingLocalToken: true},
		listeners: make(map[uint64]func(State)),
		logger:    logger,
	}
}

// NewSessionWithToken creates a session whose token is already resolved
func NewSessionWithToken(accessToken string) *Session {
	s := NewSession(nil)
	s.state = State{Token: Token{AccessToken: accessToken}}
	return s
}

// State returns the current auth state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AccessToken returns the current access token, possibly empty
func (s *Session) AccessToken() string {
	return s.State().Token.AccessToken
}

// BeginLoad marks the token as being resolved from storage
func (s *Session) BeginLoad() {
	s.update(func(st *State) {
		st.IsFetchingLocalToken = true
	})
}

// SetToken stores a resolved token and ends any pending load
func (s *Session) SetToken(tok Token) {
	s.update(func(st *State) {
		st.Token = tok
		st.IsFetchingLocalToken = false
	})
}

// Load resolves the token from store. On error the session ends up with an
// empty token so dependent fetches stay skipped.
func (s *Session) Load(ctx context.Context, store TokenStore) error {
	s.BeginLoad()
	tok, err := store.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load access token", zap.Error(err))
		s.SetToken(Token{})
		return err
	}
	s.logger.Debug("access token loaded", zap.Bool("present", tok.AccessToken != ""))
	s.SetToken(tok)
	return nil
}

// Subscribe calls fn after every state change. It returns a function that
// removes the subscription.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
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

func (s *Session) update(mutate func(*State)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	before := s.state
	mutate(&s.state)
	after := s.state
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	if before == after {
		return
	}
	for _, fn := range fns {
		fn(after)
	}
}

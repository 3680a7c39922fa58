// Package session serves calculator controllers over HTTP. Each session is a
// server-side controller with its own display and history, addressed by id.
package session

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"calculator-frontend/internal/frontend"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// ErrInvalidClientID is returned for client ids outside clientIDPattern.
var ErrInvalidClientID = errors.New("invalid client id")

// DefaultIdleTTL is how long a session may go unused before Sweep drops it.
const DefaultIdleTTL = 30 * time.Minute

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Factory builds the controller backing a new session. namespace scopes the
// session's local history cache.
type Factory func(namespace string) *frontend.Controller

type Session struct {
	ID         string
	ClientID   string
	Controller *frontend.Controller
	CreatedAt  time.Time

	lastSeen atomic.Int64
}

func (s *Session) touch(t time.Time) {
	s.lastSeen.Store(t.UnixNano())
}

// LastSeen is the time of the session's most recent lookup.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Registry holds the live sessions. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  Factory
	idleTTL  time.Duration
	now      func() time.Time
}

type Option func(*Registry)

// WithIdleTTL sets how long an unused session is kept.
func WithIdleTTL(d time.Duration) Option {
	return func(r *Registry) { r.idleTTL = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(factory Factory, opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a session and loads its history before registering it.
// A non-empty clientID is a stable identity chosen by the caller: it
// namespaces the local history cache, so a returning client gets its cached
// history back. Without one the cache is scoped to the new session id.
func (r *Registry) Create(ctx context.Context, clientID string) (*Session, error) {
	if clientID != "" && !clientIDPattern.MatchString(clientID) {
		return nil, ErrInvalidClientID
	}

	id := uuid.NewString()
	namespace := clientID
	if namespace == "" {
		namespace = id
	}

	s := &Session{
		ID:         id,
		ClientID:   clientID,
		Controller: r.factory(namespace),
		CreatedAt:  r.now(),
	}
	s.touch(s.CreatedAt)
	s.Controller.LoadHistory(ctx)

	r.mu.Lock()
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	sessionsActive.Set(float64(n))
	return s, nil
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	s.touch(r.now())
	return s, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	sessionsActive.Set(float64(n))
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the idle TTL and returns how
// many were removed. Their history stays in the local cache.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		sessionsActive.Set(float64(n))
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

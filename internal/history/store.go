// Package history keeps the capped operation history, persists it in a local
// cache and reconciles it with the calculator service's authoritative copy.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"calculator-frontend/internal/calculator"
)

// MaxEntries caps the history length; older entries are dropped.
const MaxEntries = 50

// TimestampLayout formats entry timestamps.
const TimestampLayout = "15:04:05"

// Remote is the authoritative history held by the calculator service.
type Remote interface {
	FetchHistory(ctx context.Context) ([]calculator.HistoryEntry, error)
	ClearHistory(ctx context.Context) error
}

// Store is the in-memory history, newest first. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries []calculator.HistoryEntry

	cache    LocalCache
	remote   Remote
	key      string
	logger   *zap.Logger
	now      func() time.Time
	onChange func([]calculator.HistoryEntry)
}

type Option func(*Store)

// WithNamespace scopes the cache key, e.g. per front-end session.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns != "" {
			s.key = ns + ":" + CacheKey
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithOnChange registers a callback receiving a copy of the list after every
// change. It is called without the store lock held.
func WithOnChange(fn func([]calculator.HistoryEntry)) Option {
	return func(s *Store) { s.onChange = fn }
}

// NewStore returns an empty store. remote may be nil for a local-only history.
func NewStore(cache LocalCache, remote Remote, opts ...Option) *Store {
	s := &Store{
		cache:  cache,
		remote: remote,
		key:    CacheKey,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key is the cache key the store persists under.
func (s *Store) Key() string {
	return s.key
}

func capEntries(entries []calculator.HistoryEntry) []calculator.HistoryEntry {
	if len(entries) > MaxEntries {
		return entries[:MaxEntries]
	}
	return entries
}

// snapshot copies the list. Caller holds s.mu.
func (s *Store) snapshot() []calculator.HistoryEntry {
	out := make([]calculator.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Entries returns a copy of the history, newest first.
func (s *Store) Entries() []calculator.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Append records a calculation at the head of the list, truncates it to
// MaxEntries and persists it locally. An empty timestamp is filled in.
func (s *Store) Append(ctx context.Context, entry calculator.HistoryEntry) {
	if entry.Timestamp == "" {
		entry.Timestamp = s.now().Format(TimestampLayout)
	}

	s.mu.Lock()
	entries := make([]calculator.HistoryEntry, 0, len(s.entries)+1)
	entries = append(entries, entry)
	entries = append(entries, s.entries...)
	s.entries = capEntries(entries)
	snap := s.snapshot()
	s.persist(ctx, snap)
	s.mu.Unlock()

	s.notify(snap)
}

// replace swaps the whole list and persists it.
func (s *Store) replace(ctx context.Context, entries []calculator.HistoryEntry) {
	s.mu.Lock()
	s.entries = capEntries(append([]calculator.HistoryEntry(nil), entries...))
	snap := s.snapshot()
	s.persist(ctx, snap)
	s.mu.Unlock()

	s.notify(snap)
}

// persist writes the list to the local cache. Failures are logged only: the
// in-memory history stays usable. Caller holds s.mu so writes land in order.
func (s *Store) persist(ctx context.Context, entries []calculator.HistoryEntry) {
	data, err := json.Marshal(entries)
	if err != nil {
		s.logger.Warn("encoding history failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("saving history failed", zap.String("key", s.key), zap.Error(err))
	}
}

func (s *Store) notify(entries []calculator.HistoryEntry) {
	if s.onChange != nil {
		s.onChange(entries)
	}
}

package history

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"calculator-frontend/internal/calculator"
)

// Load restores the locally cached history for immediate display and then
// reconciles it with the remote history. A missing or unreadable cache
// leaves the list empty.
func (s *Store) Load(ctx context.Context) {
	data, ok, err := s.cache.Get(ctx, s.key)
	switch {
	case err != nil:
		s.logger.Warn("loading local history failed", zap.String("key", s.key), zap.Error(err))
	case ok:
		var entries []calculator.HistoryEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			s.logger.Warn("discarding unreadable local history", zap.String("key", s.key), zap.Error(err))
			break
		}

		s.mu.Lock()
		s.entries = capEntries(entries)
		snap := s.snapshot()
		s.mu.Unlock()

		s.notify(snap)
	}

	s.Reconcile(ctx)
}

// Reconcile pulls the remote history. A non-empty remote list replaces the
// local one wholesale and is persisted; a failed fetch or an empty list keeps
// the local state. It reports whether the list was replaced.
func (s *Store) Reconcile(ctx context.Context) bool {
	if s.remote == nil {
		return false
	}

	remote, err := s.remote.FetchHistory(ctx)
	if err != nil {
		s.logger.Warn("history sync with calculator service failed", zap.Error(err))
		return false
	}
	if len(remote) == 0 {
		return false
	}

	s.replace(ctx, remote)
	s.logger.Info("history synced with calculator service", zap.Int("entries", len(remote)))
	return true
}

// Clear deletes the remote history and then empties the local one. The local
// list is emptied whatever the remote outcome; a remote failure is only logged.
func (s *Store) Clear(ctx context.Context) {
	if s.remote != nil {
		if err := s.remote.ClearHistory(ctx); err != nil {
			s.logger.Warn("clearing remote history failed, clearing locally", zap.Error(err))
		}
	}

	s.replace(ctx, nil)
}

// Package memory provides an in-process store for development and
// tests. Sessions expire lazily on read and eagerly via the sweeper.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/louisbranch/killchain/internal/services/game/core/filter"
	"github.com/louisbranch/killchain/internal/services/game/domain/action"
	"github.com/louisbranch/killchain/internal/services/game/domain/session"
	"github.com/louisbranch/killchain/internal/services/game/storage"
)

// Store keeps all state behind one mutex.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	actions  map[string][]action.Entry
	seq      map[string]int64
	now      func() time.Time
}

// Option configures the store.
type Option func(*Store)

// WithClock overrides the expiry clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*session.Session),
		actions:  make(map[string][]action.Entry),
		seq:      make(map[string]int64),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) PutSession(ctx context.Context, sess *session.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if sess.Expired(s.now()) {
		s.dropLocked(id)
		return nil, storage.ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return storage.ErrNotFound
	}
	s.dropLocked(id)
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			s.dropLocked(id)
			dropped++
		}
	}
	return dropped, nil
}

func (s *Store) dropLocked(id string) {
	delete(s.sessions, id)
	delete(s.actions, id)
	delete(s.seq, id)
}

func (s *Store) AppendAction(ctx context.Context, e action.Entry) (action.Entry, error) {
	if err := ctx.Err(); err != nil {
		return action.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[e.SessionID]++
	e.Seq = s.seq[e.SessionID]
	s.actions[e.SessionID] = append(s.actions[e.SessionID], e)
	return e, nil
}

func (s *Store) ListActions(ctx context.Context, sessionID, filterStr string) ([]action.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	match, err := filter.ActionPredicate(filterStr)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []action.Entry
	for _, e := range s.actions[sessionID] {
		if match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Close is a no-op; it satisfies storage.Store.
func (s *Store) Close() error { return nil }

package cart

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

const saveTimeout = 2 * time.Second

type session struct {
	store    *Store
	lastUsed time.Time
}

// Sessions owns one Store per cart session and restores it from the
// persister on first use. Idle sessions are dropped by Sweep and restored
// again on their next Get.
type Sessions struct {
	persister Persister
	now       func() time.Time
	mu        sync.Mutex
	sessions  map[string]*session
	sfg       singleflight.Group
}

func NewSessions(persister Persister) *Sessions {
	return &Sessions{
		persister: persister,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

func (s *Sessions) Get(ctx context.Context, sessionID string) (*Store, error) {
	if store, ok := s.lookup(sessionID); ok {
		return store, nil
	}

	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		if existing, ok := s.lookup(sessionID); ok {
			return existing, nil
		}

		items, err := s.persister.Load(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		store := NewStore(items, s.saver(sessionID))

		s.mu.Lock()
		s.sessions[sessionID] = &session{store: store, lastUsed: s.now()}
		s.mu.Unlock()
		return store, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

func (s *Sessions) lookup(sessionID string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	sess.lastUsed = s.now()
	return sess.store, true
}

// Sweep drops every session not used for longer than idle and returns the
// dropped ids. Sessions for which busy reports true are kept. busy runs with
// the session table locked and must not call back into Sessions.
func (s *Sessions) Sweep(idle time.Duration, busy func(sessionID string) bool) []string {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for id, sess := range s.sessions {
		if sess.lastUsed.After(cutoff) {
			continue
		}
		if busy != nil && busy(id) {
			continue
		}
		delete(s.sessions, id)
		evicted = append(evicted, id)
	}
	return evicted
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) saver(sessionID string) Observer {
	return func(items []domain.CartItem) {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.persister.Save(ctx, sessionID, items); err != nil {
			log.Printf("cart save error for session %s: %v", sessionID, err)
		}
	}
}

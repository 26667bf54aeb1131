// Package session holds the per-client chat sessions and their banking state.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/jomkira/backend/src/logger"
	"github.com/username/jomkira/backend/src/models"
)

// ErrStoreFull is returned when the session cache is at capacity and no
// expired entries could be reclaimed.
var ErrStoreFull = errors.New("session store at capacity")

// Session is one client-identified context. Its mutex serializes agent runs
// so at most one mutation of the banking state is in flight per session.
type Session struct {
	ID    string
	State *models.BankingState

	mu sync.Mutex
}

// Lock acquires the session for exclusive mutation.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Store is the session store contract.
type Store interface {
	// GetOrCreate returns the session for id, creating it with the given
	// opening balance if absent. An empty id allocates a new session id.
	// The second return reports whether the session was created.
	GetOrCreate(id string, initialBalance decimal.Decimal) (*Session, bool, error)
	// Get returns an existing session, if any.
	Get(id string) (*Session, bool)
	// Len returns the number of live sessions.
	Len() int
}

// CacheStore is a bounded TTL store backed by go-cache. Sessions expire
// after the configured idle TTL; the capacity cap keeps an unbounded client
// population from leaking memory.
type CacheStore struct {
	sessions *cache.Cache
	max      int

	mu sync.Mutex // guards create-if-absent
}

// NewCacheStore creates a store with the given idle TTL and capacity.
func NewCacheStore(ttl time.Duration, max int) *CacheStore {
	return &CacheStore{
		sessions: cache.New(ttl, ttl/2+time.Minute),
		max:      max,
	}
}

func (s *CacheStore) GetOrCreate(id string, initialBalance decimal.Decimal) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if found, ok := s.sessions.Get(id); ok {
			sess := found.(*Session)
			// Sliding expiration: activity keeps the session alive.
			s.sessions.SetDefault(id, sess)
			return sess, false, nil
		}
	}

	if s.sessions.ItemCount() >= s.max {
		s.sessions.DeleteExpired()
		if s.sessions.ItemCount() >= s.max {
			logger.L.Error("Session store full, refusing new session", "capacity", s.max)
			return nil, false, ErrStoreFull
		}
	}

	if id == "" {
		id = uuid.NewString()
	}
	sess := &Session{
		ID:    id,
		State: models.NewBankingState(initialBalance),
	}
	s.sessions.SetDefault(id, sess)
	logger.L.Info("Session created", "sessionID", id, "sessions", s.sessions.ItemCount())
	return sess, true, nil
}

func (s *CacheStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	found, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return found.(*Session), true
}

func (s *CacheStore) Len() int {
	return s.sessions.ItemCount()
}

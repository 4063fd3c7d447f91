package review

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/finbook/backend/src/logger"
	"github.com/username/finbook/backend/src/models"
)

var ErrSessionNotFound = errors.New("review session not found or expired")

// Store is the registry of live review sessions. Sessions are held in
// memory only and expire after the configured TTL; an abandoned review
// screen simply ages out without any record being committed.
type Store struct {
	sessions *cache.Cache
	ttl      time.Duration
}

// NewStore creates a session store whose entries expire after ttl and
// are swept every cleanupInterval.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	return &Store{
		sessions: cache.New(ttl, cleanupInterval),
		ttl:      ttl,
	}
}

// Create intakes the candidates into a new session owned by userID and
// registers it under a fresh ID.
func (st *Store) Create(userID int64, bank string, candidates []models.CandidateTransaction) *Session {
	session := NewSession(uuid.NewString(), userID, bank, candidates)
	st.sessions.Set(session.ID, session, cache.DefaultExpiration)
	logger.L.Info("Review session created",
		"sessionID", session.ID, "userID", userID, "bank", bank, "candidates", len(candidates))
	return session
}

// Get returns the session if it exists and belongs to userID. A session
// owned by someone else is reported as not found rather than forbidden.
func (st *Store) Get(sessionID string, userID int64) (*Session, error) {
	v, found := st.sessions.Get(sessionID)
	if !found {
		return nil, ErrSessionNotFound
	}
	session := v.(*Session)
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	// Touch the entry so an active review does not expire mid-session.
	st.sessions.Set(sessionID, session, cache.DefaultExpiration)
	return session, nil
}

// Delete discards a session, typically after a fully successful
// submission.
func (st *Store) Delete(sessionID string) {
	st.sessions.Delete(sessionID)
}

package sessionctx

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
	"golang.org/x/crypto/blake2b"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo keeps sessions in memory keyed by a hash of the session token,
// so raw tokens are never held by the portal after the request ends.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]Session),
	}
}

func key(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (r *InMemoryRepo) Upsert(token string, session Session) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[key(token)] = session
	return nil
}

// Get returns the session for token. Expired sessions are removed and
// reported as ErrSessionExpired.
func (r *InMemoryRepo) Get(token string) (Session, error) {
	if token == "" {
		return Session{}, apperrors.ErrSessionNotFound
	}
	k := key(token)

	r.mu.RLock()
	session, ok := r.sessions[k]
	r.mu.RUnlock()
	if !ok {
		return Session{}, apperrors.ErrSessionNotFound
	}

	if expired(session, NowTimeFunc()) {
		r.mu.Lock()
		// An Upsert may have replaced it since the read lock was dropped
		if current, ok := r.sessions[k]; ok && expired(current, NowTimeFunc()) {
			delete(r.sessions, k)
		}
		r.mu.Unlock()
		return Session{}, apperrors.ErrSessionExpired
	}
	return session, nil
}

func (r *InMemoryRepo) Update(token string, fn UpdateFunc) (Session, error) {
	if token == "" {
		return Session{}, apperrors.ErrSessionNotFound
	}
	k := key(token)

	r.mu.Lock()
	defer r.mu.Unlock()
	session, found := r.sessions[k]
	if found && expired(session, NowTimeFunc()) {
		delete(r.sessions, k)
		session, found = Session{}, false
	}
	if err := fn(&session, found); err != nil {
		return Session{}, err
	}
	r.sessions[k] = session
	return session, nil
}

func expired(session Session, now time.Time) bool {
	return !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(now)
}

func (r *InMemoryRepo) Delete(token string) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key(token)) // Already gone is fine
	return nil
}

// DeleteExpired drops every session that expired before now.
func (r *InMemoryRepo) DeleteExpired() int {
	now := NowTimeFunc()

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for k, session := range r.sessions {
		if expired(session, now) {
			delete(r.sessions, k)
			removed++
		}
	}
	return removed
}

func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

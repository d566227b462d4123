package sessionctx

import (
	"time"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
)

// Manager owns the session context lifecycle: populated when the API confirms
// who a token belongs to, updated when the password is changed, cleared on
// logout or when the session cannot be confirmed.
type Manager struct {
	repo   Repo
	maxAge time.Duration
}

func NewManager(repo Repo, maxAge time.Duration) *Manager {
	return &Manager{repo: repo, maxAge: maxAge}
}

// Remember records the confirmed identity for token. An existing draft
// survives the refresh.
func (m *Manager) Remember(token, email string, mustChangePassword bool) (Session, error) {
	now := NowTimeFunc()
	session, err := m.repo.Update(token, func(session *Session, found bool) error {
		if !found {
			*session = Session{CreatedAt: now}
		}
		session.Email = email
		session.MustChangePassword = mustChangePassword
		session.ExpiresAt = now.Add(m.maxAge)
		return nil
	})
	if err != nil {
		return Session{}, apperrors.Wrapf(err, "[sessionctx] remember")
	}
	return session, nil
}

// Lookup returns the session for token, if any.
func (m *Manager) Lookup(token string) (Session, bool) {
	session, err := m.repo.Get(token)
	if err != nil {
		return Session{}, false
	}
	return session, true
}

// existing only lets fn change a session that is already there.
func existing(fn func(*Session)) UpdateFunc {
	return func(session *Session, found bool) error {
		if !found {
			return apperrors.ErrSessionNotFound
		}
		fn(session)
		return nil
	}
}

// PasswordChanged clears the must-change flag. It only ever moves true to false.
func (m *Manager) PasswordChanged(token string) error {
	_, err := m.repo.Update(token, existing(func(session *Session) {
		session.MustChangePassword = false
	}))
	return err
}

// UpdateDraft applies update to the session's draft.
func (m *Manager) UpdateDraft(token string, update func(*Draft)) (Draft, error) {
	session, err := m.repo.Update(token, existing(func(session *Session) {
		update(&session.Draft)
	}))
	if err != nil {
		return Draft{}, err
	}
	return session.Draft, nil
}

func (m *Manager) Forget(token string) error {
	if token == "" {
		return nil
	}
	return m.repo.Delete(token)
}

package sessionctx

import "time"

// Draft holds uploads that are waiting to be turned into a QR code.
type Draft struct {
	ResourceURL string
	LogoURL     string
}

func (d Draft) Empty() bool {
	return d.ResourceURL == "" && d.LogoURL == ""
}

// Session is what the portal remembers about a browser session between
// requests. The API stays the source of truth: the record is refreshed from
// every successful "who am I" call.
type Session struct {
	Email              string
	MustChangePassword bool
	Draft              Draft

	CreatedAt time.Time
	ExpiresAt time.Time
}

// UpdateFunc changes a session in place. found is false when there is no
// live session for the token, in which case the func may fill one in.
type UpdateFunc func(session *Session, found bool) error

type Repo interface {
	Upsert(token string, session Session) error
	Get(token string) (Session, error)
	// Update reads, changes and stores a session as one step. Nothing is
	// stored when fn returns an error.
	Update(token string, fn UpdateFunc) (Session, error)
	Delete(token string) error
}

package auth

import (
	"time"

	"github.com/google/uuid"
)

// State is the login state of a session
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Identity is a normalized display name bound to an authenticated session
type Identity string

func (i Identity) String() string { return string(i) }

// Session is the login state of one interactive client. It is owned by the
// hosting application and passed explicitly; there is no process-wide session.
type Session struct {
	ID       string
	state    State
	identity Identity
	account  string
	since    time.Time
}

// NewSession creates an anonymous session with a random id
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// State returns the current login state
func (s *Session) State() State { return s.state }

// CurrentIdentity returns the bound identity iff the session is authenticated
func (s *Session) CurrentIdentity() (Identity, bool) {
	if s == nil || s.state != Authenticated {
		return "", false
	}
	return s.identity, true
}

// Account returns the account key used to log in, "" when anonymous
func (s *Session) Account() string {
	if s == nil || s.state != Authenticated {
		return ""
	}
	return s.account
}

// Since returns when the session was authenticated (zero when anonymous)
func (s *Session) Since() time.Time { return s.since }

// Logout returns the session to Anonymous. Calling it on an anonymous session is a no-op.
func (s *Session) Logout() {
	s.state = Anonymous
	s.identity = ""
	s.account = ""
	s.since = time.Time{}
}

func (s *Session) bind(account string, id Identity, at time.Time) {
	s.state = Authenticated
	s.identity = id
	s.account = account
	s.since = at
}

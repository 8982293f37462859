package auth

import (
	"time"

	"github.com/sirupsen/logrus"

	"capstone/insights/internal/hierarchy"
)

// Directory resolves account keys to accounts
type Directory interface {
	Account(key string) (hierarchy.Account, bool)
}

// Gate is the login gate: it authenticates sessions against a Directory
type Gate struct {
	dir      Directory
	verifier Verifier
	log      *logrus.Entry
	now      func() time.Time
}

// NewGate creates a Gate. A nil logger discards log output.
func NewGate(dir Directory, verifier Verifier, log *logrus.Entry) *Gate {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = logrus.NewEntry(l)
	}
	return &Gate{dir: dir, verifier: verifier, log: log, now: time.Now}
}

// Authenticate checks accountKey and secret. On success the session becomes
// Authenticated and is bound to the normalized display name of the account.
// On any failure the session is left untouched and ErrInvalidCredentials is
// returned.
func (g *Gate) Authenticate(s *Session, accountKey, secret string) (Identity, error) {
	account, ok := g.dir.Account(accountKey)
	if !ok {
		g.verifier.Reject(secret)
		g.log.WithField("session", s.ID).Warn("login rejected")
		return "", ErrInvalidCredentials
	}
	if !g.verifier.Verify(account, secret) {
		g.log.WithField("session", s.ID).Warn("login rejected")
		return "", ErrInvalidCredentials
	}

	id := Identity(hierarchy.Normalize(account.DisplayName))
	s.bind(account.Key, id, g.now())
	g.log.WithFields(logrus.Fields{
		"session":  s.ID,
		"identity": id,
	}).Info("login succeeded")
	return id, nil
}

// Logout returns s to Anonymous
func (g *Gate) Logout(s *Session) {
	if id, ok := s.CurrentIdentity(); ok {
		g.log.WithFields(logrus.Fields{"session": s.ID, "identity": id}).Info("logged out")
	}
	s.Logout()
}

package auth

import (
	"crypto/subtle"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"capstone/insights/internal/hierarchy"
)

// Verifier decides whether secret proves ownership of account
type Verifier interface {
	Verify(account hierarchy.Account, secret string) bool
	// Reject burns comparable work for an unknown account
	Reject(secret string)
}

// BcryptVerifier checks the account's own bcrypt hash. Accounts without a
// stored hash cannot log in.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(account hierarchy.Account, secret string) bool {
	if account.SecretHash == "" {
		dummyCompare(secret)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(account.SecretHash), []byte(secret)) == nil
}

func (BcryptVerifier) Reject(secret string) { dummyCompare(secret) }

var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("unknown-account"), bcrypt.DefaultCost)
	if err != nil {
		return nil
	}
	return h
})

func dummyCompare(secret string) {
	if h := dummyHash(); h != nil {
		_ = bcrypt.CompareHashAndPassword(h, []byte(secret))
	}
}

// SharedPassphrase accepts one system-wide passphrase for every known
// account. This mirrors the legacy dashboard and is weaker than per-account
// hashes: anyone holding the passphrase can act as any account key.
type SharedPassphrase struct {
	Passphrase string
}

func (v SharedPassphrase) Verify(_ hierarchy.Account, secret string) bool {
	if v.Passphrase == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.Passphrase), []byte(secret)) == 1
}

func (v SharedPassphrase) Reject(secret string) {
	_ = subtle.ConstantTimeCompare([]byte(v.Passphrase), []byte(secret))
}

// HashSecret returns a bcrypt hash suitable for the hierarchy secret_hash column
func HashSecret(secret string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Package admin guards recruiter-only views behind a shared secret.
package admin

import (
	"crypto/subtle"
	"strings"
)

// Gate compares candidate secrets against the configured one. A gate with an
// empty secret rejects everything.
type Gate struct {
	secret []byte
}

func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(strings.TrimSpace(secret))}
}

// Enabled reports whether a secret is configured at all.
func (g *Gate) Enabled() bool {
	return len(g.secret) > 0
}

// Unlock reports whether attempt matches the secret exactly.
func (g *Gate) Unlock(attempt string) bool {
	if !g.Enabled() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(attempt), g.secret) == 1
}

// Package auth provides the credential pool used to authenticate
// code-search requests.
package auth

import (
	"sync"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
)

// Ensure Pool implements the CredentialPool interface.
var _ driven.CredentialPool = (*Pool)(nil)

// Pool is an immutable, ordered list of credentials with a round-robin
// cursor. Only the cursor changes after construction.
type Pool struct {
	mu     sync.Mutex
	creds  []domain.Credential
	cursor int
}

// NewPool creates a pool over a copy of creds. Credentials without a
// token are dropped.
func NewPool(creds ...domain.Credential) *Pool {
	kept := make([]domain.Credential, 0, len(creds))
	for _, c := range creds {
		if !c.IsZero() {
			kept = append(kept, c)
		}
	}
	return &Pool{creds: kept}
}

// Current returns the credential at the cursor.
func (p *Pool) Current() (domain.Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.creds) == 0 {
		return domain.Credential{}, domain.ErrNoCredentials
	}
	return p.creds[p.cursor], nil
}

// Rotate advances the cursor to the next credential, wrapping around.
// With one credential or none it returns false and does nothing.
func (p *Pool) Rotate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.creds) <= 1 {
		return false
	}
	p.cursor = (p.cursor + 1) % len(p.creds)
	return true
}

// Len returns the number of credentials.
func (p *Pool) Len() int {
	return len(p.creds)
}

// All returns a copy of the credentials in pool order.
func (p *Pool) All() []domain.Credential {
	out := make([]domain.Credential, len(p.creds))
	copy(out, p.creds)
	return out
}

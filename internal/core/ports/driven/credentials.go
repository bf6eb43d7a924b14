package driven

import "github.com/custodia-labs/gitsleuth-cli/internal/core/domain"

// CredentialPool is an ordered, immutable list of credentials with a cursor.
// Implementations must be safe for concurrent use.
type CredentialPool interface {
	// Current returns the credential at the cursor.
	// Returns domain.ErrNoCredentials when the pool is empty.
	Current() (domain.Credential, error)

	// Rotate advances the cursor round-robin. It returns false and leaves
	// the cursor unchanged when the pool holds at most one credential.
	Rotate() bool

	// Len returns the number of credentials.
	Len() int

	// All returns the credentials in pool order.
	All() []domain.Credential
}

package driven

import (
	"context"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// CodeSearchClient issues authenticated requests on behalf of one credential.
// Rate limits are reported in the returned outcome, never by sleeping;
// backoff is the orchestrator's decision.
type CodeSearchClient interface {
	// Credential returns the credential the client authenticates with.
	Credential() domain.Credential

	// CheckQuota reports the remaining search quota. On failure it returns
	// a zero remaining count with Known=false and the error.
	CheckQuota(ctx context.Context) (domain.QuotaStatus, error)

	// Search runs one code-search query.
	Search(ctx context.Context, query string) domain.SearchOutcome

	// FetchContent downloads and decodes the file behind a search result.
	FetchContent(ctx context.Context, item domain.SearchResultItem) domain.ContentOutcome
}

// ClientFactory hands out a client per credential.
type ClientFactory interface {
	ForCredential(cred domain.Credential) (CodeSearchClient, error)
}

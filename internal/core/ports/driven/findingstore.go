package driven

import (
	"context"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// FindingStore persists scan runs and their findings.
type FindingStore interface {
	// SaveRun stores or updates a run header.
	SaveRun(ctx context.Context, run domain.RunSummary) error

	// SaveFinding stores a finding. Saving the same snippet twice in one
	// run is a no-op.
	SaveFinding(ctx context.Context, finding domain.Finding) error

	// GetRun retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, id string) (*domain.RunSummary, error)

	// ListRuns returns runs, newest first. Limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// ListFindings returns findings matching the filter in the order found.
	ListFindings(ctx context.Context, filter domain.FindingFilter) ([]domain.Finding, error)
}

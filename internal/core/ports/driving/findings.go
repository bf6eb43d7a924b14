package driving

import (
	"context"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// FindingService exposes the history of past runs.
type FindingService interface {
	// Record stores a finished report and all of its findings.
	Record(ctx context.Context, report *domain.ScanReport) error

	// Findings lists stored findings.
	Findings(ctx context.Context, filter domain.FindingFilter) ([]domain.Finding, error)

	// Runs lists past runs, newest first.
	Runs(ctx context.Context, limit int) ([]domain.RunSummary, error)
}

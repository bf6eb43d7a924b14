package driving

import (
	"context"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// FindingHandler receives findings as soon as they are classified.
// Calls are serialised; the handler does not need to be thread-safe.
type FindingHandler func(domain.Finding)

// ScanService runs the query catalog against the code-search API.
type ScanService interface {
	// Run executes the catalog until it completes, is cancelled, or times out.
	// Cancellation and timeouts are not errors: the report carries the
	// terminal state and every finding produced so far.
	// An error is returned only when the run cannot start.
	Run(ctx context.Context, req domain.ScanRequest, handle FindingHandler) (*domain.ScanReport, error)

	// State returns the state of the current or most recent run.
	State() domain.RunState
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driving"
)

// Ensure FindingService implements the interface.
var _ driving.FindingService = (*FindingService)(nil)

// FindingService records scan reports and serves the findings history.
type FindingService struct {
	store driven.FindingStore
}

// NewFindingService creates a new finding service.
func NewFindingService(store driven.FindingStore) *FindingService {
	return &FindingService{store: store}
}

// Record stores the run header and every finding of the report.
// Findings that fail to save do not stop the others.
func (s *FindingService) Record(ctx context.Context, report *domain.ScanReport) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("%w: report has no run id", domain.ErrInvalidInput)
	}

	if err := s.store.SaveRun(ctx, report.Summary()); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	var errs []error
	for i := range report.Findings {
		if err := s.store.SaveFinding(ctx, report.Findings[i]); err != nil {
			errs = append(errs, fmt.Errorf("save finding %s: %w", report.Findings[i].ID, err))
		}
	}
	return errors.Join(errs...)
}

// Findings lists stored findings matching the filter.
func (s *FindingService) Findings(ctx context.Context, filter domain.FindingFilter) ([]domain.Finding, error) {
	if filter.Verdict != "" && !filter.Verdict.IsValid() {
		return nil, fmt.Errorf("%w: unknown verdict %q", domain.ErrInvalidInput, filter.Verdict)
	}
	return s.store.ListFindings(ctx, filter)
}

// Runs lists past runs, newest first.
func (s *FindingService) Runs(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	return s.store.ListRuns(ctx, limit)
}

// Run returns a single past run.
func (s *FindingService) Run(ctx context.Context, id string) (*domain.RunSummary, error) {
	return s.store.GetRun(ctx, id)
}

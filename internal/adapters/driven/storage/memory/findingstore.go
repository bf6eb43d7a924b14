package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/gitsleuth-cli/internal/adapters/driven/storage"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
)

// Ensure FindingStore implements the interface.
var _ driven.FindingStore = (*FindingStore)(nil)

// FindingStore is an in-memory implementation of driven.FindingStore.
type FindingStore struct {
	mu       sync.RWMutex
	runs     map[string]domain.RunSummary
	findings []domain.Finding
	seen     map[string]struct{}
}

// NewFindingStore creates a new in-memory finding store.
func NewFindingStore() *FindingStore {
	return &FindingStore{
		runs: make(map[string]domain.RunSummary),
		seen: make(map[string]struct{}),
	}
}

// SaveRun stores or updates a run header.
func (s *FindingStore) SaveRun(_ context.Context, run domain.RunSummary) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// SaveFinding stores a finding once per run and location.
func (s *FindingStore) SaveFinding(_ context.Context, finding domain.Finding) error {
	if finding.RunID == "" {
		return domain.ErrInvalidInput
	}
	key := storage.Fingerprint(finding)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[key]; dup {
		return nil
	}
	s.seen[key] = struct{}{}
	s.findings = append(s.findings, finding)
	return nil
}

// GetRun retrieves a run by ID.
func (s *FindingStore) GetRun(_ context.Context, id string) (*domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns runs, newest first.
func (s *FindingStore) ListRuns(_ context.Context, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	runs := make([]domain.RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// ListFindings returns findings matching the filter in the order found.
func (s *FindingStore) ListFindings(_ context.Context, filter domain.FindingFilter) ([]domain.Finding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Finding
	for _, f := range s.findings {
		if !filter.Matches(f) {
			continue
		}
		out = append(out, f)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

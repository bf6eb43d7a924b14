package mcp

import (
	"context"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// mockClassifier is a mock implementation of driving.SnippetClassifier.
type mockClassifier struct {
	result domain.Classification
	calls  []string
}

func (m *mockClassifier) Classify(snippet, path string) domain.Classification {
	m.calls = append(m.calls, path+"|"+snippet)
	return m.result
}

// mockFindingService is a mock implementation of driving.FindingService.
type mockFindingService struct {
	findings   []domain.Finding
	runs       []domain.RunSummary
	err        error
	lastFilter domain.FindingFilter
	lastLimit  int
}

func (m *mockFindingService) Record(_ context.Context, _ *domain.ScanReport) error {
	return m.err
}

func (m *mockFindingService) Findings(_ context.Context, filter domain.FindingFilter) ([]domain.Finding, error) {
	m.lastFilter = filter
	return m.findings, m.err
}

func (m *mockFindingService) Runs(_ context.Context, limit int) ([]domain.RunSummary, error) {
	m.lastLimit = limit
	return m.runs, m.err
}

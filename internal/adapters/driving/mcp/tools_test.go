package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Classifier == nil {
		ports.Classifier = &mockClassifier{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleBuildQueries(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &Ports{})

	t.Run("restricts to categories", func(t *testing.T) {
		_, output, err := server.handleBuildQueries(ctx, nil, BuildQueriesInput{
			Seed:       "acme.com",
			Categories: []string{"ssh_keys"},
		})

		require.NoError(t, err)
		assert.Equal(t, "acme.com", output.Seed)
		assert.Equal(t, len(output.Queries), output.Count)
		require.NotEmpty(t, output.Queries)
		for _, q := range output.Queries {
			assert.Equal(t, domain.CategorySSH, q.Category)
			assert.Contains(t, q.Query, `"acme.com"`)
		}
	})

	t.Run("custom query", func(t *testing.T) {
		_, output, err := server.handleBuildQueries(ctx, nil, BuildQueriesInput{
			Seed:   "acme.com",
			Custom: []string{"filename:.npmrc _authToken"},
		})

		require.NoError(t, err)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, domain.CategoryCustom, output.Queries[0].Category)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, _, err := server.handleBuildQueries(ctx, nil, BuildQueriesInput{Categories: []string{"bogus"}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleExtractSnippets(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &Ports{WindowRadius: 5})

	t.Run("extracts windows around terms", func(t *testing.T) {
		_, output, err := server.handleExtractSnippets(ctx, nil, ExtractSnippetsInput{
			Content: "aaaaaaaaaa API_KEY=zz bbbbbbbbbb",
			Query:   "filename:.env API_KEY",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"API_KEY"}, output.Terms)
		require.Equal(t, 1, output.Count)
		assert.Contains(t, output.Snippets[0].Text, "API_KEY")
		assert.Equal(t, "API_KEY", output.Snippets[0].Term)
	})

	t.Run("no match returns an empty list", func(t *testing.T) {
		_, output, err := server.handleExtractSnippets(ctx, nil, ExtractSnippetsInput{
			Content: "nothing here",
			Query:   "API_KEY",
		})

		require.NoError(t, err)
		assert.NotNil(t, output.Snippets)
		assert.Zero(t, output.Count)
	})

	t.Run("query is required", func(t *testing.T) {
		_, _, err := server.handleExtractSnippets(ctx, nil, ExtractSnippetsInput{Content: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleClassifySnippet(t *testing.T) {
	classifier := &mockClassifier{result: domain.Classification{
		Verdict: domain.VerdictTruePositive,
		Entropy: 4.1,
		Score:   0.9,
		Reason:  "threshold",
		RuleID:  "generic-api-key",
	}}
	server := newTestServer(t, &Ports{Classifier: classifier})

	_, output, err := server.handleClassifySnippet(context.Background(), nil, ClassifySnippetInput{
		Snippet: "API_KEY=9f8e7d6c",
		Path:    ".env",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.VerdictTruePositive, output.Verdict)
	assert.Equal(t, 0.9, output.Score)
	assert.Equal(t, "generic-api-key", output.RuleID)
	assert.Equal(t, []string{".env|API_KEY=9f8e7d6c"}, classifier.calls)
}

func TestServer_handleListFindings(t *testing.T) {
	ctx := context.Background()

	t.Run("returns findings", func(t *testing.T) {
		found := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		findings := &mockFindingService{findings: []domain.Finding{{
			ID:         "f1",
			RunID:      "r1",
			Category:   domain.CategoryConfigFiles,
			Repository: "acme/app",
			Path:       ".env",
			Verdict:    domain.VerdictTruePositive,
			FoundAt:    found,
		}}}
		server := newTestServer(t, &Ports{Findings: findings})

		_, output, err := server.handleListFindings(ctx, nil, ListFindingsInput{
			RunID:   "r1",
			Verdict: "true_positive",
		})

		require.NoError(t, err)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, "f1", output.Findings[0].ID)
		assert.Equal(t, "config_files", output.Findings[0].Category)
		assert.Equal(t, "2026-03-01T12:00:00Z", output.Findings[0].FoundAt)
		assert.Equal(t, domain.FindingFilter{
			RunID:   "r1",
			Verdict: domain.VerdictTruePositive,
			Limit:   defaultFindingsLimit,
		}, findings.lastFilter)
	})

	t.Run("without a store", func(t *testing.T) {
		server := newTestServer(t, &Ports{})
		_, _, err := server.handleListFindings(ctx, nil, ListFindingsInput{})
		assert.ErrorIs(t, err, ErrNoFindingStore)
	})

	t.Run("store error", func(t *testing.T) {
		server := newTestServer(t, &Ports{Findings: &mockFindingService{err: errors.New("db locked")}})
		_, _, err := server.handleListFindings(ctx, nil, ListFindingsInput{Limit: 5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db locked")
	})
}

package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/gitsleuth-cli/internal/catalog"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/extractor"
)

const defaultFindingsLimit = 50

// BuildQueriesInput is the input schema for the build_queries tool.
type BuildQueriesInput struct {
	Seed       string   `json:"seed,omitempty" jsonschema:"domain or keyword every query is scoped to"`
	Categories []string `json:"categories,omitempty" jsonschema:"restrict to these categories (default all)"`
	Custom     []string `json:"custom,omitempty" jsonschema:"extra user-supplied queries"`
}

// BuildQueriesOutput is the output schema for the build_queries tool.
type BuildQueriesOutput struct {
	Seed    string               `json:"seed,omitempty"`
	Queries []domain.SearchQuery `json:"queries"`
	Count   int                  `json:"count"`
}

// ExtractSnippetsInput is the input schema for the extract_snippets tool.
type ExtractSnippetsInput struct {
	Content string `json:"content" jsonschema:"file content to scan"`
	Query   string `json:"query" jsonschema:"the search query whose terms are located"`
	Radius  int    `json:"radius,omitempty" jsonschema:"characters kept either side of a match"`
}

// ExtractSnippetsOutput is the output schema for the extract_snippets tool.
type ExtractSnippetsOutput struct {
	Terms    []string         `json:"terms"`
	Snippets []domain.Snippet `json:"snippets"`
	Count    int              `json:"count"`
}

// ClassifySnippetInput is the input schema for the classify_snippet tool.
type ClassifySnippetInput struct {
	Snippet string `json:"snippet" jsonschema:"the text to classify"`
	Path    string `json:"path,omitempty" jsonschema:"file path the snippet came from"`
}

// ClassifySnippetOutput is the output schema for the classify_snippet tool.
type ClassifySnippetOutput struct {
	Verdict domain.Verdict `json:"verdict"`
	Entropy float64        `json:"entropy"`
	Score   float64        `json:"score"`
	Reason  string         `json:"reason,omitempty"`
	RuleID  string         `json:"rule_id,omitempty"`
}

// ListFindingsInput is the input schema for the list_findings tool.
type ListFindingsInput struct {
	RunID      string `json:"run_id,omitempty" jsonschema:"only findings of this run"`
	Verdict    string `json:"verdict,omitempty" jsonschema:"true_positive, false_positive or low_confidence"`
	Repository string `json:"repository,omitempty" jsonschema:"only findings in owner/name"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of findings (default 50)"`
}

// ListFindingsOutput is the output schema for the list_findings tool.
type ListFindingsOutput struct {
	Findings []FindingOutput `json:"findings"`
	Count    int             `json:"count"`
}

// FindingOutput represents a single stored finding.
type FindingOutput struct {
	ID         string         `json:"id"`
	RunID      string         `json:"run_id"`
	Category   string         `json:"category"`
	Query      string         `json:"query"`
	Repository string         `json:"repository"`
	Path       string         `json:"path"`
	URL        string         `json:"url"`
	Snippet    string         `json:"snippet"`
	Verdict    domain.Verdict `json:"verdict"`
	Entropy    float64        `json:"entropy"`
	Score      float64        `json:"score"`
	RuleID     string         `json:"rule_id,omitempty"`
	FoundAt    string         `json:"found_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "build_queries",
		Description: "Build the code-search queries used to hunt for leaked secrets",
	}, s.handleBuildQueries)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_snippets",
		Description: "Cut the windows around each query term out of file content",
	}, s.handleExtractSnippets)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_snippet",
		Description: "Decide whether a snippet likely contains a real secret",
	}, s.handleClassifySnippet)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_findings",
		Description: "List findings recorded by past scans",
	}, s.handleListFindings)
}

func (s *Server) handleBuildQueries(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input BuildQueriesInput,
) (*mcp.CallToolResult, BuildQueriesOutput, error) {
	c, err := catalog.Compose(input.Seed, input.Categories, input.Custom...)
	if err != nil {
		return nil, BuildQueriesOutput{}, err
	}

	queries := c.Queries()
	return nil, BuildQueriesOutput{
		Seed:    c.Seed,
		Queries: queries,
		Count:   len(queries),
	}, nil
}

func (s *Server) handleExtractSnippets(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExtractSnippetsInput,
) (*mcp.CallToolResult, ExtractSnippetsOutput, error) {
	if input.Query == "" {
		return nil, ExtractSnippetsOutput{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	radius := input.Radius
	if radius <= 0 {
		radius = s.ports.WindowRadius
	}
	if radius <= 0 {
		radius = domain.DefaultWindowRadius
	}

	snippets := extractor.Extract(input.Content, input.Query, radius)
	if snippets == nil {
		snippets = []domain.Snippet{}
	}
	return nil, ExtractSnippetsOutput{
		Terms:    extractor.Terms(input.Query),
		Snippets: snippets,
		Count:    len(snippets),
	}, nil
}

func (s *Server) handleClassifySnippet(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ClassifySnippetInput,
) (*mcp.CallToolResult, ClassifySnippetOutput, error) {
	c := s.ports.Classifier.Classify(input.Snippet, input.Path)
	return nil, ClassifySnippetOutput{
		Verdict: c.Verdict,
		Entropy: c.Entropy,
		Score:   c.Score,
		Reason:  c.Reason,
		RuleID:  c.RuleID,
	}, nil
}

func (s *Server) handleListFindings(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListFindingsInput,
) (*mcp.CallToolResult, ListFindingsOutput, error) {
	if s.ports.Findings == nil {
		return nil, ListFindingsOutput{}, ErrNoFindingStore
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultFindingsLimit
	}

	findings, err := s.ports.Findings.Findings(ctx, domain.FindingFilter{
		RunID:      input.RunID,
		Verdict:    domain.Verdict(input.Verdict),
		Repository: input.Repository,
		Limit:      limit,
	})
	if err != nil {
		return nil, ListFindingsOutput{}, err
	}

	output := ListFindingsOutput{
		Findings: make([]FindingOutput, len(findings)),
		Count:    len(findings),
	}
	for i := range findings {
		f := &findings[i]
		output.Findings[i] = FindingOutput{
			ID:         f.ID,
			RunID:      f.RunID,
			Category:   string(f.Category),
			Query:      f.Query,
			Repository: f.Repository,
			Path:       f.Path,
			URL:        f.URL,
			Snippet:    f.Snippet,
			Verdict:    f.Verdict,
			Entropy:    f.Entropy,
			Score:      f.Score,
			RuleID:     f.RuleID,
			FoundAt:    f.FoundAt.UTC().Format(time.RFC3339),
		}
	}

	return nil, output, nil
}

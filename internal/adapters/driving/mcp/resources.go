package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for gitsleuth resources.
	uriScheme = "gitsleuth://"

	recentRunsLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Most recent scan runs",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}/findings",
		Name:        "run-findings",
		Description: "Findings recorded by a specific run",
		MIMEType:    "application/json",
	}, s.handleRunFindingsResource)
}

// handleRunsResource returns the most recent runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Findings == nil {
		return jsonResource(req.Params.URI, []domain.RunSummary{})
	}

	runs, err := s.ports.Findings.Runs(ctx, recentRunsLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	if runs == nil {
		runs = []domain.RunSummary{}
	}
	return jsonResource(req.Params.URI, runs)
}

// handleRunFindingsResource returns the findings of one run.
func (s *Server) handleRunFindingsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Findings == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract runId from URI: gitsleuth://runs/{runId}/findings
	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	findings, err := s.ports.Findings.Findings(ctx, domain.FindingFilter{RunID: runID})
	if err != nil {
		return nil, fmt.Errorf("listing findings: %w", err)
	}
	if findings == nil {
		findings = []domain.Finding{}
	}
	return jsonResource(req.Params.URI, findings)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like gitsleuth://runs/{runId}/findings.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"
	const suffix = "/findings"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	id := strings.TrimSuffix(uri, suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

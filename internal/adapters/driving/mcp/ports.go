package mcp

import (
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Classifier labels snippets.
	Classifier driving.SnippetClassifier

	// Findings serves the history of past runs. Optional.
	Findings driving.FindingService

	// WindowRadius is the default snippet radius for extraction.
	WindowRadius int
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Classifier == nil {
		return ErrMissingClassifier
	}
	return nil
}

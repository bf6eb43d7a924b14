package classifier

import (
	"fmt"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
)

// Ensure GitleaksScreen implements the interface.
var _ driven.SecretScreen = (*GitleaksScreen)(nil)

// GitleaksScreen matches snippets against the default gitleaks rule set.
type GitleaksScreen struct {
	mu       sync.Mutex
	detector *detect.Detector
}

// NewGitleaksScreen loads the built-in gitleaks configuration.
func NewGitleaksScreen() (*GitleaksScreen, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("creating gitleaks detector: %w", err)
	}
	return &GitleaksScreen{detector: d}, nil
}

// Screen returns the rule id of the first gitleaks finding in text.
func (g *GitleaksScreen) Screen(text string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	findings := g.detector.DetectBytes([]byte(text))
	if len(findings) == 0 {
		return "", false
	}
	return findings[0].RuleID, true
}

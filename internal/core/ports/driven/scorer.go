package driven

import "github.com/custodia-labs/gitsleuth-cli/internal/core/domain"

// Scorer turns a feature vector into a score in [0, 1].
// A score of 0.5 or more means the snippet is a likely secret.
type Scorer interface {
	Name() string
	Score(fv domain.FeatureVector) float64
}

// SecretScreen matches text against rule-based secret detectors.
type SecretScreen interface {
	// Screen returns the id of the first matching rule.
	Screen(text string) (ruleID string, matched bool)
}

package classifier

import "github.com/custodia-labs/gitsleuth-cli/internal/core/domain"

// PhraseResult is the breakdown of one indicator within a phrase.
type PhraseResult struct {
	Indicator      string                `json:"indicator"`
	Value          string                `json:"value"`
	ValueEntropy   float64               `json:"value_entropy"`
	Shape          Shape                 `json:"shape,omitempty"`
	Classification domain.Classification `json:"classification"`
}

// Analyze explains how a free-form phrase is classified. Each credential
// assignment is reported on its own; a phrase without one is reported
// whole.
func (c *Classifier) Analyze(phrase, path string) []PhraseResult {
	var results []PhraseResult
	for _, a := range Assignments(phrase) {
		if !IsSecretName(a.Name) {
			continue
		}
		results = append(results, PhraseResult{
			Indicator:      a.Name,
			Value:          a.Value,
			ValueEntropy:   ShannonEntropy(a.Value),
			Shape:          ShapeOf(a.Value),
			Classification: c.Classify(a.Expr(), path),
		})
	}
	if len(results) > 0 {
		return results
	}
	return []PhraseResult{{
		Value:          phrase,
		ValueEntropy:   ShannonEntropy(phrase),
		Shape:          ShapeOf(phrase),
		Classification: c.Classify(phrase, path),
	}}
}

package classifier

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
)

// Ensure scorers implement the interface.
var (
	_ driven.Scorer = (*ThresholdScorer)(nil)
	_ driven.Scorer = (*LogisticScorer)(nil)
)

// ThresholdScorer scores 1 when snippet entropy exceeds a threshold, else 0.
type ThresholdScorer struct {
	Threshold float64
}

// NewThresholdScorer creates a threshold scorer. A non-positive threshold
// falls back to domain.DefaultEntropyThreshold.
func NewThresholdScorer(threshold float64) *ThresholdScorer {
	if threshold <= 0 {
		threshold = domain.DefaultEntropyThreshold
	}
	return &ThresholdScorer{Threshold: threshold}
}

// Name returns the scorer name.
func (s *ThresholdScorer) Name() string {
	return fmt.Sprintf("entropy > %.2f", s.Threshold)
}

// Score returns 1 above the threshold and 0 at or below it.
func (s *ThresholdScorer) Score(fv domain.FeatureVector) float64 {
	if fv.Entropy > s.Threshold {
		return 1
	}
	return 0
}

// LogisticScorer scores with a trained logistic-regression model.
type LogisticScorer struct {
	model *Model
}

// NewLogisticScorer wraps a trained model.
func NewLogisticScorer(m *Model) *LogisticScorer {
	return &LogisticScorer{model: m}
}

// Name returns the scorer name.
func (s *LogisticScorer) Name() string {
	return "logistic model"
}

// Score returns the model's probability that the snippet is a secret.
func (s *LogisticScorer) Score(fv domain.FeatureVector) float64 {
	return s.model.Probability(fv.Values())
}

// LoadScorer returns a LogisticScorer for the model at path, or a
// ThresholdScorer when path is empty. When the model cannot be loaded
// the threshold scorer is returned together with an error wrapping
// domain.ErrClassificationDegraded, so callers can warn and carry on.
func LoadScorer(path string, th domain.ClassificationThresholds) (driven.Scorer, error) {
	fallback := NewThresholdScorer(th.EntropyThreshold)
	if path == "" {
		return fallback, nil
	}
	m, err := LoadModel(path)
	if err != nil {
		return fallback, errors.Join(domain.ErrClassificationDegraded, err)
	}
	return NewLogisticScorer(m), nil
}

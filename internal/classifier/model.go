package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// Model is a logistic-regression model over standardised feature vectors.
type Model struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`

	// Mean and Scale standardise each feature before weighting.
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`

	// Accuracy is the held-out accuracy measured at training time.
	Accuracy  float64   `json:"accuracy"`
	TrainedAt time.Time `json:"trained_at"`
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func (m *Model) standardise(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i]
		if i < len(m.Mean) {
			out[i] -= m.Mean[i]
		}
		if i < len(m.Scale) && m.Scale[i] != 0 {
			out[i] /= m.Scale[i]
		}
	}
	return out
}

func (m *Model) linear(z []float64) float64 {
	sum := m.Bias
	for i := range m.Weights {
		if i < len(z) {
			sum += m.Weights[i] * z[i]
		}
	}
	return sum
}

// Probability returns P(secret) for a raw feature slice.
func (m *Model) Probability(x []float64) float64 {
	return sigmoid(m.linear(m.standardise(x)))
}

// Predict returns 1 when Probability is at least 0.5.
func (m *Model) Predict(x []float64) int {
	if m.Probability(x) >= 0.5 {
		return 1
	}
	return 0
}

func (m *Model) validate() error {
	if len(m.Weights) != domain.FeatureCount {
		return fmt.Errorf("model has %d weights, want %d", len(m.Weights), domain.FeatureCount)
	}
	if len(m.Mean) != domain.FeatureCount || len(m.Scale) != domain.FeatureCount {
		return fmt.Errorf("model scaling has wrong dimension")
	}
	return nil
}

// Save writes the model as JSON with restricted permissions.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling model: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating model directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	return nil
}

// LoadModel reads a model written by Save.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return &m, nil
}

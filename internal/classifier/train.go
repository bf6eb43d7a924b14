package classifier

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// Sample is one labelled training snippet.
type Sample struct {
	Text  string
	Path  string
	Label int // 1 = real secret, 0 = placeholder/noise
}

// TrainOptions tunes stochastic gradient descent.
type TrainOptions struct {
	LearningRate float64
	Epochs       int
	TestFraction float64
	Seed         int64
}

// DefaultTrainOptions returns the standard training setup.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		LearningRate: 0.1,
		Epochs:       500,
		TestFraction: 0.2,
		Seed:         42,
	}
}

// TrainReport describes a finished training run.
type TrainReport struct {
	TrainSize int
	TestSize  int
	Accuracy  float64
}

// Train fits a logistic-regression model. The samples are shuffled with a
// fixed seed and split into training and held-out sets; the report carries
// the held-out accuracy. Fewer than two distinct labels fail with
// domain.ErrInsufficientClasses.
func Train(samples []Sample, opts TrainOptions) (*Model, TrainReport, error) {
	if err := checkClasses(samples); err != nil {
		return nil, TrainReport{}, err
	}
	if opts.Epochs <= 0 || opts.LearningRate <= 0 {
		return nil, TrainReport{}, fmt.Errorf("%w: epochs and learning rate must be positive", domain.ErrInvalidInput)
	}

	xs := make([][]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = Features(s.Text, s.Path).Values()
		ys[i] = float64(s.Label)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	perm := rng.Perm(len(samples))
	nTest := int(math.Ceil(float64(len(samples))*opts.TestFraction - 1e-9))
	if nTest < 0 {
		nTest = 0
	}
	if nTest >= len(samples) {
		nTest = len(samples) - 1
	}
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	m := &Model{Weights: make([]float64, domain.FeatureCount)}
	m.Mean, m.Scale = fitScaling(xs, trainIdx)

	train := make([][]float64, len(trainIdx))
	for i, idx := range trainIdx {
		train[i] = m.standardise(xs[idx])
	}
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for i, idx := range trainIdx {
			z := train[i]
			diff := sigmoid(m.linear(z)) - ys[idx]
			for j := range m.Weights {
				m.Weights[j] -= opts.LearningRate * diff * z[j]
			}
			m.Bias -= opts.LearningRate * diff
		}
	}

	report := TrainReport{TrainSize: len(trainIdx), TestSize: len(testIdx)}
	if len(testIdx) > 0 {
		correct := 0
		for _, idx := range testIdx {
			if float64(m.Predict(xs[idx])) == ys[idx] {
				correct++
			}
		}
		report.Accuracy = float64(correct) / float64(len(testIdx))
	}
	m.Accuracy = report.Accuracy
	m.TrainedAt = time.Now().UTC()
	return m, report, nil
}

func checkClasses(samples []Sample) error {
	seen := make(map[int]bool)
	for _, s := range samples {
		if s.Label != 0 && s.Label != 1 {
			return fmt.Errorf("%w: label %d is not 0 or 1", domain.ErrInvalidInput, s.Label)
		}
		seen[s.Label] = true
	}
	if len(seen) < 2 {
		return fmt.Errorf("%w: got %d sample(s) in %d class(es)", domain.ErrInsufficientClasses, len(samples), len(seen))
	}
	return nil
}

func fitScaling(xs [][]float64, idx []int) (mean, scale []float64) {
	mean = make([]float64, domain.FeatureCount)
	scale = make([]float64, domain.FeatureCount)
	n := float64(len(idx))
	for _, i := range idx {
		for j, v := range xs[i] {
			mean[j] += v / n
		}
	}
	for _, i := range idx {
		for j, v := range xs[i] {
			d := v - mean[j]
			scale[j] += d * d / n
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j])
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	return mean, scale
}

// LoadSamples reads labelled samples from CSV. Two layouts are accepted:
//
//	Phrase,Label[,Path]           one sample per row, label 0/1 or true/false
//	RealPassword,Placeholder      two samples per row, labelled 1 and 0
//
// Header names are case-insensitive; blank cells are skipped.
func LoadSamples(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading CSV header: %w", domain.ErrInvalidInput, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	phraseCol, hasPhrase := cols["phrase"]
	labelCol, hasLabel := cols["label"]
	realCol, hasReal := cols["realpassword"]
	placeholderCol, hasPlaceholder := cols["placeholder"]
	pathCol, hasPath := cols["path"]

	var samples []Sample
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrInvalidInput, line, err)
		}

		switch {
		case hasPhrase && hasLabel:
			phrase := cell(rec, phraseCol)
			if phrase == "" {
				continue
			}
			label, err := parseLabel(cell(rec, labelCol))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", domain.ErrInvalidInput, line, err)
			}
			s := Sample{Text: phrase, Label: label}
			if hasPath {
				s.Path = cell(rec, pathCol)
			}
			samples = append(samples, s)
		case hasReal && hasPlaceholder:
			if v := cell(rec, realCol); v != "" {
				samples = append(samples, Sample{Text: v, Label: 1})
			}
			if v := cell(rec, placeholderCol); v != "" {
				samples = append(samples, Sample{Text: v, Label: 0})
			}
		default:
			return nil, fmt.Errorf("%w: CSV needs Phrase,Label or RealPassword,Placeholder columns", domain.ErrInvalidInput)
		}
	}
	return samples, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseLabel(s string) (int, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "secret":
		return 1, nil
	case "0", "false", "no", "placeholder":
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid label %q", s)
	}
	return n, nil
}

package classifier

import (
	"math"
	"strings"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driving"
)

// Ensure Classifier implements the interface.
var _ driving.SnippetClassifier = (*Classifier)(nil)

// ReasonUncorroborated is reported when RequireRuleMatch downgrades a verdict.
const ReasonUncorroborated = "no detection rule matched"

// Classifier runs the filter layer and then a scorer.
// It is safe for concurrent use when its scorer and screen are.
type Classifier struct {
	th     domain.ClassificationThresholds
	filter *Filter
	scorer driven.Scorer
	screen driven.SecretScreen
}

// Option configures a Classifier.
type Option func(*options)

type options struct {
	scorer driven.Scorer
	screen driven.SecretScreen
	allow  []string
}

// WithScorer replaces the default threshold scorer.
func WithScorer(s driven.Scorer) Option {
	return func(o *options) { o.scorer = s }
}

// WithSecretScreen attaches a rule-based screen to candidates.
func WithSecretScreen(s driven.SecretScreen) Option {
	return func(o *options) { o.screen = s }
}

// WithAllowList adds caller regular expressions that mark a snippet as
// a false positive.
func WithAllowList(patterns ...string) Option {
	return func(o *options) { o.allow = append(o.allow, patterns...) }
}

// New creates a classifier. It fails only when an allow-list pattern does
// not compile.
func New(th domain.ClassificationThresholds, opts ...Option) (*Classifier, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	f, err := NewFilter(th, o.allow)
	if err != nil {
		return nil, err
	}
	if o.scorer == nil {
		o.scorer = NewThresholdScorer(th.EntropyThreshold)
	}
	return &Classifier{th: th, filter: f, scorer: o.scorer, screen: o.screen}, nil
}

// Scorer returns the active scorer.
func (c *Classifier) Scorer() driven.Scorer {
	return c.scorer
}

// Classify returns the verdict for snippet taken from the file at path.
// It never fails; empty input is a false positive with zero features.
func (c *Classifier) Classify(snippet, path string) domain.Classification {
	text := strings.TrimSpace(strings.ToValidUTF8(snippet, ""))
	if text == "" {
		return domain.Classification{
			Verdict:  domain.VerdictFalsePositive,
			Features: domain.FeatureVector{},
			Reason:   ReasonEmpty,
		}
	}

	fv := Features(text, path)
	result := domain.Classification{Entropy: fv.Entropy, Features: fv}

	if !c.th.DisableFilters {
		if reason, rejected := c.filter.Check(text); rejected {
			result.Verdict = domain.VerdictFalsePositive
			result.Reason = reason
			return result
		}
	}

	score := c.scorer.Score(fv)
	result.Score = score
	result.Reason = c.scorer.Name()
	switch {
	case c.th.LowConfidenceMargin > 0 && math.Abs(score-0.5) < c.th.LowConfidenceMargin:
		result.Verdict = domain.VerdictLowConfidence
	case score >= 0.5:
		result.Verdict = domain.VerdictTruePositive
	default:
		result.Verdict = domain.VerdictFalsePositive
	}

	if c.screen != nil && result.Verdict != domain.VerdictFalsePositive {
		if id, ok := c.screen.Screen(text); ok {
			result.RuleID = id
		} else if c.th.RequireRuleMatch && result.Verdict == domain.VerdictTruePositive {
			result.Verdict = domain.VerdictLowConfidence
			result.Reason = ReasonUncorroborated
		}
	}
	return result
}

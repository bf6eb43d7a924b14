package domain

import "time"

// Default engine settings.
const (
	DefaultMaxAttempts       = 3
	DefaultFallbackWait      = 60 * time.Second
	DefaultMaxWait           = 10 * time.Minute
	DefaultTimeout           = 30 * time.Minute
	DefaultIdleTimeout       = 60 * time.Second
	DefaultWindowRadius      = 100
	DefaultConcurrency       = 1
	DefaultEntropyThreshold  = 4.0
	DefaultAssignmentEntropy = 3.5
	DefaultAnnotationWindow  = 80
	DefaultSearchRate        = 10.0 / 60.0
)

// RetryPolicy bounds how hard a single query is retried.
type RetryPolicy struct {
	// MaxAttempts is the per-query budget of backoff sleeps and transient retries.
	MaxAttempts int `json:"max_attempts" validate:"min=1,max=50"`

	// FallbackWait is used when a rate limit carries no usable wait hint.
	FallbackWait time.Duration `json:"fallback_wait" validate:"min=0"`

	// MaxWait caps a single backoff sleep.
	MaxWait time.Duration `json:"max_wait" validate:"min=0"`

	// RetryTransient retries network errors and 5xx responses.
	RetryTransient bool `json:"retry_transient"`
}

// ClassificationThresholds tunes the two classifier layers.
type ClassificationThresholds struct {
	// EntropyThreshold is the snippet entropy above which the threshold
	// scorer reports a true positive.
	EntropyThreshold float64 `json:"entropy_threshold" validate:"gt=0,lte=8"`

	// AssignmentEntropy is the value entropy at or below which an
	// assignment is treated as a placeholder.
	AssignmentEntropy float64 `json:"assignment_entropy" validate:"gte=0,lte=8"`

	// AnnotationWindow is how close, in characters, an allow-list
	// annotation must be to a candidate to suppress it.
	AnnotationWindow int `json:"annotation_window" validate:"min=0,max=10000"`

	// DisableFilters turns off the deterministic pre-filter layer.
	DisableFilters bool `json:"disable_filters"`

	// LowConfidenceMargin marks model scores within this distance of 0.5
	// as low confidence. Zero disables the band.
	LowConfidenceMargin float64 `json:"low_confidence_margin" validate:"gte=0,lt=0.5"`

	// RequireRuleMatch downgrades true positives that no detection rule
	// corroborates to low confidence.
	RequireRuleMatch bool `json:"require_rule_match"`
}

// IgnoreRules lists file paths that are never fetched.
type IgnoreRules struct {
	// Patterns are regular expressions matched against the item path.
	Patterns []string `json:"patterns"`

	// Globs are doublestar globs matched against the item path.
	Globs []string `json:"globs"`

	// Filenames are exact paths or base names.
	Filenames []string `json:"filenames"`
}

// IsEmpty reports whether no rule is configured.
func (r IgnoreRules) IsEmpty() bool {
	return len(r.Patterns) == 0 && len(r.Globs) == 0 && len(r.Filenames) == 0
}

// ScanSettings configures one run of the orchestrator.
type ScanSettings struct {
	Retry  RetryPolicy `json:"retry"`
	Ignore IgnoreRules `json:"ignore"`

	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration `json:"timeout" validate:"min=0"`

	// IdleTimeout is how long a run may go without a new finding.
	IdleTimeout time.Duration `json:"idle_timeout" validate:"min=0"`

	// AbandonOnIdle ends the run once IdleTimeout elapses.
	AbandonOnIdle bool `json:"abandon_on_idle"`

	// WindowRadius is the number of characters kept either side of a match.
	WindowRadius int `json:"window_radius" validate:"min=0,max=5000"`

	// Concurrency is the number of parallel credential streams.
	Concurrency int `json:"concurrency" validate:"min=1,max=32"`
}

// DefaultRetryPolicy returns the default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    DefaultMaxAttempts,
		FallbackWait:   DefaultFallbackWait,
		MaxWait:        DefaultMaxWait,
		RetryTransient: true,
	}
}

// DefaultClassificationThresholds returns the default thresholds.
func DefaultClassificationThresholds() ClassificationThresholds {
	return ClassificationThresholds{
		EntropyThreshold:  DefaultEntropyThreshold,
		AssignmentEntropy: DefaultAssignmentEntropy,
		AnnotationWindow:  DefaultAnnotationWindow,
	}
}

// DefaultScanSettings returns the default scan settings.
func DefaultScanSettings() ScanSettings {
	return ScanSettings{
		Retry:        DefaultRetryPolicy(),
		Timeout:      DefaultTimeout,
		IdleTimeout:  DefaultIdleTimeout,
		WindowRadius: DefaultWindowRadius,
		Concurrency:  DefaultConcurrency,
	}
}

// GitHubSettings configures the code search client.
type GitHubSettings struct {
	// Tokens are credentials from the config file, as "name=token" or bare tokens.
	Tokens []string `json:"-"`

	// BaseURL overrides the API endpoint. Empty means api.github.com.
	BaseURL string `json:"base_url" validate:"omitempty,url"`

	// SearchRate is the proactive code search throttle in requests per second.
	SearchRate float64 `json:"search_rate" validate:"gte=0"`
}

// ClassifierSettings selects the classifier strategies.
type ClassifierSettings struct {
	Thresholds ClassificationThresholds `json:"thresholds"`

	// ModelPath points at a trained model. Empty uses the threshold scorer.
	ModelPath string `json:"model_path"`

	// Gitleaks enables rule-based corroboration of findings.
	Gitleaks bool `json:"gitleaks"`

	// AllowList holds regular expressions for known-safe values.
	AllowList []string `json:"allow_list"`
}

// AppSettings is the complete, validated application configuration.
type AppSettings struct {
	GitHub      GitHubSettings     `json:"github"`
	Scan        ScanSettings       `json:"scan"`
	Classifier  ClassifierSettings `json:"classifier"`
	StoragePath string             `json:"storage_path"`
}

// DefaultAppSettings returns the defaults used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		GitHub: GitHubSettings{SearchRate: DefaultSearchRate},
		Scan:   DefaultScanSettings(),
		Classifier: ClassifierSettings{
			Thresholds: DefaultClassificationThresholds(),
		},
	}
}

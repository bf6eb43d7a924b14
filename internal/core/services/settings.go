package services

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyGitHubTokens      = "github.tokens"
	keyGitHubBaseURL     = "github.base_url"
	keyGitHubSearchRate  = "github.search_rate"
	keyScanTimeout       = "scan.timeout"
	keyScanIdleTimeout   = "scan.idle_timeout"
	keyScanAbandonOnIdle = "scan.abandon_on_idle"
	keyScanWindowRadius  = "scan.window_radius"
	keyScanConcurrency   = "scan.concurrency"
	keyRetryMaxAttempts  = "retry.max_attempts"
	keyRetryFallbackWait = "retry.fallback_wait"
	keyRetryMaxWait      = "retry.max_wait"
	keyRetryTransient    = "retry.retry_transient"
	keyEntropyThreshold  = "classifier.entropy_threshold"
	keyAssignmentEntropy = "classifier.assignment_entropy_threshold"
	keyAnnotationWindow  = "classifier.annotation_window"
	keyDisableFilters    = "classifier.disable_filters"
	keyLowConfidence     = "classifier.low_confidence_margin"
	keyRequireRuleMatch  = "classifier.require_rule_match"
	keyModelPath         = "classifier.model_path"
	keyGitleaks          = "classifier.gitleaks"
	keyIgnorePatterns    = "ignore.patterns"
	keyIgnoreGlobs       = "ignore.globs"
	keyIgnoreFilenames   = "ignore.filenames"
	keyAllowList         = "allowlist.patterns"
	keyStoragePath       = "storage.path"
)

type valueKind int

const (
	kindString valueKind = iota
	kindList
	kindInt
	kindFloat
	kindBool
	kindDuration
)

// settingKinds lists every key Set accepts and how its value is parsed.
var settingKinds = map[string]valueKind{
	keyGitHubTokens:      kindList,
	keyGitHubBaseURL:     kindString,
	keyGitHubSearchRate:  kindFloat,
	keyScanTimeout:       kindDuration,
	keyScanIdleTimeout:   kindDuration,
	keyScanAbandonOnIdle: kindBool,
	keyScanWindowRadius:  kindInt,
	keyScanConcurrency:   kindInt,
	keyRetryMaxAttempts:  kindInt,
	keyRetryFallbackWait: kindDuration,
	keyRetryMaxWait:      kindDuration,
	keyRetryTransient:    kindBool,
	keyEntropyThreshold:  kindFloat,
	keyAssignmentEntropy: kindFloat,
	keyAnnotationWindow:  kindInt,
	keyDisableFilters:    kindBool,
	keyLowConfidence:     kindFloat,
	keyRequireRuleMatch:  kindBool,
	keyModelPath:         kindString,
	keyGitleaks:          kindBool,
	keyIgnorePatterns:    kindList,
	keyIgnoreGlobs:       kindList,
	keyIgnoreFilenames:   kindList,
	keyAllowList:         kindList,
	keyStoragePath:       kindString,
}

var validate = validator.New()

// SettingKeys returns every configurable key, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService reads typed application settings from a config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get builds the application settings, falling back to defaults for
// anything not configured, and validates the result.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.read()
	if err := ValidateAppSettings(settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// IgnoreRules reads only the ignore rules. Used when the config file
// changes during a scan.
func (s *SettingsService) IgnoreRules() domain.IgnoreRules {
	return domain.IgnoreRules{
		Patterns:  s.configStore.GetStringSlice(keyIgnorePatterns),
		Globs:     s.configStore.GetStringSlice(keyIgnoreGlobs),
		Filenames: s.configStore.GetStringSlice(keyIgnoreFilenames),
	}
}

// Reload re-reads the backing store.
func (s *SettingsService) Reload() error {
	if err := s.configStore.Load(); err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	return nil
}

// Set parses raw according to the key's type and stores it. Lists are comma
// separated. A value that makes the settings invalid is rolled back and the
// validation error returned.
func (s *SettingsService) Set(key, raw string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value, err := parseSetting(kind, raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	prev, existed := s.configStore.Get(key)
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	if _, verr := s.Get(); verr != nil {
		// The port has no delete; an absent key is restored as its default.
		if !existed {
			prev = s.defaultValue(key)
		}
		if err := s.configStore.Set(key, prev); err != nil {
			return errors.Join(verr, fmt.Errorf("restore %s: %w", key, err))
		}
		return verr
	}
	return nil
}

// AddToken appends one credential entry, "name=token" or a bare token, to
// the configured tokens.
func (s *SettingsService) AddToken(entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" || strings.Contains(entry, ",") {
		return fmt.Errorf("%w: token must be non-empty and contain no commas", domain.ErrInvalidInput)
	}
	tokens := append(slices.Clone(s.configStore.GetStringSlice(keyGitHubTokens)), entry)
	return s.Set(keyGitHubTokens, strings.Join(tokens, ","))
}

func parseSetting(kind valueKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindList:
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case kindInt:
		return strconv.Atoi(raw)
	case kindFloat:
		return strconv.ParseFloat(raw, 64)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindDuration:
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, err
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// defaultValue is the stored form of a key's default.
func (s *SettingsService) defaultValue(key string) any {
	d := domain.DefaultAppSettings()
	switch key {
	case keyGitHubSearchRate:
		return d.GitHub.SearchRate
	case keyScanTimeout:
		return d.Scan.Timeout.String()
	case keyScanIdleTimeout:
		return d.Scan.IdleTimeout.String()
	case keyScanAbandonOnIdle:
		return d.Scan.AbandonOnIdle
	case keyScanWindowRadius:
		return d.Scan.WindowRadius
	case keyScanConcurrency:
		return d.Scan.Concurrency
	case keyRetryMaxAttempts:
		return d.Scan.Retry.MaxAttempts
	case keyRetryFallbackWait:
		return d.Scan.Retry.FallbackWait.String()
	case keyRetryMaxWait:
		return d.Scan.Retry.MaxWait.String()
	case keyRetryTransient:
		return d.Scan.Retry.RetryTransient
	case keyEntropyThreshold:
		return d.Classifier.Thresholds.EntropyThreshold
	case keyAssignmentEntropy:
		return d.Classifier.Thresholds.AssignmentEntropy
	case keyAnnotationWindow:
		return d.Classifier.Thresholds.AnnotationWindow
	case keyDisableFilters:
		return d.Classifier.Thresholds.DisableFilters
	case keyLowConfidence:
		return d.Classifier.Thresholds.LowConfidenceMargin
	case keyRequireRuleMatch:
		return d.Classifier.Thresholds.RequireRuleMatch
	case keyGitleaks:
		return d.Classifier.Gitleaks
	}
	if settingKinds[key] == kindList {
		return []string{}
	}
	return ""
}

// Path returns the location of the backing config.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) read() domain.AppSettings {
	d := domain.DefaultAppSettings()

	d.GitHub = domain.GitHubSettings{
		Tokens:     s.configStore.GetStringSlice(keyGitHubTokens),
		BaseURL:    s.configStore.GetString(keyGitHubBaseURL),
		SearchRate: s.getFloat(keyGitHubSearchRate, d.GitHub.SearchRate),
	}

	scan := &d.Scan
	scan.Timeout = s.getDuration(keyScanTimeout, scan.Timeout)
	scan.IdleTimeout = s.getDuration(keyScanIdleTimeout, scan.IdleTimeout)
	scan.AbandonOnIdle = s.getBool(keyScanAbandonOnIdle, scan.AbandonOnIdle)
	scan.WindowRadius = s.getInt(keyScanWindowRadius, scan.WindowRadius)
	scan.Concurrency = s.getInt(keyScanConcurrency, scan.Concurrency)
	scan.Retry.MaxAttempts = s.getInt(keyRetryMaxAttempts, scan.Retry.MaxAttempts)
	scan.Retry.FallbackWait = s.getDuration(keyRetryFallbackWait, scan.Retry.FallbackWait)
	scan.Retry.MaxWait = s.getDuration(keyRetryMaxWait, scan.Retry.MaxWait)
	scan.Retry.RetryTransient = s.getBool(keyRetryTransient, scan.Retry.RetryTransient)
	scan.Ignore = s.IgnoreRules()

	th := &d.Classifier.Thresholds
	th.EntropyThreshold = s.getFloat(keyEntropyThreshold, th.EntropyThreshold)
	th.AssignmentEntropy = s.getFloat(keyAssignmentEntropy, th.AssignmentEntropy)
	th.AnnotationWindow = s.getInt(keyAnnotationWindow, th.AnnotationWindow)
	th.DisableFilters = s.getBool(keyDisableFilters, th.DisableFilters)
	th.LowConfidenceMargin = s.getFloat(keyLowConfidence, th.LowConfidenceMargin)
	th.RequireRuleMatch = s.getBool(keyRequireRuleMatch, th.RequireRuleMatch)

	d.Classifier.ModelPath = s.configStore.GetString(keyModelPath)
	d.Classifier.Gitleaks = s.getBool(keyGitleaks, d.Classifier.Gitleaks)
	d.Classifier.AllowList = s.configStore.GetStringSlice(keyAllowList)
	d.StoragePath = s.configStore.GetString(keyStoragePath)

	return d
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	// Unparseable strings keep the default rather than becoming zero.
	if str := s.configStore.GetString(key); str != "" {
		if _, err := time.ParseDuration(str); err != nil {
			return defaultVal
		}
	}
	return s.configStore.GetDuration(key)
}

// ValidateAppSettings checks every field against its validate tag.
func ValidateAppSettings(settings domain.AppSettings) error {
	return validateStruct(settings)
}

// ValidateScanSettings checks the settings of a single run.
func ValidateScanSettings(settings domain.ScanSettings) error {
	return validateStruct(settings)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("%s: rule '%s'", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(msgs, "; "))
}

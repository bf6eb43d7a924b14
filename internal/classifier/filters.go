package classifier

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// Filter reasons reported in Classification.Reason.
const (
	ReasonEmpty            = "empty snippet"
	ReasonAnglePlaceholder = "angle-bracket placeholder"
	ReasonTemplateVar      = "template variable"
	ReasonAnnotation       = "allow-list annotation"
	ReasonAllowList        = "allow-list pattern"
	ReasonEmptyValue       = "empty value"
	ReasonPlaceholderValue = "placeholder value"
	ReasonNumericValue     = "numeric value"
	ReasonVariableRef      = "variable reference"
	ReasonLowEntropyValue  = "low-entropy value"
)

var (
	anglePlaceholderRe = regexp.MustCompile(`<[A-Za-z][A-Za-z0-9_\-. ]{0,63}>`)
	templateVarRe      = regexp.MustCompile(`\$\{[^}]*\}`)
	annotationRe       = regexp.MustCompile(
		`(?i)pragma:\s*(?:allowlist|whitelist)(?:\s+nextline)?\s+secret|gitleaks:allow`)
)

// placeholderValues are literal values that never hold a real secret.
var placeholderValues = map[string]bool{
	"null": true, "none": true, "nil": true, "undefined": true, "empty": true,
	"test": true, "testing": true, "example": true, "sample": true, "dummy": true,
	"placeholder": true, "changeme": true, "change_me": true, "change-me": true,
	"password": true, "passwd": true, "secret": true, "token": true, "default": true,
	"redacted": true, "todo": true, "tbd": true, "fixme": true, "xxx": true,
	"xxxx": true, "xxxxxx": true, "***": true, "******": true, "true": true, "false": true,
}

// Filter is the deterministic first classification layer.
type Filter struct {
	assignmentEntropy float64
	annotationWindow  int
	allow             []*regexp.Regexp
}

// NewFilter compiles the caller's allow-list patterns.
func NewFilter(th domain.ClassificationThresholds, allowPatterns []string) (*Filter, error) {
	f := &Filter{
		assignmentEntropy: th.AssignmentEntropy,
		annotationWindow:  th.AnnotationWindow,
	}
	for _, p := range allowPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: allow-list pattern %q: %w", domain.ErrConfiguration, p, err)
		}
		f.allow = append(f.allow, re)
	}
	return f, nil
}

// Check returns the reason the snippet is a false positive, or ok=false
// when it survives every rule.
func (f *Filter) Check(snippet string) (reason string, rejected bool) {
	if strings.TrimSpace(snippet) == "" {
		return ReasonEmpty, true
	}
	if anglePlaceholderRe.MatchString(snippet) {
		return ReasonAnglePlaceholder, true
	}
	if templateVarRe.MatchString(snippet) {
		return ReasonTemplateVar, true
	}

	assignments := Assignments(snippet)
	if f.annotated(snippet, assignments) {
		return ReasonAnnotation, true
	}
	for _, re := range f.allow {
		if re.MatchString(snippet) {
			return ReasonAllowList, true
		}
	}

	// Only credential-named assignments are judged; the snippet survives
	// if any of them carries a plausible value.
	var weakest string
	judged := 0
	for _, a := range assignments {
		if !IsSecretName(a.Name) {
			continue
		}
		judged++
		r, weak := f.weakValue(a)
		if !weak {
			return "", false
		}
		if weakest == "" {
			weakest = r
		}
	}
	if judged > 0 {
		return weakest, true
	}
	return "", false
}

// annotated reports whether an allow-list annotation sits within the
// annotation window of a credential assignment, or anywhere in a snippet
// that has none.
func (f *Filter) annotated(snippet string, assignments []Assignment) bool {
	locs := annotationRe.FindAllStringIndex(snippet, -1)
	if len(locs) == 0 {
		return false
	}
	var targets []Assignment
	for _, a := range assignments {
		if IsSecretName(a.Name) {
			targets = append(targets, a)
		}
	}
	if len(targets) == 0 {
		return true
	}
	for _, loc := range locs {
		for _, a := range targets {
			if gap(loc[0], loc[1], a.Start, a.End) <= f.annotationWindow {
				return true
			}
		}
	}
	return false
}

func gap(aStart, aEnd, bStart, bEnd int) int {
	switch {
	case aEnd <= bStart:
		return bStart - aEnd
	case bEnd <= aStart:
		return aStart - bEnd
	default:
		return 0
	}
}

func (f *Filter) weakValue(a Assignment) (string, bool) {
	v := strings.TrimSpace(a.Value)
	if v == "" {
		return ReasonEmptyValue, true
	}
	lower := strings.ToLower(v)
	if placeholderValues[lower] || strings.HasPrefix(lower, "your_") || strings.HasPrefix(lower, "your-") {
		return ReasonPlaceholderValue, true
	}
	if isNumeric(v) {
		return ReasonNumericValue, true
	}
	if strings.HasPrefix(v, "$") || IsEnvVarName(v) {
		return ReasonVariableRef, true
	}

	// A value too short to ever exceed the threshold is judged together
	// with its name.
	target := v
	if maxEntropy(v) < f.assignmentEntropy {
		target = a.Expr()
	}
	if ShannonEntropy(target) <= f.assignmentEntropy {
		return ReasonLowEntropyValue, true
	}
	return "", false
}

func isNumeric(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == '-' || r == '+' || r == '_':
		default:
			return false
		}
	}
	return digits > 0
}

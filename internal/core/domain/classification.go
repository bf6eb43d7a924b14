package domain

// Verdict is the outcome of classifying one snippet.
type Verdict string

// Verdicts.
const (
	// VerdictTruePositive means the snippet likely contains a real secret.
	VerdictTruePositive Verdict = "true_positive"

	// VerdictFalsePositive means the snippet is a placeholder or noise.
	VerdictFalsePositive Verdict = "false_positive"

	// VerdictLowConfidence means the scorer could not decide either way.
	VerdictLowConfidence Verdict = "low_confidence"
)

// IsValid returns true if the verdict is recognised.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictTruePositive, VerdictFalsePositive, VerdictLowConfidence:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// Short returns a compact label for tables.
func (v Verdict) Short() string {
	switch v {
	case VerdictTruePositive:
		return "TP"
	case VerdictFalsePositive:
		return "FP"
	case VerdictLowConfidence:
		return "LOW"
	default:
		return "?"
	}
}

// ParseVerdict accepts the full names and the short labels (tp, fp, low).
func ParseVerdict(s string) (Verdict, bool) {
	switch s {
	case "tp", "TP", string(VerdictTruePositive):
		return VerdictTruePositive, true
	case "fp", "FP", string(VerdictFalsePositive):
		return VerdictFalsePositive, true
	case "low", "LOW", string(VerdictLowConfidence):
		return VerdictLowConfidence, true
	default:
		return "", false
	}
}

// FileKind is the coarse type of the file a snippet came from.
type FileKind string

// File kinds.
const (
	FileKindConfig FileKind = "config"
	FileKindSource FileKind = "source"
	FileKindLog    FileKind = "log"
	FileKindOther  FileKind = "other"
)

// FeatureVector is the numeric description of a snippet used by scorers.
type FeatureVector struct {
	Entropy      float64  `json:"entropy"`
	Length       float64  `json:"length"`
	DigitRatio   float64  `json:"digit_ratio"`
	AlphaRatio   float64  `json:"alpha_ratio"`
	SpecialRatio float64  `json:"special_ratio"`
	FileKind     FileKind `json:"file_kind"`

	// HasAssignment is true when the snippet contains NAME=value or NAME: value.
	HasAssignment bool `json:"has_assignment"`

	// HasSetterCall is true when the snippet calls a credential setter.
	HasSetterCall bool `json:"has_setter_call"`
}

// FeatureCount is the length of the slice returned by Values.
const FeatureCount = 11

// Values returns the vector as a fixed-order slice:
// entropy, length, digit, alpha, special ratios, the four file-kind flags,
// then the assignment and setter flags.
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.Entropy,
		f.Length,
		f.DigitRatio,
		f.AlphaRatio,
		f.SpecialRatio,
		flag(f.FileKind == FileKindConfig),
		flag(f.FileKind == FileKindSource),
		flag(f.FileKind == FileKindLog),
		flag(f.FileKind == FileKindOther || f.FileKind == ""),
		flag(f.HasAssignment),
		flag(f.HasSetterCall),
	}
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Classification is the verdict for one snippet and the evidence behind it.
type Classification struct {
	Verdict  Verdict       `json:"verdict"`
	Entropy  float64       `json:"entropy"`
	Score    float64       `json:"score"`
	Features FeatureVector `json:"features"`

	// Reason names the filter or scorer that decided the verdict.
	Reason string `json:"reason"`

	// RuleID is the matching secret-detection rule, when one corroborates.
	RuleID string `json:"rule_id,omitempty"`
}

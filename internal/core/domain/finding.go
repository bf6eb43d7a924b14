package domain

import "time"

// Finding is one classified snippet together with where it was found.
type Finding struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`

	// RunID links the finding to the scan that produced it.
	RunID string `json:"run_id"`

	Category    Category `json:"category"`
	Query       string   `json:"query"`
	Description string   `json:"description"`

	Repository string `json:"repository"`
	Path       string `json:"path"`
	URL        string `json:"url"`

	Snippet string  `json:"snippet"`
	Term    string  `json:"term,omitempty"`
	Verdict Verdict `json:"verdict"`
	Entropy float64 `json:"entropy"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason,omitempty"`
	RuleID  string  `json:"rule_id,omitempty"`

	FoundAt time.Time `json:"found_at"`
}

// FindingFilter narrows a findings listing.
type FindingFilter struct {
	RunID      string
	Verdict    Verdict
	Repository string
	Limit      int
}

// Matches reports whether the finding satisfies the filter.
func (f FindingFilter) Matches(finding Finding) bool {
	if f.RunID != "" && finding.RunID != f.RunID {
		return false
	}
	if f.Verdict != "" && finding.Verdict != f.Verdict {
		return false
	}
	if f.Repository != "" && finding.Repository != f.Repository {
		return false
	}
	return true
}

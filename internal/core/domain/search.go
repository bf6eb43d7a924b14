package domain

import (
	"fmt"
	"strings"
	"time"
)

// SearchResultItem identifies one file returned by a code search.
type SearchResultItem struct {
	// Repository is the full "owner/name" of the repository.
	Repository string `json:"repository"`

	// Path is the file path within the repository.
	Path string `json:"path"`

	// SHA is the blob SHA reported by the search API, if any.
	SHA string `json:"sha,omitempty"`

	// HTMLURL is the web link to the file, if the API returned one.
	HTMLURL string `json:"html_url,omitempty"`
}

// Owner returns the owner part of Repository.
func (i SearchResultItem) Owner() string {
	owner, _, _ := strings.Cut(i.Repository, "/")
	return owner
}

// Name returns the repository name part of Repository.
func (i SearchResultItem) Name() string {
	_, name, _ := strings.Cut(i.Repository, "/")
	return name
}

// WebURL returns HTMLURL, or a github.com blob link built from the item.
func (i SearchResultItem) WebURL() string {
	if i.HTMLURL != "" {
		return i.HTMLURL
	}
	ref := i.SHA
	if ref == "" {
		ref = "HEAD"
	}
	return fmt.Sprintf("https://github.com/%s/blob/%s/%s", i.Repository, ref, i.Path)
}

// QuotaStatus is the remaining search quota of one credential.
type QuotaStatus struct {
	// Remaining is the number of search requests left in the current window.
	Remaining int `json:"remaining"`

	// Limit is the size of the window, when known.
	Limit int `json:"limit,omitempty"`

	// ResetAt is when the window resets. Zero when unknown.
	ResetAt time.Time `json:"reset_at,omitempty"`

	// Wait is how long until the reset, floored at zero.
	Wait time.Duration `json:"wait"`

	// Known is false when the quota could not be read.
	Known bool `json:"known"`
}

// OutcomeKind tags the result of a remote call.
type OutcomeKind int

// Outcome kinds.
const (
	// OutcomeOK means the call succeeded.
	OutcomeOK OutcomeKind = iota

	// OutcomeRateLimited means the credential's quota is exhausted.
	OutcomeRateLimited

	// OutcomeFailed means the call failed for any other reason.
	OutcomeFailed
)

// String returns the string representation.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SearchOutcome is the tagged result of a code-search request.
// Exactly one of Items (OK), Wait (RateLimited) or Err (Failed) is meaningful.
type SearchOutcome struct {
	Kind  OutcomeKind
	Items []SearchResultItem

	// Wait is how long to back off before the same credential may retry.
	Wait time.Duration

	// StatusCode is the HTTP status for failures, zero for transport errors.
	StatusCode int

	// Err describes the rate limit or failure.
	Err error
}

// SearchOK builds a successful outcome.
func SearchOK(items []SearchResultItem) SearchOutcome {
	return SearchOutcome{Kind: OutcomeOK, Items: items}
}

// SearchRateLimited builds a rate-limited outcome.
func SearchRateLimited(wait time.Duration, err error) SearchOutcome {
	if wait < 0 {
		wait = 0
	}
	return SearchOutcome{Kind: OutcomeRateLimited, Wait: wait, Err: err}
}

// SearchFailed builds a failed outcome.
func SearchFailed(status int, err error) SearchOutcome {
	return SearchOutcome{Kind: OutcomeFailed, StatusCode: status, Err: err}
}

// Transient reports whether a failure is worth retrying: transport errors
// and server-side errors.
func (o SearchOutcome) Transient() bool {
	return o.Kind == OutcomeFailed && (o.StatusCode == 0 || o.StatusCode >= 500)
}

// ContentOutcome is the tagged result of a file content fetch.
type ContentOutcome struct {
	Kind OutcomeKind

	// Content is the decoded file text. Empty when Available is false.
	Content string

	// Available is false when the file is gone, a directory, or undecodable.
	Available bool

	Wait       time.Duration
	StatusCode int
	Err        error
}

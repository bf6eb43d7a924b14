package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Configuration Errors.

	// ErrConfiguration indicates the engine cannot start with the given setup.
	// It is raised before any query is issued.
	ErrConfiguration = errors.New("configuration error")

	// ErrNoCredentials indicates the credential pool is empty.
	ErrNoCredentials = errors.New("no credentials configured")

	// ErrInvalidQuery indicates a catalog entry cannot be sent as a search.
	ErrInvalidQuery = errors.New("invalid search query")

	// Remote API Errors.

	// ErrRateLimited indicates the remote quota for the active credential is exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrRequestFailed indicates a non-success response that is not a rate limit.
	ErrRequestFailed = errors.New("request failed")

	// ErrContentUnavailable indicates a file could not be fetched or decoded.
	ErrContentUnavailable = errors.New("content unavailable")

	// Classification Errors.

	// ErrClassificationDegraded indicates the configured model could not be
	// loaded and the threshold scorer is used instead.
	ErrClassificationDegraded = errors.New("classification degraded to threshold scorer")

	// ErrInsufficientClasses indicates training data holds a single label.
	ErrInsufficientClasses = errors.New("training data needs at least two label classes")
)

package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gitsleuth-cli/internal/logger"
)

// Verify interface compliance.
var _ driven.CodeSearchClient = (*Client)(nil)

// Client wraps the go-github client for a single credential.
type Client struct {
	gh      *gh.Client
	cred    domain.Credential
	cfg     Config
	search  *RateLimiter
	content *RateLimiter
	cache   *ttlcache.Cache[string, string]
	now     func() time.Time
}

// NewClient creates a client authenticating with cred.
// cache may be nil, in which case file contents are always fetched.
func NewClient(cred domain.Credential, cfg Config, cache *ttlcache.Cache[string, string]) (*Client, error) {
	if cred.IsZero() {
		return nil, fmt.Errorf("github client: %w", domain.ErrNoCredentials)
	}
	cfg = cfg.withDefaults()

	ctx := context.Background()
	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cred.Token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = cfg.Timeout

	client := gh.NewClient(tc)
	if base := cfg.baseURL(); base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github client: base url %q: %w", cfg.BaseURL, domain.ErrConfiguration)
		}
		client.BaseURL = u
	}

	return &Client{
		gh:      client,
		cred:    cred,
		cfg:     cfg,
		search:  NewRateLimiter(cfg.SearchRate, cfg.SearchBurst),
		content: NewRateLimiter(cfg.ContentRate, cfg.SearchBurst),
		cache:   cache,
		now:     time.Now,
	}, nil
}

// Credential returns the credential the client authenticates with.
func (c *Client) Credential() domain.Credential {
	return c.cred
}

// SearchLimiter returns the limiter tracking the search quota.
func (c *Client) SearchLimiter() *RateLimiter {
	return c.search
}

// CheckQuota reads the search quota from the rate_limit endpoint.
func (c *Client) CheckQuota(ctx context.Context) (domain.QuotaStatus, error) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		status := c.search.Snapshot()
		return domain.QuotaStatus{Remaining: 0, Wait: status.Wait, Known: false}, c.wrapError(err, "get rate limit")
	}

	search := limits.GetSearch()
	if search == nil {
		return domain.QuotaStatus{}, fmt.Errorf("get rate limit: no search resource: %w", domain.ErrRequestFailed)
	}

	reset := search.Reset.Time
	wait := time.Duration(0)
	if search.Remaining == 0 {
		wait = floor(reset.Sub(c.now()))
	}
	return domain.QuotaStatus{
		Remaining: search.Remaining,
		Limit:     search.Limit,
		ResetAt:   reset,
		Wait:      wait,
		Known:     true,
	}, nil
}

// Search runs one code search query and collects up to MaxPages of results.
func (c *Client) Search(ctx context.Context, query string) domain.SearchOutcome {
	if err := c.search.Wait(ctx); err != nil {
		return domain.SearchFailed(0, fmt.Errorf("rate limit wait: %w", err))
	}

	opts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: c.cfg.PerPage},
	}

	var items []domain.SearchResultItem
	for page := 0; page < c.cfg.MaxPages; page++ {
		if page > 0 {
			if err := c.search.Wait(ctx); err != nil {
				return domain.SearchFailed(0, fmt.Errorf("rate limit wait: %w", err))
			}
		}

		result, resp, err := c.gh.Search.Code(ctx, query, opts)
		c.updateFromResponse(c.search, resp)
		if err != nil {
			kind, wait, status, wrapped := c.classify(err, "search code")
			if kind == domain.OutcomeRateLimited {
				return domain.SearchRateLimited(wait, wrapped)
			}
			return domain.SearchFailed(status, wrapped)
		}

		for _, r := range result.CodeResults {
			items = append(items, domain.SearchResultItem{
				Repository: r.GetRepository().GetFullName(),
				Path:       r.GetPath(),
				SHA:        r.GetSHA(),
				HTMLURL:    r.GetHTMLURL(),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logger.Debug("search %q via %s: %d items", logger.Truncate(query, 80), c.cred.Name, len(items))
	return domain.SearchOK(items)
}

// FetchContent downloads and decodes the file behind a search result.
// Missing files, directories and undecodable blobs are reported as unavailable.
func (c *Client) FetchContent(ctx context.Context, item domain.SearchResultItem) domain.ContentOutcome {
	key := cacheKey(item)
	if c.cache != nil {
		if cached := c.cache.Get(key); cached != nil {
			return domain.ContentOutcome{Kind: domain.OutcomeOK, Content: cached.Value(), Available: true}
		}
	}

	if err := c.content.Wait(ctx); err != nil {
		return domain.ContentOutcome{Kind: domain.OutcomeFailed, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	file, _, resp, err := c.gh.Repositories.GetContents(ctx, item.Owner(), item.Name(), item.Path, nil)
	c.updateFromResponse(c.content, resp)
	if err != nil {
		kind, wait, status, wrapped := c.classify(err, "get contents")
		switch {
		case kind == domain.OutcomeRateLimited:
			return domain.ContentOutcome{Kind: kind, Wait: wait, Err: wrapped}
		case status == http.StatusNotFound:
			return domain.ContentOutcome{Kind: domain.OutcomeOK, Available: false, StatusCode: status}
		default:
			return domain.ContentOutcome{Kind: domain.OutcomeFailed, StatusCode: status, Err: wrapped}
		}
	}
	if file == nil {
		return domain.ContentOutcome{Kind: domain.OutcomeOK, Available: false}
	}

	text, err := file.GetContent()
	if err != nil {
		logger.Debug("decode %s/%s: %v", item.Repository, item.Path, err)
		return domain.ContentOutcome{Kind: domain.OutcomeOK, Available: false}
	}

	if c.cache != nil {
		c.cache.Set(key, text, ttlcache.DefaultTTL)
	}
	return domain.ContentOutcome{Kind: domain.OutcomeOK, Content: text, Available: true}
}

func (c *Client) updateFromResponse(limiter *RateLimiter, resp *gh.Response) {
	if resp != nil {
		limiter.UpdateFromResponse(resp.Response)
	}
}

// classify sorts a go-github error into an outcome kind with its backoff
// and status code, and converts it to our error types.
func (c *Client) classify(err error, operation string) (domain.OutcomeKind, time.Duration, int, error) {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		wait := c.search.WaitFor(rateLimitErr.Response)
		if wait == 0 && !rateLimitErr.Rate.Reset.IsZero() {
			wait = floor(rateLimitErr.Rate.Reset.Sub(c.now()))
		}
		return domain.OutcomeRateLimited, wait, http.StatusForbidden, &RateLimitError{
			Wait:      wait,
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var wait time.Duration
		if abuseErr.RetryAfter != nil {
			wait = floor(*abuseErr.RetryAfter)
		} else {
			wait = c.search.WaitFor(abuseErr.Response)
		}
		return domain.OutcomeRateLimited, wait, http.StatusForbidden, &RateLimitError{Wait: wait}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		status := ghErr.Response.StatusCode
		if IsRateLimitResponse(ghErr.Response, ghErr.Message) {
			wait := c.search.WaitFor(ghErr.Response)
			return domain.OutcomeRateLimited, wait, status, &RateLimitError{Wait: wait}
		}
		apiErr := &APIError{StatusCode: status, Message: ghErr.Message}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return domain.OutcomeFailed, 0, status, apiErr
	}

	return domain.OutcomeFailed, 0, 0, fmt.Errorf("%s: %w", operation, err)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	_, _, _, wrapped := c.classify(err, operation)
	return wrapped
}

func cacheKey(item domain.SearchResultItem) string {
	if item.SHA != "" {
		return item.Repository + "@" + item.SHA + ":" + item.Path
	}
	return item.Repository + ":" + item.Path
}

package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/gitsleuth-cli/internal/catalog"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gitsleuth-cli/internal/extractor"
	"github.com/custodia-labs/gitsleuth-cli/internal/logger"
)

// Ensure ScanOrchestrator implements the interface.
var _ driving.ScanService = (*ScanOrchestrator)(nil)

// transientBackoff is the first delay before retrying a transient failure.
// It doubles on every further attempt.
const transientBackoff = time.Second

// Sleeper pauses for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// sleepContext is the default Sleeper.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ScanOption configures a ScanOrchestrator.
type ScanOption func(*ScanOrchestrator)

// WithClock replaces the wall clock used for timeouts and timestamps.
func WithClock(now func() time.Time) ScanOption {
	return func(o *ScanOrchestrator) { o.now = now }
}

// WithSleeper replaces the function used for rate-limit backoff.
func WithSleeper(s Sleeper) ScanOption {
	return func(o *ScanOrchestrator) { o.sleep = s }
}

// WithIDGenerator replaces the run and finding ID generator.
func WithIDGenerator(f func() string) ScanOption {
	return func(o *ScanOrchestrator) { o.newID = f }
}

// ScanOrchestrator runs a query catalog against the code search API.
//
// Queries are handed out in catalog order to one stream per credential
// (bounded by the configured concurrency). A stream searches, fetches every
// result that is not ignored, extracts snippets and classifies them. Rate
// limits rotate to the next credential in the pool; once every credential
// has been tried the stream backs off.
type ScanOrchestrator struct {
	pool       driven.CredentialPool
	clients    driven.ClientFactory
	classifier driving.SnippetClassifier

	now   func() time.Time
	sleep Sleeper
	newID func() string

	mu     sync.RWMutex
	state  domain.RunState
	filter atomic.Pointer[PathFilter]
}

// NewScanOrchestrator creates a new scan orchestrator.
func NewScanOrchestrator(
	pool driven.CredentialPool,
	clients driven.ClientFactory,
	classifier driving.SnippetClassifier,
	opts ...ScanOption,
) *ScanOrchestrator {
	o := &ScanOrchestrator{
		pool:       pool,
		clients:    clients,
		classifier: classifier,
		now:        time.Now,
		sleep:      sleepContext,
		newID:      uuid.NewString,
		state:      domain.RunStateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the state of the current or most recent run.
func (o *ScanOrchestrator) State() domain.RunState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

func (o *ScanOrchestrator) setState(s domain.RunState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

// UpdateIgnoreRules swaps the ignore rules of the running scan.
// Items already being fetched are not affected.
func (o *ScanOrchestrator) UpdateIgnoreRules(rules domain.IgnoreRules) error {
	f, err := NewPathFilter(rules)
	if err != nil {
		return err
	}
	o.filter.Store(f)
	logger.Info("ignore rules updated: %d rules", f.Len())
	return nil
}

// scanRun is the mutable state of one Run call.
type scanRun struct {
	report   *domain.ScanReport
	settings domain.ScanSettings
	handle   driving.FindingHandler
	deadline time.Time

	// mu serialises findings and the handler.
	mu          sync.Mutex
	lastFinding time.Time

	stopped   atomic.Bool
	cancelled atomic.Bool
	timedOut  atomic.Bool
	idle      atomic.Bool
}

// stream is one credential's sequential query worker.
type stream struct {
	id   int
	cred domain.Credential
}

// Run executes the catalog. See driving.ScanService.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *ScanOrchestrator) Run(
	ctx context.Context,
	req domain.ScanRequest,
	handle driving.FindingHandler,
) (*domain.ScanReport, error) {
	// 1. Refuse to start on configuration errors
	if o.pool == nil || o.pool.Len() == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrNoCredentials)
	}
	if o.clients == nil || o.classifier == nil {
		return nil, fmt.Errorf("%w: client factory and classifier are required", domain.ErrConfiguration)
	}
	if err := catalog.Validate(req.Catalog); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	if err := ValidateScanSettings(req.Settings); err != nil {
		return nil, err
	}
	filter, err := NewPathFilter(req.Settings.Ignore)
	if err != nil {
		return nil, err
	}

	// 2. Idle -> Running
	o.mu.Lock()
	if o.state == domain.RunStateRunning {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: a scan is already running", domain.ErrInvalidInput)
	}
	o.state = domain.RunStateRunning
	o.mu.Unlock()
	o.filter.Store(filter)

	queries := req.Catalog.Queries()
	start := o.now()
	run := &scanRun{
		report: &domain.ScanReport{
			RunID:     o.newID(),
			Seed:      req.Catalog.Seed,
			State:     domain.RunStateRunning,
			StartedAt: start,
			Queries:   make([]domain.QueryResult, len(queries)),
		},
		settings:    req.Settings,
		handle:      handle,
		lastFinding: start,
	}
	if req.Settings.Timeout > 0 {
		run.deadline = start.Add(req.Settings.Timeout)
	}
	for i, q := range queries {
		run.report.Queries[i] = domain.QueryResult{Query: q, Status: domain.QueryStatusSkipped}
	}

	logger.Info("Starting scan %s: %d queries, %d credentials", run.report.RunID, len(queries), o.pool.Len())

	// 3. Fan out across credential streams
	o.runStreams(ctx, run, queries)

	// 4. Running -> terminal state
	switch {
	case run.cancelled.Load():
		run.report.State = domain.RunStateCancelled
	case run.timedOut.Load():
		run.report.State = domain.RunStateTimedOut
		run.report.IdleAbandoned = run.idle.Load()
	default:
		run.report.State = domain.RunStateCompleted
	}
	run.report.EndedAt = o.now()
	o.setState(run.report.State)

	logger.Info("Scan %s %s: %d/%d queries attempted, %d findings",
		run.report.RunID, run.report.State, run.report.Attempted(), len(queries), len(run.report.Findings))
	return run.report, nil
}

// runStreams feeds query indexes to the streams and waits for them to drain.
func (o *ScanOrchestrator) runStreams(ctx context.Context, run *scanRun, queries []domain.SearchQuery) {
	jobs := make(chan int)
	var g errgroup.Group

	g.Go(func() error {
		defer close(jobs)
		for i := range queries {
			if run.stopped.Load() {
				return nil
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				o.shouldStop(ctx, run)
				return nil
			}
		}
		return nil
	})

	for n, cred := range o.streamCredentials(run.settings.Concurrency) {
		st := &stream{id: n + 1, cred: cred}
		g.Go(func() error {
			for i := range jobs {
				run.report.Queries[i] = o.processQuery(ctx, run, st, queries[i])
			}
			return nil
		})
	}

	_ = g.Wait()
}

// streamCredentials picks the starting credential of each stream: the
// pool's current credential first, then the ones following it.
func (o *ScanOrchestrator) streamCredentials(concurrency int) []domain.Credential {
	all := o.pool.All()
	n := min(max(concurrency, 1), len(all))

	start := 0
	if cur, err := o.pool.Current(); err == nil {
		for i, c := range all {
			if c.Token == cur.Token {
				start = i
				break
			}
		}
	}

	out := make([]domain.Credential, n)
	for i := range n {
		out[i] = all[(start+i)%len(all)]
	}
	return out
}

// processQuery runs one query to completion on a stream.
func (o *ScanOrchestrator) processQuery(
	ctx context.Context,
	run *scanRun,
	st *stream,
	q domain.SearchQuery,
) domain.QueryResult {
	result := domain.QueryResult{Query: q, Status: domain.QueryStatusSkipped}

	// 1. Check limits before issuing a new query
	if o.shouldStop(ctx, run) {
		return result
	}
	logger.Info("[stream %d] %s: %s", st.id, q.Category, logger.Truncate(q.Query, 120))

	// 2. Search
	items, ok := o.search(ctx, run, st, q, &result)
	if !ok {
		o.shouldStop(ctx, run)
		return result
	}
	result.Items = len(items)

	// 3. Fetch, extract and classify every item that is not ignored
	for _, item := range items {
		if ctx.Err() != nil {
			o.shouldStop(ctx, run)
			result.Status = domain.QueryStatusInterrupted
			return result
		}

		if o.filter.Load().Match(item.Path) {
			result.Ignored++
			logger.Debug("ignoring %s/%s", item.Repository, item.Path)
			continue
		}

		content, available, err := o.fetch(ctx, run, st, item)
		if err != nil {
			result.Status = domain.QueryStatusInterrupted
			result.Error = err.Error()
			return result
		}
		if !available {
			continue
		}

		for _, sn := range extractor.Extract(content, q.Query, run.settings.WindowRadius) {
			cls := o.classifier.Classify(sn.Text, item.Path)
			o.emit(run, domain.Finding{
				ID:          o.newID(),
				RunID:       run.report.RunID,
				Category:    q.Category,
				Query:       q.Query,
				Description: q.Description,
				Repository:  item.Repository,
				Path:        item.Path,
				URL:         item.WebURL(),
				Snippet:     sn.Text,
				Term:        sn.Term,
				Verdict:     cls.Verdict,
				Entropy:     cls.Entropy,
				Score:       cls.Score,
				Reason:      cls.Reason,
				RuleID:      cls.RuleID,
				FoundAt:     o.now(),
			})
			result.Findings++
		}
	}

	result.Status = domain.QueryStatusDone

	// 4. Check limits after the query
	o.shouldStop(ctx, run)
	return result
}

// search issues the query, rotating credentials and backing off on rate
// limits. It returns false when the query ended without results; the
// reason is recorded in result.
//
//nolint:gocognit // Retry state machine
func (o *ScanOrchestrator) search(
	ctx context.Context,
	run *scanRun,
	st *stream,
	q domain.SearchQuery,
	result *domain.QueryResult,
) ([]domain.SearchResultItem, bool) {
	policy := run.settings.Retry
	rotations := 0

	for {
		client, err := o.clients.ForCredential(st.cred)
		if err != nil {
			logger.Warn("no client for %s: %v", st.cred.Name, err)
			result.Status = domain.QueryStatusFailed
			result.Error = err.Error()
			return nil, false
		}

		out := client.Search(ctx, q.Query)
		switch out.Kind {
		case domain.OutcomeOK:
			return out.Items, true

		case domain.OutcomeRateLimited:
			if o.rotate(st, &rotations) {
				continue
			}
			if result.Attempts >= policy.MaxAttempts {
				logger.Warn("Abandoning query after %d attempts: %s", result.Attempts, q.Query)
				result.Status = domain.QueryStatusAbandoned
				result.Error = errText(out.Err, "rate limited")
				return nil, false
			}
			result.Attempts++
			wait := backoff(out.Wait, policy)
			logger.Info("Rate limited on %s, waiting %s (attempt %d/%d)",
				st.cred.Name, wait, result.Attempts, policy.MaxAttempts)
			if err := o.pause(ctx, run, wait); err != nil {
				result.Status = domain.QueryStatusInterrupted
				result.Error = err.Error()
				return nil, false
			}
			rotations = 0

		default:
			if ctx.Err() != nil {
				result.Status = domain.QueryStatusInterrupted
				result.Error = ctx.Err().Error()
				return nil, false
			}
			if out.Transient() && policy.RetryTransient && result.Attempts < policy.MaxAttempts {
				result.Attempts++
				wait := capWait(transientBackoff<<(result.Attempts-1), policy)
				logger.Warn("Search failed (status %d), retrying in %s: %v", out.StatusCode, wait, out.Err)
				if err := o.pause(ctx, run, wait); err != nil {
					result.Status = domain.QueryStatusInterrupted
					result.Error = err.Error()
					return nil, false
				}
				continue
			}
			logger.Warn("Query failed (status %d): %s: %v", out.StatusCode, q.Query, out.Err)
			result.Status = domain.QueryStatusFailed
			result.Error = errText(out.Err, "request failed")
			return nil, false
		}
	}
}

// fetch downloads one item with the same rotation and backoff policy as
// search. A non-nil error means the run was interrupted while waiting.
func (o *ScanOrchestrator) fetch(
	ctx context.Context,
	run *scanRun,
	st *stream,
	item domain.SearchResultItem,
) (string, bool, error) {
	policy := run.settings.Retry
	attempts, rotations := 0, 0

	for {
		client, err := o.clients.ForCredential(st.cred)
		if err != nil {
			logger.Warn("no client for %s: %v", st.cred.Name, err)
			return "", false, nil
		}

		out := client.FetchContent(ctx, item)
		switch out.Kind {
		case domain.OutcomeOK:
			if !out.Available {
				logger.Debug("%s/%s: %v", item.Repository, item.Path, domain.ErrContentUnavailable)
			}
			return out.Content, out.Available, nil

		case domain.OutcomeRateLimited:
			if o.rotate(st, &rotations) {
				continue
			}
			if attempts >= policy.MaxAttempts {
				logger.Warn("Skipping %s/%s: rate limit persisted after %d attempts", item.Repository, item.Path, attempts)
				return "", false, nil
			}
			attempts++
			if err := o.pause(ctx, run, backoff(out.Wait, policy)); err != nil {
				return "", false, err
			}
			rotations = 0

		default:
			if ctx.Err() != nil {
				o.shouldStop(ctx, run)
				return "", false, ctx.Err()
			}
			logger.Warn("Fetch %s/%s failed (status %d): %v", item.Repository, item.Path, out.StatusCode, out.Err)
			return "", false, nil
		}
	}
}

// rotate moves the stream to the pool's next credential other than the one
// it holds. Streams share the pool cursor, so the cursor may already point
// at this stream's credential. Each query may rotate at most pool size minus
// one times between backoffs.
func (o *ScanOrchestrator) rotate(st *stream, rotations *int) bool {
	size := o.pool.Len()
	if *rotations >= size-1 {
		return false
	}
	var next domain.Credential
	for range size {
		if !o.pool.Rotate() {
			return false
		}
		cur, err := o.pool.Current()
		if err != nil {
			return false
		}
		if cur.Token != st.cred.Token {
			next = cur
			break
		}
	}
	if next.Token == "" {
		return false
	}
	*rotations++
	logger.Info("Rate limited on %s, rotating to %s", st.cred.Name, next.Name)
	st.cred = next
	return true
}

// pause sleeps for d, bounded by cancellation and the run deadline.
func (o *ScanOrchestrator) pause(ctx context.Context, run *scanRun, d time.Duration) error {
	sleepCtx := ctx
	if !run.deadline.IsZero() {
		remaining := run.deadline.Sub(o.now())
		if remaining <= 0 {
			o.shouldStop(ctx, run)
			return context.DeadlineExceeded
		}
		var cancel context.CancelFunc
		sleepCtx, cancel = context.WithTimeout(ctx, remaining)
		defer cancel()
	}

	err := o.sleep(sleepCtx, d)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		o.shouldStop(ctx, run)
		return ctx.Err()
	}
	if run.stopped.CompareAndSwap(false, true) {
		run.timedOut.Store(true)
		logger.Warn("Scan timed out during backoff after %s", run.settings.Timeout)
	}
	return err
}

// shouldStop checks cancellation, the global timeout and the idle timeout,
// recording the first reason found. It reports whether the run must stop
// issuing queries.
func (o *ScanOrchestrator) shouldStop(ctx context.Context, run *scanRun) bool {
	if run.stopped.Load() {
		return true
	}

	if ctx.Err() != nil {
		if run.stopped.CompareAndSwap(false, true) {
			run.cancelled.Store(true)
			logger.Info("Scan cancelled")
		}
		return true
	}

	now := o.now()
	if !run.deadline.IsZero() && !now.Before(run.deadline) {
		if run.stopped.CompareAndSwap(false, true) {
			run.timedOut.Store(true)
			logger.Warn("Scan timed out after %s", run.settings.Timeout)
		}
		return true
	}

	if run.settings.AbandonOnIdle && run.settings.IdleTimeout > 0 {
		run.mu.Lock()
		last := run.lastFinding
		run.mu.Unlock()
		if now.Sub(last) >= run.settings.IdleTimeout {
			if run.stopped.CompareAndSwap(false, true) {
				run.idle.Store(true)
				run.timedOut.Store(true)
				logger.Warn("No new findings for %s, abandoning remaining queries", run.settings.IdleTimeout)
			}
			return true
		}
	}

	return false
}

// emit records a finding and hands it to the caller.
func (o *ScanOrchestrator) emit(run *scanRun, f domain.Finding) {
	run.mu.Lock()
	defer run.mu.Unlock()

	run.report.Findings = append(run.report.Findings, f)
	run.lastFinding = f.FoundAt
	if run.handle != nil {
		run.handle(f)
	}
}

// backoff turns a rate-limit hint into a sleep duration.
func backoff(wait time.Duration, policy domain.RetryPolicy) time.Duration {
	if wait <= 0 {
		wait = policy.FallbackWait
	}
	return capWait(wait, policy)
}

func capWait(wait time.Duration, policy domain.RetryPolicy) time.Duration {
	if policy.MaxWait > 0 && wait > policy.MaxWait {
		return policy.MaxWait
	}
	return wait
}

func errText(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return err.Error()
}

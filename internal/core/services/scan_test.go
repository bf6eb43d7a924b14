package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gitsleuth-cli/internal/adapters/driven/auth"
	"github.com/custodia-labs/gitsleuth-cli/internal/classifier"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
)

// --- Test doubles ---

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingSleeper never blocks. It fails like a real sleep would when the
// requested pause does not fit before the context deadline.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok && d > time.Until(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}

func (s *recordingSleeper) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

// fakeAPI stands in for the code search API across all credentials.
type fakeAPI struct {
	mu sync.Mutex

	clock      *fakeClock
	searchCost time.Duration

	results map[string][]domain.SearchResultItem
	files   map[string]string

	// limited counts the rate-limited responses still owed per credential name.
	limited   map[string]int
	limitWait time.Duration

	// failures are HTTP statuses returned, in order, before searches succeed.
	failures []int

	onSearch func()

	searches []string
	fetches  []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		results: make(map[string][]domain.SearchResultItem),
		files:   make(map[string]string),
		limited: make(map[string]int),
	}
}

func (a *fakeAPI) ForCredential(cred domain.Credential) (driven.CodeSearchClient, error) {
	return &fakeClient{api: a, cred: cred}, nil
}

func (a *fakeAPI) Searches() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.searches...)
}

func (a *fakeAPI) Fetches() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.fetches...)
}

type fakeClient struct {
	api  *fakeAPI
	cred domain.Credential
}

func (c *fakeClient) Credential() domain.Credential { return c.cred }

func (c *fakeClient) CheckQuota(context.Context) (domain.QuotaStatus, error) {
	if c.cred.Name == "broken" {
		return domain.QuotaStatus{}, errors.New("bad credentials")
	}
	return domain.QuotaStatus{Remaining: 7, Limit: 10, Known: true}, nil
}

func (c *fakeClient) Search(_ context.Context, query string) domain.SearchOutcome {
	a := c.api
	a.mu.Lock()
	a.searches = append(a.searches, c.cred.Name+":"+query)
	if a.clock != nil {
		a.clock.Advance(a.searchCost)
	}

	var out domain.SearchOutcome
	switch {
	case a.limited[c.cred.Name] > 0:
		a.limited[c.cred.Name]--
		out = domain.SearchRateLimited(a.limitWait, errors.New("rate limit exceeded"))
	case len(a.failures) > 0:
		status := a.failures[0]
		a.failures = a.failures[1:]
		out = domain.SearchFailed(status, fmt.Errorf("status %d", status))
	default:
		out = domain.SearchOK(a.results[query])
	}
	hook := a.onSearch
	a.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out
}

func (c *fakeClient) FetchContent(_ context.Context, item domain.SearchResultItem) domain.ContentOutcome {
	a := c.api
	a.mu.Lock()
	defer a.mu.Unlock()

	a.fetches = append(a.fetches, item.Path)
	content, ok := a.files[item.Path]
	if !ok {
		return domain.ContentOutcome{Kind: domain.OutcomeOK}
	}
	return domain.ContentOutcome{Kind: domain.OutcomeOK, Content: content, Available: true}
}

// --- Helpers ---

const scenarioQuery = `filename:.env DB_PASSWORD NOT current "acme.com"`

func testCatalog(queries ...string) domain.Catalog {
	group := domain.CategoryQueries{Category: domain.CategoryConfigFiles}
	for _, q := range queries {
		group.Queries = append(group.Queries, domain.SearchQuery{
			Category: domain.CategoryConfigFiles,
			Query:    q,
		})
	}
	return domain.Catalog{Seed: "acme.com", Groups: []domain.CategoryQueries{group}}
}

func testSettings() domain.ScanSettings {
	s := domain.DefaultScanSettings()
	s.WindowRadius = 30
	return s
}

func testPool(names ...string) *auth.Pool {
	creds := make([]domain.Credential, 0, len(names))
	for _, n := range names {
		creds = append(creds, domain.Credential{Name: n, Token: "tok-" + n})
	}
	return auth.NewPool(creds...)
}

func testClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	c, err := classifier.New(domain.DefaultClassificationThresholds())
	require.NoError(t, err)
	return c
}

func newTestOrchestrator(
	t *testing.T,
	pool driven.CredentialPool,
	api *fakeAPI,
	clock *fakeClock,
	sleeper *recordingSleeper,
) *ScanOrchestrator {
	t.Helper()
	var ids atomic.Int64
	return NewScanOrchestrator(pool, api, testClassifier(t),
		WithClock(clock.Now),
		WithSleeper(sleeper.Sleep),
		WithIDGenerator(func() string { return fmt.Sprintf("id-%d", ids.Add(1)) }),
	)
}

// --- Tests ---

func TestScanOrchestrator_EmitsClassifiedFinding(t *testing.T) {
	api := newFakeAPI()
	api.results[scenarioQuery] = []domain.SearchResultItem{{Repository: "acme/app", Path: ".env"}}
	api.files[".env"] = "DB_PASSWORD=xK9$mQ2vL!p\n"

	o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), &recordingSleeper{})
	assert.Equal(t, domain.RunStateIdle, o.State())

	var handled []domain.Finding
	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog(scenarioQuery),
		Settings: testSettings(),
	}, func(f domain.Finding) { handled = append(handled, f) })

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateCompleted, report.State)
	assert.Equal(t, domain.RunStateCompleted, o.State())
	require.Len(t, report.Findings, 1)
	assert.Equal(t, report.Findings, handled)

	f := report.Findings[0]
	assert.Equal(t, "DB_PASSWORD=xK9$mQ2vL!p", f.Snippet)
	assert.Equal(t, domain.VerdictTruePositive, f.Verdict)
	assert.Equal(t, "DB_PASSWORD", f.Term)
	assert.Equal(t, "acme/app", f.Repository)
	assert.Equal(t, "https://github.com/acme/app/blob/HEAD/.env", f.URL)
	assert.Equal(t, report.RunID, f.RunID)
	assert.Equal(t, domain.CategoryConfigFiles, f.Category)
	assert.NotEmpty(t, f.ID)

	require.Len(t, report.Queries, 1)
	assert.Equal(t, domain.QueryStatusDone, report.Queries[0].Status)
	assert.Equal(t, 1, report.Queries[0].Items)
	assert.Equal(t, 1, report.Queries[0].Findings)
}

func TestScanOrchestrator_PlaceholderIsFalsePositive(t *testing.T) {
	api := newFakeAPI()
	api.results[scenarioQuery] = []domain.SearchResultItem{{Repository: "acme/app", Path: ".env"}}
	api.files[".env"] = "DB_PASSWORD=placeholder\n"

	o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), &recordingSleeper{})
	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog(scenarioQuery),
		Settings: testSettings(),
	}, nil)

	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, domain.VerdictFalsePositive, report.Findings[0].Verdict)
}

func TestScanOrchestrator_ZeroResultsEmitNothing(t *testing.T) {
	api := newFakeAPI()
	o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), &recordingSleeper{})

	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1", "q2"),
		Settings: testSettings(),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateCompleted, report.State)
	assert.Empty(t, report.Findings)
	assert.Equal(t, 2, report.Attempted())
	assert.Equal(t, []string{"a:q1", "a:q2"}, api.Searches())
}

func TestScanOrchestrator_RateLimitRotatesWithoutSleeping(t *testing.T) {
	api := newFakeAPI()
	api.limited["a"] = 1
	api.limitWait = 5 * time.Second
	sleeper := &recordingSleeper{}

	o := newTestOrchestrator(t, testPool("a", "b"), api, newFakeClock(), sleeper)
	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1", "q2"),
		Settings: testSettings(),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateCompleted, report.State)
	assert.Empty(t, sleeper.Waits())
	assert.Equal(t, []string{"a:q1", "b:q1", "b:q2"}, api.Searches())
	assert.Equal(t, 0, report.Queries[0].Attempts)
	assert.Equal(t, domain.QueryStatusDone, report.Queries[0].Status)
}

func TestScanOrchestrator_RateLimitSingleCredentialSleeps(t *testing.T) {
	api := newFakeAPI()
	api.limited["a"] = 1
	api.limitWait = 5 * time.Second
	sleeper := &recordingSleeper{}

	o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), sleeper)
	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1"),
		Settings: testSettings(),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{5 * time.Second}, sleeper.Waits())
	assert.Equal(t, []string{"a:q1", "a:q1"}, api.Searches())
	assert.Equal(t, 1, report.Queries[0].Attempts)
	assert.Equal(t, domain.QueryStatusDone, report.Queries[0].Status)
}

func TestScanOrchestrator_RotateSkipsHeldCredential(t *testing.T) {
	o := newTestOrchestrator(t, testPool("a", "b"), newFakeAPI(), newFakeClock(), &recordingSleeper{})

	creds := o.streamCredentials(2)
	require.Len(t, creds, 2)
	st := &stream{id: 2, cred: creds[1]}
	require.Equal(t, "b", st.cred.Name)

	rotations := 0
	require.True(t, o.rotate(st, &rotations))
	assert.Equal(t, "a", st.cred.Name)
	assert.Equal(t, 1, rotations)

	assert.False(t, o.rotate(st, &rotations), "rotation budget is pool size minus one")
}

func TestScanOrchestrator_SecondStreamRotatesAwayFromLimitedCredential(t *testing.T) {
	api := newFakeAPI()
	api.limited["b"] = 1
	api.limitWait = 5 * time.Second
	sleeper := &recordingSleeper{}

	o := newTestOrchestrator(t, testPool("a", "b"), api, newFakeClock(), sleeper)
	settings := testSettings()
	settings.Concurrency = 2

	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1", "q2", "q3", "q4"),
		Settings: settings,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateCompleted, report.State)
	assert.Empty(t, sleeper.Waits())
	for _, qr := range report.Queries {
		assert.Equal(t, domain.QueryStatusDone, qr.Status)
		assert.Zero(t, qr.Attempts)
	}
}

func TestScanOrchestrator_RetryBudgetAbandonsQuery(t *testing.T) {
	api := newFakeAPI()
	api.limited["a"] = 100
	api.limitWait = 2 * time.Second
	sleeper := &recordingSleeper{}

	o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), sleeper)
	settings := testSettings()
	settings.Retry.MaxAttempts = 3

	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1"),
		Settings: settings,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateCompleted, report.State)
	assert.Len(t, sleeper.Waits(), 3)
	assert.Len(t, api.Searches(), 4)
	assert.Equal(t, domain.QueryStatusAbandoned, report.Queries[0].Status)
	assert.Equal(t, 3, report.Queries[0].Attempts)
}

func TestScanOrchestrator_BackoffUsesFallbackAndCap(t *testing.T) {
	t.Run("unknown wait uses fallback", func(t *testing.T) {
		api := newFakeAPI()
		api.limited["a"] = 1
		sleeper := &recordingSleeper{}

		o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), sleeper)
		_, err := o.Run(context.Background(), domain.ScanRequest{
			Catalog:  testCatalog("q1"),
			Settings: testSettings(),
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, []time.Duration{domain.DefaultFallbackWait}, sleeper.Waits())
	})

	t.Run("long wait is capped", func(t *testing.T) {
		api := newFakeAPI()
		api.limited["a"] = 1
		api.limitWait = 2 * time.Hour
		sleeper := &recordingSleeper{}

		o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), sleeper)
		settings := testSettings()
		settings.Timeout = 0
		_, err := o.Run(context.Background(), domain.ScanRequest{
			Catalog:  testCatalog("q1"),
			Settings: settings,
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, []time.Duration{domain.DefaultMaxWait}, sleeper.Waits())
	})
}

func TestScanOrchestrator_TransientFailureIsRetried(t *testing.T) {
	api := newFakeAPI()
	api.failures = []int{502}
	sleeper := &recordingSleeper{}

	o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), sleeper)
	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1"),
		Settings: testSettings(),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.QueryStatusDone, report.Queries[0].Status)
	assert.Equal(t, []time.Duration{time.Second}, sleeper.Waits())
}

func TestScanOrchestrator_ClientErrorSkipsQuery(t *testing.T) {
	api := newFakeAPI()
	api.failures = []int{422}
	sleeper := &recordingSleeper{}

	o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), sleeper)
	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1", "q2"),
		Settings: testSettings(),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateCompleted, report.State)
	assert.Equal(t, domain.QueryStatusFailed, report.Queries[0].Status)
	assert.Contains(t, report.Queries[0].Error, "422")
	assert.Equal(t, domain.QueryStatusDone, report.Queries[1].Status)
	assert.Empty(t, sleeper.Waits())
}

func TestScanOrchestrator_GlobalTimeout(t *testing.T) {
	clock := newFakeClock()
	api := newFakeAPI()
	api.clock = clock
	api.searchCost = 10 * time.Second
	api.results["q1"] = []domain.SearchResultItem{{Repository: "acme/app", Path: ".env"}}
	api.files[".env"] = "q1: DB_PASSWORD=xK9$mQ2vL!p\n"

	o := newTestOrchestrator(t, testPool("a"), api, clock, &recordingSleeper{})
	settings := testSettings()
	settings.Timeout = 15 * time.Second

	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1", "q2", "q3"),
		Settings: settings,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateTimedOut, report.State)
	assert.False(t, report.IdleAbandoned)
	assert.Less(t, report.Attempted(), 3)
	assert.Equal(t, domain.QueryStatusDone, report.Queries[1].Status, "in-flight query completes")
	assert.Equal(t, domain.QueryStatusSkipped, report.Queries[2].Status)
	assert.Len(t, report.Findings, 1, "findings gathered before the timeout are kept")
}

func TestScanOrchestrator_TimeoutBoundsBackoff(t *testing.T) {
	api := newFakeAPI()
	api.limited["a"] = 1
	api.limitWait = 5 * time.Minute

	o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), &recordingSleeper{})
	settings := testSettings()
	settings.Timeout = 30 * time.Second

	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1", "q2"),
		Settings: settings,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateTimedOut, report.State)
	assert.Equal(t, domain.QueryStatusInterrupted, report.Queries[0].Status)
	assert.Equal(t, domain.QueryStatusSkipped, report.Queries[1].Status)
}

func TestScanOrchestrator_IdleAbandonment(t *testing.T) {
	clock := newFakeClock()
	api := newFakeAPI()
	api.clock = clock
	api.searchCost = 10 * time.Second

	o := newTestOrchestrator(t, testPool("a"), api, clock, &recordingSleeper{})
	settings := testSettings()
	settings.AbandonOnIdle = true
	settings.IdleTimeout = 15 * time.Second

	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1", "q2", "q3"),
		Settings: settings,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateTimedOut, report.State)
	assert.True(t, report.IdleAbandoned)
	assert.Equal(t, 2, report.Attempted())
}

func TestScanOrchestrator_IgnoredPathIsNeverFetched(t *testing.T) {
	api := newFakeAPI()
	api.results["q1"] = []domain.SearchResultItem{
		{Repository: "acme/app", Path: "server.log"},
		{Repository: "acme/app", Path: ".env"},
	}
	api.files["server.log"] = "DB_PASSWORD=xK9$mQ2vL!p"
	api.files[".env"] = "nothing to see"

	o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), &recordingSleeper{})
	settings := testSettings()
	settings.Ignore.Patterns = []string{`\.log$`}

	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog("q1"),
		Settings: settings,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{".env"}, api.Fetches())
	assert.Empty(t, report.Findings)
	assert.Equal(t, 1, report.Queries[0].Ignored)
}

func TestScanOrchestrator_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := newFakeAPI()
	api.results["q1"] = []domain.SearchResultItem{{Repository: "acme/app", Path: ".env"}}
	api.files[".env"] = "DB_PASSWORD=xK9$mQ2vL!p\n"
	api.onSearch = cancel

	o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), &recordingSleeper{})
	report, err := o.Run(ctx, domain.ScanRequest{
		Catalog:  testCatalog("q1", "q2"),
		Settings: testSettings(),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateCancelled, report.State)
	assert.Equal(t, domain.RunStateCancelled, o.State())
	assert.Empty(t, report.Findings)
	assert.Empty(t, api.Fetches())
	assert.Equal(t, domain.QueryStatusInterrupted, report.Queries[0].Status)
	assert.Equal(t, domain.QueryStatusSkipped, report.Queries[1].Status)
}

func TestScanOrchestrator_ConcurrentStreams(t *testing.T) {
	api := newFakeAPI()
	queries := []string{"q1", "q2", "q3", "q4", "q5", "q6"}
	for _, q := range queries {
		path := q + ".env"
		api.results[q] = []domain.SearchResultItem{{Repository: "acme/app", Path: path}}
		api.files[path] = q + " API_KEY=Zx81_qLm04-RtY7vBn3Kp"
	}

	o := newTestOrchestrator(t, testPool("a", "b", "c"), api, newFakeClock(), &recordingSleeper{})
	settings := testSettings()
	settings.Concurrency = 3

	var mu sync.Mutex
	count := 0
	report, err := o.Run(context.Background(), domain.ScanRequest{
		Catalog:  testCatalog(queries...),
		Settings: settings,
	}, func(domain.Finding) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateCompleted, report.State)
	assert.Equal(t, 6, report.Attempted())
	assert.Len(t, report.Findings, 6)
	assert.Equal(t, 6, count)
	for _, qr := range report.Queries {
		assert.Equal(t, domain.QueryStatusDone, qr.Status)
	}
}

func TestScanOrchestrator_ConfigurationErrors(t *testing.T) {
	api := newFakeAPI()

	t.Run("empty pool", func(t *testing.T) {
		o := newTestOrchestrator(t, auth.NewPool(), api, newFakeClock(), &recordingSleeper{})
		_, err := o.Run(context.Background(), domain.ScanRequest{Catalog: testCatalog("q1"), Settings: testSettings()}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.ErrorIs(t, err, domain.ErrNoCredentials)
		assert.Equal(t, domain.RunStateIdle, o.State())
	})

	t.Run("empty catalog", func(t *testing.T) {
		o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), &recordingSleeper{})
		_, err := o.Run(context.Background(), domain.ScanRequest{Settings: testSettings()}, nil)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("malformed query", func(t *testing.T) {
		o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), &recordingSleeper{})
		_, err := o.Run(context.Background(), domain.ScanRequest{
			Catalog:  testCatalog(`DB_PASSWORD "acme.com`),
			Settings: testSettings(),
		}, nil)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	})

	t.Run("bad ignore pattern", func(t *testing.T) {
		o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), &recordingSleeper{})
		settings := testSettings()
		settings.Ignore.Patterns = []string{"("}
		_, err := o.Run(context.Background(), domain.ScanRequest{Catalog: testCatalog("q1"), Settings: settings}, nil)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("invalid settings", func(t *testing.T) {
		o := newTestOrchestrator(t, testPool("a"), api, newFakeClock(), &recordingSleeper{})
		settings := testSettings()
		settings.Concurrency = 0
		_, err := o.Run(context.Background(), domain.ScanRequest{Catalog: testCatalog("q1"), Settings: settings}, nil)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	assert.Empty(t, api.Searches(), "no query runs on a configuration error")
}

func TestScanOrchestrator_UpdateIgnoreRules(t *testing.T) {
	o := newTestOrchestrator(t, testPool("a"), newFakeAPI(), newFakeClock(), &recordingSleeper{})

	require.NoError(t, o.UpdateIgnoreRules(domain.IgnoreRules{Globs: []string{"**/*.md"}}))
	assert.True(t, o.filter.Load().Match("docs/README.md"))

	err := o.UpdateIgnoreRules(domain.IgnoreRules{Patterns: []string{"["}})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.True(t, o.filter.Load().Match("docs/README.md"), "previous rules stay active")
}

package domain

import "time"

// RunState is the lifecycle state of a scan.
type RunState string

// Run states. Idle and Running are transient; the rest are terminal.
const (
	RunStateIdle      RunState = "idle"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateCancelled RunState = "cancelled"
	RunStateTimedOut  RunState = "timed_out"
)

// IsTerminal returns true for states a run cannot leave.
func (s RunState) IsTerminal() bool {
	switch s {
	case RunStateCompleted, RunStateCancelled, RunStateTimedOut:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s RunState) String() string {
	return string(s)
}

// QueryStatus is how processing of a single query ended.
type QueryStatus string

// Query statuses.
const (
	// QueryStatusDone means results were searched and every item was handled.
	QueryStatusDone QueryStatus = "done"

	// QueryStatusAbandoned means the retry budget ran out.
	QueryStatusAbandoned QueryStatus = "abandoned"

	// QueryStatusFailed means the API refused the query for a non-retryable reason.
	QueryStatusFailed QueryStatus = "failed"

	// QueryStatusInterrupted means cancellation or a timeout cut the query short.
	QueryStatusInterrupted QueryStatus = "interrupted"

	// QueryStatusSkipped means the run stopped before the query was attempted.
	QueryStatusSkipped QueryStatus = "skipped"
)

// QueryResult summarises one query of a run.
type QueryResult struct {
	Query    SearchQuery `json:"query"`
	Status   QueryStatus `json:"status"`
	Items    int         `json:"items"`
	Ignored  int         `json:"ignored"`
	Findings int         `json:"findings"`
	Attempts int         `json:"attempts"`
	Error    string      `json:"error,omitempty"`
}

// ScanRequest is everything a single run needs besides the engine itself.
type ScanRequest struct {
	Catalog  Catalog
	Settings ScanSettings
}

// ScanReport is the result of a run. It is returned for every terminal
// state; findings collected before a cancellation or timeout are kept.
type ScanReport struct {
	RunID string   `json:"run_id"`
	Seed  string   `json:"seed,omitempty"`
	State RunState `json:"state"`

	// IdleAbandoned is set when the run timed out for lack of new findings.
	IdleAbandoned bool `json:"idle_abandoned,omitempty"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	Queries  []QueryResult `json:"queries"`
	Findings []Finding     `json:"findings"`
}

// Duration returns how long the run took.
func (r *ScanReport) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Attempted returns the number of queries that were not skipped.
func (r *ScanReport) Attempted() int {
	n := 0
	for i := range r.Queries {
		if r.Queries[i].Status != QueryStatusSkipped {
			n++
		}
	}
	return n
}

// CountByVerdict returns how many findings carry the verdict.
func (r *ScanReport) CountByVerdict(v Verdict) int {
	n := 0
	for i := range r.Findings {
		if r.Findings[i].Verdict == v {
			n++
		}
	}
	return n
}

// RunSummary is the persisted header of a past run.
type RunSummary struct {
	ID            string    `json:"id"`
	Seed          string    `json:"seed,omitempty"`
	State         RunState  `json:"state"`
	IdleAbandoned bool      `json:"idle_abandoned,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	QueriesTotal  int       `json:"queries_total"`
	Attempted     int       `json:"queries_attempted"`
	FindingsCount int       `json:"findings_count"`
}

// Summary builds the persisted header of the report.
func (r *ScanReport) Summary() RunSummary {
	return RunSummary{
		ID:            r.RunID,
		Seed:          r.Seed,
		State:         r.State,
		IdleAbandoned: r.IdleAbandoned,
		StartedAt:     r.StartedAt,
		EndedAt:       r.EndedAt,
		QueriesTotal:  len(r.Queries),
		Attempted:     r.Attempted(),
		FindingsCount: len(r.Findings),
	}
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultScanSettings(t *testing.T) {
	s := DefaultScanSettings()

	assert.Equal(t, 3, s.Retry.MaxAttempts)
	assert.True(t, s.Retry.RetryTransient)
	assert.Equal(t, 60*time.Second, s.IdleTimeout)
	assert.False(t, s.AbandonOnIdle)
	assert.Equal(t, 100, s.WindowRadius)
	assert.Equal(t, 1, s.Concurrency)
	assert.True(t, s.Ignore.IsEmpty())
}

func TestDefaultClassificationThresholds(t *testing.T) {
	th := DefaultClassificationThresholds()

	assert.Equal(t, 4.0, th.EntropyThreshold)
	assert.Equal(t, 3.5, th.AssignmentEntropy)
	assert.False(t, th.DisableFilters)
}

func TestScanReport_Counters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &ScanReport{
		RunID:     "run-1",
		State:     RunStateTimedOut,
		StartedAt: start,
		EndedAt:   start.Add(90 * time.Second),
		Queries: []QueryResult{
			{Status: QueryStatusDone},
			{Status: QueryStatusAbandoned},
			{Status: QueryStatusSkipped},
		},
		Findings: []Finding{
			{Verdict: VerdictTruePositive},
			{Verdict: VerdictFalsePositive},
			{Verdict: VerdictTruePositive},
		},
	}

	assert.Equal(t, 90*time.Second, r.Duration())
	assert.Equal(t, 2, r.Attempted())
	assert.Equal(t, 2, r.CountByVerdict(VerdictTruePositive))

	sum := r.Summary()
	assert.Equal(t, "run-1", sum.ID)
	assert.Equal(t, 3, sum.QueriesTotal)
	assert.Equal(t, 2, sum.Attempted)
	assert.Equal(t, 3, sum.FindingsCount)
}

func TestRunState_IsTerminal(t *testing.T) {
	assert.False(t, RunStateIdle.IsTerminal())
	assert.False(t, RunStateRunning.IsTerminal())
	assert.True(t, RunStateCompleted.IsTerminal())
	assert.True(t, RunStateCancelled.IsTerminal())
	assert.True(t, RunStateTimedOut.IsTerminal())
}

func TestCredential_Redacted(t *testing.T) {
	assert.Equal(t, "****wxyz", Credential{Token: "ghp_abcdwxyz"}.Redacted())
	assert.Equal(t, "****", Credential{Token: "abc"}.Redacted())
	assert.True(t, Credential{Name: "x"}.IsZero())
}

package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

func TestScanCmd_PrintsFindingsAndSummary(t *testing.T) {
	setupTestApp(t, true)

	out, err := execute(t, "scan", "--query", "AWS_SECRET_ACCESS_KEY", "--all")

	require.NoError(t, err)
	assert.Contains(t, out, "Running 1 queries")
	assert.Contains(t, out, "acme/app/config/credentials")
	assert.Contains(t, out, "AWS_SECRET_ACCESS_KEY")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "1/1 queries attempted")
}

func TestScanCmd_RecordsRun(t *testing.T) {
	ta := setupTestApp(t, true)

	_, err := execute(t, "scan", "--query", "AWS_SECRET_ACCESS_KEY")
	require.NoError(t, err)

	runs, err := ta.store.ListRuns(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunStateCompleted, runs[0].State)
	assert.Equal(t, 1, runs[0].QueriesTotal)
}

func TestScanCmd_JSON(t *testing.T) {
	setupTestApp(t, false)

	out, err := execute(t, "scan", "acme.com", "--query", "AWS_SECRET_ACCESS_KEY", "--json")
	require.NoError(t, err)

	var report domain.ScanReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.RunStateCompleted, report.State)
	assert.Equal(t, "acme.com", report.Seed)
	require.Len(t, report.Queries, 1)
	assert.Contains(t, report.Queries[0].Query.Query, "acme.com")
	assert.NotEmpty(t, report.Findings)
}

func TestScanCmd_UnknownCategory(t *testing.T) {
	setupTestApp(t, false)

	_, err := execute(t, "scan", "--category", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyScanFlags_OnlyChangedFlags(t *testing.T) {
	t.Cleanup(func() { resetFlags(scanCmd) })

	require.NoError(t, scanCmd.Flags().Set("timeout", "5m"))
	require.NoError(t, scanCmd.Flags().Set("concurrency", "3"))

	s := domain.DefaultScanSettings()
	applyScanFlags(scanCmd, &s)

	assert.Equal(t, 5*time.Minute, s.Timeout)
	assert.Equal(t, 3, s.Concurrency)
	assert.Equal(t, domain.DefaultIdleTimeout, s.IdleTimeout)
	assert.Equal(t, domain.DefaultWindowRadius, s.WindowRadius)
}

func TestWatchIgnoreRules_WithoutFileConfig(t *testing.T) {
	ta := setupTestApp(t, false)

	stop := watchIgnoreRules(t.Context(), ta.App)
	assert.NotPanics(t, stop)
}

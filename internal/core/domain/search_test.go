package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSearchResultItem_OwnerAndName(t *testing.T) {
	item := SearchResultItem{Repository: "acme/payments", Path: "config/.env"}

	assert.Equal(t, "acme", item.Owner())
	assert.Equal(t, "payments", item.Name())
}

func TestSearchResultItem_WebURL(t *testing.T) {
	t.Run("prefers html url", func(t *testing.T) {
		item := SearchResultItem{Repository: "acme/api", Path: "a.go", HTMLURL: "https://example.test/x"}
		assert.Equal(t, "https://example.test/x", item.WebURL())
	})

	t.Run("builds blob link from sha", func(t *testing.T) {
		item := SearchResultItem{Repository: "acme/api", Path: "cfg/app.yml", SHA: "abc123"}
		assert.Equal(t, "https://github.com/acme/api/blob/abc123/cfg/app.yml", item.WebURL())
	})

	t.Run("falls back to HEAD", func(t *testing.T) {
		item := SearchResultItem{Repository: "acme/api", Path: "main.tf"}
		assert.Equal(t, "https://github.com/acme/api/blob/HEAD/main.tf", item.WebURL())
	})
}

func TestSearchOutcome_Constructors(t *testing.T) {
	t.Run("ok carries items", func(t *testing.T) {
		out := SearchOK([]SearchResultItem{{Repository: "a/b"}})
		assert.Equal(t, OutcomeOK, out.Kind)
		assert.Len(t, out.Items, 1)
	})

	t.Run("rate limited floors negative wait", func(t *testing.T) {
		out := SearchRateLimited(-5*time.Second, ErrRateLimited)
		assert.Equal(t, OutcomeRateLimited, out.Kind)
		assert.Equal(t, time.Duration(0), out.Wait)
	})

	t.Run("transient failures", func(t *testing.T) {
		assert.True(t, SearchFailed(0, errors.New("dial")).Transient())
		assert.True(t, SearchFailed(502, ErrRequestFailed).Transient())
		assert.False(t, SearchFailed(422, ErrRequestFailed).Transient())
		assert.False(t, SearchOK(nil).Transient())
	})
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "ok", OutcomeOK.String())
	assert.Equal(t, "rate_limited", OutcomeRateLimited.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", OutcomeKind(42).String())
}

package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gitsleuth-cli/internal/catalog"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

func TestQueriesCmd_ListsCatalog(t *testing.T) {
	out, err := execute(t, "queries", "acme.com")

	require.NoError(t, err)
	assert.Contains(t, out, "acme.com")
	assert.Contains(t, out, domain.CategoryCloud.Title())
	assert.Contains(t, out, "queries")
}

func TestQueriesCmd_JSONMatchesCompose(t *testing.T) {
	want, err := catalog.Compose("acme.com", []string{string(domain.CategoryCloud)})
	require.NoError(t, err)

	out, err := execute(t, "queries", "acme.com", "--category", string(domain.CategoryCloud), "--json")
	require.NoError(t, err)

	var got []domain.SearchQuery
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, want.Queries(), got)
}

func TestQueriesCmd_CustomOnly(t *testing.T) {
	out, err := execute(t, "queries", "--query", "filename:.npmrc _authToken", "--json")
	require.NoError(t, err)

	var got []domain.SearchQuery
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, domain.CategoryCustom, got[0].Category)
}

func TestQueriesCmd_Categories(t *testing.T) {
	out, err := execute(t, "queries", "--categories")

	require.NoError(t, err)
	for _, c := range domain.AllCategories() {
		assert.Contains(t, out, string(c))
	}
}

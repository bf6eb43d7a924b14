package auth

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

func creds(names ...string) []domain.Credential {
	out := make([]domain.Credential, len(names))
	for i, n := range names {
		out[i] = domain.Credential{Name: n, Token: "tok-" + n}
	}
	return out
}

func TestPool_Current(t *testing.T) {
	t.Run("empty pool", func(t *testing.T) {
		_, err := NewPool().Current()
		assert.True(t, errors.Is(err, domain.ErrNoCredentials))
	})

	t.Run("starts at the first credential", func(t *testing.T) {
		c, err := NewPool(creds("a", "b")...).Current()
		require.NoError(t, err)
		assert.Equal(t, "a", c.Name)
	})

	t.Run("drops credentials without token", func(t *testing.T) {
		p := NewPool(domain.Credential{Name: "blank"}, domain.Credential{Name: "x", Token: "t"})
		assert.Equal(t, 1, p.Len())
	})
}

func TestPool_Rotate(t *testing.T) {
	t.Run("round robin", func(t *testing.T) {
		p := NewPool(creds("a", "b", "c")...)

		var seen []string
		for i := 0; i < 4; i++ {
			require.True(t, p.Rotate())
			c, _ := p.Current()
			seen = append(seen, c.Name)
		}

		assert.Equal(t, []string{"b", "c", "a", "b"}, seen)
	})

	t.Run("single credential does not rotate", func(t *testing.T) {
		p := NewPool(creds("only")...)

		assert.False(t, p.Rotate())
		c, _ := p.Current()
		assert.Equal(t, "only", c.Name)
	})

	t.Run("empty pool does not rotate", func(t *testing.T) {
		assert.False(t, NewPool().Rotate())
	})

	t.Run("concurrent rotation keeps cursor in range", func(t *testing.T) {
		p := NewPool(creds("a", "b", "c")...)

		var wg sync.WaitGroup
		for i := 0; i < 30; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.Rotate()
				_, err := p.Current()
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		c, err := p.Current()
		require.NoError(t, err)
		assert.Equal(t, "a", c.Name)
	})
}

func TestPool_All(t *testing.T) {
	input := creds("a", "b")
	p := NewPool(input...)

	all := p.All()
	all[0].Name = "mutated"
	input[1].Name = "mutated"

	assert.Equal(t, []string{"a", "b"}, []string{p.All()[0].Name, p.All()[1].Name})
}

func TestParseTokens(t *testing.T) {
	t.Run("bare and named tokens", func(t *testing.T) {
		got := ParseTokens("ghp_one, ci=ghp_two", "ghp_three\nghp_one")

		require.Len(t, got, 3)
		assert.Equal(t, domain.Credential{Name: "token-1", Token: "ghp_one"}, got[0])
		assert.Equal(t, domain.Credential{Name: "ci", Token: "ghp_two"}, got[1])
		assert.Equal(t, domain.Credential{Name: "token-3", Token: "ghp_three"}, got[2])
	})

	t.Run("blank input", func(t *testing.T) {
		assert.Empty(t, ParseTokens("", " , ,"))
	})
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv(EnvTokens, "a=tok1,tok2")
	t.Setenv(EnvOAuthToken, "tok3")
	t.Setenv(EnvToken, "tok1")

	got := CredentialsFromEnv()

	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "tok3", got[2].Token)
}

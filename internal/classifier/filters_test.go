package classifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

func newTestFilter(t *testing.T, allow ...string) *Filter {
	t.Helper()
	f, err := NewFilter(domain.DefaultClassificationThresholds(), allow)
	require.NoError(t, err)
	return f
}

func TestFilter_Check(t *testing.T) {
	f := newTestFilter(t, `(?i)fixture`)

	tests := []struct {
		name    string
		snippet string
		reason  string
	}{
		{"empty", "   ", ReasonEmpty},
		{"angle placeholder", "token: <YOUR_TOKEN>", ReasonAnglePlaceholder},
		{"template variable", "password=${DB_PASSWORD}", ReasonTemplateVar},
		{"allow-list annotation", `secret = "Zx81qLm04RtY7vBn3" # pragma: allowlist secret`, ReasonAnnotation},
		{"caller allow-list", "fixture key=Zx81qLm04RtY7vBn3Kp", ReasonAllowList},
		{"empty value", "DB_PASSWORD=", ReasonEmptyValue},
		{"placeholder literal", "DB_PASSWORD=placeholder", ReasonPlaceholderValue},
		{"your_ prefix", "api_key=your_api_key_here", ReasonPlaceholderValue},
		{"numeric value", "pin_password=123456", ReasonNumericValue},
		{"variable reference", "password=$PGPASS", ReasonVariableRef},
		{"env var name value", "password = DATABASE_PASSWORD", ReasonVariableRef},
		{"low entropy long value", "password=aaaaaaaaaaaaaaaaaaaa", ReasonLowEntropyValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, rejected := f.Check(tt.snippet)
			assert.True(t, rejected)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestFilter_Check_Survivors(t *testing.T) {
	f := newTestFilter(t)

	t.Run("short high-entropy value judged with its name", func(t *testing.T) {
		_, rejected := f.Check("DB_PASSWORD=xK9$mQ2vL!p")
		assert.False(t, rejected)
	})

	t.Run("long random value", func(t *testing.T) {
		_, rejected := f.Check(`api_key = "Zx81_qLm04-RtY7vBn3Kp"`)
		assert.False(t, rejected)
	})

	t.Run("no assignment at all", func(t *testing.T) {
		_, rejected := f.Check("aG7$kP9!")
		assert.False(t, rejected)
	})

	t.Run("one strong credential among weak ones", func(t *testing.T) {
		_, rejected := f.Check("DB_OLD_PASSWORD=changeme DB_PASSWORD=Zx81_qLm04-RtY7vBn3Kp")
		assert.False(t, rejected)
	})

	t.Run("non-credential assignments are not judged", func(t *testing.T) {
		_, rejected := f.Check("DB_HOST=localhost")
		assert.False(t, rejected)
	})

	t.Run("annotation far from the assignment", func(t *testing.T) {
		th := domain.DefaultClassificationThresholds()
		th.AnnotationWindow = 5
		far, err := NewFilter(th, nil)
		require.NoError(t, err)

		snippet := "# pragma: allowlist secret" + "                              " + "token=Zx81_qLm04-RtY7vBn3Kp"
		_, rejected := far.Check(snippet)
		assert.False(t, rejected)
	})
}

func TestNewFilter_InvalidPattern(t *testing.T) {
	_, err := NewFilter(domain.DefaultClassificationThresholds(), []string{"("})
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

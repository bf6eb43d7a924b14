package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrNoCredentials", ErrNoCredentials},
		{"ErrInvalidQuery", ErrInvalidQuery},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrRequestFailed", ErrRequestFailed},
		{"ErrContentUnavailable", ErrContentUnavailable},
		{"ErrClassificationDegraded", ErrClassificationDegraded},
		{"ErrInsufficientClasses", ErrInsufficientClasses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrConfiguration_Wrapping(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrConfiguration, ErrNoCredentials)

	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.True(t, errors.Is(err, ErrNoCredentials))
	assert.False(t, errors.Is(err, ErrInvalidQuery))
}

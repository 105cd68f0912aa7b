package i2cbus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindOpen, "open"},
		{KindRead, "read"},
		{KindWrite, "write"},
		{KindIOControl, "io-control"},
		{Kind(0), "unknown"},
	}
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.kind.String())
		})
	}
}

func TestFailure_Error(t *testing.T) {
	cause := fmt.Errorf("remote i/o error")
	failure := newFailure(KindRead, cause, "byte read from %#02x failed: %v", 0x48, cause)
	assert.Contains(t, failure.Error(), "i2c read failure")
	assert.Contains(t, failure.Error(), "0x48")
	assert.Same(t, cause, errors.Unwrap(failure))
}

func TestFailure_As(t *testing.T) {
	var err error = newFailure(KindWrite, nil, "quick write to %#02x failed", 0x20)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindWrite, failure.Kind)
}

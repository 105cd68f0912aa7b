package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerboseContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsVerbose(ctx))

	ctx = SetVerbose(ctx, true)
	assert.True(t, IsVerbose(ctx))

	ctx = SetVerbose(ctx, false)
	assert.False(t, IsVerbose(ctx))
}

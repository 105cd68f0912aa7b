package i2cbus

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeModeFor(t *testing.T) {
	tests := []struct {
		addr     byte
		expected ProbeMode
	}{
		{0x00, ProbeRead},
		{0x02, ProbeRead},
		{0x03, ProbeWrite},
		{0x10, ProbeWrite},
		{0x2F, ProbeWrite},
		{0x30, ProbeRead},
		{0x37, ProbeRead},
		{0x38, ProbeWrite},
		{0x4F, ProbeWrite},
		{0x50, ProbeRead},
		{0x5F, ProbeRead},
		{0x60, ProbeWrite},
		{0x77, ProbeWrite},
		{0x78, ProbeRead},
		{0x7F, ProbeRead},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%#02x", test.addr), func(t *testing.T) {
			assert.Equal(t, test.expected, ProbeModeFor(test.addr))
		})
	}
}

func TestProbeMode_String(t *testing.T) {
	assert.Equal(t, "quick-write", ProbeWrite.String())
	assert.Equal(t, "byte-read", ProbeRead.String())
}

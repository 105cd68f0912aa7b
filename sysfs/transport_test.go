package sysfs

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/i2cbus"
)

func TestTransport_NotOpen(t *testing.T) {
	tr := New()

	err := tr.SelectAddress(context.Background(), 0x48)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus not open")

	_, err = tr.ReadByte(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus not open")

	err = tr.WriteRegU8(context.Background(), 0x01, 0xFF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus not open")

	err = tr.SetPEC(context.Background(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus not open")
}

func TestTransport_BlockTooLarge(t *testing.T) {
	tr := New()
	data := make([]byte, i2cbus.BlockSize+1)

	err := tr.WriteBlock(context.Background(), 0x00, data)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "block too large"))

	err = tr.WriteI2CBlock(context.Background(), 0x00, data)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "block too large"))
}

func TestTransport_CloseIdempotent(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
}

func TestTransport_OpenMissingDevice(t *testing.T) {
	tr := New()
	err := tr.Open(context.Background(), 9999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/i2c-9999")
}

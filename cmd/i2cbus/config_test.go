package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ResolveBus(t *testing.T) {
	cfg := &Config{Buses: map[string]int{"sensors": 2}}

	n, err := cfg.ResolveBus("1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = cfg.ResolveBus("sensors")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = cfg.ResolveBus("display")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "i2cbus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport: periph\nbuses:\n  sensors: 2\n"), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "periph", cfg.Transport)
	assert.Equal(t, map[string]int{"sensors": 2}, cfg.Buses)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseAddr(t *testing.T) {
	addr, err := parseAddr("0x48")
	require.NoError(t, err)
	assert.Equal(t, byte(0x48), addr)

	addr, err = parseAddr("80")
	require.NoError(t, err)
	assert.Equal(t, byte(80), addr)

	_, err = parseAddr("0x80")
	assert.Error(t, err)

	_, err = parseAddr("nonsense")
	assert.Error(t, err)
}

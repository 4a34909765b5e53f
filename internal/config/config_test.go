package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every OTPVAULT_ env var that Load() reads.
var allConfigKeys = []string{
	"OTPVAULT_LISTEN_ADDR",
	"OTPVAULT_DB_PATH",
	"OTPVAULT_KEY_PATH",
	"OTPVAULT_MIN_SECRET_BYTES",
}

// isolateConfigEnv saves and unsets all OTPVAULT_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8337", cfg.ListenAddr)
	assert.Equal(t, "otpvault.db", cfg.DBPath)
	assert.Equal(t, "otpvault.key", cfg.KeyPath)
	assert.Equal(t, 10, cfg.MinSecretBytes)
}

func TestLoad_Overrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("OTPVAULT_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("OTPVAULT_DB_PATH", "/tmp/test-vault.db")
	t.Setenv("OTPVAULT_KEY_PATH", "/tmp/test-vault.key")
	t.Setenv("OTPVAULT_MIN_SECRET_BYTES", "8")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test-vault.db", cfg.DBPath)
	assert.Equal(t, "/tmp/test-vault.key", cfg.KeyPath)
	assert.Equal(t, 8, cfg.MinSecretBytes)
}

func TestLoad_InvalidMinSecretBytes(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("OTPVAULT_MIN_SECRET_BYTES", "not-a-number")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
}

func TestLoad_MinSecretBytesBelowOne(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("OTPVAULT_MIN_SECRET_BYTES", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTPVAULT_MIN_SECRET_BYTES")
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "LIVE", "SCLI_CONFIG_DIR", "SCLI_LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Live)
	assert.Equal(t, NetworkTestnet, cfg.Network())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join("config", "wallets.json"), cfg.WalletFile())
	assert.Equal(t, filepath.Join("config", "assets.json"), cfg.AssetFile())
	assert.Equal(t, filepath.Join("config", "journal.db"), cfg.JournalFile())
}

func TestLoadLive(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LIVE", "1")
	t.Setenv("SCLI_CONFIG_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Live)
	assert.Equal(t, NetworkMainnet, cfg.Network())
	assert.Equal(t, filepath.Join(dir, "wallets_live.json"), cfg.WalletFile())
	assert.Equal(t, filepath.Join(dir, "assets_live.json"), cfg.AssetFile())
	assert.Equal(t, filepath.Join(dir, "journal_live.db"), cfg.JournalFile())
}

func TestLoadRejectsBadBool(t *testing.T) {
	t.Setenv("LIVE", "maybe")

	_, err := Load()
	assert.Error(t, err)
}

// unsetenv removes keys for the duration of the test. An empty but set
// variable is not the same as an absent one for envconfig defaults.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

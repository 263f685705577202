package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tfrecord/pkg/config"
)

func TestConfigInitCommand(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "config", "init", "--config", configPath, "--index-dir", "./idx", "--print-key")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration created at "+configPath)
	assert.Contains(t, out, "API key: ")

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "./idx", cfg.Index.Dir)
	assert.Len(t, cfg.Server.APIKey, 64)

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := execute(t, "config", "init", "--config", configPath)
		assert.ErrorContains(t, err, "already exists")
	})

	t.Run("force overwrites", func(t *testing.T) {
		_, err := execute(t, "config", "init", "--config", configPath, "--force")
		require.NoError(t, err)

		reloaded, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.NotEqual(t, cfg.Server.APIKey, reloaded.Server.APIKey)
	})

	t.Run("show", func(t *testing.T) {
		out, err := execute(t, "config", "show", "--config", configPath, "--checksum", "farm")
		require.NoError(t, err)
		assert.Contains(t, out, "checksum: farm")
		assert.Contains(t, out, "api_key: ")
	})
}

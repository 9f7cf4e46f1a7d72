package config_test

import (
	"testing"

	"content-pipeline/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "content", cfg.VFS.Root)
	assert.Equal(t, "source", cfg.VFS.SourceRoot)
	assert.False(t, cfg.VFS.Network.Enabled)
	assert.Equal(t, "localhost:9000", cfg.VFS.Network.Endpoint)
	assert.False(t, cfg.Cook.Enabled)
	assert.Equal(t, 4, cfg.Content.Workers)
	assert.Equal(t, 256, cfg.Content.QueueDepth)
	assert.False(t, cfg.Content.Watch)
	assert.Equal(t, 1, cfg.Texture.MipLevels)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("CONTENT_WORKERS", "8")
	t.Setenv("VFS_NETWORK_ENABLED", "true")
	t.Setenv("TEXTURE_MIP_LEVELS", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Content.Workers)
	assert.True(t, cfg.VFS.Network.Enabled)
	assert.Equal(t, 3, cfg.Texture.MipLevels)
	assert.Equal(t, "debug", cfg.Log.Level)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:11434/v1", cfg.Embedding.Host)
		assert.Equal(t, "all-minilm", cfg.Embedding.Model)
		assert.Equal(t, 30, cfg.Embedding.TimeoutSecs)
		assert.Equal(t, 32, cfg.Embedding.BatchSize)
		assert.Equal(t, "faqdex.db", cfg.Index.Path)
	})

	t.Run("partial file gets defaults applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := "embedding:\n  model: custom-embed\nindex:\n  path: /var/lib/faqdex\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "custom-embed", cfg.Embedding.Model)
		assert.Equal(t, "http://localhost:11434/v1", cfg.Embedding.Host)
		assert.Equal(t, "/var/lib/faqdex", cfg.Index.Path)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("embedding: ["), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	cfg.Telemetry.InteractionLog = "logs/interactions.csv"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Embedding, loaded.Embedding)
	assert.Equal(t, "logs/interactions.csv", loaded.Telemetry.InteractionLog)
}

func TestAIConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, cfg.Embedding.Model, aiCfg.Model)
	assert.Equal(t, cfg.Embedding.Host, aiCfg.Host)
}

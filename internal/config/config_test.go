package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should return defaults for a missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Should merge file values over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
method: map_reduce
provider:
  model: sonar
embedder:
  type: openai
rag:
  top_k: 5
`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "map_reduce", cfg.Method)
		assert.Equal(t, "sonar", cfg.Provider.Model)
		assert.Equal(t, 3500, cfg.Provider.MaxTokens)
		assert.Equal(t, 5, cfg.RAG.TopK)
		assert.Equal(t, "\n\n", cfg.RAG.Separator)
		require.NotNil(t, cfg.Embedder.OpenAI)
		assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
		assert.Equal(t, 32, cfg.Embedder.OpenAI.BatchSize)
		assert.Equal(t, 6000, cfg.Embedder.OpenAI.MaxInputWords)
	})

	t.Run("Should report malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rag: [1, 2"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSave(t *testing.T) {
	t.Run("Should round-trip without writing credentials", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.yaml")
		cfg := Default()
		cfg.Keys.OpenAI = "sk-secret"
		require.NoError(t, Save(path, cfg))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "sk-secret")

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, Default(), loaded)
	})
}

func TestLoadDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "docsum", "config.yaml"), path)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, path)
}

func TestEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-1")
	t.Setenv("GOOGLE_API_KEY", "g-1")
	t.Setenv("DOCSUM_MODEL", "gemini-2.5-flash")
	t.Setenv("DOCSUM_LOG_LEVEL", "debug")

	e, err := LoadEnv()
	require.NoError(t, err)

	cfg := Default()
	cfg.Provider.Name = "openai"
	cfg.ApplyEnv(e)

	assert.Equal(t, "gemini-2.5-flash", cfg.Provider.Model)
	assert.Empty(t, cfg.Provider.Name, "provider is re-inferred from the model")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sk-1", cfg.APIKey("openai"))
	assert.Equal(t, "g-1", cfg.APIKey("gemini"))
	assert.Empty(t, cfg.APIKey("extractive"))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*AppConfig){
		"overlap too large": func(c *AppConfig) { c.Chunker.Overlap = 500 },
		"negative overlap":  func(c *AppConfig) { c.Chunker.Overlap = -1 },
		"zero top_k":        func(c *AppConfig) { c.RAG.TopK = 0 },
		"unknown embedder":  func(c *AppConfig) { c.Embedder.Type = "bert" },
		"unknown chunker":   func(c *AppConfig) { c.Chunker.Type = "token" },
		"unknown query":     func(c *AppConfig) { c.RAG.Query = "user" },
		"negative retries":  func(c *AppConfig) { c.Resilience.Retries = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPolicy(t *testing.T) {
	cfg := Default()
	p := cfg.Policy()
	assert.Equal(t, 30*time.Second, p.Timeout)
	assert.EqualValues(t, 1, p.Retries)
	assert.Nil(t, p.Limiter)

	cfg.Resilience.RequestsPerSecond = 2
	assert.NotNil(t, cfg.Policy().Limiter)
}

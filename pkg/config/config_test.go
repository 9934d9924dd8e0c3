package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	c := Default()
	assert.NoError(t, c.validate())
	assert.Equal(t, "http://localhost:4000", c.Model.BaseURL)
	assert.Equal(t, "gpt-4o-mini", c.Model.Model)
	assert.Equal(t, 10, c.Search.MaxResults)
	assert.Equal(t, "memory.json", c.Memory.Path)
	assert.Equal(t, 2*time.Minute, c.ModelTimeout())
}

func TestLoadFileValuesOverrideDefaults(t *testing.T) {
	path := writeConfig(t, `
model:
  base_url: http://llm.internal:8080
  model: llama-3.1-70b
  temperature: 0.2
search:
  max_results: 5
memory:
  path: /var/lib/planner/memory.json
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://llm.internal:8080", c.Model.BaseURL)
	assert.Equal(t, "llama-3.1-70b", c.Model.Model)
	assert.Equal(t, 0.2, c.Model.Temperature)
	assert.Equal(t, 5, c.Search.MaxResults)
	assert.Equal(t, "/var/lib/planner/memory.json", c.Memory.Path)

	// Unspecified fields fall back to defaults.
	assert.Equal(t, 2000, c.Model.MaxTokens)
	assert.Equal(t, "15s", c.Search.Timeout)
	assert.Equal(t, "info", c.Observability.Logging.Level)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	c := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NotNil(t, c)
	assert.Equal(t, "gpt-4o-mini", c.Model.Model)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MODEL_BASE_URL", "http://proxy:9000")
	t.Setenv("MODEL_API_KEY", "sk-test")
	t.Setenv("MODEL_NAME", "gpt-4o")
	t.Setenv("MEMORY_PATH", "/tmp/mem.json")

	path := writeConfig(t, `
model:
  base_url: http://file-value:1
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://proxy:9000", c.Model.BaseURL)
	assert.Equal(t, "sk-test", c.Model.APIKey)
	assert.Equal(t, "gpt-4o", c.Model.Model)
	assert.Equal(t, "/tmp/mem.json", c.Memory.Path)
}

func TestValidationRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"temperature out of range", func(c *Config) { c.Model.Temperature = 3.0 }},
		{"zero max results", func(c *Config) { c.Search.MaxResults = -1 }},
		{"bad model timeout", func(c *Config) { c.Model.Timeout = "soon" }},
		{"bad search timeout", func(c *Config) { c.Search.Timeout = "later" }},
		{"metrics port out of range", func(c *Config) { c.Observability.Metrics.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	c := Default()
	c.Model.Model = "saved-model"
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "saved-model", loaded.Model.Model)
}

func TestModelTimeoutFallsBackOnGarbage(t *testing.T) {
	c := Default()
	c.Model.Timeout = "garbage"
	assert.Equal(t, 2*time.Minute, c.ModelTimeout())
}

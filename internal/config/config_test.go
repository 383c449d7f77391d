package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
llm:
  base_url: https://api.example.com
  api_key: dummy
  model: gpt-4o
  temperature: 0.5
  max_tokens: 1500
server:
  host: 127.0.0.1
  port: "9090"
history:
  db_path: /tmp/test-history.db
log:
  level: debug
`

// TestLoad verifies that Load unmarshals a full config file.
func TestLoad(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	require.NoError(t, err)
	_, err = tmp.WriteString(sampleConfig)
	require.NoError(t, err)
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com", cfg.LLM.BaseURL)
	require.Equal(t, "dummy", cfg.LLM.APIKey)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, float32(0.5), cfg.LLM.Temperature)
	require.Equal(t, 1500, cfg.LLM.MaxTokens)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "/tmp/test-history.db", cfg.History.DBPath)
	require.Equal(t, "debug", cfg.Log.Level)
}

// TestLoad_Defaults verifies that a missing file still yields a usable config.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir()+"/does-not-exist.yaml")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	require.Equal(t, float32(0.3), cfg.LLM.Temperature)
	require.Equal(t, 2000, cfg.LLM.MaxTokens)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "history.db", cfg.History.DBPath)
}

// TestLoad_APIKeyEnvFallback verifies the OPENAI_API_KEY fallback.
func TestLoad_APIKeyEnvFallback(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	require.NoError(t, err)
	_, err = tmp.WriteString("llm:\n  model: gpt-4o\n")
	require.NoError(t, err)
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sk-from-env", cfg.LLM.APIKey)
}

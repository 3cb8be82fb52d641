package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "AI_PROVIDER", "AI_MODEL", "AI_MAX_TOKENS", "AI_TEMPERATURE", "AI_REQUEST_TIMEOUT",
	"AI_STREAM", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_ORG_ID", "ARK_API_KEY",
	"ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_BASE_URL", "ARK_REGION", "ARK_MODEL",
	"SESSION_IDLE_TTL", "SESSION_COOKIE_NAME", "SESSION_COOKIE_SECURE", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.Model)
	assert.Equal(t, 500, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-6)
	assert.Zero(t, cfg.AI.Timeout)
	assert.True(t, cfg.AI.Stream)
	assert.Empty(t, cfg.AI.OpenAI.APIKey, "missing credentials are not an error")
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("AI_MODEL", "gpt-4o-mini")
	t.Setenv("AI_MAX_TOKENS", "128")
	t.Setenv("AI_TEMPERATURE", "0.2")
	t.Setenv("AI_REQUEST_TIMEOUT", "15")
	t.Setenv("AI_STREAM", "false")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SESSION_IDLE_TTL", "30m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 128, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 1e-6)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.False(t, cfg.AI.Stream)
	assert.Equal(t, "sk-test", cfg.AI.OpenAI.APIKey)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
}

func TestLoadPortWithHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:3000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Addr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":               "80 80",
		"AI_MAX_TOKENS":      "lots",
		"AI_TEMPERATURE":     "warm",
		"AI_REQUEST_TIMEOUT": "soon",
		"AI_STREAM":          "maybe",
		"AI_PROVIDER":        "llama",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "qabot.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
addr = ":7000"

[ai]
provider = "ark"
model = "from-file"
timeout = "45s"

[ai.ark]
model = "ep-123"

[log]
level = "debug"
`), 0o600))
	t.Setenv("AI_MODEL", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, ProviderArk, cfg.AI.Provider)
	assert.Equal(t, "from-env", cfg.AI.Model)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "ep-123", cfg.AI.Ark.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFileUnknownKey(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "qabot.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ai]\nmodle = \"typo\"\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadDotEnvSkipsMissingAndKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".venv")
	require.NoError(t, os.WriteFile(envPath, []byte("QABOT_TEST_A=from-file\nQABOT_TEST_B=from-file\n"), 0o600))
	t.Setenv("QABOT_TEST_A", "from-process")
	t.Cleanup(func() { os.Unsetenv("QABOT_TEST_B") })

	loaded, err := LoadDotEnv(filepath.Join(dir, ".env"), envPath)
	require.NoError(t, err)

	assert.Equal(t, []string{envPath}, loaded)
	assert.Equal(t, "from-process", os.Getenv("QABOT_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("QABOT_TEST_B"))
}

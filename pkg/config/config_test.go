package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"MODEL_PROVIDER", "MODEL_NAME", "PORT", "UPLOAD_DIR", "MAX_UPLOAD_BYTES", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Empty(t, cfg.Model)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.EqualValues(t, 32<<20, cfg.MaxUploadBytes)
	assert.NoError(t, cfg.Validate())
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=8081\nGEMINI_API_KEY=secret\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("GEMINI_API_KEY")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, "secret", cfg.APIKey())
}

func TestEnvironmentOverridesDotEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=8081\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
}

func TestValidate(t *testing.T) {
	base := Config{Port: "3000", MaxUploadBytes: 1, LogLevel: "info", LogFormat: "text"}
	require.NoError(t, base.Validate())

	bad := base
	bad.Port = " "
	assert.Error(t, bad.Validate())

	bad = base
	bad.MaxUploadBytes = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.LogFormat = "xml"
	assert.Error(t, bad.Validate())

	bad = base
	bad.LogLevel = "loud"
	assert.Error(t, bad.Validate())
}

func TestAPIKeyFollowsProvider(t *testing.T) {
	cfg := Config{GeminiAPIKey: "g", OpenAIAPIKey: "o", AnthropicAPIKey: "a"}
	assert.Equal(t, "g", cfg.APIKey())
	cfg.Provider = "openai"
	assert.Equal(t, "o", cfg.APIKey())
	cfg.Provider = "claude"
	assert.Equal(t, "a", cfg.APIKey())
	cfg.Provider = "ollama"
	assert.Empty(t, cfg.APIKey())
	cfg.Provider = "dummy"
	assert.Empty(t, cfg.APIKey())
}

func TestLogger(t *testing.T) {
	l := Config{LogLevel: "debug", LogFormat: "json"}.Logger()
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}

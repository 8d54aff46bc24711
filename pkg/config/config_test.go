package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ProviderHTTP, cfg.Agent.Provider)
	assert.Equal(t, "http://localhost:8787", cfg.Agent.URL)
	assert.Equal(t, 5*time.Minute, cfg.Agent.Timeout)
	assert.Equal(t, 4096, cfg.Stream.ChunkSize)
	assert.False(t, cfg.Canvas.AutoPlace)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Preserve)
	assert.Same(t, cfg, Get())
}

func TestLoadProviderDefaultURL(t *testing.T) {
	t.Run("should point ollama at its own port when no url is set", func(t *testing.T) {
		viper.Reset()
		configFile := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("agent:\n  provider: ollama\n"), 0644))

		cfg, err := Load(configFile)
		require.NoError(t, err)
		assert.Equal(t, DefaultOllamaURL, cfg.Agent.URL)
	})

	t.Run("should keep the agent port for http", func(t *testing.T) {
		viper.Reset()
		configFile := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("agent:\n  provider: http\n"), 0644))

		cfg, err := Load(configFile)
		require.NoError(t, err)
		assert.Equal(t, DefaultAgentURL, cfg.Agent.URL)
	})

	t.Run("should honour an explicit url for ollama", func(t *testing.T) {
		viper.Reset()
		configFile := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("agent:\n  provider: ollama\n  url: http://gpu-box:11434\n"), 0644))

		cfg, err := Load(configFile)
		require.NoError(t, err)
		assert.Equal(t, "http://gpu-box:11434", cfg.Agent.URL)
	})
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "settings.yaml")
	configContent := `
agent:
  provider: ollama
  url: http://test-ollama:11434
  model: test-model
  timeout: "2m"
canvas:
  auto_place: true
stream:
  chunk_size: 16
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.Agent.Provider)
	assert.Equal(t, "http://test-ollama:11434", cfg.Agent.URL)
	assert.Equal(t, "test-model", cfg.Agent.Model)
	assert.Equal(t, 2*time.Minute, cfg.Agent.Timeout)
	assert.True(t, cfg.Canvas.AutoPlace)
	assert.Equal(t, 16, cfg.Stream.ChunkSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, tmpDir, BaseSettingsDir())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("EASEL_AGENT_URL", "http://agent.internal:9000")
	t.Setenv("EASEL_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://agent.internal:9000", cfg.Agent.URL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalidProvider(t *testing.T) {
	viper.Reset()

	configFile := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("agent:\n  provider: carrier-pigeon\n"), 0644))

	_, err := Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestBuildSettingsPath(t *testing.T) {
	viper.Reset()
	viper.Set("config.path", "/tmp/easel-test")

	assert.Equal(t, "/tmp/easel-test/system.log", BuildSettingsPath("system.log"))
}

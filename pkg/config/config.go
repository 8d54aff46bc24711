package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Canvas  CanvasConfig  `mapstructure:"canvas"`
	Stream  StreamConfig  `mapstructure:"stream"`
	History HistoryConfig `mapstructure:"history"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile  string `mapstructure:"log_file"`
	Preserve bool   `mapstructure:"preserve"`
	Level    string `mapstructure:"level"`
}

// AgentConfig selects and configures the agent source that produces the stream
type AgentConfig struct {
	Provider string        `mapstructure:"provider"` // http or ollama
	URL      string        `mapstructure:"url"`
	Model    string        `mapstructure:"model"` // ollama only
	Timeout  time.Duration `mapstructure:"timeout"`
}

// CanvasConfig holds reconciler behaviour toggles
type CanvasConfig struct {
	AutoPlace bool `mapstructure:"auto_place"`
}

// StreamConfig holds stream reading configuration
type StreamConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
}

// HistoryConfig holds chat transcript persistence configuration
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig holds the prometheus endpoint configuration
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

const (
	ProviderHTTP   = "http"
	ProviderOllama = "ollama"
)

// Default server URLs per provider, used when agent.url is unset
const (
	DefaultAgentURL  = "http://localhost:8787"
	DefaultOllamaURL = "http://localhost:11434"
)

// Global config instance
var cfg *Config

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./.easel")
		viper.AddConfigPath(filepath.Join(xdgConfigHome, ".easel"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.SetEnvPrefix("EASEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file, named or searched for, leaves the defaults in place
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(loaded); err != nil {
		return nil, err
	}
	if loaded.Agent.URL == "" {
		loaded.Agent.URL = defaultURL(loaded.Agent.Provider)
	}

	cfg = loaded
	return cfg, nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("logging.log_file", "./.easel/system.log")
	viper.SetDefault("logging.preserve", true)
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("agent.provider", ProviderHTTP)
	viper.SetDefault("agent.url", "")
	viper.SetDefault("agent.model", "qwen3:latest")
	viper.SetDefault("agent.timeout", "5m")

	viper.SetDefault("canvas.auto_place", false)
	viper.SetDefault("stream.chunk_size", 4096)
	viper.SetDefault("history.path", "./.easel/chat_history.json")
	viper.SetDefault("metrics.addr", "")
}

func validate(c *Config) error {
	switch c.Agent.Provider {
	case ProviderHTTP, ProviderOllama:
	default:
		return fmt.Errorf("invalid agent.provider %q: want %s or %s", c.Agent.Provider, ProviderHTTP, ProviderOllama)
	}
	if c.Stream.ChunkSize <= 0 {
		return fmt.Errorf("invalid stream.chunk_size %d: must be positive", c.Stream.ChunkSize)
	}
	return nil
}

func defaultURL(provider string) string {
	if provider == ProviderOllama {
		return DefaultOllamaURL
	}
	return DefaultAgentURL
}

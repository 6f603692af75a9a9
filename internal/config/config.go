// Package config loads runtime settings.
//
// Precedence, highest first:
//  1. Command-line flags that were set
//  2. Environment variables (ASTRA_ prefix, "." becomes "_")
//  3. Config file (--config, else astra.yaml in . or $HOME/.astra)
//  4. Defaults
//
// .env and .env.local are loaded into the environment first and never
// override variables that are already set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultConfigName is the config file searched for without --config.
const DefaultConfigName = "astra"

// Config is the full runtime configuration.
type Config struct {
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
	Memory  MemoryConfig  `mapstructure:"memory" yaml:"memory"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

type AgentConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
}

// MemoryConfig selects the store backend and the consolidation thresholds.
type MemoryConfig struct {
	Backend        string `mapstructure:"backend" yaml:"backend"` // file, sqlite, memory
	Dir            string `mapstructure:"dir" yaml:"dir"`
	SQLitePath     string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	SummarizeEvery int    `mapstructure:"summarize_every" yaml:"summarize_every"`
	SummaryWindow  int    `mapstructure:"summary_window" yaml:"summary_window"`
	CondenseBatch  int    `mapstructure:"condense_batch" yaml:"condense_batch"`
	RecentTurns    int    `mapstructure:"recent_turns" yaml:"recent_turns"`
}

type LLMConfig struct {
	Provider        string `mapstructure:"provider" yaml:"provider"` // ollama, anthropic
	OllamaEndpoint  string `mapstructure:"ollama_endpoint" yaml:"ollama_endpoint"`
	OllamaModel     string `mapstructure:"ollama_model" yaml:"ollama_model"`
	AnthropicModel  string `mapstructure:"anthropic_model" yaml:"anthropic_model"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" yaml:"anthropic_api_key"`
	MaxTokens       int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	// TimeoutSeconds bounds each model HTTP call. 0 means no limit.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

type MetricsConfig struct {
	// File receives the Prometheus text exposition on exit when set.
	File string `mapstructure:"file" yaml:"file"`
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. Empty searches the default paths.
	File string
	// Flags are bound by their FlagKeys names. May be nil.
	Flags *pflag.FlagSet
	// EnvFiles default to .env and .env.local.
	EnvFiles []string
}

// FlagKeys maps persistent flag names to config keys.
var FlagKeys = map[string]string{
	"memory-backend":  "memory.backend",
	"memory-dir":      "memory.dir",
	"llm-provider":    "llm.provider",
	"ollama-model":    "llm.ollama_model",
	"anthropic-model": "llm.anthropic_model",
	"log-level":       "logging.level",
	"log-format":      "logging.format",
	"metrics-file":    "metrics.file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("agent.name", "Astra")

	v.SetDefault("memory.backend", "file")
	v.SetDefault("memory.dir", "memory")
	v.SetDefault("memory.sqlite_path", filepath.Join("memory", "astra.db"))
	v.SetDefault("memory.summarize_every", 6)
	v.SetDefault("memory.summary_window", 20)
	v.SetDefault("memory.condense_batch", 5)
	v.SetDefault("memory.recent_turns", 6)

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.ollama_endpoint", "http://localhost:11434")
	v.SetDefault("llm.ollama_model", "llama3")
	v.SetDefault("llm.anthropic_model", "claude-3-7-sonnet-latest")
	v.SetDefault("llm.anthropic_api_key", "")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout_seconds", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.file", "")
}

// Load resolves the configuration and validates it.
func Load(opts Options) (*Config, error) {
	LoadEnvFiles(opts.EnvFiles...)

	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".astra"))
		}
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix("ASTRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.LLM.AnthropicAPIKey == "" {
		cfg.LLM.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvFiles loads dotenv files into the process environment. Missing
// files are ignored and set variables are kept.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Validate rejects unknown backends and providers and non-positive
// thresholds.
func (c *Config) Validate() error {
	var errs []error
	switch c.Memory.Backend {
	case "file", "sqlite", "memory":
	default:
		errs = append(errs, fmt.Errorf("memory.backend: unknown backend %q", c.Memory.Backend))
	}
	switch c.LLM.Provider {
	case "ollama", "anthropic":
	default:
		errs = append(errs, fmt.Errorf("llm.provider: unknown provider %q", c.LLM.Provider))
	}
	for _, th := range []struct {
		key string
		n   int
	}{
		{"memory.summarize_every", c.Memory.SummarizeEvery},
		{"memory.summary_window", c.Memory.SummaryWindow},
		{"memory.condense_batch", c.Memory.CondenseBatch},
		{"memory.recent_turns", c.Memory.RecentTurns},
		{"llm.max_tokens", c.LLM.MaxTokens},
	} {
		if th.n <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %d", th.key, th.n))
		}
	}
	if c.LLM.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("llm.timeout_seconds: must not be negative"))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.LLM.AnthropicAPIKey != "" {
		c.LLM.AnthropicAPIKey = "********"
	}
	return c
}

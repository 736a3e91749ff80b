// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (DOCUCHAT_* prefix, runtime override)
//  2. Config file (~/.docuchat/config.yaml or ./config.yaml)
//  3. Default values
//
// Error handling uses sentinel errors so callers can check failure
// categories with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidProvider indicates the embedding provider is not supported.
	ErrInvalidProvider = errors.New("invalid embedding provider")

	// ErrInvalidEmbedderModel indicates the embedder model name is empty.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidDimension indicates the embedding dimension is out of range.
	ErrInvalidDimension = errors.New("invalid embedding dimension")

	// ErrInvalidAddr indicates the listen address is malformed.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidTimeout indicates a timeout value is out of range.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")
)

// Embedding provider identifiers used in Config.Provider.
const (
	// ProviderGemini uses the Google AI embedding API via Genkit.
	ProviderGemini = "gemini"

	// ProviderOpenAI uses an OpenAI-compatible embeddings endpoint
	// (api.openai.com, Ollama, or any compatible server).
	ProviderOpenAI = "openai"
)

const (
	// DefaultAddr is the default HTTP listen address.
	DefaultAddr = "127.0.0.1:3500"

	// DefaultEmbedderModel is the default Gemini embedding model.
	DefaultEmbedderModel = "text-embedding-004"

	// DefaultEmbedderDimension matches text-embedding-004 output.
	DefaultEmbedderDimension = 768

	// MaxEmbedderDimension is a sanity bound on configured dimensions.
	MaxEmbedderDimension = 8192

	// DefaultFetchTimeout bounds a single URL extraction request.
	// An explicit timeout on extraction network calls is required to
	// avoid unbounded blocking during ingestion.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxFetchBytes limits the size of a fetched web page (10MB).
	DefaultMaxFetchBytes int64 = 10 * 1024 * 1024

	// DefaultMaxUploadBytes limits the size of an uploaded PDF (32MB).
	DefaultMaxUploadBytes int64 = 32 * 1024 * 1024

	// DefaultRateBurst is the per-IP rate limiter burst size.
	DefaultRateBurst = 60
)

// Config holds all docuchat configuration.
type Config struct {
	// Server
	Addr       string `mapstructure:"addr"`
	RateBurst  int    `mapstructure:"rate_burst"`
	TrustProxy bool   `mapstructure:"trust_proxy"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`

	// Embedding. Model identifier and vector dimension are fixed at
	// process start; every vector in the index shares them.
	Provider          string `mapstructure:"provider"`
	EmbedderModel     string `mapstructure:"embedder_model"`
	EmbedderDimension int    `mapstructure:"embedder_dimension"`
	OpenAIBaseURL     string `mapstructure:"openai_base_url"`

	// Extraction
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	MaxFetchBytes  int64         `mapstructure:"max_fetch_bytes"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`

	// Observability. Empty endpoint disables trace export.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// Load reads configuration from file, environment, and defaults.
// The result is validated; Load fails fast on invalid values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".docuchat"))
	}
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("DOCUCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("rate_burst", DefaultRateBurst)
	v.SetDefault("trust_proxy", false)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("embedder_dimension", DefaultEmbedderDimension)
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")

	v.SetDefault("fetch_timeout", DefaultFetchTimeout)
	v.SetDefault("max_fetch_bytes", DefaultMaxFetchBytes)
	v.SetDefault("max_upload_bytes", DefaultMaxUploadBytes)

	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("service_name", "docuchat")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Addr == "" || !strings.Contains(c.Addr, ":") {
		return fmt.Errorf("%w: %q (expected host:port)", ErrInvalidAddr, c.Addr)
	}

	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)",
			ErrInvalidProvider, c.Provider, ProviderGemini, ProviderOpenAI)
	}

	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidEmbedderModel)
	}

	if c.EmbedderDimension <= 0 || c.EmbedderDimension > MaxEmbedderDimension {
		return fmt.Errorf("%w: %d (expected 1..%d)",
			ErrInvalidDimension, c.EmbedderDimension, MaxEmbedderDimension)
	}

	if c.FetchTimeout <= 0 || c.FetchTimeout > 10*time.Minute {
		return fmt.Errorf("%w: fetch_timeout %s", ErrInvalidTimeout, c.FetchTimeout)
	}

	return nil
}

// APIKey returns the API key for the configured provider from the
// environment. Keys are never stored in the config file.
func (c *Config) APIKey() (string, error) {
	switch c.Provider {
	case ProviderGemini:
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("%w: GEMINI_API_KEY not set", ErrMissingAPIKey)
	case ProviderOpenAI:
		// Local OpenAI-compatible servers (Ollama) accept any key.
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key, nil
		}
		return "ollama", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidProvider, c.Provider)
	}
}

// SlogLevel maps the configured log level string to a slog.Level.
// Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultAPIKey = "development-key"
)

var (
	ErrMissingCredential = errors.New("model credential is required")
	ErrMissingSiteURL    = errors.New("SITE_URL is required")
	ErrUnknownProvider   = errors.New("unknown model provider")
)

// Config stores all configuration for the application.
type Config struct {
	ModelProvider string `mapstructure:"MODEL_PROVIDER"`
	ModelName     string `mapstructure:"MODEL_NAME"`
	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY"`

	SiteURL        string  `mapstructure:"SITE_URL"`
	PagesToCheck   string  `mapstructure:"PAGES_TO_CHECK"`
	RateLimitDelay float64 `mapstructure:"RATE_LIMIT_DELAY"`
	MaxRetries     int     `mapstructure:"MAX_RETRIES"`
	BatchSize      int     `mapstructure:"BATCH_SIZE"`
	AutoApply      bool    `mapstructure:"AUTO_APPLY"`
	OutputFile     string  `mapstructure:"OUTPUT_FILE"`

	UserAgent    string `mapstructure:"USER_AGENT"`
	FetchTimeout int    `mapstructure:"FETCH_TIMEOUT"`
	Proxies      string `mapstructure:"PROXIES"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	ServerPort    string `mapstructure:"SERVER_PORT"`
	APIKey        string `mapstructure:"API_KEY"`
	CacheTTLHours int    `mapstructure:"CACHE_TTL_HOURS"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	PostgresURL   string `mapstructure:"POSTGRES_URL"`
	ResultsBucket string `mapstructure:"RESULTS_BUCKET"`

	EditorURL        string `mapstructure:"EDITOR_URL"`
	ChromeProfileDir string `mapstructure:"CHROME_PROFILE_DIR"`
	Headless         bool   `mapstructure:"HEADLESS"`
	ApplyTimeout     int    `mapstructure:"APPLY_TIMEOUT"`
}

// Load reads configuration from a .env file in the working directory or
// environment variables.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = v.ReadInConfig()

	// Legacy variable names.
	_ = v.BindEnv("SITE_URL", "SITE_URL", "FRAMER_SITE_URL")
	_ = v.BindEnv("EDITOR_URL", "EDITOR_URL", "FRAMER_PROJECT_URL")

	// Every key needs a default so Unmarshal picks up its env var.
	v.SetDefault("MODEL_PROVIDER", ProviderOpenAI)
	v.SetDefault("MODEL_NAME", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("SITE_URL", "")
	v.SetDefault("PAGES_TO_CHECK", "")
	v.SetDefault("RATE_LIMIT_DELAY", 2.0) // in seconds
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("BATCH_SIZE", 0)
	v.SetDefault("AUTO_APPLY", false)
	v.SetDefault("OUTPUT_FILE", "alt_text_results.json")
	v.SetDefault("USER_AGENT", "Mozilla/5.0 (compatible; AltTextBot/1.0)")
	v.SetDefault("FETCH_TIMEOUT", 30) // in seconds
	v.SetDefault("PROXIES", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("API_KEY", DefaultAPIKey)
	v.SetDefault("CACHE_TTL_HOURS", 24)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("RESULTS_BUCKET", "")
	v.SetDefault("EDITOR_URL", "")
	v.SetDefault("CHROME_PROFILE_DIR", "")
	v.SetDefault("HEADLESS", false)
	v.SetDefault("APPLY_TIMEOUT", 300) // in seconds

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ModelProvider = strings.ToLower(strings.TrimSpace(cfg.ModelProvider))
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	return &cfg, nil
}

// Credential returns the API key of the selected model provider.
func (c *Config) Credential() string {
	if c.ModelProvider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// ValidateModel checks that a usable model backend is configured.
func (c *Config) ValidateModel() error {
	switch c.ModelProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.ModelProvider)
	}
	if c.Credential() == "" {
		return fmt.Errorf("%w: set %s", ErrMissingCredential, c.credentialKey())
	}
	return nil
}

// Validate checks everything a batch run needs before touching the network.
func (c *Config) Validate() error {
	if err := c.ValidateModel(); err != nil {
		return err
	}
	if c.SiteURL == "" {
		return ErrMissingSiteURL
	}
	return nil
}

func (c *Config) credentialKey() string {
	if c.ModelProvider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// PageList splits PAGES_TO_CHECK. No pages means the root page only.
func (c *Config) PageList() []string {
	if strings.TrimSpace(c.PagesToCheck) == "" {
		return []string{""}
	}
	parts := strings.Split(c.PagesToCheck, ",")
	pages := make([]string, 0, len(parts))
	for _, p := range parts {
		pages = append(pages, strings.TrimSpace(p))
	}
	return pages
}

// ProxyList splits PROXIES, dropping blanks.
func (c *Config) ProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.Proxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) PacingInterval() time.Duration {
	if c.RateLimitDelay <= 0 {
		return 0
	}
	return time.Duration(c.RateLimitDelay * float64(time.Second))
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

func (c *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Config) ApplyTimeoutDuration() time.Duration {
	return time.Duration(c.ApplyTimeout) * time.Second
}

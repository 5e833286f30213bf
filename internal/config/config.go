// Package config loads the server configuration with viper.
//
// Precedence, lowest first: built-in defaults, the config file, CATCHUP_*
// environment variables (plus the PORT, CLAUDE_API_KEY and GEMINI_API_KEY
// aliases), then command line flags bound through Load.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vector76/catchup/internal/cache"
	"github.com/vector76/catchup/internal/llm"
	"github.com/vector76/catchup/internal/markdown"
)

// Config is the complete server configuration.
type Config struct {
	Port      int             `mapstructure:"port"`
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Render    RenderConfig    `mapstructure:"render"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type LLMConfig struct {
	Provider  string        `mapstructure:"provider"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
}

type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	TTL      time.Duration `mapstructure:"ttl"`
	Size     int           `mapstructure:"size"`
	File     string        `mapstructure:"file"`
	RedisURL string        `mapstructure:"redis_url"`
}

// CatalogConfig points at an optional JSON catalog replacing the built-in
// industries and time periods.
type CatalogConfig struct {
	File string `mapstructure:"file"`
}

type RenderConfig struct {
	Engine   string `mapstructure:"engine"`
	Sanitize bool   `mapstructure:"sanitize"`
}

// RateLimitConfig limits catch-up submissions per client IP. RPS <= 0
// disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"port":      "port",
	"log-level": "log.level",
	"provider":  "llm.provider",
	"cache":     "cache.backend",
	"engine":    "render.engine",
}

// Load reads the configuration. cfgFile may be empty to search the default
// locations; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("catchup")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/catchup")
	}

	v.SetEnvPrefix("CATCHUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindAliases(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Provider specific keys fill in when no generic key is set.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v.GetString("llm." + strings.ToLower(cfg.LLM.Provider) + "_api_key")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func bindAliases(v *viper.Viper) error {
	aliases := map[string][]string{
		"port":               {"CATCHUP_PORT", "PORT"},
		"llm.claude_api_key": {"CLAUDE_API_KEY"},
		"llm.gemini_api_key": {"GEMINI_API_KEY"},
	}
	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("binding env for %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("llm.provider", llm.ProviderClaude)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.claude_api_key", "")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.max_tokens", 2048)

	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.ttl", cache.DefaultTTL)
	v.SetDefault("cache.size", cache.DefaultSize)
	v.SetDefault("cache.file", "")
	v.SetDefault("cache.redis_url", "")

	v.SetDefault("catalog.file", "")

	v.SetDefault("render.engine", markdown.EngineFragment)
	v.SetDefault("render.sanitize", false)

	v.SetDefault("rate_limit.rps", 1.0)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	switch c.LLM.Provider {
	case llm.ProviderClaude, llm.ProviderGemini:
		if c.LLM.APIKey == "" {
			errs = append(errs, fmt.Errorf("an API key is required for the %s provider", c.LLM.Provider))
		}
	case llm.ProviderStatic:
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be claude, gemini or static, got %q", c.LLM.Provider))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be greater than 0"))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, errors.New("llm.max_tokens must be greater than 0"))
	}

	switch c.Cache.Backend {
	case cache.BackendMemory:
		if c.Cache.Size <= 0 {
			errs = append(errs, errors.New("cache.size must be greater than 0"))
		}
	case cache.BackendFile:
		if c.Cache.File == "" {
			errs = append(errs, errors.New("cache.file is required for the file backend"))
		}
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be memory, file or redis, got %q", c.Cache.Backend))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be greater than 0"))
	}

	switch c.Render.Engine {
	case markdown.EngineFragment, markdown.EngineCommonMark:
	default:
		errs = append(errs, fmt.Errorf("render.engine must be fragment or commonmark, got %q", c.Render.Engine))
	}

	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit.burst must be greater than 0 when rate limiting is enabled"))
	}

	return errors.Join(errs...)
}

// CacheOptions converts the cache section for cache.New.
func (c *Config) CacheOptions() cache.Config {
	return cache.Config{
		Backend:  c.Cache.Backend,
		TTL:      c.Cache.TTL,
		Size:     c.Cache.Size,
		File:     c.Cache.File,
		RedisURL: c.Cache.RedisURL,
	}
}

// LLMOptions converts the llm section for llm.New.
func (c *Config) LLMOptions() llm.Config {
	return llm.Config{
		Provider:  c.LLM.Provider,
		APIKey:    c.LLM.APIKey,
		Model:     c.LLM.Model,
		BaseURL:   c.LLM.BaseURL,
		MaxTokens: c.LLM.MaxTokens,
		Timeout:   c.LLM.Timeout,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

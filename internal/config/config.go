// Package config loads matcher configuration from defaults, an optional file,
// MATCHER_* environment variables and bound command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. MATCHER_RANKING_TOP_K
const EnvPrefix = "MATCHER"

// Scorer kinds
const (
	ScorerInterpretable = "interpretable"
	ScorerLearned       = "learned"
)

// Embedding providers
const (
	ProviderHash   = "hash"
	ProviderGemini = "gemini"
)

// Embedding cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the full matcher configuration
type Config struct {
	Ranking      RankingConfig   `mapstructure:"ranking"`
	Embedding    EmbeddingConfig `mapstructure:"embedding"`
	Redis        RedisConfig     `mapstructure:"redis"`
	Criteria     CriteriaConfig  `mapstructure:"criteria"`
	LLM          LLMConfig       `mapstructure:"llm"`
	Scorer       ScorerConfig    `mapstructure:"scorer"`
	Server       ServerConfig    `mapstructure:"server"`
	Log          LogConfig       `mapstructure:"log"`
	VocabFile    string          `mapstructure:"vocab_file"`
	GeminiAPIKey string          `mapstructure:"gemini_api_key" json:"-"`
}

// RankingConfig controls ranking runs
type RankingConfig struct {
	TopK          int    `mapstructure:"top_k"`
	Workers       int    `mapstructure:"workers"`
	UseHardFilter bool   `mapstructure:"use_hard_filter"`
	Scorer        string `mapstructure:"scorer"`
	Explain       bool   `mapstructure:"explain"`
}

// EmbeddingConfig selects and bounds the text encoder
type EmbeddingConfig struct {
	Provider      string        `mapstructure:"provider"`
	Model         string        `mapstructure:"model"`
	Dimension     int           `mapstructure:"dimension"`
	Concurrency   int           `mapstructure:"concurrency"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	Cache         string        `mapstructure:"cache"`
	CacheSize     int           `mapstructure:"cache_size"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// RedisConfig is the shared embedding cache connection
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password" json:"-"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// CriteriaConfig selects the mandatory-criteria evaluators
type CriteriaConfig struct {
	CEL     bool          `mapstructure:"cel"`
	LLM     bool          `mapstructure:"llm"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLMConfig selects the Gemini generation models
type LLMConfig struct {
	LiteModel     string  `mapstructure:"lite_model"`
	StandardModel string  `mapstructure:"standard_model"`
	Temperature   float32 `mapstructure:"temperature"`
}

// ScorerConfig configures the learned scorer's model server and input widths
type ScorerConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	FeatureWidth   int           `mapstructure:"feature_width"`
	EmbeddingWidth int           `mapstructure:"embedding_width"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	ReadTimeout  time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout time.Duration   `mapstructure:"write_timeout"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds requests per client. Limits are per minute.
type RateLimitConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	DefaultLimit int      `mapstructure:"default_limit"`
	RankLimit    int      `mapstructure:"rank_limit"`
	ExplainLimit int      `mapstructure:"explain_limit"`
	Whitelist    []string `mapstructure:"whitelist"`
}

// LogConfig selects the log encoding and level
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers every key with its default. Keys must be known to
// viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ranking.top_k", 10)
	v.SetDefault("ranking.workers", 4)
	v.SetDefault("ranking.use_hard_filter", true)
	v.SetDefault("ranking.scorer", ScorerInterpretable)
	v.SetDefault("ranking.explain", false)

	v.SetDefault("embedding.provider", ProviderHash)
	v.SetDefault("embedding.model", "text-embedding-004")
	v.SetDefault("embedding.dimension", 384)
	v.SetDefault("embedding.concurrency", 8)
	v.SetDefault("embedding.timeout", 10*time.Second)
	v.SetDefault("embedding.retry_attempts", 3)
	v.SetDefault("embedding.cache", CacheMemory)
	v.SetDefault("embedding.cache_size", 10000)
	v.SetDefault("embedding.cache_ttl", 24*time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("criteria.cel", true)
	v.SetDefault("criteria.llm", false)
	v.SetDefault("criteria.timeout", 15*time.Second)

	v.SetDefault("llm.lite_model", "gemini-2.5-flash-lite")
	v.SetDefault("llm.standard_model", "gemini-2.5-flash")
	v.SetDefault("llm.temperature", 0.1)

	v.SetDefault("scorer.endpoint", "")
	v.SetDefault("scorer.timeout", 5*time.Second)
	v.SetDefault("scorer.retry_attempts", 2)
	v.SetDefault("scorer.feature_width", 150)
	v.SetDefault("scorer.embedding_width", 384)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.default_limit", 600)
	v.SetDefault("server.rate_limit.rank_limit", 60)
	v.SetDefault("server.rate_limit.explain_limit", 300)
	v.SetDefault("server.rate_limit.whitelist", []string{})

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)

	v.SetDefault("vocab_file", "")
	v.SetDefault("gemini_api_key", "")
}

// Bind wires defaults and environment lookup into v, and reads file when set
func Bind(v *viper.Viper, file string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini_api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return fmt.Errorf("binding gemini api key: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", file, err)
		}
	}
	return nil
}

// FromViper decodes and validates the configuration held by v
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load builds a configuration from defaults, file (optional) and the environment
func Load(file string) (*Config, error) {
	v := viper.New()
	if err := Bind(v, file); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("config error: "+format, args...))
		}
	}

	check(c.Ranking.TopK >= 0, "'ranking.top_k' must be non-negative")
	check(c.Ranking.Workers >= 0, "'ranking.workers' must be non-negative")
	check(oneOf(c.Ranking.Scorer, ScorerInterpretable, ScorerLearned), "'ranking.scorer' must be %q or %q, got %q", ScorerInterpretable, ScorerLearned, c.Ranking.Scorer)

	check(oneOf(c.Embedding.Provider, ProviderHash, ProviderGemini), "'embedding.provider' must be %q or %q, got %q", ProviderHash, ProviderGemini, c.Embedding.Provider)
	check(c.Embedding.Dimension > 0, "'embedding.dimension' must be positive")
	check(c.Embedding.Concurrency >= 0, "'embedding.concurrency' must be non-negative")
	check(oneOf(c.Embedding.Cache, CacheNone, CacheMemory, CacheRedis), "'embedding.cache' must be one of none, memory, redis, got %q", c.Embedding.Cache)
	check(c.Embedding.Cache != CacheRedis || c.Redis.Addr != "", "'redis.addr' is required when 'embedding.cache' is redis")
	check(c.Embedding.Provider != ProviderGemini || c.GeminiAPIKey != "", "'gemini_api_key' is required for the gemini embedding provider")
	check(!c.Criteria.LLM || c.GeminiAPIKey != "", "'gemini_api_key' is required when 'criteria.llm' is enabled")

	check(c.LLM.LiteModel != "" || c.LLM.StandardModel != "", "'llm.lite_model' or 'llm.standard_model' must be set")
	check(c.LLM.Temperature >= 0 && c.LLM.Temperature <= 2, "'llm.temperature' must be within [0, 2]")

	check(c.Scorer.FeatureWidth > 0, "'scorer.feature_width' must be positive")
	check(c.Scorer.EmbeddingWidth > 0, "'scorer.embedding_width' must be positive")
	check(c.Ranking.Scorer != ScorerLearned || c.Scorer.Endpoint != "", "'scorer.endpoint' is required for the learned scorer")

	check(c.Server.Port > 0 && c.Server.Port < 65536, "'server.port' must be between 1 and 65535")
	rl := c.Server.RateLimit
	check(!rl.Enabled || (rl.DefaultLimit > 0 && rl.RankLimit > 0 && rl.ExplainLimit > 0), "'server.rate_limit' limits must be positive when enabled")

	return errors.Join(errs...)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

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

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Ranking.TopK)
	assert.Equal(t, 4, cfg.Ranking.Workers)
	assert.True(t, cfg.Ranking.UseHardFilter)
	assert.Equal(t, ScorerInterpretable, cfg.Ranking.Scorer)
	assert.Equal(t, ProviderHash, cfg.Embedding.Provider)
	assert.Equal(t, 384, cfg.Embedding.Dimension)
	assert.Equal(t, 10*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, CacheMemory, cfg.Embedding.Cache)
	assert.True(t, cfg.Criteria.CEL)
	assert.False(t, cfg.Criteria.LLM)
	assert.Equal(t, 150, cfg.Scorer.FeatureWidth)
	assert.Equal(t, 384, cfg.Scorer.EmbeddingWidth)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.Server.RateLimit.RankLimit)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.StandardModel)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-6)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matcher.yaml")
	content := `
ranking:
  top_k: 3
  scorer: learned
embedding:
  timeout: 2s
  cache: redis
redis:
  addr: localhost:6379
scorer:
  endpoint: http://localhost:9000/score
vocab_file: vocab.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Ranking.TopK)
	assert.Equal(t, ScorerLearned, cfg.Ranking.Scorer)
	assert.Equal(t, 2*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "vocab.yaml", cfg.VocabFile)
	assert.Equal(t, 4, cfg.Ranking.Workers, "unset keys keep defaults")
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ranking: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MATCHER_RANKING_TOP_K", "25")
	t.Setenv("MATCHER_EMBEDDING_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("MATCHER_LOG_DEBUG", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Ranking.TopK)
	assert.Equal(t, ProviderGemini, cfg.Embedding.Provider)
	assert.Equal(t, "secret", cfg.GeminiAPIKey)
	assert.True(t, cfg.Log.Debug)
}

func TestFromViper_FlagOverride(t *testing.T) {
	v := viper.New()
	require.NoError(t, Bind(v, ""))
	v.Set("ranking.top_k", 2)

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Ranking.TopK)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.GeminiAPIKey = ""
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "negative top_k", mutate: func(c *Config) { c.Ranking.TopK = -1 }, wantErr: "ranking.top_k"},
		{name: "negative workers", mutate: func(c *Config) { c.Ranking.Workers = -2 }, wantErr: "ranking.workers"},
		{name: "unknown scorer", mutate: func(c *Config) { c.Ranking.Scorer = "random" }, wantErr: "ranking.scorer"},
		{name: "unknown provider", mutate: func(c *Config) { c.Embedding.Provider = "openai" }, wantErr: "embedding.provider"},
		{name: "unknown cache", mutate: func(c *Config) { c.Embedding.Cache = "disk" }, wantErr: "embedding.cache"},
		{name: "redis without addr", mutate: func(c *Config) { c.Embedding.Cache = CacheRedis }, wantErr: "redis.addr"},
		{name: "gemini without key", mutate: func(c *Config) { c.Embedding.Provider = ProviderGemini }, wantErr: "gemini_api_key"},
		{name: "llm criteria without key", mutate: func(c *Config) { c.Criteria.LLM = true }, wantErr: "criteria.llm"},
		{name: "no llm models", mutate: func(c *Config) { c.LLM.LiteModel, c.LLM.StandardModel = "", "" }, wantErr: "llm.lite_model"},
		{name: "llm temperature", mutate: func(c *Config) { c.LLM.Temperature = 2.5 }, wantErr: "llm.temperature"},
		{name: "zero feature width", mutate: func(c *Config) { c.Scorer.FeatureWidth = 0 }, wantErr: "scorer.feature_width"},
		{name: "zero embedding width", mutate: func(c *Config) { c.Scorer.EmbeddingWidth = 0 }, wantErr: "scorer.embedding_width"},
		{name: "zero dimension", mutate: func(c *Config) { c.Embedding.Dimension = 0 }, wantErr: "embedding.dimension"},
		{name: "learned without endpoint", mutate: func(c *Config) { c.Ranking.Scorer = ScorerLearned }, wantErr: "scorer.endpoint"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "zero rank limit", mutate: func(c *Config) { c.Server.RateLimit.RankLimit = 0 }, wantErr: "server.rate_limit"},
		{name: "rate limit disabled", mutate: func(c *Config) { c.Server.RateLimit = RateLimitConfig{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Ranking.TopK = -1
	cfg.Server.Port = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ranking.top_k")
	assert.Contains(t, err.Error(), "server.port")
}

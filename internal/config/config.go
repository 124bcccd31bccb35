package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the indexify API configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Google        GoogleConfig        `yaml:"google"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Cache         CacheConfig         `yaml:"cache"`
	Suggest       SuggestConfig       `yaml:"suggest"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ElasticsearchConfig holds the search index connection and schema settings.
type ElasticsearchConfig struct {
	Addresses        []string `yaml:"addresses"`
	CloudID          string   `yaml:"cloud_id"`
	APIKey           string   `yaml:"api_key"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	Index            string   `yaml:"index"`
	StatsIndex       string   `yaml:"stats_index"`
	VectorDims       int      `yaml:"vector_dims"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// GoogleConfig holds the Custom Search JSON API settings.
type GoogleConfig struct {
	APIKey          string  `yaml:"api_key"`
	EngineID        string  `yaml:"engine_id"`
	BaseURL         string  `yaml:"base_url"`
	ResultsPerQuery int     `yaml:"results_per_query"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	TimeoutSec      int     `yaml:"timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
// Provider "random" needs no credentials; "openai" talks to any
// OpenAI-compatible embeddings endpoint.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // random, openai (default: random)
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

// CacheConfig holds the optional Redis embedding cache settings.
// The cache is disabled when no address is configured.
type CacheConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
}

// SuggestConfig holds suggestion settings.
type SuggestConfig struct {
	MaxSuggestions int `yaml:"max_suggestions"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Elasticsearch.Index == "" {
		c.Elasticsearch.Index = "documents"
	}
	if c.Elasticsearch.StatsIndex == "" {
		c.Elasticsearch.StatsIndex = "search_stats"
	}
	if c.Elasticsearch.VectorDims <= 0 {
		c.Elasticsearch.VectorDims = 384
	}
	if c.Elasticsearch.ReadinessTimeout <= 0 {
		c.Elasticsearch.ReadinessTimeout = 10
	}
	if c.Google.BaseURL == "" {
		c.Google.BaseURL = "https://www.googleapis.com/customsearch/v1"
	}
	if c.Google.ResultsPerQuery <= 0 {
		c.Google.ResultsPerQuery = 10
	}
	if c.Google.RateLimitPerSec <= 0 {
		c.Google.RateLimitPerSec = 5
	}
	if c.Google.TimeoutSec <= 0 {
		c.Google.TimeoutSec = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "random"
	}
	if c.Suggest.MaxSuggestions <= 0 {
		c.Suggest.MaxSuggestions = 5
	}
	// Drop addresses that expanded to empty env vars.
	c.Cache.Addrs = compact(c.Cache.Addrs)
	c.Elasticsearch.Addresses = compact(c.Elasticsearch.Addresses)
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Elasticsearch.Addresses) == 0 && c.Elasticsearch.CloudID == "" {
		return fmt.Errorf("elasticsearch.addresses or elasticsearch.cloud_id is required")
	}
	switch c.Embedding.Provider {
	case "random":
		// ok
	case "openai":
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider %q", c.Embedding.Provider)
		}
	default:
		return fmt.Errorf("embedding.provider must be \"random\" or \"openai\", got %q", c.Embedding.Provider)
	}
	if c.Google.ResultsPerQuery > 10 {
		return fmt.Errorf("google.results_per_query must be at most 10, got %d", c.Google.ResultsPerQuery)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

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

// Config holds the jobgenie API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Adzuna   AdzunaConfig   `yaml:"adzuna"`
	Match    MatchConfig    `yaml:"match"`
	Catalog  []CatalogJob   `yaml:"catalog"`
	Logging  LoggingConfig  `yaml:"logging"`
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

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// OpenAIConfig holds embedding and completion provider settings.
// APIKey is a hard dependency: Validate fails when it is empty.
type OpenAIConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	EmbeddingModel  string `yaml:"embedding_model"`
	CompletionModel string `yaml:"completion_model"`
	Dimensions      int    `yaml:"dimensions"`
}

// AdzunaConfig holds job-listing service credentials. Both fields are
// optional: missing credentials degrade job-description fetch to the static
// fallback instead of failing startup.
type AdzunaConfig struct {
	AppID   string `yaml:"app_id"`
	AppKey  string `yaml:"app_key"`
	BaseURL string `yaml:"base_url"`
	Country string `yaml:"country"`
}

// MatchConfig holds matching engine settings.
type MatchConfig struct {
	DefaultQuery    string `yaml:"default_query"`
	DefaultLocation string `yaml:"default_location"`
	CallTimeoutSec  int    `yaml:"call_timeout_sec"`
	RetryAttempts   int    `yaml:"retry_attempts"`
	RetryBackoffMS  int    `yaml:"retry_backoff_ms"`
}

// CatalogJob is one configured job posting for the catalog-match endpoint.
// When the catalog section is empty, the built-in postings are used.
type CatalogJob struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Location    string `yaml:"location"`
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

// HasAdzuna reports whether both job-listing credentials are present.
func (c *Config) HasAdzuna() bool {
	return c.Adzuna.AppID != "" && c.Adzuna.AppKey != ""
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-ada-002"
	}
	if c.OpenAI.CompletionModel == "" {
		c.OpenAI.CompletionModel = "gpt-4o-mini"
	}
	if c.Adzuna.BaseURL == "" {
		c.Adzuna.BaseURL = "https://api.adzuna.com"
	}
	if c.Adzuna.Country == "" {
		c.Adzuna.Country = "us"
	}
	if c.Match.DefaultQuery == "" {
		c.Match.DefaultQuery = "full stack developer"
	}
	if c.Match.DefaultLocation == "" {
		c.Match.DefaultLocation = "USA"
	}
	if c.Match.CallTimeoutSec <= 0 {
		c.Match.CallTimeoutSec = 30
	}
	if c.Match.RetryAttempts <= 0 {
		c.Match.RetryAttempts = 3
	}
	if c.Match.RetryBackoffMS <= 0 {
		c.Match.RetryBackoffMS = 250
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	for i, job := range c.Catalog {
		if job.ID == "" || job.Title == "" || job.Description == "" {
			return fmt.Errorf("catalog[%d]: id, title and description are required", i)
		}
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

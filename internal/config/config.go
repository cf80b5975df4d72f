package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
)

// Config holds the pxsearch configuration.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// IndexConfig holds index location and locking settings.
type IndexConfig struct {
	BaseDir       string `yaml:"base_dir"` // directory holding one subdirectory per database
	Language      string `yaml:"language"`
	LockTimeoutMs int    `yaml:"lock_timeout_ms"`
}

// SearchConfig holds query defaults and limits.
type SearchConfig struct {
	DefaultOperator   string `yaml:"default_operator"` // OR (default) | AND
	DefaultMaxResults int    `yaml:"default_max_results"`
	MaxResults        int    `yaml:"max_results"`
}

// CacheConfig holds searcher cache settings.
type CacheConfig struct {
	Searchers int `yaml:"searchers"`
	MaxAgeSec int `yaml:"max_age_sec"` // 0 = reuse until invalidated
}

// LockTimeout returns the writer/reader lock wait as a duration.
func (c IndexConfig) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMs) * time.Millisecond
}

// MaxAge returns the searcher reuse window as a duration.
func (c CacheConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, substituting ${VAR} references first.
func Parse(data []byte) (Config, error) {
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
	if c.Index.Language == "" {
		c.Index.Language = "en"
	}
	if c.Index.LockTimeoutMs <= 0 {
		c.Index.LockTimeoutMs = 250
	}
	if c.Search.DefaultOperator == "" {
		c.Search.DefaultOperator = string(operator.Default)
	}
	if c.Search.DefaultMaxResults <= 0 {
		c.Search.DefaultMaxResults = 250
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 1000
	}
	if c.Cache.Searchers <= 0 {
		c.Cache.Searchers = 16
	}
	if c.Cache.MaxAgeSec < 0 {
		c.Cache.MaxAgeSec = 0
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Index.BaseDir == "" {
		return fmt.Errorf("index.base_dir is required")
	}
	if strings.ContainsAny(c.Index.Language, `/\`) || c.Index.Language == ".." {
		return fmt.Errorf("index.language must be a plain directory name, got %q", c.Index.Language)
	}
	if _, err := operator.Parse(c.Search.DefaultOperator); err != nil {
		return fmt.Errorf("search.default_operator must be \"OR\" or \"AND\", got %q", c.Search.DefaultOperator)
	}
	if c.Search.DefaultMaxResults > c.Search.MaxResults {
		return fmt.Errorf(
			"search.default_max_results (%d) must not exceed search.max_results (%d)",
			c.Search.DefaultMaxResults, c.Search.MaxResults,
		)
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

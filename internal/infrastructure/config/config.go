// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/resilience-core/internal/domain/simulation"
)

const (
	// DefaultConfigDir is the directory name for resil configuration.
	DefaultConfigDir = ".resil"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultOrgsFile is the default organizations file name.
	DefaultOrgsFile = "orgs.yaml"
	// DefaultDatabaseFile is the SQLite file name inside an org directory.
	DefaultDatabaseFile = "resil.db"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Simulation simulation.Config `yaml:"simulation,omitempty"`
	Forecast   ForecastConfig    `yaml:"forecast,omitempty"`
	LLM        LLMConfig         `yaml:"llm,omitempty"`
	Embedder   EmbedderConfig    `yaml:"embedder,omitempty"`
	Qdrant     QdrantConfig      `yaml:"qdrant,omitempty"`
	SQLite     SQLiteConfig      `yaml:"sqlite,omitempty"`
	Log        LogConfig         `yaml:"log,omitempty"`
	Metrics    MetricsConfig     `yaml:"metrics,omitempty"`
	Server     ServerConfig      `yaml:"server,omitempty"`
}

// ForecastConfig holds the projection horizons in days.
type ForecastConfig struct {
	Horizons []int `yaml:"horizons,omitempty"`
}

// LLMConfig holds configuration for the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite relational database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	// For per-org databases, this is computed dynamically using SQLitePathForOrg.
	Path string `yaml:"path,omitempty"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

// MetricsConfig controls where Prometheus metrics are written outside of serve.
type MetricsConfig struct {
	// Textfile is a node-exporter textfile collector path. Empty disables it.
	Textfile string `yaml:"textfile,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Simulation: simulation.DefaultConfig(),
		Forecast: ForecastConfig{
			Horizons: []int{30, 90},
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load loads configuration from the .resil directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'resil orgs create' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and applies environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Simulation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		if c.Qdrant.APIKey == "" {
			c.Qdrant.APIKey = key
		}
	}
	if level := os.Getenv("RESIL_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// ConfigDir returns the path to the .resil config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// OrgsFilePath returns the path to the organizations file.
func OrgsFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultOrgsFile)
}

// Exists checks if a resil config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

// SanitizeOrgName converts an organization name to a valid collection suffix.
func SanitizeOrgName(name string) string {
	name = strings.ToLower(name)

	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}

	return name
}

// GenerateCollectionName creates a scenario collection name for an org.
func GenerateCollectionName(orgName string) string {
	return "resil_" + SanitizeOrgName(orgName)
}

// SQLitePathForOrg returns the SQLite database path for a given org.
func SQLitePathForOrg(basePath, orgName string) string {
	return filepath.Join(OrgDir(basePath, orgName), DefaultDatabaseFile)
}

// OrgDir returns the directory path for a given org.
func OrgDir(basePath, orgName string) string {
	return filepath.Join(basePath, DefaultConfigDir, "orgs", SanitizeOrgName(orgName))
}

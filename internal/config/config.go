// Package config handles configuration loading and management for nova.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

const (
	appName           = "nova"
	projectConfigName = ".nova.yaml"
)

// ErrUnknownKey is returned by Get and Set for keys nova does not define.
var ErrUnknownKey = errors.New("unknown config key")

// Config holds all configuration for nova.
type Config struct {
	Runtime      RuntimeConfig   `mapstructure:"runtime"`
	Anthropic    AnthropicConfig `mapstructure:"anthropic"`
	Defaults     DefaultsConfig  `mapstructure:"defaults"`
	Storage      StorageConfig   `mapstructure:"storage"`
	Company      CompanyConfig   `mapstructure:"company"`
	Logging      LoggingConfig   `mapstructure:"logging"`
	TiersFile    string          `mapstructure:"tiers_file"`
	PersonasFile string          `mapstructure:"personas_file"`
}

// RuntimeConfig holds local model runtime settings.
type RuntimeConfig struct {
	OllamaHost string        `mapstructure:"ollama_host"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	Region     string `mapstructure:"region"`
	Profile    string `mapstructure:"profile"`
	MaxTokens  int64  `mapstructure:"max_tokens"`
}

// DefaultsConfig holds the session state used on first start.
type DefaultsConfig struct {
	Tier int    `mapstructure:"tier"`
	Mode string `mapstructure:"mode"`
}

// StorageConfig selects the state database.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	// Path is the database file. Empty means the XDG data directory.
	Path string `mapstructure:"path"`
}

// CompanyConfig holds company-mode settings.
type CompanyConfig struct {
	MaxParallel int `mapstructure:"max_parallel"`
}

// LoggingConfig holds log sink settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// File is the log file. Empty means logs/nova.log under the data directory.
	File string `mapstructure:"file"`
}

// DefaultTier returns the configured start tier.
func (c *Config) DefaultTier() models.Tier {
	return models.Tier(c.Defaults.Tier)
}

// DefaultMode returns the configured start mode.
func (c *Config) DefaultMode() models.Mode {
	m, _ := models.ParseMode(c.Defaults.Mode)
	return m
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if !c.DefaultTier().Valid() {
		return fmt.Errorf("defaults.tier: invalid tier %d", c.Defaults.Tier)
	}
	if _, ok := models.ParseMode(c.Defaults.Mode); !ok {
		return fmt.Errorf("defaults.mode: invalid mode %q", c.Defaults.Mode)
	}
	if c.Storage.Driver != "sqlite" && c.Storage.Driver != "sqlite3" {
		return fmt.Errorf("storage.driver: unsupported driver %q", c.Storage.Driver)
	}
	if c.Company.MaxParallel < 1 {
		return fmt.Errorf("company.max_parallel: must be at least 1, got %d", c.Company.MaxParallel)
	}
	if c.Runtime.Timeout < 0 {
		return fmt.Errorf("runtime.timeout: must not be negative")
	}
	return nil
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, NOVA_*)
// 2. Project config (.nova.yaml in current directory or parent)
// 3. User config (~/.config/nova/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v, err := load()
	if err != nil {
		return nil, err
	}
	return decode(v)
}

func load() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	bindEnv(v)
	return v, nil
}

// bindEnv maps NOVA_RUNTIME_OLLAMA_HOST style variables onto keys.
func bindEnv(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, envName(key))
	}
	_ = v.BindEnv("anthropic.api_key", "NOVA_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Logging.File = expandPath(cfg.Logging.File)
	cfg.TiersFile = expandPath(cfg.TiersFile)
	cfg.PersonasFile = expandPath(cfg.PersonasFile)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from one file in place of the user and
// project files. Environment variables still win.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	bindEnv(v)
	return decode(v)
}

// Keys lists every configuration key in sorted order.
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	slices.Sort(keys)
	return keys
}

// Get returns the effective value of a key after all sources are merged.
func Get(key string) (any, error) {
	if !slices.Contains(Keys(), key) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	return v.Get(key), nil
}

// Set stores a single key in the user config file. The resulting
// configuration is validated before anything is written.
func Set(key, value string) error {
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	// Empty clears the key; ${VAR} references are checked when expanded.
	if key == "anthropic.api_key" && value != "" && !strings.HasPrefix(value, "${") {
		if err := ValidateAPIKey(value); err != nil {
			return err
		}
	}

	v := viper.New()
	path := GetUserConfigPath()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading user config: %w", err)
		}
	}
	v.Set(key, value)

	check := viper.New()
	setDefaults(check)
	if err := check.MergeConfigMap(v.AllSettings()); err != nil {
		return fmt.Errorf("merging config: %w", err)
	}
	if _, err := decode(check); err != nil {
		return err
	}
	return writeUserConfig(v)
}

func writeUserConfig(v *viper.Viper) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := v.WriteConfigAs(GetUserConfigPath()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("runtime.ollama_host", "http://localhost:11434")
	v.SetDefault("runtime.timeout", "120s")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.region", "")
	v.SetDefault("anthropic.profile", "")
	v.SetDefault("anthropic.max_tokens", 4096)

	v.SetDefault("defaults.tier", int(models.TierPowerhouse))
	v.SetDefault("defaults.mode", string(models.ModePersonal))

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "")

	v.SetDefault("company.max_parallel", 3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	v.SetDefault("tiers_file", "")
	v.SetDefault("personas_file", "")
}

// getUserConfigDir returns the XDG config directory for nova.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// findProjectConfig searches for .nova.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, projectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// expandPath expands environment references and a leading ~/.
func expandPath(p string) string {
	p = expandEnv(p)
	if rest, ok := cutHome(p); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return p
}

func cutHome(p string) (string, bool) {
	if p == "~" {
		return "", true
	}
	if len(p) > 1 && p[0] == '~' && (p[1] == '/' || p[1] == filepath.Separator) {
		return p[2:], true
	}
	return "", false
}

func envName(key string) string {
	b := []byte("NOVA_" + key)
	for i, c := range b {
		switch {
		case c == '.':
			b[i] = '_'
		case c >= 'a' && c <= 'z':
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			OllamaHost: "http://localhost:11434",
			Timeout:    120 * time.Second,
		},
		Anthropic: AnthropicConfig{
			MaxTokens: 4096,
		},
		Defaults: DefaultsConfig{
			Tier: int(models.TierPowerhouse),
			Mode: string(models.ModePersonal),
		},
		Storage: StorageConfig{
			Driver: "sqlite",
		},
		Company: CompanyConfig{
			MaxParallel: 3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadTierTable reads a tier table file. An empty path returns the
// built-in table. The loaded table must cover every role at every tier.
func LoadTierTable(path string) (tiers.Table, error) {
	if path == "" {
		return tiers.DefaultTable(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return tiers.Table{}, fmt.Errorf("reading tier table %s: %w", path, err)
	}

	var table tiers.Table
	if err := v.Unmarshal(&table); err != nil {
		return tiers.Table{}, fmt.Errorf("unmarshaling tier table %s: %w", path, err)
	}
	if err := table.Validate(); err != nil {
		return tiers.Table{}, fmt.Errorf("tier table %s: %w", path, err)
	}
	return table, nil
}

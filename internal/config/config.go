// Package config loads spm's user configuration using Viper.
//
// Values come from, in increasing precedence: built-in defaults, an
// optional TOML file ($XDG_CONFIG_HOME/spm/config.toml or --config), and
// SPM_* environment variables. GITHUB_TOKEN is honored as a fallback for
// github.token. Command-line flags are applied by the CLI on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/spm/pkg/errors"
)

const (
	// AppName is used for the config and cache directory names.
	AppName = "spm"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SPM"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the resolved configuration.
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Cache  CacheConfig  `mapstructure:"cache"`
}

// GitHubConfig selects the release API and download hosts.
type GitHubConfig struct {
	APIURL      string `mapstructure:"api_url"`
	DownloadURL string `mapstructure:"download_url"`
	Token       string `mapstructure:"token"`
}

// HTTPConfig tunes outgoing requests.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"` // 0 = no timeout
	UserAgent string        `mapstructure:"user_agent"`
}

// CacheConfig selects where release manifests are cached.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	Dir      string        `mapstructure:"dir"`
	TTL      time.Duration `mapstructure:"ttl"` // 0 = never expires
	RedisURL string        `mapstructure:"redis_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	dir, _ := CacheDir()
	return Config{
		GitHub: GitHubConfig{
			APIURL:      "https://api.github.com",
			DownloadURL: "https://github.com",
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Dir:     dir,
		},
	}
}

// Load resolves the configuration. path names an explicit config file,
// which must exist; with an empty path the default location is read when
// present. It returns the config and the file it was read from, if any.
func Load(path string) (*Config, string, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("github.api_url", defaults.GitHub.APIURL)
	v.SetDefault("github.download_url", defaults.GitHub.DownloadURL)
	v.SetDefault("github.token", "")
	v.SetDefault("http.timeout", defaults.HTTP.Timeout)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("cache.backend", defaults.Cache.Backend)
	v.SetDefault("cache.dir", defaults.Cache.Dir)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("cache.redis_url", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, "", fmt.Errorf("bind GITHUB_TOKEN: %w", err)
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return nil, "", err
	}
	if resolved != "" {
		v.SetConfigFile(resolved)
		v.SetConfigType(ConfigFileExt)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("read config %s: %w", resolved, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolved, nil
}

// Validate checks values Viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.backend is %q but cache.redis_url is empty", CacheRedis)
		}
	default:
		return fmt.Errorf("unknown cache.backend %q: want %s, %s or %s", c.Cache.Backend, CacheFile, CacheRedis, CacheNone)
	}
	if err := errors.ValidateURL(c.GitHub.APIURL); err != nil {
		return fmt.Errorf("github.api_url: %w", err)
	}
	if err := errors.ValidateURL(c.GitHub.DownloadURL); err != nil {
		return fmt.Errorf("github.download_url: %w", err)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file not found: %s", path)
		}
		return path, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", nil
	}
	candidate := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(candidate); err != nil {
		return "", nil
	}
	return candidate, nil
}

// ConfigDir returns the spm configuration directory: %APPDATA%\spm on
// Windows and $XDG_CONFIG_HOME/spm (default ~/.config/spm) elsewhere.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName), nil
		}
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// CacheDir returns the default cache directory using the XDG convention
// (~/.cache/spm).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

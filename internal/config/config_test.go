package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points every lookup at empty temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("APPDATA", filepath.Join(dir, "config"))
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("SPM_GITHUB_TOKEN", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, path, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want none", path)
	}
	if cfg.GitHub.APIURL != "https://api.github.com" || cfg.GitHub.DownloadURL != "https://github.com" {
		t.Errorf("github = %+v", cfg.GitHub)
	}
	if cfg.HTTP.Timeout != 0 {
		t.Errorf("timeout = %v, want 0", cfg.HTTP.Timeout)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Cache.TTL != 0 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if want := filepath.Join(dir, "cache", AppName); cfg.Cache.Dir != want {
		t.Errorf("cache dir = %q, want %q", cfg.Cache.Dir, want)
	}
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "config", AppName)
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	src := `
[github]
download_url = "https://mirror.example.com"

[http]
timeout = "30s"

[cache]
backend = "none"
`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !strings.HasSuffix(path, "config.toml") {
		t.Errorf("path = %q", path)
	}
	if cfg.GitHub.DownloadURL != "https://mirror.example.com" {
		t.Errorf("download_url = %q", cfg.GitHub.DownloadURL)
	}
	if cfg.GitHub.APIURL != "https://api.github.com" {
		t.Errorf("api_url default lost: %q", cfg.GitHub.APIURL)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.HTTP.Timeout)
	}
	if cfg.Cache.Backend != CacheNone {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("[cache]\nttl = \"1h\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != path || cfg.Cache.TTL != time.Hour {
		t.Errorf("Load(%q) = %+v from %q", path, cfg.Cache, got)
	}

	if _, _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Load() should fail for a missing explicit file")
	}
}

func TestLoadEnv(t *testing.T) {
	isolate(t)
	t.Setenv("SPM_CACHE_BACKEND", "none")
	t.Setenv("SPM_GITHUB_API_URL", "http://127.0.0.1:9999")
	t.Setenv("GITHUB_TOKEN", "ghp_fallback")

	cfg, _, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cache.Backend != CacheNone {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if cfg.GitHub.APIURL != "http://127.0.0.1:9999" {
		t.Errorf("api_url = %q", cfg.GitHub.APIURL)
	}
	if cfg.GitHub.Token != "ghp_fallback" {
		t.Errorf("token = %q", cfg.GitHub.Token)
	}

	t.Setenv("SPM_GITHUB_TOKEN", "ghp_explicit")
	cfg, _, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GitHub.Token != "ghp_explicit" {
		t.Errorf("SPM_GITHUB_TOKEN should win, got %q", cfg.GitHub.Token)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis with url", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisURL = "redis://localhost:6379/0" }, false},
		{"redis without url", func(c *Config) { c.Cache.Backend = CacheRedis }, true},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"ftp api url", func(c *Config) { c.GitHub.APIURL = "ftp://example.com" }, true},
		{"empty download url", func(c *Config) { c.GitHub.DownloadURL = "" }, true},
		{"negative timeout", func(c *Config) { c.HTTP.Timeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

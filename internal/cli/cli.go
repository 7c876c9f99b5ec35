// Package cli implements the spm command-line interface.
//
// The CLI is built with cobra. Every command shares one [CLI] value that
// carries the logger, the global flags and the loaded configuration, and
// builds a [pipeline.Runner] on demand.
//
// # Commands
//
//   - init: create spm.toml and sqlite_extensions/
//   - add: resolve a package, record it in spm.toml, lock and install
//   - install: regenerate spm.lock and install
//   - ci: install exactly what spm.lock records
//   - activate, deactivate: print shell lines that set the library path
//   - run: run a program with the library path set
//   - cache: manage the release manifest cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// traces HTTP requests and cache lookups.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spm/internal/config"
	"github.com/matzehuels/spm/pkg/buildinfo"
	"github.com/matzehuels/spm/pkg/cache"
	"github.com/matzehuels/spm/pkg/integrations/github"
	"github.com/matzehuels/spm/pkg/observability"
	"github.com/matzehuels/spm/pkg/pipeline"
	"github.com/matzehuels/spm/pkg/platform"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "spm"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags
	prefix     string
	configPath string
	noCache    bool
	refresh    bool

	cfg         *config.Config
	libraryPath platform.LibraryPath
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:      newLogger(w, level),
		libraryPath: platform.CurrentLibraryPath(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "spm installs loadable SQLite extensions",
		Long:          `spm is a package manager for SQLite extensions. It resolves GitHub releases, pins them in spm.lock with their checksums, and installs the right build for this machine into sqlite_extensions/.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.prefix, "prefix", "", "project directory (default: current directory)")
	flags.StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/spm/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the release manifest cache")
	flags.BoolVar(&c.refresh, "refresh", false, "refetch release manifests instead of reading the cache")

	// Register all subcommands
	root.AddCommand(c.initCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.ciCommand())
	root.AddCommand(c.activateCommand())
	root.AddCommand(c.deactivateCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration and installs the logging hooks. It runs once
// per invocation, before any subcommand.
func (c *CLI) setup() error {
	cfg, path, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	c.cfg = cfg
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}

	observability.NewLogHooks(c.Logger).Register()
	return nil
}

// settings returns the loaded configuration, or the defaults when setup has
// not run.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		cfg := config.Default()
		c.cfg = &cfg
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The returned close
// function releases the cache.
func (c *CLI) newRunner(ctx context.Context, opts pipeline.Options) (*pipeline.Runner, func(), error) {
	ch, err := newCache(ctx, c.settings())
	if err != nil {
		return nil, nil, err
	}

	cfg := c.settings()
	gh := github.NewClient(
		github.WithAPIURL(cfg.GitHub.APIURL),
		github.WithDownloadURL(cfg.GitHub.DownloadURL),
		github.WithToken(cfg.GitHub.Token),
		github.WithUserAgent(cfg.HTTP.UserAgent),
		github.WithTimeout(cfg.HTTP.Timeout),
		github.WithCache(ch, cfg.Cache.TTL),
		github.WithKeyer(cacheKeyer(cfg)),
	)

	opts.Refresh = opts.Refresh || c.refresh
	if opts.LibraryPath == (platform.LibraryPath{}) {
		opts.LibraryPath = c.libraryPath
	}
	closeFn := func() {
		if err := ch.Close(); err != nil {
			c.Logger.Debug("close cache", "error", err)
		}
	}
	return pipeline.NewRunner(gh, opts, c.Logger), closeFn, nil
}

// cacheKeyer scopes manifest cache keys by download host when release
// assets come from somewhere other than github.com, so mirrors never share
// entries.
func cacheKeyer(cfg *config.Config) cache.Keyer {
	if strings.TrimRight(cfg.GitHub.DownloadURL, "/") == github.DefaultDownloadURL {
		return cache.NewDefaultKeyer()
	}
	u, err := url.Parse(cfg.GitHub.DownloadURL)
	if err != nil || u.Host == "" {
		return cache.NewScopedKeyer(nil, cfg.GitHub.DownloadURL+":")
	}
	return cache.NewScopedKeyer(nil, u.Host+":")
}

// newCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching rather than failing the command.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cache.DefaultRedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect to redis cache: %w", err)
		}
		return rc, nil
	default:
		if cfg.Cache.Dir == "" {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// project returns the project selected by --prefix or the working directory.
func (c *CLI) project() (pipeline.Project, error) {
	return pipeline.NewProject(c.prefix)
}

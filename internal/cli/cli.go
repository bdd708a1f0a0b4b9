// Package cli implements the uphere command-line interface.
//
// This package provides commands for browsing the satellite catalog,
// searching by name or NORAD ID, querying tier-gated tracking endpoints,
// and managing the response cache. The CLI is built using cobra with
// verbose logging via the charmbracelet/log library.
//
// Commands are thin consumers of the library: they touch only the
// satellites.Service query operations, the tier-gated client calls, and
// the client's request statistics.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/orbitwatch/uphere-go/pkg/buildinfo"
	"github.com/orbitwatch/uphere-go/pkg/cache"
	"github.com/orbitwatch/uphere-go/pkg/observability"
	"github.com/orbitwatch/uphere-go/pkg/satellites"
	"github.com/orbitwatch/uphere-go/pkg/uphere"
)

// appName is the application name used for directories and display.
const appName = "uphere"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// persistent flags
	cacheBackend string
	redisAddr    string
	rate         float64

	// built lazily by service()
	client *uphere.Client
	svc    *satellites.Service
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "uphere",
		Short:        "uphere tracks satellites via the UpHere Space API",
		Long:         `uphere is a CLI for the UpHere Space satellite-tracking API: browse the catalog, search by name or NORAD ID, and query orbit, detail, and location data within your subscription tier.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			observability.SetHTTPHooks(&logHTTPHooks{logger: c.Logger})
			observability.SetCacheHooks(&logCacheHooks{logger: c.Logger})
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.cacheBackend, "cache-backend", "file",
		"response cache backend: memory, file, redis, or none")
	root.PersistentFlags().StringVar(&c.redisAddr, "redis-addr", "localhost:6379",
		"redis address when --cache-backend=redis")
	root.PersistentFlags().Float64Var(&c.rate, "rate", 0,
		"override the request rate limit (requests per second)")

	// Register all subcommands
	root.AddCommand(c.satellitesCommand())
	root.AddCommand(c.findCommand())
	root.AddCommand(c.countriesCommand())
	root.AddCommand(c.launchSitesCommand())
	root.AddCommand(c.orbitCommand())
	root.AddCommand(c.detailsCommand())
	root.AddCommand(c.locationCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// service builds (once) the API client and the caching service on top of it.
func (c *CLI) service() (*satellites.Service, error) {
	if c.svc != nil {
		return c.svc, nil
	}

	client, err := c.apiClient()
	if err != nil {
		return nil, err
	}

	backend, err := c.newCache()
	if err != nil {
		return nil, err
	}

	c.svc = satellites.New(client, satellites.Options{Cache: backend})
	return c.svc, nil
}

// apiClient builds (once) the configured API client.
func (c *CLI) apiClient() (*uphere.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	cfg, err := uphere.LoadConfig()
	if err != nil {
		return nil, err
	}
	if c.rate > 0 {
		cfg.RequestsPerSecond = c.rate
	}

	client, err := uphere.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *CLI) newCache() (cache.Cache, error) {
	switch c.cacheBackend {
	case "memory":
		return cache.NewMemoryCache(), nil
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(cache.RedisConfig{Addr: c.redisAddr})
	case "file", "":
		dir, err := cacheDir()
		if err != nil {
			return cache.NewMemoryCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return nil, uphere.New(uphere.ErrCodeInvalidInput,
			"unknown cache backend %q: use memory, file, redis, or none", c.cacheBackend)
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/uphere/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

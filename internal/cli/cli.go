package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/whiteboard/pkg/assistant"
	"github.com/matzehuels/whiteboard/pkg/buildinfo"
	"github.com/matzehuels/whiteboard/pkg/cache"
	"github.com/matzehuels/whiteboard/pkg/config"
	"github.com/matzehuels/whiteboard/pkg/errors"
	"github.com/matzehuels/whiteboard/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "whiteboard"

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

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Whiteboard is an annotation surface with a chat and a visual assistant",
		Long: `Whiteboard serves a drawing canvas with pen, eraser and rectangle tools over
uploaded document pages, plus a text chat and a visual assistant that looks at
the canvas. The CLI also replays recorded input headlessly and pages through
documents in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/whiteboard/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.askCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newCache opens the configured cache backend. A file cache without a
// usable directory degrades to no caching.
func newCache(ctx context.Context, cfg config.Cache) (cache.Cache, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc := cache.NewRedisCache(cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			rc.Close()
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", cfg.RedisAddr)
		}
		return rc, nil
	default:
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

func newKeyer(cfg config.Cache) cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.KeyPrefix)
}

func newSnapshotStore(ctx context.Context, cfg config.Snapshots) (snapshot.Store, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return snapshot.NewMongoStore(connectCtx, cfg.MongoURI, cfg.Database, cfg.Collection)
	case config.BackendSQLite:
		return snapshot.NewSQLiteStore(cfg.SQLitePath)
	default:
		return snapshot.NullStore{}, nil
	}
}

func newAssistant(m config.Model) *assistant.Client {
	return assistant.New(assistant.Options{
		BaseURL:     m.BaseURL,
		Model:       m.Model,
		APIKey:      m.APIKey(),
		Temperature: m.Temperature,
		MaxTokens:   m.MaxTokens,
		Prompt:      m.Prompt,
		Timeout:     m.Timeout.Duration,
	})
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/whiteboard/).
func cacheDir(cfg config.Cache) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return config.DefaultCacheDir()
}

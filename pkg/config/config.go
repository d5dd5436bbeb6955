// Package config loads the whiteboard configuration file.
//
// Configuration is TOML, read from $XDG_CONFIG_HOME/whiteboard/config.toml
// (or ~/.config/whiteboard/config.toml). A missing default file is not an
// error: every setting has a default. A handful of environment variables
// override the file so containers can be configured without one:
//
//	WHITEBOARD_ADDR   server.addr
//	MONGODB_URI       snapshots.mongo_uri
//	REDIS_ADDR        cache.redis_addr
//
// API keys never live in the file. The [chat] and [vision] sections name the
// environment variable holding the key (api_key_env).
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"

	"github.com/matzehuels/whiteboard/pkg/board"
	"github.com/matzehuels/whiteboard/pkg/canvas"
	"github.com/matzehuels/whiteboard/pkg/errors"
)

const appName = "whiteboard"

// Backend names.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full configuration.
type Config struct {
	Server    Server    `toml:"server"`
	Canvas    Canvas    `toml:"canvas"`
	Chat      Model     `toml:"chat"`
	Vision    Model     `toml:"vision"`
	Snapshots Snapshots `toml:"snapshots"`
	Cache     Cache     `toml:"cache"`
	Sessions  Sessions  `toml:"sessions"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxUploadMB  int      `toml:"max_upload_mb"`
}

// Canvas holds the defaults for new board sessions.
type Canvas struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Color     string `toml:"color"`
	Thickness int    `toml:"thickness"`
}

// Model configures an OpenAI-compatible chat completion endpoint.
type Model struct {
	BaseURL     string   `toml:"base_url"`
	Model       string   `toml:"model"`
	APIKeyEnv   string   `toml:"api_key_env"`
	Temperature float64  `toml:"temperature"`
	MaxTokens   int      `toml:"max_tokens"`
	Prompt      string   `toml:"prompt"`
	Timeout     Duration `toml:"timeout"`
}

// APIKey reads the key from the environment variable named by APIKeyEnv.
func (m Model) APIKey() string {
	if m.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(m.APIKeyEnv)
}

// Snapshots selects where analyzed canvas images are archived.
type Snapshots struct {
	Backend    string `toml:"backend"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	SQLitePath string `toml:"sqlite_path"`
}

// Cache selects the response and upload cache.
type Cache struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	KeyPrefix     string `toml:"key_prefix"`
	// ChatTTL enables chat answer caching when positive. Answers are
	// sampled, so a cached one is returned verbatim for the whole TTL.
	ChatTTL     Duration `toml:"chat_ttl"`
	DocumentTTL Duration `toml:"document_ttl"`
}

// Sessions configures the live session registry.
type Sessions struct {
	IdleTTL Duration `toml:"idle_ttl"`
	Cleanup string   `toml:"cleanup"`
	Max     int      `toml:"max"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:         "127.0.0.1:5000",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{120 * time.Second},
			MaxUploadMB:  16,
		},
		Canvas: Canvas{
			Width:     1280,
			Height:    720,
			Color:     board.DefaultColor,
			Thickness: board.DefaultThickness,
		},
		Chat: Model{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			APIKeyEnv:   "GROQ_API_KEY",
			Temperature: 0.7,
			MaxTokens:   1000,
			Timeout:     Duration{60 * time.Second},
		},
		Vision: Model{
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:       "gemini-1.5-flash",
			APIKeyEnv:   "GOOGLE_API_KEY",
			Temperature: 0.4,
			MaxTokens:   2048,
			Timeout:     Duration{90 * time.Second},
		},
		Snapshots: Snapshots{
			Backend:    BackendNone,
			Database:   "whiteboardai",
			Collection: "drawimg",
		},
		Cache: Cache{
			Backend:     BackendFile,
			KeyPrefix:   "whiteboard:",
			DocumentTTL: Duration{7 * 24 * time.Hour},
		},
		Sessions: Sessions{
			IdleTTL: Duration{30 * time.Minute},
			Cleanup: "@every 5m",
			Max:     1000,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns the file cache directory (~/.cache/whiteboard/).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the config file at path over the defaults, applies environment
// overrides and validates the result. An empty path loads the default
// location, where a missing file is fine; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate config file")
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case stderrors.Is(err, fs.ErrNotExist):
		if explicit {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
	default:
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides using getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("WHITEBOARD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := getenv("MONGODB_URI"); v != "" {
		c.Snapshots.MongoURI = v
		if c.Snapshots.Backend == BackendNone {
			c.Snapshots.Backend = BackendMongo
		}
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr is empty")
	}
	if c.Server.MaxUploadMB <= 0 {
		return invalid("server.max_upload_mb must be positive")
	}
	if c.Canvas.Width < 1 || c.Canvas.Height < 1 ||
		c.Canvas.Width > board.MaxSurfaceSide || c.Canvas.Height > board.MaxSurfaceSide {
		return invalid("canvas size %dx%d out of range (1..%d)", c.Canvas.Width, c.Canvas.Height, board.MaxSurfaceSide)
	}
	if c.Canvas.Thickness < board.MinThickness || c.Canvas.Thickness > board.MaxThickness {
		return invalid("canvas.thickness must be between %d and %d", board.MinThickness, board.MaxThickness)
	}
	if !canvas.KnownColor(c.Canvas.Color) {
		return invalid("canvas.color %q is not a color name or #rgb/#rrggbb", c.Canvas.Color)
	}

	models := []struct {
		name string
		m    Model
	}{{"chat", c.Chat}, {"vision", c.Vision}}
	for _, nm := range models {
		name, m := nm.name, nm.m
		if err := errors.ValidateURL(m.BaseURL); err != nil {
			return invalid("%s.base_url: %s", name, errors.UserMessage(err))
		}
		if m.Model == "" {
			return invalid("%s.model is empty", name)
		}
		if m.MaxTokens <= 0 {
			return invalid("%s.max_tokens must be positive", name)
		}
	}

	switch c.Snapshots.Backend {
	case BackendNone:
	case BackendMongo:
		if c.Snapshots.MongoURI == "" {
			return invalid("snapshots.mongo_uri is required for the mongo backend")
		}
	case BackendSQLite:
		if c.Snapshots.SQLitePath == "" {
			return invalid("snapshots.sqlite_path is required for the sqlite backend")
		}
	default:
		return invalid("snapshots.backend %q not one of %s", c.Snapshots.Backend,
			strings.Join([]string{BackendMongo, BackendSQLite, BackendNone}, ", "))
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		return invalid("cache.backend %q not one of %s", c.Cache.Backend,
			strings.Join([]string{BackendFile, BackendRedis, BackendNone}, ", "))
	}

	if c.Sessions.IdleTTL.Duration <= 0 {
		return invalid("sessions.idle_ttl must be positive")
	}
	if _, err := cron.ParseStandard(c.Sessions.Cleanup); err != nil {
		return invalid("sessions.cleanup: %v", err)
	}
	if c.Sessions.Max < 0 {
		return invalid("sessions.max must not be negative")
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

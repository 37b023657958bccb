package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/server"
	"github.com/matzehuels/kinship/pkg/source"
)

// Cache backends.
const (
	backendFile   = "file"
	backendRedis  = "redis"
	backendMemory = "memory"
	backendNone   = "none"
)

// Config is the kinship configuration file.
//
//	[render]
//	locale = "zh"
//	show_labels = true
//
//	[source]
//	kind = "mongo"
//	uri = "mongodb://localhost:27017"
//	database = "scheduler"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	read_timeout = "10s"
type Config struct {
	Render RenderConfig `toml:"render"`
	Source SourceConfig `toml:"source"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig holds rendering defaults.
type RenderConfig struct {
	Locale     string `toml:"locale"`
	ShowLabels bool   `toml:"show_labels"`
}

// SourceConfig selects the lineage store.
type SourceConfig struct {
	Kind                string `toml:"kind"`
	Path                string `toml:"path"`
	URI                 string `toml:"uri"`
	Database            string `toml:"database"`
	WorkflowsCollection string `toml:"workflows_collection"`
	RelationsCollection string `toml:"relations_collection"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// ServerConfig configures `kinship serve`.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	Metrics      *bool         `toml:"metrics"`
}

// MetricsEnabled reports whether /metrics is served. Defaults to true.
func (s ServerConfig) MetricsEnabled() bool {
	return s.Metrics == nil || *s.Metrics
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Source.Kind == "" {
		c.Source.Kind = string(source.KindFile)
	}
	if c.Source.WorkflowsCollection == "" {
		c.Source.WorkflowsCollection = source.DefaultCollections.Workflows
	}
	if c.Source.RelationsCollection == "" {
		c.Source.RelationsCollection = source.DefaultCollections.Relations
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = backendFile
	}
	if c.Cache.Dir == "" {
		if dir, err := cacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Cache.RedisPrefix == "" {
		c.Cache.RedisPrefix = appName + ":"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = server.DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = server.DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = server.DefaultWriteTimeout
	}
}

// Validate checks the configuration. File paths are not checked for
// existence here; commands that need them report missing files.
func (c *Config) Validate() error {
	if !i18n.IsSupported(c.Render.Locale) {
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "render.locale: unsupported locale %q", c.Render.Locale)
	}

	switch source.Kind(c.Source.Kind) {
	case source.KindFile:
		if c.Source.Path != "" {
			if err := kerrors.ValidatePath(c.Source.Path); err != nil {
				return fmt.Errorf("source.path: %w", err)
			}
		}
	case source.KindMongo:
		if c.Source.URI == "" {
			return kerrors.New(kerrors.ErrCodeInvalidConfig, "source.uri is required for kind %q", c.Source.Kind)
		}
		if err := kerrors.ValidateURL(c.Source.URI, "mongodb", "mongodb+srv"); err != nil {
			return fmt.Errorf("source.uri: %w", err)
		}
	default:
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "source.kind: must be file or mongo, got %q", c.Source.Kind)
	}

	switch c.Cache.Backend {
	case backendFile:
		if c.Cache.Dir == "" {
			return kerrors.New(kerrors.ErrCodeInvalidConfig, "cache.dir is required for the file backend")
		}
		if err := kerrors.ValidatePath(c.Cache.Dir); err != nil {
			return fmt.Errorf("cache.dir: %w", err)
		}
	case backendRedis:
		if c.Cache.RedisAddr == "" {
			return kerrors.New(kerrors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
		if c.Cache.RedisDB < 0 {
			return kerrors.New(kerrors.ErrCodeInvalidConfig, "cache.redis_db must not be negative")
		}
	case backendMemory, backendNone:
	default:
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "cache.backend: must be file, redis, memory or none, got %q", c.Cache.Backend)
	}

	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "server timeouts must not be negative")
	}
	return nil
}

// LoadConfig reads the configuration at path, applies defaults and
// validates it. An empty path loads the default location, which may be
// absent.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{}
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// No config file; defaults only.
	case errors.Is(err, os.ErrNotExist):
		return nil, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "config file not found: %s", path)
	case err != nil:
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "parse %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, kerrors.New(kerrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sourceConfig converts the [source] table.
func (c *Config) sourceConfig() source.Config {
	return source.Config{
		Kind:     source.Kind(c.Source.Kind),
		Path:     c.Source.Path,
		URI:      c.Source.URI,
		Database: c.Source.Database,
		Collections: source.Collections{
			Workflows: c.Source.WorkflowsCollection,
			Relations: c.Source.RelationsCollection,
		},
	}
}

// configPath returns the config file location using XDG standard
// (~/.config/kinship/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

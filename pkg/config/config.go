// Package config loads user settings for the pathtrace CLI and server from
// a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/pathtrace/config.toml (falling back
// to ~/.config/pathtrace/config.toml) unless --config names another path.
// Every field is optional; missing fields keep the values from [Default].
//
//	[search]
//	algorithm = "astar"
//	concurrency = 8
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//	read_timeout = "10s"
//
// Settings rank below command-line flags and below the config section of
// the graph document being searched.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pathtrace/pkg/errors"
	"github.com/matzehuels/pathtrace/pkg/pipeline"
)

const appName = "pathtrace"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Duration is a time.Duration written as a string such as "30s" in TOML.
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

// Config is the complete settings file.
type Config struct {
	Search SearchConfig `toml:"search"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Neo4j  Neo4jConfig  `toml:"neo4j"`
	Log    LogConfig    `toml:"log"`
}

// SearchConfig holds default search parameters.
type SearchConfig struct {
	Algorithm   string   `toml:"algorithm" validate:"omitempty,algorithm"`
	Weight      float64  `toml:"weight" validate:"gte=0"`
	Directed    bool     `toml:"directed"`
	Formats     []string `toml:"formats" validate:"dive,format"`
	Concurrency int      `toml:"concurrency" validate:"gte=0,lte=256"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend  string `toml:"backend" validate:"oneof=file redis none"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url" validate:"required_if=Backend redis"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig configures `pathtrace serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr" validate:"required"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes" validate:"gt=0"`
}

// Neo4jConfig holds connection defaults for `pathtrace import neo4j`.
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Search: SearchConfig{
			Algorithm:   pipeline.DefaultAlgorithm,
			Concurrency: pipeline.DefaultConcurrency,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Prefix:  appName + ":",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
			MaxBodyBytes: 8 << 20,
		},
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config at path on top of Default. An empty path uses
// Path(); a missing default file is not an error, but a missing explicit
// path is. Unknown keys are rejected so typos do not go unnoticed.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if explicit {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r on top of Default and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := pipeline.Validator().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config")
	}
	if c.Cache.Backend == BackendRedis {
		if err := errors.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return fmt.Errorf("cache.redis_url: %w", err)
		}
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ApplyTo fills unset search fields of opts. Call it after the document
// defaults have been applied so that the document wins.
func (s SearchConfig) ApplyTo(opts *pipeline.Options) {
	if opts.Algorithm == "" {
		opts.Algorithm = s.Algorithm
	}
	if opts.Weight == 0 {
		opts.Weight = s.Weight
	}
	if s.Directed {
		opts.Directed = true
	}
	if len(opts.Formats) == 0 {
		opts.Formats = slices.Clone(s.Formats)
	}
}

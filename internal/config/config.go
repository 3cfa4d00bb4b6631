// Package config loads augtree settings from YAML, TOML or JSONC files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// EnvRoot names the variable consulted when no root is configured.
const EnvRoot = "AUGEAS_ROOT"

// Config holds the complete augtree configuration.
type Config struct {
	// Root is the filesystem root edited files live under.
	Root     string `yaml:"root" toml:"root" json:"root"`
	LoadPath string `yaml:"loadpath" toml:"loadpath" json:"loadpath"`

	// Backend selects where nodes no lens owns are kept between runs.
	Backend string `yaml:"backend" toml:"backend" json:"backend"`
	// Snapshot is the name free nodes are saved under.
	Snapshot    string `yaml:"snapshot" toml:"snapshot" json:"snapshot"`
	SnapshotDir string `yaml:"snapshot_dir" toml:"snapshot_dir" json:"snapshot_dir"`
	// EncryptionKey is a base64 AES-256 key. When set, snapshots are stored encrypted.
	EncryptionKey string `yaml:"encryption_key" toml:"encryption_key" json:"encryption_key"`

	Redis RedisConfig `yaml:"redis" toml:"redis" json:"redis"`

	// Transforms are registered on every store before it loads.
	Transforms []TransformConfig `yaml:"transforms" toml:"transforms" json:"transforms"`

	Debug            bool   `yaml:"debug" toml:"debug" json:"debug"`
	DiscardOnFailure bool   `yaml:"discard_on_failure" toml:"discard_on_failure" json:"discard_on_failure"`
	Listen           string `yaml:"listen" toml:"listen" json:"listen"`
}

// RedisConfig holds the redis backend settings.
type RedisConfig struct {
	Addr     string   `yaml:"addr" toml:"addr" json:"addr"`
	Password string   `yaml:"password" toml:"password" json:"password"`
	DB       int      `yaml:"db" toml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" toml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" toml:"ttl" json:"ttl"`
	// LockTTL enables the distributed run lock when non-zero.
	LockTTL Duration `yaml:"lock_ttl" toml:"lock_ttl" json:"lock_ttl"`
}

// TransformConfig registers files with a lens.
type TransformConfig struct {
	Lens string   `yaml:"lens" toml:"lens" json:"lens"`
	Incl []string `yaml:"incl" toml:"incl" json:"incl"`
	Excl []string `yaml:"excl" toml:"excl" json:"excl"`
}

// Duration wraps time.Duration so it can be written as "30s" in every format.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the file at path, picking the format from its extension.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext (".yaml", ".yml", ".toml",
// ".json" or ".jsonc"), applies defaults and validates the result.
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, err
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.expandEnvVars()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Root == "" {
		c.Root = os.Getenv(EnvRoot)
	}
	if c.Root == "" {
		c.Root = "/"
	}
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Snapshot == "" {
		c.Snapshot = "default"
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = filepath.Join(".augtree", "snapshots")
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "augtree:"
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
}

func (c *Config) expandEnvVars() {
	c.Root = os.ExpandEnv(c.Root)
	c.LoadPath = os.ExpandEnv(c.LoadPath)
	c.SnapshotDir = os.ExpandEnv(c.SnapshotDir)
	c.Redis.Password = os.ExpandEnv(c.Redis.Password)
	c.EncryptionKey = os.ExpandEnv(c.EncryptionKey)
}

// Validate rejects settings no backend can honour.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, BackendMemory, BackendFile, BackendRedis)
	}
	for i, t := range c.Transforms {
		if t.Lens == "" {
			return fmt.Errorf("transforms[%d]: lens is required", i)
		}
		if len(t.Incl) == 0 {
			return fmt.Errorf("transforms[%d]: at least one incl is required", i)
		}
	}
	return nil
}

// Package config loads the familytree configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/familytree/config.toml
// (~/.config/familytree/config.toml) unless --config points elsewhere.
// Values are layered: command-line flags override the file, the file
// overrides [Default].
//
//	[sheet]
//	url = "https://docs.google.com/spreadsheets/d/.../export?format=csv"
//	upload_url = "https://script.google.com/macros/s/.../exec"
//
//	[layout]
//	dx = 80
//	dy = 140
//
//	[cache]
//	ttl = "1h"
//	redis_addr = "localhost:6379"
//
//	[storage]
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "familytree"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/layout"
)

// AppName names the configuration, cache and data directories.
const AppName = "familytree"

// Config is the complete configuration.
type Config struct {
	Sheet   SheetConfig   `toml:"sheet"`
	Layout  LayoutConfig  `toml:"layout"`
	Cache   CacheConfig   `toml:"cache"`
	Storage StorageConfig `toml:"storage"`
	Journal JournalConfig `toml:"journal"`
	Server  ServerConfig  `toml:"server"`
}

// SheetConfig locates the family sheet.
type SheetConfig struct {
	URL       string `toml:"url"`        // CSV export URL or local path
	UploadURL string `toml:"upload_url"` // Apps Script endpoint for edits
}

// LayoutConfig holds the default view options.
type LayoutConfig struct {
	DX      float64 `toml:"dx"`
	DY      float64 `toml:"dy"`
	Lineage string  `toml:"lineage"`
}

// CacheConfig selects the cache backend. Redis is used when RedisAddr is
// set, otherwise entries are files under Dir.
type CacheConfig struct {
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	RedisPrefix   string   `toml:"redis_prefix"`
}

// StorageConfig configures the snapshot archive. An empty MongoURI keeps
// snapshots in memory.
type StorageConfig struct {
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// JournalConfig locates the sqlite edit journal.
type JournalConfig struct {
	Path string `toml:"path"`
}

// ServerConfig configures `familytree serve`.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionDir string   `toml:"session_dir"`
	SessionTTL Duration `toml:"session_ttl"`
	ShareTTL   Duration `toml:"share_ttl"`
}

// Duration is a time.Duration written as a Go duration string ("90m").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			DX:      layout.DefaultDX,
			DY:      layout.DefaultDY,
			Lineage: "full",
		},
		Cache: CacheConfig{
			Dir:         filepath.Join(cacheHome(), AppName),
			TTL:         Duration{time.Hour},
			RedisPrefix: AppName + ":",
		},
		Storage: StorageConfig{
			MongoDatabase: AppName,
		},
		Journal: JournalConfig{
			Path: filepath.Join(dataHome(), AppName, "journal.db"),
		},
		Server: ServerConfig{
			Addr:       "127.0.0.1:8080",
			SessionDir: filepath.Join(configHome(), AppName, "sessions"),
			SessionTTL: Duration{24 * time.Hour},
			ShareTTL:   Duration{30 * 24 * time.Hour},
		},
	}
}

// DefaultPath returns the default location of the configuration file.
func DefaultPath() string {
	return filepath.Join(configHome(), AppName, "config.toml")
}

// Load reads the file at path over the defaults. An empty path reads
// DefaultPath and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %s", path, undecoded[0])
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Layout.DX <= 0 || c.Layout.DY <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout spacing must be positive (dx=%v, dy=%v)", c.Layout.DX, c.Layout.DY)
	}
	if c.Sheet.UploadURL != "" {
		if err := errors.ValidateURL(c.Sheet.UploadURL); err != nil {
			return err
		}
	}
	if c.Cache.TTL.Duration < 0 || c.Server.SessionTTL.Duration < 0 || c.Server.ShareTTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "durations must not be negative")
	}
	return nil
}

// Write encodes c as TOML to path, creating parent directories.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

func configHome() string {
	return xdg("XDG_CONFIG_HOME", ".config")
}

func cacheHome() string {
	return xdg("XDG_CACHE_HOME", ".cache")
}

func dataHome() string {
	return xdg("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdg(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, fallback)
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// StoreBackend selects where the board reads and writes task records.
type StoreBackend string

const (
	StoreBackendRemote StoreBackend = "remote"
	StoreBackendSQLite StoreBackend = "sqlite"
)

// Environment variables that override file values.
const (
	EnvConfigPath = "TAVLA_CONFIG"
	EnvStoreURL   = "TAVLA_STORE_URL"
	EnvDBPath     = "TAVLA_DB_PATH"
)

type Config struct {
	Store    StoreConfig    `toml:"store"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	Identity IdentityConfig `toml:"identity"`
	Keys     KeyConfig      `toml:"keys"`
}

type StoreConfig struct {
	Backend    StoreBackend `toml:"backend"`
	URL        string       `toml:"url"`
	PathSuffix string       `toml:"path_suffix"`
	Timeout    Duration     `toml:"timeout"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	Bind        string `toml:"bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type LoggingConfig struct {
	Level   string `toml:"level"`
	DevFile string `toml:"dev_file"`
}

type BoardConfig struct {
	ShowDueDate     bool `toml:"show_due_date"`
	ShowDescription bool `toml:"show_description"`
}

type IdentityConfig struct {
	DisplayName string `toml:"display_name"`
}

// KeyConfig rebinds the board's drag shortcuts.
type KeyConfig struct {
	PickUp    string `toml:"pick_up"`
	MoveLeft  string `toml:"move_left"`
	MoveRight string `toml:"move_right"`
}

// Duration decodes TOML strings such as "10s".
type Duration time.Duration

// UnmarshalText parses one Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func Default(dbPath string) Config {
	return Config{
		Store: StoreConfig{
			Backend:    StoreBackendSQLite,
			PathSuffix: ".json",
			Timeout:    Duration(10 * time.Second),
		},
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Server: ServerConfig{
			Bind:        "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Board: BoardConfig{
			ShowDueDate:     true,
			ShowDescription: false,
		},
		Keys: KeyConfig{
			PickUp:    "space",
			MoveLeft:  "[",
			MoveRight: "]",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ApplyEnv overlays environment overrides; a store URL switches the backend to remote.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if raw, ok := lookup(EnvStoreURL); ok && strings.TrimSpace(raw) != "" {
		c.Store.URL = strings.TrimSpace(raw)
		c.Store.Backend = StoreBackendRemote
	}
	if raw, ok := lookup(EnvDBPath); ok && strings.TrimSpace(raw) != "" {
		c.Database.Path = strings.TrimSpace(raw)
	}
	return c
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database path is required")
		}
	case StoreBackendRemote:
		raw := strings.TrimSpace(c.Store.URL)
		if raw == "" {
			return errors.New("store.url is required for the remote backend")
		}
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid store.url: %q", c.Store.URL)
		}
	default:
		return fmt.Errorf("invalid store.backend: %q", c.Store.Backend)
	}
	if c.Store.Timeout < 0 {
		return errors.New("store.timeout must be >= 0")
	}
	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind is required")
	}
	if level := strings.TrimSpace(c.Logging.Level); level != "" {
		if _, err := log.ParseLevel(level); err != nil {
			return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
		}
	}
	seen := map[string]string{}
	for name, binding := range map[string]string{
		"pick_up":    c.Keys.PickUp,
		"move_left":  c.Keys.MoveLeft,
		"move_right": c.Keys.MoveRight,
	} {
		binding = strings.TrimSpace(binding)
		if binding == "" {
			return fmt.Errorf("keys.%s is required", name)
		}
		if other, ok := seen[binding]; ok {
			return fmt.Errorf("keys.%s duplicates keys.%s: %q", name, other, binding)
		}
		seen[binding] = name
	}
	return nil
}

// ErrConfigExists is returned by Write when the target exists and overwrite is off.
var ErrConfigExists = errors.New("config file already exists")

// Write encodes cfg as TOML at path, creating its directory first.
func Write(path string, cfg Config, overwrite bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

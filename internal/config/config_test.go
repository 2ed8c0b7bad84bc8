package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/tavla.db")
	if cfg.Database.Path != "/tmp/tavla.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Store.Backend != StoreBackendSQLite {
		t.Fatalf("unexpected backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Timeout.Std() != 10*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Store.Timeout.Std())
	}
	if !cfg.Board.ShowDueDate || cfg.Board.ShowDescription {
		t.Fatalf("unexpected board defaults %#v", cfg.Board)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/tavla.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[store]
backend = "remote"
url = "https://board.example.test/join"
timeout = "3s"

[board]
show_due_date = false
show_description = true

[identity]
display_name = "Anna Berg"

[keys]
move_left = "<"
move_right = ">"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != StoreBackendRemote || cfg.Store.URL != "https://board.example.test/join" {
		t.Fatalf("unexpected store config %#v", cfg.Store)
	}
	if cfg.Store.Timeout.Std() != 3*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Store.Timeout.Std())
	}
	if cfg.Store.PathSuffix != ".json" {
		t.Fatalf("expected default path suffix kept, got %q", cfg.Store.PathSuffix)
	}
	if cfg.Board.ShowDueDate {
		t.Fatal("expected due_date hidden from config override")
	}
	if !cfg.Board.ShowDescription {
		t.Fatal("expected description visible from config override")
	}
	if cfg.Identity.DisplayName != "Anna Berg" {
		t.Fatalf("unexpected display name %q", cfg.Identity.DisplayName)
	}
	if cfg.Keys.MoveLeft != "<" || cfg.Keys.PickUp != "space" {
		t.Fatalf("unexpected keys %#v", cfg.Keys)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"backend": `
[store]
backend = "ftp"
`,
		"remote url": `
[store]
backend = "remote"
url = "not a url"
`,
		"timeout": `
[store]
timeout = "soon"
`,
		"level": `
[logging]
level = "chatty"
`,
		"duplicate key": `
[keys]
move_left = "space"
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default("/tmp/default.db")); err == nil {
				t.Fatal("expected Load() error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvStoreURL: " https://board.example.test ",
		EnvDBPath:   "/env/tavla.db",
	}
	lookup := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
	cfg := Default("/tmp/default.db").ApplyEnv(lookup)
	if cfg.Store.Backend != StoreBackendRemote || cfg.Store.URL != "https://board.example.test" {
		t.Fatalf("unexpected store config %#v", cfg.Store)
	}
	if cfg.Database.Path != "/env/tavla.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}

	untouched := Default("/tmp/default.db").ApplyEnv(func(string) (string, bool) { return "", false })
	if untouched.Store.Backend != StoreBackendSQLite {
		t.Fatalf("expected sqlite backend without env, got %q", untouched.Store.Backend)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Default("/data/tavla.db")
	want.Identity.DisplayName = "Anna Berg"
	want.Store.Timeout = Duration(3 * time.Second)
	if err := Write(path, want, false); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := Load(path, Default("/other.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch\n got %#v\nwant %#v", got, want)
	}

	if err := Write(path, want, false); !errors.Is(err, ErrConfigExists) {
		t.Fatalf("Write() without overwrite error = %v, want ErrConfigExists", err)
	}
	if err := Write(path, Default("/data/tavla.db"), true); err != nil {
		t.Fatalf("Write() overwrite error = %v", err)
	}

	bad := Default("")
	if err := Write(filepath.Join(t.TempDir(), "bad.toml"), bad, false); err == nil {
		t.Fatal("expected invalid config to be rejected before writing")
	}
}

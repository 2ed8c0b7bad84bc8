// Package platform resolves where tavla keeps its config file and board database.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppName is the default directory and file stem.
const AppName = "tavla"

// Paths are the per-user locations for one app stem.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
}

// Options selects the app stem. DevMode appends "-dev" so development runs never touch the real board.
type Options struct {
	AppName string
	DevMode bool
}

// Stem returns the directory and file stem the options resolve to.
func (o Options) Stem() string {
	stem := strings.TrimSpace(o.AppName)
	if stem == "" {
		stem = AppName
	}
	if o.DevMode {
		stem += "-dev"
	}
	return stem
}

// Env is the slice of the host the resolver reads. Tests substitute it.
type Env struct {
	GOOS      string
	Getenv    func(string) string
	ConfigDir func() (string, error)
	HomeDir   func() (string, error)
}

// HostEnv reads the running process environment.
func HostEnv() Env {
	return Env{
		GOOS:      runtime.GOOS,
		Getenv:    os.Getenv,
		ConfigDir: os.UserConfigDir,
		HomeDir:   os.UserHomeDir,
	}
}

// Resolve resolves paths against the host environment.
func Resolve(opts Options) (Paths, error) {
	return HostEnv().Resolve(opts)
}

// Resolve lays out config.toml under the config base and <stem>.db under the data base.
func (e Env) Resolve(opts Options) (Paths, error) {
	configBase, dataBase, err := e.bases()
	if err != nil {
		return Paths{}, err
	}
	stem := opts.Stem()
	dataDir := filepath.Join(dataBase, stem)
	return Paths{
		ConfigPath: filepath.Join(configBase, stem, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, stem+".db"),
	}, nil
}

// bases picks the config and data roots. Linux follows XDG, Windows splits roaming config from local data,
// everything else keeps both under os.UserConfigDir.
func (e Env) bases() (string, string, error) {
	getenv := e.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	lookup := func(key string) string { return strings.TrimSpace(getenv(key)) }

	var configBase, dataBase string
	switch e.GOOS {
	case "linux":
		configBase, dataBase = lookup("XDG_CONFIG_HOME"), lookup("XDG_DATA_HOME")
		if dataBase == "" && e.HomeDir != nil {
			home, err := e.HomeDir()
			if err != nil {
				return "", "", fmt.Errorf("user home dir: %w", err)
			}
			if home != "" {
				dataBase = filepath.Join(home, ".local", "share")
			}
		}
	case "windows":
		configBase, dataBase = lookup("APPDATA"), lookup("LOCALAPPDATA")
	}

	if configBase == "" || dataBase == "" {
		if e.ConfigDir == nil {
			return "", "", errors.New("no user config dir available")
		}
		fallback, err := e.ConfigDir()
		if err != nil {
			return "", "", fmt.Errorf("user config dir: %w", err)
		}
		if fallback == "" {
			return "", "", errors.New("user config dir is empty")
		}
		if configBase == "" {
			configBase = fallback
		}
		if dataBase == "" {
			dataBase = fallback
		}
	}
	return configBase, dataBase, nil
}

// WithConfigOverride swaps in a non-blank config path.
func (p Paths) WithConfigOverride(path string) Paths {
	if path = strings.TrimSpace(path); path != "" {
		p.ConfigPath = path
	}
	return p
}

package platform

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(goos string, vars map[string]string, configDir, home string) Env {
	return Env{
		GOOS:      goos,
		Getenv:    func(key string) string { return vars[key] },
		ConfigDir: func() (string, error) { return configDir, nil },
		HomeDir:   func() (string, error) { return home, nil },
	}
}

func TestResolveLayouts(t *testing.T) {
	cases := []struct {
		name       string
		env        Env
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux xdg",
			env:        fakeEnv("linux", map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"}, "/home/ana/.config", "/home/ana"),
			wantConfig: "/xdg/config",
			wantData:   "/xdg/data",
		},
		{
			name:       "linux without xdg",
			env:        fakeEnv("linux", nil, "/home/ana/.config", "/home/ana"),
			wantConfig: "/home/ana/.config",
			wantData:   "/home/ana/.local/share",
		},
		{
			name:       "windows roaming and local",
			env:        fakeEnv("windows", map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`}, `C:\fallback`, `C:\Users\ana`),
			wantConfig: `C:\Roaming`,
			wantData:   `C:\Local`,
		},
		{
			name:       "darwin ignores xdg",
			env:        fakeEnv("darwin", map[string]string{"XDG_CONFIG_HOME": "/ignored"}, "/Users/ana/Library/Application Support", "/Users/ana"),
			wantConfig: "/Users/ana/Library/Application Support",
			wantData:   "/Users/ana/Library/Application Support",
		},
		{
			name:       "other platforms",
			env:        fakeEnv("freebsd", nil, "/cfg", "/home/ana"),
			wantConfig: "/cfg",
			wantData:   "/cfg",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := tc.env.Resolve(Options{})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(tc.wantConfig, "tavla", "config.toml"), p.ConfigPath)
			assert.Equal(t, filepath.Join(tc.wantData, "tavla"), p.DataDir)
			assert.Equal(t, filepath.Join(tc.wantData, "tavla", "tavla.db"), p.DBPath)
		})
	}
}

func TestResolveDevStem(t *testing.T) {
	p, err := fakeEnv("freebsd", nil, "/cfg", "").Resolve(Options{AppName: " boards ", DevMode: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/cfg", "boards-dev", "config.toml"), p.ConfigPath)
	assert.Equal(t, "boards-dev.db", filepath.Base(p.DBPath))
	assert.Equal(t, "tavla", Options{}.Stem())
}

func TestResolveErrors(t *testing.T) {
	env := fakeEnv("darwin", nil, "", "")
	_, err := env.Resolve(Options{})
	assert.ErrorContains(t, err, "empty")

	env.ConfigDir = func() (string, error) { return "", errors.New("no $HOME") }
	_, err = env.Resolve(Options{})
	assert.ErrorContains(t, err, "no $HOME")

	env = fakeEnv("linux", map[string]string{"XDG_CONFIG_HOME": "/xdg"}, "/cfg", "")
	env.HomeDir = func() (string, error) { return "", errors.New("no home") }
	_, err = env.Resolve(Options{})
	assert.ErrorContains(t, err, "user home dir")

	_, err = Env{GOOS: "plan9"}.Resolve(Options{})
	assert.Error(t, err)
}

func TestResolveHostSmoke(t *testing.T) {
	p, err := Resolve(Options{AppName: "tavla"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ConfigPath)
	assert.NotEmpty(t, p.DBPath)
}

func TestWithConfigOverride(t *testing.T) {
	p := Paths{ConfigPath: "/cfg/tavla/config.toml"}
	assert.Equal(t, "/cfg/tavla/config.toml", p.WithConfigOverride("  ").ConfigPath)
	assert.Equal(t, "/etc/tavla.toml", p.WithConfigOverride("/etc/tavla.toml").ConfigPath)
}

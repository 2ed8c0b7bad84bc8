package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	serveradapter "github.com/hylla/tavla/internal/adapters/server"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv(envDevMode, "false")
	_ = os.Unsetenv(config.EnvConfigPath)
	_ = os.Unsetenv(config.EnvStoreURL)
	_ = os.Unsetenv(config.EnvDBPath)
	os.Exit(m.Run())
}

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

func stubProgram(t *testing.T, runErr error) *tea.Model {
	t.Helper()
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	var got tea.Model
	programFactory = func(m tea.Model) program {
		got = m
		return fakeProgram{runErr: runErr}
	}
	return &got
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func sampleSnapshot() app.Snapshot {
	subtasks, _ := json.Marshal([]app.SubtaskRecord{{Text: "Draft", Done: true}, {Text: "Review"}})
	return app.Snapshot{
		Version:    app.SnapshotVersion,
		ExportedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Tasks: map[string]app.TaskRecord{
			"t1": {
				Title:    "Draft roadmap",
				DueDate:  "2026-04-01",
				Priority: "urgent",
				Category: "user-story",
				Status:   "inProgress",
				Subtasks: subtasks,
				AssignedTo: []app.AssigneeRecord{
					{ID: "c1", FullName: "Anna Berg", Color: "#FF7A00", Initials: "AB"},
				},
			},
		},
		Contacts: map[string]app.ContactRecord{
			"c1": {FullName: "Anna Berg", Color: "#FF7A00", Initials: "AB"},
		},
	}
}

func writeSnapshot(t *testing.T, path string, snap app.Snapshot) {
	t.Helper()
	encoded, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// TestRunVersion verifies behavior for the covered scenario.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "tavla") || !strings.Contains(out.String(), version) {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunStartsProgram verifies the root command builds the board model.
func TestRunStartsProgram(t *testing.T) {
	got := stubProgram(t, nil)

	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "tavla.db")
	cfgPath := filepath.Join(tmp, "config.toml")
	writeConfig(t, cfgPath, "[identity]\ndisplay_name = \"Sofia\"\n")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, ok := (*got).(tui.Model); !ok {
		t.Fatalf("expected tui.Model, got %T", *got)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected sqlite db created, stat error %v", err)
	}
}

// TestRunProgramError verifies TUI failures surface as command errors.
func TestRunProgramError(t *testing.T) {
	stubProgram(t, errors.New("terminal gone"))

	tmp := t.TempDir()
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "tavla.db"), "--config", filepath.Join(tmp, "missing.toml")}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "terminal gone") {
		t.Fatalf("expected program error, got %v", err)
	}
}

// TestRunInvalidFlag verifies behavior for the covered scenario.
func TestRunInvalidFlag(t *testing.T) {
	if err := run(context.Background(), []string{"--unknown-flag"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected flag parse error")
	}
}

// TestRunUnknownCommand verifies behavior for the covered scenario.
func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"unknown-command"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

// TestRunImportExportRoundTrip verifies snapshots survive a sqlite round trip.
func TestRunImportExportRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "tavla.db")
	cfgPath := filepath.Join(tmp, "missing.toml")
	inPath := filepath.Join(tmp, "in.json")
	writeSnapshot(t, inPath, sampleSnapshot())

	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", inPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}

	outPath := filepath.Join(tmp, "nested", "out.json")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export", "--out", outPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if snap.Version != app.SnapshotVersion {
		t.Fatalf("unexpected snapshot version %q", snap.Version)
	}
	rec, ok := snap.Tasks["t1"]
	if !ok || rec.Title != "Draft roadmap" || rec.Status != "inProgress" {
		t.Fatalf("expected imported task in export, got %#v", snap.Tasks)
	}
	if contact, ok := snap.Contacts["c1"]; !ok || contact.FullName != "Anna Berg" {
		t.Fatalf("expected imported contact in export, got %#v", snap.Contacts)
	}
}

// TestRunExportToStdoutAndImportErrors verifies behavior for the covered scenario.
func TestRunExportToStdoutAndImportErrors(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "tavla.db")
	cfgPath := filepath.Join(tmp, "missing.toml")

	var out strings.Builder
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export"}, &out, io.Discard); err != nil {
		t.Fatalf("run(export stdout) error = %v", err)
	}
	if !strings.Contains(out.String(), "\"version\"") {
		t.Fatalf("expected snapshot json on stdout, got %q", out.String())
	}

	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected import error for missing --in")
	}

	badIn := filepath.Join(tmp, "bad.json")
	writeConfig(t, badIn, "{")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", badIn}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected import decode error")
	}

	wrongVersion := sampleSnapshot()
	wrongVersion.Version = "other.v0"
	versionIn := filepath.Join(tmp, "version.json")
	writeSnapshot(t, versionIn, wrongVersion)
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", versionIn}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected snapshot version error")
	}
}

// TestRunListPrintsBoardTable verifies list groups tasks by column with placeholders.
func TestRunListPrintsBoardTable(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "tavla.db")
	cfgPath := filepath.Join(tmp, "missing.toml")
	inPath := filepath.Join(tmp, "in.json")
	writeSnapshot(t, inPath, sampleSnapshot())
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", inPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}

	var out strings.Builder
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "list"}, &out, io.Discard); err != nil {
		t.Fatalf("run(list) error = %v", err)
	}
	output := out.String()
	for _, want := range []string{"Draft roadmap", "In progress", "1/2", "AB", "No tasks To do", "No tasks Done"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in list output, got %q", want, output)
		}
	}
}

// TestRunListRemoteBackendFromEnv verifies TAVLA_STORE_URL switches to the remote store.
func TestRunListRemoteBackendFromEnv(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/tasks.json":
			_, _ = io.WriteString(w, `{"k1":{"title":"Remote card","category":"technical-task","status":"done","dueDate":"2026-05-01"}}`)
		default:
			_, _ = io.WriteString(w, "null")
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv(config.EnvStoreURL, srv.URL)

	tmp := t.TempDir()
	var out strings.Builder
	if err := run(context.Background(), []string{"--db", filepath.Join(tmp, "unused.db"), "--config", filepath.Join(tmp, "missing.toml"), "list"}, &out, io.Discard); err != nil {
		t.Fatalf("run(list remote) error = %v", err)
	}
	if !strings.Contains(out.String(), "Remote card") {
		t.Fatalf("expected remote task in output, got %q", out.String())
	}
	if !slices.Contains(paths, "/tasks.json") {
		t.Fatalf("expected remote store reads, got %v", paths)
	}
	if _, err := os.Stat(filepath.Join(tmp, "unused.db")); !os.IsNotExist(err) {
		t.Fatalf("expected no sqlite db for the remote backend, stat error %v", err)
	}
}

// TestRunServeUsesConfigAndFlags verifies serve wires the local store and flag overrides.
func TestRunServeUsesConfigAndFlags(t *testing.T) {
	origRunner := serveCommandRunner
	t.Cleanup(func() { serveCommandRunner = origRunner })

	var (
		gotCfg  serveradapter.Config
		gotDeps serveradapter.Dependencies
	)
	serveCommandRunner = func(_ context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
		gotCfg = cfg
		gotDeps = deps
		return nil
	}

	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	writeConfig(t, cfgPath, "[server]\nbind = \"127.0.0.1:9000\"\nmcp_endpoint = \"/tools\"\n")
	args := []string{"--db", filepath.Join(tmp, "tavla.db"), "--config", cfgPath, "serve", "--api-endpoint", "/v2"}
	if err := run(context.Background(), args, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(serve) error = %v", err)
	}
	if gotCfg.HTTPBind != "127.0.0.1:9000" || gotCfg.APIEndpoint != "/v2" || gotCfg.MCPEndpoint != "/tools" {
		t.Fatalf("unexpected serve config %#v", gotCfg)
	}
	if gotCfg.ServerName != "tavla" || gotCfg.ServerVersion != version {
		t.Fatalf("unexpected server identity %#v", gotCfg)
	}
	if gotDeps.Documents == nil || gotDeps.Board == nil || gotDeps.Logger == nil {
		t.Fatalf("expected serve dependencies wired, got %#v", gotDeps)
	}
}

// TestRunServeRunnerError verifies runner failures propagate.
func TestRunServeRunnerError(t *testing.T) {
	origRunner := serveCommandRunner
	t.Cleanup(func() { serveCommandRunner = origRunner })
	serveCommandRunner = func(context.Context, serveradapter.Config, serveradapter.Dependencies) error {
		return errors.New("bind refused")
	}

	tmp := t.TempDir()
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "tavla.db"), "--config", filepath.Join(tmp, "missing.toml"), "serve"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "bind refused") {
		t.Fatalf("expected runner error, got %v", err)
	}
}

// TestRunConfigAndDBEnvOverrides verifies behavior for the covered scenario.
func TestRunConfigAndDBEnvOverrides(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "env.db")
	cfgPath := filepath.Join(tmp, "env.toml")
	writeConfig(t, cfgPath, "[database]\npath = \"/tmp/ignore-me.db\"\n")

	t.Setenv(config.EnvConfigPath, cfgPath)
	t.Setenv(config.EnvDBPath, dbPath)

	if err := run(context.Background(), []string{"export", "--out", filepath.Join(tmp, "out.json")}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export with env paths) error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db created at env path, stat error %v", err)
	}
}

// TestRunDBFlagBeatsEnv verifies the --db flag wins over TAVLA_DB_PATH.
func TestRunDBFlagBeatsEnv(t *testing.T) {
	tmp := t.TempDir()
	envDB := filepath.Join(tmp, "env.db")
	flagDB := filepath.Join(tmp, "flag.db")
	t.Setenv(config.EnvDBPath, envDB)

	if err := run(context.Background(), []string{"--db", flagDB, "--config", filepath.Join(tmp, "missing.toml"), "export", "--out", filepath.Join(tmp, "out.json")}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	if _, err := os.Stat(flagDB); err != nil {
		t.Fatalf("expected db at flag path, stat error %v", err)
	}
	if _, err := os.Stat(envDB); !os.IsNotExist(err) {
		t.Fatalf("expected env db untouched, stat error %v", err)
	}
}

// TestRunPathsCommand verifies behavior for the covered scenario.
func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--app", "tavlax", "--dev", "paths"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	output := out.String()
	for _, want := range []string{"app: tavlax", "dev_mode: true", "tavlax-dev.db"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in paths output, got %q", want, output)
		}
	}

	out.Reset()
	if err := run(context.Background(), []string{"--config", "/etc/tavla.toml", "paths"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths override) error = %v", err)
	}
	if !strings.Contains(out.String(), "config: /etc/tavla.toml") {
		t.Fatalf("expected config override in paths output, got %q", out.String())
	}
}

// TestRunInitWritesLoadableConfig verifies init output round-trips through the loader.
func TestRunInitWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "conf", "tavla.toml")
	dbPath := filepath.Join(dir, "board.db")
	var out strings.Builder
	args := []string{"--config", cfgPath, "--db", dbPath, "init", "--store-url", "https://board.example.test/"}
	if err := run(context.Background(), args, &out, io.Discard); err != nil {
		t.Fatalf("run(init) error = %v", err)
	}
	if !strings.Contains(out.String(), "wrote "+cfgPath) {
		t.Fatalf("unexpected init output %q", out.String())
	}
	cfg, err := config.Load(cfgPath, config.Default("/unused.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != dbPath || cfg.Store.Backend != config.StoreBackendRemote || cfg.Store.URL != "https://board.example.test/" {
		t.Fatalf("unexpected written config %#v", cfg)
	}

	err = run(context.Background(), []string{"--config", cfgPath, "init"}, io.Discard, io.Discard)
	if !errors.Is(err, config.ErrConfigExists) || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected existing config error, got %v", err)
	}
	if err := run(context.Background(), []string{"--config", cfgPath, "init", "--force"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(init --force) error = %v", err)
	}
	cfg, err = config.Load(cfgPath, config.Default("/unused.db"))
	if err != nil || cfg.Store.Backend != config.StoreBackendSQLite {
		t.Fatalf("expected overwritten sqlite config, got %#v err=%v", cfg.Store, err)
	}
}

// TestParseBoolEnv verifies behavior for the covered scenario.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("TAVLA_BOOL_TEST", "true")
	if v, ok := parseBoolEnv("TAVLA_BOOL_TEST"); !ok || !v {
		t.Fatalf("expected true bool env, got %t %t", v, ok)
	}
	t.Setenv("TAVLA_BOOL_TEST", "nope")
	if _, ok := parseBoolEnv("TAVLA_BOOL_TEST"); ok {
		t.Fatal("expected invalid bool env to be ignored")
	}
	if _, ok := parseBoolEnv("TAVLA_BOOL_UNSET"); ok {
		t.Fatal("expected unset env to be ignored")
	}
}

// TestRunTUIModeWritesRuntimeLogsToFileOnly verifies TUI runtime logs stay out of stderr and persist to the dev log file.
func TestRunTUIModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	stubProgram(t, nil)

	workspace := t.TempDir()
	t.Chdir(workspace)
	writeConfig(t, filepath.Join(workspace, "go.mod"), "module example.com/test\n")

	dbPath := filepath.Join(workspace, "tavla.db")
	cfgPath := filepath.Join(workspace, "config.toml")
	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--dev", "--db", dbPath, "--config", cfgPath}, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	logDir := filepath.Join(workspace, ".tavla", "log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var logPath string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			logPath = filepath.Join(logDir, entry.Name())
			break
		}
	}
	if logPath == "" {
		t.Fatalf("expected a .log file in %s", logDir)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "starting tui program loop") {
		t.Fatalf("expected runtime log file to include TUI lifecycle entries, got %q", content)
	}
}

// TestRunCommandLogsToConsole verifies non-TUI commands keep console logging.
func TestRunCommandLogsToConsole(t *testing.T) {
	tmp := t.TempDir()
	var stderr bytes.Buffer
	args := []string{"--db", filepath.Join(tmp, "tavla.db"), "--config", filepath.Join(tmp, "missing.toml"), "export", "--out", filepath.Join(tmp, "out.json")}
	if err := run(context.Background(), args, io.Discard, &stderr); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	if !strings.Contains(stderr.String(), "command flow complete") {
		t.Fatalf("expected console runtime logs, got %q", stderr.String())
	}
}

// TestWorkspaceRootFromUsesNearestMarker verifies workspace-root resolution behavior.
func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, filepath.Join(root, "go.mod"), "module example.com/test\n")
	nested := filepath.Join(root, "cmd", "tavla")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

// TestDevLogFilePath verifies explicit and default log file resolution.
func TestDevLogFilePath(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, filepath.Join(root, "go.mod"), "module example.com/test\n")
	nested := filepath.Join(root, "internal", "app")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(nested)
	now := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)
	normalize := func(p string) string {
		return strings.TrimPrefix(filepath.Clean(p), "/private")
	}

	got, err := devLogFilePath("", "tavla dev", now)
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	want := filepath.Join(root, ".tavla", "log", "tavla-dev-20260222.log")
	if normalize(got) != normalize(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got, err = devLogFilePath("logs/board.log", "tavla", now)
	if err != nil {
		t.Fatalf("devLogFilePath(relative) error = %v", err)
	}
	if normalize(got) != normalize(filepath.Join(root, "logs", "board.log")) {
		t.Fatalf("expected relative file anchored at workspace root, got %q", got)
	}

	abs := filepath.Join(t.TempDir(), "abs.log")
	if got, _ := devLogFilePath(abs, "tavla", now); got != abs {
		t.Fatalf("expected absolute path kept, got %q", got)
	}
}

// TestSanitizeLogFileStem verifies unsafe characters are replaced.
func TestSanitizeLogFileStem(t *testing.T) {
	cases := map[string]string{
		"tavla":     "tavla",
		"team/a:b":  "team-a-b",
		"  ":        "tavla",
		"/leading/": "leading",
	}
	for in, want := range cases {
		if got := sanitizeLogFileStem(in); got != want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestRunRejectsInvalidLoggingLevelFromConfig verifies behavior for the covered scenario.
func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "tavla.toml")
	writeConfig(t, cfgPath, "[logging]\nlevel = \"verbose\"\n")

	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "tavla.db"), "--config", cfgPath, "list"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "invalid logging.level") {
		t.Fatalf("expected logging level validation error, got %v", err)
	}
}

// TestRuntimeLoggerCanMuteConsoleSink verifies behavior for the covered scenario.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/tavla.db").Logging

	logger, err := newRuntimeLogger(&console, "tavla", false, cfg, func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	if logger.DevLogPath() != "" {
		t.Fatalf("expected no file sink outside dev mode, got %q", logger.DevLogPath())
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Warn("after")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected console log to include unmuted entries, got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
}

// TestRuntimeLoggerExplicitFileSink verifies logging.dev_file enables the file sink outside dev mode.
func TestRuntimeLoggerExplicitFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tavla.log")
	logger, err := newRuntimeLogger(io.Discard, "tavla", false, config.LoggingConfig{Level: "debug", DevFile: path}, nil)
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	logger.Debug("sink ready", "tasks", 3)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "sink ready") || !strings.Contains(string(content), "tasks=3") {
		t.Fatalf("expected logfmt entry, got %q", content)
	}
}

// TestRenderBoardTable verifies column order and placeholder rows.
func TestRenderBoardTable(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", Title: "Alpha", Status: domain.StatusDone, Category: domain.CategoryTechnicalTask, Priority: domain.PriorityLow},
		{ID: "b", Title: "Beta", Status: domain.StatusToDo, Category: domain.CategoryUserStory, Priority: domain.PriorityMedium},
	}
	out := renderBoardTable(tasks)
	beta := strings.Index(out, "Beta")
	alpha := strings.Index(out, "Alpha")
	if beta < 0 || alpha < 0 || beta > alpha {
		t.Fatalf("expected To do rows before Done rows, got %q", out)
	}
	for _, want := range []string{"No tasks In progress", "No tasks Await feedback", "Technical Task"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table, got %q", want, out)
		}
	}
	if strings.Contains(out, "No tasks To do") {
		t.Fatalf("expected no placeholder for a filled column, got %q", out)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	charmLog "github.com/charmbracelet/log"
	serveradapter "github.com/hylla/tavla/internal/adapters/server"
	"github.com/hylla/tavla/internal/adapters/storage/remote"
	"github.com/hylla/tavla/internal/adapters/storage/sqlite"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/platform"
	"github.com/hylla/tavla/internal/tui"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

const (
	envDevMode = "TAVLA_DEV_MODE"
	envAppName = "TAVLA_APP_NAME"
)

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

func main() {
	// fang already printed the styled error.
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
	stdout     io.Writer
	stderr     io.Writer
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &rootOptions{stdout: stdout, stderr: stderr}
	root := newRootCommand(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(os.Stdin)
	return fang.Execute(ctx, root,
		fang.WithVersion(version),
		fang.WithoutManpage(),
		fang.WithNotifySignal(os.Interrupt),
	)
}

// newRootCommand wires the board TUI and its subcommands.
func newRootCommand(opts *rootOptions) *cobra.Command {
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv(envDevMode); ok {
		defaultDevMode = envDev
	}
	defaultApp := platform.AppName
	if envApp := strings.TrimSpace(os.Getenv(envAppName)); envApp != "" {
		defaultApp = envApp
	}

	root := &cobra.Command{
		Use:   "tavla",
		Short: "Kanban task board synced with a JSON document store",
		Long: "tavla shows a four-column task board in the terminal and keeps it in sync " +
			"with a JSON document store, either a remote one or a local sqlite file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPathsCommand(opts),
		newInitCommand(opts),
		newListCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newServeCommand(opts),
	)
	return root
}

func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, configPath, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			return nil
		},
	}
}

func newInitCommand(opts *rootOptions) *cobra.Command {
	var force bool
	var storeURL string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, configPath, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			cfg := config.Default(paths.DBPath)
			if db := strings.TrimSpace(opts.dbPath); db != "" {
				cfg.Database.Path = db
			}
			if storeURL = strings.TrimSpace(storeURL); storeURL != "" {
				cfg.Store.Backend = config.StoreBackendRemote
				cfg.Store.URL = storeURL
			}
			if err := config.Write(configPath, cfg, force); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					return fmt.Errorf("%w (use --force to overwrite)", err)
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().StringVar(&storeURL, "store-url", "", "sync with this remote document store instead of the local database")
	return cmd
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the board as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, "list", false, func(ctx context.Context, rt *cliRuntime) error {
				tasks, err := rt.svc.LoadBoard(ctx)
				if err != nil {
					return fmt.Errorf("load board: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), renderBoardTable(tasks))
				return err
			})
		},
	}
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task and contact record as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, "export", false, func(ctx context.Context, rt *cliRuntime) error {
				return runExport(ctx, rt.svc, outPath, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert the records of a JSON snapshot into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, "import", false, func(ctx context.Context, rt *cliRuntime) error {
				return runImport(ctx, rt.svc, inPath)
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sqlite document store over HTTP with MCP board tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, "serve", true, func(ctx context.Context, rt *cliRuntime) error {
				serverCfg := serveradapter.Config{
					HTTPBind:      rt.cfg.Server.Bind,
					APIEndpoint:   rt.cfg.Server.APIEndpoint,
					MCPEndpoint:   rt.cfg.Server.MCPEndpoint,
					ServerName:    opts.appName,
					ServerVersion: version,
				}
				if cmd.Flags().Changed("http") {
					serverCfg.HTTPBind = httpBind
				}
				if cmd.Flags().Changed("api-endpoint") {
					serverCfg.APIEndpoint = apiEndpoint
				}
				if cmd.Flags().Changed("mcp-endpoint") {
					serverCfg.MCPEndpoint = mcpEndpoint
				}
				return serveCommandRunner(ctx, serverCfg, serveradapter.Dependencies{
					Documents: rt.documents,
					Board:     rt.svc,
					Logger:    rt.logger,
				})
			})
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "127.0.0.1:8080", "HTTP listen address")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "/api/v1", "HTTP API base endpoint")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "/mcp", "MCP streamable HTTP endpoint")
	return cmd
}

// resolvePaths resolves platform paths and the config path override chain.
func (o *rootOptions) resolvePaths() (platform.Paths, string, error) {
	paths, err := platform.Resolve(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
	if err != nil {
		return platform.Paths{}, "", err
	}
	configPath := strings.TrimSpace(o.configPath)
	if configPath == "" {
		configPath = os.Getenv(config.EnvConfigPath)
	}
	paths = paths.WithConfigOverride(configPath)
	return paths, paths.ConfigPath, nil
}

// loadConfig layers defaults, the TOML file, environment overrides and flags.
func (o *rootOptions) loadConfig(paths platform.Paths, configPath string, lookup func(string) (string, bool)) (config.Config, error) {
	cfg, err := config.Load(configPath, config.Default(paths.DBPath))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	cfg = cfg.ApplyEnv(lookup)
	if dbPath := strings.TrimSpace(o.dbPath); dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("validate config %q: %w", configPath, err)
	}
	return cfg, nil
}

// cliRuntime bundles the resolved config, logger and engine for one command.
type cliRuntime struct {
	cfg       config.Config
	logger    *runtimeLogger
	svc       *app.Service
	documents *sqlite.Repository
}

// withRuntime resolves config, opens the store and runs fn with a ready engine.
// localStore forces the sqlite backend regardless of the configured store.
func withRuntime(ctx context.Context, opts *rootOptions, command string, localStore bool, fn func(context.Context, *cliRuntime) error) error {
	paths, configPath, err := opts.resolvePaths()
	if err != nil {
		return err
	}
	cfg, err := opts.loadConfig(paths, configPath, os.LookupEnv)
	if err != nil {
		return err
	}

	logger, err := newRuntimeLogger(opts.stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Runtime logs stay in the file sink while the board owns the terminal.
		logger.SetConsoleEnabled(false)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
			_, _ = fmt.Fprintf(opts.stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	rt := &cliRuntime{cfg: cfg, logger: logger}
	var repo app.Repository
	if localStore || cfg.Store.Backend == config.StoreBackendSQLite {
		logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
		sqliteRepo, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
			return fmt.Errorf("open sqlite repository: %w", err)
		}
		defer func() {
			if closeErr := sqliteRepo.Close(); closeErr != nil {
				logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
			}
		}()
		rt.documents = sqliteRepo
		repo = sqliteRepo
		logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "migrations", "ensured")
	} else {
		client, err := remote.New(remote.Config{
			BaseURL:    cfg.Store.URL,
			PathSuffix: cfg.Store.PathSuffix,
			Timeout:    cfg.Store.Timeout.Std(),
			UserAgent:  "tavla/" + version,
		}, nil)
		if err != nil {
			return fmt.Errorf("configure remote store: %w", err)
		}
		repo = client
		logger.Info("remote store configured", "url", cfg.Store.URL, "timeout", cfg.Store.Timeout.Std())
	}

	rt.svc = app.NewService(repo, app.NewStore(), time.Now, app.ServiceConfig{Logger: logger})
	logger.Info("command flow start", "command", command)
	if err := fn(ctx, rt); err != nil {
		logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	logger.Info("command flow complete", "command", command)
	return nil
}

// runTUI runs the interactive board.
func runTUI(ctx context.Context, opts *rootOptions) error {
	return withRuntime(ctx, opts, "tui", false, func(_ context.Context, rt *cliRuntime) error {
		m := tui.NewModel(
			rt.svc,
			tui.WithBoardConfig(tui.BoardConfig{
				ShowDueDate:     rt.cfg.Board.ShowDueDate,
				ShowDescription: rt.cfg.Board.ShowDescription,
			}),
			tui.WithKeyConfig(tui.KeyConfig{
				PickUp:    rt.cfg.Keys.PickUp,
				MoveLeft:  rt.cfg.Keys.MoveLeft,
				MoveRight: rt.cfg.Keys.MoveRight,
			}),
			tui.WithDisplayName(rt.cfg.Identity.DisplayName),
			tui.WithLogger(rt.logger),
		)
		rt.logger.Info("starting tui program loop")
		if _, err := programFactory(m).Run(); err != nil {
			rt.logger.Error("tui program terminated with error", "err", err)
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
}

// runExport writes one snapshot to outPath, or stdout for "-".
func runExport(ctx context.Context, svc *app.Service, outPath string, stdout io.Writer) error {
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport reads one snapshot file and upserts its records.
func runImport(ctx context.Context, svc *app.Service, inPath string) error {
	if strings.TrimSpace(inPath) == "" {
		return errors.New("--in is required")
	}
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := svc.ImportSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

// renderBoardTable renders tasks grouped by column in board order.
func renderBoardTable(tasks []domain.Task) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	placeholderRows := map[int]bool{}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("Column", "Title", "Category", "Priority", "Due", "Subtasks", "Assigned")

	row := 0
	for _, column := range domain.Columns() {
		count := 0
		for _, task := range tasks {
			if task.Status != column.Status {
				continue
			}
			count++
			t.Row(
				column.Name,
				task.Title,
				task.Category.Label(),
				string(task.Priority),
				task.DueDate,
				subtaskSummary(task.Subtasks),
				assigneeSummary(task.AssignedTo),
			)
			row++
		}
		if count == 0 {
			t.Row(column.Name, column.Status.Placeholder(), "", "", "", "", "")
			placeholderRows[row] = true
			row++
		}
	}
	t.StyleFunc(func(r, _ int) lipgloss.Style {
		if r == table.HeaderRow {
			return headerStyle.Padding(0, 1)
		}
		if placeholderRows[r] {
			return mutedStyle.Padding(0, 1)
		}
		return lipgloss.NewStyle().Padding(0, 1)
	})
	return t.Render()
}

func subtaskSummary(subtasks domain.Subtasks) string {
	done, total := subtasks.Progress()
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", done, total)
}

func assigneeSummary(assignees []domain.Assignee) string {
	initials := make([]string, 0, len(assignees))
	for _, assignee := range assignees {
		initials = append(initials, assignee.Initials)
	}
	return strings.Join(initials, " ")
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// runtimeLogger fans log events to a styled console sink and an optional file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks. The file sink is enabled in dev
// mode or whenever logging.dev_file is set.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	rawLevel := strings.TrimSpace(cfg.Level)
	if rawLevel == "" {
		rawLevel = "info"
	}
	level, err := charmLog.ParseLevel(rawLevel)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})
	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	devFile := strings.TrimSpace(cfg.DevFile)
	if !devMode && devFile == "" {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(devFile, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	// File output stays unstyled logfmt.
	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active file sink path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close closes the optional file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg any, keyvals ...any) {
	l.emit(charmLog.DebugLevel, msg, keyvals)
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg any, keyvals ...any) {
	l.emit(charmLog.InfoLevel, msg, keyvals)
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg any, keyvals ...any) {
	l.emit(charmLog.WarnLevel, msg, keyvals)
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg any, keyvals ...any) {
	l.emit(charmLog.ErrorLevel, msg, keyvals)
}

func (l *runtimeLogger) emit(level charmLog.Level, msg any, keyvals []any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Log(level, msg, keyvals...)
	}
}

// devLogFilePath resolves the file sink path. Relative paths anchor at the
// workspace root; without an explicit file, one dated file per day lands in .tavla/log.
func devLogFilePath(explicit, appName string, now time.Time) (string, error) {
	target := strings.TrimSpace(explicit)
	if target == "" {
		fileName := fmt.Sprintf("%s-%s.log", sanitizeLogFileStem(appName), now.Format("20060102"))
		target = filepath.Join(".tavla", "log", fileName)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working dir: %w", err)
	}
	return filepath.Join(workspaceRootFrom(cwd), target), nil
}

// workspaceRootFrom resolves the nearest ancestor workspace marker for stable local log placement.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" {
		return "."
	}
	dir := start
	for {
		if hasWorkspaceMarker(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// hasWorkspaceMarker reports whether a directory looks like a project workspace root.
func hasWorkspaceMarker(dir string) bool {
	for _, marker := range []string{"go.mod", ".git"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(appName)), "-")
	if stem == "" {
		return platform.AppName
	}
	return stem
}

// Package server mounts the board document API and the MCP tools on one listener.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hylla/tavla/internal/adapters/server/httpapi"
	"github.com/hylla/tavla/internal/adapters/server/mcpapi"
	"github.com/hylla/tavla/internal/app"
)

const (
	defaultBindAddress = "127.0.0.1:8080"
	defaultAPIEndpoint = "/api/v1"
	defaultMCPEndpoint = "/mcp"

	shutdownGrace     = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	readinessTimeout  = 2 * time.Second
)

// Config holds the serve-mode listener and mount points.
type Config struct {
	HTTPBind      string
	APIEndpoint   string
	MCPEndpoint   string
	ServerName    string
	ServerVersion string
}

// Dependencies are the board adapters behind the two mounts.
type Dependencies struct {
	Documents httpapi.DocumentStore
	Board     mcpapi.BoardService
	Logger    app.Logger
}

// pinger is implemented by document stores that can report liveness of their backing database.
type pinger interface {
	Ping(context.Context) error
}

// NewHandler builds the root router: probes, the document API, and the MCP endpoint.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, Config, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, Config{}, err
	}
	switch {
	case deps.Documents == nil:
		return nil, Config{}, errors.New("documents dependency is required")
	case deps.Board == nil:
		return nil, Config{}, errors.New("board dependency is required")
	}

	tools, err := mcpapi.NewHandler(mcpapi.Config{
		ServerName:    cfg.ServerName,
		ServerVersion: cfg.ServerVersion,
		EndpointPath:  cfg.MCPEndpoint,
	}, deps.Board)
	if err != nil {
		return nil, Config{}, fmt.Errorf("configure mcp handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeProbe(w, http.StatusOK, "ok", "")
	})
	r.Get("/readyz", readiness(deps.Documents))
	r.Mount(cfg.APIEndpoint, httpapi.NewHandler(deps.Documents, deps.Logger))
	r.Handle(cfg.MCPEndpoint, tools)
	return r, cfg, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	handler, cfg, err := NewHandler(cfg, deps)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.HTTPBind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.HTTPBind, err)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: readHeaderTimeout}
	if deps.Logger != nil {
		deps.Logger.Info("serving board", "addr", ln.Addr().String(), "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	shutdownErr := srv.Shutdown(drainCtx)
	if err := <-done; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve after shutdown: %w", err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown server: %w", shutdownErr)
	}
	if deps.Logger != nil {
		deps.Logger.Info("board server stopped", "addr", ln.Addr().String())
	}
	return nil
}

// readiness reports 503 while the document store cannot answer a ping.
func readiness(store httpapi.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := store.(pinger)
		if !ok {
			writeProbe(w, http.StatusOK, "ok", "")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			writeProbe(w, http.StatusServiceUnavailable, "unavailable", err.Error())
			return
		}
		writeProbe(w, http.StatusOK, "ok", "")
	}
}

func writeProbe(w http.ResponseWriter, code int, status, detail string) {
	body := map[string]string{"status": status}
	if detail != "" {
		body["error"] = detail
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// normalizeConfig fills defaults and rejects overlapping mounts.
func normalizeConfig(cfg Config) (Config, error) {
	if cfg.HTTPBind = strings.TrimSpace(cfg.HTTPBind); cfg.HTTPBind == "" {
		cfg.HTTPBind = defaultBindAddress
	}
	cfg.APIEndpoint = cleanMount(cfg.APIEndpoint, defaultAPIEndpoint)
	cfg.MCPEndpoint = cleanMount(cfg.MCPEndpoint, defaultMCPEndpoint)
	if cfg.APIEndpoint == cfg.MCPEndpoint || strings.HasPrefix(cfg.MCPEndpoint, cfg.APIEndpoint+"/") {
		return Config{}, fmt.Errorf("mcp endpoint %q overlaps api endpoint %q", cfg.MCPEndpoint, cfg.APIEndpoint)
	}
	for _, probe := range []string{"/healthz", "/readyz"} {
		if cfg.APIEndpoint == probe || cfg.MCPEndpoint == probe {
			return Config{}, fmt.Errorf("endpoint %q is reserved", probe)
		}
	}
	if cfg.ServerName = strings.TrimSpace(cfg.ServerName); cfg.ServerName == "" {
		cfg.ServerName = "tavla"
	}
	if cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion); cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	return cfg, nil
}

// cleanMount turns " api/v2/ " into "/api/v2"; blank or root paths fall back.
func cleanMount(path, fallback string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return fallback
	}
	return "/" + trimmed
}

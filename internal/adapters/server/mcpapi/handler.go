// Package mcpapi provides a stateless MCP streamable-HTTP adapter over the board.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// BoardService is the engine surface the tools drive.
type BoardService interface {
	LoadBoard(context.Context) ([]domain.Task, error)
	OpenTask(context.Context, string) (domain.Task, error)
	MoveTask(context.Context, string, domain.Status) (domain.Task, error)
	ToggleSubtask(context.Context, string, int, bool) (domain.Task, error)
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// TaskView is the tool-facing task shape.
type TaskView struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category"`
	DueDate     string        `json:"due_date"`
	Priority    string        `json:"priority"`
	Status      string        `json:"status"`
	AssignedTo  []string      `json:"assigned_to"`
	Subtasks    []SubtaskView `json:"subtasks"`
	Progress    string        `json:"progress,omitempty"`
}

// SubtaskView is one indexed checklist entry.
type SubtaskView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Done  bool   `json:"done"`
}

// NewHandler builds one stateless MCP adapter with the board tools.
func NewHandler(cfg Config, board BoardService) (*Handler, error) {
	if board == nil {
		return nil, fmt.Errorf("board service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, board)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "tavla"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

func statusNames() []string {
	out := make([]string, 0, 4)
	for _, status := range domain.Statuses() {
		out = append(out, string(status))
	}
	return out
}

// registerBoardTools registers the list/get/move/toggle tools.
func registerBoardTools(srv *mcpserver.MCPServer, board BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.list_tasks",
			mcp.WithDescription("List board tasks, optionally filtered to one column."),
			mcp.WithString("status", mcp.Description("Column filter"), mcp.Enum(statusNames()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var filter domain.Status
			if raw := req.GetString("status", ""); raw != "" {
				parsed, err := domain.ParseStatus(raw)
				if err != nil {
					return toolResultFromError(err), nil
				}
				filter = parsed
			}
			tasks, err := board.LoadBoard(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			views := make([]TaskView, 0, len(tasks))
			for _, task := range tasks {
				if filter != "" && task.Status != filter {
					continue
				}
				views = append(views, taskView(task))
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"tasks": views,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_tasks result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.get_task",
			mcp.WithDescription("Fetch the latest stored copy of one task."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := board.OpenTask(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return taskResult(task, "get_task")
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.move_task",
			mcp.WithDescription("Move one task to another column."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Destination column"), mcp.Enum(statusNames()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			raw, err := req.RequireString("status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status, err := domain.ParseStatus(raw)
			if err != nil {
				return toolResultFromError(err), nil
			}
			if _, err := board.OpenTask(ctx, id); err != nil {
				return toolResultFromError(err), nil
			}
			task, err := board.MoveTask(ctx, id, status)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return taskResult(task, "move_task")
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.toggle_subtask",
			mcp.WithDescription("Mark one subtask done or open by position."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based subtask position")),
			mcp.WithBoolean("done", mcp.Required(), mcp.Description("Completion flag")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			index, err := req.RequireInt("index")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			done, err := req.RequireBool("done")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			current, err := board.OpenTask(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			if index < 0 || index >= len(current.Subtasks) {
				return toolResultFromError(domain.ErrInvalidSubtaskIndex), nil
			}
			task, err := board.ToggleSubtask(ctx, id, index, done)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return taskResult(task, "toggle_subtask")
		},
	)
}

func taskResult(task domain.Task, tool string) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(taskView(task))
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

func taskView(task domain.Task) TaskView {
	view := TaskView{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Category:    string(task.Category),
		DueDate:     task.DueDate,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		AssignedTo:  make([]string, 0, len(task.AssignedTo)),
		Subtasks:    make([]SubtaskView, 0, len(task.Subtasks)),
	}
	for _, assignee := range task.AssignedTo {
		view.AssignedTo = append(view.AssignedTo, assignee.FullName)
	}
	for idx, item := range task.Subtasks {
		view.Subtasks = append(view.Subtasks, SubtaskView{Index: idx, Text: item.Text, Done: item.Done})
	}
	if done, total := task.Subtasks.Progress(); total > 0 {
		view.Progress = fmt.Sprintf("%d/%d subtasks", done, total)
	}
	return view
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	var validationErr *app.ValidationError
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, app.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.As(err, &validationErr),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidSubtaskIndex):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}

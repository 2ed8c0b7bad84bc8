package app

import (
	"context"
	"encoding/json"
)

// Repository is the remote task store the board synchronizes with.
// ListTasks hands back undecoded members so one malformed record cannot hide the others.
type Repository interface {
	ListTasks(context.Context) (map[string]json.RawMessage, error)
	GetTask(context.Context, string) (TaskRecord, error)
	CreateTask(context.Context, TaskRecord) (string, error)
	PatchTask(context.Context, string, TaskPatch) error
	ReplaceTask(context.Context, string, TaskRecord) error
	DeleteTask(context.Context, string) error
	ListContacts(context.Context) (map[string]ContactRecord, error)
}

// ContactWriter is implemented by stores that accept contact upserts.
type ContactWriter interface {
	PutContact(context.Context, string, ContactRecord) error
}

// Logger receives structured engine events.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(any, ...any) {}
func (noopLogger) Info(any, ...any)  {}
func (noopLogger) Warn(any, ...any)  {}
func (noopLogger) Error(any, ...any) {}

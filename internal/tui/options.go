package tui

import "github.com/hylla/tavla/internal/app"

// BoardConfig toggles optional card lines.
type BoardConfig struct {
	ShowDueDate     bool
	ShowDescription bool
}

type Option func(*Model)

func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		ShowDueDate:     true,
		ShowDescription: false,
	}
}

func WithBoardConfig(cfg BoardConfig) Option {
	return func(m *Model) {
		m.board = cfg
	}
}

// WithKeyConfig rebinds the drag shortcuts.
func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithDisplayName sets the greeting shown in the header.
func WithDisplayName(name string) Option {
	return func(m *Model) {
		m.displayName = name
	}
}

// WithLogger routes UI failures to the runtime logger.
func WithLogger(logger app.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

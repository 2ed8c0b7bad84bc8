package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidTitle        = errors.New("invalid title")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidDueDate      = errors.New("invalid due date")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidSubtaskIndex = errors.New("invalid subtask index")
)

package domain

import "strings"

// Status identifies one of the four fixed board columns.
type Status string

// StatusToDo and related constants define the board columns in display order.
const (
	StatusToDo          Status = "toDo"
	StatusInProgress    Status = "inProgress"
	StatusAwaitFeedback Status = "awaitFeedback"
	StatusDone          Status = "done"
)

// Column represents column data used by this package.
type Column struct {
	Status Status
	Name   string
}

// boardColumns stores the fixed column order.
var boardColumns = []Column{
	{Status: StatusToDo, Name: "To do"},
	{Status: StatusInProgress, Name: "In progress"},
	{Status: StatusAwaitFeedback, Name: "Await feedback"},
	{Status: StatusDone, Name: "Done"},
}

// Columns returns the board columns in display order.
func Columns() []Column {
	return append([]Column(nil), boardColumns...)
}

// Statuses returns every valid status in display order.
func Statuses() []Status {
	out := make([]Status, 0, len(boardColumns))
	for _, column := range boardColumns {
		out = append(out, column.Status)
	}
	return out
}

// Valid reports whether the status is one of the board columns.
func (s Status) Valid() bool {
	return s.Index() >= 0
}

// Index returns the column position of the status, or -1.
func (s Status) Index() int {
	for idx, column := range boardColumns {
		if column.Status == s {
			return idx
		}
	}
	return -1
}

// Name returns the human column name.
func (s Status) Name() string {
	if idx := s.Index(); idx >= 0 {
		return boardColumns[idx].Name
	}
	return string(s)
}

// Placeholder returns the empty-column text for the status.
func (s Status) Placeholder() string {
	return "No tasks " + s.Name()
}

// Shift returns the neighbouring column delta steps away, clamped to the board edges.
func (s Status) Shift(delta int) Status {
	idx := s.Index()
	if idx < 0 {
		return s
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(boardColumns) {
		idx = len(boardColumns) - 1
	}
	return boardColumns[idx].Status
}

// ParseStatus parses input into a normalized form.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for _, column := range boardColumns {
		if strings.EqualFold(string(column.Status), raw) {
			return column.Status, nil
		}
	}
	return "", ErrInvalidStatus
}

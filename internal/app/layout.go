package app

import (
	"github.com/hylla/tavla/internal/domain"
)

// Move is one card transition between columns.
type Move struct {
	TaskID    string
	From      domain.Status
	To        domain.Status
	FromIndex int
}

// Changed reports whether the move crosses columns.
func (m Move) Changed() bool {
	return m.From != m.To
}

// Layout is the card placement across the fixed columns, including the
// placeholders shown in empty columns.
type Layout struct {
	columns      map[domain.Status][]string
	placeholders map[domain.Status]bool
}

// NewLayout places tasks into their status columns in the given order.
func NewLayout(tasks []domain.Task) *Layout {
	l := &Layout{
		columns:      map[domain.Status][]string{},
		placeholders: map[domain.Status]bool{},
	}
	for _, task := range tasks {
		status := task.Status
		if !status.Valid() {
			status = domain.StatusToDo
		}
		l.columns[status] = append(l.columns[status], task.ID)
	}
	for _, status := range domain.Statuses() {
		l.placeholders[status] = len(l.columns[status]) == 0
	}
	return l
}

// Column returns the card ids of one column.
func (l *Layout) Column(status domain.Status) []string {
	return append([]string(nil), l.columns[status]...)
}

// Len returns the card count of one column.
func (l *Layout) Len(status domain.Status) int {
	return len(l.columns[status])
}

// ColumnOf locates a card and returns its column and position.
func (l *Layout) ColumnOf(taskID string) (domain.Status, int, bool) {
	for _, status := range domain.Statuses() {
		for idx, id := range l.columns[status] {
			if id == taskID {
				return status, idx, true
			}
		}
	}
	return "", -1, false
}

// HasPlaceholder reports whether the column shows its empty-state placeholder.
func (l *Layout) HasPlaceholder(status domain.Status) bool {
	return l.placeholders[status]
}

// Apply re-parents the card into the destination column. The destination
// placeholder is removed and the origin placeholder restored once it empties.
func (l *Layout) Apply(move Move) {
	if !move.Changed() {
		return
	}
	l.detach(move.TaskID)
	delete(l.placeholders, move.To)
	l.columns[move.To] = append(l.columns[move.To], move.TaskID)
	if len(l.columns[move.From]) == 0 {
		l.placeholders[move.From] = true
	}
}

// Revert puts the card back at its origin position.
func (l *Layout) Revert(move Move) {
	if !move.Changed() {
		return
	}
	l.detach(move.TaskID)
	ids := l.columns[move.From]
	idx := move.FromIndex
	if idx < 0 || idx > len(ids) {
		idx = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:idx]...)
	out = append(out, move.TaskID)
	out = append(out, ids[idx:]...)
	l.columns[move.From] = out
	delete(l.placeholders, move.From)
	if len(l.columns[move.To]) == 0 {
		l.placeholders[move.To] = true
	}
}

func (l *Layout) detach(taskID string) {
	status, idx, ok := l.ColumnOf(taskID)
	if !ok {
		return
	}
	ids := l.columns[status]
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:idx]...)
	out = append(out, ids[idx+1:]...)
	l.columns[status] = out
}

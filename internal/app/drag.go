package app

import (
	"errors"

	"github.com/hylla/tavla/internal/domain"
)

// ErrNoDrag is returned when a drop arrives without an active drag.
var ErrNoDrag = errors.New("no drag in progress")

// Drag tracks one card being dragged across columns.
type Drag struct {
	active    bool
	taskID    string
	origin    domain.Status
	originIdx int
	hover     domain.Status
}

// Start picks up a card and records its origin column.
func (d *Drag) Start(layout *Layout, taskID string) error {
	status, idx, ok := layout.ColumnOf(taskID)
	if !ok {
		return ErrNotFound
	}
	*d = Drag{
		active:    true,
		taskID:    taskID,
		origin:    status,
		originIdx: idx,
		hover:     status,
	}
	return nil
}

// Hover marks the column under the card. Every column accepts every card.
func (d *Drag) Hover(status domain.Status) {
	if !d.active || !status.Valid() {
		return
	}
	d.hover = status
}

// Active reports whether a card is being dragged.
func (d *Drag) Active() bool {
	return d.active
}

// TaskID returns the dragged card id.
func (d *Drag) TaskID() string {
	return d.taskID
}

// Origin returns the column the drag started in.
func (d *Drag) Origin() domain.Status {
	return d.origin
}

// Hovering returns the highlighted column.
func (d *Drag) Hovering() domain.Status {
	return d.hover
}

// Drop ends the drag on target and returns the resulting move.
func (d *Drag) Drop(target domain.Status) (Move, error) {
	if !d.active {
		return Move{}, ErrNoDrag
	}
	if !target.Valid() {
		return Move{}, domain.ErrInvalidStatus
	}
	move := Move{
		TaskID:    d.taskID,
		From:      d.origin,
		To:        target,
		FromIndex: d.originIdx,
	}
	*d = Drag{}
	return move, nil
}

// Cancel abandons the drag without producing a move.
func (d *Drag) Cancel() {
	*d = Drag{}
}

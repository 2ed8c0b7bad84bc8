package domain

import (
	"slices"
	"strings"
	"time"
)

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	// PriorityNone marks a stored task that never had a priority.
	PriorityNone Priority = "none"
)

var validPriorities = []Priority{PriorityUrgent, PriorityMedium, PriorityLow}

// Priorities returns the selectable priorities, most pressing first.
func Priorities() []Priority {
	return append([]Priority(nil), validPriorities...)
}

// Valid reports whether p is one of the selectable priorities.
func (p Priority) Valid() bool {
	return slices.Contains(validPriorities, p)
}

type Category string

const (
	CategoryUserStory     Category = "user-story"
	CategoryTechnicalTask Category = "technical-task"
)

var validCategories = []Category{CategoryUserStory, CategoryTechnicalTask}

// Categories returns the selectable categories.
func Categories() []Category {
	return append([]Category(nil), validCategories...)
}

func (c Category) Valid() bool {
	return slices.Contains(validCategories, c)
}

// Label returns the friendly category label.
func (c Category) Label() string {
	switch c {
	case CategoryUserStory:
		return "User Story"
	case CategoryTechnicalTask:
		return "Technical Task"
	default:
		return "No category"
	}
}

// DueDateLayout is the calendar-date format used by due dates.
const DueDateLayout = "2006-01-02"

// ParseDueDate validates one calendar date string.
func ParseDueDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidDueDate
	}
	if _, err := time.Parse(DueDateLayout, raw); err != nil {
		return "", ErrInvalidDueDate
	}
	return raw, nil
}

type Task struct {
	ID          string
	Title       string
	Description string
	Category    Category
	DueDate     string
	Priority    Priority
	Status      Status
	AssignedTo  []Assignee
	Subtasks    Subtasks
	CreatedAt   string
}

type TaskInput struct {
	Title       string
	Description string
	Category    Category
	DueDate     string
	Priority    Priority
	Status      Status
	AssignedTo  []Assignee
	Subtasks    Subtasks
}

// EditInput carries the fields the edit form may change.
type EditInput struct {
	Title       string
	Description string
	DueDate     string
	Priority    Priority
	AssignedTo  []Assignee
	Subtasks    Subtasks
}

// NewTask validates a new task. The identifier is assigned by the store after creation.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if !in.Category.Valid() {
		return Task{}, ErrInvalidCategory
	}
	dueDate, err := ParseDueDate(in.DueDate)
	if err != nil {
		return Task{}, err
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return Task{}, ErrInvalidPriority
	}
	if in.Status == "" {
		in.Status = StatusToDo
	}
	if !in.Status.Valid() {
		return Task{}, ErrInvalidStatus
	}

	return Task{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		DueDate:     dueDate,
		Priority:    in.Priority,
		Status:      in.Status,
		AssignedTo:  CloneAssignees(in.AssignedTo),
		Subtasks:    in.Subtasks.Clean(),
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}, nil
}

// ApplyEdit replaces every editable field. Status, category and identity are untouched.
func (t *Task) ApplyEdit(in EditInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrInvalidTitle
	}
	dueDate, err := ParseDueDate(in.DueDate)
	if err != nil {
		return err
	}
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	// A task stored without a priority may be saved without choosing one.
	if !priority.Valid() && priority != PriorityNone {
		return ErrInvalidPriority
	}
	t.Title = title
	t.Description = strings.TrimSpace(in.Description)
	t.DueDate = dueDate
	t.Priority = priority
	t.AssignedTo = CloneAssignees(in.AssignedTo)
	t.Subtasks = in.Subtasks.Clean()
	return nil
}

// Clone returns a deep copy so snapshots never share slices.
func (t Task) Clone() Task {
	out := t
	out.AssignedTo = CloneAssignees(t.AssignedTo)
	out.Subtasks = t.Subtasks.Clone()
	return out
}

// EditInput seeds an edit form from the task.
func (t Task) EditInput() EditInput {
	return EditInput{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		AssignedTo:  CloneAssignees(t.AssignedTo),
		Subtasks:    t.Subtasks.Clone(),
	}
}

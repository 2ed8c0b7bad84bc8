package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hylla/tavla/internal/domain"
)

// Migration is a corrective write discovered while reading legacy data.
type Migration struct {
	TaskID   string
	Subtasks domain.Subtasks
}

// RecordError reports one record that could not be read.
type RecordError struct {
	ID  string
	Err error
}

// Error returns the error text.
func (e *RecordError) Error() string {
	return fmt.Sprintf("task %q: %v", e.ID, e.Err)
}

// Unwrap returns the decode error.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// NormalizeTasks converts the keyed store collection into tasks ordered by key.
// Defaults are applied in memory only; legacy subtask arrays are reported as migrations.
// Members that do not decode are skipped and reported as *RecordError.
func NormalizeTasks(records map[string]json.RawMessage) ([]domain.Task, []Migration, []error) {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tasks := make([]domain.Task, 0, len(ids))
	var migrations []Migration
	var errs []error
	for _, id := range ids {
		rec, err := DecodeTaskRecord(records[id])
		if err != nil {
			errs = append(errs, &RecordError{ID: id, Err: err})
			continue
		}
		task, legacy, err := NormalizeTask(id, rec)
		if err != nil {
			errs = append(errs, &RecordError{ID: id, Err: err})
			continue
		}
		tasks = append(tasks, task)
		if legacy {
			migrations = append(migrations, Migration{TaskID: id, Subtasks: task.Subtasks.Clone()})
		}
	}
	return tasks, migrations, errs
}

// NormalizeTask converts one record. legacy is true when subtasks used the string form.
func NormalizeTask(id string, rec TaskRecord) (domain.Task, bool, error) {
	subtasks, legacy, err := decodeSubtasks(rec.Subtasks)
	if err != nil {
		return domain.Task{}, false, err
	}
	status := domain.StatusToDo
	// Unknown statuses land in the first column rather than hiding the task.
	if parsed, err := domain.ParseStatus(rec.Status); err == nil {
		status = parsed
	}
	priority := domain.PriorityNone
	if raw := strings.TrimSpace(rec.Priority); raw != "" {
		priority = domain.Priority(raw)
	}
	return domain.Task{
		ID:          id,
		Title:       rec.Title,
		Description: rec.Description,
		Category:    domain.Category(rec.Category),
		DueDate:     rec.DueDate,
		Priority:    priority,
		Status:      status,
		AssignedTo:  assigneesFromRecords(rec.AssignedTo),
		Subtasks:    subtasks,
		CreatedAt:   rec.CreatedAt,
	}, legacy, nil
}

// NormalizeContacts converts the keyed contact collection into contacts ordered by name.
func NormalizeContacts(records map[string]ContactRecord) []domain.Contact {
	out := make([]domain.Contact, 0, len(records))
	for id, rec := range records {
		contact, err := domain.NewContact(id, rec.FullName, rec.Color, rec.Initials)
		if err != nil {
			continue
		}
		contact.Image = rec.Image
		out = append(out, contact)
	}
	sort.Slice(out, func(i, j int) bool {
		left, right := strings.ToLower(out[i].FullName), strings.ToLower(out[j].FullName)
		if left == right {
			return out[i].ID < out[j].ID
		}
		return left < right
	})
	return out
}

// decodeSubtasks accepts both the object form and the legacy string form per element.
func decodeSubtasks(raw json.RawMessage) (domain.Subtasks, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.Subtasks{}, false, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, false, fmt.Errorf("decode subtasks: %w", err)
	}
	out := make(domain.Subtasks, 0, len(elems))
	legacy := false
	for _, elem := range elems {
		var text string
		if err := json.Unmarshal(elem, &text); err == nil {
			legacy = true
			out = append(out, domain.Subtask{Text: text})
			continue
		}
		var rec SubtaskRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			return nil, false, fmt.Errorf("decode subtask: %w", err)
		}
		out = append(out, domain.Subtask{Text: rec.Text, Done: rec.Done})
	}
	return out, legacy, nil
}

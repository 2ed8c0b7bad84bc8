package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hylla/tavla/internal/domain"
)

// Document is one stored JSON object kept as raw top-level members, so keys
// unknown to TaskRecord survive every write.
type Document map[string]json.RawMessage

// TaskRecord is the wire shape of one task in the remote store.
type TaskRecord struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	AssignedTo  []AssigneeRecord `json:"assignedTo,omitempty"`
	DueDate     string           `json:"dueDate"`
	Priority    string           `json:"priority,omitempty"`
	Category    string           `json:"category"`
	// Subtasks stays raw so legacy string arrays can be detected on read.
	Subtasks  json.RawMessage `json:"subtasks,omitempty"`
	Status    string          `json:"status,omitempty"`
	CreatedAt string          `json:"createdAt,omitempty"`
}

// errEmptyRecord marks a collection member that is null or blank.
var errEmptyRecord = errors.New("empty record")

// DecodeTaskRecord decodes one member of the task collection.
func DecodeTaskRecord(raw json.RawMessage) (TaskRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return TaskRecord{}, errEmptyRecord
	}
	var rec TaskRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return TaskRecord{}, fmt.Errorf("decode task record: %w", err)
	}
	return rec, nil
}

// AssigneeRecord is the embedded contact snapshot.
type AssigneeRecord struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Color    string `json:"color"`
	Initials string `json:"initials"`
}

// SubtaskRecord is the object form of one subtask.
type SubtaskRecord struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// ContactRecord is the wire shape of one contact.
type ContactRecord struct {
	FullName string `json:"fullName"`
	Color    string `json:"color"`
	Initials string `json:"initials"`
	Image    string `json:"image,omitempty"`
}

// TaskPatch is a partial update; nil fields are not sent.
type TaskPatch struct {
	Status   *string          `json:"status,omitempty"`
	Subtasks *[]SubtaskRecord `json:"subtasks,omitempty"`
}

// StatusPatch builds a patch that only sets status.
func StatusPatch(status domain.Status) TaskPatch {
	raw := string(status)
	return TaskPatch{Status: &raw}
}

// SubtasksPatch builds a patch that rewrites the whole subtask array.
func SubtasksPatch(subtasks domain.Subtasks) TaskPatch {
	records := subtaskRecords(subtasks)
	return TaskPatch{Subtasks: &records}
}

// TaskRecordFromTask converts a task to its wire shape; status is omitted unless requested.
func TaskRecordFromTask(task domain.Task, includeStatus bool) TaskRecord {
	rec := TaskRecord{
		Title:       task.Title,
		Description: task.Description,
		AssignedTo:  assigneeRecords(task.AssignedTo),
		DueDate:     task.DueDate,
		Category:    string(task.Category),
		Subtasks:    EncodeSubtasks(task.Subtasks),
		CreatedAt:   task.CreatedAt,
	}
	if task.Priority != domain.PriorityNone {
		rec.Priority = string(task.Priority)
	}
	if includeStatus {
		rec.Status = string(task.Status)
	}
	return rec
}

// EncodeSubtasks renders the subtask array; an empty list encodes as [].
func EncodeSubtasks(subtasks domain.Subtasks) json.RawMessage {
	raw, err := json.Marshal(subtaskRecords(subtasks))
	if err != nil {
		return json.RawMessage("[]")
	}
	return raw
}

func subtaskRecords(subtasks domain.Subtasks) []SubtaskRecord {
	out := make([]SubtaskRecord, 0, len(subtasks))
	for _, item := range subtasks {
		out = append(out, SubtaskRecord{Text: item.Text, Done: item.Done})
	}
	return out
}

func assigneeRecords(list []domain.Assignee) []AssigneeRecord {
	if len(list) == 0 {
		return nil
	}
	out := make([]AssigneeRecord, 0, len(list))
	for _, a := range list {
		out = append(out, AssigneeRecord{ID: a.ID, FullName: a.FullName, Color: a.Color, Initials: a.Initials})
	}
	return out
}

func assigneesFromRecords(list []AssigneeRecord) []domain.Assignee {
	out := make([]domain.Assignee, 0, len(list))
	for _, a := range list {
		initials := a.Initials
		if initials == "" {
			initials = domain.Initials(a.FullName)
		}
		out = append(out, domain.Assignee{ID: a.ID, FullName: a.FullName, Color: a.Color, Initials: initials})
	}
	return out
}

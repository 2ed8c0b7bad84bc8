package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/tavla/internal/domain"
)

func selectorContacts() []domain.Contact {
	return []domain.Contact{
		{ID: "c1", FullName: "Anna Berg", Initials: "AB", Color: "#FF7A00"},
		{ID: "c2", FullName: "Chris Dahl", Initials: "CD", Color: "#9327FF"},
		{ID: "c3", FullName: "Eva Fors", Initials: "EF", Color: "#6E52FF"},
	}
}

func TestContactSelectorToggle(t *testing.T) {
	original := []domain.Assignee{{ID: "c1", FullName: "Anna Berg", Initials: "AB"}}
	s := newContactSelector(selectorContacts(), original)

	if !s.isSelected("c1") || s.summary() != "1 selected" {
		t.Fatalf("expected seeded selection, got %q", s.summary())
	}
	if !s.toggle("c2") || !s.isSelected("c2") {
		t.Fatal("expected c2 assigned")
	}
	if !s.toggle("c1") || s.isSelected("c1") {
		t.Fatal("expected c1 unassigned")
	}
	if s.toggle("missing") {
		t.Fatal("expected unknown contact to be ignored")
	}
	if len(original) != 1 || original[0].ID != "c1" {
		t.Fatalf("expected original list untouched, got %#v", original)
	}
	got := s.Selected()
	if len(got) != 1 || got[0].ID != "c2" || got[0].Initials != "CD" {
		t.Fatalf("unexpected selection %#v", got)
	}
}

func TestContactSelectorFuzzyFilter(t *testing.T) {
	s := newContactSelector(selectorContacts(), nil)
	s.filter.Focus()
	if len(s.visible) != 3 {
		t.Fatalf("expected all contacts visible, got %d", len(s.visible))
	}
	for _, r := range "eva" {
		s.update(keyRune(r))
	}
	current, ok := s.current()
	if !ok || current.ID != "c3" || len(s.visible) != 1 {
		t.Fatalf("expected only Eva visible, got %#v", s.visible)
	}

	s.update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	if !s.isSelected("c3") {
		t.Fatal("expected space to toggle the filtered contact")
	}

	for _, r := range "zzz" {
		s.update(keyRune(r))
	}
	if _, ok := s.current(); ok || len(s.visible) != 0 {
		t.Fatal("expected no matches")
	}
}

func TestContactSelectorCursor(t *testing.T) {
	s := newContactSelector(selectorContacts(), nil)
	s.update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.update(tea.KeyPressMsg{Code: tea.KeyDown})
	if current, _ := s.current(); current.ID != "c3" {
		t.Fatalf("expected cursor clamped on c3, got %q", current.ID)
	}
	s.update(tea.KeyPressMsg{Code: tea.KeyTab})
	s.update(tea.KeyPressMsg{Code: tea.KeyUp})
	s.update(tea.KeyPressMsg{Code: tea.KeyTab})
	if !s.isSelected("c3") || !s.isSelected("c2") {
		t.Fatalf("expected tab toggles, got %#v", s.Selected())
	}
}

func TestSelectionSummary(t *testing.T) {
	if got := selectionSummary(nil); got != "Select contacts to assign" {
		t.Fatalf("unexpected empty summary %q", got)
	}
	if got := selectionSummary(make([]domain.Assignee, 3)); got != "3 selected" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestEditorSelectorCancelKeepsAssignees(t *testing.T) {
	task := domain.Task{ID: "t1", Title: "Card", DueDate: "2026-03-01", Priority: domain.PriorityLow, AssignedTo: []domain.Assignee{{ID: "c1", Initials: "AB"}}}
	e := newEditEditor(task, selectorContacts())
	e.focusField(4)
	if e.current() != editFieldAssignees {
		t.Fatalf("expected assignees field, got %d", e.current())
	}
	e.update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if e.selector == nil {
		t.Fatal("expected selector open")
	}
	e.selector.toggle("c1")
	e.closeSelector(false)
	if len(e.assignees) != 1 || e.assignees[0].ID != "c1" {
		t.Fatalf("expected cancelled selection discarded, got %#v", e.assignees)
	}
	if len(task.AssignedTo) != 1 {
		t.Fatal("expected held task untouched")
	}
}

func TestEditorCyclePriority(t *testing.T) {
	e := newEditEditor(domain.Task{ID: "t1", Title: "Card", Priority: domain.PriorityNone}, nil)
	e.cyclePriority(1)
	if e.priority != domain.PriorityUrgent {
		t.Fatalf("expected first option from none, got %q", e.priority)
	}
	e.cyclePriority(-1)
	if e.priority != domain.PriorityLow {
		t.Fatalf("expected wrap to last option, got %q", e.priority)
	}
}

func TestEditorSubtaskEditing(t *testing.T) {
	e := newCreateEditor(domain.StatusToDo, nil)
	e.subtaskIn.SetValue("  ")
	if e.submitSubtask() {
		t.Fatal("expected blank subtask ignored")
	}
	e.subtaskIn.SetValue("Write docs")
	if !e.submitSubtask() || len(e.subtasks) != 1 {
		t.Fatalf("expected subtask added, got %#v", e.subtasks)
	}
	e.beginSubtaskEdit()
	e.subtaskIn.SetValue("Write more docs")
	e.submitSubtask()
	if e.subtasks[0].Text != "Write more docs" || e.subEditing != -1 {
		t.Fatalf("expected edited subtask, got %#v", e.subtasks)
	}
	e.removeSubtask()
	if len(e.subtasks) != 0 {
		t.Fatal("expected subtask removed")
	}
	in := e.createInput()
	if in.Status != domain.StatusToDo || in.Priority != domain.PriorityMedium || in.Category != domain.CategoryTechnicalTask {
		t.Fatalf("unexpected create defaults %+v", in)
	}
}

package app

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/hylla/tavla/internal/domain"
)

func TestNormalizeTasksDefaultsAndOrder(t *testing.T) {
	records := map[string]json.RawMessage{
		"b": json.RawMessage(`{"title":"second","subtasks":[{"text":"x","done":true}],"status":"done","priority":"low"}`),
		"a": json.RawMessage(`{"title":"first"}`),
		"c": json.RawMessage(`{"title":"broken","subtasks":{"text":"nope"}}`),
	}
	tasks, migrations, errs := NormalizeTasks(records)
	if len(errs) != 1 {
		t.Fatalf("expected one record error, got %v", errs)
	}
	if len(migrations) != 0 {
		t.Fatalf("expected no migrations, got %#v", migrations)
	}
	if len(tasks) != 2 || tasks[0].ID != "a" || tasks[1].ID != "b" {
		t.Fatalf("expected tasks ordered by key, got %#v", tasks)
	}
	first := tasks[0]
	if first.Status != domain.StatusToDo || first.Priority != domain.PriorityNone || first.Subtasks == nil || len(first.Subtasks) != 0 {
		t.Fatalf("unexpected defaults %#v", first)
	}
	if tasks[1].Status != domain.StatusDone || !tasks[1].Subtasks[0].Done {
		t.Fatalf("unexpected decoded task %#v", tasks[1])
	}
}

func TestNormalizeTasksSkipsUndecodableMembers(t *testing.T) {
	records := map[string]json.RawMessage{
		"good":  json.RawMessage(`{"title":"Ship board","dueDate":"2026-05-01","status":"inProgress"}`),
		"bad":   json.RawMessage(`{"title":"Typed wrong","dueDate":20260501}`),
		"empty": json.RawMessage(`null`),
	}
	tasks, _, errs := NormalizeTasks(records)
	if len(tasks) != 1 || tasks[0].ID != "good" || tasks[0].Status != domain.StatusInProgress {
		t.Fatalf("expected only the good task, got %#v", tasks)
	}
	if len(errs) != 2 {
		t.Fatalf("expected two record errors, got %v", errs)
	}
	var ids []string
	for _, err := range errs {
		var recErr *RecordError
		if !errors.As(err, &recErr) {
			t.Fatalf("expected *RecordError, got %T", err)
		}
		ids = append(ids, recErr.ID)
	}
	slices.Sort(ids)
	if !slices.Equal(ids, []string{"bad", "empty"}) {
		t.Fatalf("unexpected failing ids %v", ids)
	}
}

func TestNormalizeTaskLegacySubtasks(t *testing.T) {
	task, legacy, err := NormalizeTask("t1", TaskRecord{Title: "x", Subtasks: json.RawMessage(`["a", {"text":"b","done":true}]`)})
	if err != nil {
		t.Fatalf("NormalizeTask() error = %v", err)
	}
	if !legacy {
		t.Fatal("expected legacy shape to be detected")
	}
	want := domain.Subtasks{{Text: "a"}, {Text: "b", Done: true}}
	if !slices.Equal(task.Subtasks, want) {
		t.Fatalf("unexpected subtasks %#v", task.Subtasks)
	}
}

func TestNormalizeTaskUnknownStatusFallsBack(t *testing.T) {
	task, _, err := NormalizeTask("t1", TaskRecord{Title: "x", Status: "archived", Category: "epic"})
	if err != nil {
		t.Fatalf("NormalizeTask() error = %v", err)
	}
	if task.Status != domain.StatusToDo {
		t.Fatalf("expected toDo fallback, got %q", task.Status)
	}
	if task.Category.Label() != "No category" {
		t.Fatalf("expected unknown category to survive as No category, got %q", task.Category.Label())
	}
}

func TestStoreChangesCoalesce(t *testing.T) {
	store := NewStore()
	store.Put(domain.Task{ID: "a", Status: domain.StatusToDo})
	store.Put(domain.Task{ID: "b", Status: domain.StatusToDo})
	select {
	case <-store.Changes():
	default:
		t.Fatal("expected change signal")
	}
	select {
	case <-store.Changes():
		t.Fatal("expected signals to coalesce")
	default:
	}

	if prev, ok := store.SetStatus("a", domain.StatusDone); !ok || prev != domain.StatusToDo {
		t.Fatalf("SetStatus() = %q, %v", prev, ok)
	}
	snap := store.Snapshot()
	if len(snap) != 2 || snap[0].ID != "a" || snap[0].Status != domain.StatusDone {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
	if !store.Remove("a") || store.Remove("a") {
		t.Fatal("unexpected Remove() results")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one task left, got %d", store.Len())
	}
}

func TestStoreSnapshotIsIsolated(t *testing.T) {
	store := NewStore()
	store.Put(domain.Task{ID: "a", Subtasks: domain.Subtasks{{Text: "x"}}})
	snap := store.Snapshot()
	snap[0].Subtasks[0].Done = true
	held, _ := store.Get("a")
	if held.Subtasks[0].Done {
		t.Fatal("snapshot mutation leaked into store")
	}
}

func TestDragMoveToEmptyColumnSwapsPlaceholders(t *testing.T) {
	layout := NewLayout([]domain.Task{{ID: "t1", Title: "Draft roadmap", Status: domain.StatusToDo}})
	if layout.HasPlaceholder(domain.StatusToDo) || !layout.HasPlaceholder(domain.StatusDone) {
		t.Fatal("unexpected initial placeholders")
	}

	var drag Drag
	if err := drag.Start(layout, "t1"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	drag.Hover(domain.StatusInProgress)
	if drag.Hovering() != domain.StatusInProgress {
		t.Fatalf("expected hover inProgress, got %q", drag.Hovering())
	}
	move, err := drag.Drop(domain.StatusDone)
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if move.From != domain.StatusToDo || move.To != domain.StatusDone || !move.Changed() {
		t.Fatalf("unexpected move %#v", move)
	}
	if drag.Active() {
		t.Fatal("expected drag to end on drop")
	}

	layout.Apply(move)
	if !layout.HasPlaceholder(domain.StatusToDo) {
		t.Fatal("expected origin placeholder after it emptied")
	}
	if layout.HasPlaceholder(domain.StatusDone) {
		t.Fatal("expected destination placeholder removed")
	}
	if got := layout.Column(domain.StatusDone); !slices.Equal(got, []string{"t1"}) {
		t.Fatalf("unexpected done column %v", got)
	}

	layout.Revert(move)
	if layout.HasPlaceholder(domain.StatusToDo) || !layout.HasPlaceholder(domain.StatusDone) {
		t.Fatal("expected revert to restore placeholders")
	}
}

func TestLayoutApplyKeepsNonEmptyOrigin(t *testing.T) {
	layout := NewLayout([]domain.Task{
		{ID: "a", Status: domain.StatusToDo},
		{ID: "b", Status: domain.StatusToDo},
		{ID: "c", Status: domain.StatusToDo},
	})
	move := Move{TaskID: "b", From: domain.StatusToDo, To: domain.StatusAwaitFeedback, FromIndex: 1}
	layout.Apply(move)
	if layout.HasPlaceholder(domain.StatusToDo) {
		t.Fatal("origin still has cards; no placeholder expected")
	}
	layout.Revert(move)
	if got := layout.Column(domain.StatusToDo); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected original order restored, got %v", got)
	}
}

func TestDragSameColumnAndCancel(t *testing.T) {
	layout := NewLayout([]domain.Task{{ID: "a", Status: domain.StatusInProgress}})
	var drag Drag
	if _, err := drag.Drop(domain.StatusDone); err != ErrNoDrag {
		t.Fatalf("expected ErrNoDrag, got %v", err)
	}
	if err := drag.Start(layout, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := drag.Start(layout, "a"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	move, err := drag.Drop(domain.StatusInProgress)
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if move.Changed() {
		t.Fatal("same-column drop must not change")
	}
	layout.Apply(move)
	if layout.HasPlaceholder(domain.StatusInProgress) {
		t.Fatal("same-column drop must not add placeholder")
	}

	_ = drag.Start(layout, "a")
	drag.Cancel()
	if drag.Active() {
		t.Fatal("expected cancel to end drag")
	}
}

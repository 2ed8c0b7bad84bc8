package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// Clock returns the current time.
type Clock func() time.Time

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	Logger Logger
}

// Service synchronizes the board store with the remote task store.
type Service struct {
	repo   Repository
	store  *Store
	clock  Clock
	logger Logger

	contactsMu     sync.Mutex
	contacts       []domain.Contact
	contactsLoaded bool
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	Title       string
	Description string
	Category    domain.Category
	DueDate     string
	Priority    domain.Priority
	Status      domain.Status
	AssignedTo  []domain.Assignee
	Subtasks    domain.Subtasks
}

// EditTaskInput holds the editable fields of one held task.
type EditTaskInput struct {
	TaskID      string
	Title       string
	Description string
	DueDate     string
	Priority    domain.Priority
	AssignedTo  []domain.Assignee
	Subtasks    domain.Subtasks
}

// NewService constructs a new value for this package.
func NewService(repo Repository, store *Store, clock Clock, cfg ServiceConfig) *Service {
	if store == nil {
		store = NewStore()
	}
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Service{
		repo:   repo,
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Tasks returns the held board state.
func (s *Service) Tasks() []domain.Task {
	return s.store.Snapshot()
}

// Task returns the held copy of one task.
func (s *Service) Task(id string) (domain.Task, bool) {
	return s.store.Get(id)
}

// Changes fires after any held task changes.
func (s *Service) Changes() <-chan struct{} {
	return s.store.Changes()
}

// LoadBoard lists, normalizes and holds every task. Legacy subtask arrays are
// rewritten in the object form before the board is returned.
func (s *Service) LoadBoard(ctx context.Context) ([]domain.Task, error) {
	records, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks, migrations, recordErrs := NormalizeTasks(records)
	for _, recErr := range recordErrs {
		s.logger.Warn("skipping unreadable task record", "err", recErr)
	}
	for _, migration := range migrations {
		if err := s.repo.PatchTask(ctx, migration.TaskID, SubtasksPatch(migration.Subtasks)); err != nil {
			s.logger.Warn("legacy subtask migration failed", "task_id", migration.TaskID, "err", err)
			continue
		}
		s.logger.Info("migrated legacy subtasks", "task_id", migration.TaskID, "count", len(migration.Subtasks))
	}
	s.store.Replace(tasks)
	s.logger.Debug("board loaded", "tasks", len(tasks))
	return s.store.Snapshot(), nil
}

// ListContacts loads the shared contact list once per session.
func (s *Service) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	s.contactsMu.Lock()
	defer s.contactsMu.Unlock()
	if s.contactsLoaded {
		return append([]domain.Contact(nil), s.contacts...), nil
	}
	records, err := s.repo.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	s.contacts = NormalizeContacts(records)
	s.contactsLoaded = true
	return append([]domain.Contact(nil), s.contacts...), nil
}

// OpenTask fetches the authoritative copy and replaces the held entity.
// A task deleted remotely is dropped from the board and ErrNotFound returned.
func (s *Service) OpenTask(ctx context.Context, id string) (domain.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Task{}, domain.ErrInvalidID
	}
	rec, err := s.repo.GetTask(ctx, id)
	if err != nil {
		if isNotFound(err) {
			if s.store.Remove(id) {
				s.logger.Info("task vanished from store", "task_id", id)
			}
			return domain.Task{}, ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	task, legacy, err := NormalizeTask(id, rec)
	if err != nil {
		return domain.Task{}, fmt.Errorf("read task %s: %w", id, err)
	}
	if legacy {
		if err := s.repo.PatchTask(ctx, id, SubtasksPatch(task.Subtasks)); err != nil {
			s.logger.Warn("legacy subtask migration failed", "task_id", id, "err", err)
		}
	}
	s.store.Put(task)
	return task, nil
}

// MoveTask changes the column of a held task. The store is updated first and
// reverted if the status patch fails.
func (s *Service) MoveTask(ctx context.Context, id string, to domain.Status) (domain.Task, error) {
	if !to.Valid() {
		return domain.Task{}, domain.ErrInvalidStatus
	}
	task, ok := s.store.Get(id)
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	if task.Status == to {
		return task, nil
	}
	prev, _ := s.store.SetStatus(id, to)
	if err := s.repo.PatchTask(ctx, id, StatusPatch(to)); err != nil {
		s.store.SetStatus(id, prev)
		s.logger.Error("move failed, reverted", "task_id", id, "from", prev, "to", to, "err", err)
		return domain.Task{}, fmt.Errorf("move task %s to %s: %w", id, to, err)
	}
	s.logger.Debug("task moved", "task_id", id, "from", prev, "to", to)
	task.Status = to
	return task, nil
}

// SaveTask applies an edit to the held entity and writes a full replace. The
// form cannot change status, so the replace carries the status held right now;
// stores whose PUT is a plain overwrite keep the task in its column.
func (s *Service) SaveTask(ctx context.Context, in EditTaskInput) (domain.Task, error) {
	task, err := s.heldTask(ctx, in.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.ApplyEdit(domain.EditInput{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		AssignedTo:  in.AssignedTo,
		Subtasks:    in.Subtasks,
	}); err != nil {
		return domain.Task{}, validationError(err)
	}
	if err := s.repo.ReplaceTask(ctx, task.ID, TaskRecordFromTask(task, true)); err != nil {
		s.logger.Error("save failed", "task_id", task.ID, "err", err)
		return domain.Task{}, fmt.Errorf("save task %s: %w", task.ID, err)
	}
	// a move may have landed while the replace was in flight
	if current, ok := s.store.Get(task.ID); ok && current.Status != task.Status {
		s.logger.Debug("keeping newer column after save", "task_id", task.ID, "sent", task.Status, "held", current.Status)
		task.Status = current.Status
	}
	s.store.Put(task)
	return task, nil
}

// CreateTask validates and creates a task; the store assigns its id.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	task, err := domain.NewTask(domain.TaskInput{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      in.Status,
		AssignedTo:  in.AssignedTo,
		Subtasks:    in.Subtasks,
	}, s.clock())
	if err != nil {
		return domain.Task{}, validationError(err)
	}
	id, err := s.repo.CreateTask(ctx, TaskRecordFromTask(task, true))
	if err != nil {
		s.logger.Error("create failed", "title", task.Title, "err", err)
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	task.ID = id
	s.store.Put(task)
	s.logger.Info("task created", "task_id", id, "status", task.Status)
	return task, nil
}

// DeleteTask removes the task remotely and then drops its card.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		if isNotFound(err) {
			s.store.Remove(id)
			return ErrNotFound
		}
		s.logger.Error("delete failed", "task_id", id, "err", err)
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	s.store.Remove(id)
	s.logger.Info("task deleted", "task_id", id)
	return nil
}

// AddSubtask appends one subtask and writes the whole array.
func (s *Service) AddSubtask(ctx context.Context, id, text string) (domain.Task, error) {
	return s.mutateSubtasks(ctx, id, func(list domain.Subtasks) (domain.Subtasks, bool) {
		return list.Add(text)
	})
}

// EditSubtask replaces the text at idx and writes the whole array.
func (s *Service) EditSubtask(ctx context.Context, id string, idx int, text string) (domain.Task, error) {
	return s.mutateSubtasks(ctx, id, func(list domain.Subtasks) (domain.Subtasks, bool) {
		return list.Edit(idx, text)
	})
}

// RemoveSubtask deletes the subtask at idx and writes the whole array.
func (s *Service) RemoveSubtask(ctx context.Context, id string, idx int) (domain.Task, error) {
	return s.mutateSubtasks(ctx, id, func(list domain.Subtasks) (domain.Subtasks, bool) {
		return list.Remove(idx)
	})
}

// ToggleSubtask sets the done flag at idx and writes the whole array.
func (s *Service) ToggleSubtask(ctx context.Context, id string, idx int, done bool) (domain.Task, error) {
	return s.mutateSubtasks(ctx, id, func(list domain.Subtasks) (domain.Subtasks, bool) {
		return list.SetDone(idx, done)
	})
}

func (s *Service) mutateSubtasks(ctx context.Context, id string, fn func(domain.Subtasks) (domain.Subtasks, bool)) (domain.Task, error) {
	task, err := s.heldTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	next, changed := fn(task.Subtasks)
	if !changed {
		return task, nil
	}
	if err := s.repo.PatchTask(ctx, id, SubtasksPatch(next)); err != nil {
		s.logger.Error("subtask write failed", "task_id", id, "err", err)
		return domain.Task{}, fmt.Errorf("write subtasks of %s: %w", id, err)
	}
	task.Subtasks = next
	s.store.Put(task)
	return task, nil
}

// heldTask returns the held entity, fetching it once when the board never saw it.
func (s *Service) heldTask(ctx context.Context, id string) (domain.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Task{}, domain.ErrInvalidID
	}
	if task, ok := s.store.Get(id); ok {
		return task, nil
	}
	return s.OpenTask(ctx, id)
}

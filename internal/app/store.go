package app

import (
	"sync"

	"github.com/hylla/tavla/internal/domain"
)

// Store is the single owner of in-memory board state. Views read snapshots and
// re-derive when Changes fires.
type Store struct {
	mu      sync.RWMutex
	tasks   map[string]domain.Task
	order   []string
	changes chan struct{}
}

// NewStore constructs an empty board store.
func NewStore() *Store {
	return &Store{
		tasks:   map[string]domain.Task{},
		changes: make(chan struct{}, 1),
	}
}

// Changes returns the coalescing change signal.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

// Replace swaps the whole task set, keeping the given order.
func (s *Store) Replace(tasks []domain.Task) {
	s.mu.Lock()
	s.tasks = make(map[string]domain.Task, len(tasks))
	s.order = make([]string, 0, len(tasks))
	for _, task := range tasks {
		if _, dup := s.tasks[task.ID]; !dup {
			s.order = append(s.order, task.ID)
		}
		s.tasks[task.ID] = task.Clone()
	}
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns deep copies of every task in store order.
func (s *Store) Snapshot() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].Clone())
	}
	return out
}

// Get returns a copy of one task.
func (s *Store) Get(id string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return task.Clone(), true
}

// Put inserts or replaces one task. New tasks are appended to the order.
func (s *Store) Put(task domain.Task) {
	s.mu.Lock()
	if _, ok := s.tasks[task.ID]; !ok {
		s.order = append(s.order, task.ID)
	}
	s.tasks[task.ID] = task.Clone()
	s.mu.Unlock()
	s.notify()
}

// Remove deletes one task and reports whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	_, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
		for idx, current := range s.order {
			if current == id {
				s.order = append(s.order[:idx:idx], s.order[idx+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
	return ok
}

// SetStatus moves one task to status and returns the previous status.
func (s *Store) SetStatus(id string, status domain.Status) (domain.Status, bool) {
	s.mu.Lock()
	task, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return "", false
	}
	prev := task.Status
	task.Status = status
	s.tasks[id] = task
	s.mu.Unlock()
	if prev != status {
		s.notify()
	}
	return prev, true
}

// Len returns the number of tasks held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

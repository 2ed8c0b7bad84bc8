package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "tavla.snapshot.v1"

// Snapshot is a portable copy of every task and contact record.
type Snapshot struct {
	Version    string                   `json:"version"`
	ExportedAt time.Time                `json:"exported_at"`
	Tasks      map[string]TaskRecord    `json:"tasks"`
	Contacts   map[string]ContactRecord `json:"contacts,omitempty"`
}

// ExportSnapshot reads the raw records from the store.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	raw, err := s.repo.ListTasks(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list tasks: %w", err)
	}
	contacts, err := s.repo.ListContacts(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list contacts: %w", err)
	}
	tasks := make(map[string]TaskRecord, len(raw))
	for id, member := range raw {
		rec, err := DecodeTaskRecord(member)
		if err != nil {
			s.logger.Warn("export skipping unreadable task record", "task_id", id, "err", err)
			continue
		}
		tasks[id] = rec
	}
	return Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Tasks:      tasks,
		Contacts:   contacts,
	}, nil
}

// ImportSnapshot upserts every record of the snapshot into the store.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	for id, rec := range snap.Tasks {
		if err := s.repo.ReplaceTask(ctx, id, rec); err != nil {
			return fmt.Errorf("import task %s: %w", id, err)
		}
	}
	if len(snap.Contacts) > 0 {
		writer, ok := s.repo.(ContactWriter)
		if !ok {
			s.logger.Warn("store does not accept contacts, skipping", "contacts", len(snap.Contacts))
		} else {
			for id, rec := range snap.Contacts {
				if err := writer.PutContact(ctx, id, rec); err != nil {
					return fmt.Errorf("import contact %s: %w", id, err)
				}
			}
		}
	}
	s.logger.Info("snapshot imported", "tasks", len(snap.Tasks), "contacts", len(snap.Contacts))
	return nil
}

// Validate checks the snapshot before any write happens.
func (s *Snapshot) Validate() error {
	if strings.TrimSpace(s.Version) != SnapshotVersion {
		return fmt.Errorf("%w: unsupported snapshot version %q", ErrInvalidInput, s.Version)
	}
	var errs []error
	for id, rec := range s.Tasks {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, errors.New("task with empty id"))
			continue
		}
		task, _, err := NormalizeTask(id, rec)
		if err != nil {
			errs = append(errs, &RecordError{ID: id, Err: err})
			continue
		}
		if strings.TrimSpace(task.Title) == "" {
			errs = append(errs, &RecordError{ID: id, Err: domain.ErrInvalidTitle})
		}
		if rec.Status != "" {
			if _, err := domain.ParseStatus(rec.Status); err != nil {
				errs = append(errs, &RecordError{ID: id, Err: err})
			}
		}
	}
	for id, rec := range s.Contacts {
		if _, err := domain.NewContact(id, rec.FullName, rec.Color, rec.Initials); err != nil {
			errs = append(errs, fmt.Errorf("contact %q: %w", id, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

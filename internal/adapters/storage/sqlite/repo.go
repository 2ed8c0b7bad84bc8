package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/tavla/internal/app"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository is a JSON document store for tasks and contacts.
type Repository struct {
	db    *sql.DB
	idGen func() string
	clock func() time.Time
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{
		db:    db,
		idGen: func() string { return uuid.NewString() },
		clock: time.Now,
	}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database answers.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			body_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			body_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	if _, err := r.db.ExecContext(ctx, `ALTER TABLE contacts ADD COLUMN created_at TEXT NOT NULL DEFAULT ''`); err != nil && !isDuplicateColumnErr(err) {
		return fmt.Errorf("migrate sqlite add contacts.created_at: %w", err)
	}
	return nil
}

// ListTaskDocuments returns every task document keyed by id.
func (r *Repository) ListTaskDocuments(ctx context.Context) (map[string]app.Document, error) {
	return r.listDocuments(ctx, `SELECT id, body_json FROM tasks ORDER BY id`)
}

// GetTaskDocument returns one task document.
func (r *Repository) GetTaskDocument(ctx context.Context, id string) (app.Document, error) {
	return getDocument(ctx, r.db, `SELECT body_json FROM tasks WHERE id = ?`, id)
}

// CreateTaskDocument stores a new task under a generated id.
func (r *Repository) CreateTaskDocument(ctx context.Context, doc app.Document) (string, error) {
	body, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}
	id := r.idGen()
	now := ts(r.clock())
	if _, err := r.db.ExecContext(ctx, `INSERT INTO tasks(id, body_json, created_at, updated_at) VALUES(?, ?, ?, ?)`, id, body, now, now); err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

// MergeTaskDocument merges top-level members into the stored document; a null
// member deletes the key.
func (r *Repository) MergeTaskDocument(ctx context.Context, id string, patch app.Document) (app.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin merge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getDocument(ctx, tx, `SELECT body_json FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	for key, value := range patch {
		if isJSONNull(value) {
			delete(current, key)
			continue
		}
		current[key] = value
	}
	body, err := encodeDocument(current)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET body_json = ?, updated_at = ? WHERE id = ?`, body, ts(r.clock()), id)
	if err != nil {
		return nil, fmt.Errorf("merge task: %w", err)
	}
	if err := translateNoRows(res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit merge: %w", err)
	}
	return current, nil
}

// ReplaceTaskDocument overwrites or creates the document at id. A body without
// status keeps the stored status.
func (r *Repository) ReplaceTaskDocument(ctx context.Context, id string, doc app.Document) (app.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	next := make(app.Document, len(doc)+1)
	for key, value := range doc {
		if isJSONNull(value) {
			continue
		}
		next[key] = value
	}
	if _, ok := next["status"]; !ok {
		current, err := getDocument(ctx, tx, `SELECT body_json FROM tasks WHERE id = ?`, id)
		switch {
		case err == nil:
			if status, ok := current["status"]; ok {
				next["status"] = status
			}
		case !errors.Is(err, app.ErrNotFound):
			return nil, err
		}
	}
	body, err := encodeDocument(next)
	if err != nil {
		return nil, err
	}
	now := ts(r.clock())
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tasks(id, body_json, created_at, updated_at) VALUES(?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body_json = excluded.body_json, updated_at = excluded.updated_at
	`, id, body, now, now); err != nil {
		return nil, fmt.Errorf("replace task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace: %w", err)
	}
	return next, nil
}

// DeleteTaskDocument removes one task document.
func (r *Repository) DeleteTaskDocument(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return translateNoRows(res)
}

// ListContactDocuments returns every contact document keyed by id.
func (r *Repository) ListContactDocuments(ctx context.Context) (map[string]app.Document, error) {
	return r.listDocuments(ctx, `SELECT id, body_json FROM contacts ORDER BY id`)
}

// PutContactDocument creates or overwrites one contact document.
func (r *Repository) PutContactDocument(ctx context.Context, id string, doc app.Document) error {
	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	now := ts(r.clock())
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts(id, body_json, created_at, updated_at) VALUES(?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body_json = excluded.body_json, updated_at = excluded.updated_at
	`, id, body, now, now); err != nil {
		return fmt.Errorf("put contact: %w", err)
	}
	return nil
}

// ListTasks implements app.Repository over the document tables.
func (r *Repository) ListTasks(ctx context.Context) (map[string]json.RawMessage, error) {
	docs, err := r.ListTaskDocuments(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(docs))
	for id, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode task %s: %w", id, err)
		}
		out[id] = raw
	}
	return out, nil
}

// GetTask implements app.Repository.
func (r *Repository) GetTask(ctx context.Context, id string) (app.TaskRecord, error) {
	doc, err := r.GetTaskDocument(ctx, id)
	if err != nil {
		return app.TaskRecord{}, err
	}
	var rec app.TaskRecord
	if err := decodeDocument(doc, &rec); err != nil {
		return app.TaskRecord{}, fmt.Errorf("decode task %s: %w", id, err)
	}
	return rec, nil
}

// CreateTask implements app.Repository.
func (r *Repository) CreateTask(ctx context.Context, rec app.TaskRecord) (string, error) {
	doc, err := documentFrom(rec)
	if err != nil {
		return "", err
	}
	return r.CreateTaskDocument(ctx, doc)
}

// PatchTask implements app.Repository.
func (r *Repository) PatchTask(ctx context.Context, id string, patch app.TaskPatch) error {
	doc, err := documentFrom(patch)
	if err != nil {
		return err
	}
	_, err = r.MergeTaskDocument(ctx, id, doc)
	return err
}

// ReplaceTask implements app.Repository.
func (r *Repository) ReplaceTask(ctx context.Context, id string, rec app.TaskRecord) error {
	doc, err := documentFrom(rec)
	if err != nil {
		return err
	}
	_, err = r.ReplaceTaskDocument(ctx, id, doc)
	return err
}

// DeleteTask implements app.Repository.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	return r.DeleteTaskDocument(ctx, id)
}

// ListContacts implements app.Repository.
func (r *Repository) ListContacts(ctx context.Context) (map[string]app.ContactRecord, error) {
	docs, err := r.ListContactDocuments(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]app.ContactRecord, len(docs))
	for id, doc := range docs {
		var rec app.ContactRecord
		if err := decodeDocument(doc, &rec); err != nil {
			return nil, fmt.Errorf("decode contact %s: %w", id, err)
		}
		out[id] = rec
	}
	return out, nil
}

// PutContact implements app.ContactWriter.
func (r *Repository) PutContact(ctx context.Context, id string, rec app.ContactRecord) error {
	doc, err := documentFrom(rec)
	if err != nil {
		return err
	}
	return r.PutContactDocument(ctx, id, doc)
}

func (r *Repository) listDocuments(ctx context.Context, query string) (map[string]app.Document, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]app.Document{}
	for rows.Next() {
		var (
			id   string
			body string
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		doc, err := parseDocument(body)
		if err != nil {
			return nil, fmt.Errorf("parse document %s: %w", id, err)
		}
		out[id] = doc
	}
	return out, rows.Err()
}

type queryRower interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func getDocument(ctx context.Context, q queryRower, query, id string) (app.Document, error) {
	var body string
	if err := q.QueryRowContext(ctx, query, id).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, app.ErrNotFound
		}
		return nil, err
	}
	return parseDocument(body)
}

func parseDocument(body string) (app.Document, error) {
	doc := app.Document{}
	if strings.TrimSpace(body) == "" {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = app.Document{}
	}
	return doc, nil
}

func encodeDocument(doc app.Document) (string, error) {
	if doc == nil {
		doc = app.Document{}
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(body), nil
}

func documentFrom(v any) (app.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	doc := app.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return doc, nil
}

func decodeDocument(doc app.Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// isDuplicateColumnErr reports whether the expected condition is satisfied.
func isDuplicateColumnErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}

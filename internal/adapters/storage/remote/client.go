package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hylla/tavla/internal/app"
)

// DefaultTimeout bounds one store request.
const DefaultTimeout = 10 * time.Second

// Config holds configuration for the remote store client.
type Config struct {
	BaseURL    string
	PathSuffix string
	Timeout    time.Duration
	UserAgent  string
}

// Client talks to a JSON document store over plain HTTP verbs.
type Client struct {
	base       string
	suffix     string
	userAgent  string
	httpClient *http.Client
}

// New constructs a client. A nil httpClient gets one bounded by cfg.Timeout.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("remote store url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid remote store url %q", cfg.BaseURL)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		base:       base,
		suffix:     strings.TrimSpace(cfg.PathSuffix),
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: httpClient,
	}, nil
}

// ListTasks returns every task member undecoded; a null collection is empty.
func (c *Client) ListTasks(ctx context.Context) (map[string]json.RawMessage, error) {
	var out map[string]json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]json.RawMessage{}
	}
	return out, nil
}

// GetTask returns one task record or app.ErrNotFound.
func (c *Client) GetTask(ctx context.Context, id string) (app.TaskRecord, error) {
	var out *app.TaskRecord
	if _, err := c.do(ctx, http.MethodGet, taskPath(id), nil, &out); err != nil {
		return app.TaskRecord{}, err
	}
	if out == nil {
		return app.TaskRecord{}, app.ErrNotFound
	}
	return *out, nil
}

// CreateTask posts a record and returns the id the store generated.
func (c *Client) CreateTask(ctx context.Context, rec app.TaskRecord) (string, error) {
	var out struct {
		Name string `json:"name"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/tasks", rec, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Name) == "" {
		return "", errors.New("remote store returned no id for created task")
	}
	return out.Name, nil
}

// PatchTask merges the given fields into the stored record.
func (c *Client) PatchTask(ctx context.Context, id string, patch app.TaskPatch) error {
	_, err := c.do(ctx, http.MethodPatch, taskPath(id), patch, nil)
	return err
}

// ReplaceTask overwrites the stored record.
func (c *Client) ReplaceTask(ctx context.Context, id string, rec app.TaskRecord) error {
	_, err := c.do(ctx, http.MethodPut, taskPath(id), rec, nil)
	return err
}

// DeleteTask removes the stored record.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
	return err
}

// ListContacts returns every contact record; a null collection is empty.
func (c *Client) ListContacts(ctx context.Context) (map[string]app.ContactRecord, error) {
	var out map[string]app.ContactRecord
	if _, err := c.do(ctx, http.MethodGet, "/contacts", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]app.ContactRecord{}
	}
	return out, nil
}

// PutContact creates or overwrites one contact record.
func (c *Client) PutContact(ctx context.Context, id string, rec app.ContactRecord) error {
	_, err := c.do(ctx, http.MethodPut, "/contacts/"+url.PathEscape(id), rec, nil)
	return err
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

// do issues one request. Non-2xx responses become *app.StoreError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return 0, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path+c.suffix, reader)
	if err != nil {
		return 0, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, &app.StoreError{Method: method, Path: path, Status: resp.StatusCode}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil
}

// Package httpapi provides the REST document-store adapter served under `/api/v1`.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hylla/tavla/internal/app"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// jsonSuffix is accepted on every resource path for Firebase-style clients.
const jsonSuffix = ".json"

// errInvalidRequest marks malformed request bodies.
var errInvalidRequest = errors.New("invalid request")

// DocumentStore is the persistence port behind the REST surface.
type DocumentStore interface {
	ListTaskDocuments(context.Context) (map[string]app.Document, error)
	GetTaskDocument(context.Context, string) (app.Document, error)
	CreateTaskDocument(context.Context, app.Document) (string, error)
	MergeTaskDocument(context.Context, string, app.Document) (app.Document, error)
	ReplaceTaskDocument(context.Context, string, app.Document) (app.Document, error)
	DeleteTaskDocument(context.Context, string) error
	ListContactDocuments(context.Context) (map[string]app.Document, error)
	PutContactDocument(context.Context, string, app.Document) error
}

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	store  DocumentStore
	logger app.Logger
	router chi.Router
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// createdResponse is the body returned by POST, naming the generated id.
type createdResponse struct {
	Name string `json:"name"`
}

// NewHandler constructs one HTTP API adapter over the document store.
func NewHandler(store DocumentStore, logger app.Logger) *Handler {
	h := &Handler{
		store:  store,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(stripJSONSuffix)
	if logger != nil {
		r.Use(h.logRequests)
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMethodNotAllowed(w)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.handleListTasks)
		r.Post("/", h.handleCreateTask)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetTask)
			r.Patch("/", h.handlePatchTask)
			r.Put("/", h.handleReplaceTask)
			r.Delete("/", h.handleDeleteTask)
		})
	})
	r.Get("/contacts", h.handleListContacts)
	r.Put("/contacts/{id}", h.handlePutContact)
	h.router = r
	return h
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "document store is not configured",
		})
		return
	}
	h.router.ServeHTTP(w, r)
}

// handleListTasks serves GET `/tasks`; an empty collection is `null`.
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListTaskDocuments(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeCollection(w, docs)
}

// handleCreateTask serves POST `/tasks`.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocumentBody(r.Context(), w, r)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	id, err := h.store.CreateTaskDocument(r.Context(), doc)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, createdResponse{Name: id})
}

// handleGetTask serves GET `/tasks/{id}`.
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.GetTaskDocument(r.Context(), resourceID(r))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handlePatchTask serves PATCH `/tasks/{id}` as a top-level merge.
func (h *Handler) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocumentBody(r.Context(), w, r)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	merged, err := h.store.MergeTaskDocument(r.Context(), resourceID(r), doc)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

// handleReplaceTask serves PUT `/tasks/{id}`.
func (h *Handler) handleReplaceTask(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocumentBody(r.Context(), w, r)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	stored, err := h.store.ReplaceTaskDocument(r.Context(), resourceID(r), doc)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// handleDeleteTask serves DELETE `/tasks/{id}`.
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTaskDocument(r.Context(), resourceID(r)); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// handleListContacts serves GET `/contacts`.
func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListContactDocuments(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeCollection(w, docs)
}

// handlePutContact serves PUT `/contacts/{id}`.
func (h *Handler) handlePutContact(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocumentBody(r.Context(), w, r)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	if err := h.store.PutContactDocument(r.Context(), resourceID(r), doc); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// logRequests records one line per request.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(started),
		)
	})
}

// stripJSONSuffix routes `/tasks.json` and `/tasks/{id}.json` like their bare forms.
func stripJSONSuffix(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		if rctx != nil {
			path := rctx.RoutePath
			if path == "" {
				path = r.URL.Path
				if r.URL.RawPath != "" {
					path = r.URL.RawPath
				}
			}
			if strings.HasSuffix(path, jsonSuffix) {
				rctx.RoutePath = strings.TrimSuffix(path, jsonSuffix)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// resourceID returns the `{id}` path value.
func resourceID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

// writeCollection writes a keyed collection, or `null` when it is empty.
func writeCollection(w http.ResponseWriter, docs map[string]app.Document) {
	if len(docs) == 0 {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, app.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.As(err, &maxBytesErr):
		writeJSONError(w, http.StatusRequestEntityTooLarge, APIError{
			Code:    "payload_too_large",
			Message: err.Error(),
			Context: map[string]any{"limit_bytes": maxRequestBodyBytes},
		})
	case errors.Is(err, errInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
			Hint:    "Send one JSON object as the request body.",
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeDocumentBody decodes one required JSON object body.
func decodeDocumentBody(ctx context.Context, w http.ResponseWriter, r *http.Request) (app.Document, error) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	var doc app.Document
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&doc); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, fmt.Errorf("decode request body: %w", err)
		}
		return nil, fmt.Errorf("decode request body: %w", errors.Join(errInvalidRequest, err))
	}
	if doc == nil {
		return nil, fmt.Errorf("decode request body: null document: %w", errInvalidRequest)
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode request body: trailing content: %w", errInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return doc, nil
	}
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	repository "github.com/ecliptiq/transits/internal/adapters/repository"
)

// QueriesHandler handles the asynchronous query pipeline: admission and
// report retrieval.
type QueriesHandler struct {
	deps Dependencies
}

// NewQueriesHandler creates a new queries handler.
func NewQueriesHandler(deps Dependencies) *QueriesHandler {
	return &QueriesHandler{deps: deps}
}

// HandlePostQuery handles POST /v1/queries requests. The query is admitted
// to the evaluation queue and acknowledged with its ID; clients poll
// GET /v1/queries/{id} for the report. A request without an ID gets a
// generated one.
func (h *QueriesHandler) HandlePostQuery(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_query"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
		return
	}

	if strings.TrimSpace(req.ID) == "" {
		req.ID = uuid.NewString()
	}

	// Idempotency check, the ID is marked as seen before enqueueing.
	if h.deps.SeenAndRecord(r.Context(), req.ID) {
		writeJSON(w, http.StatusOK, queryAck{ID: req.ID, Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), req.toQuery()); !ok {
		// Roll back the seen status so the client may retry the same ID.
		h.deps.Unrecord(r.Context(), req.ID)
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
		return
	}

	writeJSON(w, http.StatusAccepted, queryAck{ID: req.ID, Status: "accepted", Duplicate: false})
}

// HandleGetQuery handles GET /v1/queries/{id} requests.
func (h *QueriesHandler) HandleGetQuery(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_query"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/queries/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}

	report, err := h.deps.Report(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

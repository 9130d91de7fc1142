// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// TransitsHandler handles synchronous evaluation requests.
type TransitsHandler struct {
	deps Dependencies
}

// NewTransitsHandler creates a new transits handler.
func NewTransitsHandler(deps Dependencies) *TransitsHandler {
	return &TransitsHandler{deps: deps}
}

// HandleEvaluate handles POST /v1/transits requests: the query is evaluated
// in the request goroutine and its report returned directly.
func (h *TransitsHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate_transits"
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

	report, err := h.deps.Evaluate(r.Context(), req.toQuery())
	if err != nil {
		if isBadEvaluation(err) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecliptiq/transits/internal/domain/chart"
	"github.com/ecliptiq/transits/internal/domain/dedupe"
	"github.com/ecliptiq/transits/internal/domain/model"
	"github.com/ecliptiq/transits/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Evaluate runs a query synchronously and returns its report.
	Evaluate(ctx context.Context, q model.Query) (types.Report, error)

	// Enqueue pushes a query for async evaluation. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, q model.Query) bool

	// Report returns the stored report for an async query ID.
	Report(ctx context.Context, id string) (types.Report, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	transitsHandler *TransitsHandler
	queriesHandler  *QueriesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		transitsHandler: NewTransitsHandler(deps),
		queriesHandler:  NewQueriesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/transits", MetricsMiddleware(s.transitsHandler.HandleEvaluate, "transits"))
	mux.HandleFunc("/v1/queries", MetricsMiddleware(s.queriesHandler.HandlePostQuery, "queries"))
	mux.HandleFunc("/v1/queries/", MetricsMiddleware(s.queriesHandler.HandleGetQuery, "queries"))
}

// positionPayload mirrors the OpenAPI schema for one ecliptic position.
type positionPayload struct {
	Longitude float64  `json:"longitude"`
	Speed     *float64 `json:"speed"`
}

// evaluateRequest mirrors the OpenAPI schema shared by POST /v1/transits
// and POST /v1/queries. The ID field matters only on the async path.
type evaluateRequest struct {
	ID              string                     `json:"id"`
	Sect            string                     `json:"sect"`
	Mode            string                     `json:"mode"`
	MinuteTolArcmin float64                    `json:"minute_tol_arcmin"`
	IncludePoF      *bool                      `json:"include_pof"`
	Transits        map[string]positionPayload `json:"transits"`
	Natal           map[string]positionPayload `json:"natal"`
}

func (e evaluateRequest) validate() error {
	if len(e.Transits) == 0 {
		return errors.New("missing transits")
	}
	if len(e.Natal) == 0 {
		return errors.New("missing natal")
	}
	if e.MinuteTolArcmin < 0 {
		return errors.New("minute_tol_arcmin must not be negative")
	}
	if _, err := model.ParseMode(e.Mode); err != nil {
		return err
	}
	return nil
}

// toQuery converts the payload to the domain query. The Part of Fortune is
// derived unless the request opts out.
func (e evaluateRequest) toQuery() model.Query {
	includePoF := true
	if e.IncludePoF != nil {
		includePoF = *e.IncludePoF
	}

	mode, _ := model.ParseMode(e.Mode)

	return model.Query{
		ID:              e.ID,
		Sect:            e.Sect,
		Mode:            mode,
		MinuteTolArcmin: e.MinuteTolArcmin,
		IncludePoF:      includePoF,
		Transits:        toPositionSet(e.Transits),
		Natal:           toPositionSet(e.Natal),
	}
}

func toPositionSet(in map[string]positionPayload) model.PositionSet {
	out := make(model.PositionSet, len(in))
	for name, p := range in {
		out[name] = model.Position{Longitude: p.Longitude, Speed: p.Speed}
	}
	return out
}

// queryAck is the admission response for POST /v1/queries.
type queryAck struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isBadEvaluation reports whether an evaluation error is the client's
// fault: an unknown sect or mode, or a chart missing a required point.
func isBadEvaluation(err error) bool {
	return errors.Is(err, model.ErrInvalidSect) ||
		errors.Is(err, model.ErrInvalidMode) ||
		errors.Is(err, chart.ErrMissingPoint)
}

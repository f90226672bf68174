// Package handler wires HTTP requests onto the routing solver and its
// supporting packages (stats, validator, swap).
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/paiban/internal/metrics"
	"github.com/paiban/paiban/internal/repository"
	apperrors "github.com/paiban/paiban/pkg/errors"
	"github.com/paiban/paiban/pkg/logger"
	"github.com/paiban/paiban/pkg/scheduler"
	"github.com/paiban/paiban/pkg/scheduler/availability"
	"github.com/paiban/paiban/pkg/scheduler/matrix"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

// SolveRequest is the POST /api/v1/solve request body.
type SolveRequest struct {
	Date     string          `json:"date"`
	Visits   []model.Visit   `json:"visits"`
	Visitors []model.Visitor `json:"visitors"`
	Options  *SolveOptionsDTO `json:"options,omitempty"`
}

// SolveOptionsDTO mirrors scheduler.SolveOptions for the wire format, so a
// caller that omits it entirely still gets scheduler.DefaultSolveOptions().
type SolveOptionsDTO struct {
	TargetTimeWeight      *float64 `json:"target_time_weight,omitempty"`
	ReassignmentPenalty   *float64 `json:"reassignment_penalty,omitempty"`
	LocalSearchIterations *int     `json:"local_search_iterations,omitempty"`
}

// SolveResponse is the POST /api/v1/solve response body.
type SolveResponse struct {
	Plan     *model.Plan `json:"plan"`
	Duration string      `json:"duration"`
}

// SolveHandler handles the routing solver's HTTP entry point.
type SolveHandler struct {
	availability availability.Provider
	matrixBase   matrix.Provider
	cache        matrix.Cache
	cacheTTL     time.Duration
	timeout      time.Duration
}

// NewSolveHandler builds a SolveHandler. cache may be nil to disable
// distance-matrix caching.
func NewSolveHandler(availabilityProvider availability.Provider, matrixProvider matrix.Provider, cache matrix.Cache, cacheTTL, timeout time.Duration) *SolveHandler {
	return &SolveHandler{
		availability: availabilityProvider,
		matrixBase:   matrixProvider,
		cache:        cache,
		cacheTTL:     cacheTTL,
		timeout:      timeout,
	}
}

// Solve handles POST /api/v1/solve.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.Date == "" {
		writeError(w, apperrors.InvalidInput("date", "required"))
		return
	}

	opts := scheduler.DefaultSolveOptions()
	if req.Options != nil {
		if req.Options.TargetTimeWeight != nil {
			opts.TargetTimeWeight = *req.Options.TargetTimeWeight
		}
		if req.Options.ReassignmentPenalty != nil {
			opts.ReassignmentPenalty = *req.Options.ReassignmentPenalty
		}
		if req.Options.LocalSearchIterations != nil {
			opts.LocalSearchIterations = *req.Options.LocalSearchIterations
		}
	}

	matrixProvider := h.matrixBase
	if h.cache != nil {
		matrixProvider = matrix.NewCachingProvider(h.matrixBase, h.cache, h.cacheTTL)
	}

	start := time.Now()
	plan, err := scheduler.Solve(ctx, req.Visits, req.Visitors, req.Date, h.availability, matrixProvider, opts)
	duration := time.Since(start)
	metrics.SolveDurationSeconds.Observe(duration.Seconds())

	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Str("date", req.Date).Msg("solve failed")
		writeError(w, err)
		return
	}

	metrics.SolveCost.Observe(plan.TotalCost)
	for _, u := range plan.Unassigned {
		metrics.UnassignedVisitsTotal.WithLabelValues(string(u.Reason)).Inc()
	}

	writeJSON(w, http.StatusOK, SolveResponse{Plan: plan, Duration: duration.String()})
}

// FixtureHandler exposes the saved-scenario store over HTTP.
type FixtureHandler struct {
	store *repository.FixtureStore
}

// NewFixtureHandler builds a FixtureHandler over an already-constructed store.
func NewFixtureHandler(store *repository.FixtureStore) *FixtureHandler {
	return &FixtureHandler{store: store}
}

// Save handles PUT /api/v1/scenarios/{org}/{name}.
func (h *FixtureHandler) Save(w http.ResponseWriter, r *http.Request, orgID uuid.UUID, name string) {
	var body struct {
		Date     string          `json:"date"`
		Visits   []model.Visit   `json:"visits"`
		Visitors []model.Visitor `json:"visitors"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "malformed request body"))
		return
	}

	sc := &repository.Scenario{
		OrgID:    orgID,
		Name:     name,
		Date:     body.Date,
		Visits:   body.Visits,
		Visitors: body.Visitors,
	}
	if err := h.store.Save(r.Context(), sc); err != nil {
		writeError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to save scenario"))
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// Get handles GET /api/v1/scenarios/{org}/{name}.
func (h *FixtureHandler) Get(w http.ResponseWriter, r *http.Request, orgID uuid.UUID, name string) {
	sc, err := h.store.Get(r.Context(), orgID, name)
	if err != nil {
		if err == repository.ErrScenarioNotFound {
			writeError(w, apperrors.NotFound("scenario", name))
			return
		}
		writeError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load scenario"))
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.GetHTTPStatus(err)
	writeJSON(w, status, map[string]interface{}{
		"error":   apperrors.GetCode(err),
		"message": err.Error(),
	})
}

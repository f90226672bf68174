package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/paiban/paiban/pkg/errors"
	"github.com/paiban/paiban/pkg/scheduler/construct"
	"github.com/paiban/paiban/pkg/scheduler/evaluator"
	"github.com/paiban/paiban/pkg/scheduler/model"
	"github.com/paiban/paiban/pkg/stats"
	"github.com/paiban/paiban/pkg/swap"
	"github.com/paiban/paiban/pkg/validator"
)

// StatsRequest wraps a Plan together with the inputs it was solved from,
// which coverage/fairness/validation all need but the Plan alone does not
// carry.
type StatsRequest struct {
	Plan     *model.Plan     `json:"plan"`
	Visits   []model.Visit   `json:"visits"`
	Visitors []model.Visitor `json:"visitors"`
}

// StatsResponse reports coverage and fairness for a solved plan.
type StatsResponse struct {
	Coverage stats.CoverageMetrics `json:"coverage"`
	Fairness stats.FairnessMetrics `json:"fairness"`
}

// StatsHandler computes descriptive statistics over an already-solved plan.
// It never calls scheduler.Solve itself -- that is /api/v1/solve's job.
type StatsHandler struct {
	travel evaluator.TravelFunc
}

// NewStatsHandler builds a StatsHandler using travel for any cost math its
// endpoints need (swap recommendations).
func NewStatsHandler(travel evaluator.TravelFunc) *StatsHandler {
	return &StatsHandler{travel: travel}
}

// Stats handles POST /api/v1/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.Plan == nil {
		writeError(w, apperrors.InvalidInput("plan", "required"))
		return
	}

	coverage := stats.Coverage(req.Plan, len(req.Visits))

	workloads := make([]stats.VisitorWorkload, 0, len(req.Plan.Routes))
	for _, route := range req.Plan.Routes {
		busy := 0
		for _, stop := range route.Stops {
			busy += stop.End - stop.Start
		}
		workloads = append(workloads, stats.VisitorWorkload{
			VisitorID:  route.VisitorID,
			VisitCount: len(route.Stops),
			TravelTime: route.TravelTime,
			BusyTime:   busy,
		})
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Coverage: coverage,
		Fairness: stats.Fairness(workloads),
	})
}

// ValidateRequest wraps a Plan with the full solve() input the validator
// needs to independently recheck invariants.
type ValidateRequest struct {
	Plan         *model.Plan            `json:"plan"`
	Visits       []model.Visit          `json:"visits"`
	Visitors     []model.Visitor        `json:"visitors"`
	Date         string                 `json:"date"`
	Availability map[string]model.Window `json:"availability"`
}

// Validate handles POST /api/v1/validate.
func (h *StatsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.Plan == nil {
		writeError(w, apperrors.InvalidInput("plan", "required"))
		return
	}

	violations := validator.Sorted(validator.New(validator.TravelFunc(h.travel)).Validate(req.Plan, req.Visits, req.Visitors, req.Date, req.Availability))
	writeJSON(w, http.StatusOK, map[string]interface{}{"violations": violations})
}

// SwapRequest asks for alternative placements of one visit within a fixed
// set of routes.
type SwapRequest struct {
	Visits       []model.Visit           `json:"visits"`
	Visitors     []model.Visitor         `json:"visitors"`
	Availability map[string]model.Window `json:"availability"`
	VisitID      string                  `json:"visit_id"`
}

// Swap handles POST /api/v1/swap.
func (h *StatsHandler) Swap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.VisitID == "" {
		writeError(w, apperrors.InvalidInput("visit_id", "required"))
		return
	}

	visitsByVisitor := make(map[string][]model.Visit)
	for _, v := range req.Visits {
		if v.CurrentVisitorID != "" {
			visitsByVisitor[v.CurrentVisitorID] = append(visitsByVisitor[v.CurrentVisitorID], v)
		}
	}

	routes := make([]*construct.RouteState, 0, len(req.Visitors))
	for _, visitor := range req.Visitors {
		window, available := req.Availability[visitor.ID]
		routes = append(routes, &construct.RouteState{
			Visitor:      visitor,
			Visits:       visitsByVisitor[visitor.ID],
			Availability: window,
			Available:    available,
		})
	}

	recommender := swap.New(h.travel, evaluator.CostOptions{})
	candidates := recommender.Recommend(routes, req.VisitID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"candidates": candidates})
}

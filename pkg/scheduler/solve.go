// Package scheduler ties the distance matrix, availability, construction,
// and local search packages together into a single entry point: Solve.
package scheduler

import (
	"context"
	"time"

	"github.com/paiban/paiban/pkg/errors"
	"github.com/paiban/paiban/pkg/logger"
	"github.com/paiban/paiban/pkg/scheduler/availability"
	"github.com/paiban/paiban/pkg/scheduler/construct"
	"github.com/paiban/paiban/pkg/scheduler/evaluator"
	"github.com/paiban/paiban/pkg/scheduler/localsearch"
	"github.com/paiban/paiban/pkg/scheduler/matrix"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

// SolveOptions carries the tunable weights and iteration bound a solve run
// needs beyond the visits, visitors, and providers themselves.
type SolveOptions struct {
	TargetTimeWeight      float64
	ReassignmentPenalty   float64
	LocalSearchIterations int
}

// DefaultSolveOptions returns the weights used when a caller has no
// particular preference.
func DefaultSolveOptions() SolveOptions {
	return SolveOptions{
		TargetTimeWeight:      1,
		ReassignmentPenalty:   300,
		LocalSearchIterations: 100,
	}
}

// Solve runs one full planning pass: it filters visits pinned to a different
// date, fetches each visitor's availability, builds a distance matrix over
// every distinct location involved, greedily constructs routes, improves
// them with local search, and returns the resulting Plan.
//
// Solve returns an error only for runtime faults -- a failing availability
// or distance matrix provider, or structurally malformed input. A visit the
// solver simply couldn't place is never an error; it shows up in
// Plan.Unassigned with a reason instead.
func Solve(
	ctx context.Context,
	visits []model.Visit,
	visitors []model.Visitor,
	date string,
	availabilityProvider availability.Provider,
	matrixProvider matrix.Provider,
	opts SolveOptions,
) (*model.Plan, error) {
	start := time.Now()
	solverLog := logger.NewSolverLogger()
	solverLog.StartSolve(date, len(visits), len(visitors))

	for _, v := range visits {
		if err := validateVisit(v); err != nil {
			return nil, err
		}
	}
	for _, v := range visitors {
		if err := validateVisitor(v); err != nil {
			return nil, err
		}
	}

	visitorByID := make(map[string]model.Visitor, len(visitors))
	for _, visitor := range visitors {
		visitorByID[visitor.ID] = visitor
	}

	// Split the date-eligible visits into the batch each pinned visitor must
	// be seeded with (in pin-input order) and the remainder that competes
	// for a slot through the constructor. Per spec.md §4.4, pinned visits
	// are "already seeded into their visitors' routes" before construction
	// ever runs, so a Visitor/VisitorAndDate pin can never lose its slot to
	// an unpinned visit that merely appears earlier in the caller's input.
	var wrongDate []model.Unassigned
	var missingPinnedVisitor []model.Unassigned
	var noCapableVisitor []model.Unassigned
	pinnedByVisitor := make(map[string][]model.Visit)
	eligible := make([]model.Visit, 0, len(visits))
	for _, v := range visits {
		if v.Pin.HasDate() && v.Pin.Date != date {
			wrongDate = append(wrongDate, model.Unassigned{VisitID: v.ID, Reason: model.ReasonWrongDate})
			solverLog.VisitUnassigned(v.ID, string(model.ReasonWrongDate))
			continue
		}
		if v.Pin.HasVisitor() {
			pinnedVisitor, ok := visitorByID[v.Pin.VisitorID]
			if !ok {
				missingPinnedVisitor = append(missingPinnedVisitor, model.Unassigned{VisitID: v.ID, Reason: model.ReasonMissingPinnedVisitor})
				solverLog.VisitUnassigned(v.ID, string(model.ReasonMissingPinnedVisitor))
				continue
			}
			if !pinnedVisitor.HasCapabilities(v.RequiredCapabilities) {
				noCapableVisitor = append(noCapableVisitor, model.Unassigned{VisitID: v.ID, Reason: model.ReasonNoCapableVisitor})
				solverLog.VisitUnassigned(v.ID, string(model.ReasonNoCapableVisitor))
				continue
			}
			pinnedByVisitor[v.Pin.VisitorID] = append(pinnedByVisitor[v.Pin.VisitorID], v)
			continue
		}
		eligible = append(eligible, v)
	}

	routes := make([]*construct.RouteState, len(visitors))
	for i, visitor := range visitors {
		windows, err := availabilityProvider.Windows(ctx, visitor.ID, date)
		if err != nil {
			return nil, errors.AvailabilityUnavailable(err)
		}
		bound, ok := availability.OuterBound(windows)
		routes[i] = &construct.RouteState{
			Visitor:      visitor,
			Visits:       pinnedByVisitor[visitor.ID],
			Availability: bound,
			Available:    ok,
		}
	}

	points := make([]model.Location, 0, len(visits)+len(visitors))
	for _, visitor := range visitors {
		points = append(points, visitor.StartLocation)
	}
	for _, v := range eligible {
		points = append(points, v.Location)
	}
	for _, pinned := range pinnedByVisitor {
		for _, v := range pinned {
			points = append(points, v.Location)
		}
	}

	unique, _ := matrix.DedupeLocations(points)
	built, err := matrixProvider.Build(ctx, unique)
	if err != nil {
		return nil, errors.MatrixUnavailable(err)
	}

	index := make(map[string]int, len(unique))
	for i, loc := range unique {
		index[matrix.LocationKey(loc)] = i
	}
	travel := func(from, to model.Location) float64 {
		i := index[matrix.LocationKey(from)]
		j := index[matrix.LocationKey(to)]
		return built.Travel(i, j)
	}

	costOpts := evaluator.CostOptions{
		TargetTimeWeight:    opts.TargetTimeWeight,
		ReassignmentPenalty: opts.ReassignmentPenalty,
	}

	// Schedule each visitor's pinned batch as a fixed, already-ordered
	// sequence. A batch that doesn't fit as a whole is rejected as a whole
	// -- NoFeasibleWindow for every visit in it -- rather than accepting a
	// prefix and dropping the rest, matching the original planner's
	// all-or-nothing seeding.
	var pinnedInfeasible []model.Unassigned
	pinnedAssigned := 0
	for _, r := range routes {
		if len(r.Visits) == 0 {
			continue
		}
		result := evaluator.Evaluate(r.Visits, r.Visitor.StartLocation, r.Availability, r.Visitor.ID, travel, costOpts)
		if result.Feasible {
			pinnedAssigned += len(r.Visits)
			continue
		}
		for _, v := range r.Visits {
			pinnedInfeasible = append(pinnedInfeasible, model.Unassigned{VisitID: v.ID, Reason: model.ReasonNoFeasibleWindow})
			solverLog.VisitUnassigned(v.ID, string(model.ReasonNoFeasibleWindow))
		}
		r.Visits = nil
	}

	outcomes := construct.Run(routes, eligible, travel, costOpts)

	assigned := pinnedAssigned
	unassigned := make([]model.Unassigned, 0, len(wrongDate)+len(missingPinnedVisitor)+len(noCapableVisitor)+len(pinnedInfeasible)+len(outcomes))
	unassigned = append(unassigned, wrongDate...)
	unassigned = append(unassigned, missingPinnedVisitor...)
	unassigned = append(unassigned, noCapableVisitor...)
	unassigned = append(unassigned, pinnedInfeasible...)
	for _, o := range outcomes {
		if o.Placed {
			assigned++
			continue
		}
		unassigned = append(unassigned, model.Unassigned{VisitID: o.VisitID, Reason: o.Reason})
		solverLog.VisitUnassigned(o.VisitID, string(o.Reason))
	}

	constructionCost := 0.0
	for _, r := range routes {
		result := evaluator.Evaluate(r.Visits, r.Visitor.StartLocation, r.Availability, r.Visitor.ID, travel, costOpts)
		if result.Feasible {
			constructionCost += result.Cost
		}
	}
	solverLog.ConstructionComplete(assigned, len(unassigned), constructionCost)

	localsearch.Run(routes, travel, costOpts, opts.LocalSearchIterations)

	plan := &model.Plan{
		Routes:     make(map[string]*model.Route, len(routes)),
		Unassigned: unassigned,
	}
	for _, r := range routes {
		result := evaluator.Evaluate(r.Visits, r.Visitor.StartLocation, r.Availability, r.Visitor.ID, travel, costOpts)
		route := &model.Route{VisitorID: r.Visitor.ID}
		if result.Feasible {
			route.Stops = result.Stops
			route.TravelTime = int(result.TravelTime)
			plan.TotalCost += result.Cost
		}
		plan.Routes[r.Visitor.ID] = route
	}

	solverLog.SolveComplete(time.Since(start), plan.TotalCost, len(plan.Unassigned))

	return plan, nil
}

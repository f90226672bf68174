// Package construct implements the greedy cheapest-insertion constructor:
// for each unassigned visit, in input order, find the (route, position) with
// minimum feasible cost across all routes evaluated in parallel, and commit
// the best one. Single-pass, no backtracking, no randomization.
package construct

import (
	"sync"

	"github.com/paiban/paiban/pkg/scheduler/evaluator"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

// RouteState is an in-progress route during construction: the visitor it
// belongs to, its ordered visits so far, and the visitor's availability span
// for the planning date (already collapsed to an outer bound per the
// availability provider's v1 contract). Available is false when the
// provider reported the visitor unavailable that day.
type RouteState struct {
	Visitor      model.Visitor
	Visits       []model.Visit
	Availability model.Window
	Available    bool
}

// TravelFunc returns the travel time between two locations.
type TravelFunc func(from, to model.Location) float64

// candidate is one feasible (route, position) insertion point, kept ready to
// be reduced against the other routes' candidates with deterministic
// tie-breaking.
type candidate struct {
	ok         bool
	cost       float64
	routeIndex int
	position   int
}

// betterThan implements the (cost, route_index, position) lexicographic tie
// break: strictly lower cost wins; on a tie, the earlier route index wins;
// on a further tie, the earlier position wins. Since routes and positions
// within a route are always considered in ascending order by the caller, a
// strict less-than comparison here is sufficient to realize the full
// lexicographic order.
func (c candidate) betterThan(other candidate) bool {
	if !other.ok {
		return true
	}
	if !c.ok {
		return false
	}
	return c.cost < other.cost
}

// evaluateRoute finds the cheapest feasible insertion position for visit
// within a single route, scanning positions left to right so the first
// strictly-cheapest position wins ties (earlier candidate wins, per the
// schedule evaluator's determinism rule).
func evaluateRoute(routeIndex int, route *RouteState, visit model.Visit, travel evaluator.TravelFunc, opts evaluator.CostOptions) candidate {
	best := candidate{routeIndex: routeIndex}

	if !route.Available {
		return best
	}
	if !route.Visitor.HasCapabilities(visit.RequiredCapabilities) {
		return best
	}
	if visit.Pin.HasVisitor() && visit.Pin.VisitorID != route.Visitor.ID {
		return best
	}

	for p := 0; p <= len(route.Visits); p++ {
		trial := insertAt(route.Visits, visit, p)
		result := evaluator.Evaluate(trial, route.Visitor.StartLocation, route.Availability, route.Visitor.ID, travel, opts)
		if !result.Feasible {
			continue
		}
		if !best.ok || result.Cost < best.cost {
			best = candidate{ok: true, cost: result.Cost, routeIndex: routeIndex, position: p}
		}
	}

	return best
}

func insertAt(visits []model.Visit, visit model.Visit, position int) []model.Visit {
	out := make([]model.Visit, 0, len(visits)+1)
	out = append(out, visits[:position]...)
	out = append(out, visit)
	out = append(out, visits[position:]...)
	return out
}

// Outcome records whether a visit was placed and, if not, why.
type Outcome struct {
	VisitID string
	Placed  bool
	Reason  model.UnassignedReason
}

// Run executes the constructor's per-visit loop over every unassigned visit,
// in the given order, fanning the insertion search for each visit out across
// all routes in parallel and committing the globally cheapest feasible
// placement. Routes are mutated in place.
func Run(routes []*RouteState, visits []model.Visit, travel evaluator.TravelFunc, opts evaluator.CostOptions) []Outcome {
	outcomes := make([]Outcome, 0, len(visits))

	for _, visit := range visits {
		results := make([]candidate, len(routes))

		var wg sync.WaitGroup
		for i, r := range routes {
			wg.Add(1)
			go func(i int, r *RouteState) {
				defer wg.Done()
				results[i] = evaluateRoute(i, r, visit, travel, opts)
			}(i, r)
		}
		wg.Wait()

		best := candidate{}
		for _, c := range results {
			if c.betterThan(best) {
				best = c
			}
		}

		if best.ok {
			r := routes[best.routeIndex]
			r.Visits = insertAt(r.Visits, visit, best.position)
			outcomes = append(outcomes, Outcome{VisitID: visit.ID, Placed: true})
			continue
		}

		outcomes = append(outcomes, Outcome{
			VisitID: visit.ID,
			Placed:  false,
			Reason:  strongestUnassignedReason(routes, visit),
		})
	}

	return outcomes
}

// strongestUnassignedReason determines why no route accepted visit, per the
// reason-ranking rule: MissingPinnedVisitor > NoCapableVisitor >
// NoFeasibleWindow (WrongDate is applied earlier, during preprocessing, and
// never reaches the constructor).
func strongestUnassignedReason(routes []*RouteState, visit model.Visit) model.UnassignedReason {
	if visit.Pin.HasVisitor() {
		found := false
		for _, r := range routes {
			if r.Visitor.ID == visit.Pin.VisitorID {
				found = true
				break
			}
		}
		if !found {
			return model.ReasonMissingPinnedVisitor
		}
	}

	foundCapableAvailable := false
	for _, r := range routes {
		if !r.Available {
			continue
		}
		if visit.Pin.HasVisitor() && r.Visitor.ID != visit.Pin.VisitorID {
			continue
		}
		if r.Visitor.HasCapabilities(visit.RequiredCapabilities) {
			foundCapableAvailable = true
			break
		}
	}
	if !foundCapableAvailable {
		return model.ReasonNoCapableVisitor
	}

	return model.ReasonNoFeasibleWindow
}

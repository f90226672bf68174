// Package swap recommends alternative visitor assignments for a single
// already-routed visit, the kind of "what if I moved this one visit"
// question a human dispatcher asks after a solve run completes. It reuses
// the schedule evaluator's cost math but, unlike local search, only ever
// considers one named visit at a time and never mutates the routes it is
// given -- it is an advisory tool, not a second optimization pass.
package swap

import (
	"sort"

	"github.com/paiban/paiban/pkg/scheduler/construct"
	"github.com/paiban/paiban/pkg/scheduler/evaluator"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

// Candidate is one feasible alternative placement for the visit under
// consideration.
type Candidate struct {
	VisitID       string  `json:"visit_id"`
	FromVisitorID string  `json:"from_visitor_id"`
	ToVisitorID   string  `json:"to_visitor_id"`
	Position      int     `json:"position"`
	CostDelta     float64 `json:"cost_delta"` // combined source+destination cost change; negative is an improvement
}

// Recommender evaluates single-visit reassignments against a fixed set of
// routes.
type Recommender struct {
	travel evaluator.TravelFunc
	opts   evaluator.CostOptions
}

// New builds a Recommender using the same travel function and cost weights
// the solve run it is advising on used.
func New(travel evaluator.TravelFunc, opts evaluator.CostOptions) *Recommender {
	return &Recommender{travel: travel, opts: opts}
}

// Recommend returns every feasible alternative placement for visitID,
// sorted by CostDelta ascending (the best swap first). A visit with a
// Visitor or VisitorAndDate pin gets no candidates at all, not even other
// positions on its own route.
func (r *Recommender) Recommend(routes []*construct.RouteState, visitID string) []Candidate {
	srcIdx, visitIdx, visit := locate(routes, visitID)
	if srcIdx < 0 {
		return nil
	}
	src := routes[srcIdx]

	if visit.Pin.HasVisitor() {
		return nil
	}

	srcWithout := without(src.Visits, visitIdx)
	srcBaseline := cost(src.Visits, src, r.travel, r.opts)
	srcAfter := evaluator.Evaluate(srcWithout, src.Visitor.StartLocation, src.Availability, src.Visitor.ID, r.travel, r.opts)
	if !srcAfter.Feasible {
		return nil
	}

	var candidates []Candidate
	for dstIdx, dst := range routes {
		if !dst.Visitor.HasCapabilities(visit.RequiredCapabilities) {
			continue
		}

		base := dst.Visits
		if dstIdx == srcIdx {
			base = srcWithout
		}
		dstBaseline := cost(dst.Visits, dst, r.travel, r.opts)

		for p := 0; p <= len(base); p++ {
			if dstIdx == srcIdx && p == visitIdx {
				continue // identical to the current placement, not a swap
			}
			trial := insertAt(base, visit, p)
			result := evaluator.Evaluate(trial, dst.Visitor.StartLocation, dst.Availability, dst.Visitor.ID, r.travel, r.opts)
			if !result.Feasible {
				continue
			}

			var before, after float64
			if dstIdx == srcIdx {
				before, after = srcBaseline, result.Cost
			} else {
				before, after = srcBaseline+dstBaseline, srcAfter.Cost+result.Cost
			}

			candidates = append(candidates, Candidate{
				VisitID:       visitID,
				FromVisitorID: src.Visitor.ID,
				ToVisitorID:   dst.Visitor.ID,
				Position:      p,
				CostDelta:     after - before,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CostDelta < candidates[j].CostDelta })
	return candidates
}

func locate(routes []*construct.RouteState, visitID string) (routeIdx, visitIdx int, visit model.Visit) {
	for ri, r := range routes {
		for vi, v := range r.Visits {
			if v.ID == visitID {
				return ri, vi, v
			}
		}
	}
	return -1, -1, model.Visit{}
}

func cost(visits []model.Visit, r *construct.RouteState, travel evaluator.TravelFunc, opts evaluator.CostOptions) float64 {
	result := evaluator.Evaluate(visits, r.Visitor.StartLocation, r.Availability, r.Visitor.ID, travel, opts)
	if !result.Feasible {
		return 0
	}
	return result.Cost
}

func without(visits []model.Visit, index int) []model.Visit {
	out := make([]model.Visit, 0, len(visits)-1)
	out = append(out, visits[:index]...)
	out = append(out, visits[index+1:]...)
	return out
}

func insertAt(visits []model.Visit, visit model.Visit, position int) []model.Visit {
	out := make([]model.Visit, 0, len(visits)+1)
	out = append(out, visits[:position]...)
	out = append(out, visit)
	out = append(out, visits[position:]...)
	return out
}

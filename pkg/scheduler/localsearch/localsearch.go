// Package localsearch implements the deterministic first-improvement local
// search improver: 2-opt intra-route segment reversal followed by a
// relocate pass, run until a pass produces no improvement or max_iterations
// is reached. This is intentionally not a metaheuristic -- no simulated
// annealing, no tabu list, no randomized neighborhood, no acceptance of
// non-improving moves. That is a deliberate scope boundary, not an
// oversight: see the constructor's sibling packages for where such
// wrappers, if ever wanted, would be layered on top.
package localsearch

import (
	"math"

	"github.com/paiban/paiban/pkg/scheduler/construct"
	"github.com/paiban/paiban/pkg/scheduler/evaluator"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

const improvementEpsilon = 1e-9

// routeCost evaluates a route's current ordering and returns its cost.
// Routes entering local search are always feasible (the constructor never
// commits an infeasible placement); a route that somehow fails feasibility
// here is treated as having infinite cost so no move judges it an
// improvement.
func routeCost(r *construct.RouteState, travel evaluator.TravelFunc, opts evaluator.CostOptions) float64 {
	result := evaluator.Evaluate(r.Visits, r.Visitor.StartLocation, r.Availability, r.Visitor.ID, travel, opts)
	if !result.Feasible {
		return math.Inf(1)
	}
	return result.Cost
}

// isImmobile reports whether a visit may never be relocated off its current
// route: Visitor and VisitorAndDate pins glue a visit to its visitor, so
// only intra-route reordering (2-opt) is permitted for it, never relocation
// to a different route.
func isImmobile(v model.Visit) bool {
	return v.Pin.HasVisitor()
}

// twoOptPass scans a single route for the first pair of indices (i, j),
// 1 <= i < j <= len-1, whose segment reversal strictly lowers that route's
// cost, applies it, and returns true. Index 0 (the first visit, whose
// predecessor is the visitor's start location) is never reversed away from
// its position -- only the tail starting at index 1 participates, matching
// the original planner's i+1..=j reversal window. Pins never block a
// reversal: a pin constrains which visitor performs a visit, not its
// position within that visitor's route, so intra-route reversals are always
// legal regardless of pin kind.
func twoOptPass(r *construct.RouteState, travel evaluator.TravelFunc, opts evaluator.CostOptions) bool {
	n := len(r.Visits)
	if n < 3 {
		return false
	}

	baseline := routeCost(r, travel, opts)

	for i := 1; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			trial := reverseSegment(r.Visits, i, j)
			result := evaluator.Evaluate(trial, r.Visitor.StartLocation, r.Availability, r.Visitor.ID, travel, opts)
			if !result.Feasible {
				continue
			}
			if result.Cost < baseline-improvementEpsilon {
				r.Visits = trial
				return true
			}
		}
	}

	return false
}

func reverseSegment(visits []model.Visit, i, j int) []model.Visit {
	out := make([]model.Visit, len(visits))
	copy(out, visits)
	for l, r := i, j; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// relocatePass scans every (source route, visit, destination route,
// position) combination, in ascending route/position order, for the first
// move whose combined before/after cost delta (source route cost change
// plus destination route cost change) is strictly negative, applies it, and
// returns true. Visits pinned to a specific visitor are skipped as sources
// since they may never leave their visitor's route.
func relocatePass(routes []*construct.RouteState, travel evaluator.TravelFunc, opts evaluator.CostOptions) bool {
	for srcIdx, src := range routes {
		for visitIdx, visit := range src.Visits {
			if isImmobile(visit) {
				continue
			}

			srcWithout := removeAt(src.Visits, visitIdx)
			srcBaseline := routeCost(src, travel, opts)
			srcAfterResult := evaluator.Evaluate(srcWithout, src.Visitor.StartLocation, src.Availability, src.Visitor.ID, travel, opts)
			if !srcAfterResult.Feasible {
				continue
			}

			for dstIdx, dst := range routes {
				if !dst.Visitor.HasCapabilities(visit.RequiredCapabilities) {
					continue
				}

				dstBaseline := routeCost(dst, travel, opts)

				positions := dst.Visits
				if dstIdx == srcIdx {
					positions = srcWithout
				}

				for p := 0; p <= len(positions); p++ {
					trial := insertAt(positions, visit, p)
					dstAfterResult := evaluator.Evaluate(trial, dst.Visitor.StartLocation, dst.Availability, dst.Visitor.ID, travel, opts)
					if !dstAfterResult.Feasible {
						continue
					}

					var before, after float64
					if dstIdx == srcIdx {
						before = srcBaseline
						after = dstAfterResult.Cost
					} else {
						before = srcBaseline + dstBaseline
						after = srcAfterResult.Cost + dstAfterResult.Cost
					}

					if after < before-improvementEpsilon {
						if dstIdx == srcIdx {
							src.Visits = trial
						} else {
							src.Visits = srcWithout
							dst.Visits = trial
						}
						return true
					}
				}
			}
		}
	}

	return false
}

func removeAt(visits []model.Visit, index int) []model.Visit {
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

// Run executes local search passes until a pass makes no improving move or
// maxIterations passes have run, whichever comes first. Each pass attempts
// one 2-opt move per route (in route order) followed by a single relocate
// pass; the pass counts as having improved if any of those moves applied.
func Run(routes []*construct.RouteState, travel evaluator.TravelFunc, opts evaluator.CostOptions, maxIterations int) int {
	passes := 0

	for ; passes < maxIterations; passes++ {
		improved := false

		for _, r := range routes {
			if twoOptPass(r, travel, opts) {
				improved = true
			}
		}

		if relocatePass(routes, travel, opts) {
			improved = true
		}

		if !improved {
			break
		}
	}

	return passes
}

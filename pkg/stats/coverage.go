// Package stats computes read-only summary metrics over a solved Plan:
// how much of the input got routed, and how evenly the routed work is
// spread across visitors. Nothing here feeds back into the solver -- these
// are reporting aids for a caller (dashboard, API response) to judge plan
// quality at a glance.
package stats

import "github.com/paiban/paiban/pkg/scheduler/model"

// CoverageMetrics summarizes how much of the input visit set a Plan placed.
type CoverageMetrics struct {
	TotalVisits     int                                `json:"total_visits"`
	AssignedVisits  int                                `json:"assigned_visits"`
	UnassignedCount int                                `json:"unassigned_count"`
	OverallCoverage float64                             `json:"overall_coverage"` // 0..1
	ByReason        map[model.UnassignedReason]int      `json:"by_reason"`
}

// Coverage computes CoverageMetrics from a solved Plan. totalVisits is the
// size of the original input visit list -- the plan's Routes and
// Unassigned together must account for exactly that many, per the
// universal invariant that every visit appears exactly once across the two.
func Coverage(plan *model.Plan, totalVisits int) CoverageMetrics {
	assigned := 0
	for _, route := range plan.Routes {
		assigned += len(route.Stops)
	}

	byReason := make(map[model.UnassignedReason]int, len(plan.Unassigned))
	for _, u := range plan.Unassigned {
		byReason[u.Reason]++
	}

	m := CoverageMetrics{
		TotalVisits:     totalVisits,
		AssignedVisits:  assigned,
		UnassignedCount: len(plan.Unassigned),
		ByReason:        byReason,
	}
	if totalVisits > 0 {
		m.OverallCoverage = float64(assigned) / float64(totalVisits)
	}
	return m
}

// Package validator independently re-checks a solved Plan against the
// routing solver's invariants (spec.md section 8's "universal invariants").
// It never trusts the solver's own bookkeeping -- it walks the raw visits,
// visitors, and availability windows and recomputes arrival times itself,
// the same way the teacher's conflict detector recomputed shift overlaps
// rather than asking the scheduler if it thought its own output was valid.
// This is a QA/test tool, not part of the solve() critical path.
package validator

import (
	"fmt"
	"sort"

	"github.com/paiban/paiban/pkg/scheduler/model"
)

// ViolationKind is the closed set of invariant breaches this validator can
// report.
type ViolationKind string

const (
	ViolationDuplicateVisit     ViolationKind = "duplicate_visit"
	ViolationMissingVisit       ViolationKind = "missing_visit"
	ViolationTimeOrder          ViolationKind = "time_order"
	ViolationAvailabilityWindow ViolationKind = "availability_window"
	ViolationCommittedWindow    ViolationKind = "committed_window"
	ViolationCapabilityMismatch ViolationKind = "capability_mismatch"
	ViolationPinViolation       ViolationKind = "pin_violation"
	ViolationReasonMismatch     ViolationKind = "reason_mismatch"
)

// Violation is one independently-detected breach of a Plan invariant.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	VisitID string        `json:"visit_id,omitempty"`
	Detail  string        `json:"detail"`
}

// TravelFunc returns the travel time in seconds between two locations.
type TravelFunc func(from, to model.Location) float64

// PlanValidator re-checks a solved Plan against its inputs.
type PlanValidator struct {
	travel TravelFunc
}

// New builds a PlanValidator that recomputes travel times with travel.
func New(travel TravelFunc) *PlanValidator {
	return &PlanValidator{travel: travel}
}

// Validate walks every invariant in spec.md section 8 against plan, given
// the exact visits/visitors/date/availability the plan was solved from. It
// never mutates plan and returns every violation found, not just the first.
func (pv *PlanValidator) Validate(
	plan *model.Plan,
	visits []model.Visit,
	visitors []model.Visitor,
	date string,
	availability map[string]model.Window, // visitor id -> collapsed outer-bound window, absent = unavailable
) []Violation {
	var violations []Violation

	visitByID := make(map[string]model.Visit, len(visits))
	for _, v := range visits {
		visitByID[v.ID] = v
	}
	visitorByID := make(map[string]model.Visitor, len(visitors))
	for _, v := range visitors {
		visitorByID[v.ID] = v
	}

	violations = append(violations, pv.checkExactlyOnce(plan, visits)...)
	violations = append(violations, pv.checkReasons(plan, visitByID, date)...)

	for visitorID, route := range plan.Routes {
		visitor, ok := visitorByID[visitorID]
		if !ok {
			violations = append(violations, Violation{
				Kind:   ViolationMissingVisit,
				Detail: fmt.Sprintf("route references unknown visitor %q", visitorID),
			})
			continue
		}
		window, available := availability[visitorID]
		violations = append(violations, pv.checkRoute(route, visitor, window, available, visitByID)...)
	}

	return violations
}

// checkExactlyOnce is invariant 1: every input visit appears exactly once
// across routes and the unassigned list.
func (pv *PlanValidator) checkExactlyOnce(plan *model.Plan, visits []model.Visit) []Violation {
	var violations []Violation

	seen := make(map[string]int, len(visits))
	for _, route := range plan.Routes {
		for _, stop := range route.Stops {
			seen[stop.VisitID]++
		}
	}
	for _, u := range plan.Unassigned {
		seen[u.VisitID]++
	}

	for _, v := range visits {
		switch seen[v.ID] {
		case 0:
			violations = append(violations, Violation{Kind: ViolationMissingVisit, VisitID: v.ID, Detail: "visit absent from both routes and unassigned"})
		case 1:
			// fine
		default:
			violations = append(violations, Violation{Kind: ViolationDuplicateVisit, VisitID: v.ID, Detail: fmt.Sprintf("visit appears %d times", seen[v.ID])})
		}
	}

	return violations
}

// checkReasons is invariants 6 and 7: an unassigned visit pinned to another
// date carries WrongDate, and an assigned visit pinned to a visitor sits on
// that visitor's route.
func (pv *PlanValidator) checkReasons(plan *model.Plan, visitByID map[string]model.Visit, date string) []Violation {
	var violations []Violation

	assignedVisitor := make(map[string]string, len(plan.Routes))
	for visitorID, route := range plan.Routes {
		for _, stop := range route.Stops {
			assignedVisitor[stop.VisitID] = visitorID
		}
	}

	for _, u := range plan.Unassigned {
		v, ok := visitByID[u.VisitID]
		if !ok {
			continue
		}
		if v.Pin.HasDate() && v.Pin.Date != date && u.Reason != model.ReasonWrongDate {
			violations = append(violations, Violation{
				Kind: ViolationReasonMismatch, VisitID: v.ID,
				Detail: fmt.Sprintf("wrong-date pin should yield WrongDate, got %s", u.Reason),
			})
		}
	}

	for _, v := range visitByID {
		if !v.Pin.HasVisitor() {
			continue
		}
		assigned, ok := assignedVisitor[v.ID]
		if ok && assigned != v.Pin.VisitorID {
			violations = append(violations, Violation{
				Kind: ViolationPinViolation, VisitID: v.ID,
				Detail: fmt.Sprintf("pinned to %q but assigned to %q", v.Pin.VisitorID, assigned),
			})
		}
	}

	return violations
}

// checkRoute is invariants 2-5 for one visitor's route: strictly increasing,
// travel-respecting start times; availability and committed-window
// containment; and capability coverage.
func (pv *PlanValidator) checkRoute(
	route *model.Route,
	visitor model.Visitor,
	window model.Window,
	available bool,
	visitByID map[string]model.Visit,
) []Violation {
	var violations []Violation
	if len(route.Stops) == 0 {
		return nil
	}
	if !available {
		violations = append(violations, Violation{Kind: ViolationAvailabilityWindow, Detail: fmt.Sprintf("visitor %q has stops but no availability window", visitor.ID)})
		return violations
	}

	prevEnd := -1
	prevLoc := visitor.StartLocation
	for i, stop := range route.Stops {
		v, ok := visitByID[stop.VisitID]
		if !ok {
			violations = append(violations, Violation{Kind: ViolationMissingVisit, VisitID: stop.VisitID, Detail: "stop references unknown visit"})
			continue
		}

		if !visitor.HasCapabilities(v.RequiredCapabilities) {
			violations = append(violations, Violation{Kind: ViolationCapabilityMismatch, VisitID: v.ID, Detail: fmt.Sprintf("visitor %q lacks required capabilities", visitor.ID)})
		}

		if i > 0 {
			minStart := prevEnd + int(pv.travel(prevLoc, v.Location))
			if stop.Start < minStart {
				violations = append(violations, Violation{
					Kind: ViolationTimeOrder, VisitID: v.ID,
					Detail: fmt.Sprintf("start %d precedes prior end+travel %d", stop.Start, minStart),
				})
			}
		}

		if stop.Start < window.Start || stop.End > window.End {
			violations = append(violations, Violation{
				Kind: ViolationAvailabilityWindow, VisitID: v.ID,
				Detail: fmt.Sprintf("[%d,%d] outside availability [%d,%d]", stop.Start, stop.End, window.Start, window.End),
			})
		}

		if v.CommittedWindow != nil && (stop.Start < v.CommittedWindow.Start || stop.Start > v.CommittedWindow.End) {
			violations = append(violations, Violation{
				Kind: ViolationCommittedWindow, VisitID: v.ID,
				Detail: fmt.Sprintf("start %d outside committed window [%d,%d]", stop.Start, v.CommittedWindow.Start, v.CommittedWindow.End),
			})
		}

		prevEnd = stop.End
		prevLoc = v.Location
	}

	return violations
}

// Sorted returns violations ordered by (kind, visit id) for deterministic,
// diffable test failure output.
func Sorted(violations []Violation) []Violation {
	out := append([]Violation(nil), violations...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].VisitID < out[j].VisitID
	})
	return out
}

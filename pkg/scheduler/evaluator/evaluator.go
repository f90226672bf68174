// Package evaluator implements the schedule evaluator: the feasibility
// kernel that, given a candidate ordered sequence of visits for a visitor,
// computes per-visit arrival/start/end times and a cost, or reports
// infeasibility. It is invoked once per (route, position) candidate during
// construction and once per candidate move during local search, so it must
// stay cheap -- a single forward pass, no iteration to a fixed point.
package evaluator

import (
	"github.com/paiban/paiban/pkg/scheduler/model"
)

// TravelFunc returns the travel time in seconds between two locations.
type TravelFunc func(from, to model.Location) float64

// CostOptions carries the three recognized SolveOptions fields the cost
// function needs.
type CostOptions struct {
	TargetTimeWeight    float64
	ReassignmentPenalty float64
}

// Result is the outcome of evaluating one candidate ordered visit sequence.
// Feasible is false whenever any visit's schedule falls outside its
// visitor's availability span or its own committed window; Stops, TravelTime
// and Cost are only meaningful when Feasible is true.
type Result struct {
	Feasible   bool
	Stops      []model.Stop
	TravelTime float64
	Cost       float64
}

// Evaluate runs the forward pass described by the schedule evaluator: walk
// the ordered visits from the visitor's start location, accumulating travel
// time and clamping each visit's start to the later of (arrival, committed
// window start), rejecting the whole sequence the moment one visit can't
// fit before the visitor's availability ends or its own committed window
// closes.
//
// assignedVisitorID is the visitor this candidate sequence is being
// evaluated for; it is compared against each visit's CurrentVisitorID to
// apply the reassignment penalty.
func Evaluate(
	visits []model.Visit,
	visitorStart model.Location,
	availability model.Window,
	assignedVisitorID string,
	travel TravelFunc,
	opts CostOptions,
) Result {
	stops := make([]model.Stop, 0, len(visits))

	t := availability.Start
	loc := visitorStart

	var travelTime float64
	var targetDeviation float64
	var reassignmentCost float64

	for _, v := range visits {
		arrival := float64(t) + travel(loc, v.Location)

		start := arrival
		if v.CommittedWindow != nil {
			cs := float64(v.CommittedWindow.Start)
			ce := float64(v.CommittedWindow.End)
			if arrival > cs {
				start = arrival
			} else {
				start = cs
			}
			// The whole visit, not just its start, has to fit inside the
			// committed window.
			if start+float64(v.DurationSeconds) > ce {
				return Result{Feasible: false}
			}
		}

		end := start + float64(v.DurationSeconds)
		if end > float64(availability.End) {
			return Result{Feasible: false}
		}

		stops = append(stops, model.Stop{
			VisitID: v.ID,
			Start:   int(start),
			End:     int(end),
		})

		travelTime += arrival - float64(t)
		if v.TargetTime != nil {
			dev := start - float64(*v.TargetTime)
			if dev < 0 {
				dev = -dev
			}
			targetDeviation += dev
		}
		if v.CurrentVisitorID != "" && v.CurrentVisitorID != assignedVisitorID {
			reassignmentCost += opts.ReassignmentPenalty
		}

		t = int(end)
		loc = v.Location
	}

	cost := travelTime + targetDeviation*opts.TargetTimeWeight + reassignmentCost

	return Result{
		Feasible:   true,
		Stops:      stops,
		TravelTime: travelTime,
		Cost:       cost,
	}
}

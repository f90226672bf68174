// Package model defines the data types the routing solver operates on:
// visits, visitors, pins, routes, and the plan produced by a solve run.
package model

import "github.com/google/uuid"

// PinKind selects how a visit's pin specification constrains assignment.
type PinKind int

const (
	PinNone PinKind = iota
	PinDate
	PinVisitor
	PinVisitorAndDate
)

// Pin fixes a visit to a specific visitor, a specific date, or both.
// The zero value is PinNone.
type Pin struct {
	Kind      PinKind `json:"kind"`
	VisitorID string  `json:"visitor_id,omitempty"`
	Date      string  `json:"date,omitempty"` // YYYY-MM-DD
}

// HasVisitor reports whether this pin forces assignment to a named visitor.
func (p Pin) HasVisitor() bool {
	return p.Kind == PinVisitor || p.Kind == PinVisitorAndDate
}

// HasDate reports whether this pin restricts the visit to a specific date.
func (p Pin) HasDate() bool {
	return p.Kind == PinDate || p.Kind == PinVisitorAndDate
}

// Location is a WGS-84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Window is a half-open time span expressed in seconds from midnight.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Visit is a single service occurrence to be routed on the planning date.
type Visit struct {
	ID                   string   `json:"id"`
	Location             Location `json:"location"`
	DurationSeconds      int      `json:"duration_seconds"`
	CommittedWindow      *Window  `json:"committed_window,omitempty"` // hard constraint: the visit must start and finish inside it, nil if none
	TargetTime           *int     `json:"target_time,omitempty"`      // soft preference, seconds from midnight
	RequiredCapabilities []string `json:"required_capabilities,omitempty"`
	Pin                  Pin      `json:"pin"`
	CurrentVisitorID     string   `json:"current_visitor_id,omitempty"` // "" means no existing assignment
}

// Visitor is a worker/vehicle available to perform visits on the planning date.
type Visitor struct {
	ID            string   `json:"id"`
	StartLocation Location `json:"start_location"`
	Capabilities  []string `json:"capabilities,omitempty"`
}

// HasCapabilities reports whether the visitor offers every capability required.
func (v Visitor) HasCapabilities(required []string) bool {
	if len(required) == 0 {
		return true
	}
	offered := make(map[string]struct{}, len(v.Capabilities))
	for _, c := range v.Capabilities {
		offered[c] = struct{}{}
	}
	for _, need := range required {
		if _, ok := offered[need]; !ok {
			return false
		}
	}
	return true
}

// Stop is one scheduled visit within a route, with its computed window.
type Stop struct {
	VisitID string `json:"visit_id"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Route is the ordered sequence of stops assigned to one visitor.
type Route struct {
	VisitorID  string `json:"visitor_id"`
	Stops      []Stop `json:"stops"`
	TravelTime int    `json:"travel_time"` // travel seconds from the visitor's start through the last stop; open-route convention, no return leg
}

// UnassignedReason is the closed set of reasons a visit could not be placed.
type UnassignedReason string

const (
	ReasonWrongDate            UnassignedReason = "WrongDate"
	ReasonMissingPinnedVisitor UnassignedReason = "MissingPinnedVisitor"
	ReasonNoCapableVisitor     UnassignedReason = "NoCapableVisitor"
	ReasonNoFeasibleWindow     UnassignedReason = "NoFeasibleWindow"
)

// reasonRank orders reasons by precedence; lower rank wins when more than one applies.
var reasonRank = map[UnassignedReason]int{
	ReasonWrongDate:            0,
	ReasonMissingPinnedVisitor: 1,
	ReasonNoCapableVisitor:     2,
	ReasonNoFeasibleWindow:     3,
}

// StrongerReason returns whichever of a, b has higher precedence (lower rank).
// An empty reason is weaker than any named reason.
func StrongerReason(a, b UnassignedReason) UnassignedReason {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if reasonRank[a] <= reasonRank[b] {
		return a
	}
	return b
}

// Unassigned pairs a visit with the reason it could not be placed.
type Unassigned struct {
	VisitID string           `json:"visit_id"`
	Reason  UnassignedReason `json:"reason"`
}

// Plan is the output of a solve run.
type Plan struct {
	Routes     map[string]*Route `json:"routes"` // visitor id -> route
	Unassigned []Unassigned      `json:"unassigned"`
	TotalCost  float64           `json:"total_cost"`
}

// NewID generates a fresh identifier for callers that don't supply their own.
func NewID() string {
	return uuid.New().String()
}

// Package availability provides AvailabilityProvider implementations: the
// contract the solver uses to learn a visitor's working window(s) on the
// planning date.
package availability

import (
	"context"

	"github.com/paiban/paiban/pkg/scheduler/model"
)

// Provider answers, for a (visitor, date) pair, the visitor's working
// window(s) on that date. A nil/empty result means the visitor is
// unavailable that day.
//
// Per v1 design, if a provider returns more than one window, the solver
// collapses them to the outer bound [first.Start, last.End] -- it schedules
// as if the visitor has one continuous window. True gap-aware scheduling,
// where a visit cannot be placed inside the gap between two windows, is
// deferred; implementers must keep this collapse in mind when returning
// multiple windows.
type Provider interface {
	Windows(ctx context.Context, visitorID string, date string) ([]model.Window, error)
}

// OuterBound collapses a possibly-multi-window availability result to the
// single span the schedule evaluator operates over, per the v1 design
// decision documented on Provider.
func OuterBound(windows []model.Window) (model.Window, bool) {
	if len(windows) == 0 {
		return model.Window{}, false
	}
	return model.Window{Start: windows[0].Start, End: windows[len(windows)-1].End}, true
}

// StaticProvider is a map-backed implementation sufficient for tests and the
// demo CLI: availability is supplied up front rather than computed.
type StaticProvider struct {
	windows map[string]map[string][]model.Window // visitorID -> date -> windows
}

// NewStaticProvider builds an empty StaticProvider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{windows: make(map[string]map[string][]model.Window)}
}

// Set records the availability windows for a visitor on a date, overwriting
// any previous value. Passing no windows marks the visitor unavailable.
func (p *StaticProvider) Set(visitorID, date string, windows ...model.Window) *StaticProvider {
	if p.windows[visitorID] == nil {
		p.windows[visitorID] = make(map[string][]model.Window)
	}
	p.windows[visitorID][date] = windows
	return p
}

// Windows implements Provider.
func (p *StaticProvider) Windows(_ context.Context, visitorID string, date string) ([]model.Window, error) {
	byDate, ok := p.windows[visitorID]
	if !ok {
		return nil, nil
	}
	windows, ok := byDate[date]
	if !ok {
		return nil, nil
	}
	return windows, nil
}

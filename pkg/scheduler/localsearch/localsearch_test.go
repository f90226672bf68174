package localsearch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paiban/paiban/pkg/scheduler/construct"
	"github.com/paiban/paiban/pkg/scheduler/evaluator"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

// euclideanTravel treats Lat/Lng as plain 2D coordinates (not real geography)
// so the crossing-route scenario below is easy to construct by hand.
func euclideanTravel(a, b model.Location) float64 {
	dx := a.Lat - b.Lat
	dy := a.Lng - b.Lng
	return math.Sqrt(dx*dx + dy*dy)
}

func TestTwoOptUncrossesRoute(t *testing.T) {
	// Four points on a line; visiting them out of order (0,2,1,3) crosses
	// itself and costs more than visiting them in order.
	visits := []model.Visit{
		{ID: "A", Location: model.Location{Lat: 0, Lng: 0}},
		{ID: "C", Location: model.Location{Lat: 2, Lng: 0}},
		{ID: "B", Location: model.Location{Lat: 1, Lng: 0}},
		{ID: "D", Location: model.Location{Lat: 3, Lng: 0}},
	}

	route := &construct.RouteState{
		Visitor:      model.Visitor{ID: "visitor-1"},
		Visits:       visits,
		Availability: model.Window{Start: 0, End: 1000000},
		Available:    true,
	}

	before := routeCost(route, euclideanTravel, evaluator.CostOptions{})

	passes := Run([]*construct.RouteState{route}, euclideanTravel, evaluator.CostOptions{}, 100)

	after := routeCost(route, euclideanTravel, evaluator.CostOptions{})

	require.Greater(t, passes, 0)
	require.Less(t, after, before)
}

func TestLocalSearchNeverMovesVisitorPinnedVisitOffItsRoute(t *testing.T) {
	pinned := model.Visit{
		ID:  "pinned",
		Pin: model.Pin{Kind: model.PinVisitor, VisitorID: "A"},
	}

	routeA := &construct.RouteState{
		Visitor:      model.Visitor{ID: "A"},
		Visits:       []model.Visit{pinned, {ID: "other", Location: model.Location{Lat: 5}}},
		Availability: model.Window{Start: 0, End: 1000000},
		Available:    true,
	}
	routeB := &construct.RouteState{
		Visitor:      model.Visitor{ID: "B"},
		Availability: model.Window{Start: 0, End: 1000000},
		Available:    true,
	}

	Run([]*construct.RouteState{routeA, routeB}, euclideanTravel, evaluator.CostOptions{}, 100)

	found := false
	for _, v := range routeA.Visits {
		if v.ID == "pinned" {
			found = true
		}
	}
	require.True(t, found, "pinned visit must remain on its pinned visitor's route")
	for _, v := range routeB.Visits {
		require.NotEqual(t, "pinned", v.ID)
	}
}

func TestLocalSearchTerminatesWithinMaxIterations(t *testing.T) {
	route := &construct.RouteState{
		Visitor:      model.Visitor{ID: "visitor-1"},
		Visits:       []model.Visit{{ID: "A"}},
		Availability: model.Window{Start: 0, End: 1000000},
		Available:    true,
	}

	passes := Run([]*construct.RouteState{route}, euclideanTravel, evaluator.CostOptions{}, 5)
	require.LessOrEqual(t, passes, 5)
}

func TestLocalSearchMonotonicallyNonIncreasesCost(t *testing.T) {
	visits := []model.Visit{
		{ID: "A", Location: model.Location{Lat: 0, Lng: 0}},
		{ID: "C", Location: model.Location{Lat: 2, Lng: 0}},
		{ID: "B", Location: model.Location{Lat: 1, Lng: 0}},
	}
	route := &construct.RouteState{
		Visitor:      model.Visitor{ID: "visitor-1"},
		Visits:       visits,
		Availability: model.Window{Start: 0, End: 1000000},
		Available:    true,
	}

	before := routeCost(route, euclideanTravel, evaluator.CostOptions{})
	Run([]*construct.RouteState{route}, euclideanTravel, evaluator.CostOptions{}, 100)
	after := routeCost(route, euclideanTravel, evaluator.CostOptions{})

	require.LessOrEqual(t, after, before)
}

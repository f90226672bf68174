package swap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paiban/paiban/pkg/scheduler/construct"
	"github.com/paiban/paiban/pkg/scheduler/evaluator"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

func flatTravel(a, b model.Location) float64 {
	if a == b {
		return 0
	}
	return 300
}

func TestRecommendFindsCheaperVisitor(t *testing.T) {
	visit := model.Visit{ID: "v1", Location: model.Location{Lat: 10, Lng: 10}, DurationSeconds: 600}
	window := model.Window{Start: 0, End: 86400}

	routes := []*construct.RouteState{
		{Visitor: model.Visitor{ID: "far"}, Availability: window, Available: true, Visits: []model.Visit{visit}},
		{Visitor: model.Visitor{ID: "near", StartLocation: model.Location{Lat: 10, Lng: 10}}, Availability: window, Available: true},
	}

	r := New(flatTravel, evaluator.CostOptions{})
	candidates := r.Recommend(routes, "v1")

	require.NotEmpty(t, candidates)
	require.Equal(t, "near", candidates[0].ToVisitorID)
	require.Less(t, candidates[0].CostDelta, 0.0)
}

func TestRecommendRespectsVisitorPin(t *testing.T) {
	visit := model.Visit{ID: "v1", DurationSeconds: 600, Pin: model.Pin{Kind: model.PinVisitor, VisitorID: "a"}}
	window := model.Window{Start: 0, End: 86400}

	routes := []*construct.RouteState{
		{Visitor: model.Visitor{ID: "a"}, Availability: window, Available: true, Visits: []model.Visit{visit}},
		{Visitor: model.Visitor{ID: "b"}, Availability: window, Available: true},
	}

	r := New(flatTravel, evaluator.CostOptions{})
	require.Empty(t, r.Recommend(routes, "v1"))
}

func TestRecommendSkipsIncapableVisitors(t *testing.T) {
	visit := model.Visit{ID: "v1", DurationSeconds: 600, RequiredCapabilities: []string{"electrical"}}
	window := model.Window{Start: 0, End: 86400}

	routes := []*construct.RouteState{
		{Visitor: model.Visitor{ID: "a", Capabilities: []string{"electrical"}}, Availability: window, Available: true, Visits: []model.Visit{visit}},
		{Visitor: model.Visitor{ID: "b", Capabilities: []string{"plumbing"}}, Availability: window, Available: true},
	}

	r := New(flatTravel, evaluator.CostOptions{})
	for _, c := range r.Recommend(routes, "v1") {
		require.NotEqual(t, "b", c.ToVisitorID)
	}
}

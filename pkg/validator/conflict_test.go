package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paiban/paiban/pkg/scheduler/model"
)

func straightLineTravel(a, b model.Location) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	if dLat < 0 {
		dLat = -dLat
	}
	if dLng < 0 {
		dLng = -dLng
	}
	return (dLat + dLng) * 1000
}

func TestValidatorAcceptsCleanPlan(t *testing.T) {
	visits := []model.Visit{
		{ID: "v1", Location: model.Location{Lat: 1, Lng: 1}, DurationSeconds: 600},
	}
	visitors := []model.Visitor{
		{ID: "a", StartLocation: model.Location{Lat: 0, Lng: 0}},
	}
	plan := &model.Plan{
		Routes: map[string]*model.Route{
			"a": {VisitorID: "a", Stops: []model.Stop{{VisitID: "v1", Start: 28800 + 2000, End: 28800 + 2000 + 600}}},
		},
	}
	availability := map[string]model.Window{"a": {Start: 28800, End: 61200}}

	violations := New(straightLineTravel).Validate(plan, visits, visitors, "2026-01-01", availability)
	require.Empty(t, violations)
}

func TestValidatorCatchesDuplicateAndMissing(t *testing.T) {
	visits := []model.Visit{
		{ID: "v1", DurationSeconds: 600},
		{ID: "v2", DurationSeconds: 600},
	}
	plan := &model.Plan{
		Routes: map[string]*model.Route{
			"a": {VisitorID: "a", Stops: []model.Stop{{VisitID: "v1"}, {VisitID: "v1"}}},
		},
	}

	violations := New(straightLineTravel).Validate(plan, visits, nil, "2026-01-01", nil)
	kinds := map[ViolationKind]bool{}
	for _, v := range violations {
		kinds[v.Kind] = true
	}
	require.True(t, kinds[ViolationDuplicateVisit])
	require.True(t, kinds[ViolationMissingVisit])
}

func TestValidatorCatchesCapabilityMismatch(t *testing.T) {
	visits := []model.Visit{
		{ID: "v1", RequiredCapabilities: []string{"electrical"}, DurationSeconds: 600},
	}
	visitors := []model.Visitor{
		{ID: "a", Capabilities: []string{"plumbing"}},
	}
	plan := &model.Plan{
		Routes: map[string]*model.Route{
			"a": {VisitorID: "a", Stops: []model.Stop{{VisitID: "v1", Start: 28800, End: 29400}}},
		},
	}
	availability := map[string]model.Window{"a": {Start: 28800, End: 61200}}

	violations := New(straightLineTravel).Validate(plan, visits, visitors, "2026-01-01", availability)

	found := false
	for _, v := range violations {
		if v.Kind == ViolationCapabilityMismatch {
			found = true
		}
	}
	require.True(t, found)
}

func TestValidatorCatchesWrongDateReasonMismatch(t *testing.T) {
	visits := []model.Visit{
		{ID: "v1", Pin: model.Pin{Kind: model.PinDate, Date: "2026-02-01"}},
	}
	plan := &model.Plan{
		Unassigned: []model.Unassigned{{VisitID: "v1", Reason: model.ReasonNoFeasibleWindow}},
	}

	violations := New(straightLineTravel).Validate(plan, visits, nil, "2026-02-02", nil)

	found := false
	for _, v := range violations {
		if v.Kind == ViolationReasonMismatch {
			found = true
		}
	}
	require.True(t, found)
}

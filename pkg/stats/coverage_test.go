package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paiban/paiban/pkg/scheduler/model"
)

func TestCoverageAllAssigned(t *testing.T) {
	plan := &model.Plan{
		Routes: map[string]*model.Route{
			"v1": {VisitorID: "v1", Stops: []model.Stop{{VisitID: "a"}, {VisitID: "b"}}},
		},
	}

	m := Coverage(plan, 2)

	require.Equal(t, 2, m.TotalVisits)
	require.Equal(t, 2, m.AssignedVisits)
	require.Equal(t, 0, m.UnassignedCount)
	require.Equal(t, 1.0, m.OverallCoverage)
}

func TestCoverageMixedReasons(t *testing.T) {
	plan := &model.Plan{
		Routes: map[string]*model.Route{
			"v1": {VisitorID: "v1", Stops: []model.Stop{{VisitID: "a"}}},
		},
		Unassigned: []model.Unassigned{
			{VisitID: "b", Reason: model.ReasonNoFeasibleWindow},
			{VisitID: "c", Reason: model.ReasonNoFeasibleWindow},
			{VisitID: "d", Reason: model.ReasonWrongDate},
		},
	}

	m := Coverage(plan, 4)

	require.Equal(t, 1, m.AssignedVisits)
	require.Equal(t, 3, m.UnassignedCount)
	require.Equal(t, 0.25, m.OverallCoverage)
	require.Equal(t, 2, m.ByReason[model.ReasonNoFeasibleWindow])
	require.Equal(t, 1, m.ByReason[model.ReasonWrongDate])
}

func TestCoverageZeroVisits(t *testing.T) {
	m := Coverage(&model.Plan{}, 0)
	require.Equal(t, 0.0, m.OverallCoverage)
}

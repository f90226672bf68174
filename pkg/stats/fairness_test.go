package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFairnessPerfectlyEven(t *testing.T) {
	workloads := []VisitorWorkload{
		{VisitorID: "a", VisitCount: 3, BusyTime: 1800, TravelTime: 600},
		{VisitorID: "b", VisitCount: 3, BusyTime: 1800, TravelTime: 600},
	}

	m := Fairness(workloads)

	require.InDelta(t, 0, m.WorkloadGini, 1e-9)
	require.InDelta(t, 0, m.VisitCountGini, 1e-9)
}

func TestFairnessUneven(t *testing.T) {
	workloads := []VisitorWorkload{
		{VisitorID: "a", VisitCount: 1, BusyTime: 600, TravelTime: 0},
		{VisitorID: "b", VisitCount: 9, BusyTime: 5400, TravelTime: 3600},
	}

	m := Fairness(workloads)

	require.Greater(t, m.WorkloadGini, 0.0)
	require.Equal(t, "a", m.LeastLoadedVisitor)
	require.Equal(t, "b", m.MostLoadedVisitor)
}

func TestFairnessEmptyAndSingle(t *testing.T) {
	require.Equal(t, FairnessMetrics{VisitorCount: 0}, Fairness(nil))

	m := Fairness([]VisitorWorkload{{VisitorID: "solo", VisitCount: 5}})
	require.Equal(t, 0.0, m.WorkloadGini)
	require.Equal(t, "solo", m.MostLoadedVisitor)
	require.Equal(t, "solo", m.LeastLoadedVisitor)
}

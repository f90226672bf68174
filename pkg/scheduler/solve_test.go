package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	appErrors "github.com/paiban/paiban/pkg/errors"
	"github.com/paiban/paiban/pkg/scheduler/availability"
	"github.com/paiban/paiban/pkg/scheduler/matrix"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

type zeroMatrixProvider struct{}

func (zeroMatrixProvider) Build(_ context.Context, points []model.Location) (matrix.Matrix, error) {
	n := len(points)
	table := make([][]float64, n)
	for i := range table {
		table[i] = make([]float64, n)
	}
	return matrix.NewMatrix(table), nil
}

type failingMatrixProvider struct{ err error }

func (p failingMatrixProvider) Build(_ context.Context, _ []model.Location) (matrix.Matrix, error) {
	return matrix.Matrix{}, p.err
}

type failingAvailabilityProvider struct{ err error }

func (p failingAvailabilityProvider) Windows(_ context.Context, _ string, _ string) ([]model.Window, error) {
	return nil, p.err
}

func TestSolveSingleVisitSingleVisitorAssigned(t *testing.T) {
	visits := []model.Visit{{ID: "V1", DurationSeconds: 1800}}
	visitors := []model.Visitor{{ID: "visitor-1"}}
	avail := availability.NewStaticProvider().Set("visitor-1", "2026-08-03", model.Window{Start: 28800, End: 61200})

	plan, err := Solve(context.Background(), visits, visitors, "2026-08-03", avail, zeroMatrixProvider{}, DefaultSolveOptions())

	require.NoError(t, err)
	require.Empty(t, plan.Unassigned)
	require.Len(t, plan.Routes["visitor-1"].Stops, 1)
	require.Equal(t, "V1", plan.Routes["visitor-1"].Stops[0].VisitID)
}

func TestSolveWrongDatePinUnassigned(t *testing.T) {
	visits := []model.Visit{{
		ID:              "V1",
		DurationSeconds: 600,
		Pin:             model.Pin{Kind: model.PinDate, Date: "2026-08-04"},
	}}
	visitors := []model.Visitor{{ID: "visitor-1"}}
	avail := availability.NewStaticProvider().Set("visitor-1", "2026-08-03", model.Window{Start: 0, End: 86400})

	plan, err := Solve(context.Background(), visits, visitors, "2026-08-03", avail, zeroMatrixProvider{}, DefaultSolveOptions())

	require.NoError(t, err)
	require.Len(t, plan.Unassigned, 1)
	require.Equal(t, model.ReasonWrongDate, plan.Unassigned[0].Reason)
	require.Empty(t, plan.Routes["visitor-1"].Stops)
}

func TestSolveMissingPinnedVisitorUnassigned(t *testing.T) {
	visits := []model.Visit{{
		ID:              "V1",
		DurationSeconds: 600,
		Pin:             model.Pin{Kind: model.PinVisitor, VisitorID: "ghost"},
	}}
	visitors := []model.Visitor{{ID: "visitor-1"}}
	avail := availability.NewStaticProvider().Set("visitor-1", "2026-08-03", model.Window{Start: 0, End: 86400})

	plan, err := Solve(context.Background(), visits, visitors, "2026-08-03", avail, zeroMatrixProvider{}, DefaultSolveOptions())

	require.NoError(t, err)
	require.Len(t, plan.Unassigned, 1)
	require.Equal(t, model.ReasonMissingPinnedVisitor, plan.Unassigned[0].Reason)
}

func TestSolveCommittedWindowInfeasibleUnassigned(t *testing.T) {
	visits := []model.Visit{{
		ID:              "V1",
		DurationSeconds: 3600,
		CommittedWindow: &model.Window{Start: 36000, End: 37800},
	}}
	visitors := []model.Visitor{{ID: "visitor-1"}}
	avail := availability.NewStaticProvider().Set("visitor-1", "2026-08-03", model.Window{Start: 0, End: 86400})

	plan, err := Solve(context.Background(), visits, visitors, "2026-08-03", avail, zeroMatrixProvider{}, DefaultSolveOptions())

	require.NoError(t, err)
	require.Len(t, plan.Unassigned, 1)
	require.Equal(t, model.ReasonNoFeasibleWindow, plan.Unassigned[0].Reason)
}

func TestSolveCapabilityFilterAssignsCapableVisitor(t *testing.T) {
	visits := []model.Visit{{ID: "V1", DurationSeconds: 600, RequiredCapabilities: []string{"electrical"}}}
	visitors := []model.Visitor{
		{ID: "plumber", Capabilities: []string{"plumbing"}},
		{ID: "electrician", Capabilities: []string{"electrical"}},
	}
	avail := availability.NewStaticProvider().
		Set("plumber", "2026-08-03", model.Window{Start: 0, End: 86400}).
		Set("electrician", "2026-08-03", model.Window{Start: 0, End: 86400})

	plan, err := Solve(context.Background(), visits, visitors, "2026-08-03", avail, zeroMatrixProvider{}, DefaultSolveOptions())

	require.NoError(t, err)
	require.Empty(t, plan.Unassigned)
	require.Empty(t, plan.Routes["plumber"].Stops)
	require.Len(t, plan.Routes["electrician"].Stops, 1)
}

func TestSolveUnavailableVisitorLeavesRouteEmpty(t *testing.T) {
	visits := []model.Visit{{ID: "V1", DurationSeconds: 600}}
	visitors := []model.Visitor{{ID: "visitor-1"}}
	avail := availability.NewStaticProvider() // no windows set: unavailable

	plan, err := Solve(context.Background(), visits, visitors, "2026-08-03", avail, zeroMatrixProvider{}, DefaultSolveOptions())

	require.NoError(t, err)
	require.Len(t, plan.Unassigned, 1)
	// An unpinned visit with no available visitor at all has no capable
	// available visitor, which outranks NoFeasibleWindow.
	require.Equal(t, model.ReasonNoCapableVisitor, plan.Unassigned[0].Reason)
}

func TestSolveAvailabilityProviderFailureReturnsError(t *testing.T) {
	visits := []model.Visit{{ID: "V1", DurationSeconds: 600}}
	visitors := []model.Visitor{{ID: "visitor-1"}}
	cause := errors.New("availability backend unreachable")

	_, err := Solve(context.Background(), visits, visitors, "2026-08-03", failingAvailabilityProvider{err: cause}, zeroMatrixProvider{}, DefaultSolveOptions())

	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.CodeAvailabilityUnavailable))
}

func TestSolveMatrixProviderFailureReturnsError(t *testing.T) {
	visits := []model.Visit{{ID: "V1", DurationSeconds: 600}}
	visitors := []model.Visitor{{ID: "visitor-1"}}
	avail := availability.NewStaticProvider().Set("visitor-1", "2026-08-03", model.Window{Start: 0, End: 86400})
	cause := errors.New("matrix backend unreachable")

	_, err := Solve(context.Background(), visits, visitors, "2026-08-03", avail, failingMatrixProvider{err: cause}, DefaultSolveOptions())

	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.CodeMatrixUnavailable))
}

func TestSolveMalformedVisitReturnsError(t *testing.T) {
	visits := []model.Visit{{ID: "V1", DurationSeconds: 0}}
	visitors := []model.Visitor{{ID: "visitor-1"}}
	avail := availability.NewStaticProvider().Set("visitor-1", "2026-08-03", model.Window{Start: 0, End: 86400})

	_, err := Solve(context.Background(), visits, visitors, "2026-08-03", avail, zeroMatrixProvider{}, DefaultSolveOptions())

	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.CodeMalformedVisit))
}

func TestSolveIsDeterministicAcrossRepeatedRuns(t *testing.T) {
	visits := []model.Visit{
		{ID: "V1", DurationSeconds: 600},
		{ID: "V2", DurationSeconds: 600},
		{ID: "V3", DurationSeconds: 600},
	}
	visitors := []model.Visitor{{ID: "A"}, {ID: "B"}}
	avail := availability.NewStaticProvider().
		Set("A", "2026-08-03", model.Window{Start: 0, End: 86400}).
		Set("B", "2026-08-03", model.Window{Start: 0, End: 86400})

	planA, errA := Solve(context.Background(), visits, visitors, "2026-08-03", avail, zeroMatrixProvider{}, DefaultSolveOptions())
	planB, errB := Solve(context.Background(), visits, visitors, "2026-08-03", avail, zeroMatrixProvider{}, DefaultSolveOptions())

	require.NoError(t, errA)
	require.NoError(t, errB)
	require.Equal(t, planA.Routes["A"].Stops, planB.Routes["A"].Stops)
	require.Equal(t, planA.Routes["B"].Stops, planB.Routes["B"].Stops)
	require.Equal(t, planA.TotalCost, planB.TotalCost)
}

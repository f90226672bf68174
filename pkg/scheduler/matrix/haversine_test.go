package matrix

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paiban/paiban/pkg/scheduler/model"
)

func TestHaversineSamePoint(t *testing.T) {
	loc := model.Location{Lat: 36.15, Lng: -115.17}
	require.Equal(t, 0.0, haversineKM(loc, loc))
}

func TestHaversineKnownDistance(t *testing.T) {
	// Las Vegas to Los Angeles, roughly 370km great-circle.
	lv := model.Location{Lat: 36.1699, Lng: -115.1398}
	la := model.Location{Lat: 34.0522, Lng: -118.2437}

	km := haversineKM(lv, la)
	require.InDelta(t, 370.0, km, 15.0)
}

func TestMatrixDiagonalIsZero(t *testing.T) {
	p := NewHaversineProvider(DefaultSpeedKMH)
	points := []model.Location{
		{Lat: 36.15, Lng: -115.17},
		{Lat: 36.14, Lng: -115.16},
		{Lat: 36.12, Lng: -115.20},
	}

	m, err := p.Build(context.Background(), points)
	require.NoError(t, err)

	for i := 0; i < m.Size(); i++ {
		require.Equal(t, 0.0, m.Travel(i, i))
	}
}

func TestMatrixSymmetric(t *testing.T) {
	p := NewHaversineProvider(DefaultSpeedKMH)
	points := []model.Location{
		{Lat: 36.15, Lng: -115.17},
		{Lat: 36.12, Lng: -115.20},
	}

	m, err := p.Build(context.Background(), points)
	require.NoError(t, err)
	require.InDelta(t, m.Travel(0, 1), m.Travel(1, 0), 1e-9)
}

func TestReasonableTravelTime(t *testing.T) {
	// 10km at 40km/h should be 900 seconds.
	p := NewHaversineProvider(40.0)
	seconds := kmToSeconds(10.0, p.SpeedKMH)
	require.InDelta(t, 900.0, seconds, 1e-6)
}

func TestDefaultSpeedAppliedWhenZero(t *testing.T) {
	p := NewHaversineProvider(0)
	require.Equal(t, DefaultSpeedKMH, p.SpeedKMH)
}

func TestDedupeLocations(t *testing.T) {
	points := []model.Location{
		{Lat: 1, Lng: 1},
		{Lat: 2, Lng: 2},
		{Lat: 1.0000001, Lng: 1.0000001}, // collapses with index 0 at 6 decimal places
	}
	unique, indexOf := DedupeLocations(points)
	require.Len(t, unique, 2)
	require.Equal(t, []int{0, 1, 0}, indexOf)
}

func TestHaversineMonotoneWithDistance(t *testing.T) {
	origin := model.Location{Lat: 0, Lng: 0}
	near := model.Location{Lat: 0.01, Lng: 0}
	far := model.Location{Lat: 1.0, Lng: 0}
	require.True(t, haversineKM(origin, near) < haversineKM(origin, far))
	require.True(t, math.Abs(haversineKM(origin, near)) > 0)
}

package matrix

import (
	"context"
	"math"

	"github.com/paiban/paiban/pkg/scheduler/model"
)

// DefaultSpeedKMH is the assumed travel speed for the great-circle fallback,
// matching the original planner's default.
const DefaultSpeedKMH = 40.0

// EarthRadiusKM is used for the haversine great-circle calculation.
const EarthRadiusKM = 6371.0

// HaversineProvider is the great-circle fallback distance matrix: travel
// time is haversine distance divided by a fixed assumed speed. Always
// succeeds; it has no external dependency to fail against.
type HaversineProvider struct {
	SpeedKMH float64
}

// NewHaversineProvider returns a provider using the given assumed speed, or
// DefaultSpeedKMH if speedKMH is zero.
func NewHaversineProvider(speedKMH float64) *HaversineProvider {
	if speedKMH <= 0 {
		speedKMH = DefaultSpeedKMH
	}
	return &HaversineProvider{SpeedKMH: speedKMH}
}

// Build implements Provider.
func (h *HaversineProvider) Build(_ context.Context, points []model.Location) (Matrix, error) {
	n := len(points)
	table := make([][]float64, n)
	for i := range table {
		table[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			km := haversineKM(points[i], points[j])
			table[i][j] = kmToSeconds(km, h.SpeedKMH)
		}
	}
	return NewMatrix(table), nil
}

func haversineKM(a, b model.Location) float64 {
	const degToRad = math.Pi / 180.0

	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad
	dLat := (b.Lat - a.Lat) * degToRad
	dLng := (b.Lng - a.Lng) * degToRad

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKM * c
}

func kmToSeconds(km, speedKMH float64) float64 {
	hours := km / speedKMH
	return hours * 3600.0
}

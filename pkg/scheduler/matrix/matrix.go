// Package matrix provides distance-matrix providers for the routing solver:
// a great-circle fallback, a real-road-network HTTP provider, and a cache
// decorator. All implement Provider.
package matrix

import (
	"context"
	"fmt"

	"github.com/paiban/paiban/pkg/scheduler/model"
)

// Matrix is a dense travel-time table indexed by the order of the points
// passed to Provider.Build. Matrix.Travel(i, i) is always 0.
type Matrix struct {
	travel [][]float64
}

// NewMatrix wraps a pre-built n×n table. Panics if it is not square.
func NewMatrix(travel [][]float64) Matrix {
	n := len(travel)
	for _, row := range travel {
		if len(row) != n {
			panic("matrix: travel table is not square")
		}
	}
	return Matrix{travel: travel}
}

// Travel returns the travel time in seconds from point i to point j.
func (m Matrix) Travel(i, j int) float64 {
	return m.travel[i][j]
}

// Size returns the number of points the matrix was built over.
func (m Matrix) Size() int {
	return len(m.travel)
}

// Provider builds a travel-time matrix over a set of distinct points.
// Implementations must be deterministic for a given, order-preserved point
// list, and must fail the whole build rather than return partial data.
type Provider interface {
	Build(ctx context.Context, points []model.Location) (Matrix, error)
}

// LocationKey renders a location to a fixed 6-decimal-place string so
// identical-looking coordinates collapse to the same dedup bucket regardless
// of floating point representation noise. Exported so callers outside this
// package (the orchestrator, building a travel function over a matrix) can
// index the same way.
func LocationKey(loc model.Location) string {
	return fmt.Sprintf("%.6f,%.6f", loc.Lat, loc.Lng)
}

// DedupeLocations returns the distinct locations in first-seen order, plus a
// parallel index slice mapping each input position to its slot in the
// deduped list. The solver uses this so duplicate addresses (multiple
// visits at the same building) only cost one matrix row/column.
func DedupeLocations(points []model.Location) (unique []model.Location, indexOf []int) {
	seen := make(map[string]int, len(points))
	indexOf = make([]int, len(points))
	for i, p := range points {
		key := LocationKey(p)
		if idx, ok := seen[key]; ok {
			indexOf[i] = idx
			continue
		}
		idx := len(unique)
		seen[key] = idx
		unique = append(unique, p)
		indexOf[i] = idx
	}
	return unique, indexOf
}

package matrix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/paiban/paiban/pkg/polyline"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

// OSRMConfig configures an OSRMProvider.
type OSRMConfig struct {
	BaseURL string
	Profile string
	Timeout time.Duration
}

// DefaultOSRMConfig returns the conventional localhost OSRM setup.
func DefaultOSRMConfig() OSRMConfig {
	return OSRMConfig{
		BaseURL: "http://localhost:5000",
		Profile: "car",
		Timeout: 10 * time.Second,
	}
}

// OSRMProvider builds a distance matrix from a running OSRM instance's table
// endpoint. Unlike a bare fallback provider, a failed HTTP call or a
// malformed response fails the whole build: the solver cannot fall back
// row-by-row, so this provider never silently substitutes a partial or
// empty matrix.
type OSRMProvider struct {
	config OSRMConfig
	client *http.Client
}

// NewOSRMProvider constructs a provider against the given OSRM deployment.
func NewOSRMProvider(config OSRMConfig) *OSRMProvider {
	if config.BaseURL == "" {
		config.BaseURL = DefaultOSRMConfig().BaseURL
	}
	if config.Profile == "" {
		config.Profile = DefaultOSRMConfig().Profile
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultOSRMConfig().Timeout
	}
	return &OSRMProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

type osrmTableResponse struct {
	Code      string        `json:"code"`
	Durations [][]*float64  `json:"durations"`
}

// Build implements Provider by calling OSRM's /table/v1 endpoint for the
// full pairwise duration matrix in one request.
func (o *OSRMProvider) Build(ctx context.Context, points []model.Location) (Matrix, error) {
	if len(points) == 0 {
		return NewMatrix(nil), nil
	}

	url := fmt.Sprintf("%s/table/v1/%s/%s?annotations=duration",
		o.config.BaseURL, o.config.Profile, coordsParam(points))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Matrix{}, fmt.Errorf("osrm: build request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return Matrix{}, fmt.Errorf("osrm: table request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Matrix{}, fmt.Errorf("osrm: table request returned HTTP %d", resp.StatusCode)
	}

	var body osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Matrix{}, fmt.Errorf("osrm: decode table response: %w", err)
	}
	if body.Code != "Ok" {
		return Matrix{}, fmt.Errorf("osrm: table request returned code %q", body.Code)
	}
	if len(body.Durations) != len(points) {
		return Matrix{}, fmt.Errorf("osrm: expected %d duration rows, got %d", len(points), len(body.Durations))
	}

	table := make([][]float64, len(points))
	for i, row := range body.Durations {
		if len(row) != len(points) {
			return Matrix{}, fmt.Errorf("osrm: row %d has %d entries, expected %d", i, len(row), len(points))
		}
		table[i] = make([]float64, len(points))
		for j, v := range row {
			if v == nil {
				return Matrix{}, fmt.Errorf("osrm: no route between point %d and %d", i, j)
			}
			table[i][j] = *v
		}
	}

	return NewMatrix(table), nil
}

func coordsParam(points []model.Location) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%.6f,%.6f", p.Lng, p.Lat)
	}
	return strings.Join(parts, ";")
}

// RouteGeometry is the decoded shape of a multi-waypoint route, used to
// enrich a solved plan for map display. The solver core never calls this.
type RouteGeometry struct {
	Points          []polyline.Point
	DistanceMeters  int
	DurationSeconds int
	Legs            []LegGeometry
}

// LegGeometry is the shape of a single leg between two consecutive waypoints.
type LegGeometry struct {
	Points          []polyline.Point
	DistanceMeters  int
	DurationSeconds int
}

type osrmRouteResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry string        `json:"geometry"`
	Distance float64       `json:"distance"`
	Duration float64       `json:"duration"`
	Legs     []osrmRouteLeg `json:"legs"`
}

type osrmRouteLeg struct {
	Distance float64        `json:"distance"`
	Duration float64        `json:"duration"`
	Steps    []osrmRouteStep `json:"steps"`
}

type osrmRouteStep struct {
	Geometry string `json:"geometry"`
}

// RouteGeometry fetches the full route geometry for an ordered sequence of
// waypoints, used for map rendering rather than solver math.
func (o *OSRMProvider) RouteGeometry(ctx context.Context, waypoints []model.Location) (RouteGeometry, error) {
	if len(waypoints) < 2 {
		return RouteGeometry{}, fmt.Errorf("osrm: need at least 2 waypoints for a route")
	}

	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=polyline&steps=true",
		o.config.BaseURL, o.config.Profile, coordsParam(waypoints))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RouteGeometry{}, fmt.Errorf("osrm: build route request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return RouteGeometry{}, fmt.Errorf("osrm: route request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RouteGeometry{}, fmt.Errorf("osrm: route request returned HTTP %d", resp.StatusCode)
	}

	var body osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return RouteGeometry{}, fmt.Errorf("osrm: decode route response: %w", err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return RouteGeometry{}, fmt.Errorf("osrm: no route found")
	}

	route := body.Routes[0]
	legs := make([]LegGeometry, len(route.Legs))
	for i, leg := range route.Legs {
		legs[i] = LegGeometry{
			Points:          combineStepGeometries(leg.Steps),
			DistanceMeters:  roundInt(leg.Distance),
			DurationSeconds: roundInt(leg.Duration),
		}
	}

	return RouteGeometry{
		Points:          polyline.Decode(route.Geometry),
		DistanceMeters:  roundInt(route.Distance),
		DurationSeconds: roundInt(route.Duration),
		Legs:            legs,
	}, nil
}

func combineStepGeometries(steps []osrmRouteStep) []polyline.Point {
	var all []polyline.Point
	for _, step := range steps {
		points := polyline.Decode(step.Geometry)
		if len(all) == 0 {
			all = append(all, points...)
			continue
		}
		if len(points) > 1 {
			all = append(all, points[1:]...)
		}
	}
	return all
}

func roundInt(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

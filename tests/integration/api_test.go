// Package integration exercises the HTTP handlers against an in-memory
// server -- it checks wire format (JSON in, JSON out) rather than handler
// internals.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paiban/paiban/internal/handler"
	"github.com/paiban/paiban/pkg/scheduler/availability"
	"github.com/paiban/paiban/pkg/scheduler/matrix"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

func TestSolveEndpointReturnsAssignedPlan(t *testing.T) {
	avail := availability.NewStaticProvider()
	avail.Set("driver", "2026-03-10", model.Window{Start: 28800, End: 61200})

	h := handler.NewSolveHandler(avail, matrix.NewHaversineProvider(40), nil, 0, 5*time.Second)

	server := httptest.NewServer(http.HandlerFunc(h.Solve))
	defer server.Close()

	body := handler.SolveRequest{
		Date: "2026-03-10",
		Visits: []model.Visit{
			{ID: "v1", Location: model.Location{Lat: 36.11, Lng: -115.17}, DurationSeconds: 1800},
		},
		Visitors: []model.Visitor{
			{ID: "driver", StartLocation: model.Location{Lat: 36.12, Lng: -115.16}},
		},
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(server.URL, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out handler.SolveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Empty(t, out.Plan.Unassigned)
	require.Contains(t, out.Plan.Routes, "driver")
}

func TestSolveEndpointRejectsMissingDate(t *testing.T) {
	avail := availability.NewStaticProvider()
	h := handler.NewSolveHandler(avail, matrix.NewHaversineProvider(40), nil, 0, 5*time.Second)

	server := httptest.NewServer(http.HandlerFunc(h.Solve))
	defer server.Close()

	resp, err := http.Post(server.URL, "application/json", bytes.NewReader([]byte(`{"visits":[],"visitors":[]}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSolveEndpointRejectsMalformedBody(t *testing.T) {
	avail := availability.NewStaticProvider()
	h := handler.NewSolveHandler(avail, matrix.NewHaversineProvider(40), nil, 0, 5*time.Second)

	server := httptest.NewServer(http.HandlerFunc(h.Solve))
	defer server.Close()

	resp, err := http.Post(server.URL, "application/json", bytes.NewReader([]byte(`not json`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

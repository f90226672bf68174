package polyline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	points := []Point{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}

	encoded := Encode(points)
	decoded := Decode(encoded)

	require.Len(t, decoded, len(points))
	for i, p := range points {
		require.InDelta(t, p.Lat, decoded[i].Lat, 1e-4)
		require.InDelta(t, p.Lng, decoded[i].Lng, 1e-4)
	}
}

func TestDecodeKnownPolyline(t *testing.T) {
	// Known example from Google's polyline algorithm documentation.
	decoded := Decode("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.Len(t, decoded, 3)
	require.InDelta(t, 38.5, decoded[0].Lat, 1e-4)
	require.InDelta(t, -120.2, decoded[0].Lng, 1e-4)
}

func TestEmptyPolyline(t *testing.T) {
	require.Empty(t, Decode(""))
	require.Equal(t, "", Encode(nil))
}

// Package polyline implements the Google Polyline Algorithm codec used to
// encode/decode route geometries exchanged with OSRM.
package polyline

// Point is a decoded (lat, lng) coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Decode parses a Google Polyline Algorithm encoded string into coordinates.
func Decode(encoded string) []Point {
	var points []Point
	var lat, lng int64

	chars := []rune(encoded)
	index := 0

	for index < len(chars) {
		lat += decodeValue(chars, &index)
		lng += decodeValue(chars, &index)
		points = append(points, Point{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}

	return points
}

func decodeValue(chars []rune, index *int) int64 {
	var shift uint
	var result int64

	for *index < len(chars) {
		b := int64(chars[*index]) - 63
		*index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1)
	}
	return result >> 1
}

// Encode produces a Google Polyline Algorithm encoded string from coordinates.
func Encode(points []Point) string {
	var out []byte
	var prevLat, prevLng int64

	for _, p := range points {
		latE5 := round(p.Lat * 1e5)
		lngE5 := round(p.Lng * 1e5)

		out = encodeValue(latE5-prevLat, out)
		out = encodeValue(lngE5-prevLng, out)

		prevLat = latE5
		prevLng = lngE5
	}

	return string(out)
}

func round(v float64) int64 {
	if v < 0 {
		return int64(v - 0.5)
	}
	return int64(v + 0.5)
}

func encodeValue(value int64, out []byte) []byte {
	if value < 0 {
		value = ^value
		value <<= 1
		value |= 1
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		chunk := byte(value&0x1f|0x20) + 63
		out = append(out, chunk)
		value >>= 5
	}
	out = append(out, byte(value)+63)

	return out
}

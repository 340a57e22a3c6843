// README: Pure geographic computation helpers (miles).
package geo

import (
	"math"

	"roadcall/internal/types"
)

const earthRadiusMiles = 3958.8

// DistanceMiles returns the great-circle distance in miles between two
// points specified in decimal degrees.
func DistanceMiles(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}

// WithinRadius reports whether p lies within radiusMiles of center.
func WithinRadius(center, p types.Point, radiusMiles float64) bool {
	return DistanceMiles(center, p) <= radiusMiles
}

// Hub is a fixed reference point used by distance-from-metro rule conditions.
type Hub struct {
	Name     string
	Position types.Point
}

// Service hubs the remote-area conditions measure against.
var Hubs = []Hub{
	{Name: "Downtown", Position: types.Point{Lat: 33.4484, Lng: -112.0740}},
	{Name: "Mesa", Position: types.Point{Lat: 33.4152, Lng: -111.8315}},
	{Name: "Scottsdale", Position: types.Point{Lat: 33.4942, Lng: -111.9261}},
	{Name: "Glendale", Position: types.Point{Lat: 33.5387, Lng: -112.1860}},
	{Name: "Chandler", Position: types.Point{Lat: 33.3062, Lng: -111.8413}},
}

// NearestHubMiles returns the distance in miles from p to the closest hub.
func NearestHubMiles(p types.Point) float64 {
	nearest := math.MaxFloat64
	for _, h := range Hubs {
		if d := DistanceMiles(h.Position, p); d < nearest {
			nearest = d
		}
	}
	return nearest
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

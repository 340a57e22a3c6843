package geo

import (
	"math"
	"testing"

	"roadcall/internal/types"
)

func TestDistanceMiles(t *testing.T) {
	cases := []struct {
		name      string
		a, b      types.Point
		want      float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         types.Point{Lat: 33.4484, Lng: -112.0740},
			b:         types.Point{Lat: 33.4484, Lng: -112.0740},
			want:      0,
			tolerance: 0.001,
		},
		{
			name:      "phoenix to tucson",
			a:         types.Point{Lat: 33.4484, Lng: -112.0740},
			b:         types.Point{Lat: 32.2226, Lng: -110.9747},
			want:      108,
			tolerance: 3,
		},
		{
			name:      "one degree of latitude",
			a:         types.Point{Lat: 33.0, Lng: -112.0},
			b:         types.Point{Lat: 34.0, Lng: -112.0},
			want:      69.1,
			tolerance: 0.5,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceMiles(tc.a, tc.b)
			if math.Abs(got-tc.want) > tc.tolerance {
				t.Errorf("DistanceMiles = %.2f, want %.2f +/- %.2f", got, tc.want, tc.tolerance)
			}
		})
	}
}

func TestWithinRadius(t *testing.T) {
	center := types.Point{Lat: 33.4484, Lng: -112.0740}
	near := types.Point{Lat: 33.45, Lng: -112.07}
	far := types.Point{Lat: 35.19, Lng: -111.65} // Flagstaff

	if !WithinRadius(center, near, 5) {
		t.Error("expected nearby point within 5 miles")
	}
	if WithinRadius(center, far, 50) {
		t.Error("expected Flagstaff outside 50 miles")
	}
}

func TestNearestHubMiles(t *testing.T) {
	// A point sitting on a hub is zero miles from the nearest hub.
	if d := NearestHubMiles(Hubs[0].Position); d > 0.01 {
		t.Errorf("distance at hub = %.3f, want ~0", d)
	}

	// Flagstaff is well over 100 miles from every hub.
	if d := NearestHubMiles(types.Point{Lat: 35.1983, Lng: -111.6513}); d < 100 {
		t.Errorf("NearestHubMiles(Flagstaff) = %.1f, want > 100", d)
	}
}

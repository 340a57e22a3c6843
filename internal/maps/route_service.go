// README: Google Maps travel estimator for quotes missing distance/duration.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"roadcall/internal/types"
)

const metersPerMile = 1609.344

// TravelEstimator wraps the Directions API to estimate contractor travel
// from a service hub to a job site. Best-effort: callers treat failures as
// "no estimate available".
type TravelEstimator struct {
	client *maps.Client
}

func NewTravelEstimator(apiKey string) (*TravelEstimator, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &TravelEstimator{client: client}, nil
}

// Estimate returns driving distance in miles and duration in minutes from
// origin to destination.
func (s *TravelEstimator) Estimate(ctx context.Context, origin, destination types.Point) (float64, float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination: fmt.Sprintf("%f,%f", destination.Lat, destination.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, 0, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	miles := float64(leg.Distance.Meters) / metersPerMile
	minutes := leg.Duration.Minutes()
	return miles, minutes, nil
}

// README: Contractor availability store backed by Redis GEO.
package contractors

import (
	"context"

	"github.com/redis/go-redis/v9"

	"roadcall/internal/types"
)

const availableGeoKey = "contractors:available"

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// SetAvailable marks a contractor available at the given position.
func (s *Store) SetAvailable(ctx context.Context, id types.ID, p types.Point) error {
	return s.redis.GeoAdd(ctx, availableGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
}

// SetUnavailable removes a contractor from the availability set.
func (s *Store) SetUnavailable(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, availableGeoKey, string(id)).Err()
}

// CountAvailableNear counts available contractors within radiusMiles of p.
func (s *Store) CountAvailableNear(ctx context.Context, p types.Point, radiusMiles float64) (int, error) {
	results, err := s.redis.GeoSearch(ctx, availableGeoKey, &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusMiles,
		RadiusUnit: "mi",
	}).Result()
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

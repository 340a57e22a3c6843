// README: Surge zone keys and snapshot policy contract.
package surge

import (
	"context"
	"fmt"
	"math"

	"roadcall/internal/types"
)

// ZoneKey buckets a coordinate into a 0.1 degree grid cell.
func ZoneKey(p types.Point) string {
	lat := math.Floor(p.Lat*10) / 10
	lng := math.Floor(p.Lng*10) / 10
	return fmt.Sprintf("%.1f:%.1f", lat, lng)
}

// SnapshotFunc recomputes the per-zone surge map from aggregate demand
// signals. The refresher swaps the whole map in atomically; stale entries
// stay valid until overwritten. The policy is pluggable.
type SnapshotFunc func(ctx context.Context) (map[string]float64, error)

// JobCounter counts active jobs near a point.
type JobCounter interface {
	CountActiveNear(ctx context.Context, p types.Point, radiusMiles float64) (int, error)
}

// ContractorCounter counts available contractors near a point.
type ContractorCounter interface {
	CountAvailableNear(ctx context.Context, p types.Point, radiusMiles float64) (int, error)
}

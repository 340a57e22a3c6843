// README: Surge store: zone demand counts from PostgreSQL.
package surge

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ActiveJobZoneCounts groups active jobs into 0.1 degree zone buckets.
func (s *Store) ActiveJobZoneCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT to_char(floor(location_lat * 10) / 10, 'FM9990.0') || ':' ||
		       to_char(floor(location_lng * 10) / 10, 'FM9990.0') AS zone,
		       COUNT(*)
		FROM jobs
		WHERE status IN ('pending', 'assigned', 'in_progress')
		GROUP BY 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var zone string
		var n int
		if err := rows.Scan(&zone, &n); err != nil {
			return nil, err
		}
		counts[zone] = n
	}
	return counts, rows.Err()
}

// DemandSnapshot is the default zone refresh policy: it maps raw active-job
// counts per zone onto multipliers. Deliberately coarse; swap the
// SnapshotFunc to change the policy.
func DemandSnapshot(store *Store) SnapshotFunc {
	return func(ctx context.Context) (map[string]float64, error) {
		counts, err := store.ActiveJobZoneCounts(ctx)
		if err != nil {
			return nil, err
		}
		zones := make(map[string]float64, len(counts))
		for zone, n := range counts {
			switch {
			case n >= 25:
				zones[zone] = 2.0
			case n >= 10:
				zones[zone] = 1.5
			case n >= 5:
				zones[zone] = 1.2
			}
		}
		return zones, nil
	}
}

// README: Job store backed by PostgreSQL (locked price persistence and radius counts).
package jobs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"roadcall/internal/types"
)

var ErrNotFound = errors.New("job not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// SetQuotedPrice persists a locked quote's total onto the job record.
func (s *Store) SetQuotedPrice(ctx context.Context, jobID types.ID, total float64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE jobs
		SET quoted_price = $1,
		    price_locked_at = NOW()
		WHERE id = $2`,
		total, string(jobID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActiveNear counts non-terminal jobs within radiusMiles of p. Uses a
// bounding-box approximation (1 degree of latitude is ~69 miles), which is
// accurate enough for the coarse supply/demand ratio it feeds.
func (s *Store) CountActiveNear(ctx context.Context, p types.Point, radiusMiles float64) (int, error) {
	latDelta := radiusMiles / 69.0
	lngDelta := radiusMiles / 58.0 // longitude shrinks with latitude; ~cos(33 deg)

	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM jobs
		WHERE status IN ('pending', 'assigned', 'in_progress')
		  AND location_lat BETWEEN $1 AND $2
		  AND location_lng BETWEEN $3 AND $4`,
		p.Lat-latDelta, p.Lat+latDelta,
		p.Lng-lngDelta, p.Lng+lngDelta,
	).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

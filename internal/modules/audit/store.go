// README: Audit store backed by PostgreSQL, plus aggregate reporting queries.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"roadcall/internal/modules/pricing"
	"roadcall/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, rec *Record) error {
	contextJSON, err := json.Marshal(rec.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	breakdownJSON, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO pricing_audit (
			service_type_id, job_type, customer_id, location_lat, location_lng,
			quote_context, breakdown, surge_amount, total_amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(rec.ServiceTypeID), string(rec.JobType), string(rec.CustomerID),
		rec.Location.Lat, rec.Location.Lng,
		contextJSON, breakdownJSON,
		rec.Breakdown.SurgeAmount, rec.Breakdown.TotalAmount, rec.CreatedAt,
	)
	return err
}

// Aggregate computes the analytics report over audited quotes in [start, end].
// Price elasticity is reported as the coefficient of variation of totals.
func (s *Store) Aggregate(ctx context.Context, start, end time.Time) (*pricing.Analytics, error) {
	var report pricing.Analytics

	var avg, stddev *float64
	var surged int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       AVG(total_amount),
		       STDDEV_POP(total_amount),
		       COUNT(*) FILTER (WHERE surge_amount IS NOT NULL)
		FROM pricing_audit
		WHERE created_at BETWEEN $1 AND $2`,
		start, end,
	).Scan(&report.QuoteCount, &avg, &stddev, &surged)
	if err != nil {
		return nil, err
	}
	if report.QuoteCount == 0 {
		return &report, nil
	}
	report.AveragePrice = round2(*avg)
	report.SurgeFrequency = round2(float64(surged) / float64(report.QuoteCount))
	if stddev != nil && *avg > 0 {
		report.PriceElasticity = round2(*stddev / *avg)
	}

	rows, err := s.db.Query(ctx, `
		SELECT rule->>'ruleId',
		       COUNT(*),
		       AVG((rule->>'impact')::numeric)
		FROM pricing_audit,
		     jsonb_array_elements(breakdown->'rulesApplied') AS rule
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY 1
		ORDER BY 2 DESC`,
		start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var eff pricing.RuleEffectiveness
		var ruleID string
		var avgImpact float64
		if err := rows.Scan(&ruleID, &eff.TimesApplied, &avgImpact); err != nil {
			return nil, err
		}
		eff.RuleID = types.ID(ruleID)
		eff.AverageImpact = round2(avgImpact)
		report.RuleEffectiveness = append(report.RuleEffectiveness, eff)
	}
	return &report, rows.Err()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

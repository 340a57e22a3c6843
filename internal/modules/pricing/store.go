// README: Pricing store backed by PostgreSQL.
package pricing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roadcall/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetServicePricing(ctx context.Context, serviceTypeID types.ID) (*ServicePricing, error) {
	row := s.db.QueryRow(ctx, `
		SELECT service_type_id, base_price, per_mile_rate, per_hour_rate, minimum_charge
		FROM service_pricing
		WHERE service_type_id = $1`, string(serviceTypeID),
	)

	var sp ServicePricing
	var perMile, perHour, minimum sql.NullFloat64
	err := row.Scan(&sp.ServiceTypeID, &sp.BasePrice, &perMile, &perHour, &minimum)
	if isNoRows(err) {
		return nil, ErrPricingNotFound
	}
	if err != nil {
		return nil, err
	}
	sp.PerMileRate = toFloatPtr(perMile)
	sp.PerHourRate = toFloatPtr(perHour)
	sp.MinimumCharge = toFloatPtr(minimum)
	return &sp, nil
}

// ListActiveRules returns active rules ordered by priority DESC with a
// deterministic tie-break, so the engine's stable sort preserves it.
func (s *Store) ListActiveRules(ctx context.Context) ([]PricingRule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, rule_type, conditions, multiplier, fixed_amount,
		       priority, is_active, start_date, end_date, created_at
		FROM pricing_rules
		WHERE is_active = TRUE
		ORDER BY priority DESC, created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []PricingRule
	for rows.Next() {
		var r PricingRule
		var conditions []byte
		var multiplier, fixed sql.NullFloat64
		var start, end sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Type, &conditions, &multiplier, &fixed,
			&r.Priority, &r.IsActive, &start, &end, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		r.Conditions = ParseConditions(conditions)
		r.Multiplier = toFloatPtr(multiplier)
		r.FixedAmount = toFloatPtr(fixed)
		if start.Valid {
			t := start.Time
			r.StartDate = &t
		}
		if end.Valid {
			t := end.Time
			r.EndDate = &t
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *Store) ListFleetOverrides(ctx context.Context, fleetID types.ID) ([]FleetOverride, error) {
	rows, err := s.db.Query(ctx, `
		SELECT fleet_account_id, service_type_id, flat_rate_override, discount_percentage
		FROM fleet_pricing_overrides
		WHERE fleet_account_id = $1`, string(fleetID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []FleetOverride
	for rows.Next() {
		var o FleetOverride
		var flat, discount sql.NullFloat64
		if err := rows.Scan(&o.FleetAccountID, &o.ServiceTypeID, &flat, &discount); err != nil {
			return nil, err
		}
		o.FlatRate = toFloatPtr(flat)
		o.DiscountPercent = toFloatPtr(discount)
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (s *Store) GetFleetAccount(ctx context.Context, id types.ID) (*FleetAccount, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, pricing_tier
		FROM fleet_accounts
		WHERE id = $1`, string(id),
	)

	var f FleetAccount
	err := row.Scan(&f.ID, &f.Name, &f.Tier)
	if isNoRows(err) {
		return nil, ErrFleetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) CreateRule(ctx context.Context, r *PricingRule) error {
	conditions, err := json.Marshal(r.Conditions)
	if err != nil {
		return fmt.Errorf("marshal conditions: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO pricing_rules (
			id, name, rule_type, conditions, multiplier, fixed_amount,
			priority, is_active, start_date, end_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`,
		string(r.ID), r.Name, string(r.Type), conditions, r.Multiplier, r.FixedAmount,
		r.Priority, r.IsActive, r.StartDate, r.EndDate,
	)
	return err
}

// isNoRows recognizes a missing row from both the pgx-native query path and
// the database/sql compatibility path.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

func toFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// README: Quote engine: composes base pricing, rules, fleet overrides, surge, floor, and tax.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"roadcall/internal/config"
	"roadcall/internal/types"
)

var (
	ErrPricingNotFound = errors.New("no pricing configured for service type")
	ErrFleetNotFound   = errors.New("fleet account not found")
	ErrAlreadyLocked   = errors.New("breakdown already locked")
)

// RuleStore is the persistence collaborator for rate cards, rules, and fleets.
type RuleStore interface {
	GetServicePricing(ctx context.Context, serviceTypeID types.ID) (*ServicePricing, error)
	ListActiveRules(ctx context.Context) ([]PricingRule, error)
	ListFleetOverrides(ctx context.Context, fleetID types.ID) ([]FleetOverride, error)
	GetFleetAccount(ctx context.Context, id types.ID) (*FleetAccount, error)
	CreateRule(ctx context.Context, r *PricingRule) error
}

// SurgeEstimator yields the current surge multiplier for a location. It must
// degrade internally to 1.0 instead of failing.
type SurgeEstimator interface {
	Multiplier(ctx context.Context, p types.Point) float64
}

// JobUpdater persists a locked quote's total onto the job record.
type JobUpdater interface {
	SetQuotedPrice(ctx context.Context, jobID types.ID, total float64) error
}

// AuditSink receives every computed breakdown. Implementations are
// best-effort and must never block or fail the quote path.
type AuditSink interface {
	Emit(q QuoteContext, b Breakdown)
}

// AnalyticsSource aggregates historical audit data.
type AnalyticsSource interface {
	Aggregate(ctx context.Context, start, end time.Time) (*Analytics, error)
}

type Service struct {
	store     RuleStore
	surge     SurgeEstimator
	jobs      JobUpdater
	cache     QuoteCache
	audit     AuditSink
	analytics AnalyticsSource
	cfg       config.QuoteConfig
	log       *zap.Logger
	now       func() time.Time
}

func NewService(
	store RuleStore,
	surge SurgeEstimator,
	jobs JobUpdater,
	cache QuoteCache,
	audit AuditSink,
	analytics AnalyticsSource,
	cfg config.QuoteConfig,
	log *zap.Logger,
) *Service {
	return &Service{
		store:     store,
		surge:     surge,
		jobs:      jobs,
		cache:     cache,
		audit:     audit,
		analytics: analytics,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// CalculatePrice produces a full breakdown for the given context, serving a
// cached quote when one exists for the same fingerprint. Missing base pricing
// is a hard failure; everything optional defaults to an absent charge.
func (s *Service) CalculatePrice(ctx context.Context, q QuoteContext) (*Breakdown, error) {
	key := CacheKey(q)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	now := s.now()

	sp, err := s.store.GetServicePricing(ctx, q.ServiceTypeID)
	if err != nil {
		return nil, fmt.Errorf("service type %s: %w", q.ServiceTypeID, err)
	}

	b := &Breakdown{BasePrice: sp.BasePrice}
	total := sp.BasePrice

	if q.DistanceMiles != nil && sp.PerMileRate != nil {
		charge := round2(*q.DistanceMiles * *sp.PerMileRate)
		b.DistanceCharge = &charge
		total += charge
	}
	if q.DurationMin != nil && sp.PerHourRate != nil {
		charge := round2(*q.DurationMin / 60 * *sp.PerHourRate)
		b.TimeCharge = &charge
		total += charge
	}

	fleetTier := ""
	if q.FleetID != nil {
		acct, err := s.store.GetFleetAccount(ctx, *q.FleetID)
		switch {
		case err == nil:
			fleetTier = acct.Tier
		case errors.Is(err, ErrFleetNotFound):
			// Unknown fleet: quote without a tier, overrides still apply.
		default:
			return nil, fmt.Errorf("fleet account %s: %w", *q.FleetID, err)
		}
	}

	rules, err := s.store.ListActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	sortRulesByPriority(rules)

	for _, rule := range rules {
		if !ruleMatches(rule, q, fleetTier, now) {
			continue
		}
		impact := round2(applyRule(rule, total))
		if impact == 0 {
			continue
		}
		total += impact
		b.RulesApplied = append(b.RulesApplied, RuleApplied{
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			RuleType:    rule.Type,
			Multiplier:  rule.Multiplier,
			FixedAmount: rule.FixedAmount,
			Impact:      impact,
		})
	}

	if q.FleetID != nil {
		total, err = s.applyFleetOverride(ctx, q, b, total)
		if err != nil {
			return nil, err
		}
	}

	if s.surge != nil {
		if multiplier := s.surge.Multiplier(ctx, q.Location); multiplier > 1 {
			amount := round2(total * (multiplier - 1))
			m := multiplier
			b.SurgeAmount = &amount
			total += amount
			b.RulesApplied = append(b.RulesApplied, RuleApplied{
				RuleID:     "surge",
				RuleName:   "Surge pricing",
				RuleType:   RuleDemandBased,
				Multiplier: &m,
				Impact:     amount,
			})
		}
	}

	if sp.MinimumCharge != nil && total < *sp.MinimumCharge {
		total = *sp.MinimumCharge
	}
	total = round2(total)

	b.Subtotal = total
	b.TaxAmount = round2(total * s.cfg.TaxRate)
	b.TotalAmount = round2(total + b.TaxAmount)

	if discount := sumNegativeImpacts(b.RulesApplied); discount > 0 {
		b.DiscountAmount = &discount
	}

	b.Confidence = confidenceFor(q)
	variance := varianceFor(b.Confidence)
	b.PriceRange = &PriceRange{
		Min: round2(total * (1 - variance)),
		Max: round2(total * (1 + variance)),
	}
	b.ExpiresAt = now.Add(s.cfg.TTL)

	if s.cache != nil {
		s.cache.Set(ctx, key, b)
	}
	if s.audit != nil {
		s.audit.Emit(q, *b)
	}
	return b, nil
}

// applyFleetOverride applies the contractual override for the context's
// (fleet, service type) pair: a flat rate replaces the total outright, a
// discount percentage is recorded as a final negative adjustment.
func (s *Service) applyFleetOverride(ctx context.Context, q QuoteContext, b *Breakdown, total float64) (float64, error) {
	overrides, err := s.store.ListFleetOverrides(ctx, *q.FleetID)
	if err != nil {
		return 0, fmt.Errorf("list fleet overrides: %w", err)
	}
	for _, o := range overrides {
		if o.ServiceTypeID != q.ServiceTypeID {
			continue
		}
		if o.FlatRate != nil {
			return *o.FlatRate, nil
		}
		if o.DiscountPercent != nil {
			impact := -round2(total * *o.DiscountPercent / 100)
			total += impact
			b.RulesApplied = append(b.RulesApplied, RuleApplied{
				RuleID:   "fleet-override",
				RuleName: "Fleet discount",
				RuleType: RuleFleetBased,
				Impact:   impact,
			})
		}
		break
	}
	return total, nil
}

// LockPrice freezes a breakdown as the authoritative price of a job and
// persists its total. Locking is terminal; a locked breakdown is immutable.
func (s *Service) LockPrice(ctx context.Context, jobID types.ID, b *Breakdown) error {
	if b.Locked {
		return ErrAlreadyLocked
	}
	if err := s.jobs.SetQuotedPrice(ctx, jobID, b.TotalAmount); err != nil {
		return fmt.Errorf("persist locked price: %w", err)
	}
	b.Locked = true
	return nil
}

// SurgeMultiplier exposes the current surge value for inspection.
func (s *Service) SurgeMultiplier(ctx context.Context, p types.Point) float64 {
	if s.surge == nil {
		return 1.0
	}
	return s.surge.Multiplier(ctx, p)
}

// TestPricingRules evaluates a batch of scenarios. No side effects beyond
// those of CalculatePrice.
func (s *Service) TestPricingRules(ctx context.Context, scenarios []QuoteContext) ([]*Breakdown, error) {
	results := make([]*Breakdown, 0, len(scenarios))
	for _, scenario := range scenarios {
		b, err := s.CalculatePrice(ctx, scenario)
		if err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, nil
}

// PricingAnalytics reports aggregates over audited quotes in [start, end].
func (s *Service) PricingAnalytics(ctx context.Context, start, end time.Time) (*Analytics, error) {
	return s.analytics.Aggregate(ctx, start, end)
}

// CreateDefaultPricingRules seeds the baseline rule set. Seeding is not
// idempotent: calling it twice inserts duplicates.
func (s *Service) CreateDefaultPricingRules(ctx context.Context) error {
	for _, r := range DefaultRules() {
		rule := r
		if err := s.store.CreateRule(ctx, &rule); err != nil {
			return fmt.Errorf("create rule %s: %w", rule.Name, err)
		}
	}
	return nil
}

func confidenceFor(q QuoteContext) Confidence {
	switch {
	case q.JobType == JobScheduled && q.ScheduledFor != nil:
		return ConfidenceHigh
	case q.DistanceMiles == nil || q.DurationMin == nil:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

func varianceFor(c Confidence) float64 {
	switch c {
	case ConfidenceHigh:
		return 0.10
	case ConfidenceMedium:
		return 0.20
	default:
		return 0.30
	}
}

func sumNegativeImpacts(applied []RuleApplied) float64 {
	var discount float64
	for _, r := range applied {
		if r.Impact < 0 {
			discount -= r.Impact
		}
	}
	return round2(discount)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DefaultRules is the baseline rule set seeded into new deployments.
func DefaultRules() []PricingRule {
	f := func(v float64) *float64 { return &v }
	return []PricingRule{
		{
			ID:   types.ID("default-emergency"),
			Name: "Emergency response premium",
			Type: RuleUrgencyBased,
			Conditions: &Conditions{
				Urgency: &UrgencyCondition{Type: UrgencyImmediate},
			},
			Multiplier: f(1.5),
			Priority:   100,
			IsActive:   true,
		},
		{
			ID:   types.ID("default-night"),
			Name: "Evening surcharge",
			Type: RuleTimeBased,
			Conditions: &Conditions{
				TimeOfDay: &TimeWindow{Start: "18:00", End: "23:59"},
			},
			Multiplier: f(1.25),
			Priority:   90,
			IsActive:   true,
		},
		{
			ID:   types.ID("default-weekend"),
			Name: "Weekend surcharge",
			Type: RuleTimeBased,
			Conditions: &Conditions{
				DaysOfWeek: []string{"Saturday", "Sunday"},
			},
			Multiplier: f(1.15),
			Priority:   80,
			IsActive:   true,
		},
		{
			ID:   types.ID("default-remote"),
			Name: "Remote area call-out",
			Type: RuleLocationBased,
			Conditions: &Conditions{
				Location: &LocationCondition{Type: LocationDistance, BeyondMiles: 30},
			},
			FixedAmount: f(25),
			Priority:    70,
			IsActive:    true,
		},
		{
			ID:   types.ID("default-new-customer"),
			Name: "First-time customer discount",
			Type: RuleCustomerBased,
			Conditions: &Conditions{
				CustomerType: "new",
			},
			Multiplier: f(0.9),
			Priority:   60,
			IsActive:   true,
		},
		{
			ID:   types.ID("default-fleet-premium"),
			Name: "Premium fleet tier discount",
			Type: RuleFleetBased,
			Conditions: &Conditions{
				CustomerType: "fleet",
				FleetTier:    "premium",
			},
			Multiplier: f(0.95),
			Priority:   50,
			IsActive:   true,
		},
	}
}

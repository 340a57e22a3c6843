// README: Quote engine domain types: service pricing, rules, conditions, breakdowns.
package pricing

import (
	"encoding/json"
	"time"

	"roadcall/internal/types"
)

type JobType string

const (
	JobEmergency JobType = "emergency"
	JobScheduled JobType = "scheduled"
)

type RuleType string

const (
	RuleTimeBased     RuleType = "time_based"
	RuleLocationBased RuleType = "location_based"
	RuleUrgencyBased  RuleType = "urgency_based"
	RuleCustomerBased RuleType = "customer_based"
	RuleFleetBased    RuleType = "fleet_based"
	RuleDemandBased   RuleType = "demand_based"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ServicePricing is the base rate card for one service type. Read-only to the engine.
type ServicePricing struct {
	ServiceTypeID types.ID `json:"serviceTypeId"`
	BasePrice     float64  `json:"basePrice"`
	PerMileRate   *float64 `json:"perMileRate,omitempty"`
	PerHourRate   *float64 `json:"perHourRate,omitempty"`
	MinimumCharge *float64 `json:"minimumCharge,omitempty"`
}

// TimeWindow bounds a rule to a local time-of-day window, "HH:MM" inclusive.
// Comparison is lexical; a window crossing midnight (e.g. 22:00-06:00) never
// matches. Known limitation, kept for quote reproducibility.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type LocationConditionType string

const (
	LocationDistance    LocationConditionType = "distance"
	LocationCoordinates LocationConditionType = "coordinates"
	LocationZone        LocationConditionType = "zone"
)

// LocationCondition restricts a rule geographically. The distance variant
// matches jobs farther than BeyondMiles from the nearest service hub; the
// coordinates variant matches jobs within RadiusMiles of Center. The zone
// variant is a placeholder that matches everywhere.
type LocationCondition struct {
	Type        LocationConditionType `json:"type"`
	BeyondMiles float64               `json:"value,omitempty"`
	Center      *types.Point          `json:"center,omitempty"`
	RadiusMiles float64               `json:"radius,omitempty"`
	Zone        string                `json:"zone,omitempty"`
}

type UrgencyType string

const (
	UrgencyImmediate   UrgencyType = "immediate"
	UrgencyWithinHours UrgencyType = "within_hours"
	UrgencyScheduled   UrgencyType = "scheduled"
)

type UrgencyCondition struct {
	Type  UrgencyType `json:"type"`
	Hours float64     `json:"hours,omitempty"`
}

// Conditions is the full set of optional clauses a rule may declare. Every
// declared clause must hold for the rule to match; absent clauses are
// vacuously satisfied.
type Conditions struct {
	TimeOfDay    *TimeWindow        `json:"timeOfDay,omitempty"`
	DaysOfWeek   []string           `json:"dayOfWeek,omitempty"`
	Location     *LocationCondition `json:"location,omitempty"`
	Urgency      *UrgencyCondition  `json:"urgency,omitempty"`
	CustomerType string             `json:"customerType,omitempty"`
	FleetTier    string             `json:"fleetTier,omitempty"`
	ServiceTypes []types.ID         `json:"serviceType,omitempty"`
}

// ParseConditions decodes a stored conditions payload. A missing or malformed
// payload yields nil, which the evaluator treats as never matching.
func ParseConditions(raw []byte) *Conditions {
	if len(raw) == 0 {
		return nil
	}
	var c *Conditions
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	return c
}

// PricingRule adjusts the running total when its conditions match. A rule may
// carry a multiplier, a fixed amount, or both.
type PricingRule struct {
	ID          types.ID    `json:"id"`
	Name        string      `json:"name"`
	Type        RuleType    `json:"ruleType"`
	Conditions  *Conditions `json:"conditions,omitempty"`
	Multiplier  *float64    `json:"multiplier,omitempty"`
	FixedAmount *float64    `json:"fixedAmount,omitempty"`
	Priority    int         `json:"priority"`
	IsActive    bool        `json:"isActive"`
	StartDate   *time.Time  `json:"startDate,omitempty"`
	EndDate     *time.Time  `json:"endDate,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// FleetOverride is a contractual adjustment for one (fleet, service type)
// pair. A flat rate replaces the computed total outright and wins over a
// discount percentage when both are set.
type FleetOverride struct {
	FleetAccountID  types.ID `json:"fleetAccountId"`
	ServiceTypeID   types.ID `json:"serviceTypeId"`
	FlatRate        *float64 `json:"flatRateOverride,omitempty"`
	DiscountPercent *float64 `json:"discountPercentage,omitempty"`
}

type FleetAccount struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
	Tier string   `json:"pricingTier"`
}

// QuoteContext is a single pricing request.
type QuoteContext struct {
	JobType       JobType     `json:"jobType"`
	ServiceTypeID types.ID    `json:"serviceTypeId"`
	Location      types.Point `json:"location"`
	ScheduledFor  *time.Time  `json:"scheduledFor,omitempty"`
	CustomerID    types.ID    `json:"customerId,omitempty"`
	FleetID       *types.ID   `json:"fleetAccountId,omitempty"`
	VehicleCount  int         `json:"vehicleCount,omitempty"`
	DurationMin   *float64    `json:"estimatedDuration,omitempty"`
	DistanceMiles *float64    `json:"estimatedDistance,omitempty"`
	ReferralCode  string      `json:"referralCode,omitempty"`
	IsFirstTime   bool        `json:"isFirstTime,omitempty"`
	LoyaltyPoints int         `json:"loyaltyPoints,omitempty"`
}

// RuleApplied logs one rule's effect on a quote. Never mutated after creation.
type RuleApplied struct {
	RuleID      types.ID `json:"ruleId"`
	RuleName    string   `json:"ruleName"`
	RuleType    RuleType `json:"ruleType"`
	Multiplier  *float64 `json:"multiplier,omitempty"`
	FixedAmount *float64 `json:"fixedAmount,omitempty"`
	Impact      float64  `json:"impact"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Breakdown is the full result of one price computation.
type Breakdown struct {
	BasePrice      float64       `json:"basePrice"`
	DistanceCharge *float64      `json:"distanceCharge,omitempty"`
	TimeCharge     *float64      `json:"timeCharge,omitempty"`
	RulesApplied   []RuleApplied `json:"rulesApplied"`
	Subtotal       float64       `json:"subtotal"`
	SurgeAmount    *float64      `json:"surgeAmount,omitempty"`
	DiscountAmount *float64      `json:"discountAmount,omitempty"`
	TaxAmount      float64       `json:"taxAmount"`
	TotalAmount    float64       `json:"totalAmount"`
	Confidence     Confidence    `json:"confidence"`
	PriceRange     *PriceRange   `json:"priceRange,omitempty"`
	ExpiresAt      time.Time     `json:"expiresAt"`
	Locked         bool          `json:"locked"`
}

// RuleEffectiveness aggregates how often a rule fired and what it did to quotes.
type RuleEffectiveness struct {
	RuleID        types.ID `json:"ruleId"`
	TimesApplied  int      `json:"timesApplied"`
	AverageImpact float64  `json:"averageImpact"`
}

// Analytics is the aggregate report over audited quotes in a window.
type Analytics struct {
	AveragePrice      float64             `json:"averagePrice"`
	QuoteCount        int                 `json:"quoteCount"`
	RuleEffectiveness []RuleEffectiveness `json:"ruleEffectiveness"`
	SurgeFrequency    float64             `json:"surgeFrequency"`
	PriceElasticity   float64             `json:"priceElasticity"`
}

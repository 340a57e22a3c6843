// README: Rule condition evaluation against a quote context.
package pricing

import (
	"strings"
	"time"

	"roadcall/internal/geo"
)

// ruleMatches reports whether every condition a rule declares holds for the
// given context at the given instant. fleetTier is the pricing tier of the
// context's fleet account, empty when there is none.
//
// A rule with no conditions payload never matches: rules are opt-in and a
// missing or unparseable payload is treated as misconfiguration, not as
// "match everything".
func ruleMatches(rule PricingRule, q QuoteContext, fleetTier string, now time.Time) bool {
	if !rule.IsActive {
		return false
	}
	if rule.StartDate != nil && now.Before(*rule.StartDate) {
		return false
	}
	if rule.EndDate != nil && now.After(*rule.EndDate) {
		return false
	}

	c := rule.Conditions
	if c == nil {
		return false
	}

	if c.TimeOfDay != nil && !timeOfDayMatches(*c.TimeOfDay, now) {
		return false
	}
	if len(c.DaysOfWeek) > 0 && !containsFold(c.DaysOfWeek, now.Weekday().String()) {
		return false
	}
	if c.Location != nil && !locationMatches(*c.Location, q) {
		return false
	}
	if c.Urgency != nil && !urgencyMatches(*c.Urgency, q, now) {
		return false
	}
	if c.CustomerType != "" && !customerTypeMatches(c.CustomerType, q) {
		return false
	}
	if c.FleetTier != "" && c.FleetTier != fleetTier {
		return false
	}
	if len(c.ServiceTypes) > 0 {
		found := false
		for _, st := range c.ServiceTypes {
			if st == q.ServiceTypeID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// timeOfDayMatches compares now's local HH:MM lexically against the window.
// Windows crossing midnight never match under this comparison; see TimeWindow.
func timeOfDayMatches(w TimeWindow, now time.Time) bool {
	hhmm := now.Format("15:04")
	return w.Start <= hhmm && hhmm <= w.End
}

func locationMatches(lc LocationCondition, q QuoteContext) bool {
	switch lc.Type {
	case LocationDistance:
		return geo.NearestHubMiles(q.Location) > lc.BeyondMiles
	case LocationCoordinates:
		if lc.Center == nil {
			return false
		}
		return geo.WithinRadius(*lc.Center, q.Location, lc.RadiusMiles)
	case LocationZone:
		// Zone resolution is not implemented; the clause matches everywhere.
		return true
	default:
		return false
	}
}

func urgencyMatches(u UrgencyCondition, q QuoteContext, now time.Time) bool {
	switch u.Type {
	case UrgencyImmediate, UrgencyWithinHours:
		return q.JobType == JobEmergency
	case UrgencyScheduled:
		if q.JobType != JobScheduled || q.ScheduledFor == nil {
			return false
		}
		return q.ScheduledFor.Sub(now).Hours() > u.Hours
	default:
		return false
	}
}

func customerTypeMatches(customerType string, q QuoteContext) bool {
	switch customerType {
	case "new":
		return q.IsFirstTime
	case "fleet":
		return !q.IsFirstTime && q.FleetID != nil
	default:
		// Any other declared segment excludes first-time customers.
		return !q.IsFirstTime
	}
}

func containsFold(days []string, day string) bool {
	for _, d := range days {
		if strings.EqualFold(d, day) {
			return true
		}
	}
	return false
}

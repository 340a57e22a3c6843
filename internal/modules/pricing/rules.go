// README: Rule impact computation and priority ordering.
package pricing

import "sort"

// applyRule computes a matched rule's impact against the running total.
// Effects compound: the multiplier applies to the total as adjusted by every
// previously applied rule, then any fixed amount is added. The combined
// impact is capped at twice the running total to stop runaway stacking.
func applyRule(rule PricingRule, runningTotal float64) float64 {
	var impact float64
	if rule.Multiplier != nil {
		impact = runningTotal * (*rule.Multiplier - 1)
	}
	if rule.FixedAmount != nil {
		impact += *rule.FixedAmount
	}
	if limit := 2 * runningTotal; impact > limit {
		impact = limit
	}
	return impact
}

// sortRulesByPriority orders rules by descending priority. The sort is
// stable, so equal priorities keep the store's ordering (priority DESC,
// created_at, id), making the tie-break deterministic end to end.
func sortRulesByPriority(rules []PricingRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
}

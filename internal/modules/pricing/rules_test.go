package pricing

import (
	"math"
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestApplyRule(t *testing.T) {
	cases := []struct {
		name         string
		multiplier   *float64
		fixedAmount  *float64
		runningTotal float64
		want         float64
	}{
		{"multiplier only", fptr(1.5), nil, 100, 50},
		{"discount multiplier", fptr(0.9), nil, 100, -10},
		{"fixed only", nil, fptr(25), 100, 25},
		{"multiplier then fixed", fptr(1.5), fptr(10), 100, 60},
		{"no effect fields", nil, nil, 100, 0},
		// The cap applies to the combined impact, not the multiplier term alone.
		{"combined impact capped", fptr(2.5), fptr(80), 100, 200},
		{"huge multiplier capped", fptr(10), nil, 100, 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := PricingRule{Multiplier: tc.multiplier, FixedAmount: tc.fixedAmount}
			got := applyRule(rule, tc.runningTotal)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("applyRule = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSortRulesByPriority(t *testing.T) {
	rules := []PricingRule{
		{ID: "low", Priority: 10},
		{ID: "tied-first", Priority: 50},
		{ID: "tied-second", Priority: 50},
		{ID: "high", Priority: 100},
	}
	sortRulesByPriority(rules)

	want := []string{"high", "tied-first", "tied-second", "low"}
	for i, id := range want {
		if string(rules[i].ID) != id {
			t.Fatalf("position %d: got %s, want %s", i, rules[i].ID, id)
		}
	}
}

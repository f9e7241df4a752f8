// Package pricing holds the service price table and its stateless evaluator.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind selects the formula used to price a service.
type Kind int

const (
	// Fixed is a constant price, no user input needed.
	Fixed Kind = iota
	// Percent adds a percentage fee on top of a user-supplied base amount.
	Percent
	// RegionAdjusted discounts the fee in the home region and surcharges
	// everywhere else, both by the same percentage.
	RegionAdjusted
	// TieredPercent picks the fee percentage from amount bands, decreasing
	// as the amount grows.
	TieredPercent
	// QuoteNeeded means no formula applies and a human has to follow up.
	QuoteNeeded
)

// Tier is one closed-upper-bound amount band: amounts up to and including
// UpTo pay Pct.
type Tier struct {
	UpTo decimal.Decimal
	Pct  decimal.Decimal
}

// Rule is the pricing strategy for one service key.
type Rule struct {
	Kind   Kind
	Amount decimal.Decimal // Fixed: the constant price
	Pct    decimal.Decimal // Percent/RegionAdjusted: the fee; TieredPercent: floor above the last tier
	Tiers  []Tier          // TieredPercent only, sorted by UpTo ascending
}

// Quote is the evaluation result. Priced is false when the inputs were
// insufficient or the rule needs a human quote.
type Quote struct {
	Price  decimal.Decimal
	Priced bool
	Note   string
}

// Table maps service keys to pricing rules.
type Table map[string]Rule

// homeRegions are the aliases matched case-insensitively against the region
// input to pick the domestic discount branch.
var homeRegions = map[string]bool{
	"ir":       true,
	"iran":     true,
	"domestic": true,
	"home":     true,
}

// IsHomeRegion reports whether the given region tag counts as domestic.
func IsHomeRegion(region string) bool {
	return homeRegions[strings.ToLower(strings.TrimSpace(region))]
}

// Kind returns the rule kind for a key. Unknown keys are quote-only.
func (t Table) Kind(key string) Kind {
	rule, ok := t[key]
	if !ok {
		return QuoteNeeded
	}
	return rule.Kind
}

// Evaluate prices a service. base may be nil when no amount was chosen yet;
// region may be empty, which counts as "not the home region". Lookups never
// fail: unknown keys degrade to quote-needed semantics.
//
// Monetary results are rounded to 2 decimal places, half away from zero
// (half-up for the positive amounts handled here).
func (t Table) Evaluate(key string, base *decimal.Decimal, region string) Quote {
	rule, ok := t[key]
	if !ok {
		rule = Rule{Kind: QuoteNeeded}
	}

	switch rule.Kind {
	case Fixed:
		return Quote{Price: round2(rule.Amount), Priced: true, Note: "fixed price"}

	case Percent:
		if base == nil {
			return Quote{Note: "amount required"}
		}
		return Quote{
			Price:  applyPct(*base, rule.Pct),
			Priced: true,
			Note:   fmt.Sprintf("includes %s%% service fee", rule.Pct.String()),
		}

	case RegionAdjusted:
		if base == nil {
			return Quote{Note: "amount required"}
		}
		if IsHomeRegion(region) {
			return Quote{
				Price:  applyPct(*base, rule.Pct.Neg()),
				Priced: true,
				Note:   fmt.Sprintf("%s%% domestic discount applied", rule.Pct.String()),
			}
		}
		return Quote{
			Price:  applyPct(*base, rule.Pct),
			Priced: true,
			Note:   fmt.Sprintf("%s%% international surcharge applied", rule.Pct.String()),
		}

	case TieredPercent:
		if base == nil {
			return Quote{Note: "amount required"}
		}
		pct := rule.Pct
		for _, tier := range rule.Tiers {
			if base.LessThanOrEqual(tier.UpTo) {
				pct = tier.Pct
				break
			}
		}
		return Quote{
			Price:  applyPct(*base, pct),
			Priced: true,
			Note:   fmt.Sprintf("%s%% fee tier", pct.String()),
		}

	default:
		return Quote{Note: "quote required"}
	}
}

func applyPct(base, pct decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return round2(base.Mul(hundred.Add(pct)).Div(hundred))
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

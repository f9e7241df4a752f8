package pricing

import "github.com/shopspring/decimal"

// DefaultTable is the live catalog: gift cards carry a flat percentage fee,
// prepaid cards a tiered one, university fees depend on the payer's region,
// and the quote-only services go straight to the operator.
func DefaultTable() Table {
	return Table{
		"apple_gift":    {Kind: Percent, Pct: dec(5)},
		"google_play":   {Kind: Percent, Pct: dec(5)},
		"playstation":   {Kind: Percent, Pct: dec(6)},
		"saas_purchase": {Kind: Percent, Pct: dec(8)},

		"prepaid_card": {
			Kind: TieredPercent,
			Pct:  dec(5), // above the last tier
			Tiers: []Tier{
				{UpTo: dec(20), Pct: dec(10)},
				{UpTo: dec(50), Pct: dec(9)},
				{UpTo: dec(100), Pct: dec(8)},
				{UpTo: dec(200), Pct: dec(6)},
			},
		},

		"university_fee": {Kind: RegionAdjusted, Pct: dec(5)},

		"paypal":        {Kind: Fixed, Amount: dec(25)},
		"wise":          {Kind: Fixed, Amount: dec(30)},
		"mastercard_tr": {Kind: Fixed, Amount: dec(45)},

		"wirex":        {Kind: QuoteNeeded},
		"flight_hotel": {Kind: QuoteNeeded},
		"fx_to_rial":   {Kind: QuoteNeeded},
		"special":      {Kind: QuoteNeeded},
	}
}

func dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

package menu

import (
	"github.com/shopspring/decimal"

	"asllpay-bot/internal/order"
)

// Group is one top-level service category on the home screen.
type Group struct {
	Key      string
	Title    string
	Blurb    string
	Services []order.Service
}

// Catalog is the sellable service tree: gift cards, international accounts,
// foreign-currency payments and the bespoke bucket.
func Catalog() []Group {
	return []Group{
		{
			Key:   "gift_cards",
			Title: "💳 Gift Cards",
			Blurb: "Pick one of the gift cards below:",
			Services: []order.Service{
				{Key: "apple_gift", Title: "Apple Gift Card", Denominations: denoms(10, 25, 50, 100, 200)},
				{Key: "google_play", Title: "Google Play", Denominations: denoms(10, 25, 50, 100)},
				{Key: "playstation", Title: "PlayStation", Denominations: denoms(10, 25, 50, 100)},
				{Key: "prepaid_card", Title: "Prepaid Master/Visa", Denominations: denoms(20, 50, 100, 200, 500)},
			},
		},
		{
			Key:   "accounts",
			Title: "🏦 International Accounts",
			Blurb: "Which account do you need?",
			Services: []order.Service{
				{Key: "paypal", Title: "PayPal"},
				{Key: "wirex", Title: "Wirex"},
				{Key: "mastercard_tr", Title: "MasterCard 🇹🇷"},
				{Key: "wise", Title: "Wise (TransferWise)"},
			},
		},
		{
			Key:   "payments",
			Title: "💵 Currency Payments",
			Blurb: "Choose the payment type:",
			Services: []order.Service{
				{Key: "university_fee", Title: "University Tuition", NeedsRegion: true, Denominations: denoms(250, 500, 1000, 2000)},
				{Key: "saas_purchase", Title: "SaaS Subscriptions", Denominations: denoms(10, 20, 50, 100)},
				{Key: "flight_hotel", Title: "Flights / Hotels"},
				{Key: "fx_to_rial", Title: "FX Income to Rial"},
			},
		},
		{
			Key:   "special",
			Title: "✨ Special Services",
			Blurb: "Income conversion, virtual cards and bespoke requests:",
			Services: []order.Service{
				{Key: "special", Title: "Special Services"},
			},
		},
	}
}

func denoms(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

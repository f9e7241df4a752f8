// Package order implements the per-screen order session: the state machine
// that walks a user from region and amount selection to a confirmed order,
// and the in-memory log of confirmed orders.
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"asllpay-bot/internal/pricing"
)

// Mode is the session's display mode.
type Mode int

const (
	PickingRegion Mode = iota
	PickingAmount
	Summarizing
	Done
)

// Region is the coarse geographic tag affecting region-adjusted prices.
type Region int

const (
	RegionNone Region = iota
	RegionDomestic
	RegionIntl
)

// Label is the user-facing form; "—" stands for "not applicable".
func (r Region) Label() string {
	switch r {
	case RegionDomestic:
		return "Iran"
	case RegionIntl:
		return "International"
	default:
		return "—"
	}
}

// tag is the value handed to the pricing evaluator.
func (r Region) tag() string {
	switch r {
	case RegionDomestic:
		return "iran"
	case RegionIntl:
		return "intl"
	default:
		return ""
	}
}

// Identity is what the flow knows about the acting user at confirmation time.
type Identity struct {
	ChatID      int64
	DisplayName string
	Handle      string
}

// Confirmation is the snapshot taken when the user reports payment. It is
// copied out of the session before any further mutation, since notification
// runs in the background.
type Confirmation struct {
	ServiceKey string
	Service    string
	Region     string
	Amount     string
	Total      string
	Note       string
	User       Identity
	At         time.Time
}

// Notifier receives confirmed orders. Enqueue must not block the caller.
type Notifier interface {
	Enqueue(Confirmation)
}

// Fanout delivers a confirmation to several notifiers in order.
type Fanout []Notifier

func (f Fanout) Enqueue(c Confirmation) {
	for _, n := range f {
		n.Enqueue(c)
	}
}

// Service is the static configuration a session is created from.
type Service struct {
	Key           string
	Title         string
	Extra         string // optional explanatory text shown on the screen
	Denominations []decimal.Decimal
	NeedsRegion   bool
}

// Session is one in-progress order for one opened service screen. Sessions
// are not shared: the host delivers one button press or text message at a
// time, so no locking happens here.
type Session struct {
	svc      Service
	table    pricing.Table
	account  string
	notifier Notifier

	mode   Mode
	region Region
	amount *decimal.Decimal
	price  *decimal.Decimal
	note   string
}

// NewSession builds a session in its initial mode. Fixed and quote-only
// rules need no input, so they evaluate immediately and start at the
// summary; amount-bearing rules start by asking for a region when the
// service needs one, otherwise for an amount.
func NewSession(svc Service, table pricing.Table, account string, n Notifier) *Session {
	s := &Session{svc: svc, table: table, account: account, notifier: n}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.region = RegionNone
	s.amount = nil
	s.price = nil
	s.note = ""

	switch s.table.Kind(s.svc.Key) {
	case pricing.Fixed, pricing.QuoteNeeded:
		s.storeQuote(s.table.Evaluate(s.svc.Key, nil, ""))
		s.mode = Summarizing
	default:
		if s.svc.NeedsRegion {
			s.mode = PickingRegion
		} else {
			s.mode = PickingAmount
		}
	}
}

func (s *Session) storeQuote(q pricing.Quote) {
	if q.Priced {
		p := q.Price
		s.price = &p
	} else {
		s.price = nil
	}
	s.note = q.Note
}

// Mode reports the current display mode.
func (s *Session) Mode() Mode { return s.mode }

// AwaitingText reports whether free-form chat text should be routed here.
func (s *Session) AwaitingText() bool {
	return s.mode == PickingRegion || s.mode == PickingAmount
}

// ChooseRegion sets the region. Available only while the region is unset.
func (s *Session) ChooseRegion(r Region) string {
	if s.mode != PickingRegion || r == RegionNone {
		return "Region is already set."
	}
	s.region = r
	s.mode = PickingAmount
	return fmt.Sprintf("Region set: %s", r.Label())
}

// ChooseAmount stores the amount and prices the order in one step, so the
// host never observes an amount without its price.
func (s *Session) ChooseAmount(amt decimal.Decimal) string {
	if s.mode == PickingRegion {
		return "Please choose a region first."
	}
	if s.mode != PickingAmount {
		return "The amount is already chosen."
	}
	if !amt.IsPositive() {
		return "The amount has to be positive."
	}

	q := s.table.Evaluate(s.svc.Key, &amt, s.region.tag())
	a := amt
	s.amount = &a
	s.storeQuote(q)
	s.mode = Summarizing

	if s.price != nil {
		return fmt.Sprintf("Total: $%s", s.price.StringFixed(2))
	}
	return "We'll get back to you with a quote."
}

// ConfirmPaid snapshots the order, hands it to the notifier, and moves to
// the terminal mode. It never waits for the notification to be delivered.
// Re-confirming a finished order is acknowledged but not re-notified.
func (s *Session) ConfirmPaid(user Identity) string {
	if s.mode == Done {
		return "This order is already recorded."
	}
	if s.mode != Summarizing {
		return "Nothing to confirm yet."
	}

	c := Confirmation{
		ServiceKey: s.svc.Key,
		Service:    s.svc.Title,
		Region:     s.region.Label(),
		Amount:     s.amountText(),
		Total:      s.totalText(),
		Note:       s.note,
		User:       user,
		At:         time.Now(),
	}
	s.notifier.Enqueue(c)
	s.mode = Done

	return "Thank you! The operator has been notified and will verify your payment shortly."
}

// NotPaid resets the whole selection; re-entry asks for the region again
// when the service needs one.
func (s *Session) NotPaid() string {
	if s.mode != Summarizing {
		return "There is nothing to put on hold."
	}
	s.reset()
	return "No rush — come back once the transfer is done."
}

// HandleText parses free-form chat text as a currency amount. Parse failures
// re-prompt without touching the session state.
func (s *Session) HandleText(text string) string {
	if s.mode == PickingRegion {
		return "Please choose a region first."
	}
	if s.mode != PickingAmount {
		return "Use the buttons on the order screen."
	}
	amt, err := ParseAmount(text)
	if err != nil {
		return "Couldn't read that amount. Send a number like 25 or $25."
	}
	return s.ChooseAmount(amt)
}

// ParseAmount reads a user-typed currency amount: symbols, thousands
// separators and a trailing currency code are tolerated.
func ParseAmount(text string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.Trim(cleaned, "$€£")
	cleaned = strings.TrimSuffix(strings.ToLower(cleaned), "usd")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	amt, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", text, err)
	}
	if !amt.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount %q is not positive", text)
	}
	return amt, nil
}

func (s *Session) amountText() string {
	if s.amount == nil {
		return "—"
	}
	return "$" + s.amount.StringFixed(2)
}

func (s *Session) totalText() string {
	if s.price == nil {
		return "pending quote"
	}
	return "$" + s.price.StringFixed(2)
}

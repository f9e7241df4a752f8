package order

import (
	"fmt"
	"strings"
)

// Button is one inline button the host should attach to the screen.
type Button struct {
	Label string
	Data  string
}

// Action tags dispatched by the host. The session is driven exclusively
// through these named transitions, never through opaque callbacks.
const (
	ActionRegionDomestic = "ord:region:ir"
	ActionRegionIntl     = "ord:region:intl"
	ActionAmountPrefix   = "ord:amt:"
	ActionCustomAmount   = "ord:custom"
	ActionConfirmPaid    = "ord:paid"
	ActionNotPaid        = "ord:notyet"
)

// HandleAction dispatches a tagged button press to the matching transition
// and returns the short acknowledgement to show the user. Unknown tags
// return an empty string.
func (s *Session) HandleAction(data string, user Identity) string {
	switch {
	case data == ActionRegionDomestic:
		return s.ChooseRegion(RegionDomestic)
	case data == ActionRegionIntl:
		return s.ChooseRegion(RegionIntl)
	case strings.HasPrefix(data, ActionAmountPrefix):
		amt, err := ParseAmount(strings.TrimPrefix(data, ActionAmountPrefix))
		if err != nil {
			return "Unknown amount."
		}
		return s.ChooseAmount(amt)
	case data == ActionCustomAmount:
		return "Type any amount in the chat, e.g. 37 or $37."
	case data == ActionConfirmPaid:
		return s.ConfirmPaid(user)
	case data == ActionNotPaid:
		return s.NotPaid()
	}
	return ""
}

// Render produces the screen body and button layout for the current state.
// It reads the session without mutating it, so the host may call it any
// number of times.
func (s *Session) Render() (string, [][]Button) {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* — order\n", s.svc.Title)
	if s.svc.Extra != "" {
		fmt.Fprintf(&b, "\n%s\n", s.svc.Extra)
	}
	b.WriteString("\n")

	if s.svc.NeedsRegion {
		fmt.Fprintf(&b, "Region: %s\n", s.region.Label())
	}
	fmt.Fprintf(&b, "Amount: %s\n", s.amountText())

	switch s.mode {
	case PickingRegion:
		b.WriteString("\nWhere will this be used? Choose a region:")
		return b.String(), [][]Button{
			{
				{Label: "🇮🇷 Iran", Data: ActionRegionDomestic},
				{Label: "🌍 International", Data: ActionRegionIntl},
			},
			{{Label: "✏️ Custom amount", Data: ActionCustomAmount}},
		}

	case PickingAmount:
		b.WriteString("\nPick an amount or type your own:")
		return b.String(), append(s.amountRows(), []Button{
			{Label: "✏️ Custom amount", Data: ActionCustomAmount},
		})

	case Summarizing:
		s.writeSummary(&b)
		return b.String(), [][]Button{
			{
				{Label: "✅ I've paid", Data: ActionConfirmPaid},
				{Label: "⏳ Not yet", Data: ActionNotPaid},
			},
		}

	default: // Done
		b.WriteString("\n✅ Payment reported. The operator will verify it and follow up here.")
		return b.String(), nil
	}
}

func (s *Session) writeSummary(b *strings.Builder) {
	fmt.Fprintf(b, "Total: %s\n", s.totalText())
	if s.note != "" {
		fmt.Fprintf(b, "_%s_\n", s.note)
	}
	if s.price != nil {
		account := s.account
		if account == "" {
			account = "the account our support shares with you"
		}
		fmt.Fprintf(b, "\nSend the exact total to `%s` and attach proof of payment, then press \"I've paid\".", account)
	} else {
		b.WriteString("\nNo formula covers this order — press \"I've paid\" after the operator quotes you, or contact support for a manual quote.")
	}
}

// amountRows lays the configured denominations out three per row.
func (s *Session) amountRows() [][]Button {
	var rows [][]Button
	var row []Button
	for _, d := range s.svc.Denominations {
		row = append(row, Button{
			Label: "$" + d.String(),
			Data:  ActionAmountPrefix + d.String(),
		})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

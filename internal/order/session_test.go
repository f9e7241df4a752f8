package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asllpay-bot/internal/pricing"
)

type captureNotifier struct {
	got []Confirmation
}

func (c *captureNotifier) Enqueue(conf Confirmation) {
	c.got = append(c.got, conf)
}

func testTable() pricing.Table {
	return pricing.Table{
		"gift":    {Kind: pricing.Percent, Pct: decimal.NewFromInt(5)},
		"tuition": {Kind: pricing.RegionAdjusted, Pct: decimal.NewFromInt(5)},
		"account": {Kind: pricing.Fixed, Amount: decimal.NewFromInt(25)},
	}
}

func giftService() Service {
	return Service{
		Key:           "gift",
		Title:         "Gift Card",
		Denominations: []decimal.Decimal{decimal.NewFromInt(10), decimal.NewFromInt(25)},
	}
}

func tuitionService() Service {
	return Service{Key: "tuition", Title: "University Fee", NeedsRegion: true}
}

func TestInitialModes(t *testing.T) {
	table := testTable()
	n := &captureNotifier{}

	assert.Equal(t, PickingAmount, NewSession(giftService(), table, "acct", n).Mode())
	assert.Equal(t, PickingRegion, NewSession(tuitionService(), table, "acct", n).Mode())

	fixed := NewSession(Service{Key: "account", Title: "PayPal"}, table, "acct", n)
	assert.Equal(t, Summarizing, fixed.Mode())

	unknown := NewSession(Service{Key: "mystery", Title: "Mystery"}, table, "acct", n)
	assert.Equal(t, Summarizing, unknown.Mode())
}

func TestRegionThenAmountFlow(t *testing.T) {
	s := NewSession(tuitionService(), testTable(), "IR-123", &captureNotifier{})

	ack := s.ChooseRegion(RegionDomestic)
	assert.Equal(t, "Region set: Iran", ack)
	assert.Equal(t, PickingAmount, s.Mode())

	ack = s.ChooseAmount(decimal.NewFromInt(100))
	assert.Equal(t, "Total: $95.00", ack)
	assert.Equal(t, Summarizing, s.Mode())

	body, buttons := s.Render()
	assert.Contains(t, body, "Region: Iran")
	assert.Contains(t, body, "Total: $95.00")
	assert.Contains(t, body, "IR-123")
	require.Len(t, buttons, 1)
	require.Len(t, buttons[0], 2)
	assert.Equal(t, ActionConfirmPaid, buttons[0][0].Data)
	assert.Equal(t, ActionNotPaid, buttons[0][1].Data)
}

func TestRegionUnsetTakesSurchargePath(t *testing.T) {
	s := NewSession(Service{Key: "tuition", Title: "University Fee"}, testTable(), "", &captureNotifier{})

	// No region step configured: evaluation treats the region as "not home".
	s.ChooseAmount(decimal.NewFromInt(100))

	body, _ := s.Render()
	assert.Contains(t, body, "Total: $105.00")
}

func TestAmountAndPriceSetAtomically(t *testing.T) {
	s := NewSession(giftService(), testTable(), "", &captureNotifier{})

	assert.Nil(t, s.amount)
	assert.Nil(t, s.price)

	s.ChooseAmount(decimal.NewFromInt(40))

	require.NotNil(t, s.amount)
	require.NotNil(t, s.price)
	assert.Equal(t, "42", s.price.String())
}

func TestNotPaidResetsEverything(t *testing.T) {
	s := NewSession(tuitionService(), testTable(), "", &captureNotifier{})
	s.ChooseRegion(RegionIntl)
	s.ChooseAmount(decimal.NewFromInt(100))
	require.Equal(t, Summarizing, s.Mode())

	ack := s.NotPaid()

	assert.Equal(t, "No rush — come back once the transfer is done.", ack)
	assert.Equal(t, PickingRegion, s.Mode())
	assert.Equal(t, RegionNone, s.region)
	assert.Nil(t, s.amount)
	assert.Nil(t, s.price)
	assert.Empty(t, s.note)
}

func TestConfirmSnapshotsAndBlocksDuplicates(t *testing.T) {
	n := &captureNotifier{}
	s := NewSession(tuitionService(), testTable(), "", n)
	s.ChooseRegion(RegionDomestic)
	s.ChooseAmount(decimal.NewFromInt(100))

	user := Identity{ChatID: 42, DisplayName: "Sara", Handle: "sara_pays"}
	ack := s.ConfirmPaid(user)

	assert.Contains(t, ack, "operator has been notified")
	assert.Equal(t, Done, s.Mode())
	require.Len(t, n.got, 1)
	c := n.got[0]
	assert.Equal(t, "University Fee", c.Service)
	assert.Equal(t, "Iran", c.Region)
	assert.Equal(t, "$100.00", c.Amount)
	assert.Equal(t, "$95.00", c.Total)
	assert.Equal(t, user, c.User)
	assert.False(t, c.At.IsZero())

	// Pressing the button again must not ping the operator twice.
	again := s.ConfirmPaid(user)
	assert.Equal(t, "This order is already recorded.", again)
	assert.Len(t, n.got, 1)
}

func TestConfirmWithoutRegionReportsDash(t *testing.T) {
	n := &captureNotifier{}
	s := NewSession(giftService(), testTable(), "", n)
	s.ChooseAmount(decimal.NewFromInt(10))
	s.ConfirmPaid(Identity{})

	require.Len(t, n.got, 1)
	assert.Equal(t, "—", n.got[0].Region)
}

func TestHandleText(t *testing.T) {
	t.Run("plain and symbol-prefixed amounts parse", func(t *testing.T) {
		for _, input := range []string{"37", "$37"} {
			s := NewSession(giftService(), testTable(), "", &captureNotifier{})
			s.HandleText(input)
			require.NotNil(t, s.amount, input)
			assert.Equal(t, "37", s.amount.String(), input)
		}
	})

	t.Run("garbage re-prompts without mutating", func(t *testing.T) {
		s := NewSession(giftService(), testTable(), "", &captureNotifier{})
		reply := s.HandleText("abc")
		assert.Contains(t, reply, "Couldn't read that amount")
		assert.Equal(t, PickingAmount, s.Mode())
		assert.Nil(t, s.amount)
	})

	t.Run("region must come first", func(t *testing.T) {
		s := NewSession(tuitionService(), testTable(), "", &captureNotifier{})
		reply := s.HandleText("37")
		assert.Equal(t, "Please choose a region first.", reply)
		assert.Equal(t, PickingRegion, s.Mode())
	})
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"37", "37", true},
		{"$37", "37", true},
		{" $1,250.50 ", "1250.5", true},
		{"40 USD", "40", true},
		{"abc", "", false},
		{"-5", "", false},
		{"0", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got.String(), tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}

func TestRenderIsPure(t *testing.T) {
	s := NewSession(giftService(), testTable(), "", &captureNotifier{})

	body1, buttons1 := s.Render()
	body2, buttons2 := s.Render()

	assert.Equal(t, body1, body2)
	assert.Equal(t, buttons1, buttons2)
	assert.Equal(t, PickingAmount, s.Mode())

	// Amount buttons plus the custom-amount affordance while picking.
	require.Len(t, buttons1, 2)
	assert.Equal(t, ActionAmountPrefix+"10", buttons1[0][0].Data)
	assert.Equal(t, ActionCustomAmount, buttons1[1][0].Data)
}

func TestLogAssignsIDs(t *testing.T) {
	l := NewLog()
	l.Enqueue(Confirmation{Service: "Gift Card", Total: "$42.00", User: Identity{ChatID: 7}})

	recs := l.Records()
	require.Len(t, recs, 1)
	assert.NotEmpty(t, recs[0].ID)
	assert.Equal(t, int64(7), recs[0].UserID)
}

package menu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asllpay-bot/internal/order"
	"asllpay-bot/internal/pricing"
)

func TestCatalogKeysAreUniqueAndPriceable(t *testing.T) {
	table := pricing.DefaultTable()
	seen := map[string]bool{}

	for _, g := range Catalog() {
		require.NotEmpty(t, g.Services, g.Key)
		for _, svc := range g.Services {
			assert.False(t, seen[svc.Key], "duplicate key %s", svc.Key)
			seen[svc.Key] = true

			// Region selection only makes sense for region-adjusted rules.
			if svc.NeedsRegion {
				assert.Equal(t, pricing.RegionAdjusted, table.Kind(svc.Key), svc.Key)
			}
			// Amount buttons imply an amount-bearing rule.
			if len(svc.Denominations) > 0 {
				assert.NotEqual(t, pricing.Fixed, table.Kind(svc.Key), svc.Key)
			}
		}
	}
}

func TestLoadTextFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "paypal_desc.txt"), []byte("PayPal setup.\n"), 0o644))

	assert.Equal(t, "PayPal setup.", Description(dir, "paypal"))
	assert.Equal(t, missingText, Description(dir, "wirex"))
	assert.Equal(t, missingText, Details(dir, "paypal"))
}

func TestBuildMarkup(t *testing.T) {
	markup := buildMarkup([][]order.Button{
		{{Label: "$10", Data: "ord:amt:10"}, {Label: "$25", Data: "ord:amt:25"}},
		{{Label: "✏️ Custom amount", Data: order.ActionCustomAmount}},
	})

	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 2)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "ord:amt:10", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, order.ActionCustomAmount, *markup.InlineKeyboard[1][0].CallbackData)
}

package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/erp/client/internal/domain/inventory"
	"github.com/erp/client/internal/testutil"
)

func TestItems_UpdateAndDelete(t *testing.T) {
	api := testutil.StartMockAPI(t)
	env := api.Env(t, api.Login(t, "admin"))
	ctx := context.Background()

	items, err := UseItems(env)
	require.NoError(t, err)

	created, err := items.Create(ctx, domain.ItemInput{SKU: "ABC-1", Name: "Widget", Unit: "pcs", UnitPrice: decimal.RequireFromString("9.99")})
	require.NoError(t, err)
	assert.True(t, created.UnitPrice.Equal(decimal.RequireFromString("9.99")))

	updated, err := items.Update(ctx, created.ID, domain.ItemInput{SKU: "ABC-1", Name: "Widget XL", UnitPrice: decimal.NewFromInt(12)})
	require.NoError(t, err)
	assert.Equal(t, "Widget XL", updated.Name)

	require.NoError(t, items.Delete(ctx, created.ID))
	assert.Len(t, items.Items(), testutil.SeedCount)

	_, err = items.Create(ctx, domain.ItemInput{SKU: "NEG", Name: "Broken", UnitPrice: decimal.NewFromInt(-1)})
	assert.EqualError(t, err, "Unit price cannot be negative")
}

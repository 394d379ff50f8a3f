// Package inventory describes stock items. Stock levels and valuation are
// computed by the server.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/erp/client/internal/domain/shared"
)

// Items is the CRUD endpoint set for inventory items
var Items = shared.NewEndpoints("/erp/inventory/items")

// Item is a stock-keeping unit
type Item struct {
	ID        shared.ID       `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type ItemInput struct {
	SKU       string          `json:"sku" validate:"required,max=32"`
	Name      string          `json:"name" validate:"required,max=128"`
	Unit      string          `json:"unit" validate:"max=16"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

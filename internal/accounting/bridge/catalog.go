package bridge

import (
	"context"

	"github.com/shopspring/decimal"
)

// Catalog resolves product costs for cost-of-sales lines. The menu and
// recipe system implements it; a nil catalog means sales post without COGS
// movement.
type Catalog interface {
	// UnitCost returns the recipe or standard cost of one unit of the
	// product. A zero cost with a nil error means the product has no
	// costing and is skipped.
	UnitCost(ctx context.Context, businessID, productID int64) (decimal.Decimal, error)
}

// costOfItems sums quantity times unit cost over the sold items. Items
// without costing contribute nothing.
func costOfItems(ctx context.Context, catalog Catalog, businessID int64, items []SoldItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, it := range items {
		cost, err := catalog.UnitCost(ctx, businessID, it.ProductID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(cost.Mul(it.Quantity))
	}
	return total, nil
}

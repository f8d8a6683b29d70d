package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	// ListItems returns every billing item in SKU order.
	ListItems(ctx context.Context) ([]BillingItem, error)
	// GetItem returns the item for a SKU, or ErrNotFound.
	GetItem(ctx context.Context, sku string) (*BillingItem, error)
	// EnsureSKU creates a stub item (empty name and unit) for the SKU unless
	// one already exists. Safe under concurrent callers.
	EnsureSKU(ctx context.Context, sku string) error
	// UpsertItem updates the supplied fields of an existing item, or inserts
	// a new one.
	UpsertItem(ctx context.Context, req UpsertItemRequest) (*BillingItem, error)
	// CurrentPrices returns the prices whose validity window contains the
	// given instant, ordered by SKU then valid_from.
	CurrentPrices(ctx context.Context, at time.Time) ([]CurrentPrice, error)
	// UpsertPrice appends to or amends the head of an item's price timeline.
	// Returns ErrUnknownSKU for an unconfigured item and ErrPriceOutOfOrder
	// when validFrom predates the latest configured price.
	UpsertPrice(ctx context.Context, sku string, validFrom time.Time, price decimal.Decimal) (*BillingItemPrice, error)
}

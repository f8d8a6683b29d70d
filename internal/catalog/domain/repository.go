package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	FindAllItems(ctx context.Context, db *gorm.DB) ([]BillingItem, error)
	FindItemBySKU(ctx context.Context, db *gorm.DB, sku string) (*BillingItem, error)
	// InsertItemIgnore inserts the item unless one with the same SKU already
	// exists. Returns true iff a row was inserted.
	InsertItemIgnore(ctx context.Context, db *gorm.DB, item *BillingItem) (bool, error)
	UpdateItem(ctx context.Context, db *gorm.DB, item *BillingItem) error

	CurrentPrices(ctx context.Context, db *gorm.DB, at time.Time) ([]CurrentPrice, error)
	FindPrice(ctx context.Context, db *gorm.DB, itemID uuid.UUID, validFrom time.Time) (*BillingItemPrice, error)
	LatestPrice(ctx context.Context, db *gorm.DB, itemID uuid.UUID) (*BillingItemPrice, error)
	InsertPrice(ctx context.Context, db *gorm.DB, price *BillingItemPrice) error
	UpdatePriceAmount(ctx context.Context, db *gorm.DB, priceID uuid.UUID, price decimal.Decimal) error
	ClosePrice(ctx context.Context, db *gorm.DB, priceID uuid.UUID, until time.Time) error
}

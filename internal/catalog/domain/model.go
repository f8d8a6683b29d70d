package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingItem is a thing we sell: a unit of CPU time, a unit of storage, etc.
// Items should be pre-configured, but an event or sample referencing an
// unknown SKU auto-creates a stub with empty name and unit.
type BillingItem struct {
	UUID uuid.UUID `json:"uuid" gorm:"column:uuid;type:uuid;primaryKey"`
	SKU  string    `json:"sku" gorm:"column:sku;type:text;not null;uniqueIndex:ux_billing_items_sku"`
	Name string    `json:"name" gorm:"type:text;not null"`
	Unit string    `json:"unit" gorm:"type:text;not null"`
}

func (BillingItem) TableName() string { return "billing_items" }

// BillingItemPrice is one segment of an item's price timeline. ValidUntil is
// nil for the current price. Closed rows keep valid_until equal to the
// valid_from of their successor. ConfiguredAt records insertion time so the
// history presented to users survives later amendments.
type BillingItemPrice struct {
	UUID         uuid.UUID       `json:"uuid" gorm:"column:uuid;type:uuid;primaryKey"`
	ItemID       uuid.UUID       `json:"item_id" gorm:"column:item_id;type:uuid;not null;index:idx_billing_item_prices_item_from,priority:1"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(20,8);not null"`
	ValidFrom    time.Time       `json:"valid_from" gorm:"not null;index:idx_billing_item_prices_item_from,priority:2"`
	ValidUntil   *time.Time      `json:"valid_until,omitempty"`
	ConfiguredAt time.Time       `json:"configured_at" gorm:"not null"`
}

func (BillingItemPrice) TableName() string { return "billing_item_prices" }

// CurrentPrice is a price row joined with its item's SKU.
type CurrentPrice struct {
	UUID         uuid.UUID       `json:"uuid"`
	ItemID       uuid.UUID       `json:"item_id"`
	SKU          string          `json:"sku"`
	Price        decimal.Decimal `json:"price"`
	ValidFrom    time.Time       `json:"valid_from"`
	ValidUntil   *time.Time      `json:"valid_until,omitempty"`
	ConfiguredAt time.Time       `json:"configured_at"`
}

type UpsertItemRequest struct {
	SKU  string
	Name *string
	Unit *string
}

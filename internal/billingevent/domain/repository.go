package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertFromMessage inserts the event, resolving the item by SKU
	// inside the statement. Returns the uuid when a row was written and
	// nil when the uuid was already present. An unknown SKU surfaces as
	// an integrity violation.
	InsertFromMessage(ctx context.Context, db *gorm.DB, msg *EventMessage) (*uuid.UUID, error)
	// InsertIgnore inserts an already-resolved event unless its uuid is
	// taken. Returns true iff a row was inserted.
	InsertIgnore(ctx context.Context, db *gorm.DB, event *BillingEvent) (bool, error)
	FindByUUID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Event, error)
	// Find returns events matching the query filters in the total order.
	// Aggregation is the caller's concern; Limit <= 0 means unbounded.
	Find(ctx context.Context, db *gorm.DB, q Query) ([]Event, error)
	// LatestEventEnd returns the greatest event_end recorded for the
	// workspace and item, or nil when there is none.
	LatestEventEnd(ctx context.Context, db *gorm.DB, workspace string, itemID uuid.UUID) (*time.Time, error)
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertFromMessage inserts the sample, resolving the item by SKU
	// inside the statement. Returns the uuid when a row was written and
	// nil when the uuid was already present. An unknown SKU surfaces as
	// an integrity violation.
	InsertFromMessage(ctx context.Context, db *gorm.DB, msg *SampleMessage) (*uuid.UUID, error)
	// FindForInterval returns, in sample_time order, the last sample at
	// or before start, every sample strictly inside (start, end), and
	// the first sample at or after end.
	FindForInterval(ctx context.Context, db *gorm.DB, workspace string, itemID uuid.UUID, start, end time.Time) ([]ConsumptionRateSample, error)
	CountForPair(ctx context.Context, db *gorm.DB, workspace string, itemID uuid.UUID) (int64, error)
	EarliestSampleTime(ctx context.Context, db *gorm.DB, workspace string, itemID uuid.UUID) (*time.Time, error)
}

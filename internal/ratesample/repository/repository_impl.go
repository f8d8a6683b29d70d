package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/usageworks/accounting/internal/ratesample/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertFromMessage(ctx context.Context, db *gorm.DB, msg *domain.SampleMessage) (*uuid.UUID, error) {
	var rows []struct {
		UUID uuid.UUID `gorm:"column:uuid"`
	}
	err := db.WithContext(ctx).Raw(
		`INSERT INTO consumption_rate_samples (uuid, sample_time, item_id, workspace, "user", rate)
		 VALUES (?, ?, (SELECT uuid FROM billing_items WHERE sku = ?), ?, ?, ?)
		 ON CONFLICT (uuid) DO NOTHING
		 RETURNING uuid`,
		msg.UUID,
		msg.SampleTime,
		msg.SKU,
		msg.Workspace,
		msg.User,
		msg.Rate,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0].UUID, nil
}

func (r *repo) FindForInterval(ctx context.Context, db *gorm.DB, workspace string, itemID uuid.UUID, start, end time.Time) ([]domain.ConsumptionRateSample, error) {
	var predecessor []domain.ConsumptionRateSample
	err := db.WithContext(ctx).
		Where("workspace = ? AND item_id = ? AND sample_time <= ?", workspace, itemID, start).
		Order("sample_time DESC").
		Limit(1).
		Find(&predecessor).Error
	if err != nil {
		return nil, err
	}

	var inside []domain.ConsumptionRateSample
	err = db.WithContext(ctx).
		Where("workspace = ? AND item_id = ? AND sample_time > ? AND sample_time < ?", workspace, itemID, start, end).
		Order("sample_time ASC").
		Find(&inside).Error
	if err != nil {
		return nil, err
	}

	var successor []domain.ConsumptionRateSample
	err = db.WithContext(ctx).
		Where("workspace = ? AND item_id = ? AND sample_time >= ?", workspace, itemID, end).
		Order("sample_time ASC").
		Limit(1).
		Find(&successor).Error
	if err != nil {
		return nil, err
	}

	samples := make([]domain.ConsumptionRateSample, 0, len(predecessor)+len(inside)+len(successor))
	samples = append(samples, predecessor...)
	samples = append(samples, inside...)
	samples = append(samples, successor...)
	return samples, nil
}

func (r *repo) CountForPair(ctx context.Context, db *gorm.DB, workspace string, itemID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ConsumptionRateSample{}).
		Where("workspace = ? AND item_id = ?", workspace, itemID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) EarliestSampleTime(ctx context.Context, db *gorm.DB, workspace string, itemID uuid.UUID) (*time.Time, error) {
	var samples []domain.ConsumptionRateSample
	err := db.WithContext(ctx).
		Where("workspace = ? AND item_id = ?", workspace, itemID).
		Order("sample_time ASC").
		Limit(1).
		Find(&samples).Error
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, nil
	}
	return &samples[0].SampleTime, nil
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/usageworks/accounting/internal/catalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindAllItems(ctx context.Context, db *gorm.DB) ([]domain.BillingItem, error) {
	var items []domain.BillingItem
	err := db.WithContext(ctx).
		Order("sku ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindItemBySKU(ctx context.Context, db *gorm.DB, sku string) (*domain.BillingItem, error) {
	var items []domain.BillingItem
	err := db.WithContext(ctx).
		Where("sku = ?", sku).
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) InsertItemIgnore(ctx context.Context, db *gorm.DB, item *domain.BillingItem) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			DoNothing: true,
		}).
		Create(item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) UpdateItem(ctx context.Context, db *gorm.DB, item *domain.BillingItem) error {
	return db.WithContext(ctx).Exec(
		`UPDATE billing_items SET name = ?, unit = ? WHERE uuid = ?`,
		item.Name,
		item.Unit,
		item.UUID,
	).Error
}

func (r *repo) CurrentPrices(ctx context.Context, db *gorm.DB, at time.Time) ([]domain.CurrentPrice, error) {
	var prices []domain.CurrentPrice
	err := db.WithContext(ctx).Raw(
		`SELECT p.uuid, p.item_id, i.sku, p.price, p.valid_from, p.valid_until, p.configured_at
		 FROM billing_item_prices p
		 JOIN billing_items i ON i.uuid = p.item_id
		 WHERE p.valid_from <= ? AND (p.valid_until IS NULL OR p.valid_until > ?)
		 ORDER BY i.sku ASC, p.valid_from ASC, p.configured_at DESC`,
		at,
		at,
	).Scan(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *repo) FindPrice(ctx context.Context, db *gorm.DB, itemID uuid.UUID, validFrom time.Time) (*domain.BillingItemPrice, error) {
	var prices []domain.BillingItemPrice
	err := db.WithContext(ctx).
		Where("item_id = ? AND valid_from = ?", itemID, validFrom).
		Limit(1).
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, nil
	}
	return &prices[0], nil
}

func (r *repo) LatestPrice(ctx context.Context, db *gorm.DB, itemID uuid.UUID) (*domain.BillingItemPrice, error) {
	var prices []domain.BillingItemPrice
	err := db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("valid_from DESC").
		Limit(1).
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, nil
	}
	return &prices[0], nil
}

func (r *repo) InsertPrice(ctx context.Context, db *gorm.DB, price *domain.BillingItemPrice) error {
	return db.WithContext(ctx).Create(price).Error
}

func (r *repo) UpdatePriceAmount(ctx context.Context, db *gorm.DB, priceID uuid.UUID, price decimal.Decimal) error {
	return db.WithContext(ctx).Exec(
		`UPDATE billing_item_prices SET price = ? WHERE uuid = ?`,
		price,
		priceID,
	).Error
}

func (r *repo) ClosePrice(ctx context.Context, db *gorm.DB, priceID uuid.UUID, until time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE billing_item_prices SET valid_until = ? WHERE uuid = ?`,
		until,
		priceID,
	).Error
}

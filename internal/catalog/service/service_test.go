package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/usageworks/accounting/internal/catalog/domain"
	"github.com/usageworks/accounting/internal/catalog/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.BillingItem{}, &domain.BillingItemPrice{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	db := openTestDB(t)
	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
	return svc, db
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestEnsureSKUIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.EnsureSKU(ctx, "wfcpu"))
	assert.NoError(t, svc.EnsureSKU(ctx, "wfcpu"))

	var items []domain.BillingItem
	assert.NoError(t, db.Find(&items).Error)
	assert.Len(t, items, 1)
	assert.Equal(t, "wfcpu", items[0].SKU)
	assert.Equal(t, "", items[0].Name)
	assert.Equal(t, "", items[0].Unit)
}

func TestUpsertItemFillsStub(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.EnsureSKU(ctx, "wfcpu"))

	name := "Workflow CPU seconds"
	unit := "s"
	item, err := svc.UpsertItem(ctx, domain.UpsertItemRequest{SKU: "wfcpu", Name: &name, Unit: &unit})
	assert.NoError(t, err)
	assert.Equal(t, name, item.Name)
	assert.Equal(t, unit, item.Unit)

	got, err := svc.GetItem(ctx, "wfcpu")
	assert.NoError(t, err)
	assert.Equal(t, item.UUID, got.UUID)
	assert.Equal(t, name, got.Name)
}

func TestGetItemUnknownSKU(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetItem(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertPriceUnknownSKU(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpsertPrice(context.Background(), "nope",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), mustDecimal(t, "1"))
	assert.ErrorIs(t, err, domain.ErrUnknownSKU)
}

// Mirrors the timeline walk: amend in place at the same valid_from, then
// append a later price, which closes the previous one.
func TestUpsertPriceTimeline(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, svc.EnsureSKU(ctx, "sku1"))

	first, err := svc.UpsertPrice(ctx, "sku1", jan1, mustDecimal(t, "12.34"))
	assert.NoError(t, err)
	assert.Nil(t, first.ValidUntil)

	// Same valid_from amends the amount without adding a row.
	amended, err := svc.UpsertPrice(ctx, "sku1", jan1, mustDecimal(t, "12.35"))
	assert.NoError(t, err)
	assert.Equal(t, first.UUID, amended.UUID)
	assert.True(t, amended.Price.Equal(mustDecimal(t, "12.35")))

	second, err := svc.UpsertPrice(ctx, "sku1", jan2, mustDecimal(t, "11.00"))
	assert.NoError(t, err)
	assert.Nil(t, second.ValidUntil)

	var prices []domain.BillingItemPrice
	assert.NoError(t, db.Order("valid_from ASC").Find(&prices).Error)
	assert.Len(t, prices, 2)

	// Closed head ends exactly where its successor begins, and only one
	// open price remains.
	if assert.NotNil(t, prices[0].ValidUntil) {
		assert.True(t, prices[0].ValidUntil.Equal(jan2))
	}
	assert.Nil(t, prices[1].ValidUntil)
	assert.True(t, prices[0].Price.Equal(mustDecimal(t, "12.35")))
	assert.True(t, prices[1].Price.Equal(mustDecimal(t, "11.00")))
}

func TestUpsertPriceRejectsRegression(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.EnsureSKU(ctx, "sku1"))
	_, err := svc.UpsertPrice(ctx, "sku1",
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), mustDecimal(t, "5"))
	assert.NoError(t, err)

	_, err = svc.UpsertPrice(ctx, "sku1",
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), mustDecimal(t, "4"))
	assert.ErrorIs(t, err, domain.ErrPriceOutOfOrder)
}

func TestCurrentPricesWindow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, svc.EnsureSKU(ctx, "sku1"))
	_, err := svc.UpsertPrice(ctx, "sku1", jan1, mustDecimal(t, "12.34"))
	assert.NoError(t, err)
	_, err = svc.UpsertPrice(ctx, "sku1", jan2, mustDecimal(t, "11.00"))
	assert.NoError(t, err)

	// The lower bound is inclusive: at exactly valid_from the new price
	// applies, and the closed predecessor no longer does.
	prices, err := svc.CurrentPrices(ctx, jan2)
	assert.NoError(t, err)
	if assert.Len(t, prices, 1) {
		assert.True(t, prices[0].Price.Equal(mustDecimal(t, "11.00")))
	}

	prices, err = svc.CurrentPrices(ctx, jan2.Add(-time.Second))
	assert.NoError(t, err)
	if assert.Len(t, prices, 1) {
		assert.True(t, prices[0].Price.Equal(mustDecimal(t, "12.34")))
	}

	// Before the first price there is nothing.
	prices, err = svc.CurrentPrices(ctx, jan1.Add(-time.Second))
	assert.NoError(t, err)
	assert.Len(t, prices, 0)
}

func TestListItemsOrderedBySKU(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, sku := range []string{"zeta", "alpha", "mid"} {
		assert.NoError(t, svc.EnsureSKU(ctx, sku))
	}

	items, err := svc.ListItems(ctx)
	assert.NoError(t, err)
	if assert.Len(t, items, 3) {
		assert.Equal(t, "alpha", items[0].SKU)
		assert.Equal(t, "mid", items[1].SKU)
		assert.Equal(t, "zeta", items[2].SKU)
	}
}

package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/usageworks/accounting/internal/billingevent/domain"
	"github.com/usageworks/accounting/internal/billingevent/repository"
	catalogdomain "github.com/usageworks/accounting/internal/catalog/domain"
	catalogrepository "github.com/usageworks/accounting/internal/catalog/repository"
	catalogservice "github.com/usageworks/accounting/internal/catalog/service"
	workspacedomain "github.com/usageworks/accounting/internal/workspace/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:billingevent%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = db.AutoMigrate(
		&catalogdomain.BillingItem{},
		&workspacedomain.WorkspaceAccount{},
		&domain.BillingEvent{},
	)
	if err != nil {
		t.Fatal(err)
	}

	catalog := catalogservice.New(catalogservice.Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: catalogrepository.Provide(),
	})
	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		Repo:    repository.Provide(),
		Catalog: catalog,
	})
	return svc, db
}

func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func record(t *testing.T, svc domain.Service, id uuid.UUID, ws, sku string, start, end time.Time, qty float64) {
	t.Helper()
	_, err := svc.Record(context.Background(), &domain.EventMessage{
		UUID:       id,
		EventStart: start,
		EventEnd:   end,
		SKU:        sku,
		Workspace:  ws,
		Quantity:   qty,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRecordDuplicateUUIDIsNoOp(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	id := uuid.New()
	msg := &domain.EventMessage{
		UUID:       id,
		EventStart: utc(2025, 1, 1, 0, 0),
		EventEnd:   utc(2025, 1, 1, 1, 0),
		SKU:        "sku1",
		Workspace:  "workspace1",
		Quantity:   1.5,
	}

	got, err := svc.Record(ctx, msg)
	assert.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, id, *got)
	}

	// The replay carries a different quantity; the first row must win.
	replay := *msg
	replay.Quantity = 99
	got, err = svc.Record(ctx, &replay)
	assert.NoError(t, err)
	assert.Nil(t, got)

	var events []domain.BillingEvent
	assert.NoError(t, db.Find(&events).Error)
	if assert.Len(t, events, 1) {
		assert.Equal(t, 1.5, events[0].Quantity)
	}
}

func TestRecordStubsUnknownSKU(t *testing.T) {
	svc, db := newTestService(t)

	record(t, svc, uuid.New(), "workspace1", "surprise",
		utc(2025, 1, 1, 0, 0), utc(2025, 1, 1, 1, 0), 2)

	var item catalogdomain.BillingItem
	assert.NoError(t, db.First(&item, "sku = ?", "surprise").Error)
	assert.Equal(t, "", item.Name)

	var event domain.BillingEvent
	assert.NoError(t, db.First(&event).Error)
	assert.Equal(t, item.UUID, event.ItemID)
}

func TestRecordRejectsInvertedInterval(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Record(context.Background(), &domain.EventMessage{
		UUID:       uuid.New(),
		EventStart: utc(2025, 1, 1, 2, 0),
		EventEnd:   utc(2025, 1, 1, 1, 0),
		SKU:        "sku1",
		Workspace:  "workspace1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestFindByAccount(t *testing.T) {
	svc, db := newTestService(t)
	account := uuid.New()

	for _, ws := range []string{"workspace1", "workspace3"} {
		err := db.Create(&workspacedomain.WorkspaceAccount{Workspace: ws, Account: account}).Error
		assert.NoError(t, err)
	}

	record(t, svc, uuid.New(), "workspace1", "sku1", utc(2025, 1, 1, 0, 0), utc(2025, 1, 1, 1, 0), 1)
	record(t, svc, uuid.New(), "workspace2", "sku1", utc(2025, 1, 1, 1, 0), utc(2025, 1, 1, 2, 0), 2)
	record(t, svc, uuid.New(), "workspace3", "sku1", utc(2025, 1, 1, 2, 0), utc(2025, 1, 1, 3, 0), 3)

	events, err := svc.Find(context.Background(), domain.Query{Account: &account})
	assert.NoError(t, err)
	if assert.Len(t, events, 2) {
		assert.Equal(t, "workspace1", events[0].Workspace)
		assert.Equal(t, "workspace3", events[1].Workspace)
	}
}

func TestFindHalfOpenTimeFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ws := "workspace1"

	record(t, svc, uuid.New(), ws, "sku1", utc(2025, 1, 1, 0, 0), utc(2025, 1, 1, 1, 0), 1)
	record(t, svc, uuid.New(), ws, "sku1", utc(2025, 1, 1, 1, 0), utc(2025, 1, 1, 2, 0), 2)
	record(t, svc, uuid.New(), ws, "sku1", utc(2025, 1, 1, 2, 0), utc(2025, 1, 1, 3, 0), 3)

	start := utc(2025, 1, 1, 1, 0)
	end := utc(2025, 1, 1, 3, 0)
	events, err := svc.Find(context.Background(), domain.Query{
		Workspace: &ws,
		Start:     &start,
		End:       &end,
	})
	assert.NoError(t, err)

	// start is inclusive on event_start; end excludes any event whose
	// event_end is not strictly before it.
	if assert.Len(t, events, 1) {
		assert.Equal(t, float64(2), events[0].Quantity)
	}
}

// Paging with after over the whole set must yield every row exactly once
// in (event_start, event_end, workspace, uuid) order.
func TestFindPagingIsExhaustive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Identical intervals across workspaces force the order to fall
	// through to the workspace and uuid components.
	inserted := 0
	for day := 1; day <= 3; day++ {
		for _, ws := range []string{"workspace1", "workspace2"} {
			record(t, svc, uuid.New(), ws, "sku1",
				utc(2025, 1, day, 0, 0), utc(2025, 1, day, 1, 0), 1)
			inserted++
		}
	}
	record(t, svc, uuid.New(), "workspace1", "sku1",
		utc(2025, 1, 1, 0, 0), utc(2025, 1, 1, 2, 0), 1)
	inserted++

	seen := map[uuid.UUID]bool{}
	var after *uuid.UUID
	var prev *domain.Event
	for {
		page, err := svc.Find(ctx, domain.Query{Limit: 2, After: after})
		assert.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for i := range page {
			e := page[i]
			assert.False(t, seen[e.UUID], "row %s returned twice", e.UUID)
			seen[e.UUID] = true
			if prev != nil {
				assert.False(t, laterInTotalOrder(*prev, e), "rows out of order")
			}
			prev = &e
		}
		last := page[len(page)-1].UUID
		after = &last
	}
	assert.Len(t, seen, inserted)
}

func laterInTotalOrder(a, b domain.Event) bool {
	if !a.EventStart.Equal(b.EventStart) {
		return a.EventStart.After(b.EventStart)
	}
	if !a.EventEnd.Equal(b.EventEnd) {
		return a.EventEnd.After(b.EventEnd)
	}
	if a.Workspace != b.Workspace {
		return a.Workspace > b.Workspace
	}
	return a.UUID.String() > b.UUID.String()
}

func TestFindAfterUnknownUUIDIsIgnored(t *testing.T) {
	svc, _ := newTestService(t)

	record(t, svc, uuid.New(), "workspace1", "sku1",
		utc(2025, 1, 1, 0, 0), utc(2025, 1, 1, 1, 0), 1)

	unknown := uuid.New()
	events, err := svc.Find(context.Background(), domain.Query{After: &unknown})
	assert.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestFindDayAggregation(t *testing.T) {
	svc, _ := newTestService(t)
	ws := "workspace1"

	firstID := uuid.New()
	record(t, svc, firstID, ws, "sku1", utc(2025, 1, 1, 0, 0), utc(2025, 1, 1, 1, 0), 0.01)
	record(t, svc, uuid.New(), ws, "sku1", utc(2025, 1, 1, 2, 0), utc(2025, 1, 1, 3, 0), 0.10)
	record(t, svc, uuid.New(), ws, "sku1", utc(2025, 1, 1, 23, 0), utc(2025, 1, 2, 0, 0), 1.00)
	record(t, svc, uuid.New(), ws, "sku1", utc(2025, 1, 2, 2, 0), utc(2025, 1, 2, 3, 0), 0.20)

	events, err := svc.Find(context.Background(), domain.Query{
		Workspace:   &ws,
		Aggregation: domain.AggregationDay,
	})
	assert.NoError(t, err)
	if !assert.Len(t, events, 2) {
		return
	}

	// The late-evening event starts on day one, so it lands in the day
	// one bucket even though it ends on day two.
	assert.InDelta(t, 1.11, events[0].Quantity, 1e-9)
	assert.True(t, events[0].EventStart.Equal(utc(2025, 1, 1, 0, 0)))
	assert.True(t, events[0].EventEnd.Equal(utc(2025, 1, 2, 0, 0)))
	assert.Equal(t, firstID, events[0].UUID)

	assert.InDelta(t, 0.20, events[1].Quantity, 1e-9)
	assert.True(t, events[1].EventStart.Equal(utc(2025, 1, 2, 0, 0)))
	assert.True(t, events[1].EventEnd.Equal(utc(2025, 1, 3, 0, 0)))
}

func TestFindMonthAggregationSplitsUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ws := "workspace1"
	user := uuid.New()

	_, err := svc.Record(ctx, &domain.EventMessage{
		UUID: uuid.New(), EventStart: utc(2025, 1, 1, 0, 0), EventEnd: utc(2025, 1, 1, 1, 0),
		SKU: "sku1", Workspace: ws, Quantity: 1,
	})
	assert.NoError(t, err)
	_, err = svc.Record(ctx, &domain.EventMessage{
		UUID: uuid.New(), EventStart: utc(2025, 1, 10, 0, 0), EventEnd: utc(2025, 1, 10, 1, 0),
		SKU: "sku1", Workspace: ws, User: &user, Quantity: 2,
	})
	assert.NoError(t, err)

	events, err := svc.Find(ctx, domain.Query{Workspace: &ws, Aggregation: domain.AggregationMonth})
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	for _, e := range events {
		assert.True(t, e.EventStart.Equal(utc(2025, 1, 1, 0, 0)))
		assert.True(t, e.EventEnd.Equal(utc(2025, 2, 1, 0, 0)))
	}
}

func TestFindRejectsUnknownAggregation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Find(context.Background(), domain.Query{Aggregation: "week"})
	assert.ErrorIs(t, err, domain.ErrInvalidAggregation)
}

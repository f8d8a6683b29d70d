package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/usageworks/accounting/internal/billingevent/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertFromMessage(ctx context.Context, db *gorm.DB, msg *domain.EventMessage) (*uuid.UUID, error) {
	var rows []struct {
		UUID uuid.UUID `gorm:"column:uuid"`
	}
	err := db.WithContext(ctx).Raw(
		`INSERT INTO billing_events (uuid, event_start, event_end, item_id, workspace, "user", quantity)
		 VALUES (?, ?, ?, (SELECT uuid FROM billing_items WHERE sku = ?), ?, ?, ?)
		 ON CONFLICT (uuid) DO NOTHING
		 RETURNING uuid`,
		msg.UUID,
		msg.EventStart,
		msg.EventEnd,
		msg.SKU,
		msg.Workspace,
		msg.User,
		msg.Quantity,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0].UUID, nil
}

func (r *repo) InsertIgnore(ctx context.Context, db *gorm.DB, event *domain.BillingEvent) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uuid"}},
			DoNothing: true,
		}).
		Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) FindByUUID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Event, error) {
	var rows []domain.Event
	err := db.WithContext(ctx).Raw(
		`SELECT e.uuid, e.event_start, e.event_end, i.sku, e.workspace, e."user", e.quantity
		 FROM billing_events e
		 JOIN billing_items i ON i.uuid = e.item_id
		 WHERE e.uuid = ?`,
		id,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, q domain.Query) ([]domain.Event, error) {
	var sb strings.Builder
	sb.WriteString(
		`SELECT e.uuid, e.event_start, e.event_end, i.sku, e.workspace, e."user", e.quantity
		 FROM billing_events e
		 JOIN billing_items i ON i.uuid = e.item_id`)

	var (
		conds []string
		args  []interface{}
	)
	if q.Account != nil {
		sb.WriteString(`
		 JOIN workspace_accounts wa ON wa.workspace = e.workspace`)
		conds = append(conds, "wa.account = ?")
		args = append(args, *q.Account)
	}
	if q.Workspace != nil {
		conds = append(conds, "e.workspace = ?")
		args = append(args, *q.Workspace)
	}
	if q.Start != nil {
		conds = append(conds, "e.event_start >= ?")
		args = append(args, *q.Start)
	}
	if q.End != nil {
		conds = append(conds, "e.event_end < ?")
		args = append(args, *q.End)
	}
	if q.After != nil {
		anchor, err := r.FindByUUID(ctx, db, *q.After)
		if err != nil {
			return nil, err
		}
		// An unknown anchor means the cursor refers to nothing we can
		// place in the order, so the filter is dropped.
		if anchor != nil {
			conds = append(conds,
				`(e.event_start > ?
				  OR (e.event_start = ? AND e.event_end > ?)
				  OR (e.event_start = ? AND e.event_end = ? AND e.workspace > ?)
				  OR (e.event_start = ? AND e.event_end = ? AND e.workspace = ? AND e.uuid > ?))`)
			args = append(args,
				anchor.EventStart,
				anchor.EventStart, anchor.EventEnd,
				anchor.EventStart, anchor.EventEnd, anchor.Workspace,
				anchor.EventStart, anchor.EventEnd, anchor.Workspace, anchor.UUID,
			)
		}
	}
	if len(conds) > 0 {
		sb.WriteString("\n\t\t WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString("\n\t\t ORDER BY e.event_start ASC, e.event_end ASC, e.workspace ASC, e.uuid ASC")
	if q.Limit > 0 {
		sb.WriteString("\n\t\t LIMIT ?")
		args = append(args, q.Limit)
	}

	var events []domain.Event
	err := db.WithContext(ctx).Raw(sb.String(), args...).Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) LatestEventEnd(ctx context.Context, db *gorm.DB, workspace string, itemID uuid.UUID) (*time.Time, error) {
	var events []domain.BillingEvent
	err := db.WithContext(ctx).
		Where("workspace = ? AND item_id = ?", workspace, itemID).
		Order("event_end DESC").
		Limit(1).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0].EventEnd, nil
}

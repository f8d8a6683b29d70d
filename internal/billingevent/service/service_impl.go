package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/usageworks/accounting/internal/billingevent/domain"
	catalogdomain "github.com/usageworks/accounting/internal/catalog/domain"
	dberr "github.com/usageworks/accounting/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Hard cap on rows returned from a single query when the caller does
// not say otherwise.
const defaultLimit = 5000

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Catalog catalogdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	catalog catalogdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("billingevent.service"),
		repo:    p.Repo,
		catalog: p.Catalog,
	}
}

func (s *Service) Record(ctx context.Context, msg *domain.EventMessage) (*uuid.UUID, error) {
	if msg.EventStart.After(msg.EventEnd) {
		return nil, domain.ErrInvalidInterval
	}

	id, err := s.repo.InsertFromMessage(ctx, s.db, msg)
	if err == nil {
		if id == nil {
			s.log.Debug("ignoring billing event, uuid already recorded",
				zap.String("uuid", msg.UUID.String()),
			)
		}
		return id, nil
	}
	if !dberr.IsIntegrityErr(err) {
		return nil, err
	}

	// The SKU was not in the catalogue when the insert resolved it.
	// Stub it in its own transaction and retry exactly once; a second
	// integrity failure is a real problem.
	if err := s.catalog.EnsureSKU(ctx, msg.SKU); err != nil {
		return nil, err
	}
	return s.repo.InsertFromMessage(ctx, s.db, msg)
}

func (s *Service) Find(ctx context.Context, q domain.Query) ([]domain.Event, error) {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	switch q.Aggregation {
	case domain.AggregationNone:
		return s.repo.Find(ctx, s.db, q)
	case domain.AggregationDay, domain.AggregationMonth:
	default:
		return nil, domain.ErrInvalidAggregation
	}

	// Buckets can only be folded from the full filtered stream, so the
	// cursor and limit apply to the synthetic rows afterwards.
	raw := q
	raw.After = nil
	raw.Limit = 0
	rows, err := s.repo.Find(ctx, s.db, raw)
	if err != nil {
		return nil, err
	}
	folded := foldBuckets(rows, q.Aggregation)
	folded = dropThrough(folded, q.After)
	if len(folded) > q.Limit {
		folded = folded[:q.Limit]
	}
	return folded, nil
}

// foldBuckets merges events into one synthetic row per
// (workspace, item, user, bucket). The input is already in the total
// order, so the first event seen in a bucket is the earliest one and
// donates its uuid.
func foldBuckets(rows []domain.Event, agg domain.Aggregation) []domain.Event {
	type key struct {
		workspace string
		sku       string
		user      string
		start     int64
	}
	buckets := make(map[key]*domain.Event)
	for i := range rows {
		row := rows[i]
		start, end := bucketBounds(row.EventStart, agg)
		k := key{
			workspace: row.Workspace,
			sku:       row.SKU,
			user:      userKey(row.User),
			start:     start.Unix(),
		}
		if b, ok := buckets[k]; ok {
			b.Quantity += row.Quantity
			continue
		}
		synthetic := row
		synthetic.EventStart = start
		synthetic.EventEnd = end
		buckets[k] = &synthetic
	}

	out := make([]domain.Event, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EventStart.Equal(b.EventStart) {
			return a.EventStart.Before(b.EventStart)
		}
		if !a.EventEnd.Equal(b.EventEnd) {
			return a.EventEnd.Before(b.EventEnd)
		}
		if a.Workspace != b.Workspace {
			return a.Workspace < b.Workspace
		}
		return a.UUID.String() < b.UUID.String()
	})
	return out
}

func bucketBounds(t time.Time, agg domain.Aggregation) (time.Time, time.Time) {
	t = t.UTC()
	if agg == domain.AggregationMonth {
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func userKey(user *uuid.UUID) string {
	if user == nil {
		return ""
	}
	return user.String()
}

// dropThrough discards rows up to and including the one carrying the
// cursor uuid. A uuid not present in the synthetic stream is ignored.
func dropThrough(rows []domain.Event, after *uuid.UUID) []domain.Event {
	if after == nil {
		return rows
	}
	for i := range rows {
		if rows[i].UUID == *after {
			return rows[i+1:]
		}
	}
	return rows
}

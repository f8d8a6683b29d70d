// Package estimator turns consumption rate samples into hourly billing
// events. Consumption between two neighbouring samples is interpolated
// linearly; outside the observed samples it is zero. Event uuids are
// derived deterministically from the series and window, so concurrent
// or repeated generation collapses onto the same rows.
package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	beventdomain "github.com/usageworks/accounting/internal/billingevent/domain"
	catalogdomain "github.com/usageworks/accounting/internal/catalog/domain"
	ratedomain "github.com/usageworks/accounting/internal/ratesample/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Namespace for the UUIDv5 derivation of estimated event uuids. Changing
// it would re-issue every estimated event under new uuids.
var Namespace = uuid.MustParse("67f9a35c-567c-4a30-b51d-2fc64328bd55")

type Service interface {
	// GenerateUpTo emits one billing event per elapsed hourly window of
	// the (workspace, SKU) series, from the series frontier up to the
	// last window ending at or before upto.
	GenerateUpTo(ctx context.Context, workspace, sku string, upto time.Time) error
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Samples ratedomain.Repository
	Events  beventdomain.Repository
	Items   catalogdomain.Repository
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	samples ratedomain.Repository
	events  beventdomain.Repository
	items   catalogdomain.Repository
}

func New(p Params) Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("estimator.service"),
		samples: p.Samples,
		events:  p.Events,
		items:   p.Items,
	}
}

func (s *service) GenerateUpTo(ctx context.Context, workspace, sku string, upto time.Time) error {
	item, err := s.items.FindItemBySKU(ctx, s.db, sku)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: %q", catalogdomain.ErrUnknownSKU, sku)
	}

	// A single sample says nothing about the shape of the series yet.
	count, err := s.samples.CountForPair(ctx, s.db, workspace, item.UUID)
	if err != nil {
		return err
	}
	if count < 2 {
		return nil
	}

	windowStart, err := s.frontier(ctx, workspace, item.UUID)
	if err != nil {
		return err
	}
	if windowStart == nil {
		return nil
	}

	upto = upto.UTC()
	generated := 0
	for start := *windowStart; !start.Add(time.Hour).After(upto); start = start.Add(time.Hour) {
		end := start.Add(time.Hour)
		samples, err := s.samples.FindForInterval(ctx, s.db, workspace, item.UUID, start, end)
		if err != nil {
			return err
		}
		event := &beventdomain.BillingEvent{
			UUID:       EventUUID(workspace, sku, start),
			EventStart: start,
			EventEnd:   end,
			ItemID:     item.UUID,
			Workspace:  workspace,
			Quantity:   Integrate(samples, start, end),
		}
		inserted, err := s.events.InsertIgnore(ctx, s.db, event)
		if err != nil {
			return err
		}
		if inserted {
			generated++
		}
	}
	if generated > 0 {
		s.log.Info("generated estimated billing events",
			zap.String("workspace", workspace),
			zap.String("sku", sku),
			zap.Int("events", generated),
		)
	}
	return nil
}

// frontier is where generation resumes: just after the last event for
// the pair, or at the hour of the earliest sample for a fresh series.
func (s *service) frontier(ctx context.Context, workspace string, itemID uuid.UUID) (*time.Time, error) {
	latest, err := s.events.LatestEventEnd(ctx, s.db, workspace, itemID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		t := latest.UTC()
		return &t, nil
	}
	earliest, err := s.samples.EarliestSampleTime(ctx, s.db, workspace, itemID)
	if err != nil {
		return nil, err
	}
	if earliest == nil {
		return nil, nil
	}
	t := FloorHour(*earliest)
	return &t, nil
}

// EventUUID derives the uuid of the estimated event for one series and
// window. The name embeds the window start with an explicit +00:00
// offset, e.g. "ws-sku-2024-03-01T13:00:00+00:00".
func EventUUID(workspace, sku string, windowStart time.Time) uuid.UUID {
	name := fmt.Sprintf("%s-%s-%s+00:00",
		workspace, sku, windowStart.UTC().Format("2006-01-02T15:04:05"))
	return uuid.NewSHA1(Namespace, []byte(name))
}

func FloorHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// Integrate computes the consumption over [start, end) implied by the
// samples, which must be in sample_time order and should include the
// neighbours just outside the window. Each segment between consecutive
// samples is clipped to the window and accumulated with the trapezoidal
// rule; time before the first sample and after the last contributes
// nothing.
func Integrate(samples []ratedomain.ConsumptionRateSample, start, end time.Time) float64 {
	total := 0.0
	for i := 0; i+1 < len(samples); i++ {
		t0, r0 := samples[i].SampleTime.UTC(), samples[i].Rate
		t1, r1 := samples[i+1].SampleTime.UTC(), samples[i+1].Rate
		if !t1.After(t0) {
			continue
		}
		clipStart := maxTime(t0, start)
		clipEnd := minTime(t1, end)
		if !clipEnd.After(clipStart) {
			continue
		}
		rateAt := func(t time.Time) float64 {
			frac := t.Sub(t0).Seconds() / t1.Sub(t0).Seconds()
			return r0 + (r1-r0)*frac
		}
		dt := clipEnd.Sub(clipStart).Seconds()
		total += dt * (rateAt(clipStart) + rateAt(clipEnd)) / 2
	}
	return total
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

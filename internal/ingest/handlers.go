package ingest

import (
	"context"
	"errors"

	beventdomain "github.com/usageworks/accounting/internal/billingevent/domain"
	"github.com/usageworks/accounting/internal/config"
	ratedomain "github.com/usageworks/accounting/internal/ratesample/domain"
	workspacedomain "github.com/usageworks/accounting/internal/workspace/domain"
	workspaceservice "github.com/usageworks/accounting/internal/workspace/service"
	dberr "github.com/usageworks/accounting/pkg/db"
)

// Handler binds one bus topic to its decode-and-process logic. Handle
// returns nil to ack, a Permanent error to drop, and anything else to
// request redelivery.
type Handler interface {
	Topic() string
	Handle(ctx context.Context, payload []byte) error
}

// classifyStoreErr sorts a processing error into the ack/drop/redeliver
// buckets. Integrity errors reaching this point already survived the
// stub-SKU retry, so they are beyond redelivery's help. Anything
// unrecognised stays transient, failing safe toward redelivery.
func classifyStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if dberr.IsTransientErr(err) {
		return err
	}
	if dberr.IsIntegrityErr(err) || dberr.IsDuplicateKeyErr(err) {
		return Permanent(err)
	}
	return err
}

type BillingEventsHandler struct {
	topic  string
	events beventdomain.Service
}

func NewBillingEventsHandler(cfg config.Config, events beventdomain.Service) *BillingEventsHandler {
	return &BillingEventsHandler{
		topic:  cfg.TopicBillingEvents,
		events: events,
	}
}

func (h *BillingEventsHandler) Topic() string { return h.topic }

func (h *BillingEventsHandler) Handle(ctx context.Context, payload []byte) error {
	msg, err := decodeEventMessage(payload)
	if err != nil {
		return err
	}
	if _, err := h.events.Record(ctx, msg); err != nil {
		if errors.Is(err, beventdomain.ErrInvalidInterval) {
			return Permanent(err)
		}
		return classifyStoreErr(err)
	}
	return nil
}

type WorkspaceSettingsHandler struct {
	topic      string
	workspaces workspacedomain.Service
}

func NewWorkspaceSettingsHandler(cfg config.Config, workspaces workspacedomain.Service) *WorkspaceSettingsHandler {
	return &WorkspaceSettingsHandler{
		topic:      cfg.TopicWorkspaceSettings,
		workspaces: workspaces,
	}
}

func (h *WorkspaceSettingsHandler) Topic() string { return h.topic }

func (h *WorkspaceSettingsHandler) Handle(ctx context.Context, payload []byte) error {
	mapping, err := decodeWorkspaceSettings(payload)
	if err != nil {
		return err
	}
	if _, err := h.workspaces.RecordMapping(ctx, mapping.Account, mapping.Workspace); err != nil {
		if errors.Is(err, workspaceservice.ErrInvalidWorkspace) {
			return Permanent(err)
		}
		return classifyStoreErr(err)
	}
	return nil
}

type RateSamplesHandler struct {
	topic   string
	samples ratedomain.Service
}

func NewRateSamplesHandler(cfg config.Config, samples ratedomain.Service) *RateSamplesHandler {
	return &RateSamplesHandler{
		topic:   cfg.TopicRateSamples,
		samples: samples,
	}
}

func (h *RateSamplesHandler) Topic() string { return h.topic }

func (h *RateSamplesHandler) Handle(ctx context.Context, payload []byte) error {
	msg, err := decodeSampleMessage(payload)
	if err != nil {
		return err
	}
	if err := h.samples.Ingest(ctx, msg); err != nil {
		return classifyStoreErr(err)
	}
	return nil
}

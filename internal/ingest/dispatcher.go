package ingest

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/usageworks/accounting/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Dispatcher runs one watermill handler per topic. Acks and drops are
// decided here from the handlers' error classification; everything else
// nacks and rides the bus's redelivery.
type Dispatcher struct {
	router  *message.Router
	log     *zap.Logger
	metrics *observability.IngestMetrics
}

type DispatcherParams struct {
	fx.In

	Log        *zap.Logger
	Metrics    *observability.IngestMetrics
	Subscriber message.Subscriber
	Handlers   []Handler `group:"ingest.handlers"`
}

func NewDispatcher(p DispatcherParams) (*Dispatcher, error) {
	log := p.Log.Named("ingest.dispatcher")
	router, err := message.NewRouter(message.RouterConfig{}, newWatermillLogger(log))
	if err != nil {
		return nil, err
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
	)

	d := &Dispatcher{
		router:  router,
		log:     log,
		metrics: p.Metrics,
	}
	for _, h := range p.Handlers {
		router.AddNoPublisherHandler(
			"accounting."+h.Topic(),
			h.Topic(),
			p.Subscriber,
			d.wrap(h),
		)
	}
	return d, nil
}

func (d *Dispatcher) wrap(h Handler) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		err := h.Handle(msg.Context(), msg.Payload)
		switch {
		case err == nil:
			d.metrics.Observe(h.Topic(), "ok")
			return nil
		case IsPermanent(err):
			d.metrics.Observe(h.Topic(), "permanent")
			d.log.Error("dropping message",
				zap.String("topic", h.Topic()),
				zap.String("message_uuid", msg.UUID),
				zap.Error(err),
			)
			return nil
		default:
			d.metrics.Observe(h.Topic(), "transient")
			d.log.Warn("message failed, requesting redelivery",
				zap.String("topic", h.Topic()),
				zap.String("message_uuid", msg.UUID),
				zap.Error(err),
			)
			return err
		}
	}
}

// Run blocks until the router stops.
func (d *Dispatcher) Run(ctx context.Context) error {
	return d.router.Run(ctx)
}

func (d *Dispatcher) Close() error {
	return d.router.Close()
}

package ingest

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("ingest",
	fx.Provide(NewSubscriber),
	fx.Provide(
		fx.Annotate(NewBillingEventsHandler,
			fx.As(new(Handler)), fx.ResultTags(`group:"ingest.handlers"`)),
		fx.Annotate(NewWorkspaceSettingsHandler,
			fx.As(new(Handler)), fx.ResultTags(`group:"ingest.handlers"`)),
		fx.Annotate(NewRateSamplesHandler,
			fx.As(new(Handler)), fx.ResultTags(`group:"ingest.handlers"`)),
	),
	fx.Provide(NewDispatcher),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, sd fx.Shutdowner, d *Dispatcher, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := d.Run(context.Background()); err != nil {
					log.Error("message router stopped", zap.Error(err))
				}
				_ = sd.Shutdown()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return d.Close()
		},
	})
}

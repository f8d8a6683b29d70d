package observability

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(
		NewLogger,
		NewTracerProvider,
		NewIngestMetrics,
		NewHTTPMetrics,
	),
	fx.Invoke(ensureTracerProvider),
	fx.Invoke(registerLoggerHooks),
)

func ensureTracerProvider(_ *sdktrace.TracerProvider) {}

func registerLoggerHooks(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
}

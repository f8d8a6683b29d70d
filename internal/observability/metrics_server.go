package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/usageworks/accounting/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// MetricsServerModule serves /metrics on its own listener for binaries
// without an API server, so the ingest counters stay scrapable.
var MetricsServerModule = fx.Module("observability.metrics_server",
	fx.Invoke(runMetricsServer),
)

func NewMetricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

func runMetricsServer(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: NewMetricsMux(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("metrics server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

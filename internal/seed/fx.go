package seed

import (
	"context"

	catalogdomain "github.com/usageworks/accounting/internal/catalog/domain"
	"github.com/usageworks/accounting/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("seed",
	fx.Invoke(run),
)

func run(cfg config.Config, catalog catalogdomain.Service, log *zap.Logger) error {
	if cfg.PricingConfig == "" {
		return nil
	}
	parsed, err := LoadFile(cfg.PricingConfig)
	if err != nil {
		return err
	}
	return Apply(context.Background(), parsed, catalog, log.Named("seed"))
}

package seed

import (
	"context"

	catalogdomain "github.com/usageworks/accounting/internal/catalog/domain"
	"go.uber.org/zap"
)

// Apply pushes the parsed pricing configuration through the catalogue
// service. Items first, so prices never hit an unknown SKU.
func Apply(ctx context.Context, cfg *Config, catalog catalogdomain.Service, log *zap.Logger) error {
	for _, item := range cfg.Items {
		name := item.Name
		unit := item.Unit
		if _, err := catalog.UpsertItem(ctx, catalogdomain.UpsertItemRequest{
			SKU:  item.SKU,
			Name: &name,
			Unit: &unit,
		}); err != nil {
			return err
		}
	}
	for _, price := range cfg.Prices {
		if _, err := catalog.UpsertPrice(ctx, price.SKU, price.ValidFrom.Time, price.Price.Decimal); err != nil {
			return err
		}
	}
	log.Info("applied pricing config",
		zap.Int("items", len(cfg.Items)),
		zap.Int("prices", len(cfg.Prices)),
	)
	return nil
}

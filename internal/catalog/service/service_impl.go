package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/usageworks/accounting/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListItems(ctx context.Context) ([]domain.BillingItem, error) {
	return s.repo.FindAllItems(ctx, s.db)
}

func (s *Service) GetItem(ctx context.Context, sku string) (*domain.BillingItem, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, domain.ErrInvalidSKU
	}

	item, err := s.repo.FindItemBySKU(ctx, s.db, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) EnsureSKU(ctx context.Context, sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return domain.ErrInvalidSKU
	}

	inserted, err := s.repo.InsertItemIgnore(ctx, s.db, &domain.BillingItem{
		UUID: uuid.New(),
		SKU:  sku,
	})
	if err != nil {
		return err
	}
	if inserted {
		s.log.Info("auto-created stub billing item", zap.String("sku", sku))
	}
	return nil
}

func (s *Service) UpsertItem(ctx context.Context, req domain.UpsertItemRequest) (*domain.BillingItem, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, domain.ErrInvalidSKU
	}

	var out *domain.BillingItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindItemBySKU(ctx, tx, sku)
		if err != nil {
			return err
		}

		if item == nil {
			item = &domain.BillingItem{UUID: uuid.New(), SKU: sku}
			if req.Name != nil {
				item.Name = *req.Name
			}
			if req.Unit != nil {
				item.Unit = *req.Unit
			}
			if _, err := s.repo.InsertItemIgnore(ctx, tx, item); err != nil {
				return err
			}
			out = item
			return nil
		}

		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Unit != nil {
			item.Unit = *req.Unit
		}
		if err := s.repo.UpdateItem(ctx, tx, item); err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) CurrentPrices(ctx context.Context, at time.Time) ([]domain.CurrentPrice, error) {
	return s.repo.CurrentPrices(ctx, s.db, at.UTC())
}

// UpsertPrice maintains the price timeline invariants: at most one open price
// per item, and closed rows ending exactly where their successor begins.
// History amendment through this path is not supported.
func (s *Service) UpsertPrice(ctx context.Context, sku string, validFrom time.Time, price decimal.Decimal) (*domain.BillingItemPrice, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, domain.ErrInvalidSKU
	}
	validFrom = validFrom.UTC()

	var out *domain.BillingItemPrice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindItemBySKU(ctx, tx, sku)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrUnknownSKU
		}

		existing, err := s.repo.FindPrice(ctx, tx, item.UUID, validFrom)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.repo.UpdatePriceAmount(ctx, tx, existing.UUID, price); err != nil {
				return err
			}
			existing.Price = price
			out = existing
			return nil
		}

		latest, err := s.repo.LatestPrice(ctx, tx, item.UUID)
		if err != nil {
			return err
		}
		if latest != nil {
			if latest.ValidFrom.After(validFrom) {
				return domain.ErrPriceOutOfOrder
			}
			if err := s.repo.ClosePrice(ctx, tx, latest.UUID, validFrom); err != nil {
				return err
			}
		}

		next := &domain.BillingItemPrice{
			UUID:         uuid.New(),
			ItemID:       item.UUID,
			Price:        price,
			ValidFrom:    validFrom,
			ConfiguredAt: time.Now().UTC(),
		}
		if err := s.repo.InsertPrice(ctx, tx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("configured price",
		zap.String("sku", sku),
		zap.Time("valid_from", validFrom),
		zap.String("price", price.String()),
	)
	return out, nil
}

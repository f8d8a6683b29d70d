package service

import (
	"context"

	catalogdomain "github.com/usageworks/accounting/internal/catalog/domain"
	"github.com/usageworks/accounting/internal/estimator"
	"github.com/usageworks/accounting/internal/ratesample/domain"
	dberr "github.com/usageworks/accounting/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	Catalog   catalogdomain.Service
	Estimator estimator.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	catalog   catalogdomain.Service
	estimator estimator.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("ratesample.service"),
		repo:      p.Repo,
		catalog:   p.Catalog,
		estimator: p.Estimator,
	}
}

func (s *Service) Ingest(ctx context.Context, msg *domain.SampleMessage) error {
	id, err := s.repo.InsertFromMessage(ctx, s.db, msg)
	if err != nil {
		if !dberr.IsIntegrityErr(err) {
			return err
		}
		if err := s.catalog.EnsureSKU(ctx, msg.SKU); err != nil {
			return err
		}
		if id, err = s.repo.InsertFromMessage(ctx, s.db, msg); err != nil {
			return err
		}
	}
	if id == nil {
		s.log.Debug("ignoring rate sample, uuid already recorded",
			zap.String("uuid", msg.UUID.String()),
		)
	}

	// Redelivered samples still advance the estimator; generation is
	// idempotent so the worst case is a no-op pass.
	return s.estimator.GenerateUpTo(ctx, msg.Workspace, msg.SKU, estimator.FloorHour(msg.SampleTime))
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/usageworks/accounting/internal/workspace/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidWorkspace = errors.New("invalid workspace name")

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
		log:  p.Log.Named("workspace.service"),
		repo: p.Repo,
	}
}

func (s *Service) RecordMapping(ctx context.Context, account uuid.UUID, workspace string) (bool, error) {
	workspace = strings.TrimSpace(workspace)
	if workspace == "" {
		return false, ErrInvalidWorkspace
	}

	recorded, err := s.repo.InsertIgnore(ctx, s.db, &domain.WorkspaceAccount{
		Workspace: workspace,
		Account:   account,
	})
	if err != nil {
		return false, err
	}

	if recorded {
		s.log.Info("associated workspace with account",
			zap.String("workspace", workspace),
			zap.String("account", account.String()),
		)
	} else {
		s.log.Debug("ignoring workspace settings, already known",
			zap.String("workspace", workspace),
		)
	}
	return recorded, nil
}

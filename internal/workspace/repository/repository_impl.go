package repository

import (
	"context"

	"github.com/usageworks/accounting/internal/workspace/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIgnore(ctx context.Context, db *gorm.DB, mapping *domain.WorkspaceAccount) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "workspace"}},
			DoNothing: true,
		}).
		Create(mapping)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) FindByWorkspace(ctx context.Context, db *gorm.DB, workspace string) (*domain.WorkspaceAccount, error) {
	var rows []domain.WorkspaceAccount
	err := db.WithContext(ctx).
		Where("workspace = ?", workspace).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

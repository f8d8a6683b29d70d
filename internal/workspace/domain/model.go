package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkspaceAccount records which billing account contains each workspace.
// This is not authoritative data; the workspace service owns it and we
// observe it from the bus. Workspaces never move between accounts.
type WorkspaceAccount struct {
	Workspace string    `json:"workspace" gorm:"column:workspace;type:text;primaryKey"`
	Account   uuid.UUID `json:"account" gorm:"column:account;type:uuid;not null;index:idx_workspace_accounts_account"`
}

func (WorkspaceAccount) TableName() string { return "workspace_accounts" }

type Repository interface {
	// InsertIgnore inserts the mapping unless the workspace is already
	// recorded. Returns true iff a row was inserted.
	InsertIgnore(ctx context.Context, db *gorm.DB, mapping *WorkspaceAccount) (bool, error)
	FindByWorkspace(ctx context.Context, db *gorm.DB, workspace string) (*WorkspaceAccount, error)
}

type Service interface {
	// RecordMapping associates a workspace with an account, first writer
	// wins. Returns true iff this call recorded the mapping.
	RecordMapping(ctx context.Context, account uuid.UUID, workspace string) (bool, error)
}

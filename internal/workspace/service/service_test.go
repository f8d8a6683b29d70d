package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/usageworks/accounting/internal/workspace/domain"
	"github.com/usageworks/accounting/internal/workspace/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:workspace%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.WorkspaceAccount{}); err != nil {
		t.Fatal(err)
	}
	svc := New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})
	return svc, db
}

func TestRecordMappingFirstWriterWins(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	recorded, err := svc.RecordMapping(ctx, first, "workspace1")
	assert.NoError(t, err)
	assert.True(t, recorded)

	// A later message for the same workspace is ignored, even with a
	// different account.
	recorded, err = svc.RecordMapping(ctx, second, "workspace1")
	assert.NoError(t, err)
	assert.False(t, recorded)

	var mapping domain.WorkspaceAccount
	assert.NoError(t, db.First(&mapping, "workspace = ?", "workspace1").Error)
	assert.Equal(t, first, mapping.Account)
}

func TestRecordMappingRejectsEmptyName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordMapping(context.Background(), uuid.New(), "  ")
	assert.ErrorIs(t, err, ErrInvalidWorkspace)
}

func TestRecordMappingDistinctWorkspaces(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	account := uuid.New()

	recorded, err := svc.RecordMapping(ctx, account, "workspace1")
	assert.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = svc.RecordMapping(ctx, account, "workspace2")
	assert.NoError(t, err)
	assert.True(t, recorded)
}

package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posbridge/notifier/internal/domain/model"
)

func TestMemoryAuditRepo_Create_AssignsIDs(t *testing.T) {
	repo := NewMemoryAuditRepo()
	ctx := context.Background()

	first := model.NewAuditRecord("evt-1", "send-sms")
	second := model.NewAuditRecord("evt-1", "send-email")

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Len(t, repo.All(), 2)
}

func TestMemoryAuditRepo_Save_ZeroIDInserts(t *testing.T) {
	repo := NewMemoryAuditRepo()

	rec := model.NewAuditRecord("evt-1", "send-sms")
	require.NoError(t, repo.Save(context.Background(), rec))

	assert.Equal(t, int64(1), rec.ID)
	require.NotNil(t, repo.Get(1))
}

func TestMemoryAuditRepo_Save_UpdatesInPlace(t *testing.T) {
	repo := NewMemoryAuditRepo()
	ctx := context.Background()

	rec := model.NewAuditRecord("evt-1", "send-sms")
	require.NoError(t, repo.Create(ctx, rec))

	require.NoError(t, rec.MarkSuccess(time.Now(), "ok"))
	require.NoError(t, repo.Save(ctx, rec))

	stored := repo.Get(rec.ID)
	require.NotNil(t, stored)
	assert.Equal(t, model.AuditStatusSuccess, stored.Status)
	assert.Len(t, repo.All(), 1)
}

func TestMemoryAuditRepo_Save_UnknownIDFails(t *testing.T) {
	repo := NewMemoryAuditRepo()

	rec := model.NewAuditRecord("evt-1", "send-sms")
	rec.ID = 42

	err := repo.Save(context.Background(), rec)
	require.ErrorIs(t, err, ErrAuditNotFound)
}

func TestMemoryAuditRepo_History_RecordsSnapshots(t *testing.T) {
	repo := NewMemoryAuditRepo()
	ctx := context.Background()

	rec := model.NewAuditRecord("evt-1", "send-sms")
	require.NoError(t, repo.Create(ctx, rec))
	require.NoError(t, rec.MarkFailed(time.Now(), "boom"))
	require.NoError(t, repo.Save(ctx, rec))

	history := repo.History()
	require.Len(t, history, 2)
	assert.Equal(t, model.AuditStatusQueued, history[0].Status)
	assert.Equal(t, model.AuditStatusFailed, history[1].Status)
}

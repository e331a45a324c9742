package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditRecord_StartsQueued(t *testing.T) {
	rec := NewAuditRecord("evt-1", ChannelEmail.TaskName())

	assert.Equal(t, int64(0), rec.ID)
	assert.Equal(t, "evt-1", rec.RecordID)
	assert.Equal(t, AuditStatusQueued, rec.Status)
	assert.Equal(t, "send-email", rec.Type)
	assert.Nil(t, rec.Message)
	assert.Nil(t, rec.CreatedDate)
}

func TestAuditRecord_MarkProcessing_FromQueued(t *testing.T) {
	rec := NewAuditRecord("evt-1", "send-sms")

	require.NoError(t, rec.MarkProcessing())
	assert.Equal(t, AuditStatusProcessing, rec.Status)
}

func TestAuditRecord_MarkSuccess_SetsMessageAndDate(t *testing.T) {
	rec := NewAuditRecord("evt-1", "send-sms")
	require.NoError(t, rec.MarkProcessing())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, rec.MarkSuccess(now, "delivered"))

	assert.Equal(t, AuditStatusSuccess, rec.Status)
	require.NotNil(t, rec.Message)
	assert.Equal(t, "delivered", *rec.Message)
	require.NotNil(t, rec.CreatedDate)
	assert.Equal(t, now, *rec.CreatedDate)
}

func TestAuditRecord_MarkSuccess_EmptyMessageLeavesNil(t *testing.T) {
	rec := NewAuditRecord("evt-1", "send-sms")

	require.NoError(t, rec.MarkSuccess(time.Now(), ""))
	assert.Nil(t, rec.Message)
}

func TestAuditRecord_TerminalStatesAreFinal(t *testing.T) {
	now := time.Now()

	succeeded := NewAuditRecord("evt-1", "send-email")
	require.NoError(t, succeeded.MarkSuccess(now, "ok"))

	require.ErrorIs(t, succeeded.MarkProcessing(), ErrTerminalAudit)
	require.ErrorIs(t, succeeded.MarkFailed(now, "late failure"), ErrTerminalAudit)
	assert.Equal(t, AuditStatusSuccess, succeeded.Status)

	failed := NewAuditRecord("evt-2", "send-email")
	require.NoError(t, failed.MarkFailed(now, "boom"))

	require.ErrorIs(t, failed.MarkSuccess(now, "late success"), ErrTerminalAudit)
	assert.Equal(t, AuditStatusFailed, failed.Status)
}

func TestAuditStatus_Terminal(t *testing.T) {
	assert.False(t, AuditStatusQueued.Terminal())
	assert.False(t, AuditStatusProcessing.Terminal())
	assert.True(t, AuditStatusSuccess.Terminal())
	assert.True(t, AuditStatusFailed.Terminal())
}

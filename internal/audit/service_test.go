package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/reading-tracker/internal/database/audit"
	"github.com/mrlokans/reading-tracker/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))

	return NewService(auditRepo.NewRepository(db), zap.NewNop()), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventImport,
		Action:    "test_import",
		Status:    entities.AuditStatusSuccess,
	}
	require.NoError(t, svc.Log(context.Background(), event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, "test_import", saved.Action)
}

func TestService_LogImport(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful import", func(t *testing.T) {
		svc.LogImport(1, "abc.json", map[string]int{"books": 2}, nil)
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ? AND status = ?", "snapshot_import", entities.AuditStatusSuccess).First(&event).Error)
		assert.Equal(t, entities.AuditEventImport, event.EventType)
		assert.JSONEq(t, `{"inserted":{"books":2},"archived_payload":"abc.json"}`, event.Metadata)
	})

	t.Run("rejected import", func(t *testing.T) {
		svc.LogImport(1, "", nil, errors.New("validation failed: books[0].title: is required"))
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ? AND status = ?", "snapshot_import", entities.AuditStatusFailed).First(&event).Error)
		assert.Contains(t, event.ErrorMsg, "title")
	})
}

func TestService_LogSessionAndBackup(t *testing.T) {
	svc, db := setupTestService(t)

	duration := int64(90)
	svc.LogSession(3, "stop", &entities.ReadingSession{ID: 7, BookID: 2, DurationSec: &duration})
	svc.LogBackup(3, "file:///backups/x.json", nil)
	svc.LogExport(3, map[string]int{"books": 1}, nil)
	svc.Wait()

	events, total, err := svc.GetEvents(context.Background(), 3, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, events, 3)

	var session entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "session_stop").First(&session).Error)
	require.NotNil(t, session.EntityID)
	assert.Equal(t, uint(7), *session.EntityID)
	assert.JSONEq(t, `{"duration_sec":90}`, session.Metadata)

	backups, total, err := svc.GetEvents(context.Background(), 3, entities.AuditEventBackup, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "snapshot_backup", backups[0].Action)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{UserID: 1, Action: "old", CreatedAt: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{UserID: 1, Action: "new"}))

	deleted, err := svc.DeleteOldEvents(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	db.Model(&entities.AuditEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

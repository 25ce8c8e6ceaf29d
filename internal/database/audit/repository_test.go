package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/reading-tracker/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return db
}

func TestRepository_LogEvent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventImport,
		Action:      "snapshot_import",
		Description: "Imported 10 books",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(context.Background(), event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	for i := 0; i < 15; i++ {
		require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventImport,
			Action:    "snapshot_import",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		}))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
			UserID:    2,
			EventType: entities.AuditEventExport,
			Action:    "snapshot_export",
			Status:    entities.AuditStatusSuccess,
		}))
	}

	t.Run("get all events", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, 0, "", 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})

	t.Run("get user events", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, 1, "", 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 15)
	})

	t.Run("filter by type", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, 0, entities.AuditEventExport, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		for _, e := range events {
			assert.Equal(t, entities.AuditEventExport, e.EventType)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, 1, "", 5, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 5)

		events2, _, err := repo.GetEvents(ctx, 1, "", 5, 5)
		require.NoError(t, err)
		assert.Len(t, events2, 5)
		assert.NotEqual(t, events[0].ID, events2[0].ID)
	})

	t.Run("order by created_at desc", func(t *testing.T) {
		events, _, err := repo.GetEvents(ctx, 1, "", 10, 0)
		require.NoError(t, err)
		for i := 1; i < len(events); i++ {
			assert.False(t, events[i].CreatedAt.After(events[i-1].CreatedAt))
		}
	})
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	now := time.Now()
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		UserID: 1, EventType: entities.AuditEventImport, Action: "old_import",
		Status: entities.AuditStatusSuccess, CreatedAt: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		UserID: 1, EventType: entities.AuditEventSession, Action: "session_start",
		Status: entities.AuditStatusSuccess, CreatedAt: now.Add(-1 * time.Hour),
	}))

	deleted, err := repo.DeleteOldEvents(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := repo.GetEvents(ctx, 1, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "session_start", events[0].Action)
}

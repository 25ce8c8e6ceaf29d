package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// Backupper writes library snapshots to the configured sink.
type Backupper interface {
	BackupUser(ctx context.Context, userID uint) (string, error)
	BackupAll(ctx context.Context) (int, error)
}

// BackupTask backs up one user's library, or every user when UserID is 0.
type BackupTask struct {
	UserID uint `json:"user_id,omitempty"`
}

// Config returns the queue configuration for backup tasks.
func (t BackupTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "backup_snapshots",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BackupProcessor creates a processor function for BackupTask.
func BackupProcessor(backupper Backupper, log *zap.Logger) backlite.QueueProcessor[BackupTask] {
	return func(ctx context.Context, task BackupTask) error {
		if backupper == nil {
			return fmt.Errorf("backup service not configured")
		}

		if task.UserID != 0 {
			location, err := backupper.BackupUser(ctx, task.UserID)
			if err != nil {
				return fmt.Errorf("backup user %d: %w", task.UserID, err)
			}
			log.Info("backup task finished", zap.Uint("user_id", task.UserID), zap.String("location", location))
			return nil
		}

		written, err := backupper.BackupAll(ctx)
		if err != nil {
			return fmt.Errorf("backup all users (%d written): %w", written, err)
		}
		log.Info("backup task finished", zap.Int("users", written))
		return nil
	}
}

// NewBackupQueue creates a backlite queue for backup tasks.
func NewBackupQueue(backupper Backupper, log *zap.Logger) backlite.Queue {
	return backlite.NewQueue(BackupProcessor(backupper, log))
}

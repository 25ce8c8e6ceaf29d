// Package backup writes per-user library snapshots to a Sink.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/library"
)

// Exporter builds the snapshot that gets backed up.
type Exporter interface {
	Export(ctx context.Context, userID uint) (*library.Snapshot, error)
}

// UserLister enumerates the users included in a full backup.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]uint, error)
}

// Recorder receives one call per attempted user backup.
type Recorder interface {
	LogBackup(userID uint, location string, err error)
}

type Service struct {
	exporter Exporter
	users    UserLister
	sink     Sink
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time
}

func NewService(exporter Exporter, users UserLister, sink Sink, recorder Recorder, log *zap.Logger) *Service {
	return &Service{
		exporter: exporter,
		users:    users,
		sink:     sink,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}
}

// Key names a backup object: snapshots/<user>/<timestamp>-<uuid>.json
func (s *Service) Key(userID uint) string {
	return fmt.Sprintf("snapshots/%d/%s-%s.json", userID, s.now().UTC().Format("20060102T150405Z"), uuid.NewString())
}

// BackupUser exports userID's library and stores it in the sink.
func (s *Service) BackupUser(ctx context.Context, userID uint) (string, error) {
	location, err := s.backupUser(ctx, userID)
	if s.recorder != nil {
		s.recorder.LogBackup(userID, location, err)
	}
	if err != nil {
		s.log.Error("backup failed", zap.Uint("user_id", userID), zap.Error(err))
		return "", err
	}
	s.log.Info("backup written", zap.Uint("user_id", userID), zap.String("location", location))
	return location, nil
}

func (s *Service) backupUser(ctx context.Context, userID uint) (string, error) {
	snap, err := s.exporter.Export(ctx, userID)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return s.sink.Put(ctx, s.Key(userID), data)
}

// BackupAll backs up every user. A failing user does not stop the others,
// the first error is returned after the loop together with the success count.
func (s *Service) BackupAll(ctx context.Context) (int, error) {
	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	var firstErr error
	written := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if _, err := s.BackupUser(ctx, id); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		written++
	}
	return written, firstErr
}

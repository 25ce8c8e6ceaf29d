package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/database/audit"
	"github.com/mrlokans/reading-tracker/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	log  *zap.Logger
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
// The write is detached from any request context.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			s.log.Warn("failed to log audit event",
				zap.String("action", event.Action),
				zap.Uint("user_id", event.UserID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogImport records a snapshot import with per-kind counts.
func (s *Service) LogImport(userID uint, archived string, inserted any, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventImport,
		Action:      "snapshot_import",
		Description: "Replaced library from snapshot",
		EntityType:  "library",
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{"inserted": inserted}
	if archived != "" {
		metadata["archived_payload"] = archived
	}
	event.Metadata = encodeMetadata(metadata)

	if err != nil {
		event.Description = "Snapshot import rejected"
		markFailed(event, err)
	}

	s.LogAsync(event)
}

// LogExport records a snapshot export.
func (s *Service) LogExport(userID uint, counts any, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventExport,
		Action:      "snapshot_export",
		Description: "Exported library snapshot",
		EntityType:  "library",
		Metadata:    encodeMetadata(map[string]any{"counts": counts}),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		markFailed(event, err)
	}

	s.LogAsync(event)
}

// LogBackup records a snapshot written to a backup sink.
func (s *Service) LogBackup(userID uint, location string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBackup,
		Action:      "snapshot_backup",
		Description: "Backed up library to " + location,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Description = "Backup failed"
		markFailed(event, err)
	}

	s.LogAsync(event)
}

// LogSession records a reading session start or stop.
func (s *Service) LogSession(userID uint, action string, session *entities.ReadingSession) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSession,
		Action:      "session_" + action,
		Description: fmt.Sprintf("Session %s for book %d", action, session.BookID),
		EntityType:  "reading_session",
		EntityID:    &session.ID,
		Status:      entities.AuditStatusSuccess,
	}
	if session.DurationSec != nil {
		event.Metadata = encodeMetadata(map[string]any{"duration_sec": *session.DurationSec})
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(ctx, retention)
}

func markFailed(event *entities.AuditEvent, err error) {
	event.Status = entities.AuditStatusFailed
	event.ErrorMsg = truncate(err.Error(), 500)
}

func encodeMetadata(metadata map[string]any) string {
	data, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

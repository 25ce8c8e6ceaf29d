package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/entities"
)

type AuditEventReader interface {
	GetEvents(ctx context.Context, userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	events AuditEventReader
	log    *zap.Logger
}

func NewAuditController(events AuditEventReader, log *zap.Logger) *AuditController {
	return &AuditController{events: events, log: log}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?page=1&limit=25&type=import
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	userID := GetUserID(c)
	page, limit := parsePage(c, 25, 100)
	offset := (page - 1) * limit

	eventType := entities.AuditEventType(c.Query("type"))
	if eventType != "" && !knownEventType(eventType) {
		respondBadRequest(c, "bad_type", "unknown event type "+string(eventType))
		return
	}

	events, total, err := ac.events.GetEvents(c.Request.Context(), userID, eventType, limit, offset)
	if err != nil {
		ac.log.Error("failed to load audit events", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:     "failed to load audit events",
			Code:      "audit_failed",
			Retryable: true,
		})
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}

func knownEventType(t entities.AuditEventType) bool {
	switch t {
	case entities.AuditEventImport, entities.AuditEventExport, entities.AuditEventBackup, entities.AuditEventSession:
		return true
	}
	return false
}

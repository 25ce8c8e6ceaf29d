package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/entities"
	"github.com/mrlokans/reading-tracker/internal/streaks"
)

type SessionTracker interface {
	Start(ctx context.Context, userID, bookID uint) (*entities.ReadingSession, error)
	Stop(ctx context.Context, userID, bookID uint) (*entities.ReadingSession, error)
	List(ctx context.Context, userID, bookID uint) ([]entities.ReadingSession, error)
}

type SummaryProvider interface {
	Summary(ctx context.Context, userID uint) (*streaks.Summary, error)
}

// SessionAuditor records session lifecycle events.
type SessionAuditor interface {
	LogSession(userID uint, action string, session *entities.ReadingSession)
}

type SessionsController struct {
	sessions SessionTracker
	summary  SummaryProvider
	auditor  SessionAuditor
	log      *zap.Logger
}

func NewSessionsController(sessions SessionTracker, summary SummaryProvider, auditor SessionAuditor, log *zap.Logger) *SessionsController {
	return &SessionsController{
		sessions: sessions,
		summary:  summary,
		auditor:  auditor,
		log:      log,
	}
}

// SessionResponse is one reading session as returned by the API.
type SessionResponse struct {
	ID          uint   `json:"id"`
	BookID      uint   `json:"book_id"`
	StartTS     string `json:"start_ts"`
	EndTS       string `json:"end_ts,omitempty"`
	DurationSec *int64 `json:"duration_sec"`
}

func toSessionResponse(s entities.ReadingSession) SessionResponse {
	resp := SessionResponse{
		ID:          s.ID,
		BookID:      s.BookID,
		StartTS:     s.StartTS.UTC().Format(time.RFC3339),
		DurationSec: s.DurationSec,
	}
	if s.EndTS != nil {
		resp.EndTS = s.EndTS.UTC().Format(time.RFC3339)
	}
	return resp
}

// Start handles POST /api/books/:id/sessions/start
func (sc *SessionsController) Start(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	session, err := sc.sessions.Start(c.Request.Context(), userID, bookID)
	if err != nil {
		respondError(c, sc.log, err, "sessions_start")
		return
	}
	sc.audit(userID, "start", session)

	c.JSON(http.StatusOK, gin.H{"id": session.ID})
}

// Stop handles POST /api/books/:id/sessions/stop
func (sc *SessionsController) Stop(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	session, err := sc.sessions.Stop(c.Request.Context(), userID, bookID)
	if err != nil {
		respondError(c, sc.log, err, "sessions_stop")
		return
	}
	sc.audit(userID, "stop", session)

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"session": toSessionResponse(*session),
	})
}

// List handles GET /api/books/:id/sessions
func (sc *SessionsController) List(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sessions, err := sc.sessions.List(c.Request.Context(), GetUserID(c), bookID)
	if err != nil {
		respondError(c, sc.log, err, "sessions_list")
		return
	}

	resp := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, toSessionResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

// Summary handles GET /api/sessions/summary
func (sc *SessionsController) Summary(c *gin.Context) {
	summary, err := sc.summary.Summary(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondError(c, sc.log, err, "sessions_summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (sc *SessionsController) audit(userID uint, action string, session *entities.ReadingSession) {
	if sc.auditor != nil {
		sc.auditor.LogSession(userID, action, session)
	}
}

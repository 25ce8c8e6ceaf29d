package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/auth"
	"github.com/mrlokans/reading-tracker/internal/errs"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`      // machine-readable error code
	Details   any    `json:"details,omitempty"`   // additional context (validation errors, etc.)
	Retryable bool   `json:"retryable,omitempty"` // set for transient storage failures
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: code})
}

// respondError maps core errors onto status codes. Storage detail is
// logged and never returned to the client.
func respondError(c *gin.Context, log *zap.Logger, err error, op string) {
	var validation *errs.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Code:    "validation_failed",
			Details: validation.Fields,
		})
	case errors.Is(err, errs.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_failed"})
	case errors.Is(err, errs.ErrNoActiveSession):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no active session", Code: "no_active_session"})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: "not_found"})
	case errors.Is(err, errs.ErrStoreUnavailable):
		log.Error("store unavailable", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:     "storage temporarily unavailable",
			Code:      op + "_failed",
			Retryable: true,
		})
	default:
		log.Error("request failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: op + "_failed"})
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates a positive integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "bad_id", "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePage reads page/limit query parameters, clamping limit to [1, maxLimit].
func parsePage(c *gin.Context, defaultLimit, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit
}

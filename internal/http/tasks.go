package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/tasks"
)

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController handles backup triggering and task status endpoints.
type TasksController struct {
	queue TaskQueue
	log   *zap.Logger
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue, log *zap.Logger) *TasksController {
	return &TasksController{queue: queue, log: log}
}

// CreateBackup handles POST /api/backups
// Enqueues a backup of the caller's library.
func (tc *TasksController) CreateBackup(c *gin.Context) {
	task := tasks.BackupTask{UserID: GetUserID(c)}

	id, err := tc.queue.Enqueue(task)
	if err != nil {
		tc.log.Error("failed to enqueue backup", zap.Uint("user_id", task.UserID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:     "task queue unavailable",
			Code:      "backup_enqueue_failed",
			Retryable: true,
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": id,
		"type":    task.Config().Name,
		"message": "task enqueued",
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "bad_id", "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		tc.log.Error("failed to load task status", zap.String("task_id", taskID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:     "task queue unavailable",
			Code:      "task_status_failed",
			Retryable: true,
		})
		return
	}

	if status == backlite.TaskStatusNotFound {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "task not found", Code: "not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusString(status),
	})
}

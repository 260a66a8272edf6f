package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/pagekeeper/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	client             TaskQueue
	auditRetentionDays int
	auditKeepFailed    bool
}

// NewTasksController creates a new TasksController. The audit settings are
// the defaults for manually run cleanups.
func NewTasksController(client TaskQueue, auditRetentionDays int, auditKeepFailed bool) *TasksController {
	return &TasksController{client: client, auditRetentionDays: auditRetentionDays, auditKeepFailed: auditKeepFailed}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

var taskTypes = []TaskTypeInfo{
	{
		Type:        "harvest_history",
		Description: "Import browsing history visited since the last harvest",
		Queue:       tasks.HarvestHistoryTask{}.Config().Name,
	},
	{
		Type:        "cleanup_audit_events",
		Description: "Delete audit events older than the retention period",
		Queue:       tasks.CleanupAuditEventsTask{}.Config().Name,
	},
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the list of available task types that can be triggered.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"task_types": taskTypes,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// RetentionDays and KeepFailed override the configured audit cleanup.
	RetentionDays int   `json:"retention_days,omitempty"`
	KeepFailed    *bool `json:"keep_failed,omitempty"`
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a task of the specified type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	task, ok := tc.buildTask(taskType, req)
	if !ok {
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	id, err := tc.client.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": id,
		"type":    taskType,
		"message": "task enqueued",
	})
}

func (tc *TasksController) buildTask(taskType string, req RunTaskRequest) (backlite.Task, bool) {
	switch taskType {
	case "harvest_history":
		return tasks.HarvestHistoryTask{Trigger: "manual"}, true
	case "cleanup_audit_events":
		task := tasks.CleanupAuditEventsTask{
			RetentionDays: req.RetentionDays,
			KeepFailed:    tc.auditKeepFailed,
		}
		if task.RetentionDays <= 0 {
			task.RetentionDays = tc.auditRetentionDays
		}
		if req.KeepFailed != nil {
			task.KeepFailed = *req.KeepFailed
		}
		return task, true
	}
	return nil, false
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

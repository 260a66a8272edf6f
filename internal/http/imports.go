package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/pagekeeper/internal/batch"
	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/imports"
	"github.com/mrlokans/pagekeeper/internal/logger"
)

// ImportsController is the control channel of the history import: it opens
// sessions, relays commands and streams session events.
type ImportsController struct {
	sessions  SessionManager
	estimator Estimator
	queue     ImportQueue
	visits    VisitIndex
	progress  ProgressReader
	audit     AuditLog
	heartbeat time.Duration
}

func NewImportsController(cfg RouterConfig) *ImportsController {
	return &ImportsController{
		sessions:  cfg.Sessions,
		estimator: cfg.Estimator,
		queue:     cfg.Queue,
		visits:    cfg.Visits,
		progress:  cfg.Progress,
		audit:     cfg.Audit,
		heartbeat: sseHeartbeatInterval,
	}
}

// OpenSession handles POST /api/imports/session
// Harvests new history and opens an idle session over the pending records.
func (ic *ImportsController) OpenSession(c *gin.Context) {
	s, err := ic.sessions.Open(c.Request.Context())
	if errors.Is(err, imports.ErrSessionActive) {
		respondConflict(c, "SESSION_ACTIVE", err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "open import session")
		return
	}
	c.JSON(http.StatusCreated, s.Summary())
}

// GetSession handles GET /api/imports/session
func (ic *ImportsController) GetSession(c *gin.Context) {
	s, ok := ic.currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Summary())
}

// CloseSession handles DELETE /api/imports/session
// Stops the session and waits for in-flight items.
func (ic *ImportsController) CloseSession(c *gin.Context) {
	s, ok := ic.currentSession(c)
	if !ok {
		return
	}
	if err := ic.sessions.Close(c.Request.Context()); err != nil && !errors.Is(err, imports.ErrNoSession) {
		respondInternalError(c, err, "close import session")
		return
	}
	c.JSON(http.StatusOK, s.Summary())
}

// CommandRequest is the request body for POST /api/imports/commands
type CommandRequest struct {
	Cmd string `json:"cmd" binding:"required"`
}

// Command handles POST /api/imports/commands
// The command is parsed before the session is looked up: an unknown command
// is a 400 whether or not a session is open, a valid command with no open
// session is a 404, and a command the current state does not allow is a 409.
func (ic *ImportsController) Command(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "cmd is required")
		return
	}

	log := requestLogger(c).WithField(logger.FieldCommand, req.Cmd)

	cmd, err := batch.ParseCommand(req.Cmd)
	if err != nil {
		log.WithError(err).Warn("Unknown import command")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "UNKNOWN_COMMAND"})
		return
	}

	s, ok := ic.currentSession(c)
	if !ok {
		return
	}

	if err := s.Handle(cmd); err != nil {
		if errors.Is(err, batch.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   err.Error(),
				Code:    "INVALID_TRANSITION",
				Details: gin.H{"state": s.State()},
			})
			return
		}
		respondInternalError(c, err, "handle import command")
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": s.State()})
}

// Events handles GET /api/imports/events
// Streams session events as Server-Sent Events. Event ids are sequence
// numbers, so a reconnecting client resumes after Last-Event-ID.
func (ic *ImportsController) Events(c *gin.Context) {
	s, ok := ic.currentSession(c)
	if !ok {
		return
	}

	next, ok := resumePoint(c)
	if !ok {
		return
	}

	log := requestLogger(c)
	setSSEHeaders(c.Writer)
	c.Status(http.StatusOK)
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	for {
		waitCtx, cancel := context.WithTimeout(reqCtx, ic.heartbeat)
		events, err := s.EventsSince(waitCtx, next)
		cancel()

		switch {
		case errors.Is(err, imports.ErrSessionClosed):
			return
		case reqCtx.Err() != nil:
			log.Debug("SSE client disconnected")
			return
		case errors.Is(err, context.DeadlineExceeded):
			if err := writeHeartbeat(c.Writer); err != nil {
				return
			}
			c.Writer.Flush()
			continue
		case err != nil:
			log.WithError(err).Warn("SSE stream failed")
			return
		}

		for _, ev := range events {
			if err := writeSSE(c.Writer, string(ev.Type), strconv.Itoa(ev.Seq), ev); err != nil {
				log.WithError(err).Debug("SSE write failed")
				return
			}
		}
		c.Writer.Flush()
		next += len(events)
	}
}

// resumePoint returns the first event number to send, from Last-Event-ID or
// the "from" query parameter.
func resumePoint(c *gin.Context) (int, bool) {
	if last := c.GetHeader("Last-Event-ID"); last != "" {
		seq, err := strconv.Atoi(last)
		if err != nil || seq < 0 {
			respondBadRequest(c, "invalid Last-Event-ID")
			return 0, false
		}
		return seq + 1, true
	}
	from, ok := parseInt64Query(c, "from", 0)
	return int(from), ok
}

// EstimateResponse is the response for GET /api/imports/estimates
type EstimateResponse struct {
	Completed     int64  `json:"completed"`
	Remaining     int64  `json:"remaining"`
	Start         int64  `json:"start"`
	End           int64  `json:"end"`
	OldestVisitAt *int64 `json:"oldest_visit_at,omitempty"`
}

// Estimates handles GET /api/imports/estimates
// The window defaults to [0, now) and can be narrowed with start and end
// (ms epoch).
func (ic *ImportsController) Estimates(c *gin.Context) {
	start, ok := parseInt64Query(c, "start", 0)
	if !ok {
		return
	}
	end, ok := parseInt64Query(c, "end", time.Now().UnixMilli())
	if !ok {
		return
	}
	if end < start {
		respondBadRequest(c, "end must not be before start")
		return
	}

	ctx := c.Request.Context()
	est, err := ic.estimator.Estimate(ctx, start, end)
	if err != nil {
		respondInternalError(c, err, "estimate import")
		return
	}

	resp := EstimateResponse{Completed: est.Completed, Remaining: est.Remaining, Start: start, End: end}
	if ic.visits != nil {
		oldest, found, err := ic.visits.OldestVisitTimestamp(ctx)
		if err != nil {
			respondInternalError(c, err, "oldest visit")
			return
		}
		if found {
			resp.OldestVisitAt = &oldest
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Counts handles GET /api/imports/counts
func (ic *ImportsController) Counts(c *gin.Context) {
	counts, err := ic.queue.Counts(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "count import records")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// Progress handles GET /api/imports/progress
func (ic *ImportsController) Progress(c *gin.Context) {
	progress, err := ic.progress.GetSyncProgress(c.Request.Context())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "import progress")
		return
	}
	if err != nil {
		respondInternalError(c, err, "read import progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// ResetFailed handles POST /api/imports/failed/reset
// Re-queues failed history records for the next session.
func (ic *ImportsController) ResetFailed(c *gin.Context) {
	n, err := ic.queue.ResetFailed(c.Request.Context(), entities.ImportTypeHistory)
	if ic.audit != nil {
		ic.audit.LogReset(entities.ImportTypeHistory, n, err)
	}
	if err != nil {
		respondInternalError(c, err, "reset failed imports")
		return
	}
	respondSuccess(c, "failed imports re-queued", gin.H{"reset": n})
}

func (ic *ImportsController) currentSession(c *gin.Context) (*imports.Session, bool) {
	s, err := ic.sessions.Current()
	if errors.Is(err, imports.ErrNoSession) {
		respondNotFound(c, "import session")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "current import session")
		return nil, false
	}
	return s, true
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

type AuditController struct {
	audit AuditLog
}

func NewAuditController(audit AuditLog) *AuditController {
	return &AuditController{audit: audit}
}

// GetAuditEvents returns paginated audit events as JSON, optionally filtered
// by ?type= and ?status=.
// GET /api/audit
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit, offset, page := parsePagination(c)

	eventType := c.Query("type")
	if eventType != "" && !isKnownEventType(eventType) {
		respondBadRequest(c, "unknown event type: "+eventType)
		return
	}
	status := entities.AuditStatus(c.Query("status"))
	switch status {
	case "", entities.AuditStatusSuccess, entities.AuditStatusFailed:
	default:
		respondBadRequest(c, "unknown status: "+string(status))
		return
	}

	events, total, err := ac.audit.Events(entities.AuditEventType(eventType), status, limit, offset)
	if err != nil {
		respondInternalError(c, err, "load audit events")
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
		HasMore:    page < totalPages,
		TotalPages: totalPages,
	})
}

// GetEventTypes handles GET /api/audit/types
func (ac *AuditController) GetEventTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"event_types": eventTypes})
}

type EventTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var eventTypes = []EventTypeOption{
	{Value: string(entities.AuditEventHarvest), Label: "History harvest"},
	{Value: string(entities.AuditEventSession), Label: "Import session"},
	{Value: string(entities.AuditEventReset), Label: "Failed import reset"},
	{Value: string(entities.AuditEventSettings), Label: "Settings"},
}

func isKnownEventType(t string) bool {
	for _, et := range eventTypes {
		if et.Value == t {
			return true
		}
	}
	return false
}

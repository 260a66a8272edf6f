package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

func TestAuditController_GetAuditEvents(t *testing.T) {
	audit := &recordingAudit{events: []entities.AuditEvent{
		{ID: 1, EventType: entities.AuditEventHarvest, Action: "history_harvest", Status: entities.AuditStatusSuccess},
		{ID: 2, EventType: entities.AuditEventSession, Action: "session_complete", Status: entities.AuditStatusSuccess},
		{ID: 3, EventType: entities.AuditEventHarvest, Action: "history_harvest", Status: entities.AuditStatusFailed},
	}}
	router := NewRouter(RouterConfig{Audit: audit})

	t.Run("all events", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp PaginatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(3), resp.Total)
		assert.Equal(t, 25, resp.Limit)
		assert.False(t, resp.HasMore)
	})

	t.Run("filtered by type", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit?type=harvest&limit=1", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp PaginatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(2), resp.Total)
		assert.Equal(t, 2, resp.TotalPages)
		assert.True(t, resp.HasMore)
		assert.Equal(t, entities.AuditEventHarvest, audit.lastType)
	})

	t.Run("filtered by status", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit?status=failed", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp PaginatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.Total)
		assert.Equal(t, entities.AuditStatusFailed, audit.lastStatus)
		assert.Equal(t, entities.AuditEventType(""), audit.lastType)
	})

	t.Run("unknown status", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit?status=pending", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit?type=sync", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuditController_GetEventTypes(t *testing.T) {
	router := NewRouter(RouterConfig{Audit: &recordingAudit{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit/types", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		EventTypes []EventTypeOption `json:"event_types"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.EventTypes, 4)
	assert.True(t, isKnownEventType("reset"))
	assert.False(t, isKnownEventType("oauth"))
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.Component("batch").WithField(FieldCount, 3).Info("drained")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "drained", line["message"])
	assert.Equal(t, "batch", line[FieldComponent])
	assert.Equal(t, "pagekeeper", line[FieldService])
	assert.EqualValues(t, 3, line[FieldCount])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "text", Output: &buf})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "loud", Output: &buf})

	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestTaskLogger_Pairs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.Tasks().Info("task processed", "queue", "harvest_history", "attempt", 1, "dangling")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "harvest_history", line["queue"])
	assert.EqualValues(t, 1, line["attempt"])
	assert.Equal(t, "dangling", line["extra"])
	assert.Equal(t, "tasks", line[FieldComponent])
}

func TestNop_Discards(t *testing.T) {
	log := Nop()
	log.Error("nothing")
	assert.NoError(t, log.Close())
}

package logger

// Fields is an alias for map[string]any for convenience.
type Fields map[string]any

const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldSessionID = "session_id"
	FieldTaskID    = "task_id"
	FieldURL       = "url"
	FieldCommand   = "command"
	FieldState     = "state"

	FieldCount      = "count"
	FieldDurationMs = "duration_ms"
	FieldStatus     = "status"
	FieldSize       = "size"
)

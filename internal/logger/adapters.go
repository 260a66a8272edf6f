package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

type gormWriter struct {
	l *Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.l.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Gorm returns a gorm logger writing through l. Every statement is logged when
// debug is enabled, otherwise only slow queries and errors.
func (l *Logger) Gorm() gormlogger.Interface {
	level := gormlogger.Warn
	if l.Logger.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	return gormlogger.New(gormWriter{l: l.Component("gorm")}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// TaskLogger adapts the logger to the task queue's Info/Error interface.
type TaskLogger struct {
	l *Logger
}

func (l *Logger) Tasks() *TaskLogger {
	return &TaskLogger{l: l.Component("tasks")}
}

func (t *TaskLogger) Info(message string, params ...any) {
	t.l.WithFields(pairs(params)).Info(message)
}

func (t *TaskLogger) Error(message string, params ...any) {
	t.l.WithFields(pairs(params)).Error(message)
}

// pairs turns backlite's alternating key/value params into fields.
func pairs(params []any) Fields {
	fields := Fields{}
	for i := 0; i+1 < len(params); i += 2 {
		key, ok := params[i].(string)
		if !ok {
			key = fmt.Sprint(params[i])
		}
		fields[key] = params[i+1]
	}
	if len(params)%2 == 1 {
		fields["extra"] = params[len(params)-1]
	}
	return fields
}

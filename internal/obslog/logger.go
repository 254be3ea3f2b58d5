// Package obslog is the ambient logging surface of the core engine: a
// small leveled interface over
// stderr, generalized from the teacher's per-layer loggers, plus a
// per-operation correlation ID for tying a request's log lines
// together.
package obslog

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// Logger is the leveled logging interface every layer depends on.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// defaultLogger writes directly to an io.Writer without level
// filtering; callers that want filtering wrap it.
type defaultLogger struct {
	output io.Writer
}

func (l *defaultLogger) Debug(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "DEBUG: "+format+"\n", args...)
}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "INFO: "+format+"\n", args...)
}

func (l *defaultLogger) Warn(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "WARN: "+format+"\n", args...)
}

func (l *defaultLogger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "ERROR: "+format+"\n", args...)
}

// globalLogger is the logger instance used across the module.
var globalLogger Logger = &defaultLogger{output: os.Stderr}

// SetLogger replaces the global logger. Passing nil is a no-op.
func SetLogger(logger Logger) {
	if logger != nil {
		globalLogger = logger
	}
}

// GetLogger returns the current global logger.
func GetLogger() Logger {
	return globalLogger
}

// Operation wraps a single Engine call with a correlation ID, logging
// its start and outcome. The ID never touches persisted state (index,
// transaction, or lock files) — it exists purely to let a reader
// thread a request's log lines together.
type Operation struct {
	ID   string
	name string
	log  Logger
}

// Begin starts a correlated operation and logs its entry.
func Begin(name string) *Operation {
	op := &Operation{ID: uuid.NewString(), name: name, log: GetLogger()}
	op.log.Info("op=%s id=%s start", op.name, op.ID)
	return op
}

// Done logs the operation's outcome. Pass the error returned by the
// wrapped call, if any.
func (o *Operation) Done(err error) {
	if err != nil {
		o.log.Error("op=%s id=%s failed: %v", o.name, o.ID, err)
		return
	}
	o.log.Info("op=%s id=%s ok", o.name, o.ID)
}

// Package notify delivers the short user-visible messages ("toasts") raised by
// mutations and authorization failures.
package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Level classifies a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows transient messages to the user
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Toast is one delivered notification
type Toast struct {
	Level   Level
	Message string
}

// Nop discards every notification
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}

// Console writes notifications as single lines to w
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console notifier writing to w
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Success(message string) { c.write("✔", message) }
func (c *Console) Error(message string)   { c.write("✖", message) }

func (c *Console) write(mark, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, "%s %s\n", mark, message)
}

// Logging records notifications through zap in addition to an inner notifier
type Logging struct {
	inner  Notifier
	logger *zap.Logger
}

// NewLogging wraps inner so that every toast is also logged
func NewLogging(inner Notifier, logger *zap.Logger) *Logging {
	if inner == nil {
		inner = Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logging{inner: inner, logger: logger}
}

func (l *Logging) Success(message string) {
	l.logger.Debug("toast", zap.String("level", string(LevelSuccess)), zap.String("message", message))
	l.inner.Success(message)
}

func (l *Logging) Error(message string) {
	l.logger.Debug("toast", zap.String("level", string(LevelError)), zap.String("message", message))
	l.inner.Error(message)
}

// Recorder keeps every notification in memory, in delivery order.
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(message string) { r.add(LevelSuccess, message) }
func (r *Recorder) Error(message string)   { r.add(LevelError, message) }

func (r *Recorder) add(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, Toast{Level: level, Message: message})
}

// Toasts returns a copy of the recorded notifications
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Count returns how many notifications of the given level were recorded
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.toasts {
		if t.Level == level {
			n++
		}
	}
	return n
}

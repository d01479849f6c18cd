package notify

import (
	"sync"

	"driveshare/utils"

	"go.uber.org/zap"
)

// Notifier is the user-visible notification channel (the toast sink in the
// original product). Append-only; messages are delivered in emission order.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Emitter fans notifications out to attached sinks. It keeps the data layer
// decoupled from whatever renders the toasts.
type Emitter struct {
	mu    sync.Mutex
	sinks []Notifier
}

func NewEmitter(sinks ...Notifier) *Emitter {
	return &Emitter{sinks: sinks}
}

// Attach adds a sink. Later notifications reach it in emission order.
func (e *Emitter) Attach(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, n)
}

// Detach removes a previously attached sink.
func (e *Emitter) Detach(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, sink := range e.sinks {
		if sink == n {
			e.sinks = append(e.sinks[:i], e.sinks[i+1:]...)
			return
		}
	}
}

func (e *Emitter) Success(message string) {
	e.mu.Lock()
	sinks := make([]Notifier, len(e.sinks))
	copy(sinks, e.sinks)
	e.mu.Unlock()
	for _, sink := range sinks {
		sink.Success(message)
	}
}

func (e *Emitter) Error(message string) {
	e.mu.Lock()
	sinks := make([]Notifier, len(e.sinks))
	copy(sinks, e.sinks)
	e.mu.Unlock()
	for _, sink := range sinks {
		sink.Error(message)
	}
}

// LogNotifier writes notifications to the application log. Used by headless
// consumers that have no toast surface.
type LogNotifier struct{}

func (LogNotifier) Success(message string) {
	utils.GetLogger().Info("notification", zap.String("kind", "success"), zap.String("message", message))
}

func (LogNotifier) Error(message string) {
	utils.GetLogger().Warn("notification", zap.String("kind", "error"), zap.String("message", message))
}

// Record captures notifications for inspection in tests.
type Record struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (r *Record) Success(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Successes = append(r.Successes, message)
}

func (r *Record) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, message)
}

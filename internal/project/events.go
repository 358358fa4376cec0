package project

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// EventType is the kind of project event.
type EventType string

const (
	EventProjectCreated    EventType = "project_created"
	EventProjectDecomposed EventType = "project_decomposed"
	EventSubTaskStarted    EventType = "subtask_started"
	EventSubTaskCompleted  EventType = "subtask_completed"
	EventSubTaskFailed     EventType = "subtask_failed"
	EventProjectCompleted  EventType = "project_completed"
	EventProjectFailed     EventType = "project_failed"
)

// Event reports progress on a project. SubTask is -1 for project-level events.
type Event struct {
	Type      EventType
	ProjectID string
	SubTask   int
	Title     string
	Persona   string
	Model     string
	Message   string
	Err       error
	Timestamp time.Time
}

// EventEmitter fans project events out on a buffered channel.
// Events that cannot be delivered within 100ms are dropped.
type EventEmitter struct {
	mu      sync.RWMutex
	events  chan Event
	closed  bool
	dropped atomic.Uint64
	logger  *zap.Logger
}

// NewEventEmitter creates an emitter with the given buffer size.
func NewEventEmitter(bufferSize int, logger *zap.Logger) *EventEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventEmitter{events: make(chan Event, bufferSize), logger: logger}
}

// Emit sends an event, waiting briefly when the buffer is full.
func (e *EventEmitter) Emit(ev Event) {
	if e == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}

	select {
	case e.events <- ev:
		return
	default:
	}

	select {
	case e.events <- ev:
	case <-time.After(100 * time.Millisecond):
		count := e.dropped.Add(1)
		if count%10 == 1 {
			e.logger.Warn("event channel full, dropping events",
				zap.Uint64("dropped", count),
				zap.String("type", string(ev.Type)))
		}
	}
}

// Events returns the receive side for subscribers such as the shell.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// DroppedCount returns how many events were dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.dropped.Load()
}

// Close closes the channel. Later Emits are ignored.
func (e *EventEmitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.events)
	}
	return nil
}

package adminauth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// AuditEvent is a structured record of one authentication lifecycle transition.
type AuditEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Email     string    `json:"email,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Flow      string    `json:"flow,omitempty"`
	State     string    `json:"state"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// AuditSink receives [AuditEvent] values from the controller's audit dispatcher.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink struct{}

// Emit describes the emit operation and its observable behavior.
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink struct {
	events chan AuditEvent
}

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events describes the events operation and its observable behavior.
func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one event per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

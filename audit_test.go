package adminauth

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestChannelSinkReceivesLifecycleEvents(t *testing.T) {
	sink := NewChannelSink(16)

	fb := newFakeBackend()
	fb.loginPassword = func(ctx context.Context, email, password string) (*LoginReply, error) {
		return &LoginReply{Tokens: freshPair(t, email)}, nil
	}
	controller, err := New().
		WithBackend(fb).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(controller.Close)

	if _, err := controller.LoginWithPassword(context.Background(), "alice@nebulahunt.io", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != "login_success" {
			t.Fatalf("unexpected event type %q", event.EventType)
		}
		if event.Email != "alice@nebulahunt.io" || !event.Success {
			t.Fatalf("unexpected event %+v", event)
		}
		if event.ID == "" {
			t.Fatal("expected a generated event ID")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event delivered")
	}
}

func TestJSONWriterSinkWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{ID: "a", EventType: "logout", State: "anonymous", Success: true})
	sink.Emit(context.Background(), AuditEvent{ID: "b", EventType: "login_failure", State: "anonymous"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var decoded AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if decoded.ID != "a" || decoded.EventType != "logout" {
		t.Fatalf("unexpected decoded event %+v", decoded)
	}
}

func TestDispatcherDropsWhenBufferFull(t *testing.T) {
	block := make(chan struct{})
	sink := blockingSink{release: block}

	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer, the rest drop.
	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "logout"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops on a saturated buffer")
	}

	close(block)
	d.Close()
}

type blockingSink struct {
	release chan struct{}
}

func (s blockingSink) Emit(ctx context.Context, event AuditEvent) {
	<-s.release
}

func TestDispatcherCloseDrainsBuffer(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink)

	d.Emit(context.Background(), AuditEvent{EventType: "logout"})
	d.Close()

	select {
	case <-sink.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("buffered event was not drained on close")
	}

	// Emitting after close is a no-op.
	d.Emit(context.Background(), AuditEvent{EventType: "logout"})
}

func TestMetricsSnapshotCountsFlows(t *testing.T) {
	fb := newFakeBackend()
	fb.loginPassword = func(ctx context.Context, email, password string) (*LoginReply, error) {
		return &LoginReply{Tokens: freshPair(t, email)}, nil
	}
	controller, _ := newTestController(t, fb)

	if _, err := controller.LoginWithPassword(context.Background(), "alice@nebulahunt.io", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := controller.CompleteTwoFactor(context.Background(), "12345x"); err == nil {
		t.Fatal("expected malformed code rejection")
	}
	if err := controller.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	snap := controller.MetricsSnapshot()
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected 1 login success, got %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricMalformedCodeRejected] != 1 {
		t.Fatalf("expected 1 malformed rejection, got %d", snap.Counters[MetricMalformedCodeRejected])
	}
	if snap.Counters[MetricLogout] != 1 {
		t.Fatalf("expected 1 logout, got %d", snap.Counters[MetricLogout])
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)
	if m.Get(MetricLoginSuccess) != 0 {
		t.Fatal("disabled metrics must not count")
	}
	if len(m.Snapshot().Counters) != 0 {
		t.Fatal("disabled snapshot must be empty")
	}
}

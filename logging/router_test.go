package logging_test

import (
	"context"
	"testing"
	"time"

	"blockstead/server/logging"
	"blockstead/server/logging/sinks"
)

func newTestRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.MemorySink) {
	t.Helper()
	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return router, memory
}

func waitForEvents(t *testing.T, memory *sinks.MemorySink, want int) []logging.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		events := memory.Events()
		if len(events) >= want {
			return events
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, have %d", want, len(memory.Events()))
	return nil
}

func TestRouterDeliversPublishedEvents(t *testing.T) {
	router, memory := newTestRouter(t, logging.DefaultConfig())
	defer router.Close(context.Background())

	router.Publish(context.Background(), logging.Event{
		Type:     "test.event",
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})

	events := waitForEvents(t, memory, 1)
	if events[0].Type != "test.event" {
		t.Fatalf("event type = %q", events[0].Type)
	}
	if events[0].Time.IsZero() {
		t.Fatalf("router should stamp the event time")
	}
	stats := router.Stats()
	if stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, memory := newTestRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "quiet", Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: "loud", Severity: logging.SeverityError})

	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	events := memory.Events()
	if len(events) != 1 || events[0].Type != "loud" {
		t.Fatalf("events = %v", events)
	}
}

func TestRouterAppliesDefaultFields(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"service": "blockstead"}
	router, memory := newTestRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "test", Severity: logging.SeverityInfo})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	if got := events[0].Extra["service"]; got != "blockstead" {
		t.Fatalf("extra = %v", events[0].Extra)
	}
}

func TestRouterPublishAfterCloseIsNoop(t *testing.T) {
	router, memory := newTestRouter(t, logging.DefaultConfig())
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	router.Publish(context.Background(), logging.Event{Type: "late", Severity: logging.SeverityInfo})
	if got := len(memory.Events()); got != 0 {
		t.Fatalf("events after close = %d", got)
	}
}

func TestWithFieldsDoesNotOverrideExisting(t *testing.T) {
	var captured logging.Event
	base := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		captured = event
	})
	wrapped := logging.WithFields(base, map[string]any{"region": "default", "shard": "a"})
	wrapped.Publish(context.Background(), logging.Event{
		Type:  "test",
		Extra: map[string]any{"region": "override"},
	})

	if captured.Extra["region"] != "override" {
		t.Fatalf("explicit extra should win, got %v", captured.Extra)
	}
	if captured.Extra["shard"] != "a" {
		t.Fatalf("default field missing, got %v", captured.Extra)
	}
}
